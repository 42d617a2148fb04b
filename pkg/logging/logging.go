package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"chatbox/pkg/config"

	"gopkg.in/natefinch/lumberjack.v2"
)

const defaultLogFile = "chatbox.log"
const (
	maxLogSizeMB  = 5
	maxLogBackups = 5
	maxLogAgeDays = 14
)

// Init configures slog to write structured logs to a rotating file.
// The TUI owns stdout, so nothing is ever written to the terminal.
func Init(cfg config.Config) (*slog.Logger, error) {
	return InitNamed(cfg, defaultLogFile)
}

// InitNamed is Init with a custom default file name, used by the server binary
// so both processes can share a log directory.
func InitNamed(cfg config.Config, fileName string) (*slog.Logger, error) {
	level := parseLogLevel(cfg.LogLevel)
	handlerOptions := &slog.HandlerOptions{Level: level}

	logPath := strings.TrimSpace(cfg.LogFile)
	if logPath == "" {
		logPath = defaultLogPath(fileName)
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		logger := slog.New(newHandler(cfg.LogFormat, io.Discard, handlerOptions))
		slog.SetDefault(logger)
		return logger, err
	}

	writer := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
		Compress:   true,
	}

	logger := slog.New(newHandler(cfg.LogFormat, writer, handlerOptions))
	slog.SetDefault(logger)
	return logger, nil
}

func defaultLogPath(fileName string) string {
	if strings.TrimSpace(fileName) == "" {
		fileName = defaultLogFile
	}
	homeDir, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(homeDir) == "" {
		return filepath.Join(".chatbox", "logs", fileName)
	}
	return filepath.Join(homeDir, ".chatbox", "logs", fileName)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newHandler(format string, out io.Writer, opts *slog.HandlerOptions) slog.Handler {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "text":
		return slog.NewTextHandler(out, opts)
	default:
		return slog.NewJSONHandler(out, opts)
	}
}
