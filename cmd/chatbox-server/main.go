package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"chatbox/pkg/ai"
	_ "chatbox/pkg/ai/providers"
	"chatbox/pkg/assistant"
	"chatbox/pkg/booking"
	"chatbox/pkg/config"
	"chatbox/pkg/history"
	"chatbox/pkg/logging"
	"chatbox/pkg/server"
	"chatbox/pkg/version"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var (
	flagConfig   string
	flagAddr     string
	flagDB       string
	flagProvider string
	flagEnvFile  string
)

var rootCmd = &cobra.Command{
	Use:           "chatbox-server",
	Short:         "Coach ticket assistant chat server",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServer,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagConfig, "config", config.GetConfigPath(), "path to config.json")
	flags.StringVar(&flagAddr, "addr", "", "listen address (overrides config)")
	flags.StringVar(&flagDB, "db", "", "sqlite database path (overrides config)")
	flags.StringVar(&flagProvider, "provider", "", "LLM provider: openai or google (overrides config)")
	flags.StringVar(&flagEnvFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.AddCommand(&cobra.Command{
		Use:   "providers",
		Short: "List the LLM providers and whether each has an API key",
		Args:  cobra.NoArgs,
		RunE:  runProviders,
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Summary())
		},
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("invalid config %s: %w", flagConfig, err)
	}

	if _, err := logging.InitNamed(cfg, "chatbox-server.log"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
	}

	provider, info, err := ai.GetProviderFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("create %s provider: %w", cfg.LLMProvider, err)
	}

	store, err := history.Open(cfg.Server.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	bot := assistant.New(provider, store, booking.NewDispatcher(booking.NewFakeDesk()),
		assistant.WithHistoryLimit(cfg.Server.HistoryLimit))
	srv := server.New(bot, server.WithHistory(store))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpSrv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	slog.Info("server_start",
		"version", version.Summary(),
		"addr", cfg.Server.ListenAddr,
		"db", cfg.Server.DatabasePath,
		"provider", info.Name,
	)
	fmt.Fprintf(cmd.OutOrStdout(), "chatbox-server listening on %s\n", cfg.Server.ListenAddr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("server_shutdown")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		// Stop accepting first; hijacked WebSocket connections are not tracked
		// by http.Server and are closed by srv.Close.
		_ = httpSrv.Shutdown(shutdownCtx)
		srv.Close()
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		srv.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", cfg.Server.ListenAddr, err)
	}
}

func runProviders(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, info := range ai.ListProviders() {
		marker := " "
		if string(info.Type) == cfg.LLMProvider {
			marker = "*"
		}
		key := "no key needed"
		if info.RequiresKey() {
			key = info.KeyEnv + " missing"
			if strings.TrimSpace(cfg.APIKey(string(info.Type))) != "" {
				key = "key set"
			}
		}
		fmt.Fprintf(out, "%s %-8s %-8s %-16s %s\n", marker, info.Type, info.Name, key, info.Description)
	}
	return nil
}

func loadConfig() (config.Config, error) {
	if err := godotenv.Load(flagEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load %s: %v\n", flagEnvFile, err)
	}
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	applyEnv(&cfg, ai.ListProviders(), os.Getenv)
	applyFlags(&cfg)
	return cfg, nil
}

// applyEnv lets API keys come from each provider's environment variable
// instead of config.json.
func applyEnv(cfg *config.Config, providers []ai.ProviderInfo, getenv func(string) string) {
	for _, info := range providers {
		if !info.RequiresKey() {
			continue
		}
		if v := strings.TrimSpace(getenv(info.KeyEnv)); v != "" {
			cfg.SetAPIKey(string(info.Type), v)
		}
	}
}

func applyFlags(cfg *config.Config) {
	if flagAddr != "" {
		cfg.Server.ListenAddr = flagAddr
	}
	if flagDB != "" {
		cfg.Server.DatabasePath = flagDB
	}
	if flagProvider != "" {
		cfg.LLMProvider = flagProvider
	}
}
