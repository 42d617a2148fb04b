package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"chatbox/pkg/config"
	"chatbox/pkg/logging"
	"chatbox/pkg/prefs"
	"chatbox/pkg/session"
	"chatbox/pkg/transport"
	"chatbox/pkg/ui"
	"chatbox/pkg/version"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	flagConfig string
	flagHost   string
	flagPort   int
	flagState  string
)

var rootCmd = &cobra.Command{
	Use:           "chatbox",
	Short:         "Terminal chat client",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runClient,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagConfig, "config", config.GetConfigPath(), "path to config.json")
	flags.StringVar(&flagHost, "host", "", "chat server host (overrides config)")
	flags.IntVar(&flagPort, "port", 0, "chat server port (overrides config)")
	flags.StringVar(&flagState, "state", "", "path to the persisted preferences file (overrides config)")
	rootCmd.AddCommand(newVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runClient(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("chatbox must be run in an interactive terminal")
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyFlags(&cfg)
	if err := cfg.ValidateClient(); err != nil {
		return fmt.Errorf("invalid config %s: %w", flagConfig, err)
	}

	if _, err := logging.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
	}
	slog.Info("client_start",
		"version", version.Summary(),
		"host", cfg.Client.Host,
		"port", cfg.Client.Port,
	)

	store, err := prefs.OpenFileStore(cfg.ResolveStatePath())
	if err != nil {
		return fmt.Errorf("open preferences: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dialer := transport.NewWebSocketDialer(cfg.Client.Host, cfg.Client.Port)
	ctrl := session.New(store, dialer)
	defer ctrl.Close()

	p := tea.NewProgram(ui.NewModel(ctx, ctrl), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run ui: %w", err)
	}
	slog.Info("client_exit", "user_id", ctrl.UserID())
	return nil
}

func applyFlags(cfg *config.Config) {
	if flagHost != "" {
		cfg.Client.Host = flagHost
	}
	if flagPort != 0 {
		cfg.Client.Port = flagPort
	}
	if flagState != "" {
		cfg.Client.StateFile = flagState
	}
}
