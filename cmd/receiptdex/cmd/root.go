package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/receiptdex/receiptdex/internal/config"
	"github.com/receiptdex/receiptdex/internal/remote"
)

var (
	cfgFile string
	homeDir string
	verbose bool
	cfg     *config.Config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "receiptdex",
	Short: "Receipt archive browser",
	Long: `receiptdex is a terminal client for browsing a receipt service:
incremental search with live filtering, cursor-based paging, and
receipt-to-transaction link lookups.

It also ships a fixture server ('receiptdex serve') exposing the same
wire surface over demo data, for development without a real service.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}))

		// --home overrides the env var the same way RECEIPTDEX_HOME does,
		// so it also controls where config.toml is loaded from.
		if homeDir != "" {
			if err := os.Setenv("RECEIPTDEX_HOME", homeDir); err != nil {
				return fmt.Errorf("set home directory: %w", err)
			}
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		if err := os.MkdirAll(cfg.Data.DataDir, 0o755); err != nil {
			return fmt.Errorf("create data directory %s: %w", cfg.Data.DataDir, err)
		}

		return nil
	},
}

// Execute runs the root command with a background context.
// Prefer ExecuteContext for signal-aware execution.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with the given context,
// enabling graceful shutdown when the context is cancelled.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// newRemoteClient builds the receipt-service client from config, with a
// setup hint when no service is configured yet.
func newRemoteClient() (*remote.Client, error) {
	if cfg.Remote.URL == "" {
		return nil, fmt.Errorf(`no receipt service configured.

Add to %s/config.toml:

  [remote]
  url = "https://your-service:8443"
  api_key = "your-key"

Or start the bundled fixture server and point at it:

  receiptdex serve
  [remote]
  url = "http://127.0.0.1:8173"
  allow_insecure = true`, cfg.HomeDir)
	}
	return remote.New(remote.Config{
		URL:           cfg.Remote.URL,
		APIKey:        cfg.Remote.APIKey,
		AllowInsecure: cfg.Remote.AllowInsecure,
		Timeout:       cfg.RemoteTimeout(),
	})
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.receiptdex/config.toml)")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "home directory (overrides RECEIPTDEX_HOME)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
