package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/receiptdex/receiptdex/internal/api"
)

var (
	serveAddr    string
	serveFixture string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the fixture receipt service",
	Long: `Run a local HTTP server exposing the receipt-service wire surface over
fixture data, for developing and demoing the client without a real service.

Endpoints:
  GET /health
  GET /api/v1/{scope}                 default listing
  GET /api/v1/{scope}/search          criteria search with cursor paging
  GET /api/v1/links/{id}              receipt/transaction link lookup

Data comes from [server] fixture_path (a JSON catalog) when set, otherwise
a built-in deterministic demo catalog. Page tokens are signed with a
per-process key, so they expire on restart.

Use Ctrl+C to stop.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	fixturePath := cfg.Server.FixturePath
	if serveFixture != "" {
		fixturePath = serveFixture
	}

	catalog := api.DemoCatalog()
	if fixturePath != "" {
		loaded, err := api.LoadCatalog(fixturePath)
		if err != nil {
			return fmt.Errorf("load fixture catalog: %w", err)
		}
		catalog = loaded
	}

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	server, err := api.NewServer(api.Config{
		Addr:   addr,
		APIKey: cfg.Server.APIKey,
	}, catalog, logger)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	fmt.Printf("receiptdex fixture server started\n")
	fmt.Printf("  Listening on: http://%s\n", addr)
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop.")

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-cmd.Context().Done():
		logger.Info("received shutdown signal")
	}

	fmt.Println("\nShutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides [server] addr)")
	serveCmd.Flags().StringVar(&serveFixture, "fixture", "", "JSON catalog file (overrides [server] fixture_path)")
}
