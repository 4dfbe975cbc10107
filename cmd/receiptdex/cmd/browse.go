package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/receiptdex/receiptdex/internal/browse"
	"github.com/receiptdex/receiptdex/internal/location"
	"github.com/receiptdex/receiptdex/internal/state"
	"github.com/receiptdex/receiptdex/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Open the interactive browser",
	Long: `Open an interactive terminal UI for browsing receipts and transactions.

Search runs incrementally as you type, results page with next/prev, and
each view remembers its criteria across sessions.

Navigation:
  /           Focus the search box (enter applies, esc cancels)
  f           Open the filter form
  Tab         Switch between Receipts and Transactions
  n/p         Next / previous page
  s           Cycle sort column
  d           Toggle sort direction
  [ / ]       Step back / forward through view history
  c           Clear search and filters
  r           Retry after a failed fetch
  q           Quit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			return fmt.Errorf("browse requires an interactive terminal; use 'receiptdex search' for scripted output")
		}

		client, err := newRemoteClient()
		if err != nil {
			return err
		}
		defer client.Close()

		store := state.NewStore(cfg.ViewsDir())

		receipts := browse.NewSession(client, client, browse.Options{
			Scope:    browse.ScopeReceipts,
			PageSize: cfg.Browse.PageSize,
			Debounce: cfg.Debounce(),
			Location: location.New("/receipts"),
			Storage:  store,
			Logger:   logger,
		})
		defer receipts.Close()

		transactions := browse.NewSession(client, client, browse.Options{
			Scope:    browse.ScopeTransactions,
			PageSize: cfg.Browse.PageSize,
			Debounce: cfg.Debounce(),
			Location: location.New("/transactions"),
			Storage:  store,
			Logger:   logger,
		})
		defer transactions.Close()

		model := tui.New(receipts, transactions, tui.Options{Version: Version})
		p := tea.NewProgram(model, tea.WithAltScreen())

		if _, err := p.Run(); err != nil {
			return fmt.Errorf("run tui: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
