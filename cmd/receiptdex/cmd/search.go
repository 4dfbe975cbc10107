package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/receiptdex/receiptdex/internal/browse"
)

var (
	searchScope         string
	searchLimit         int
	searchCursor        string
	searchJSON          bool
	searchStatus        []string
	searchCurrency      []string
	searchProvider      []string
	searchDateFrom      string
	searchDateTo        string
	searchAmountMin     float64
	searchAmountMax     float64
	searchConfidenceMin float64
	searchSort          string
	searchOrder         string
)

var searchCmd = &cobra.Command{
	Use:   "search [text...]",
	Short: "Search the receipt service from the command line",
	Long: `Run a one-shot search against the configured receipt service and print
one page of results.

Bare words match against titles and identifiers. Filters combine with AND.

Examples:
  receiptdex search coffee
  receiptdex search --status pending --currency USD
  receiptdex search office --min-amount 50 --sort amount --order desc
  receiptdex search --scope transactions --limit 50

Paging is cursor-based: each page prints the token for the next one.
Tokens are single-use against the criteria that issued them; rerun
without --cursor if the service reports the token expired.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, err := parseScope(searchScope)
		if err != nil {
			return err
		}
		sort, order, err := parseSort(searchSort, searchOrder)
		if err != nil {
			return err
		}

		client, err := newRemoteClient()
		if err != nil {
			return err
		}
		defer client.Close()

		text := strings.TrimSpace(strings.Join(args, " "))
		req := browse.SearchRequest{
			Scope:         scope,
			Text:          text,
			Status:        searchStatus,
			Currency:      searchCurrency,
			Provider:      searchProvider,
			DateFrom:      searchDateFrom,
			DateTo:        searchDateTo,
			AmountMin:     flagFloat(cmd, "min-amount", searchAmountMin),
			AmountMax:     flagFloat(cmd, "max-amount", searchAmountMax),
			ConfidenceMin: flagFloat(cmd, "min-confidence", searchConfidenceMin),
			Sort:          sort,
			Order:         order,
			PageSize:      searchLimit,
			Cursor:        searchCursor,
		}

		var page *browse.SearchPage
		if isListing(req) {
			page, err = client.List(cmd.Context(), browse.ListRequest{
				Scope:    scope,
				Sort:     sort,
				Order:    order,
				PageSize: searchLimit,
				Cursor:   searchCursor,
			})
		} else {
			page, err = client.Search(cmd.Context(), req)
		}
		if err != nil {
			if errors.Is(err, browse.ErrInvalidCursor) {
				return fmt.Errorf("page token expired or invalid; rerun without --cursor to start over")
			}
			return err
		}

		if searchJSON {
			return outputPageJSON(page)
		}
		if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			return outputPageTSV(page)
		}
		return outputPageTable(page)
	},
}

// isListing reports whether the request carries no text and no filters, in
// which case the service's cheaper listing path is used.
func isListing(req browse.SearchRequest) bool {
	return req.Text == "" &&
		len(req.Status) == 0 && len(req.Currency) == 0 && len(req.Provider) == 0 &&
		req.DateFrom == "" && req.DateTo == "" &&
		req.AmountMin == nil && req.AmountMax == nil && req.ConfidenceMin == nil
}

func parseScope(s string) (browse.Scope, error) {
	switch s {
	case "receipts", "":
		return browse.ScopeReceipts, nil
	case "transactions":
		return browse.ScopeTransactions, nil
	default:
		return "", fmt.Errorf("invalid scope %q (want receipts or transactions)", s)
	}
}

func parseSort(field, order string) (browse.SortField, browse.SortOrder, error) {
	var f browse.SortField
	switch field {
	case "date", "":
		f = browse.SortByDate
	case "amount":
		f = browse.SortByAmount
	case "title":
		f = browse.SortByTitle
	case "confidence":
		f = browse.SortByConfidence
	default:
		return "", "", fmt.Errorf("invalid sort field %q (want date, amount, title, or confidence)", field)
	}

	var o browse.SortOrder
	switch order {
	case "desc", "":
		o = browse.SortDesc
	case "asc":
		o = browse.SortAsc
	default:
		return "", "", fmt.Errorf("invalid sort order %q (want asc or desc)", order)
	}
	return f, o, nil
}

// flagFloat returns a pointer to the flag value only when the user set it,
// so unset numeric filters are omitted from the request entirely.
func flagFloat(cmd *cobra.Command, name string, v float64) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}

func outputPageTable(page *browse.SearchPage) error {
	if len(page.Items) == 0 {
		fmt.Println("No results.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tTITLE\tAMOUNT\tSTATUS\tCONF")
	fmt.Fprintln(w, "──\t────\t─────\t──────\t──────\t────")
	for _, it := range page.Items {
		conf := "-"
		if it.Confidence > 0 {
			conf = fmt.Sprintf("%d%%", int(it.Confidence*100+0.5))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f %s\t%s\t%s\n",
			it.ID, it.Date, truncate(it.Title, 50), it.Amount, it.Currency, it.Status, conf)
	}
	w.Flush()

	if page.TotalCount != nil {
		fmt.Printf("\nShowing %d of %d results\n", len(page.Items), *page.TotalCount)
	} else {
		fmt.Printf("\nShowing %d results\n", len(page.Items))
	}
	if page.Page.HasNext {
		fmt.Printf("Next page: --cursor %s\n", page.Page.NextCursor)
	}
	return nil
}

// outputPageTSV emits machine-friendly rows when stdout is piped. The next
// page token goes to stderr so it never mixes into the data stream.
func outputPageTSV(page *browse.SearchPage) error {
	for _, it := range page.Items {
		fmt.Printf("%s\t%s\t%s\t%.2f\t%s\t%s\t%.2f\n",
			it.ID, it.Date, it.Title, it.Amount, it.Currency, it.Status, it.Confidence)
	}
	if page.Page.HasNext {
		fmt.Fprintf(os.Stderr, "next cursor: %s\n", page.Page.NextCursor)
	}
	return nil
}

func outputPageJSON(page *browse.SearchPage) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(page)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVar(&searchScope, "scope", "receipts", "Record scope: receipts or transactions")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "Results per page")
	searchCmd.Flags().StringVar(&searchCursor, "cursor", "", "Resume from a page token printed by a previous run")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output as JSON")
	searchCmd.Flags().StringSliceVar(&searchStatus, "status", nil, "Filter by status (repeatable)")
	searchCmd.Flags().StringSliceVar(&searchCurrency, "currency", nil, "Filter by currency (repeatable)")
	searchCmd.Flags().StringSliceVar(&searchProvider, "provider", nil, "Filter by extraction provider (repeatable)")
	searchCmd.Flags().StringVar(&searchDateFrom, "after", "", "Only records on or after date (YYYY-MM-DD)")
	searchCmd.Flags().StringVar(&searchDateTo, "before", "", "Only records on or before date (YYYY-MM-DD)")
	searchCmd.Flags().Float64Var(&searchAmountMin, "min-amount", 0, "Minimum amount")
	searchCmd.Flags().Float64Var(&searchAmountMax, "max-amount", 0, "Maximum amount")
	searchCmd.Flags().Float64Var(&searchConfidenceMin, "min-confidence", 0, "Minimum extraction confidence (0-1)")
	searchCmd.Flags().StringVar(&searchSort, "sort", "date", "Sort field: date, amount, title, confidence")
	searchCmd.Flags().StringVar(&searchOrder, "order", "desc", "Sort order: asc or desc")
}
