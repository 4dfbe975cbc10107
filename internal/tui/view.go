package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/receiptdex/receiptdex/internal/browse"
)

// Monochrome theme - adaptive for light and dark terminals
var (
	bgBase   = lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#000000"}
	bgCursor = lipgloss.AdaptiveColor{Light: "#e0e0e0", Dark: "#282828"}

	titleBarStyle = lipgloss.NewStyle().
			Bold(true).
			Background(lipgloss.AdaptiveColor{Light: "#e0e0e0", Dark: "#333333"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"}).
			Padding(0, 1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)

	tabInactiveStyle = lipgloss.NewStyle().
				Faint(true)

	searchBarStyle = lipgloss.NewStyle().
			Background(bgBase).
			Padding(0, 1)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Background(bgBase)

	separatorStyle = lipgloss.NewStyle().
			Faint(true).
			Background(bgBase)

	cursorRowStyle = lipgloss.NewStyle().
			Background(bgCursor)

	normalRowStyle = lipgloss.NewStyle().
			Background(bgBase)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#999999"}).
			Background(bgBase).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#aa0000", Dark: "#ff5555"}).
			Background(bgBase).
			Padding(0, 1)

	noticeStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#996600", Dark: "#ffcc00"}).
			Background(bgBase).
			Padding(0, 1)

	spinnerStyle = lipgloss.NewStyle().
			Bold(true).
			Background(bgBase)

	linkedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#006600", Dark: "#55cc55"})

	modalTitleStyle = lipgloss.NewStyle().
			Bold(true)

	modalLabelStyle = lipgloss.NewStyle().
			Faint(true)
)

// scopeTitle returns the display name for a scope.
func scopeTitle(scope browse.Scope) string {
	switch scope {
	case browse.ScopeTransactions:
		return "Transactions"
	default:
		return "Receipts"
	}
}

func sortFieldLabel(f browse.SortField) string {
	switch f {
	case browse.SortByAmount:
		return "amount"
	case browse.SortByTitle:
		return "title"
	case browse.SortByConfidence:
		return "confidence"
	default:
		return "date"
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	width := m.width
	if width <= 0 {
		width = 100
	}

	var b strings.Builder
	b.WriteString(m.renderTitleBar(width))
	b.WriteString("\n")

	if m.filter != nil {
		b.WriteString(m.renderFilterForm())
		return b.String()
	}

	b.WriteString(m.renderSearchBar(width))
	b.WriteString("\n")
	b.WriteString(m.renderTable(width))
	b.WriteString(m.renderStatusLine(width))
	b.WriteString(m.renderFooter(width))
	return b.String()
}

func (m Model) renderTitleBar(width int) string {
	title := "receiptdex"
	if m.version != "" {
		title += " " + m.version
	}

	var tabs []string
	for _, scope := range []browse.Scope{browse.ScopeReceipts, browse.ScopeTransactions} {
		label := scopeTitle(scope)
		if scope == m.scope {
			tabs = append(tabs, tabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, tabInactiveStyle.Render(label))
		}
	}

	return titleBarStyle.Render(padRight(title+"  "+strings.Join(tabs, "  "), width-2))
}

func (m Model) renderSearchBar(width int) string {
	snap := m.current()

	if m.searchActive {
		return searchBarStyle.Render(padRight("/ "+m.searchInput.View(), width-2))
	}

	line := "/ "
	if snap.Applied.Text != "" {
		line += snap.Applied.Text
	} else {
		line += tabInactiveStyle.Render("press / to search")
	}
	if summary := filterSummary(snap.Applied); summary != "" {
		line += "  " + tabInactiveStyle.Render(summary)
	}
	return searchBarStyle.Render(padRight(line, width-2))
}

// filterSummary renders the active non-text filters compactly.
func filterSummary(c browse.Criteria) string {
	var parts []string
	if vals := c.Status.Values(); len(vals) > 0 {
		parts = append(parts, "status:"+strings.Join(vals, ","))
	}
	if vals := c.Currency.Values(); len(vals) > 0 {
		parts = append(parts, "currency:"+strings.Join(vals, ","))
	}
	if vals := c.Provider.Values(); len(vals) > 0 {
		parts = append(parts, "provider:"+strings.Join(vals, ","))
	}
	if c.DateFrom != "" || c.DateTo != "" {
		parts = append(parts, fmt.Sprintf("date:%s..%s", c.DateFrom, c.DateTo))
	}
	if c.AmountMin != nil || c.AmountMax != nil {
		parts = append(parts, fmt.Sprintf("amount:%s..%s", formatOptFloat(c.AmountMin), formatOptFloat(c.AmountMax)))
	}
	if c.ConfidenceMin != nil {
		parts = append(parts, "confidence>="+formatOptFloat(c.ConfidenceMin))
	}
	return strings.Join(parts, " ")
}

// Column widths for the result table. Title absorbs whatever remains.
const (
	colID     = 8
	colDate   = 12
	colAmount = 14
	colStatus = 12
	colConf   = 6
	colLink   = 10
)

func (m Model) renderTable(width int) string {
	snap := m.current()
	titleWidth := width - colID - colDate - colAmount - colStatus - colConf - colLink - 7
	if titleWidth < 10 {
		titleWidth = 10
	}

	var b strings.Builder

	header := fmt.Sprintf("%s %s %s %s %s %s %s",
		padRight("ID", colID),
		padRight("Date", colDate),
		padRight("Title", titleWidth),
		padLeft("Amount", colAmount),
		padRight(" Status", colStatus),
		padLeft("Conf", colConf),
		padRight(" Link", colLink),
	)
	b.WriteString(tableHeaderStyle.Render(padRight(header, width)))
	b.WriteString("\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", width)))
	b.WriteString("\n")

	if len(snap.Items) == 0 {
		empty := "no results"
		if snap.Searching {
			empty = "searching..."
		}
		b.WriteString(normalRowStyle.Render(padRight("  "+empty, width)))
		b.WriteString("\n")
		return b.String()
	}

	for i, it := range snap.Items {
		link := ""
		if entry, ok := snap.Links[it.ID]; ok {
			if entry.Linked {
				link = linkedStyle.Render("→ " + entry.LinkedID)
			} else {
				link = tabInactiveStyle.Render("none")
			}
		}

		row := fmt.Sprintf("%s %s %s %s %s %s %s",
			padRight(truncateRunes(it.ID, colID), colID),
			padRight(truncateRunes(it.Date, colDate), colDate),
			padRight(truncateRunes(it.Title, titleWidth), titleWidth),
			padLeft(formatAmount(it.Amount, it.Currency), colAmount),
			padRight(" "+truncateRunes(it.Status, colStatus-1), colStatus),
			padLeft(formatConfidence(it.Confidence), colConf),
			padRight(" "+link, colLink),
		)

		style := normalRowStyle
		if i == m.cursor {
			style = cursorRowStyle
		}
		b.WriteString(style.Render(padRight(row, width)))
		b.WriteString("\n")
	}

	return b.String()
}

// renderStatusLine shows the error banner or the transient notice, if any.
func (m Model) renderStatusLine(width int) string {
	snap := m.current()
	if snap.Err != nil {
		return errorStyle.Render(padRight("error: "+snap.Err.Error()+"  (r to retry)", width-2)) + "\n"
	}
	if snap.Notice != "" {
		return noticeStyle.Render(padRight(snap.Notice, width-2)) + "\n"
	}
	return ""
}

func (m Model) renderFooter(width int) string {
	snap := m.current()

	left := fmt.Sprintf("page %d", snap.Page.PageIndex)
	if snap.TotalCount != nil {
		left += fmt.Sprintf(" · %s results", formatCount(*snap.TotalCount))
	}
	left += fmt.Sprintf(" · sort %s %s", sortFieldLabel(snap.Applied.Sort), orderArrow(snap.Applied.Order))
	if snap.Searching {
		left += "  " + spinnerStyle.Render(spinnerFrames[m.spinnerFrame])
	}

	help := "/:search f:filter n/p:page s/d:sort [:back ]:fwd tab:scope c:clear q:quit"
	gap := width - 4 - lipgloss.Width(left) - lipgloss.Width(help)
	if gap < 2 {
		return footerStyle.Render(padRight(left, width-2))
	}
	return footerStyle.Render(left + strings.Repeat(" ", gap) + help)
}

func orderArrow(o browse.SortOrder) string {
	if o == browse.SortAsc {
		return "↑"
	}
	return "↓"
}

func (m Model) renderFilterForm() string {
	f := m.filter

	var b strings.Builder
	b.WriteString(modalTitleStyle.Render("Filters"))
	b.WriteString("\n\n")
	for i := range f.inputs {
		marker := "  "
		if i == f.focus {
			marker = "> "
		}
		b.WriteString(marker)
		b.WriteString(modalLabelStyle.Render(padRight(filterLabels[i], 16)))
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("enter:apply esc:cancel tab:next field  (lists are comma-separated)"))
	return b.String()
}
