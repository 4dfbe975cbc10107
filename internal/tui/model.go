// Package tui provides the terminal user interface for receiptdex.
package tui

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/receiptdex/receiptdex/internal/browse"
)

// Options configuration for the TUI.
type Options struct {
	Version string
}

// spinnerFrames are the Braille dot animation frames for the loading spinner.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinnerInterval is how fast the spinner animates.
const spinnerInterval = 80 * time.Millisecond

// noticeDuration is how long transient notices are displayed before they are
// dismissed automatically.
const noticeDuration = 4 * time.Second

// Model is the main TUI model following the Elm architecture. It renders
// snapshots of two browse sessions, one per record scope, and translates key
// presses into session operations. All search coordination (debounce,
// cancellation, pagination, recovery) lives in the sessions; the model never
// fetches anything itself.
type Model struct {
	receipts     *browse.Session
	transactions *browse.Session

	scope browse.Scope
	snaps map[browse.Scope]browse.Snapshot

	searchInput  textinput.Model
	searchActive bool

	filter *filterForm

	cursor int

	width  int
	height int

	spinnerFrame  int
	spinnerActive bool

	version  string
	quitting bool
}

// New creates a TUI model over the two scope sessions.
func New(receipts, transactions *browse.Session, opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "search"
	ti.CharLimit = 200
	ti.Width = 50

	return Model{
		receipts:     receipts,
		transactions: transactions,
		scope:        browse.ScopeReceipts,
		snaps: map[browse.Scope]browse.Snapshot{
			browse.ScopeReceipts:     receipts.Snapshot(),
			browse.ScopeTransactions: transactions.Snapshot(),
		},
		searchInput:   ti,
		version:       opts.Version,
		spinnerActive: true,
	}
}

// session returns the session backing the given scope.
func (m Model) session(scope browse.Scope) *browse.Session {
	if scope == browse.ScopeTransactions {
		return m.transactions
	}
	return m.receipts
}

// current returns the snapshot of the active scope.
func (m Model) current() browse.Snapshot {
	return m.snaps[m.scope]
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		hydrate(m.receipts),
		hydrate(m.transactions),
		watchSession(m.receipts, browse.ScopeReceipts),
		watchSession(m.transactions, browse.ScopeTransactions),
		spinnerTick(),
	)
}

// sessionUpdateMsg signals that a session's state changed and its snapshot
// should be re-taken.
type sessionUpdateMsg struct {
	scope browse.Scope
}

// noticeExpiredMsg dismisses a transient notice after its display window.
type noticeExpiredMsg struct {
	scope browse.Scope
}

// spinnerTickMsg advances the loading spinner animation.
type spinnerTickMsg struct{}

// hydrate restores the session's persisted view state and issues its initial
// fetch.
func hydrate(s *browse.Session) tea.Cmd {
	return func() tea.Msg {
		s.Hydrate()
		return nil
	}
}

// watchSession blocks on the session's update signal and re-arms itself after
// every delivery.
func watchSession(s *browse.Session, scope browse.Scope) tea.Cmd {
	return func() tea.Msg {
		<-s.Updates()
		return sessionUpdateMsg{scope: scope}
	}
}

func spinnerTick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case sessionUpdateMsg:
		s := m.session(msg.scope)
		prev := m.snaps[msg.scope]
		snap := s.Snapshot()
		m.snaps[msg.scope] = snap

		cmds := []tea.Cmd{watchSession(s, msg.scope)}
		if msg.scope == m.scope {
			m.clampCursor()
			if snap.Searching && !m.spinnerActive {
				m.spinnerActive = true
				cmds = append(cmds, spinnerTick())
			}
		}
		if snap.Notice != "" && snap.Notice != prev.Notice {
			scope := msg.scope
			cmds = append(cmds, tea.Tick(noticeDuration, func(time.Time) tea.Msg {
				return noticeExpiredMsg{scope: scope}
			}))
		}
		return m, tea.Batch(cmds...)

	case noticeExpiredMsg:
		m.session(msg.scope).DismissNotice()
		return m, nil

	case spinnerTickMsg:
		if m.current().Searching {
			m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerFrames)
			return m, spinnerTick()
		}
		m.spinnerActive = false
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filter != nil {
		return m.handleFilterKey(msg)
	}
	if m.searchActive {
		return m.handleSearchKey(msg)
	}

	s := m.session(m.scope)

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "/":
		m.searchActive = true
		m.searchInput.SetValue(m.current().Draft.Text)
		m.searchInput.CursorEnd()
		m.searchInput.Focus()
		return m, textinput.Blink

	case "tab":
		if m.scope == browse.ScopeReceipts {
			m.scope = browse.ScopeTransactions
		} else {
			m.scope = browse.ScopeReceipts
		}
		m.cursor = 0
		return m, nil

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if m.cursor < len(m.current().Items)-1 {
			m.cursor++
		}
		return m, nil

	case "n", "right":
		s.Next()
		return m, nil

	case "p", "left":
		s.Prev()
		return m, nil

	case "s":
		s.SetSort(nextSortField(m.current().Applied.Sort), m.current().Applied.Order)
		return m, nil

	case "d":
		order := browse.SortDesc
		if m.current().Applied.Order == browse.SortDesc {
			order = browse.SortAsc
		}
		s.SetSort(m.current().Applied.Sort, order)
		return m, nil

	case "f":
		m.filter = newFilterForm(m.current().Draft)
		return m, textinput.Blink

	case "c":
		m.searchInput.SetValue("")
		s.Clear()
		return m, nil

	case "r":
		s.Retry()
		return m, nil

	case "[":
		s.NavigateBack()
		return m, nil

	case "]":
		s.NavigateForward()
		return m, nil

	case "esc":
		s.DismissNotice()
		return m, nil
	}

	return m, nil
}

// handleSearchKey routes keys while the search bar has focus. Every edit goes
// straight to the session draft, which debounces on its own.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.session(m.scope)

	switch msg.String() {
	case "esc":
		m.searchActive = false
		m.searchInput.Blur()
		return m, nil

	case "enter":
		m.searchActive = false
		m.searchInput.Blur()
		s.Apply()
		return m, nil

	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	s.SetDraftText(m.searchInput.Value())
	return m, cmd
}

// nextSortField cycles through the sortable columns.
func nextSortField(f browse.SortField) browse.SortField {
	switch f {
	case browse.SortByDate:
		return browse.SortByAmount
	case browse.SortByAmount:
		return browse.SortByTitle
	case browse.SortByTitle:
		return browse.SortByConfidence
	default:
		return browse.SortByDate
	}
}

func (m *Model) clampCursor() {
	n := len(m.snaps[m.scope].Items)
	if n == 0 {
		m.cursor = 0
		return
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}
}

// Filter form fields, in display order.
const (
	fieldStatus = iota
	fieldCurrency
	fieldProvider
	fieldDateFrom
	fieldDateTo
	fieldAmountMin
	fieldAmountMax
	fieldConfidenceMin
	fieldCount
)

var filterLabels = [fieldCount]string{
	"Status",
	"Currency",
	"Provider",
	"From date",
	"To date",
	"Min amount",
	"Max amount",
	"Min confidence",
}

// filterForm is the modal for staging non-text filters. Edits touch only the
// form until the user confirms; confirming stages every field on the session
// draft and applies in one step.
type filterForm struct {
	inputs [fieldCount]textinput.Model
	focus  int
}

func newFilterForm(draft browse.Criteria) *filterForm {
	f := &filterForm{}
	values := [fieldCount]string{
		strings.Join(draft.Status.Values(), ","),
		strings.Join(draft.Currency.Values(), ","),
		strings.Join(draft.Provider.Values(), ","),
		draft.DateFrom,
		draft.DateTo,
		formatOptFloat(draft.AmountMin),
		formatOptFloat(draft.AmountMax),
		formatOptFloat(draft.ConfidenceMin),
	}
	for i := range f.inputs {
		ti := textinput.New()
		ti.CharLimit = 80
		ti.Width = 30
		ti.SetValue(values[i])
		f.inputs[i] = ti
	}
	f.inputs[0].Focus()
	return f
}

func formatOptFloat(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.filter

	switch msg.String() {
	case "esc":
		m.filter = nil
		return m, nil

	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "enter":
		f.apply(m.session(m.scope))
		m.filter = nil
		return m, nil

	case "tab", "down":
		f.setFocus((f.focus + 1) % fieldCount)
		return m, nil

	case "shift+tab", "up":
		f.setFocus((f.focus + fieldCount - 1) % fieldCount)
		return m, nil
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return m, cmd
}

func (f *filterForm) setFocus(i int) {
	f.inputs[f.focus].Blur()
	f.focus = i
	f.inputs[f.focus].Focus()
}

// apply stages every form field on the session draft and applies.
func (f *filterForm) apply(s *browse.Session) {
	s.SetDraftStatuses(splitCommas(f.inputs[fieldStatus].Value())...)
	s.SetDraftCurrencies(splitCommas(f.inputs[fieldCurrency].Value())...)
	s.SetDraftProviders(splitCommas(f.inputs[fieldProvider].Value())...)
	s.SetDraftDateRange(
		strings.TrimSpace(f.inputs[fieldDateFrom].Value()),
		strings.TrimSpace(f.inputs[fieldDateTo].Value()),
	)
	s.SetDraftAmountRange(
		parseOptFloat(f.inputs[fieldAmountMin].Value()),
		parseOptFloat(f.inputs[fieldAmountMax].Value()),
	)
	s.SetDraftConfidenceMin(parseOptFloat(f.inputs[fieldConfidenceMin].Value()))
	s.Apply()
}

func splitCommas(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseOptFloat(v string) *float64 {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}
