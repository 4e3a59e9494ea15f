// Package overview implements the corporation registry listing: a keyword
// search over one of five categories, a paged table and a page-index bar.
package overview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/greta-mvc/flowmap/internal/keys"
	"github.com/greta-mvc/flowmap/internal/log"
	"github.com/greta-mvc/flowmap/internal/mode"
	"github.com/greta-mvc/flowmap/internal/mode/shared"
	"github.com/greta-mvc/flowmap/internal/registry"
	"github.com/greta-mvc/flowmap/internal/ui/pagination"
	"github.com/greta-mvc/flowmap/internal/ui/styles"
	"github.com/greta-mvc/flowmap/internal/ui/table"
	"github.com/greta-mvc/flowmap/internal/ui/toaster"
)

const (
	categoryZoneID = "overview:category"
	inputZoneID    = "overview:input"

	// header (search bar + suggestions) and footer (pager + status)
	chromeHeight = 4
)

var (
	categoryStyle = lipgloss.NewStyle().
			Foreground(styles.SelectionIndicatorColor).
			Background(styles.SelectionBackgroundColor).
			Padding(0, 1)
	suggestionStyle = lipgloss.NewStyle().Foreground(styles.TextSecondaryColor)
)

// Model holds the overview mode state.
type Model struct {
	services mode.Services
	ctx      context.Context
	keys     keys.OverviewKeyMap

	list   *registry.Controller
	search *registry.Search

	input       textinput.Model
	table       table.Model
	pager       pagination.Model
	cursor      int
	suggestions []registry.SearchItem

	loading  bool
	lastErr  error
	loadedAt time.Time

	width  int
	height int
}

// New creates the overview mode.
func New(services mode.Services) Model {
	ti := textinput.New()
	ti.Placeholder = "search corporations"
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(styles.TextPlaceholderColor)
	ti.Prompt = "/ "
	ti.CharLimit = 100
	ti.Cursor.SetMode(cursor.CursorStatic)

	debounce := time.Duration(0)
	if services.Config != nil {
		debounce = services.Config.Registry.SearchDebounce
	}
	if services.Clock == nil {
		services.Clock = shared.RealClock{}
	}

	return Model{
		services: services,
		ctx:      context.Background(),
		keys:     keys.DefaultOverviewKeyMap(),
		list:     registry.NewController(),
		search:   registry.NewSearch(debounce),
		input:    ti,
		table:    table.New(tableConfig(true)),
		pager:    pagination.New("overview"),
	}
}

// Init loads the first page.
func (m Model) Init() tea.Cmd {
	return m.load()
}

// Capturing reports whether the search input has focus.
func (m Model) Capturing() bool {
	return m.input.Focused()
}

// HandleDataChanged reloads the current page.
func (m Model) HandleDataChanged() (Model, tea.Cmd) {
	cmd := m.load()
	return m, cmd
}

// List exposes the list controller.
func (m Model) List() *registry.Controller { return m.list }

// Cursor returns the highlighted row index.
func (m Model) Cursor() int { return m.cursor }

// Loading reports whether a page fetch is outstanding.
func (m Model) Loading() bool { return m.loading }

// SetSize handles terminal resize events.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	m.input.Width = max(width-lipgloss.Width(m.categoryLabel())-6, 10)
	m.table = m.table.SetSize(width, max(height-chromeHeight, 3))
	return m
}

// load issues a fetch for the controller's current query. It goes through
// the search coordinator so it supersedes any pending keystroke or fetch.
func (m *Model) load() tea.Cmd {
	seq := m.search.Bump()
	ctx, _ := m.search.Start(m.ctx, seq)
	m.loading = true
	return fetchPage(ctx, m.services.Source, seq, m.list.Query())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.input.Focused() {
			return m.handleInputKey(msg)
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case searchTickMsg:
		ctx, ok := m.search.Start(m.ctx, msg.seq)
		if !ok {
			return m, nil
		}
		m.loading = true
		cmds := []tea.Cmd{fetchPage(ctx, m.services.Source, msg.seq, m.list.Query())}
		if kw := strings.TrimSpace(m.list.Keyword()); kw != "" {
			cmds = append(cmds, fetchSuggestions(ctx, m.services.Source, msg.seq, kw, m.list.Category()))
		} else {
			m.suggestions = nil
		}
		return m, tea.Batch(cmds...)

	case pageLoadedMsg:
		return m.handlePageLoaded(msg)

	case suggestionsMsg:
		if msg.seq != m.search.Seq() {
			return m, nil
		}
		if msg.err != nil {
			log.Debug(log.CatRegistry, "suggestions failed", "error", msg.err)
			return m, nil
		}
		m.suggestions = msg.items
		return m, nil

	case pagination.PageMsg:
		return m.goToPage(msg.Page)
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Blur) {
		m.input.Blur()
		m.table = m.table.SetConfig(tableConfig(true))
		if msg.Type == tea.KeyEnter {
			// Skip the remaining debounce.
			m.list.SetKeyword(strings.TrimSpace(m.input.Value()))
			cmd := m.load()
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if !m.list.SetKeyword(strings.TrimSpace(m.input.Value())) {
		return m, cmd
	}
	m.cursor = 0
	m.search.Cancel()
	seq := m.search.Bump()
	return m, tea.Batch(cmd, debounceSearch(seq, m.search.Debounce()))
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.cursor = min(m.cursor+1, max(len(m.list.Rows())-1, 0))
	case key.Matches(msg, m.keys.PrevPage):
		return m.goToPage(m.list.CurrentPage() - 1)
	case key.Matches(msg, m.keys.NextPage):
		return m.goToPage(m.list.CurrentPage() + 1)
	case key.Matches(msg, m.keys.FocusSearch):
		m.table = m.table.SetConfig(tableConfig(false))
		cmd := m.input.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Category):
		return m.cycleCategory()
	case key.Matches(msg, m.keys.Refresh):
		if inv, ok := m.services.Source.(mode.Invalidator); ok {
			inv.Invalidate(m.ctx)
		}
		cmd := m.load()
		return m, cmd
	case key.Matches(msg, m.keys.Yank):
		return m.yank()
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if z := zone.Get(categoryZoneID); z != nil && z.InBounds(msg) {
		return m.cycleCategory()
	}
	if z := zone.Get(inputZoneID); z != nil && z.InBounds(msg) {
		m.table = m.table.SetConfig(tableConfig(false))
		cmd := m.input.Focus()
		return m, cmd
	}
	if i, ok := m.table.RowAt(msg); ok {
		m.cursor = i
		return m, nil
	}
	var cmd tea.Cmd
	m.pager = m.pager.SetPages(m.list.CurrentPage(), m.list.PageCount())
	m.pager, cmd = m.pager.Update(msg)
	return m, cmd
}

func (m Model) goToPage(n int) (Model, tea.Cmd) {
	before := m.list.CurrentPage()
	if m.list.GoToPage(n) == before {
		return m, nil
	}
	m.cursor = 0
	cmd := m.load()
	return m, cmd
}

func (m Model) cycleCategory() (Model, tea.Cmd) {
	m.list.SetCategory(m.list.Category().Next())
	m.input.Width = max(m.width-lipgloss.Width(m.categoryLabel())-6, 10)
	m.cursor = 0
	m.suggestions = nil
	log.Debug(log.CatRegistry, "category changed", "category", m.list.Category())
	cmd := m.load()
	return m, cmd
}

func (m Model) yank() (Model, tea.Cmd) {
	rows := m.list.Rows()
	if m.cursor >= len(rows) || m.services.Clipboard == nil {
		return m, nil
	}
	code := rows[m.cursor].CorpCode
	if err := m.services.Clipboard.Copy(code); err != nil {
		log.ErrorErr(log.CatUI, "copy failed", err, "corpCode", code)
		return m, mode.Toast("Copy failed: "+err.Error(), toaster.StyleError)
	}
	return m, mode.Toast("Copied "+code, toaster.StyleSuccess)
}

func (m Model) handlePageLoaded(msg pageLoadedMsg) (Model, tea.Cmd) {
	if !m.search.Accept(msg.seq) {
		return m, nil
	}
	m.loading = false

	if msg.err != nil {
		if errors.Is(msg.err, context.Canceled) {
			return m, nil
		}
		m.lastErr = msg.err
		log.ErrorErr(log.CatRegistry, "loading overview page failed", msg.err, "page", msg.query.Page, "keyword", msg.query.Keyword)
		return m, mode.Toast("Loading failed: "+msg.err.Error(), toaster.StyleError)
	}

	m.lastErr = nil
	m.loadedAt = m.services.Clock.Now()
	moved := m.list.Load(msg.data)
	m.cursor = min(m.cursor, max(len(msg.data.Data)-1, 0))
	log.Debug(log.CatRegistry, "page loaded", "page", msg.query.Page, "rows", len(msg.data.Data), "total", msg.data.Length)

	if moved {
		// The result set shrank below the current page.
		cmd := m.load()
		return m, cmd
	}
	return m, nil
}

func (m Model) categoryLabel() string {
	return zone.Mark(categoryZoneID, categoryStyle.Render(m.list.Category().Label()+" ▾"))
}

// View renders the mode.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	rows := m.list.Rows()
	anyRows := make([]any, len(rows))
	for i, r := range rows {
		anyRows[i] = r
	}
	tbl := m.table.SetRows(anyRows)

	searchBar := lipgloss.JoinHorizontal(lipgloss.Center, m.categoryLabel(), " ", zone.Mark(inputZoneID, m.input.View()))

	pager := m.pager.SetPages(m.list.CurrentPage(), m.list.PageCount())

	return lipgloss.JoinVertical(lipgloss.Left,
		searchBar,
		m.suggestionLine(),
		tbl.ViewWithSelection(m.cursor),
		pager.View(m.width),
		m.statusLine(),
	)
}

func (m Model) suggestionLine() string {
	if !m.input.Focused() || len(m.suggestions) == 0 {
		return ""
	}
	names := make([]string, len(m.suggestions))
	for i, s := range m.suggestions {
		names[i] = s.FirmName
	}
	return suggestionStyle.Render(styles.TruncateString("  "+strings.Join(names, " · "), m.width))
}

func (m Model) statusLine() string {
	width := max(m.width-2, 1)
	var status string
	switch {
	case m.loading:
		status = "loading…"
	case m.lastErr != nil:
		return styles.StatusBarStyle.Render(styles.ErrorStyle.Render(styles.TruncateString("error: "+m.lastErr.Error(), width)))
	default:
		status = fmt.Sprintf("%d corporations · page %d/%d · updated %s",
			m.list.TotalRows(), m.list.CurrentPage(), max(m.list.PageCount(), 1),
			shared.LoadedAgo(m.loadedAt, m.services.Clock))
	}
	return styles.StatusBarStyle.Render(styles.TruncateString(status, width))
}
