// Package pagination renders the clickable page-index bar under the overview
// table.
package pagination

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/greta-mvc/flowmap/internal/ui/styles"
)

// DefaultWindow is how many page indices are shown at once.
const DefaultWindow = 10

// PageMsg is emitted when a page index is clicked.
type PageMsg struct {
	Page int
}

var (
	currentStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.SelectionIndicatorColor).
			Background(styles.SelectionBackgroundColor).
			Padding(0, 1)
	pageStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondaryColor).
			Padding(0, 1)
	arrowStyle    = lipgloss.NewStyle().Foreground(styles.TextSecondaryColor)
	disabledStyle = lipgloss.NewStyle().Foreground(styles.TextMutedColor)
)

// Model is the page bar. It holds no page state of its own beyond what the
// caller last gave it.
type Model struct {
	current int
	count   int
	window  int
	prefix  string
}

// New creates a page bar whose zones are namespaced by prefix.
func New(prefix string) Model {
	return Model{current: 1, count: 1, window: DefaultWindow, prefix: prefix}
}

// SetPages updates the current page and page count. A count below one is
// shown as a single page.
func (m Model) SetPages(current, count int) Model {
	m.count = max(count, 1)
	m.current = min(max(current, 1), m.count)
	return m
}

// SetWindow sets how many indices are visible.
func (m Model) SetWindow(n int) Model {
	m.window = max(n, 1)
	return m
}

// Current returns the highlighted page.
func (m Model) Current() int { return m.current }

// Count returns the number of pages.
func (m Model) Count() int { return m.count }

// Visible returns the first and last page index shown. The window is
// aligned to blocks of window pages, so pages 1-10, 11-20, ...
func (m Model) Visible() (first, last int) {
	first = ((m.current-1)/m.window)*m.window + 1
	last = min(first+m.window-1, m.count)
	return first, last
}

// Update maps left clicks on a page index or arrow to a PageMsg.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	mouse, ok := msg.(tea.MouseMsg)
	if !ok || mouse.Button != tea.MouseButtonLeft || mouse.Action != tea.MouseActionRelease {
		return m, nil
	}

	first, last := m.Visible()
	targets := map[string]int{
		m.zoneID("prev"): first - 1,
		m.zoneID("next"): last + 1,
	}
	for p := first; p <= last; p++ {
		targets[m.zoneID(strconv.Itoa(p))] = p
	}
	for id, page := range targets {
		if page < 1 || page > m.count {
			continue
		}
		if z := zone.Get(id); z != nil && z.InBounds(mouse) {
			return m, func() tea.Msg { return PageMsg{Page: page} }
		}
	}
	return m, nil
}

// View renders "‹ 1 2 3 ›" centered in width.
func (m Model) View(width int) string {
	first, last := m.Visible()

	parts := make([]string, 0, last-first+3)
	if first > 1 {
		parts = append(parts, zone.Mark(m.zoneID("prev"), arrowStyle.Render("‹")))
	} else {
		parts = append(parts, disabledStyle.Render("‹"))
	}
	for p := first; p <= last; p++ {
		style := pageStyle
		if p == m.current {
			style = currentStyle
		}
		parts = append(parts, zone.Mark(m.zoneID(strconv.Itoa(p)), style.Render(strconv.Itoa(p))))
	}
	if last < m.count {
		parts = append(parts, zone.Mark(m.zoneID("next"), arrowStyle.Render("›")))
	} else {
		parts = append(parts, disabledStyle.Render("›"))
	}

	bar := strings.Join(parts, " ")
	if width <= 0 {
		return bar
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, bar)
}

func (m Model) zoneID(part string) string {
	return m.prefix + ":page:" + part
}
