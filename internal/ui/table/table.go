package table

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/greta-mvc/flowmap/internal/ui/styles"
)

// Model holds table rendering state. Selection lives with the caller; use
// View for no selection or ViewWithSelection to highlight a row.
type Model struct {
	config Config
	rows   []any
	width  int
	height int
}

// New creates a table with the given configuration.
// Panics if the configuration is invalid (no columns or missing Render callbacks).
func New(cfg Config) Model {
	if err := ValidateConfig(cfg); err != nil {
		panic(err)
	}
	if cfg.EmptyMessage == "" {
		cfg.EmptyMessage = "No data"
	}
	return Model{config: cfg}
}

// SetRows updates the row data.
func (m Model) SetRows(rows []any) Model {
	m.rows = rows
	return m
}

// SetConfig replaces the configuration, e.g. to change Focused or Title.
func (m Model) SetConfig(cfg Config) Model {
	if cfg.EmptyMessage == "" {
		cfg.EmptyMessage = "No data"
	}
	m.config = cfg
	return m
}

// SetSize sets the available dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// RowCount returns the number of rows in the table.
func (m Model) RowCount() int {
	return len(m.rows)
}

// RowAt maps a left click to the row under it. It requires RowZoneID.
func (m Model) RowAt(msg tea.MouseMsg) (int, bool) {
	if m.config.RowZoneID == nil {
		return 0, false
	}
	for i, row := range m.rows {
		id := m.config.RowZoneID(i, row)
		if id == "" {
			continue
		}
		if z := zone.Get(id); z != nil && z.InBounds(msg) {
			return i, true
		}
	}
	return 0, false
}

// View renders the table without selection highlighting.
func (m Model) View() string {
	return m.render(-1)
}

// ViewWithSelection renders the table with the specified row highlighted.
// Out-of-bounds selection index is treated as no selection.
func (m Model) ViewWithSelection(selectedIndex int) string {
	return m.render(selectedIndex)
}

func (m Model) render(selectedIndex int) string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	innerWidth, innerHeight := m.width, m.height
	if m.config.ShowBorder {
		innerWidth -= 2
		innerHeight -= 2
	}
	if innerWidth <= 0 || innerHeight <= 0 {
		return ""
	}

	cols := filterVisibleColumns(m.config.Columns, m.width)
	widths := calculateColumnWidths(cols, innerWidth)

	var content string
	if len(m.rows) == 0 {
		var header []string
		if m.config.ShowHeader {
			header = append(header, styles.MutedStyle.Render(renderHeader(cols, widths)))
		}
		content = strings.Join(append(header, renderEmptyState(m.config.EmptyMessage, innerWidth, innerHeight-len(header))), "\n")
	} else {
		content = m.renderRows(cols, widths, innerWidth, innerHeight, selectedIndex)
	}

	if !m.config.ShowBorder {
		return content
	}

	focusColor := m.config.FocusedBorderColor
	if focusColor == nil {
		focusColor = styles.BorderHighlightFocusColor
	}
	return styles.RenderWithTitleBorder(content, m.config.Title, m.width, m.height, m.config.Focused, styles.OverlayTitleColor, focusColor)
}

func (m Model) renderRows(cols []Column, widths []int, innerWidth, innerHeight, selectedIndex int) string {
	lines := make([]string, 0, innerHeight)
	contentHeight := innerHeight
	if m.config.ShowHeader {
		lines = append(lines, styles.MutedStyle.Render(renderHeader(cols, widths)))
		contentHeight--
	}

	// Keep the selected row on screen when there are more rows than lines.
	start := 0
	if selectedIndex >= contentHeight {
		start = selectedIndex - contentHeight + 1
	}
	end := min(len(m.rows), start+contentHeight)

	for i := start; i < end; i++ {
		line := renderRow(m.rows[i], cols, widths, i == selectedIndex, innerWidth)
		if m.config.RowZoneID != nil {
			if id := m.config.RowZoneID(i, m.rows[i]); id != "" {
				line = zone.Mark(id, line)
			}
		}
		lines = append(lines, line)
	}
	for len(lines) < innerHeight {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
