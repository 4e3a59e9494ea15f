// Package table provides a config-driven table component.
//
// The table is a pure render component with external state management.
// Callers pass column configurations (with required Render callbacks), row
// data, and dimensions. The component handles the bordered frame, header,
// width-aware truncation (CJK safe), and selection highlighting.
//
//	tbl := table.New(table.Config{
//	    Columns: []table.Column{
//	        {Key: "name", Header: "Name", MinWidth: 10, Render: func(row any, w int, _ bool) string {
//	            return row.(registry.OverviewRow).FirmName
//	        }},
//	    },
//	    ShowHeader: true,
//	    ShowBorder: true,
//	}).SetRows(rows).SetSize(80, 20)
//	view := tbl.ViewWithSelection(cursor)
package table

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a single table column.
//
// Width configuration:
//   - Width: fixed width in cells (0 = flex)
//   - MinWidth: minimum for flex columns (never below 3)
//   - MaxWidth: maximum for flex columns (0 = no limit)
//   - HideBelow: hide the column when the table is narrower than this
type Column struct {
	Key       string
	Header    string
	Width     int
	MinWidth  int
	MaxWidth  int
	HideBelow int
	Align     lipgloss.Position

	// Render returns the cell text. The table truncates anything wider than
	// width, so callbacks may ignore it.
	Render func(row any, width int, selected bool) string
}

// Config defines the complete table configuration.
type Config struct {
	Columns      []Column
	ShowHeader   bool
	ShowBorder   bool
	Title        string
	EmptyMessage string

	// RowZoneID returns a bubblezone ID for a row. When set, each rendered
	// row is zone-marked so clicks can be mapped back with RowAt.
	RowZoneID func(index int, row any) string

	Focused            bool
	FocusedBorderColor lipgloss.TerminalColor
}

// ValidateConfig reports configs the table cannot render.
func ValidateConfig(cfg Config) error {
	if len(cfg.Columns) == 0 {
		return errors.New("table config: at least one column is required")
	}
	for i, col := range cfg.Columns {
		if col.Render == nil {
			if col.Key != "" {
				return fmt.Errorf("table config: column %q has nil Render callback", col.Key)
			}
			return fmt.Errorf("table config: column %d has nil Render callback", i)
		}
	}
	return nil
}
