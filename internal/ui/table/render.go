package table

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/greta-mvc/flowmap/internal/ui/styles"
)

const minColumnWidth = 3

var selectionStyle = lipgloss.NewStyle().
	Background(styles.SelectionBackgroundColor).
	Foreground(styles.SelectionIndicatorColor)

// filterVisibleColumns drops columns whose HideBelow exceeds the table width.
func filterVisibleColumns(cols []Column, tableWidth int) []Column {
	out := make([]Column, 0, len(cols))
	for _, c := range cols {
		if c.HideBelow > 0 && tableWidth < c.HideBelow {
			continue
		}
		out = append(out, c)
	}
	return out
}

// calculateColumnWidths gives fixed columns their width and splits what is
// left between flex columns, honoring MinWidth and MaxWidth. Columns are
// separated by one space.
func calculateColumnWidths(cols []Column, innerWidth int) []int {
	widths := make([]int, len(cols))
	if len(cols) == 0 {
		return widths
	}

	remaining := innerWidth - (len(cols) - 1)
	var flex []int
	for i, c := range cols {
		if c.Width > 0 {
			widths[i] = c.Width
			remaining -= c.Width
			continue
		}
		flex = append(flex, i)
	}

	// Hand out space one flex column at a time, capped columns first, so
	// space a capped column cannot take flows to the others.
	for len(flex) > 0 {
		share := max(remaining, 0) / len(flex)
		capped := -1
		for j, i := range flex {
			if maxW := cols[i].MaxWidth; maxW > 0 && share > maxW {
				capped = j
				break
			}
		}
		if capped < 0 {
			extra := max(remaining, 0) % len(flex)
			for j, i := range flex {
				w := share
				if j < extra {
					w++
				}
				widths[i] = max(w, cols[i].MinWidth, minColumnWidth)
			}
			break
		}
		i := flex[capped]
		widths[i] = cols[i].MaxWidth
		remaining -= widths[i]
		flex = append(flex[:capped], flex[capped+1:]...)
	}
	return widths
}

func renderHeader(cols []Column, widths []int) string {
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = alignText(fitCell(col.Header, widths[i]), widths[i], col.Align)
	}
	return strings.Join(parts, " ")
}

// renderRow renders one data row. Selected rows are drawn as plain text on
// the selection background across the full width.
func renderRow(row any, cols []Column, widths []int, selected bool, fullWidth int) string {
	parts := make([]string, len(cols))
	for i, col := range cols {
		cell := fitCell(safeRender(row, col, widths[i], selected), widths[i])
		parts[i] = alignText(cell, widths[i], col.Align)
	}
	line := strings.Join(parts, " ")
	if !selected {
		return line
	}

	return selectionStyle.Render(styles.PadRight(ansi.Strip(line), fullWidth))
}

// fitCell truncates content to width. Plain text goes through runewidth so
// wide runes are never split; styled text falls back to ANSI-aware cutting.
func fitCell(content string, width int) string {
	if lipgloss.Width(content) <= width {
		return content
	}
	if !strings.Contains(content, "\x1b[") {
		return styles.TruncateString(content, width)
	}
	return ansi.Truncate(content, width, "…")
}

// safeRender invokes a Render callback, turning a panic (typically a bad type
// assertion) into a visible placeholder.
func safeRender(row any, col Column, width int, selected bool) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = fmt.Sprintf("!ERR:%v", r)
		}
	}()
	return col.Render(row, width, selected)
}

func renderEmptyState(msg string, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	msg = styles.TruncateString(msg, width)
	line := strings.Repeat(" ", max((width-runewidth.StringWidth(msg))/2, 0)) + styles.MutedStyle.Render(msg)

	topPad := max((height-1)/2, 0)
	lines := make([]string, 0, height)
	for range topPad {
		lines = append(lines, "")
	}
	lines = append(lines, line)
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func alignText(text string, width int, align lipgloss.Position) string {
	textWidth := lipgloss.Width(text)
	if textWidth >= width {
		return text
	}
	padding := width - textWidth

	switch align {
	case lipgloss.Right:
		return strings.Repeat(" ", padding) + text
	case lipgloss.Center:
		left := padding / 2
		return strings.Repeat(" ", left) + text + strings.Repeat(" ", padding-left)
	default:
		return text + strings.Repeat(" ", padding)
	}
}
