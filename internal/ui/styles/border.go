package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Border characters (rounded)
const (
	borderTopLeft     = "╭"
	borderTopRight    = "╮"
	borderBottomLeft  = "╰"
	borderBottomRight = "╯"
	borderHorizontal  = "─"
	borderVertical    = "│"
)

// Edge names one side of a frame.
type Edge int

const (
	EdgeTop Edge = iota
	EdgeRight
	EdgeBottom
	EdgeLeft
)

// Mark replaces a single border cell with a glyph. Offset counts from the
// first cell after the corner, so it ranges over the inner width for
// top/bottom and the inner height for left/right.
type Mark struct {
	Edge   Edge
	Offset int
	Glyph  string
	Color  lipgloss.TerminalColor
	// Wrap post-processes the rendered glyph, e.g. to add a mouse zone.
	Wrap func(string) string
}

// Frame draws a rounded border with an optional title in the top edge,
// a filled body, and marks on any edge.
type Frame struct {
	Title       string
	Width       int
	Height      int
	BorderColor lipgloss.TerminalColor
	TitleColor  lipgloss.TerminalColor
	Background  lipgloss.TerminalColor
	Marks       []Mark
}

// Render lays content out inside the frame. Content is clipped to the
// inner box; short content is padded with the background.
func (f Frame) Render(content string) string {
	innerWidth := max(f.Width-2, 1)
	innerHeight := max(f.Height-2, 1)

	var borderColor lipgloss.TerminalColor = BorderDefaultColor
	if f.BorderColor != nil {
		borderColor = f.BorderColor
	}
	borderStyle := lipgloss.NewStyle().Foreground(borderColor)
	titleStyle := lipgloss.NewStyle().Foreground(OverlayTitleColor)
	if f.TitleColor != nil {
		titleStyle = titleStyle.Foreground(f.TitleColor)
	}
	fill := lipgloss.NewStyle()
	if f.Background != nil {
		borderStyle = borderStyle.Background(f.Background)
		fill = fill.Background(f.Background)
	}

	marks := make(map[Edge]map[int]Mark)
	for _, m := range f.Marks {
		if marks[m.Edge] == nil {
			marks[m.Edge] = make(map[int]Mark)
		}
		marks[m.Edge][m.Offset] = m
	}

	lines := make([]string, 0, innerHeight+2)
	lines = append(lines, topBorder(f.Title, innerWidth, marks[EdgeTop], borderStyle, titleStyle))

	contentLines := strings.Split(content, "\n")
	for i := range innerHeight {
		var line string
		if i < len(contentLines) {
			line = ansi.Truncate(contentLines[i], innerWidth, "")
		}
		if w := lipgloss.Width(line); w < innerWidth {
			line += fill.Render(strings.Repeat(" ", innerWidth-w))
		}
		left := borderCell(marks[EdgeLeft], i, borderStyle)
		right := borderCell(marks[EdgeRight], i, borderStyle)
		lines = append(lines, left+line+right)
	}

	lines = append(lines, borderStyle.Render(borderBottomLeft)+
		edgeRun(0, innerWidth, marks[EdgeBottom], borderStyle)+
		borderStyle.Render(borderBottomRight))

	return strings.Join(lines, "\n")
}

// RenderWithTitleBorder renders content with a title embedded in the top border.
// Similar to lazygit's panel style: ╭─ Title ─────╮
func RenderWithTitleBorder(content, title string, width, height int, focused bool, titleColor, focusedBorderColor lipgloss.TerminalColor) string {
	var borderColor lipgloss.TerminalColor = BorderDefaultColor
	if focused {
		borderColor = focusedBorderColor
	}
	return Frame{
		Title:       title,
		Width:       width,
		Height:      height,
		BorderColor: borderColor,
		TitleColor:  titleColor,
	}.Render(content)
}

// topBorder builds ╭─ Title ──╮. The title is cut short before the first
// top mark so marks are never hidden.
func topBorder(title string, innerWidth int, marks map[int]Mark, borderStyle, titleStyle lipgloss.Style) string {
	if title == "" || innerWidth < 4 {
		return borderStyle.Render(borderTopLeft) +
			edgeRun(0, innerWidth, marks, borderStyle) +
			borderStyle.Render(borderTopRight)
	}

	// "─ " + title + " "
	available := innerWidth - 4
	for off := range marks {
		available = min(available, off-3)
	}
	if available < 1 {
		return borderStyle.Render(borderTopLeft) +
			edgeRun(0, innerWidth, marks, borderStyle) +
			borderStyle.Render(borderTopRight)
	}

	displayTitle := TruncateString(title, available)
	start := 3 + lipgloss.Width(displayTitle)

	return borderStyle.Render(borderTopLeft+borderHorizontal+" ") +
		titleStyle.Inherit(borderStyle).Render(displayTitle) +
		borderStyle.Render(" ") +
		edgeRun(start, innerWidth, marks, borderStyle) +
		borderStyle.Render(borderTopRight)
}

// edgeRun renders horizontal border cells [from, to), substituting marks and
// coalescing plain runs into a single styled segment.
func edgeRun(from, to int, marks map[int]Mark, base lipgloss.Style) string {
	var b strings.Builder
	plain := 0
	flush := func() {
		if plain > 0 {
			b.WriteString(base.Render(strings.Repeat(borderHorizontal, plain)))
			plain = 0
		}
	}
	for i := from; i < to; i++ {
		m, ok := marks[i]
		if !ok {
			plain++
			continue
		}
		flush()
		b.WriteString(renderMark(m, base))
	}
	flush()
	return b.String()
}

func borderCell(marks map[int]Mark, offset int, base lipgloss.Style) string {
	if m, ok := marks[offset]; ok {
		return renderMark(m, base)
	}
	return base.Render(borderVertical)
}

func renderMark(m Mark, base lipgloss.Style) string {
	style := base
	if m.Color != nil {
		style = style.Foreground(m.Color).Bold(true)
	}
	glyph := style.Render(m.Glyph)
	if m.Wrap != nil {
		glyph = m.Wrap(glyph)
	}
	return glyph
}
