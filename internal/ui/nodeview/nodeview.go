// Package nodeview draws a diagram.NodeView as a framed terminal box with
// its anchors on the border and its classes as clickable links.
package nodeview

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/reflow/wordwrap"

	"github.com/greta-mvc/flowmap/internal/diagram"
	"github.com/greta-mvc/flowmap/internal/ui/styles"
)

// Canvas units covered by one terminal cell.
const (
	UnitsPerColumn = 5
	UnitsPerRow    = 8
)

// Anchor glyphs.
const (
	targetGlyph  = "○"
	sourceGlyph  = "●"
	pendingGlyph = "◉"
	resizeGlyph  = "◢"
)

var (
	darkText  = lipgloss.Color("#1f1f1f")
	lightText = lipgloss.Color("#f5f5f5")
)

// Options controls the interactive decorations of a node.
type Options struct {
	// ClassCursor is the index of the keyboard-focused class link, or -1.
	ClassCursor int
	// Pending is the anchor already picked in an unfinished connect step.
	Pending *diagram.AnchorID
}

// CellSize converts a geometry to terminal cells, rounding up so the size
// floor still leaves room for a border and two body lines.
func CellSize(g diagram.Geometry) (width, height int) {
	return ceilDiv(g.Width, UnitsPerColumn), ceilDiv(g.Height, UnitsPerRow)
}

// ToCells converts a canvas point to a terminal cell, rounding down.
func ToCells(p diagram.Point) (x, y int) {
	return int(p.X) / UnitsPerColumn, int(p.Y) / UnitsPerRow
}

// AnchorMark places an anchor on the frame of a node of geometry g. The
// offset is clamped inside the corners.
func AnchorMark(g diagram.Geometry, a diagram.Anchor) (styles.Edge, int) {
	w, h := CellSize(g)
	x, y := ToCells(a.Position)
	switch a.ID.Side {
	case diagram.SideTop:
		return styles.EdgeTop, clamp(x-1, 0, w-3)
	case diagram.SideRight:
		return styles.EdgeRight, clamp(y-1, 0, h-3)
	case diagram.SideBottom:
		return styles.EdgeBottom, clamp(x-1, 0, w-3)
	default:
		return styles.EdgeLeft, clamp(y-1, 0, h-3)
	}
}

// AnchorCell returns the cell of an anchor relative to the node's top-left
// corner, matching where Render draws it.
func AnchorCell(g diagram.Geometry, a diagram.Anchor) (x, y int) {
	w, h := CellSize(g)
	edge, off := AnchorMark(g, a)
	switch edge {
	case styles.EdgeTop:
		return off + 1, 0
	case styles.EdgeRight:
		return w - 1, off + 1
	case styles.EdgeBottom:
		return off + 1, h - 1
	default:
		return 0, off + 1
	}
}

// Render draws the node.
func Render(v diagram.NodeView, opts Options) string {
	w, h := CellSize(v.Geometry)
	innerWidth := max(w-2, 1)

	bg := lipgloss.Color(v.Color.String())
	fg := darkText
	if !v.Color.IsLight() {
		fg = lightText
	}
	base := lipgloss.NewStyle().Background(bg).Foreground(fg)

	borderColor := lipgloss.TerminalColor(styles.BorderDefaultColor)
	if v.Selected {
		borderColor = styles.BorderHighlightFocusColor
	}

	marks := make([]styles.Mark, 0, len(v.Anchors)+1)
	for _, a := range v.Anchors {
		edge, off := AnchorMark(v.Geometry, a)
		glyph, color := targetGlyph, lipgloss.TerminalColor(styles.AnchorTargetColor)
		if a.ID.Role == diagram.RoleSource {
			glyph, color = sourceGlyph, styles.AnchorSourceColor
		}
		if opts.Pending != nil && *opts.Pending == a.ID {
			glyph = pendingGlyph
		}
		id := AnchorZoneID(v.ID, a.ID)
		marks = append(marks, styles.Mark{
			Edge:   edge,
			Offset: off,
			Glyph:  glyph,
			Color:  color,
			Wrap:   func(s string) string { return zone.Mark(id, s) },
		})
	}
	if v.Selected {
		id := ResizeZoneID(v.ID)
		marks = append(marks, styles.Mark{
			Edge:   styles.EdgeBottom,
			Offset: w - 3,
			Glyph:  resizeGlyph,
			Color:  styles.BorderHighlightFocusColor,
			Wrap:   func(s string) string { return zone.Mark(id, s) },
		})
	}

	frame := styles.Frame{
		Width:       w,
		Height:      h,
		BorderColor: borderColor,
		Background:  bg,
		Marks:       marks,
	}
	return frame.Render(strings.Join(body(v, opts, innerWidth, base), "\n"))
}

func body(v diagram.NodeView, opts Options, width int, base lipgloss.Style) []string {
	title := styles.TruncateString(v.Title, max(width-len(strconv.Itoa(v.Code))-2, 1))
	lines := []string{
		base.Bold(true).Render(title) + base.Render(" ") + base.Faint(true).Render("#"+strconv.Itoa(v.Code)),
		base.Faint(true).Render("Classes"),
	}

	link := base.Underline(true)
	for i, c := range v.Classes {
		prefix := base.Render(" ")
		if i == opts.ClassCursor {
			prefix = base.Bold(true).Render(">")
		}
		name := styles.TruncateString(c.Class.Name, max(width-1, 1))
		lines = append(lines, prefix+zone.Mark(ClassZoneID(v.ID, c.Class.ID), link.Render(name)))
	}

	if v.ThemesVisible {
		lines = append(lines, base.Faint(true).Render("Themes"))
		names := make([]string, 0, len(v.Themes))
		for _, t := range v.Themes {
			names = append(names, "#"+t.Name)
		}
		if len(names) > 0 {
			for _, line := range strings.Split(wordwrap.String(strings.Join(names, " "), width), "\n") {
				lines = append(lines, base.Italic(true).Render(styles.TruncateString(line, width)))
			}
		}
	}
	return lines
}

// ClassZoneID names the bubblezone mark around a class line.
func ClassZoneID(id diagram.NodeID, classID int) string {
	return fmt.Sprintf("node:%s:class:%d", id, classID)
}

// AnchorZoneID names the bubblezone mark on an anchor cell.
func AnchorZoneID(id diagram.NodeID, anchor diagram.AnchorID) string {
	return "node:" + string(id) + ":anchor:" + anchor.String()
}

// ResizeZoneID names the bubblezone mark on the resize handle.
func ResizeZoneID(id diagram.NodeID) string {
	return "node:" + string(id) + ":resize"
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
