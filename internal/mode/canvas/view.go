package canvas

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"

	"github.com/greta-mvc/flowmap/internal/diagram"
	"github.com/greta-mvc/flowmap/internal/mode/shared"
	"github.com/greta-mvc/flowmap/internal/ui/nodeview"
	"github.com/greta-mvc/flowmap/internal/ui/overlay"
	"github.com/greta-mvc/flowmap/internal/ui/styles"
)

const edgeGlyph = '·'

var (
	edgeStyle          = lipgloss.NewStyle().Foreground(styles.TextMutedColor)
	edgeHighlightStyle = lipgloss.NewStyle().Foreground(styles.BorderHighlightFocusColor).Bold(true)
)

// View renders the mode.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	view := lipgloss.JoinVertical(lipgloss.Left,
		m.header(),
		zone.Mark(areaZoneID, m.renderArea()),
		m.statusLine(),
	)

	switch m.overlay {
	case overlayPicker:
		return m.picker.Overlay(view)
	case overlayDetail:
		return overlay.Place(overlay.Config{Width: m.width, Height: m.height, Position: overlay.Center}, m.detailView(), view)
	case overlayEdges:
		return overlay.Place(overlay.Config{Width: m.width, Height: m.height, Position: overlay.Center}, m.edgesView(), view)
	}
	return view
}

func (m Model) header() string {
	var hint string
	switch m.step {
	case connectSource:
		hint = "connect from " + m.nodeName(m.from.Node) + ": pick a source side (h/j/k/l) · esc cancel"
	case connectTarget:
		hint = "connect: choose the target node (n/p or click), then its side (h/j/k/l) · esc cancel"
	default:
		hint = "n/p select · c color · t themes · e connect · v edges"
	}
	line := styles.HeaderStyle.Render("Classification map") + "  " + styles.MutedStyle.Render(hint)
	return ansi.Truncate(line, m.width, "…")
}

// renderArea composites edges and nodes into the visible part of the
// canvas.
func (m Model) renderArea() string {
	w, h := m.areaSize()
	if m.canvas.Len() == 0 {
		msg := "No classification domains"
		if m.loading {
			msg = "Loading…"
		}
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, styles.MutedStyle.Render(msg))
	}

	area := m.renderEdges(w, h)
	for _, n := range m.drawOrder() {
		pos, _ := m.canvas.Position(n.ID())
		x, y := nodeview.ToCells(pos)
		opts := nodeview.Options{ClassCursor: -1}
		if n.Selected() {
			opts.ClassCursor = m.classCursor
		}
		if m.step == connectTarget && m.from.Node == n.ID() {
			pending := m.from.Anchor
			opts.Pending = &pending
		}
		area = overlay.Place(overlay.Config{
			Width:    w,
			Height:   h,
			Position: overlay.Absolute,
			X:        x - m.panX,
			Y:        y - m.panY,
		}, nodeview.Render(n.Render(), opts), area)
	}
	return area
}

// renderEdges draws every edge as a straight dotted line between its anchor
// cells. Nodes are drawn on top afterwards.
func (m Model) renderEdges(w, h int) string {
	grid := make([][]rune, h)
	highlight := make([][]bool, h)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", w))
		highlight[y] = make([]bool, w)
	}

	for i, e := range m.canvas.Edges() {
		fx, fy, ok := m.endCell(e.From)
		if !ok {
			continue
		}
		tx, ty, ok := m.endCell(e.To)
		if !ok {
			continue
		}
		hl := m.overlay == overlayEdges && i == m.edgeCursor
		plotLine(fx-m.panX, fy-m.panY, tx-m.panX, ty-m.panY, func(x, y int) {
			if x < 0 || y < 0 || x >= w || y >= h {
				return
			}
			grid[y][x] = edgeGlyph
			highlight[y][x] = highlight[y][x] || hl
		})
	}

	lines := make([]string, h)
	for y, row := range grid {
		var b strings.Builder
		for x, r := range row {
			switch {
			case r == ' ':
				b.WriteRune(' ')
			case highlight[y][x]:
				b.WriteString(edgeHighlightStyle.Render(string(r)))
			default:
				b.WriteString(edgeStyle.Render(string(r)))
			}
		}
		lines[y] = b.String()
	}
	return strings.Join(lines, "\n")
}

// endCell returns the canvas cell an edge end is drawn at.
func (m Model) endCell(end diagram.EdgeEnd) (x, y int, ok bool) {
	n, ok := m.canvas.Node(end.Node)
	if !ok {
		return 0, 0, false
	}
	pos, _ := m.canvas.Position(end.Node)
	px, py := nodeview.ToCells(pos)
	for _, a := range n.Anchors().Anchors() {
		if a.ID == end.Anchor {
			ax, ay := nodeview.AnchorCell(n.Geometry(), a)
			return px + ax, py + ay, true
		}
	}
	return 0, 0, false
}

// plotLine walks the cells of a line with Bresenham's algorithm.
func plotLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (m Model) edgesView() string {
	edges := m.canvas.Edges()
	lines := make([]string, 0, len(edges)+2)
	lines = append(lines, styles.HeaderStyle.Render(fmt.Sprintf("Edges (%d)", len(edges))))
	for i, e := range edges {
		prefix := "  "
		if i == m.edgeCursor {
			prefix = styles.SelectionIndicatorStyle.Render("> ")
		}
		lines = append(lines, prefix+fmt.Sprintf("%s ● %s → %s ○ %s",
			m.nodeName(e.From.Node), e.From.Anchor.Side,
			m.nodeName(e.To.Node), e.To.Anchor.Side))
	}
	lines = append(lines, styles.MutedStyle.Render("j/k move  x remove  esc close"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
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
		themes := "hidden"
		if m.vis.Show() {
			themes = "shown"
		}
		parts := []string{
			fmt.Sprintf("%d domains", m.canvas.Len()),
			fmt.Sprintf("%d edges", len(m.canvas.Edges())),
			"themes " + themes,
		}
		if n, ok := m.canvas.Selected(); ok {
			g := n.Geometry()
			parts = append(parts, fmt.Sprintf("%s %d×%d %s", n.Domain().Name, g.Width, g.Height, n.Color()))
		}
		parts = append(parts, "updated "+shared.LoadedAgo(m.loadedAt, m.services.Clock))
		status = strings.Join(parts, " · ")
	}
	return styles.StatusBarStyle.Render(styles.TruncateString(status, width))
}
