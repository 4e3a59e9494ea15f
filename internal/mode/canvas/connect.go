package canvas

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/greta-mvc/flowmap/internal/diagram"
	"github.com/greta-mvc/flowmap/internal/log"
	"github.com/greta-mvc/flowmap/internal/mode"
	"github.com/greta-mvc/flowmap/internal/ui/toaster"
)

// Connecting reports whether a connect flow is in progress.
func (m Model) Connecting() bool { return m.step != connectIdle }

func (m Model) startConnect() (Model, tea.Cmd) {
	n, ok := m.canvas.Selected()
	if !ok {
		return m, mode.Toast("Select a node first", toaster.StyleInfo)
	}
	m.step = connectSource
	m.from = diagram.EdgeEnd{Node: n.ID()}
	log.Debug(log.CatDiagram, "connect started", "node", n.ID())
	return m, nil
}

// updateConnect handles keys while connecting. The source side is picked on
// the node that was selected when the flow started; afterwards n/p move the
// selection to the target node and a side key finishes the edge.
func (m Model) updateConnect(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Deselect) {
		m.step = connectIdle
		log.Debug(log.CatDiagram, "connect cancelled")
		return m, nil
	}

	side, isSide := m.sideFor(msg)
	switch m.step {
	case connectSource:
		if isSide {
			m.from.Anchor = diagram.AnchorID{Side: side, Role: diagram.RoleSource}
			m.step = connectTarget
		}
	case connectTarget:
		switch {
		case key.Matches(msg, m.keys.Next):
			m.selectNext(1)
		case key.Matches(msg, m.keys.Prev):
			m.selectNext(-1)
		case isSide:
			n, ok := m.canvas.Selected()
			if !ok {
				return m, nil
			}
			return m.finishConnect(diagram.EdgeEnd{
				Node:   n.ID(),
				Anchor: diagram.AnchorID{Side: side, Role: diagram.RoleTarget},
			})
		}
	}
	return m, nil
}

func (m Model) sideFor(msg tea.KeyMsg) (diagram.Side, bool) {
	switch {
	case key.Matches(msg, m.anchorKeys.Top):
		return diagram.SideTop, true
	case key.Matches(msg, m.anchorKeys.Right):
		return diagram.SideRight, true
	case key.Matches(msg, m.anchorKeys.Bottom):
		return diagram.SideBottom, true
	case key.Matches(msg, m.anchorKeys.Left):
		return diagram.SideLeft, true
	}
	return 0, false
}

// clickAnchor drives the connect flow from the mouse: a source anchor starts
// an edge, a target anchor completes one.
func (m Model) clickAnchor(id diagram.NodeID, anchor diagram.AnchorID) (Model, tea.Cmd) {
	m.selectNode(id)
	if anchor.Role == diagram.RoleSource {
		m.step = connectTarget
		m.from = diagram.EdgeEnd{Node: id, Anchor: anchor}
		log.Debug(log.CatDiagram, "connect started", "from", m.from)
		return m, nil
	}
	if m.step == connectTarget {
		return m.finishConnect(diagram.EdgeEnd{Node: id, Anchor: anchor})
	}
	return m, nil
}

func (m Model) finishConnect(to diagram.EdgeEnd) (Model, tea.Cmd) {
	m.step = connectIdle
	e, err := m.canvas.Connect(m.from, to)
	if err != nil {
		log.ErrorErr(log.CatDiagram, "connect failed", err, "from", m.from, "to", to)
		return m, mode.Toast("Cannot connect: "+err.Error(), toaster.StyleError)
	}
	log.Info(log.CatDiagram, "edge added", "edge", e.ID, "from", e.From, "to", e.To)
	return m, mode.Toast("Connected "+m.nodeName(e.From.Node)+" → "+m.nodeName(e.To.Node), toaster.StyleSuccess)
}

// disconnectLast removes the newest edge touching the selected node, or the
// newest edge overall when nothing is selected.
func (m Model) disconnectLast() (Model, tea.Cmd) {
	edges := m.canvas.Edges()
	sel, hasSel := m.canvas.Selected()
	for i := len(edges) - 1; i >= 0; i-- {
		e := edges[i]
		if hasSel && e.From.Node != sel.ID() && e.To.Node != sel.ID() {
			continue
		}
		return m.removeEdge(e)
	}
	return m, mode.Toast("No edge to remove", toaster.StyleInfo)
}

func (m Model) removeEdge(e diagram.Edge) (Model, tea.Cmd) {
	if !m.canvas.Disconnect(e.ID) {
		return m, nil
	}
	log.Info(log.CatDiagram, "edge removed", "edge", e.ID)
	m.edgeCursor = min(m.edgeCursor, max(len(m.canvas.Edges())-1, 0))
	return m, mode.Toast("Removed "+m.nodeName(e.From.Node)+" → "+m.nodeName(e.To.Node), toaster.StyleInfo)
}

func (m Model) updateEdges(msg tea.KeyMsg) (Model, tea.Cmd) {
	edges := m.canvas.Edges()
	switch {
	case key.Matches(msg, m.keys.PanUp):
		m.edgeCursor = max(m.edgeCursor-1, 0)
	case key.Matches(msg, m.keys.PanDown):
		m.edgeCursor = min(m.edgeCursor+1, max(len(edges)-1, 0))
	case key.Matches(msg, m.keys.Disconnect):
		if m.edgeCursor >= len(edges) {
			return m, nil
		}
		var cmd tea.Cmd
		m, cmd = m.removeEdge(edges[m.edgeCursor])
		if len(m.canvas.Edges()) == 0 {
			m.overlay = overlayNone
		}
		return m, cmd
	case key.Matches(msg, m.keys.Edges), key.Matches(msg, m.keys.Deselect):
		m.overlay = overlayNone
	}
	return m, nil
}
