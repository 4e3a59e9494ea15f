// Package canvas implements the classification diagram: one node per
// classification domain, anchors for linking them, per-node resize and
// recolor, and a session-wide theme visibility toggle.
package canvas

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/greta-mvc/flowmap/internal/config"
	"github.com/greta-mvc/flowmap/internal/diagram"
	"github.com/greta-mvc/flowmap/internal/keys"
	"github.com/greta-mvc/flowmap/internal/log"
	"github.com/greta-mvc/flowmap/internal/mode"
	"github.com/greta-mvc/flowmap/internal/mode/shared"
	"github.com/greta-mvc/flowmap/internal/pubsub"
	"github.com/greta-mvc/flowmap/internal/registry"
	"github.com/greta-mvc/flowmap/internal/ui/colorpicker"
	"github.com/greta-mvc/flowmap/internal/ui/nodeview"
	"github.com/greta-mvc/flowmap/internal/ui/toaster"
)

const (
	areaZoneID = "canvas:area"

	// header (title + hint) and footer (status)
	chromeHeight = 2

	resizeStepX = 4 * nodeview.UnitsPerColumn
	resizeStepY = 2 * nodeview.UnitsPerRow
	panStepX    = 4
	panStepY    = 2
)

type overlayKind int

const (
	overlayNone overlayKind = iota
	overlayPicker
	overlayDetail
	overlayEdges
)

// connectStep tracks the keyboard connect flow.
type connectStep int

const (
	connectIdle   connectStep = iota
	connectSource             // choosing a source side on the selected node
	connectTarget             // choosing the target node, then its side
)

type drag struct {
	node diagram.NodeID
	x, y int
}

// Model holds the diagram mode state.
type Model struct {
	services   mode.Services
	ctx        context.Context
	cancel     context.CancelFunc
	keys       keys.DiagramKeyMap
	anchorKeys keys.AnchorKeyMap

	canvas    *diagram.Canvas
	vis       *diagram.VisibilityStore
	visEvents *pubsub.ContinuousListener[bool]
	classes   map[int]diagram.IndustryClass
	industry  []registry.IndustryInfo

	panX, panY  int
	classCursor int

	overlay    overlayKind
	picker     colorpicker.Model
	detail     viewport.Model
	detailName string
	edgeCursor int

	step     connectStep
	from     diagram.EdgeEnd
	dragging *drag

	loading  bool
	lastErr  error
	loadedAt time.Time

	width  int
	height int
}

// New creates the diagram mode. Nodes take their default size and color
// from the diagram config section.
func New(services mode.Services) Model {
	cfg := config.Defaults()
	if services.Config != nil {
		cfg = *services.Config
	}
	if services.Clock == nil {
		services.Clock = shared.RealClock{}
	}
	if services.Visibility == nil {
		services.Visibility = diagram.NewVisibilityStore()
	}
	vis := services.Visibility

	ctx, cancel := context.WithCancel(context.Background())
	cv := diagram.NewCanvas(vis,
		diagram.WithNodeDefaults(cfg.Diagram.NodeGeometry(), cfg.Diagram.NodeColor()),
		diagram.WithColumns(cfg.Diagram.Columns),
	)

	return Model{
		services:    services,
		ctx:         ctx,
		cancel:      cancel,
		keys:        keys.DefaultDiagramKeyMap(),
		anchorKeys:  keys.DefaultAnchorKeyMap(),
		canvas:      cv,
		vis:         vis,
		visEvents:   pubsub.NewContinuousListener[bool](ctx, vis.Broker()),
		classes:     make(map[int]diagram.IndustryClass),
		classCursor: -1,
		picker:      colorpicker.New(),
		detail:      viewport.New(0, 0),
		loading:     true,
	}
}

// Init loads the domains and starts listening for visibility changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(fetchDomains(m.ctx, m.services.Source), m.visEvents.Listen())
}

// Close stops background listeners.
func (m Model) Close() {
	m.cancel()
}

// Capturing reports whether the color picker is taking typed hex input.
func (m Model) Capturing() bool {
	return m.overlay == overlayPicker && m.picker.InCustomMode()
}

// HandleDataChanged reloads the domains. Geometry and color survive for
// domains that are still present.
func (m Model) HandleDataChanged() (Model, tea.Cmd) {
	m.loading = true
	return m, fetchDomains(m.ctx, m.services.Source)
}

// Canvas exposes the diagram.
func (m Model) Canvas() *diagram.Canvas { return m.canvas }

// ClassCursor returns the highlighted class link of the selected node.
func (m Model) ClassCursor() int { return m.classCursor }

// Pan returns the viewport offset in cells.
func (m Model) Pan() (x, y int) { return m.panX, m.panY }

// SetSize handles terminal resize events.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	m.picker = m.picker.SetSize(width, height)
	m.detail.Width, m.detail.Height = detailSize(width, height)
	m.clampPan()
	return m
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case domainsLoadedMsg:
		return m.handleLoaded(msg)

	case pubsub.Event[bool]:
		log.Debug(log.CatDiagram, "theme visibility changed", "show", msg.Payload)
		return m, m.visEvents.Listen()

	case colorpicker.SelectMsg:
		return m.recolor(msg.Hex)

	case colorpicker.CancelMsg:
		m.overlay = overlayNone
		return m, nil

	case tea.KeyMsg:
		switch m.overlay {
		case overlayPicker:
			var cmd tea.Cmd
			m.picker, cmd = m.picker.Update(msg)
			return m, cmd
		case overlayDetail:
			return m.updateDetail(msg)
		case overlayEdges:
			return m.updateEdges(msg)
		}
		if m.step != connectIdle {
			return m.updateConnect(msg)
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		switch m.overlay {
		case overlayPicker:
			var cmd tea.Cmd
			m.picker, cmd = m.picker.Update(msg)
			return m, cmd
		case overlayDetail:
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			return m, cmd
		case overlayEdges:
			return m, nil
		}
		return m.handleMouse(msg)
	}
	return m, nil
}

func (m Model) handleLoaded(msg domainsLoadedMsg) (Model, tea.Cmd) {
	m.loading = false
	err := msg.err
	if err == nil {
		err = m.canvas.SetDomains(msg.domains)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return m, nil
		}
		m.lastErr = err
		log.ErrorErr(log.CatDiagram, "loading domains failed", err)
		return m, mode.Toast("Loading domains failed: "+err.Error(), toaster.StyleError)
	}

	m.lastErr = nil
	m.loadedAt = m.services.Clock.Now()
	m.classes = make(map[int]diagram.IndustryClass, len(msg.classes))
	for _, c := range msg.classes {
		m.classes[c.ID] = c
	}
	m.industry = msg.industry
	m.syncClassCursor(false)
	m.edgeCursor = min(m.edgeCursor, max(len(m.canvas.Edges())-1, 0))
	if m.step != connectIdle {
		if _, ok := m.canvas.Node(m.from.Node); !ok {
			m.step = connectIdle
		}
	}
	m.clampPan()
	log.Info(log.CatDiagram, "domains loaded", "nodes", m.canvas.Len(), "classes", len(msg.classes))
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Next):
		m.selectNext(1)
	case key.Matches(msg, m.keys.Prev):
		m.selectNext(-1)
	case key.Matches(msg, m.keys.Deselect):
		m.canvas.ClearSelection()
		m.classCursor = -1

	case key.Matches(msg, m.keys.Narrower):
		m.resize(-resizeStepX, 0)
	case key.Matches(msg, m.keys.Wider):
		m.resize(resizeStepX, 0)
	case key.Matches(msg, m.keys.Shorter):
		m.resize(0, -resizeStepY)
	case key.Matches(msg, m.keys.Taller):
		m.resize(0, resizeStepY)
	case key.Matches(msg, m.keys.Relayout):
		m.canvas.Layout()
		m.panX, m.panY = 0, 0

	case key.Matches(msg, m.keys.PanUp):
		m.pan(0, -panStepY)
	case key.Matches(msg, m.keys.PanDown):
		m.pan(0, panStepY)
	case key.Matches(msg, m.keys.PanLeft):
		m.pan(-panStepX, 0)
	case key.Matches(msg, m.keys.PanRight):
		m.pan(panStepX, 0)

	case key.Matches(msg, m.keys.Color):
		return m.openPicker()
	case key.Matches(msg, m.keys.Themes):
		show := m.vis.Toggle()
		log.Info(log.CatDiagram, "themes toggled", "show", show)
	case key.Matches(msg, m.keys.ClassUp):
		m.moveClassCursor(-1)
	case key.Matches(msg, m.keys.ClassDown):
		m.moveClassCursor(1)
	case key.Matches(msg, m.keys.OpenClass):
		n, ok := m.canvas.Selected()
		if !ok {
			return m, nil
		}
		classes := n.Domain().Classes
		if m.classCursor < 0 || m.classCursor >= len(classes) {
			return m, nil
		}
		return m.openClass(classes[m.classCursor])

	case key.Matches(msg, m.keys.Connect):
		return m.startConnect()
	case key.Matches(msg, m.keys.Disconnect):
		return m.disconnectLast()
	case key.Matches(msg, m.keys.Edges):
		if len(m.canvas.Edges()) == 0 {
			return m, mode.Toast("No edges yet", toaster.StyleInfo)
		}
		m.overlay = overlayEdges
		m.edgeCursor = min(m.edgeCursor, len(m.canvas.Edges())-1)
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.pan(0, -panStepY)
		return m, nil
	case tea.MouseButtonWheelDown:
		m.pan(0, panStepY)
		return m, nil
	case tea.MouseButtonWheelLeft:
		m.pan(-panStepX, 0)
		return m, nil
	case tea.MouseButtonWheelRight:
		m.pan(panStepX, 0)
		return m, nil
	}

	if m.dragging != nil {
		switch msg.Action {
		case tea.MouseActionMotion:
			m.dragTo(msg.X, msg.Y)
		case tea.MouseActionRelease:
			m.dragTo(msg.X, msg.Y)
			m.dragging = nil
		}
		return m, nil
	}

	if msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if msg.Action == tea.MouseActionPress {
		if n, ok := m.canvas.Selected(); ok {
			if z := zone.Get(nodeview.ResizeZoneID(n.ID())); z != nil && z.InBounds(msg) {
				m.dragging = &drag{node: n.ID(), x: msg.X, y: msg.Y}
			}
		}
		return m, nil
	}
	if msg.Action != tea.MouseActionRelease {
		return m, nil
	}

	if id, anchor, ok := m.anchorAt(msg); ok {
		return m.clickAnchor(id, anchor)
	}
	if id, class, ok := m.classAt(msg); ok {
		m.selectNode(id)
		n, _ := m.canvas.Node(id)
		m.classCursor = slices.IndexFunc(n.Domain().Classes, func(c diagram.IndustryClass) bool { return c.ID == class.ID })
		return m.openClass(class)
	}

	z := zone.Get(areaZoneID)
	if z == nil {
		return m, nil
	}
	x, y := z.Pos(msg)
	if x < 0 || y < 0 {
		return m, nil
	}
	if id, ok := m.NodeAt(x, y); ok {
		m.selectNode(id)
	} else if m.step == connectIdle {
		m.canvas.ClearSelection()
		m.classCursor = -1
	}
	return m, nil
}

// NodeAt returns the topmost node drawn at viewport cell (x, y).
func (m Model) NodeAt(x, y int) (diagram.NodeID, bool) {
	x += m.panX
	y += m.panY
	nodes := m.drawOrder()
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		pos, _ := m.canvas.Position(n.ID())
		nx, ny := nodeview.ToCells(pos)
		w, h := nodeview.CellSize(n.Geometry())
		if x >= nx && x < nx+w && y >= ny && y < ny+h {
			return n.ID(), true
		}
	}
	return "", false
}

// drawOrder lists nodes bottom to top. The selected node is drawn last.
func (m Model) drawOrder() []*diagram.Node {
	nodes := m.canvas.Nodes()
	if i := slices.IndexFunc(nodes, (*diagram.Node).Selected); i >= 0 {
		sel := nodes[i]
		nodes = append(slices.Delete(nodes, i, i+1), sel)
	}
	return nodes
}

func (m Model) anchorAt(msg tea.MouseMsg) (diagram.NodeID, diagram.AnchorID, bool) {
	nodes := m.drawOrder()
	for i := len(nodes) - 1; i >= 0; i-- {
		for _, a := range diagram.AnchorIDs() {
			if z := zone.Get(nodeview.AnchorZoneID(nodes[i].ID(), a)); z != nil && z.InBounds(msg) {
				return nodes[i].ID(), a, true
			}
		}
	}
	return "", diagram.AnchorID{}, false
}

func (m Model) classAt(msg tea.MouseMsg) (diagram.NodeID, diagram.IndustryClass, bool) {
	nodes := m.drawOrder()
	for i := len(nodes) - 1; i >= 0; i-- {
		for _, c := range nodes[i].Domain().Classes {
			if z := zone.Get(nodeview.ClassZoneID(nodes[i].ID(), c.ID)); z != nil && z.InBounds(msg) {
				return nodes[i].ID(), c, true
			}
		}
	}
	return "", diagram.IndustryClass{}, false
}

func (m *Model) selectNode(id diagram.NodeID) {
	if n, ok := m.canvas.Selected(); ok && n.ID() == id {
		return
	}
	if err := m.canvas.Select(id); err != nil {
		log.Warn(log.CatDiagram, "select failed", "node", id, "error", err)
		return
	}
	m.syncClassCursor(true)
}

func (m *Model) selectNext(step int) {
	if _, ok := m.canvas.SelectNext(step); ok {
		m.syncClassCursor(true)
	}
}

// syncClassCursor keeps the class cursor inside the selected node's class
// list, or -1 when there is nothing to point at.
func (m *Model) syncClassCursor(reset bool) {
	n, ok := m.canvas.Selected()
	if !ok || len(n.Domain().Classes) == 0 {
		m.classCursor = -1
		return
	}
	if reset || m.classCursor < 0 {
		m.classCursor = 0
		return
	}
	m.classCursor = min(m.classCursor, len(n.Domain().Classes)-1)
}

func (m *Model) moveClassCursor(delta int) {
	n, ok := m.canvas.Selected()
	if !ok {
		return
	}
	count := len(n.Domain().Classes)
	if count == 0 {
		return
	}
	m.classCursor = min(max(m.classCursor+delta, 0), count-1)
}

func (m *Model) resize(dx, dy int) {
	n, ok := m.canvas.Selected()
	if !ok {
		return
	}
	g := n.Resize(dx, dy)
	m.clampPan()
	log.Debug(log.CatDiagram, "node resized", "node", n.ID(), "width", g.Width, "height", g.Height)
}

func (m *Model) dragTo(x, y int) {
	n, ok := m.canvas.Node(m.dragging.node)
	if !ok {
		m.dragging = nil
		return
	}
	dx, dy := x-m.dragging.x, y-m.dragging.y
	if dx == 0 && dy == 0 {
		return
	}
	g := n.Resize(dx*nodeview.UnitsPerColumn, dy*nodeview.UnitsPerRow)
	m.dragging.x, m.dragging.y = x, y
	log.Debug(log.CatDiagram, "node dragged", "node", n.ID(), "width", g.Width, "height", g.Height)
}

func (m *Model) pan(dx, dy int) {
	m.panX += dx
	m.panY += dy
	m.clampPan()
}

// clampPan keeps the viewport between the origin and the far edge of the
// content.
func (m *Model) clampPan() {
	w, h := m.areaSize()
	extentX, extentY := m.extent()
	m.panX = min(max(m.panX, 0), max(extentX-w, 0))
	m.panY = min(max(m.panY, 0), max(extentY-h, 0))
}

// extent returns the bottom-right corner of the drawn content in cells.
func (m Model) extent() (x, y int) {
	for _, n := range m.canvas.Nodes() {
		pos, _ := m.canvas.Position(n.ID())
		nx, ny := nodeview.ToCells(pos)
		w, h := nodeview.CellSize(n.Geometry())
		x = max(x, nx+w)
		y = max(y, ny+h)
	}
	return x, y
}

func (m Model) areaSize() (width, height int) {
	return m.width, max(m.height-chromeHeight, 1)
}

func (m Model) openPicker() (Model, tea.Cmd) {
	n, ok := m.canvas.Selected()
	if !ok {
		return m, mode.Toast("Select a node first", toaster.StyleInfo)
	}
	m.picker = m.picker.SetSize(m.width, m.height).SetSelected(n.Color())
	m.overlay = overlayPicker
	return m, nil
}

func (m Model) recolor(hex string) (Model, tea.Cmd) {
	m.overlay = overlayNone
	n, ok := m.canvas.Selected()
	if !ok {
		return m, nil
	}
	if err := n.RecolorHex(hex); err != nil {
		log.Warn(log.CatDiagram, "recolor rejected", "node", n.ID(), "color", hex, "error", err)
		return m, mode.Toast("Invalid color "+hex, toaster.StyleError)
	}
	log.Debug(log.CatDiagram, "node recolored", "node", n.ID(), "color", n.Color())
	return m, nil
}

func (m Model) nodeName(id diagram.NodeID) string {
	if n, ok := m.canvas.Node(id); ok {
		return n.Domain().Name
	}
	return string(id)
}
