package diagram

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

var (
	// ErrUnknownNode is returned for IDs not on the canvas.
	ErrUnknownNode = errors.New("unknown node")
	// ErrInvalidEdge is returned when an edge does not run source to target.
	ErrInvalidEdge = errors.New("invalid edge")
	// ErrDuplicateNode is returned when two domains map to the same node.
	ErrDuplicateNode = errors.New("duplicate node")
)

// LayoutGap is the spacing between grid cells, in canvas units.
const LayoutGap = 40

// EdgeEnd is one attachment point of an edge.
type EdgeEnd struct {
	Node   NodeID
	Anchor AnchorID
}

func (e EdgeEnd) String() string {
	return string(e.Node) + ":" + e.Anchor.String()
}

// Edge is a directed link from a source anchor to a target anchor.
type Edge struct {
	ID   string
	From EdgeEnd
	To   EdgeEnd
}

// CanvasOption configures a canvas.
type CanvasOption func(*Canvas)

// WithNodeDefaults sets the geometry and color of newly created nodes.
func WithNodeDefaults(g Geometry, c Color) CanvasOption {
	return func(cv *Canvas) {
		cv.defaultGeometry = g.Clamp()
		if c != "" {
			cv.defaultColor = c
		}
	}
}

// WithColumns sets how many nodes share a grid row.
func WithColumns(n int) CanvasOption {
	return func(cv *Canvas) {
		cv.columns = max(n, 1)
	}
}

// Canvas hosts the nodes of a diagram session, their positions and the edges
// between their anchors. At most one node is selected at a time.
type Canvas struct {
	vis             VisibilityReader
	order           []NodeID
	nodes           map[NodeID]*Node
	positions       map[NodeID]Point
	edges           []Edge
	selected        NodeID
	columns         int
	defaultGeometry Geometry
	defaultColor    Color
}

// NewCanvas creates an empty canvas whose nodes read vis.
func NewCanvas(vis VisibilityReader, opts ...CanvasOption) *Canvas {
	cv := &Canvas{
		vis:             vis,
		nodes:           make(map[NodeID]*Node),
		positions:       make(map[NodeID]Point),
		columns:         3,
		defaultGeometry: DefaultGeometry,
		defaultColor:    DefaultColor,
	}
	for _, opt := range opts {
		opt(cv)
	}
	return cv
}

// SetDomains replaces the displayed domains. Nodes whose domain is still
// present keep their color and geometry; removed nodes take their edges with
// them.
func (cv *Canvas) SetDomains(domains []ClassificationDomain) error {
	seen := make(map[NodeID]struct{}, len(domains))
	for _, d := range domains {
		if err := d.Validate(); err != nil {
			return err
		}
		id := DomainNodeID(d.ID)
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateNode, id)
		}
		seen[id] = struct{}{}
	}

	order := make([]NodeID, 0, len(domains))
	nodes := make(map[NodeID]*Node, len(domains))
	for _, d := range domains {
		id := DomainNodeID(d.ID)
		opts := []NodeOption{WithGeometry(cv.defaultGeometry), WithColor(cv.defaultColor)}
		if old, ok := cv.nodes[id]; ok {
			opts = []NodeOption{WithGeometry(old.Geometry()), WithColor(old.Color())}
		}
		nodes[id] = NewNode(id, d, cv.vis, opts...)
		order = append(order, id)
	}

	cv.order = order
	cv.nodes = nodes
	cv.edges = slices.DeleteFunc(cv.edges, func(e Edge) bool {
		_, from := nodes[e.From.Node]
		_, to := nodes[e.To.Node]
		return !from || !to
	})
	if _, ok := nodes[cv.selected]; !ok {
		cv.selected = ""
	} else {
		nodes[cv.selected].SetSelected(true)
	}
	cv.Layout()
	return nil
}

// Len returns the number of nodes.
func (cv *Canvas) Len() int { return len(cv.order) }

// Nodes returns the nodes in display order.
func (cv *Canvas) Nodes() []*Node {
	out := make([]*Node, 0, len(cv.order))
	for _, id := range cv.order {
		out = append(out, cv.nodes[id])
	}
	return out
}

// Node looks up a node.
func (cv *Canvas) Node(id NodeID) (*Node, bool) {
	n, ok := cv.nodes[id]
	return n, ok
}

// Select makes id the only selected node.
func (cv *Canvas) Select(id NodeID) error {
	n, ok := cv.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	if cur, ok := cv.nodes[cv.selected]; ok {
		cur.SetSelected(false)
	}
	n.SetSelected(true)
	cv.selected = id
	return nil
}

// ClearSelection deselects the selected node, if any.
func (cv *Canvas) ClearSelection() {
	if cur, ok := cv.nodes[cv.selected]; ok {
		cur.SetSelected(false)
	}
	cv.selected = ""
}

// Selected returns the selected node.
func (cv *Canvas) Selected() (*Node, bool) {
	n, ok := cv.nodes[cv.selected]
	return n, ok
}

// SelectNext moves the selection by step positions, wrapping around. With
// nothing selected it starts from the first node.
func (cv *Canvas) SelectNext(step int) (*Node, bool) {
	if len(cv.order) == 0 {
		return nil, false
	}
	idx := slices.Index(cv.order, cv.selected)
	if idx < 0 {
		idx = 0
	} else {
		idx = ((idx+step)%len(cv.order) + len(cv.order)) % len(cv.order)
	}
	_ = cv.Select(cv.order[idx])
	return cv.nodes[cv.order[idx]], true
}

// Position returns the top-left corner of a node.
func (cv *Canvas) Position(id NodeID) (Point, bool) {
	p, ok := cv.positions[id]
	return p, ok
}

// Move places a node at p.
func (cv *Canvas) Move(id NodeID, p Point) error {
	if _, ok := cv.nodes[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	cv.positions[id] = p
	return nil
}

// Layout arranges nodes in a grid, sizing each column to its widest node and
// each row to its tallest.
func (cv *Canvas) Layout() {
	cols := cv.columns
	colWidth := make([]int, cols)
	var rowHeight []int
	for i, id := range cv.order {
		g := cv.nodes[id].Geometry()
		col, row := i%cols, i/cols
		colWidth[col] = max(colWidth[col], g.Width)
		if row == len(rowHeight) {
			rowHeight = append(rowHeight, 0)
		}
		rowHeight[row] = max(rowHeight[row], g.Height)
	}

	positions := make(map[NodeID]Point, len(cv.order))
	for i, id := range cv.order {
		col, row := i%cols, i/cols
		var x, y int
		for c := range col {
			x += colWidth[c] + LayoutGap
		}
		for r := range row {
			y += rowHeight[r] + LayoutGap
		}
		positions[id] = Point{X: float64(x), Y: float64(y)}
	}
	cv.positions = positions
}

// Connect adds an edge from a source anchor to a target anchor. Both ends
// may be on the same node and the same side.
func (cv *Canvas) Connect(from, to EdgeEnd) (Edge, error) {
	for _, end := range []EdgeEnd{from, to} {
		if _, ok := cv.nodes[end.Node]; !ok {
			return Edge{}, fmt.Errorf("%w: %s", ErrUnknownNode, end.Node)
		}
		if !end.Anchor.Valid() {
			return Edge{}, fmt.Errorf("%w: bad anchor %s", ErrInvalidEdge, end)
		}
	}
	if from.Anchor.Role != RoleSource {
		return Edge{}, fmt.Errorf("%w: %s is not a source anchor", ErrInvalidEdge, from)
	}
	if to.Anchor.Role != RoleTarget {
		return Edge{}, fmt.Errorf("%w: %s is not a target anchor", ErrInvalidEdge, to)
	}
	e := Edge{ID: uuid.NewString(), From: from, To: to}
	cv.edges = append(cv.edges, e)
	return e, nil
}

// Disconnect removes an edge by ID.
func (cv *Canvas) Disconnect(edgeID string) bool {
	before := len(cv.edges)
	cv.edges = slices.DeleteFunc(cv.edges, func(e Edge) bool { return e.ID == edgeID })
	return len(cv.edges) != before
}

// Edges returns the edges in creation order.
func (cv *Canvas) Edges() []Edge {
	return slices.Clone(cv.edges)
}

// EdgeEndpoints resolves an edge to absolute canvas points using the
// current geometry of both nodes.
func (cv *Canvas) EdgeEndpoints(e Edge) (from, to Point, err error) {
	if from, err = cv.resolve(e.From); err != nil {
		return Point{}, Point{}, err
	}
	if to, err = cv.resolve(e.To); err != nil {
		return Point{}, Point{}, err
	}
	return from, to, nil
}

func (cv *Canvas) resolve(end EdgeEnd) (Point, error) {
	n, ok := cv.nodes[end.Node]
	if !ok {
		return Point{}, fmt.Errorf("%w: %s", ErrUnknownNode, end.Node)
	}
	rel, ok := n.Anchors().Lookup(end.Anchor)
	if !ok {
		return Point{}, fmt.Errorf("%w: bad anchor %s", ErrInvalidEdge, end)
	}
	return cv.positions[end.Node].Add(rel), nil
}
