package diagram

import (
	"fmt"
	"slices"
	"strconv"
)

// NodeID identifies a node on the canvas.
type NodeID string

// DomainNodeID is the node ID used for a classification domain.
func DomainNodeID(domainID int) NodeID {
	return NodeID("domain-" + strconv.Itoa(domainID))
}

// NavigationRequest asks the router to open a class detail view.
type NavigationRequest struct {
	ClassID int
}

// Route returns the detail path for the class.
func (r NavigationRequest) Route() string {
	return fmt.Sprintf("/industry/classes/%d", r.ClassID)
}

// ClassLink is an activatable class entry of a rendered node.
type ClassLink struct {
	Class   IndustryClass
	Request NavigationRequest
}

// NodeView is everything a renderer needs to draw a node. It shares no
// memory with the node that produced it.
type NodeView struct {
	ID       NodeID
	Title    string
	Code     int
	Color    Color
	Geometry Geometry
	Selected bool
	Classes  []ClassLink

	// ThemesVisible is false when the theme section must be omitted
	// entirely. Themes is nil in that case.
	ThemesVisible bool
	Themes        []IndustryClass

	Anchors []Anchor
}

// NodeOption configures a node at construction.
type NodeOption func(*Node)

// WithGeometry sets the initial size. It is clamped to the floor.
func WithGeometry(g Geometry) NodeOption {
	return func(n *Node) {
		n.geometry = g.Clamp()
	}
}

// WithColor sets the initial fill.
func WithColor(c Color) NodeOption {
	return func(n *Node) {
		if c != "" {
			n.color = c
		}
	}
}

// Node is one rendered classification domain. Color and geometry belong to
// the node alone; the visibility flag is only read.
type Node struct {
	id       NodeID
	data     ClassificationDomain
	vis      VisibilityReader
	selected bool
	color    Color
	geometry Geometry
}

// NewNode creates a node for domain. A nil vis behaves as "themes hidden".
func NewNode(id NodeID, domain ClassificationDomain, vis VisibilityReader, opts ...NodeOption) *Node {
	if vis == nil {
		vis = StaticVisibility(false)
	}
	n := &Node{
		id:       id,
		data:     domain.normalized(),
		vis:      vis,
		color:    DefaultColor,
		geometry: DefaultGeometry,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// ID returns the node ID.
func (n *Node) ID() NodeID { return n.id }

// Domain returns a copy of the node's domain.
func (n *Node) Domain() ClassificationDomain { return n.data.normalized() }

// Selected reports whether resize handles are active.
func (n *Node) Selected() bool { return n.selected }

// SetSelected is driven by the hosting canvas.
func (n *Node) SetSelected(selected bool) { n.selected = selected }

// Color returns the current fill.
func (n *Node) Color() Color { return n.color }

// Geometry returns the current size.
func (n *Node) Geometry() Geometry { return n.geometry }

// Resize applies a drag delta while the node is selected and returns the
// resulting geometry. Unselected nodes ignore the call.
func (n *Node) Resize(dx, dy int) Geometry {
	if !n.selected {
		return n.geometry
	}
	n.geometry = n.geometry.Resize(dx, dy)
	return n.geometry
}

// Recolor overwrites the fill.
func (n *Node) Recolor(c Color) {
	n.color = c
}

// RecolorHex validates an untyped color payload before recoloring. Invalid
// input leaves the current color untouched.
func (n *Node) RecolorHex(s string) error {
	c, err := ParseColor(s)
	if err != nil {
		return err
	}
	n.Recolor(c)
	return nil
}

// Anchors returns the anchor set for the current geometry.
func (n *Node) Anchors() AnchorSet {
	return NewAnchorSet(n.geometry)
}

// Render builds the node view from the current state and visibility value.
func (n *Node) Render() NodeView {
	view := NodeView{
		ID:       n.id,
		Title:    n.data.Name,
		Code:     n.data.Code,
		Color:    n.color,
		Geometry: n.geometry,
		Selected: n.selected,
		Classes:  make([]ClassLink, 0, len(n.data.Classes)),
		Anchors:  n.Anchors().Anchors(),
	}
	for _, c := range n.data.Classes {
		view.Classes = append(view.Classes, ClassLink{
			Class:   c,
			Request: NavigationRequest{ClassID: c.ID},
		})
	}
	if n.vis.Show() {
		view.ThemesVisible = true
		view.Themes = slices.Clone(n.data.Themes)
	}
	return view
}
