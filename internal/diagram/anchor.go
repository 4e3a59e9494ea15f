package diagram

import (
	"fmt"
	"strings"
)

// Side is the node boundary an anchor sits on.
type Side int

const (
	SideTop Side = iota
	SideRight
	SideBottom
	SideLeft
)

func (s Side) String() string {
	switch s {
	case SideTop:
		return "top"
	case SideRight:
		return "right"
	case SideBottom:
		return "bottom"
	case SideLeft:
		return "left"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

// Role says whether edges end (target) or start (source) at an anchor.
type Role int

const (
	RoleTarget Role = iota
	RoleSource
)

func (r Role) String() string {
	switch r {
	case RoleTarget:
		return "target"
	case RoleSource:
		return "source"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// AnchorID identifies an anchor independently of where it is drawn.
type AnchorID struct {
	Side Side
	Role Role
}

func (id AnchorID) String() string {
	return id.Side.String() + "-" + id.Role.String()
}

// Valid reports whether id names one of the eight anchors.
func (id AnchorID) Valid() bool {
	return id.Side >= SideTop && id.Side <= SideLeft &&
		(id.Role == RoleTarget || id.Role == RoleSource)
}

// ParseAnchorID parses the "side-role" form produced by AnchorID.String.
func ParseAnchorID(s string) (AnchorID, error) {
	for _, id := range anchorOrder {
		if strings.EqualFold(s, id.String()) {
			return id, nil
		}
	}
	return AnchorID{}, fmt.Errorf("unknown anchor %q", s)
}

// anchorOrder is the enumeration order of every anchor set.
var anchorOrder = [...]AnchorID{
	{SideTop, RoleTarget}, {SideTop, RoleSource},
	{SideRight, RoleTarget}, {SideRight, RoleSource},
	{SideBottom, RoleTarget}, {SideBottom, RoleSource},
	{SideLeft, RoleTarget}, {SideLeft, RoleSource},
}

// AnchorIDs returns the eight anchor identities in enumeration order.
func AnchorIDs() []AnchorID {
	out := make([]AnchorID, len(anchorOrder))
	copy(out, anchorOrder[:])
	return out
}

// Point is a position in canvas units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add offsets p by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Anchor is an identity plus its position relative to the node's top-left
// corner.
type Anchor struct {
	ID       AnchorID
	Position Point
}

// AnchorSet derives anchor positions from a geometry. It holds no other
// state, so a fresh set is built on every geometry change.
type AnchorSet struct {
	geometry Geometry
}

// NewAnchorSet builds the anchor set for g.
func NewAnchorSet(g Geometry) AnchorSet {
	return AnchorSet{geometry: g}
}

// Geometry returns the geometry the positions were computed from.
func (s AnchorSet) Geometry() Geometry {
	return s.geometry
}

// Anchors returns all eight anchors in enumeration order.
func (s AnchorSet) Anchors() []Anchor {
	out := make([]Anchor, 0, len(anchorOrder))
	for _, id := range anchorOrder {
		out = append(out, Anchor{ID: id, Position: anchorPosition(s.geometry, id)})
	}
	return out
}

// Lookup returns the current position of id.
func (s AnchorSet) Lookup(id AnchorID) (Point, bool) {
	if !id.Valid() {
		return Point{}, false
	}
	return anchorPosition(s.geometry, id), true
}

// anchorPosition places the target of each side at one third along it and
// the source at two thirds, so the pair never coincides.
func anchorPosition(g Geometry, id AnchorID) Point {
	w := float64(g.Width)
	h := float64(g.Height)

	frac := 1.0 / 3.0
	if id.Role == RoleSource {
		frac = 2.0 / 3.0
	}

	switch id.Side {
	case SideTop:
		return Point{X: w * frac, Y: 0}
	case SideRight:
		return Point{X: w, Y: h * frac}
	case SideBottom:
		return Point{X: w * frac, Y: h}
	default:
		return Point{X: 0, Y: h * frac}
	}
}
