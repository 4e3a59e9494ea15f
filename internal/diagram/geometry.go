package diagram

import "math"

// Size floor every node respects.
const (
	MinWidth  = 100
	MinHeight = 30
)

// DefaultGeometry is the size a node gets when the canvas does not pick one.
var DefaultGeometry = Geometry{Width: 180, Height: 120}

// Geometry is a node's size in canvas units.
type Geometry struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Clamp raises each dimension to the floor.
func (g Geometry) Clamp() Geometry {
	return Geometry{
		Width:  max(g.Width, MinWidth),
		Height: max(g.Height, MinHeight),
	}
}

// Resize applies a drag delta and clamps the result. The sum saturates so an
// oversized delta never wraps around.
func (g Geometry) Resize(dx, dy int) Geometry {
	return Geometry{Width: addSat(g.Width, dx), Height: addSat(g.Height, dy)}.Clamp()
}

func addSat(a, b int) int {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return math.MaxInt
	case b < 0 && a < math.MinInt-b:
		return math.MinInt
	}
	return a + b
}

// AtFloor reports whether both dimensions sit on the floor.
func (g Geometry) AtFloor() bool {
	return g.Width == MinWidth && g.Height == MinHeight
}
