package diagram

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func sampleDomain() ClassificationDomain {
	return ClassificationDomain{
		ID:      7,
		Code:    700,
		Name:    "Industry",
		Classes: []IndustryClass{{ID: 1, Code: 101, Name: "Manufacturing"}},
		Themes:  []IndustryClass{{ID: 2, Code: 201, Name: "Green Energy"}},
	}
}

func themeNames(v NodeView) []string {
	var out []string
	for _, t := range v.Themes {
		out = append(out, t.Name)
	}
	return out
}

func TestNode_ExampleScenario(t *testing.T) {
	vis := NewVisibilityStore()
	defer vis.Close()

	n := NewNode("n1", sampleDomain(), vis, WithGeometry(Geometry{Width: 120, Height: 40}))
	require.False(t, n.Selected())

	g := n.Resize(-50, -50)
	require.Equal(t, Geometry{Width: 120, Height: 40}, g, "unselected resize is ignored")

	n.SetSelected(true)
	g = n.Resize(-50, -50)
	require.Equal(t, Geometry{Width: 100, Height: 30}, g, "resize clamps at the floor")

	view := n.Render()
	require.False(t, view.ThemesVisible)
	require.Nil(t, view.Themes)
	require.Len(t, view.Classes, 1)
	require.Equal(t, "Manufacturing", view.Classes[0].Class.Name)

	vis.Set(true)
	view = n.Render()
	require.True(t, view.ThemesVisible)
	require.Equal(t, []string{"Green Energy"}, themeNames(view))
}

func TestNode_RenderAlwaysHasTitleAndClasses(t *testing.T) {
	d := sampleDomain()
	d.Classes = append(d.Classes, IndustryClass{ID: 3, Code: 102, Name: "Services"})
	n := NewNode("n", d, StaticVisibility(false))

	view := n.Render()
	require.Equal(t, "Industry", view.Title)
	require.Equal(t, 700, view.Code)
	require.Len(t, view.Classes, 2)
	require.Equal(t, NavigationRequest{ClassID: 3}, view.Classes[1].Request)
	require.Equal(t, "/industry/classes/3", view.Classes[1].Request.Route())
}

func TestNode_EmptyAndNilSequences(t *testing.T) {
	d := ClassificationDomain{ID: 1, Name: "Empty"}
	n := NewNode("n", d, StaticVisibility(true))

	view := n.Render()
	require.NotNil(t, view.Classes)
	require.Empty(t, view.Classes)
	require.True(t, view.ThemesVisible)
	require.NotNil(t, view.Themes)
	require.Empty(t, view.Themes)
}

func TestNode_ContentsDoNotAffectRender(t *testing.T) {
	a := sampleDomain()
	b := sampleDomain()
	b.Contents = []json.RawMessage{json.RawMessage(`{"any":"thing"}`)}

	va := NewNode("n", a, StaticVisibility(true)).Render()
	vb := NewNode("n", b, StaticVisibility(true)).Render()
	require.Equal(t, va, vb)
}

func TestNode_RenderDoesNotShareMemory(t *testing.T) {
	d := sampleDomain()
	n := NewNode("n", d, StaticVisibility(true))

	d.Themes[0].Name = "mutated by caller"
	view := n.Render()
	require.Equal(t, "Green Energy", view.Themes[0].Name)

	view.Themes[0].Name = "mutated by renderer"
	require.Equal(t, "Green Energy", n.Render().Themes[0].Name)
}

func TestNode_NilVisibilityHidesThemes(t *testing.T) {
	n := NewNode("n", sampleDomain(), nil)
	require.False(t, n.Render().ThemesVisible)
}

func TestNode_Recolor(t *testing.T) {
	n := NewNode("n", sampleDomain(), nil)
	require.Equal(t, DefaultColor, n.Color())

	c := MustParseColor("#FF8800")
	n.Recolor(c)
	first := n.Render()
	n.Recolor(c)
	require.Equal(t, first, n.Render())
	require.Equal(t, Color("#ff8800"), n.Color())
}

func TestNode_RecolorHexRejectsInvalid(t *testing.T) {
	n := NewNode("n", sampleDomain(), nil)
	require.NoError(t, n.RecolorHex("#abc"))
	require.Equal(t, Color("#aabbcc"), n.Color())

	for _, bad := range []string{"", "red", "#12", "#1234", "#gggggg", "123456", "#1234567"} {
		err := n.RecolorHex(bad)
		require.ErrorIs(t, err, ErrInvalidColor, bad)
		require.Equal(t, Color("#aabbcc"), n.Color(), "color unchanged after %q", bad)
	}
}

func TestNode_ResizeAndRecolorInSameBurst(t *testing.T) {
	n := NewNode("n", sampleDomain(), nil)
	n.SetSelected(true)
	n.Resize(10, 5)
	n.Recolor(MustParseColor("#000000"))

	view := n.Render()
	require.Equal(t, Geometry{Width: 190, Height: 125}, view.Geometry)
	require.Equal(t, Color("#000000"), view.Color)
}

func TestNode_WithGeometryClamps(t *testing.T) {
	n := NewNode("n", sampleDomain(), nil, WithGeometry(Geometry{Width: 1, Height: 1}))
	require.Equal(t, Geometry{Width: MinWidth, Height: MinHeight}, n.Geometry())
}

func TestNode_ResizeSaturatesHugeDeltas(t *testing.T) {
	n := NewNode("n", sampleDomain(), nil)
	n.SetSelected(true)

	g := n.Resize(math.MaxInt, 0)
	require.Equal(t, math.MaxInt, g.Width, "a grow never wraps into a shrink")
	require.Equal(t, DefaultGeometry.Height, g.Height)

	g = n.Resize(math.MinInt, math.MinInt)
	require.Equal(t, Geometry{Width: MinWidth, Height: MinHeight}, g)
}

func TestNode_ResizeFloorProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := NewNode("n", sampleDomain(), nil, WithGeometry(Geometry{
			Width:  rapid.IntRange(0, 1000).Draw(t, "w"),
			Height: rapid.IntRange(0, 1000).Draw(t, "h"),
		}))
		n.SetSelected(true)
		steps := rapid.IntRange(1, 30).Draw(t, "steps")
		for range steps {
			g := n.Resize(
				rapid.IntRange(-100000, 1000).Draw(t, "dx"),
				rapid.IntRange(-100000, 1000).Draw(t, "dy"),
			)
			require.GreaterOrEqual(t, g.Width, MinWidth)
			require.GreaterOrEqual(t, g.Height, MinHeight)
		}
	})
}

func TestNode_UnselectedResizeProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := NewNode("n", sampleDomain(), nil)
		before := n.Geometry()
		steps := rapid.IntRange(1, 30).Draw(t, "steps")
		for range steps {
			n.Resize(rapid.Int().Draw(t, "dx")%10000, rapid.Int().Draw(t, "dy")%10000)
		}
		require.Equal(t, before, n.Geometry())
	})
}

func TestNode_AnchorIdentityStableAcrossResize(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := NewNode("n", sampleDomain(), nil)
		n.SetSelected(true)
		ids := func() []AnchorID {
			var out []AnchorID
			for _, a := range n.Anchors().Anchors() {
				out = append(out, a.ID)
			}
			return out
		}
		before := ids()
		steps := rapid.IntRange(1, 20).Draw(t, "steps")
		for range steps {
			n.Resize(rapid.IntRange(-500, 500).Draw(t, "dx"), rapid.IntRange(-500, 500).Draw(t, "dy"))
			require.Equal(t, before, ids())
		}
	})
}

func TestNode_VisibilityToggleProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(0, 12).Draw(t, "themes")
		d := ClassificationDomain{ID: 1, Name: "d"}
		for i := range count {
			d.Themes = append(d.Themes, IndustryClass{ID: i, Code: 200 + i, Name: rapid.StringMatching(`[A-Za-z ]{1,12}`).Draw(t, "name")})
		}
		vis := NewVisibilityStore()
		defer vis.Close()
		n := NewNode("n", d, vis)

		vis.Set(true)
		original := n.Render().Themes
		toggles := rapid.IntRange(1, 10).Draw(t, "toggles")
		for range toggles {
			vis.Toggle()
			vis.Toggle()
		}
		require.Equal(t, original, n.Render().Themes)
		require.Len(t, original, count)
	})
}
