package nodeview

import (
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greta-mvc/flowmap/internal/diagram"
)

func TestMain(m *testing.M) {
	zone.NewGlobal()
	os.Exit(m.Run())
}

func testDomain() diagram.ClassificationDomain {
	return diagram.ClassificationDomain{
		ID:   1,
		Code: 100,
		Name: "Semiconductors",
		Classes: []diagram.IndustryClass{
			{ID: 11, Code: 1101, Name: "Memory"},
			{ID: 12, Code: 1102, Name: "Foundry"},
		},
		Themes: []diagram.IndustryClass{
			{ID: 21, Code: 2101, Name: "AI"},
		},
	}
}

func view(show bool, opts ...diagram.NodeOption) diagram.NodeView {
	n := diagram.NewNode(diagram.DomainNodeID(1), testDomain(), diagram.StaticVisibility(show), opts...)
	return n.Render()
}

func plain(s string) []string {
	return strings.Split(ansi.Strip(zone.Scan(s)), "\n")
}

func TestCellSize(t *testing.T) {
	w, h := CellSize(diagram.Geometry{Width: diagram.MinWidth, Height: diagram.MinHeight})
	assert.Equal(t, 20, w)
	assert.Equal(t, 4, h)

	w, h = CellSize(diagram.DefaultGeometry)
	assert.Equal(t, 36, w)
	assert.Equal(t, 15, h)
}

func TestAnchorCells_DistinctAtFloor(t *testing.T) {
	g := diagram.Geometry{Width: diagram.MinWidth, Height: diagram.MinHeight}
	set := diagram.NewAnchorSet(g)

	seen := map[[2]int]diagram.AnchorID{}
	for _, a := range set.Anchors() {
		x, y := AnchorCell(g, a)
		key := [2]int{x, y}
		prev, dup := seen[key]
		require.False(t, dup, "%s and %s share cell %v", prev, a.ID, key)
		seen[key] = a.ID
	}
	assert.Len(t, seen, 8)
}

func TestRender_SizeMatchesGeometry(t *testing.T) {
	v := view(true)
	lines := plain(Render(v, Options{ClassCursor: -1}))

	w, h := CellSize(v.Geometry)
	require.Len(t, lines, h)
	for _, line := range lines {
		assert.Equal(t, w, lipgloss.Width(line), "line %q", line)
	}
}

func TestRender_Body(t *testing.T) {
	out := strings.Join(plain(Render(view(true), Options{ClassCursor: 1})), "\n")
	assert.Contains(t, out, "Semiconductors")
	assert.Contains(t, out, "#100")
	assert.Contains(t, out, "Classes")
	assert.Contains(t, out, " Memory")
	assert.Contains(t, out, ">Foundry")
	assert.Contains(t, out, "Themes")
	assert.Contains(t, out, "#AI")
}

func TestRender_HidesThemes(t *testing.T) {
	out := strings.Join(plain(Render(view(false), Options{ClassCursor: -1})), "\n")
	assert.NotContains(t, out, "Themes")
	assert.NotContains(t, out, "#AI")
}

func TestRender_AnchorsOnBorder(t *testing.T) {
	v := view(false)
	lines := plain(Render(v, Options{ClassCursor: -1}))

	for _, a := range v.Anchors {
		x, y := AnchorCell(v.Geometry, a)
		row := []rune(lines[y])
		want := targetGlyph
		if a.ID.Role == diagram.RoleSource {
			want = sourceGlyph
		}
		assert.Equal(t, want, string(row[x]), "anchor %s at (%d,%d)", a.ID, x, y)
	}
}

func TestRender_PendingAnchor(t *testing.T) {
	pending := diagram.AnchorID{Side: diagram.SideTop, Role: diagram.RoleSource}
	out := ansi.Strip(zone.Scan(Render(view(false), Options{ClassCursor: -1, Pending: &pending})))
	assert.Equal(t, 1, strings.Count(out, pendingGlyph))
}

func TestRender_ResizeHandleOnlyWhenSelected(t *testing.T) {
	n := diagram.NewNode(diagram.DomainNodeID(1), testDomain(), diagram.StaticVisibility(false))
	assert.NotContains(t, ansi.Strip(zone.Scan(Render(n.Render(), Options{ClassCursor: -1}))), resizeGlyph)

	n.SetSelected(true)
	assert.Contains(t, ansi.Strip(zone.Scan(Render(n.Render(), Options{ClassCursor: -1}))), resizeGlyph)
}

func TestZoneIDs(t *testing.T) {
	id := diagram.DomainNodeID(3)
	assert.Equal(t, "node:domain-3:class:7", ClassZoneID(id, 7))
	anchor := diagram.AnchorID{Side: diagram.SideLeft, Role: diagram.RoleTarget}
	assert.Equal(t, "node:domain-3:anchor:"+anchor.String(), AnchorZoneID(id, anchor))
	assert.Equal(t, "node:domain-3:resize", ResizeZoneID(id))
}

func TestRender_FillUsesNodeColor(t *testing.T) {
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.TrueColor)
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })

	c, err := diagram.ParseColor("#FF0000")
	require.NoError(t, err)

	out := Render(view(true, diagram.WithColor(c)), Options{ClassCursor: -1})
	assert.Contains(t, out, "48;2;255;0;0")
}

func TestRender_TextContrastsWithFill(t *testing.T) {
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.TrueColor)
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })

	out := Render(view(true), Options{ClassCursor: -1})
	assert.Contains(t, out, "38;2;31;31;31", "default white fill gets dark text")
	assert.NotContains(t, out, "38;2;245;245;245")

	dark := Render(view(true, diagram.WithColor(diagram.MustParseColor("#3d348b"))), Options{ClassCursor: -1})
	assert.Contains(t, dark, "38;2;245;245;245", "dark fill gets light text")
}
