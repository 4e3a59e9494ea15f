package diagram

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func threeDomains() []ClassificationDomain {
	return []ClassificationDomain{
		{ID: 1, Name: "A", Classes: []IndustryClass{{ID: 10, Name: "a1"}}},
		{ID: 2, Name: "B"},
		{ID: 3, Name: "C", Themes: []IndustryClass{{ID: 30, Name: "c-theme"}}},
	}
}

func newTestCanvas(t *testing.T) *Canvas {
	t.Helper()
	cv := NewCanvas(StaticVisibility(false), WithColumns(2))
	require.NoError(t, cv.SetDomains(threeDomains()))
	return cv
}

func TestCanvas_SetDomainsOrderAndIDs(t *testing.T) {
	cv := newTestCanvas(t)
	require.Equal(t, 3, cv.Len())
	var ids []NodeID
	for _, n := range cv.Nodes() {
		ids = append(ids, n.ID())
	}
	require.Equal(t, []NodeID{"domain-1", "domain-2", "domain-3"}, ids)
}

func TestCanvas_SetDomainsRejectsDuplicates(t *testing.T) {
	cv := NewCanvas(nil)
	err := cv.SetDomains([]ClassificationDomain{{ID: 1}, {ID: 1}})
	require.ErrorIs(t, err, ErrDuplicateNode)

	err = cv.SetDomains([]ClassificationDomain{{ID: 1, Classes: []IndustryClass{{ID: 5}, {ID: 5}}}})
	require.ErrorIs(t, err, ErrDuplicateClass)
}

func TestCanvas_SingleSelection(t *testing.T) {
	cv := newTestCanvas(t)
	require.NoError(t, cv.Select("domain-1"))
	require.NoError(t, cv.Select("domain-2"))

	a, _ := cv.Node("domain-1")
	b, _ := cv.Node("domain-2")
	require.False(t, a.Selected())
	require.True(t, b.Selected())

	require.ErrorIs(t, cv.Select("domain-99"), ErrUnknownNode)

	cv.ClearSelection()
	_, ok := cv.Selected()
	require.False(t, ok)
	require.False(t, b.Selected())
}

func TestCanvas_SelectNextWraps(t *testing.T) {
	cv := newTestCanvas(t)
	n, ok := cv.SelectNext(1)
	require.True(t, ok)
	require.Equal(t, NodeID("domain-1"), n.ID())

	n, _ = cv.SelectNext(-1)
	require.Equal(t, NodeID("domain-3"), n.ID())
	n, _ = cv.SelectNext(1)
	require.Equal(t, NodeID("domain-1"), n.ID())
}

func TestCanvas_SetDomainsKeepsLocalState(t *testing.T) {
	cv := newTestCanvas(t)
	require.NoError(t, cv.Select("domain-1"))
	n, _ := cv.Node("domain-1")
	n.Resize(50, 50)
	n.Recolor(MustParseColor("#336699"))

	domains := threeDomains()
	domains[0].Name = "A renamed"
	require.NoError(t, cv.SetDomains(domains))

	n, _ = cv.Node("domain-1")
	require.Equal(t, "A renamed", n.Render().Title)
	require.Equal(t, Geometry{Width: 230, Height: 170}, n.Geometry())
	require.Equal(t, Color("#336699"), n.Color())
	require.True(t, n.Selected())
}

func TestCanvas_ConnectRoles(t *testing.T) {
	cv := newTestCanvas(t)
	src := EdgeEnd{Node: "domain-1", Anchor: AnchorID{Side: SideRight, Role: RoleSource}}
	dst := EdgeEnd{Node: "domain-2", Anchor: AnchorID{Side: SideLeft, Role: RoleTarget}}

	e, err := cv.Connect(src, dst)
	require.NoError(t, err)
	require.NotEmpty(t, e.ID)

	_, err = cv.Connect(dst, src)
	require.ErrorIs(t, err, ErrInvalidEdge)

	_, err = cv.Connect(src, EdgeEnd{Node: "nope", Anchor: dst.Anchor})
	require.ErrorIs(t, err, ErrUnknownNode)

	// self-loop on the same side is allowed
	_, err = cv.Connect(src, EdgeEnd{Node: "domain-1", Anchor: AnchorID{Side: SideRight, Role: RoleTarget}})
	require.NoError(t, err)
	require.Len(t, cv.Edges(), 2)

	require.True(t, cv.Disconnect(e.ID))
	require.False(t, cv.Disconnect(e.ID))
	require.Len(t, cv.Edges(), 1)
}

func TestCanvas_EdgeSurvivesResize(t *testing.T) {
	cv := newTestCanvas(t)
	src := EdgeEnd{Node: "domain-1", Anchor: AnchorID{Side: SideBottom, Role: RoleSource}}
	dst := EdgeEnd{Node: "domain-3", Anchor: AnchorID{Side: SideTop, Role: RoleTarget}}
	e, err := cv.Connect(src, dst)
	require.NoError(t, err)

	from, _, err := cv.EdgeEndpoints(e)
	require.NoError(t, err)
	require.Equal(t, Point{X: 120, Y: 120}, from)

	require.NoError(t, cv.Select("domain-1"))
	n, _ := cv.Node("domain-1")
	n.Resize(-80, -90)
	cv.Layout()

	require.Equal(t, []Edge{e}, cv.Edges())
	from, to, err := cv.EdgeEndpoints(e)
	require.NoError(t, err)
	require.InDelta(t, 200.0/3.0, from.X, 1e-9)
	require.Equal(t, 30.0, from.Y)
	require.Equal(t, Point{X: 60, Y: 120 + LayoutGap}, to)
}

func TestCanvas_SetDomainsDropsDanglingEdges(t *testing.T) {
	cv := newTestCanvas(t)
	_, err := cv.Connect(
		EdgeEnd{Node: "domain-1", Anchor: AnchorID{Side: SideRight, Role: RoleSource}},
		EdgeEnd{Node: "domain-3", Anchor: AnchorID{Side: SideLeft, Role: RoleTarget}},
	)
	require.NoError(t, err)

	require.NoError(t, cv.SetDomains(threeDomains()[:2]))
	require.Empty(t, cv.Edges())
}

func TestCanvas_LayoutGrid(t *testing.T) {
	cv := newTestCanvas(t)
	p1, _ := cv.Position("domain-1")
	p2, _ := cv.Position("domain-2")
	p3, _ := cv.Position("domain-3")
	require.Equal(t, Point{}, p1)
	require.Equal(t, Point{X: 180 + LayoutGap}, p2)
	require.Equal(t, Point{Y: 120 + LayoutGap}, p3)

	require.NoError(t, cv.Move("domain-2", Point{X: 5, Y: 5}))
	p2, _ = cv.Position("domain-2")
	require.Equal(t, Point{X: 5, Y: 5}, p2)
	require.ErrorIs(t, cv.Move("zzz", Point{}), ErrUnknownNode)
}
