package help

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelp_SetSize(t *testing.T) {
	m := New(ModeOverview).SetSize(120, 40)
	assert.Equal(t, 120, m.width)
	assert.Equal(t, 40, m.height)

	m2 := m.SetSize(80, 24)
	assert.Equal(t, 80, m2.width)
	assert.Equal(t, 120, m.width, "original model unchanged")
}

func TestHelp_OverviewSections(t *testing.T) {
	view := ansi.Strip(New(ModeOverview).SetSize(120, 30).View())

	for _, want := range []string{"Overview keys", "Navigation", "Search", "Actions", "General"} {
		assert.Contains(t, view, want)
	}
	assert.Contains(t, view, "cycle category")
	assert.Contains(t, view, "copy corp code")
	assert.NotContains(t, view, "connect anchors")
}

func TestHelp_DiagramSections(t *testing.T) {
	view := ansi.Strip(New(ModeOverview).SetMode(ModeDiagram).SetSize(140, 30).View())

	for _, want := range []string{"Diagram keys", "Nodes", "Node", "Edges", "General"} {
		assert.Contains(t, view, want)
	}
	assert.Contains(t, view, "narrower/wider")
	assert.Contains(t, view, "toggle themes")
	assert.Contains(t, view, "connect anchors")
	assert.NotContains(t, view, "cycle category")
}

func TestHelp_ViewFillsScreen(t *testing.T) {
	view := New(ModeOverview).SetSize(120, 30).View()
	assert.Equal(t, 30, lipgloss.Height(view))
}

func TestHelp_Overlay(t *testing.T) {
	bg := ""
	for range 30 {
		bg += "................................................................................................................................................\n"
	}
	out := ansi.Strip(New(ModeOverview).SetSize(140, 30).Overlay(bg))
	require.Contains(t, out, "Overview keys")
	require.Contains(t, out, "....")
}
