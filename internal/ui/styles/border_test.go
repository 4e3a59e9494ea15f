package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testColorRed   = lipgloss.Color("#FF0000")
	testColorGreen = lipgloss.Color("#00FF00")
)

func plainLines(s string) []string {
	return strings.Split(ansi.Strip(s), "\n")
}

func TestRenderWithTitleBorder_Basic(t *testing.T) {
	result := RenderWithTitleBorder("content", "Title", 20, 5, false, testColorGreen, testColorGreen)

	assert.Contains(t, result, "╭", "missing top-left corner")
	assert.Contains(t, result, "╮", "missing top-right corner")
	assert.Contains(t, result, "╰", "missing bottom-left corner")
	assert.Contains(t, result, "╯", "missing bottom-right corner")

	lines := plainLines(result)
	require.Len(t, lines, 5)
	assert.Equal(t, "╭─ Title ──────────╮", lines[0])
	assert.Equal(t, "│content           │", lines[1])
}

func TestRenderWithTitleBorder_LongTitle(t *testing.T) {
	result := RenderWithTitleBorder("content", "This Is A Very Long Title", 20, 5, false, testColorRed, testColorRed)

	lines := plainLines(result)
	require.NotEmpty(t, lines)
	assert.Equal(t, 20, lipgloss.Width(lines[0]))
	assert.Contains(t, lines[0], "...")
}

func TestRenderWithTitleBorder_EmptyTitle(t *testing.T) {
	lines := plainLines(RenderWithTitleBorder("x", "", 6, 3, false, testColorRed, testColorRed))
	assert.Equal(t, []string{"╭────╮", "│x   │", "╰────╯"}, lines)
}

func TestFrame_EveryLineHasFrameWidth(t *testing.T) {
	f := Frame{Title: "삼성 Semiconductors", Width: 24, Height: 6}
	content := "a line that is much longer than the frame\n반도체\n"
	for _, line := range plainLines(f.Render(content)) {
		assert.Equal(t, 24, lipgloss.Width(line), "line %q", line)
	}
}

func TestFrame_ClipsExtraContentLines(t *testing.T) {
	lines := plainLines(Frame{Width: 6, Height: 4}.Render("1\n2\n3\n4\n5"))
	require.Len(t, lines, 4)
	assert.Equal(t, "│1   │", lines[1])
	assert.Equal(t, "│2   │", lines[2])
}

func TestFrame_MarksOnEveryEdge(t *testing.T) {
	f := Frame{
		Width:  8,
		Height: 5,
		Marks: []Mark{
			{Edge: EdgeTop, Offset: 1, Glyph: "▽"},
			{Edge: EdgeRight, Offset: 0, Glyph: "◁"},
			{Edge: EdgeBottom, Offset: 4, Glyph: "●"},
			{Edge: EdgeLeft, Offset: 2, Glyph: "▷"},
		},
	}
	lines := plainLines(f.Render(""))
	require.Len(t, lines, 5)
	assert.Equal(t, "╭─▽────╮", lines[0])
	assert.Equal(t, "│      ◁", lines[1])
	assert.Equal(t, "▷      │", lines[3])
	assert.Equal(t, "╰────●─╯", lines[4])
}

func TestFrame_TitleStopsBeforeTopMark(t *testing.T) {
	f := Frame{
		Title:  "Semiconductors",
		Width:  20,
		Height: 3,
		Marks:  []Mark{{Edge: EdgeTop, Offset: 9, Glyph: "▽"}},
	}
	top := plainLines(f.Render(""))[0]
	assert.Equal(t, 20, lipgloss.Width(top))
	assert.Contains(t, top, "▽")
	assert.Contains(t, top, "Sem...")
}

func TestFrame_MarkWrap(t *testing.T) {
	f := Frame{
		Width:  6,
		Height: 3,
		Marks: []Mark{{Edge: EdgeBottom, Offset: 0, Glyph: "*", Wrap: func(s string) string {
			return "[" + s + "]"
		}}},
	}
	assert.Contains(t, f.Render(""), "[")
}
