// Package help contains the help overlay component.
package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/greta-mvc/flowmap/internal/keys"
	"github.com/greta-mvc/flowmap/internal/ui/overlay"
	"github.com/greta-mvc/flowmap/internal/ui/styles"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.OverlayTitleColor).
			PaddingLeft(2)

	dividerStyle = lipgloss.NewStyle().
			Foreground(styles.OverlayBorderColor)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.OverlayTitleColor).
			MarginTop(1)

	keyStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondaryColor).
			Width(11)

	descStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimaryColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.OverlayBorderColor)

	contentStyle = lipgloss.NewStyle().
			Padding(0, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(styles.TextMutedColor).
			MarginTop(1)
)

// Mode selects which bindings the overlay lists.
type Mode int

const (
	ModeOverview Mode = iota
	ModeDiagram
)

// Model holds the help view state.
type Model struct {
	global   keys.GlobalKeyMap
	overview keys.OverviewKeyMap
	diagram  keys.DiagramKeyMap
	anchor   keys.AnchorKeyMap
	mode     Mode
	width    int
	height   int
}

// New creates a help view for the given mode.
func New(mode Mode) Model {
	return Model{
		global:   keys.DefaultGlobalKeyMap(),
		overview: keys.DefaultOverviewKeyMap(),
		diagram:  keys.DefaultDiagramKeyMap(),
		anchor:   keys.DefaultAnchorKeyMap(),
		mode:     mode,
	}
}

// SetMode switches the listed bindings.
func (m Model) SetMode(mode Mode) Model {
	m.mode = mode
	return m
}

// SetSize updates dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// View renders the help box centered on an empty screen.
func (m Model) View() string {
	return m.Overlay("")
}

// Overlay renders the help box on top of a background view.
func (m Model) Overlay(background string) string {
	box := m.renderContent()
	if background == "" {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, box, background)
}

type section struct {
	title string
	lines []string
}

func (m Model) sections() []section {
	general := section{"General", bindings(m.global.SwitchMode, m.global.Help, m.global.Logs, m.global.Quit)}

	if m.mode == ModeDiagram {
		d := m.diagram
		return []section{
			{"Nodes", append(bindings(d.Next, d.Prev, d.Deselect, d.Relayout), keyDesc("hjkl", "pan canvas"))},
			{"Node", append([]string{keyDesc("H/L", "narrower/wider"), keyDesc("K/J", "shorter/taller")},
				bindings(d.Color, d.Themes, d.ClassUp, d.ClassDown, d.OpenClass)...)},
			{"Edges", append(bindings(d.Connect, d.Disconnect, d.Edges), keyDesc("hjkl", "pick anchor side"))},
			general,
		}
	}

	o := m.overview
	return []section{
		{"Navigation", bindings(o.Up, o.Down, o.PrevPage, o.NextPage)},
		{"Search", bindings(o.FocusSearch, o.Blur, o.Category)},
		{"Actions", bindings(o.Refresh, o.Yank)},
		general,
	}
}

func (m Model) renderContent() string {
	columnStyle := lipgloss.NewStyle().MarginRight(4)

	secs := m.sections()
	cols := make([]string, len(secs))
	for i, s := range secs {
		var b strings.Builder
		b.WriteString(sectionStyle.Render(s.title))
		b.WriteString("\n")
		for _, line := range s.lines {
			b.WriteString(line)
		}
		if i < len(secs)-1 {
			cols[i] = columnStyle.Render(b.String())
		} else {
			cols[i] = b.String()
		}
	}
	columns := lipgloss.JoinHorizontal(lipgloss.Top, cols...)

	boxWidth := lipgloss.Width(columns) + 4
	body := contentStyle.Render(columns + "\n" + footerStyle.Render("Press ? or Esc to close"))
	divider := dividerStyle.Render(strings.Repeat("─", boxWidth))

	title := "Overview keys"
	if m.mode == ModeDiagram {
		title = "Diagram keys"
	}
	return boxStyle.Width(boxWidth).Render(titleStyle.Render(title) + "\n" + divider + "\n" + body)
}

func bindings(bs ...key.Binding) []string {
	out := make([]string, 0, len(bs))
	for _, b := range bs {
		h := b.Help()
		out = append(out, keyDesc(h.Key, h.Desc))
	}
	return out
}

func keyDesc(k, desc string) string {
	return keyStyle.Render(k) + descStyle.Render(desc) + "\n"
}
