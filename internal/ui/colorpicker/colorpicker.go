// Package colorpicker provides a node fill picker with preset swatches and a
// free-form hex entry.
package colorpicker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/greta-mvc/flowmap/internal/diagram"
	"github.com/greta-mvc/flowmap/internal/ui/overlay"
	"github.com/greta-mvc/flowmap/internal/ui/styles"
)

// PresetColor represents a named color option.
type PresetColor struct {
	Name string
	Hex  string
}

// PastelPresets are light fills that keep dark node text readable.
var PastelPresets = []PresetColor{
	{Name: "White", Hex: "#ffffff"},
	{Name: "Rose", Hex: "#fde2e4"},
	{Name: "Peach", Hex: "#ffe5d0"},
	{Name: "Butter", Hex: "#fff3b0"},
	{Name: "Mint", Hex: "#d8f3dc"},
	{Name: "Sky", Hex: "#d7ecff"},
	{Name: "Lavender", Hex: "#e9e3ff"},
}

// VividPresets are saturated fills; node text switches to light.
var VividPresets = []PresetColor{
	{Name: "Red", Hex: "#e63946"},
	{Name: "Orange", Hex: "#f4a261"},
	{Name: "Gold", Hex: "#e9c46a"},
	{Name: "Green", Hex: "#2a9d8f"},
	{Name: "Blue", Hex: "#457b9d"},
	{Name: "Indigo", Hex: "#3d348b"},
	{Name: "Plum", Hex: "#7b2cbf"},
}

// NeutralPresets are grays.
var NeutralPresets = []PresetColor{
	{Name: "Gray 1", Hex: "#f1f3f5"},
	{Name: "Gray 2", Hex: "#dee2e6"},
	{Name: "Gray 3", Hex: "#adb5bd"},
	{Name: "Gray 4", Hex: "#6c757d"},
	{Name: "Gray 5", Hex: "#495057"},
	{Name: "Gray 6", Hex: "#343a40"},
	{Name: "Black", Hex: "#000000"},
}

const columnWidth = 14

// SelectMsg carries the chosen color. Hex is passed through untouched; the
// receiving node validates it.
type SelectMsg struct {
	Hex string
}

// CancelMsg is sent when the picker is cancelled.
type CancelMsg struct{}

// Model holds the color picker state.
type Model struct {
	columns        [][]PresetColor
	column         int
	selected       int
	customInput    textinput.Model
	inCustomMode   bool
	customErr      error
	viewportWidth  int
	viewportHeight int
}

// New creates a new color picker with default presets.
func New() Model {
	ti := textinput.New()
	ti.Placeholder = "#rrggbb"
	ti.CharLimit = 7
	ti.Width = 10
	ti.Prompt = ""

	return Model{
		columns:     [][]PresetColor{PastelPresets, VividPresets, NeutralPresets},
		customInput: ti,
	}
}

// SetSize sets the viewport dimensions for overlay rendering.
func (m Model) SetSize(width, height int) Model {
	m.viewportWidth = width
	m.viewportHeight = height
	return m
}

// SetSelected moves the cursor to the preset matching c and leaves custom
// mode. Colors outside the presets select the first swatch.
func (m Model) SetSelected(c diagram.Color) Model {
	m.inCustomMode = false
	m.customErr = nil
	m.customInput.Blur()

	for col, presets := range m.columns {
		for row, preset := range presets {
			if strings.EqualFold(preset.Hex, c.String()) {
				m.column = col
				m.selected = row
				return m
			}
		}
	}
	m.column = 0
	m.selected = 0
	return m
}

// Selected returns the preset under the cursor.
func (m Model) Selected() PresetColor {
	if m.column >= 0 && m.column < len(m.columns) {
		presets := m.columns[m.column]
		if m.selected >= 0 && m.selected < len(presets) {
			return presets[m.selected]
		}
	}
	return PresetColor{}
}

// InCustomMode returns whether the picker is in custom hex entry mode.
func (m Model) InCustomMode() bool {
	return m.inCustomMode
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if mouse, ok := msg.(tea.MouseMsg); ok {
		return m.handleMouse(mouse)
	}
	if m.inCustomMode {
		return m.updateCustomMode(msg)
	}
	return m.updateNormalMode(msg)
}

func (m Model) updateNormalMode(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "j", "down":
		if m.selected < len(m.columns[m.column])-1 {
			m.selected++
		}
	case "k", "up":
		if m.selected > 0 {
			m.selected--
		}
	case "h", "left":
		if m.column > 0 {
			m.column--
			m.selected = min(m.selected, len(m.columns[m.column])-1)
		}
	case "l", "right":
		if m.column < len(m.columns)-1 {
			m.column++
			m.selected = min(m.selected, len(m.columns[m.column])-1)
		}
	case "enter":
		return m, selectCmd(m.Selected().Hex)
	case "esc":
		return m, cancelCmd()
	case "#", "i":
		m.inCustomMode = true
		m.customErr = nil
		m.customInput.SetValue("")
		return m, m.customInput.Focus()
	}
	return m, nil
}

func (m Model) updateCustomMode(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			hex := m.customHex()
			if _, err := diagram.ParseColor(hex); err != nil {
				m.customErr = err
				return m, nil
			}
			return m, selectCmd(hex)
		case "esc":
			m.inCustomMode = false
			m.customErr = nil
			m.customInput.Blur()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.customInput, cmd = m.customInput.Update(msg)
	if m.customErr != nil {
		if _, err := diagram.ParseColor(m.customHex()); err == nil {
			m.customErr = nil
		}
	}
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	if msg.Button != tea.MouseButtonLeft || msg.Action != tea.MouseActionRelease || m.inCustomMode {
		return m, nil
	}
	for col, presets := range m.columns {
		for row := range presets {
			if z := zone.Get(swatchZoneID(col, row)); z != nil && z.InBounds(msg) {
				m.column, m.selected = col, row
				return m, selectCmd(presets[row].Hex)
			}
		}
	}
	return m, nil
}

// customHex returns the typed value with a leading "#".
func (m Model) customHex() string {
	v := strings.TrimSpace(m.customInput.Value())
	if v != "" && !strings.HasPrefix(v, "#") {
		v = "#" + v
	}
	return v
}

// View renders the picker box.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.OverlayTitleColor).
		PaddingLeft(1)
	width := columnWidth * len(m.columns)
	rule := lipgloss.NewStyle().Foreground(styles.OverlayBorderColor).Render(strings.Repeat("─", width))

	var content strings.Builder
	if m.inCustomMode {
		content.WriteString(titleStyle.Render("Custom Color"))
		content.WriteString("\n" + rule + "\n")

		line := " " + m.customInput.View()
		if c, err := diagram.ParseColor(m.customHex()); err == nil {
			line += "  " + lipgloss.NewStyle().Background(lipgloss.Color(c.String())).Render("    ")
		}
		content.WriteString(line + "\n")
		if m.customErr != nil {
			content.WriteString(lipgloss.NewStyle().PaddingLeft(1).Foreground(styles.StatusErrorColor).Render("expected #rgb or #rrggbb"))
			content.WriteString("\n")
		}
		content.WriteString(styles.MutedStyle.PaddingLeft(1).Render("enter apply  esc back"))
	} else {
		content.WriteString(titleStyle.Render("Node Color"))
		content.WriteString("\n" + rule + "\n")

		maxRows := 0
		for _, col := range m.columns {
			maxRows = max(maxRows, len(col))
		}

		columnViews := make([]string, 0, len(m.columns))
		for colIdx, presets := range m.columns {
			var colContent strings.Builder
			for rowIdx := range maxRows {
				if rowIdx >= len(presets) {
					colContent.WriteString(strings.Repeat(" ", columnWidth) + "\n")
					continue
				}
				preset := presets[rowIdx]
				swatch := lipgloss.NewStyle().Background(lipgloss.Color(preset.Hex)).Render("  ")
				prefix := " "
				if colIdx == m.column && rowIdx == m.selected {
					prefix = styles.SelectionIndicatorStyle.Render(">")
				}
				cell := lipgloss.NewStyle().Width(columnWidth).Render(prefix + swatch + " " + preset.Name)
				colContent.WriteString(zone.Mark(swatchZoneID(colIdx, rowIdx), cell) + "\n")
			}
			columnViews = append(columnViews, colContent.String())
		}
		content.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, columnViews...))
		content.WriteString("\n")
		content.WriteString(styles.MutedStyle.PaddingLeft(1).Render("# custom  h/l column  esc cancel"))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(width).
		Render(content.String())
}

// Overlay renders the picker centered on top of a background view.
func (m Model) Overlay(background string) string {
	box := m.View()
	if background == "" {
		return lipgloss.Place(m.viewportWidth, m.viewportHeight, lipgloss.Center, lipgloss.Center, box)
	}
	return overlay.Place(overlay.Config{
		Width:    m.viewportWidth,
		Height:   m.viewportHeight,
		Position: overlay.Center,
	}, box, background)
}

func swatchZoneID(col, row int) string {
	return fmt.Sprintf("colorpicker:%d:%d", col, row)
}

func selectCmd(hex string) tea.Cmd {
	return func() tea.Msg {
		return SelectMsg{Hex: hex}
	}
}

func cancelCmd() tea.Cmd {
	return func() tea.Msg {
		return CancelMsg{}
	}
}
