// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// GlobalKeyMap holds bindings handled by the root model in every mode.
type GlobalKeyMap struct {
	SwitchMode key.Binding
	Help       key.Binding
	Logs       key.Binding
	Quit       key.Binding
}

// DefaultGlobalKeyMap returns the default root bindings.
func DefaultGlobalKeyMap() GlobalKeyMap {
	return GlobalKeyMap{
		SwitchMode: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch mode"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Logs: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "debug log"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k GlobalKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.SwitchMode, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k GlobalKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.SwitchMode, k.Help, k.Logs, k.Quit}}
}

// OverviewKeyMap defines the keybindings for the registry listing.
type OverviewKeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	PrevPage key.Binding
	NextPage key.Binding

	// Search
	FocusSearch key.Binding
	Blur        key.Binding
	Category    key.Binding

	// Actions
	Refresh key.Binding
	Yank    key.Binding
}

// DefaultOverviewKeyMap returns the keybindings for overview mode.
func DefaultOverviewKeyMap() OverviewKeyMap {
	return OverviewKeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "move down"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("[", "pgup"),
			key.WithHelp("[", "previous page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("]", "pgdown"),
			key.WithHelp("]", "next page"),
		),

		FocusSearch: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Blur: key.NewBinding(
			key.WithKeys("esc", "enter"),
			key.WithHelp("esc", "leave search"),
		),
		Category: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "cycle category"),
		),

		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Yank: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy corp code"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k OverviewKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.FocusSearch, k.Category, k.PrevPage, k.NextPage}
}

// FullHelp returns keybindings for the full help view.
func (k OverviewKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PrevPage, k.NextPage}, // Navigation
		{k.FocusSearch, k.Blur, k.Category},    // Search
		{k.Refresh, k.Yank},                    // Actions
	}
}

// DiagramKeyMap defines the keybindings for the classification canvas.
type DiagramKeyMap struct {
	// Selection
	Next     key.Binding
	Prev     key.Binding
	Deselect key.Binding

	// Geometry
	Narrower key.Binding
	Wider    key.Binding
	Shorter  key.Binding
	Taller   key.Binding
	Relayout key.Binding

	// Viewport
	PanUp    key.Binding
	PanDown  key.Binding
	PanLeft  key.Binding
	PanRight key.Binding

	// Node
	Color      key.Binding
	Themes     key.Binding
	ClassUp    key.Binding
	ClassDown  key.Binding
	OpenClass  key.Binding
	Connect    key.Binding
	Disconnect key.Binding
	Edges      key.Binding
}

// DefaultDiagramKeyMap returns the keybindings for diagram mode.
func DefaultDiagramKeyMap() DiagramKeyMap {
	return DiagramKeyMap{
		Next: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next node"),
		),
		Prev: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "previous node"),
		),
		Deselect: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "deselect / cancel"),
		),

		Narrower: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "narrower"),
		),
		Wider: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "wider"),
		),
		Shorter: key.NewBinding(
			key.WithKeys("K"),
			key.WithHelp("K", "shorter"),
		),
		Taller: key.NewBinding(
			key.WithKeys("J"),
			key.WithHelp("J", "taller"),
		),
		Relayout: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "re-layout"),
		),

		PanUp: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "scroll up"),
		),
		PanDown: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "scroll down"),
		),
		PanLeft: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "scroll left"),
		),
		PanRight: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "scroll right"),
		),

		Color: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "recolor"),
		),
		Themes: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle themes"),
		),
		ClassUp: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "previous class"),
		),
		ClassDown: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next class"),
		),
		OpenClass: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open class"),
		),
		Connect: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "connect anchors"),
		),
		Disconnect: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "remove last edge"),
		),
		Edges: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "edge list"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k DiagramKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Color, k.Themes, k.Connect}
}

// FullHelp returns keybindings for the full help view.
func (k DiagramKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Deselect},
		{k.Narrower, k.Wider, k.Shorter, k.Taller, k.Relayout},
		{k.PanUp, k.PanDown, k.PanLeft, k.PanRight},
		{k.Color, k.Themes, k.ClassUp, k.ClassDown, k.OpenClass, k.Connect, k.Disconnect, k.Edges},
	}
}

// AnchorKeyMap picks an anchor side while connecting nodes. The role comes
// from the connect step: source first, then target.
type AnchorKeyMap struct {
	Top    key.Binding
	Right  key.Binding
	Bottom key.Binding
	Left   key.Binding
}

// DefaultAnchorKeyMap returns the side keys used by the connect flow.
func DefaultAnchorKeyMap() AnchorKeyMap {
	return AnchorKeyMap{
		Top: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "top"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "right"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "bottom"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "left"),
		),
	}
}
