// Package mode defines the mode controller interface and shared services.
package mode

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/greta-mvc/flowmap/internal/config"
	"github.com/greta-mvc/flowmap/internal/diagram"
	"github.com/greta-mvc/flowmap/internal/mode/shared"
	"github.com/greta-mvc/flowmap/internal/registry"
	"github.com/greta-mvc/flowmap/internal/ui/toaster"
)

// AppMode identifies the current application mode.
type AppMode int

const (
	ModeOverview AppMode = iota
	ModeDiagram
)

func (m AppMode) String() string {
	if m == ModeDiagram {
		return "diagram"
	}
	return "overview"
}

// Controller defines what the root model needs from every mode.
type Controller interface {
	// Init returns initial commands for the mode.
	Init() tea.Cmd

	// View renders the mode's UI.
	View() string

	// Capturing reports whether the mode is consuming raw keystrokes (a
	// focused text input or an open picker), in which case global keys
	// must be passed through.
	Capturing() bool
}

// Invalidator is implemented by sources that cache responses.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Services contains shared dependencies injected into mode controllers.
type Services struct {
	Source     registry.Source
	Config     *config.Config
	Clipboard  shared.Clipboard
	Clock      shared.Clock
	// Visibility is the canvas-wide theme visibility flag.
	Visibility *diagram.VisibilityStore
}

// ShowToastMsg asks the root model to show a toast.
type ShowToastMsg struct {
	Message string
	Style   toaster.Style
}

// Toast returns a command emitting a ShowToastMsg.
func Toast(message string, style toaster.Style) tea.Cmd {
	return func() tea.Msg { return ShowToastMsg{Message: message, Style: style} }
}
