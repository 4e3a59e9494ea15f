// Package app contains the root application model.
package app

import (
	"context"
	"os"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/greta-mvc/flowmap/internal/config"
	"github.com/greta-mvc/flowmap/internal/diagram"
	"github.com/greta-mvc/flowmap/internal/keys"
	"github.com/greta-mvc/flowmap/internal/log"
	"github.com/greta-mvc/flowmap/internal/mode"
	"github.com/greta-mvc/flowmap/internal/mode/canvas"
	"github.com/greta-mvc/flowmap/internal/mode/overview"
	"github.com/greta-mvc/flowmap/internal/mode/shared"
	"github.com/greta-mvc/flowmap/internal/pubsub"
	"github.com/greta-mvc/flowmap/internal/registry"
	"github.com/greta-mvc/flowmap/internal/ui/help"
	"github.com/greta-mvc/flowmap/internal/ui/logoverlay"
	"github.com/greta-mvc/flowmap/internal/ui/styles"
	"github.com/greta-mvc/flowmap/internal/ui/toaster"
	"github.com/greta-mvc/flowmap/internal/watcher"
)

// tab bar
const headerHeight = 1

// Model is the root application state.
type Model struct {
	// Mode management
	currentMode mode.AppMode
	overview    overview.Model
	canvas      canvas.Model

	// Shared services (passed to mode controllers)
	services mode.Services
	keys     keys.GlobalKeyMap

	width  int
	height int

	// Centralized toaster - owned by app, not individual modes
	toaster toaster.Model

	help     help.Model
	showHelp bool

	debugMode   bool
	logOverlay  logoverlay.Model
	logCtx      context.Context
	logCancel   context.CancelFunc
	logListener *log.LogListener

	// File watcher for auto-refresh (pubsub-based)
	watcherHandle   *watcher.Watcher
	watcherCtx      context.Context
	watcherCancel   context.CancelFunc
	watcherListener *pubsub.ContinuousListener[watcher.Change]
}

// NewWithConfig creates the application model.
// dbPath is the local registry database, watched when auto-refresh is on and
// the source is the database. debugMode enables the log overlay (Ctrl+X
// toggle).
func NewWithConfig(source registry.Source, cfg config.Config, dbPath string, debugMode bool) Model {
	var (
		watcherHandle   *watcher.Watcher
		watcherCtx      context.Context
		watcherCancel   context.CancelFunc
		watcherListener *pubsub.ContinuousListener[watcher.Change]
	)

	if cfg.AutoRefresh && cfg.Source == config.SourceDB && dbPath != "" {
		w, err := watcher.New(watcher.DefaultConfig(dbPath))
		if err == nil {
			watcherCtx, watcherCancel = context.WithCancel(context.Background())
			watcherListener = pubsub.NewContinuousListener[watcher.Change](watcherCtx, w.Broker())
			if err = w.Start(); err == nil {
				watcherHandle = w
			} else {
				watcherCancel()
				watcherCtx, watcherCancel, watcherListener = nil, nil, nil
				_ = w.Stop()
			}
		}
		if err != nil {
			// The app works fine without auto-refresh.
			log.Warn(log.CatWatcher, "auto-refresh disabled", "error", err)
		}
	}

	services := mode.Services{
		Source:     source,
		Config:     &cfg,
		Clipboard:  shared.SystemClipboard{Terminal: os.Stdout},
		Clock:      shared.RealClock{},
		Visibility: diagram.NewVisibilityStore(),
	}

	m := newModel(services)
	m.debugMode = debugMode
	if debugMode {
		m.logCtx, m.logCancel = context.WithCancel(context.Background())
		m.logListener = log.NewListener(m.logCtx)
	}
	m.watcherHandle = watcherHandle
	m.watcherCtx = watcherCtx
	m.watcherCancel = watcherCancel
	m.watcherListener = watcherListener
	return m
}

func newModel(services mode.Services) Model {
	if services.Visibility == nil {
		services.Visibility = diagram.NewVisibilityStore()
	}
	return Model{
		currentMode: mode.ModeOverview,
		overview:    overview.New(services),
		canvas:      canvas.New(services),
		services:    services,
		keys:        keys.DefaultGlobalKeyMap(),
		toaster:     toaster.New(),
		help:        help.New(help.ModeOverview),
		logOverlay:  logoverlay.New(logoverlay.DefaultCapacity),
	}
}

// Init loads both modes and starts the background listeners.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.overview.Init(),
		m.canvas.Init(),
	}
	if m.watcherListener != nil {
		cmds = append(cmds, m.watcherListener.Listen())
	}
	if m.logListener != nil {
		cmds = append(cmds, m.logListener.Listen())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		bodyHeight := max(msg.Height-headerHeight, 1)

		m.overview = m.overview.SetSize(msg.Width, bodyHeight)
		m.canvas = m.canvas.SetSize(msg.Width, bodyHeight)
		m.toaster = m.toaster.SetSize(msg.Width, msg.Height)
		m.help = m.help.SetSize(msg.Width, msg.Height)
		m.logOverlay = m.logOverlay.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.logOverlay.Visible() {
			var cmd tea.Cmd
			m.logOverlay, cmd = m.logOverlay.Update(msg)
			return m, cmd
		}
		if m.showHelp {
			return m, nil
		}
		if msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft {
			for _, target := range []mode.AppMode{mode.ModeOverview, mode.ModeDiagram} {
				if z := zone.Get(tabZoneID(target)); z != nil && z.InBounds(msg) {
					return m.setMode(target), nil
				}
			}
		}
		return m.updateActive(msg)

	case log.LogEvent:
		m.logOverlay = m.logOverlay.Append(msg.Payload)
		return m, m.logListener.Listen()

	case pubsub.Event[watcher.Change]:
		return m.handleDataChanged(msg.Payload)

	case mode.ShowToastMsg:
		var cmd tea.Cmd
		m.toaster, cmd = m.toaster.Toast(msg.Message, msg.Style, toaster.DefaultDuration)
		return m, cmd

	case toaster.DismissMsg:
		m.toaster = m.toaster.Update(msg)
		return m, nil

	case logoverlay.CloseMsg:
		return m, nil
	}

	// Results of background commands go to both modes; each ignores
	// messages it does not own.
	var ovCmd, cvCmd tea.Cmd
	m.overview, ovCmd = m.overview.Update(msg)
	m.canvas, cvCmd = m.canvas.Update(msg)
	return m, tea.Batch(ovCmd, cvCmd)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.debugMode && key.Matches(msg, m.keys.Logs) {
		m.logOverlay = m.logOverlay.Toggle()
		return m, nil
	}

	// The debug log overlay takes precedence while visible.
	if m.logOverlay.Visible() {
		var cmd tea.Cmd
		m.logOverlay, cmd = m.logOverlay.Update(msg)
		return m, cmd
	}

	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Help) || msg.Type == tea.KeyEsc {
			m.showHelp = false
		}
		return m, nil
	}

	if !m.activeController().Capturing() {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
			return m, nil
		case key.Matches(msg, m.keys.SwitchMode):
			next := mode.ModeDiagram
			if m.currentMode == mode.ModeDiagram {
				next = mode.ModeOverview
			}
			return m.setMode(next), nil
		}
	}
	return m.updateActive(msg)
}

func (m Model) activeController() mode.Controller {
	if m.currentMode == mode.ModeDiagram {
		return m.canvas
	}
	return m.overview
}

func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentMode {
	case mode.ModeDiagram:
		m.canvas, cmd = m.canvas.Update(msg)
	default:
		m.overview, cmd = m.overview.Update(msg)
	}
	return m, cmd
}

func (m Model) setMode(next mode.AppMode) Model {
	if next == m.currentMode {
		return m
	}
	log.Info(log.CatMode, "Switching mode", "from", m.currentMode, "to", next)
	m.currentMode = next
	if next == mode.ModeDiagram {
		m.help = m.help.SetMode(help.ModeDiagram)
	} else {
		m.help = m.help.SetMode(help.ModeOverview)
	}
	return m
}

// handleDataChanged drops cached responses and reloads both modes.
func (m Model) handleDataChanged(change watcher.Change) (tea.Model, tea.Cmd) {
	log.Debug(log.CatMode, "database changed, reloading", "path", change.Path)
	if inv, ok := m.services.Source.(mode.Invalidator); ok {
		inv.Invalidate(context.Background())
	}
	var ovCmd, cvCmd tea.Cmd
	m.overview, ovCmd = m.overview.HandleDataChanged()
	m.canvas, cvCmd = m.canvas.HandleDataChanged()
	return m, tea.Batch(ovCmd, cvCmd, m.watcherListener.Listen())
}

// CurrentMode returns the active mode.
func (m Model) CurrentMode() mode.AppMode { return m.currentMode }

func tabZoneID(target mode.AppMode) string {
	return "app:tab:" + target.String()
}

func (m Model) tabBar() string {
	tab := func(target mode.AppMode, label string) string {
		style := styles.InactiveTabStyle
		if target == m.currentMode {
			style = styles.ActiveTabStyle
		}
		return zone.Mark(tabZoneID(target), style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		styles.HeaderStyle.Render(" flowmap "),
		tab(mode.ModeOverview, "Overview"),
		tab(mode.ModeDiagram, "Diagram"),
	)
}

// View implements tea.Model.
func (m Model) View() string {
	view := lipgloss.JoinVertical(lipgloss.Left, m.tabBar(), m.activeController().View())

	if m.showHelp {
		view = m.help.Overlay(view)
	}

	// Overlay toaster on top of active mode's view
	if m.toaster.Visible() {
		view = m.toaster.Overlay(view, m.width, m.height)
	}

	// Overlay log viewer on top (only in debug mode when visible)
	if m.debugMode && m.logOverlay.Visible() {
		view = m.logOverlay.Overlay(view)
	}

	return zone.Scan(view)
}

// Close releases resources held by the application.
func (m *Model) Close() error {
	if m.logCancel != nil {
		m.logCancel()
	}
	m.canvas.Close()
	m.services.Visibility.Close()

	// Cancel watcher subscription context (stops listener)
	if m.watcherCancel != nil {
		m.watcherCancel()
	}

	// Close watcher if we own it
	if m.watcherHandle != nil {
		if err := m.watcherHandle.Stop(); err != nil {
			return err
		}
	}
	return nil
}
