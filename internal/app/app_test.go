package app

import (
	"bytes"
	"os"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/exp/teatest"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greta-mvc/flowmap/internal/config"
	"github.com/greta-mvc/flowmap/internal/log"
	"github.com/greta-mvc/flowmap/internal/mode"
	"github.com/greta-mvc/flowmap/internal/mode/shared"
	"github.com/greta-mvc/flowmap/internal/pubsub"
	"github.com/greta-mvc/flowmap/internal/store"
	"github.com/greta-mvc/flowmap/internal/testutil"
	"github.com/greta-mvc/flowmap/internal/ui/toaster"
	"github.com/greta-mvc/flowmap/internal/watcher"
)

func TestMain(m *testing.M) {
	zone.NewGlobal()
	os.Exit(m.Run())
}

// createTestModel creates a sized Model over a seeded in-memory store.
func createTestModel(t *testing.T) (Model, *testutil.Builder) {
	t.Helper()
	db := testutil.NewTestDB(t)
	s, err := store.New(db)
	require.NoError(t, err)
	b := testutil.NewBuilder(t, db)
	b.WithStandardTestData().Build()

	cfg := config.Defaults()
	cfg.Registry.SearchDebounce = time.Millisecond
	m := newModel(mode.Services{
		Source:    s,
		Config:    &cfg,
		Clipboard: &shared.MockClipboard{},
		Clock:     shared.FixedClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)),
	})
	t.Cleanup(func() { _ = m.Close() })

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	return updated.(Model), testutil.NewBuilder(t, db)
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

// drive runs cmd and feeds every resulting message back into the model,
// following batches, until nothing is left.
func drive(m Model, cmd tea.Cmd) Model {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			var next tea.Cmd
			m, next = update(m, msg)
			queue = append(queue, next)
		}
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestApp_DefaultMode(t *testing.T) {
	m, _ := createTestModel(t)
	assert.Equal(t, mode.ModeOverview, m.CurrentMode())
}

func TestApp_WindowSizeMsg(t *testing.T) {
	m, _ := createTestModel(t)
	m, _ = update(m, tea.WindowSizeMsg{Width: 120, Height: 50})
	assert.Equal(t, 120, m.width)
	assert.Equal(t, 50, m.height)
}

func TestApp_TabSwitchesMode(t *testing.T) {
	m, _ := createTestModel(t)

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, mode.ModeDiagram, m.CurrentMode())
	assert.Contains(t, ansi.Strip(m.View()), "Classification map")

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, mode.ModeOverview, m.CurrentMode())
}

func TestApp_GlobalKeysSkippedWhileCapturing(t *testing.T) {
	m, _ := createTestModel(t)

	m, cmd := update(m, runes("/"))
	m = drive(m, cmd)
	require.True(t, m.overview.Capturing())

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, mode.ModeOverview, m.CurrentMode(), "tab goes to the search input")

	_, cmd = update(m, runes("q"))
	if cmd != nil {
		_, quit := cmd().(tea.QuitMsg)
		assert.False(t, quit, "q is typed, not quit")
	}
}

func TestApp_Quit(t *testing.T) {
	m, _ := createTestModel(t)
	_, cmd := update(m, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestApp_HelpFollowsMode(t *testing.T) {
	m, _ := createTestModel(t)

	m, _ = update(m, runes("?"))
	assert.Contains(t, ansi.Strip(m.View()), "Overview keys")

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.NotContains(t, ansi.Strip(m.View()), "Overview keys")

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = update(m, runes("?"))
	assert.Contains(t, ansi.Strip(m.View()), "Diagram keys")

	// Keys do not reach the mode while help is open.
	m, _ = update(m, runes("n"))
	_, selected := m.canvas.Canvas().Selected()
	assert.False(t, selected)
}

func TestApp_ShowToast(t *testing.T) {
	m, _ := createTestModel(t)

	m, cmd := update(m, mode.ShowToastMsg{Message: "Copied 00126380", Style: toaster.StyleSuccess})
	require.NotNil(t, cmd, "dismissal is scheduled")
	assert.True(t, m.toaster.Visible())
	assert.Contains(t, ansi.Strip(m.View()), "Copied 00126380")
}

func TestApp_LogOverlayOnlyInDebugMode(t *testing.T) {
	m, _ := createTestModel(t)

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyCtrlX})
	assert.False(t, m.logOverlay.Visible())

	m.debugMode = true
	m, _ = update(m, log.LogEvent{Type: pubsub.LoggedEvent, Payload: "12:00:00 [INFO] [mode] hello\n"})
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyCtrlX})
	require.True(t, m.logOverlay.Visible())
	assert.Contains(t, ansi.Strip(m.View()), "hello")

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyCtrlX})
	assert.False(t, m.logOverlay.Visible())
}

func TestApp_DataChangedReloadsBothModes(t *testing.T) {
	m, more := createTestModel(t)

	var cmd tea.Cmd
	m.overview, cmd = m.overview.HandleDataChanged()
	m = drive(m, cmd)
	require.Equal(t, 5, m.overview.List().TotalRows())

	more.WithCorporation("09990001").WithDomain(9, "Robotics").Build()
	m, cmd = update(m, pubsub.Event[watcher.Change]{Type: pubsub.ChangedEvent, Payload: watcher.Change{Path: "registry.db"}})
	m = drive(m, cmd)

	assert.Equal(t, 6, m.overview.List().TotalRows())
	assert.Equal(t, 3, m.canvas.Canvas().Len())
}

func TestApp_Program(t *testing.T) {
	m, _ := createTestModel(t)
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(160, 40))

	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("Corporations"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyTab})
	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("Classification map"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(runes("q"))
	tm.WaitFinished(t, teatest.WithFinalTimeout(3*time.Second))
}
