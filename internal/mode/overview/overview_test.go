package overview

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/require"

	"github.com/greta-mvc/flowmap/internal/config"
	"github.com/greta-mvc/flowmap/internal/mode"
	"github.com/greta-mvc/flowmap/internal/mode/shared"
	"github.com/greta-mvc/flowmap/internal/registry"
	"github.com/greta-mvc/flowmap/internal/store"
	"github.com/greta-mvc/flowmap/internal/testutil"
	"github.com/greta-mvc/flowmap/internal/ui/pagination"
	"github.com/greta-mvc/flowmap/internal/ui/toaster"
)

func TestMain(m *testing.M) {
	zone.NewGlobal()
	os.Exit(m.Run())
}

var loadedAt = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T, build func(b *testutil.Builder)) (Model, *shared.MockClipboard) {
	t.Helper()
	db := testutil.NewTestDB(t)
	s, err := store.New(db)
	require.NoError(t, err)
	b := testutil.NewBuilder(t, db)
	build(b)
	b.Build()

	cfg := config.Defaults()
	cfg.Registry.SearchDebounce = time.Millisecond
	clip := &shared.MockClipboard{}
	m := New(mode.Services{
		Source:    s,
		Config:    &cfg,
		Clipboard: clip,
		Clock:     shared.FixedClock(loadedAt),
	}).SetSize(140, 40)
	return m, clip
}

// drive runs cmd and feeds every resulting message back into the model,
// following batches, until nothing is left. Toasts are collected.
func drive(t *testing.T, m Model, cmd tea.Cmd) (Model, []mode.ShowToastMsg) {
	t.Helper()
	var toasts []mode.ShowToastMsg
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
		case mode.ShowToastMsg:
			toasts = append(toasts, msg)
		default:
			var next tea.Cmd
			m, next = m.Update(msg)
			queue = append(queue, next)
		}
	}
	return m, toasts
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		var cmd tea.Cmd
		m, cmd = m.Update(runes(string(r)))
		m, _ = drive(t, m, cmd)
	}
	return m
}

func TestInit_LoadsFirstPage(t *testing.T) {
	m, _ := newTestModel(t, func(b *testutil.Builder) { b.WithCorporations(45) })

	m, _ = drive(t, m, m.Init())

	require.False(t, m.Loading())
	require.Equal(t, registry.StateViewing, m.List().State())
	require.Equal(t, 45, m.List().TotalRows())
	require.Equal(t, 3, m.List().PageCount())
	require.Len(t, m.List().Rows(), registry.PageSize)
	require.Equal(t, "C0000", m.List().Rows()[0].CorpCode)
}

func TestPaging_Keys(t *testing.T) {
	m, _ := newTestModel(t, func(b *testutil.Builder) { b.WithCorporations(45) })
	m, _ = drive(t, m, m.Init())

	m, cmd := m.Update(runes("]"))
	m, _ = drive(t, m, cmd)
	require.Equal(t, 2, m.List().CurrentPage())
	require.Equal(t, "C0020", m.List().Rows()[0].CorpCode)

	m, cmd = m.Update(runes("]"))
	m, _ = drive(t, m, cmd)
	require.Equal(t, 3, m.List().CurrentPage())
	require.Len(t, m.List().Rows(), 5)

	// Past the last page nothing is fetched.
	_, cmd = m.Update(runes("]"))
	require.Nil(t, cmd)

	m, cmd = m.Update(runes("["))
	m, _ = drive(t, m, cmd)
	require.Equal(t, 2, m.List().CurrentPage())
}

func TestPaging_PageMsg(t *testing.T) {
	m, _ := newTestModel(t, func(b *testutil.Builder) { b.WithCorporations(45) })
	m, _ = drive(t, m, m.Init())

	m, cmd := m.Update(pagination.PageMsg{Page: 3})
	m, _ = drive(t, m, cmd)
	require.Equal(t, 3, m.List().CurrentPage())

	m, cmd = m.Update(pagination.PageMsg{Page: 99})
	m, _ = drive(t, m, cmd)
	require.Equal(t, 3, m.List().CurrentPage(), "clamped to the last page")
}

func TestSearch_DebouncedKeyword(t *testing.T) {
	m, _ := newTestModel(t, func(b *testutil.Builder) { b.WithStandardTestData() })
	m, _ = drive(t, m, m.Init())
	require.Equal(t, 5, m.List().TotalRows())

	m, cmd := m.Update(runes("/"))
	require.True(t, m.Capturing())
	m, _ = drive(t, m, cmd)

	m = typeText(t, m, "Sam")
	require.Equal(t, "Sam", m.List().Keyword())
	require.Equal(t, 1, m.List().CurrentPage())
	require.Equal(t, 2, m.List().TotalRows())
	require.Len(t, m.suggestions, 2)

	view := ansi.Strip(m.View())
	require.Contains(t, view, "Samsung Electronics Co., Ltd.")
	require.NotContains(t, view, "Kakao Corp.")
}

func TestSearch_StaleResultsDropped(t *testing.T) {
	m, _ := newTestModel(t, func(b *testutil.Builder) { b.WithStandardTestData() })

	// A fetch is started, then the user types before it returns.
	initCmd := m.Init()
	m, cmd := m.Update(runes("/"))
	m, _ = drive(t, m, cmd)
	m, _ = m.Update(runes("K"))

	stale := initCmd()
	m, _ = m.Update(stale)
	require.Equal(t, registry.StateIdle, m.List().State(), "result for an old sequence must be ignored")
}

func TestSearch_KeystrokeCancelsInFlightFetch(t *testing.T) {
	m, _ := newTestModel(t, func(b *testutil.Builder) { b.WithStandardTestData() })

	_ = m.Init()
	require.True(t, m.search.InFlight())

	m, _ = m.Update(runes("/"))
	m, _ = m.Update(runes("K"))
	require.False(t, m.search.InFlight(), "new input aborts the running fetch before the debounce fires")
}

func TestSearch_CategoryCycle(t *testing.T) {
	m, _ := newTestModel(t, func(b *testutil.Builder) { b.WithStandardTestData() })
	m, _ = drive(t, m, m.Init())

	m, cmd := m.Update(runes("/"))
	m, _ = drive(t, m, cmd)
	m = typeText(t, m, "005930")
	require.Equal(t, 0, m.List().TotalRows(), "corp name does not contain a stock code")

	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m, _ = drive(t, m, cmd)
	require.False(t, m.Capturing())

	// corpName -> firmName -> bizrNo -> jurirNo -> stockCode
	for range 4 {
		m, cmd = m.Update(runes("c"))
		m, _ = drive(t, m, cmd)
	}
	require.Equal(t, registry.CategoryStockCode, m.List().Category())
	require.Equal(t, 1, m.List().TotalRows())
	require.Equal(t, "00126380", m.List().Rows()[0].CorpCode)
}

func TestSearch_EnterSkipsDebounce(t *testing.T) {
	m, _ := newTestModel(t, func(b *testutil.Builder) { b.WithStandardTestData() })
	m, _ = drive(t, m, m.Init())

	m, cmd := m.Update(runes("/"))
	m, _ = drive(t, m, cmd)
	for _, r := range "Kak" {
		m, _ = m.Update(runes(string(r)))
	}

	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.False(t, m.Capturing())
	m, _ = drive(t, m, cmd)
	require.Equal(t, 1, m.List().TotalRows())
}

func TestYank_CopiesCorpCode(t *testing.T) {
	m, clip := newTestModel(t, func(b *testutil.Builder) { b.WithStandardTestData() })
	m, _ = drive(t, m, m.Init())

	m, _ = m.Update(runes("j"))
	require.Equal(t, 1, m.Cursor())

	_, cmd := m.Update(runes("y"))
	_, toasts := drive(t, m, cmd)
	require.Equal(t, []string{"00164779"}, clip.Copied)
	require.Len(t, toasts, 1)
	require.Equal(t, toaster.StyleSuccess, toasts[0].Style)
}

func TestYank_Failure(t *testing.T) {
	m, clip := newTestModel(t, func(b *testutil.Builder) { b.WithStandardTestData() })
	m, _ = drive(t, m, m.Init())
	clip.Err = errors.New("no display")

	_, cmd := m.Update(runes("y"))
	_, toasts := drive(t, m, cmd)
	require.Len(t, toasts, 1)
	require.Equal(t, toaster.StyleError, toasts[0].Style)
}

func TestCursor_StaysInRange(t *testing.T) {
	m, _ := newTestModel(t, func(b *testutil.Builder) { b.WithCorporations(3) })
	m, _ = drive(t, m, m.Init())

	for range 10 {
		m, _ = m.Update(runes("j"))
	}
	require.Equal(t, 2, m.Cursor())
	for range 10 {
		m, _ = m.Update(runes("k"))
	}
	require.Equal(t, 0, m.Cursor())
}

type failingSource struct{ registry.Source }

func (failingSource) Overview(context.Context, registry.Query) (registry.OverviewListData, error) {
	return registry.OverviewListData{}, errors.New("connection refused")
}

func TestLoad_ErrorShowsToast(t *testing.T) {
	cfg := config.Defaults()
	m := New(mode.Services{Source: failingSource{}, Config: &cfg}).SetSize(100, 30)

	m, toasts := drive(t, m, m.Init())
	require.Len(t, toasts, 1)
	require.Equal(t, toaster.StyleError, toasts[0].Style)
	require.Contains(t, toasts[0].Message, "connection refused")
	require.Contains(t, ansi.Strip(m.View()), "error: connection refused")
}

func TestHandleDataChanged_Reloads(t *testing.T) {
	db := testutil.NewTestDB(t)
	s, err := store.New(db)
	require.NoError(t, err)
	testutil.NewBuilder(t, db).WithCorporations(2).Build()

	cfg := config.Defaults()
	m := New(mode.Services{Source: s, Config: &cfg, Clock: shared.FixedClock(loadedAt)}).SetSize(100, 30)
	m, _ = drive(t, m, m.Init())
	require.Equal(t, 2, m.List().TotalRows())

	testutil.NewBuilder(t, db).WithCorporation("X0001").Build()
	m, cmd := m.HandleDataChanged()
	m, _ = drive(t, m, cmd)
	require.Equal(t, 3, m.List().TotalRows())
}

func TestView_StatusLine(t *testing.T) {
	m, _ := newTestModel(t, func(b *testutil.Builder) { b.WithCorporations(45) })
	m, _ = drive(t, m, m.Init())

	view := ansi.Strip(m.View())
	require.Contains(t, view, "45 corporations · page 1/3 · updated just now")
	require.Contains(t, view, "Corp name ▾")
	require.Contains(t, view, "‹")
}
