package overview

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/greta-mvc/flowmap/internal/registry"
)

const suggestTimeout = 5 * time.Second

// searchTickMsg fires when the debounce for a keystroke elapses.
type searchTickMsg struct {
	seq uint64
}

// pageLoadedMsg carries one fetched page.
type pageLoadedMsg struct {
	seq   uint64
	query registry.Query
	data  registry.OverviewListData
	err   error
}

// suggestionsMsg carries name suggestions for the current keyword.
type suggestionsMsg struct {
	seq   uint64
	items []registry.SearchItem
	err   error
}

func debounceSearch(seq uint64, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return searchTickMsg{seq: seq}
	})
}

func fetchPage(ctx context.Context, src registry.Source, seq uint64, q registry.Query) tea.Cmd {
	return func() tea.Msg {
		data, err := src.Overview(ctx, q)
		return pageLoadedMsg{seq: seq, query: q, data: data, err: err}
	}
}

func fetchSuggestions(parent context.Context, src registry.Source, seq uint64, term string, cat registry.Category) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, suggestTimeout)
		defer cancel()
		items, err := src.Suggest(ctx, term, cat)
		return suggestionsMsg{seq: seq, items: items, err: err}
	}
}
