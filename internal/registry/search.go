package registry

import (
	"context"
	"time"
)

// DefaultDebounce is the quiet period after the last keystroke before a
// search is sent.
const DefaultDebounce = 300 * time.Millisecond

// Search coordinates server-side keyword search. Every keystroke bumps a
// sequence number; when the debounce for a sequence fires only the latest
// one starts a fetch, starting a fetch cancels the previous one, and results
// for anything but the latest sequence are dropped.
//
// Search is driven from a single update loop and is not safe for concurrent
// use.
type Search struct {
	debounce time.Duration
	seq      uint64
	inflight uint64
	cancel   context.CancelFunc
}

// NewSearch creates a coordinator. A non-positive debounce uses the default.
func NewSearch(debounce time.Duration) *Search {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Search{debounce: debounce}
}

// Debounce returns the quiet period.
func (s *Search) Debounce() time.Duration { return s.debounce }

// Seq returns the latest sequence number.
func (s *Search) Seq() uint64 { return s.seq }

// Bump records new input and returns its sequence number.
func (s *Search) Bump() uint64 {
	s.seq++
	return s.seq
}

// Start is called when the debounce for seq fires. It returns a context for
// the fetches of that sequence, cancelling whatever was in flight. The
// context stays live until the next Start or Cancel, so secondary requests
// such as suggestions may outlast the page fetch. ok is false when newer
// input has arrived since seq, in which case nothing should be fetched.
func (s *Search) Start(parent context.Context, seq uint64) (ctx context.Context, ok bool) {
	if seq != s.seq {
		return nil, false
	}
	s.Cancel()
	ctx, s.cancel = context.WithCancel(parent)
	s.inflight = seq
	return ctx, true
}

// Accept reports whether a page result for seq is still current. An
// accepted result finishes the in-flight page fetch.
func (s *Search) Accept(seq uint64) bool {
	if seq != s.seq {
		return false
	}
	if s.inflight == seq {
		s.inflight = 0
	}
	return true
}

// InFlight reports whether a page fetch is running.
func (s *Search) InFlight() bool { return s.inflight != 0 }

// Cancel aborts every request started for the current sequence.
func (s *Search) Cancel() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.inflight = 0
}
