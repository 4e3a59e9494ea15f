package diagram

import (
	"context"
	"sync/atomic"

	"github.com/greta-mvc/flowmap/internal/pubsub"
)

// VisibilityReader is the read side of the theme visibility flag. Nodes
// only ever see this half.
type VisibilityReader interface {
	Show() bool
}

// VisibilityStore holds the session-wide "show themes" flag. It has one
// writer, the toggle control that created it, and any number of readers.
type VisibilityStore struct {
	show   atomic.Bool
	broker *pubsub.Broker[bool]
}

// NewVisibilityStore returns a store with themes hidden.
func NewVisibilityStore() *VisibilityStore {
	return &VisibilityStore{broker: pubsub.NewBroker[bool]()}
}

// Show returns the current value.
func (s *VisibilityStore) Show() bool {
	return s.show.Load()
}

// Set stores v and notifies subscribers when the value changed.
func (s *VisibilityStore) Set(v bool) {
	if s.show.Swap(v) != v {
		s.broker.Publish(pubsub.ChangedEvent, v)
	}
}

// Toggle flips the value and returns the new one.
func (s *VisibilityStore) Toggle() bool {
	for {
		old := s.show.Load()
		if s.show.CompareAndSwap(old, !old) {
			s.broker.Publish(pubsub.ChangedEvent, !old)
			return !old
		}
	}
}

// Subscribe returns a channel of value changes that closes with ctx.
func (s *VisibilityStore) Subscribe(ctx context.Context) <-chan pubsub.Event[bool] {
	return s.broker.Subscribe(ctx)
}

// Broker exposes the change stream for tea listeners.
func (s *VisibilityStore) Broker() *pubsub.Broker[bool] {
	return s.broker
}

// Close ends the session and closes every subscription.
func (s *VisibilityStore) Close() {
	s.broker.Close()
}

// StaticVisibility is a fixed VisibilityReader.
type StaticVisibility bool

// Show returns the fixed value.
func (v StaticVisibility) Show() bool { return bool(v) }
