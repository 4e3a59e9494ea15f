// Package pubsub fans typed events out to any number of listeners.
//
// It backs the three places where one writer must reach many readers:
// the theme visibility flag, the debug log, and the database file watcher.
package pubsub

import (
	"context"
	"time"
)

// EventType classifies a published event.
type EventType string

const (
	ChangedEvent EventType = "changed" // shared state or watched file changed
	LoggedEvent  EventType = "logged"  // a log line was written
	FailedEvent  EventType = "failed"  // the producer hit an error
)

// Event is a published payload plus the time it was published.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber hands out subscription channels.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher publishes typed payloads.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
