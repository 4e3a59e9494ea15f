package shared

import (
	"fmt"
	"time"
)

// Clock provides the current time. Tests inject a fixed clock.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock time.Time

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time { return time.Time(c) }

// LoadedAgo formats how long ago data was loaded for the status bar:
// "just now", "42s ago", "5m ago", "3h ago", "2d ago". A zero time reads
// "never".
func LoadedAgo(loaded time.Time, clock Clock) string {
	if loaded.IsZero() {
		return "never"
	}
	d := clock.Now().Sub(loaded)
	switch {
	case d < 5*time.Second:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
