// Package shared provides common utilities shared between mode controllers.
package shared

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
)

// Clipboard defines the interface for clipboard operations.
type Clipboard interface {
	Copy(text string) error
}

// SystemClipboard copies through the local clipboard tool, or through an
// OSC 52 escape sequence when running over SSH or inside a multiplexer
// where no local clipboard is reachable.
type SystemClipboard struct {
	// Terminal receives OSC 52 sequences. Nil means os.Stderr.
	Terminal io.Writer
}

// MockClipboard records copied text for tests.
type MockClipboard struct {
	Copied []string
	Err    error
}

// Copy records text, or returns Err when set.
func (m *MockClipboard) Copy(text string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Copied = append(m.Copied, text)
	return nil
}

// Copy copies text to the clipboard.
func (c SystemClipboard) Copy(text string) error {
	if shouldUseOSC52() {
		w := c.Terminal
		if w == nil {
			w = os.Stderr
		}
		if _, err := io.WriteString(w, osc52Sequence(text)); err != nil {
			return fmt.Errorf("writing osc52 sequence: %w", err)
		}
		return nil
	}
	if clipboard.Unsupported {
		return fmt.Errorf("no clipboard utility available")
	}
	return clipboard.WriteAll(text)
}

// osc52Sequence wraps text for the active multiplexer, if any.
func osc52Sequence(text string) string {
	seq := osc52.New(text)
	switch {
	case os.Getenv("TMUX") != "":
		seq = seq.Tmux()
	case os.Getenv("STY") != "":
		seq = seq.Screen()
	}
	return seq.String()
}

func shouldUseOSC52() bool {
	for _, env := range []string{"SSH_TTY", "SSH_CLIENT", "SSH_CONNECTION", "TMUX", "STY"} {
		if strings.TrimSpace(os.Getenv(env)) != "" {
			return true
		}
	}
	return false
}
