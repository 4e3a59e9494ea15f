// Package overlay provides utilities for rendering content on top of
// background views without clearing the screen.
package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Position specifies where to place the overlay content.
type Position int

const (
	// Center places the overlay in the center of the viewport.
	Center Position = iota
	// Top places the overlay at the top center of the viewport.
	Top
	// Bottom places the overlay at the bottom center of the viewport.
	Bottom
	// BottomRight places the overlay in the bottom-right corner.
	BottomRight
	// Absolute places the overlay's top-left corner at (X, Y). Either may be
	// negative; the part outside the viewport is clipped.
	Absolute
)

// Config controls overlay rendering behavior.
type Config struct {
	// Width is the total viewport width.
	Width int
	// Height is the total viewport height.
	Height int
	Position Position
	// PadX adds horizontal padding from edges (BottomRight only).
	PadX int
	// PadY adds vertical padding from edges (Top, Bottom, BottomRight).
	PadY int
	// X and Y are used by Absolute.
	X int
	Y int
}

// Place renders foreground content on top of background. Both may carry
// ANSI styling; the foreground is clipped to the viewport.
func Place(cfg Config, fg, bg string) string {
	fgLines := strings.Split(fg, "\n")
	bgLines := strings.Split(bg, "\n")

	for len(bgLines) < cfg.Height {
		bgLines = append(bgLines, strings.Repeat(" ", cfg.Width))
	}

	startX, startY := calculatePosition(cfg, lipgloss.Width(fg), len(fgLines))

	for i, fgLine := range fgLines {
		bgY := startY + i
		if bgY < 0 {
			continue
		}
		if bgY >= len(bgLines) {
			break
		}

		x := startX
		if x < 0 {
			fgLine = ansi.TruncateLeft(fgLine, -x, "")
			x = 0
		}
		if cfg.Width > 0 {
			if x >= cfg.Width {
				continue
			}
			fgLine = ansi.Truncate(fgLine, cfg.Width-x, "")
		}
		fgLineWidth := ansi.StringWidth(fgLine)
		if fgLineWidth == 0 {
			continue
		}

		bgLine := bgLines[bgY]
		leftPart := ansi.Truncate(bgLine, x, "")
		if w := ansi.StringWidth(leftPart); w < x {
			leftPart += strings.Repeat(" ", x-w)
		}

		endX := x + fgLineWidth
		var rightPart string
		if endX < ansi.StringWidth(bgLine) {
			rightPart = ansi.TruncateLeft(bgLine, endX, "")
		}

		bgLines[bgY] = leftPart + fgLine + rightPart
	}

	return strings.Join(bgLines, "\n")
}

// Blank returns a width x height block of spaces to composite onto.
func Blank(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	line := strings.Repeat(" ", width)
	lines := make([]string, height)
	for i := range lines {
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// calculatePosition determines the x,y starting coordinates for the overlay.
func calculatePosition(cfg Config, fgWidth, fgHeight int) (x, y int) {
	switch cfg.Position {
	case Absolute:
		return cfg.X, cfg.Y
	case Top:
		x = (cfg.Width - fgWidth) / 2
		y = cfg.PadY
	case Bottom:
		x = (cfg.Width - fgWidth) / 2
		y = cfg.Height - fgHeight - cfg.PadY
	case BottomRight:
		x = cfg.Width - fgWidth - cfg.PadX
		y = cfg.Height - fgHeight - cfg.PadY
	default: // Center
		x = (cfg.Width - fgWidth) / 2
		y = (cfg.Height - fgHeight) / 2
	}

	return max(x, 0), max(y, 0)
}
