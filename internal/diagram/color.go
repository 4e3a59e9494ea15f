package diagram

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultColor is the neutral fill every node starts with.
const DefaultColor Color = "#ffffff"

// ErrInvalidColor is returned for payloads that are not hex colors.
var ErrInvalidColor = errors.New("invalid color")

var hexColorPattern = regexp.MustCompile(`^#([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// Color is a normalized lower-case "#rrggbb" value. The zero value is not a
// valid color; obtain one through ParseColor.
type Color string

// ParseColor validates a "#rgb" or "#rrggbb" string and normalizes it.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if !hexColorPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	if len(s) == 4 {
		s = "#" + strings.Repeat(s[1:2], 2) + strings.Repeat(s[2:3], 2) + strings.Repeat(s[3:4], 2)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return Color(c.Hex()), nil
}

// MustParseColor is ParseColor for constants.
func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String returns the hex form.
func (c Color) String() string {
	return string(c)
}

// IsLight reports whether dark text reads better on c. Invalid colors are
// treated as light, matching the default fill.
func (c Color) IsLight() bool {
	cc, err := colorful.Hex(string(c))
	if err != nil {
		return true
	}
	_, _, l := cc.Hcl()
	return l > 0.6
}
