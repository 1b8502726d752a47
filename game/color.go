package game

import (
	"errors"
	"strings"
)

// Color is one of the four pads.
type Color string

const (
	Red    Color = "red"
	Blue   Color = "blue"
	Yellow Color = "yellow"
	Green  Color = "green"
)

// Colors is the fixed pad set, in draw order.
var Colors = []Color{Red, Blue, Yellow, Green}

var ErrUnknownColor = errors.New("unknown color")

func (c Color) Valid() bool {
	for _, known := range Colors {
		if c == known {
			return true
		}
	}
	return false
}

func (c Color) String() string { return string(c) }

// ParseColor accepts a color name in any case.
func ParseColor(s string) (Color, error) {
	c := Color(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", ErrUnknownColor
	}
	return c, nil
}
