// Package input maps keyboard keys to pads.
package input

import (
	"strings"

	"github.com/wfunc/simonsays/game"
)

var keyMap = map[string]game.Color{
	"1": game.Red,
	"2": game.Blue,
	"3": game.Yellow,
	"4": game.Green,
	"q": game.Red,
	"w": game.Blue,
	"a": game.Yellow,
	"s": game.Green,
}

// ColorForKey returns the pad bound to key, ignoring case.
func ColorForKey(key string) (game.Color, bool) {
	c, ok := keyMap[strings.ToLower(key)]
	return c, ok
}

// KeysFor lists the keys bound to c.
func KeysFor(c game.Color) []string {
	var keys []string
	for _, k := range []string{"1", "2", "3", "4", "q", "w", "a", "s"} {
		if keyMap[k] == c {
			keys = append(keys, k)
		}
	}
	return keys
}
