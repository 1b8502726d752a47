// Package tone describes the sounds the browser synthesizes.
package tone

import (
	"time"

	"github.com/wfunc/simonsays/game"
)

type Waveform string

const (
	Sine     Waveform = "sine"
	Sawtooth Waveform = "sawtooth"
)

// Voice is one oscillator note, starting Offset after the command arrives.
type Voice struct {
	Frequency float64
	Waveform  Waveform
	Gain      float64
	Duration  time.Duration
	Offset    time.Duration
}

// pitches tune the pads to a C major chord.
var pitches = map[game.Color]float64{
	game.Red:    261.63, // C4
	game.Blue:   329.63, // E4
	game.Yellow: 392.00, // G4
	game.Green:  523.25, // C5
}

var chimeNotes = []float64{523.25, 659.25, 783.99} // C5 E5 G5

const (
	padGain     = 0.3
	chimeGain   = 0.2
	chimeLength = 300 * time.Millisecond
	chimeStep   = 150 * time.Millisecond
	errorPitch  = 150.0
	errorGain   = 0.3
	errorLength = 500 * time.Millisecond
)

// Pitch returns the frequency of c in Hz, or 0 for an unknown color.
func Pitch(c game.Color) float64 {
	return pitches[c]
}

func ForColor(c game.Color, d time.Duration) []Voice {
	return []Voice{{Frequency: Pitch(c), Waveform: Sine, Gain: padGain, Duration: d}}
}

// SuccessChime is a rising arpeggio.
func SuccessChime() []Voice {
	voices := make([]Voice, 0, len(chimeNotes))
	for i, f := range chimeNotes {
		voices = append(voices, Voice{
			Frequency: f,
			Waveform:  Sine,
			Gain:      chimeGain,
			Duration:  chimeLength,
			Offset:    time.Duration(i) * chimeStep,
		})
	}
	return voices
}

// ErrorChime is a low buzz.
func ErrorChime() []Voice {
	return []Voice{{Frequency: errorPitch, Waveform: Sawtooth, Gain: errorGain, Duration: errorLength}}
}
