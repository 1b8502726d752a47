// models/models.go
package models

import (
	"time"

	"github.com/wfunc/simonsays/game"
	"github.com/wfunc/simonsays/tone"
)

// Client requests.

type DifficultyRequest struct {
	Difficulty string `json:"difficulty"`
}

type InputRequest struct {
	Color string `json:"color"`
}

type KeyRequest struct {
	Key string `json:"key"`
}

// AudioStatus is sent by the browser once it knows whether it can play sound.
type AudioStatus struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// Server messages.

type ScorePayload struct {
	Score int `json:"score"`
}

type RoundPayload struct {
	Round int `json:"round"`
}

type MessagePayload struct {
	Text     string `json:"text"`
	Severity string `json:"severity"`
}

type EnabledPayload struct {
	Enabled bool `json:"enabled"`
}

type FlashPayload struct {
	Color      string `json:"color"`
	DurationMs int64  `json:"duration_ms"`
}

type VoicePayload struct {
	Frequency  float64 `json:"frequency"`
	Waveform   string  `json:"waveform"`
	Gain       float64 `json:"gain"`
	DurationMs int64   `json:"duration_ms"`
	OffsetMs   int64   `json:"offset_ms"`
}

type TonePayload struct {
	Voices []VoicePayload `json:"voices"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

type Welcome struct {
	SessionID    string   `json:"session_id"`
	Colors       []string `json:"colors"`
	Difficulties []string `json:"difficulties"`
}

// Snapshot is the client and operator view of a controller. The sequence
// itself is withheld so it cannot be read off the wire.
type Snapshot struct {
	Phase          string `json:"phase"`
	Won            bool   `json:"won"`
	Round          int    `json:"round"`
	Score          int    `json:"score"`
	Difficulty     string `json:"difficulty"`
	SequenceLength int    `json:"sequence_length"`
	InputLength    int    `json:"input_length"`
}

func NewSnapshot(s game.Snapshot) Snapshot {
	return Snapshot{
		Phase:          s.Phase.String(),
		Won:            s.Won,
		Round:          s.Round,
		Score:          s.Score,
		Difficulty:     string(s.Difficulty),
		SequenceLength: len(s.Sequence),
		InputLength:    len(s.Input),
	}
}

func NewFlash(c game.Color, d time.Duration) FlashPayload {
	return FlashPayload{Color: string(c), DurationMs: d.Milliseconds()}
}

func NewTone(voices []tone.Voice) TonePayload {
	p := TonePayload{Voices: make([]VoicePayload, 0, len(voices))}
	for _, v := range voices {
		p.Voices = append(p.Voices, VoicePayload{
			Frequency:  v.Frequency,
			Waveform:   string(v.Waveform),
			Gain:       v.Gain,
			DurationMs: v.Duration.Milliseconds(),
			OffsetMs:   v.Offset.Milliseconds(),
		})
	}
	return p
}

func NewWelcome(sessionID string) Welcome {
	w := Welcome{SessionID: sessionID}
	for _, c := range game.Colors {
		w.Colors = append(w.Colors, string(c))
	}
	for _, d := range game.Difficulties {
		w.Difficulties = append(w.Difficulties, string(d))
	}
	return w
}
