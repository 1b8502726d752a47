package game

import (
	"errors"
	"time"
)

// Severity styles a status message.
type Severity string

const (
	SeverityNone    Severity = ""
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Presenter renders game state for the player.
type Presenter interface {
	ShowScore(score int)
	ShowRound(round int)
	ShowMessage(text string, severity Severity)
	SetControlsEnabled(enabled bool)
	SetColorButtonsEnabled(enabled bool)
	FlashColor(color Color, duration time.Duration)
}

// TonePlayer makes the sounds. Implementations without audio do nothing.
type TonePlayer interface {
	PlayTone(color Color, duration time.Duration)
	PlaySuccessChime()
	PlayErrorChime()
}

// ErrAudioUnavailable marks a tone player that cannot produce sound.
var ErrAudioUnavailable = errors.New("audio unavailable")

// Observer is told about game lifecycle events, for metrics and logs.
type Observer interface {
	GameStarted(difficulty Difficulty)
	RoundStarted(round int)
	RoundCompleted(round, score int)
	GameOver(won bool, round, score int)
}

// Rand is the source of pad draws. *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

type silentTones struct{}

func (silentTones) PlayTone(Color, time.Duration) {}
func (silentTones) PlaySuccessChime()             {}
func (silentTones) PlayErrorChime()               {}

// SilentTones is a TonePlayer that never makes a sound.
var SilentTones TonePlayer = silentTones{}

type nopObserver struct{}

func (nopObserver) GameStarted(Difficulty)  {}
func (nopObserver) RoundStarted(int)        {}
func (nopObserver) RoundCompleted(int, int) {}
func (nopObserver) GameOver(bool, int, int) {}
