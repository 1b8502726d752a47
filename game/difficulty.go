package game

import (
	"errors"
	"strings"
	"time"
)

// Difficulty selects the playback delay.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Difficulties is the fixed difficulty set, slowest first.
var Difficulties = []Difficulty{Easy, Medium, Hard}

var ErrInvalidDifficulty = errors.New("invalid difficulty")

var difficultyNames = map[Difficulty]string{
	Easy:   "Easy",
	Medium: "Medium",
	Hard:   "Hard",
}

func (d Difficulty) Valid() bool {
	_, ok := difficultyNames[d]
	return ok
}

// Name is the display label.
func (d Difficulty) Name() string { return difficultyNames[d] }

func (d Difficulty) String() string { return string(d) }

func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", ErrInvalidDifficulty
	}
	return d, nil
}

// Timing holds every delay the controller schedules.
type Timing struct {
	GraceDelay         time.Duration // start -> first round
	PacingDelay        time.Duration // round announced -> playback
	RoundCompleteDelay time.Duration // round cleared -> next round
	InputTone          time.Duration // tone length for player presses
	MaxRounds          int
	Delays             map[Difficulty]time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		GraceDelay:         1000 * time.Millisecond,
		PacingDelay:        1000 * time.Millisecond,
		RoundCompleteDelay: 1500 * time.Millisecond,
		InputTone:          300 * time.Millisecond,
		MaxRounds:          20,
		Delays: map[Difficulty]time.Duration{
			Easy:   1200 * time.Millisecond,
			Medium: 800 * time.Millisecond,
			Hard:   500 * time.Millisecond,
		},
	}
}

// Delay returns the step spacing for d, falling back to the default table.
func (t Timing) Delay(d Difficulty) time.Duration {
	if delay, ok := t.Delays[d]; ok && delay > 0 {
		return delay
	}
	return DefaultTiming().Delays[d]
}

// FlashDuration is how long a pad stays lit when the step spacing is delay.
func FlashDuration(delay time.Duration) time.Duration {
	return delay * 7 / 10
}
