package game

import (
	"fmt"
	"math/rand"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wfunc/simonsays/logger"
	"github.com/wfunc/simonsays/state"
	"github.com/wfunc/simonsays/timer"
)

// Snapshot is a copy of the controller state at one instant.
type Snapshot struct {
	Phase      state.Phase
	Won        bool
	Round      int
	Score      int
	Difficulty Difficulty
	Sequence   []Color
	Input      []Color
}

// Option configures a Controller.
type Option func(*Controller)

func WithRand(r Rand) Option {
	return func(c *Controller) { c.rng = r }
}

func WithTiming(t Timing) Option {
	return func(c *Controller) { c.timing = t }
}

func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observer = o }
}

func WithDifficulty(d Difficulty) Option {
	return func(c *Controller) {
		if d.Valid() {
			c.difficulty = d
		}
	}
}

// WithID names the controller in log lines.
func WithID(id string) Option {
	return func(c *Controller) { c.id = id }
}

// timerGroups hands out scheduler groups. Controllers may share a scheduler,
// so a group must be unique across the process, not just per controller.
var timerGroups atomic.Uint64

// Controller runs one Simon game at a time. All methods are safe for
// concurrent use; scheduled callbacks and commands are serialised.
type Controller struct {
	mu        sync.Mutex
	id        string
	scheduler timer.Scheduler
	presenter Presenter
	tones     TonePlayer
	observer  Observer
	rng       Rand
	timing    Timing
	machine   *state.Machine
	group     uint64 // scheduler group of the current game

	difficulty Difficulty
	roundDelay time.Duration // fixed when a round starts
	sequence   []Color
	input      []Color
	round      int
	score      int
}

// NewController builds an idle controller. tones may be nil for silent play.
func NewController(scheduler timer.Scheduler, presenter Presenter, tones TonePlayer, opts ...Option) *Controller {
	c := &Controller{
		scheduler:  scheduler,
		presenter:  presenter,
		tones:      tones,
		observer:   nopObserver{},
		timing:     DefaultTiming(),
		machine:    state.NewMachine(),
		difficulty: Medium,
		group:      timerGroups.Add(1),
	}
	if c.tones == nil {
		c.tones = SilentTones
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if c.timing.MaxRounds <= 0 {
		c.timing.MaxRounds = DefaultTiming().MaxRounds
	}
	c.roundDelay = c.timing.Delay(c.difficulty)

	// the guard only fails if the transition table lost this move
	if err := c.machine.AddGuard(state.RoundComplete, state.ShowingSequence, func() bool {
		return c.round < c.timing.MaxRounds
	}); err != nil {
		panic(fmt.Sprintf("game: round guard: %v", err))
	}
	c.machine.OnChange(func(from, to state.Phase) {
		logger.Log.Debugf("game %s#%d: %s -> %s (round %d)", c.id, c.machine.Epoch(), from, to, c.round)
	})
	return c
}

// Start begins a new game, abandoning any game in progress.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelTimers()
	tok := c.machine.Restart()
	c.clear()

	c.presenter.ShowScore(c.score)
	c.presenter.ShowRound(c.round)
	c.presenter.ShowMessage("Get ready!", SeverityInfo)
	c.presenter.SetControlsEnabled(false)

	logger.Log.Infof("game %s started on %s", c.id, c.difficulty)
	c.observer.GameStarted(c.difficulty)

	c.after(tok, c.timing.GraceDelay, c.advanceRound)
}

// Reset abandons the current game and returns to Idle.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelTimers()
	c.machine.Reset()
	c.clear()

	c.presenter.ShowScore(c.score)
	c.presenter.ShowRound(c.round)
	c.presenter.ShowMessage("Press START to begin!", SeverityNone)
	c.presenter.SetControlsEnabled(true)
	c.presenter.SetColorButtonsEnabled(true)
}

// Stop abandons the current game without telling the presenter. Used when
// the player has gone away.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelTimers()
	c.machine.Reset()
	c.clear()
}

// SetDifficulty changes the playback delay for rounds that have not started.
func (c *Controller) SetDifficulty(d Difficulty) error {
	if !d.Valid() {
		return fmt.Errorf("%q: %w", string(d), ErrInvalidDifficulty)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.difficulty = d
	return nil
}

func (c *Controller) Difficulty() Difficulty {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.difficulty
}

// HandleInput records one pad press. Presses outside the player's turn are
// ignored.
func (c *Controller) HandleInput(color Color) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.machine.Phase() != state.PlayerTurn || !color.Valid() {
		return
	}

	c.tones.PlayTone(color, c.timing.InputTone)
	c.input = append(c.input, color)

	i := len(c.input) - 1
	if c.input[i] != c.sequence[i] {
		c.gameOver(false)
		return
	}
	if len(c.input) == len(c.sequence) {
		c.completeRound()
	}
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		Phase:      c.machine.Phase(),
		Won:        c.machine.Won(),
		Round:      c.round,
		Score:      c.score,
		Difficulty: c.difficulty,
		Sequence:   slices.Clone(c.sequence),
		Input:      slices.Clone(c.input),
	}
}

// cancelTimers drops everything the current game scheduled and opens a fresh
// group for the next one.
func (c *Controller) cancelTimers() {
	c.scheduler.RemoveGroup(c.group)
	c.group = timerGroups.Add(1)
}

func (c *Controller) clear() {
	c.round = 0
	c.score = 0
	c.sequence = nil
	c.input = nil
}

// after schedules fn in the current group. fn runs with c.mu held and only
// if the game is still in the epoch and phase of tok.
func (c *Controller) after(tok state.Token, delay time.Duration, fn func()) {
	c.scheduler.AddTimer(c.group, delay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		if !c.machine.Valid(tok) {
			return
		}
		fn()
	})
}

func (c *Controller) advanceRound() {
	if err := c.machine.Transition(state.ShowingSequence); err != nil {
		logger.Log.Debugf("game %s: advance round: %v", c.id, err)
		return
	}

	c.round++
	c.input = c.input[:0]
	c.sequence = append(c.sequence, Colors[c.rng.Intn(len(Colors))])
	c.roundDelay = c.timing.Delay(c.difficulty)

	c.presenter.ShowScore(c.score)
	c.presenter.ShowRound(c.round)
	c.presenter.ShowMessage(fmt.Sprintf("Round %d - Watch carefully!", c.round), SeverityInfo)
	c.observer.RoundStarted(c.round)

	c.after(c.machine.Token(), c.timing.PacingDelay, c.showSequence)
}

func (c *Controller) showSequence() {
	c.presenter.SetColorButtonsEnabled(false)

	tok := c.machine.Token()
	delay := c.roundDelay
	flash := FlashDuration(delay)

	for i, color := range c.sequence {
		color := color
		c.after(tok, time.Duration(i)*delay, func() {
			c.presenter.FlashColor(color, flash)
			c.tones.PlayTone(color, flash)
		})
	}
	last := time.Duration(len(c.sequence)-1) * delay
	c.after(tok, last+flash, c.beginPlayerTurn)
}

func (c *Controller) beginPlayerTurn() {
	if err := c.machine.Transition(state.PlayerTurn); err != nil {
		logger.Log.Debugf("game %s: player turn: %v", c.id, err)
		return
	}
	c.presenter.SetColorButtonsEnabled(true)
	c.presenter.ShowMessage("Your turn! Repeat the sequence.", SeverityInfo)
}

func (c *Controller) completeRound() {
	if err := c.machine.Transition(state.RoundComplete); err != nil {
		logger.Log.Debugf("game %s: complete round: %v", c.id, err)
		return
	}

	c.score += c.round * 10
	c.presenter.ShowScore(c.score)
	c.presenter.SetColorButtonsEnabled(false)
	c.observer.RoundCompleted(c.round, c.score)

	if c.round >= c.timing.MaxRounds {
		c.gameOver(true)
		return
	}

	c.presenter.ShowMessage("Correct! Get ready for the next round...", SeveritySuccess)
	c.tones.PlaySuccessChime()
	c.after(c.machine.Token(), c.timing.RoundCompleteDelay, c.advanceRound)
}

func (c *Controller) gameOver(won bool) {
	if err := c.machine.Finish(won); err != nil {
		logger.Log.Debugf("game %s: game over: %v", c.id, err)
		return
	}

	c.presenter.SetColorButtonsEnabled(false)
	c.presenter.SetControlsEnabled(true)

	if won {
		c.presenter.ShowMessage(fmt.Sprintf("You won! Perfect score: %d", c.score), SeveritySuccess)
		c.tones.PlaySuccessChime()
	} else {
		c.presenter.ShowMessage(fmt.Sprintf("Game Over! Final score: %d", c.score), SeverityError)
		c.tones.PlayErrorChime()

		// show the pad the player should have pressed
		if i := len(c.input) - 1; i >= 0 && i < len(c.sequence) {
			c.presenter.FlashColor(c.sequence[i], FlashDuration(c.roundDelay))
		}
	}

	logger.Log.Infof("game %s finished: won=%v round=%d score=%d", c.id, won, c.round, c.score)
	c.observer.GameOver(won, c.round, c.score)
}
