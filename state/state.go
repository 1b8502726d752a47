package state

import (
	"errors"
	"fmt"
)

// Phase is a step of the turn-taking loop.
type Phase int

const (
	Idle Phase = iota
	Starting
	ShowingSequence
	PlayerTurn
	RoundComplete
	GameOver
)

var phaseNames = map[Phase]string{
	Idle:            "idle",
	Starting:        "starting",
	ShowingSequence: "showing_sequence",
	PlayerTurn:      "player_turn",
	RoundComplete:   "round_complete",
	GameOver:        "game_over",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// validTransitions lists the moves a running game may make on its own.
// Restart and Reset bypass the table: they are allowed from any phase.
var validTransitions = map[Phase][]Phase{
	Starting:        {ShowingSequence},
	ShowingSequence: {PlayerTurn},
	PlayerTurn:      {RoundComplete, GameOver},
	RoundComplete:   {ShowingSequence, GameOver},
}

// CanTransitionTo reports whether the table allows p -> target.
func (p Phase) CanTransitionTo(target Phase) bool {
	for _, phase := range validTransitions[p] {
		if phase == target {
			return true
		}
	}
	return false
}

// ErrTransitionNotAllowed is returned when a state transition is not allowed.
var ErrTransitionNotAllowed = errors.New("state transition not allowed")

// Token identifies the phase of one particular game. A token taken before a
// Restart or Reset never matches again.
type Token struct {
	Epoch uint64
	Phase Phase
}

// Machine tracks the current phase, the outcome of a finished game and the
// epoch that invalidates stale tokens. It is not safe for concurrent use; the
// owner serialises access.
type Machine struct {
	phase  Phase
	won    bool
	epoch  uint64
	guards map[Phase]map[Phase]func() bool // fromPhase -> toPhase -> condition
	change func(from, to Phase)
}

func NewMachine() *Machine {
	return &Machine{
		phase:  Idle,
		guards: make(map[Phase]map[Phase]func() bool),
	}
}

// AddGuard attaches an extra condition to an allowed transition.
func (m *Machine) AddGuard(from, to Phase, condition func() bool) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("guard %s -> %s: %w", from, to, ErrTransitionNotAllowed)
	}
	if _, exists := m.guards[from]; !exists {
		m.guards[from] = make(map[Phase]func() bool)
	}
	m.guards[from][to] = condition
	return nil
}

// OnChange registers a listener called after every phase change.
func (m *Machine) OnChange(fn func(from, to Phase)) {
	m.change = fn
}

func (m *Machine) Phase() Phase { return m.phase }

// Won reports whether the last game ended in a win. Only meaningful in GameOver.
func (m *Machine) Won() bool { return m.won }

func (m *Machine) Epoch() uint64 { return m.epoch }

func (m *Machine) Token() Token {
	return Token{Epoch: m.epoch, Phase: m.phase}
}

// Valid reports whether t was taken in the current game and phase.
func (m *Machine) Valid(t Token) bool {
	return t.Epoch == m.epoch && t.Phase == m.phase
}

// Transition moves to the target phase if the table and any guard allow it.
func (m *Machine) Transition(to Phase) error {
	if !m.phase.CanTransitionTo(to) {
		return fmt.Errorf("%s -> %s: %w", m.phase, to, ErrTransitionNotAllowed)
	}
	if conditions, exists := m.guards[m.phase]; exists {
		if condition, exists := conditions[to]; exists && condition != nil && !condition() {
			return fmt.Errorf("%s -> %s: %w", m.phase, to, ErrTransitionNotAllowed)
		}
	}
	m.set(to)
	return nil
}

// Finish moves to GameOver recording the outcome.
func (m *Machine) Finish(won bool) error {
	if err := m.Transition(GameOver); err != nil {
		return err
	}
	m.won = won
	return nil
}

// Restart begins a new game from any phase.
func (m *Machine) Restart() Token {
	m.epoch++
	m.won = false
	m.set(Starting)
	return m.Token()
}

// Reset returns to Idle from any phase.
func (m *Machine) Reset() {
	m.epoch++
	m.won = false
	m.set(Idle)
}

func (m *Machine) set(to Phase) {
	from := m.phase
	m.phase = to
	if m.change != nil {
		m.change(from, to)
	}
}
