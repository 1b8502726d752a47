package state

import (
	"errors"
	"testing"
)

func TestMachine_InitialState(t *testing.T) {
	sm := NewMachine()

	if sm.Phase() != Idle {
		t.Errorf("Expected initial phase idle, got %s", sm.Phase())
	}
	if sm.Epoch() != 0 {
		t.Errorf("Expected initial epoch 0, got %d", sm.Epoch())
	}
}

func TestMachine_FullRound(t *testing.T) {
	sm := NewMachine()
	sm.Restart()

	for _, to := range []Phase{ShowingSequence, PlayerTurn, RoundComplete, ShowingSequence, PlayerTurn} {
		if err := sm.Transition(to); err != nil {
			t.Fatalf("Transition to %s should succeed, got: %v", to, err)
		}
	}
	if err := sm.Finish(false); err != nil {
		t.Fatalf("Finish should succeed from player_turn, got: %v", err)
	}
	if sm.Phase() != GameOver || sm.Won() {
		t.Errorf("Expected lost game_over, got %s won=%v", sm.Phase(), sm.Won())
	}
}

func TestMachine_RejectsIllegalTransition(t *testing.T) {
	sm := NewMachine()

	err := sm.Transition(PlayerTurn)
	if !errors.Is(err, ErrTransitionNotAllowed) {
		t.Fatalf("Expected ErrTransitionNotAllowed, but got: %v", err)
	}
	if sm.Phase() != Idle {
		t.Errorf("Expected phase to remain idle after a blocked transition, got %s", sm.Phase())
	}
}

func TestMachine_Guard(t *testing.T) {
	sm := NewMachine()
	allow := false
	if err := sm.AddGuard(RoundComplete, ShowingSequence, func() bool { return allow }); err != nil {
		t.Fatalf("AddGuard failed: %v", err)
	}

	sm.Restart()
	_ = sm.Transition(ShowingSequence)
	_ = sm.Transition(PlayerTurn)
	_ = sm.Transition(RoundComplete)

	if err := sm.Transition(ShowingSequence); !errors.Is(err, ErrTransitionNotAllowed) {
		t.Fatalf("Expected guarded transition to be blocked, got: %v", err)
	}
	allow = true
	if err := sm.Transition(ShowingSequence); err != nil {
		t.Errorf("Expected guarded transition to pass once allowed, got: %v", err)
	}
}

func TestMachine_AddGuardOnUnknownTransition(t *testing.T) {
	sm := NewMachine()
	if err := sm.AddGuard(Idle, GameOver, func() bool { return true }); !errors.Is(err, ErrTransitionNotAllowed) {
		t.Errorf("Expected AddGuard to refuse a transition outside the table, got: %v", err)
	}
}

func TestMachine_TokensExpire(t *testing.T) {
	sm := NewMachine()
	tok := sm.Restart()

	if !sm.Valid(tok) {
		t.Fatal("Token should be valid right after Restart")
	}

	_ = sm.Transition(ShowingSequence)
	if sm.Valid(tok) {
		t.Error("Token should expire once the phase changes")
	}

	tok = sm.Token()
	sm.Reset()
	if sm.Valid(tok) {
		t.Error("Token should expire after Reset")
	}

	sm.Restart()
	_ = sm.Transition(ShowingSequence)
	if sm.Valid(tok) {
		t.Error("Token from a previous game should not match the same phase of a new game")
	}
}

func TestMachine_OnChange(t *testing.T) {
	sm := NewMachine()
	var seen []Phase
	sm.OnChange(func(from, to Phase) { seen = append(seen, to) })

	sm.Restart()
	_ = sm.Transition(ShowingSequence)
	sm.Reset()

	want := []Phase{Starting, ShowingSequence, Idle}
	if len(seen) != len(want) {
		t.Fatalf("Expected %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("Expected change %d to be %s, got %s", i, want[i], seen[i])
		}
	}
}

func TestPhase_String(t *testing.T) {
	if PlayerTurn.String() != "player_turn" {
		t.Errorf("Expected player_turn, got %s", PlayerTurn.String())
	}
	if Phase(42).String() != "phase(42)" {
		t.Errorf("Expected phase(42), got %s", Phase(42).String())
	}
}
