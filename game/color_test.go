package game

import (
	"errors"
	"testing"
	"time"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{in: "red", want: Red},
		{in: " Blue ", want: Blue},
		{in: "YELLOW", want: Yellow},
		{in: "green", want: Green},
		{in: "purple", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownColor) {
				t.Errorf("ParseColor(%q): expected ErrUnknownColor, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseColor(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestParseDifficulty(t *testing.T) {
	for _, d := range Difficulties {
		got, err := ParseDifficulty(d.Name())
		if err != nil || got != d {
			t.Errorf("ParseDifficulty(%q) = %q, %v", d.Name(), got, err)
		}
	}
	if _, err := ParseDifficulty("insane"); !errors.Is(err, ErrInvalidDifficulty) {
		t.Errorf("Expected ErrInvalidDifficulty, got %v", err)
	}
}

func TestTiming_Delay(t *testing.T) {
	timing := DefaultTiming()
	want := map[Difficulty]time.Duration{
		Easy:   1200 * time.Millisecond,
		Medium: 800 * time.Millisecond,
		Hard:   500 * time.Millisecond,
	}
	for d, delay := range want {
		if got := timing.Delay(d); got != delay {
			t.Errorf("Delay(%s) = %v, want %v", d, got, delay)
		}
	}

	// a partial table falls back to the defaults
	partial := Timing{Delays: map[Difficulty]time.Duration{Hard: 400 * time.Millisecond}}
	if got := partial.Delay(Hard); got != 400*time.Millisecond {
		t.Errorf("Expected overridden hard delay 400ms, got %v", got)
	}
	if got := partial.Delay(Easy); got != 1200*time.Millisecond {
		t.Errorf("Expected default easy delay 1200ms, got %v", got)
	}
}

func TestFlashDuration(t *testing.T) {
	if got := FlashDuration(800 * time.Millisecond); got != 560*time.Millisecond {
		t.Errorf("Expected 560ms, got %v", got)
	}
	if got := FlashDuration(1200 * time.Millisecond); got != 840*time.Millisecond {
		t.Errorf("Expected 840ms, got %v", got)
	}
}
