package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wfunc/simonsays/game"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.HTTPAddress != ":8080" {
		t.Errorf("Expected :8080, got %q", cfg.Server.HTTPAddress)
	}
	if cfg.Server.Heartbeat != 30*time.Second {
		t.Errorf("Expected 30s heartbeat, got %v", cfg.Server.Heartbeat)
	}
	if cfg.Log.Level != "info" || cfg.Metrics.Namespace != "simon" {
		t.Errorf("Unexpected log/metrics defaults: %+v %+v", cfg.Log, cfg.Metrics)
	}

	timing := cfg.GameTiming()
	def := game.DefaultTiming()
	if timing.GraceDelay != def.GraceDelay || timing.RoundCompleteDelay != def.RoundCompleteDelay || timing.MaxRounds != 20 {
		t.Errorf("Unexpected timing: %+v", timing)
	}
	for _, d := range game.Difficulties {
		if timing.Delays[d] != def.Delays[d] {
			t.Errorf("Expected %s delay %v, got %v", d, def.Delays[d], timing.Delays[d])
		}
	}
	if cfg.DefaultDifficulty() != game.Medium {
		t.Errorf("Expected medium, got %s", cfg.DefaultDifficulty())
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`server:
  http_address: ":9000"
  heartbeat: 10s
game:
  max_rounds: 5
  default_difficulty: hard
  delays:
    hard: 400ms
`)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SIMON_LOG_LEVEL", "debug")
	t.Setenv("SIMON_GAME_GRACE_DELAY", "250ms")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.HTTPAddress != ":9000" || cfg.Server.Heartbeat != 10*time.Second {
		t.Errorf("File values not applied: %+v", cfg.Server)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected env override of log level, got %q", cfg.Log.Level)
	}
	timing := cfg.GameTiming()
	if timing.GraceDelay != 250*time.Millisecond {
		t.Errorf("Expected env grace delay 250ms, got %v", timing.GraceDelay)
	}
	if timing.MaxRounds != 5 || timing.Delays[game.Hard] != 400*time.Millisecond {
		t.Errorf("Unexpected timing: %+v", timing)
	}
	if timing.Delays[game.Easy] != 1200*time.Millisecond {
		t.Errorf("Expected default easy delay to survive a partial delays block, got %v", timing.Delays[game.Easy])
	}
	if cfg.DefaultDifficulty() != game.Hard {
		t.Errorf("Expected hard, got %s", cfg.DefaultDifficulty())
	}
}

func TestLoadConfig_InvalidDifficulty(t *testing.T) {
	t.Setenv("SIMON_GAME_DEFAULT_DIFFICULTY", "nightmare")

	_, err := LoadConfig(t.TempDir())
	if !errors.Is(err, game.ErrInvalidDifficulty) {
		t.Errorf("Expected ErrInvalidDifficulty, got %v", err)
	}
}
