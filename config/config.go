package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/wfunc/simonsays/game"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Game    GameConfig    `mapstructure:"game"`
}

type ServerConfig struct {
	HTTPAddress string        `mapstructure:"http_address"`
	RPCAddress  string        `mapstructure:"rpc_address"`
	StaticDir   string        `mapstructure:"static_dir"`
	Heartbeat   time.Duration `mapstructure:"heartbeat"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
}

type GameConfig struct {
	GraceDelay         time.Duration `mapstructure:"grace_delay"`
	PacingDelay        time.Duration `mapstructure:"pacing_delay"`
	RoundCompleteDelay time.Duration `mapstructure:"round_complete_delay"`
	InputTone          time.Duration `mapstructure:"input_tone"`
	MaxRounds          int           `mapstructure:"max_rounds"`
	DefaultDifficulty  string        `mapstructure:"default_difficulty"`
	Delays             DelayConfig   `mapstructure:"delays"`
}

type DelayConfig struct {
	Easy   time.Duration `mapstructure:"easy"`
	Medium time.Duration `mapstructure:"medium"`
	Hard   time.Duration `mapstructure:"hard"`
}

func setDefaults(v *viper.Viper) {
	t := game.DefaultTiming()

	v.SetDefault("server.http_address", ":8080")
	v.SetDefault("server.rpc_address", "")
	v.SetDefault("server.static_dir", "")
	v.SetDefault("server.heartbeat", "30s")
	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.namespace", "simon")
	v.SetDefault("game.grace_delay", t.GraceDelay)
	v.SetDefault("game.pacing_delay", t.PacingDelay)
	v.SetDefault("game.round_complete_delay", t.RoundCompleteDelay)
	v.SetDefault("game.input_tone", t.InputTone)
	v.SetDefault("game.max_rounds", t.MaxRounds)
	v.SetDefault("game.default_difficulty", string(game.Medium))
	v.SetDefault("game.delays.easy", t.Delays[game.Easy])
	v.SetDefault("game.delays.medium", t.Delays[game.Medium])
	v.SetDefault("game.delays.hard", t.Delays[game.Hard])
}

// LoadConfig reads config.yaml from path if present. Every key can be
// overridden from the environment, e.g. SIMON_SERVER_HTTP_ADDRESS.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("simon")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if _, err := game.ParseDifficulty(c.Game.DefaultDifficulty); err != nil {
		return fmt.Errorf("game.default_difficulty: %w", err)
	}
	if c.Game.MaxRounds <= 0 {
		return fmt.Errorf("game.max_rounds must be positive, got %d", c.Game.MaxRounds)
	}
	return nil
}

// GameTiming converts the game section for game.WithTiming.
func (c *Config) GameTiming() game.Timing {
	g := c.Game
	return game.Timing{
		GraceDelay:         g.GraceDelay,
		PacingDelay:        g.PacingDelay,
		RoundCompleteDelay: g.RoundCompleteDelay,
		InputTone:          g.InputTone,
		MaxRounds:          g.MaxRounds,
		Delays: map[game.Difficulty]time.Duration{
			game.Easy:   g.Delays.Easy,
			game.Medium: g.Delays.Medium,
			game.Hard:   g.Delays.Hard,
		},
	}
}

func (c *Config) DefaultDifficulty() game.Difficulty {
	d, err := game.ParseDifficulty(c.Game.DefaultDifficulty)
	if err != nil {
		return game.Medium
	}
	return d
}
