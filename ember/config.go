package ember

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	cfg.Activity.applyDefaults()
	return &cfg, nil
}

type Config struct {
	Log      LogConfig      `toml:"log"`
	Bot      BotConfig      `toml:"bot"`
	DB       DBConfig       `toml:"db"`
	Spaces   SpacesConfig   `toml:"spaces"`
	Activity ActivityConfig `toml:"activity"`
}

type BotConfig struct {
	DevGuilds []snowflake.ID `toml:"dev_guilds"`
	Token     string         `toml:"token"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type DBConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	PoolSize int    `toml:"pool_size"`
}

type SpacesConfig struct {
	Key         string `toml:"key"`
	Secret      string `toml:"secret"`
	Region      string `toml:"region"`
	Bucket      string `toml:"bucket"`
	GalleryRoot string `toml:"gallery_root"`
}

// ActivityConfig tunes the activity feed and background sweeps.
type ActivityConfig struct {
	// TouchDebounceSeconds caps streak touches at one per user+guild per window.
	TouchDebounceSeconds int `toml:"touch_debounce_seconds"`
	// EvalDebounceSeconds caps full achievement evaluation the same way.
	EvalDebounceSeconds int `toml:"eval_debounce_seconds"`
	// MaxFreezes is the monthly streak-freeze allowance per user.
	MaxFreezes int `toml:"max_freezes"`
	// SweepIntervalMinutes is how often the background scheduler wakes up.
	SweepIntervalMinutes int `toml:"sweep_interval_minutes"`
	// LeaderboardSize is the number of entries rendered by /streakleaderboard.
	LeaderboardSize int `toml:"leaderboard_size"`
}

func (c *ActivityConfig) applyDefaults() {
	if c.TouchDebounceSeconds <= 0 {
		c.TouchDebounceSeconds = 60
	}
	if c.EvalDebounceSeconds <= 0 {
		c.EvalDebounceSeconds = 120
	}
	if c.MaxFreezes <= 0 {
		c.MaxFreezes = 1
	}
	if c.SweepIntervalMinutes <= 0 {
		c.SweepIntervalMinutes = 30
	}
	if c.LeaderboardSize <= 0 {
		c.LeaderboardSize = 10
	}
}

func (c ActivityConfig) TouchDebounce() time.Duration {
	return time.Duration(c.TouchDebounceSeconds) * time.Second
}

func (c ActivityConfig) EvalDebounce() time.Duration {
	return time.Duration(c.EvalDebounceSeconds) * time.Second
}

func (c ActivityConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMinutes) * time.Minute
}
