package internal

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds playback and storage settings. Values come from the
// environment and are overridden by command-line flags.
type Config struct {
	ChatInterval     time.Duration `env:"HALUMEM_CHAT_INTERVAL"     envDefault:"2s"`
	PipelineInterval time.Duration `env:"HALUMEM_PIPELINE_INTERVAL" envDefault:"2500ms"`
	SettleDelay      time.Duration `env:"HALUMEM_SETTLE_DELAY"      envDefault:"1s"`
	HistoryPath      string        `env:"HALUMEM_HISTORY_DB"`
	NoHistory        bool          `env:"HALUMEM_NO_HISTORY"`
	LogLevel         string        `env:"HALUMEM_LOG_LEVEL"         envDefault:"info"`
}

// LoadConfig parses the environment into a Config
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.HistoryPath == "" {
		path, err := DefaultHistoryPath()
		if err != nil {
			return Config{}, err
		}
		cfg.HistoryPath = path
	}
	return cfg, nil
}

// DefaultHistoryPath returns ~/.halumem/history.db
func DefaultHistoryPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".halumem", "history.db"), nil
}

// Validate rejects settings the player cannot run with
func (c Config) Validate() error {
	if c.ChatInterval <= 0 {
		return fmt.Errorf("chat interval must be positive, got %s", c.ChatInterval)
	}
	if c.PipelineInterval <= 0 {
		return fmt.Errorf("pipeline interval must be positive, got %s", c.PipelineInterval)
	}
	if c.SettleDelay <= 0 {
		return fmt.Errorf("settle delay must be positive, got %s", c.SettleDelay)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Scaled returns a copy with every duration divided by speed
func (c Config) Scaled(speed float64) (Config, error) {
	if !(speed > 0) || math.IsInf(speed, 1) {
		return Config{}, fmt.Errorf("speed must be a positive number, got %g", speed)
	}
	scale := func(d time.Duration) time.Duration {
		return time.Duration(float64(d) / speed)
	}
	c.ChatInterval = scale(c.ChatInterval)
	c.PipelineInterval = scale(c.PipelineInterval)
	c.SettleDelay = scale(c.SettleDelay)
	return c, nil
}

// PlayerOptions returns the player timing for a variant
func (c Config) PlayerOptions(v Variant) PlayerOptions {
	if v == VariantPipeline {
		return PlayerOptions{Interval: c.PipelineInterval, SettleDelay: c.SettleDelay}
	}
	return PlayerOptions{Interval: c.ChatInterval}
}
