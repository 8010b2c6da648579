// Package config loads the global ~/.dialogs/config.toml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/matheus3301/dialogs/internal/action"
	"go.uber.org/zap/zapcore"
)

// Duration is a time.Duration written as a string such as "5s".
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Config represents the global ~/.dialogs/config.toml.
type Config struct {
	DefaultAccount string       `toml:"default_account"`
	SelfID         int64        `toml:"self_id"`
	Undo           UndoConfig   `toml:"undo"`
	Swipe          SwipeConfig  `toml:"swipe"`
	Pins           PinsConfig   `toml:"pins"`
	Outbox         OutboxConfig `toml:"outbox"`
	Demo           DemoConfig   `toml:"demo"`
	Log            LogConfig    `toml:"log"`
}

type UndoConfig struct {
	Window Duration `toml:"window"`
}

type SwipeConfig struct {
	CommitFraction float64 `toml:"commit_fraction"`
	EscapeVelocity float64 `toml:"escape_velocity"` // px/s
	LeftAction     string  `toml:"left_action"`     // empty disables the direction
	RightAction    string  `toml:"right_action"`
}

type PinsConfig struct {
	MaxPinned       int `toml:"max_pinned"`
	MaxFolderPinned int `toml:"max_folder_pinned"`
	FilterCapacity  int `toml:"filter_capacity"`
}

type OutboxConfig struct {
	PollInterval Duration `toml:"poll_interval"`
}

type DemoConfig struct {
	Interval Duration `toml:"interval"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		DefaultAccount: "main",
		SelfID:         777000,
		Undo:           UndoConfig{Window: Duration{5 * time.Second}},
		Swipe: SwipeConfig{
			CommitFraction: 0.45,
			EscapeVelocity: 3500,
			LeftAction:     "archive",
			RightAction:    "read",
		},
		Pins:   PinsConfig{MaxPinned: 5, MaxFolderPinned: 100, FilterCapacity: 100},
		Outbox: OutboxConfig{PollInterval: Duration{500 * time.Millisecond}},
		Demo:   DemoConfig{Interval: Duration{3 * time.Second}},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads config from the given path. Keys missing from the file keep
// their defaults. Returns nil and an error if the file is missing.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, but a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Undo.Window.Duration <= 0 {
		errs = append(errs, fmt.Errorf("undo.window must be positive, got %s", c.Undo.Window))
	}
	if f := c.Swipe.CommitFraction; f <= 0 || f > 1 {
		errs = append(errs, fmt.Errorf("swipe.commit_fraction must be in (0, 1], got %v", f))
	}
	if c.Swipe.EscapeVelocity <= 0 {
		errs = append(errs, fmt.Errorf("swipe.escape_velocity must be positive, got %v", c.Swipe.EscapeVelocity))
	}
	for name, v := range map[string]string{"swipe.left_action": c.Swipe.LeftAction, "swipe.right_action": c.Swipe.RightAction} {
		k, err := action.ParseKind(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		} else if k == action.Reorder {
			errs = append(errs, fmt.Errorf("%s: reorder cannot be bound to a swipe", name))
		}
	}
	if c.Pins.MaxPinned < 0 || c.Pins.MaxFolderPinned < 0 || c.Pins.FilterCapacity < 0 {
		errs = append(errs, errors.New("pins limits must not be negative"))
	}
	if c.Outbox.PollInterval.Duration <= 0 {
		errs = append(errs, fmt.Errorf("outbox.poll_interval must be positive, got %s", c.Outbox.PollInterval))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
