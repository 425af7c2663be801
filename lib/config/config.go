// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable consulted by Load.
const EnvVar = "CONWAY_TERM_CONFIG"

// Config is the master configuration for the conway-term daemon.
type Config struct {
	// Board configures the cell grid dimensions.
	Board BoardConfig `yaml:"board"`

	// Timing configures the tick cadence and the autoplay interval.
	Timing TimingConfig `yaml:"timing"`

	// Serial configures how the byte channel is exposed.
	Serial SerialConfig `yaml:"serial"`

	// Seed is the initial LFSR state for the random bit source.
	// Zero means derive a seed from the clock at startup.
	Seed uint16 `yaml:"seed"`

	// Banner overrides the boot banner text. Empty means the
	// reference banner from the original silicon.
	Banner string `yaml:"banner"`

	// NoBanner suppresses the boot banner entirely.
	NoBanner bool `yaml:"no_banner"`
}

// BoardConfig configures the cell grid.
type BoardConfig struct {
	// Width is the number of columns. Must be a power of two in [2, 256].
	Width int `yaml:"width"`

	// Height is the number of rows. Must be a power of two in [2, 256].
	Height int `yaml:"height"`
}

// TimingConfig configures the simulator's clocking.
type TimingConfig struct {
	// TickInterval is the wall time between machine ticks.
	TickInterval Duration `yaml:"tick_interval"`

	// StepInterval is the autoplay cadence: while running, the
	// dispatcher requests a generation step every StepInterval of
	// idle time. Internally converted to whole ticks (minimum 1).
	StepInterval Duration `yaml:"step_interval"`
}

// SerialConfig configures the byte channel front door.
type SerialConfig struct {
	// Listen is the TCP address the daemon serves the byte channel
	// on, e.g. "127.0.0.1:7310".
	Listen string `yaml:"listen"`

	// Stdio serves the byte channel on stdin/stdout instead of TCP.
	Stdio bool `yaml:"stdio"`
}

// Default returns a Config matching the reference configuration of
// the original design: an 8x8 board stepped at 1kHz with a 200ms
// autoplay interval.
func Default() Config {
	return Config{
		Board: BoardConfig{
			Width:  8,
			Height: 8,
		},
		Timing: TimingConfig{
			TickInterval: Duration(time.Millisecond),
			StepInterval: Duration(200 * time.Millisecond),
		},
		Serial: SerialConfig{
			Listen: "127.0.0.1:7310",
		},
	}
}

// Load reads configuration from the file named by CONWAY_TERM_CONFIG.
// If the variable is unset, the defaults are returned unchanged.
func Load() (Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads and validates configuration from the given path.
// Fields absent from the file keep their default values.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every field and reports the first violation with
// the field name and offending value.
func (c *Config) Validate() error {
	if err := validateDimension("board.width", c.Board.Width); err != nil {
		return err
	}
	if err := validateDimension("board.height", c.Board.Height); err != nil {
		return err
	}
	if c.Timing.TickInterval <= 0 {
		return fmt.Errorf("timing.tick_interval must be positive, got %v", c.Timing.TickInterval)
	}
	if c.Timing.StepInterval <= 0 {
		return fmt.Errorf("timing.step_interval must be positive, got %v", c.Timing.StepInterval)
	}
	if !c.Serial.Stdio && c.Serial.Listen == "" {
		return errors.New("serial.listen must be set when serial.stdio is false")
	}
	return nil
}

// StepTicks converts the autoplay interval into a whole number of
// machine ticks, never less than one.
func (c *Config) StepTicks() int {
	ticks := int(c.Timing.StepInterval / c.Timing.TickInterval)
	if ticks < 1 {
		ticks = 1
	}
	return ticks
}

// validateDimension enforces the power-of-two board sizing the
// bitmask wraparound depends on.
func validateDimension(field string, value int) error {
	if value < 2 || value > 256 {
		return fmt.Errorf("%s must be in [2, 256], got %d", field, value)
	}
	if value&(value-1) != 0 {
		return fmt.Errorf("%s must be a power of two, got %d", field, value)
	}
	return nil
}

// Duration wraps time.Duration with YAML marshaling in Go duration
// syntax ("200ms", "1s").
type Duration time.Duration

// String returns the Go duration syntax.
func (d Duration) String() string { return time.Duration(d).String() }

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalYAML parses Go duration syntax.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML emits Go duration syntax.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}
