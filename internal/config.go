package internal

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultMaxRoundsPerPump bounds how many rounds of deferred updates a single
// pump may run before it is considered runaway.
const DefaultMaxRoundsPerPump = 10000

// Config holds engine parameters. It can be loaded from YAML.
type Config struct {
	// Label names the engine in logs.
	Label string `yaml:"label"`

	// StraightLine updates single-dependency consumers inline instead of
	// marking them. Observable results are identical either way.
	StraightLine bool `yaml:"straight_line"`

	// MaxNodes caps the arena, 0 means unlimited.
	MaxNodes int `yaml:"max_nodes"`

	// MaxRoundsPerPump caps the rounds of one pump, 0 means unlimited.
	MaxRoundsPerPump int `yaml:"max_rounds_per_pump"`

	// LogLevel enables a text logger on stderr (debug, info, warn, error).
	// Empty discards logs unless Logger is set.
	LogLevel string `yaml:"log_level"`

	Logger *slog.Logger `yaml:"-"`
}

func DefaultConfig() Config {
	return Config{
		MaxRoundsPerPump: DefaultMaxRoundsPerPump,
	}
}

// ParseConfig reads a YAML config on top of the defaults.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	return ParseConfig(data)
}

func (c Config) Validate() error {
	if c.MaxNodes < 0 {
		return fmt.Errorf("invalid config: max_nodes must be >= 0, got %d", c.MaxNodes)
	}
	if c.MaxRoundsPerPump < 0 {
		return fmt.Errorf("invalid config: max_rounds_per_pump must be >= 0, got %d", c.MaxRoundsPerPump)
	}
	if c.LogLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
			return fmt.Errorf("invalid config: log_level: %w", err)
		}
	}
	return nil
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	if c.LogLevel == "" {
		return slog.New(slog.DiscardHandler)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Option configures an engine at Start.
type Option func(*Config)

// WithConfig replaces the whole config, options given after it still apply.
func WithConfig(cfg Config) Option {
	return func(c *Config) { *c = cfg }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

func WithLabel(label string) Option {
	return func(c *Config) { c.Label = label }
}

func WithStraightLine(enabled bool) Option {
	return func(c *Config) { c.StraightLine = enabled }
}

func WithMaxNodes(n int) Option {
	return func(c *Config) { c.MaxNodes = n }
}

func WithMaxRoundsPerPump(n int) Option {
	return func(c *Config) { c.MaxRoundsPerPump = n }
}
