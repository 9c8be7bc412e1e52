package internal

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := ParseConfig(nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
		assert.Equal(t, DefaultMaxRoundsPerPump, cfg.MaxRoundsPerPump)
	})

	t.Run("all fields", func(t *testing.T) {
		cfg, err := ParseConfig([]byte(`
label: ui
straight_line: true
max_nodes: 128
max_rounds_per_pump: 20
log_level: debug
`))
		require.NoError(t, err)
		assert.Equal(t, Config{
			Label:           "ui",
			StraightLine:    true,
			MaxNodes:        128,
			MaxRoundsPerPump: 20,
			LogLevel:        "debug",
		}, cfg)
	})

	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"negative node cap", "max_nodes: -2", "max_nodes"},
		{"negative round cap", "max_rounds_per_pump: -1", "max_rounds_per_pump"},
		{"unknown log level", "log_level: loud", "log_level"},
		{"malformed yaml", "max_nodes: [", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("reads a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "engine.yaml")
		require.NoError(t, os.WriteFile(path, []byte("max_nodes: 16\n"), 0o644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 16, cfg.MaxNodes)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestOptions(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	e := start(t,
		WithConfig(Config{MaxNodes: 10}),
		WithLabel("opts"),
		WithStraightLine(true),
		WithMaxRoundsPerPump(7),
		WithLogger(logger),
	)
	defer e.Stop()

	cfg := e.Config()
	assert.Equal(t, "opts", cfg.Label)
	assert.True(t, cfg.StraightLine)
	assert.Equal(t, 10, cfg.MaxNodes)
	assert.Equal(t, 7, cfg.MaxRoundsPerPump)

	// the engine logs through the given logger, tagged with its label
	e.Logger().Info("hello")
	assert.Contains(t, buf.String(), "engine started")
	assert.Contains(t, buf.String(), "msg=hello engine=opts")
}
