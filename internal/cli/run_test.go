package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnatoleLucet/dataflow"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "dataflow", cmd.Use)

	for _, name := range []string{"run", "list"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	flag := cmd.PersistentFlags().Lookup("straight-line")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}

func TestScenarios(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, s := range Scenarios {
		t.Run(s.Name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, RunScenario(s, &buf))
			g.Assert(t, s.Name, buf.Bytes())
		})

		t.Run(s.Name+" straight line", func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, RunScenario(s, &buf, dataflow.WithStraightLine(true)))
			g.Assert(t, s.Name, buf.Bytes())
		})
	}
}

func TestRunCommand(t *testing.T) {
	t.Run("runs the named scenarios", func(t *testing.T) {
		var out bytes.Buffer

		cmd := NewRootCommand()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"run", "square", "abcd"})
		require.NoError(t, cmd.Execute())

		assert.True(t, strings.HasPrefix(out.String(), "# square\nx=1 y=5"))
		assert.Contains(t, out.String(), "\n\n# abcd\n")
		assert.Contains(t, out.String(), `input="d" state=4`)
	})

	t.Run("unknown scenario", func(t *testing.T) {
		cmd := NewRootCommand()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"run", "nope"})

		err := cmd.Execute()
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})

	t.Run("config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "engine.yaml")
		require.NoError(t, os.WriteFile(path, []byte("label: demo\nstraight_line: true\nmax_nodes: 64\n"), 0o644))

		var out bytes.Buffer

		cmd := NewRootCommand()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"run", "--config", path, "toggle"})
		require.NoError(t, cmd.Execute())

		assert.Contains(t, out.String(), "toggle -> light=true")
	})

	t.Run("bad config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "engine.yaml")
		require.NoError(t, os.WriteFile(path, []byte("max_nodes: -1\n"), 0o644))

		cmd := NewRootCommand()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"run", "--config", path})

		err := cmd.Execute()
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})

	t.Run("scenario exceeding the node cap fails", func(t *testing.T) {
		cmd := NewRootCommand()
		path := filepath.Join(t.TempDir(), "engine.yaml")
		require.NoError(t, os.WriteFile(path, []byte("max_nodes: 3\n"), 0o644))

		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"run", "--config", path, "square"})

		err := cmd.Execute()
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.ErrorContains(t, err, "panic")
	})
}

func TestListCommand(t *testing.T) {
	var out bytes.Buffer

	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"list"})
	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, len(Scenarios))
	assert.True(t, strings.HasPrefix(lines[0], "square"))
}
