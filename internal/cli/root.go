package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AnatoleLucet/dataflow"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // a scenario failed
	ExitCommandError = 2 // bad flags, unreadable config
)

// ExitError carries the exit code a command failed with.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error, ExitFailure if it has none.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose      bool
	Config       string
	StraightLine bool
}

// NewRootCommand creates the root command of the dataflow CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "dataflow",
		Short: "Run reactive dataflow scenarios",
		Long:  "Runs the built-in scenarios of the incremental reactive engine and prints the values they go through.",
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log engine activity to stderr")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "path to a YAML engine config")
	cmd.PersistentFlags().BoolVar(&opts.StraightLine, "straight-line", false, "update single-dependency nodes inline")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewListCommand())

	return cmd
}

// engineOptions builds the engine options from the global flags.
func engineOptions(opts *RootOptions) ([]dataflow.Option, error) {
	cfg := dataflow.DefaultConfig()
	if opts.Config != "" {
		loaded, err := dataflow.LoadConfig(opts.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	out := []dataflow.Option{dataflow.WithConfig(cfg)}

	if opts.StraightLine {
		out = append(out, dataflow.WithStraightLine(true))
	}

	if opts.Verbose {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		out = append(out, dataflow.WithLogger(slog.New(handler)))
	}

	return out, nil
}
