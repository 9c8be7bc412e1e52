package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/AnatoleLucet/dataflow"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [scenario...]",
		Short: "Run scenarios",
		Long: `Run one or more built-in scenarios, all of them if none is named.

Each scenario gets a fresh engine and prints one line per step.

Example:
  dataflow run square toggle
  dataflow run --straight-line --config engine.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(rootOpts, args, cmd.OutOrStdout())
		},
	}

	return cmd
}

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, s := range Scenarios {
				fmt.Fprintf(w, "%-8s %s\n", s.Name, s.Description)
			}
			return nil
		},
	}
}

func runScenarios(opts *RootOptions, names []string, w io.Writer) error {
	engineOpts, err := engineOptions(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	selected := Scenarios
	if len(names) > 0 {
		selected = make([]Scenario, 0, len(names))
		for _, name := range names {
			s, ok := FindScenario(name)
			if !ok {
				return WrapExitError(ExitCommandError, "unknown scenario", fmt.Errorf("%q", name))
			}
			selected = append(selected, s)
		}
	}

	for i, s := range selected {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "# %s\n", s.Name)

		if err := RunScenario(s, w, engineOpts...); err != nil {
			return WrapExitError(ExitFailure, "scenario "+s.Name+" failed", err)
		}
	}

	return nil
}

// RunScenario runs s on a fresh engine owned by the calling goroutine and
// checks the graph afterwards.
func RunScenario(s Scenario, w io.Writer, opts ...dataflow.Option) (err error) {
	e, err := dataflow.Start(opts...)
	if err != nil {
		return err
	}
	defer e.Stop()

	scope := dataflow.NewScope()
	defer scope.Dispose()

	scope.OnError(func(r any) {
		err = fmt.Errorf("panic: %v", r)
	})
	scope.Run(func() { s.Run(e, w) })

	if err != nil {
		return err
	}
	return e.Verify()
}
