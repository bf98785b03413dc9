package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arbelos-lang/arbelos/internal/harness"
)

// ScenarioReport is the JSON payload for one executed scenario.
type ScenarioReport struct {
	Name     string   `json:"name"`
	Passed   bool     `json:"passed"`
	Failures []string `json:"failures,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>...",
		Short: "Run conformance scenarios",
		Long: `Run one or more conformance scenario files against fresh symbol
tables and report step expectations and assertion results. Golden file
comparison is only available under "go test"; this command evaluates
the scenario's steps and assertions.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runScenarios(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	reports := make([]ScenarioReport, 0, len(paths))
	failed := 0
	for _, path := range paths {
		scenario, err := harness.LoadScenario(path)
		if err != nil {
			return commandError(formatter, ErrCodeScenario, err.Error())
		}

		formatter.VerboseLog("Running scenario %s (%s)", scenario.Name, path)
		result, err := harness.Run(scenario)
		if err != nil {
			return commandError(formatter, ErrCodeScenario,
				fmt.Sprintf("%s: %v", scenario.Name, err))
		}

		reports = append(reports, ScenarioReport{
			Name:     scenario.Name,
			Passed:   result.Passed,
			Failures: result.Failures,
		})
		if !result.Passed {
			failed++
		}
	}

	if formatter.Format == "json" {
		if err := formatter.Success(reports); err != nil {
			return err
		}
	} else {
		for _, report := range reports {
			if report.Passed {
				fmt.Fprintf(formatter.Writer, "✓ %s\n", report.Name)
				continue
			}
			fmt.Fprintf(formatter.Writer, "✗ %s\n", report.Name)
			for _, failure := range report.Failures {
				fmt.Fprintf(formatter.Writer, "    %s\n", failure)
			}
		}
		fmt.Fprintf(formatter.Writer, "\n%d passed, %d failed\n", len(reports)-failed, failed)
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", failed))
	}
	return nil
}
