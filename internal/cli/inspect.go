package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/arbelos-lang/arbelos/internal/compiler"
	"github.com/arbelos-lang/arbelos/internal/defs"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	Pattern string // wildcard name pattern
}

// SymbolReport is the JSON payload for a single inspected symbol.
type SymbolReport struct {
	Name       string            `json:"name"`
	Attributes []string          `json:"attributes,omitempty"`
	Numeric    bool              `json:"numeric,omitempty"`
	Builtin    string            `json:"builtin,omitempty"`
	Options    map[string]string `json:"options,omitempty"`
	RuleCounts map[string]int    `json:"rule_counts,omitempty"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect <specs-dir> [symbol...]",
		Short: "Inspect symbol definitions from compiled specs",
		Long: `Compile a directory of builtin symbol specs into a fresh symbol
table and report the resulting definitions. With no symbol arguments,
all contributed symbols are reported; --match filters by wildcard name
pattern instead.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Pattern, "match", "", "wildcard name pattern (e.g. \"System`*\")")

	return cmd
}

func runInspect(opts *InspectOptions, specsDir string, symbols []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	ds, err := loadTable(specsDir)
	if err != nil {
		return outputCompileError(formatter, err)
	}

	names := symbols
	switch {
	case opts.Pattern != "":
		names = ds.NamesMatching(opts.Pattern)
	case len(names) == 0:
		names = ds.BuiltinNames()
	default:
		resolved := make([]string, len(names))
		for i, name := range names {
			resolved[i] = ds.LookupName(name)
		}
		names = resolved
	}
	sort.Strings(names)

	reports := make([]SymbolReport, 0, len(names))
	for _, name := range names {
		if !ds.HaveDefinition(name) {
			return commandError(formatter, ErrCodeGeneric, fmt.Sprintf("no definition for %s", name))
		}
		reports = append(reports, buildReport(ds, name))
	}

	if formatter.Format == "json" {
		return formatter.Success(reports)
	}

	for _, report := range reports {
		printReport(formatter, report)
	}
	return nil
}

// loadTable compiles a spec directory into a fresh symbol table.
func loadTable(specsDir string) (*defs.Definitions, error) {
	loaded, err := compiler.LoadDir(specsDir)
	if err != nil {
		return nil, err
	}
	ds := defs.New()
	if err := compiler.Contribute(ds, loaded.Symbols); err != nil {
		return nil, err
	}
	return ds, nil
}

func buildReport(ds *defs.Definitions, name string) SymbolReport {
	report := SymbolReport{
		Name:       name,
		Attributes: ds.Attributes(name).Names(),
		RuleCounts: map[string]int{},
	}

	if def := ds.GetDefinitionIfExists(name); def != nil {
		report.Numeric = def.IsNumeric
		report.Builtin = def.Builtin
	}

	options := ds.Options(name)
	if len(options) > 0 {
		report.Options = make(map[string]string, len(options))
		for key, value := range options {
			report.Options[key] = value.String()
		}
	}

	counts := map[string]int{
		"own":      len(ds.OwnValues(name)),
		"down":     len(ds.DownValues(name)),
		"sub":      len(ds.SubValues(name)),
		"up":       len(ds.UpValues(name)),
		"n":        len(ds.NValues(name)),
		"default":  len(ds.DefaultValues(name)),
		"messages": len(ds.MessageRules(name)),
	}
	for cat, n := range counts {
		if n > 0 {
			report.RuleCounts[cat] = n
		}
	}

	return report
}

func printReport(formatter *OutputFormatter, report SymbolReport) {
	fmt.Fprintf(formatter.Writer, "%s\n", report.Name)
	if len(report.Attributes) > 0 {
		fmt.Fprintf(formatter.Writer, "  attributes: %v\n", report.Attributes)
	}
	if report.Numeric {
		fmt.Fprintln(formatter.Writer, "  numeric: true")
	}
	if report.Builtin != "" {
		fmt.Fprintf(formatter.Writer, "  builtin: %s\n", report.Builtin)
	}
	if len(report.Options) > 0 {
		keys := make([]string, 0, len(report.Options))
		for key := range report.Options {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		fmt.Fprintln(formatter.Writer, "  options:")
		for _, key := range keys {
			fmt.Fprintf(formatter.Writer, "    %s -> %s\n", key, report.Options[key])
		}
	}
	if len(report.RuleCounts) > 0 {
		cats := make([]string, 0, len(report.RuleCounts))
		for cat := range report.RuleCounts {
			cats = append(cats, cat)
		}
		sort.Strings(cats)
		fmt.Fprintln(formatter.Writer, "  rules:")
		for _, cat := range cats {
			fmt.Fprintf(formatter.Writer, "    %s: %d\n", cat, report.RuleCounts[cat])
		}
	}
}
