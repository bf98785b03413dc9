package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/arbelos-lang/arbelos/internal/compiler"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult holds the compiled symbol specs.
type CompilationResult struct {
	Symbols []compiler.SymbolSpec `json:"symbols"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <specs-dir>",
		Short: "Compile CUE builtin symbol specs",
		Long: `Compile a directory of CUE builtin symbol specs.

The compiler parses CUE files, validates attribute and option
declarations, and reports the symbols that would be contributed to a
fresh symbol table.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompileCmd(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompileCmd(opts *CompileOptions, specsDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	loaded, err := compiler.LoadDir(specsDir)
	if err != nil {
		return outputCompileError(formatter, err)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, specsDir)
	for _, spec := range loaded.Symbols {
		formatter.VerboseLog("Compiled symbol: %s", spec.FullName())
	}

	result := &CompilationResult{Symbols: loaded.Symbols}
	sort.Slice(result.Symbols, func(i, j int) bool {
		return result.Symbols[i].FullName() < result.Symbols[j].FullName()
	})

	if opts.Output != "" {
		if err := writeSpecsToFile(result, opts.Output); err != nil {
			return commandError(formatter, ErrCodeGeneric, fmt.Sprintf("writing output file: %v", err))
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	// Human-readable text output
	fmt.Fprintf(formatter.Writer, "✓ Compiled %d symbol(s)\n\n", len(result.Symbols))

	for _, spec := range result.Symbols {
		fmt.Fprintf(formatter.Writer, "  %s: %d attribute(s), %d option(s), %d message(s)\n",
			spec.FullName(), len(spec.Attributes), len(spec.Options), len(spec.Messages))
	}
	if len(result.Symbols) > 0 {
		fmt.Fprintln(formatter.Writer)
	}

	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "Wrote compiled specs to %s\n", outputFile)
	}

	return nil
}

// outputCompileError outputs a compilation failure with source position
// when the underlying CUE error carries one.
func outputCompileError(formatter *OutputFormatter, err error) error {
	code := ErrCodeSpecNotFound
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		code = ErrCodeCompile
		if formatter.Format != "json" && compileErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				compileErr.Pos.Filename(),
				compileErr.Pos.Line(),
				compileErr.Pos.Column())
		}
	}
	return commandError(formatter, code, err.Error())
}

// writeSpecsToFile writes the compiled specs to a file as indented JSON.
func writeSpecsToFile(result *CompilationResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling specs: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}
