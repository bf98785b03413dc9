package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arbelos-lang/arbelos/internal/compiler"
	"github.com/arbelos-lang/arbelos/internal/defs"
	"github.com/arbelos-lang/arbelos/internal/store"
)

// SnapshotOptions holds flags shared by the snapshot subcommands.
type SnapshotOptions struct {
	*RootOptions
	DB string // snapshot database path
}

// SnapshotListEntry is the JSON payload for one listed snapshot.
type SnapshotListEntry struct {
	ID            string `json:"id"`
	Kind          string `json:"kind"`
	FormatVersion int    `json:"format_version"`
	Freshness     int64  `json:"freshness,omitempty"`
	CreatedAt     string `json:"created_at"`
	Bytes         int64  `json:"bytes"`
}

// NewSnapshotCommand creates the snapshot command group.
func NewSnapshotCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SnapshotOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage builtin namespace snapshots",
		Long: `Manage snapshots of the builtin namespace.

Snapshots cache the compiled form of a spec directory so sessions can
skip recompilation when the spec files have not changed since the
snapshot was taken.`,
	}

	cmd.PersistentFlags().StringVar(&opts.DB, "db", "arbelos.db", "snapshot database path")

	cmd.AddCommand(newSnapshotSaveCommand(opts))
	cmd.AddCommand(newSnapshotLoadCommand(opts))
	cmd.AddCommand(newSnapshotListCommand(opts))

	return cmd
}

func newSnapshotSaveCommand(opts *SnapshotOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "save <specs-dir>",
		Short:         "Compile specs and save a builtin snapshot",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshotSave(opts, args[0], cmd)
		},
	}
}

func newSnapshotLoadCommand(opts *SnapshotOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "load <specs-dir>",
		Short: "Restore the builtin namespace from a snapshot",
		Long: `Restore the most recent builtin snapshot that is at least as fresh
as the spec directory's files. Fails when every stored snapshot
predates a spec file change; recompile with "snapshot save" first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshotLoad(opts, args[0], cmd)
		},
	}
}

func newSnapshotListCommand(opts *SnapshotOptions) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List stored snapshots",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshotList(opts, kind, cmd)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", store.KindBuiltin, "snapshot kind (builtin|user)")
	return cmd
}

func runSnapshotSave(opts *SnapshotOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	ds, err := loadTable(specsDir)
	if err != nil {
		return outputCompileError(formatter, err)
	}

	files, err := compiler.FindCUEFiles(specsDir)
	if err != nil {
		return commandError(formatter, ErrCodeSpecNotFound, err.Error())
	}

	st, err := store.Open(opts.DB)
	if err != nil {
		return commandError(formatter, ErrCodeStore, err.Error())
	}
	defer st.Close()

	id, err := st.SaveBuiltin(cmd.Context(), ds, compiler.Freshness(files))
	if err != nil {
		return commandError(formatter, ErrCodeStore, err.Error())
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"id": id})
	}
	fmt.Fprintf(formatter.Writer, "✓ Saved builtin snapshot %s (%d symbols)\n",
		id, len(ds.BuiltinNames()))
	return nil
}

func runSnapshotLoad(opts *SnapshotOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	files, err := compiler.FindCUEFiles(specsDir)
	if err != nil {
		return commandError(formatter, ErrCodeSpecNotFound, err.Error())
	}

	st, err := store.Open(opts.DB)
	if err != nil {
		return commandError(formatter, ErrCodeStore, err.Error())
	}
	defer st.Close()

	ds := defs.New()
	err = st.LoadBuiltin(cmd.Context(), ds, compiler.Freshness(files))
	if errors.Is(err, store.ErrNoSnapshot) {
		return commandError(formatter, ErrCodeNoSnapshot,
			fmt.Sprintf("no snapshot is at least as fresh as %s; run \"snapshot save\" to recompile", specsDir))
	}
	if err != nil {
		return commandError(formatter, ErrCodeStore, err.Error())
	}

	names := ds.BuiltinNames()
	if formatter.Format == "json" {
		return formatter.Success(map[string]any{"symbols": len(names)})
	}
	fmt.Fprintf(formatter.Writer, "✓ Restored %d symbol(s) from snapshot\n", len(names))
	return nil
}

func runSnapshotList(opts *SnapshotOptions, kind string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if kind != store.KindBuiltin && kind != store.KindUser {
		return commandError(formatter, ErrCodeGeneric, fmt.Sprintf("invalid kind %q", kind))
	}

	st, err := store.Open(opts.DB)
	if err != nil {
		return commandError(formatter, ErrCodeStore, err.Error())
	}
	defer st.Close()

	infos, err := st.Snapshots(cmd.Context(), kind)
	if err != nil {
		return commandError(formatter, ErrCodeStore, err.Error())
	}

	entries := make([]SnapshotListEntry, len(infos))
	for i, info := range infos {
		entries[i] = SnapshotListEntry{
			ID:            info.ID,
			Kind:          info.Kind,
			FormatVersion: info.FormatVersion,
			Freshness:     info.Freshness,
			CreatedAt:     info.CreatedAt,
			Bytes:         info.Bytes,
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintf(formatter.Writer, "No %s snapshots in %s\n", kind, opts.DB)
		return nil
	}
	for _, entry := range entries {
		fmt.Fprintf(formatter.Writer, "%s  %s  %d bytes  created %s\n",
			entry.ID, entry.Kind, entry.Bytes, entry.CreatedAt)
	}
	return nil
}

// newFormatter builds an OutputFormatter wired to the command's streams.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
