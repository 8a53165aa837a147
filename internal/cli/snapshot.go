package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/xldb/internal/snapshot"
	"github.com/roach88/xldb/internal/xlink"
)

// SnapshotOptions holds flags shared by the snapshot subcommands.
type SnapshotOptions struct {
	*RootOptions
	DB string
}

// NewSnapshotCommand creates the snapshot command group.
func NewSnapshotCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SnapshotOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Persist and inspect cross-link sets",
		Long: `Save tables into a SQLite snapshot database and read them back.

Snapshots are immutable: a saved set keeps its key map, extra columns and
record order. Ids are UUIDv7, so listing order is creation order.`,
	}

	cmd.PersistentFlags().StringVar(&opts.DB, "db", "xldb.db", "snapshot database path")

	cmd.AddCommand(newSnapshotSaveCommand(opts))
	cmd.AddCommand(newSnapshotListCommand(opts))
	cmd.AddCommand(newSnapshotShowCommand(opts))
	cmd.AddCommand(newSnapshotDeleteCommand(opts))
	cmd.AddCommand(newSnapshotLocateCommand(opts))

	return cmd
}

// InfoOutput is the JSON form of a snapshot header.
type InfoOutput struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Records int      `json:"records"`
	Extras  []string `json:"extras"`
}

func infoOutput(info snapshot.Info) InfoOutput {
	out := InfoOutput{
		ID:      info.ID,
		Name:    info.Name,
		Records: info.RecordCount,
		Extras:  make([]string, len(info.Extras)),
	}
	for i, k := range info.Extras {
		out.Extras[i] = string(k)
	}
	return out
}

func infoOutputs(infos []snapshot.Info) []InfoOutput {
	out := make([]InfoOutput, len(infos))
	for i, info := range infos {
		out[i] = infoOutput(info)
	}
	return out
}

func printInfos(cmd *cobra.Command, infos []snapshot.Info) {
	w := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(w, "No snapshots.")
		return
	}
	for _, info := range infos {
		fmt.Fprintf(w, "%s  %-20s %d records\n", info.ID, info.Name, info.RecordCount)
	}
}

// withSnapshots opens the database for the duration of fn.
func withSnapshots(opts *SnapshotOptions, f *OutputFormatter, fn func(*snapshot.Store) error) error {
	db, err := snapshot.Open(opts.DB)
	if err != nil {
		return fail(f, "open snapshot database", err)
	}
	defer db.Close()
	return fn(db)
}

// snapshotSaveOptions holds flags for snapshot save.
type snapshotSaveOptions struct {
	*SnapshotOptions
	Name string
}

func newSnapshotSaveCommand(parent *SnapshotOptions) *cobra.Command {
	opts := &snapshotSaveOptions{SnapshotOptions: parent}

	cmd := &cobra.Command{
		Use:   "save <table.csv>",
		Short: "Save a table as a new snapshot",
		Example: `  xldb snapshot save xlinks.csv --name raw
  xldb snapshot save dimer.csv --name dimer --db runs.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(opts.RootOptions, cmd)
			logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

			st, err := loadTable(opts.RootOptions, args[0], logger)
			if err != nil {
				return fail(f, "load table", err)
			}
			return withSnapshots(opts.SnapshotOptions, f, func(db *snapshot.Store) error {
				info, err := db.Save(cmd.Context(), opts.Name, st)
				if err != nil {
					return fail(f, "save snapshot", err)
				}
				logger.Debug("snapshot saved", "id", info.ID, "seq", info.Seq)
				if opts.Format == "json" {
					return f.Success(infoOutput(info))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%d records) as %s\n", info.Name, info.RecordCount, info.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "snapshot name (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newSnapshotListCommand(opts *SnapshotOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List snapshots in creation order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(opts.RootOptions, cmd)
			return withSnapshots(opts, f, func(db *snapshot.Store) error {
				infos, err := db.List(cmd.Context())
				if err != nil {
					return fail(f, "list snapshots", err)
				}
				if opts.Format == "json" {
					return f.Success(infoOutputs(infos))
				}
				printInfos(cmd, infos)
				return nil
			})
		},
	}
}

// snapshotShowOptions holds flags for snapshot show.
type snapshotShowOptions struct {
	*SnapshotOptions
	Where []string
	Out   string
}

func newSnapshotShowCommand(parent *SnapshotOptions) *cobra.Command {
	opts := &snapshotShowOptions{SnapshotOptions: parent}

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a snapshot, optionally filtered in the database",
		Example: `  xldb snapshot show 0192f3c4-...
  xldb snapshot show 0192f3c4-... --where "id_score>=2" --out strong.csv`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(opts.RootOptions, cmd)

			pred, err := xlink.ParseConditions(opts.Where)
			if err != nil {
				return fail(f, "parse condition", &xlink.ConfigurationError{Message: err.Error()})
			}
			return withSnapshots(opts.SnapshotOptions, f, func(db *snapshot.Store) error {
				st, err := db.Query(cmd.Context(), args[0], pred)
				if err != nil {
					return fail(f, "read snapshot", err)
				}
				if err := emitStore(f, cmd, st, opts.Out); err != nil {
					return fail(f, "write output", err)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Where, "where", "w", nil, "condition (repeatable, ANDed)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write the records to this CSV")

	return cmd
}

func newSnapshotDeleteCommand(opts *SnapshotOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <id>",
		Short:         "Delete a snapshot and its records",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(opts.RootOptions, cmd)
			return withSnapshots(opts, f, func(db *snapshot.Store) error {
				if err := db.Delete(cmd.Context(), args[0]); err != nil {
					return fail(f, "delete snapshot", err)
				}
				if opts.Format == "json" {
					return f.Success(map[string]string{"deleted": args[0]})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func newSnapshotLocateCommand(opts *SnapshotOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "locate <identity>",
		Short: "List the snapshots containing a record",
		Long: `List the snapshots holding a record with the given identity, the
hex SHA-256 content id printed by "xldb show --format json".`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(opts.RootOptions, cmd)
			return withSnapshots(opts, f, func(db *snapshot.Store) error {
				infos, err := db.Locate(cmd.Context(), args[0])
				if err != nil {
					return fail(f, "locate record", err)
				}
				if opts.Format == "json" {
					return f.Success(infoOutputs(infos))
				}
				printInfos(cmd, infos)
				return nil
			})
		},
	}
}
