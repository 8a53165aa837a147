package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/xldb/internal/xlink"
)

// SetOptions holds flags for the set command.
type SetOptions struct {
	*RootOptions
	Key   string
	Value string
	Where []string
	Out   string
}

// NewSetCommand creates the set command.
func NewSetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "set <table.csv>",
		Short: "Assign a value to a key on matching records",
		Long: `Assign --value to --key on every record matching the --where
conditions, or on every record when no condition is given. The value is
converted to the key's type: residues and unique_id are integers, id_score
is a number.

Examples:
  xldb set xlinks.csv --key protein1 --value ProtA.1 --where protein1==ProtA
  xldb set xlinks.csv --key id_score --value 1 --out rescored.csv`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Key, "key", "", "key to assign (required)")
	cmd.Flags().StringVar(&opts.Value, "value", "", "value to assign")
	cmd.Flags().StringArrayVarP(&opts.Where, "where", "w", nil, "condition (repeatable, ANDed)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write the result to this CSV")
	_ = cmd.MarkFlagRequired("key")

	return cmd
}

func runSet(opts *SetOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	pred, err := xlink.ParseConditions(opts.Where)
	if err != nil {
		return fail(f, "parse condition", &xlink.ConfigurationError{Message: err.Error()})
	}

	st, err := loadTable(opts.RootOptions, path, logger)
	if err != nil {
		return fail(f, "load table", err)
	}

	if err := st.SetValue(xlink.Key(opts.Key), xlink.String(opts.Value), pred); err != nil {
		return fail(f, "set value", err)
	}
	logger.Debug("value set", "key", opts.Key, "value", opts.Value)

	if err := emitStore(f, cmd, st, opts.Out); err != nil {
		return fail(f, "write output", err)
	}
	return nil
}

// CloneOptions holds flags for the clone command.
type CloneOptions struct {
	*RootOptions
	From string
	To   string
	Out  string
}

// NewCloneCommand creates the clone command.
func NewCloneCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CloneOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "clone <table.csv>",
		Short: "Duplicate a protein's links under a new name",
		Long: `Append, for every record naming --from, a copy with that name
replaced by --to. Originals are kept, so a homo-oligomer's copies each get
the full set of links.

Examples:
  xldb clone xlinks.csv --from ProtA.1 --to ProtA.2
  xldb clone xlinks.csv --from ProtA --to ProtA.2 --out dimer.csv`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClone(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.From, "from", "", "protein to clone (required)")
	cmd.Flags().StringVar(&opts.To, "to", "", "name of the copy (required)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write the result to this CSV")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func runClone(opts *CloneOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	st, err := loadTable(opts.RootOptions, path, logger)
	if err != nil {
		return fail(f, "load table", err)
	}

	before := st.Len()
	if err := st.CloneProtein(opts.From, opts.To); err != nil {
		return fail(f, "clone protein", err)
	}
	logger.Debug("protein cloned", "from", opts.From, "to", opts.To, "added", st.Len()-before)

	if err := emitStore(f, cmd, st, opts.Out); err != nil {
		return fail(f, "write output", err)
	}
	return nil
}
