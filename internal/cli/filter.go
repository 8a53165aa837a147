package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/xldb/internal/export"
	"github.com/roach88/xldb/internal/xlink"
)

// FilterOptions holds flags for the filter command.
type FilterOptions struct {
	*RootOptions
	Where    []string
	Out      string
	Excluded string
}

// NewFilterCommand creates the filter command.
func NewFilterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FilterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "filter <table.csv>",
		Short: "Keep the records matching every condition",
		Long: `Keep the records matching every --where condition, in order.

A condition is key, operator and value: unique_id==2, id_score>=0.5,
"protein1!=ProtA". Keys are role names or extra column names. Operators
are ==, !=, <, <=, > and >=.

With --excluded, the records that did not match are written there.

Examples:
  xldb filter xlinks.csv --where unique_id==2
  xldb filter xlinks.csv --where "id_score>=2" --out kept.csv --excluded dropped.csv`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Where, "where", "w", nil, "condition (repeatable, ANDed)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write matching records to this CSV")
	cmd.Flags().StringVar(&opts.Excluded, "excluded", "", "write non-matching records to this CSV")
	_ = cmd.MarkFlagRequired("where")

	return cmd
}

func runFilter(opts *FilterOptions, path string, cmd *cobra.Command) error {
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

	included, excluded, err := st.Split(pred)
	if err != nil {
		return fail(f, "filter", err)
	}
	logger.Debug("filtered", "included", included.Len(), "excluded", excluded.Len())

	if opts.Excluded != "" {
		if err := export.WriteFile(opts.Excluded, excluded); err != nil {
			return fail(f, "write excluded", &writeError{err: err})
		}
	}
	if err := emitStore(f, cmd, included, opts.Out); err != nil {
		return fail(f, "write output", err)
	}
	return nil
}
