package cli

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/xldb/internal/xlink"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Groups  bool
	Summary bool
}

// GroupOutput summarizes one unique-id group.
type GroupOutput struct {
	UniqueID  int64    `json:"unique_id"`
	Links     int      `json:"links"`
	BestScore *float64 `json:"best_score,omitempty"`
}

// SummaryOutput counts the distinct sites and protein pairs of a table.
type SummaryOutput struct {
	Records int          `json:"records"`
	Sites   int          `json:"sites"`
	Pairs   []PairOutput `json:"pairs"`
}

// PairOutput is the link count of one unordered protein pair.
type PairOutput struct {
	Protein1 string `json:"protein1"`
	Protein2 string `json:"protein2"`
	Links    int    `json:"links"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <table.csv>",
		Short: "Print a cross-link table",
		Long: `Print every record of a table, one line per record.

With --groups, print one line per unique id instead: the number of
links sharing it and their best score.

With --summary, print the number of distinct residue-pair sites and the
link count of every protein pair, A-B and B-A counted together.

Examples:
  xldb show xlinks.csv
  xldb show xlinks.csv --groups
  xldb show xlinks.csv --summary
  xldb show xlinks.csv --keymap keys.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Groups, "groups", false, "summarize by unique id")
	cmd.Flags().BoolVar(&opts.Summary, "summary", false, "count sites and protein pairs")
	cmd.MarkFlagsMutuallyExclusive("groups", "summary")

	return cmd
}

func runShow(opts *ShowOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	st, err := loadTable(opts.RootOptions, path, logger)
	if err != nil {
		return fail(f, "load table", err)
	}

	if opts.Summary {
		out := summaryOutput(st)
		if opts.Format == "json" {
			return f.Success(out)
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "records=%d sites=%d\n", out.Records, out.Sites)
		for _, p := range out.Pairs {
			fmt.Fprintf(w, "%s-%s links=%d\n", p.Protein1, p.Protein2, p.Links)
		}
		return nil
	}
	if !opts.Groups {
		return emitStore(f, cmd, st, "")
	}

	groups, err := st.Groups()
	if err != nil {
		return fail(f, "group table", err)
	}
	out := groupOutputs(groups)
	if opts.Format == "json" {
		return f.Success(out)
	}
	w := cmd.OutOrStdout()
	for _, g := range out {
		fmt.Fprintf(w, "unique_id=%d links=%d", g.UniqueID, g.Links)
		if g.BestScore != nil {
			fmt.Fprintf(w, " best_score=%s", xlink.Float(*g.BestScore))
		}
		fmt.Fprintln(w)
	}
	return nil
}

func groupOutputs(groups []xlink.Group) []GroupOutput {
	out := make([]GroupOutput, len(groups))
	for i, g := range groups {
		out[i] = GroupOutput{UniqueID: g.UniqueID, Links: len(g.Records)}
		if g.HasScore {
			score := g.BestScore
			out[i].BestScore = &score
		}
	}
	return out
}

func summaryOutput(st *xlink.Store) SummaryOutput {
	sites, _ := st.UniqueSites()
	counts := st.ProteinPairs()
	pairs := make([]PairOutput, 0, len(counts))
	for k, n := range counts {
		pairs = append(pairs, PairOutput{Protein1: k[0], Protein2: k[1], Links: n})
	}
	slices.SortFunc(pairs, func(a, b PairOutput) int {
		return cmp.Or(cmp.Compare(a.Protein1, b.Protein1), cmp.Compare(a.Protein2, b.Protein2))
	})
	return SummaryOutput{Records: st.Len(), Sites: len(sites), Pairs: pairs}
}
