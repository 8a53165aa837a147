package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/xldb/internal/config"
	"github.com/roach88/xldb/internal/export"
	"github.com/roach88/xldb/internal/xlink"
)

// loadTable reads a table with the key map named by --keymap.
func loadTable(opts *RootOptions, path string, logger *slog.Logger) (*xlink.Store, error) {
	km, err := config.LoadKeyMap(opts.KeyMap)
	if err != nil {
		return nil, &keyMapError{err: err}
	}
	st, err := xlink.Open(km, path)
	if err != nil {
		return nil, err
	}
	logger.Debug("table loaded", "path", path, "records", st.Len(), "extras", len(st.Extras()))
	return st, nil
}

// StoreOutput is the JSON form of a cross-link set.
type StoreOutput struct {
	Keys       []string         `json:"keys"`
	Count      int              `json:"count"`
	Records    []map[string]any `json:"records"`
	Identities []string         `json:"identities"`
}

// WriteOutput is the JSON result of writing a set to a file.
type WriteOutput struct {
	Path    string `json:"path"`
	Records int    `json:"records"`
}

func storeOutput(st *xlink.Store) StoreOutput {
	keys := st.Keys()
	out := StoreOutput{
		Keys:       make([]string, len(keys)),
		Count:      st.Len(),
		Records:    make([]map[string]any, 0, st.Len()),
		Identities: make([]string, 0, st.Len()),
	}
	for i, k := range keys {
		out.Keys[i] = string(k)
	}
	for _, r := range st.All() {
		out.Records = append(out.Records, recordOutput(r))
		out.Identities = append(out.Identities, r.Identity())
	}
	return out
}

func recordOutput(r xlink.Record) map[string]any {
	m := make(map[string]any, len(r))
	for k, v := range r {
		switch val := v.(type) {
		case xlink.Int:
			m[string(k)] = int64(val)
		case xlink.Float:
			m[string(k)] = float64(val)
		default:
			m[string(k)] = v.String()
		}
	}
	return m
}

// emitStore writes st to out as CSV when out is set, otherwise prints it.
func emitStore(f *OutputFormatter, cmd *cobra.Command, st *xlink.Store, out string) error {
	if out != "" {
		if err := export.WriteFile(out, st); err != nil {
			return &writeError{err: err}
		}
		if f.Format == "json" {
			return f.Success(WriteOutput{Path: out, Records: st.Len()})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records to %s\n", st.Len(), out)
		return nil
	}

	if f.Format == "json" {
		return f.Success(storeOutput(st))
	}
	return st.Render(cmd.OutOrStdout())
}
