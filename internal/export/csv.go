// Package export writes cross-link stores back to delimited text.
//
// The header row uses the store's configured column names, so reading the
// output with the same KeyMap reproduces the store.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/roach88/xldb/internal/xlink"
)

// WriteCSV writes the store as comma-delimited text with a header row.
// Absent optional values are written as empty fields.
func WriteCSV(w io.Writer, s *xlink.Store) error {
	keys := s.Keys()
	km := s.KeyMap()

	header := make([]string, len(keys))
	for i, k := range keys {
		if k.IsRole() {
			header[i] = km.Column(k)
		} else {
			header[i] = string(k)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, len(keys))
	for i, r := range s.All() {
		for j, k := range keys {
			if v, ok := r.Get(k); ok {
				row[j] = v.String()
			} else {
				row[j] = ""
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteFile writes the store to path, creating or truncating it.
func WriteFile(path string, s *xlink.Store) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("export %s: %w", path, closeErr)
		}
	}()

	if err := WriteCSV(f, s); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}
