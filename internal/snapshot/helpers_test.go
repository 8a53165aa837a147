package snapshot

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/roach88/xldb/internal/testutil"
	"github.com/roach88/xldb/internal/xlink"
)

// createTestStore opens a fresh database with deterministic ids.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "xl.db")
	s, err := Open(path, WithIDGenerator(testutil.NewSequentialIDGenerator("")))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func parseTable(t *testing.T, table string) *xlink.Store {
	t.Helper()
	st, err := xlink.Parse(xlink.DefaultKeyMap(), strings.NewReader(table))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	return st
}
