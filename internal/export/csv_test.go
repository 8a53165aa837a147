package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/xldb/internal/testutil"
	"github.com/roach88/xldb/internal/xlink"
)

func TestWriteCSV_RoundTrip(t *testing.T) {
	s, err := xlink.Parse(xlink.DefaultKeyMap(), strings.NewReader(testutil.AmbiguityTable))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, s))
	assert.Equal(t, testutil.AmbiguityTable, buf.String())

	back, err := xlink.Parse(xlink.DefaultKeyMap(), &buf)
	require.NoError(t, err)
	assert.Equal(t, s.Records(), back.Records())
}

func TestWriteCSV_ExtrasAndAbsentValues(t *testing.T) {
	table := "Protein 1,Protein 2,Residue 1,Residue 2,UniqueID,Score,Linker\n" +
		"Prot A,ProtB,1,10,1,,DSS\n"
	s, err := xlink.Parse(xlink.DefaultKeyMap(), strings.NewReader(table))
	require.NoError(t, err)
	require.NoError(t, s.CloneProtein("ProtB", "ProtB.2"))

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, s))
	assert.Equal(t, table+"Prot A,ProtB.2,1,10,1,,DSS\n", buf.String())
}

func TestWriteFile(t *testing.T) {
	s, err := xlink.Parse(xlink.DefaultKeyMap(), strings.NewReader(testutil.BasicTable))
	require.NoError(t, err)
	included, excluded, err := s.Split(xlink.Where(xlink.KeyUniqueID, xlink.OpEq, 1))
	require.NoError(t, err)

	dir := t.TempDir()
	inPath := filepath.Join(dir, "included.csv")
	outPath := filepath.Join(dir, "excluded.csv")
	require.NoError(t, WriteFile(inPath, included))
	require.NoError(t, WriteFile(outPath, excluded))

	back, err := xlink.Open(xlink.DefaultKeyMap(), inPath)
	require.NoError(t, err)
	assert.Equal(t, 2, back.Len())

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ProtA,ProtB,1,21,2,2.0")

	err = WriteFile(filepath.Join(dir, "missing", "x.csv"), s)
	assert.Error(t, err)
}
