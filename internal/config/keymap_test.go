package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/xldb/internal/testutil"
	"github.com/roach88/xldb/internal/xlink"
)

func TestLoadKeyMap_Default(t *testing.T) {
	km, err := LoadKeyMap("")
	require.NoError(t, err)
	assert.Equal(t, xlink.DefaultKeyMap(), km)
}

func TestLoadKeyMap_CUE(t *testing.T) {
	path := testutil.WriteFile(t, "keys.cue", `
keymap: {
	protein1:  "Protein 1"
	protein2:  "Protein 2"
	residue1:  "Residue 1"
	residue2:  "Residue 2"
	unique_id: "UniqueID"
}
`)
	km, err := LoadKeyMap(path)
	require.NoError(t, err)
	assert.Equal(t, "Protein 1", km.Protein1)
	assert.Equal(t, "UniqueID", km.UniqueID)
	assert.Equal(t, "", km.IDScore)
}

func TestParseCUE_MissingMandatory(t *testing.T) {
	_, err := ParseCUE("keys.cue", []byte(`
keymap: {
	protein1: "Protein 1"
	protein2: "Protein 2"
	residue1: "Residue 1"
}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "residue2")
}

func TestParseCUE_EmptyColumn(t *testing.T) {
	_, err := ParseCUE("keys.cue", []byte(`
keymap: {
	protein1: ""
	protein2: "Protein 2"
	residue1: "Residue 1"
	residue2: "Residue 2"
}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "protein1")
}

func TestParseCUE_UnknownField(t *testing.T) {
	_, err := ParseCUE("keys.cue", []byte(`
keymap: {
	protein1: "Protein 1"
	protein2: "Protein 2"
	residue1: "Residue 1"
	residue2: "Residue 2"
	linker:   "Linker"
}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "linker")
}

func TestParseCUE_SyntaxError(t *testing.T) {
	_, err := ParseCUE("keys.cue", []byte(`keymap: {`))
	require.Error(t, err)
}

func TestParseCUE_DuplicateColumn(t *testing.T) {
	_, err := ParseCUE("keys.cue", []byte(`
keymap: {
	protein1: "P"
	protein2: "P"
	residue1: "Residue 1"
	residue2: "Residue 2"
}
`))
	require.Error(t, err)
	assert.True(t, xlink.IsConfigurationError(err))
}

func TestLoadKeyMap_YAML(t *testing.T) {
	path := testutil.WriteFile(t, "keys.yaml", `
keymap:
  protein1: Protein 1
  protein2: Protein 2
  residue1: Residue 1
  residue2: Residue 2
  id_score: Score
`)
	km, err := LoadKeyMap(path)
	require.NoError(t, err)
	assert.Equal(t, "Residue 2", km.Residue2)
	assert.Equal(t, "Score", km.IDScore)
	assert.Equal(t, "", km.UniqueID)
}

func TestParseYAML_Errors(t *testing.T) {
	_, err := ParseYAML([]byte("other: 1\n"))
	assert.Error(t, err)

	_, err = ParseYAML([]byte("keymap:\n  protein1: A\n"))
	require.Error(t, err)
	assert.True(t, xlink.IsConfigurationError(err))

	_, err = ParseYAML([]byte("keymap:\n  protein1: A\n  bogus: B\n"))
	assert.Error(t, err)
}

func TestLoadKeyMap_Errors(t *testing.T) {
	_, err := LoadKeyMap("/nonexistent/keys.cue")
	assert.Error(t, err)

	path := testutil.WriteFile(t, "keys.json", `{}`)
	_, err = LoadKeyMap(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported extension")
}
