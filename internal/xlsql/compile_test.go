package xlsql

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/xldb/internal/testutil"
	"github.com/roach88/xldb/internal/xlink"
)

func basicCompiler(t *testing.T) *Compiler {
	t.Helper()
	s, err := xlink.Parse(xlink.DefaultKeyMap(), strings.NewReader(testutil.BasicTable))
	require.NoError(t, err)
	return NewCompiler(s)
}

func TestCompile_Nil(t *testing.T) {
	sql, params, err := basicCompiler(t).Compile(nil)
	require.NoError(t, err)
	assert.Equal(t, "1 = 1", sql)
	assert.Empty(t, params)
}

func TestCompile_Compare(t *testing.T) {
	c := basicCompiler(t)

	sql, params, err := c.Compile(xlink.Where(xlink.KeyUniqueID, xlink.OpEq, "2"))
	require.NoError(t, err)
	assert.Equal(t, "COALESCE(json_extract(fields, ?) = ?, 0)", sql)
	assert.Equal(t, []any{`$."unique_id"`, int64(2)}, params)

	sql, params, err = c.Compile(&xlink.Compare{Key: xlink.KeyIDScore, Op: xlink.OpGe, Value: xlink.Int(1)})
	require.NoError(t, err)
	assert.Equal(t, "COALESCE(json_extract(fields, ?) >= ?, 0)", sql)
	assert.Equal(t, []any{`$."id_score"`, float64(1)}, params)
}

func TestCompile_ValuesNeverInterpolated(t *testing.T) {
	c := basicCompiler(t)

	sql, params, err := c.Compile(xlink.Where(xlink.KeyProtein1, xlink.OpNe, "x' OR 1=1 --"))
	require.NoError(t, err)
	assert.NotContains(t, sql, "OR 1=1")
	assert.Equal(t, "COALESCE(json_extract(fields, ?) <> ?, 0)", sql)
	assert.Equal(t, "x' OR 1=1 --", params[1])
}

func TestCompile_Junctions(t *testing.T) {
	c := basicCompiler(t)

	pred := xlink.And{Predicates: []xlink.Predicate{
		xlink.Where(xlink.KeyProtein1, xlink.OpEq, "ProtA"),
		xlink.Or{Predicates: []xlink.Predicate{
			xlink.Where(xlink.KeyResidue1, xlink.OpLt, 5),
			xlink.Not{Predicate: xlink.Where(xlink.KeyUniqueID, xlink.OpEq, 1)},
		}},
	}}

	sql, params, err := c.Compile(pred)
	require.NoError(t, err)
	assert.Equal(t,
		"(COALESCE(json_extract(fields, ?) = ?, 0)) AND "+
			"((COALESCE(json_extract(fields, ?) < ?, 0)) OR "+
			"(NOT (COALESCE(json_extract(fields, ?) = ?, 0))))",
		sql)
	assert.Equal(t, []any{
		`$."protein1"`, "ProtA",
		`$."residue1"`, int64(5),
		`$."unique_id"`, int64(1),
	}, params)
}

func TestCompile_EmptyJunctions(t *testing.T) {
	c := basicCompiler(t)

	sql, _, err := c.Compile(xlink.And{})
	require.NoError(t, err)
	assert.Equal(t, "1 = 1", sql)

	sql, _, err = c.Compile(&xlink.Or{})
	require.NoError(t, err)
	assert.Equal(t, "1 = 0", sql)
}

func TestCompile_Errors(t *testing.T) {
	c := basicCompiler(t)

	tests := []struct {
		name string
		pred xlink.Predicate
	}{
		{"unknown key", xlink.Where("linker", xlink.OpEq, "DSS")},
		{"bad comparand", xlink.Where(xlink.KeyResidue1, xlink.OpEq, "ten")},
		{"bad operator", xlink.Compare{Key: xlink.KeyResidue1, Op: xlink.Op(99), Value: xlink.Int(1)}},
		{"empty not", xlink.Not{}},
		{"nested", xlink.And{Predicates: []xlink.Predicate{xlink.Where("nope", xlink.OpEq, 1)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := c.Compile(tt.pred)
			require.Error(t, err)
			assert.True(t, xlink.IsConfigurationError(err), "got %T", err)
		})
	}
}

func TestCompile_ExtraColumns(t *testing.T) {
	table := "Protein 1,Protein 2,Residue 1,Residue 2,Linker Type\n" +
		"ProtA,ProtB,1,10,DSS\n"
	s, err := xlink.Parse(xlink.DefaultKeyMap(), strings.NewReader(table))
	require.NoError(t, err)
	c := NewCompiler(s)

	_, params, err := c.Compile(xlink.Where("Linker Type", xlink.OpEq, 7))
	require.NoError(t, err)
	assert.Equal(t, []any{`$."Linker Type"`, "7"}, params)

	// unique_id is not configured in this table.
	_, _, err = c.Compile(xlink.Where(xlink.KeyUniqueID, xlink.OpEq, 1))
	assert.True(t, xlink.IsConfigurationError(err))
}

func TestJSONPath(t *testing.T) {
	assert.Equal(t, `$."residue1"`, JSONPath(xlink.KeyResidue1))
	assert.Equal(t, `$."a.b"`, JSONPath("a.b"))
	assert.Equal(t, `$."say \"hi\""`, JSONPath(`say "hi"`))
}

func TestParam(t *testing.T) {
	assert.Equal(t, int64(3), Param(xlink.Int(3)))
	assert.Equal(t, 2.5, Param(xlink.Float(2.5)))
	assert.Equal(t, "ProtA", Param(xlink.String("ProtA")))
	assert.Equal(t, "Prot\u00e9", Param(xlink.String("Prote\u0301")))
}
