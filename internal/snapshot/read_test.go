package snapshot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/xldb/internal/testutil"
	"github.com/roach88/xldb/internal/xlink"
)

const extrasTable = "Protein 1,Protein 2,Residue 1,Residue 2,UniqueID,Score,Linker\n" +
	"ProtA,ProtB,1,10,1,1.0,DSS\n" +
	"ProtA,ProtB,1,11,1,,BS3\n" +
	"café,ProtB,5,7,2,0.5,DSS\n"

func TestSave_AssignsIDAndSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first, err := s.Save(ctx, "basic", parseTable(t, testutil.BasicTable))
	require.NoError(t, err)
	assert.Equal(t, "test-snapshot-0001", first.ID)
	assert.Equal(t, int64(1), first.Seq)
	assert.Equal(t, 3, first.RecordCount)
	assert.Equal(t, xlink.DefaultKeyMap(), first.KeyMap)
	assert.Equal(t, []xlink.Key{}, first.Extras)

	second, err := s.Save(ctx, "ambiguity", parseTable(t, testutil.AmbiguityTable))
	require.NoError(t, err)
	assert.Equal(t, "test-snapshot-0002", second.ID)
	assert.Equal(t, int64(2), second.Seq)

	infos, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Info{first, second}, infos)
}

func TestSave_Errors(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	unloaded, err := xlink.NewStore(xlink.DefaultKeyMap())
	require.NoError(t, err)
	_, err = s.Save(ctx, "x", unloaded)
	assert.Error(t, err)

	_, err = s.Save(ctx, "", parseTable(t, testutil.BasicTable))
	assert.Error(t, err)

	infos, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, infos)
	assert.NotNil(t, infos)
}

func TestLoad_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, table := range []string{testutil.BasicTable, testutil.AmbiguityTable, extrasTable} {
		st := parseTable(t, table)
		info, err := s.Save(ctx, "set", st)
		require.NoError(t, err)

		back, err := s.Load(ctx, info.ID)
		require.NoError(t, err)
		assert.Equal(t, st.Records(), back.Records())
		assert.Equal(t, st.Keys(), back.Keys())
		assert.Equal(t, st.KeyMap(), back.KeyMap())
	}
}

func TestLoad_NotFound(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.Load(ctx, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, "missing"), ErrNotFound)
}

func TestQuery_MatchesInMemoryFilter(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	st := parseTable(t, extrasTable)
	info, err := s.Save(ctx, "extras", st)
	require.NoError(t, err)

	preds := map[string]xlink.Predicate{
		"unique id":      xlink.Where(xlink.KeyUniqueID, xlink.OpEq, "1"),
		"score absent":   xlink.Where(xlink.KeyIDScore, xlink.OpGe, 0),
		"not over score": xlink.Not{Predicate: xlink.Where(xlink.KeyIDScore, xlink.OpGt, 0.7)},
		"extra column":   xlink.Where("Linker", xlink.OpEq, "DSS"),
		"residue range": xlink.AllOf(
			xlink.Where(xlink.KeyResidue2, xlink.OpGt, 7),
			xlink.Where(xlink.KeyResidue2, xlink.OpLe, 11),
		),
		"or": xlink.Or{Predicates: []xlink.Predicate{
			xlink.Where(xlink.KeyProtein1, xlink.OpEq, "café"),
			xlink.Where(xlink.KeyResidue2, xlink.OpEq, 11),
		}},
		"nothing": xlink.Where(xlink.KeyProtein2, xlink.OpEq, "ProtZ"),
	}

	for name, pred := range preds {
		t.Run(name, func(t *testing.T) {
			want, err := st.Filter(pred)
			require.NoError(t, err)

			got, err := s.Query(ctx, info.ID, pred)
			require.NoError(t, err)
			assert.Equal(t, want.Records(), got.Records())
		})
	}
}

func TestQuery_DecomposedTextMatchesInMemoryFilter(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	decomposed := "Prote\u0301"
	st := parseTable(t, "Protein 1,Protein 2,Residue 1,Residue 2\n"+
		decomposed+",ProtB,1,10\n"+
		"ProtB,ProtC,2,20\n")
	info, err := s.Save(ctx, "decomposed", st)
	require.NoError(t, err)

	identities := func(st *xlink.Store) []string {
		var ids []string
		for _, r := range st.All() {
			ids = append(ids, r.Identity())
		}
		return ids
	}

	for _, comparand := range []string{decomposed, "Prot\u00e9"} {
		for _, op := range []xlink.Op{xlink.OpEq, xlink.OpNe, xlink.OpLt} {
			pred := xlink.Where(xlink.KeyProtein1, op, comparand)
			want, err := st.Filter(pred)
			require.NoError(t, err)

			got, err := s.Query(ctx, info.ID, pred)
			require.NoError(t, err)
			assert.Equal(t, identities(want), identities(got), "%s", pred)
		}
	}
}

func TestQuery_InvalidPredicate(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	info, err := s.Save(ctx, "basic", parseTable(t, testutil.BasicTable))
	require.NoError(t, err)

	_, err = s.Query(ctx, info.ID, xlink.Where("Linker", xlink.OpEq, "DSS"))
	require.Error(t, err)
	assert.True(t, xlink.IsConfigurationError(err))
}

func TestDelete_CascadesRecords(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	info, err := s.Save(ctx, "basic", parseTable(t, testutil.BasicTable))
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, info.ID))

	var n int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM records").Scan(&n))
	assert.Zero(t, n)
}

func TestLocate(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	basic := parseTable(t, testutil.BasicTable)
	a, err := s.Save(ctx, "basic", basic)
	require.NoError(t, err)
	_, err = s.Save(ctx, "ambiguity", parseTable(t, testutil.AmbiguityTable))
	require.NoError(t, err)

	only2, err := basic.Filter(xlink.Where(xlink.KeyUniqueID, xlink.OpEq, 2))
	require.NoError(t, err)
	c, err := s.Save(ctx, "only-2", only2)
	require.NoError(t, err)

	found, err := s.Locate(ctx, basic.At(2).Identity())
	require.NoError(t, err)
	assert.Equal(t, []Info{a, c}, found)

	found, err = s.Locate(ctx, "no-such-identity")
	require.NoError(t, err)
	assert.Empty(t, found)
}
