package xlink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCondition(t *testing.T) {
	tests := []struct {
		in   string
		want Compare
	}{
		{"unique_id==2", Compare{Key: KeyUniqueID, Op: OpEq, Value: String("2")}},
		{"unique_id=2", Compare{Key: KeyUniqueID, Op: OpEq, Value: String("2")}},
		{"protein1 != ProtA", Compare{Key: KeyProtein1, Op: OpNe, Value: String("ProtA")}},
		{"residue1<10", Compare{Key: KeyResidue1, Op: OpLt, Value: String("10")}},
		{"residue1 <= 10", Compare{Key: KeyResidue1, Op: OpLe, Value: String("10")}},
		{"id_score>0.5", Compare{Key: KeyIDScore, Op: OpGt, Value: String("0.5")}},
		{"id_score >= 0.5", Compare{Key: KeyIDScore, Op: OpGe, Value: String("0.5")}},
		{"Cross linker==DSS", Compare{Key: "Cross linker", Op: OpEq, Value: String("DSS")}},
		{"protein2==", Compare{Key: KeyProtein2, Op: OpEq, Value: String("")}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCondition(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCondition_Errors(t *testing.T) {
	for _, in := range []string{"", "protein1", "==ProtA", "protein1 ! ProtA"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseCondition(in)
			assert.Error(t, err)
		})
	}
}

func TestParseConditions(t *testing.T) {
	p, err := ParseConditions(nil)
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = ParseConditions([]string{"unique_id==2"})
	require.NoError(t, err)
	assert.Equal(t, Compare{Key: KeyUniqueID, Op: OpEq, Value: String("2")}, p)

	p, err = ParseConditions([]string{"unique_id==2", "residue1<5"})
	require.NoError(t, err)
	require.IsType(t, And{}, p)
	assert.Len(t, p.(And).Predicates, 2)

	_, err = ParseConditions([]string{"unique_id==2", "==2"})
	assert.Error(t, err)
}

func TestParseOp(t *testing.T) {
	for text, want := range map[string]Op{
		"==": OpEq, "eq": OpEq, "EQ": OpEq,
		"!=": OpNe, "ne": OpNe,
		"<": OpLt, "lt": OpLt,
		"<=": OpLe, "le": OpLe,
		">": OpGt, "gt": OpGt,
		">=": OpGe, "ge": OpGe,
	} {
		got, err := ParseOp(text)
		require.NoError(t, err, text)
		assert.Equal(t, want, got, text)
	}

	_, err := ParseOp("~=")
	assert.Error(t, err)
}

func TestOp_TextRoundTrip(t *testing.T) {
	for _, op := range []Op{OpEq, OpNe, OpLt, OpLe, OpGt, OpGe} {
		text, err := op.MarshalText()
		require.NoError(t, err)

		var back Op
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, op, back)
	}

	_, err := Op(42).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "Op(42)", Op(42).String())
}

func TestCompare_String(t *testing.T) {
	assert.Equal(t, "unique_id==2", Where(KeyUniqueID, OpEq, 2).String())
	assert.Equal(t, "id_score>=1.0", Where(KeyIDScore, OpGe, 1.0).String())
}

func TestBind_PointerPredicates(t *testing.T) {
	s := load(t, "Protein 1,Protein 2,Residue 1,Residue 2,UniqueID,Score\nA,B,1,2,1,1.0\nA,C,3,4,2,2.0\n")

	f, err := s.Filter(&And{Predicates: []Predicate{
		&Compare{Key: KeyProtein1, Op: OpEq, Value: String("A")},
		&Not{Predicate: &Or{Predicates: []Predicate{Where(KeyProtein2, OpEq, "B")}}},
	}})
	require.NoError(t, err)
	require.Equal(t, 1, f.Len())
	assert.Equal(t, "C", f.At(0).Protein2())
}

func TestBind_Errors(t *testing.T) {
	s := load(t, "Protein 1,Protein 2,Residue 1,Residue 2,UniqueID,Score\nA,B,1,2,1,1.0\n")

	_, err := s.Filter(Compare{Key: KeyResidue1, Op: Op(99), Value: Int(1)})
	assert.True(t, IsConfigurationError(err))

	_, err = s.Filter(Not{})
	assert.True(t, IsConfigurationError(err))

	_, err = s.Filter(Compare{Key: KeyResidue1, Op: OpEq})
	assert.True(t, IsConfigurationError(err))
}

func TestWhere_UnsupportedComparand(t *testing.T) {
	s := load(t, "Protein 1,Protein 2,Residue 1,Residue 2\nA,B,1,2\n")

	for _, v := range []any{nil, []int{1}, struct{}{}} {
		c := Where(KeyProtein1, OpEq, v)
		assert.Nil(t, c.Value)

		_, err := s.Filter(c)
		assert.True(t, IsConfigurationError(err), "comparand %#v", v)
	}

	// A nil comparand never turns into the text "<nil>".
	s = load(t, "Protein 1,Protein 2,Residue 1,Residue 2\n<nil>,B,1,2\n")
	_, err := s.Filter(Where(KeyProtein1, OpEq, nil))
	assert.True(t, IsConfigurationError(err))
}

func TestBind_TextComparesInNFC(t *testing.T) {
	composed := "Prot\u00e9"    // é
	decomposed := "Prote\u0301" // e + combining acute
	s := load(t, "Protein 1,Protein 2,Residue 1,Residue 2\n"+decomposed+",B,1,2\nA,"+composed+",3,4\n")

	f, err := s.Filter(Where(KeyProtein1, OpEq, composed))
	require.NoError(t, err)
	assert.Equal(t, 1, f.Len())

	f, err = s.Filter(Where(KeyProtein2, OpEq, decomposed))
	require.NoError(t, err)
	require.Equal(t, 1, f.Len())
	assert.Equal(t, composed, f.At(0).Protein2(), "stored text is not rewritten")

	f, err = s.Filter(Where(KeyProtein1, OpNe, composed))
	require.NoError(t, err)
	assert.Equal(t, 1, f.Len())
}
