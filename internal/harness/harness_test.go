package harness

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/xldb/internal/snapshot"
	"github.com/roach88/xldb/internal/sweep"
	"github.com/roach88/xldb/internal/testutil"
	"github.com/roach88/xldb/internal/xlink"
)

// toyModel scores a set as record count times the distance of ProtA from
// the origin plus sigma plus ten times psi.
type toyModel struct {
	pos    [3]float64
	params map[string]float64
}

func newToyModel() *toyModel { return &toyModel{params: map[string]float64{}} }

func (m *toyModel) SetPosition(_ string, x, y, z float64) error {
	m.pos = [3]float64{x, y, z}
	return nil
}

func (m *toyModel) SetParameter(name string, v float64) error {
	m.params[name] = v
	return nil
}

func (m *toyModel) Evaluate(_ context.Context, s *xlink.Store) (float64, error) {
	d := math.Sqrt(m.pos[0]*m.pos[0] + m.pos[1]*m.pos[1] + m.pos[2]*m.pos[2])
	return float64(s.Len())*d + m.params["sigma"] + 10*m.params["psi"], nil
}

func loadScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func TestScenarios_Golden(t *testing.T) {
	for _, name := range []string{"basic", "ambiguity"} {
		t.Run(name, func(t *testing.T) {
			result, err := RunWithGolden(t, loadScenario(t, name), Options{})
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRestraintScenario(t *testing.T) {
	out := t.TempDir()
	db, err := snapshot.Open(filepath.Join(out, "xl.db"),
		snapshot.WithIDGenerator(testutil.NewSequentialIDGenerator("")))
	require.NoError(t, err)
	defer db.Close()

	m := newToyModel()
	opts := Options{
		OutDir:     out,
		Snapshots:  db,
		Evaluator:  m,
		Positioner: m,
		Setter:     m,
	}

	result, err := RunWithGolden(t, loadScenario(t, "restraint"), opts)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	included, err := xlink.Open(xlink.DefaultKeyMap(), filepath.Join(out, "included.csv"))
	require.NoError(t, err)
	assert.Equal(t, 2, included.Len())
	excluded, err := xlink.Open(xlink.DefaultKeyMap(), filepath.Join(out, "excluded.csv"))
	require.NoError(t, err)
	assert.Equal(t, 1, excluded.Len())

	require.Len(t, result.Series, 2)
	assert.Equal(t, "sigma=2", result.Series[1].Label)
	assert.Equal(t, 8.0, result.Series[1].Points[0].Score)

	tsv, err := os.ReadFile(filepath.Join(out, "scores.tsv"))
	require.NoError(t, err)
	assert.Contains(t, string(tsv), "sigma=1\t0\t1\n")

	require.Len(t, result.Snapshots, 1)
	saved, err := db.Load(context.Background(), result.Snapshots[0].ID)
	require.NoError(t, err)
	assert.Equal(t, result.Store.Records(), saved.Records())
}

func TestRun_StepsAreTranscribed(t *testing.T) {
	result, err := Run(loadScenario(t, "ambiguity"), Options{})
	require.NoError(t, err)

	require.Len(t, result.Steps, 4)
	assert.Equal(t, []int{4, 4, 4, 8}, []int{
		result.Steps[0].Records, result.Steps[1].Records,
		result.Steps[2].Records, result.Steps[3].Records,
	})
	assert.Equal(t, "load", result.Steps[0].Op)
	assert.Equal(t, "clone", result.Steps[3].Op)
	assert.Equal(t, 8, result.Store.Len())
}

func TestRun_AssertionFailuresAreCollected(t *testing.T) {
	s := loadScenario(t, "basic")
	s.Assertions = []Assertion{
		{Type: AssertCount, Count: 5},
		{Type: AssertGroups, Count: 2},
		{Type: AssertContains, Where: []string{"protein1==ProtZ"}},
		{Type: AssertProteins, Proteins: []string{"ProtA"}},
	}

	result, err := Run(s, Options{})
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "Expected: 5 records")
	assert.Contains(t, result.Errors[0], "Actual: 1 records")
	assert.Contains(t, result.Errors[1], "1 groups [2]")
	assert.Contains(t, result.Errors[2], "protein1==ProtZ")
	assert.Contains(t, result.Errors[3], "[ProtA ProtB]")
}

func TestRun_StepErrors(t *testing.T) {
	tests := []struct {
		name string
		step Step
		opts Options
		want string
	}{
		{"unknown protein", Step{Op: OpClone, From: "ProtZ", To: "ProtZ.2"}, Options{}, "step 1 (clone)"},
		{"bad condition", Step{Op: OpFilter, Where: []string{"unique_id"}}, Options{}, "no comparison operator"},
		{"unknown key", Step{Op: OpFilter, Where: []string{"linker==DSS"}}, Options{}, "unknown key"},
		{"snapshot without store", Step{Op: OpSnapshot, Name: "x"}, Options{}, "no snapshot store"},
		{"sweep without evaluator", Step{Op: OpSweep, Sweep: &SweepStep{Entity: "ProtA", Step: 1, Stop: 2}}, Options{}, "needs an evaluator"},
		{"sweep without setter", Step{Op: OpSweep, Sweep: &SweepStep{Entity: "ProtA", Step: 1, Stop: 2, Parameter: "sigma", Values: []float64{1}}},
			Options{Evaluator: newToyModel(), Positioner: newToyModel()}, "no parameter setter"},
		{"bad axis", Step{Op: OpSweep, Sweep: &SweepStep{Entity: "ProtA", Axis: "w", Step: 1}},
			Options{Evaluator: newToyModel(), Positioner: newToyModel()}, "unknown axis"},
		{"unbounded sweep", Step{Op: OpSweep, Sweep: &SweepStep{Entity: "ProtA", Stop: math.Inf(1), Step: 1}},
			Options{Evaluator: newToyModel(), Positioner: newToyModel()}, "must be finite"},
		{"parameters without setter", Step{Op: OpSweep, Sweep: &SweepStep{Parameters: []ParameterSpec{
			{Name: "psi", Values: []float64{0}}, {Name: "sigma", Values: []float64{0}},
		}}}, Options{Evaluator: newToyModel()}, "no parameter setter"},
		{"placing without positioner", Step{Op: OpSweep, Sweep: &SweepStep{Entity: "ProtA", Parameters: []ParameterSpec{
			{Name: "psi", Values: []float64{0}}, {Name: "sigma", Values: []float64{0}},
		}}}, Options{Evaluator: newToyModel(), Setter: newToyModel()}, "needs a positioner"},
		{"append missing file", Step{Op: OpAppend, File: filepath.Join(t.TempDir(), "nope.csv")}, Options{}, "step 1 (append)"},
		{"export to missing dir", Step{Op: OpExport, Included: "missing/in.csv"}, Options{OutDir: t.TempDir()}, "export"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := loadScenario(t, "basic")
			s.Steps = []Step{tt.step}
			_, err := Run(s, tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRun_LogsSteps(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := Run(loadScenario(t, "basic"), Options{Logger: logger})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "scenario=basic")
	assert.Contains(t, buf.String(), "op=filter")
	assert.Contains(t, buf.String(), "records=1")
}

func TestRun_SetValueAllRecordsAndOffset(t *testing.T) {
	s := loadScenario(t, "basic")
	s.Steps = []Step{
		{Op: OpSetValue, Key: "id_score", Value: 5},
		{Op: OpOffset, Protein: "ProtB", Offset: 100},
		{Op: OpRename, Names: map[string]string{"ProtA": "Alpha"}},
	}
	s.Assertions = []Assertion{
		{Type: AssertContains, Where: []string{"id_score==5", "residue2==110", "protein1==Alpha"}},
		{Type: AssertCount, Count: 3},
	}

	result, err := Run(s, Options{})
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Contains(t, result.Steps[1].Rendering, "id_score=5.0")
}

func TestSurfaceScenario(t *testing.T) {
	out := t.TempDir()
	m := newToyModel()
	result, err := Run(loadScenario(t, "surface"), Options{
		OutDir:     out,
		Evaluator:  m,
		Positioner: m,
		Setter:     m,
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	require.Len(t, result.Steps, 4)
	assert.Equal(t, "appended=2", result.Steps[1].Detail)
	assert.Equal(t, 5, result.Steps[1].Records)
	assert.Equal(t, 4, result.Steps[2].Records, "the repeated row is deduplicated")
	assert.Equal(t, "surface=psi,sigma cells=6", result.Steps[3].Detail)
	assert.Empty(t, result.Series)

	// four records at distance one: 4 + sigma + 10*psi
	require.Len(t, result.Surfaces, 1)
	surface := result.Surfaces[0]
	assert.Equal(t, "psi", surface.Outer)
	assert.Equal(t, "sigma", surface.Inner)
	assert.Equal(t, []sweep.Cell{
		{Outer: 0, Inner: 0, Score: 4},
		{Outer: 0, Inner: 0.5, Score: 4.5},
		{Outer: 0, Inner: 1, Score: 5},
		{Outer: 1, Inner: 0, Score: 14},
		{Outer: 1, Inner: 0.5, Score: 14.5},
		{Outer: 1, Inner: 1, Score: 15},
	}, surface.Cells)
	assert.Equal(t, [3]float64{1, 0, 0}, m.pos)

	tsv, err := os.ReadFile(filepath.Join(out, "surface.tsv"))
	require.NoError(t, err)
	assert.Equal(t, "psi\tsigma\tscore\n"+
		"0\t0\t4\n0\t0.5\t4.5\n0\t1\t5\n"+
		"1\t0\t14\n1\t0.5\t14.5\n1\t1\t15\n", string(tsv))
}

func TestRun_LinspaceSweep(t *testing.T) {
	m := newToyModel()
	s := loadScenario(t, "basic")
	s.Steps = []Step{{Op: OpSweep, Sweep: &SweepStep{
		Entity:   "ProtA",
		Linspace: &LinspaceSpec{Start: 0, Stop: 2, N: 5},
	}}}

	result, err := Run(s, Options{Evaluator: m, Positioner: m})
	require.NoError(t, err)
	require.Len(t, result.Series, 1)

	var xs []float64
	for _, p := range result.Series[0].Points {
		xs = append(xs, p.X)
	}
	assert.Equal(t, []float64{0, 0.5, 1, 1.5, 2}, xs)
	assert.Equal(t, "series=1 points=5", result.Steps[1].Detail)
}

func TestRun_AppendNeedsScenarioColumns(t *testing.T) {
	path := testutil.WriteFile(t, "other.csv", "P1,P2,R1,R2\nProtA,ProtB,1,2\n")
	s := loadScenario(t, "basic")
	s.Steps = []Step{{Op: OpAppend, File: path}}

	_, err := Run(s, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 1 (append)")
}
