// Package sweep scores a cross-link set while moving one entity along an
// axis, optionally against a second, nuisance parameter, or while sweeping two
// model parameters against each other at a fixed geometry (ParameterGrid).
//
// Scoring and geometry are external: callers inject an Evaluator, a
// Positioner and, for grids, a ParameterSetter. This package only sequences
// the calls and collects the results.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/roach88/xldb/internal/xlink"
)

// Evaluator scores a cross-link set against the current geometry.
type Evaluator interface {
	Evaluate(ctx context.Context, s *xlink.Store) (float64, error)
}

// EvaluatorFunc adapts a function to Evaluator.
type EvaluatorFunc func(ctx context.Context, s *xlink.Store) (float64, error)

// Evaluate calls f.
func (f EvaluatorFunc) Evaluate(ctx context.Context, s *xlink.Store) (float64, error) {
	return f(ctx, s)
}

// Positioner places a named entity at a coordinate.
type Positioner interface {
	SetPosition(entity string, x, y, z float64) error
}

// ParameterSetter sets a named scalar parameter of the evaluator, such as a
// restraint uncertainty.
type ParameterSetter interface {
	SetParameter(name string, value float64) error
}

// Axis selects the coordinate a Plan varies.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// ParseAxis parses "x", "y" or "z".
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x", "X", "":
		return AxisX, nil
	case "y", "Y":
		return AxisY, nil
	case "z", "Z":
		return AxisZ, nil
	default:
		return 0, fmt.Errorf("unknown axis %q", s)
	}
}

// Point is one evaluated position.
type Point struct {
	X     float64 `json:"x"`
	Score float64 `json:"score"`
}

// Series is the result of one sweep.
type Series struct {
	Label  string  `json:"label"`
	Points []Point `json:"points"`
}

// Plan describes a one-dimensional sweep. Origin is the entity's position
// on the other two axes.
type Plan struct {
	Label      string
	Store      *xlink.Store
	Evaluator  Evaluator
	Positioner Positioner
	Entity     string
	Axis       Axis
	Origin     [3]float64
	Steps      []float64
}

func (p Plan) validate() error {
	switch {
	case p.Store == nil:
		return errors.New("sweep: no store")
	case p.Evaluator == nil:
		return errors.New("sweep: no evaluator")
	case p.Positioner == nil:
		return errors.New("sweep: no positioner")
	case p.Entity == "":
		return errors.New("sweep: no entity")
	case p.Axis < AxisX || p.Axis > AxisZ:
		return fmt.Errorf("sweep: invalid axis %v", p.Axis)
	}
	return nil
}

// Run moves the entity through each step and records the score there.
func Run(ctx context.Context, p Plan) (Series, error) {
	if err := p.validate(); err != nil {
		return Series{}, err
	}

	series := Series{Label: p.Label, Points: make([]Point, 0, len(p.Steps))}
	for _, step := range p.Steps {
		if err := ctx.Err(); err != nil {
			return Series{}, fmt.Errorf("sweep: %w", err)
		}
		pos := p.Origin
		pos[p.Axis] = step
		if err := p.Positioner.SetPosition(p.Entity, pos[0], pos[1], pos[2]); err != nil {
			return Series{}, fmt.Errorf("sweep: position %s at %g: %w", p.Entity, step, err)
		}
		score, err := p.Evaluator.Evaluate(ctx, p.Store)
		if err != nil {
			return Series{}, fmt.Errorf("sweep: evaluate at %g: %w", step, err)
		}
		series.Points = append(series.Points, Point{X: step, Score: score})
	}
	return series, nil
}

// GridPlan repeats a Plan once per value of a nuisance parameter.
type GridPlan struct {
	Plan
	Setter    ParameterSetter
	Parameter string
	Values    []float64
}

// Grid runs the sweep for each parameter value. Each series is labelled
// "<parameter>=<value>".
func Grid(ctx context.Context, g GridPlan) ([]Series, error) {
	if g.Setter == nil {
		return nil, errors.New("sweep: no parameter setter")
	}
	if g.Parameter == "" {
		return nil, errors.New("sweep: no parameter")
	}

	out := make([]Series, 0, len(g.Values))
	for _, v := range g.Values {
		if err := g.Setter.SetParameter(g.Parameter, v); err != nil {
			return nil, fmt.Errorf("sweep: set %s=%g: %w", g.Parameter, v, err)
		}
		plan := g.Plan
		plan.Label = g.Parameter + "=" + strconv.FormatFloat(v, 'g', -1, 64)
		s, err := Run(ctx, plan)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// ParameterPlan sweeps two parameters against each other with the geometry
// held where the caller left it. Outer varies slowest.
type ParameterPlan struct {
	Store     *xlink.Store
	Evaluator Evaluator
	Setter    ParameterSetter
	Outer     Parameter
	Inner     Parameter
}

// Parameter is one named parameter axis and the values it takes.
type Parameter struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// Cell is one evaluated parameter pair.
type Cell struct {
	Outer float64 `json:"outer"`
	Inner float64 `json:"inner"`
	Score float64 `json:"score"`
}

// Surface is the result of a ParameterGrid, cells in outer-major order.
type Surface struct {
	Outer string `json:"outer"`
	Inner string `json:"inner"`
	Cells []Cell `json:"cells"`
}

func (p ParameterPlan) validate() error {
	switch {
	case p.Store == nil:
		return errors.New("sweep: no store")
	case p.Evaluator == nil:
		return errors.New("sweep: no evaluator")
	case p.Setter == nil:
		return errors.New("sweep: no parameter setter")
	case p.Outer.Name == "" || p.Inner.Name == "":
		return errors.New("sweep: parameter name is empty")
	case p.Outer.Name == p.Inner.Name:
		return fmt.Errorf("sweep: parameter %s swept against itself", p.Outer.Name)
	case len(p.Outer.Values)*len(p.Inner.Values) > MaxSteps:
		return fmt.Errorf("sweep: %d x %d cells exceeds %d", len(p.Outer.Values), len(p.Inner.Values), MaxSteps)
	}
	return nil
}

// ParameterGrid sets every (outer, inner) value pair in turn and records the
// score there.
func ParameterGrid(ctx context.Context, p ParameterPlan) (Surface, error) {
	if err := p.validate(); err != nil {
		return Surface{}, err
	}

	out := Surface{
		Outer: p.Outer.Name,
		Inner: p.Inner.Name,
		Cells: make([]Cell, 0, len(p.Outer.Values)*len(p.Inner.Values)),
	}
	for _, ov := range p.Outer.Values {
		if err := p.Setter.SetParameter(p.Outer.Name, ov); err != nil {
			return Surface{}, fmt.Errorf("sweep: set %s=%g: %w", p.Outer.Name, ov, err)
		}
		for _, iv := range p.Inner.Values {
			if err := ctx.Err(); err != nil {
				return Surface{}, fmt.Errorf("sweep: %w", err)
			}
			if err := p.Setter.SetParameter(p.Inner.Name, iv); err != nil {
				return Surface{}, fmt.Errorf("sweep: set %s=%g: %w", p.Inner.Name, iv, err)
			}
			score, err := p.Evaluator.Evaluate(ctx, p.Store)
			if err != nil {
				return Surface{}, fmt.Errorf("sweep: evaluate at %s=%g %s=%g: %w", p.Outer.Name, ov, p.Inner.Name, iv, err)
			}
			out.Cells = append(out.Cells, Cell{Outer: ov, Inner: iv, Score: score})
		}
	}
	return out, nil
}

// MaxSteps bounds the values Range and Linspace produce and the cells of a
// ParameterGrid.
const MaxSteps = 1_000_000

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Range returns start, start+step, ... up to but excluding stop. A range
// that is empty in the step's direction returns nil. Non-finite bounds, a
// zero step or more than MaxSteps values are errors.
func Range(start, stop, step float64) ([]float64, error) {
	if !finite(start, stop, step) {
		return nil, fmt.Errorf("range %g..%g by %g: bounds must be finite", start, stop, step)
	}
	if step == 0 {
		return nil, errors.New("range: step must be non-zero")
	}
	if (step > 0 && start >= stop) || (step < 0 && start <= stop) {
		return nil, nil
	}
	span := (stop - start) / step
	if span > MaxSteps {
		return nil, fmt.Errorf("range %g..%g by %g: more than %d steps", start, stop, step, MaxSteps)
	}
	out := make([]float64, int(math.Ceil(span)))
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out, nil
}

// Linspace returns n evenly spaced values from start to stop inclusive.
// n == 0 returns nil.
func Linspace(start, stop float64, n int) ([]float64, error) {
	switch {
	case !finite(start, stop):
		return nil, fmt.Errorf("linspace %g..%g: bounds must be finite", start, stop)
	case n < 0 || n > MaxSteps:
		return nil, fmt.Errorf("linspace: n=%d out of range [0, %d]", n, MaxSteps)
	case n == 0:
		return nil, nil
	case n == 1:
		return []float64{start}, nil
	}
	out := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out, nil
}
