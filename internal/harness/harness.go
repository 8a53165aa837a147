package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/roach88/xldb/internal/export"
	"github.com/roach88/xldb/internal/snapshot"
	"github.com/roach88/xldb/internal/sweep"
	"github.com/roach88/xldb/internal/xlink"
)

// Options configures scenario execution. The zero value runs scenarios that
// use neither snapshots nor sweeps, writing exports relative to the current
// directory.
type Options struct {
	// Logger receives one debug record per step. Nil discards.
	Logger *slog.Logger

	// OutDir is the base for relative export and sweep output paths.
	OutDir string

	// Snapshots receives snapshot steps.
	Snapshots *snapshot.Store

	// Evaluator, Positioner and Setter serve sweep steps. Setter is only
	// needed for sweeps with parameters, Positioner only for sweeps that
	// move an entity.
	Evaluator  sweep.Evaluator
	Positioner sweep.Positioner
	Setter     sweep.ParameterSetter
}

// Harness executes one scenario.
type Harness struct {
	opts   Options
	keys   xlink.KeyMap
	logger *slog.Logger
	result *Result
}

// Run executes a scenario with a background context.
func Run(scenario *Scenario, opts Options) (*Result, error) {
	return RunContext(context.Background(), scenario, opts)
}

// RunContext loads the scenario's table, applies each step in order and
// evaluates the assertions against the final set.
//
// A step that fails (bad predicate, unknown protein, write error) aborts
// the run with an error. Failed assertions do not: they are collected in
// Result.Errors and clear Result.Pass.
func RunContext(ctx context.Context, scenario *Scenario, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	h := &Harness{
		opts:   opts,
		logger: logger.With("scenario", scenario.Name),
		result: NewResult(),
	}

	st, err := h.load(scenario)
	if err != nil {
		return nil, err
	}
	h.result.addStep("load", "", st)
	h.logger.Debug("scenario loaded", "records", st.Len())

	for i, step := range scenario.Steps {
		next, detail, err := h.apply(ctx, st, step)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
		}
		st = next
		h.result.addStep(step.Op, detail, st)
		h.logger.Debug("step completed",
			"step", i+1,
			"op", step.Op,
			"records", st.Len(),
			"detail", detail,
		)
	}

	for _, msg := range EvaluateAssertions(st, scenario.Assertions) {
		h.result.AddError(msg)
	}
	return h.result, nil
}

func (h *Harness) load(scenario *Scenario) (*xlink.Store, error) {
	h.keys = xlink.DefaultKeyMap()
	if scenario.KeyMap != nil {
		h.keys = *scenario.KeyMap
	}
	if scenario.File != "" {
		return xlink.Open(h.keys, scenario.File)
	}
	st, err := xlink.Parse(h.keys, strings.NewReader(scenario.Data))
	if err != nil {
		return nil, fmt.Errorf("load inline data: %w", err)
	}
	return st, nil
}

// apply runs one step. Steps that derive a new set return it; steps that
// edit in place return st.
func (h *Harness) apply(ctx context.Context, st *xlink.Store, step Step) (*xlink.Store, string, error) {
	pred, err := xlink.ParseConditions(step.Where)
	if err != nil {
		return nil, "", err
	}

	switch step.Op {
	case OpFilter:
		out, err := st.Filter(pred)
		return out, "", err

	case OpSetValue:
		v, err := xlink.ToValue(step.Value)
		if err != nil {
			return nil, "", err
		}
		return st, "", st.SetValue(xlink.Key(step.Key), v, pred)

	case OpClone:
		return st, "", st.CloneProtein(step.From, step.To)

	case OpRename:
		return st, "", st.RenameProteins(step.Names)

	case OpOffset:
		return st, "", st.OffsetResidues(step.Protein, step.Offset)

	case OpDedupe:
		out, err := st.Dedupe()
		return out, "", err

	case OpExport:
		detail, err := h.export(st, pred, step)
		return st, detail, err

	case OpSnapshot:
		detail, err := h.snapshot(ctx, st, step.Name)
		return st, detail, err

	case OpSweep:
		if step.Sweep == nil {
			return nil, "", errors.New("sweep step has no sweep block")
		}
		if len(step.Sweep.Parameters) > 0 {
			detail, err := h.surface(ctx, st, step.Sweep)
			return st, detail, err
		}
		detail, err := h.sweep(ctx, st, step.Sweep)
		return st, detail, err

	case OpAppend:
		other, err := xlink.Open(h.keys, step.File)
		if err != nil {
			return nil, "", err
		}
		return st, fmt.Sprintf("appended=%d", other.Len()), st.Append(other)

	default:
		return nil, "", fmt.Errorf("unknown op %q", step.Op)
	}
}

func (h *Harness) export(st *xlink.Store, pred xlink.Predicate, step Step) (string, error) {
	included, excluded, err := st.Split(pred)
	if err != nil {
		return "", err
	}
	if step.Included != "" {
		if err := export.WriteFile(h.path(step.Included), included); err != nil {
			return "", err
		}
	}
	if step.Excluded != "" {
		if err := export.WriteFile(h.path(step.Excluded), excluded); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("included=%d excluded=%d", included.Len(), excluded.Len()), nil
}

func (h *Harness) snapshot(ctx context.Context, st *xlink.Store, name string) (string, error) {
	if h.opts.Snapshots == nil {
		return "", errors.New("no snapshot store configured")
	}
	info, err := h.opts.Snapshots.Save(ctx, name, st)
	if err != nil {
		return "", err
	}
	h.result.Snapshots = append(h.result.Snapshots, info)
	return "id=" + info.ID, nil
}

func (h *Harness) sweep(ctx context.Context, st *xlink.Store, cfg *SweepStep) (string, error) {
	if h.opts.Evaluator == nil || h.opts.Positioner == nil {
		return "", errors.New("sweep needs an evaluator and a positioner")
	}
	axis, err := sweep.ParseAxis(cfg.Axis)
	if err != nil {
		return "", err
	}
	steps, err := cfg.positions()
	if err != nil {
		return "", err
	}

	plan := sweep.Plan{
		Label:      cfg.Entity,
		Store:      st,
		Evaluator:  h.opts.Evaluator,
		Positioner: h.opts.Positioner,
		Entity:     cfg.Entity,
		Axis:       axis,
		Steps:      steps,
	}

	var series []sweep.Series
	if cfg.Parameter != "" {
		series, err = sweep.Grid(ctx, sweep.GridPlan{
			Plan:      plan,
			Setter:    h.opts.Setter,
			Parameter: cfg.Parameter,
			Values:    cfg.Values,
		})
	} else {
		var s sweep.Series
		s, err = sweep.Run(ctx, plan)
		series = []sweep.Series{s}
	}
	if err != nil {
		return "", err
	}
	h.result.Series = append(h.result.Series, series...)

	if cfg.Out != "" {
		if err := writeTSV(h.path(cfg.Out), series); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("series=%d points=%d", len(series), len(plan.Steps)), nil
}

// surface sweeps the step's two parameters against each other, after
// placing Entity at At when one is named.
func (h *Harness) surface(ctx context.Context, st *xlink.Store, cfg *SweepStep) (string, error) {
	if h.opts.Evaluator == nil {
		return "", errors.New("sweep needs an evaluator")
	}
	if err := validateSweep(cfg); err != nil {
		return "", err
	}
	if cfg.Entity != "" {
		if h.opts.Positioner == nil {
			return "", fmt.Errorf("placing %s needs a positioner", cfg.Entity)
		}
		var at [3]float64
		copy(at[:], cfg.At)
		if err := h.opts.Positioner.SetPosition(cfg.Entity, at[0], at[1], at[2]); err != nil {
			return "", fmt.Errorf("place %s: %w", cfg.Entity, err)
		}
	}

	params := make([]sweep.Parameter, len(cfg.Parameters))
	for i, p := range cfg.Parameters {
		values, err := p.values()
		if err != nil {
			return "", fmt.Errorf("parameter %s: %w", p.Name, err)
		}
		params[i] = sweep.Parameter{Name: p.Name, Values: values}
	}

	surface, err := sweep.ParameterGrid(ctx, sweep.ParameterPlan{
		Store:     st,
		Evaluator: h.opts.Evaluator,
		Setter:    h.opts.Setter,
		Outer:     params[0],
		Inner:     params[1],
	})
	if err != nil {
		return "", err
	}
	h.result.Surfaces = append(h.result.Surfaces, surface)

	if cfg.Out != "" {
		if err := writeSurfaceTSV(h.path(cfg.Out), surface); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("surface=%s,%s cells=%d", surface.Outer, surface.Inner, len(surface.Cells)), nil
}

// path resolves p against OutDir.
func (h *Harness) path(p string) string {
	if filepath.IsAbs(p) || h.opts.OutDir == "" {
		return p
	}
	return filepath.Join(h.opts.OutDir, p)
}
