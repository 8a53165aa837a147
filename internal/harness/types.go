package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/xldb/internal/snapshot"
	"github.com/roach88/xldb/internal/sweep"
	"github.com/roach88/xldb/internal/xlink"
)

// StepResult records the working set after one step. Index 0 is the load.
type StepResult struct {
	Index     int    `json:"index"`
	Op        string `json:"op"`
	Records   int    `json:"records"`
	Detail    string `json:"detail,omitempty"`
	Rendering string `json:"rendering"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Steps holds the load followed by one entry per step, in order.
	Steps []StepResult `json:"steps"`

	// Errors contains assertion failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Series holds the output of sweep steps in order.
	Series []sweep.Series `json:"series,omitempty"`

	// Surfaces holds the output of parameter sweeps in order.
	Surfaces []sweep.Surface `json:"surfaces,omitempty"`

	// Snapshots describes the snapshots saved by snapshot steps.
	Snapshots []snapshot.Info `json:"snapshots,omitempty"`

	// Store is the final working set.
	Store *xlink.Store `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Steps:  []StepResult{},
		Errors: []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// addStep records the working set after a step.
func (r *Result) addStep(op, detail string, s *xlink.Store) {
	r.Steps = append(r.Steps, StepResult{
		Index:     len(r.Steps),
		Op:        op,
		Records:   s.Len(),
		Detail:    detail,
		Rendering: s.String(),
	})
	r.Store = s
}

// Transcript renders every step as a header line followed by the working
// set, for golden comparison.
func (r *Result) Transcript() string {
	var sb strings.Builder
	for _, st := range r.Steps {
		fmt.Fprintf(&sb, "== [%d] %s records=%d", st.Index, st.Op, st.Records)
		if st.Detail != "" {
			sb.WriteString(" " + st.Detail)
		}
		sb.WriteByte('\n')
		sb.WriteString(st.Rendering)
	}
	return sb.String()
}
