package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/xldb/internal/xlink"
)

// AssertionError is returned when an assertion fails.
// It carries the final working set to help debug the failure.
type AssertionError struct {
	Type      string // Assertion type for categorization
	Expected  string // Human-readable expected outcome
	Actual    string // Human-readable actual outcome
	Rendering string // Final working set
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if e.Rendering != "" {
		fmt.Fprintf(&buf, "\nWorking set:\n")
		for _, line := range strings.SplitAfter(e.Rendering, "\n") {
			if line != "" {
				fmt.Fprintf(&buf, "  %s", line)
			}
		}
	}
	return buf.String()
}

func assertCount(st *xlink.Store, a Assertion) error {
	if st.Len() == a.Count {
		return nil
	}
	return &AssertionError{
		Type:      AssertCount,
		Expected:  fmt.Sprintf("%d records", a.Count),
		Actual:    fmt.Sprintf("%d records", st.Len()),
		Rendering: st.String(),
	}
}

func assertGroups(st *xlink.Store, a Assertion) error {
	groups, err := st.Groups()
	if err != nil {
		return err
	}
	if len(groups) == a.Count {
		return nil
	}
	ids := make([]string, len(groups))
	for i, g := range groups {
		ids[i] = fmt.Sprint(g.UniqueID)
	}
	return &AssertionError{
		Type:      AssertGroups,
		Expected:  fmt.Sprintf("%d groups", a.Count),
		Actual:    fmt.Sprintf("%d groups [%s]", len(groups), strings.Join(ids, " ")),
		Rendering: st.String(),
	}
}

// assertContains checks that at least one record matches every condition.
func assertContains(st *xlink.Store, a Assertion) error {
	pred, err := xlink.ParseConditions(a.Where)
	if err != nil {
		return err
	}
	matched, err := st.Filter(pred)
	if err != nil {
		return err
	}
	if matched.Len() > 0 {
		return nil
	}
	return &AssertionError{
		Type:      AssertContains,
		Expected:  fmt.Sprintf("a record matching %s", strings.Join(a.Where, " && ")),
		Actual:    "no match",
		Rendering: st.String(),
	}
}

func assertProteins(st *xlink.Store, a Assertion) error {
	want := slices.Sorted(slices.Values(a.Proteins))
	got := slices.Sorted(slices.Values(st.Proteins()))
	if slices.Equal(want, got) {
		return nil
	}
	return &AssertionError{
		Type:     AssertProteins,
		Expected: fmt.Sprintf("%v", want),
		Actual:   fmt.Sprintf("%v", got),
	}
}

// EvaluateAssertions evaluates all assertions against the final working
// set. Returns a slice of error messages for failed assertions.
func EvaluateAssertions(st *xlink.Store, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertCount:
			err = assertCount(st, assertion)
		case AssertGroups:
			err = assertGroups(st, assertion)
		case AssertContains:
			err = assertContains(st, assertion)
		case AssertProteins:
			err = assertProteins(st, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
