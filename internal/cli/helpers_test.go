package cli

import (
	"bytes"
	"testing"

	"github.com/roach88/xldb/internal/testutil"
)

// execute runs the root command with args and returns stdout, stderr and
// the error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func basicCSV(t *testing.T) string {
	t.Helper()
	return testutil.WriteFile(t, "xlinks.csv", testutil.BasicTable)
}

func ambiguityCSV(t *testing.T) string {
	t.Helper()
	return testutil.WriteFile(t, "xlinks.csv", testutil.AmbiguityTable)
}
