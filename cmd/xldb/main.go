// Command xldb loads, filters, edits and persists cross-link tables.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/xldb/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
