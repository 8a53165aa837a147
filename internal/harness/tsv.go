package harness

import (
	"fmt"
	"io"
	"os"

	"github.com/roach88/xldb/internal/sweep"
)

func writeTSV(path string, series []sweep.Series) error {
	return createFile(path, func(w io.Writer) error { return sweep.WriteTSV(w, series...) })
}

func writeSurfaceTSV(path string, s sweep.Surface) error {
	return createFile(path, func(w io.Writer) error { return sweep.WriteSurfaceTSV(w, s) })
}

func createFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("write %s: %w", path, closeErr)
		}
	}()
	return write(f)
}
