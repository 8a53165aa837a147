package sweep

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// WriteTSV writes one "label\tx\tscore" line per point, preceded by a
// header line.
func WriteTSV(w io.Writer, series ...Series) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("label\tx\tscore\n"); err != nil {
		return fmt.Errorf("write tsv: %w", err)
	}
	for _, s := range series {
		for _, p := range s.Points {
			line := s.Label + "\t" +
				strconv.FormatFloat(p.X, 'g', -1, 64) + "\t" +
				strconv.FormatFloat(p.Score, 'g', -1, 64) + "\n"
			if _, err := bw.WriteString(line); err != nil {
				return fmt.Errorf("write tsv: %w", err)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write tsv: %w", err)
	}
	return nil
}

// WriteSurfaceTSV writes one "outer\tinner\tscore" line per cell under a
// header naming the two parameters.
func WriteSurfaceTSV(w io.Writer, s Surface) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(s.Outer + "\t" + s.Inner + "\tscore\n"); err != nil {
		return fmt.Errorf("write tsv: %w", err)
	}
	for _, c := range s.Cells {
		line := strconv.FormatFloat(c.Outer, 'g', -1, 64) + "\t" +
			strconv.FormatFloat(c.Inner, 'g', -1, 64) + "\t" +
			strconv.FormatFloat(c.Score, 'g', -1, 64) + "\n"
		if _, err := bw.WriteString(line); err != nil {
			return fmt.Errorf("write tsv: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write tsv: %w", err)
	}
	return nil
}
