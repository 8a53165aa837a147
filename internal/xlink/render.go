package xlink

import (
	"bytes"
	"io"
	"strconv"
	"strings"
)

// Render writes one line per record, fields as key=value in a fixed order:
// role keys (protein1, protein2, residue1, residue2, unique_id, id_score)
// then extra columns in header order. Absent values are omitted. Text
// containing spaces, quotes or '=' is quoted.
func (s *Store) Render(w io.Writer) error {
	keys := s.Keys()
	var line bytes.Buffer
	for _, r := range s.records {
		line.Reset()
		first := true
		for _, k := range keys {
			v, ok := r[k]
			if !ok {
				continue
			}
			if !first {
				line.WriteByte(' ')
			}
			first = false
			line.WriteString(quoteField(string(k)))
			line.WriteByte('=')
			line.WriteString(quoteField(v.String()))
		}
		line.WriteByte('\n')
		if _, err := w.Write(line.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

// String renders the store as Render does.
func (s *Store) String() string {
	var sb strings.Builder
	_ = s.Render(&sb)
	return sb.String()
}

func quoteField(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\"=\n") {
		return strconv.Quote(s)
	}
	return s
}
