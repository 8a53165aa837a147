package xlink

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Parse creates a store for km and loads it from r.
func Parse(km KeyMap, r io.Reader) (*Store, error) {
	s, err := NewStore(km)
	if err != nil {
		return nil, err
	}
	if err := s.Load(r); err != nil {
		return nil, err
	}
	return s, nil
}

// Open creates a store for km and loads it from the file at path.
func Open(km KeyMap, path string) (*Store, error) {
	s, err := NewStore(km)
	if err != nil {
		return nil, err
	}
	if err := s.LoadFile(path); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadFile loads the store from the file at path. The file is closed before
// returning, including on parse failure.
func (s *Store) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	defer f.Close()

	if err := s.Load(f); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load parses a comma-delimited table from r. The first row names the
// columns; each following row becomes one record, in input order.
//
// Loading is all-or-nothing: on any error the store remains unloaded.
func (s *Store) Load(r io.Reader) error {
	if s.loaded {
		return configErr("", "store already loaded")
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &ParseError{Row: 1, Message: "missing header row"}
	}
	if err != nil {
		return csvParseError(err)
	}

	cols, extras, err := s.layout(header)
	if err != nil {
		return err
	}

	var records []Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return csvParseError(err)
		}
		line, _ := cr.FieldPos(0)

		rec, err := s.parseRow(line, row, cols)
		if err != nil {
			return err
		}
		records = append(records, rec)
	}

	s.extras = extras
	s.records = records
	s.loaded = true
	return nil
}

// column binds one input column position to a logical key.
type column struct {
	index int
	key   Key
	kind  Kind
}

// layout maps header positions to keys. Every configured role must be
// present; remaining columns become extra string keys.
func (s *Store) layout(header []string) ([]column, []Key, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, dup := positions[name]; dup {
			return nil, nil, &ParseError{Row: 1, Key: Key(name), Message: "duplicate column"}
		}
		positions[name] = i
	}

	var cols []column
	used := make(map[int]bool)
	for _, k := range s.keys.Roles() {
		name := s.keys.Column(k)
		idx, ok := positions[name]
		if !ok {
			return nil, nil, &ParseError{Row: 1, Key: k, Message: fmt.Sprintf("column %q not found in header", name)}
		}
		cols = append(cols, column{index: idx, key: k, kind: k.Kind()})
		used[idx] = true
	}

	var extras []Key
	for i, name := range header {
		if used[i] {
			continue
		}
		k := Key(strings.TrimSpace(name))
		if k.IsRole() {
			return nil, nil, &ParseError{Row: 1, Key: k, Message: "extra column shadows a role key"}
		}
		cols = append(cols, column{index: i, key: k, kind: KindString})
		extras = append(extras, k)
	}
	return cols, extras, nil
}

func (s *Store) parseRow(line int, row []string, cols []column) (Record, error) {
	rec := make(Record, len(cols))
	for _, c := range cols {
		raw := strings.TrimSpace(row[c.index])
		if raw == "" {
			if c.key.IsRole() && mandatory(c.key) {
				return nil, &ParseError{Row: line, Key: c.key, Message: "missing mandatory value"}
			}
			continue
		}
		v, err := ParseValue(c.kind, raw)
		if err != nil {
			return nil, &ParseError{Row: line, Key: c.key, Message: fmt.Sprintf("%q is not a valid %v", raw, c.kind), Err: err}
		}
		rec[c.key] = v
	}
	return rec, nil
}

func mandatory(k Key) bool {
	switch k {
	case KeyProtein1, KeyProtein2, KeyResidue1, KeyResidue2:
		return true
	}
	return false
}

// csvParseError converts an encoding/csv error (wrong field count, bad
// quoting) to a ParseError carrying its line.
func csvParseError(err error) error {
	var ce *csv.ParseError
	if errors.As(err, &ce) {
		return &ParseError{Row: ce.Line, Message: "malformed row", Err: ce.Err}
	}
	return &ParseError{Message: "read failed", Err: err}
}
