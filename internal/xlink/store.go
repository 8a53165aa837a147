package xlink

import (
	"iter"
	"slices"
)

// Store is an ordered collection of cross-link records sharing one KeyMap.
type Store struct {
	keys    KeyMap
	extras  []Key // non-role columns, header order
	records []Record
	loaded  bool
}

// NewStore returns an unloaded store for km. The KeyMap is validated here so
// a missing mandatory role fails before any input is read.
func NewStore(km KeyMap) (*Store, error) {
	if err := km.Validate(); err != nil {
		return nil, err
	}
	return &Store{keys: km}, nil
}

// FromRecords builds a loaded store from records already keyed by logical
// key. Records are copied. Every record must carry the mandatory roles and
// values of the right kind; extras lists the non-role keys in order.
func FromRecords(km KeyMap, extras []Key, records []Record) (*Store, error) {
	s, err := NewStore(km)
	if err != nil {
		return nil, err
	}
	s.extras = slices.Clone(extras)
	s.records = make([]Record, 0, len(records))
	for i, r := range records {
		for _, k := range roleKeys[:4] {
			if _, ok := r[k]; !ok {
				return nil, &ParseError{Row: i + 1, Key: k, Message: "missing mandatory value"}
			}
		}
		for k, v := range r {
			kind, err := s.kindOf(k)
			if err != nil {
				return nil, err
			}
			if v == nil || v.Kind() != kind {
				return nil, &ParseError{Row: i + 1, Key: k, Message: "value has wrong kind, want " + kind.String()}
			}
		}
		s.records = append(s.records, r.Clone())
	}
	s.loaded = true
	return s, nil
}

// KeyMap returns the store's key configuration.
func (s *Store) KeyMap() KeyMap {
	return s.keys
}

// Loaded reports whether the store holds a parsed table.
func (s *Store) Loaded() bool {
	return s.loaded
}

// Keys returns the configured role keys followed by extra columns.
func (s *Store) Keys() []Key {
	return append(s.keys.Roles(), s.extras...)
}

// Extras returns the non-role column keys in header order.
func (s *Store) Extras() []Key {
	return slices.Clone(s.extras)
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// At returns a copy of the i-th record.
func (s *Store) At(i int) Record {
	return s.records[i].Clone()
}

// Records returns copies of all records in order.
func (s *Store) Records() []Record {
	out := make([]Record, len(s.records))
	for i, r := range s.records {
		out[i] = r.Clone()
	}
	return out
}

// All iterates over copies of the records with their positions.
func (s *Store) All() iter.Seq2[int, Record] {
	return func(yield func(int, Record) bool) {
		for i, r := range s.records {
			if !yield(i, r.Clone()) {
				return
			}
		}
	}
}

// Filter returns a new store holding exactly the records that satisfy every
// predicate, in their original order. The parent store is not modified.
func (s *Store) Filter(preds ...Predicate) (*Store, error) {
	if err := s.requireLoaded(); err != nil {
		return nil, err
	}
	m, err := s.bindAnd(preds)
	if err != nil {
		return nil, err
	}

	out := s.empty()
	for _, r := range s.records {
		if m(r) {
			out.records = append(out.records, r.Clone())
		}
	}
	return out, nil
}

// Split partitions the store into records that satisfy pred and those that
// do not. Both results are new stores.
func (s *Store) Split(pred Predicate) (included, excluded *Store, err error) {
	if err := s.requireLoaded(); err != nil {
		return nil, nil, err
	}
	m, err := s.bind(pred)
	if err != nil {
		return nil, nil, err
	}

	included, excluded = s.empty(), s.empty()
	for _, r := range s.records {
		if m(r) {
			included.records = append(included.records, r.Clone())
		} else {
			excluded.records = append(excluded.records, r.Clone())
		}
	}
	return included, excluded, nil
}

// SetValue overwrites key with value on every record satisfying pred. A nil
// predicate selects every record. value is coerced to the key's kind.
func (s *Store) SetValue(key Key, value Value, pred Predicate) error {
	if err := s.requireLoaded(); err != nil {
		return err
	}
	kind, err := s.kindOf(key)
	if err != nil {
		return err
	}
	v, err := Coerce(kind, value)
	if err != nil {
		return configErr(key, "value %v is not a valid %v: %v", value, kind, err)
	}
	m, err := s.bind(pred)
	if err != nil {
		return err
	}

	for _, r := range s.records {
		if m(r) {
			r[key] = v
		}
	}
	return nil
}

// CloneProtein appends, for every record naming oldName in protein1 or
// protein2, a copy with those fields renamed to newName. Originals are left
// untouched and every other field, unique id included, is preserved. A
// self-link on oldName is cloned once with both ends renamed.
func (s *Store) CloneProtein(oldName, newName string) error {
	if err := s.requireLoaded(); err != nil {
		return err
	}

	var clones []Record
	for _, r := range s.records {
		p1, p2 := r.Protein1() == oldName, r.Protein2() == oldName
		if !p1 && !p2 {
			continue
		}
		c := r.Clone()
		if p1 {
			c[KeyProtein1] = String(newName)
		}
		if p2 {
			c[KeyProtein2] = String(newName)
		}
		clones = append(clones, c)
	}
	if len(clones) == 0 {
		return &LookupError{Name: oldName, Message: "protein not found"}
	}

	s.records = append(s.records, clones...)
	return nil
}

// RenameProteins renames proteins in place on both ends of every record.
// Names absent from the mapping are kept.
func (s *Store) RenameProteins(names map[string]string) error {
	if err := s.requireLoaded(); err != nil {
		return err
	}
	for _, r := range s.records {
		for _, k := range []Key{KeyProtein1, KeyProtein2} {
			if to, ok := names[r[k].String()]; ok {
				r[k] = String(to)
			}
		}
	}
	return nil
}

// OffsetResidues shifts the residue index of every end that lies on protein.
func (s *Store) OffsetResidues(protein string, offset int64) error {
	if err := s.requireLoaded(); err != nil {
		return err
	}
	found := false
	for _, r := range s.records {
		if r.Protein1() == protein {
			r[KeyResidue1] = Int(r.Residue1() + offset)
			found = true
		}
		if r.Protein2() == protein {
			r[KeyResidue2] = Int(r.Residue2() + offset)
			found = true
		}
	}
	if !found {
		return &LookupError{Name: protein, Message: "protein not found"}
	}
	return nil
}

// Append adds copies of other's records to the end of s. Both stores must
// share the same KeyMap; other's extra columns are added to s if missing.
func (s *Store) Append(other *Store) error {
	if err := s.requireLoaded(); err != nil {
		return err
	}
	if err := other.requireLoaded(); err != nil {
		return err
	}
	if s.keys != other.keys {
		return configErr("", "cannot append store with a different key map")
	}
	for _, k := range other.extras {
		if !slices.Contains(s.extras, k) {
			s.extras = append(s.extras, k)
		}
	}
	for _, r := range other.records {
		s.records = append(s.records, r.Clone())
	}
	return nil
}

// Dedupe returns a new store without records whose identity already
// appeared earlier in the store.
func (s *Store) Dedupe() (*Store, error) {
	if err := s.requireLoaded(); err != nil {
		return nil, err
	}
	out := s.empty()
	seen := make(map[string]bool, len(s.records))
	for _, r := range s.records {
		id := r.Identity()
		if seen[id] {
			continue
		}
		seen[id] = true
		out.records = append(out.records, r.Clone())
	}
	return out, nil
}

// Proteins returns the distinct protein names in order of first appearance.
func (s *Store) Proteins() []string {
	var names []string
	seen := make(map[string]bool)
	for _, r := range s.records {
		for _, p := range []string{r.Protein1(), r.Protein2()} {
			if !seen[p] {
				seen[p] = true
				names = append(names, p)
			}
		}
	}
	return names
}

// empty returns a loaded store with the same configuration and no records.
func (s *Store) empty() *Store {
	return &Store{keys: s.keys, extras: slices.Clone(s.extras), loaded: true}
}

func (s *Store) requireLoaded() error {
	if !s.loaded {
		return configErr("", "store not loaded")
	}
	return nil
}

// kindOf resolves a key against the store: configured roles have fixed
// kinds, extra columns are strings, anything else is a configuration error.
func (s *Store) kindOf(k Key) (Kind, error) {
	if k.IsRole() {
		if !s.keys.Has(k) {
			return 0, configErr(k, "role not configured in key map")
		}
		return k.Kind(), nil
	}
	if slices.Contains(s.extras, k) {
		return KindString, nil
	}
	return 0, configErr(k, "unknown key")
}
