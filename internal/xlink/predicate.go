package xlink

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Predicate is a sealed interface for filter conditions.
//
// Predicate types:
//   - Compare: key <op> value
//   - And: all predicates hold (empty = always true)
//   - Or: at least one predicate holds (empty = never true)
//   - Not: the predicate does not hold
type Predicate interface {
	predicateNode() // Sealed
}

// Op is a comparison operator.
type Op int

const (
	OpEq Op = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

// opTable maps each operator to its test on a three-way comparison result.
var opTable = map[Op]func(c int) bool{
	OpEq: func(c int) bool { return c == 0 },
	OpNe: func(c int) bool { return c != 0 },
	OpLt: func(c int) bool { return c < 0 },
	OpLe: func(c int) bool { return c <= 0 },
	OpGt: func(c int) bool { return c > 0 },
	OpGe: func(c int) bool { return c >= 0 },
}

var opSymbols = map[Op]string{
	OpEq: "==",
	OpNe: "!=",
	OpLt: "<",
	OpLe: "<=",
	OpGt: ">",
	OpGe: ">=",
}

var opNames = map[string]Op{
	"==": OpEq, "=": OpEq, "eq": OpEq,
	"!=": OpNe, "ne": OpNe,
	"<": OpLt, "lt": OpLt,
	"<=": OpLe, "le": OpLe,
	">": OpGt, "gt": OpGt,
	">=": OpGe, "ge": OpGe,
}

func (o Op) String() string {
	if s, ok := opSymbols[o]; ok {
		return s
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// ParseOp accepts a symbol ("==", "<=") or a mnemonic ("eq", "le").
func ParseOp(s string) (Op, error) {
	if op, ok := opNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return op, nil
	}
	return 0, fmt.Errorf("unknown operator %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (o Op) MarshalText() ([]byte, error) {
	if _, ok := opSymbols[o]; !ok {
		return nil, fmt.Errorf("unknown operator %d", int(o))
	}
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Op) UnmarshalText(text []byte) error {
	op, err := ParseOp(string(text))
	if err != nil {
		return err
	}
	*o = op
	return nil
}

// Compare holds when the record's value at Key compares to Value under Op.
// Value is coerced to the key's kind before comparison. A record with no
// value at Key never satisfies a Compare.
type Compare struct {
	Key   Key
	Op    Op
	Value Value
}

func (Compare) predicateNode() {}

func (c Compare) String() string {
	return fmt.Sprintf("%s%s%s", c.Key, c.Op, c.Value)
}

// And holds when every predicate holds.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or holds when any predicate holds.
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

// Not inverts a predicate.
type Not struct {
	Predicate Predicate
}

func (Not) predicateNode() {}

// Where builds a Compare from a plain Go comparand (string, int, int64,
// float64, bool or an existing Value). Any other comparand, nil included,
// leaves Value nil, and binding the Compare then fails with a
// ConfigurationError.
func Where(key Key, op Op, value any) Compare {
	v, err := ToValue(value)
	if err != nil {
		v = nil
	}
	return Compare{Key: key, Op: op, Value: v}
}

// AllOf combines predicates with And.
func AllOf(preds ...Predicate) Predicate {
	return And{Predicates: preds}
}

// ParseCondition parses "key<op>value", e.g. "unique_id==2" or
// "protein1 != ProtA". The value side is kept as text and coerced when the
// condition is bound to a store.
func ParseCondition(text string) (Compare, error) {
	for i := 0; i < len(text); i++ {
		if !strings.ContainsRune("=!<>", rune(text[i])) {
			continue
		}
		width := 1
		if i+1 < len(text) && text[i+1] == '=' {
			width = 2
		}
		op, err := ParseOp(text[i : i+width])
		if err != nil {
			return Compare{}, fmt.Errorf("condition %q: %w", text, err)
		}
		key := strings.TrimSpace(text[:i])
		if key == "" {
			return Compare{}, fmt.Errorf("condition %q: missing key", text)
		}
		value := strings.TrimSpace(text[i+width:])
		return Compare{Key: Key(key), Op: op, Value: String(value)}, nil
	}
	return Compare{}, fmt.Errorf("condition %q: no comparison operator", text)
}

// ParseConditions parses each condition with ParseCondition and ANDs them.
// No conditions yields a nil predicate, which matches every record.
func ParseConditions(conds []string) (Predicate, error) {
	if len(conds) == 0 {
		return nil, nil
	}
	preds := make([]Predicate, 0, len(conds))
	for _, c := range conds {
		cmp, err := ParseCondition(c)
		if err != nil {
			return nil, err
		}
		preds = append(preds, cmp)
	}
	if len(preds) == 1 {
		return preds[0], nil
	}
	return AllOf(preds...), nil
}

// matcher is a predicate bound to a store: keys checked, comparands coerced.
type matcher func(Record) bool

// bind validates p against the store's keys and returns its evaluator.
// A nil predicate matches everything.
func (s *Store) bind(p Predicate) (matcher, error) {
	if p == nil {
		return func(Record) bool { return true }, nil
	}

	switch pred := p.(type) {
	case Compare:
		return s.bindCompare(pred)
	case *Compare:
		return s.bindCompare(*pred)
	case And:
		return s.bindAnd(pred.Predicates)
	case *And:
		return s.bindAnd(pred.Predicates)
	case Or:
		return s.bindOr(pred.Predicates)
	case *Or:
		return s.bindOr(pred.Predicates)
	case Not:
		return s.bindNot(pred.Predicate)
	case *Not:
		return s.bindNot(pred.Predicate)
	default:
		return nil, configErr("", "unsupported predicate type %T", p)
	}
}

func (s *Store) bindCompare(c Compare) (matcher, error) {
	kind, err := s.kindOf(c.Key)
	if err != nil {
		return nil, err
	}
	test, ok := opTable[c.Op]
	if !ok {
		return nil, configErr(c.Key, "unknown operator %d", int(c.Op))
	}
	want, err := Coerce(kind, c.Value)
	if err != nil {
		return nil, configErr(c.Key, "comparand %v is not a valid %v: %v", c.Value, kind, err)
	}
	key := c.Key
	if kind == KindString {
		// Text compares in NFC, the form snapshots store.
		want = String(norm.NFC.String(want.String()))
		return func(r Record) bool {
			got, ok := r[key]
			if !ok {
				return false
			}
			return test(strings.Compare(norm.NFC.String(got.String()), want.String()))
		}, nil
	}
	return func(r Record) bool {
		got, ok := r[key]
		if !ok {
			return false
		}
		return test(compareValues(got, want))
	}, nil
}

func (s *Store) bindAnd(preds []Predicate) (matcher, error) {
	ms, err := s.bindAll(preds)
	if err != nil {
		return nil, err
	}
	return func(r Record) bool {
		for _, m := range ms {
			if !m(r) {
				return false
			}
		}
		return true
	}, nil
}

func (s *Store) bindOr(preds []Predicate) (matcher, error) {
	ms, err := s.bindAll(preds)
	if err != nil {
		return nil, err
	}
	return func(r Record) bool {
		for _, m := range ms {
			if m(r) {
				return true
			}
		}
		return false
	}, nil
}

func (s *Store) bindNot(p Predicate) (matcher, error) {
	if p == nil {
		return nil, configErr("", "not: missing predicate")
	}
	m, err := s.bind(p)
	if err != nil {
		return nil, err
	}
	return func(r Record) bool { return !m(r) }, nil
}

func (s *Store) bindAll(preds []Predicate) ([]matcher, error) {
	ms := make([]matcher, 0, len(preds))
	for _, p := range preds {
		m, err := s.bind(p)
		if err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}
	return ms, nil
}
