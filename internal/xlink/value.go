package xlink

import (
	"cmp"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is a sealed interface for the scalar values a Record can hold.
// Only String, Int and Float implement it.
type Value interface {
	xlValue() // Sealed
	Kind() Kind
	String() string
}

// Kind identifies the scalar type of a Value or of a key.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// String is a free-text value (protein names, extra columns).
type String string

func (String) xlValue()         {}
func (String) Kind() Kind       { return KindString }
func (s String) String() string { return string(s) }

// Int is an integer value (residue indices, unique ids).
type Int int64

func (Int) xlValue()         {}
func (Int) Kind() Kind       { return KindInt }
func (n Int) String() string { return strconv.FormatInt(int64(n), 10) }

// Float is a floating point value (identification scores).
type Float float64

func (Float) xlValue()   {}
func (Float) Kind() Kind { return KindFloat }

// String formats the float so that integral values keep a decimal point
// ("1.0", not "1").
func (f Float) String() string {
	v := float64(f)
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return s
	}
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// ParseValue coerces raw text to a Value of the given kind.
func ParseValue(kind Kind, raw string) (Value, error) {
	raw = strings.TrimSpace(raw)
	switch kind {
	case KindString:
		return String(raw), nil
	case KindInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		return Int(n), nil
	case KindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, err
		}
		return Float(f), nil
	default:
		return nil, fmt.Errorf("unknown kind %v", kind)
	}
}

// Coerce converts v to the given kind. Strings are parsed; integers widen to
// floats; floats narrow to integers only when integral. Numbers become
// strings through their text form.
func Coerce(kind Kind, v Value) (Value, error) {
	if v == nil {
		return nil, fmt.Errorf("nil value")
	}
	if v.Kind() == kind {
		return v, nil
	}
	switch val := v.(type) {
	case String:
		return ParseValue(kind, string(val))
	case Int:
		switch kind {
		case KindFloat:
			return Float(val), nil
		case KindString:
			return String(val.String()), nil
		}
	case Float:
		switch kind {
		case KindInt:
			if math.Trunc(float64(val)) != float64(val) {
				return nil, fmt.Errorf("%s is not integral", val)
			}
			return Int(int64(val)), nil
		case KindString:
			return String(val.String()), nil
		}
	}
	return nil, fmt.Errorf("cannot convert %T to %v", v, kind)
}

// compareValues orders two values of the same kind; numeric kinds compare
// numerically, strings byte-wise.
func compareValues(a, b Value) int {
	switch av := a.(type) {
	case Int:
		switch bv := b.(type) {
		case Int:
			return cmp.Compare(av, bv)
		case Float:
			return cmp.Compare(float64(av), float64(bv))
		}
	case Float:
		switch bv := b.(type) {
		case Float:
			return cmp.Compare(av, bv)
		case Int:
			return cmp.Compare(float64(av), float64(bv))
		}
	}
	return strings.Compare(a.String(), b.String())
}

// ToValue converts a plain Go value (as decoded from YAML or JSON) to a Value.
func ToValue(v any) (Value, error) {
	switch val := v.(type) {
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case float64:
		return Float(val), nil
	case bool:
		return String(strconv.FormatBool(val)), nil
	case nil:
		return nil, fmt.Errorf("null is not a cross-link value")
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}
