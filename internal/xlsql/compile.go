// Package xlsql compiles xlink predicates to parameterized SQLite WHERE
// fragments over a JSON "fields" column.
//
// Each Compare becomes
//
//	COALESCE(json_extract(fields, ?) <op> ?, 0)
//
// with the JSON path and the comparand passed as parameters, never
// interpolated. COALESCE makes an absent field compare false, so Not over
// an absent field is true, matching in-memory evaluation.
package xlsql

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/xldb/internal/xlink"
)

// Compiler translates predicates for one store layout.
type Compiler struct {
	// Column is the JSON column holding record fields. Defaults to "fields".
	Column string

	// Kinds maps each valid key to its scalar kind; comparands are coerced
	// to it. Keys absent from Kinds are rejected.
	Kinds map[xlink.Key]xlink.Kind
}

// NewCompiler returns a compiler for the keys of s.
func NewCompiler(s *xlink.Store) *Compiler {
	kinds := make(map[xlink.Key]xlink.Kind)
	for _, k := range s.Keys() {
		kinds[k] = k.Kind()
	}
	return &Compiler{Column: "fields", Kinds: kinds}
}

var sqlOps = map[xlink.Op]string{
	xlink.OpEq: "=",
	xlink.OpNe: "<>",
	xlink.OpLt: "<",
	xlink.OpLe: "<=",
	xlink.OpGt: ">",
	xlink.OpGe: ">=",
}

// Compile returns a WHERE fragment and its parameters. A nil predicate
// compiles to "1 = 1".
func (c *Compiler) Compile(p xlink.Predicate) (string, []any, error) {
	if p == nil {
		return "1 = 1", nil, nil
	}

	switch pred := p.(type) {
	case xlink.Compare:
		return c.compileCompare(pred)
	case *xlink.Compare:
		return c.compileCompare(*pred)
	case xlink.And:
		return c.compileJunction(pred.Predicates, " AND ", "1 = 1")
	case *xlink.And:
		return c.compileJunction(pred.Predicates, " AND ", "1 = 1")
	case xlink.Or:
		return c.compileJunction(pred.Predicates, " OR ", "1 = 0")
	case *xlink.Or:
		return c.compileJunction(pred.Predicates, " OR ", "1 = 0")
	case xlink.Not:
		return c.compileNot(pred.Predicate)
	case *xlink.Not:
		return c.compileNot(pred.Predicate)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (c *Compiler) compileCompare(cmp xlink.Compare) (string, []any, error) {
	kind, ok := c.Kinds[cmp.Key]
	if !ok {
		return "", nil, &xlink.ConfigurationError{Key: cmp.Key, Message: "unknown key"}
	}
	op, ok := sqlOps[cmp.Op]
	if !ok {
		return "", nil, &xlink.ConfigurationError{Key: cmp.Key, Message: fmt.Sprintf("unknown operator %d", int(cmp.Op))}
	}
	v, err := xlink.Coerce(kind, cmp.Value)
	if err != nil {
		return "", nil, &xlink.ConfigurationError{Key: cmp.Key, Message: fmt.Sprintf("comparand %v is not a valid %v: %v", cmp.Value, kind, err)}
	}

	column := c.Column
	if column == "" {
		column = "fields"
	}
	sql := fmt.Sprintf("COALESCE(json_extract(%s, ?) %s ?, 0)", column, op)
	return sql, []any{JSONPath(cmp.Key), Param(v)}, nil
}

func (c *Compiler) compileJunction(preds []xlink.Predicate, sep, empty string) (string, []any, error) {
	if len(preds) == 0 {
		return empty, nil, nil
	}
	parts := make([]string, 0, len(preds))
	var params []any
	for _, p := range preds {
		sql, ps, err := c.Compile(p)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, "("+sql+")")
		params = append(params, ps...)
	}
	return strings.Join(parts, sep), params, nil
}

func (c *Compiler) compileNot(p xlink.Predicate) (string, []any, error) {
	if p == nil {
		return "", nil, &xlink.ConfigurationError{Message: "not: missing predicate"}
	}
	sql, params, err := c.Compile(p)
	if err != nil {
		return "", nil, err
	}
	return "NOT (" + sql + ")", params, nil
}

// JSONPath returns the SQLite JSON path addressing key, quoting the label
// so keys with spaces or dots are addressed literally.
func JSONPath(k xlink.Key) string {
	label := strings.ReplaceAll(string(k), `"`, `\"`)
	return `$."` + label + `"`
}

// Param converts a value to its database/sql parameter form. Text is NFC
// normalized to match the stored fields.
func Param(v xlink.Value) any {
	switch val := v.(type) {
	case xlink.Int:
		return int64(val)
	case xlink.Float:
		return float64(val)
	default:
		return norm.NFC.String(v.String())
	}
}
