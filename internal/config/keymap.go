// Package config loads cross-link key maps from CUE or YAML files.
//
// Both formats nest the column names under a top-level keymap field:
//
//	keymap: {
//		protein1:  "Protein 1"
//		protein2:  "Protein 2"
//		residue1:  "Residue 1"
//		residue2:  "Residue 2"
//		unique_id: "UniqueID"
//		id_score:  "Score"
//	}
//
// CUE files are unified with a closed #KeyMap schema, so unknown fields and
// empty mandatory columns are rejected before decoding.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/xldb/internal/xlink"
)

// keyMapSchema constrains the keymap field of a CUE key map file.
const keyMapSchema = `
#KeyMap: {
	protein1:   string & !=""
	protein2:   string & !=""
	residue1:   string & !=""
	residue2:   string & !=""
	unique_id?: string
	id_score?:  string
}

keymap: #KeyMap
`

// LoadKeyMap reads a key map from path. The format is chosen by extension:
// .cue, .yaml or .yml. An empty path returns xlink.DefaultKeyMap().
func LoadKeyMap(path string) (xlink.KeyMap, error) {
	if path == "" {
		return xlink.DefaultKeyMap(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return xlink.KeyMap{}, fmt.Errorf("read key map: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return ParseCUE(path, data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return xlink.KeyMap{}, fmt.Errorf("key map %s: unsupported extension %q (want .cue, .yaml or .yml)", path, filepath.Ext(path))
	}
}

// ParseCUE compiles CUE source, validates it against the key map schema and
// decodes the keymap field. filename is used in error positions only.
func ParseCUE(filename string, src []byte) (xlink.KeyMap, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(keyMapSchema, cue.Filename("keymap-schema.cue"))
	if err := schema.Err(); err != nil {
		return xlink.KeyMap{}, fmt.Errorf("compile key map schema: %w", err)
	}

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return xlink.KeyMap{}, formatCUEError(err)
	}

	unified := schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return xlink.KeyMap{}, formatCUEError(err)
	}

	var km xlink.KeyMap
	if err := unified.LookupPath(cue.ParsePath("keymap")).Decode(&km); err != nil {
		return xlink.KeyMap{}, formatCUEError(err)
	}
	if err := km.Validate(); err != nil {
		return xlink.KeyMap{}, err
	}
	return km, nil
}

// yamlFile is the top-level shape of a YAML key map file.
type yamlFile struct {
	KeyMap *xlink.KeyMap `yaml:"keymap"`
}

// ParseYAML decodes a YAML key map. Unknown fields are rejected.
func ParseYAML(src []byte) (xlink.KeyMap, error) {
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)

	var f yamlFile
	if err := dec.Decode(&f); err != nil {
		return xlink.KeyMap{}, fmt.Errorf("parse key map yaml: %w", err)
	}
	if f.KeyMap == nil {
		return xlink.KeyMap{}, errors.New("parse key map yaml: missing keymap field")
	}
	if err := f.KeyMap.Validate(); err != nil {
		return xlink.KeyMap{}, err
	}
	return *f.KeyMap, nil
}

// formatCUEError flattens a CUE error list into one error with positions.
func formatCUEError(err error) error {
	return fmt.Errorf("key map: %s", strings.TrimSpace(cueerrors.Details(err, nil)))
}
