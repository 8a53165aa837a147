package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/xldb/internal/xlink"
)

// encodeRecord returns the fields column for r.
func encodeRecord(r xlink.Record) (string, error) {
	data := r.CanonicalJSON()
	if !json.Valid(data) {
		// Non-finite floats have no JSON form.
		return "", fmt.Errorf("record %s is not representable as JSON", r.Identity()[:12])
	}
	return string(data), nil
}

// decodeRecord rebuilds a record from its fields column. Each value is
// parsed with the kind of its key.
func decodeRecord(fields string) (xlink.Record, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(fields)))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}

	r := make(xlink.Record, len(raw))
	for name, v := range raw {
		key := xlink.Key(name)
		var text string
		switch val := v.(type) {
		case string:
			text = val
		case json.Number:
			text = val.String()
		default:
			return nil, fmt.Errorf("decode fields: key %s: unexpected %T", name, v)
		}
		value, err := xlink.ParseValue(key.Kind(), text)
		if err != nil {
			return nil, fmt.Errorf("decode fields: key %s: %w", name, err)
		}
		r[key] = value
	}
	return r, nil
}

func encodeInfo(st *xlink.Store) (keymap, extras string, err error) {
	km, err := json.Marshal(st.KeyMap())
	if err != nil {
		return "", "", fmt.Errorf("encode keymap: %w", err)
	}
	ex := st.Extras()
	if ex == nil {
		ex = []xlink.Key{}
	}
	exJSON, err := json.Marshal(ex)
	if err != nil {
		return "", "", fmt.Errorf("encode extras: %w", err)
	}
	return string(km), string(exJSON), nil
}

func decodeInfo(info *Info, keymap, extras string) error {
	if err := json.Unmarshal([]byte(keymap), &info.KeyMap); err != nil {
		return fmt.Errorf("decode keymap: %w", err)
	}
	if err := json.Unmarshal([]byte(extras), &info.Extras); err != nil {
		return fmt.Errorf("decode extras: %w", err)
	}
	return nil
}
