package xlink

import (
	"crypto/sha256"
	"encoding/hex"
	"maps"
)

// DomainRecord prefixes record identity hashes.
const DomainRecord = "xldb/record/v1"

// Record is one parsed row: logical key to scalar value.
// Absent optional values have no entry.
type Record map[Key]Value

// Get returns the value stored at key.
func (r Record) Get(key Key) (Value, bool) {
	v, ok := r[key]
	return v, ok
}

// Protein1 returns the first protein name.
func (r Record) Protein1() string { return r.str(KeyProtein1) }

// Protein2 returns the second protein name.
func (r Record) Protein2() string { return r.str(KeyProtein2) }

// Residue1 returns the first residue index.
func (r Record) Residue1() int64 { return r.int(KeyResidue1) }

// Residue2 returns the second residue index.
func (r Record) Residue2() int64 { return r.int(KeyResidue2) }

// UniqueID returns the unique id and whether one is present.
func (r Record) UniqueID() (int64, bool) {
	v, ok := r[KeyUniqueID].(Int)
	return int64(v), ok
}

// Score returns the identification score and whether one is present.
func (r Record) Score() (float64, bool) {
	v, ok := r[KeyIDScore].(Float)
	return float64(v), ok
}

// IsSelfLink reports whether both ends are on the same protein.
func (r Record) IsSelfLink() bool {
	return r.Protein1() == r.Protein2()
}

// Clone returns an independent copy. Values are immutable scalars.
func (r Record) Clone() Record {
	return maps.Clone(r)
}

// Equal reports whether two records hold the same keys and values.
func (r Record) Equal(o Record) bool {
	return maps.Equal(r, o)
}

// Identity returns the content-addressed identity of the record: SHA-256
// over domain + 0x00 + canonical JSON of all fields.
// Records with equal fields have equal identities.
func (r Record) Identity() string {
	data := marshalCanonicalRecord(r)
	h := sha256.New()
	h.Write([]byte(DomainRecord))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CanonicalJSON returns the record as a JSON object with keys in UTF-16
// order, NFC-normalized strings and numbers in their String form.
func (r Record) CanonicalJSON() []byte {
	return marshalCanonicalRecord(r)
}

func (r Record) str(k Key) string {
	if v, ok := r[k]; ok {
		return v.String()
	}
	return ""
}

func (r Record) int(k Key) int64 {
	v, _ := r[k].(Int)
	return int64(v)
}
