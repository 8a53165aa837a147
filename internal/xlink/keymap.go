package xlink

// Key is a logical field name. Role keys are fixed; any other input column is
// an extra key named by its header text.
type Key string

// Role keys.
const (
	KeyProtein1 Key = "protein1"
	KeyProtein2 Key = "protein2"
	KeyResidue1 Key = "residue1"
	KeyResidue2 Key = "residue2"
	KeyUniqueID Key = "unique_id"
	KeyIDScore  Key = "id_score"
)

// roleKeys lists role keys in their fixed rendering order.
var roleKeys = []Key{KeyProtein1, KeyProtein2, KeyResidue1, KeyResidue2, KeyUniqueID, KeyIDScore}

// IsRole reports whether k is one of the six role keys.
func (k Key) IsRole() bool {
	for _, r := range roleKeys {
		if r == k {
			return true
		}
	}
	return false
}

// Kind returns the scalar kind values of k are stored with. Role keys have
// fixed kinds; extra columns are strings.
func (k Key) Kind() Kind {
	switch k {
	case KeyResidue1, KeyResidue2, KeyUniqueID:
		return KindInt
	case KeyIDScore:
		return KindFloat
	default:
		return KindString
	}
}

// KeyMap names the input columns that carry each role.
// Protein1, Protein2, Residue1 and Residue2 are mandatory.
type KeyMap struct {
	Protein1 string `json:"protein1" yaml:"protein1"`
	Protein2 string `json:"protein2" yaml:"protein2"`
	Residue1 string `json:"residue1" yaml:"residue1"`
	Residue2 string `json:"residue2" yaml:"residue2"`
	UniqueID string `json:"unique_id,omitempty" yaml:"unique_id,omitempty"`
	IDScore  string `json:"id_score,omitempty" yaml:"id_score,omitempty"`
}

// DefaultKeyMap returns the column names used by the conventional
// "Protein 1,Protein 2,Residue 1,Residue 2,UniqueID,Score" layout.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Protein1: "Protein 1",
		Protein2: "Protein 2",
		Residue1: "Residue 1",
		Residue2: "Residue 2",
		UniqueID: "UniqueID",
		IDScore:  "Score",
	}
}

// Column returns the column configured for a role key, or "" if the role is
// not configured.
func (m KeyMap) Column(k Key) string {
	switch k {
	case KeyProtein1:
		return m.Protein1
	case KeyProtein2:
		return m.Protein2
	case KeyResidue1:
		return m.Residue1
	case KeyResidue2:
		return m.Residue2
	case KeyUniqueID:
		return m.UniqueID
	case KeyIDScore:
		return m.IDScore
	default:
		return ""
	}
}

// Has reports whether a role key is configured.
func (m KeyMap) Has(k Key) bool {
	return m.Column(k) != ""
}

// Roles returns the configured role keys in rendering order.
func (m KeyMap) Roles() []Key {
	var keys []Key
	for _, k := range roleKeys {
		if m.Has(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// Validate checks that every mandatory role has a column and that no column
// is assigned to two roles.
func (m KeyMap) Validate() error {
	for _, k := range roleKeys[:4] {
		if m.Column(k) == "" {
			return configErr(k, "mandatory role has no column")
		}
	}
	seen := make(map[string]Key)
	for _, k := range m.Roles() {
		col := m.Column(k)
		if prev, ok := seen[col]; ok {
			return configErr(k, "column %q already assigned to %s", col, prev)
		}
		seen[col] = k
	}
	return nil
}
