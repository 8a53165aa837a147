package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/xldb/internal/sweep"
	"github.com/roach88/xldb/internal/xlink"
)

// Scenario defines a scripted workflow over one cross-link table.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario demonstrates.
	Description string `yaml:"description"`

	// KeyMap names the table's role columns. Nil means the default layout.
	KeyMap *xlink.KeyMap `yaml:"keymap,omitempty"`

	// Data is the table inline. Exactly one of Data and File is set.
	Data string `yaml:"data,omitempty"`

	// File is a path to the table, relative to the scenario file.
	File string `yaml:"file,omitempty"`

	// Steps are applied to the working set in order.
	Steps []Step `yaml:"steps"`

	// Assertions are checked against the final working set.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one operation on the working set. Op selects which of the other
// fields apply.
type Step struct {
	Op string `yaml:"op"`

	// Where conditions ("key<op>value") are ANDed. Used by filter,
	// set_value, export and the contains assertion.
	Where []string `yaml:"where,omitempty"`

	// Key and Value are the assignment of set_value.
	Key   string `yaml:"key,omitempty"`
	Value any    `yaml:"value,omitempty"`

	// From and To are the protein names of clone.
	From string `yaml:"from,omitempty"`
	To   string `yaml:"to,omitempty"`

	// Names maps old to new protein names for rename.
	Names map[string]string `yaml:"names,omitempty"`

	// Protein and Offset configure offset.
	Protein string `yaml:"protein,omitempty"`
	Offset  int64  `yaml:"offset,omitempty"`

	// Included and Excluded are the output paths of export, relative to
	// Options.OutDir. Either may be empty.
	Included string `yaml:"included,omitempty"`
	Excluded string `yaml:"excluded,omitempty"`

	// Name labels a snapshot.
	Name string `yaml:"name,omitempty"`

	// File is the table merged by append, read with the scenario's key map.
	// LoadScenario resolves it against the scenario's directory.
	File string `yaml:"file,omitempty"`

	// Sweep configures a sweep step.
	Sweep *SweepStep `yaml:"sweep,omitempty"`
}

// SweepStep moves Entity along Axis from Start to Stop (exclusive) by
// Step, or through the Linspace points. With Parameter set, the sweep
// repeats once per value of Values.
//
// With Parameters set instead, the two parameters are swept against each
// other and Entity, if named, is placed once at At.
type SweepStep struct {
	Entity    string        `yaml:"entity,omitempty"`
	Axis      string        `yaml:"axis,omitempty"`
	Start     float64       `yaml:"start"`
	Stop      float64       `yaml:"stop"`
	Step      float64       `yaml:"step"`
	Linspace  *LinspaceSpec `yaml:"linspace,omitempty"`
	Parameter string        `yaml:"parameter,omitempty"`
	Values    []float64     `yaml:"values,omitempty"`

	Parameters []ParameterSpec `yaml:"parameters,omitempty"`
	At         []float64       `yaml:"at,omitempty"`

	// Out is an optional TSV output path, relative to Options.OutDir.
	Out string `yaml:"out,omitempty"`
}

// LinspaceSpec is n evenly spaced values from Start to Stop inclusive.
type LinspaceSpec struct {
	Start float64 `yaml:"start"`
	Stop  float64 `yaml:"stop"`
	N     int     `yaml:"n"`
}

func (l *LinspaceSpec) values() ([]float64, error) {
	return sweep.Linspace(l.Start, l.Stop, l.N)
}

// ParameterSpec is one axis of a parameter sweep. Exactly one of Values
// and Linspace is set.
type ParameterSpec struct {
	Name     string        `yaml:"name"`
	Values   []float64     `yaml:"values,omitempty"`
	Linspace *LinspaceSpec `yaml:"linspace,omitempty"`
}

func (p ParameterSpec) values() ([]float64, error) {
	switch {
	case p.Linspace != nil && len(p.Values) > 0:
		return nil, fmt.Errorf("values and linspace are mutually exclusive")
	case p.Linspace != nil:
		return p.Linspace.values()
	case len(p.Values) == 0:
		return nil, fmt.Errorf("values or linspace is required")
	}
	return p.Values, nil
}

// positions returns the points a positional sweep visits.
func (s *SweepStep) positions() ([]float64, error) {
	switch {
	case s.Linspace != nil && s.Step != 0:
		return nil, fmt.Errorf("step and linspace are mutually exclusive")
	case s.Linspace != nil:
		return s.Linspace.values()
	case s.Step == 0:
		return nil, fmt.Errorf("step must be non-zero")
	}
	return sweep.Range(s.Start, s.Stop, s.Step)
}

// Step operation names.
const (
	OpFilter   = "filter"
	OpSetValue = "set_value"
	OpClone    = "clone"
	OpRename   = "rename"
	OpOffset   = "offset"
	OpDedupe   = "dedupe"
	OpExport   = "export"
	OpSnapshot = "snapshot"
	OpSweep    = "sweep"
	OpAppend   = "append"
)

// Assertion validates the final working set.
type Assertion struct {
	// Type is one of count, groups, contains or proteins.
	Type string `yaml:"type"`

	// Count is the expected size for count and groups.
	Count int `yaml:"count,omitempty"`

	// Where holds the conditions of contains.
	Where []string `yaml:"where,omitempty"`

	// Proteins is the expected sorted protein list for proteins.
	Proteins []string `yaml:"proteins,omitempty"`
}

// Assertion type constants.
const (
	AssertCount    = "count"
	AssertGroups   = "groups"
	AssertContains = "contains"
	AssertProteins = "proteins"
)

// LoadScenario reads and parses a scenario YAML file. Relative File paths,
// of the scenario and of append steps, are resolved against the scenario's
// directory. Unknown fields are rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.File != "" && !filepath.IsAbs(scenario.File) {
		scenario.File = filepath.Join(filepath.Dir(path), scenario.File)
	}
	for i := range scenario.Steps {
		st := &scenario.Steps[i]
		if st.File != "" && !filepath.IsAbs(st.File) {
			st.File = filepath.Join(filepath.Dir(path), st.File)
		}
	}
	return scenario, nil
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	switch {
	case s.Data == "" && s.File == "":
		return fmt.Errorf("one of data or file is required")
	case s.Data != "" && s.File != "":
		return fmt.Errorf("data and file are mutually exclusive")
	}

	if s.KeyMap != nil {
		if err := s.KeyMap.Validate(); err != nil {
			return fmt.Errorf("keymap: %w", err)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, st *Step) error {
	switch st.Op {
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	case OpFilter:
		if len(st.Where) == 0 {
			return fmt.Errorf("steps[%d]: where is required for filter", index)
		}
	case OpSetValue:
		if st.Key == "" {
			return fmt.Errorf("steps[%d]: key is required for set_value", index)
		}
		if st.Value == nil {
			return fmt.Errorf("steps[%d]: value is required for set_value", index)
		}
	case OpClone:
		if st.From == "" || st.To == "" {
			return fmt.Errorf("steps[%d]: from and to are required for clone", index)
		}
	case OpRename:
		if len(st.Names) == 0 {
			return fmt.Errorf("steps[%d]: names is required for rename", index)
		}
	case OpOffset:
		if st.Protein == "" {
			return fmt.Errorf("steps[%d]: protein is required for offset", index)
		}
	case OpDedupe:
	case OpExport:
		if st.Included == "" && st.Excluded == "" {
			return fmt.Errorf("steps[%d]: included or excluded is required for export", index)
		}
	case OpSnapshot:
		if st.Name == "" {
			return fmt.Errorf("steps[%d]: name is required for snapshot", index)
		}
	case OpSweep:
		if st.Sweep == nil {
			return fmt.Errorf("steps[%d]: sweep is required for sweep", index)
		}
		if err := validateSweep(st.Sweep); err != nil {
			return fmt.Errorf("steps[%d]: sweep: %w", index, err)
		}
	case OpAppend:
		if st.File == "" {
			return fmt.Errorf("steps[%d]: file is required for append", index)
		}
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, st.Op)
	}
	return nil
}

// validateSweep checks the sweep's shape and that its value lists can be
// generated. Errors name the offending field.
func validateSweep(cfg *SweepStep) error {
	if len(cfg.Parameters) == 0 {
		if cfg.Entity == "" {
			return fmt.Errorf("entity is required")
		}
		if len(cfg.At) > 0 {
			return fmt.Errorf("at only applies with parameters")
		}
		_, err := cfg.positions()
		return err
	}

	if len(cfg.Parameters) != 2 {
		return fmt.Errorf("parameters: need exactly 2, got %d", len(cfg.Parameters))
	}
	if cfg.Parameter != "" || cfg.Step != 0 || cfg.Linspace != nil {
		return fmt.Errorf("parameters: excludes parameter, step and linspace")
	}
	if len(cfg.At) != 0 && len(cfg.At) != 3 {
		return fmt.Errorf("at: need 3 coordinates, got %d", len(cfg.At))
	}
	if len(cfg.At) > 0 && cfg.Entity == "" {
		return fmt.Errorf("at: entity is required")
	}
	for i, p := range cfg.Parameters {
		if p.Name == "" {
			return fmt.Errorf("parameters[%d]: name is required", i)
		}
		if _, err := p.values(); err != nil {
			return fmt.Errorf("parameters[%d]: %w", i, err)
		}
	}
	if cfg.Parameters[0].Name == cfg.Parameters[1].Name {
		return fmt.Errorf("parameters: %s is listed twice", cfg.Parameters[0].Name)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertCount, AssertGroups:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertContains:
		if len(a.Where) == 0 {
			return fmt.Errorf("assertions[%d]: where is required for contains", index)
		}
	case AssertProteins:
		if a.Proteins == nil {
			return fmt.Errorf("assertions[%d]: proteins list is required for proteins", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
