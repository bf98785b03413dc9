// Package harness provides a conformance testing framework for the
// definition engine. Scenarios are YAML files that load builtin symbol
// specs, script a session (rule definitions, unsets, attribute and
// context changes), and assert on the resulting symbol table. Golden
// files capture canonical dumps of selected symbols for byte-exact
// regression comparison.
//
// Each scenario runs against a fresh table, so scenarios are
// order-independent and deterministic.
package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
// Scenarios validate definition semantics by executing a sequence of
// session steps and asserting on the resulting symbol table.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden
	// file when the scenario is run with golden comparison.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs lists directories of CUE builtin symbol specs to compile
	// and contribute before the steps run. Paths are relative to the
	// scenario file location.
	Specs []string `yaml:"specs,omitempty"`

	// Context is the initial current context. Defaults to Global`.
	Context string `yaml:"context,omitempty"`

	// Path is the initial context search path.
	// Defaults to [System`, Global`].
	Path []string `yaml:"path,omitempty"`

	// Steps is the scripted session.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final symbol table.
	Assertions []Assertion `yaml:"assertions"`

	// Dump lists symbol names whose definitions are written to the
	// golden file, in the given order. Names are resolved against the
	// final context settings.
	Dump []string `yaml:"dump,omitempty"`
}

// Step is a single session action. Exactly one field must be set.
type Step struct {
	// AddRule defines a rule; the engine classifies it by its pattern.
	AddRule *RuleStep `yaml:"add_rule,omitempty"`

	// Unset removes the rule matching the given pattern.
	Unset *UnsetStep `yaml:"unset,omitempty"`

	// SetAttributes replaces a symbol's attribute set.
	SetAttributes *AttributeStep `yaml:"set_attributes,omitempty"`

	// ClearAttributes removes attributes from a symbol.
	ClearAttributes *AttributeStep `yaml:"clear_attributes,omitempty"`

	// SetOwn assigns a symbol's own value.
	SetOwn *OwnStep `yaml:"set_own,omitempty"`

	// SetContext changes the current context.
	SetContext string `yaml:"set_context,omitempty"`

	// SetPath changes the context search path.
	SetPath []string `yaml:"set_path,omitempty"`

	// Reset clears a symbol's user-layer definition.
	Reset string `yaml:"reset,omitempty"`
}

// RuleStep defines a rule from a structural pattern and replacement.
type RuleStep struct {
	Pattern     ExprSpec `yaml:"pattern"`
	Replacement ExprSpec `yaml:"replacement"`

	// Symbol optionally names the symbol to file the rule under.
	// Defaults to the pattern's lookup name; up-value definitions
	// set it explicitly.
	Symbol string `yaml:"symbol,omitempty"`

	// Category optionally asserts where the rule was filed
	// ("own", "down", "sub", "up", "n"). "rejected" asserts the
	// pattern fit no category.
	Category string `yaml:"category,omitempty"`
}

// UnsetStep removes a rule by pattern.
type UnsetStep struct {
	Pattern ExprSpec `yaml:"pattern"`

	// Symbol optionally names the symbol to remove the rule from.
	// Defaults to the pattern's lookup name.
	Symbol string `yaml:"symbol,omitempty"`

	// Removed asserts whether a rule was actually deleted.
	Removed *bool `yaml:"removed,omitempty"`
}

// AttributeStep names a symbol and a list of attribute names.
type AttributeStep struct {
	Symbol     string   `yaml:"symbol"`
	Attributes []string `yaml:"attributes"`
}

// OwnStep assigns an own value to a symbol.
type OwnStep struct {
	Symbol string   `yaml:"symbol"`
	Value  ExprSpec `yaml:"value"`
}

// Assertion validates the final symbol table.
type Assertion struct {
	// Type specifies the assertion type:
	// - "resolve": Check a name resolves to a fully qualified name
	// - "counts": Check per-category rule counts for a symbol
	// - "attributes": Check a symbol carries the named attributes
	// - "options": Check a symbol's merged option keys
	// - "names": Check NamesMatching output for a wildcard pattern
	Type string `yaml:"type"`

	// Name is the input name (used by resolve).
	Name string `yaml:"name,omitempty"`

	// Full is the expected fully qualified name (used by resolve).
	Full string `yaml:"full,omitempty"`

	// Symbol names the symbol under test (counts, attributes, options).
	Symbol string `yaml:"symbol,omitempty"`

	// Counts maps category names ("own", "down", ...) to expected
	// rule-list lengths (used by counts). Unlisted categories are
	// expected empty.
	Counts map[string]int `yaml:"counts,omitempty"`

	// Attributes lists attribute names the symbol must carry
	// (used by attributes). Subset match.
	Attributes []string `yaml:"attributes,omitempty"`

	// Options lists option keys the merged definition must carry
	// (used by options). Subset match.
	Options []string `yaml:"options,omitempty"`

	// Pattern is a wildcard name pattern (used by names).
	Pattern string `yaml:"pattern,omitempty"`

	// Expect is the exact expected name list (used by names).
	Expect []string `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertResolve    = "resolve"
	AssertCounts     = "counts"
	AssertAttributes = "attributes"
	AssertOptions    = "options"
	AssertNames      = "names"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve spec paths relative to the scenario file.
	base := filepath.Dir(path)
	for i, specPath := range scenario.Specs {
		if !filepath.IsAbs(specPath) {
			scenario.Specs[i] = filepath.Join(base, specPath)
		}
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

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 && len(s.Assertions) == 0 {
		return fmt.Errorf("at least one step or assertion is required")
	}

	for _, specPath := range s.Specs {
		if _, err := os.Stat(specPath); os.IsNotExist(err) {
			return fmt.Errorf("spec directory not found: %s", specPath)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateStep checks that exactly one action is set.
func validateStep(index int, s *Step) error {
	n := 0
	if s.AddRule != nil {
		n++
	}
	if s.Unset != nil {
		n++
	}
	if s.SetAttributes != nil {
		n++
	}
	if s.ClearAttributes != nil {
		n++
	}
	if s.SetOwn != nil {
		n++
	}
	if s.SetContext != "" {
		n++
	}
	if len(s.SetPath) > 0 {
		n++
	}
	if s.Reset != "" {
		n++
	}
	if n != 1 {
		return fmt.Errorf("steps[%d]: exactly one action is required, got %d", index, n)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertResolve:
		if a.Name == "" || a.Full == "" {
			return fmt.Errorf("assertions[%d]: name and full are required for resolve", index)
		}
	case AssertCounts:
		if a.Symbol == "" {
			return fmt.Errorf("assertions[%d]: symbol is required for counts", index)
		}
	case AssertAttributes:
		if a.Symbol == "" || len(a.Attributes) == 0 {
			return fmt.Errorf("assertions[%d]: symbol and attributes are required for attributes", index)
		}
	case AssertOptions:
		if a.Symbol == "" || len(a.Options) == 0 {
			return fmt.Errorf("assertions[%d]: symbol and options are required for options", index)
		}
	case AssertNames:
		if a.Pattern == "" {
			return fmt.Errorf("assertions[%d]: pattern is required for names", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
