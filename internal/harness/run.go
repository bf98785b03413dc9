package harness

import (
	"fmt"
	"slices"

	"github.com/arbelos-lang/arbelos/internal/compiler"
	"github.com/arbelos-lang/arbelos/internal/defs"
	"github.com/arbelos-lang/arbelos/internal/expr"
	"github.com/arbelos-lang/arbelos/internal/rules"
)

// Result captures the outcome of a scenario run.
type Result struct {
	// Passed is true when every step expectation and assertion held.
	Passed bool

	// Failures lists human-readable descriptions of failed
	// expectations and assertions.
	Failures []string

	// Table is the final symbol table, exposed so callers can dump it
	// for golden comparison.
	Table *defs.Definitions
}

func (r *Result) fail(format string, args ...any) {
	r.Passed = false
	r.Failures = append(r.Failures, fmt.Sprintf(format, args...))
}

// Run executes a scenario against a fresh symbol table.
//
// Execution flow:
//  1. Create a fresh table
//  2. Compile and contribute the scenario's builtin specs
//  3. Apply the initial context settings
//  4. Execute steps, checking inline expectations
//  5. Evaluate assertions against the final table
//
// Run returns an error only for setup failures (unloadable specs,
// malformed expressions, invalid contexts); semantic mismatches are
// reported through the result.
func Run(scenario *Scenario) (*Result, error) {
	ds := defs.New()

	for _, dir := range scenario.Specs {
		loaded, err := compiler.LoadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("loading specs from %s: %w", dir, err)
		}
		if err := compiler.Contribute(ds, loaded.Symbols); err != nil {
			return nil, fmt.Errorf("contributing specs from %s: %w", dir, err)
		}
	}

	if scenario.Context != "" {
		if err := ds.SetCurrentContext(scenario.Context); err != nil {
			return nil, fmt.Errorf("initial context: %w", err)
		}
	}
	if len(scenario.Path) > 0 {
		if err := ds.SetContextPath(scenario.Path); err != nil {
			return nil, fmt.Errorf("initial context path: %w", err)
		}
	}

	result := &Result{Passed: true, Table: ds}

	for i, step := range scenario.Steps {
		if err := runStep(ds, i, &step, result); err != nil {
			return nil, err
		}
	}

	for i, assertion := range scenario.Assertions {
		checkAssertion(ds, i, &assertion, result)
	}

	return result, nil
}

func runStep(ds *defs.Definitions, index int, step *Step, result *Result) error {
	switch {
	case step.AddRule != nil:
		return runAddRule(ds, index, step.AddRule, result)

	case step.Unset != nil:
		return runUnset(ds, index, step.Unset, result)

	case step.SetAttributes != nil:
		attrs, err := parseAttributes(step.SetAttributes.Attributes)
		if err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
		ds.SetAttributes(ds.LookupName(step.SetAttributes.Symbol), attrs)

	case step.ClearAttributes != nil:
		attrs, err := parseAttributes(step.ClearAttributes.Attributes)
		if err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
		ds.ClearAttribute(ds.LookupName(step.ClearAttributes.Symbol), attrs)

	case step.SetOwn != nil:
		name := ds.LookupName(step.SetOwn.Symbol)
		value, err := step.SetOwn.Value.Build(ds)
		if err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
		ds.SetOwnValue(name, value)

	case step.SetContext != "":
		if err := ds.SetCurrentContext(step.SetContext); err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}

	case len(step.SetPath) > 0:
		if err := ds.SetContextPath(step.SetPath); err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}

	case step.Reset != "":
		ds.ResetUserDefinition(ds.LookupName(step.Reset))
	}
	return nil
}

func runAddRule(ds *defs.Definitions, index int, rs *RuleStep, result *Result) error {
	pattern, err := rs.Pattern.Build(ds)
	if err != nil {
		return fmt.Errorf("steps[%d].add_rule: %w", index, err)
	}
	replacement, err := rs.Replacement.Build(ds)
	if err != nil {
		return fmt.Errorf("steps[%d].add_rule: %w", index, err)
	}

	name := rs.Symbol
	if name == "" {
		name = pattern.LookupName()
	} else {
		name = ds.LookupName(name)
	}

	cat, fits := rules.Classify(pattern, name)
	added := ds.AddRule(name, rules.New(pattern, replacement))

	if rs.Category != "" {
		switch {
		case rs.Category == "rejected":
			if added {
				result.fail("steps[%d].add_rule: expected %s to fit no category, filed under %s",
					index, pattern, cat)
			}
		case !added || !fits:
			result.fail("steps[%d].add_rule: expected category %s, pattern %s fit nothing",
				index, rs.Category, pattern)
		case cat.String() != rs.Category:
			result.fail("steps[%d].add_rule: expected category %s, got %s",
				index, rs.Category, cat)
		}
	}
	return nil
}

func runUnset(ds *defs.Definitions, index int, us *UnsetStep, result *Result) error {
	pattern, err := us.Pattern.Build(ds)
	if err != nil {
		return fmt.Errorf("steps[%d].unset: %w", index, err)
	}

	name := us.Symbol
	if name == "" {
		name = pattern.LookupName()
	} else {
		name = ds.LookupName(name)
	}

	removed := ds.Unset(name, pattern)
	if us.Removed != nil && removed != *us.Removed {
		result.fail("steps[%d].unset: expected removed=%t for %s, got %t",
			index, *us.Removed, pattern, removed)
	}
	return nil
}

func parseAttributes(names []string) (defs.Attributes, error) {
	var attrs defs.Attributes
	for _, name := range names {
		a, ok := defs.AttributeByName(name)
		if !ok {
			return 0, fmt.Errorf("unknown attribute %q", name)
		}
		attrs |= a
	}
	return attrs, nil
}

func checkAssertion(ds *defs.Definitions, index int, a *Assertion, result *Result) {
	switch a.Type {
	case AssertResolve:
		full := ds.LookupName(a.Name)
		if full != expr.Normalize(a.Full) {
			result.fail("assertions[%d]: %s resolved to %s, want %s", index, a.Name, full, a.Full)
		}

	case AssertCounts:
		name := ds.LookupName(a.Symbol)
		got := map[string]int{
			rules.OwnValues.String():     len(ds.OwnValues(name)),
			rules.DownValues.String():    len(ds.DownValues(name)),
			rules.SubValues.String():     len(ds.SubValues(name)),
			rules.UpValues.String():      len(ds.UpValues(name)),
			rules.NValues.String():       len(ds.NValues(name)),
			rules.DefaultValues.String(): len(ds.DefaultValues(name)),
			rules.Messages.String():      len(ds.MessageRules(name)),
		}
		for cat, n := range got {
			if n != a.Counts[cat] {
				result.fail("assertions[%d]: %s has %d %s rules, want %d",
					index, name, n, cat, a.Counts[cat])
			}
		}

	case AssertAttributes:
		name := ds.LookupName(a.Symbol)
		attrs := ds.Attributes(name)
		for _, attrName := range a.Attributes {
			want, ok := defs.AttributeByName(attrName)
			if !ok {
				result.fail("assertions[%d]: unknown attribute %q", index, attrName)
				continue
			}
			if !attrs.Has(want) {
				result.fail("assertions[%d]: %s is missing attribute %s", index, name, attrName)
			}
		}

	case AssertOptions:
		name := ds.LookupName(a.Symbol)
		options := ds.Options(name)
		for _, key := range a.Options {
			if _, ok := options[expr.Normalize(key)]; !ok {
				result.fail("assertions[%d]: %s is missing option %s", index, name, key)
			}
		}

	case AssertNames:
		got := ds.NamesMatching(a.Pattern)
		if !slices.Equal(got, a.Expect) {
			result.fail("assertions[%d]: names matching %q = %v, want %v",
				index, a.Pattern, got, a.Expect)
		}
	}
}
