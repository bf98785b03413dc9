package defs

import (
	"github.com/arbelos-lang/arbelos/internal/rules"
)

// sourceCase tags which namespaces contribute to a lookup, making the
// no-copy fast path an explicit variant instead of an if chain.
type sourceCase uint8

const (
	sourceNone sourceCase = iota
	sourceSingle
	sourceMultiple
)

func classifySources(user, plugin, builtin *Definition) sourceCase {
	n := 0
	for _, d := range [...]*Definition{user, plugin, builtin} {
		if d != nil {
			n++
		}
	}
	switch n {
	case 0:
		return sourceNone
	case 1:
		return sourceSingle
	default:
		return sourceMultiple
	}
}

// firstSource returns the highest-priority non-nil source
// (user > plugin > builtin).
func firstSource(user, plugin, builtin *Definition) *Definition {
	switch {
	case user != nil:
		return user
	case plugin != nil:
		return plugin
	default:
		return builtin
	}
}

// mergeSources synthesizes the unified Definition for a symbol present
// in two or more namespaces. The result is a fresh record:
//
//   - attributes and the numeric hint come from the highest-priority
//     source (user > plugin > builtin);
//   - options fold in reverse priority order, so higher-priority keys
//     win on conflict;
//   - every rule-list category concatenates the sources' lists with
//     user rules first, each list keeping its internal order;
//   - format buckets merge per form name, the default bucket staying
//     separate from named forms;
//   - the builtin back-reference prefers the plugin's.
//
// The options fold reproduces the session semantics this engine has
// always had, even though clearing an unprotected builtin then asking
// for its options resurfaces the builtin defaults. Known compatibility
// caveat, kept deliberately.
func mergeSources(name string, user, plugin, builtin *Definition) *Definition {
	candidates := make([]*Definition, 0, 3)
	for _, d := range [...]*Definition{user, plugin, builtin} {
		if d != nil {
			candidates = append(candidates, d)
		}
	}

	merged := NewDefinition(name)
	primary := candidates[0]
	merged.Attributes = primary.Attributes
	merged.IsNumeric = primary.IsNumeric

	switch {
	case plugin != nil && plugin.Builtin != "":
		merged.Builtin = plugin.Builtin
	case builtin != nil:
		merged.Builtin = builtin.Builtin
	}

	merged.Formats[DefaultForm] = rules.List{}
	for i := len(candidates) - 1; i >= 0; i-- {
		source := candidates[i]
		for key, value := range source.Options {
			merged.Options[key] = value
		}
		for form, list := range source.Formats {
			merged.Formats[form] = append(merged.Formats[form], list...)
		}
	}

	for cat := 0; cat < rules.NumListCategories; cat++ {
		var combined rules.List
		for _, source := range candidates {
			combined = append(combined, source.lists[cat]...)
		}
		merged.lists[cat] = combined
	}

	// The merged view reports the most recent change of any source, so
	// staleness checks keep working for overridden builtins.
	for _, source := range candidates {
		if source.Changed > merged.Changed {
			merged.Changed = source.Changed
		}
	}

	return merged
}
