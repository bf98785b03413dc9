package defs

import (
	"regexp"
	"sort"
	"strings"

	"github.com/arbelos-lang/arbelos/internal/expr"
)

// BuiltinNames returns the sorted names of the builtin namespace.
func (ds *Definitions) BuiltinNames() []string {
	return sortedKeys(ds.builtin)
}

// PluginNames returns the sorted names of the plugin namespace.
func (ds *Definitions) PluginNames() []string {
	return sortedKeys(ds.plugin)
}

// UserNames returns the sorted names of the user namespace.
func (ds *Definitions) UserNames() []string {
	return sortedKeys(ds.user)
}

// Names returns the sorted union of all namespaces' symbol names.
func (ds *Definitions) Names() []string {
	seen := map[string]struct{}{}
	for _, ns := range []map[string]*Definition{ds.builtin, ds.plugin, ds.user} {
		for name := range ns {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedKeys(ns map[string]*Definition) []string {
	names := make([]string, 0, len(ns))
	for name := range ns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// namePatternChars validates a symbol-name wildcard pattern: symbol
// characters plus the context mark and the '*' and '@' wildcards.
var namePatternChars = regexp.MustCompile("^[@*a-zA-Z$`][@*a-zA-Z0-9$`]*$")

// NamesMatching returns the sorted symbol names matching a wildcard
// pattern. A pattern with a context mark matches context and short name
// separately; one without matches short names in the accessible
// contexts. '*' matches any run of symbol characters; '@' matches a
// nonempty run of non-uppercase characters. In the context part both
// wildcards also cross context marks. An unmatchable pattern yields
// nil.
func (ds *Definitions) NamesMatching(pattern string) []string {
	if !namePatternChars.MatchString(pattern) {
		return nil
	}

	var contextPattern, shortPattern string
	if strings.Contains(pattern, expr.ContextMark) {
		i := strings.LastIndex(pattern, expr.ContextMark)
		context, short := pattern[:i], pattern[i+1:]
		if context == "" {
			contextPattern = regexp.QuoteMeta(SystemContext)
		} else {
			contextPattern = strings.NewReplacer(
				"@", "[^A-Z`]+",
				"*", ".*",
				"$", `\$`,
			).Replace(context + expr.ContextMark)
		}
		shortPattern = short
	} else {
		quoted := make([]string, 0, 4)
		for _, context := range ds.AccessibleContexts() {
			quoted = append(quoted, regexp.QuoteMeta(context))
		}
		contextPattern = "(?:" + strings.Join(quoted, "|") + ")"
		shortPattern = pattern
	}

	shortPattern = strings.NewReplacer(
		"@", "[^A-Z]+",
		"*", "[^`]*",
		"$", `\$`,
	).Replace(shortPattern)

	re, err := regexp.Compile("^" + contextPattern + shortPattern + "$")
	if err != nil {
		return nil
	}

	var matches []string
	for _, name := range ds.Names() {
		if re.MatchString(name) {
			matches = append(matches, name)
		}
	}
	return matches
}
