package defs

import (
	"strings"

	"github.com/arbelos-lang/arbelos/internal/expr"
)

// CurrentContext returns the context new symbols are declared in.
func (ds *Definitions) CurrentContext() string {
	return ds.currentContext
}

// ContextPath returns the context search path. Callers must not mutate
// the returned slice.
func (ds *Definitions) ContextPath() []string {
	return ds.contextPath
}

// SetCurrentContext changes the context new symbols are declared in.
// The value is mirrored into the System`$Context own-value so the
// session can read it back like any symbol. Resolution of every cached
// name may change, so all caches are dropped.
//
// A malformed context name is a contract violation and aborts the
// operation.
func (ds *Definitions) SetCurrentContext(context string) error {
	context = expr.Normalize(context)
	if !expr.IsContext(context) {
		return badContext(ErrCodeBadContext, context)
	}
	ds.SetOwnValue("System`$Context", expr.String(context))
	ds.currentContext = context
	ds.InvalidateAll()
	return nil
}

// SetContextPath replaces the context search path. Mirrored into the
// System`$ContextPath own-value. Drops all caches, as with
// SetCurrentContext.
func (ds *Definitions) SetContextPath(path []string) error {
	normalized := make([]string, len(path))
	for i, context := range path {
		context = expr.Normalize(context)
		if !expr.IsContext(context) {
			return badContext(ErrCodeBadContextPath, context)
		}
		normalized[i] = context
	}
	elements := make([]expr.Expr, len(normalized))
	for i, context := range normalized {
		elements[i] = expr.String(context)
	}
	ds.SetOwnValue("System`$ContextPath", expr.Apply("System`List", elements...))
	ds.contextPath = normalized
	ds.InvalidateAll()
	return nil
}

// LookupName resolves a symbol name to its fully qualified form:
//
//   - A fully qualified name is returned unchanged.
//   - A name starting with the context mark is relative to the current
//     context: "`x" resolves to current_context + "x".
//   - A name containing a context mark elsewhere is already scoped and
//     returned unchanged.
//   - A bare short name resolves to the first context - current context
//     first, then each search-path entry in order - in which the symbol
//     already exists; if none, to the current context, implicitly
//     declaring a new symbol there on first use.
//
// Results are served from the resolved-name cache when present. The
// cache is only written by GetDefinition together with the reverse
// index registration, so targeted invalidation can always find its
// entries.
func (ds *Definitions) LookupName(name string) string {
	if cached, ok := ds.lookupCache[name]; ok {
		return cached
	}

	if expr.IsQualified(name) {
		return name
	}

	current := ds.currentContext
	if strings.Contains(name, expr.ContextMark) {
		if strings.HasPrefix(name, expr.ContextMark) {
			return current + strings.TrimLeft(name, expr.ContextMark)
		}
		return name
	}

	withContext := current + name
	if ds.HaveDefinition(withContext) {
		return withContext
	}
	for _, context := range ds.contextPath {
		candidate := context + name
		if ds.HaveDefinition(candidate) {
			return candidate
		}
	}
	return withContext
}

// Shorten returns the shortest form of a qualified name that still
// resolves to it with the current context and search path: the short
// name when the symbol's context is the current context or on the
// path, otherwise the full name.
func (ds *Definitions) Shorten(name string) string {
	if !strings.Contains(name, expr.ContextMark) {
		return name
	}
	inContext := func(name, context string) bool {
		return strings.HasPrefix(name, context) &&
			!strings.Contains(name[len(context):], expr.ContextMark)
	}
	if inContext(name, ds.currentContext) {
		return name[len(ds.currentContext):]
	}
	for _, context := range ds.contextPath {
		if inContext(name, context) {
			return name[len(context):]
		}
	}
	return name
}

// AccessibleContexts returns the contexts reachable through the current
// context or the search path.
func (ds *Definitions) AccessibleContexts() []string {
	seen := map[string]struct{}{ds.currentContext: {}}
	for _, context := range ds.contextPath {
		seen[context] = struct{}{}
	}
	contexts := make([]string, 0, len(seen))
	for context := range seen {
		contexts = append(contexts, context)
	}
	return contexts
}
