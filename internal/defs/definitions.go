package defs

import (
	"log/slog"
	"strings"

	"github.com/arbelos-lang/arbelos/internal/expr"
	"github.com/arbelos-lang/arbelos/internal/rules"
)

// Default resolution state for a fresh session.
const (
	DefaultContext = "Global`"
	SystemContext  = "System`"
)

// Definitions is the layered symbol table for one interpreter session.
//
// Three independent namespaces hold per-symbol Definition records:
// builtin (populated once at startup), plugin (populated when optional
// modules load), and user (mutated throughout the session). Lookups see
// a merged view, cached until any contributing namespace entry changes.
//
// The table is an explicit instance passed to every caller - the only
// process-wide state the core carries (current context, context path,
// logical clock) lives in its fields.
type Definitions struct {
	builtin map[string]*Definition
	plugin  map[string]*Definition
	user    map[string]*Definition

	// defCache caches merged Definitions keyed by the original,
	// possibly-unqualified input name.
	defCache map[string]*Definition

	// lookupCache caches name resolution keyed the same way. Entries are
	// written only together with a proxy registration, so targeted
	// invalidation always finds them.
	lookupCache map[string]string

	// proxy indexes cached names by their context-stripped short form,
	// enabling targeted eviction. Deliberately conservative: a short
	// name can map to cache entries from unrelated contexts, which get
	// evicted too. Over-eviction is harmless; under-eviction never
	// happens.
	proxy map[string]map[string]struct{}

	currentContext string
	contextPath    []string

	clock *Clock
}

// New creates an empty table with the default resolution state:
// current context "Global`", search path System` then Global`.
func New() *Definitions {
	return &Definitions{
		builtin:        map[string]*Definition{},
		plugin:         map[string]*Definition{},
		user:           map[string]*Definition{},
		defCache:       map[string]*Definition{},
		lookupCache:    map[string]string{},
		proxy:          map[string]map[string]struct{}{},
		currentContext: DefaultContext,
		contextPath:    []string{SystemContext, DefaultContext},
		clock:          NewClock(),
	}
}

// Clock returns the table's logical clock.
func (ds *Definitions) Clock() *Clock {
	return ds.clock
}

// Now returns the current logical-clock tick.
func (ds *Definitions) Now() int64 {
	return ds.clock.Current()
}

// HaveDefinition reports whether a Definition exists for name in any
// namespace, without auto-vivifying one.
func (ds *Definitions) HaveDefinition(name string) bool {
	return ds.GetDefinitionIfExists(name) != nil
}

// GetDefinition returns the merged Definition for name, resolving the
// name against the current context and search path. If no namespace
// holds an entry, a fresh empty Definition is created in the user
// namespace (unless the resolved name denotes a bare context) and
// returned.
func (ds *Definitions) GetDefinition(name string) *Definition {
	return ds.getDefinition(expr.Normalize(name), false)
}

// GetDefinitionIfExists is GetDefinition without auto-vivification:
// it returns nil when no namespace holds an entry.
func (ds *Definitions) GetDefinitionIfExists(name string) *Definition {
	return ds.getDefinition(expr.Normalize(name), true)
}

func (ds *Definitions) getDefinition(name string, onlyIfExists bool) *Definition {
	if cached, ok := ds.defCache[name]; ok {
		return cached
	}

	original := name
	full := ds.LookupName(name)

	user := ds.user[full]
	plugin := ds.plugin[full]
	builtin := ds.builtin[full]

	var def *Definition
	switch classifySources(user, plugin, builtin) {
	case sourceNone:
		// fall through to vivification below
	case sourceSingle:
		// Fast path: the sole entry is the result, no copy. Preserves
		// identity for unmodified builtins.
		def = firstSource(user, plugin, builtin)
	case sourceMultiple:
		def = mergeSources(full, user, plugin, builtin)
	}

	if def != nil {
		ds.proxyAdd(original)
		ds.defCache[original] = def
		ds.lookupCache[original] = full
		return def
	}
	if onlyIfExists {
		return nil
	}

	// Implicit declaration: first use of an unknown name creates it in
	// the user namespace. Bare contexts are never vivified.
	def = NewDefinition(full)
	if !strings.HasSuffix(full, expr.ContextMark) {
		slog.Debug("auto-vivifying symbol", "name", full)
		ds.user[full] = def
	}
	return def
}

// UserDefinition returns the user-namespace Definition for the fully
// qualified name, creating one if create is set. A freshly created
// record inherits attributes and the numeric hint from the builtin
// entry of the same name, so user mutations start from builtin state.
// Returns nil when absent and create is false.
func (ds *Definitions) UserDefinition(name string, create bool) *Definition {
	if existing := ds.user[name]; existing != nil {
		return existing
	}
	if !create {
		return nil
	}
	def := NewDefinition(name)
	if builtin := ds.builtin[name]; builtin != nil {
		def.Attributes = builtin.Attributes
		def.IsNumeric = builtin.IsNumeric
	}
	ds.user[name] = def
	// A new entry can change how related short names resolve.
	ds.Invalidate(name)
	return def
}

// userDefinitionFor resolves name and returns (creating if needed) its
// user-namespace record. All mutators funnel through here.
func (ds *Definitions) userDefinitionFor(name string) *Definition {
	return ds.UserDefinition(ds.LookupName(expr.Normalize(name)), true)
}

// markChanged stamps def with the next clock tick.
func (ds *Definitions) markChanged(def *Definition) {
	def.Changed = ds.clock.Next()
}

// AddRule classifies r against the symbol and inserts it into the
// user-namespace record. Reports false when the pattern fits no
// category.
func (ds *Definitions) AddRule(name string, r *rules.Rule) bool {
	def := ds.userDefinitionFor(name)
	ok := def.AddRule(r)
	ds.markChanged(def)
	ds.invalidateMerged(name)
	return ok
}

// AddRuleAt inserts r into an explicitly chosen category of the
// symbol's user-namespace record, bypassing classification.
func (ds *Definitions) AddRuleAt(name string, r *rules.Rule, cat rules.Category) {
	def := ds.userDefinitionFor(name)
	def.AddRuleAt(r, cat)
	ds.markChanged(def)
	ds.invalidateMerged(name)
}

// AddFormat inserts a format rule for one or more output forms. An
// empty form list targets the default bucket applying to all forms.
func (ds *Definitions) AddFormat(name string, r *rules.Rule, forms ...string) {
	def := ds.userDefinitionFor(name)
	if len(forms) == 0 {
		forms = []string{DefaultForm}
	}
	for _, form := range forms {
		def.AddFormat(r, form)
	}
	ds.markChanged(def)
	ds.invalidateMerged(name)
}

// AddNValue inserts r directly as an n-value.
func (ds *Definitions) AddNValue(name string, r *rules.Rule) {
	ds.AddRuleAt(name, r, rules.NValues)
}

// AddDefault inserts r directly as a default value.
func (ds *Definitions) AddDefault(name string, r *rules.Rule) {
	ds.AddRuleAt(name, r, rules.DefaultValues)
}

// AddMessage inserts r directly as a message.
func (ds *Definitions) AddMessage(name string, r *rules.Rule) {
	ds.AddRuleAt(name, r, rules.Messages)
}

// SetValues replaces a whole category of the symbol's user-namespace
// record.
func (ds *Definitions) SetValues(name string, cat rules.Category, list rules.List) {
	def := ds.userDefinitionFor(name)
	def.SetValues(cat, list)
	ds.markChanged(def)
	ds.invalidateMerged(name)
}

// SetAttribute sets the given attribute bits, keeping existing ones.
func (ds *Definitions) SetAttribute(name string, attr Attributes) {
	def := ds.userDefinitionFor(name)
	def.Attributes |= attr
	ds.markChanged(def)
	ds.invalidateMerged(name)
}

// SetAttributes replaces the attribute set wholesale.
func (ds *Definitions) SetAttributes(name string, attrs Attributes) {
	def := ds.userDefinitionFor(name)
	def.Attributes = attrs
	ds.markChanged(def)
	ds.invalidateMerged(name)
}

// ClearAttribute clears the given attribute bits.
func (ds *Definitions) ClearAttribute(name string, attr Attributes) {
	def := ds.userDefinitionFor(name)
	def.Attributes &^= attr
	ds.markChanged(def)
	ds.invalidateMerged(name)
}

// SetOptions replaces the symbol's option defaults.
func (ds *Definitions) SetOptions(name string, options map[string]expr.Expr) {
	def := ds.userDefinitionFor(name)
	def.Options = options
	ds.markChanged(def)
	ds.invalidateMerged(name)
}

// Unset removes the rule whose pattern matches pattern structurally.
// Reports false when the pattern classifies to no category or no such
// rule exists.
func (ds *Definitions) Unset(name string, pattern expr.Expr) bool {
	def := ds.userDefinitionFor(name)
	removed := def.RemoveRule(pattern)
	ds.markChanged(def)
	ds.invalidateMerged(name)
	return removed
}

// SetOwnValue binds the symbol to value: its own-values become a single
// rule rewriting the bare symbol.
func (ds *Definitions) SetOwnValue(name string, value expr.Expr) {
	full := ds.LookupName(expr.Normalize(name))
	ds.AddRule(full, rules.New(expr.Symbol(full), value))
	ds.Invalidate(full)
}

// OwnValue returns the replacement of the symbol's first own-value, or
// nil when it has none.
func (ds *Definitions) OwnValue(name string) expr.Expr {
	own := ds.GetDefinition(ds.LookupName(expr.Normalize(name))).Values(rules.OwnValues)
	if len(own) == 0 {
		return nil
	}
	return own[0].Replacement
}

// Category getters used by the evaluator's matcher. Each returns the
// merged, precedence-ordered view.

func (ds *Definitions) Attributes(name string) Attributes {
	return ds.GetDefinition(name).Attributes
}

func (ds *Definitions) OwnValues(name string) rules.List {
	return ds.GetDefinition(name).Values(rules.OwnValues)
}

func (ds *Definitions) DownValues(name string) rules.List {
	return ds.GetDefinition(name).Values(rules.DownValues)
}

func (ds *Definitions) SubValues(name string) rules.List {
	return ds.GetDefinition(name).Values(rules.SubValues)
}

func (ds *Definitions) UpValues(name string) rules.List {
	return ds.GetDefinition(name).Values(rules.UpValues)
}

func (ds *Definitions) NValues(name string) rules.List {
	return ds.GetDefinition(name).Values(rules.NValues)
}

func (ds *Definitions) DefaultValues(name string) rules.List {
	return ds.GetDefinition(name).Values(rules.DefaultValues)
}

func (ds *Definitions) MessageRules(name string) rules.List {
	return ds.GetDefinition(name).Values(rules.Messages)
}

// Formats returns the rules applying to the named output form,
// including the default bucket, sorted by precedence.
func (ds *Definitions) Formats(name, form string) rules.List {
	return ds.GetDefinition(name).FormatsFor(form)
}

// Options returns the merged option defaults for the symbol.
func (ds *Definitions) Options(name string) map[string]expr.Expr {
	return ds.GetDefinition(ds.LookupName(expr.Normalize(name))).Options
}

// ResetUserDefinition drops the symbol's user-namespace record,
// reverting it to its builtin/plugin state. Reports false when no user
// record existed.
func (ds *Definitions) ResetUserDefinition(name string) bool {
	full := ds.LookupName(expr.Normalize(name))
	if _, ok := ds.user[full]; !ok {
		return false
	}
	delete(ds.user, full)
	ds.Invalidate(full)
	return true
}

// ResetUserDefinitions drops the whole user namespace.
func (ds *Definitions) ResetUserDefinitions() {
	ds.user = map[string]*Definition{}
	ds.InvalidateAll()
}

// AddUserDefinition installs a complete Definition record under the
// resolved name in the user namespace.
func (ds *Definitions) AddUserDefinition(name string, def *Definition) {
	ds.markChanged(def)
	full := ds.LookupName(expr.Normalize(name))
	ds.user[full] = def
	ds.Invalidate(full)
}

// SetBuiltinDefinition installs a Definition in the builtin namespace.
// Builtin records are populated at startup (or restored from a
// snapshot) and treated as read-only afterward.
func (ds *Definitions) SetBuiltinDefinition(name string, def *Definition) {
	ds.builtin[expr.Normalize(name)] = def
	ds.Invalidate(name)
}

// SetPluginDefinition installs a Definition in the plugin namespace,
// read-only after module load.
func (ds *Definitions) SetPluginDefinition(name string, def *Definition) {
	ds.plugin[expr.Normalize(name)] = def
	ds.Invalidate(name)
}

// PromoteUserDefinitions moves every user-namespace record created
// during a module load into the builtin namespace, so loaded
// definitions are shared and survive session resets. A definition that
// escaped into the default user context is a fatal configuration error.
func (ds *Definitions) PromoteUserDefinitions() error {
	for name := range ds.user {
		if strings.HasPrefix(name, DefaultContext) {
			return &ContractError{
				Code:    ErrCodeNamespaceEscape,
				Message: "module load defined a symbol in the session context",
				Name:    name,
			}
		}
	}
	for name := range ds.user {
		ds.builtin[name] = ds.GetDefinition(name)
	}
	ds.user = map[string]*Definition{}
	ds.InvalidateAll()
	return nil
}

// UserDefinitions returns the user namespace mapping. Snapshot tooling
// reads it; callers must not mutate it directly.
func (ds *Definitions) UserDefinitions() map[string]*Definition {
	return ds.user
}

// BuiltinDefinitions returns the builtin namespace mapping. Snapshot
// tooling reads it; callers must not mutate it directly.
func (ds *Definitions) BuiltinDefinitions() map[string]*Definition {
	return ds.builtin
}

// SetUserDefinitions replaces the user namespace wholesale, e.g. when
// restoring an exported session snapshot. A nil map clears it.
func (ds *Definitions) SetUserDefinitions(user map[string]*Definition) {
	if user == nil {
		user = map[string]*Definition{}
	}
	ds.user = user
	ds.InvalidateAll()
}

// StaleSince reports whether any of the named symbols changed after the
// given clock tick. Symbols with no definition anywhere count as
// unchanged.
func (ds *Definitions) StaleSince(tick int64, names []string) bool {
	for _, name := range names {
		def := ds.GetDefinitionIfExists(name)
		if def != nil && def.Changed > tick {
			return true
		}
	}
	return false
}
