package defs

import (
	"fmt"
	"sort"

	"github.com/arbelos-lang/arbelos/internal/expr"
	"github.com/arbelos-lang/arbelos/internal/rules"
)

// DefaultForm is the key of the unnamed format bucket. Rules added
// there apply to every output form.
const DefaultForm = ""

// Definition bundles everything the evaluator needs to know about one
// symbol in one namespace: the eight rule-list categories, the
// attribute bit set, option defaults, and the numeric hint.
//
// A Definition is owned by exactly one namespace. Merged views
// combining several namespaces are synthesized fresh by the table and
// never mutated in place.
type Definition struct {
	// Name is the fully qualified symbol name.
	Name string

	// lists holds the flat categories (own/down/sub/up/n/default/
	// messages), indexed by rules.Category.
	lists [rules.NumListCategories]rules.List

	// Formats maps an output form name to its rule list. The DefaultForm
	// bucket applies to all forms.
	Formats map[string]rules.List

	// Attributes is the evaluator-visible flag set.
	Attributes Attributes

	// Options maps option-symbol names to their default values.
	Options map[string]expr.Expr

	// IsNumeric hints that the symbol evaluates numerically.
	IsNumeric bool

	// Builtin identifies the originating builtin implementation, if any.
	// Identity only - behavior stays with the builtin layer.
	Builtin string

	// Changed is the logical-clock tick of the last mutation, stamped by
	// the owning table.
	Changed int64
}

// NewDefinition creates an empty Definition for the symbol name.
func NewDefinition(name string) *Definition {
	return &Definition{
		Name:    name,
		Formats: map[string]rules.List{},
		Options: map[string]expr.Expr{},
	}
}

// Values returns the rule list of a flat category. For FormatValues it
// returns the DefaultForm bucket.
func (d *Definition) Values(cat rules.Category) rules.List {
	if cat == rules.FormatValues {
		return d.Formats[DefaultForm]
	}
	return d.lists[cat]
}

// SetValues replaces the rule list of a flat category wholesale. For
// FormatValues it replaces the DefaultForm bucket.
func (d *Definition) SetValues(cat rules.Category, list rules.List) {
	if cat == rules.FormatValues {
		d.Formats[DefaultForm] = list
		return
	}
	d.lists[cat] = list
}

// FormatsFor returns the rules applying to the named output form: the
// form's own bucket followed by the DefaultForm bucket, sorted by
// precedence.
func (d *Definition) FormatsFor(form string) rules.List {
	combined := append(d.Formats[form].Clone(), d.Formats[DefaultForm]...)
	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Order < combined[j].Order
	})
	return combined
}

// AddRule classifies r's pattern against the definition's own name and
// inserts it into the chosen category. Reports false when the pattern
// fits no category; the rule is then not stored.
func (d *Definition) AddRule(r *rules.Rule) bool {
	cat, ok := rules.Classify(r.Pattern, d.Name)
	if !ok {
		return false
	}
	d.AddRuleAt(r, cat)
	return true
}

// AddRuleAt inserts r directly into the given category, bypassing
// classification. Used when the destination is already known, e.g.
// explicit n-value or message assignment.
func (d *Definition) AddRuleAt(r *rules.Rule, cat rules.Category) {
	if cat == rules.FormatValues {
		d.AddFormat(r, DefaultForm)
		return
	}
	d.lists[cat].Insert(r)
}

// AddFormat inserts r into the bucket of the named output form.
func (d *Definition) AddFormat(r *rules.Rule, form string) {
	list := d.Formats[form]
	list.Insert(r)
	d.Formats[form] = list
}

// RemoveRule classifies the pattern and removes the first structurally
// identical rule from the chosen category. Reports false when the
// pattern fits no category or no such rule exists.
func (d *Definition) RemoveRule(pattern expr.Expr) bool {
	cat, ok := rules.Classify(pattern, d.Name)
	if !ok {
		return false
	}
	if cat == rules.FormatValues {
		list := d.Formats[DefaultForm]
		removed := list.Remove(pattern)
		d.Formats[DefaultForm] = list
		return removed
	}
	return d.lists[cat].Remove(pattern)
}

func (d *Definition) String() string {
	return fmt.Sprintf("<Definition %s: down=%d own=%d attrs=%s>",
		d.Name, len(d.lists[rules.DownValues]), len(d.lists[rules.OwnValues]), d.Attributes)
}
