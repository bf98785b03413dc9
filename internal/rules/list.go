package rules

import (
	"slices"
	"sort"

	"github.com/arbelos-lang/arbelos/internal/expr"
)

// List is a precedence-ordered rule sequence. The zero value is ready
// to use. The evaluator's matcher reads it front to back and stops at
// the first pattern that matches, so position is semantics.
type List []*Rule

// Insert adds r to the list, preserving precedence order. Any existing
// rule whose pattern is structurally identical to r's is removed first,
// and r is placed at the leftmost position among rules of equal
// precedence, so a redefined or newly added rule is tried before older
// peers.
func (l *List) Insert(r *Rule) {
	values := *l
	for i, existing := range values {
		if existing.SamePattern(r.Pattern) {
			values = slices.Delete(values, i, i+1)
			break
		}
	}
	// Leftmost slot among equal-precedence rules (insort-left).
	i := sort.Search(len(values), func(i int) bool {
		return values[i].Order >= r.Order
	})
	*l = slices.Insert(values, i, r)
}

// Remove deletes the first rule whose pattern is structurally identical
// to pattern. Reports whether a rule was removed; absence is not an
// error.
func (l *List) Remove(pattern expr.Expr) bool {
	values := *l
	for i, existing := range values {
		if existing.SamePattern(pattern) {
			*l = slices.Delete(values, i, i+1)
			return true
		}
	}
	return false
}

// Clone returns a copy of the list sharing the rule pointers. Merged
// definitions concatenate clones so namespace lists stay independent.
func (l List) Clone() List {
	return slices.Clone(l)
}
