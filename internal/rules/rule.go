package rules

import (
	"fmt"

	"github.com/arbelos-lang/arbelos/internal/expr"
)

// Rule is a pattern-to-replacement rewrite. The engine never applies
// rules itself; it only classifies, orders, and hands them to the
// external matcher.
type Rule struct {
	// Pattern is the left-hand side the matcher tests against.
	Pattern expr.Expr

	// Replacement is the right-hand side. Opaque to this package.
	Replacement expr.Expr

	// Order is the precedence key. Lists sort ascending on it, so
	// lower values are tried first.
	Order int64
}

// New creates a rule whose precedence defaults to the pattern's
// genericity score (specific patterns sort ahead of generic ones).
func New(pattern, replacement expr.Expr) *Rule {
	return &Rule{
		Pattern:     pattern,
		Replacement: replacement,
		Order:       expr.Genericity(pattern),
	}
}

// NewWithOrder creates a rule with an explicit precedence key.
func NewWithOrder(pattern, replacement expr.Expr, order int64) *Rule {
	return &Rule{Pattern: pattern, Replacement: replacement, Order: order}
}

// SamePattern reports whether the rule's pattern is structurally
// identical to p.
func (r *Rule) SamePattern(p expr.Expr) bool {
	return r.Pattern.SameQ(p)
}

func (r *Rule) String() string {
	return fmt.Sprintf("%s -> %s", r.Pattern, r.Replacement)
}
