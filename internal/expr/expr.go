package expr

import (
	"fmt"
	"strings"
)

// Well-known symbol names the engine treats specially during rule
// classification. These are fully qualified System-context names.
const (
	NameN         = "System`N"
	NameCondition = "System`Condition"

	// Atom head names.
	NameSymbol  = "System`Symbol"
	NameString  = "System`String"
	NameInteger = "System`Integer"
)

// Expr is a sealed interface over the expression shapes the engine
// consumes. Only Symbol, String, Integer, and *Normal implement it.
//
// Accessor semantics follow the evaluator's conventions:
//   - Name returns the symbol's fully qualified name, or "" for
//     anything that is not a symbol.
//   - HeadName returns the name of the expression's head when the head
//     is a symbol ("System`Symbol" etc. for atoms), or "" otherwise.
//   - LookupName returns the name under which the dispatcher files the
//     expression: a symbol's own name, an atom's head name, and for a
//     compound expression the lookup name of its head (so f[x][y] is
//     filed under f).
type Expr interface {
	Name() string
	HeadName() string
	LookupName() string

	// SameQ reports structural equality. Used for rule dedup and removal;
	// never considers attributes or evaluation semantics.
	SameQ(other Expr) bool

	// IsAtom reports whether the expression has no sub-elements.
	IsAtom() bool

	fmt.Stringer

	sealed()
}

// Symbol is a namespace-qualified symbol atom. The string is the fully
// qualified name; two symbols denote the same entity iff the strings
// are equal.
type Symbol string

func (s Symbol) Name() string       { return string(s) }
func (s Symbol) HeadName() string   { return NameSymbol }
func (s Symbol) LookupName() string { return string(s) }
func (s Symbol) IsAtom() bool       { return true }
func (s Symbol) String() string     { return string(s) }
func (Symbol) sealed()              {}

func (s Symbol) SameQ(other Expr) bool {
	o, ok := other.(Symbol)
	return ok && s == o
}

// String is a string atom.
type String string

func (String) Name() string          { return "" }
func (String) HeadName() string      { return NameString }
func (s String) LookupName() string  { return NameString }
func (String) IsAtom() bool          { return true }
func (s String) String() string     { return fmt.Sprintf("%q", string(s)) }
func (String) sealed()               {}

func (s String) SameQ(other Expr) bool {
	o, ok := other.(String)
	return ok && s == o
}

// Integer is an integer atom.
type Integer int64

func (Integer) Name() string         { return "" }
func (Integer) HeadName() string     { return NameInteger }
func (i Integer) LookupName() string { return NameInteger }
func (Integer) IsAtom() bool         { return true }
func (i Integer) String() string     { return fmt.Sprintf("%d", int64(i)) }
func (Integer) sealed()              {}

func (i Integer) SameQ(other Expr) bool {
	o, ok := other.(Integer)
	return ok && i == o
}

// Normal is a compound expression: a head applied to zero or more
// elements, e.g. f[x, y] has head Symbol("Global`f") and two elements.
type Normal struct {
	head     Expr
	elements []Expr
}

// NewNormal constructs a compound expression from a head and elements.
// The element slice is copied.
func NewNormal(head Expr, elements ...Expr) *Normal {
	els := make([]Expr, len(elements))
	copy(els, elements)
	return &Normal{head: head, elements: els}
}

// Apply is shorthand for NewNormal with a symbol head.
func Apply(head string, elements ...Expr) *Normal {
	return NewNormal(Symbol(head), elements...)
}

// Head returns the head expression.
func (n *Normal) Head() Expr { return n.head }

// Elements returns the element slice. Callers must not mutate it.
func (n *Normal) Elements() []Expr { return n.elements }

// Len returns the number of elements.
func (n *Normal) Len() int { return len(n.elements) }

func (n *Normal) Name() string { return "" }

func (n *Normal) HeadName() string { return n.head.Name() }

func (n *Normal) LookupName() string { return n.head.LookupName() }

func (n *Normal) IsAtom() bool { return false }

func (n *Normal) sealed() {}

func (n *Normal) SameQ(other Expr) bool {
	o, ok := other.(*Normal)
	if !ok || len(n.elements) != len(o.elements) {
		return false
	}
	if !n.head.SameQ(o.head) {
		return false
	}
	for i, el := range n.elements {
		if !el.SameQ(o.elements[i]) {
			return false
		}
	}
	return true
}

func (n *Normal) String() string {
	var sb strings.Builder
	sb.WriteString(n.head.String())
	sb.WriteByte('[')
	for i, el := range n.elements {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(el.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
