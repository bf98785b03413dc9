package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arbelos-lang/arbelos/internal/expr"
)

func blankPattern(arg expr.Expr) expr.Expr {
	return expr.Apply("Global`f", arg)
}

func TestList_Insert_OrdersByPrecedence(t *testing.T) {
	var l List
	generic := New(blankPattern(expr.Apply(expr.NameBlank)), expr.Integer(0))
	specific := New(blankPattern(expr.Integer(1)), expr.Integer(10))

	l.Insert(generic)
	l.Insert(specific)

	assert.Len(t, l, 2)
	assert.Same(t, specific, l[0], "specific rule sorts ahead of generic")
	assert.Same(t, generic, l[1])
}

func TestList_Insert_EqualPrecedenceNewestFirst(t *testing.T) {
	var l List
	r1 := New(blankPattern(expr.Integer(1)), expr.Integer(10))
	r2 := New(blankPattern(expr.Integer(2)), expr.Integer(20))

	l.Insert(r1)
	l.Insert(r2)

	// Both score 0; the later insertion takes the leftmost slot.
	assert.Same(t, r2, l[0])
	assert.Same(t, r1, l[1])
}

func TestList_Insert_ReplacesSamePattern(t *testing.T) {
	var l List
	pattern := blankPattern(expr.Apply(expr.NameBlank))
	old := New(pattern, expr.Integer(1))
	updated := New(blankPattern(expr.Apply(expr.NameBlank)), expr.Integer(2))

	l.Insert(old)
	l.Insert(updated)

	assert.Len(t, l, 1, "structurally identical pattern replaces, never duplicates")
	assert.Same(t, updated, l[0])
}

func TestList_Remove(t *testing.T) {
	var l List
	pattern := blankPattern(expr.Integer(1))
	l.Insert(New(pattern, expr.Integer(10)))

	assert.True(t, l.Remove(blankPattern(expr.Integer(1))))
	assert.Empty(t, l)
	assert.False(t, l.Remove(blankPattern(expr.Integer(1))), "removing an absent pattern is not an error")
}

func TestList_Clone_Independent(t *testing.T) {
	var l List
	l.Insert(New(blankPattern(expr.Integer(1)), expr.Integer(10)))

	clone := l.Clone()
	clone.Insert(New(blankPattern(expr.Integer(2)), expr.Integer(20)))

	assert.Len(t, l, 1, "mutating a clone must not touch the original")
	assert.Len(t, clone, 2)
}

func TestList_ExplicitOrderWins(t *testing.T) {
	var l List
	first := NewWithOrder(blankPattern(expr.Integer(1)), expr.Integer(10), 5)
	second := NewWithOrder(blankPattern(expr.Integer(2)), expr.Integer(20), 1)

	l.Insert(first)
	l.Insert(second)

	assert.Same(t, second, l[0], "explicit precedence overrides insertion order")
}
