package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymbol_Accessors(t *testing.T) {
	s := Symbol("Global`f")
	assert.Equal(t, "Global`f", s.Name())
	assert.Equal(t, NameSymbol, s.HeadName())
	assert.Equal(t, "Global`f", s.LookupName(), "a symbol files under itself")
	assert.True(t, s.IsAtom())
}

func TestString_Accessors(t *testing.T) {
	s := String("hello")
	assert.Equal(t, "", s.Name(), "non-symbol atoms have no name")
	assert.Equal(t, NameString, s.HeadName())
	assert.Equal(t, NameString, s.LookupName(), "atoms file under their head name")
	assert.Equal(t, `"hello"`, s.String())
}

func TestInteger_Accessors(t *testing.T) {
	i := Integer(42)
	assert.Equal(t, "", i.Name())
	assert.Equal(t, NameInteger, i.HeadName())
	assert.Equal(t, NameInteger, i.LookupName())
	assert.Equal(t, "42", i.String())
}

func TestNormal_LookupNameRecursesIntoHead(t *testing.T) {
	// f[x][y] files under f, not under the inner application.
	inner := Apply("Global`f", Symbol("Global`x"))
	outer := NewNormal(inner, Symbol("Global`y"))

	assert.Equal(t, "Global`f", outer.LookupName())
	assert.Equal(t, "", outer.HeadName(), "compound head has no symbol name")
}

func TestNormal_HeadName(t *testing.T) {
	n := Apply("Global`f", Integer(1))
	assert.Equal(t, "Global`f", n.HeadName())
	assert.Equal(t, "Global`f", n.LookupName())
	assert.False(t, n.IsAtom())
}

func TestSameQ_Structural(t *testing.T) {
	a := Apply("Global`f", Symbol("Global`x"), Integer(1))
	b := Apply("Global`f", Symbol("Global`x"), Integer(1))
	c := Apply("Global`f", Symbol("Global`x"), Integer(2))

	assert.True(t, a.SameQ(b))
	assert.True(t, b.SameQ(a))
	assert.False(t, a.SameQ(c))
	assert.False(t, a.SameQ(Symbol("Global`f")))
}

func TestSameQ_CrossKind(t *testing.T) {
	assert.False(t, Symbol("Global`x").SameQ(String("Global`x")))
	assert.False(t, Integer(0).SameQ(String("0")))
}

func TestNormal_String(t *testing.T) {
	n := Apply("Global`f", Symbol("Global`x"), Integer(2))
	assert.Equal(t, "Global`f[Global`x, 2]", n.String())
}

func TestNewNormal_CopiesElements(t *testing.T) {
	elements := []Expr{Integer(1), Integer(2)}
	n := NewNormal(Symbol("Global`f"), elements...)
	elements[0] = Integer(99)
	assert.True(t, n.Elements()[0].SameQ(Integer(1)), "element slice must be copied")
}
