package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_NFC(t *testing.T) {
	// U+00E9 vs e + combining acute: both normalize to the same name.
	composed := "Global`café"
	decomposed := "Global`café"
	assert.Equal(t, Normalize(composed), Normalize(decomposed))
}

func TestIsQualified(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"System`Plus", true},
		{"A`B`x", true},
		{"x", false},
		{"", false},
		{"`x", false},
		{"Global`", false},
		{"A``x", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsQualified(tc.name), "IsQualified(%q)", tc.name)
	}
}

func TestIsContext(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"Global`", true},
		{"A`B`", true},
		{"Global", false},
		{"", false},
		{"`", false},
		{"A``", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsContext(tc.name), "IsContext(%q)", tc.name)
	}
}

func TestStripContext(t *testing.T) {
	assert.Equal(t, "Plus", StripContext("System`Plus"))
	assert.Equal(t, "x", StripContext("A`B`x"))
	assert.Equal(t, "x", StripContext("x"))
}

func TestContextOf(t *testing.T) {
	assert.Equal(t, "System`", ContextOf("System`Plus"))
	assert.Equal(t, "A`B`", ContextOf("A`B`x"))
	assert.Equal(t, "", ContextOf("x"))
}

func TestGenericity_Ordering(t *testing.T) {
	literal := Apply("Global`f", Integer(1))
	blank := Apply("Global`f", Apply(NameBlank))
	seq := Apply("Global`f", Apply(NameBlankSequence))
	nullSeq := Apply("Global`f", Apply(NameBlankNullSequence))

	assert.Equal(t, int64(0), Genericity(literal))
	assert.Less(t, Genericity(literal), Genericity(blank))
	assert.Less(t, Genericity(blank), Genericity(seq))
	assert.Less(t, Genericity(seq), Genericity(nullSeq))
}

func TestGenericity_NamedPatternMatchesBareBlank(t *testing.T) {
	// x_ carries the same weight as _: the Pattern wrapper itself is free.
	named := Apply("Global`f",
		Apply(NamePattern, Symbol("Global`x"), Apply(NameBlank)))
	bare := Apply("Global`f", Apply(NameBlank))

	assert.Equal(t, Genericity(bare), Genericity(named))
}

func TestGenericity_SumsOverElements(t *testing.T) {
	two := Apply("Global`f", Apply(NameBlank), Apply(NameBlank))
	assert.Equal(t, int64(4), Genericity(two))
}
