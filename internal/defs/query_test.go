package defs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQueryTable(t *testing.T) *Definitions {
	t.Helper()
	ds := New()
	installBuiltin(ds, "System`Plus", Flat)
	installBuiltin(ds, "System`Times", Flat)
	installBuiltin(ds, "System`Power", NoAttributes)
	ds.UserDefinition("Global`foo", true)
	ds.UserDefinition("Global`foobar", true)
	ds.UserDefinition("Hidden`secret", true)
	return ds
}

func TestNames_SortedUnion(t *testing.T) {
	ds := newQueryTable(t)
	assert.Equal(t, []string{
		"Global`foo", "Global`foobar", "Hidden`secret",
		"System`Plus", "System`Power", "System`Times",
	}, ds.Names())
}

func TestNamespaceNames(t *testing.T) {
	ds := newQueryTable(t)
	assert.Equal(t, []string{"System`Plus", "System`Power", "System`Times"}, ds.BuiltinNames())
	assert.Equal(t, []string{"Global`foo", "Global`foobar", "Hidden`secret"}, ds.UserNames())
	assert.Empty(t, ds.PluginNames())
}

func TestNamesMatching_ShortPatternSearchesAccessibleContexts(t *testing.T) {
	ds := newQueryTable(t)
	assert.Equal(t, []string{"Global`foo", "Global`foobar"}, ds.NamesMatching("foo*"))
	assert.Equal(t, []string{"Global`foo"}, ds.NamesMatching("foo"))
	assert.Nil(t, ds.NamesMatching("secret"), "Hidden` is not on the path")
}

func TestNamesMatching_QualifiedPattern(t *testing.T) {
	ds := newQueryTable(t)
	assert.Equal(t, []string{"System`Plus", "System`Power"}, ds.NamesMatching("System`P*"))
	assert.Equal(t, []string{"Hidden`secret"}, ds.NamesMatching("Hidden`*"))
}

func TestNamesMatching_StarCrossesContextsOnlyInContextPart(t *testing.T) {
	ds := newQueryTable(t)
	// A '*' in the context part sweeps all contexts.
	got := ds.NamesMatching("*`foo*")
	assert.Equal(t, []string{"Global`foo", "Global`foobar"}, got)

	// A '*' in the short-name part never crosses a context mark.
	assert.Equal(t, 6, len(ds.NamesMatching("*`*")))
}

func TestNamesMatching_AtWildcard(t *testing.T) {
	ds := newQueryTable(t)
	// '@' matches a nonempty run of non-uppercase characters, so it
	// matches the lowercase user names but not "Plus".
	assert.Equal(t, []string{"Global`foo", "Global`foobar"}, ds.NamesMatching("@"))
}

func TestNamesMatching_InvalidPattern(t *testing.T) {
	ds := newQueryTable(t)
	assert.Nil(t, ds.NamesMatching(""))
	assert.Nil(t, ds.NamesMatching("foo bar"))
	assert.Nil(t, ds.NamesMatching("f(o"))
}

func TestNamesMatching_DollarLiteral(t *testing.T) {
	ds := New()
	_ = ds.GetDefinition("System`$Context")
	require.Contains(t, ds.Names(), "System`$Context")
	assert.Equal(t, []string{"System`$Context"}, ds.NamesMatching("System`$Context"))
}
