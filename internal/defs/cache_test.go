package defs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbelos-lang/arbelos/internal/expr"
	"github.com/arbelos-lang/arbelos/internal/rules"
)

func TestCache_LookupPopulatesBothCaches(t *testing.T) {
	ds := New()
	installBuiltin(ds, "System`Plus", Flat)

	_ = ds.GetDefinition("Plus")
	definitions, lookups, proxies := ds.cacheSize()
	assert.Equal(t, 1, definitions)
	assert.Equal(t, 1, lookups)
	assert.Equal(t, 1, proxies)
}

func TestCache_RepeatedLookupServesCachedIdentity(t *testing.T) {
	ds := New()
	installBuiltin(ds, "System`Plus", Flat)

	first := ds.GetDefinition("Plus")
	second := ds.GetDefinition("Plus")
	assert.Same(t, first, second)
}

func TestCache_MutationRefreshesMergedView(t *testing.T) {
	ds := New()
	installBuiltin(ds, "System`Plus", Flat)
	before := ds.GetDefinition("Plus")
	require.Empty(t, before.Values(rules.DownValues))

	ds.AddRule("System`Plus", rules.New(expr.Apply("System`Plus", blank()), expr.Integer(0)))

	after := ds.GetDefinition("Plus")
	assert.NotSame(t, before, after, "stale merged view must not be served")
	assert.Len(t, after.Values(rules.DownValues), 1)
}

func TestCache_InvalidateEvictsRelatedNames(t *testing.T) {
	ds := New()
	installBuiltin(ds, "System`Plus", Flat)

	// Warm the cache under two spellings of the same symbol.
	_ = ds.GetDefinition("Plus")
	_ = ds.GetDefinition("System`Plus")
	definitions, lookups, _ := ds.cacheSize()
	require.Equal(t, 2, definitions)
	require.Equal(t, 2, lookups)

	ds.Invalidate("System`Plus")
	definitions, lookups, proxies := ds.cacheSize()
	assert.Zero(t, definitions, "both spellings share the short form and evict together")
	assert.Zero(t, lookups)
	assert.Zero(t, proxies)
}

func TestCache_InvalidateAll(t *testing.T) {
	ds := New()
	installBuiltin(ds, "System`Plus", Flat)
	installBuiltin(ds, "System`Times", Flat)
	_ = ds.GetDefinition("Plus")
	_ = ds.GetDefinition("Times")

	ds.InvalidateAll()
	definitions, lookups, proxies := ds.cacheSize()
	assert.Zero(t, definitions)
	assert.Zero(t, lookups)
	assert.Zero(t, proxies)
}

func TestCache_ContentMutationKeepsResolution(t *testing.T) {
	ds := New()
	installBuiltin(ds, "System`Plus", Flat)
	ds.UserDefinition("System`Plus", true)
	_ = ds.GetDefinition("Plus")

	// Content-only invalidation: the merged view goes, the resolved
	// name may stay.
	ds.invalidateMerged("System`Plus")
	definitions, _, _ := ds.cacheSize()
	assert.Zero(t, definitions)
	assert.Equal(t, "System`Plus", ds.LookupName("Plus"))
}

func TestCache_OverEvictionAcrossContexts(t *testing.T) {
	ds := New()
	installBuiltin(ds, "System`x", NoAttributes)
	ds.UserDefinition("A`x", true)
	_ = ds.GetDefinition("System`x")
	_ = ds.GetDefinition("A`x")

	// Invalidating one x evicts every cached name with short form "x".
	// Conservative, but resolution stays correct.
	ds.Invalidate("A`x")
	definitions, _, _ := ds.cacheSize()
	assert.Zero(t, definitions)
	assert.Equal(t, "System`x", ds.GetDefinition("System`x").Name)
	assert.Equal(t, "A`x", ds.GetDefinition("A`x").Name)
}
