package defs

import (
	"github.com/arbelos-lang/arbelos/internal/expr"
)

// proxyAdd registers a cached original name under its context-stripped
// short form, so invalidation by any related name can find it.
func (ds *Definitions) proxyAdd(original string) {
	short := expr.StripContext(original)
	bucket := ds.proxy[short]
	if bucket == nil {
		bucket = map[string]struct{}{}
		ds.proxy[short] = bucket
	}
	bucket[original] = struct{}{}
}

// InvalidateAll drops both caches and the reverse index. Used when a
// global assumption changed - reassigning the current context or the
// search path can move the resolution of any name.
func (ds *Definitions) InvalidateAll() {
	ds.defCache = map[string]*Definition{}
	ds.lookupCache = map[string]string{}
	ds.proxy = map[string]map[string]struct{}{}
}

// Invalidate evicts every cache entry related to name from both the
// merged-definition cache and the resolved-name cache. Relatedness is
// judged by the context-stripped short form, which may evict entries
// for same-named symbols in other contexts; that over-eviction is the
// price of never under-evicting.
func (ds *Definitions) Invalidate(name string) {
	short := expr.StripContext(name)
	for original := range ds.proxy[short] {
		delete(ds.defCache, original)
		delete(ds.lookupCache, original)
	}
	delete(ds.proxy, short)
}

// invalidateMerged evicts only merged-definition cache entries related
// to name. Mutating an existing symbol's content changes the merged
// view but not how names resolve, so the resolved-name cache survives.
func (ds *Definitions) invalidateMerged(name string) {
	short := expr.StripContext(name)
	for original := range ds.proxy[short] {
		delete(ds.defCache, original)
	}
	delete(ds.proxy, short)
}

// cacheSize reports cache entry counts, for tests.
func (ds *Definitions) cacheSize() (definitions, lookups, proxies int) {
	return len(ds.defCache), len(ds.lookupCache), len(ds.proxy)
}
