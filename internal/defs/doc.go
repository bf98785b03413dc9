// Package defs implements the layered symbol table at the heart of the
// interpreter: per-symbol Definition records bundling rule lists,
// attributes and options; three independent namespaces (builtin,
// plugin, user); context-sensitive name resolution; and the merged view
// the evaluator reads, kept cheap by two caches with targeted
// invalidation.
//
// The table is single-threaded by design. Mutations always land in the
// user namespace, stamp the table's logical clock, and invalidate the
// affected cache entries before returning, so a lookup immediately
// after a mutation - including a reentrant one from inside evaluation -
// always sees a consistent view.
package defs
