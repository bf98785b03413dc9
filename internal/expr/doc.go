// Package expr defines the minimal expression surface consumed by the
// definition engine: atoms (symbols, strings, integers), compound
// expressions, structural equality (SameQ), and the head/lookup-name
// accessors used by rule classification.
//
// The parser producing these trees lives outside this module; the engine
// only depends on the small sealed interface defined here. Pattern
// matching is likewise external - the engine orders rules, the matcher
// tries them.
package expr
