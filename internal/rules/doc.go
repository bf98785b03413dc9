// Package rules defines rewrite rules, the precedence-ordered lists
// they live in, and the classifier that decides which value category a
// rule belongs to for a given symbol.
//
// A list is always kept totally ordered by the rules' precedence keys.
// Within equal precedence, newer rules come first: the evaluator tries
// rules in list order and stops at the first match, so recency decides
// ties. Two rules with structurally identical patterns never coexist in
// one list - inserting the second replaces the first.
package rules
