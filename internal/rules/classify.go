package rules

import (
	"github.com/arbelos-lang/arbelos/internal/expr"
)

// Category identifies one of the per-symbol value lists a rule can be
// filed under.
type Category uint8

const (
	OwnValues Category = iota
	DownValues
	SubValues
	UpValues
	NValues
	DefaultValues
	Messages

	// FormatValues rules live in a per-form map rather than the flat
	// category array; the classifier never produces this, callers
	// address it directly.
	FormatValues

	// NumListCategories is the number of flat list categories
	// (everything before FormatValues).
	NumListCategories = int(FormatValues)
)

var categoryNames = [...]string{
	OwnValues:     "own",
	DownValues:    "down",
	SubValues:     "sub",
	UpValues:      "up",
	NValues:       "n",
	DefaultValues: "default",
	Messages:      "messages",
	FormatValues:  "format",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "unknown"
}

// CategoryByName maps a category's symbolic name ("own", "down", ...)
// back to its Category. Reports false for unknown names.
func CategoryByName(name string) (Category, bool) {
	for c, n := range categoryNames {
		if n == name {
			return Category(c), true
		}
	}
	return 0, false
}

// Classify determines which value category a rule with the given
// left-hand pattern belongs to when defined for the symbol name.
// Reports false when the pattern fits no category.
//
// Checks run in priority order; in particular a pattern whose head is
// the symbol itself is a down value even if its arguments also mention
// the symbol, so the down check precedes the sub and up checks.
func Classify(pattern expr.Expr, name string) (Category, bool) {
	// Bare symbol: own value.
	if pattern.Name() == name {
		return OwnValues, true
	}
	// Any other atom fits nothing.
	if pattern.IsAtom() {
		return 0, false
	}
	n := pattern.(*expr.Normal)

	headName := n.HeadName()
	switch {
	case headName == name:
		return DownValues, true
	case headName == expr.NameN && n.Len() == 2:
		return NValues, true
	case headName == expr.NameCondition && n.Len() > 0:
		// Conditions are transparent: classify the guarded pattern.
		return Classify(n.Elements()[0], name)
	case n.LookupName() == name:
		return SubValues, true
	}
	for _, el := range n.Elements() {
		if el.LookupName() == name {
			return UpValues, true
		}
	}
	return 0, false
}
