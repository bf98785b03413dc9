package defs

import "strings"

// Attributes is a bit set of evaluator-visible symbol flags. The table
// stores and merges them; their evaluation semantics live in the
// evaluator.
type Attributes uint32

const (
	Constant Attributes = 1 << iota
	Flat
	HoldAll
	HoldAllComplete
	HoldFirst
	HoldRest
	Listable
	Locked
	NHoldAll
	NHoldFirst
	NHoldRest
	NumericFunction
	OneIdentity
	Orderless
	Protected
	ReadProtected
	SequenceHold
	Stub
	Temporary

	// NoAttributes is the empty set.
	NoAttributes Attributes = 0
)

var attributeNames = map[Attributes]string{
	Constant:        "Constant",
	Flat:            "Flat",
	HoldAll:         "HoldAll",
	HoldAllComplete: "HoldAllComplete",
	HoldFirst:       "HoldFirst",
	HoldRest:        "HoldRest",
	Listable:        "Listable",
	Locked:          "Locked",
	NHoldAll:        "NHoldAll",
	NHoldFirst:      "NHoldFirst",
	NHoldRest:       "NHoldRest",
	NumericFunction: "NumericFunction",
	OneIdentity:     "OneIdentity",
	Orderless:       "Orderless",
	Protected:       "Protected",
	ReadProtected:   "ReadProtected",
	SequenceHold:    "SequenceHold",
	Stub:            "Stub",
	Temporary:       "Temporary",
}

// AttributeByName maps an attribute's display name back to its bit.
// Reports false for unknown names.
func AttributeByName(name string) (Attributes, bool) {
	for bit, n := range attributeNames {
		if n == name {
			return bit, true
		}
	}
	return 0, false
}

// Has reports whether every bit in attr is set.
func (a Attributes) Has(attr Attributes) bool {
	return a&attr == attr
}

// Names returns the display names of all set bits in a fixed order.
func (a Attributes) Names() []string {
	var names []string
	for bit := Attributes(1); bit != 0 && bit <= Temporary; bit <<= 1 {
		if a.Has(bit) {
			names = append(names, attributeNames[bit])
		}
	}
	return names
}

func (a Attributes) String() string {
	return "{" + strings.Join(a.Names(), ", ") + "}"
}
