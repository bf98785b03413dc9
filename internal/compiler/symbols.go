package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// SymbolSpec is a compiled builtin symbol declaration: everything a
// spec file can say about one symbol before it becomes a Definition.
type SymbolSpec struct {
	// Name is the short symbol name (no context).
	Name string

	// Context is the context the symbol lives in, e.g. "System`".
	Context string

	// Attributes lists attribute names ("Protected", "Orderless", ...).
	Attributes []string

	// Numeric marks the symbol as numerically evaluating.
	Numeric bool

	// Options maps option-symbol short names to default values.
	Options map[string]OptionValue

	// Messages maps message tags to their text templates.
	Messages map[string]string
}

// FullName returns the context-qualified symbol name.
func (s *SymbolSpec) FullName() string {
	return s.Context + s.Name
}

// OptionValue is a CUE-expressible option default: a string, integer,
// or boolean.
type OptionValue struct {
	Kind OptionKind
	Str  string
	Int  int64
	Bool bool
}

// OptionKind tags the concrete type of an option default.
type OptionKind uint8

const (
	OptionString OptionKind = iota
	OptionInt
	OptionBool
)

// CompileSymbol parses a CUE value into a SymbolSpec. The value should
// be one symbol struct, with the symbol's short name as its label:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`symbol: Plus: { attributes: ["Flat"] }`)
//	spec, err := CompileSymbol(v.LookupPath(cue.ParsePath("symbol.Plus")), "System`")
func CompileSymbol(v cue.Value, context string) (*SymbolSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &SymbolSpec{
		Context:  context,
		Options:  map[string]OptionValue{},
		Messages: map[string]string{},
	}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = labels[len(labels)-1].String()
	}
	if spec.Name == "" {
		return nil, &CompileError{
			Field:   "symbol",
			Message: "symbol name label is required",
			Pos:     v.Pos(),
		}
	}

	attrsVal := v.LookupPath(cue.ParsePath("attributes"))
	if attrsVal.Exists() {
		iter, err := attrsVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			name, err := iter.Value().String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			spec.Attributes = append(spec.Attributes, name)
		}
	}

	numericVal := v.LookupPath(cue.ParsePath("numeric"))
	if numericVal.Exists() {
		numeric, err := numericVal.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		spec.Numeric = numeric
	}

	optionsVal := v.LookupPath(cue.ParsePath("options"))
	if optionsVal.Exists() {
		iter, err := optionsVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			value, err := compileOptionValue(iter.Value())
			if err != nil {
				return nil, err
			}
			spec.Options[iter.Label()] = value
		}
	}

	messagesVal := v.LookupPath(cue.ParsePath("messages"))
	if messagesVal.Exists() {
		iter, err := messagesVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			text, err := iter.Value().String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			spec.Messages[iter.Label()] = text
		}
	}

	return spec, nil
}

// compileOptionValue converts a CUE option default to an OptionValue.
// Floats are rejected: option defaults this core stores are symbolic,
// and anything numeric must be an exact integer.
func compileOptionValue(v cue.Value) (OptionValue, error) {
	switch v.Kind() {
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return OptionValue{}, formatCUEError(err)
		}
		return OptionValue{Kind: OptionString, Str: s}, nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return OptionValue{}, formatCUEError(err)
		}
		return OptionValue{Kind: OptionInt, Int: n}, nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return OptionValue{}, formatCUEError(err)
		}
		return OptionValue{Kind: OptionBool, Bool: b}, nil
	default:
		return OptionValue{}, &CompileError{
			Field:   "options",
			Message: fmt.Sprintf("unsupported option default kind: %v", v.Kind()),
			Pos:     v.Pos(),
		}
	}
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
