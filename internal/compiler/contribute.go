package compiler

import (
	"fmt"
	"log/slog"

	"github.com/arbelos-lang/arbelos/internal/defs"
	"github.com/arbelos-lang/arbelos/internal/expr"
	"github.com/arbelos-lang/arbelos/internal/rules"
)

// Definition materializes a compiled spec into a Definition record.
func (s *SymbolSpec) Definition() (*defs.Definition, error) {
	full := s.FullName()
	def := defs.NewDefinition(full)
	def.Builtin = full
	def.IsNumeric = s.Numeric

	for _, name := range s.Attributes {
		bit, ok := defs.AttributeByName(name)
		if !ok {
			return nil, fmt.Errorf("symbol %s: unknown attribute %q", full, name)
		}
		def.Attributes |= bit
	}

	for option, value := range s.Options {
		def.Options[s.Context+option] = optionExpr(value)
	}

	// Message texts become message rules keyed by MessageName[sym, tag],
	// which is how the evaluator looks them up.
	for tag, text := range s.Messages {
		pattern := expr.Apply("System`MessageName",
			expr.Symbol(full), expr.String(tag))
		def.AddRuleAt(rules.New(pattern, expr.String(text)), rules.Messages)
	}

	return def, nil
}

func optionExpr(value OptionValue) expr.Expr {
	switch value.Kind {
	case OptionInt:
		return expr.Integer(value.Int)
	case OptionBool:
		if value.Bool {
			return expr.Symbol("System`True")
		}
		return expr.Symbol("System`False")
	default:
		return expr.String(value.Str)
	}
}

// Contribute installs compiled symbol specs into the table's builtin
// namespace. Called once at startup, before any user mutation.
func Contribute(ds *defs.Definitions, specs []SymbolSpec) error {
	return contribute(ds, specs, ds.SetBuiltinDefinition)
}

// ContributePlugin installs compiled symbol specs into the plugin
// namespace. Called when an optional module loads.
func ContributePlugin(ds *defs.Definitions, specs []SymbolSpec) error {
	return contribute(ds, specs, ds.SetPluginDefinition)
}

func contribute(ds *defs.Definitions, specs []SymbolSpec, install func(string, *defs.Definition)) error {
	for i := range specs {
		def, err := specs[i].Definition()
		if err != nil {
			return err
		}
		install(def.Name, def)
	}
	slog.Debug("contributed symbol specs", "count", len(specs))
	return nil
}
