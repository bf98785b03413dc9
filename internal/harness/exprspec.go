package harness

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/arbelos-lang/arbelos/internal/defs"
	"github.com/arbelos-lang/arbelos/internal/expr"
)

// ExprSpec is a structural YAML encoding of an expression.
//
// A bare scalar string is a symbol, a bare scalar integer is an
// integer literal. A mapping selects the kind explicitly:
//
//	{symbol: "Global`f"}
//	{string: "hello"}
//	{int: 42}
//	{head: "System`Pattern", args: ["x", {head: "System`Blank"}]}
//
// Symbol names are resolved against the session's context settings
// when the expression is built, so scenarios can use short names.
type ExprSpec struct {
	node *yaml.Node
}

// UnmarshalYAML captures the raw node; decoding is deferred to Build
// so symbol names resolve against the session state at the point the
// step runs.
func (s *ExprSpec) UnmarshalYAML(node *yaml.Node) error {
	s.node = node
	return nil
}

// IsZero reports whether the spec was absent from the YAML.
func (s *ExprSpec) IsZero() bool {
	return s.node == nil
}

// Build converts the spec into an expression, resolving symbol names
// through the table's current context and search path.
func (s *ExprSpec) Build(ds *defs.Definitions) (expr.Expr, error) {
	if s.node == nil {
		return nil, fmt.Errorf("missing expression")
	}
	return buildExpr(s.node, ds)
}

func buildExpr(node *yaml.Node, ds *defs.Definitions) (expr.Expr, error) {
	// Follow anchors so scenarios can share subexpressions.
	if node.Kind == yaml.AliasNode {
		return buildExpr(node.Alias, ds)
	}

	switch node.Kind {
	case yaml.ScalarNode:
		return buildScalar(node, ds)
	case yaml.MappingNode:
		return buildMapping(node, ds)
	default:
		return nil, fmt.Errorf("line %d: expression must be a scalar or mapping", node.Line)
	}
}

func buildScalar(node *yaml.Node, ds *defs.Definitions) (expr.Expr, error) {
	var i int64
	if err := node.Decode(&i); err == nil {
		return expr.Integer(i), nil
	}
	var name string
	if err := node.Decode(&name); err != nil {
		return nil, fmt.Errorf("line %d: bad expression scalar: %w", node.Line, err)
	}
	if name == "" {
		return nil, fmt.Errorf("line %d: empty symbol name", node.Line)
	}
	return expr.Symbol(ds.LookupName(name)), nil
}

func buildMapping(node *yaml.Node, ds *defs.Definitions) (expr.Expr, error) {
	var head, args *yaml.Node
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "symbol":
			var name string
			if err := value.Decode(&name); err != nil {
				return nil, fmt.Errorf("line %d: bad symbol: %w", value.Line, err)
			}
			return expr.Symbol(ds.LookupName(name)), nil
		case "string":
			var text string
			if err := value.Decode(&text); err != nil {
				return nil, fmt.Errorf("line %d: bad string: %w", value.Line, err)
			}
			return expr.String(text), nil
		case "int":
			var n int64
			if err := value.Decode(&n); err != nil {
				return nil, fmt.Errorf("line %d: bad int: %w", value.Line, err)
			}
			return expr.Integer(n), nil
		case "head":
			head = value
		case "args":
			args = value
		default:
			return nil, fmt.Errorf("line %d: unknown expression key %q", key.Line, key.Value)
		}
	}

	if head == nil {
		return nil, fmt.Errorf("line %d: expression mapping needs symbol, string, int, or head", node.Line)
	}
	headExpr, err := buildExpr(head, ds)
	if err != nil {
		return nil, err
	}
	var elements []expr.Expr
	if args != nil {
		if args.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("line %d: args must be a sequence", args.Line)
		}
		for _, el := range args.Content {
			e, err := buildExpr(el, ds)
			if err != nil {
				return nil, err
			}
			elements = append(elements, e)
		}
	}
	return expr.NewNormal(headExpr, elements...), nil
}
