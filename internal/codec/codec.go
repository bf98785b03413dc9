// Package codec implements the versioned, self-describing encoding of
// expressions, rules, and definition tables used by snapshot
// persistence and session export. Every envelope carries an explicit
// format version tag; loads across versions fail with a clear error
// instead of misreading bytes.
package codec

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/arbelos-lang/arbelos/internal/defs"
	"github.com/arbelos-lang/arbelos/internal/expr"
	"github.com/arbelos-lang/arbelos/internal/rules"
)

// FormatVersion is the current snapshot format version. Bump on any
// incompatible change to the encoded shapes below.
const FormatVersion = 1

// Expression kinds in the encoded form.
const (
	kindSymbol  = "symbol"
	kindString  = "string"
	kindInteger = "integer"
	kindNormal  = "normal"
)

type jsonExpr struct {
	Kind     string     `json:"kind"`
	Name     string     `json:"name,omitempty"`
	Text     string     `json:"text,omitempty"`
	Value    int64      `json:"value,omitempty"`
	Head     *jsonExpr  `json:"head,omitempty"`
	Elements []jsonExpr `json:"elements,omitempty"`
}

type jsonRule struct {
	Pattern     jsonExpr `json:"pattern"`
	Replacement jsonExpr `json:"replacement"`
	Order       int64    `json:"order"`
}

type jsonDefinition struct {
	Name       string                `json:"name"`
	Attributes uint32                `json:"attributes,omitempty"`
	IsNumeric  bool                  `json:"is_numeric,omitempty"`
	Builtin    string                `json:"builtin,omitempty"`
	Changed    int64                 `json:"changed,omitempty"`
	Lists      map[string][]jsonRule `json:"lists,omitempty"`
	Formats    map[string][]jsonRule `json:"formats,omitempty"`
	Options    map[string]jsonExpr   `json:"options,omitempty"`
}

// Snapshot is the encoded form of one namespace mapping plus the clock
// position it was taken at.
type Snapshot struct {
	Version int                       `json:"version"`
	Clock   int64                     `json:"clock"`
	Symbols map[string]jsonDefinition `json:"symbols"`
}

func encodeExpr(e expr.Expr) jsonExpr {
	switch v := e.(type) {
	case expr.Symbol:
		return jsonExpr{Kind: kindSymbol, Name: string(v)}
	case expr.String:
		return jsonExpr{Kind: kindString, Text: string(v)}
	case expr.Integer:
		return jsonExpr{Kind: kindInteger, Value: int64(v)}
	case *expr.Normal:
		head := encodeExpr(v.Head())
		elements := make([]jsonExpr, v.Len())
		for i, el := range v.Elements() {
			elements[i] = encodeExpr(el)
		}
		return jsonExpr{Kind: kindNormal, Head: &head, Elements: elements}
	default:
		// Sealed interface; unreachable.
		panic(fmt.Sprintf("codec: unknown expression type %T", e))
	}
}

func decodeExpr(j jsonExpr) (expr.Expr, error) {
	switch j.Kind {
	case kindSymbol:
		return expr.Symbol(j.Name), nil
	case kindString:
		return expr.String(j.Text), nil
	case kindInteger:
		return expr.Integer(j.Value), nil
	case kindNormal:
		if j.Head == nil {
			return nil, fmt.Errorf("normal expression missing head")
		}
		head, err := decodeExpr(*j.Head)
		if err != nil {
			return nil, err
		}
		elements := make([]expr.Expr, len(j.Elements))
		for i, el := range j.Elements {
			elements[i], err = decodeExpr(el)
			if err != nil {
				return nil, err
			}
		}
		return expr.NewNormal(head, elements...), nil
	default:
		return nil, fmt.Errorf("unknown expression kind %q", j.Kind)
	}
}

func encodeRule(r *rules.Rule) jsonRule {
	return jsonRule{
		Pattern:     encodeExpr(r.Pattern),
		Replacement: encodeExpr(r.Replacement),
		Order:       r.Order,
	}
}

func decodeRule(j jsonRule) (*rules.Rule, error) {
	pattern, err := decodeExpr(j.Pattern)
	if err != nil {
		return nil, fmt.Errorf("rule pattern: %w", err)
	}
	replacement, err := decodeExpr(j.Replacement)
	if err != nil {
		return nil, fmt.Errorf("rule replacement: %w", err)
	}
	return rules.NewWithOrder(pattern, replacement, j.Order), nil
}

func encodeList(list rules.List) []jsonRule {
	if len(list) == 0 {
		return nil
	}
	encoded := make([]jsonRule, len(list))
	for i, r := range list {
		encoded[i] = encodeRule(r)
	}
	return encoded
}

func decodeList(encoded []jsonRule) (rules.List, error) {
	var list rules.List
	for i, j := range encoded {
		r, err := decodeRule(j)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		list = append(list, r)
	}
	return list, nil
}

func encodeDefinition(d *defs.Definition) jsonDefinition {
	j := jsonDefinition{
		Name:       d.Name,
		Attributes: uint32(d.Attributes),
		IsNumeric:  d.IsNumeric,
		Builtin:    d.Builtin,
		Changed:    d.Changed,
	}
	for cat := 0; cat < rules.NumListCategories; cat++ {
		encoded := encodeList(d.Values(rules.Category(cat)))
		if encoded == nil {
			continue
		}
		if j.Lists == nil {
			j.Lists = map[string][]jsonRule{}
		}
		j.Lists[rules.Category(cat).String()] = encoded
	}
	for form, list := range d.Formats {
		encoded := encodeList(list)
		if encoded == nil {
			continue
		}
		if j.Formats == nil {
			j.Formats = map[string][]jsonRule{}
		}
		j.Formats[form] = encoded
	}
	for key, value := range d.Options {
		if j.Options == nil {
			j.Options = map[string]jsonExpr{}
		}
		j.Options[key] = encodeExpr(value)
	}
	return j
}

func decodeDefinition(j jsonDefinition) (*defs.Definition, error) {
	d := defs.NewDefinition(j.Name)
	d.Attributes = defs.Attributes(j.Attributes)
	d.IsNumeric = j.IsNumeric
	d.Builtin = j.Builtin
	d.Changed = j.Changed
	for name, encoded := range j.Lists {
		cat, ok := rules.CategoryByName(name)
		if !ok {
			return nil, fmt.Errorf("definition %s: unknown category %q", j.Name, name)
		}
		list, err := decodeList(encoded)
		if err != nil {
			return nil, fmt.Errorf("definition %s, category %s: %w", j.Name, name, err)
		}
		d.SetValues(cat, list)
	}
	for form, encoded := range j.Formats {
		list, err := decodeList(encoded)
		if err != nil {
			return nil, fmt.Errorf("definition %s, form %q: %w", j.Name, form, err)
		}
		d.Formats[form] = list
	}
	for key, encoded := range j.Options {
		value, err := decodeExpr(encoded)
		if err != nil {
			return nil, fmt.Errorf("definition %s, option %s: %w", j.Name, key, err)
		}
		d.Options[key] = value
	}
	return d, nil
}

// EncodeNamespace serializes a namespace mapping and clock position to
// the versioned JSON envelope.
func EncodeNamespace(symbols map[string]*defs.Definition, clock int64) ([]byte, error) {
	snapshot := Snapshot{
		Version: FormatVersion,
		Clock:   clock,
		Symbols: make(map[string]jsonDefinition, len(symbols)),
	}
	for name, d := range symbols {
		snapshot.Symbols[name] = encodeDefinition(d)
	}
	return json.Marshal(snapshot)
}

// DecodeNamespace deserializes a versioned envelope back into a
// namespace mapping, returning the clock position it was taken at.
// A version mismatch is an error, never a guess.
func DecodeNamespace(data []byte) (map[string]*defs.Definition, int64, error) {
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, 0, fmt.Errorf("decode snapshot envelope: %w", err)
	}
	if snapshot.Version != FormatVersion {
		return nil, 0, fmt.Errorf("snapshot format version %d not supported (this build reads version %d)",
			snapshot.Version, FormatVersion)
	}
	symbols := make(map[string]*defs.Definition, len(snapshot.Symbols))
	for name, j := range snapshot.Symbols {
		d, err := decodeDefinition(j)
		if err != nil {
			return nil, 0, err
		}
		symbols[name] = d
	}
	return symbols, snapshot.Clock, nil
}

// ExportUser encodes a table's user namespace as a text-safe blob
// suitable for transport or storage alongside non-binary session data.
func ExportUser(ds *defs.Definitions) (string, error) {
	data, err := EncodeNamespace(ds.UserDefinitions(), ds.Now())
	if err != nil {
		return "", fmt.Errorf("encode user definitions: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// ImportUser replaces a table's user namespace from an exported blob.
// An empty blob clears the namespace. All caches are dropped by the
// replacement.
func ImportUser(ds *defs.Definitions, blob string) error {
	if blob == "" {
		ds.SetUserDefinitions(nil)
		return nil
	}
	data, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return fmt.Errorf("decode user definitions blob: %w", err)
	}
	symbols, _, err := DecodeNamespace(data)
	if err != nil {
		return fmt.Errorf("decode user definitions: %w", err)
	}
	ds.SetUserDefinitions(symbols)
	return nil
}
