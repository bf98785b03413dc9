package codec

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbelos-lang/arbelos/internal/defs"
	"github.com/arbelos-lang/arbelos/internal/expr"
	"github.com/arbelos-lang/arbelos/internal/rules"
)

func sampleDefinition(t *testing.T) *defs.Definition {
	t.Helper()
	d := defs.NewDefinition("Global`f")
	d.Attributes = defs.HoldAll | defs.Protected
	d.IsNumeric = true
	d.Builtin = "core"
	d.Changed = 17

	pattern := expr.Apply("Global`f",
		expr.Apply(expr.NamePattern, expr.Symbol("Global`x"), expr.Apply(expr.NameBlank)))
	require.True(t, d.AddRule(rules.New(pattern, expr.Symbol("Global`x"))))
	d.AddRuleAt(rules.New(expr.Apply("Global`f", expr.Integer(0)), expr.String("zero")), rules.Messages)
	d.AddFormat(rules.New(expr.Apply("Global`f", expr.Integer(1)), expr.String("tex")), "TeXForm")
	d.Options["Global`Tolerance"] = expr.Integer(10)
	return d
}

func TestNamespace_RoundTrip(t *testing.T) {
	original := map[string]*defs.Definition{"Global`f": sampleDefinition(t)}

	data, err := EncodeNamespace(original, 42)
	require.NoError(t, err)

	decoded, clock, err := DecodeNamespace(data)
	require.NoError(t, err)
	assert.Equal(t, int64(42), clock)
	require.Contains(t, decoded, "Global`f")

	d := decoded["Global`f"]
	assert.Equal(t, "Global`f", d.Name)
	assert.Equal(t, defs.HoldAll|defs.Protected, d.Attributes)
	assert.True(t, d.IsNumeric)
	assert.Equal(t, "core", d.Builtin)
	assert.Equal(t, int64(17), d.Changed)

	down := d.Values(rules.DownValues)
	require.Len(t, down, 1)
	assert.True(t, down[0].Pattern.SameQ(original["Global`f"].Values(rules.DownValues)[0].Pattern))
	assert.Equal(t, original["Global`f"].Values(rules.DownValues)[0].Order, down[0].Order,
		"explicit order survives instead of being rescored")

	require.Len(t, d.Values(rules.Messages), 1)
	require.Len(t, d.Formats["TeXForm"], 1)
	require.Contains(t, d.Options, "Global`Tolerance")
	assert.True(t, d.Options["Global`Tolerance"].SameQ(expr.Integer(10)))
}

func TestNamespace_EmptyListsElided(t *testing.T) {
	d := defs.NewDefinition("Global`g")
	data, err := EncodeNamespace(map[string]*defs.Definition{"Global`g": d}, 0)
	require.NoError(t, err)

	var snapshot Snapshot
	require.NoError(t, json.Unmarshal(data, &snapshot))
	encoded := snapshot.Symbols["Global`g"]
	assert.Nil(t, encoded.Lists, "empty categories stay off the wire")
	assert.Nil(t, encoded.Formats)
	assert.Nil(t, encoded.Options)
}

func TestDecodeNamespace_VersionMismatch(t *testing.T) {
	data, err := EncodeNamespace(map[string]*defs.Definition{}, 0)
	require.NoError(t, err)

	var snapshot map[string]any
	require.NoError(t, json.Unmarshal(data, &snapshot))
	snapshot["version"] = FormatVersion + 1
	tampered, err := json.Marshal(snapshot)
	require.NoError(t, err)

	_, _, err = DecodeNamespace(tampered)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}

func TestDecodeNamespace_UnknownCategory(t *testing.T) {
	payload := []byte("{\"version\":1,\"clock\":0,\"symbols\":{\"Global`f\":{\"name\":\"Global`f\",\"lists\":{\"bogus\":[]}}}}")
	_, _, err := DecodeNamespace(payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category")
}

func TestDecodeNamespace_UnknownKind(t *testing.T) {
	d := defs.NewDefinition("Global`f")
	d.Options["k"] = expr.Integer(1)
	data, err := EncodeNamespace(map[string]*defs.Definition{"Global`f": d}, 0)
	require.NoError(t, err)

	tampered := strings.Replace(string(data), `"kind":"integer"`, `"kind":"float"`, 1)
	_, _, err = DecodeNamespace([]byte(tampered))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown expression kind")
}

func TestExportImportUser_RoundTrip(t *testing.T) {
	ds := defs.New()
	pattern := expr.Apply("Global`f", expr.Apply(expr.NameBlank))
	ds.AddRule("Global`f", rules.New(pattern, expr.Integer(1)))
	ds.SetAttribute("Global`f", defs.Listable)

	blob, err := ExportUser(ds)
	require.NoError(t, err)
	require.NotEmpty(t, blob)

	restored := defs.New()
	require.NoError(t, ImportUser(restored, blob))
	assert.Len(t, restored.DownValues("Global`f"), 1)
	assert.True(t, restored.Attributes("Global`f").Has(defs.Listable))
}

func TestImportUser_EmptyBlobClears(t *testing.T) {
	ds := defs.New()
	ds.AddRule("Global`f", rules.New(expr.Apply("Global`f", expr.Apply(expr.NameBlank)), expr.Integer(1)))

	require.NoError(t, ImportUser(ds, ""))
	assert.Empty(t, ds.UserNames())
}

func TestImportUser_BadBase64(t *testing.T) {
	ds := defs.New()
	err := ImportUser(ds, "not-base64!!!")
	require.Error(t, err)
}
