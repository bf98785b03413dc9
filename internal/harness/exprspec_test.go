package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/arbelos-lang/arbelos/internal/defs"
	"github.com/arbelos-lang/arbelos/internal/expr"
)

// exprSpecFromYAML parses a YAML fragment into an ExprSpec.
func exprSpecFromYAML(t *testing.T, src string) *ExprSpec {
	t.Helper()
	var spec ExprSpec
	require.NoError(t, yaml.Unmarshal([]byte(src), &spec))
	return &spec
}

func TestExprSpec_Build_Scalars(t *testing.T) {
	ds := defs.New()

	e, err := exprSpecFromYAML(t, "42").Build(ds)
	require.NoError(t, err)
	assert.Equal(t, expr.Integer(42), e)

	e, err = exprSpecFromYAML(t, "f").Build(ds)
	require.NoError(t, err)
	assert.Equal(t, expr.Symbol("Global`f"), e, "short names resolve through the table")

	e, err = exprSpecFromYAML(t, "System`Plus").Build(ds)
	require.NoError(t, err)
	assert.Equal(t, expr.Symbol("System`Plus"), e)
}

func TestExprSpec_Build_MappingKinds(t *testing.T) {
	ds := defs.New()

	e, err := exprSpecFromYAML(t, `{symbol: "MyPkg`+"`"+`x"}`).Build(ds)
	require.NoError(t, err)
	assert.Equal(t, expr.Symbol("MyPkg`x"), e)

	e, err = exprSpecFromYAML(t, `{string: "42"}`).Build(ds)
	require.NoError(t, err)
	assert.Equal(t, expr.String("42"), e, "explicit string stays a string")

	e, err = exprSpecFromYAML(t, `{int: -7}`).Build(ds)
	require.NoError(t, err)
	assert.Equal(t, expr.Integer(-7), e)
}

func TestExprSpec_Build_NestedHeads(t *testing.T) {
	ds := defs.New()

	spec := exprSpecFromYAML(t, "\nhead: f\nargs:\n  - head: \"System`Pattern\"\n    args: [\"x\", {head: \"System`Blank\"}]\n  - 2\n")
	e, err := spec.Build(ds)
	require.NoError(t, err)

	normal, ok := e.(*expr.Normal)
	require.True(t, ok)
	assert.Equal(t, "Global`f[System`Pattern[Global`x, System`Blank[]], 2]", normal.String())
}

func TestExprSpec_Build_CurriedHead(t *testing.T) {
	ds := defs.New()

	spec := exprSpecFromYAML(t, `
head:
  head: deriv
  args: [1]
args: [g]
`)
	e, err := spec.Build(ds)
	require.NoError(t, err)
	assert.Equal(t, "Global`deriv", e.LookupName(), "lookup name comes from the innermost head")
}

func TestExprSpec_Build_ResolvesAtBuildTime(t *testing.T) {
	ds := defs.New()
	spec := exprSpecFromYAML(t, "x")

	require.NoError(t, ds.SetCurrentContext("MyPkg`"))

	e, err := spec.Build(ds)
	require.NoError(t, err)
	assert.Equal(t, expr.Symbol("MyPkg`x"), e, "resolution uses context at build time, not parse time")
}

func TestExprSpec_Build_Errors(t *testing.T) {
	ds := defs.New()

	cases := []struct {
		name string
		src  string
		want string
	}{
		{"sequence", "[1, 2]", "scalar or mapping"},
		{"empty symbol", `""`, "empty symbol name"},
		{"unknown key", "{frobnicate: 1}", "unknown expression key"},
		{"mapping without head", "{args: [1]}", "needs symbol, string, int, or head"},
		{"args not a sequence", "{head: f, args: 3}", "args must be a sequence"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := exprSpecFromYAML(t, tc.src).Build(ds)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestExprSpec_Build_Missing(t *testing.T) {
	var spec ExprSpec
	assert.True(t, spec.IsZero())

	_, err := spec.Build(defs.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing expression")
}
