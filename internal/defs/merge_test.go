package defs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbelos-lang/arbelos/internal/expr"
	"github.com/arbelos-lang/arbelos/internal/rules"
)

func TestMerge_UserRulesPrecedeBuiltin(t *testing.T) {
	ds := New()
	builtin := NewDefinition("System`Plus")
	builtinRule := rules.New(expr.Apply("System`Plus", blank()), expr.Integer(1))
	builtin.AddRule(builtinRule)
	ds.SetBuiltinDefinition("System`Plus", builtin)

	userRule := rules.New(expr.Apply("System`Plus", blank(), blank()), expr.Integer(2))
	ds.AddRule("System`Plus", userRule)

	down := ds.DownValues("System`Plus")
	require.Len(t, down, 2)
	assert.Same(t, userRule, down[0], "user rules are consulted before builtin rules")
	assert.Same(t, builtinRule, down[1])
}

func TestMerge_AttributesFromHighestPriority(t *testing.T) {
	ds := New()
	installBuiltin(ds, "System`Plus", Flat|Orderless|Protected)

	// The user record's attribute set wins wholesale once it exists.
	ds.SetAttributes("System`Plus", HoldAll)
	assert.Equal(t, HoldAll, ds.Attributes("System`Plus"))
}

func TestMerge_OptionsFoldHigherPriorityWins(t *testing.T) {
	ds := New()
	builtin := NewDefinition("System`Solve")
	builtin.Options["System`Assumptions"] = expr.Symbol("System`True")
	builtin.Options["System`Method"] = expr.String("auto")
	ds.SetBuiltinDefinition("System`Solve", builtin)

	ds.SetOptions("System`Solve", map[string]expr.Expr{
		"System`Method": expr.String("custom"),
	})

	options := ds.Options("System`Solve")
	require.Len(t, options, 2, "keys union across namespaces")
	assert.True(t, options["System`Method"].SameQ(expr.String("custom")), "user value shadows builtin")
	assert.True(t, options["System`Assumptions"].SameQ(expr.Symbol("System`True")))
}

func TestMerge_PluginBetweenUserAndBuiltin(t *testing.T) {
	ds := New()
	builtin := NewDefinition("Ext`f")
	builtinRule := rules.New(expr.Apply("Ext`f", blank()), expr.Integer(1))
	builtin.AddRule(builtinRule)
	builtin.Builtin = "core"
	ds.SetBuiltinDefinition("Ext`f", builtin)

	plugin := NewDefinition("Ext`f")
	pluginRule := rules.New(expr.Apply("Ext`f", blank(), blank()), expr.Integer(2))
	plugin.AddRule(pluginRule)
	plugin.Builtin = "ext-module"
	ds.SetPluginDefinition("Ext`f", plugin)

	userRule := rules.New(expr.Apply("Ext`f", expr.Integer(0)), expr.Integer(3))
	ds.AddRule("Ext`f", userRule)

	down := ds.DownValues("Ext`f")
	require.Len(t, down, 3)
	assert.Same(t, userRule, down[0])
	assert.Same(t, pluginRule, down[1])
	assert.Same(t, builtinRule, down[2])

	def := ds.GetDefinition("Ext`f")
	assert.Equal(t, "ext-module", def.Builtin, "plugin back-reference wins over builtin")
}

func TestMerge_SynthesizedViewIsFresh(t *testing.T) {
	ds := New()
	builtin := installBuiltin(ds, "System`Plus", Flat)
	ds.UserDefinition("System`Plus", true)

	merged := ds.GetDefinition("System`Plus")
	assert.NotSame(t, builtin, merged)
	assert.NotSame(t, ds.UserDefinitions()["System`Plus"], merged)

	// Mutating the merged view must not leak into the namespaces.
	merged.Attributes |= Locked
	assert.False(t, builtin.Attributes.Has(Locked))
}

func TestMerge_FormatBucketsMergePerForm(t *testing.T) {
	ds := New()
	builtin := NewDefinition("System`Plus")
	builtinFormat := rules.New(expr.Apply("System`Plus", blank()), expr.String("b"))
	builtin.AddFormat(builtinFormat, "TeXForm")
	ds.SetBuiltinDefinition("System`Plus", builtin)

	userFormat := rules.New(expr.Apply("System`Plus", blank(), blank()), expr.String("u"))
	ds.AddFormat("System`Plus", userFormat, "TeXForm")

	tex := ds.Formats("System`Plus", "TeXForm")
	require.Len(t, tex, 2)
}

func TestMerge_UserRuleBeatsBuiltinOfSamePrecedence(t *testing.T) {
	ds := New()
	builtin := NewDefinition("System`f")
	pattern := expr.Apply("System`f", blank())
	builtin.AddRule(rules.New(pattern, expr.Integer(1)))
	ds.SetBuiltinDefinition("System`f", builtin)

	// Same pattern shape, same genericity score: concatenation order
	// puts the user rule first, so it wins dispatch.
	ds.AddRule("System`f", rules.New(expr.Apply("System`f", blank()), expr.Integer(2)))

	down := ds.DownValues("System`f")
	require.Len(t, down, 2)
	assert.True(t, down[0].Replacement.SameQ(expr.Integer(2)))
}
