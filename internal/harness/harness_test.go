package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarios runs every scenario under testdata/scenarios and compares
// dump output against the golden files.
func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths, "no scenario files found")

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".yaml")
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err, "scenario should load")

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err, "scenario should run")
			assert.True(t, result.Passed, "failures: %v", result.Failures)
		})
	}
}

func TestRun_FreshTablePerRun(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "session-basics.yaml"))
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, first.Passed)
	assert.True(t, second.Passed)
	assert.NotSame(t, first.Table, second.Table, "each run should build its own table")

	// Rule counts must not accumulate across runs.
	assert.Len(t, second.Table.DownValues("Global`f"), 1)
}

func TestRun_StepExpectationFailure(t *testing.T) {
	scenario := &Scenario{
		Name:        "category-mismatch",
		Description: "a wrong category expectation is reported, not fatal",
		Steps: []Step{
			{AddRule: &RuleStep{
				Pattern:     *exprSpecFromYAML(t, "f"),
				Replacement: *exprSpecFromYAML(t, "1"),
				Category:    "down",
			}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err, "expectation mismatches are not run errors")
	assert.False(t, result.Passed)
	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures[0], "expected category down")
}
