package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/ShapePacker/internal/termination"
)

func TestBuildDefaultScenarios(t *testing.T) {
	base := testConfig(1)
	scenarios := BuildDefaultScenarios(base)

	require.NotEmpty(t, scenarios)
	assert.Equal(t, "Current Settings", scenarios[0].Name)
	assert.Equal(t, base, scenarios[0].Config)

	names := make([]string, len(scenarios))
	for i, s := range scenarios {
		names[i] = s.Name
		assert.NoError(t, s.Config.Validate(), s.Name)
	}
	assert.Contains(t, names, "Parent Selection proportional")
	assert.Contains(t, names, "Lambda 16 (double)")
	assert.Contains(t, names, "Mutation 0.10")
	assert.Contains(t, names, "No Local Search")
}

func TestBuildDefaultScenarios_SkipsNoOps(t *testing.T) {
	base := testConfig(1)
	base.LocalSearchRate = 0
	base.MutationRate = 1
	for _, s := range BuildDefaultScenarios(base) {
		assert.NotEqual(t, "No Local Search", s.Name)
		assert.NotContains(t, s.Name, "Mutation")
	}
}

func TestCompareScenarios(t *testing.T) {
	problem := testProblem(t)
	bad := testConfig(1)
	bad.Mu = 0
	scenarios := []Scenario{
		{Name: "base", Config: testConfig(1)},
		{Name: "broken", Config: bad},
	}

	results := CompareScenarios(problem, scenarios, func() []termination.Condition {
		return []termination.Condition{termination.NewNumberOfGenerations(3)}
	})
	require.Len(t, results, 2)

	ok := results[0]
	require.NoError(t, ok.Err)
	assert.Equal(t, "base", ok.Scenario.Name)
	assert.Equal(t, 3, ok.Generations)
	assert.Equal(t, ok.Best.Fitness(), ok.BestFitness)
	assert.NotEmpty(t, ok.RunID)

	assert.ErrorIs(t, results[1].Err, ErrInvalidConfig)
	assert.Nil(t, results[1].Best)
}
