package engine

import (
	"fmt"
	"time"

	"github.com/piwi3910/ShapePacker/internal/model"
	"github.com/piwi3910/ShapePacker/internal/termination"
)

// Scenario is a named configuration to compare.
type Scenario struct {
	Name   string
	Config Config
}

// ComparisonResult holds the outcome of one scenario. Err is set when the
// scenario could not be run; the other fields are then zero.
type ComparisonResult struct {
	Scenario    Scenario
	Best        *Individual
	BestFitness float64
	Generations int
	Evaluations int
	Elapsed     time.Duration
	RunID       string
	Err         error
}

// CompareScenarios runs one search per scenario on the same problem and
// returns the results in scenario order. conditions is called once per
// scenario because conditions keep state; nil uses each config's defaults.
func CompareScenarios(problem model.Problem, scenarios []Scenario, conditions func() []termination.Condition, opts ...Option) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		result := ComparisonResult{Scenario: scenario}

		packer, err := New(problem.Shapes, problem.Dims, scenario.Config, opts...)
		if err != nil {
			result.Err = err
			results = append(results, result)
			continue
		}
		result.RunID = packer.RunID()

		var conds []termination.Condition
		if conditions != nil {
			conds = conditions()
		}

		start := time.Now()
		best, err := packer.Search(conds...)
		result.Elapsed = time.Since(start)
		if err != nil {
			result.Err = err
			results = append(results, result)
			continue
		}

		result.Best = best
		result.BestFitness = best.Fitness()
		result.Generations = packer.Generation()
		result.Evaluations = packer.Evaluations()
		results = append(results, result)
	}

	return results
}

// BuildDefaultScenarios derives what-if variations of base: the other
// parent selection strategies, a doubled offspring count, a doubled
// mutation rate and a run without local search.
func BuildDefaultScenarios(base Config) []Scenario {
	scenarios := []Scenario{
		{Name: "Current Settings", Config: base},
	}

	parent := base.ParentSelection
	if parent == "" {
		parent = SelectionTournament
	}
	for _, name := range []string{SelectionTournament, SelectionProportional} {
		if name == parent {
			continue
		}
		alt := base
		alt.ParentSelection = name
		scenarios = append(scenarios, Scenario{
			Name:   fmt.Sprintf("Parent Selection %s", name),
			Config: alt,
		})
	}

	moreOffspring := base
	moreOffspring.Lambda = base.Lambda * 2
	scenarios = append(scenarios, Scenario{
		Name:   fmt.Sprintf("Lambda %d (double)", moreOffspring.Lambda),
		Config: moreOffspring,
	})

	if base.MutationRate < 1 {
		hotter := base
		hotter.MutationRate = min(1, base.MutationRate*2)
		if hotter.MutationRate == 0 {
			hotter.MutationRate = 0.1
		}
		scenarios = append(scenarios, Scenario{
			Name:   fmt.Sprintf("Mutation %.2f", hotter.MutationRate),
			Config: hotter,
		})
	}

	if base.LocalSearchRate > 0 {
		noLocal := base
		noLocal.LocalSearchRate = 0
		scenarios = append(scenarios, Scenario{
			Name:   "No Local Search",
			Config: noLocal,
		})
	}

	return scenarios
}
