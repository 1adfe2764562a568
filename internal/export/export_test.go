package export

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/piwi3910/ShapePacker/internal/engine"
	"github.com/piwi3910/ShapePacker/internal/model"
)

// buildTestSolution packs a domino, a vertical domino and a monomino into
// the two leftmost columns of a 5x3 board. Placements are stored out of id
// order on purpose.
func buildTestSolution(t *testing.T) *engine.Individual {
	t.Helper()
	shape := func(text string, id int) *model.Shape {
		s, err := model.ParseShape(text, id)
		require.NoError(t, err)
		return s
	}
	placements := []model.Placement{
		model.NewPlacement(shape("D0", 2), model.Point{Row: 1, Col: 1}, 0),
		model.NewPlacement(shape("R1", 0), model.Point{Row: 0, Col: 0}, 0),
		model.NewPlacement(shape("U1", 1), model.Point{Row: 1, Col: 0}, 0),
	}
	return engine.NewIndividual(placements, model.Dims{Width: 5, Height: 3})
}

// buildManyShapes lines up n monominoes in a single row.
func buildManyShapes(t *testing.T, n int) *engine.Individual {
	t.Helper()
	placements := make([]model.Placement, n)
	for i := range placements {
		s, err := model.ParseShape("D0", i)
		require.NoError(t, err)
		placements[i] = model.NewPlacement(s, model.Point{Col: i}, 0)
	}
	return engine.NewIndividual(placements, model.Dims{Width: n, Height: 1})
}

func buildTestHistory() []engine.GenerationStats {
	return []engine.GenerationStats{
		{Generation: 0, Best: 1, Average: 0.4, BestEver: 1, Evaluations: 10},
		{Generation: 1, Best: 2, Average: 1.1, BestEver: 2, Evaluations: 15},
		{Generation: 2, Best: 2, Average: 1.6, BestEver: 2, Evaluations: 20},
		{Generation: 3, Best: 3, Average: 2.2, BestEver: 3, Evaluations: 25},
	}
}

func requireFile(t *testing.T, path string, minSize int64) []byte {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err, "file was not created")
	require.GreaterOrEqual(t, info.Size(), minSize, "file seems too small")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}
