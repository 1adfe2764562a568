package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/ShapePacker/internal/model"
)

func TestIndividualFitness_Empty(t *testing.T) {
	ind := NewIndividual(nil, model.Dims{Width: 7, Height: 3})
	assert.Equal(t, 7.0, ind.Fitness())
}

func TestIndividualFitness_RightmostColumn(t *testing.T) {
	s := mustShape(t, "R2", 0)
	p := model.NewPlacement(s, model.Point{Row: 1, Col: 3}, 0) // covers cols 3..5
	ind := NewIndividual([]model.Placement{p}, model.Dims{Width: 10, Height: 3})
	assert.Equal(t, 4.0, ind.Fitness())
}

func TestRandomIndividual_SingleCellOnFiveByFive(t *testing.T) {
	s := mustShape(t, "D0", 0)
	dims := model.Dims{Width: 5, Height: 5}
	cfg := DefaultConfig()

	for seed := int64(0); seed < 25; seed++ {
		ind, err := RandomIndividual(rand.New(rand.NewSource(seed)), []*model.Shape{s}, dims, cfg)
		require.NoError(t, err)
		require.NoError(t, ind.Validate([]*model.Shape{s}))

		p, ok := ind.Placement(0)
		require.True(t, ok)
		assert.Equal(t, float64(5-p.Position.Col-1), ind.Fitness())
		assert.GreaterOrEqual(t, ind.Fitness(), 0.0)
		assert.LessOrEqual(t, ind.Fitness(), 5.0)
	}
}

func TestRandomIndividual_ValidPackings(t *testing.T) {
	problem := testProblem(t)
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 20; i++ {
		ind, err := RandomIndividual(rng, problem.Shapes, problem.Dims, DefaultConfig())
		require.NoError(t, err)
		assert.NoError(t, ind.Validate(problem.Shapes))
		assert.Equal(t, len(problem.Shapes), ind.Len())
	}
}

func TestRandomIndividual_InfeasibleBoard(t *testing.T) {
	// Two straight trominoes cannot share a 3x1 board.
	shapes := []*model.Shape{mustShape(t, "R2", 0), mustShape(t, "R2", 1)}
	cfg := DefaultConfig()
	cfg.MaxRestarts = 5

	_, err := RandomIndividual(rand.New(rand.NewSource(1)), shapes, model.Dims{Width: 3, Height: 1}, cfg)
	assert.ErrorIs(t, err, ErrPackingInfeasible)
}

func TestIndividualValidate_Errors(t *testing.T) {
	a := mustShape(t, "D0", 0)
	b := mustShape(t, "D0", 1)
	dims := model.Dims{Width: 3, Height: 1}
	at := func(s *model.Shape, col int) model.Placement {
		return model.NewPlacement(s, model.Point{Col: col}, 0)
	}
	shapes := []*model.Shape{a, b}

	assert.NoError(t, NewIndividual([]model.Placement{at(a, 0), at(b, 1)}, dims).Validate(shapes))
	assert.ErrorIs(t, NewIndividual([]model.Placement{at(a, 0), at(b, 0)}, dims).Validate(shapes), model.ErrCellOccupied)
	assert.ErrorIs(t, NewIndividual([]model.Placement{at(a, 0), at(b, 5)}, dims).Validate(shapes), model.ErrOutOfBounds)
	assert.Error(t, NewIndividual([]model.Placement{at(a, 0)}, dims).Validate(shapes), "missing shape")
	assert.Error(t, NewIndividual([]model.Placement{at(a, 0), at(a, 1)}, dims).Validate(shapes), "duplicate shape")
}

func TestIndividual_SortedPlacementsAndCopy(t *testing.T) {
	a := mustShape(t, "D0", 0)
	b := mustShape(t, "D0", 1)
	ind := NewIndividual([]model.Placement{
		model.NewPlacement(b, model.Point{Col: 0}, 0),
		model.NewPlacement(a, model.Point{Col: 1}, 0),
	}, model.Dims{Width: 2, Height: 1})

	sorted := ind.SortedPlacements()
	assert.Equal(t, 0, sorted[0].ShapeID())
	assert.Equal(t, 1, sorted[1].ShapeID())

	placements := ind.Placements()
	placements[0] = sorted[1]
	first, _ := ind.Placement(1)
	assert.Equal(t, 0, first.Position.Col, "Placements must return a copy")

	_, ok := ind.Placement(9)
	assert.False(t, ok)
	assert.Equal(t, 2, ind.Board().OccupiedCount())
}
