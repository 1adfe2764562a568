package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pool returns individuals with fitness 9, 5, 7, 1 on a 10-wide board.
func fitnessPool(t *testing.T) []*Individual {
	t.Helper()
	return []*Individual{
		monomino(t, 0, 0, 10),
		monomino(t, 1, 4, 10),
		monomino(t, 2, 2, 10),
		monomino(t, 3, 8, 10),
	}
}

func TestTruncationSelection_Boundaries(t *testing.T) {
	pool := fitnessPool(t)
	rng := rand.New(rand.NewSource(1))

	all, err := TruncationSelection{}.Select(rng, pool, len(pool))
	require.NoError(t, err)
	assert.ElementsMatch(t, pool, all)

	one, err := TruncationSelection{}.Select(rng, pool, 1)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Same(t, pool[0], one[0])

	top, err := TruncationSelection{}.Select(rng, pool, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{9, 7}, []float64{top[0].Fitness(), top[1].Fitness()})
}

func TestTruncationSelection_StableTies(t *testing.T) {
	a := monomino(t, 0, 3, 10)
	b := monomino(t, 1, 3, 10)
	out, err := TruncationSelection{}.Select(nil, []*Individual{a, b}, 1)
	require.NoError(t, err)
	assert.Same(t, a, out[0])
}

func TestTournamentSelection_FullTournamentPicksFittest(t *testing.T) {
	pool := fitnessPool(t)
	sel := TournamentSelection{K: len(pool), WithReplacement: true}
	out, err := sel.Select(rand.New(rand.NewSource(5)), pool, 6)
	require.NoError(t, err)
	require.Len(t, out, 6)
	for _, ind := range out {
		assert.Same(t, pool[0], ind)
	}
}

func TestTournamentSelection_WithoutReplacement(t *testing.T) {
	pool := fitnessPool(t)
	sel := TournamentSelection{K: 2}
	assert.Equal(t, SelectionTournamentUnique, sel.Name())

	out, err := sel.Select(rand.New(rand.NewSource(2)), pool, len(pool))
	require.NoError(t, err)
	assert.ElementsMatch(t, pool, out)

	_, err = sel.Select(rand.New(rand.NewSource(2)), pool, len(pool)+1)
	assert.Error(t, err)
}

func TestTournamentSelection_InvalidSize(t *testing.T) {
	_, err := TournamentSelection{K: 0, WithReplacement: true}.Select(rand.New(rand.NewSource(1)), fitnessPool(t), 1)
	assert.Error(t, err)
}

func TestFitnessProportionalSelection(t *testing.T) {
	zero := monomino(t, 0, 9, 10)
	fit := monomino(t, 1, 0, 10)
	out, err := FitnessProportionalSelection{}.Select(rand.New(rand.NewSource(4)), []*Individual{zero, fit}, 50)
	require.NoError(t, err)
	for _, ind := range out {
		assert.Same(t, fit, ind, "zero fitness is never drawn while others are positive")
	}
}

func TestFitnessProportionalSelection_AllZeroFallsBackToUniform(t *testing.T) {
	pool := []*Individual{monomino(t, 0, 9, 10), monomino(t, 1, 9, 10)}
	out, err := FitnessProportionalSelection{}.Select(rand.New(rand.NewSource(4)), pool, 5)
	require.NoError(t, err)
	assert.Len(t, out, 5)
}

func TestFitnessProportionalSelection_NegativeFitness(t *testing.T) {
	negative := monomino(t, 0, 4, 3) // placed beyond a 3-wide board
	_, err := FitnessProportionalSelection{}.Select(rand.New(rand.NewSource(1)), []*Individual{negative}, 1)
	assert.Error(t, err)
}

func TestRandomSelection(t *testing.T) {
	pool := fitnessPool(t)
	out, err := RandomSelection{}.Select(rand.New(rand.NewSource(9)), pool, 10)
	require.NoError(t, err)
	require.Len(t, out, 10)
	for _, ind := range out {
		assert.Contains(t, pool, ind)
	}

	_, err = RandomSelection{}.Select(rand.New(rand.NewSource(9)), nil, 1)
	assert.ErrorIs(t, err, ErrEmptyPopulation)
}

func TestNewSelector(t *testing.T) {
	for _, name := range []string{
		SelectionTournament, SelectionTournamentUnique, SelectionTruncation,
		SelectionProportional, SelectionRandom,
	} {
		s, err := NewSelector(name, 3)
		require.NoError(t, err, name)
		assert.Equal(t, name, s.Name())
	}

	_, err := NewSelector("lottery", 3)
	assert.Error(t, err)
}

func TestSelectors_RejectEmptyPoolAndNegativeCount(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	selectors := []Selector{
		TournamentSelection{K: 2, WithReplacement: true},
		TournamentSelection{K: 2},
		TruncationSelection{},
		FitnessProportionalSelection{},
		RandomSelection{},
	}
	for _, s := range selectors {
		_, err := s.Select(rng, nil, 3)
		assert.ErrorIs(t, err, ErrEmptyPopulation, s.Name())

		_, err = s.Select(rng, fitnessPool(t), -1)
		assert.Error(t, err, s.Name())

		out, err := s.Select(rng, nil, 0)
		require.NoError(t, err, s.Name())
		assert.Empty(t, out, s.Name())
	}
}
