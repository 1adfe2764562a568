package engine

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/piwi3910/ShapePacker/internal/model"
)

// leftBias is the chance that uniform crossover takes the parent placement
// lying further left instead of a coin flip.
const leftBias = 0.7

// localSearchPasses caps the passes of LocalSearchMutation.
const localSearchPasses = 3

// Crossover combines two parents into one child.
type Crossover interface {
	Name() string
	Crossover(rng *rand.Rand, parent1, parent2 *Individual, dims model.Dims, cfg Config) (*Individual, error)
}

// Mutation derives a new individual from an existing one.
type Mutation interface {
	Name() string
	Mutate(rng *rand.Rand, ind *Individual, dims model.Dims, cfg Config) (*Individual, error)
}

// UniformCrossover picks each shape's placement from one of the parents,
// usually the one further left, then repairs collisions from left to right.
type UniformCrossover struct{}

func (UniformCrossover) Name() string { return "uniform" }

func (UniformCrossover) Crossover(rng *rand.Rand, parent1, parent2 *Individual, dims model.Dims, cfg Config) (*Individual, error) {
	if len(parent1.placements) != len(parent2.placements) {
		return nil, fmt.Errorf("parents place %d and %d shapes", len(parent1.placements), len(parent2.placements))
	}
	byID := make(map[int]model.Placement, len(parent2.placements))
	for _, p := range parent2.placements {
		byID[p.ShapeID()] = p
	}

	candidates := make([]model.Placement, 0, len(parent1.placements))
	for _, p1 := range parent1.placements {
		p2, ok := byID[p1.ShapeID()]
		if !ok {
			return nil, fmt.Errorf("shape %d missing from second parent", p1.ShapeID())
		}
		switch {
		case rng.Float64() < leftBias:
			if p1.Position.Col <= p2.Position.Col {
				candidates = append(candidates, p1)
			} else {
				candidates = append(candidates, p2)
			}
		case rng.Intn(2) == 0:
			candidates = append(candidates, p1)
		default:
			candidates = append(candidates, p2)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Position.Col < candidates[j].Position.Col
	})

	repaired, err := repair(rng, candidates, dims, cfg)
	if err != nil {
		return nil, err
	}
	return NewIndividual(repaired, dims), nil
}

// repair lays the candidates down in order. A candidate that no longer fits
// is re-placed greedily, then randomly; when both fail the whole repair
// starts again with the candidates shuffled.
func repair(rng *rand.Rand, candidates []model.Placement, dims model.Dims, cfg Config) ([]model.Placement, error) {
	order := append([]model.Placement(nil), candidates...)
	for restart := 0; restart < cfg.MaxRestarts; restart++ {
		if restart > 0 {
			rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		}

		board := model.NewBoard(dims.Width, dims.Height)
		repaired := make([]model.Placement, 0, len(order))
		complete := true
		for _, p := range order {
			if !board.CanPlace(p) {
				var ok bool
				if p, ok = replace(rng, p.Shape, board, cfg); !ok {
					complete = false
					break
				}
			}
			board.Place(p)
			repaired = append(repaired, p)
		}
		if complete {
			return repaired, nil
		}
	}
	return nil, fmt.Errorf("%w: repair failed after %d restarts", ErrPackingInfeasible, cfg.MaxRestarts)
}

// RandomReplaceMutation re-places a MutationRate share of the placements
// (at least one) on a board holding the rest.
type RandomReplaceMutation struct{}

func (RandomReplaceMutation) Name() string { return "random-replace" }

func (RandomReplaceMutation) Mutate(rng *rand.Rand, ind *Individual, dims model.Dims, cfg Config) (*Individual, error) {
	if len(ind.placements) == 0 {
		return NewIndividual(nil, dims), nil
	}
	count := max(1, int(math.Floor(float64(len(ind.placements))*cfg.MutationRate)))
	placements := append([]model.Placement(nil), ind.placements...)

	for restart := 0; restart < cfg.MaxRestarts; restart++ {
		rng.Shuffle(len(placements), func(i, j int) { placements[i], placements[j] = placements[j], placements[i] })
		mutate, keep := placements[:count], placements[count:]

		board := model.NewBoard(dims.Width, dims.Height)
		for _, p := range keep {
			board.Place(p)
		}

		result := append(make([]model.Placement, 0, len(placements)), keep...)
		complete := true
		for _, old := range mutate {
			p, ok := replace(rng, old.Shape, board, cfg)
			if !ok {
				if !board.CanPlace(old) {
					complete = false
					break
				}
				p = old
			}
			board.Place(p)
			result = append(result, p)
		}
		if complete {
			return NewIndividual(result, dims), nil
		}
	}
	return nil, fmt.Errorf("%w: mutation failed after %d restarts", ErrPackingInfeasible, cfg.MaxRestarts)
}

// LocalSearchMutation is a short hill climb: every shape in turn is moved to
// the leftmost free spot left of where it is, for up to three passes or until
// a pass changes nothing.
type LocalSearchMutation struct{}

func (LocalSearchMutation) Name() string { return "local-search" }

func (LocalSearchMutation) Mutate(rng *rand.Rand, ind *Individual, dims model.Dims, _ Config) (*Individual, error) {
	placements := append([]model.Placement(nil), ind.placements...)

	improved := true
	for pass := 0; improved && pass < localSearchPasses; pass++ {
		improved = false
		rng.Shuffle(len(placements), func(i, j int) { placements[i], placements[j] = placements[j], placements[i] })

		for i, current := range placements {
			board := model.NewBoard(dims.Width, dims.Height)
			for j, p := range placements {
				if j != i {
					board.Place(p)
				}
			}
			if better, ok := moveLeft(current, board); ok {
				placements[i] = better
				improved = true
			}
		}
	}
	return NewIndividual(placements, dims), nil
}
