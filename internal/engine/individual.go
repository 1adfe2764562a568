package engine

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/piwi3910/ShapePacker/internal/model"
)

// Individual is one complete candidate packing: exactly one placement per
// shape. Individuals are never modified after creation; operators always
// build new ones.
type Individual struct {
	placements []model.Placement
	dims       model.Dims

	fitnessOnce sync.Once
	fitness     float64
}

// NewIndividual wraps placements into an individual. The slice is owned by
// the individual afterwards.
func NewIndividual(placements []model.Placement, dims model.Dims) *Individual {
	return &Individual{placements: placements, dims: dims}
}

// Fitness returns the number of free columns right of the packing:
// width - (rightmost occupied column + 1), or the full width when nothing is
// placed. It is computed on first use and cached.
func (ind *Individual) Fitness() float64 {
	ind.fitnessOnce.Do(func() {
		if len(ind.placements) == 0 {
			ind.fitness = float64(ind.dims.Width)
			return
		}
		rightmost := -1
		for _, p := range ind.placements {
			rightmost = max(rightmost, p.MaxCol())
		}
		ind.fitness = float64(ind.dims.Width - rightmost - 1)
	})
	return ind.fitness
}

// Placements returns a copy of the placements in construction order.
func (ind *Individual) Placements() []model.Placement {
	return append([]model.Placement(nil), ind.placements...)
}

// SortedPlacements returns the placements ordered by shape id.
func (ind *Individual) SortedPlacements() []model.Placement {
	out := ind.Placements()
	sort.Slice(out, func(i, j int) bool { return out[i].ShapeID() < out[j].ShapeID() })
	return out
}

// Placement returns the placement of a shape id.
func (ind *Individual) Placement(shapeID int) (model.Placement, bool) {
	for _, p := range ind.placements {
		if p.ShapeID() == shapeID {
			return p, true
		}
	}
	return model.Placement{}, false
}

// Dims returns the board the individual was built for.
func (ind *Individual) Dims() model.Dims { return ind.dims }

// Len returns the number of placements.
func (ind *Individual) Len() int { return len(ind.placements) }

// Board returns a fresh board holding every placement.
func (ind *Individual) Board() *model.Board {
	board := model.NewBoard(ind.dims.Width, ind.dims.Height)
	for _, p := range ind.placements {
		board.Place(p)
	}
	return board
}

// Validate checks that every shape is placed exactly once, on the board and
// without overlapping another shape.
func (ind *Individual) Validate(shapes []*model.Shape) error {
	want := make(map[int]bool, len(shapes))
	for _, s := range shapes {
		want[s.ID] = true
	}

	board := model.NewBoard(ind.dims.Width, ind.dims.Height)
	seen := make(map[int]bool, len(ind.placements))
	for _, p := range ind.placements {
		id := p.ShapeID()
		if seen[id] {
			return fmt.Errorf("shape %d placed twice", id)
		}
		if !want[id] {
			return fmt.Errorf("shape %d is not part of the problem", id)
		}
		seen[id] = true
		if err := board.TryPlace(p); err != nil {
			return err
		}
	}
	if len(seen) != len(want) {
		return fmt.Errorf("%d of %d shapes placed", len(seen), len(want))
	}
	return nil
}

func (ind *Individual) String() string {
	return fmt.Sprintf("Individual(fitness=%.2f, shapes=%d)", ind.Fitness(), len(ind.placements))
}

// RandomIndividual places the shapes in shuffled order at uniformly random
// positions and rotations. A shape that cannot be placed within its attempt
// budget restarts the whole construction with a new order; after
// cfg.MaxRestarts restarts ErrPackingInfeasible is returned.
func RandomIndividual(rng *rand.Rand, shapes []*model.Shape, dims model.Dims, cfg Config) (*Individual, error) {
	attempts := min(cfg.MaxPlacementAttempts, randomInitAttempts)
	order := append([]*model.Shape(nil), shapes...)

	for restart := 0; restart < cfg.MaxRestarts; restart++ {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		board := model.NewBoard(dims.Width, dims.Height)
		placements := make([]model.Placement, 0, len(order))
		complete := true
		for _, s := range order {
			p, ok := placeRandom(rng, s, board, attempts)
			if !ok {
				complete = false
				break
			}
			board.Place(p)
			placements = append(placements, p)
		}
		if complete {
			return NewIndividual(placements, dims), nil
		}
	}
	return nil, fmt.Errorf("%w: %d shapes on %dx%d board after %d restarts",
		ErrPackingInfeasible, len(shapes), dims.Width, dims.Height, cfg.MaxRestarts)
}
