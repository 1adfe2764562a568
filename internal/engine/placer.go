package engine

import (
	"math/rand"

	"github.com/piwi3910/ShapePacker/internal/model"
)

// Search budgets shared by construction, repair and mutation.
const (
	randomInitAttempts   = 150 // per shape during random construction
	randomRepairAttempts = 100 // per shape when greedy repair fails
	greedyColumnLimit    = 50  // leftmost columns scanned by greedy placement
	greedyRowSamples     = 10  // random rows tried per column
)

// placeRandom tries uniformly random positions and rotations.
func placeRandom(rng *rand.Rand, shape *model.Shape, board *model.Board, attempts int) (model.Placement, bool) {
	if board.Width() < 1 || board.Height() < 1 {
		return model.Placement{}, false
	}
	for i := 0; i < attempts; i++ {
		rotation := rng.Intn(model.Rotations)
		pos := model.Point{Row: rng.Intn(board.Height()), Col: rng.Intn(board.Width())}
		p := model.NewPlacement(shape, pos, rotation)
		if board.CanPlace(p) {
			return p, true
		}
	}
	return model.Placement{}, false
}

// placeGreedy scans the leftmost columns in order. For each column it samples
// a few rows with one random rotation, then one row for each other rotation.
func placeGreedy(rng *rand.Rand, shape *model.Shape, board *model.Board) (model.Placement, bool) {
	if board.Width() < 1 || board.Height() < 1 {
		return model.Placement{}, false
	}
	preferred := rng.Intn(model.Rotations)
	samples := min(board.Height(), greedyRowSamples)

	for col := 0; col < min(board.Width(), greedyColumnLimit); col++ {
		for i := 0; i < samples; i++ {
			p := model.NewPlacement(shape, model.Point{Row: rng.Intn(board.Height()), Col: col}, preferred)
			if board.CanPlace(p) {
				return p, true
			}
		}
		for r := 0; r < model.Rotations; r++ {
			if r == preferred {
				continue
			}
			p := model.NewPlacement(shape, model.Point{Row: rng.Intn(board.Height()), Col: col}, r)
			if board.CanPlace(p) {
				return p, true
			}
		}
	}
	return model.Placement{}, false
}

// replace finds a new spot for shape, greedy first and random second.
func replace(rng *rand.Rand, shape *model.Shape, board *model.Board, cfg Config) (model.Placement, bool) {
	if p, ok := placeGreedy(rng, shape, board); ok {
		return p, true
	}
	return placeRandom(rng, shape, board, min(cfg.MaxPlacementAttempts, randomRepairAttempts))
}

// moveLeft looks for a cell strictly left of the placement's current column.
// Columns are scanned left to right, so the first fit is the leftmost one.
// Candidates reaching further right than the current placement are skipped,
// a no-regression rule so local search never lowers fitness.
func moveLeft(current model.Placement, board *model.Board) (model.Placement, bool) {
	shape := current.Shape
	for col := 0; col < current.Position.Col; col++ {
		for r := 0; r < model.Rotations; r++ {
			b := shape.Bounds(r)
			if col+b.MinCol < 0 || col+b.MaxCol > current.MaxCol() {
				continue
			}
			for row := max(0, -b.MinRow); row+b.MaxRow < board.Height(); row++ {
				p := model.NewPlacement(shape, model.Point{Row: row, Col: col}, r)
				if board.CanPlace(p) {
					return p, true
				}
			}
		}
	}
	return model.Placement{}, false
}
