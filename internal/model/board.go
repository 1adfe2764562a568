package model

import (
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

var (
	// ErrOutOfBounds is returned for cells outside the board.
	ErrOutOfBounds = errors.New("cell outside board")
	// ErrCellOccupied is returned when a placement overlaps a taken cell.
	ErrCellOccupied = errors.New("cell already occupied")
)

// Board is a width x height occupancy bitmap, one bit per cell in row-major
// order. A Board is owned by a single placement, repair or evaluation step
// and is not safe for concurrent use.
type Board struct {
	width  int
	height int
	cells  *bitset.BitSet
}

// NewBoard returns an empty board.
func NewBoard(width, height int) *Board {
	return &Board{
		width:  width,
		height: height,
		cells:  bitset.New(uint(max(width*height, 0))),
	}
}

// Width returns the number of columns.
func (b *Board) Width() int { return b.width }

// Height returns the number of rows.
func (b *Board) Height() int { return b.height }

func (b *Board) index(p Point) uint {
	return uint(p.Row*b.width + p.Col)
}

func (b *Board) contains(p Point) bool {
	return p.Row >= 0 && p.Row < b.height && p.Col >= 0 && p.Col < b.width
}

// CanPlace reports whether the placement lies fully on the board and covers
// no occupied cell. The bounding box is checked before any cell is read.
func (b *Board) CanPlace(p Placement) bool {
	bounds := p.Bounds()
	if bounds.MinRow < 0 || bounds.MaxRow >= b.height ||
		bounds.MinCol < 0 || bounds.MaxCol >= b.width {
		return false
	}
	for _, pt := range p.points {
		if b.cells.Test(b.index(pt)) {
			return false
		}
	}
	return true
}

// Place marks every cell of p as occupied. Callers must check CanPlace
// first; Place does not validate.
func (b *Board) Place(p Placement) {
	for _, pt := range p.points {
		b.cells.Set(b.index(pt))
	}
}

// TryPlace validates p cell by cell and places it when every cell is free
// and on the board. The board is unchanged on error.
func (b *Board) TryPlace(p Placement) error {
	for _, pt := range p.points {
		taken, err := b.IsOccupied(pt)
		if err != nil {
			return fmt.Errorf("shape %d: %w", p.ShapeID(), err)
		}
		if taken {
			return fmt.Errorf("shape %d at %s: %w", p.ShapeID(), pt, ErrCellOccupied)
		}
	}
	b.Place(p)
	return nil
}

// Remove clears every cell of p.
func (b *Board) Remove(p Placement) {
	for _, pt := range p.points {
		b.cells.Clear(b.index(pt))
	}
}

// IsOccupied reports whether a cell is taken.
func (b *Board) IsOccupied(p Point) (bool, error) {
	if !b.contains(p) {
		return false, fmt.Errorf("%w: %s on %dx%d board", ErrOutOfBounds, p, b.width, b.height)
	}
	return b.cells.Test(b.index(p)), nil
}

// RightmostColumn returns the highest column holding an occupied cell, or -1
// when the board is empty.
func (b *Board) RightmostColumn() int {
	if !b.cells.Any() {
		return -1
	}
	for col := b.width - 1; col >= 0; col-- {
		for row := 0; row < b.height; row++ {
			if b.cells.Test(uint(row*b.width + col)) {
				return col
			}
		}
	}
	return -1
}

// OccupiedCount returns the number of occupied cells.
func (b *Board) OccupiedCount() int {
	return int(b.cells.Count())
}

// Clear empties the board.
func (b *Board) Clear() {
	b.cells.ClearAll()
}

// Clone returns an independent copy of the board.
func (b *Board) Clone() *Board {
	return &Board{width: b.width, height: b.height, cells: b.cells.Clone()}
}
