// Package model holds the geometric building blocks of the packer: points,
// shapes with their precomputed rotations, placements and the occupancy board.
package model

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// ErrInvalidInstruction is returned when a shape description cannot be parsed.
var ErrInvalidInstruction = errors.New("invalid shape instruction")

// Rotations is the number of quarter turns a shape can take.
const Rotations = 4

// Point is a board cell or an offset relative to a shape origin.
type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Add returns the component-wise sum of p and q.
func (p Point) Add(q Point) Point {
	return Point{Row: p.Row + q.Row, Col: p.Col + q.Col}
}

// rotate applies one 90 degree clockwise turn.
func (p Point) rotate() Point {
	return Point{Row: -p.Col, Col: p.Row}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.Row, p.Col)
}

// Direction is a single move letter of a shape path.
type Direction byte

const (
	Up    Direction = 'U' // +row
	Down  Direction = 'D' // -row
	Left  Direction = 'L' // -col
	Right Direction = 'R' // +col
)

// delta returns the unit step of a direction and whether it is known.
func (d Direction) delta() (Point, bool) {
	switch d {
	case Up:
		return Point{Row: 1}, true
	case Down:
		return Point{Row: -1}, true
	case Left:
		return Point{Col: -1}, true
	case Right:
		return Point{Col: 1}, true
	default:
		return Point{}, false
	}
}

// Instruction moves Magnitude unit steps in Direction.
type Instruction struct {
	Direction Direction `json:"direction"`
	Magnitude int       `json:"magnitude"`
}

func (in Instruction) String() string {
	return fmt.Sprintf("%c%d", in.Direction, in.Magnitude)
}

// Bounds is the inclusive row/column extent of a point set.
type Bounds struct {
	MinRow int
	MaxRow int
	MinCol int
	MaxCol int
}

// Width returns the number of columns covered.
func (b Bounds) Width() int { return b.MaxCol - b.MinCol + 1 }

// Height returns the number of rows covered.
func (b Bounds) Height() int { return b.MaxRow - b.MinRow + 1 }

// Shape is a polyomino described by a path of unit moves starting at the
// origin. All four rotations are computed once in NewShape; a Shape is
// read-only afterwards and may be shared between any number of placements.
type Shape struct {
	ID           int
	instructions []Instruction
	points       [Rotations][]Point
	bounds       [Rotations]Bounds
}

// NewShape builds a shape from parsed instructions.
func NewShape(instructions []Instruction, id int) (*Shape, error) {
	current := Point{}
	seen := map[Point]struct{}{current: {}}
	for _, in := range instructions {
		step, ok := in.Direction.delta()
		if !ok {
			return nil, fmt.Errorf("%w: unknown direction %q", ErrInvalidInstruction, rune(in.Direction))
		}
		if in.Magnitude < 0 {
			return nil, fmt.Errorf("%w: negative magnitude %d", ErrInvalidInstruction, in.Magnitude)
		}
		for i := 0; i < in.Magnitude; i++ {
			current = current.Add(step)
			seen[current] = struct{}{}
		}
	}

	base := make([]Point, 0, len(seen))
	for p := range seen {
		base = append(base, p)
	}

	s := &Shape{
		ID:           id,
		instructions: append([]Instruction(nil), instructions...),
	}
	rotated := base
	for r := 0; r < Rotations; r++ {
		if r > 0 {
			next := make([]Point, len(rotated))
			for i, p := range rotated {
				next[i] = p.rotate()
			}
			rotated = next
		}
		s.points[r] = sortedPoints(rotated)
		s.bounds[r] = boundsOf(s.points[r])
	}
	return s, nil
}

// ParseShape parses direction/magnitude tokens such as "D1,R2,U1" or
// "L3 L3". Tokens may be separated by commas, whitespace or both.
func ParseShape(text string, id int) (*Shape, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})

	instructions := make([]Instruction, 0, len(fields))
	for _, tok := range fields {
		dir := Direction(unicode.ToUpper(rune(tok[0])))
		if _, ok := dir.delta(); !ok {
			return nil, fmt.Errorf("%w: token %q has unknown direction", ErrInvalidInstruction, tok)
		}
		digits := tok[1:]
		if digits == "" {
			return nil, fmt.Errorf("%w: token %q has no magnitude", ErrInvalidInstruction, tok)
		}
		magnitude, err := strconv.Atoi(digits)
		if err != nil {
			return nil, fmt.Errorf("%w: token %q: magnitude is not an integer", ErrInvalidInstruction, tok)
		}
		if magnitude < 0 {
			return nil, fmt.Errorf("%w: token %q: negative magnitude", ErrInvalidInstruction, tok)
		}
		instructions = append(instructions, Instruction{Direction: dir, Magnitude: magnitude})
	}
	return NewShape(instructions, id)
}

// Instructions returns a copy of the path that defines the shape.
func (s *Shape) Instructions() []Instruction {
	return append([]Instruction(nil), s.instructions...)
}

// Points returns the offsets occupied at the given rotation. The slice is
// shared and must not be modified.
func (s *Shape) Points(rotation int) []Point {
	return s.points[normalizeRotation(rotation)]
}

// Bounds returns the offset extent at the given rotation.
func (s *Shape) Bounds(rotation int) Bounds {
	return s.bounds[normalizeRotation(rotation)]
}

// PointsAt returns the absolute cells covered when the shape origin sits on
// position.
func (s *Shape) PointsAt(position Point, rotation int) []Point {
	offsets := s.points[normalizeRotation(rotation)]
	out := make([]Point, len(offsets))
	for i, p := range offsets {
		out[i] = p.Add(position)
	}
	return out
}

// BoundingBox returns the width and height of the unrotated shape.
func (s *Shape) BoundingBox() (width, height int) {
	b := s.bounds[0]
	return b.Width(), b.Height()
}

// CellCount returns the number of distinct cells the shape covers.
func (s *Shape) CellCount() int {
	return len(s.points[0])
}

func (s *Shape) String() string {
	parts := make([]string, len(s.instructions))
	for i, in := range s.instructions {
		parts[i] = in.String()
	}
	return fmt.Sprintf("Shape(id=%d, %s)", s.ID, strings.Join(parts, ","))
}

func normalizeRotation(rotation int) int {
	r := rotation % Rotations
	if r < 0 {
		r += Rotations
	}
	return r
}

func sortedPoints(points []Point) []Point {
	out := append([]Point(nil), points...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

func boundsOf(points []Point) Bounds {
	b := Bounds{
		MinRow: points[0].Row, MaxRow: points[0].Row,
		MinCol: points[0].Col, MaxCol: points[0].Col,
	}
	for _, p := range points[1:] {
		b.MinRow = min(b.MinRow, p.Row)
		b.MaxRow = max(b.MaxRow, p.Row)
		b.MinCol = min(b.MinCol, p.Col)
		b.MaxCol = max(b.MaxCol, p.Col)
	}
	return b
}
