package model

// Dims are the board extents in cells.
type Dims struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area returns the number of cells on the board.
func (d Dims) Area() int { return d.Width * d.Height }

// Problem is a loaded packing instance.
type Problem struct {
	Shapes []*Shape
	Dims   Dims
}

// Placement binds a shape to a board position and rotation. The absolute
// cells are computed once when the placement is created.
type Placement struct {
	Shape    *Shape
	Position Point
	Rotation int

	points []Point
	maxCol int
}

// NewPlacement places shape with its origin at position, turned rotation
// quarter turns clockwise.
func NewPlacement(shape *Shape, position Point, rotation int) Placement {
	rotation = normalizeRotation(rotation)
	return Placement{
		Shape:    shape,
		Position: position,
		Rotation: rotation,
		points:   shape.PointsAt(position, rotation),
		maxCol:   position.Col + shape.Bounds(rotation).MaxCol,
	}
}

// ShapeID returns the id of the placed shape.
func (p Placement) ShapeID() int {
	return p.Shape.ID
}

// Points returns the absolute cells covered by the placement. The slice is
// shared and must not be modified.
func (p Placement) Points() []Point {
	return p.points
}

// MaxCol returns the rightmost column the placement covers.
func (p Placement) MaxCol() int {
	return p.maxCol
}

// Bounds returns the absolute extent of the placement.
func (p Placement) Bounds() Bounds {
	b := p.Shape.Bounds(p.Rotation)
	return Bounds{
		MinRow: b.MinRow + p.Position.Row,
		MaxRow: b.MaxRow + p.Position.Row,
		MinCol: b.MinCol + p.Position.Col,
		MaxCol: b.MaxCol + p.Position.Col,
	}
}

// Equal reports whether both placements put the same shape at the same
// position and rotation.
func (p Placement) Equal(other Placement) bool {
	return p.Shape.ID == other.Shape.ID &&
		p.Position == other.Position &&
		p.Rotation == other.Rotation
}
