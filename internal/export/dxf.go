package export

import (
	"fmt"
	"strings"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
	"github.com/yofu/dxf/table"

	"github.com/piwi3910/ShapePacker/internal/engine"
	"github.com/piwi3910/ShapePacker/internal/model"
)

// DXF layer names.
const (
	LayerBoard  = "BOARD"
	LayerShapes = "SHAPES"
	LayerLabels = "LABELS"
)

// ExportDXF draws the packing as a DXF file with one drawing unit per cell:
// the board outline, one closed square per occupied cell and the shape id
// at each shape origin.
func ExportDXF(path string, ind *engine.Individual) error {
	if ind == nil {
		return fmt.Errorf("no solution to export")
	}
	dims := ind.Dims()

	d := dxf.NewDrawing()
	if _, err := d.AddLayer(LayerBoard, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("failed to add layer: %w", err)
	}
	if _, err := d.AddLayer(LayerShapes, color.Green, table.LT_CONTINUOUS, false); err != nil {
		return fmt.Errorf("failed to add layer: %w", err)
	}
	if _, err := d.AddLayer(LayerLabels, color.Yellow, table.LT_CONTINUOUS, false); err != nil {
		return fmt.Errorf("failed to add layer: %w", err)
	}

	w, h := float64(dims.Width), float64(dims.Height)
	if _, err := d.LwPolyline(true, []float64{0, 0}, []float64{w, 0}, []float64{w, h}, []float64{0, h}); err != nil {
		return fmt.Errorf("failed to draw board: %w", err)
	}

	if err := d.ChangeLayer(LayerShapes); err != nil {
		return fmt.Errorf("failed to switch layer: %w", err)
	}
	for _, p := range ind.SortedPlacements() {
		for _, pt := range p.Points() {
			if err := drawCell(d, pt); err != nil {
				return fmt.Errorf("failed to draw shape %d: %w", p.ShapeID(), err)
			}
		}
	}

	if err := d.ChangeLayer(LayerLabels); err != nil {
		return fmt.Errorf("failed to switch layer: %w", err)
	}
	for _, p := range ind.SortedPlacements() {
		origin := p.Position
		if _, err := d.Text(fmt.Sprintf("%d", p.ShapeID()), float64(origin.Col)+0.25, float64(origin.Row)+0.25, 0, 0.5); err != nil {
			return fmt.Errorf("failed to label shape %d: %w", p.ShapeID(), err)
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save DXF: %w", err)
	}
	return nil
}

// drawCell outlines the unit square whose lower left corner is the cell.
func drawCell(d *drawing.Drawing, pt model.Point) error {
	x, y := float64(pt.Col), float64(pt.Row)
	_, err := d.LwPolyline(true, []float64{x, y}, []float64{x + 1, y}, []float64{x + 1, y + 1}, []float64{x, y + 1})
	return err
}

// shapePath formats instructions the way they are read, e.g. "D1,R2".
func shapePath(instructions []model.Instruction) string {
	parts := make([]string, len(instructions))
	for i, in := range instructions {
		parts[i] = in.String()
	}
	return strings.Join(parts, ",")
}
