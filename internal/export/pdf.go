package export

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/ShapePacker/internal/engine"
	"github.com/piwi3910/ShapePacker/internal/model"
)

// shapeColor represents an RGB color for a placed shape.
type shapeColor struct {
	R, G, B int
}

var shapeColors = []shapeColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

func colorFor(shapeID int) shapeColor {
	return shapeColors[shapeID%len(shapeColors)]
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0

	// qrMaxBytes keeps the summary QR code within medium error correction
	// capacity.
	qrMaxBytes = 2000
)

// Report carries run details printed on the summary page.
type Report struct {
	RunID   string
	Config  engine.Config
	Elapsed time.Duration
	History []engine.GenerationStats
}

// ExportPDF generates a two page report: the packed board, then a summary
// with run statistics, the fitness curve and a QR code of the solution file.
func ExportPDF(path string, ind *engine.Individual, report Report) error {
	if ind == nil {
		return fmt.Errorf("no solution to export")
	}
	dims := ind.Dims()
	if dims.Width < 1 || dims.Height < 1 {
		return fmt.Errorf("board %dx%d has no cells to draw", dims.Width, dims.Height)
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderBoardPage(pdf, ind)

	pdf.AddPage()
	if err := renderSummaryPage(pdf, ind, report); err != nil {
		return err
	}

	return pdf.OutputFileAndClose(path)
}

// renderBoardPage draws every occupied cell in its shape's color. Row 0 is
// the bottom row of the drawing.
func renderBoardPage(pdf *fpdf.Fpdf, ind *engine.Individual) {
	dims := ind.Dims()
	board := ind.Board()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Packing Layout (%d x %d cells)", dims.Width, dims.Height)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Shapes: %d | Occupied cells: %d of %d | Rightmost column: %d | Fitness: %.0f",
		ind.Len(), board.OccupiedCount(), dims.Area(), board.RightmostColumn(), ind.Fitness())
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight
	cell := math.Min(drawWidth/float64(dims.Width), drawHeight/float64(dims.Height))

	canvasW := float64(dims.Width) * cell
	canvasH := float64(dims.Height) * cell
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	pdf.SetFillColor(240, 240, 240)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	cellAt := func(p model.Point) (x, y float64) {
		return offsetX + float64(p.Col)*cell, offsetY + float64(dims.Height-1-p.Row)*cell
	}

	pdf.SetLineWidth(0.1)
	for _, p := range ind.SortedPlacements() {
		col := colorFor(p.ShapeID())
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		for _, pt := range p.Points() {
			x, y := cellAt(pt)
			pdf.Rect(x, y, cell, cell, "FD")
		}

		if cell > 4 {
			pdf.SetFont("Helvetica", "", labelFontSize(cell))
			pdf.SetTextColor(0, 0, 0)
			x, y := cellAt(p.Points()[0])
			label := fmt.Sprintf("%d", p.ShapeID())
			pdf.SetXY(x, y)
			pdf.CellFormat(cell, cell, label, "", 0, "C", false, 0, "")
		}
	}

	if rightmost := board.RightmostColumn(); rightmost >= 0 {
		x := offsetX + float64(rightmost+1)*cell
		pdf.SetDrawColor(200, 0, 0)
		pdf.SetLineWidth(0.4)
		pdf.SetDashPattern([]float64{2, 1}, 0)
		pdf.Line(x, offsetY-2, x, offsetY+canvasH+2)
		pdf.SetDashPattern([]float64{}, 0)
	}

	drawDimensionAnnotations(pdf, dims, offsetX, offsetY, canvasW, canvasH)
	drawShapeLegend(pdf, ind, offsetY+canvasH+6)
}

// drawDimensionAnnotations adds width and height labels outside the board.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, dims model.Dims, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%d columns", dims.Width)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%d rows", dims.Height)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawShapeLegend lists every placement below the board, wrapping lines.
func drawShapeLegend(pdf *fpdf.Fpdf, ind *engine.Individual, startY float64) {
	if ind.Len() == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Shapes placed:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight

	for _, p := range ind.SortedPlacements() {
		col := colorFor(p.ShapeID())
		label := fmt.Sprintf("#%d @ (%d, %d) r%d", p.ShapeID(), p.Position.Col, p.Position.Row, p.Rotation)
		labelW := pdf.GetStringWidth(label) + 6

		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}
		if startY > pageHeight-marginBottom {
			break
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")
		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}

// renderSummaryPage draws run statistics, settings, the fitness curve and
// the solution QR code.
func renderSummaryPage(pdf *fpdf.Fpdf, ind *engine.Individual, report Report) error {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Packing Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18
	dims := ind.Dims()
	generations, evaluations := 0, 0
	if n := len(report.History); n > 0 {
		generations = report.History[n-1].Generation
		evaluations = report.History[n-1].Evaluations
	}

	y = drawKeyValues(pdf, "Result", y, []keyValue{
		{"Run", report.RunID},
		{"Fitness", fmt.Sprintf("%.0f", ind.Fitness())},
		{"Shapes", fmt.Sprintf("%d", ind.Len())},
		{"Board", fmt.Sprintf("%d x %d", dims.Width, dims.Height)},
		{"Generations", fmt.Sprintf("%d", generations)},
		{"Evaluations", fmt.Sprintf("%d", evaluations)},
		{"Elapsed", report.Elapsed.Round(time.Millisecond).String()},
	})

	cfg := report.Config
	y = drawKeyValues(pdf, "Settings", y+5, []keyValue{
		{"Mu / Lambda", fmt.Sprintf("%d / %d", cfg.Mu, cfg.Lambda)},
		{"Mutation Rate", fmt.Sprintf("%.3f", cfg.MutationRate)},
		{"Local Search Rate", fmt.Sprintf("%.3f", cfg.LocalSearchRate)},
		{"Tournament Size", fmt.Sprintf("%d", cfg.TournamentSize)},
		{"Parent Selection", cfg.ParentSelection},
		{"Survival Selection", cfg.SurvivalSelection},
	})

	if len(report.History) > 1 {
		drawFitnessChart(pdf, report.History, marginLeft, y+6, 150, pageHeight-marginBottom-y-14)
	}

	if err := drawSolutionQR(pdf, ind); err != nil {
		return err
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by ShapePacker", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	return nil
}

type keyValue struct {
	label string
	value string
}

func drawKeyValues(pdf *fpdf.Fpdf, title string, y float64, items []keyValue) float64 {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, title, "", 0, "L", false, 0, "")
	y += 8

	for _, item := range items {
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(45, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(60, 5, item.value, "", 0, "L", false, 0, "")
		y += 5
	}
	return y
}

// drawFitnessChart plots best and average fitness per generation inside the
// given box.
func drawFitnessChart(pdf *fpdf.Fpdf, history []engine.GenerationStats, x, y, w, h float64) {
	if h < 20 {
		return
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range history {
		lo = math.Min(lo, math.Min(s.Best, s.Average))
		hi = math.Max(hi, math.Max(s.Best, s.Average))
	}
	if hi == lo {
		hi = lo + 1
	}
	last := float64(history[len(history)-1].Generation)
	if last == 0 {
		last = 1
	}

	pdf.SetDrawColor(150, 150, 150)
	pdf.SetLineWidth(0.2)
	pdf.Rect(x, y, w, h, "D")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetTextColor(80, 80, 80)
	pdf.SetXY(x, y-4)
	pdf.CellFormat(w, 4, fmt.Sprintf("Fitness %.0f to %.0f over %d generations", lo, hi, int(last)), "", 0, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	point := func(s engine.GenerationStats, v float64) (float64, float64) {
		return x + float64(s.Generation)/last*w, y + h - (v-lo)/(hi-lo)*h
	}
	series := []struct {
		value func(engine.GenerationStats) float64
		color shapeColor
	}{
		{func(s engine.GenerationStats) float64 { return s.Average }, shapeColors[1]},
		{func(s engine.GenerationStats) float64 { return s.Best }, shapeColors[0]},
	}
	pdf.SetLineWidth(0.4)
	for _, line := range series {
		pdf.SetDrawColor(line.color.R, line.color.G, line.color.B)
		for i := 1; i < len(history); i++ {
			x1, y1 := point(history[i-1], line.value(history[i-1]))
			x2, y2 := point(history[i], line.value(history[i]))
			pdf.Line(x1, y1, x2, y2)
		}
	}
}

// drawSolutionQR places a QR code of the solution file in the top right
// corner. Solutions too large for one code get a note instead.
func drawSolutionQR(pdf *fpdf.Fpdf, ind *engine.Individual) error {
	const size = 60.0
	x := pageWidth - marginRight - size
	y := marginTop + 18

	text := SolutionText(ind)
	if text == "" {
		return nil
	}
	if len(text) > qrMaxBytes {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetXY(x, y)
		pdf.CellFormat(size, 5, "Solution too large for a QR code", "", 0, "C", false, 0, "")
		return nil
	}

	png, err := qrcode.Encode(text, qrcode.Medium, 512)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}
	pdf.RegisterImageOptionsReader("qr_solution", fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	pdf.ImageOptions("qr_solution", x, y, size, size, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(x, y+size+1)
	pdf.CellFormat(size, 4, "Solution (col,row,rotation)", "", 0, "C", false, 0, "")
	return nil
}

// labelFontSize returns a font size that fits a cell of the given size.
func labelFontSize(cell float64) float64 {
	switch {
	case cell > 12:
		return 8
	case cell > 7:
		return 7
	default:
		return 5
	}
}
