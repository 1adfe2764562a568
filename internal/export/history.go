package export

import (
	"fmt"
	"image/color"

	"github.com/xuri/excelize/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/piwi3910/ShapePacker/internal/engine"
)

// HistorySheet is the worksheet written by ExportHistoryXLSX.
const HistorySheet = "History"

var historyHeaders = []interface{}{"Generation", "Best", "Average", "Best Ever", "Evaluations"}

// ExportHistoryXLSX writes one row per generation plus a line chart of the
// best and average fitness.
func ExportHistoryXLSX(path string, history []engine.GenerationStats) error {
	if len(history) == 0 {
		return fmt.Errorf("no history to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), HistorySheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(HistorySheet, "A1", &historyHeaders); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	if err := f.SetCellStyle(HistorySheet, "A1", "E1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, s := range history {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{s.Generation, s.Best, s.Average, s.BestEver, s.Evaluations}
		if err := f.SetSheetRow(HistorySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write generation %d: %w", s.Generation, err)
		}
	}

	last := len(history) + 1
	series := func(col string) excelize.ChartSeries {
		return excelize.ChartSeries{
			Name:       fmt.Sprintf("%s!$%s$1", HistorySheet, col),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", HistorySheet, last),
			Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", HistorySheet, col, col, last),
		}
	}
	if err := f.AddChart(HistorySheet, "G2", &excelize.Chart{
		Type:   excelize.Line,
		Series: []excelize.ChartSeries{series("B"), series("C")},
		Title:  []excelize.RichTextRun{{Text: "Fitness per Generation"}},
	}); err != nil {
		return fmt.Errorf("failed to add chart: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// ExportFitnessPlot renders best, average and best-ever fitness against the
// generation as an image. The format follows the file extension.
func ExportFitnessPlot(path, title string, history []engine.GenerationStats) error {
	if len(history) == 0 {
		return fmt.Errorf("no history to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Fitness"

	bestPts := make(plotter.XYs, len(history))
	avgPts := make(plotter.XYs, len(history))
	everPts := make(plotter.XYs, len(history))
	for i, s := range history {
		gen := float64(s.Generation)
		bestPts[i].X, bestPts[i].Y = gen, s.Best
		avgPts[i].X, avgPts[i].Y = gen, s.Average
		everPts[i].X, everPts[i].Y = gen, s.BestEver
	}

	bestLine, err := plotter.NewLine(bestPts)
	if err != nil {
		return err
	}
	avgLine, err := plotter.NewLine(avgPts)
	if err != nil {
		return err
	}
	everLine, err := plotter.NewLine(everPts)
	if err != nil {
		return err
	}
	bestLine.Color = rgb(shapeColors[0])
	avgLine.Color = rgb(shapeColors[1])
	everLine.Color = rgb(shapeColors[5])
	everLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(plotter.NewGrid(), avgLine, bestLine, everLine)
	p.Legend.Add("best", bestLine)
	p.Legend.Add("average", avgLine)
	p.Legend.Add("best ever", everLine)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}

func rgb(c shapeColor) color.RGBA {
	return color.RGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: 255}
}
