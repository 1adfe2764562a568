// Package export writes packing results: the plain-text solution file, PDF
// layout reports and shape labels, DXF drawings, and the fitness history as a
// workbook or chart.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/piwi3910/ShapePacker/internal/engine"
)

// WriteSolution writes one "col,row,rotation" line per shape, ordered by
// shape id. With a non-nil elapsed a commented header carrying the run time
// and fitness comes first.
func WriteSolution(w io.Writer, ind *engine.Individual, elapsed *time.Duration) error {
	bw := bufio.NewWriter(w)
	if elapsed != nil {
		fmt.Fprintf(bw, "# Elapsed time: %.3fs\n", elapsed.Seconds())
		fmt.Fprintf(bw, "# Fitness: %.2f\n", ind.Fitness())
		fmt.Fprintln(bw, "#")
	}
	for _, p := range ind.SortedPlacements() {
		fmt.Fprintf(bw, "%d,%d,%d\n", p.Position.Col, p.Position.Row, p.Rotation)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write solution: %w", err)
	}
	return nil
}

// WriteSolutionFile writes the solution to path, replacing any existing file.
func WriteSolutionFile(path string, ind *engine.Individual, elapsed *time.Duration) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create solution file: %w", err)
	}
	if err := WriteSolution(f, ind, elapsed); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// SolutionText returns the solution lines without header.
func SolutionText(ind *engine.Individual) string {
	var sb strings.Builder
	_ = WriteSolution(&sb, ind, nil)
	return sb.String()
}

// FormatSolution renders a human-readable listing of the placements.
func FormatSolution(ind *engine.Individual) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Fitness: %.2f\n", ind.Fitness())
	fmt.Fprintf(&sb, "Shapes: %d\n", ind.Len())
	sb.WriteString("\nPlacements (col, row, rotation):")
	for _, p := range ind.SortedPlacements() {
		fmt.Fprintf(&sb, "\n  Shape %d: (%d, %d, rot=%d)", p.ShapeID(), p.Position.Col, p.Position.Row, p.Rotation)
	}
	return sb.String()
}
