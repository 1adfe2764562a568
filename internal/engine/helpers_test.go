package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/piwi3910/ShapePacker/internal/model"
)

func mustShape(t *testing.T, text string, id int) *model.Shape {
	t.Helper()
	s, err := model.ParseShape(text, id)
	require.NoError(t, err)
	return s
}

// testProblem is a small mixed instance: domino, L-tromino, monomino and
// two straight trominoes on a 4-row board.
func testProblem(t *testing.T) model.Problem {
	t.Helper()
	texts := []string{"R1", "U1,R1", "D0", "R2", "U2"}
	shapes := make([]*model.Shape, len(texts))
	for i, text := range texts {
		shapes[i] = mustShape(t, text, i)
	}
	return model.Problem{Shapes: shapes, Dims: model.Dims{Width: 11, Height: 4}}
}

func testConfig(seed int64) Config {
	cfg := DefaultConfig().WithSeed(seed)
	cfg.Mu = 12
	cfg.Lambda = 8
	cfg.MaxEvaluations = 400
	cfg.StagnationGenerations = 20
	return cfg
}

// monomino builds an individual whose only placement is a single cell at
// col on a board of the given width, so its fitness is width-col-1.
func monomino(t *testing.T, id, col, width int) *Individual {
	t.Helper()
	s := mustShape(t, "D0", id)
	p := model.NewPlacement(s, model.Point{Row: 0, Col: col}, 0)
	return NewIndividual([]model.Placement{p}, model.Dims{Width: width, Height: 1})
}
