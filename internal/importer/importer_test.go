package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/ShapePacker/internal/model"
)

// ─── ParseInput Tests ──────────────────────────────────────

func TestParseInput_Basic(t *testing.T) {
	input := "4 ignored trailing text\nR1\nU1,R1\nD0\n"
	problem, err := ParseInput(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, problem.Shapes, 3)
	assert.Equal(t, 4, problem.Dims.Height)
	// R1: 2x1 -> 2, U1,R1: 2x2 -> 2, D0: 1x1 -> 1
	assert.Equal(t, 5, problem.Dims.Width)
	for i, s := range problem.Shapes {
		assert.Equal(t, i, s.ID)
	}
	assert.Equal(t, 3, problem.Shapes[1].CellCount())
}

func TestParseInput_SkipsBlankAndComments(t *testing.T) {
	input := "# instance 7\n\n3\n\n# first shape\nU2\n   \nL1 L1\n"
	problem, err := ParseInput(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, problem.Shapes, 2)
	assert.Equal(t, 0, problem.Shapes[0].ID)
	assert.Equal(t, 1, problem.Shapes[1].ID)
	assert.Equal(t, 3, problem.Dims.Height)
	assert.Equal(t, 6, problem.Dims.Width)
}

func TestParseInput_NoShapes(t *testing.T) {
	problem, err := ParseInput(strings.NewReader("5\n"))
	require.NoError(t, err)
	assert.Empty(t, problem.Shapes)
	assert.Equal(t, 0, problem.Dims.Width)
}

func TestParseInput_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"empty", "", "missing board height"},
		{"bad height", "tall\nR1\n", "line 1: invalid board height"},
		{"zero height", "0\nR1\n", "must be positive"},
		{"bad direction", "3\nR1\nX2\n", "line 3"},
		{"bad magnitude", "3\n\nR1\nRx\n", "line 4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseInput(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParseInput_ShapeErrorWrapsInstruction(t *testing.T) {
	_, err := ParseInput(strings.NewReader("3\nR-1\n"))
	assert.ErrorIs(t, err, model.ErrInvalidInstruction)
}

// ─── LoadFile / ImportExcel Tests ──────────────────────────

func TestLoadFile_Text(t *testing.T) {
	path := filepath.Join(t.TempDir(), "instance.txt")
	require.NoError(t, os.WriteFile(path, []byte("2\nR2\n"), 0644))

	problem, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, model.Dims{Width: 3, Height: 2}, problem.Dims)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "instance.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cellRef, cell))
		}
	}
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestImportExcel(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{4, "board height"},
		{"R1"},
		{},
		{"U1,R1", "notes are ignored"},
		{"# skipped"},
		{"D0"},
	})

	problem, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, problem.Shapes, 3)
	assert.Equal(t, model.Dims{Width: 5, Height: 4}, problem.Dims)
	assert.Equal(t, 2, problem.Shapes[2].ID)
}

func TestImportExcel_BadShapeReportsRow(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{3},
		{"R1"},
		{"Q1"},
	})

	_, err := ImportExcel(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
	assert.ErrorIs(t, err, model.ErrInvalidInstruction)
}

func TestImportExcel_MissingFile(t *testing.T) {
	_, err := ImportExcel(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}
