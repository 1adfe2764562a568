// Package importer loads packing problems from plain-text instance files and
// Excel workbooks. Both formats share one layout: the first entry holds the
// board height, every following non-blank entry is one shape path.
package importer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/ShapePacker/internal/model"
)

// ErrNoHeight is returned when an input has no board height entry.
var ErrNoHeight = errors.New("missing board height")

// entry is one non-empty input line or spreadsheet row.
type entry struct {
	label string
	text  string
}

// ParseInput reads a text instance. The first line is "height [ignored...]";
// each following line is a shape path such as "D1,R2,U1". Blank lines and
// lines starting with '#' are skipped. Shape ids count shape lines from 0.
func ParseInput(r io.Reader) (model.Problem, error) {
	var entries []entry
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		entries = append(entries, entry{label: fmt.Sprintf("line %d", lineNum), text: text})
	}
	if err := scanner.Err(); err != nil {
		return model.Problem{}, fmt.Errorf("failed to read input: %w", err)
	}
	return buildProblem(entries)
}

// LoadFile opens path and parses it by extension: .xlsx and .xlsm go through
// ImportExcel, anything else is read as text.
func LoadFile(path string) (model.Problem, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ImportExcel(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return model.Problem{}, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	problem, err := ParseInput(f)
	if err != nil {
		return model.Problem{}, fmt.Errorf("%s: %w", path, err)
	}
	return problem, nil
}

// ImportExcel reads the first sheet of a workbook: cell A1 is the board
// height and column A of the following rows holds one shape path per row.
func ImportExcel(path string) (model.Problem, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return model.Problem{}, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return model.Problem{}, fmt.Errorf("%s: workbook has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return model.Problem{}, fmt.Errorf("failed to read Excel data: %w", err)
	}

	var entries []entry
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		text := strings.TrimSpace(row[0])
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		entries = append(entries, entry{label: fmt.Sprintf("row %d", i+1), text: text})
	}

	problem, err := buildProblem(entries)
	if err != nil {
		return model.Problem{}, fmt.Errorf("%s: %w", path, err)
	}
	return problem, nil
}

// buildProblem turns the height entry and shape entries into a problem. The
// board width is the sum over all shapes of max(bounding box width, height),
// which always leaves room for a single-row layout.
func buildProblem(entries []entry) (model.Problem, error) {
	if len(entries) == 0 {
		return model.Problem{}, ErrNoHeight
	}

	head := entries[0]
	fields := strings.Fields(head.text)
	height, err := strconv.Atoi(fields[0])
	if err != nil {
		return model.Problem{}, fmt.Errorf("%s: invalid board height %q", head.label, fields[0])
	}
	if height < 1 {
		return model.Problem{}, fmt.Errorf("%s: board height must be positive, got %d", head.label, height)
	}

	shapes := make([]*model.Shape, 0, len(entries)-1)
	width := 0
	for _, e := range entries[1:] {
		shape, err := model.ParseShape(e.text, len(shapes))
		if err != nil {
			return model.Problem{}, fmt.Errorf("%s: %w", e.label, err)
		}
		w, h := shape.BoundingBox()
		width += max(w, h)
		shapes = append(shapes, shape)
	}

	return model.Problem{
		Shapes: shapes,
		Dims:   model.Dims{Width: width, Height: height},
	}, nil
}
