package export

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/ShapePacker/internal/engine"
	"github.com/piwi3910/ShapePacker/internal/model"
)

func TestExportLabels_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.pdf")
	require.NoError(t, ExportLabels(path, buildTestSolution(t)))
	requireFile(t, path, 500)
}

func TestExportLabels_Errors(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, ExportLabels(filepath.Join(dir, "nil.pdf"), nil))

	empty := engine.NewIndividual(nil, model.Dims{Width: 3, Height: 3})
	assert.Error(t, ExportLabels(filepath.Join(dir, "empty.pdf"), empty))
}

func TestExportLabels_MultiplePages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.pdf")
	require.NoError(t, ExportLabels(path, buildManyShapes(t, labelsPerPage+5)))
	requireFile(t, path, 1000)
}

func TestCollectLabelInfos(t *testing.T) {
	labels := CollectLabelInfos(buildTestSolution(t))
	require.Len(t, labels, 3)

	assert.Equal(t, LabelInfo{ShapeID: 0, Path: "R1", Col: 0, Row: 0, Rotation: 0, Cells: 2, Width: 2, Height: 1}, labels[0])
	assert.Equal(t, 1, labels[1].ShapeID)
	assert.Equal(t, "U1", labels[1].Path)
	assert.Equal(t, 1, labels[1].Width)
	assert.Equal(t, 2, labels[1].Height)
}

func TestCollectLabelInfos_RotatedBounds(t *testing.T) {
	s, err := model.ParseShape("R2", 0)
	require.NoError(t, err)
	ind := engine.NewIndividual([]model.Placement{
		model.NewPlacement(s, model.Point{Row: 2, Col: 0}, 1),
	}, model.Dims{Width: 3, Height: 3})

	labels := CollectLabelInfos(ind)
	require.Len(t, labels, 1)
	assert.Equal(t, 1, labels[0].Width)
	assert.Equal(t, 3, labels[0].Height)
	assert.Equal(t, 1, labels[0].Rotation)
}

func TestLabelInfo_JSONKeys(t *testing.T) {
	data, err := json.Marshal(LabelInfo{ShapeID: 4, Path: "D1,R2"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"shape":4`)
	assert.Contains(t, string(data), `"path":"D1,R2"`)
}
