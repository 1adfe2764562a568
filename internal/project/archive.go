package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/piwi3910/ShapePacker/internal/engine"
	"github.com/piwi3910/ShapePacker/internal/model"
)

// ArchiveVersion is written into every run archive.
const ArchiveVersion = "1.0.0"

// PlacementRecord is one placement in archive form.
type PlacementRecord struct {
	ShapeID  int `json:"shape"`
	Col      int `json:"col"`
	Row      int `json:"row"`
	Rotation int `json:"rotation"`
}

// RunArchive is everything needed to reproduce or inspect a finished run:
// the problem, the settings, the best packing and the fitness history.
type RunArchive struct {
	Version    string                   `json:"version"`
	ID         string                   `json:"id"`
	CreatedAt  string                   `json:"created_at"`
	RunID      string                   `json:"run_id"`
	Input      string                   `json:"input,omitempty"`
	Config     engine.Config            `json:"config"`
	Dims       model.Dims               `json:"dims"`
	Shapes     []string                 `json:"shapes"`
	Fitness    float64                  `json:"fitness"`
	Placements []PlacementRecord        `json:"placements"`
	History    []engine.GenerationStats `json:"history,omitempty"`
	ElapsedMS  int64                    `json:"elapsed_ms"`
}

// NewRunArchive captures a finished run. Shapes are stored as their move
// paths, indexed by shape id.
func NewRunArchive(problem model.Problem, best *engine.Individual, packer *engine.Packer, elapsed time.Duration) RunArchive {
	shapes := make([]string, len(problem.Shapes))
	for i, s := range problem.Shapes {
		parts := make([]string, 0, len(s.Instructions()))
		for _, in := range s.Instructions() {
			parts = append(parts, in.String())
		}
		shapes[i] = strings.Join(parts, ",")
	}

	placements := make([]PlacementRecord, 0, best.Len())
	for _, p := range best.SortedPlacements() {
		placements = append(placements, PlacementRecord{
			ShapeID:  p.ShapeID(),
			Col:      p.Position.Col,
			Row:      p.Position.Row,
			Rotation: p.Rotation,
		})
	}

	return RunArchive{
		RunID:      packer.RunID(),
		Config:     packer.Config(),
		Dims:       problem.Dims,
		Shapes:     shapes,
		Fitness:    best.Fitness(),
		Placements: placements,
		History:    packer.History(),
		ElapsedMS:  elapsed.Milliseconds(),
	}
}

// Restore rebuilds the problem and the best individual and checks that the
// stored packing is still valid.
func (a RunArchive) Restore() (model.Problem, *engine.Individual, error) {
	shapes := make([]*model.Shape, len(a.Shapes))
	for i, text := range a.Shapes {
		s, err := model.ParseShape(text, i)
		if err != nil {
			return model.Problem{}, nil, fmt.Errorf("shape %d: %w", i, err)
		}
		shapes[i] = s
	}

	placements := make([]model.Placement, 0, len(a.Placements))
	for _, rec := range a.Placements {
		if rec.ShapeID < 0 || rec.ShapeID >= len(shapes) {
			return model.Problem{}, nil, fmt.Errorf("placement references unknown shape %d", rec.ShapeID)
		}
		pos := model.Point{Row: rec.Row, Col: rec.Col}
		placements = append(placements, model.NewPlacement(shapes[rec.ShapeID], pos, rec.Rotation))
	}

	ind := engine.NewIndividual(placements, a.Dims)
	if err := ind.Validate(shapes); err != nil {
		return model.Problem{}, nil, fmt.Errorf("invalid archived packing: %w", err)
	}
	return model.Problem{Shapes: shapes, Dims: a.Dims}, ind, nil
}

// ExportRun writes the archive as indented JSON, filling in the version, a
// fresh id and the creation time when they are missing.
func ExportRun(exportPath string, archive RunArchive) error {
	if archive.Version == "" {
		archive.Version = ArchiveVersion
	}
	if archive.ID == "" {
		archive.ID = uuid.NewString()
	}
	if archive.CreatedAt == "" {
		archive.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	data, err := json.MarshalIndent(archive, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run archive: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(exportPath), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(exportPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write run archive: %w", err)
	}
	return nil
}

// ImportRun reads a run archive written by ExportRun.
func ImportRun(importPath string) (RunArchive, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return RunArchive{}, fmt.Errorf("failed to read run archive: %w", err)
	}
	var archive RunArchive
	if err := json.Unmarshal(data, &archive); err != nil {
		return RunArchive{}, fmt.Errorf("failed to parse run archive: %w", err)
	}
	if archive.Version == "" {
		return RunArchive{}, fmt.Errorf("invalid run archive: missing version field")
	}
	return archive, nil
}
