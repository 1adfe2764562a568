// Package storage keeps a history of packing runs. A memory backend serves
// tests and one-off runs; the SQLite backend keeps results across runs.
package storage

import (
	"context"
	"time"

	"github.com/piwi3910/ShapePacker/internal/engine"
)

// RunRecord summarizes one finished search.
type RunRecord struct {
	SchemaVersion int           `json:"schema_version"`
	ID            string        `json:"id"`
	RunID         string        `json:"run_id"`
	Input         string        `json:"input"`
	CreatedAt     time.Time     `json:"created_at"`
	Shapes        int           `json:"shapes"`
	Width         int           `json:"width"`
	Height        int           `json:"height"`
	Fitness       float64       `json:"fitness"`
	Generations   int           `json:"generations"`
	Evaluations   int           `json:"evaluations"`
	ElapsedMS     int64         `json:"elapsed_ms"`
	Config        engine.Config `json:"config"`
	// Solution is the solution file body, one "col,row,rotation" line per shape.
	Solution string `json:"solution"`
}

// Store persists run records and their per-generation history.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run RunRecord) error
	GetRun(ctx context.Context, id string) (RunRecord, bool, error)
	// ListRuns returns every run, newest first.
	ListRuns(ctx context.Context) ([]RunRecord, error)
	// BestRun returns the run with the highest fitness for an input.
	BestRun(ctx context.Context, input string) (RunRecord, bool, error)
	SaveHistory(ctx context.Context, runID string, history []engine.GenerationStats) error
	GetHistory(ctx context.Context, runID string) ([]engine.GenerationStats, bool, error)
}
