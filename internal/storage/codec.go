package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/piwi3910/ShapePacker/internal/engine"
)

const CurrentSchemaVersion = 1

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeRun(run RunRecord) ([]byte, error) {
	if run.SchemaVersion == 0 {
		run.SchemaVersion = CurrentSchemaVersion
	}
	return json.Marshal(run)
}

func DecodeRun(data []byte) (RunRecord, error) {
	var run RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return RunRecord{}, err
	}
	if run.SchemaVersion != CurrentSchemaVersion {
		return RunRecord{}, fmt.Errorf("%w: schema %d, want %d", ErrVersionMismatch, run.SchemaVersion, CurrentSchemaVersion)
	}
	return run, nil
}

func EncodeHistory(history []engine.GenerationStats) ([]byte, error) {
	return json.Marshal(history)
}

func DecodeHistory(data []byte) ([]engine.GenerationStats, error) {
	var history []engine.GenerationStats
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}
