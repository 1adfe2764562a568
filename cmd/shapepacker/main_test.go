package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/ShapePacker/internal/project"
	"github.com/piwi3910/ShapePacker/internal/storage"
)

const testInput = `4
R1
U1,R1
D0
R2
`

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shapes.txt")
	require.NoError(t, os.WriteFile(path, []byte(testInput), 0o644))
	return path
}

func smallRunArgs(input string, extra ...string) []string {
	args := []string{"-i", input, "-mu", "8", "-lambda", "4", "-max-evals", "120", "-stagnation", "10", "-seed", "7"}
	return append(args, extra...)
}

func TestRunWritesSolutionToStdout(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(smallRunArgs(writeInput(t), "-q"), &stdout, &stderr))

	out := stdout.String()
	assert.Contains(t, out, "# Elapsed time:")
	assert.Contains(t, out, "# Fitness:")

	var placements int
	for _, line := range strings.Split(out, "\n") {
		if line != "" && !strings.HasPrefix(line, "#") {
			placements++
			assert.Len(t, strings.Split(line, ","), 3, line)
		}
	}
	assert.Equal(t, 4, placements)
}

func TestRunWritesAllOutputs(t *testing.T) {
	dir := t.TempDir()
	out := func(name string) string { return filepath.Join(dir, name) }

	var stdout, stderr bytes.Buffer
	args := smallRunArgs(writeInput(t),
		"-o", out("solution.txt"),
		"-pdf", out("report.pdf"),
		"-labels", out("labels.pdf"),
		"-dxf", out("layout.dxf"),
		"-history", out("history.xlsx"),
		"-plot", out("fitness.png"),
		"-archive", out("run.json"),
		"-store", "sqlite",
		"-db", out("db/runs.db"),
	)
	require.NoError(t, run(args, &stdout, &stderr))

	for _, name := range []string{"solution.txt", "report.pdf", "labels.pdf", "layout.dxf", "history.xlsx", "fitness.png", "run.json", "db/runs.db"} {
		info, err := os.Stat(out(name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Packed 4 shapes")

	archive, err := project.ImportRun(out("run.json"))
	require.NoError(t, err)
	_, best, err := archive.Restore()
	require.NoError(t, err)
	assert.Equal(t, archive.Fitness, best.Fitness())
}

func TestRunCompare(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(smallRunArgs(writeInput(t), "-compare", "-q"), &stdout, &stderr))

	out := stdout.String()
	assert.Contains(t, out, "Scenario")
	assert.Contains(t, out, "Current Settings")
	assert.Contains(t, out, "Lambda 8 (double)")
}

func TestRunRequiresInput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(nil, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-i is required")
}

func TestRunRejectsBadConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(smallRunArgs(writeInput(t), "-mutation-rate", "2"), &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutation_rate")
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mu: 30\nlambda: 12\n"), 0o644))

	opts, set, err := parseFlags([]string{"-i", "x.txt", "-config", path, "-lambda", "6", "-seed", "3"}, &bytes.Buffer{})
	require.NoError(t, err)

	cfg, err := loadConfig(opts, set)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Mu)
	assert.Equal(t, 6, cfg.Lambda)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, int64(3), *cfg.Seed)
}

func TestLoadConfigFromPreset(t *testing.T) {
	presets := filepath.Join(t.TempDir(), "presets.json")
	opts, set, err := parseFlags([]string{"-i", "x.txt", "-preset", "fast", "-presets", presets, "-mu", "9"}, &bytes.Buffer{})
	require.NoError(t, err)

	cfg, err := loadConfig(opts, set)
	require.NoError(t, err)
	fast, err := project.FindPreset(presets, "fast")
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Mu)
	assert.Equal(t, fast.Config.MaxEvaluations, cfg.MaxEvaluations)

	opts.preset = "missing"
	_, err = loadConfig(opts, set)
	assert.ErrorIs(t, err, project.ErrUnknownPreset)
}

func TestPresetAndConfigAreExclusive(t *testing.T) {
	_, _, err := parseFlags([]string{"-i", "x.txt", "-preset", "fast", "-config", "c.toml"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRunListsStoredRuns(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	input := writeInput(t)

	var stdout, stderr bytes.Buffer
	require.NoError(t, run(smallRunArgs(input, "-q", "-store", "sqlite", "-db", db), &stdout, &stderr))

	stdout.Reset()
	require.NoError(t, run([]string{"-runs", "-db", db}, &stdout, &stderr))
	out := stdout.String()
	assert.Contains(t, out, "Fitness")
	assert.Contains(t, out, filepath.Base(input))
}

func TestRunRejectsMemoryStore(t *testing.T) {
	_, _, err := parseFlags([]string{"-i", "x.txt", "-store", "memory"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only sqlite")
}

func TestRunStoresHistoryUnderRecordID(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(smallRunArgs(writeInput(t), "-q", "-store", "sqlite", "-db", db), &stdout, &stderr))

	ctx := context.Background()
	store := storage.NewSQLiteStore(db)
	require.NoError(t, store.Init(ctx))
	t.Cleanup(func() { _ = store.Close() })

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	history, ok, err := store.GetHistory(ctx, runs[0].ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, runs[0].Generations+1, len(history))
}

func TestRunRestoresArchive(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "run.json")
	solution := filepath.Join(dir, "solution.txt")

	var stdout, stderr bytes.Buffer
	require.NoError(t, run(smallRunArgs(writeInput(t), "-q", "-o", solution, "-archive", archivePath), &stdout, &stderr))
	original, err := os.ReadFile(solution)
	require.NoError(t, err)

	stdout.Reset()
	require.NoError(t, run([]string{"-restore", archivePath, "-q"}, &stdout, &stderr))
	assert.Equal(t, lines(string(original)), lines(stdout.String()))
}

func TestRunRestoreRejectsCorruptArchive(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "run.json")

	var stdout, stderr bytes.Buffer
	require.NoError(t, run(smallRunArgs(writeInput(t), "-q", "-archive", archivePath), &stdout, &stderr))

	archive, err := project.ImportRun(archivePath)
	require.NoError(t, err)
	require.NotEmpty(t, archive.Placements)
	for i := range archive.Placements {
		archive.Placements[i].Col = 0
		archive.Placements[i].Row = 0
		archive.Placements[i].Rotation = 0
	}
	require.NoError(t, project.ExportRun(archivePath, archive))

	err = run([]string{"-restore", archivePath, "-q"}, &stdout, &stderr)
	assert.Error(t, err)
}

// lines returns the placement lines of a solution, without the header.
func lines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if l != "" && !strings.HasPrefix(l, "#") {
			out = append(out, l)
		}
	}
	return out
}
