// ShapePacker packs polyomino shapes onto a fixed-height board with a
// (mu+lambda) evolutionary search, pushing everything as far left as it can.
//
// Build:
//   go build -o shapepacker ./cmd/shapepacker
//
// Run:
//   shapepacker -i shapes.txt -o solution.txt -pdf layout.pdf

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/piwi3910/ShapePacker/internal/engine"
	"github.com/piwi3910/ShapePacker/internal/export"
	"github.com/piwi3910/ShapePacker/internal/importer"
	"github.com/piwi3910/ShapePacker/internal/model"
	"github.com/piwi3910/ShapePacker/internal/project"
	"github.com/piwi3910/ShapePacker/internal/storage"
)

type options struct {
	input      string
	output     string
	configPath string
	preset     string
	presets    string

	mu                int
	lambda            int
	mutationRate      float64
	tournamentSize    int
	maxEvaluations    int
	stagnation        int
	seed              int64
	workers           int
	parentSelection   string
	survivalSelection string

	pdf     string
	labels  string
	dxf     string
	history string
	plot    string
	archive string

	store string
	db    string

	compare  bool
	listRuns bool
	restore  string
	verbose  bool
	quiet    bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "shapepacker: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, set, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	logger := newLogger(stderr, opts)

	if opts.listRuns {
		return listRuns(stdout, opts)
	}
	if opts.restore != "" {
		return restoreArchive(stdout, stderr, opts, logger)
	}

	cfg, err := loadConfig(opts, set)
	if err != nil {
		return err
	}

	problem, err := importer.LoadFile(opts.input)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", opts.input, err)
	}
	logger.Info("loaded problem",
		"input", opts.input,
		"shapes", len(problem.Shapes),
		"width", problem.Dims.Width,
		"height", problem.Dims.Height)

	if opts.compare {
		return compare(stdout, problem, cfg, logger)
	}

	packer, err := engine.New(problem.Shapes, problem.Dims, cfg, engine.WithLogger(logger))
	if err != nil {
		return err
	}

	start := time.Now()
	best, err := packer.Search()
	elapsed := time.Since(start)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if err := best.Validate(problem.Shapes); err != nil {
		return fmt.Errorf("search returned an invalid packing: %w", err)
	}

	if opts.output != "" {
		if err := export.WriteSolutionFile(opts.output, best, &elapsed); err != nil {
			return fmt.Errorf("failed to write solution: %w", err)
		}
	} else if err := export.WriteSolution(stdout, best, &elapsed); err != nil {
		return err
	}

	if err := writeExports(opts, problem, best, packer, elapsed, logger); err != nil {
		return err
	}
	if err := saveRun(opts, problem, best, packer, elapsed, logger); err != nil {
		return err
	}

	printSummary(stderr, opts, best, packer, elapsed)
	return nil
}

func parseFlags(args []string, stderr io.Writer) (options, map[string]bool, error) {
	var opts options
	defaults := engine.DefaultConfig()

	fs := flag.NewFlagSet("shapepacker", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.input, "i", "", "input file with the board height and shape paths (.txt or .xlsx)")
	fs.StringVar(&opts.output, "o", "", "solution file (default stdout)")
	fs.StringVar(&opts.configPath, "config", "", "config file (.json, .toml, .yaml)")
	fs.StringVar(&opts.preset, "preset", "", "named settings preset (default, fast, thorough, diverse or a custom one)")
	fs.StringVar(&opts.presets, "presets", project.DefaultPresetsPath(), "custom presets file")

	fs.IntVar(&opts.mu, "mu", defaults.Mu, "population size")
	fs.IntVar(&opts.lambda, "lambda", defaults.Lambda, "parents selected per generation")
	fs.Float64Var(&opts.mutationRate, "mutation-rate", defaults.MutationRate, "mutation probability and re-placed share")
	fs.IntVar(&opts.tournamentSize, "tournament-size", defaults.TournamentSize, "tournament size")
	fs.IntVar(&opts.maxEvaluations, "max-evals", defaults.MaxEvaluations, "fitness evaluation budget")
	fs.IntVar(&opts.stagnation, "stagnation", defaults.StagnationGenerations, "generations without improvement before stopping")
	fs.Int64Var(&opts.seed, "seed", 0, "random seed (default from clock)")
	fs.IntVar(&opts.workers, "workers", defaults.Workers, "concurrent workers for building individuals")
	fs.StringVar(&opts.parentSelection, "parent-selection", defaults.ParentSelection, "parent selection: tournament, tournament-unique, proportional, truncation, random")
	fs.StringVar(&opts.survivalSelection, "survival-selection", defaults.SurvivalSelection, "survival selection: truncation, tournament, tournament-unique, proportional, random")

	fs.StringVar(&opts.pdf, "pdf", "", "write a PDF layout report")
	fs.StringVar(&opts.labels, "labels", "", "write a PDF sheet of shape labels")
	fs.StringVar(&opts.dxf, "dxf", "", "write the packing as DXF")
	fs.StringVar(&opts.history, "history", "", "write the fitness history as XLSX")
	fs.StringVar(&opts.plot, "plot", "", "write the fitness history as a PNG plot")
	fs.StringVar(&opts.archive, "archive", "", "write a JSON run archive")

	fs.StringVar(&opts.store, "store", "", "keep the run in a store: sqlite (the memory backend does not outlive the process)")
	fs.StringVar(&opts.db, "db", filepath.Join(project.DefaultConfigDir(), "runs.db"), "sqlite database path")

	fs.BoolVar(&opts.compare, "compare", false, "compare the settings against a few variations and print a table")
	fs.BoolVar(&opts.listRuns, "runs", false, "list the runs kept in the sqlite store and exit")
	fs.StringVar(&opts.restore, "restore", "", "re-validate a JSON run archive and write its solution")
	fs.BoolVar(&opts.verbose, "v", false, "log every generation")
	fs.BoolVar(&opts.quiet, "q", false, "only log warnings and errors")

	if err := fs.Parse(args); err != nil {
		return options{}, nil, err
	}
	if opts.input == "" && !opts.listRuns && opts.restore == "" {
		fs.Usage()
		return options{}, nil, errors.New("-i is required")
	}
	if opts.verbose && opts.quiet {
		return options{}, nil, errors.New("-v and -q are mutually exclusive")
	}
	if opts.store != "" && opts.store != "sqlite" {
		return options{}, nil, fmt.Errorf("unsupported -store %q: only sqlite keeps runs across invocations", opts.store)
	}
	if opts.preset != "" && opts.configPath != "" {
		return options{}, nil, errors.New("-preset and -config are mutually exclusive")
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return opts, set, nil
}

func newLogger(w io.Writer, opts options) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case opts.verbose:
		level = slog.LevelDebug
	case opts.quiet:
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig starts from the preset or config file, if any, and applies the
// flags given explicitly on the command line over it.
func loadConfig(opts options, set map[string]bool) (engine.Config, error) {
	cfg := engine.DefaultConfig()
	switch {
	case opts.preset != "":
		preset, err := project.FindPreset(opts.presets, opts.preset)
		if err != nil {
			return engine.Config{}, err
		}
		cfg = preset.Config
	case opts.configPath != "":
		loaded, err := project.LoadConfig(opts.configPath)
		if err != nil {
			return engine.Config{}, err
		}
		cfg = loaded
	}

	if set["mu"] {
		cfg.Mu = opts.mu
	}
	if set["lambda"] {
		cfg.Lambda = opts.lambda
	}
	if set["mutation-rate"] {
		cfg.MutationRate = opts.mutationRate
	}
	if set["tournament-size"] {
		cfg.TournamentSize = opts.tournamentSize
	}
	if set["max-evals"] {
		cfg.MaxEvaluations = opts.maxEvaluations
	}
	if set["stagnation"] {
		cfg.StagnationGenerations = opts.stagnation
	}
	if set["seed"] {
		cfg = cfg.WithSeed(opts.seed)
	}
	if set["workers"] {
		cfg.Workers = opts.workers
	}
	if set["parent-selection"] {
		cfg.ParentSelection = opts.parentSelection
	}
	if set["survival-selection"] {
		cfg.SurvivalSelection = opts.survivalSelection
	}

	if err := cfg.Validate(); err != nil {
		return engine.Config{}, err
	}
	return cfg, nil
}

func writeExports(opts options, problem model.Problem, best *engine.Individual, packer *engine.Packer, elapsed time.Duration, logger *slog.Logger) error {
	history := packer.History()

	if opts.pdf != "" {
		report := export.Report{
			RunID:   packer.RunID(),
			Config:  packer.Config(),
			Elapsed: elapsed,
			History: history,
		}
		if err := export.ExportPDF(opts.pdf, best, report); err != nil {
			return fmt.Errorf("failed to export PDF: %w", err)
		}
		logger.Info("wrote report", "path", opts.pdf)
	}
	if opts.labels != "" {
		if err := export.ExportLabels(opts.labels, best); err != nil {
			return fmt.Errorf("failed to export labels: %w", err)
		}
		logger.Info("wrote labels", "path", opts.labels)
	}
	if opts.dxf != "" {
		if err := export.ExportDXF(opts.dxf, best); err != nil {
			return fmt.Errorf("failed to export DXF: %w", err)
		}
		logger.Info("wrote drawing", "path", opts.dxf)
	}
	if opts.history != "" {
		if err := export.ExportHistoryXLSX(opts.history, history); err != nil {
			return fmt.Errorf("failed to export history: %w", err)
		}
		logger.Info("wrote history", "path", opts.history)
	}
	if opts.plot != "" {
		title := fmt.Sprintf("%s (run %s)", filepath.Base(opts.input), packer.RunID())
		if err := export.ExportFitnessPlot(opts.plot, title, history); err != nil {
			return fmt.Errorf("failed to export plot: %w", err)
		}
		logger.Info("wrote plot", "path", opts.plot)
	}
	if opts.archive != "" {
		archive := project.NewRunArchive(problem, best, packer, elapsed)
		archive.Input = opts.input
		if err := project.ExportRun(opts.archive, archive); err != nil {
			return fmt.Errorf("failed to export archive: %w", err)
		}
		logger.Info("wrote archive", "path", opts.archive)
	}
	return nil
}

func saveRun(opts options, problem model.Problem, best *engine.Individual, packer *engine.Packer, elapsed time.Duration, logger *slog.Logger) error {
	if opts.store == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(opts.db), 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := storage.NewStore(opts.store, opts.db)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := storage.CloseIfSupported(store); err != nil {
			logger.Warn("closing store", "error", err)
		}
	}()

	input, err := filepath.Abs(opts.input)
	if err != nil {
		input = opts.input
	}
	previous, hadPrevious, err := store.BestRun(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to look up previous runs: %w", err)
	}

	record := storage.RunRecord{
		ID:          uuid.NewString(),
		RunID:       packer.RunID(),
		Input:       input,
		CreatedAt:   time.Now().UTC(),
		Shapes:      len(problem.Shapes),
		Width:       problem.Dims.Width,
		Height:      problem.Dims.Height,
		Fitness:     best.Fitness(),
		Generations: packer.Generation(),
		Evaluations: packer.Evaluations(),
		ElapsedMS:   elapsed.Milliseconds(),
		Config:      packer.Config(),
		Solution:    export.SolutionText(best),
	}
	if err := store.SaveRun(ctx, record); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	if err := store.SaveHistory(ctx, record.ID, packer.History()); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}

	if hadPrevious {
		logger.Info("previous best for input",
			"fitness", previous.Fitness,
			"run", previous.RunID,
			"when", humanize.Time(previous.CreatedAt))
	}
	logger.Info("saved run", "store", opts.store, "id", record.ID)
	return nil
}

func compare(w io.Writer, problem model.Problem, cfg engine.Config, logger *slog.Logger) error {
	scenarios := engine.BuildDefaultScenarios(cfg)
	results := engine.CompareScenarios(problem, scenarios, nil, engine.WithLogger(logger))

	fmt.Fprintf(w, "%-32s %10s %12s %12s %10s\n", "Scenario", "Fitness", "Generations", "Evaluations", "Time")
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(w, "%-32s %s\n", r.Scenario.Name, r.Err)
			continue
		}
		fmt.Fprintf(w, "%-32s %10.2f %12s %12s %10s\n",
			r.Scenario.Name,
			r.BestFitness,
			humanize.Comma(int64(r.Generations)),
			humanize.Comma(int64(r.Evaluations)),
			r.Elapsed.Round(time.Millisecond))
	}
	if failed == len(results) {
		return errors.New("every scenario failed")
	}
	return nil
}

func printSummary(w io.Writer, opts options, best *engine.Individual, packer *engine.Packer, elapsed time.Duration) {
	if opts.quiet {
		return
	}
	dims := best.Dims()
	fmt.Fprintf(w, "Packed %d shapes on a %d x %d board in %s\n",
		best.Len(), dims.Width, dims.Height, elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "Fitness %.0f (%s free columns), %s generations, %s evaluations\n",
		best.Fitness(),
		humanize.Comma(int64(best.Fitness())),
		humanize.Comma(int64(packer.Generation())),
		humanize.Comma(int64(packer.Evaluations())))
	if opts.output != "" {
		if info, err := os.Stat(opts.output); err == nil {
			fmt.Fprintf(w, "Solution written to %s (%s)\n", opts.output, humanize.Bytes(uint64(info.Size())))
		}
	}
	if opts.verbose {
		fmt.Fprintln(w, export.FormatSolution(best))
	}
}

func listRuns(w io.Writer, opts options) error {
	store, err := storage.NewStore("sqlite", opts.db)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer storage.CloseIfSupported(store)

	runs, err := store.ListRuns(ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs stored.")
		return nil
	}

	fmt.Fprintf(w, "%-10s %-16s %8s %8s %12s  %s\n", "Run", "When", "Shapes", "Fitness", "Evaluations", "Input")
	for _, r := range runs {
		fmt.Fprintf(w, "%-10s %-16s %8d %8.0f %12s  %s\n",
			r.RunID,
			humanize.Time(r.CreatedAt),
			r.Shapes,
			r.Fitness,
			humanize.Comma(int64(r.Evaluations)),
			r.Input)
	}
	return nil
}

// restoreArchive loads a run archive, checks that its packing is still
// valid for its shapes and writes the solution like a fresh run would.
func restoreArchive(stdout, stderr io.Writer, opts options, logger *slog.Logger) error {
	archive, err := project.ImportRun(opts.restore)
	if err != nil {
		return err
	}
	_, best, err := archive.Restore()
	if err != nil {
		return fmt.Errorf("archive %s: %w", opts.restore, err)
	}
	logger.Info("restored run", "archive", opts.restore, "run", archive.RunID, "fitness", best.Fitness())

	elapsed := time.Duration(archive.ElapsedMS) * time.Millisecond
	if opts.output != "" {
		if err := export.WriteSolutionFile(opts.output, best, &elapsed); err != nil {
			return fmt.Errorf("failed to write solution: %w", err)
		}
	} else if err := export.WriteSolution(stdout, best, &elapsed); err != nil {
		return err
	}
	if opts.pdf != "" {
		report := export.Report{RunID: archive.RunID, Config: archive.Config, Elapsed: elapsed, History: archive.History}
		if err := export.ExportPDF(opts.pdf, best, report); err != nil {
			return fmt.Errorf("failed to export PDF: %w", err)
		}
	}
	if opts.dxf != "" {
		if err := export.ExportDXF(opts.dxf, best); err != nil {
			return fmt.Errorf("failed to export DXF: %w", err)
		}
	}
	if !opts.quiet {
		fmt.Fprintf(stderr, "Restored run %s: %d shapes, fitness %.0f\n", archive.RunID, best.Len(), best.Fitness())
	}
	return nil
}
