package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/piwi3910/ShapePacker/internal/model"
	"github.com/piwi3910/ShapePacker/internal/termination"
)

// ErrAlreadySearched is returned when Search is called twice on one Packer.
var ErrAlreadySearched = errors.New("packer has already searched")

// State is the lifecycle stage of a Packer.
type State int

const (
	StateUninitialized State = iota
	StateRunning
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// GenerationStats summarizes one generation. Generation 0 is the initial
// population.
type GenerationStats struct {
	Generation  int     `json:"generation"`
	Best        float64 `json:"best"`
	Average     float64 `json:"average"`
	BestEver    float64 `json:"best_ever"`
	Evaluations int     `json:"evaluations"`
}

// Option customizes a Packer.
type Option func(*Packer)

// WithParentSelection overrides the strategy named by Config.ParentSelection.
func WithParentSelection(s Selector) Option {
	return func(p *Packer) { p.parentSelection = s }
}

// WithSurvivalSelection overrides the strategy named by Config.SurvivalSelection.
func WithSurvivalSelection(s Selector) Option {
	return func(p *Packer) { p.survivalSelection = s }
}

func WithCrossover(c Crossover) Option {
	return func(p *Packer) { p.crossover = c }
}

func WithMutation(m Mutation) Option {
	return func(p *Packer) { p.mutation = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Packer) { p.logger = logger }
}

// WithObserver registers a callback invoked after every generation.
func WithObserver(fn func(GenerationStats)) Option {
	return func(p *Packer) { p.observer = fn }
}

// Packer runs a (mu+lambda) evolutionary search for a left-compact packing.
// A Packer performs a single search; build a new one for every run.
type Packer struct {
	shapes []*model.Shape
	dims   model.Dims
	config Config
	rng    *rand.Rand
	runID  string

	parentSelection   Selector
	survivalSelection Selector
	crossover         Crossover
	mutation          Mutation
	localSearch       Mutation
	logger            *slog.Logger
	observer          func(GenerationStats)

	state       State
	generation  int
	evaluations int
	population  *Population
	bestEver    *Individual
	history     []GenerationStats
}

// New validates cfg and builds a packer for shapes on a board of dims.
func New(shapes []*model.Shape, dims model.Dims, cfg Config, opts ...Option) (*Packer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Packer{
		shapes:      append([]*model.Shape(nil), shapes...),
		dims:        dims,
		config:      cfg,
		rng:         newRand(cfg.Seed),
		runID:       uuid.New().String()[:8],
		crossover:   UniformCrossover{},
		mutation:    RandomReplaceMutation{},
		localSearch: LocalSearchMutation{},
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}

	var err error
	if p.parentSelection == nil {
		if p.parentSelection, err = selectorOrDefault(cfg.ParentSelection, SelectionTournament, cfg.TournamentSize); err != nil {
			return nil, err
		}
	}
	if p.survivalSelection == nil {
		if p.survivalSelection, err = selectorOrDefault(cfg.SurvivalSelection, SelectionTruncation, cfg.TournamentSize); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func selectorOrDefault(name, fallback string, tournamentSize int) (Selector, error) {
	if name == "" {
		name = fallback
	}
	s, err := NewSelector(name, tournamentSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return s, nil
}

// Search evolves the population until one of conditions is met and returns
// the best individual seen. Without conditions the run stops after
// Config.MaxEvaluations evaluations or Config.StagnationGenerations
// generations without improvement.
func (p *Packer) Search(conditions ...termination.Condition) (*Individual, error) {
	if p.state != StateUninitialized {
		return nil, ErrAlreadySearched
	}
	p.state = StateRunning
	defer func() { p.state = StateTerminated }()

	log := p.logger.With("run", p.runID)
	log.Info("search started",
		"shapes", len(p.shapes),
		"width", p.dims.Width,
		"height", p.dims.Height,
		"mu", p.config.Mu,
		"lambda", p.config.Lambda,
		"parent_selection", p.parentSelection.Name(),
		"survival_selection", p.survivalSelection.Name(),
	)

	if len(p.shapes) == 0 {
		p.bestEver = NewIndividual(nil, p.dims)
		pop, _ := NewPopulation([]*Individual{p.bestEver})
		p.population = pop
		p.record()
		log.Info("search finished", "reason", "no shapes", "best", p.bestEver.Fitness())
		return p.bestEver, nil
	}

	pop, err := RandomPopulation(p.rng, p.shapes, p.dims, p.config, p.config.Mu)
	if err != nil {
		return nil, fmt.Errorf("failed to build initial population: %w", err)
	}
	p.population = pop
	p.evaluations = pop.Len()
	p.bestEver = pop.Fittest()
	p.record()

	if len(conditions) == 0 {
		conditions = p.defaultConditions()
	}
	manager := termination.NewManager(conditions, func() []float64 {
		return p.population.Fitnesses()
	})
	manager.Reset()

	for !manager.ShouldTerminate() {
		if err := p.step(); err != nil {
			log.Error("search failed", "generation", p.generation+1, "error", err)
			return nil, fmt.Errorf("generation %d: %w", p.generation+1, err)
		}
		stats := p.record()
		log.Debug("generation",
			"generation", stats.Generation,
			"best", stats.Best,
			"average", stats.Average,
			"best_ever", stats.BestEver,
			"evaluations", stats.Evaluations,
		)
	}

	log.Info("search finished",
		"generations", p.generation,
		"evaluations", p.evaluations,
		"best", p.bestEver.Fitness(),
	)
	return p.bestEver, nil
}

func (p *Packer) defaultConditions() []termination.Condition {
	return []termination.Condition{
		termination.NewNumberOfFitnessEvaluations(p.config.MaxEvaluations),
		termination.NewNoChangeInBestFitness(p.config.StagnationGenerations),
	}
}

// step runs one generation.
func (p *Packer) step() error {
	elite := p.population.Fittest()

	parents, err := p.parentSelection.Select(p.rng, p.population.Individuals(), p.config.Lambda)
	if err != nil {
		return fmt.Errorf("parent selection: %w", err)
	}
	if len(parents) == 0 {
		return ErrEmptyPopulation
	}

	offspring, err := p.breed(parents)
	if err != nil {
		return err
	}
	p.evaluations += len(offspring)

	combined := make([]*Individual, 0, p.population.Len()+len(offspring)+1)
	combined = append(combined, p.population.Individuals()...)
	combined = append(combined, offspring...)
	if !containsIndividual(combined, elite) {
		combined = append(combined, elite)
	}

	survivors, err := p.survivalSelection.Select(p.rng, combined, p.config.Mu)
	if err != nil {
		return fmt.Errorf("survivor selection: %w", err)
	}
	survivors = append([]*Individual(nil), survivors...)
	if len(survivors) > 0 && !containsIndividual(survivors, elite) {
		survivors[len(survivors)-1] = elite
	}

	next, err := NewPopulation(survivors)
	if err != nil {
		return err
	}
	p.population = next
	p.generation++

	if best := next.Fittest(); best.Fitness() > p.bestEver.Fitness() {
		p.bestEver = best
	}
	return nil
}

// breed pairs parents in order, wrapping the last one to parents[0] when the
// count is odd, and produces one child per pair.
func (p *Packer) breed(parents []*Individual) ([]*Individual, error) {
	pairs := (len(parents) + 1) / 2
	children := make([]*Individual, pairs)

	if p.config.Workers <= 1 {
		for i := range children {
			child, err := p.offspring(p.rng, parents[2*i], parents[(2*i+1)%len(parents)])
			if err != nil {
				return nil, err
			}
			children[i] = child
		}
		return children, nil
	}

	seeds := taskSeeds(p.rng, pairs)
	wp := pool.New().WithErrors().WithMaxGoroutines(p.config.Workers)
	for i := range children {
		i := i
		wp.Go(func() error {
			rng := rand.New(rand.NewSource(seeds[i]))
			child, err := p.offspring(rng, parents[2*i], parents[(2*i+1)%len(parents)])
			if err != nil {
				return err
			}
			children[i] = child
			return nil
		})
	}
	if err := wp.Wait(); err != nil {
		return nil, err
	}
	return children, nil
}

// offspring applies crossover, then mutation with MutationRate and local
// search with LocalSearchRate.
func (p *Packer) offspring(rng *rand.Rand, parent1, parent2 *Individual) (*Individual, error) {
	child, err := p.crossover.Crossover(rng, parent1, parent2, p.dims, p.config)
	if err != nil {
		return nil, fmt.Errorf("%s crossover: %w", p.crossover.Name(), err)
	}
	if rng.Float64() < p.config.MutationRate {
		if child, err = p.mutation.Mutate(rng, child, p.dims, p.config); err != nil {
			return nil, fmt.Errorf("%s mutation: %w", p.mutation.Name(), err)
		}
	}
	if rng.Float64() < p.config.LocalSearchRate {
		if child, err = p.localSearch.Mutate(rng, child, p.dims, p.config); err != nil {
			return nil, fmt.Errorf("%s mutation: %w", p.localSearch.Name(), err)
		}
	}
	return child, nil
}

func (p *Packer) record() GenerationStats {
	stats := GenerationStats{
		Generation:  p.generation,
		Best:        p.population.Fittest().Fitness(),
		Average:     p.population.AverageFitness(),
		BestEver:    p.bestEver.Fitness(),
		Evaluations: p.evaluations,
	}
	p.history = append(p.history, stats)
	if p.observer != nil {
		p.observer(stats)
	}
	return stats
}

func (p *Packer) State() State { return p.state }

// Generation returns the number of completed generations.
func (p *Packer) Generation() int { return p.generation }

// Evaluations returns the number of individuals built so far.
func (p *Packer) Evaluations() int { return p.evaluations }

// BestEver returns the fittest individual seen, or nil before Search.
func (p *Packer) BestEver() *Individual { return p.bestEver }

// Population returns the current population, or nil before Search.
func (p *Packer) Population() *Population { return p.population }

// History returns a copy of the per-generation statistics.
func (p *Packer) History() []GenerationStats {
	return append([]GenerationStats(nil), p.history...)
}

func (p *Packer) RunID() string { return p.runID }

func (p *Packer) Config() Config { return p.config }
