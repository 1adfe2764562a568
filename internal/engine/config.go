package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

var (
	// ErrInvalidConfig is returned when a hyperparameter is out of range.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrPackingInfeasible is returned when no valid packing was found within
	// the configured number of restarts.
	ErrPackingInfeasible = errors.New("packing infeasible")
	// ErrEmptyPopulation is returned when a population would have no members.
	ErrEmptyPopulation = errors.New("population cannot be empty")
)

// Config holds the hyperparameters of the evolutionary packer. A Config is a
// plain value: build it with DefaultConfig, adjust fields, and hand it to New,
// which validates it once.
type Config struct {
	Mu                    int     `json:"mu" toml:"mu" yaml:"mu"`
	Lambda                int     `json:"lambda" toml:"lambda" yaml:"lambda"`
	MutationRate          float64 `json:"mutation_rate" toml:"mutation_rate" yaml:"mutation_rate"`
	TournamentSize        int     `json:"tournament_size" toml:"tournament_size" yaml:"tournament_size"`
	MaxEvaluations        int     `json:"max_evaluations" toml:"max_evaluations" yaml:"max_evaluations"`
	StagnationGenerations int     `json:"stagnation_generations" toml:"stagnation_generations" yaml:"stagnation_generations"`
	MaxPlacementAttempts  int     `json:"max_placement_attempts" toml:"max_placement_attempts" yaml:"max_placement_attempts"`
	Seed                  *int64  `json:"seed,omitempty" toml:"seed,omitempty" yaml:"seed,omitempty"`

	// MaxRestarts bounds the full restarts of random construction, crossover
	// repair and mutation before ErrPackingInfeasible is returned.
	MaxRestarts int `json:"max_restarts" toml:"max_restarts" yaml:"max_restarts"`
	// LocalSearchRate is the chance that an offspring also gets a local
	// search pass, independent of MutationRate.
	LocalSearchRate   float64 `json:"local_search_rate" toml:"local_search_rate" yaml:"local_search_rate"`
	ParentSelection   string  `json:"parent_selection" toml:"parent_selection" yaml:"parent_selection"`
	SurvivalSelection string  `json:"survival_selection" toml:"survival_selection" yaml:"survival_selection"`
	// Workers > 1 builds individuals concurrently.
	Workers int `json:"workers" toml:"workers" yaml:"workers"`
}

// DefaultConfig returns sensible default parameters.
func DefaultConfig() Config {
	return Config{
		Mu:                    100,
		Lambda:                50,
		MutationRate:          0.05,
		TournamentSize:        5,
		MaxEvaluations:        10000,
		StagnationGenerations: 250,
		MaxPlacementAttempts:  255,
		MaxRestarts:           100,
		LocalSearchRate:       0.05,
		ParentSelection:       SelectionTournament,
		SurvivalSelection:     SelectionTruncation,
		Workers:               1,
	}
}

// WithSeed returns a copy of c with a fixed random seed.
func (c Config) WithSeed(seed int64) Config {
	c.Seed = &seed
	return c
}

// Validate checks every field range.
func (c Config) Validate() error {
	switch {
	case c.Mu < 1:
		return fmt.Errorf("%w: mu must be >= 1, got %d", ErrInvalidConfig, c.Mu)
	case c.Lambda < 1:
		return fmt.Errorf("%w: lambda must be >= 1, got %d", ErrInvalidConfig, c.Lambda)
	case c.MutationRate < 0 || c.MutationRate > 1:
		return fmt.Errorf("%w: mutation_rate must be in [0, 1], got %g", ErrInvalidConfig, c.MutationRate)
	case c.TournamentSize < 1:
		return fmt.Errorf("%w: tournament_size must be >= 1, got %d", ErrInvalidConfig, c.TournamentSize)
	case c.MaxEvaluations < 1:
		return fmt.Errorf("%w: max_evaluations must be >= 1, got %d", ErrInvalidConfig, c.MaxEvaluations)
	case c.StagnationGenerations < 1:
		return fmt.Errorf("%w: stagnation_generations must be >= 1, got %d", ErrInvalidConfig, c.StagnationGenerations)
	case c.MaxPlacementAttempts < 1:
		return fmt.Errorf("%w: max_placement_attempts must be >= 1, got %d", ErrInvalidConfig, c.MaxPlacementAttempts)
	case c.MaxRestarts < 1:
		return fmt.Errorf("%w: max_restarts must be >= 1, got %d", ErrInvalidConfig, c.MaxRestarts)
	case c.LocalSearchRate < 0 || c.LocalSearchRate > 1:
		return fmt.Errorf("%w: local_search_rate must be in [0, 1], got %g", ErrInvalidConfig, c.LocalSearchRate)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidConfig, c.Workers)
	}
	// Empty strategy names fall back to the defaults in New.
	if c.ParentSelection != "" {
		if _, err := NewSelector(c.ParentSelection, c.TournamentSize); err != nil {
			return fmt.Errorf("%w: parent_selection: %v", ErrInvalidConfig, err)
		}
	}
	if c.SurvivalSelection != "" {
		if _, err := NewSelector(c.SurvivalSelection, c.TournamentSize); err != nil {
			return fmt.Errorf("%w: survival_selection: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}

// newRand returns the generator for a run. Without a seed the clock is used.
func newRand(seed *int64) *rand.Rand {
	if seed == nil {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return rand.New(rand.NewSource(*seed))
}
