package engine

import (
	"fmt"
	"math/rand"

	"github.com/sourcegraph/conc/pool"

	"github.com/piwi3910/ShapePacker/internal/model"
)

// Population is an ordered, non-empty set of individuals.
type Population struct {
	individuals []*Individual
}

// NewPopulation wraps individuals into a population.
func NewPopulation(individuals []*Individual) (*Population, error) {
	if len(individuals) == 0 {
		return nil, ErrEmptyPopulation
	}
	return &Population{individuals: individuals}, nil
}

// RandomPopulation builds size random individuals. With more than one worker
// the individuals are built concurrently, each task with its own generator
// seeded from rng in order, so a seeded run stays reproducible.
func RandomPopulation(rng *rand.Rand, shapes []*model.Shape, dims model.Dims, cfg Config, size int) (*Population, error) {
	if size < 1 {
		return nil, ErrEmptyPopulation
	}
	individuals := make([]*Individual, size)

	if cfg.Workers <= 1 {
		for i := range individuals {
			ind, err := RandomIndividual(rng, shapes, dims, cfg)
			if err != nil {
				return nil, fmt.Errorf("failed to build individual %d: %w", i, err)
			}
			individuals[i] = ind
		}
		return NewPopulation(individuals)
	}

	seeds := taskSeeds(rng, size)
	p := pool.New().WithErrors().WithMaxGoroutines(cfg.Workers)
	for i := range individuals {
		i := i
		p.Go(func() error {
			ind, err := RandomIndividual(rand.New(rand.NewSource(seeds[i])), shapes, dims, cfg)
			if err != nil {
				return fmt.Errorf("failed to build individual %d: %w", i, err)
			}
			individuals[i] = ind
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return NewPopulation(individuals)
}

// taskSeeds draws one seed per concurrent task.
func taskSeeds(rng *rand.Rand, n int) []int64 {
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}
	return seeds
}

// Individuals returns the members in order. The slice is shared.
func (p *Population) Individuals() []*Individual { return p.individuals }

// Len returns the population size.
func (p *Population) Len() int { return len(p.individuals) }

// Fittest returns the first individual with the highest fitness.
func (p *Population) Fittest() *Individual {
	best := p.individuals[0]
	for _, ind := range p.individuals[1:] {
		if ind.Fitness() > best.Fitness() {
			best = ind
		}
	}
	return best
}

// AverageFitness returns the mean fitness.
func (p *Population) AverageFitness() float64 {
	total := 0.0
	for _, ind := range p.individuals {
		total += ind.Fitness()
	}
	return total / float64(len(p.individuals))
}

// Fitnesses returns the fitness of every member in order.
func (p *Population) Fitnesses() []float64 {
	out := make([]float64, len(p.individuals))
	for i, ind := range p.individuals {
		out[i] = ind.Fitness()
	}
	return out
}

// Contains reports whether ind is a member (by identity).
func (p *Population) Contains(ind *Individual) bool {
	return containsIndividual(p.individuals, ind)
}

func (p *Population) String() string {
	return fmt.Sprintf("Population(size=%d, best=%.2f, avg=%.2f)",
		len(p.individuals), p.Fittest().Fitness(), p.AverageFitness())
}

func containsIndividual(individuals []*Individual, ind *Individual) bool {
	for _, other := range individuals {
		if other == ind {
			return true
		}
	}
	return false
}
