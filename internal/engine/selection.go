package engine

import (
	"fmt"
	"math/rand"
	"sort"
)

// Strategy names accepted by NewSelector and the config.
const (
	SelectionTournament       = "tournament"
	SelectionTournamentUnique = "tournament-unique"
	SelectionTruncation       = "truncation"
	SelectionProportional     = "proportional"
	SelectionRandom           = "random"
)

// Selector picks count individuals from a pool.
type Selector interface {
	Name() string
	Select(rng *rand.Rand, pool []*Individual, count int) ([]*Individual, error)
}

// NewSelector returns the strategy registered under name.
func NewSelector(name string, tournamentSize int) (Selector, error) {
	switch name {
	case SelectionTournament:
		return TournamentSelection{K: tournamentSize, WithReplacement: true}, nil
	case SelectionTournamentUnique:
		return TournamentSelection{K: tournamentSize, WithReplacement: false}, nil
	case SelectionTruncation:
		return TruncationSelection{}, nil
	case SelectionProportional:
		return FitnessProportionalSelection{}, nil
	case SelectionRandom:
		return RandomSelection{}, nil
	default:
		return nil, fmt.Errorf("unknown selection strategy %q", name)
	}
}

// TournamentSelection runs count tournaments of K uniformly sampled
// individuals; the fittest of each wins. Without replacement every winner
// leaves the pool.
type TournamentSelection struct {
	K               int
	WithReplacement bool
}

func (ts TournamentSelection) Name() string {
	if ts.WithReplacement {
		return SelectionTournament
	}
	return SelectionTournamentUnique
}

func (ts TournamentSelection) Select(rng *rand.Rand, pool []*Individual, count int) ([]*Individual, error) {
	if ts.K < 1 {
		return nil, fmt.Errorf("tournament size must be >= 1, got %d", ts.K)
	}
	if err := checkCount(pool, count); err != nil {
		return nil, err
	}
	if !ts.WithReplacement && count > len(pool) {
		return nil, fmt.Errorf("cannot select %d individuals without replacement from population of %d", count, len(pool))
	}

	remaining := append([]*Individual(nil), pool...)
	selected := make([]*Individual, 0, count)
	for len(selected) < count {
		k := min(ts.K, len(remaining))
		// Partial Fisher-Yates: the first k entries become the sample.
		winner := -1
		for i := 0; i < k; i++ {
			j := i + rng.Intn(len(remaining)-i)
			remaining[i], remaining[j] = remaining[j], remaining[i]
			if winner < 0 || remaining[i].Fitness() > remaining[winner].Fitness() {
				winner = i
			}
		}
		selected = append(selected, remaining[winner])
		if !ts.WithReplacement {
			remaining = append(remaining[:winner], remaining[winner+1:]...)
		}
	}
	return selected, nil
}

// TruncationSelection keeps the count fittest individuals. Ties keep pool
// order.
type TruncationSelection struct{}

func (TruncationSelection) Name() string { return SelectionTruncation }

func (TruncationSelection) Select(_ *rand.Rand, pool []*Individual, count int) ([]*Individual, error) {
	if err := checkCount(pool, count); err != nil {
		return nil, err
	}
	ranked := append([]*Individual(nil), pool...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Fitness() > ranked[j].Fitness()
	})
	if count < len(ranked) {
		ranked = ranked[:count]
	}
	return ranked, nil
}

// FitnessProportionalSelection is roulette-wheel selection over cumulative
// fitness. Negative fitness is rejected; an all-zero pool is sampled
// uniformly.
type FitnessProportionalSelection struct{}

func (FitnessProportionalSelection) Name() string { return SelectionProportional }

func (FitnessProportionalSelection) Select(rng *rand.Rand, pool []*Individual, count int) ([]*Individual, error) {
	if err := checkCount(pool, count); err != nil {
		return nil, err
	}
	if count == 0 {
		return []*Individual{}, nil
	}

	cumulative := make([]float64, len(pool))
	total := 0.0
	for i, ind := range pool {
		f := ind.Fitness()
		if f < 0 {
			return nil, fmt.Errorf("fitness proportional selection requires non-negative fitness, got %g", f)
		}
		total += f
		cumulative[i] = total
	}
	if total == 0 {
		return RandomSelection{}.Select(rng, pool, count)
	}

	selected := make([]*Individual, count)
	for i := range selected {
		pick := rng.Float64() * total
		idx := sort.Search(len(cumulative), func(j int) bool { return cumulative[j] > pick })
		selected[i] = pool[min(idx, len(pool)-1)]
	}
	return selected, nil
}

// RandomSelection draws uniformly with replacement.
type RandomSelection struct{}

func (RandomSelection) Name() string { return SelectionRandom }

func (RandomSelection) Select(rng *rand.Rand, pool []*Individual, count int) ([]*Individual, error) {
	if err := checkCount(pool, count); err != nil {
		return nil, err
	}
	selected := make([]*Individual, count)
	for i := range selected {
		selected[i] = pool[rng.Intn(len(pool))]
	}
	return selected, nil
}

// checkCount rejects negative counts and drawing from an empty pool.
func checkCount(pool []*Individual, count int) error {
	if count < 0 {
		return fmt.Errorf("selection count must be >= 0, got %d", count)
	}
	if count > 0 && len(pool) == 0 {
		return ErrEmptyPopulation
	}
	return nil
}
