// Package termination decides when an evolutionary run should stop. A
// Manager samples the current population's fitness vector and asks each
// Condition in turn; conditions keep whatever history they need.
package termination

import (
	"math"
	"time"
)

// Condition is one stopping criterion. Met is called once per generation
// with the current fitness vector.
type Condition interface {
	Met(fitnesses []float64) bool
	Reset()
}

// Manager evaluates a set of conditions against a fitness sampler.
type Manager struct {
	conditions []Condition
	sampler    func() []float64
}

// NewManager binds conditions to a sampler returning the current fitnesses.
func NewManager(conditions []Condition, sampler func() []float64) *Manager {
	return &Manager{conditions: conditions, sampler: sampler}
}

// ShouldTerminate samples the fitness vector once and reports whether any
// condition is met. Conditions after the first met one are not consulted.
func (m *Manager) ShouldTerminate() bool {
	fitnesses := m.sampler()
	for _, c := range m.conditions {
		if c.Met(fitnesses) {
			return true
		}
	}
	return false
}

// Reset clears the history of every condition.
func (m *Manager) Reset() {
	for _, c := range m.conditions {
		c.Reset()
	}
}

// FitnessTarget stops once any individual reaches Target.
type FitnessTarget struct {
	Target float64
}

func NewFitnessTarget(target float64) *FitnessTarget {
	return &FitnessTarget{Target: target}
}

func (c *FitnessTarget) Met(fitnesses []float64) bool {
	return len(fitnesses) > 0 && maxOf(fitnesses) >= c.Target
}

func (c *FitnessTarget) Reset() {}

// Deadline stops once the wall clock passes At.
type Deadline struct {
	At  time.Time
	now func() time.Time
}

func NewDeadline(at time.Time) *Deadline {
	return &Deadline{At: at, now: time.Now}
}

// NewTimeout stops after d has elapsed from now.
func NewTimeout(d time.Duration) *Deadline {
	return NewDeadline(time.Now().Add(d))
}

func (c *Deadline) Met([]float64) bool {
	return !c.now().Before(c.At)
}

func (c *Deadline) Reset() {}

// NumberOfGenerations stops after Generations checks.
type NumberOfGenerations struct {
	Generations int
	seen        int
}

func NewNumberOfGenerations(generations int) *NumberOfGenerations {
	return &NumberOfGenerations{Generations: generations}
}

func (c *NumberOfGenerations) Met([]float64) bool {
	c.seen++
	return c.seen > c.Generations
}

func (c *NumberOfGenerations) Reset() { c.seen = 0 }

// NumberOfFitnessEvaluations counts the size of every sampled fitness vector
// and stops once the total exceeds Evaluations.
type NumberOfFitnessEvaluations struct {
	Evaluations int
	seen        int
}

func NewNumberOfFitnessEvaluations(evaluations int) *NumberOfFitnessEvaluations {
	return &NumberOfFitnessEvaluations{Evaluations: evaluations}
}

func (c *NumberOfFitnessEvaluations) Met(fitnesses []float64) bool {
	c.seen += len(fitnesses)
	return c.seen > c.Evaluations
}

func (c *NumberOfFitnessEvaluations) Reset() { c.seen = 0 }

// NoChangeInBestFitness stops when the best fitness has stagnated over the
// last Generations samples.
type NoChangeInBestFitness struct {
	Generations int
	window      []float64
}

func NewNoChangeInBestFitness(generations int) *NoChangeInBestFitness {
	return &NoChangeInBestFitness{Generations: generations}
}

func (c *NoChangeInBestFitness) Met(fitnesses []float64) bool {
	if len(fitnesses) == 0 {
		return false
	}
	c.window = push(c.window, maxOf(fitnesses), c.Generations)
	return stagnant(c.window, c.Generations)
}

func (c *NoChangeInBestFitness) Reset() { c.window = nil }

// NoChangeInAverageFitness stops when the mean fitness has stagnated over the
// last Generations samples.
type NoChangeInAverageFitness struct {
	Generations int
	window      []float64
}

func NewNoChangeInAverageFitness(generations int) *NoChangeInAverageFitness {
	return &NoChangeInAverageFitness{Generations: generations}
}

func (c *NoChangeInAverageFitness) Met(fitnesses []float64) bool {
	if len(fitnesses) == 0 {
		return false
	}
	total := 0.0
	for _, f := range fitnesses {
		total += f
	}
	c.window = push(c.window, total/float64(len(fitnesses)), c.Generations)
	return stagnant(c.window, c.Generations)
}

func (c *NoChangeInAverageFitness) Reset() { c.window = nil }

// push appends v and drops the oldest values beyond limit.
func push(window []float64, v float64, limit int) []float64 {
	window = append(window, v)
	if over := len(window) - limit; over > 0 {
		window = append(window[:0], window[over:]...)
	}
	return window
}

// stagnant compares the mean of the oldest quarter of a full window with
// every later value; no later value above that mean means no progress.
func stagnant(window []float64, limit int) bool {
	if limit < 1 || len(window) < limit {
		return false
	}
	quartile := int(math.Ceil(float64(len(window)) / 4))
	oldest := 0.0
	for _, v := range window[:quartile] {
		oldest += v
	}
	oldest /= float64(quartile)

	for _, v := range window[quartile:] {
		if v > oldest {
			return false
		}
	}
	return true
}

func maxOf(values []float64) float64 {
	best := values[0]
	for _, v := range values[1:] {
		best = max(best, v)
	}
	return best
}
