package ga

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/snow-ghost/dosage/core"
)

// GenerationStats describes one evaluated generation.
type GenerationStats struct {
	Generation     int // 0-based
	GenerationBest float64
	RunningBest    float64
	Improved       bool
}

// Engine runs the generational search.
type Engine struct {
	Config Config

	// Workers > 1 evaluates fitness concurrently. Results do not depend on it.
	Workers int

	// OnGeneration, if set, is called after each generation is recorded.
	OnGeneration func(ctx context.Context, stats GenerationStats)
}

// NewEngine returns an engine for cfg.
func NewEngine(cfg Config) *Engine {
	return &Engine{Config: cfg}
}

// Run validates the configuration and evolves exactly Config.Generations
// generations. ctx is only consulted between generations.
func (e *Engine) Run(ctx context.Context) (*core.Result, error) {
	cfg := e.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng := NewRNG(cfg.RNGSeed)
	eliteSize := cfg.EliteSize()

	pop := InitializePopulation(cfg.PopSize, rng)
	bestFit := math.Inf(-1)
	var best core.Vector
	history := make([]float64, 0, cfg.Generations)

	for gen := 0; gen < cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run cancelled at generation %d: %w", gen, err)
		}

		fitness, err := ComputeFitnessParallel(ctx, pop, e.Workers)
		if err != nil {
			return nil, fmt.Errorf("fitness evaluation failed at generation %d: %w", gen, err)
		}

		i := argmax(fitness)
		improved := fitness[i] > bestFit
		if improved {
			bestFit, best = fitness[i], pop[i]
		}
		history = append(history, bestFit)

		if e.OnGeneration != nil {
			e.OnGeneration(ctx, GenerationStats{
				Generation:     gen,
				GenerationBest: fitness[i],
				RunningBest:    bestFit,
				Improved:       improved,
			})
		}

		next := make(core.Population, 0, cfg.PopSize)
		next = append(next, SelectElite(pop, fitness, eliteSize)...)
		for len(next) < cfg.PopSize {
			next = append(next, breed(pop, fitness, cfg, rng))
		}
		pop = next
	}

	return &core.Result{
		Best:        best,
		BestFitness: bestFit,
		History:     history,
		Population:  pop,
	}, nil
}

// breed produces one mutated child. The draw order is fixed: two
// tournaments, the crossover coin, crossover genes, mutation noise.
func breed(pop core.Population, fitness []float64, cfg Config, rng *rand.Rand) core.Vector {
	p1 := TournamentSelection(pop, fitness, cfg.TournamentK, rng)
	p2 := TournamentSelection(pop, fitness, cfg.TournamentK, rng)

	child := p1
	if rng.Float64() < cfg.CrossoverRate {
		child = UniformCrossover(p1, p2, rng)
	}
	return Mutate(child, cfg.MutationStd, rng)
}
