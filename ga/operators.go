package ga

import (
	"context"
	"math/rand/v2"
	"slices"

	"github.com/snow-ghost/dosage/core"
	"golang.org/x/sync/errgroup"
)

// NewRNG returns the generator for a run. The same seed always yields the
// same stream.
func NewRNG(seed int64) *rand.Rand {
	s := uint64(seed)
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

// InitializePopulation draws size vectors uniformly from [MinDose, MaxDose].
func InitializePopulation(size int, rng *rand.Rand) core.Population {
	pop := make(core.Population, size)
	for i := range pop {
		for g := range pop[i] {
			pop[i][g] = core.MinDose + rng.Float64()*(core.MaxDose-core.MinDose)
		}
	}
	return pop
}

// ComputeFitness returns the fitness of every vector, in population order.
func ComputeFitness(pop core.Population) []float64 {
	return core.FitnessBatch(pop)
}

// ComputeFitnessParallel splits the population into contiguous chunks
// evaluated by up to workers goroutines. The output equals ComputeFitness.
func ComputeFitnessParallel(ctx context.Context, pop core.Population, workers int) ([]float64, error) {
	if workers <= 1 || len(pop) < 2*workers {
		return ComputeFitness(pop), nil
	}

	out := make([]float64, len(pop))
	chunk := (len(pop) + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < len(pop); start += chunk {
		lo, hi := start, min(start+chunk, len(pop))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				out[i] = core.Fitness(pop[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// SelectElite returns the eliteSize fittest vectors in descending fitness
// order. Equal fitness keeps the original population order.
func SelectElite(pop core.Population, fitness []float64, eliteSize int) core.Population {
	idx := make([]int, len(pop))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		switch {
		case fitness[a] > fitness[b]:
			return -1
		case fitness[a] < fitness[b]:
			return 1
		default:
			return 0
		}
	})

	eliteSize = min(eliteSize, len(pop))
	elite := make(core.Population, eliteSize)
	for i := range elite {
		elite[i] = pop[idx[i]]
	}
	return elite
}

// TournamentSelection draws k indices with replacement and returns the
// fittest of them; the first drawn wins ties.
func TournamentSelection(pop core.Population, fitness []float64, k int, rng *rand.Rand) core.Vector {
	best := rng.IntN(len(pop))
	for i := 1; i < k; i++ {
		c := rng.IntN(len(pop))
		if fitness[c] > fitness[best] {
			best = c
		}
	}
	return pop[best]
}

// UniformCrossover takes each component from a or b with equal probability.
func UniformCrossover(a, b core.Vector, rng *rand.Rand) core.Vector {
	var child core.Vector
	for g := range child {
		if rng.Float64() < 0.5 {
			child[g] = a[g]
		} else {
			child[g] = b[g]
		}
	}
	return child
}

// Mutate adds N(0, sigma^2) noise to every component, then clips.
func Mutate(v core.Vector, sigma float64, rng *rand.Rand) core.Vector {
	for g := range v {
		v[g] += rng.NormFloat64() * sigma
	}
	return v.Clip()
}

// argmax returns the first index holding the maximum value.
func argmax(xs []float64) int {
	best := 0
	for i := 1; i < len(xs); i++ {
		if xs[i] > xs[best] {
			best = i
		}
	}
	return best
}
