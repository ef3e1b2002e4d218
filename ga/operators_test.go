package ga

import (
	"context"
	"math"
	"testing"

	"github.com/snow-ghost/dosage/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRNGDeterministic(t *testing.T) {
	a, b := NewRNG(42), NewRNG(42)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Uint64(), b.Uint64())
	}
	assert.NotEqual(t, NewRNG(1).Uint64(), NewRNG(2).Uint64())
}

func TestInitializePopulation(t *testing.T) {
	pop := InitializePopulation(500, NewRNG(3))
	require.Len(t, pop, 500)

	var sum core.Vector
	for _, v := range pop {
		require.True(t, v.InRange(), "%v", v)
		for g := range v {
			sum[g] += v[g]
		}
	}
	// uniform mean is 50; 500 draws keep it well inside +-10
	for g := range sum {
		assert.InDelta(t, 50.0, sum[g]/500, 10)
	}

	assert.Equal(t, pop, InitializePopulation(500, NewRNG(3)))
}

func TestComputeFitnessOrder(t *testing.T) {
	pop := core.Population{{50, 40, 30}, {0, 0, 0}, {100, 100, 100}}
	fit := ComputeFitness(pop)
	require.Len(t, fit, 3)
	for i, v := range pop {
		assert.Equal(t, core.Fitness(v), fit[i])
	}
}

func TestComputeFitnessParallelMatchesSequential(t *testing.T) {
	pop := InitializePopulation(257, NewRNG(11))
	want := ComputeFitness(pop)

	for _, workers := range []int{0, 1, 2, 3, 8, 64} {
		got, err := ComputeFitnessParallel(context.Background(), pop, workers)
		require.NoError(t, err)
		require.Equal(t, want, got, "workers=%d", workers)
	}
}

func TestComputeFitnessParallelCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ComputeFitnessParallel(ctx, InitializePopulation(100, NewRNG(1)), 4)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSelectElite(t *testing.T) {
	pop := InitializePopulation(40, NewRNG(5))
	fit := ComputeFitness(pop)

	elite := SelectElite(pop, fit, 7)
	require.Len(t, elite, 7)

	eliteFit := ComputeFitness(elite)
	for i := 1; i < len(eliteFit); i++ {
		assert.GreaterOrEqual(t, eliteFit[i-1], eliteFit[i])
	}

	// every elite is at least as fit as every vector left out
	chosen := map[core.Vector]bool{}
	for _, v := range elite {
		chosen[v] = true
	}
	minElite := eliteFit[len(eliteFit)-1]
	for i, v := range pop {
		if !chosen[v] {
			assert.LessOrEqual(t, fit[i], minElite)
		}
	}
}

func TestSelectEliteStableTies(t *testing.T) {
	pop := core.Population{{1, 1, 1}, {2, 2, 2}, {3, 3, 3}, {4, 4, 4}}
	fit := []float64{5, 9, 5, 9}

	elite := SelectElite(pop, fit, 3)
	assert.Equal(t, core.Population{{2, 2, 2}, {4, 4, 4}, {1, 1, 1}}, elite)
}

func TestSelectEliteDoesNotAlias(t *testing.T) {
	pop := core.Population{{1, 1, 1}, {2, 2, 2}}
	elite := SelectElite(pop, []float64{1, 2}, 2)
	elite[0][0] = 99
	assert.Equal(t, 2.0, pop[1][0])
}

func TestTournamentSelectionPicksFittestDrawn(t *testing.T) {
	pop := InitializePopulation(20, NewRNG(9))
	fit := ComputeFitness(pop)

	for seed := int64(0); seed < 50; seed++ {
		got := TournamentSelection(pop, fit, 4, NewRNG(seed))

		// replay the same draws
		rng := NewRNG(seed)
		best := math.Inf(-1)
		var want core.Vector
		for i := 0; i < 4; i++ {
			j := rng.IntN(len(pop))
			if fit[j] > best {
				best, want = fit[j], pop[j]
			}
		}
		require.Equal(t, want, got)
	}
}

func TestTournamentSelectionTiesFirstDrawn(t *testing.T) {
	pop := core.Population{{1, 0, 0}, {2, 0, 0}, {3, 0, 0}, {4, 0, 0}, {5, 0, 0}}
	fit := []float64{1, 1, 1, 1, 1}

	for seed := int64(0); seed < 20; seed++ {
		first := NewRNG(seed).IntN(len(pop))
		got := TournamentSelection(pop, fit, 5, NewRNG(seed))
		require.Equal(t, pop[first], got)
	}
}

func TestTournamentSizeOneIsUniformDraw(t *testing.T) {
	pop := InitializePopulation(10, NewRNG(2))
	fit := ComputeFitness(pop)
	idx := NewRNG(77).IntN(len(pop))
	assert.Equal(t, pop[idx], TournamentSelection(pop, fit, 1, NewRNG(77)))
}

func TestUniformCrossoverGeneSwap(t *testing.T) {
	a := core.Vector{1, 2, 3}
	b := core.Vector{10, 20, 30}
	sawA, sawB := false, false

	rng := NewRNG(13)
	for i := 0; i < 200; i++ {
		child := UniformCrossover(a, b, rng)
		for g := range child {
			require.True(t, child[g] == a[g] || child[g] == b[g])
			sawA = sawA || child[g] == a[g]
			sawB = sawB || child[g] == b[g]
		}
	}
	assert.True(t, sawA)
	assert.True(t, sawB)
	assert.Equal(t, core.Vector{1, 2, 3}, a)
}

func TestMutateClips(t *testing.T) {
	rng := NewRNG(21)
	for _, v := range []core.Vector{{0, 0, 0}, {100, 100, 100}, {50, 0.5, 99.5}} {
		for i := 0; i < 200; i++ {
			m := Mutate(v, 1000, rng)
			require.True(t, m.InRange(), "%v", m)
		}
	}
}

func TestMutateZeroSigmaIsIdentity(t *testing.T) {
	v := core.Vector{12.5, 33.3, 99.9}
	assert.Equal(t, v, Mutate(v, 0, NewRNG(1)))
}

func TestMutateLeavesInputUntouched(t *testing.T) {
	v := core.Vector{10, 20, 30}
	m := Mutate(v, 5, NewRNG(4))
	assert.Equal(t, core.Vector{10, 20, 30}, v)
	assert.NotEqual(t, v, m)
}

func TestArgmaxFirstOccurrence(t *testing.T) {
	assert.Equal(t, 1, argmax([]float64{1, 3, 2, 3}))
	assert.Equal(t, 0, argmax([]float64{7}))
}
