package ga

import (
	"context"
	"testing"

	"github.com/snow-ghost/dosage/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReferenceConfigConverges(t *testing.T) {
	res, err := NewEngine(DefaultConfig()).Run(context.Background())
	require.NoError(t, err)

	// fitness peaks at about (0.43, 26.34, 23.23) with value 38.19
	want := core.Vector{0.426, 26.337, 23.234}
	for g := range want {
		assert.InDelta(t, want[g], res.Best[g], 3.0, "component %d", g)
	}
	assert.Greater(t, res.BestFitness, 37.5)
	assert.Less(t, res.BestFitness, 38.2)

	assert.Len(t, res.History, 150)
	assert.Len(t, res.Population, 50)
	assert.Equal(t, res.BestFitness, res.History[len(res.History)-1])
	assert.Equal(t, core.Fitness(res.Best), res.BestFitness)
}

func TestRunDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Generations = 40

	a, err := NewEngine(cfg).Run(context.Background())
	require.NoError(t, err)
	b, err := NewEngine(cfg).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, a, b)

	cfg.RNGSeed++
	c, err := NewEngine(cfg).Run(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, a.Population, c.Population)
}

func TestRunWorkersDoNotChangeResult(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Generations = 30
	cfg.PopSize = 64

	seq, err := NewEngine(cfg).Run(context.Background())
	require.NoError(t, err)

	e := NewEngine(cfg)
	e.Workers = 4
	par, err := e.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, seq, par)
}

func TestHistoryNonDecreasing(t *testing.T) {
	configs := []Config{
		DefaultConfig(),
		{PopSize: 10, Generations: 60, EliteFrac: 0.1, TournamentK: 1, CrossoverRate: 0.5, MutationStd: 30, RNGSeed: 3},
		{PopSize: 5, Generations: 40, EliteFrac: 1.0, TournamentK: 5, CrossoverRate: 1, MutationStd: 10, RNGSeed: 9},
		{PopSize: 30, Generations: 25, EliteFrac: 0.05, TournamentK: 2, CrossoverRate: 0, MutationStd: 0, RNGSeed: 1},
	}
	for _, cfg := range configs {
		res, err := NewEngine(cfg).Run(context.Background())
		require.NoError(t, err)
		require.Len(t, res.History, cfg.Generations)
		for i := 1; i < len(res.History); i++ {
			require.GreaterOrEqual(t, res.History[i], res.History[i-1], "cfg=%+v gen=%d", cfg, i)
		}
		for _, v := range res.Population {
			require.True(t, v.InRange())
		}
	}
}

func TestRunWholePopulationElite(t *testing.T) {
	cfg := Config{PopSize: 2, Generations: 1, EliteFrac: 1.0, TournamentK: 1, CrossoverRate: 0.9, MutationStd: 2, RNGSeed: 5}

	res, err := NewEngine(cfg).Run(context.Background())
	require.NoError(t, err)

	initial := InitializePopulation(2, NewRNG(cfg.RNGSeed))
	fit := ComputeFitness(initial)
	want := fit[argmax(fit)]

	require.Len(t, res.History, 1)
	assert.Equal(t, want, res.History[0])
	assert.Equal(t, want, res.BestFitness)
	// both individuals were carried over verbatim, fittest first
	assert.Equal(t, SelectElite(initial, fit, 2), res.Population)
}

func TestBreedWithoutCrossoverCopiesFirstParent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CrossoverRate = 0
	cfg.MutationStd = 0

	pop := InitializePopulation(cfg.PopSize, NewRNG(8))
	fit := ComputeFitness(pop)

	for seed := int64(0); seed < 25; seed++ {
		replay := NewRNG(seed)
		p1 := TournamentSelection(pop, fit, cfg.TournamentK, replay)

		child := breed(pop, fit, cfg, NewRNG(seed))
		require.Equal(t, p1, child)
	}
}

func TestRunObserverSeesEveryGeneration(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Generations = 20

	var seen []GenerationStats
	e := NewEngine(cfg)
	e.OnGeneration = func(_ context.Context, s GenerationStats) { seen = append(seen, s) }

	res, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, seen, 20)

	for i, s := range seen {
		assert.Equal(t, i, s.Generation)
		assert.Equal(t, res.History[i], s.RunningBest)
		assert.LessOrEqual(t, s.GenerationBest, s.RunningBest)
	}
	assert.True(t, seen[0].Improved)
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TournamentK = cfg.PopSize + 1

	called := false
	e := NewEngine(cfg)
	e.OnGeneration = func(context.Context, GenerationStats) { called = true }

	res, err := e.Run(context.Background())
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Nil(t, res)
	assert.False(t, called)
}

func TestRunCancelledBetweenGenerations(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e := NewEngine(DefaultConfig())
	e.OnGeneration = func(_ context.Context, s GenerationStats) {
		if s.Generation == 3 {
			cancel()
		}
	}

	res, err := e.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}
