package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/snow-ghost/dosage/ga"
	"github.com/snow-ghost/dosage/pkg/observability"
	"github.com/snow-ghost/dosage/report"
	"github.com/snow-ghost/dosage/worker"
	"github.com/spf13/cobra"
)

const (
	resultFile     = "best_dosage.json"
	trajectoryFile = "fitness_curve.xlsx"
	paramsFile     = "params.yaml"
)

type runOptions struct {
	configPath string
	outDir     string
	workers    int
	overrides  ga.Config
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	defaults := ga.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one optimization and write the results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptimize(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "YAML file with run parameters")
	f.StringVar(&opts.outDir, "out", "results", "directory for the result files")
	f.IntVar(&opts.workers, "workers", 1, "goroutines evaluating fitness")
	f.IntVar(&opts.overrides.PopSize, "pop-size", defaults.PopSize, "population size")
	f.IntVar(&opts.overrides.Generations, "generations", defaults.Generations, "number of generations")
	f.Float64Var(&opts.overrides.EliteFrac, "elite-frac", defaults.EliteFrac, "fraction of the population kept as elite")
	f.IntVar(&opts.overrides.TournamentK, "tournament-k", defaults.TournamentK, "tournament size")
	f.Float64Var(&opts.overrides.CrossoverRate, "crossover-rate", defaults.CrossoverRate, "probability of crossover")
	f.Float64Var(&opts.overrides.MutationStd, "mutation-std", defaults.MutationStd, "standard deviation of mutation noise")
	f.Int64Var(&opts.overrides.RNGSeed, "seed", defaults.RNGSeed, "random seed")

	return cmd
}

// resolveConfig starts from the config file (or the defaults) and applies
// only the flags the user actually set.
func resolveConfig(cmd *cobra.Command, opts *runOptions) (ga.Config, error) {
	cfg := ga.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := ga.LoadConfigFile(opts.configPath)
		if err != nil {
			return ga.Config{}, err
		}
		cfg = loaded
	}

	f := cmd.Flags()
	o := opts.overrides
	if f.Changed("pop-size") {
		cfg.PopSize = o.PopSize
	}
	if f.Changed("generations") {
		cfg.Generations = o.Generations
	}
	if f.Changed("elite-frac") {
		cfg.EliteFrac = o.EliteFrac
	}
	if f.Changed("tournament-k") {
		cfg.TournamentK = o.TournamentK
	}
	if f.Changed("crossover-rate") {
		cfg.CrossoverRate = o.CrossoverRate
	}
	if f.Changed("mutation-std") {
		cfg.MutationStd = o.MutationStd
	}
	if f.Changed("seed") {
		cfg.RNGSeed = o.RNGSeed
	}
	return cfg, cfg.Validate()
}

func runOptimize(cmd *cobra.Command, opts *runOptions) error {
	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}

	logLevel, _ := cmd.Flags().GetString("log-level")
	dbPath, _ := cmd.Flags().GetString("db")

	obs, err := observability.NewManager(observability.Config{
		ServiceName: "dosage-cli",
		LogLevel:    logLevel,
		LogFormat:   "console",
		LogOutput:   "stderr",
	})
	if err != nil {
		return err
	}
	defer obs.Shutdown(context.Background())
	logger := obs.GetLogger()

	runStore, err := worker.OpenStore(dbPath)
	if err != nil {
		// history is optional for a CLI run
		logger.Warn("run history disabled", "db", dbPath, "error", err)
		runStore = nil
	} else {
		defer runStore.Close()
	}

	optimizer, err := worker.NewOptimizer(worker.OptimizerOptions{
		Workers:       opts.workers,
		Store:         runStore,
		Observability: obs,
	})
	if err != nil {
		return err
	}
	defer optimizer.Close()

	stdout := cmd.OutOrStdout()
	report.PrintParams(stdout, cfg)

	run, err := optimizer.Optimize(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("optimization failed: %w", err)
	}

	var out report.Outputs
	jsonPath := filepath.Join(opts.outDir, resultFile)
	if err := report.WriteJSON(jsonPath, run.Record); err != nil {
		logger.Error("failed to save results", "path", jsonPath, "error", err)
	} else {
		out.JSONPath = jsonPath
	}

	trajectoryPath := filepath.Join(opts.outDir, trajectoryFile)
	if err := report.WriteTrajectory(trajectoryPath, run.History); err != nil {
		logger.Error("failed to plot fitness curve", "path", trajectoryPath, "error", err)
	} else {
		out.TrajectoryPath = trajectoryPath
	}

	if err := ga.SaveConfigFile(filepath.Join(opts.outDir, paramsFile), cfg); err != nil {
		logger.Warn("failed to save run parameters", "error", err)
	}

	report.PrintSummary(stdout, cfg.Generations, run.Record, out)
	return nil
}
