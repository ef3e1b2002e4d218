package report

import (
	"fmt"
	"io"

	"github.com/snow-ghost/dosage/ga"
)

// Outputs names the artifacts that were written. An empty path means the
// artifact could not be written.
type Outputs struct {
	JSONPath       string
	TrajectoryPath string
}

// PrintParams writes the run parameters, one per line.
func PrintParams(w io.Writer, cfg ga.Config) {
	fmt.Fprintln(w, "Running Genetic Algorithm with parameters:")
	fmt.Fprintf(w, "  pop_size: %d\n", cfg.PopSize)
	fmt.Fprintf(w, "  generations: %d\n", cfg.Generations)
	fmt.Fprintf(w, "  elite_frac: %v\n", cfg.EliteFrac)
	fmt.Fprintf(w, "  tournament_k: %d\n", cfg.TournamentK)
	fmt.Fprintf(w, "  crossover_rate: %v\n", cfg.CrossoverRate)
	fmt.Fprintf(w, "  mutation_std: %v\n", cfg.MutationStd)
	fmt.Fprintf(w, "  rng_seed: %d\n", cfg.RNGSeed)
}

// PrintSummary writes the final generation line, the rounded best dosage
// and where the artifacts went.
func PrintSummary(w io.Writer, generations int, rec Record, out Outputs) {
	fmt.Fprintf(w, "\nGeneration %d | Best Fitness: %.2f\n", generations, rec.Fitness)
	fmt.Fprintln(w, "Best Dosages:")
	fmt.Fprintf(w, "  Dose A: %v mg\n", rec.BestDosage.DoseA)
	fmt.Fprintf(w, "  Dose B: %v mg\n", rec.BestDosage.DoseB)
	fmt.Fprintf(w, "  Dose C: %v mg\n", rec.BestDosage.DoseC)
	fmt.Fprintf(w, "Effectiveness: %v | Side Effects: %v\n", rec.Effectiveness, rec.SideEffects)

	if out.JSONPath != "" {
		fmt.Fprintf(w, "Results saved to %s\n", out.JSONPath)
	} else {
		fmt.Fprintln(w, "Results were not saved")
	}
	if out.TrajectoryPath != "" {
		fmt.Fprintf(w, "Fitness curve plotted as %s\n", out.TrajectoryPath)
	} else {
		fmt.Fprintln(w, "Fitness curve was not plotted")
	}
}
