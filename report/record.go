// Package report turns a finished run into the artifacts handed to users:
// the best-dosage JSON record, the fitness trajectory workbook and the
// console summary. Rounding happens here and only here.
package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/snow-ghost/dosage/core"
)

// Dosage holds the rounded dose of each component in milligrams.
type Dosage struct {
	DoseA float64 `json:"dose_A"`
	DoseB float64 `json:"dose_B"`
	DoseC float64 `json:"dose_C"`
}

// Record is the persisted summary of the best individual.
type Record struct {
	BestDosage    Dosage  `json:"best_dosage_mg"`
	Effectiveness float64 `json:"effectiveness"`
	SideEffects   float64 `json:"side_effects"`
	Fitness       float64 `json:"fitness"`
}

// NewRecord evaluates best at full precision and rounds every field to
// two decimals.
func NewRecord(best core.Vector) Record {
	eff := core.Effectiveness(best)
	se := core.SideEffects(best)
	return Record{
		BestDosage: Dosage{
			DoseA: Round2(best.A()),
			DoseB: Round2(best.B()),
			DoseC: Round2(best.C()),
		},
		Effectiveness: Round2(eff),
		SideEffects:   Round2(se),
		Fitness:       Round2(eff - se),
	}
}

// Round2 rounds half away from zero to two decimals.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// WriteJSON writes rec as indented JSON, creating parent directories.
func WriteJSON(path string, rec Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}
