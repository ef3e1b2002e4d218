package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// Dose bounds in milligrams, shared by every component.
const (
	MinDose = 0.0
	MaxDose = 100.0
)

// Genes is the number of components in a dosage vector.
const Genes = 3

// Vector is a dosage triple (A, B, C). It is a value type: operators
// return new vectors rather than modifying their inputs.
type Vector [Genes]float64

// A returns the dose of component A.
func (v Vector) A() float64 { return v[0] }

// B returns the dose of component B.
func (v Vector) B() float64 { return v[1] }

// C returns the dose of component C.
func (v Vector) C() float64 { return v[2] }

// Clip bounds every component to [MinDose, MaxDose].
func (v Vector) Clip() Vector {
	for i, x := range v {
		v[i] = Clamp(x)
	}
	return v
}

// InRange reports whether every component lies in [MinDose, MaxDose].
func (v Vector) InRange() bool {
	for _, x := range v {
		if x < MinDose || x > MaxDose {
			return false
		}
	}
	return true
}

func (v Vector) String() string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", v[0], v[1], v[2])
}

// Clamp bounds a single dose to [MinDose, MaxDose].
func Clamp(x float64) float64 {
	switch {
	case x < MinDose:
		return MinDose
	case x > MaxDose:
		return MaxDose
	default:
		return x
	}
}

// Population is one generation of vectors in insertion order.
type Population []Vector

// Result is the bundle produced by a completed evolutionary run.
type Result struct {
	Best        Vector     `json:"best"`
	BestFitness float64    `json:"best_fitness"`
	History     []float64  `json:"history"`    // running best, one entry per generation
	Population  Population `json:"population"` // final generation
}

// RunRecord is the stored summary of one run. Population history is never
// stored, only the best individual.
type RunRecord struct {
	ID            string          `json:"id"`
	CreatedAt     time.Time       `json:"created_at"`
	Seed          int64           `json:"seed"`
	Generations   int             `json:"generations"`
	Params        json.RawMessage `json:"params"`
	Best          Vector          `json:"best"`
	BestFitness   float64         `json:"best_fitness"`
	Effectiveness float64         `json:"effectiveness"`
	SideEffects   float64         `json:"side_effects"`
	Duration      time.Duration   `json:"duration"`
}
