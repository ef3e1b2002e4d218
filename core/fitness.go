package core

import "math"

// Curve is a Gaussian-shaped dose response: Peak * exp(-(x-Center)^2 / Scale).
type Curve struct {
	Peak   float64
	Center float64
	Scale  float64
}

// Response evaluates the curve at dose x.
func (c Curve) Response(x float64) float64 {
	d := x - c.Center
	return c.Peak * math.Exp(-(d*d)/c.Scale)
}

// Response curves for components A, B and C.
var curves = [Genes]Curve{
	{Peak: 80, Center: 50, Scale: 400},
	{Peak: 70, Center: 40, Scale: 500},
	{Peak: 60, Center: 30, Scale: 300},
}

// SideEffectCoefficient weights the squared dose of every component.
const SideEffectCoefficient = 0.05

// EffectivenessPeak returns the dose vector at which effectiveness is maximal.
func EffectivenessPeak() Vector {
	return Vector{curves[0].Center, curves[1].Center, curves[2].Center}
}

// Effectiveness is the summed response of the three components.
func Effectiveness(v Vector) float64 {
	return curves[0].Response(v[0]) + curves[1].Response(v[1]) + curves[2].Response(v[2])
}

// SideEffects is the cumulative toxicity cost of a dose vector.
func SideEffects(v Vector) float64 {
	return SideEffectCoefficient * (v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// Fitness is effectiveness minus side effects.
func Fitness(v Vector) float64 {
	return Effectiveness(v) - SideEffects(v)
}

// EffectivenessBatch evaluates Effectiveness for every vector in order.
func EffectivenessBatch(p Population) []float64 {
	return batch(p, Effectiveness)
}

// SideEffectsBatch evaluates SideEffects for every vector in order.
func SideEffectsBatch(p Population) []float64 {
	return batch(p, SideEffects)
}

// FitnessBatch evaluates Fitness for every vector in order.
func FitnessBatch(p Population) []float64 {
	return batch(p, Fitness)
}

func batch(p Population, f func(Vector) float64) []float64 {
	out := make([]float64, len(p))
	for i, v := range p {
		out[i] = f(v)
	}
	return out
}
