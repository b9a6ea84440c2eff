package engine

import "math/rand/v2"

// Variance bounds per hit: factor is drawn from [VarianceMin, VarianceMin+VarianceSpan).
const (
	VarianceMin  = 0.85
	VarianceSpan = 0.15
)

// newRNG seeds from the runtime's random source, never from the clock.
func newRNG() *rand.Rand { return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) }

// freshFloat draws from a new generator every call so no state is shared between hits.
func freshFloat() float64 { return newRNG().Float64() }

// varianceFrom maps r in [0,1) onto the variance range.
func varianceFrom(r float64) float64 {
	if r < 0 {
		r = 0
	}
	if r >= 1 {
		r = 0.999999
	}
	return VarianceMin + r*VarianceSpan
}
