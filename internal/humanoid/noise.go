// File: internal/humanoid/noise.go
package humanoid

import (
	"math"

	"github.com/xkilldash9x/mimicry/internal/seedrand"
)

// PinkNoiseGenerator implements the stochastic Voss-McCartney algorithm for
// 1/f noise. Reading pauses are modulated with it so that consecutive pauses
// drift together instead of jumping independently.
type PinkNoiseGenerator struct {
	src    *seedrand.Source
	values []float64 // current value of each white noise source
	p      []float64 // probability of each source being updated
	pink   float64   // running sum of sources
	n      int
	scale  float64
}

// NewPinkNoiseGenerator creates a generator with n sources (12 is typical).
func NewPinkNoiseGenerator(src *seedrand.Source, n int) *PinkNoiseGenerator {
	if n <= 0 {
		n = 12
	}
	g := &PinkNoiseGenerator{
		src:    src,
		values: make([]float64, n),
		p:      make([]float64, n),
		n:      n,
		scale:  1.0 / math.Sqrt(float64(n)),
	}

	// Geometric update probabilities, normalised to sum to one.
	totalP := 0.0
	for i := 0; i < n; i++ {
		g.p[i] = math.Pow(2, float64(-i))
		totalP += g.p[i]
	}
	for i := 0; i < n; i++ {
		g.p[i] /= totalP
	}

	for i := 0; i < n; i++ {
		g.values[i] = g.nextWhite()
		g.pink += g.values[i]
	}
	return g
}

func (g *PinkNoiseGenerator) nextWhite() float64 {
	return g.src.Next()*2.0 - 1.0
}

// Next returns the next normalised sample, roughly within [-1.5, 1.5].
func (g *PinkNoiseGenerator) Next() float64 {
	r := g.src.Next()
	cumulative := 0.0
	idx := g.n - 1
	for i := 0; i < g.n; i++ {
		cumulative += g.p[i]
		if r < cumulative {
			idx = i
			break
		}
	}

	old := g.values[idx]
	g.values[idx] = g.nextWhite()
	g.pink += g.values[idx] - old

	return g.pink * g.scale
}
