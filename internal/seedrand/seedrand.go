// Package seedrand provides the deterministic random streams every generator
// draws from. A Source is a pure function of its seed string: same seed, same
// sequence, on every platform and every run.
package seedrand

import (
	"hash/fnv"
	"math"
	"strings"
)

const (
	emptySeed = "mimicry:empty-seed"
	zeroState = 0x9E3779B9
	tagSep    = "|"
)

// Source is a mulberry32 stream. It is not safe for concurrent use; derive a
// separate Source per goroutine instead.
type Source struct {
	state uint32
}

// New returns a Source seeded from the FNV-1a hash of seed.
func New(seed string) *Source {
	if seed == "" {
		seed = emptySeed
	}
	state := fold(seed)
	if state == 0 {
		state = zeroState
	}
	return &Source{state: state}
}

// Derive returns an independent stream for a named sub-draw of seed.
// Derive(s, "gpu") never shares state with Derive(s, "screen").
func Derive(seed string, tags ...string) *Source {
	return New(SubSeed(seed, tags...))
}

// SubSeed builds the seed string Derive uses.
func SubSeed(seed string, tags ...string) string {
	if len(tags) == 0 {
		return seed
	}
	return seed + tagSep + strings.Join(tags, tagSep)
}

// Hash32 is a stable 32-bit digest of seed and tag.
func Hash32(seed, tag string) uint32 {
	return fold(seed + tagSep + tag)
}

func fold(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

// Next returns a float in [0, 1).
func (s *Source) Next() float64 {
	s.state += 0x6D2B79F5
	t := s.state
	t = (t ^ t>>15) * (t | 1)
	t ^= t + (t^t>>7)*(t|61)
	return float64(t^t>>14) / 4294967296.0
}

// Uint32 returns the next raw 32-bit value.
func (s *Source) Uint32() uint32 {
	return uint32(s.Next() * 4294967296.0)
}

// NextInt returns an integer in [min, max]. Reversed bounds are swapped.
func (s *Source) NextInt(min, max int) int {
	if max < min {
		min, max = max, min
	}
	n := int(math.Floor(s.Next() * float64(max-min+1)))
	if n > max-min {
		n = max - min
	}
	return min + n
}

// NextFloat returns a float in [min, max).
func (s *Source) NextFloat(min, max float64) float64 {
	return min + s.Next()*(max-min)
}

// NextBool returns true with probability p.
func (s *Source) NextBool(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return s.Next() < p
}

// NextGaussian samples N(mean, stdDev) with the Box-Muller transform.
func (s *Source) NextGaussian(mean, stdDev float64) float64 {
	u1 := s.Next()
	for u1 <= 1e-12 {
		u1 = s.Next()
	}
	u2 := s.Next()
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return mean + z*stdDev
}

// Sign returns -1 or 1 with equal probability.
func (s *Source) Sign() float64 {
	if s.Next() < 0.5 {
		return -1
	}
	return 1
}

// Pick returns a uniformly chosen element of items. items must be non-empty.
func Pick[T any](s *Source, items []T) T {
	return items[s.NextInt(0, len(items)-1)]
}

// PickWeighted returns an index into weights, chosen proportionally.
// Weights are walked in slice order so the result is stable for a seed.
// Non-positive weights are never chosen; if none are positive it returns -1.
func PickWeighted(s *Source, weights []float64) int {
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}
	r := s.Next() * total
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		if r < w {
			return i
		}
		r -= w
	}
	return last
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
