package humanoid

import (
	"math"

	"github.com/aquilax/go-perlin"

	"github.com/xkilldash9x/mimicry/api/schemas"
	"github.com/xkilldash9x/mimicry/internal/seedrand"
)

const (
	minStepDelayMs  = 1.0
	fallbackSpeedPx = 1000.0
)

// computeEaseInOutCubic provides a smooth acceleration and deceleration profile for movement.
func computeEaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// pathPointCount grows with distance and with accuracy: a careful hand
// takes smaller, more frequent steps.
func pathPointCount(dist, accuracy float64, cfg Config) int {
	stepPx := 12 - 8*accuracy
	n := int(math.Round(dist / stepPx))
	if n < cfg.MinPathPoints {
		n = cfg.MinPathPoints
	}
	if n > cfg.MaxPathPoints {
		n = cfg.MaxPathPoints
	}
	return n
}

// controlPoints places the two inner Bezier handles along the chord and
// pushes each sideways by an amount that grows as accuracy drops.
func controlPoints(src *seedrand.Source, start, end Vector2D, accuracy float64) (Vector2D, Vector2D) {
	chord := end.Sub(start)
	dist := chord.Mag()
	dir := chord.Normalize()
	perp := dir.Perp()
	spread := 0.05 + 0.45*(1-accuracy)

	p1 := start.Add(dir.Mul(dist * src.NextFloat(0.2, 0.4))).
		Add(perp.Mul(dist * spread * src.NextFloat(0.3, 1.0) * src.Sign()))
	p2 := start.Add(dir.Mul(dist * src.NextFloat(0.6, 0.8))).
		Add(perp.Mul(dist * spread * src.NextFloat(0.3, 1.0) * src.Sign()))
	return p1, p2
}

// GenerateMotionPath builds the pointer trajectory from start to end. The
// start point itself is not emitted; the final point is exactly end.
func GenerateMotionPath(src *seedrand.Source, start, end Vector2D, profile schemas.BiometricProfile, cfg Config) schemas.MotionPath {
	cfg.Normalize()
	accuracy := seedrand.Clamp(profile.MouseAccuracy, 0, 1)
	speed := sampleRange(src, profile.MouseSpeed)
	if speed <= 0 {
		speed = fallbackSpeedPx
	}

	dist := start.Dist(end)
	if dist < 1.0 {
		return schemas.MotionPath{Points: []schemas.PathPoint{{X: end.X, Y: end.Y, DelayMs: minStepDelayMs}}}
	}

	n := pathPointCount(dist, accuracy, cfg)
	p1, p2 := controlPoints(src, start, end, accuracy)

	// Tremor: Gaussian jitter plus a slow Perlin drift, both fading out on
	// approach so the cursor settles on the target.
	sigma := cfg.JitterPx * (1.25 - accuracy)
	noise := perlin.NewPerlin(2, 2, 3, int64(src.Uint32()))
	phase := src.NextFloat(0, 100)

	ideal := make([]Vector2D, n)
	arc := 0.0
	prev := start
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		pt := cubicBezier(start, p1, p2, end, computeEaseInOutCubic(t))
		if i < n {
			taper := 1 - t
			drift := Vector2D{
				X: noise.Noise1D(phase + t*cfg.PerlinFrequency),
				Y: noise.Noise1D(phase + 31.7 + t*cfg.PerlinFrequency),
			}.Mul(cfg.PerlinAmplitude * taper)
			jitter := Vector2D{X: src.NextGaussian(0, sigma), Y: src.NextGaussian(0, sigma)}.Mul(taper)
			pt = pt.Add(drift).Add(jitter)
		} else {
			pt = end
		}
		ideal[i-1] = pt
		arc += pt.Dist(prev)
		prev = pt
	}

	// Equal time slices over eased positions give the bell-shaped velocity
	// profile of a real reach; the mean speed matches the sampled speed.
	totalMs := arc / speed * 1000
	slice := totalMs / float64(n)
	points := make([]schemas.PathPoint, n)
	for i, pt := range ideal {
		delay := slice * (1 + src.NextGaussian(0, cfg.SpeedVariance))
		points[i] = schemas.PathPoint{X: pt.X, Y: pt.Y, DelayMs: math.Max(minStepDelayMs, delay)}
	}
	return schemas.MotionPath{Points: points}
}

// sampleRange draws uniformly from r, tolerating reversed bounds.
func sampleRange(src *seedrand.Source, r schemas.Range) float64 {
	lo, hi := r.Min, r.Max
	if hi < lo {
		lo, hi = hi, lo
	}
	if hi == lo {
		return lo
	}
	return src.NextFloat(lo, hi)
}
