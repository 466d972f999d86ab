// Package biometrics derives the behavioral profile of an identity from its
// seed. Every field draws from its own sub-stream.
package biometrics

import (
	"math"

	"github.com/xkilldash9x/mimicry/api/schemas"
	"github.com/xkilldash9x/mimicry/internal/seedrand"
)

// Bounds of the derived profile.
const (
	MinWPM = 40.0
	MaxWPM = 120.0

	minSpeedCenter = 600.0
	maxSpeedCenter = 1800.0

	MinAccuracy = 0.60
	MaxAccuracy = 0.98

	MinErrorRate = 0.005
	MaxErrorRate = 0.06

	minReaction       = 150.0
	maxReaction       = 300.0
	minReactionSpread = 100.0
	maxReactionSpread = 300.0
)

func stream(seed, field string) *seedrand.Source {
	return seedrand.Derive(seed, "biometrics", field)
}

// Derive returns the biometric profile for seed. It is a pure function.
func Derive(seed string) schemas.BiometricProfile {
	return schemas.BiometricProfile{
		TypingWPM:      typingRange(stream(seed, "typing")),
		MouseSpeed:     speedRange(stream(seed, "mouse-speed")),
		MouseAccuracy:  round(stream(seed, "accuracy").NextFloat(MinAccuracy, MaxAccuracy), 3),
		ErrorRate:      round(stream(seed, "errors").NextFloat(MinErrorRate, MaxErrorRate), 4),
		ReactionTimeMs: reactionRange(stream(seed, "reaction")),
	}
}

func typingRange(src *seedrand.Source) schemas.Range {
	center := src.NextFloat(50, 105)
	half := src.NextFloat(8, 18)
	return schemas.Range{
		Min: round(seedrand.Clamp(center-half, MinWPM, MaxWPM), 1),
		Max: round(seedrand.Clamp(center+half, MinWPM, MaxWPM), 1),
	}
}

func speedRange(src *seedrand.Source) schemas.Range {
	center := src.NextFloat(minSpeedCenter, maxSpeedCenter)
	spread := src.NextFloat(0.20, 0.35)
	return schemas.Range{
		Min: math.Round(center * (1 - spread)),
		Max: math.Round(center * (1 + spread)),
	}
}

func reactionRange(src *seedrand.Source) schemas.Range {
	lo := math.Round(src.NextFloat(minReaction, maxReaction))
	return schemas.Range{
		Min: lo,
		Max: lo + math.Round(src.NextFloat(minReactionSpread, maxReactionSpread)),
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
