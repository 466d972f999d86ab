// internal/humanoid/scrolling.go
package humanoid

import (
	"math"

	"github.com/xkilldash9x/mimicry/api/schemas"
	"github.com/xkilldash9x/mimicry/internal/seedrand"
)

const (
	defaultViewportHeight = 800.0
	maxScrollSteps        = 5000
)

// ScrollRequest describes one scroll gesture. Distance is signed (positive
// scrolls down) and is ignored when ReadWholePage is set.
type ScrollRequest struct {
	Distance      float64
	ReadWholePage bool
	Metrics       schemas.PageMetrics
}

// readingPace is the per-plan reading behaviour.
type readingPace struct {
	wpm  float64
	pink *PinkNoiseGenerator
	cfg  Config
}

// newReadingPace scales the configured reading speed by the identity's
// typing speed: fast typists tend to be fast readers.
func newReadingPace(src *seedrand.Source, profile schemas.BiometricProfile, cfg Config) readingPace {
	typingMid := profile.TypingWPM.Mid()
	if typingMid <= 0 {
		typingMid = 80
	}
	skill := seedrand.Clamp((typingMid-40)/80, 0, 1)
	wpm := cfg.ReadingWPM * src.NextFloat(0.8, 1.2) * (0.85 + 0.3*skill)
	return readingPace{
		wpm:  wpm,
		pink: NewPinkNoiseGenerator(src, cfg.PinkNoiseSources),
		cfg:  cfg,
	}
}

// pause is the dwell time, in ms, for reading the newly revealed words.
func (r readingPace) pause(words float64) float64 {
	ms := words / r.wpm * 60000
	ms *= 1 + 0.3*r.pink.Next()
	return seedrand.Clamp(ms, r.cfg.MinReadPauseMs, r.cfg.MaxReadPauseMs)
}

// stepSize draws the next wheel distance for the plan's pattern.
func stepSize(src *seedrand.Source, pattern schemas.ScrollPattern, viewport float64) (float64, bool) {
	jumpy := pattern == schemas.ScrollJumpy
	if pattern == schemas.ScrollMixed {
		jumpy = src.NextBool(0.5)
	}
	if jumpy {
		return math.Round(viewport * src.NextFloat(0.45, 0.9)), true
	}
	return math.Round(src.NextFloat(50, 140)), false
}

// BuildScrollPlan produces the wheel steps for a request. The net signed
// distance of the plan is exactly the requested distance, or the page height
// when reading the whole page.
func BuildScrollPlan(src *seedrand.Source, req ScrollRequest, profile schemas.BiometricProfile, cfg Config) schemas.ScrollPlan {
	cfg.Normalize()
	pattern := seedrand.Pick(src, schemas.ScrollPatterns)
	plan := schemas.ScrollPlan{Pattern: pattern}

	viewport := req.Metrics.ViewportHeight
	if viewport <= 0 {
		viewport = defaultViewportHeight
	}

	target := math.Abs(req.Distance)
	dir := 1.0
	if req.Distance < 0 {
		dir = -1
	}
	if req.ReadWholePage {
		target = math.Max(0, req.Metrics.PageHeight)
		dir = 1
	}
	if target == 0 {
		return plan
	}

	var pace readingPace
	if req.ReadWholePage {
		pace = newReadingPace(src, profile, cfg)
	}
	wordsPerPx := float64(req.Metrics.EstimatedWordsVisible) / viewport

	progress := 0.0
	for progress < target {
		size, jumpy := stepSize(src, pattern, viewport)
		step := math.Min(size, target-progress)
		if len(plan.Steps) >= maxScrollSteps {
			step = target - progress
		}

		var delay float64
		switch {
		case req.ReadWholePage:
			delay = pace.pause(wordsPerPx * step)
		case jumpy:
			delay = src.NextFloat(120, 400)
		default:
			delay = src.NextFloat(12, 40)
		}
		plan.Steps = append(plan.Steps, schemas.ScrollStep{DeltaY: dir * step, DelayMs: delay})
		progress += step

		if req.ReadWholePage && progress < target && len(plan.Steps) < maxScrollSteps &&
			src.NextBool(cfg.RegressionProbability) {
			back := math.Max(1, math.Round(step*src.NextFloat(0.2, 0.5)))
			plan.Steps = append(plan.Steps, schemas.ScrollStep{
				DeltaY:     -back,
				DelayMs:    sampleRange(src, profile.ReactionTimeMs) + src.NextFloat(100, 300),
				Regression: true,
			})
			progress -= back
		}
	}
	return plan
}
