package humanoid

import (
	"math"
	"time"

	"github.com/xkilldash9x/mimicry/api/schemas"
	"github.com/xkilldash9x/mimicry/internal/seedrand"
)

// Planner binds one biometric profile to the behavior models. It holds no
// randomness of its own; callers pass the stream each plan draws from.
type Planner struct {
	profile schemas.BiometricProfile
	cfg     Config
}

// NewPlanner returns a Planner for profile.
func NewPlanner(profile schemas.BiometricProfile, cfg Config) *Planner {
	cfg.Normalize()
	return &Planner{profile: profile, cfg: cfg}
}

// Config returns the normalised tunables.
func (p *Planner) Config() Config { return p.cfg }

// Profile returns the biometric profile.
func (p *Planner) Profile() schemas.BiometricProfile { return p.profile }

// MotionPath plans a pointer move.
func (p *Planner) MotionPath(src *seedrand.Source, start, end Vector2D) schemas.MotionPath {
	return GenerateMotionPath(src, start, end, p.profile, p.cfg)
}

// TypingPlan plans the keystrokes for text.
func (p *Planner) TypingPlan(src *seedrand.Source, text string) schemas.TypingPlan {
	return BuildTypingPlan(src, text, p.profile, p.cfg)
}

// ScrollPlan plans a scroll gesture.
func (p *Planner) ScrollPlan(src *seedrand.Source, req ScrollRequest) schemas.ScrollPlan {
	return BuildScrollPlan(src, req, p.profile, p.cfg)
}

// ClickTarget picks a point inside bounds, normally distributed around the
// centre and clamped to the box. Less accurate hands spread wider.
func (p *Planner) ClickTarget(src *seedrand.Source, bounds schemas.ElementBounds) Vector2D {
	cx, cy := bounds.Center()
	if bounds.Width <= 0 || bounds.Height <= 0 {
		return Vector2D{X: cx, Y: cy}
	}

	// Aim for the inner part of the element to avoid clicking the very edge.
	effectiveWidth := bounds.Width * p.cfg.ClickSpread
	effectiveHeight := bounds.Height * p.cfg.ClickSpread
	looseness := 1.5 - seedrand.Clamp(p.profile.MouseAccuracy, 0, 1)
	stdDevX := effectiveWidth / 6.0 * looseness
	stdDevY := effectiveHeight / 6.0 * looseness

	x := cx + src.NextGaussian(0, stdDevX)
	y := cy + src.NextGaussian(0, stdDevY)

	halfW, halfH := effectiveWidth/2, effectiveHeight/2
	return Vector2D{
		X: seedrand.Clamp(x, cx-halfW, cx+halfW),
		Y: seedrand.Clamp(y, cy-halfH, cy+halfH),
	}
}

// ClickHold is how long a button stays pressed.
func (p *Planner) ClickHold(src *seedrand.Source) time.Duration {
	ms := src.NextInt(p.cfg.ClickHoldMinMs, p.cfg.ClickHoldMaxMs)
	return time.Duration(ms) * time.Millisecond
}

// KeyHold is how long a key stays pressed.
func (p *Planner) KeyHold(src *seedrand.Source) time.Duration {
	ms := math.Max(20, src.NextGaussian(p.cfg.KeyHoldMeanMs, p.cfg.KeyHoldStdDevMs))
	return msDuration(ms)
}

// Reaction is a single reaction delay drawn from the profile.
func (p *Planner) Reaction(src *seedrand.Source) time.Duration {
	return msDuration(sampleRange(src, p.profile.ReactionTimeMs))
}

// CognitivePause is a longer think time between separate tasks, such as
// moving from one form field to the next.
func (p *Planner) CognitivePause(src *seedrand.Source) time.Duration {
	reaction := sampleRange(src, p.profile.ReactionTimeMs)
	return msDuration(reaction * src.NextFloat(1.5, 3.5))
}

// msDuration converts fractional milliseconds to a Duration.
func msDuration(ms float64) time.Duration {
	if ms <= 0 {
		return 0
	}
	return time.Duration(ms * float64(time.Millisecond))
}

// Delay converts a plan's DelayMs into a Duration.
func Delay(ms float64) time.Duration {
	return msDuration(ms)
}
