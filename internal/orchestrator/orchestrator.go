// File: internal/orchestrator/orchestrator.go
// Description: Applies a fingerprint to a live session and replays the
// behavior planners against it. It is injected with the session via an
// interface, making it decoupled and testable.

package orchestrator

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/mimicry/api/schemas"
	"github.com/xkilldash9x/mimicry/internal/browser/stealth"
	"github.com/xkilldash9x/mimicry/internal/humanoid"
	"github.com/xkilldash9x/mimicry/internal/seedrand"
)

// Orchestrator drives one session as one identity. Operations block for the
// simulated duration of the human action. Calls are serialised; use one
// Orchestrator per session.
type Orchestrator struct {
	session Session
	fp      schemas.Fingerprint
	planner *humanoid.Planner
	logger  *zap.Logger

	cfg          humanoid.Config
	behaviorSeed string
	startPos     *humanoid.Vector2D

	mu      sync.Mutex
	started bool
	seq     uint64
	cursor  humanoid.Vector2D
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger.Named("orchestrator")
		}
	}
}

// WithBehaviorSeed sets the seed behavior plans are drawn from. By default it
// is derived from the fingerprint's noise seeds, so one identity always moves
// the same way.
func WithBehaviorSeed(seed string) Option {
	return func(o *Orchestrator) { o.behaviorSeed = seed }
}

// WithConfig overrides the behavior model tunables.
func WithConfig(cfg humanoid.Config) Option {
	return func(o *Orchestrator) { o.cfg = cfg }
}

// WithStartPosition sets where the cursor is assumed to rest initially.
func WithStartPosition(x, y float64) Option {
	return func(o *Orchestrator) { o.startPos = &humanoid.Vector2D{X: x, Y: y} }
}

// New creates an Orchestrator for session presenting fp and behaving
// according to bio.
func New(session Session, fp schemas.Fingerprint, bio schemas.BiometricProfile, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		session:      session,
		fp:           fp,
		logger:       zap.NewNop(),
		cfg:          humanoid.DefaultConfig(),
		behaviorSeed: fmt.Sprintf("%08x%08x", fp.CanvasNoiseSeed, fp.AudioNoiseSeed),
	}
	for _, opt := range opts {
		opt(o)
	}

	o.planner = humanoid.NewPlanner(bio, o.cfg)
	if o.startPos != nil {
		o.cursor = *o.startPos
	} else {
		o.cursor = humanoid.Vector2D{
			X: float64(fp.Screen.Width) / 2,
			Y: float64(fp.Screen.AvailHeight) / 2,
		}
	}
	return o
}

// Fingerprint returns the identity this orchestrator presents.
func (o *Orchestrator) Fingerprint() schemas.Fingerprint { return o.fp }

// Cursor returns the last position the pointer was moved to.
func (o *Orchestrator) Cursor() (float64, float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cursor.X, o.cursor.Y
}

// Start applies the fingerprint overrides. It must complete before the first
// navigation; calling it again is a no-op.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.started {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	patch, err := stealth.BuildPatchSet(o.fp)
	if err != nil {
		return fmt.Errorf("failed to build override patch set: %w", err)
	}
	if err := o.session.SetOverrides(ctx, patch); err != nil {
		return err
	}
	o.started = true
	o.logger.Info("Fingerprint applied to session",
		zap.String("seed", o.fp.Seed),
		zap.String("platform", o.fp.Platform.String()),
		zap.String("timezone", o.fp.Timezone),
	)
	return nil
}

// Navigate loads url. It fails with ErrNotStarted until Start succeeded.
func (o *Orchestrator) Navigate(ctx context.Context, url string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.started {
		return ErrNotStarted
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	o.logger.Debug("Navigating", zap.String("url", url))
	if err := o.session.Navigate(ctx, url); err != nil {
		return err
	}
	return nil
}

// stream returns a fresh deterministic source for one operation. Each call
// advances the sequence so repeated operations do not replay identical plans.
func (o *Orchestrator) stream(op string) *seedrand.Source {
	o.seq++
	return seedrand.Derive(o.behaviorSeed, op, strconv.FormatUint(o.seq, 10))
}

// wait pauses for d, checking for cancellation first.
func (o *Orchestrator) wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	if err := o.session.Wait(ctx, d); err != nil {
		return err
	}
	return nil
}

// resolve looks up an element's bounds.
func (o *Orchestrator) resolve(ctx context.Context, selector string) (schemas.ElementBounds, error) {
	if err := ctx.Err(); err != nil {
		return schemas.ElementBounds{}, err
	}
	bounds, ok, err := o.session.GetElementBounds(ctx, selector)
	if err != nil {
		return schemas.ElementBounds{}, err
	}
	if !ok {
		return schemas.ElementBounds{}, &ElementNotFoundError{Selector: selector}
	}
	return bounds, nil
}

// metrics fetches viewport and page geometry.
func (o *Orchestrator) metrics(ctx context.Context) (schemas.PageMetrics, error) {
	if err := ctx.Err(); err != nil {
		return schemas.PageMetrics{}, err
	}
	m, err := o.session.GetViewportAndPageMetrics(ctx)
	if err != nil {
		return schemas.PageMetrics{}, err
	}
	return m, nil
}
