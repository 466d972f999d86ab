package orchestrator

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/xkilldash9x/mimicry/api/schemas"
	"github.com/xkilldash9x/mimicry/internal/humanoid"
	"github.com/xkilldash9x/mimicry/internal/seedrand"
)

// keyBackspace is the DOM key name dispatched to undo a typo.
const keyBackspace = "Backspace"

// MoveTo moves the pointer to (x, y) along a simulated hand path.
func (o *Orchestrator) MoveTo(ctx context.Context, x, y float64) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.moveTo(ctx, humanoid.Vector2D{X: x, Y: y})
}

// Click moves to a point inside the element matched by selector and clicks it.
func (o *Orchestrator) Click(ctx context.Context, selector string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	bounds, err := o.resolve(ctx, selector)
	if err != nil {
		return err
	}
	o.logger.Debug("Clicking element", zap.String("selector", selector))
	return o.click(ctx, bounds)
}

// Type clicks the element matched by selector to focus it, then types text
// with the identity's cadence, typos included.
func (o *Orchestrator) Type(ctx context.Context, selector, text string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	bounds, err := o.resolve(ctx, selector)
	if err != nil {
		return err
	}
	if err := o.click(ctx, bounds); err != nil {
		return err
	}
	o.logger.Debug("Typing into element", zap.String("selector", selector), zap.Int("length", len(text)))
	return o.typeText(ctx, text)
}

// Scroll scrolls distance pixels in direction.
func (o *Orchestrator) Scroll(ctx context.Context, direction Direction, distance float64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if direction != DirectionUp && direction != DirectionDown {
		return fmt.Errorf("%w: %q", ErrInvalidDirection, direction)
	}
	m, err := o.metrics(ctx)
	if err != nil {
		return err
	}
	req := humanoid.ScrollRequest{Distance: direction.sign() * math.Abs(distance), Metrics: m}
	return o.scroll(ctx, req)
}

// ReadPage scrolls through the whole page at reading pace, with occasional
// re-reads. It can take tens of seconds; cancel ctx to stop between steps.
func (o *Orchestrator) ReadPage(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	m, err := o.metrics(ctx)
	if err != nil {
		return err
	}
	o.logger.Debug("Reading page",
		zap.Float64("pageHeight", m.PageHeight),
		zap.Int("wordsVisible", m.EstimatedWordsVisible),
	)
	return o.scroll(ctx, humanoid.ScrollRequest{ReadWholePage: true, Metrics: m})
}

// moveTo replays a motion path. The cursor position is updated after every
// dispatched point so a cancelled move leaves it where the pointer stopped.
func (o *Orchestrator) moveTo(ctx context.Context, target humanoid.Vector2D) error {
	path := o.planner.MotionPath(o.stream("move"), o.cursor, target)
	for _, p := range path.Points {
		if err := o.wait(ctx, humanoid.Delay(p.DelayMs)); err != nil {
			return err
		}
		if err := o.session.MoveCursorTo(ctx, p.X, p.Y); err != nil {
			return err
		}
		o.cursor = humanoid.Vector2D{X: p.X, Y: p.Y}
	}
	return nil
}

func (o *Orchestrator) click(ctx context.Context, bounds schemas.ElementBounds) error {
	src := o.stream("click")
	target := o.planner.ClickTarget(src, bounds)
	if err := o.moveTo(ctx, target); err != nil {
		return err
	}
	if err := o.wait(ctx, o.planner.Reaction(src)); err != nil {
		return err
	}
	if err := o.session.PressPointer(ctx, o.cursor.X, o.cursor.Y); err != nil {
		return err
	}
	if err := o.wait(ctx, o.planner.ClickHold(src)); err != nil {
		return err
	}
	if err := o.session.ReleasePointer(ctx, o.cursor.X, o.cursor.Y); err != nil {
		return err
	}
	return nil
}

func (o *Orchestrator) typeText(ctx context.Context, text string) error {
	plan := o.planner.TypingPlan(o.stream("type"), text)
	holds := o.stream("keyhold")

	for _, a := range plan.Actions {
		if err := o.wait(ctx, humanoid.Delay(a.DelayMs)); err != nil {
			return err
		}
		var key string
		switch a.Action {
		case schemas.ActionTypeKey:
			key = a.Char
		case schemas.ActionBackspace:
			key = keyBackspace
		default:
			continue
		}
		if err := o.pressKey(ctx, key, holds); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) pressKey(ctx context.Context, key string, holds *seedrand.Source) error {
	if err := o.session.PressKey(ctx, key); err != nil {
		return err
	}
	if err := o.wait(ctx, o.planner.KeyHold(holds)); err != nil {
		return err
	}
	if err := o.session.ReleaseKey(ctx, key); err != nil {
		return err
	}
	return nil
}

func (o *Orchestrator) scroll(ctx context.Context, req humanoid.ScrollRequest) error {
	plan := o.planner.ScrollPlan(o.stream("scroll"), req)
	for _, s := range plan.Steps {
		if err := o.wait(ctx, humanoid.Delay(s.DelayMs)); err != nil {
			return err
		}
		if err := o.session.ScrollBy(ctx, o.cursor.X, o.cursor.Y, s.DeltaY); err != nil {
			return err
		}
	}
	return nil
}
