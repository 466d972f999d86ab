package orchestrator

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/xkilldash9x/mimicry/api/schemas"
	"github.com/xkilldash9x/mimicry/internal/humanoid"
)

// Fallback viewport for sessions that cannot report one.
const (
	defaultViewportWidth  = 1280.0
	defaultViewportHeight = 800.0
)

type idleAction int

const (
	idleWander idleAction = iota
	idleScroll
	idleReread
	idlePause
)

func (a idleAction) String() string {
	switch a {
	case idleWander:
		return "wander"
	case idleScroll:
		return "scroll"
	case idleReread:
		return "reread"
	default:
		return "pause"
	}
}

// ExplorePage performs a short burst of idle activity: aimless pointer
// moves, partial scrolls, brief re-reads and pauses.
func (o *Orchestrator) ExplorePage(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	m, err := o.metrics(ctx)
	if err != nil {
		return err
	}
	width, height := m.ViewportWidth, m.ViewportHeight
	if width <= 0 {
		width = defaultViewportWidth
	}
	if height <= 0 {
		height = defaultViewportHeight
	}

	cfg := o.planner.Config()
	src := o.stream("explore")
	n := src.NextInt(cfg.ExploreMinActions, cfg.ExploreMaxActions)
	scrollY := m.ScrollY

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		action := idleAction(src.NextInt(int(idleWander), int(idlePause)))
		o.logger.Debug("Idle action", zap.Stringer("action", action), zap.Int("index", i))

		switch action {
		case idleWander:
			target := humanoid.Vector2D{
				X: src.NextFloat(0.1*width, 0.9*width),
				Y: src.NextFloat(0.1*height, 0.9*height),
			}
			err = o.moveTo(ctx, target)
		case idleScroll:
			dist := src.NextFloat(0.2, 0.6) * height
			// Mostly downward; never above the top of the page.
			if scrollY > dist && src.NextBool(0.25) {
				dist = -dist
			}
			scrollY += dist
			err = o.scroll(ctx, humanoid.ScrollRequest{Distance: dist, Metrics: m})
		case idleReread:
			dist := src.NextFloat(0.1, 0.3) * height
			if scrollY < dist {
				err = o.wait(ctx, o.planner.CognitivePause(src))
				break
			}
			scrollY -= dist
			if err = o.scroll(ctx, humanoid.ScrollRequest{Distance: -dist, Metrics: m}); err == nil {
				err = o.wait(ctx, o.planner.CognitivePause(src))
			}
		default:
			err = o.wait(ctx, o.planner.CognitivePause(src))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type formField struct {
	selector string
	value    string
	bounds   schemas.ElementBounds
}

// FillForm types each value into the element its selector matches. Every
// selector is resolved before anything is typed, so a missing field fails
// the whole call without side effects. Fields are filled top to bottom, then
// left to right, with a pause between them.
func (o *Orchestrator) FillForm(ctx context.Context, values map[string]string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	selectors := make([]string, 0, len(values))
	for sel := range values {
		selectors = append(selectors, sel)
	}
	sort.Strings(selectors)

	fields := make([]formField, 0, len(selectors))
	for _, sel := range selectors {
		bounds, err := o.resolve(ctx, sel)
		if err != nil {
			return err
		}
		fields = append(fields, formField{selector: sel, value: values[sel], bounds: bounds})
	}
	sort.SliceStable(fields, func(i, j int) bool {
		a, b := fields[i].bounds, fields[j].bounds
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	src := o.stream("form")
	for i, f := range fields {
		if i > 0 {
			if err := o.wait(ctx, o.planner.CognitivePause(src)); err != nil {
				return err
			}
		}
		o.logger.Debug("Filling field", zap.String("selector", f.selector))
		if err := o.click(ctx, f.bounds); err != nil {
			return err
		}
		if err := o.typeText(ctx, f.value); err != nil {
			return err
		}
	}
	return nil
}
