package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xkilldash9x/mimicry/api/schemas"
)

// Session is the narrow capability the orchestrator drives. Implementations
// wrap a live browser page; coordinates are CSS pixels relative to the
// viewport. Errors a Session returns reach the caller unchanged; the
// orchestrator neither wraps nor retries them.
type Session interface {
	// SetOverrides installs the identity. It is called once, before the first
	// navigation.
	SetOverrides(ctx context.Context, patch schemas.OverridePatchSet) error
	Navigate(ctx context.Context, url string) error

	MoveCursorTo(ctx context.Context, x, y float64) error
	PressPointer(ctx context.Context, x, y float64) error
	ReleasePointer(ctx context.Context, x, y float64) error
	PressKey(ctx context.Context, key string) error
	ReleaseKey(ctx context.Context, key string) error
	ScrollBy(ctx context.Context, x, y, deltaY float64) error

	// GetElementBounds reports false when nothing matches the selector.
	GetElementBounds(ctx context.Context, selector string) (schemas.ElementBounds, bool, error)
	GetViewportAndPageMetrics(ctx context.Context) (schemas.PageMetrics, error)

	// Wait blocks for d or until ctx is done.
	Wait(ctx context.Context, d time.Duration) error
}

var (
	// ErrElementNotFound matches every *ElementNotFoundError.
	ErrElementNotFound = errors.New("element not found")
	// ErrNotStarted is returned by Navigate before Start has applied the
	// fingerprint.
	ErrNotStarted = errors.New("orchestrator not started: overrides must be applied before navigation")
	// ErrInvalidDirection is returned for a scroll direction other than up or down.
	ErrInvalidDirection = errors.New("invalid scroll direction")
)

// ElementNotFoundError names the selector that matched nothing.
type ElementNotFoundError struct {
	Selector string
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("element not found: %q", e.Selector)
}

func (e *ElementNotFoundError) Is(target error) bool {
	return target == ErrElementNotFound
}

// Direction is the direction of a scroll gesture.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// ParseDirection accepts "up" or "down".
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case DirectionUp, DirectionDown:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

func (d Direction) sign() float64 {
	if d == DirectionUp {
		return -1
	}
	return 1
}
