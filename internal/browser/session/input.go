// internal/browser/session/input.go
package session

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"

	"github.com/xkilldash9x/mimicry/api/schemas"
)

// namedKeys maps the key names a typing plan may emit onto kb runes.
var namedKeys = map[string]rune{
	"Backspace": '\b',
	"Enter":     '\r',
	"Tab":       '\t',
	"Escape":    '\u001b',
}

// MoveCursorTo moves the pointer with no button held.
func (s *Session) MoveCursorTo(ctx context.Context, x, y float64) error {
	return s.dispatchMouse(ctx, schemas.MouseEventData{
		Type: schemas.MouseMove, X: x, Y: y, Button: schemas.ButtonNone,
	})
}

// PressPointer presses the left button at (x, y).
func (s *Session) PressPointer(ctx context.Context, x, y float64) error {
	return s.dispatchMouse(ctx, schemas.MouseEventData{
		Type: schemas.MousePress, X: x, Y: y, Button: schemas.ButtonLeft, Buttons: 1, ClickCount: 1,
	})
}

// ReleasePointer releases the left button at (x, y).
func (s *Session) ReleasePointer(ctx context.Context, x, y float64) error {
	return s.dispatchMouse(ctx, schemas.MouseEventData{
		Type: schemas.MouseRelease, X: x, Y: y, Button: schemas.ButtonLeft, ClickCount: 1,
	})
}

// ScrollBy sends a wheel event with the pointer at (x, y).
func (s *Session) ScrollBy(ctx context.Context, x, y, deltaY float64) error {
	return s.dispatchMouse(ctx, schemas.MouseEventData{
		Type: schemas.MouseWheel, X: x, Y: y, Button: schemas.ButtonNone, DeltaY: deltaY,
	})
}

func (s *Session) dispatchMouse(ctx context.Context, data schemas.MouseEventData) error {
	p := input.DispatchMouseEvent(input.MouseType(data.Type), data.X, data.Y).
		WithButton(input.MouseButton(data.Button)).
		WithButtons(data.Buttons).
		WithClickCount(int64(data.ClickCount))
	if data.Type == schemas.MouseWheel {
		p = p.WithDeltaX(data.DeltaX).WithDeltaY(data.DeltaY)
	}
	if err := s.dispatch(ctx, p); err != nil {
		return fmt.Errorf("failed to dispatch %s at (%.1f, %.1f): %w", data.Type, data.X, data.Y, err)
	}
	return nil
}

// PressKey sends the down half of a keystroke. key is a single character or
// one of the named keys such as "Backspace".
func (s *Session) PressKey(ctx context.Context, key string) error {
	p, err := keyEvent(key, true)
	if err != nil {
		return err
	}
	if err := s.dispatch(ctx, p); err != nil {
		return fmt.Errorf("failed to press %q: %w", key, err)
	}
	return nil
}

// ReleaseKey sends the up half of a keystroke.
func (s *Session) ReleaseKey(ctx context.Context, key string) error {
	p, err := keyEvent(key, false)
	if err != nil {
		return err
	}
	if err := s.dispatch(ctx, p); err != nil {
		return fmt.Errorf("failed to release %q: %w", key, err)
	}
	return nil
}

// dispatch waits for an input token and then sends the event under the
// action timeout.
func (s *Session) dispatch(ctx context.Context, action chromedp.Action) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	opCtx, cancel := withTimeout(ctx, s.cfg.ActionTimeout)
	defer cancel()

	err := s.run(opCtx, action)
	if err != nil && errors.Is(opCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		s.logger.Debug("Input dispatch timed out.", zap.Duration("timeout", s.cfg.ActionTimeout))
		return fmt.Errorf("input dispatch timed out after %v: %w", s.cfg.ActionTimeout, opCtx.Err())
	}
	return err
}

// keyEvent builds the CDP event for one half of a keystroke. Characters kb
// knows get their physical code and virtual key so page listeners see the
// same fields a real keyboard produces; anything else is sent as text.
func keyEvent(key string, down bool) (*input.DispatchKeyEventParams, error) {
	if key == "" {
		return nil, errors.New("empty key")
	}

	r, named := namedKeys[key]
	if !named {
		if utf8.RuneCountInString(key) != 1 {
			return nil, fmt.Errorf("unsupported key %q", key)
		}
		r, _ = utf8.DecodeRuneInString(key)
	}

	k, known := kb.Keys[r]
	if !known {
		typ := input.KeyUp
		if down {
			typ = input.KeyDown
		}
		p := input.DispatchKeyEvent(typ).WithKey(key)
		if down {
			p = p.WithText(key).WithUnmodifiedText(key)
		}
		return p, nil
	}

	var typ input.KeyType
	switch {
	case !down:
		typ = input.KeyUp
	case k.Print:
		typ = input.KeyDown
	default:
		// Non-printing keys produce no text and therefore no keypress.
		typ = input.KeyRawDown
	}

	p := input.DispatchKeyEvent(typ).
		WithKey(k.Key).
		WithCode(k.Code).
		WithWindowsVirtualKeyCode(k.Windows).
		WithNativeVirtualKeyCode(k.Native)
	if k.Shift {
		p = p.WithModifiers(input.ModifierShift)
	}
	if down && k.Print {
		p = p.WithText(k.Text).WithUnmodifiedText(k.Unmodified)
	}
	return p, nil
}
