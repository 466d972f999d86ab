package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xkilldash9x/mimicry/api/schemas"
)

// call is one recorded session interaction.
type call struct {
	Op     string
	X, Y   float64
	DeltaY float64
	Key    string
	Wait   time.Duration
	Arg    string
}

// mockSession records every call in order. Waits are recorded, not slept.
type mockSession struct {
	mu    sync.Mutex
	calls []call

	bounds  map[string]schemas.ElementBounds
	metrics schemas.PageMetrics
	patches []schemas.OverridePatchSet

	// failOn makes the named operation return the error.
	failOn map[string]error
	// cancelAfterWaits cancels cancelFunc once that many waits were recorded.
	cancelAfterWaits int
	cancelFunc       context.CancelFunc
}

func newMockSession() *mockSession {
	return &mockSession{
		bounds: map[string]schemas.ElementBounds{},
		metrics: schemas.PageMetrics{
			ViewportWidth:         1280,
			ViewportHeight:        720,
			PageHeight:            3000,
			EstimatedWordsVisible: 150,
		},
		failOn: map[string]error{},
	}
}

func (m *mockSession) record(c call) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
	return m.failOn[c.Op]
}

func (m *mockSession) SetOverrides(ctx context.Context, patch schemas.OverridePatchSet) error {
	m.mu.Lock()
	m.patches = append(m.patches, patch)
	m.mu.Unlock()
	return m.record(call{Op: "SetOverrides"})
}

func (m *mockSession) Navigate(ctx context.Context, url string) error {
	return m.record(call{Op: "Navigate", Arg: url})
}

func (m *mockSession) MoveCursorTo(ctx context.Context, x, y float64) error {
	return m.record(call{Op: "MoveCursorTo", X: x, Y: y})
}

func (m *mockSession) PressPointer(ctx context.Context, x, y float64) error {
	return m.record(call{Op: "PressPointer", X: x, Y: y})
}

func (m *mockSession) ReleasePointer(ctx context.Context, x, y float64) error {
	return m.record(call{Op: "ReleasePointer", X: x, Y: y})
}

func (m *mockSession) PressKey(ctx context.Context, key string) error {
	return m.record(call{Op: "PressKey", Key: key})
}

func (m *mockSession) ReleaseKey(ctx context.Context, key string) error {
	return m.record(call{Op: "ReleaseKey", Key: key})
}

func (m *mockSession) ScrollBy(ctx context.Context, x, y, deltaY float64) error {
	return m.record(call{Op: "ScrollBy", X: x, Y: y, DeltaY: deltaY})
}

func (m *mockSession) GetElementBounds(ctx context.Context, selector string) (schemas.ElementBounds, bool, error) {
	if err := m.record(call{Op: "GetElementBounds", Arg: selector}); err != nil {
		return schemas.ElementBounds{}, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bounds[selector]
	return b, ok, nil
}

func (m *mockSession) GetViewportAndPageMetrics(ctx context.Context) (schemas.PageMetrics, error) {
	if err := m.record(call{Op: "GetViewportAndPageMetrics"}); err != nil {
		return schemas.PageMetrics{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.metrics, nil
}

func (m *mockSession) Wait(ctx context.Context, d time.Duration) error {
	if err := m.record(call{Op: "Wait", Wait: d}); err != nil {
		return err
	}
	m.mu.Lock()
	n := m.countLocked("Wait")
	cancel := m.cancelFunc
	limit := m.cancelAfterWaits
	m.mu.Unlock()

	if cancel != nil && limit > 0 && n >= limit {
		cancel()
	}
	return ctx.Err()
}

func (m *mockSession) countLocked(op string) int {
	n := 0
	for _, c := range m.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

func (m *mockSession) count(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countLocked(op)
}

// ops returns the recorded operations with waits and lookups filtered out.
func (m *mockSession) ops() []call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]call, 0, len(m.calls))
	for _, c := range m.calls {
		switch c.Op {
		case "Wait", "GetElementBounds", "GetViewportAndPageMetrics":
			continue
		}
		out = append(out, c)
	}
	return out
}

// typed reconstructs the text a focused input would hold after the key
// presses recorded so far.
func (m *mockSession) typed() string {
	var buf []rune
	for _, c := range m.ops() {
		if c.Op != "PressKey" {
			continue
		}
		if c.Key == keyBackspace {
			if len(buf) > 0 {
				buf = buf[:len(buf)-1]
			}
			continue
		}
		buf = append(buf, []rune(c.Key)...)
	}
	return string(buf)
}

func (c call) String() string {
	return fmt.Sprintf("%s(%v,%v,%v,%q,%v,%q)", c.Op, c.X, c.Y, c.DeltaY, c.Key, c.Wait, c.Arg)
}
