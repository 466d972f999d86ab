// internal/browser/session/session_test.go
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/mimicry/api/schemas"
	"github.com/xkilldash9x/mimicry/internal/config"
	"github.com/xkilldash9x/mimicry/internal/orchestrator"
)

var _ orchestrator.Session = (*Session)(nil)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recorder stands in for the browser: it keeps every action and script and
// answers evaluations from a canned payload.
type recorder struct {
	mu      sync.Mutex
	actions []chromedp.Action
	scripts []string

	runErr  error
	payload string
	evalErr error
	// block makes run wait for ctx to end.
	block bool
}

func (r *recorder) run(ctx context.Context, actions ...chromedp.Action) error {
	r.mu.Lock()
	r.actions = append(r.actions, actions...)
	block := r.block
	r.mu.Unlock()
	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return r.runErr
}

func (r *recorder) evaluate(ctx context.Context, script string) ([]byte, error) {
	r.mu.Lock()
	r.scripts = append(r.scripts, script)
	r.mu.Unlock()
	if r.evalErr != nil {
		return nil, r.evalErr
	}
	return []byte(r.payload), nil
}

func testBrowserConfig() config.BrowserConfig {
	return config.BrowserConfig{
		InputRate:     1000,
		InputBurst:    100,
		ActionTimeout: time.Second,
		NavTimeout:    time.Second,
	}
}

func newTestSession(t *testing.T, cfg config.BrowserConfig) (*Session, *recorder) {
	t.Helper()
	rec := &recorder{}
	s := newSession(context.Background(), nil, cfg, zaptest.NewLogger(t))
	s.run = rec.run
	s.evaluate = rec.evaluate
	return s, rec
}

func lastMouse(t *testing.T, rec *recorder) *input.DispatchMouseEventParams {
	t.Helper()
	require.NotEmpty(t, rec.actions)
	p, ok := rec.actions[len(rec.actions)-1].(*input.DispatchMouseEventParams)
	require.True(t, ok, "expected a mouse event, got %T", rec.actions[len(rec.actions)-1])
	return p
}

func TestMouseDispatch(t *testing.T) {
	ctx := context.Background()
	s, rec := newTestSession(t, testBrowserConfig())

	require.NoError(t, s.MoveCursorTo(ctx, 10, 20))
	p := lastMouse(t, rec)
	assert.Equal(t, input.MouseMoved, p.Type)
	assert.Equal(t, input.None, p.Button)
	assert.Equal(t, 10.0, p.X)
	assert.Equal(t, 20.0, p.Y)

	require.NoError(t, s.PressPointer(ctx, 30, 40))
	p = lastMouse(t, rec)
	assert.Equal(t, input.MousePressed, p.Type)
	assert.Equal(t, input.Left, p.Button)
	assert.Equal(t, int64(1), p.Buttons)
	assert.Equal(t, int64(1), p.ClickCount)

	require.NoError(t, s.ReleasePointer(ctx, 30, 40))
	p = lastMouse(t, rec)
	assert.Equal(t, input.MouseReleased, p.Type)
	assert.Equal(t, int64(0), p.Buttons)

	require.NoError(t, s.ScrollBy(ctx, 600, 400, 120))
	p = lastMouse(t, rec)
	assert.Equal(t, input.MouseWheel, p.Type)
	assert.Equal(t, 120.0, p.DeltaY)
	assert.Equal(t, 600.0, p.X)
}

func TestMouseDispatch_ErrorWrapped(t *testing.T) {
	s, rec := newTestSession(t, testBrowserConfig())
	rec.runErr = errors.New("target closed")

	err := s.PressPointer(context.Background(), 1, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, rec.runErr)
	assert.Contains(t, err.Error(), "mousePressed")
}

func TestDispatch_Timeout(t *testing.T) {
	cfg := testBrowserConfig()
	cfg.ActionTimeout = 20 * time.Millisecond
	s, rec := newTestSession(t, cfg)
	rec.block = true

	err := s.MoveCursorTo(context.Background(), 1, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "timed out")
}

func TestDispatch_RateLimited(t *testing.T) {
	cfg := testBrowserConfig()
	cfg.InputRate = 1
	cfg.InputBurst = 1
	s, _ := newTestSession(t, cfg)

	require.NoError(t, s.MoveCursorTo(context.Background(), 1, 1))

	// The next token is a second away, past the deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.Error(t, s.MoveCursorTo(ctx, 2, 2))
}

func TestKeyEvent(t *testing.T) {
	t.Run("printable", func(t *testing.T) {
		p, err := keyEvent("a", true)
		require.NoError(t, err)
		assert.Equal(t, input.KeyDown, p.Type)
		assert.Equal(t, "a", p.Key)
		assert.Equal(t, "KeyA", p.Code)
		assert.Equal(t, "a", p.Text)
		assert.Equal(t, int64(65), p.WindowsVirtualKeyCode)
		assert.Zero(t, p.Modifiers)
	})

	t.Run("shifted", func(t *testing.T) {
		p, err := keyEvent("A", true)
		require.NoError(t, err)
		assert.Equal(t, "A", p.Text)
		assert.Equal(t, input.ModifierShift, p.Modifiers)
	})

	t.Run("release carries no text", func(t *testing.T) {
		p, err := keyEvent("a", false)
		require.NoError(t, err)
		assert.Equal(t, input.KeyUp, p.Type)
		assert.Empty(t, p.Text)
	})

	t.Run("backspace", func(t *testing.T) {
		p, err := keyEvent("Backspace", true)
		require.NoError(t, err)
		assert.Equal(t, input.KeyRawDown, p.Type)
		assert.Equal(t, "Backspace", p.Key)
		assert.Equal(t, int64(8), p.WindowsVirtualKeyCode)
		assert.Empty(t, p.Text)
	})

	t.Run("unknown rune is sent as text", func(t *testing.T) {
		p, err := keyEvent("😀", true)
		require.NoError(t, err)
		assert.Equal(t, input.KeyDown, p.Type)
		assert.Equal(t, "😀", p.Text)
		assert.Equal(t, "😀", p.Key)
	})

	t.Run("rejects", func(t *testing.T) {
		_, err := keyEvent("", true)
		assert.Error(t, err)
		_, err = keyEvent("ab", true)
		assert.Error(t, err)
	})
}

func TestPressAndReleaseKey(t *testing.T) {
	s, rec := newTestSession(t, testBrowserConfig())
	ctx := context.Background()

	require.NoError(t, s.PressKey(ctx, "x"))
	require.NoError(t, s.ReleaseKey(ctx, "x"))
	require.Len(t, rec.actions, 2)

	down := rec.actions[0].(*input.DispatchKeyEventParams)
	up := rec.actions[1].(*input.DispatchKeyEventParams)
	assert.Equal(t, input.KeyDown, down.Type)
	assert.Equal(t, input.KeyUp, up.Type)
	assert.Equal(t, down.Code, up.Code)

	assert.Error(t, s.PressKey(ctx, "too long"))
	assert.Len(t, rec.actions, 2, "invalid keys never reach the browser")
}

func TestGetElementBounds(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		s, rec := newTestSession(t, testBrowserConfig())
		rec.payload = `{"x":10.5,"y":20,"width":100,"height":30}`

		b, ok, err := s.GetElementBounds(ctx, `input[name="q"]`)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, schemas.ElementBounds{X: 10.5, Y: 20, Width: 100, Height: 30}, b)

		require.Len(t, rec.scripts, 1)
		assert.Contains(t, rec.scripts[0], `("input[name=\"q\"]")`, "selector is JSON-quoted into the script")
	})

	t.Run("missing", func(t *testing.T) {
		s, rec := newTestSession(t, testBrowserConfig())
		rec.payload = "null"

		_, ok, err := s.GetElementBounds(ctx, "#nope")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("evaluation error", func(t *testing.T) {
		s, rec := newTestSession(t, testBrowserConfig())
		rec.evalErr = errors.New("execution context destroyed")

		_, ok, err := s.GetElementBounds(ctx, "#a")
		require.Error(t, err)
		assert.False(t, ok)
		assert.ErrorIs(t, err, rec.evalErr)
	})

	t.Run("bad payload", func(t *testing.T) {
		s, rec := newTestSession(t, testBrowserConfig())
		rec.payload = `"oops"`

		_, _, err := s.GetElementBounds(ctx, "#a")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "payload")
	})
}

func TestGetViewportAndPageMetrics(t *testing.T) {
	s, rec := newTestSession(t, testBrowserConfig())
	rec.payload = `{"viewportWidth":1280,"viewportHeight":720,"pageHeight":4000,"scrollY":150,"estimatedWordsVisible":230}`

	m, err := s.GetViewportAndPageMetrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, schemas.PageMetrics{
		ViewportWidth: 1280, ViewportHeight: 720, PageHeight: 4000, ScrollY: 150, EstimatedWordsVisible: 230,
	}, m)

	// A page shorter than the viewport still reports at least one screen.
	rec.payload = `{"viewportWidth":800,"viewportHeight":600,"pageHeight":100}`
	m, err = s.GetViewportAndPageMetrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 600.0, m.PageHeight)
}

func TestSetOverrides(t *testing.T) {
	s, rec := newTestSession(t, testBrowserConfig())
	patch := schemas.OverridePatchSet{
		UserAgent: "Mozilla/5.0",
		Locale:    "en-US",
		Languages: []string{"en-US"},
		Timezone:  "America/New_York",
		Script:    "(function(){})();",
	}

	require.NoError(t, s.SetOverrides(context.Background(), patch))
	require.Len(t, rec.actions, 1)
	tasks, ok := rec.actions[0].(chromedp.Tasks)
	require.True(t, ok)
	assert.NotEmpty(t, tasks)

	rec.runErr = errors.New("boom")
	err := s.SetOverrides(context.Background(), patch)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to apply overrides")
}

func TestNavigate(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		s, rec := newTestSession(t, testBrowserConfig())
		require.NoError(t, s.Navigate(context.Background(), "https://example.com"))
		assert.Len(t, rec.actions, 1)
	})

	t.Run("timeout", func(t *testing.T) {
		cfg := testBrowserConfig()
		cfg.NavTimeout = 20 * time.Millisecond
		s, rec := newTestSession(t, cfg)
		rec.block = true

		err := s.Navigate(context.Background(), "https://slow.example")
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "timed out"), err.Error())
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("caller cancellation is not a timeout", func(t *testing.T) {
		s, rec := newTestSession(t, testBrowserConfig())
		rec.runErr = context.Canceled
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := s.Navigate(ctx, "https://example.com")
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "timed out")
	})
}

func TestWait(t *testing.T) {
	s, _ := newTestSession(t, testBrowserConfig())
	// Run the sleep action for real; it needs no browser.
	s.run = func(ctx context.Context, actions ...chromedp.Action) error {
		for _, a := range actions {
			if err := a.Do(ctx); err != nil {
				return err
			}
		}
		return nil
	}

	start := time.Now()
	require.NoError(t, s.Wait(context.Background(), 20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	require.NoError(t, s.Wait(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Wait(ctx, time.Hour), context.Canceled)
}

func TestAllocatorOptions(t *testing.T) {
	base := AllocatorOptions(config.BrowserConfig{})
	assert.Greater(t, len(base), len(chromedp.DefaultExecAllocatorOptions))

	full := AllocatorOptions(config.BrowserConfig{
		NoSandbox: true,
		ExecPath:  "/usr/bin/chromium",
		Args:      []string{"--lang=de-DE", "disable-gpu", "--"},
	})
	// NoSandbox, ExecPath and two usable args; the bare "--" is skipped.
	assert.Len(t, full, len(base)+4)

	headless := AllocatorOptions(config.BrowserConfig{Headless: true})
	assert.Len(t, headless, len(base)+2)
}

func TestClose_Idempotent(t *testing.T) {
	calls := 0
	s := newSession(context.Background(), func() { calls++ }, testBrowserConfig(), nil)

	// Not a chromedp context, so Cancel reports an error once; the second
	// call is a no-op.
	_ = s.Close()
	assert.NoError(t, s.Close())
	assert.Equal(t, 1, calls)
}
