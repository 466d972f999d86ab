// internal/browser/session/session.go
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/mimicry/api/schemas"
	"github.com/xkilldash9x/mimicry/internal/browser/stealth"
	"github.com/xkilldash9x/mimicry/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Session drives one Chrome tab over CDP. Input events pass through a token
// bucket so a runaway plan cannot flood the renderer.
type Session struct {
	ctx    context.Context // tab context, carries the CDP target
	cancel context.CancelFunc
	cfg    config.BrowserConfig
	logger *zap.Logger

	limiter *rate.Limiter

	// run and evaluate are the only paths to the browser.
	run      func(ctx context.Context, actions ...chromedp.Action) error
	evaluate func(ctx context.Context, script string) ([]byte, error)

	closeOnce sync.Once
}

var _ ActionExecutor = (*Session)(nil)

// newSession wraps an existing chromedp tab context.
func newSession(ctx context.Context, cancel context.CancelFunc, cfg config.BrowserConfig, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cancel == nil {
		cancel = func() {}
	}
	burst := cfg.InputBurst
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if cfg.InputRate > 0 {
		limit = rate.Limit(cfg.InputRate)
	}

	s := &Session{
		ctx:     ctx,
		cancel:  cancel,
		cfg:     cfg,
		logger:  logger.Named("session"),
		limiter: rate.NewLimiter(limit, burst),
	}
	s.run = s.runActions
	s.evaluate = s.evaluateScript
	return s
}

// RunActions executes actions in the tab under ctx.
func (s *Session) RunActions(ctx context.Context, actions ...chromedp.Action) error {
	return s.run(ctx, actions...)
}

func (s *Session) runActions(ctx context.Context, actions ...chromedp.Action) error {
	combined, cancel := CombineContext(s.ctx, ctx)
	defer cancel()
	return chromedp.Run(combined, actions...)
}

func (s *Session) evaluateScript(ctx context.Context, script string) ([]byte, error) {
	var res []byte
	err := s.run(ctx, chromedp.Evaluate(script, &res, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithReturnByValue(true).WithAwaitPromise(true).WithSilent(true)
	}))
	return res, err
}

// withTimeout bounds ctx by d when d is positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// SetOverrides installs the identity on the tab. It must run before the
// first navigation for the injected script to reach the first document.
func (s *Session) SetOverrides(ctx context.Context, patch schemas.OverridePatchSet) error {
	opCtx, cancel := withTimeout(ctx, s.cfg.ActionTimeout)
	defer cancel()

	if err := s.run(opCtx, stealth.Apply(patch, s.logger)); err != nil {
		return fmt.Errorf("failed to apply overrides: %w", err)
	}
	return nil
}

// Navigate loads url and waits for the load event.
func (s *Session) Navigate(ctx context.Context, url string) error {
	opCtx, cancel := withTimeout(ctx, s.cfg.NavTimeout)
	defer cancel()

	s.logger.Debug("Navigating", zap.String("url", url))
	if err := s.run(opCtx, chromedp.Navigate(url)); err != nil {
		if errors.Is(opCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return fmt.Errorf("navigation to %s timed out after %v: %w", url, s.cfg.NavTimeout, opCtx.Err())
		}
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

// Wait sleeps for d unless ctx ends first.
func (s *Session) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	return s.run(ctx, chromedp.Sleep(d))
}

// Close shuts the browser down. Safe to call more than once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = chromedp.Cancel(s.ctx)
		s.cancel()
		if errors.Is(err, context.Canceled) {
			err = nil
		}
	})
	return err
}
