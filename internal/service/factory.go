// File: internal/service/factory.go
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/mimicry/internal/browser/session"
	"github.com/xkilldash9x/mimicry/internal/config"
	"github.com/xkilldash9x/mimicry/internal/orchestrator"
)

// BrowserSession is a session the factory can shut down.
type BrowserSession interface {
	orchestrator.Session
	Close() error
}

// Launcher starts a browser session.
type Launcher func(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (BrowserSession, error)

// ComponentFactory builds the live components for one browsing run. The
// abstraction keeps the browse command testable without Chrome.
type ComponentFactory interface {
	Create(ctx context.Context, svc *Service, cfg config.Interface, id Identity, logger *zap.Logger) (*Components, error)
}

type concreteFactory struct {
	launch Launcher
}

// NewComponentFactory returns the production factory, which launches Chrome
// through chromedp.
func NewComponentFactory() ComponentFactory {
	return &concreteFactory{launch: launchChrome}
}

// NewComponentFactoryWithLauncher returns a factory that obtains sessions
// from launch.
func NewComponentFactoryWithLauncher(launch Launcher) ComponentFactory {
	return &concreteFactory{launch: launch}
}

func launchChrome(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (BrowserSession, error) {
	s, err := session.Launch(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create launches a session, binds the identity to it and applies the
// fingerprint. On failure everything created so far is shut down.
func (f *concreteFactory) Create(ctx context.Context, svc *Service, cfg config.Interface, id Identity, logger *zap.Logger) (*Components, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	components := &Components{logger: logger}

	var initializationErr error
	defer func() {
		if initializationErr != nil {
			logger.Warn("Initialization failed, shutting down partially created components.", zap.Error(initializationErr))
			components.Shutdown()
		}
	}()

	sess, err := f.launch(ctx, cfg.Browser(), logger)
	if err != nil {
		initializationErr = fmt.Errorf("failed to launch browser: %w", err)
		return nil, initializationErr
	}
	components.Session = sess
	logger.Debug("Browser session created.")

	components.Orchestrator = svc.CreateOrchestrator(sess, id.Fingerprint, id.Biometrics)
	if err := components.Orchestrator.Start(ctx); err != nil {
		initializationErr = fmt.Errorf("failed to start orchestrator: %w", err)
		return nil, initializationErr
	}
	logger.Debug("Orchestrator started.", zap.String("seed", id.Seed))

	return components, nil
}
