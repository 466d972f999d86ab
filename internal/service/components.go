// File: internal/service/components.go
package service

import (
	"go.uber.org/zap"

	"github.com/xkilldash9x/mimicry/internal/orchestrator"
)

// Components holds the live objects of one browsing run.
type Components struct {
	Session      BrowserSession
	Orchestrator *orchestrator.Orchestrator

	logger *zap.Logger
}

// Shutdown releases the browser. Safe on partially built components.
func (c *Components) Shutdown() {
	logger := c.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("Beginning components shutdown sequence.")

	if c.Session != nil {
		if err := c.Session.Close(); err != nil {
			logger.Warn("Error during browser shutdown.", zap.Error(err))
		} else {
			logger.Debug("Browser session closed.")
		}
	}
	logger.Info("Browser components shut down.")
}
