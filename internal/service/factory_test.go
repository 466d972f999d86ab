package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/mimicry/internal/config"
)

func fixedLauncher(sess BrowserSession, err error) Launcher {
	return func(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (BrowserSession, error) {
		return sess, err
	}
}

func TestCreate(t *testing.T) {
	cfg := config.NewDefaultConfig()
	svc := newTestService(t)
	id, err := svc.GenerateIdentity("factory", "US", "")
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		sess := new(MockSession)
		sess.On("SetOverrides", mock.Anything, mock.Anything).Return(nil).Once()
		sess.On("Close").Return(nil).Once()

		components, err := NewComponentFactoryWithLauncher(fixedLauncher(sess, nil)).
			Create(context.Background(), svc, cfg, id, zaptest.NewLogger(t))
		require.NoError(t, err)
		require.NotNil(t, components.Orchestrator)
		assert.Equal(t, id.Fingerprint, components.Orchestrator.Fingerprint())

		components.Shutdown()
		sess.AssertExpectations(t)
	})

	t.Run("LaunchFailure", func(t *testing.T) {
		_, err := NewComponentFactoryWithLauncher(fixedLauncher(nil, errors.New("chrome not found"))).
			Create(context.Background(), svc, cfg, id, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to launch browser")
	})

	t.Run("OverrideFailureClosesSession", func(t *testing.T) {
		sess := new(MockSession)
		sess.On("SetOverrides", mock.Anything, mock.Anything).Return(errors.New("target crashed")).Once()
		sess.On("Close").Return(nil).Once()

		_, err := NewComponentFactoryWithLauncher(fixedLauncher(sess, nil)).
			Create(context.Background(), svc, cfg, id, zaptest.NewLogger(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "target crashed")
		sess.AssertExpectations(t)
	})
}

func TestComponents_Shutdown(t *testing.T) {
	t.Run("CloseErrorIsLogged", func(t *testing.T) {
		sess := new(MockSession)
		sess.On("Close").Return(errors.New("already gone")).Once()

		c := &Components{Session: sess, logger: zaptest.NewLogger(t)}
		assert.NotPanics(t, c.Shutdown)
		sess.AssertExpectations(t)
	})

	t.Run("Empty", func(t *testing.T) {
		assert.NotPanics(t, (&Components{}).Shutdown)
	})
}
