package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/goleak"

	"github.com/xkilldash9x/mimicry/api/schemas"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// MockSession is a testify mock of BrowserSession.
type MockSession struct {
	mock.Mock
}

func (m *MockSession) SetOverrides(ctx context.Context, patch schemas.OverridePatchSet) error {
	return m.Called(ctx, patch).Error(0)
}

func (m *MockSession) Navigate(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

func (m *MockSession) MoveCursorTo(ctx context.Context, x, y float64) error {
	return m.Called(ctx, x, y).Error(0)
}

func (m *MockSession) PressPointer(ctx context.Context, x, y float64) error {
	return m.Called(ctx, x, y).Error(0)
}

func (m *MockSession) ReleasePointer(ctx context.Context, x, y float64) error {
	return m.Called(ctx, x, y).Error(0)
}

func (m *MockSession) PressKey(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockSession) ReleaseKey(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockSession) ScrollBy(ctx context.Context, x, y, deltaY float64) error {
	return m.Called(ctx, x, y, deltaY).Error(0)
}

func (m *MockSession) GetElementBounds(ctx context.Context, selector string) (schemas.ElementBounds, bool, error) {
	args := m.Called(ctx, selector)
	return args.Get(0).(schemas.ElementBounds), args.Bool(1), args.Error(2)
}

func (m *MockSession) GetViewportAndPageMetrics(ctx context.Context) (schemas.PageMetrics, error) {
	args := m.Called(ctx)
	return args.Get(0).(schemas.PageMetrics), args.Error(1)
}

func (m *MockSession) Wait(ctx context.Context, d time.Duration) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockSession) Close() error {
	return m.Called().Error(0)
}
