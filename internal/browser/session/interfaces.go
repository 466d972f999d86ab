// internal/browser/session/interfaces.go
package session

import (
	"context"

	"github.com/chromedp/chromedp"
)

// ActionExecutor runs chromedp actions within an operational context. The
// implementation combines that context with the long-lived tab context so
// actions keep their CDP connection information.
type ActionExecutor interface {
	RunActions(ctx context.Context, actions ...chromedp.Action) error
}
