// internal/browser/session/context_utils.go
package session

import (
	"context"
)

// CombineContext returns a context that inherits values and the deadline of
// ctx1 and is canceled when either ctx1 or ctx2 is. chromedp keeps the target
// connection in ctx1's values while ctx2 carries the caller's deadline, so
// every action runs under both.
func CombineContext(ctx1, ctx2 context.Context) (context.Context, context.CancelFunc) {
	combinedCtx, cancel := context.WithCancel(ctx1)

	// The goroutine exits as soon as either side is done.
	go func() {
		select {
		case <-ctx2.Done():
			cancel()
		case <-combinedCtx.Done():
		}
	}()

	return combinedCtx, cancel
}
