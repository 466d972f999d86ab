// internal/browser/session/geometry.go
package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/mimicry/api/schemas"
)

// boundsScript resolves a selector to its viewport rectangle. Hidden or
// zero-sized elements are reported as missing since they cannot be clicked.
const boundsScript = `(function(sel) {
	const node = document.querySelector(sel);
	if (!node) return null;
	const rect = node.getBoundingClientRect();
	const style = window.getComputedStyle(node);
	if (rect.width <= 0 || rect.height <= 0 || style.display === 'none' ||
		style.visibility === 'hidden' || style.opacity === '0') {
		return null;
	}
	return { x: rect.left, y: rect.top, width: rect.width, height: rect.height };
})(%s)`

// metricsScript measures the viewport and counts the words of text nodes
// whose parent element intersects it.
const metricsScript = `(function() {
	const doc = document.documentElement;
	const body = document.body;
	const vw = window.innerWidth || doc.clientWidth;
	const vh = window.innerHeight || doc.clientHeight;
	const pageHeight = Math.max(doc.scrollHeight, body ? body.scrollHeight : 0, vh);
	let words = 0;
	if (body) {
		const walker = document.createTreeWalker(body, NodeFilter.SHOW_TEXT);
		let node;
		while ((node = walker.nextNode())) {
			const parent = node.parentElement;
			if (!parent) continue;
			const r = parent.getBoundingClientRect();
			if (r.width === 0 || r.bottom < 0 || r.top > vh) continue;
			const text = node.textContent.trim();
			if (text) words += text.split(/\s+/).length;
		}
	}
	return {
		viewportWidth: vw,
		viewportHeight: vh,
		pageHeight: pageHeight,
		scrollY: window.scrollY || doc.scrollTop || 0,
		estimatedWordsVisible: words
	};
})()`

// GetElementBounds reports the viewport rectangle of the first element
// matching selector, or false when none is visible.
func (s *Session) GetElementBounds(ctx context.Context, selector string) (schemas.ElementBounds, bool, error) {
	sel, err := json.MarshalToString(selector)
	if err != nil {
		return schemas.ElementBounds{}, false, fmt.Errorf("failed to encode selector: %w", err)
	}

	opCtx, cancel := withTimeout(ctx, s.cfg.ActionTimeout)
	defer cancel()

	res, err := s.evaluate(opCtx, fmt.Sprintf(boundsScript, sel))
	if err != nil {
		if errors.Is(opCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return schemas.ElementBounds{}, false, fmt.Errorf("timeout getting bounds for '%s': %w", selector, opCtx.Err())
		}
		return schemas.ElementBounds{}, false, fmt.Errorf("failed to evaluate bounds for '%s': %w", selector, err)
	}
	if len(res) == 0 || string(res) == "null" {
		s.logger.Debug("Element not found or not visible.", zap.String("selector", selector))
		return schemas.ElementBounds{}, false, nil
	}

	var b schemas.ElementBounds
	if err := json.Unmarshal(res, &b); err != nil {
		return schemas.ElementBounds{}, false, fmt.Errorf("failed to decode bounds for '%s': %w (payload: %s)", selector, err, string(res))
	}
	return b, true, nil
}

// GetViewportAndPageMetrics measures the current page.
func (s *Session) GetViewportAndPageMetrics(ctx context.Context) (schemas.PageMetrics, error) {
	opCtx, cancel := withTimeout(ctx, s.cfg.ActionTimeout)
	defer cancel()

	res, err := s.evaluate(opCtx, metricsScript)
	if err != nil {
		return schemas.PageMetrics{}, fmt.Errorf("failed to evaluate page metrics: %w", err)
	}

	var m schemas.PageMetrics
	if err := json.Unmarshal(res, &m); err != nil {
		return schemas.PageMetrics{}, fmt.Errorf("failed to decode page metrics: %w (payload: %s)", err, string(res))
	}
	if m.PageHeight < m.ViewportHeight {
		m.PageHeight = m.ViewportHeight
	}
	return m, nil
}
