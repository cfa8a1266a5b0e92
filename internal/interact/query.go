package interact

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// TextOf returns the trimmed visible text of the first element matching
// selector. found is false, with a nil error, when nothing matched before
// the timeout.
func (h *Helper) TextOf(ctx context.Context, selector string, timeout time.Duration) (text string, found bool, err error) {
	timeout = h.timeoutOrDefault(timeout)
	h.logger.Debug("get_text_content", zap.String("selector", selector), zap.Duration("timeout", timeout))

	start := time.Now()
	opCtx, cancel := bound(ctx, timeout)
	defer cancel()
	// absent is reported to metrics only; the caller sees found=false.
	var absent error
	defer func() { observe(opTextOf, start, errors.Join(err, absent)) }()

	el, err := h.locate(opCtx, selector, timeout)
	if err != nil {
		if IsNotFound(err) {
			h.logger.Debug("No element for text lookup.", zap.String("selector", selector))
			absent = err
			return "", false, nil
		}
		return "", false, err
	}
	raw, err := h.page.Text(opCtx, el.Node)
	if err != nil {
		return "", false, h.actionError(opCtx, selector, "read text", err)
	}
	return strings.TrimSpace(raw), true, nil
}

// AttributeOf returns the value of the named attribute on the first element
// matching selector. found is false when either the element or the attribute
// is absent.
func (h *Helper) AttributeOf(ctx context.Context, selector, name string, timeout time.Duration) (value string, found bool, err error) {
	timeout = h.timeoutOrDefault(timeout)
	h.logger.Debug("get_attribute",
		zap.String("selector", selector),
		zap.String("attribute", name),
		zap.Duration("timeout", timeout),
	)

	start := time.Now()
	opCtx, cancel := bound(ctx, timeout)
	defer cancel()
	var absent error
	defer func() { observe(opAttributeOf, start, errors.Join(err, absent)) }()

	el, err := h.locate(opCtx, selector, timeout)
	if err != nil {
		if IsNotFound(err) {
			absent = err
			return "", false, nil
		}
		return "", false, err
	}
	value, found, err = h.page.Attribute(opCtx, el.Node, name)
	if err != nil {
		return "", false, h.actionError(opCtx, selector, fmt.Sprintf("read attribute %q", name), err)
	}
	return value, found, nil
}

// InputValue returns the current value of the form control matching selector.
func (h *Helper) InputValue(ctx context.Context, selector string, timeout time.Duration) (value string, err error) {
	timeout = h.timeoutOrDefault(timeout)
	h.logger.Debug("input_value", zap.String("selector", selector), zap.Duration("timeout", timeout))

	start := time.Now()
	opCtx, cancel := bound(ctx, timeout)
	defer cancel()
	defer func() { observe(opInputValue, start, err) }()

	el, err := h.locate(opCtx, selector, timeout)
	if err != nil {
		return "", err
	}
	value, err = h.page.Value(opCtx, el.Node)
	if err != nil {
		return "", h.actionError(opCtx, selector, "read value", err)
	}
	return value, nil
}

// Exists reports whether selector becomes clickable within timeout. It never
// fails; every error counts as absence.
func (h *Helper) Exists(ctx context.Context, selector string, timeout time.Duration) bool {
	timeout = h.timeoutOrDefault(timeout)
	h.logger.Debug("element_exists", zap.String("selector", selector), zap.Duration("timeout", timeout))

	start := time.Now()
	opCtx, cancel := bound(ctx, timeout)
	defer cancel()

	_, err := h.waitClickable(opCtx, selector, timeout)
	observe(opExists, start, err)
	if err != nil {
		h.logger.Debug("Element not present or not ready.", zap.String("selector", selector), zap.Error(err))
		return false
	}
	return true
}

// IsVisible probes the first match for selector once, without waiting.
func (h *Helper) IsVisible(ctx context.Context, selector string) bool {
	nodes, err := h.page.QueryAll(ctx, selector)
	if err != nil || len(nodes) == 0 {
		return false
	}
	state, err := h.page.Inspect(ctx, nodes[0])
	if err != nil {
		return false
	}
	return state.Attached && state.Visible
}
