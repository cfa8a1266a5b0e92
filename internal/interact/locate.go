package interact

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Locate waits until an element matching selector is attached to the
// document and returns it. It fails with *NotFoundError once timeout elapses
// (zero means the helper default).
func (h *Helper) Locate(ctx context.Context, selector string, timeout time.Duration) (Element, error) {
	timeout = h.timeoutOrDefault(timeout)
	h.logger.Debug("wait_for_element", zap.String("selector", selector), zap.Duration("timeout", timeout))

	start := time.Now()
	opCtx, cancel := bound(ctx, timeout)
	defer cancel()

	el, err := h.locate(opCtx, selector, timeout)
	observe(opLocate, start, err)
	return el, err
}

func (h *Helper) locate(opCtx context.Context, selector string, timeout time.Duration) (Element, error) {
	node, err := h.page.WaitForSelector(opCtx, selector)
	if err != nil {
		if timedOut(opCtx) {
			return Element{}, NewNotFoundError(selector, timeout, err)
		}
		if opCtx.Err() != nil {
			return Element{}, opCtx.Err()
		}
		return Element{}, fmt.Errorf("failed to locate '%s': %w", selector, err)
	}
	if node == nil {
		return Element{}, NewNotFoundError(selector, timeout, nil)
	}
	return Element{Selector: selector, Node: node}, nil
}

// LocateAll waits until selector matches at least once, then returns every
// current match in document order. Empty results before the deadline are
// treated as transient; only the timeout is terminal (*NotFoundError).
func (h *Helper) LocateAll(ctx context.Context, selector string, timeout time.Duration) ([]Element, error) {
	timeout = h.timeoutOrDefault(timeout)
	h.logger.Debug("wait_for_all_elements", zap.String("selector", selector), zap.Duration("timeout", timeout))

	start := time.Now()
	opCtx, cancel := bound(ctx, timeout)
	defer cancel()

	var (
		found   []Element
		lastErr error
	)
	err := h.poll(opCtx, func(ctx context.Context) (bool, error) {
		nodes, err := h.page.QueryAll(ctx, selector)
		if err != nil {
			lastErr = err
			return false, nil
		}
		if len(nodes) == 0 {
			return false, nil
		}
		found = make([]Element, 0, len(nodes))
		for _, n := range nodes {
			found = append(found, Element{Selector: selector, Node: n})
		}
		return true, nil
	})
	if err != nil {
		if timedOut(opCtx) {
			err = NewNotFoundError(selector, timeout, lastErr)
		}
		observe(opLocateAll, start, err)
		return nil, err
	}

	h.logger.Debug("Elements located.", zap.String("selector", selector), zap.Int("count", len(found)))
	observe(opLocateAll, start, nil)
	return found, nil
}

// WaitClickable waits until the first match for selector is attached,
// visible and enabled. The selector is re-resolved on every probe, so an
// element that is re-rendered while waiting is picked up in its new form.
//
// It fails with *NotFoundError if nothing ever matched and with
// *NotInteractableError if something matched but never became ready.
func (h *Helper) WaitClickable(ctx context.Context, selector string, timeout time.Duration) (Element, error) {
	timeout = h.timeoutOrDefault(timeout)
	h.logger.Debug("wait_for_element_to_be_clickable", zap.String("selector", selector), zap.Duration("timeout", timeout))

	start := time.Now()
	opCtx, cancel := bound(ctx, timeout)
	defer cancel()

	el, err := h.waitClickable(opCtx, selector, timeout)
	observe(opWaitClickable, start, err)
	return el, err
}

func (h *Helper) waitClickable(opCtx context.Context, selector string, timeout time.Duration) (Element, error) {
	var (
		matched bool
		last    ElementState
		lastErr error
		ready   Element
	)
	err := h.poll(opCtx, func(ctx context.Context) (bool, error) {
		nodes, err := h.page.QueryAll(ctx, selector)
		if err != nil {
			lastErr = err
			return false, nil
		}
		if len(nodes) == 0 {
			return false, nil
		}
		matched = true

		state, err := h.page.Inspect(ctx, nodes[0])
		if err != nil {
			// Most likely detached between query and probe. Re-resolve on the next tick.
			lastErr = err
			return false, nil
		}
		last = state
		if !state.Ready() {
			return false, nil
		}
		ready = Element{Selector: selector, Node: nodes[0]}
		return true, nil
	})
	if err == nil {
		return ready, nil
	}
	if !timedOut(opCtx) {
		return Element{}, err
	}
	if !matched {
		return Element{}, NewNotFoundError(selector, timeout, lastErr)
	}
	return Element{}, NewNotInteractableError(selector, timeout, last, lastErr)
}
