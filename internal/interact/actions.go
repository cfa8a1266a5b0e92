package interact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const scrollToBottomScript = `window.scrollTo(0, document.body.scrollHeight);`

// ClickSafely waits for selector to become clickable and clicks it. If the
// resolved node leaves the document before the click is dispatched the
// result is *StaleElementError.
func (h *Helper) ClickSafely(ctx context.Context, selector string, timeout time.Duration) error {
	timeout = h.timeoutOrDefault(timeout)
	h.logger.Debug("click_element_safely", zap.String("selector", selector), zap.Duration("timeout", timeout))

	start := time.Now()
	opCtx, cancel := bound(ctx, timeout)
	defer cancel()

	err := h.clickSafely(opCtx, selector, timeout)
	observe(opClick, start, err)
	return err
}

func (h *Helper) clickSafely(opCtx context.Context, selector string, timeout time.Duration) error {
	el, err := h.waitClickable(opCtx, selector, timeout)
	if err != nil {
		return err
	}
	if err := h.page.Click(opCtx, el.Node); err != nil {
		return h.actionError(opCtx, selector, "click", err)
	}
	h.logger.Debug("Element clicked.", zap.String("selector", selector))
	return nil
}

// FillSafely replaces the content of the element identified by loc with text.
// Selector locators are resolved with Locate first; element locators are used
// as given.
func (h *Helper) FillSafely(ctx context.Context, loc Locator, text string, timeout time.Duration) error {
	timeout = h.timeoutOrDefault(timeout)
	h.logger.Debug("fill_text_safely",
		zap.Stringer("locator", loc),
		zap.Int("text_length", len(text)),
		zap.Duration("timeout", timeout),
	)

	start := time.Now()
	opCtx, cancel := bound(ctx, timeout)
	defer cancel()

	err := h.fillSafely(opCtx, loc, text, timeout)
	observe(opFill, start, err)
	return err
}

func (h *Helper) fillSafely(opCtx context.Context, loc Locator, text string, timeout time.Duration) error {
	var el Element
	if loc.IsResolved() {
		el = *loc.element
	} else {
		var err error
		if el, err = h.locate(opCtx, loc.selector, timeout); err != nil {
			return err
		}
	}
	if el.Node == nil {
		return NewStaleElementError(loc.String(), "fill", ErrDetached)
	}
	if err := h.page.Fill(opCtx, el.Node, text); err != nil {
		if errors.Is(err, ErrNotEditable) {
			state, inspectErr := h.page.Inspect(opCtx, el.Node)
			if inspectErr != nil {
				state = ElementState{Attached: true}
			}
			h.logger.Debug("Element refused input.", zap.String("locator", loc.String()), zap.Error(err))
			return NewNotInteractableError(loc.String(), timeout, state, err)
		}
		return h.actionError(opCtx, loc.String(), "fill", err)
	}
	return nil
}

// actionError classifies a failure of a primitive run against a resolved node.
func (h *Helper) actionError(opCtx context.Context, locator, action string, err error) error {
	switch {
	case errors.Is(err, ErrDetached):
		h.logger.Debug("Element went stale.", zap.String("locator", locator), zap.String("action", action))
		return NewStaleElementError(locator, action, err)
	case opCtx.Err() != nil:
		return opCtx.Err()
	default:
		return fmt.Errorf("failed to %s '%s': %w", action, locator, err)
	}
}

// ScrollToBottom scrolls the document to its maximum vertical extent. It is
// best effort: failures are logged and otherwise ignored.
func (h *Helper) ScrollToBottom(ctx context.Context) {
	h.logger.Debug("scroll_to_bottom")

	start := time.Now()
	opCtx, cancel := bound(ctx, h.defaultTimeout)
	defer cancel()

	err := h.page.Evaluate(opCtx, scrollToBottomScript, nil)
	observe(opScrollToBottom, start, err)
	if err != nil {
		h.logger.Warn("Failed to scroll to bottom.", zap.Error(err))
	}
}
