package interact

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// WaitURLChange blocks until the page location satisfies target and the
// document it points at has reached DOMContentLoaded. Both conditions share
// one deadline; missing it yields *NavigationTimeoutError.
func (h *Helper) WaitURLChange(ctx context.Context, target URLTarget, timeout time.Duration) error {
	timeout = h.timeoutOrDefault(timeout)
	h.logger.Debug("wait_for_url_change", zap.Stringer("target", target), zap.Duration("timeout", timeout))

	start := time.Now()
	opCtx, cancel := bound(ctx, timeout)
	defer cancel()

	err := h.waitURL(opCtx, target, timeout)
	observe(opWaitURLChange, start, err)
	return err
}

func (h *Helper) waitURL(opCtx context.Context, target URLTarget, timeout time.Duration) error {
	var (
		lastURL string
		lastErr error
	)
	err := h.poll(opCtx, func(ctx context.Context) (bool, error) {
		u, err := h.page.Location(ctx)
		if err != nil {
			// A navigation in flight can make the location briefly unreadable.
			lastErr = err
			return false, nil
		}
		lastURL = u
		return target.Matches(u), nil
	})
	if err != nil {
		if timedOut(opCtx) {
			return NewNavigationTimeoutError(target.String(), lastURL, timeout, lastErr)
		}
		return err
	}

	h.logger.Debug("Location matched, waiting for document.", zap.String("url", lastURL))
	if err := h.waitLoadState(opCtx, DOMContentLoaded, nil); err != nil {
		if timedOut(opCtx) {
			return NewNavigationTimeoutError(target.String()+" and "+DOMContentLoaded.String(), lastURL, timeout, err)
		}
		return err
	}
	return nil
}

// WaitForLoadState blocks until document.readyState reaches state.
func (h *Helper) WaitForLoadState(ctx context.Context, state LoadState, timeout time.Duration) error {
	timeout = h.timeoutOrDefault(timeout)
	h.logger.Debug("wait_for_load_state", zap.Stringer("state", state), zap.Duration("timeout", timeout))

	start := time.Now()
	opCtx, cancel := bound(ctx, timeout)
	defer cancel()

	var lastURL string
	err := h.waitLoadState(opCtx, state, &lastURL)
	if err != nil && timedOut(opCtx) {
		err = NewNavigationTimeoutError(state.String(), lastURL, timeout, err)
	}
	observe(opWaitForLoadState, start, err)
	return err
}

// waitLoadState polls until state is reached. When lastURL is non-nil it is
// refreshed on every probe that has not reached state yet, all under opCtx.
func (h *Helper) waitLoadState(opCtx context.Context, state LoadState, lastURL *string) error {
	var last string
	err := h.poll(opCtx, func(ctx context.Context) (bool, error) {
		rs, err := h.page.ReadyState(ctx)
		if err == nil {
			last = rs
			if state.reachedBy(rs) {
				return true, nil
			}
		}
		// An error here usually means the old document is being torn down.
		if lastURL != nil {
			if u, err := h.page.Location(ctx); err == nil {
				*lastURL = u
			}
		}
		return false, nil
	})
	if err != nil {
		return fmt.Errorf("document stuck at readyState %q: %w", last, err)
	}
	return nil
}

// Navigate loads url and waits for DOMContentLoaded. A zero timeout uses the
// helper's navigation timeout.
func (h *Helper) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = h.navigationTimeout
	}
	h.logger.Debug("navigate", zap.String("url", url), zap.Duration("timeout", timeout))

	start := time.Now()
	opCtx, cancel := bound(ctx, timeout)
	defer cancel()

	err := h.navigate(opCtx, url, timeout)
	observe(opNavigate, start, err)
	return err
}

func (h *Helper) navigate(opCtx context.Context, url string, timeout time.Duration) error {
	if err := h.page.Navigate(opCtx, url); err != nil {
		if timedOut(opCtx) {
			return NewNavigationTimeoutError(fmt.Sprintf("navigate to %s", url), "", timeout, err)
		}
		if opCtx.Err() != nil {
			return opCtx.Err()
		}
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	if err := h.waitLoadState(opCtx, DOMContentLoaded, nil); err != nil {
		if timedOut(opCtx) {
			return NewNavigationTimeoutError(fmt.Sprintf("navigate to %s", url), url, timeout, err)
		}
		return err
	}
	return nil
}
