package interact

import (
	"errors"
	"fmt"
	"time"
)

// Typed errors let callers choose a retry strategy with errors.As instead of
// matching on messages: retry with a longer timeout on NotFoundError,
// re-resolve on StaleElementError, give up on NotInteractableError.

// NotFoundError reports that a selector never matched within the timeout.
type NotFoundError struct {
	Selector string
	Timeout  time.Duration
	Err      error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no element matched selector '%s' within %v", e.Selector, e.Timeout)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(selector string, timeout time.Duration, err error) *NotFoundError {
	return &NotFoundError{Selector: selector, Timeout: timeout, Err: err}
}

// NotInteractableError reports that a selector matched but the element never
// became attached, visible and enabled within the timeout.
type NotInteractableError struct {
	Selector string
	Timeout  time.Duration
	// LastState is the last state observed before the deadline.
	LastState ElementState
	Err       error
}

func (e *NotInteractableError) Error() string {
	return fmt.Sprintf("element '%s' did not become interactable within %v (attached=%t visible=%t enabled=%t)",
		e.Selector, e.Timeout, e.LastState.Attached, e.LastState.Visible, e.LastState.Enabled)
}

func (e *NotInteractableError) Unwrap() error { return e.Err }

// NewNotInteractableError creates a new NotInteractableError.
func NewNotInteractableError(selector string, timeout time.Duration, last ElementState, err error) *NotInteractableError {
	return &NotInteractableError{Selector: selector, Timeout: timeout, LastState: last, Err: err}
}

// StaleElementError reports that a handle was valid when resolved but its
// node had left the document by the time it was used.
type StaleElementError struct {
	Locator string
	Action  string
	Err     error
}

func (e *StaleElementError) Error() string {
	return fmt.Sprintf("element '%s' went stale before %s", e.Locator, e.Action)
}

func (e *StaleElementError) Unwrap() error { return e.Err }

// NewStaleElementError creates a new StaleElementError.
func NewStaleElementError(locator, action string, err error) *StaleElementError {
	return &StaleElementError{Locator: locator, Action: action, Err: err}
}

// NavigationTimeoutError reports that the location or load-state condition
// was not met in time.
type NavigationTimeoutError struct {
	Target  string
	LastURL string
	Timeout time.Duration
	Err     error
}

func (e *NavigationTimeoutError) Error() string {
	if e.LastURL == "" {
		return fmt.Sprintf("navigation condition [%s] not met within %v", e.Target, e.Timeout)
	}
	return fmt.Sprintf("navigation condition [%s] not met within %v (last url %s)", e.Target, e.Timeout, e.LastURL)
}

func (e *NavigationTimeoutError) Unwrap() error { return e.Err }

// NewNavigationTimeoutError creates a new NavigationTimeoutError.
func NewNavigationTimeoutError(target, lastURL string, timeout time.Duration, err error) *NavigationTimeoutError {
	return &NavigationTimeoutError{Target: target, LastURL: lastURL, Timeout: timeout, Err: err}
}

// IsNotFound reports whether err is or wraps a *NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsNotInteractable reports whether err is or wraps a *NotInteractableError.
func IsNotInteractable(err error) bool {
	var target *NotInteractableError
	return errors.As(err, &target)
}

// IsStale reports whether err is or wraps a *StaleElementError.
func IsStale(err error) bool {
	var target *StaleElementError
	return errors.As(err, &target)
}

// IsNavigationTimeout reports whether err is or wraps a *NavigationTimeoutError.
func IsNavigationTimeout(err error) bool {
	var target *NavigationTimeoutError
	return errors.As(err, &target)
}
