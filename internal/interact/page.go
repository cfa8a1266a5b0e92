// Package interact provides bounded-wait primitives for locating and
// interacting with document elements through a live page session.
//
// Every selector-based operation re-resolves its selector against the current
// document, polls until its condition holds or its timeout elapses, and reports
// failures with a typed error (NotFoundError, NotInteractableError,
// StaleElementError, NavigationTimeoutError) so callers can pick a retry
// strategy. The helpers hold no state beyond their configuration; the page
// session is borrowed per call and never closed here.
package interact

import (
	"context"
	"errors"

	"github.com/chromedp/cdproto/cdp"
)

// ErrDetached is returned (wrapped) by a Page when the DOM node behind a
// handle is no longer part of the document.
var ErrDetached = errors.New("node is detached from the document")

// ErrNotEditable is returned (wrapped) by Page.Fill when the node cannot take
// keyboard focus, is read-only, or does not hold the text afterwards.
var ErrNotEditable = errors.New("element did not accept text input")

// Page is the page session capability the helpers drive. Implementations are
// not expected to be safe for concurrent use.
type Page interface {
	// WaitForSelector blocks until an element matching selector is attached
	// and returns the first match. It returns when ctx is done.
	WaitForSelector(ctx context.Context, selector string) (*cdp.Node, error)
	// QueryAll returns the current matches for selector in document order
	// without waiting. No match is not an error.
	QueryAll(ctx context.Context, selector string) ([]*cdp.Node, error)

	Navigate(ctx context.Context, url string) error
	Location(ctx context.Context) (string, error)
	// ReadyState returns document.readyState.
	ReadyState(ctx context.Context) (string, error)
	// Evaluate runs script in the page. res may be nil.
	Evaluate(ctx context.Context, script string, res interface{}) error

	// Inspect probes the interactability of node.
	Inspect(ctx context.Context, node *cdp.Node) (ElementState, error)
	Click(ctx context.Context, node *cdp.Node) error
	// Fill replaces the content of an editable node with text. It fails with
	// ErrNotEditable rather than typing into another element.
	Fill(ctx context.Context, node *cdp.Node, text string) error
	// Text returns the rendered text of node.
	Text(ctx context.Context, node *cdp.Node) (string, error)
	// Attribute returns the named attribute and whether it is present.
	Attribute(ctx context.Context, node *cdp.Node, name string) (string, bool, error)
	// Value returns the current value property of a form control.
	Value(ctx context.Context, node *cdp.Node) (string, error)
}

// Element is a handle to a DOM node at the time it was resolved. It is not
// guaranteed to stay valid once the call that produced it returns.
type Element struct {
	Selector string
	Node     *cdp.Node
}

// ElementState is the interactability of an element observed in one probe.
type ElementState struct {
	Attached bool `json:"attached"`
	Visible  bool `json:"visible"`
	Enabled  bool `json:"enabled"`
}

// Ready reports whether the element can receive user input.
func (s ElementState) Ready() bool {
	return s.Attached && s.Visible && s.Enabled
}

// LoadState is a document readiness milestone.
type LoadState int

const (
	// DOMContentLoaded is reached once the document has been parsed.
	DOMContentLoaded LoadState = iota
	// Load is reached once all subresources have finished loading.
	Load
)

// String returns the name of the load state.
func (l LoadState) String() string {
	switch l {
	case DOMContentLoaded:
		return "domcontentloaded"
	case Load:
		return "load"
	default:
		return "unknown"
	}
}

// reachedBy reports whether document.readyState satisfies the load state.
func (l LoadState) reachedBy(readyState string) bool {
	switch readyState {
	case "complete":
		return true
	case "interactive":
		return l == DOMContentLoaded
	default:
		return false
	}
}
