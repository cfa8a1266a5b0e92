package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/pagewait/internal/interact"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const releaseTimeout = 2 * time.Second

// connectedResult is what onConnected wrapped functions return.
type connectedResult struct {
	Detached bool                `json:"detached"`
	Value    jsoniter.RawMessage `json:"value"`
}

// WaitForSelector blocks until selector matches and returns the first node.
func (s *Session) WaitForSelector(ctx context.Context, selector string) (*cdp.Node, error) {
	var nodes []*cdp.Node
	if err := s.RunActions(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQuery)); err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("selector '%s' resolved to no nodes", selector)
	}
	return nodes[0], nil
}

// QueryAll returns the current matches for selector without waiting.
func (s *Session) QueryAll(ctx context.Context, selector string) ([]*cdp.Node, error) {
	var nodes []*cdp.Node
	if err := s.RunActions(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return nil, err
	}
	return nodes, nil
}

// Navigate loads url in the tab.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("Navigating.", zap.String("url", url))
	return s.RunActions(ctx, chromedp.Navigate(url))
}

// Location returns the URL of the current document.
func (s *Session) Location(ctx context.Context) (string, error) {
	var url string
	if err := s.RunActions(ctx, chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

// ReadyState returns document.readyState of the current document.
func (s *Session) ReadyState(ctx context.Context) (string, error) {
	var state string
	if err := s.RunActions(ctx, chromedp.Evaluate(jsReadyState, &state)); err != nil {
		return "", err
	}
	return state, nil
}

// Evaluate runs script in the page and decodes its result into res, which may be nil.
func (s *Session) Evaluate(ctx context.Context, script string, res interface{}) error {
	return s.RunActions(ctx, chromedp.Evaluate(script, res))
}

// Inspect probes node for attachment, visibility and enabled state.
func (s *Session) Inspect(ctx context.Context, node *cdp.Node) (interact.ElementState, error) {
	var state interact.ElementState
	raw, err := s.callOnNode(ctx, node, jsInspect)
	if err != nil {
		return state, err
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return state, fmt.Errorf("failed to decode element state: %w", err)
	}
	return state, nil
}

// Click dispatches a left mouse click at the centre of node.
func (s *Session) Click(ctx context.Context, node *cdp.Node) error {
	if node == nil {
		return interact.ErrDetached
	}
	err := s.RunActions(ctx, chromedp.MouseClickNode(node))
	if err == nil || ctx.Err() != nil {
		return err
	}
	// The box model lookup fails the same way for a removed node as for a
	// broken one; ask the node itself.
	if _, probeErr := s.callOnNode(ctx, node, jsConnected); errors.Is(probeErr, interact.ErrDetached) {
		return fmt.Errorf("click on node %d: %w", node.NodeID, probeErr)
	}
	return fmt.Errorf("click on node %d failed: %w", node.NodeID, err)
}

// Fill focuses node, clears it and inserts text as if typed in one go. A node
// that cannot take focus, is read-only, or ends up holding something other
// than text yields an error wrapping interact.ErrNotEditable.
func (s *Session) Fill(ctx context.Context, node *cdp.Node, text string) error {
	ok, err := s.callOnNodeBool(ctx, node, jsPrepareFill)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("node %d cannot take focus or is read-only: %w", node.NodeID, interact.ErrNotEditable)
	}
	if text != "" {
		if err := s.RunActions(ctx, input.InsertText(text)); err != nil {
			return fmt.Errorf("failed to insert text: %w", err)
		}
	}
	ok, err = s.callOnNodeBool(ctx, node, jsCommitFill(text))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("node %d does not hold the inserted text: %w", node.NodeID, interact.ErrNotEditable)
	}
	return nil
}

// callOnNodeBool runs fn through callOnNode and decodes a boolean result.
func (s *Session) callOnNodeBool(ctx context.Context, node *cdp.Node, fn string) (bool, error) {
	raw, err := s.callOnNode(ctx, node, fn)
	if err != nil {
		return false, err
	}
	var ok bool
	if err := json.Unmarshal(raw, &ok); err != nil {
		return false, fmt.Errorf("failed to decode result: %w", err)
	}
	return ok, nil
}

// Text returns the rendered text of node, falling back to textContent.
func (s *Session) Text(ctx context.Context, node *cdp.Node) (string, error) {
	raw, err := s.callOnNode(ctx, node, jsText)
	if err != nil {
		return "", err
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return "", fmt.Errorf("failed to decode text: %w", err)
	}
	return text, nil
}

// Attribute returns the named attribute of node and whether it is present.
func (s *Session) Attribute(ctx context.Context, node *cdp.Node, name string) (string, bool, error) {
	raw, err := s.callOnNode(ctx, node, jsAttribute(name))
	if err != nil {
		return "", false, err
	}
	var value *string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", false, fmt.Errorf("failed to decode attribute %q: %w", name, err)
	}
	if value == nil {
		return "", false, nil
	}
	return *value, true, nil
}

// Value returns the value property of a form control.
func (s *Session) Value(ctx context.Context, node *cdp.Node) (string, error) {
	raw, err := s.callOnNode(ctx, node, jsValue)
	if err != nil {
		return "", err
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", fmt.Errorf("failed to decode value: %w", err)
	}
	return value, nil
}

// callOnNode runs fn with `this` bound to node and returns its JSON result.
// A node that cannot be resolved or is no longer connected yields an error
// wrapping interact.ErrDetached.
func (s *Session) callOnNode(ctx context.Context, node *cdp.Node, fn string) (jsoniter.RawMessage, error) {
	if node == nil {
		return nil, interact.ErrDetached
	}

	var result connectedResult
	err := s.RunActions(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(node.NodeID).Do(ctx)
		if err != nil {
			return fmt.Errorf("resolve node %d: %v: %w", node.NodeID, err, interact.ErrDetached)
		}
		defer func() {
			// Releasing is best effort and must outlive a canceled operation.
			relCtx, cancel := context.WithTimeout(Detach(ctx), releaseTimeout)
			defer cancel()
			if relErr := runtime.ReleaseObject(obj.ObjectID).Do(relCtx); relErr != nil {
				s.logger.Debug("Failed to release remote object.", zap.Error(relErr))
			}
		}()

		res, exc, err := runtime.CallFunctionOn(onConnected(fn)).
			WithObjectID(obj.ObjectID).
			WithReturnByValue(true).
			WithAwaitPromise(true).
			Do(ctx)
		if err != nil {
			return err
		}
		if exc != nil {
			return exc
		}
		if res == nil || len(res.Value) == 0 {
			return fmt.Errorf("node %d: empty result", node.NodeID)
		}
		return json.Unmarshal([]byte(res.Value), &result)
	}))
	if err != nil {
		return nil, err
	}
	if result.Detached {
		return nil, fmt.Errorf("node %d: %w", node.NodeID, interact.ErrDetached)
	}
	if len(result.Value) == 0 {
		return jsoniter.RawMessage("null"), nil
	}
	return result.Value, nil
}
