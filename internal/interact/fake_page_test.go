package interact_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"

	"github.com/xkilldash9x/pagewait/internal/interact"
)

// fakeElement is one node of the in-memory document.
type fakeElement struct {
	node      *cdp.Node
	selectors []string
	appearAt  time.Time
	detached  bool
	hidden    bool
	disabled  bool
	readonly  bool
	text      string
	value     string
	attrs     map[string]string
}

// fakePage is a tiny scripted document that implements interact.Page.
type fakePage struct {
	mu       sync.Mutex
	nextID   cdp.NodeID
	elements []*fakeElement

	url        string
	navURL     string
	navAt      time.Time
	loadedAt   time.Time
	readyState string

	beforeClick func(el *fakeElement)
	onClick     func(el *fakeElement)
	evaluated   []string
}

var _ interact.Page = (*fakePage)(nil)

func newFakePage(url string) *fakePage {
	return &fakePage{url: url, readyState: "complete"}
}

// add appends an element matched by the given selectors.
func (p *fakePage) add(el *fakeElement, selectors ...string) *fakeElement {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	el.node = &cdp.Node{NodeID: p.nextID, NodeName: "DIV"}
	el.selectors = selectors
	if el.attrs == nil {
		el.attrs = map[string]string{}
	}
	p.elements = append(p.elements, el)
	return el
}

// addAfter adds an element that only becomes part of the document after d.
func (p *fakePage) addAfter(d time.Duration, el *fakeElement, selectors ...string) *fakeElement {
	el.appearAt = time.Now().Add(d)
	return p.add(el, selectors...)
}

func (p *fakePage) detach(el *fakeElement) {
	p.mu.Lock()
	defer p.mu.Unlock()
	el.detached = true
}

func (p *fakePage) update(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn()
}

// navigateAfter schedules a location change after d; the new document
// stays "loading" for loadDelay.
func (p *fakePage) navigateAfter(d time.Duration, url string, loadDelay time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.navURL = url
	p.navAt = time.Now().Add(d)
	p.loadedAt = p.navAt.Add(loadDelay)
}

func (p *fakePage) present(el *fakeElement, now time.Time) bool {
	return !el.detached && (el.appearAt.IsZero() || !now.Before(el.appearAt))
}

func (p *fakePage) matches(selector string) []*cdp.Node {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	var nodes []*cdp.Node
	for _, el := range p.elements {
		if !p.present(el, now) {
			continue
		}
		for _, s := range el.selectors {
			if s == selector {
				nodes = append(nodes, el.node)
				break
			}
		}
	}
	return nodes
}

func (p *fakePage) lookup(node *cdp.Node) (*fakeElement, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, el := range p.elements {
		if el.node == node {
			if el.detached {
				return nil, fmt.Errorf("node %d: %w", node.NodeID, interact.ErrDetached)
			}
			return el, nil
		}
	}
	return nil, fmt.Errorf("node %d: %w", node.NodeID, interact.ErrDetached)
}

func (p *fakePage) WaitForSelector(ctx context.Context, selector string) (*cdp.Node, error) {
	ticker := time.NewTicker(2 * time.Millisecond)
	defer ticker.Stop()
	for {
		if nodes := p.matches(selector); len(nodes) > 0 {
			return nodes[0], nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *fakePage) QueryAll(_ context.Context, selector string) ([]*cdp.Node, error) {
	return p.matches(selector), nil
}

func (p *fakePage) Navigate(_ context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = url
	p.navURL = ""
	p.readyState = "complete"
	return nil
}

func (p *fakePage) Location(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.navURL != "" && !time.Now().Before(p.navAt) {
		return p.navURL, nil
	}
	return p.url, nil
}

func (p *fakePage) ReadyState(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.navURL != "" && !time.Now().Before(p.navAt) {
		if time.Now().Before(p.loadedAt) {
			return "loading", nil
		}
		return "complete", nil
	}
	return p.readyState, nil
}

func (p *fakePage) Evaluate(_ context.Context, script string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.evaluated = append(p.evaluated, script)
	return nil
}

func (p *fakePage) Inspect(_ context.Context, node *cdp.Node) (interact.ElementState, error) {
	el, err := p.lookup(node)
	if err != nil {
		return interact.ElementState{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return interact.ElementState{Attached: true, Visible: !el.hidden, Enabled: !el.disabled}, nil
}

func (p *fakePage) Click(_ context.Context, node *cdp.Node) error {
	if el, err := p.lookup(node); err == nil && p.beforeClick != nil {
		p.beforeClick(el)
	}
	el, err := p.lookup(node)
	if err != nil {
		return err
	}
	if p.onClick != nil {
		p.onClick(el)
	}
	return nil
}

func (p *fakePage) Fill(_ context.Context, node *cdp.Node, text string) error {
	el, err := p.lookup(node)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if el.readonly || el.hidden || el.disabled {
		return fmt.Errorf("node %d: %w", node.NodeID, interact.ErrNotEditable)
	}
	el.value = text
	return nil
}

func (p *fakePage) Text(_ context.Context, node *cdp.Node) (string, error) {
	el, err := p.lookup(node)
	if err != nil {
		return "", err
	}
	return el.text, nil
}

func (p *fakePage) Attribute(_ context.Context, node *cdp.Node, name string) (string, bool, error) {
	el, err := p.lookup(node)
	if err != nil {
		return "", false, err
	}
	v, ok := el.attrs[name]
	return v, ok, nil
}

func (p *fakePage) Value(_ context.Context, node *cdp.Node) (string, error) {
	el, err := p.lookup(node)
	if err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return el.value, nil
}
