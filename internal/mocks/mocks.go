// File: internal/mocks/mocks.go
package mocks

import (
	"context"

	"github.com/chromedp/cdproto/cdp"
	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/pagewait/internal/interact"
)

// -- Page Mock --

// MockPage implements the interact.Page interface for testing.
type MockPage struct {
	mock.Mock
}

var _ interact.Page = (*MockPage)(nil)

func NewMockPage() *MockPage {
	return &MockPage{}
}

func (m *MockPage) WaitForSelector(ctx context.Context, selector string) (*cdp.Node, error) {
	args := m.Called(ctx, selector)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cdp.Node), args.Error(1)
}

func (m *MockPage) QueryAll(ctx context.Context, selector string) ([]*cdp.Node, error) {
	args := m.Called(ctx, selector)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*cdp.Node), args.Error(1)
}

func (m *MockPage) Navigate(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}
func (m *MockPage) Location(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}
func (m *MockPage) ReadyState(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}
func (m *MockPage) Evaluate(ctx context.Context, script string, res interface{}) error {
	return m.Called(ctx, script, res).Error(0)
}

func (m *MockPage) Inspect(ctx context.Context, node *cdp.Node) (interact.ElementState, error) {
	args := m.Called(ctx, node)
	return args.Get(0).(interact.ElementState), args.Error(1)
}
func (m *MockPage) Click(ctx context.Context, node *cdp.Node) error {
	return m.Called(ctx, node).Error(0)
}
func (m *MockPage) Fill(ctx context.Context, node *cdp.Node, text string) error {
	return m.Called(ctx, node, text).Error(0)
}
func (m *MockPage) Text(ctx context.Context, node *cdp.Node) (string, error) {
	args := m.Called(ctx, node)
	return args.String(0), args.Error(1)
}
func (m *MockPage) Attribute(ctx context.Context, node *cdp.Node, name string) (string, bool, error) {
	args := m.Called(ctx, node, name)
	return args.String(0), args.Bool(1), args.Error(2)
}
func (m *MockPage) Value(ctx context.Context, node *cdp.Node) (string, error) {
	args := m.Called(ctx, node)
	return args.String(0), args.Error(1)
}
