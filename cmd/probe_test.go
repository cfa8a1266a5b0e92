// File: cmd/probe_test.go
package cmd

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/pagewait/internal/interact"
	"github.com/xkilldash9x/pagewait/internal/mocks"
)

func TestRunProbe(t *testing.T) {
	ready := interact.ElementState{Attached: true, Visible: true, Enabled: true}

	t.Run("present element with attribute", func(t *testing.T) {
		node := &cdp.Node{NodeID: 1}
		page := mocks.NewMockPage()
		page.On("QueryAll", mock.Anything, "#linkToExample").Return([]*cdp.Node{node}, nil)
		page.On("Inspect", mock.Anything, node).Return(ready, nil)
		page.On("WaitForSelector", mock.Anything, "#linkToExample").Return(node, nil)
		page.On("Text", mock.Anything, node).Return("  Go to the next page \n", nil)
		page.On("Attribute", mock.Anything, node, "href").Return("/new", true, nil)

		out := runProbeForTest(t, page, "#linkToExample", "href")
		assert.Equal(t, "exists: true\ntext: Go to the next page\nattr[href]: /new\n", out)
		page.AssertExpectations(t)
	})

	t.Run("absent element", func(t *testing.T) {
		page := mocks.NewMockPage()
		page.On("QueryAll", mock.Anything, "#nope").Return([]*cdp.Node{}, nil)
		page.On("WaitForSelector", mock.Anything, "#nope").
			Run(func(args mock.Arguments) { <-args.Get(0).(context.Context).Done() }).
			Return(nil, context.DeadlineExceeded)

		out := runProbeForTest(t, page, "#nope", "href")
		assert.Equal(t, "exists: false\ntext: <absent>\nattr[href]: <absent>\n", out)
	})
}

func runProbeForTest(t *testing.T, page interact.Page, selector, attr string) string {
	t.Helper()
	h := interact.New(page,
		interact.WithLogger(zaptest.NewLogger(t)),
		interact.WithPollInterval(5*time.Millisecond),
	)
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	require.NoError(t, runProbe(context.Background(), h, cmd, selector, attr, 50*time.Millisecond))
	return out.String()
}
