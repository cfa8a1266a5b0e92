// internal/browser/session/context_utils_test.go
package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ctxKey string

const targetKey ctxKey = "target"

func TestCombineContext(t *testing.T) {
	t.Run("values come from the session context", func(t *testing.T) {
		sessionCtx := context.WithValue(context.Background(), targetKey, "tab-1")
		opCtx := context.WithValue(context.Background(), targetKey, "ignored")

		combined, cancel := CombineContext(sessionCtx, opCtx)
		defer cancel()

		assert.Equal(t, "tab-1", combined.Value(targetKey))
		assert.NoError(t, combined.Err())
	})

	t.Run("session close ends the operation", func(t *testing.T) {
		sessionCtx, closeSession := context.WithCancel(context.Background())
		combined, cancel := CombineContext(sessionCtx, context.Background())
		defer cancel()

		closeSession()
		assert.ErrorIs(t, combined.Err(), context.Canceled)
	})

	t.Run("operation deadline ends the combined context", func(t *testing.T) {
		sessionCtx, closeSession := context.WithTimeout(context.Background(), 10*time.Second)
		defer closeSession()
		opCtx, cancelOp := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancelOp()

		combined, cancel := CombineContext(sessionCtx, opCtx)
		defer cancel()

		<-combined.Done()
		assert.ErrorIs(t, opCtx.Err(), context.DeadlineExceeded)
		// The link is a cancel, so the combined error is Canceled.
		assert.ErrorIs(t, combined.Err(), context.Canceled)
		assert.NoError(t, sessionCtx.Err(), "the session must survive its operations")
	})

	t.Run("session deadline is inherited", func(t *testing.T) {
		deadline := time.Now().Add(time.Minute)
		sessionCtx, closeSession := context.WithDeadline(context.Background(), deadline)
		defer closeSession()

		combined, cancel := CombineContext(sessionCtx, context.Background())
		defer cancel()

		got, ok := combined.Deadline()
		require.True(t, ok)
		assert.True(t, got.Equal(deadline))
	})

	t.Run("explicit cancel", func(t *testing.T) {
		combined, cancel := CombineContext(context.Background(), context.Background())
		cancel()
		assert.ErrorIs(t, combined.Err(), context.Canceled)
	})
}

func TestDetach(t *testing.T) {
	parent, cancelParent := context.WithTimeout(context.WithValue(context.Background(), targetKey, "tab-1"), 20*time.Millisecond)
	defer cancelParent()
	detached := Detach(parent)

	<-parent.Done()

	assert.Equal(t, "tab-1", detached.Value(targetKey))
	assert.NoError(t, detached.Err())
	assert.Nil(t, detached.Done())
	_, ok := detached.Deadline()
	assert.False(t, ok)

	t.Run("children keep their own deadline", func(t *testing.T) {
		child, cancel := context.WithTimeout(detached, 20*time.Millisecond)
		defer cancel()
		<-child.Done()
		assert.ErrorIs(t, child.Err(), context.DeadlineExceeded)
		assert.NoError(t, detached.Err())
	})
}
