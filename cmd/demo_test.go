// File: cmd/demo_test.go
package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/pagewait/internal/config"
)

// stalledBrowser writes an executable that never announces a DevTools
// endpoint, so a launch against it only ends when its context does.
func stalledBrowser(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in for the browser needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "chrome")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexec sleep 30\n"), 0o755))
	return path
}

func TestLaunchAlongside_ReadinessFailureAbortsLaunch(t *testing.T) {
	cfg := config.NewDefaultConfig().Browser
	cfg.ExecPath = stalledBrowser(t)
	cfg.LaunchTimeout = 30 * time.Second

	notReady := errors.New("fixture server not ready")
	start := time.Now()
	sess, release, err := launchAlongside(context.Background(), cfg, zaptest.NewLogger(t), func(context.Context) error {
		return notReady
	})

	require.ErrorIs(t, err, notReady)
	assert.Nil(t, sess)
	assert.Nil(t, release)
	assert.Less(t, time.Since(start), 10*time.Second, "launch should be cut short, not wait for its own timeout")
}

func TestLaunchAlongside_LaunchFailureStopsReadiness(t *testing.T) {
	cfg := config.NewDefaultConfig().Browser
	cfg.ExecPath = filepath.Join(t.TempDir(), "no-such-browser")

	readyDone := make(chan error, 1)
	_, _, err := launchAlongside(context.Background(), cfg, zaptest.NewLogger(t), func(ctx context.Context) error {
		<-ctx.Done()
		readyDone <- ctx.Err()
		return ctx.Err()
	})

	require.Error(t, err)
	select {
	case rerr := <-readyDone:
		assert.ErrorIs(t, rerr, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("readiness check was not canceled")
	}
}
