package session

import (
	"context"
	"net/http/httptest"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/pagewait/internal/config"
	"github.com/xkilldash9x/pagewait/internal/fixtures"
	"github.com/xkilldash9x/pagewait/internal/interact"
)

var chromeCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"headless-shell",
}

// findChrome returns a Chrome binary or skips the test. PAGEWAIT_CHROME
// overrides the lookup.
func findChrome(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	if p := os.Getenv("PAGEWAIT_CHROME"); p != "" {
		return p
	}
	for _, name := range chromeCandidates {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	t.Skip("no Chrome binary found; set PAGEWAIT_CHROME to run browser tests")
	return ""
}

type fixture struct {
	session *Session
	helper  *interact.Helper
	baseURL string
}

// newFixture starts the fixture site and a headless session, and navigates to
// the index page.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	chrome := findChrome(t)
	logger := zaptest.NewLogger(t)

	srv, err := fixtures.NewServer(config.FixturesConfig{Addr: "127.0.0.1:0"}, logger)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	cfg := config.NewDefaultConfig().Browser
	cfg.ExecPath = chrome
	s, err := NewSession(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.Close(ctx)
	})

	h := interact.New(s, interact.WithLogger(logger), interact.WithPollInterval(50*time.Millisecond))
	require.NoError(t, h.Navigate(context.Background(), ts.URL+"/", 20*time.Second))
	return &fixture{session: s, helper: h, baseURL: ts.URL}
}
