// File: cmd/root_test.go
package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/pagewait/internal/config"
)

// writeConfig writes a quiet config file and returns its path.
func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "logger:\n  level: error\n" + extra
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func TestRootCmd_VersionFlag(t *testing.T) {
	out, err := execute(t, context.Background(), "--version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}

func TestRootCmd_NoArgs(t *testing.T) {
	out, err := execute(t, context.Background())
	require.NoError(t, err)
	assert.Contains(t, out, "pagewait drives a browser with bounded waits and safe interactions.")
	for _, sub := range []string{"serve", "demo", "probe", "version"} {
		assert.Contains(t, out, sub)
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, context.Background(), "version", "--config", writeConfig(t, ""))
	require.NoError(t, err)
	assert.Contains(t, out, "pagewait "+Version)
}

func TestRootCmd_ConfigErrors(t *testing.T) {
	t.Run("missing explicit config file", func(t *testing.T) {
		_, err := execute(t, context.Background(), "version", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to initialize configuration")
	})

	t.Run("invalid values", func(t *testing.T) {
		path := writeConfig(t, "interact:\n  poll_interval: 0s\n")
		_, err := execute(t, context.Background(), "version", "--config", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "interact.poll_interval")
	})
}

func TestRootCmd_EnvOverride(t *testing.T) {
	t.Setenv("PAGEWAIT_FIXTURES_ADDR", "127.0.0.1:0")
	path := writeConfig(t, "")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	out, err := execute(t, ctx, "serve", "--config", path)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`Serving fixtures at http://127\.0\.0\.1:\d+`), out)
}

func TestServeCmd_FlagOverridesConfig(t *testing.T) {
	path := writeConfig(t, "fixtures:\n  addr: \"256.0.0.1:1\"\n")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	out, err := execute(t, ctx, "serve", "--config", path, "--addr", "127.0.0.1:0")
	require.NoError(t, err)
	assert.Contains(t, out, "Serving fixtures at http://127.0.0.1:")
}

func TestProbeCmd_RequiresFlags(t *testing.T) {
	_, err := execute(t, context.Background(), "probe", "--config", writeConfig(t, ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "selector", "url" not set`)
}

func TestGetConfigFromContext(t *testing.T) {
	_, err := getConfigFromContext(context.Background())
	assert.Error(t, err)

	want := config.NewDefaultConfig()
	got, err := getConfigFromContext(context.WithValue(context.Background(), configKey, want))
	require.NoError(t, err)
	assert.Same(t, want, got)
}
