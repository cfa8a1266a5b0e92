// File: cmd/demo.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/pagewait/internal/browser/session"
	"github.com/xkilldash9x/pagewait/internal/config"
	"github.com/xkilldash9x/pagewait/internal/fixtures"
	"github.com/xkilldash9x/pagewait/internal/interact"
	"github.com/xkilldash9x/pagewait/internal/observability"
)

func newDemoCmd() *cobra.Command {
	var (
		headed   bool
		selector string
		timeout  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Open the fixture site in a browser and wait for its delayed element",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			logger := observability.GetLogger().Named("demo")

			fc := cfg.Fixtures
			fc.Addr = "127.0.0.1:0"
			srv, err := fixtures.NewServer(fc, logger)
			if err != nil {
				return fmt.Errorf("failed to create fixture server: %w", err)
			}
			base, err := srv.Start()
			if err != nil {
				return err
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Warn("Fixture server did not stop cleanly.", zap.Error(err))
				}
			}()

			bc := cfg.Browser
			if headed {
				bc.Headless = false
			}

			sess, release, err := launchAlongside(ctx, bc, logger, func(ctx context.Context) error {
				return waitHealthy(ctx, base+"/healthz")
			})
			if err != nil {
				return err
			}
			defer release()

			h := interact.New(sess, interact.WithConfig(cfg.Interact), interact.WithLogger(logger.Named("interact")))
			if err := h.Navigate(ctx, base+"/", 0); err != nil {
				return err
			}
			text, found, err := h.TextOf(ctx, selector, timeout)
			if err != nil {
				return err
			}
			if !found {
				return interact.NewNotFoundError(selector, timeout, nil)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Element text: %s\n", text)
			return nil
		},
	}
	cmd.Flags().BoolVar(&headed, "headed", false, "show the browser window")
	cmd.Flags().StringVar(&selector, "selector", "#delayedElement", "element to wait for")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "how long to wait for the element")
	return cmd
}

// launchAlongside starts a browser session while ready runs. Both must
// succeed; a failure of ready aborts a launch still in progress. The session
// lives on ctx, and release closes it.
func launchAlongside(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger, ready func(context.Context) error) (*session.Session, func(), error) {
	sessCtx, cancelSess := context.WithCancel(ctx)

	var sess *session.Session
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stop := context.AfterFunc(gctx, cancelSess)
		s, err := session.NewSession(sessCtx, cfg, logger)
		aborted := !stop()
		if err != nil {
			return err
		}
		sess = s
		if aborted {
			return errors.New("browser launch aborted")
		}
		return nil
	})
	g.Go(func() error {
		return ready(gctx)
	})
	err := g.Wait()

	release := func() {
		if sess != nil {
			closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = sess.Close(closeCtx)
		}
		cancelSess()
	}
	if err != nil {
		release()
		return nil, nil, err
	}
	return sess, release, nil
}

// waitHealthy polls url until it answers 200 or ctx ends.
func waitHealthy(ctx context.Context, url string) error {
	limiter := rate.NewLimiter(rate.Every(50*time.Millisecond), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("fixture server not ready: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			continue
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return nil
		}
	}
}
