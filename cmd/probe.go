// File: cmd/probe.go
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/pagewait/internal/browser/session"
	"github.com/xkilldash9x/pagewait/internal/interact"
	"github.com/xkilldash9x/pagewait/internal/observability"
)

func newProbeCmd() *cobra.Command {
	var (
		url      string
		selector string
		attr     string
		timeout  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Load a page and report on one element",
		Long: `Loads --url, waits up to --timeout for --selector and prints whether
it becomes clickable, its trimmed text and, with --attr, one attribute.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			logger := observability.GetLogger().Named("probe")

			sess, err := session.NewSession(ctx, cfg.Browser, logger)
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				_ = sess.Close(closeCtx)
			}()

			h := interact.New(sess, interact.WithConfig(cfg.Interact), interact.WithLogger(logger.Named("interact")))
			if err := h.Navigate(ctx, url, 0); err != nil {
				return err
			}
			return runProbe(ctx, h, cmd, selector, attr, timeout)
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "page to load")
	cmd.Flags().StringVar(&selector, "selector", "", "CSS selector of the element to probe")
	cmd.Flags().StringVar(&attr, "attr", "", "attribute to report")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "wait per check (default interact.default_timeout)")
	_ = cmd.MarkFlagRequired("url")
	_ = cmd.MarkFlagRequired("selector")
	return cmd
}

// runProbe prints the probe report for selector on the helper's page.
func runProbe(ctx context.Context, h *interact.Helper, cmd *cobra.Command, selector, attr string, timeout time.Duration) error {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "exists: %t\n", h.Exists(ctx, selector, timeout))

	text, found, err := h.TextOf(ctx, selector, timeout)
	if err != nil {
		return err
	}
	if found {
		fmt.Fprintf(out, "text: %s\n", text)
	} else {
		fmt.Fprintln(out, "text: <absent>")
	}

	if attr == "" {
		return nil
	}
	value, found, err := h.AttributeOf(ctx, selector, attr, timeout)
	if err != nil {
		return err
	}
	if found {
		fmt.Fprintf(out, "attr[%s]: %s\n", attr, value)
	} else {
		fmt.Fprintf(out, "attr[%s]: <absent>\n", attr)
	}
	return nil
}
