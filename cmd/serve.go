// File: cmd/serve.go
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/pagewait/internal/fixtures"
	"github.com/xkilldash9x/pagewait/internal/observability"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	var (
		addr string
		root string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the fixture site until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			fc := cfg.Fixtures
			if cmd.Flags().Changed("addr") {
				fc.Addr = addr
			}
			if cmd.Flags().Changed("root") {
				fc.Root = root
			}

			logger := observability.GetLogger()
			srv, err := fixtures.NewServer(fc, logger)
			if err != nil {
				return fmt.Errorf("failed to create fixture server: %w", err)
			}
			base, err := srv.Start()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Serving fixtures at %s\n", base)
			return srv.Serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides fixtures.addr)")
	cmd.Flags().StringVar(&root, "root", "", "serve fixtures from this directory instead of the embedded site")
	return cmd
}
