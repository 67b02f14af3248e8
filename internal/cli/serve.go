package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aliqulovx561-ai/writing-set-two/internal/app"
	"github.com/aliqulovx561-ai/writing-set-two/internal/config"
	"github.com/aliqulovx561-ai/writing-set-two/internal/logger"
	"github.com/aliqulovx561-ai/writing-set-two/internal/server"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr, path string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the submission endpoint as an HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd.Flags(), func(c *config.Config) {
				if cmd.Flags().Changed("addr") {
					c.Addr = addr
				}
				if cmd.Flags().Changed("path") {
					c.Path = path
				}
			})
			if err != nil {
				return err
			}

			a, err := app.Build(cfg, cmd.OutOrStdout(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.Close() // nolint:errcheck

			rl := a.Relay()

			var checker server.BotChecker
			if a.Client != nil {
				checker = a.Client
			}
			srv := server.New(cfg, rl, checker, a.Log, a.Metrics)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServer(ctx, srv, a.Log)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "Listen address (or env: RELAY_ADDR)")
	cmd.Flags().StringVar(&path, "path", config.DefaultPath, "Submission endpoint path (or env: RELAY_PATH)")

	return cmd
}

// runServer serves until ctx is done, then shuts down gracefully.
func runServer(ctx context.Context, srv *server.Server, log *logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if server.IsServerClosed(err) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down relay server", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
