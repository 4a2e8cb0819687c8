package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"modelfetch/internal/common/fsutil"
	"modelfetch/internal/httpapi"
	"modelfetch/internal/manifest"
	"modelfetch/internal/runner"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP daemon: manifests, reports, health, and metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			descs, err := manifest.LoadDir(a.cfg.ManifestDir)
			if err != nil {
				return err
			}
			destRoot, err := fsutil.ExpandHome(a.cfg.DestDir)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") && a.cfg.Addr != "" {
				addr = a.cfg.Addr
			}

			svc := runner.NewService(descs, a.newRunner(a.cfg.MaxAttempts), runner.Config{
				DestRoot:    destRoot,
				Concurrency: a.cfg.Concurrency,
			}, a.log)

			// Graceful shutdown (Ctrl+C / SIGTERM) cancels in-flight runs.
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			httpapi.SetBaseContext(ctx)
			httpapi.SetLogger(a.log)
			httpapi.SetCORSOptions(a.cfg.CORSEnabled, a.cfg.CORSOrigins,
				[]string{http.MethodGet, http.MethodPost, http.MethodOptions},
				[]string{"Accept", "Content-Type"})

			srv := &http.Server{Addr: addr, Handler: httpapi.NewMux(svc)}
			errCh := make(chan error, 1)
			go func() {
				a.log.Info().Str("addr", addr).Int("models", len(descs)).Msg("modelfetch listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.log.Error().Err(err).Msg("graceful shutdown error")
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", envOr("MODELFETCH_ADDR", ":8080"), "HTTP listen address, e.g. :8080")
	return cmd
}
