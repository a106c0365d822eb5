package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"media-browser/internal/handlers"
	"media-browser/internal/logging"
	"media-browser/internal/memory"
	"media-browser/internal/startup"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var noInitialScan bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			startTime := time.Now()
			s := a.settings
			memory.ConfigureFromEnv()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			req, err := loadRequest(s)
			if err != nil {
				return err
			}
			startup.LogRoots(req.Roots)
			startup.LogEnrichmentInit(s)

			client, closer, err := newClient(ctx, s)
			if err != nil {
				return err
			}

			monitor := memory.NewMonitor(memory.DefaultConfig())
			go monitor.Run(ctx)

			retry := retryConfig(req.Roots)
			ctrl := newController(s, client, monitor, retry, func(text string) {
				logging.Info("Status: %s", text)
			})

			opts := handlers.Options{
				Controller:      ctrl,
				ConfigPath:      s.ConfigFile,
				CacheDirName:    s.CacheDirName,
				Retry:           retry,
				MetricsEnabled:  s.MetricsEnabled,
				LogHealthChecks: s.LogHealthChecks,
			}
			h := handlers.New(opts)
			router := h.Router(opts)
			startup.LogHTTPRoutes(router)

			srv := &http.Server{
				Addr:              net.JoinHostPort("localhost", s.Port),
				Handler:           handlers.Handler(router, opts),
				ReadHeaderTimeout: 15 * time.Second,
				IdleTimeout:       60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			if !noInitialScan {
				ctrl.Show(ctx, req, nil)
			}

			startup.LogServerStarted(startup.ServerConfig{
				Port:            s.Port,
				MetricsEnabled:  s.MetricsEnabled,
				StartupDuration: time.Since(startTime),
			})

			select {
			case err := <-errCh:
				closer.Close()
				return err
			case <-ctx.Done():
			}

			startup.LogShutdownInitiated("signal")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			startup.LogShutdownStep("Shutting down HTTP server")
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logging.Error("HTTP server shutdown error: %v", err)
			} else {
				startup.LogShutdownStepComplete("HTTP server stopped")
			}

			startup.LogShutdownStep("Stopping pipeline")
			if err := ctrl.Stop(shutdownCtx); err != nil {
				logging.Warn("Pipeline did not stop: %v", err)
			} else {
				startup.LogShutdownStepComplete("Pipeline stopped")
			}

			startup.LogShutdownStep("Stopping enrichment service")
			if err := closer.Close(); err != nil {
				logging.Warn("Enrichment service close error: %v", err)
			}
			startup.LogShutdownStepComplete("Enrichment service stopped")

			startup.LogShutdownComplete()
			return nil
		},
	}
	cmd.Flags().BoolVar(&noInitialScan, "no-initial-scan", false, "Do not read the roots at startup")
	return cmd
}
