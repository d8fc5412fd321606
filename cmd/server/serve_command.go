package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hperssn/sous/internal/domain"
	httpapi "github.com/hperssn/sous/internal/http"
	"github.com/hperssn/sous/internal/runner"
	"github.com/hperssn/sous/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	var listen string
	var anonymous bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the cooking session HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), ctx, listen, anonymous)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (overrides config)")
	cmd.Flags().BoolVar(&anonymous, "anonymous", false, "Serve requests without a client header as a shared dev client")

	return cmd
}

func runServer(cmdCtx context.Context, ctx *commandContext, listen string, anonymous bool) error {
	if cmdCtx == nil {
		cmdCtx = context.Background()
	}
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := ctx.logger()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if listen == "" {
		listen = cfg.Server.Listen
	}

	repo, err := storage.Open(cfg.Storage.Backend, cfg.Storage.DSN)
	if err != nil {
		logger.Error("open recipe store", "backend", cfg.Storage.Backend, "error", err)
		return err
	}
	defer repo.Close()

	manager := runner.NewSessionManager(runner.ManagerConfig{
		Recipes: repo,
		Controller: runner.Options{
			VoiceEnabled: cfg.Session.VoiceDefault,
			Speech: domain.SpeakOptions{
				Language: cfg.Narration.Language,
				Rate:     cfg.Narration.Rate,
			},
			TickInterval:     cfg.TickInterval(),
			ReportRetryDelay: cfg.ReportRetryDelay(),
			ReportTimeout:    cfg.ReportTimeout(),
			Logger:           logger,
		},
		IdleTTL: cfg.IdleTTL(),
	})
	defer manager.Close()

	srv := newHTTPServer(listen, httpapi.NewServer(manager, repo, httpapi.Options{Logger: logger, AllowAnonymous: anonymous}), manager)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", listen, "storage", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-signalCtx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	return nil
}

// newHTTPServer ends every session when shutdown begins, which closes the
// event streams so Shutdown is not held open by connected clients.
func newHTTPServer(addr string, handler http.Handler, manager *runner.SessionManager) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(manager.Close)
	return srv
}
