package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/tally_ledger_store/internal/core/services"
	"github.com/SscSPs/tally_ledger_store/internal/handlers"
	"github.com/SscSPs/tally_ledger_store/internal/middleware"
	"github.com/SscSPs/tally_ledger_store/pkg/database"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand() *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP ingest and diagnostics server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			return a.serve(cmd.Context(), skipMigrations)
		},
	}

	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply pending migrations on start")

	return cmd
}

func (a *app) serve(ctx context.Context, skipMigrations bool) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !skipMigrations {
		if err := database.RunMigrations(a.cfg.DatabaseURL, a.logger); err != nil {
			return err
		}
	}

	repos, closeRepos, err := a.repositories(ctx, false)
	if err != nil {
		return err
	}
	defer closeRepos()
	a.logger.Info("Database connection pool established.")

	rdb, err := a.redisClient(ctx)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	container := services.NewServiceContainer(a.cfg, repos, a.tenantLocker(rdb))
	limiterInstance, err := middleware.NewLimiter(a.cfg.RateLimit, rdb)
	if err != nil {
		return err
	}

	if a.cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(a.logger), gin.Recovery())
	if err := r.SetTrustedProxies(nil); err != nil {
		return fmt.Errorf("failed to set trusted proxies: %w", err)
	}
	handlers.RegisterRoutes(r, a.cfg, container, limiterInstance)

	srv := &http.Server{Addr: ":" + a.cfg.Port, Handler: r}
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Server starting", slog.String("port", a.cfg.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed to run: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
