package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/ptrack/fiscalia-backend/internal/adapter/postgres"
	"github.com/ptrack/fiscalia-backend/internal/adapter/postgres/audit"
	"github.com/ptrack/fiscalia-backend/internal/adapter/postgres/casefile"
	"github.com/ptrack/fiscalia-backend/internal/adapter/postgres/catalog"
	"github.com/ptrack/fiscalia-backend/internal/adapter/postgres/office"
	"github.com/ptrack/fiscalia-backend/internal/adapter/postgres/prosecutor"
	"github.com/ptrack/fiscalia-backend/internal/adapter/postgres/user"
	jwtauth "github.com/ptrack/fiscalia-backend/internal/auth"
	"github.com/ptrack/fiscalia-backend/internal/config"
	authsvc "github.com/ptrack/fiscalia-backend/internal/service/auth"
	"github.com/ptrack/fiscalia-backend/internal/service/history"
	"github.com/ptrack/fiscalia-backend/internal/service/registry"
	"github.com/ptrack/fiscalia-backend/internal/service/report"
	"github.com/ptrack/fiscalia-backend/internal/service/summary"
	"github.com/ptrack/fiscalia-backend/internal/service/workflow"
	"github.com/ptrack/fiscalia-backend/internal/transport/middleware"
	"github.com/ptrack/fiscalia-backend/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, connects to
// the database, assembles the services and the HTTP router, and serves
// until the context is cancelled. Shutdown drains in-flight requests within
// the configured timeout.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)

	caseRepo := casefile.New(pool)
	prosecutorRepo := prosecutor.New(pool)
	officeRepo := office.New(pool)
	catalogRepo := catalog.New(pool)
	auditRepo := audit.New(pool)
	userRepo := user.New(pool)

	jwtManager := jwtauth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	authService := authsvc.NewService(logger, userRepo, jwtManager)
	registryService := registry.NewService(logger, caseRepo, prosecutorRepo, officeRepo, catalogRepo, auditRepo, userRepo, cfg.Workflow)
	workflowService := workflow.NewService(logger, caseRepo, prosecutorRepo, auditRepo, txm, cfg.Workflow)
	historyService := history.NewService(logger, auditRepo, caseRepo, prosecutorRepo, officeRepo, catalogRepo, userRepo)
	summaryService := summary.NewService(logger, caseRepo, cfg.Workflow)
	reportService := report.NewService(logger, caseRepo, userRepo, prosecutorRepo, cfg.Report)

	rateLimiter := middleware.NewRateLimiter(time.Minute)
	defer rateLimiter.Stop()

	router := rest.NewRouter(rest.RouterDeps{
		Auth:     rest.NewAuthHandler(authService, logger),
		Cases:    rest.NewCaseHandler(registryService, summaryService, logger),
		Workflow: rest.NewWorkflowHandler(workflowService, historyService, logger),
		Report:   rest.NewReportHandler(reportService, logger),
		Catalogs: rest.NewCatalogHandler(registryService, logger),
		Health:   rest.NewHealthHandler(pool, BuildVersion()),

		TokenValidator: authService,
		RateLimiter:    rateLimiter,
		CORS:           cfg.CORS,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	logger.Info("stopped")
	return nil
}
