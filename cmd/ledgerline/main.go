package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ledgerline/ledgerline/internal/app"
	"github.com/ledgerline/ledgerline/internal/ledger/accounts"
	"github.com/ledgerline/ledgerline/internal/ledger/aging"
	"github.com/ledgerline/ledgerline/internal/ledger/balance"
	"github.com/ledgerline/ledgerline/internal/ledger/docs"
	"github.com/ledgerline/ledgerline/internal/ledger/journal"
	"github.com/ledgerline/ledgerline/internal/ledger/reports"
	"github.com/ledgerline/ledgerline/internal/ledger/tax"
	"github.com/ledgerline/ledgerline/internal/observability"
	"github.com/ledgerline/ledgerline/internal/platform/cache"
	"github.com/ledgerline/ledgerline/internal/platform/db"
	"github.com/ledgerline/ledgerline/internal/shared"
	"github.com/ledgerline/ledgerline/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		// Reports degrade to uncached reads; the bump pubsub resumes once
		// Redis is back.
		logger.Warn("redis unavailable, starting degraded", slog.Any("error", err))
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(pool)
	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)

	balanceService := balance.NewService(balance.NewRepository(pool))

	accountsService := accounts.NewService(accounts.NewRepository(pool), balanceService, auditLogger)
	accountsHandler := accounts.NewHandler(logger, accountsService)

	journalService := journal.NewService(journal.NewRepository(pool), auditLogger, reportCache, metrics)
	journalHandler := journal.NewHandler(logger, journalService)

	reportsService := reports.NewService(balanceService, reportCache)
	reportsHandler := reports.NewHandler(logger, reportsService)

	docsService := docs.NewService(docs.NewRepository(pool), auditLogger)
	docsHandler := docs.NewHandler(logger, docsService)

	agingService := aging.NewService(docsService)
	agingHandler := aging.NewHandler(logger, agingService)

	taxService := tax.NewService(tax.NewRepository(pool))
	taxHandler := tax.NewHandler(logger, taxService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, jobsClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		AccountsHandler: accountsHandler,
		JournalHandler:  journalHandler,
		ReportsHandler:  reportsHandler,
		AgingHandler:    agingHandler,
		TaxHandler:      taxHandler,
		DocsHandler:     docsHandler,
		JobsHandler:     jobsHandler,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
