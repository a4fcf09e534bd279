package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/rajasatyajit/QuakeAlert/config"
	"github.com/rajasatyajit/QuakeAlert/internal/api"
	"github.com/rajasatyajit/QuakeAlert/internal/dedup"
	"github.com/rajasatyajit/QuakeAlert/internal/feed"
	"github.com/rajasatyajit/QuakeAlert/internal/geocoder"
	"github.com/rajasatyajit/QuakeAlert/internal/localtime"
	"github.com/rajasatyajit/QuakeAlert/internal/logger"
	"github.com/rajasatyajit/QuakeAlert/internal/metrics"
	middlewares "github.com/rajasatyajit/QuakeAlert/internal/middleware"
	"github.com/rajasatyajit/QuakeAlert/internal/notify"
	"github.com/rajasatyajit/QuakeAlert/internal/pipeline"
	"github.com/rajasatyajit/QuakeAlert/internal/translate"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Starting QuakeAlert",
		"version", Version,
		"build_time", BuildTime,
		"git_commit", GitCommit,
	)

	if cfg.Metrics.Enabled {
		metrics.Init()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := dedup.New(ctx, cfg.Dedup)
	if err != nil {
		logger.Fatal("Failed to initialize dedup store", "error", err)
	}
	defer store.Close()
	logger.Info("Dedup store loaded", "known_ids", store.Len())

	normalizer := localtime.New(cfg.Time.SourceOffset, cfg.Time.TargetOffset, cfg.Time.TargetLabel)

	fetcher := feed.NewHTTPFetcher(cfg.Feed.URL, cfg.Feed.FetchTimeout)
	parser := feed.NewParser(normalizer.SourceLocation())

	geoClient := geocoder.NewClient(cfg.Region.GeocoderURL, cfg.Region.Timeout)
	filter := geocoder.NewRegionFilter(geoClient, cfg.Region.CountryCode)

	var translator pipeline.Translator = translate.Noop{}
	if cfg.Translate.URL != "" {
		translator = translate.NewClient(cfg.Translate.URL, cfg.Translate.SourceLang, cfg.Translate.TargetLang)
	}

	transport := notify.NewTelegramClient(cfg.Telegram.APIBase, cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.Timeout)
	window := notify.NewWindow(cfg.Notify.WindowMax, cfg.Notify.WindowLength)
	notifier := notify.NewNotifier(transport, window, cfg.Notify.RetryAttempts, cfg.Notify.RetryBackoff, cfg.Notify.MaxBackoff)
	formatter := notify.NewFormatter(normalizer)

	loop := pipeline.New(
		fetcher,
		parser,
		store,
		filter,
		translator,
		formatter,
		notifier,
		cfg.Feed,
		cfg.Region,
		cfg.Dedup.RecordAttempts,
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.Logging)
	r.Use(middlewares.Metrics)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.ReadTimeout))
	r.Use(middlewares.Security)

	apiHandler := api.NewHandler(loop, Version, BuildTime, GitCommit)
	apiHandler.RegisterRoutes(r)

	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := loop.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("poll loop: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server forced to shutdown", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("Application error", "error", err)
	}

	logger.Info("Server exited")
}
