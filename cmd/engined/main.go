// Package main is the entry point for the engine runner. It wires the
// ranking, similarity, and matching engines to Postgres, schedules the
// periodic recomputes, and serves /health and /metrics on an admin listener.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/openreel/crewdeck/internal/cache"
	"github.com/openreel/crewdeck/internal/config"
	"github.com/openreel/crewdeck/internal/db"
	"github.com/openreel/crewdeck/internal/health"
	"github.com/openreel/crewdeck/internal/jobs"
	"github.com/openreel/crewdeck/internal/logging"
	"github.com/openreel/crewdeck/internal/matching"
	"github.com/openreel/crewdeck/internal/postgres"
	"github.com/openreel/crewdeck/internal/ranking"
	"github.com/openreel/crewdeck/internal/reward"
	"github.com/openreel/crewdeck/internal/similarity"
	"github.com/openreel/crewdeck/internal/tracing"
)

func main() {
	help := flag.Bool("help", false, "display help message")
	configFile := flag.String("config", "", "path to optional YAML config file")
	flag.Parse()

	if *help {
		fmt.Println("Crewdeck Engine Runner")
		fmt.Println()
		fmt.Println("Usage: engined [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configFile)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		}
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Env)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "settings", cfg.LogSummary())

	tracerProvider, err := tracing.NewProvider(tracing.Config{
		ServiceName:  "crewdeck-engined",
		Enabled:      cfg.TracingEnabled,
		Environment:  cfg.Env,
		ExporterType: cfg.TracingExporterType,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplingRate: cfg.TracingSamplingRate,
		InsecureMode: cfg.Env != "production",
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			logger.Error("failed to shut down tracing", "error", err)
		}
	}()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	logger.Info("connected to database")

	// Redis is optional; without it the feed cache is a no-op.
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		logger.Info("redis feed cache enabled", "addr", cfg.RedisAddr)
	}
	feedCache := cache.NewFeedCache(redisClient, cache.DefaultTTL, logger)

	// Metrics
	registry := prometheus.NewRegistry()
	rewardMetrics := reward.NewMetrics()
	rankingMetrics := ranking.NewMetrics()
	similarityMetrics := similarity.NewMetrics()
	jobMetrics := jobs.NewMetrics()
	for _, collectors := range [][]prometheus.Collector{
		rewardMetrics.Collectors(),
		rankingMetrics.Collectors(),
		similarityMetrics.Collectors(),
		jobMetrics.Collectors(),
	} {
		registry.MustRegister(collectors...)
	}

	// Storage
	creators := postgres.NewCreatorRepository(database, logger)
	projects := postgres.NewProjectRepository(database, logger)
	engagements := postgres.NewEngagementRepository(database, logger)
	rewardStore := postgres.NewRewardStore(database, logger)
	scoreStore := postgres.NewRankScoreStore(database, logger)
	statsStore := postgres.NewPlatformStatsStore(database, logger)
	embeddingStore := postgres.NewEmbeddingStore(database, logger)
	edgeStore := postgres.NewSimilarityEdgeStore(database, logger)
	requestRepo := postgres.NewCollabRequestRepository(database, logger)
	matchStore := postgres.NewCollabMatchStore(database, logger)

	ledger, err := reward.NewLedger(rewardStore, creators, reward.Levels(cfg.LevelThresholds), logger, rewardMetrics)
	if err != nil {
		logger.Error("failed to create reward ledger", "error", err)
		os.Exit(1)
	}

	// Engines
	rankingEngine := ranking.NewEngine(ranking.Config{
		TopN:    cfg.RankingTopN,
		Logger:  logger,
		Metrics: rankingMetrics,
	}, projects, engagements, scoreStore, statsStore, ledger, feedCache)

	similarityEngine := similarity.NewEngine(similarity.Config{
		Logger:  logger,
		Metrics: similarityMetrics,
	}, projects, embeddingStore, edgeStore)

	matchingEngine := matching.NewEngine(matching.Config{
		Logger: logger,
	}, requestRepo, creators, matchStore, ledger)

	// Scheduling
	runner := jobs.NewRunner(logger, jobMetrics)
	scheduler := jobs.NewScheduler(jobs.SchedulerConfig{
		RankingInterval:    cfg.RankingInterval,
		SimilarityInterval: cfg.SimilarityInterval,
		Timeout:            cfg.EngineTimeout,
		Logger:             logger,
	}, runner, jobs.Scheduled{
		Ranking: func(ctx context.Context) error {
			_, err := rankingEngine.Recompute(ctx)
			return err
		},
		Similarity: func(ctx context.Context) error {
			return similarityEngine.Run(ctx, cfg.SimilarityDim)
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := scheduler.Start(ctx); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}

	// Admin listener
	healthHandler := health.NewHandler(health.DefaultCheckTimeout, logger)
	healthHandler.Register("database", health.NewDBChecker(database))
	if redisClient != nil {
		healthHandler.Register("redis", health.NewRedisChecker(redisClient))
	}

	mux := http.NewServeMux()
	mux.Handle("/health", healthHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Operational run triggers. Scheduled and manual runs share the
	// runner's per-type exclusion.
	mux.HandleFunc("POST /run/ranking", func(w http.ResponseWriter, r *http.Request) {
		go scheduler.TriggerNow(ctx, jobs.JobTypeRankingRecompute)
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("POST /run/similarity", func(w http.ResponseWriter, r *http.Request) {
		go scheduler.TriggerNow(ctx, jobs.JobTypeSimilarityRecompute)
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("POST /run/matching", func(w http.ResponseWriter, r *http.Request) {
		requestID := r.URL.Query().Get("request_id")
		if requestID == "" {
			http.Error(w, "request_id is required", http.StatusBadRequest)
			return
		}
		runner.RunBackground(ctx, jobs.JobTypeCollabMatching, func(ctx context.Context) error {
			_, err := matchingEngine.Match(ctx, requestID)
			return err
		})
		w.WriteHeader(http.StatusAccepted)
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting admin listener", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	scheduler.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("stopped")
}
