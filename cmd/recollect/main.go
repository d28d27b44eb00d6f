package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pastlight/recollect/internal/config"
	"github.com/pastlight/recollect/internal/db"
	dbRedis "github.com/pastlight/recollect/internal/db/redis"
	"github.com/pastlight/recollect/internal/decay"
	"github.com/pastlight/recollect/internal/domain"
	"github.com/pastlight/recollect/internal/domain/search/request"
	"github.com/pastlight/recollect/internal/isolation"
	logpkg "github.com/pastlight/recollect/internal/logger"
	"github.com/pastlight/recollect/internal/metrics"
	"github.com/pastlight/recollect/internal/registry"
	"github.com/pastlight/recollect/internal/repository/embcache"
	memoryrepo "github.com/pastlight/recollect/internal/repository/memory"
	mcpTransport "github.com/pastlight/recollect/internal/transport/mcp"
	openaiEmb "github.com/pastlight/recollect/internal/transport/openai"
	reflectuc "github.com/pastlight/recollect/internal/usecase/reflect"
	rememberuc "github.com/pastlight/recollect/internal/usecase/remember"
	"github.com/pastlight/recollect/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting recollect memory server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("project", cfg.Memory.Project),
		zap.String("isolation_mode", cfg.Memory.IsolationMode),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.Register()

	embedder := buildEmbedder(cfg.Embedding, store, logger)
	if embedder == nil {
		logger.Warn("No embedding provider configured, running in degraded lexical mode")
	}

	repo := memoryrepo.New(store).WithHNSW(memoryrepo.HNSWConfig{
		M:           cfg.Memory.HNSWM,
		EFConstruct: cfg.Memory.HNSWEFConstruct,
	})
	reg := registry.New(store, domain.KeyPrefix, cfg.Memory.CollectionPrefix, cfg.Memory.ModelSuffix)
	policy := isolation.New(isolation.Mode(cfg.Memory.IsolationMode), cfg.Memory.Project)

	decayCfg := decay.Config{
		Enabled:   cfg.Decay.Enabled,
		Weight:    cfg.Decay.Weight,
		ScaleDays: cfg.Decay.ScaleDays,
	}
	if err := decayCfg.Validate(); err != nil {
		logger.Fatal("Invalid decay configuration", zap.Error(err))
	}

	reflectSvc := reflectuc.New(reg, repo, embedder, policy, decayCfg).
		WithCollectionTimeout(time.Duration(cfg.Memory.PerCollectionTimeoutSec) * time.Second)

	ownCollection := cfg.Memory.CollectionPrefix + cfg.Memory.Project + "_" + cfg.Memory.ModelSuffix
	rememberSvc := rememberuc.New(repo, embedder, ownCollection, cfg.Memory.Project, cfg.Embedding.Dimensions)

	defaults := request.Defaults{
		Limit:        cfg.Memory.DefaultLimit,
		MinScore:     cfg.Memory.DefaultMinScore,
		CrossProject: cfg.Memory.AllowCrossProject,
	}
	server := mcpTransport.NewServer(reflectSvc, rememberSvc, defaults, logger)

	// Operational HTTP endpoint: health and metrics. Optional, port 0
	// disables it. The protocol surface stays on stdio.
	var opsSrv *http.Server
	if cfg.OpsHTTP.Port > 0 {
		var health domain.HealthChecker
		if hc, ok := embedder.(domain.HealthChecker); ok {
			health = hc
		}
		opsSrv = newOpsServer(cfg.OpsHTTP, store, health, logger)
		go func() {
			logger.Info("Starting ops HTTP server", zap.String("addr", opsSrv.Addr))
			if err := opsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Fatal("Ops HTTP server error", zap.Error(err))
			}
		}()
	}

	// Graceful shutdown: a signal cancels the MCP run context, which ends
	// the stdio session; stdin EOF ends it the same way.
	runCtx, cancel := context.WithCancel(ctx)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-quit
		logger.Info("Received shutdown signal")
		cancel()
	}()

	if err := server.Run(runCtx); err != nil && err != context.Canceled {
		logger.Error("MCP server stopped with error", zap.Error(err))
	}

	if opsSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(
			context.Background(), time.Duration(cfg.OpsHTTP.ShutdownSec)*time.Second,
		)
		defer shutdownCancel()
		if err := opsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during ops HTTP shutdown", zap.Error(err))
		}
	}

	logger.Info("Server stopped gracefully")
}

// buildEmbedder assembles the decorator chain: OpenAI-compatible provider -> Cached.
// Returns nil when no provider is configured.
func buildEmbedder(cfg config.EmbeddingConfig, store db.Store, logger *zap.Logger) domain.Embedder {
	if cfg.Provider == "" {
		return nil
	}

	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Provider:   cfg.Provider,
		Logger:     logger,
	})

	cached := embcache.New(base, store, metrics.EmbeddingCacheTotal, logger)

	logger.Info("Embedder created",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model),
		zap.Int("dimensions", cfg.Dimensions),
	)
	return cached
}

// newOpsServer builds the health and metrics endpoint. health is nil in
// degraded lexical mode; only the store gates readiness then.
func newOpsServer(
	cfg config.OpsHTTPConfig, pinger db.Pinger, health domain.HealthChecker, logger *zap.Logger,
) *http.Server {
	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		pingCtx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := pinger.Ping(pingCtx); err != nil {
			logger.Warn("Health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("database unreachable\n"))
			return
		}
		if health != nil {
			probeCtx, probeCancel := context.WithTimeout(req.Context(), 5*time.Second)
			defer probeCancel()
			if err := health.HealthCheck(probeCtx); err != nil {
				logger.Warn("Embedding health check failed", zap.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("embedding provider unreachable\n"))
				return
			}
		}
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSec) * time.Second,
	}
}
