// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"price-finder/internal/caption"
	"price-finder/internal/common/camunda"
	"price-finder/internal/common/config"
	"price-finder/internal/common/database"
	"price-finder/internal/common/logger"
	"price-finder/internal/common/observability"
	"price-finder/internal/common/validation"
	"price-finder/internal/enrichment"
	"price-finder/internal/pricing"
	"price-finder/internal/provider"
	"price-finder/internal/session"
	"price-finder/pkg/registry"

	fr "price-finder/internal/workers/enrichment/fetch-reviews"
	fv "price-finder/internal/workers/enrichment/fetch-videos"
	ip "price-finder/internal/workers/identification/identify-product"
	fp "price-finder/internal/workers/shopping/fetch-prices"
	rp "price-finder/internal/workers/shopping/rank-products"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("otel metrics disabled", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Zeebe ---
	zeebe, err := camunda.Connect(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: cfg.Camunda.UsePlaintext,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
	}, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Redis ---
	redis := database.NewRedis(cfg.Database.Redis)
	if err := redis.Ping(ctx); err != nil {
		zapLog.Warn("redis not reachable, session reuse degraded", zap.Error(err))
	}

	// --- Registry & validation ---
	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Fatal("activity registry load failed", zap.Error(err))
	}
	validator, err := validation.NewValidator(reg)
	if err != nil {
		zapLog.Fatal("activity schemas invalid", zap.Error(err))
	}

	// --- Domain services ---
	search := provider.NewClient(&provider.Config{
		BaseURL:           cfg.Provider.BaseURL,
		APIKey:            cfg.Provider.APIKey,
		Timeout:           config.GetDuration(cfg.Provider.Timeout),
		RequestsPerSecond: cfg.Provider.RequestsPerSecond,
		Burst:             cfg.Provider.Burst,
	}, log)

	engines, closeEngines := newCaptionRegistry(cfg, log)
	defer closeEngines()

	sessions := session.NewStore(redis, session.Config{
		TTL:       time.Duration(cfg.Session.TTL) * time.Second,
		KeyPrefix: cfg.Session.KeyPrefix,
	}, log)
	fetcher := enrichment.NewFetcher(search, log)

	// --- Workers ---
	client := zeebe.GetClient()
	var workers []worker.JobWorker
	start := func(taskType string, handle camunda.JobHandlerFunc) {
		handle = camunda.Observe(obs, taskType, handle)
		if w := camunda.StartWorker(client, taskType, config.GetWorkerConfig(cfg, taskType), handle, log); w != nil {
			workers = append(workers, w)
		}
	}

	ipCfg := ip.LoadConfig(cfg)
	mustValidate(zapLog, ip.TaskType, ipCfg.Validate())
	start(ip.TaskType, ip.NewHandler(ipCfg, ip.Dependencies{
		Resolver:  caption.NewResolver(engines, log),
		Sessions:  sessions,
		Validator: validator,
	}, log).Handle)

	fpCfg := fp.LoadConfig(cfg)
	mustValidate(zapLog, fp.TaskType, fpCfg.Validate())
	start(fp.TaskType, fp.NewHandler(fpCfg, fp.Dependencies{
		Prices:    pricing.NewAggregator(search, cfg.Shopping.ResultLimit, log),
		Sessions:  sessions,
		Validator: validator,
	}, log).Handle)

	rpCfg := rp.LoadConfig(cfg)
	mustValidate(zapLog, rp.TaskType, rpCfg.Validate())
	start(rp.TaskType, rp.NewHandler(rpCfg, validator, log).Handle)

	fvCfg := fv.LoadConfig(cfg)
	mustValidate(zapLog, fv.TaskType, fvCfg.Validate())
	start(fv.TaskType, fv.NewHandler(fvCfg, fv.Dependencies{
		Videos:    fetcher,
		Validator: validator,
	}, log).Handle)

	frCfg := fr.LoadConfig(cfg)
	mustValidate(zapLog, fr.TaskType, frCfg.Validate())
	start(fr.TaskType, fr.NewHandler(frCfg, fr.Dependencies{
		Reviews:   fetcher,
		Validator: validator,
	}, log).Handle)

	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:           newMux(zeebe, redis),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Close()
		w.AwaitClose()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping otel meter provider", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := redis.Close(); err != nil {
		zapLog.Error("Error closing Redis client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func mustValidate(zapLog *zap.Logger, taskType string, err error) {
	if err != nil {
		zapLog.Fatal("invalid worker config", zap.String("taskType", taskType), zap.Error(err))
	}
}

func newMux(zeebe *camunda.Client, redis *database.RedisClient) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{"zeebe": "ok", "redis": "ok"}
		status := http.StatusOK
		if err := zeebe.HealthCheck(ctx); err != nil {
			checks["zeebe"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if err := redis.Ping(ctx); err != nil {
			checks["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if status == http.StatusOK {
			checks["status"] = "ready"
		} else {
			checks["status"] = "not ready"
		}
		writeStatus(w, status, checks)
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeStatus(w http.ResponseWriter, status int, body map[string]string) {
	body["time"] = time.Now().Format(time.RFC3339)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
