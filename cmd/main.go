package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Qwealzy/roots-of-sentient/internal/adapters/blob"
	"github.com/Qwealzy/roots-of-sentient/internal/adapters/http/api"
	"github.com/Qwealzy/roots-of-sentient/internal/adapters/http/swagger"
	"github.com/Qwealzy/roots-of-sentient/internal/adapters/repository"
	service "github.com/Qwealzy/roots-of-sentient/internal/app"
	"github.com/Qwealzy/roots-of-sentient/internal/config"
	"github.com/Qwealzy/roots-of-sentient/internal/domain/geometry"
	"github.com/Qwealzy/roots-of-sentient/internal/domain/ring"
	"github.com/Qwealzy/roots-of-sentient/internal/domain/word"
	"github.com/Qwealzy/roots-of-sentient/pkg/logger"
	"github.com/Qwealzy/roots-of-sentient/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 30 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection; the service records its own
	// system metrics instead.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		log.Error(ctx, "record store initialization failed", logger.Error(err))
		return
	}
	blobs, err := buildBlobStore(ctx, cfg)
	if err != nil {
		log.Error(ctx, "blob store initialization failed", logger.Error(err))
		return
	}

	plan := ring.NewPlan(
		ring.WithBaseCapacity(cfg.BaseCapacity),
		ring.WithMaxLayer(cfg.MaxLayer),
		ring.WithOverrides(cfg.CapacityOverrides),
	)
	mapper := geometry.NewMapper(
		geometry.WithBaseRadius(cfg.BaseRadius),
		geometry.WithRadiusStep(cfg.RadiusStep),
		geometry.WithHalfStepOffset(cfg.HalfStepOffset),
		geometry.WithLayerZeroAngles(cfg.LayerZeroAngles),
	)

	svc := service.New(
		service.WithLogger(log.Named("service")),
		service.WithStore(store),
		service.WithBlobStore(blobs),
		service.WithPlan(plan),
		service.WithMapper(mapper),
		service.WithFoldLocale(cfg.FoldLocale),
		service.WithLimits(word.Limits{TermMaxLen: cfg.TermMaxLen, NameMaxLen: cfg.NameMaxLen}),
		service.WithSinglePerVisitor(cfg.SingleWordPerVisitor),
		service.WithMaxAvatarBytes(cfg.AvatarMaxBytes),
		service.WithWritebackQueueSize(cfg.WritebackQueueSize),
		service.WithWritebackWorkers(cfg.WritebackWorkers),
	)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "service start failed", logger.Error(err))
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	// HTTP mux and routes.
	mux := http.NewServeMux()

	swagger.Register(ctx, mux)

	apiServer := api.NewServer(svc, svc)
	apiServer.Register(ctx, mux)

	// The fs blob driver serves avatars directly off disk.
	if cfg.BlobDriver == "fs" {
		prefix := cfg.BlobFSBaseURL + "/"
		mux.Handle(prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.BlobFSDir))))
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// buildStore constructs the configured record store.
func buildStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.StoreDriver {
	case "postgres":
		return repository.OpenPGStore(ctx, cfg.PostgresDSN)
	default:
		return repository.NewMemStore(), nil
	}
}

// buildBlobStore constructs the configured avatar store.
func buildBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	switch cfg.BlobDriver {
	case "fs":
		return blob.NewFSStore(cfg.BlobFSDir, cfg.BlobFSBaseURL)
	case "s3":
		return blob.NewS3Store(ctx, blob.S3Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			PathStyle:     cfg.S3PathStyle,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
	default:
		return blob.NewMemStore(), nil
	}
}

// startSystemMetricsUpdater periodically refreshes system-level metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater periodically refreshes service-level gauges.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// GetStats refreshes the total-words and queue gauges.
			_ = svc.GetStats()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
