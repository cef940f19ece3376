package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"cvBuilder/internal/api"
	"cvBuilder/internal/config"
	"cvBuilder/internal/export"
	"cvBuilder/internal/metrics"
	"cvBuilder/internal/notify"
	"cvBuilder/internal/preview"
	"cvBuilder/internal/session"
	"cvBuilder/internal/upload"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	renderer, err := preview.NewRenderer()
	if err != nil {
		log.Fatalf("init renderer: %v", err)
	}

	capturer, err := export.NewCapturer(cfg.Capture.Driver, export.CaptureOptions{
		Scale:      cfg.Capture.Scale,
		BrowserBin: cfg.Capture.BrowserBin,
		Timeout:    cfg.Capture.Timeout,
	}, logger)
	if err != nil {
		log.Fatalf("init capturer: %v", err)
	}

	opts := []export.Option{
		export.WithTimeout(cfg.Export.Timeout),
		export.WithObserver(metrics.ExportObserver{}),
	}
	if cfg.Export.VerifyOutput {
		opts = append(opts, export.WithVerifier(&export.Verifier{}))
	}
	pipeline := export.NewPipeline(capturer, export.NewJPEGEncoder(), export.NewGopdfAssembler("cvBuilder"), logger, opts...)

	var scanner upload.Scanner
	if cfg.Upload.ClamdAddr != "" {
		scanner = upload.NewClamdScanner(cfg.Upload.ClamdAddr)
		logger.Info("photo uploads are scanned", slog.String("clamd_addr", cfg.Upload.ClamdAddr))
	}
	intake := upload.NewIntake(cfg.Upload.MaxBytes, scanner, logger)

	var broker notify.Broker
	switch cfg.Notify.Backend {
	case config.NotifyRedis:
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error("close redis client failed", slog.Any("error", err))
			}
		}()
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("ping redis: %v", err)
		}
		broker = notify.NewRedisBroker(redisClient, logger)
	default:
		broker = notify.NewLocalBroker(logger)
	}

	sessions := session.NewStore(cfg.Session.IdleTTL)
	go sweepSessions(sessions, cfg.Session.IdleTTL, logger)

	router := api.NewRouter(logger)
	api.RegisterRoutes(router, api.Dependencies{
		Sessions:       sessions,
		Renderer:       renderer,
		Exporter:       pipeline,
		Intake:         intake,
		Broker:         broker,
		Logger:         logger,
		AllowedOrigins: cfg.API.AllowedOrigins,
	})

	address := fmt.Sprintf(":%d", cfg.API.Port)
	logger.Info("api listening",
		slog.String("address", address),
		slog.String("capture_driver", cfg.Capture.Driver),
		slog.String("notify_backend", cfg.Notify.Backend),
	)

	if err := router.Run(address); err != nil {
		log.Fatalf("failed to start api server: %v", err)
	}
}

// sweepSessions 定期清理空闲会话。
func sweepSessions(store *session.Store, ttl time.Duration, logger *slog.Logger) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(ttl / 4)
	defer ticker.Stop()
	for range ticker.C {
		if n := store.Sweep(); n > 0 {
			logger.Info("idle sessions removed", slog.Int("count", n))
		}
	}
}
