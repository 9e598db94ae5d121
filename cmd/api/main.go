package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cardiorisk/internal/api"
	"cardiorisk/internal/config"
	"cardiorisk/internal/prediction"
	"cardiorisk/internal/store"
	"cardiorisk/internal/training"
	"cardiorisk/pkg/metrics"
	"cardiorisk/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.Logger().Fatal("Failed to load config", zap.Error(err))
	}
	logger, err := utils.NewLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		utils.Logger().Fatal("Failed to build logger", zap.Error(err))
	}
	utils.SetLogger(logger)
	defer logger.Sync()

	opts := cfg.TrainingOptions()
	opts.Logger = logger
	mtr := metrics.NewManager()

	svc, err := prediction.New(
		store.NewFileStore(cfg.ModelPath),
		training.NewTrainer(opts),
		prediction.WithLogger(logger),
		prediction.WithMetrics(mtr),
		prediction.WithDataset(cfg.SampleCount, cfg.Seed),
		prediction.WithTrainTimeout(cfg.TrainTimeout),
		prediction.WithCacheSize(cfg.CacheSize),
	)
	if err != nil {
		logger.Fatal("Failed to build prediction service", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Warm the model so the first request does not pay for training. A missing
	// artifact is trained here; a corrupt one stops startup.
	if tm, err := svc.EnsureReady(ctx); err != nil {
		if !errors.Is(err, prediction.ErrModelNotReady) {
			logger.Fatal("Failed to initialise model", zap.Error(err), zap.String("path", cfg.ModelPath))
		}
		logger.Warn("Model not ready at startup, will retry on first request", zap.Error(err))
	} else {
		logger.Info("Model ready", zap.String("model_id", tm.ID), zap.Float64("accuracy", tm.Accuracy))
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: api.NewServer(svc,
			api.WithAPIKey(cfg.APIKey),
			api.WithLogger(logger),
			api.WithMetricsHandler(mtr.Handler()),
		).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed", zap.Error(err))
	}
}
