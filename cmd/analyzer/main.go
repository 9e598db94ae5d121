package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"cardiorisk/internal/config"
	"cardiorisk/internal/data"
	"cardiorisk/internal/evaluation"
	"cardiorisk/internal/features"
	"cardiorisk/internal/store"
	"cardiorisk/internal/training"
	"cardiorisk/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.Logger().Fatal("Failed to load config", zap.Error(err))
	}

	modelPath := flag.String("model", cfg.ModelPath, "Model artifact to evaluate")
	n := flag.Int("n", cfg.SampleCount, "Number of synthetic samples for evaluation and the curve")
	seed := flag.Int64("seed", cfg.Seed+1, "Seed for the evaluation set")
	curve := flag.Bool("curve", true, "Build a learning curve (PNG and CSV)")
	points := flag.Int("points", 8, "Points on the learning curve")
	minSize := flag.Int("min", 20, "Smallest training size on the curve")
	outImg := flag.String("out_img", "reports/learning_curve.png", "Curve PNG output")
	outCsv := flag.String("out_csv", "reports/learning_curve.csv", "Curve CSV output")
	flag.Parse()

	logger, err := utils.NewLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		utils.Logger().Fatal("Failed to build logger", zap.Error(err))
	}
	utils.SetLogger(logger)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	samples := data.Generate(*n, *seed)

	tm, err := store.NewFileStore(*modelPath).Load(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		logger.Warn("No saved model, skipping evaluation", zap.String("path", *modelPath))
	case err != nil:
		logger.Fatal("Failed to load model", zap.Error(err))
	default:
		X, y := features.Matrix(samples)
		r := evaluation.Evaluate(y, tm.Classifier.PredictProba(X), 0.5)
		logger.Info("Fresh-data metrics",
			zap.String("model_id", tm.ID),
			zap.String("model", tm.Algorithm),
			zap.Float64("recorded_accuracy", tm.Accuracy),
			zap.Float64("accuracy", r.Accuracy),
			zap.Float64("f1", r.F1),
			zap.Float64("roc_auc", r.ROCAUC),
			zap.Float64("pr_auc", r.PRAUC),
			zap.Int("support", r.Support),
		)
		fmt.Printf("%s | holdout=%.2f%% | fresh=%.2f%% | tp=%d fp=%d tn=%d fn=%d\n",
			tm.Algorithm, tm.Accuracy, r.Accuracy, r.TP, r.FP, r.TN, r.FN)
	}

	if !*curve {
		return
	}
	opts := cfg.TrainingOptions()
	opts.Logger = logger
	pts, err := training.NewTrainer(opts).LearningCurve(ctx, samples, *points, *minSize)
	if err != nil {
		logger.Fatal("Learning curve failed", zap.Error(err))
	}
	if err := evaluation.WriteCurveCSV(*outCsv, pts); err != nil {
		logger.Warn("Failed to save curve CSV", zap.Error(err))
	}
	if err := evaluation.PlotCurvePNG(*outImg, "Learning curve ("+cfg.Algorithm+")", pts); err != nil {
		logger.Warn("Failed to save curve PNG", zap.Error(err))
	} else {
		logger.Info("Learning curve written", zap.String("png", *outImg), zap.String("csv", *outCsv))
	}
}
