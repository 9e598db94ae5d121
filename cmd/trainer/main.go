package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"cardiorisk/internal/config"
	"cardiorisk/internal/data"
	"cardiorisk/internal/store"
	"cardiorisk/internal/training"
	"cardiorisk/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.Logger().Fatal("Failed to load config", zap.Error(err))
	}

	n := flag.Int("n", cfg.SampleCount, "Number of synthetic samples")
	seed := flag.Int64("seed", cfg.Seed, "Seed for data generation, split and model")
	algo := flag.String("algo", cfg.Algorithm, "Algorithm: rf|bagging|gb|dt")
	estimators := flag.Int("estimators", cfg.Estimators, "Number of estimators (rf/bagging/gb)")
	maxDepth := flag.Int("max_depth", cfg.MaxDepth, "Maximum tree depth")
	minSamples := flag.Int("min_samples", cfg.MinSamplesSplit, "Minimum samples to split a node")
	lr := flag.Float64("lr", cfg.LearningRate, "Learning rate for GradientBoosting")
	dataPath := flag.String("data", "", "Train from this CSV instead of generating data")
	export := flag.String("export", "", "Write the training set to this CSV")
	out := flag.String("out", cfg.ModelPath, "Model artifact path")
	flag.Parse()

	cfg.SampleCount, cfg.Seed, cfg.Algorithm = *n, *seed, *algo
	cfg.Estimators, cfg.MaxDepth, cfg.MinSamplesSplit, cfg.LearningRate = *estimators, *maxDepth, *minSamples, *lr
	cfg.ModelPath = *out
	if err := config.Validate(cfg); err != nil {
		utils.Logger().Fatal("Invalid flags", zap.Error(err))
	}

	logger, err := utils.NewLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		utils.Logger().Fatal("Failed to build logger", zap.Error(err))
	}
	utils.SetLogger(logger)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var samples []data.LabeledSample
	if *dataPath != "" {
		logger.Info("Reading dataset", zap.String("path", *dataPath))
		samples, err = data.ReadCSV(*dataPath)
		if err != nil {
			logger.Fatal("Failed to read dataset", zap.Error(err))
		}
	} else {
		logger.Info("Generating synthetic dataset", zap.Int("n", cfg.SampleCount), zap.Int64("seed", cfg.Seed))
		samples = data.Generate(cfg.SampleCount, cfg.Seed)
	}
	if *export != "" {
		if err := data.WriteCSV(*export, samples); err != nil {
			logger.Fatal("Failed to export dataset", zap.Error(err))
		}
		logger.Info("Dataset exported", zap.String("path", *export))
	}

	opts := cfg.TrainingOptions()
	opts.Logger = logger
	tm, err := training.NewTrainer(opts).Train(ctx, samples)
	if err != nil {
		logger.Fatal("Training failed", zap.Error(err))
	}

	st := store.NewFileStore(cfg.ModelPath)
	if err := st.Save(ctx, tm); err != nil {
		logger.Fatal("Failed to save model", zap.Error(err))
	}
	logger.Info("Model saved",
		zap.String("path", st.Path()),
		zap.String("model_id", tm.ID),
		zap.Float64("accuracy", tm.Accuracy),
		zap.Float64("precision", tm.Report.Precision),
		zap.Float64("recall", tm.Report.Recall),
		zap.Float64("f1", tm.Report.F1),
		zap.Float64("roc_auc", tm.Report.ROCAUC),
		zap.Float64("pr_auc", tm.Report.PRAUC),
	)
	fmt.Printf("Model: %s  accuracy: %.2f%%\n", tm.Algorithm, tm.Accuracy)
}
