// Package config defines engine configuration and how it is loaded.
package config

import (
	"time"

	"cardiorisk/internal/data"
	"cardiorisk/internal/models"
	"cardiorisk/internal/store"
	"cardiorisk/internal/training"
)

// Config contains process configuration shared by the API and the CLIs.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"omitempty,oneof=debug info warn error"`
	// LogFile, when set, receives a rotated copy of the log stream.
	LogFile string `koanf:"log_file"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr" validate:"required"`
	// APIKey, when set, is required in X-API-Key on prediction routes.
	APIKey string `koanf:"api_key"`

	// ModelPath is where the single model artifact lives.
	ModelPath string `koanf:"model_path" validate:"required"`
	Algorithm string `koanf:"algorithm" validate:"oneof=rf bagging gb dt"`

	Estimators      int     `koanf:"estimators" validate:"gt=0"`
	MaxDepth        int     `koanf:"max_depth" validate:"gt=0"`
	MinSamplesSplit int     `koanf:"min_samples_split" validate:"gte=2"`
	LearningRate    float64 `koanf:"learning_rate" validate:"gt=0,lte=1"`

	// SampleCount and Seed drive the synthetic training set used on cold start.
	SampleCount int   `koanf:"sample_count" validate:"gte=2"`
	Seed        int64 `koanf:"seed"`

	// TrainTimeout bounds a cold-start or retrain cycle.
	TrainTimeout time.Duration `koanf:"train_timeout" validate:"gt=0"`

	// CacheSize is the number of cached prediction results; 0 disables the cache.
	CacheSize int `koanf:"cache_size" validate:"gte=0"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":8080",
		ModelPath:       store.DefaultPath,
		Algorithm:       models.AlgoGradientBoosting,
		Estimators:      training.DefaultEstimators,
		MaxDepth:        training.DefaultMaxDepth,
		MinSamplesSplit: 2,
		LearningRate:    training.DefaultLearningRate,
		SampleCount:     data.DefaultSampleCount,
		Seed:            data.DefaultSeed,
		TrainTimeout:    2 * time.Minute,
		CacheSize:       1024,
	}
}

// TrainingOptions maps the config onto trainer options.
func (c *Config) TrainingOptions() training.Options {
	opts := training.DefaultOptions()
	opts.Algorithm = c.Algorithm
	opts.Seed = c.Seed
	opts.Params = models.Params{
		NEstimators:     c.Estimators,
		MaxDepth:        c.MaxDepth,
		MinSamplesSplit: c.MinSamplesSplit,
		LearningRate:    c.LearningRate,
		Seed:            c.Seed,
	}
	return opts
}
