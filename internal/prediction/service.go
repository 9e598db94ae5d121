// Package prediction serves heart-disease risk predictions from a single
// active model, training and persisting one on first use when none exists.
package prediction

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"cardiorisk/internal/data"
	"cardiorisk/internal/features"
	"cardiorisk/internal/models"
	"cardiorisk/internal/store"
	"cardiorisk/internal/training"
	"cardiorisk/pkg/metrics"
)

// DefaultAccuracy is reported when the active model has no recorded accuracy.
const DefaultAccuracy = 85.0

// ErrModelNotReady means no model could be made available in time; callers
// may retry later.
var ErrModelNotReady = errors.New("model not ready")

// PredictionError is an inference failure on an already loaded model.
type PredictionError struct {
	ModelID string
	Err     error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction with model %s: %v", e.ModelID, e.Err)
}

func (e *PredictionError) Unwrap() error { return e.Err }

type Result struct {
	Label       int     `json:"prediction"`
	Probability float64 `json:"probability"`
	Accuracy    float64 `json:"accuracy"`
	ModelID     string  `json:"model_id"`
}

func (r Result) Message() string {
	if r.Label == 0 {
		return "You are healthy"
	}
	return "You may have heart disease. Please consult a doctor."
}

type cacheKey struct {
	model    string
	features [data.NumFeatures]float64
}

type Service struct {
	store        ModelStore
	trainer      ModelTrainer
	logger       *zap.Logger
	metrics      *metrics.Manager
	sampleCount  int
	seed         int64
	trainTimeout time.Duration
	cacheSize    int
	cache        *lru.Cache[cacheKey, Result]

	current atomic.Pointer[training.TrainedModel]
	// initFlight shares one cold-start cycle, and its outcome, between callers.
	initFlight singleflight.Group
	// cycleSem serialises load, train and swap across init and Retrain.
	cycleSem *semaphore.Weighted
}

type Option func(*Service)

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) { s.metrics = m }
}

// WithDataset sets the synthetic set generated when a model must be trained.
func WithDataset(sampleCount int, seed int64) Option {
	return func(s *Service) {
		s.sampleCount = sampleCount
		s.seed = seed
	}
}

// WithTrainTimeout bounds each train and persist cycle; 0 means unbounded.
func WithTrainTimeout(d time.Duration) Option {
	return func(s *Service) { s.trainTimeout = d }
}

// WithCacheSize enables an LRU of prediction results; n <= 0 disables it.
func WithCacheSize(n int) Option {
	return func(s *Service) { s.cacheSize = n }
}

func New(st ModelStore, tr ModelTrainer, opts ...Option) (*Service, error) {
	if st == nil || tr == nil {
		return nil, errors.New("prediction: store and trainer are required")
	}
	s := &Service{
		store:       st,
		trainer:     tr,
		logger:      zap.NewNop(),
		sampleCount: data.DefaultSampleCount,
		seed:        data.DefaultSeed,
		cycleSem:    semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("prediction")
	if s.cacheSize > 0 {
		c, err := lru.New[cacheKey, Result](s.cacheSize)
		if err != nil {
			return nil, err
		}
		s.cache = c
	}
	return s, nil
}

// Current returns the active model, or nil before the first EnsureReady.
func (s *Service) Current() *training.TrainedModel {
	return s.current.Load()
}

// EnsureReady makes a model active, loading the persisted artifact or, when
// none exists, training and persisting a new one. Concurrent callers share a
// single cycle and all observe its outcome. The cycle does not depend on any
// one caller's ctx; a caller that stops waiting gets ErrModelNotReady while
// the cycle carries on.
func (s *Service) EnsureReady(ctx context.Context) (*training.TrainedModel, error) {
	if tm := s.current.Load(); tm != nil {
		return tm, nil
	}
	cycleCtx := context.WithoutCancel(ctx)
	ch := s.initFlight.DoChan("init", func() (any, error) {
		return s.initialise(cycleCtx)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*training.TrainedModel), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrModelNotReady, ctx.Err())
	}
}

func (s *Service) initialise(ctx context.Context) (*training.TrainedModel, error) {
	if err := s.cycleSem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelNotReady, err)
	}
	defer s.cycleSem.Release(1)
	if tm := s.current.Load(); tm != nil {
		return tm, nil
	}

	tm, err := s.store.Load(ctx)
	switch {
	case err == nil:
		s.activate(tm, metrics.SourceDisk)
		return tm, nil
	case errors.Is(err, store.ErrNotFound):
		s.logger.Info("No saved model found, training new model")
	default:
		s.logger.Error("Failed to load model", zap.Error(err))
		return nil, err
	}

	tm, err = s.trainAndPersist(ctx)
	if err != nil {
		return nil, err
	}
	s.activate(tm, metrics.SourceTrained)
	return tm, nil
}

// Retrain trains and persists a new model and swaps it in. The previous
// model keeps serving until the new artifact is saved.
func (s *Service) Retrain(ctx context.Context) (*training.TrainedModel, error) {
	if err := s.cycleSem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelNotReady, err)
	}
	defer s.cycleSem.Release(1)

	tm, err := s.trainAndPersist(ctx)
	if err != nil {
		return nil, err
	}
	s.activate(tm, metrics.SourceRetrain)
	return tm, nil
}

func (s *Service) trainAndPersist(ctx context.Context) (*training.TrainedModel, error) {
	if s.trainTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.trainTimeout)
		defer cancel()
	}
	start := time.Now()
	tm, err := s.trainer.Train(ctx, data.Generate(s.sampleCount, s.seed))
	if err == nil {
		err = s.store.Save(ctx, tm)
	}
	s.metrics.TrainingFinished(time.Since(start), err)
	if err != nil {
		s.logger.Error("Train and persist failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: training did not finish: %w", ErrModelNotReady, err)
		}
		return nil, err
	}
	s.logger.Info("Model trained successfully",
		zap.String("model_id", tm.ID),
		zap.String("algorithm", tm.Algorithm),
		zap.Float64("accuracy", tm.Accuracy),
		zap.Duration("elapsed", time.Since(start)),
	)
	return tm, nil
}

func (s *Service) activate(tm *training.TrainedModel, source string) {
	s.current.Store(tm)
	if s.cache != nil {
		s.cache.Purge()
	}
	s.metrics.ModelActivated(source, tm.Accuracy)
	s.logger.Info("Model activated",
		zap.String("model_id", tm.ID),
		zap.String("source", source),
		zap.Float64("accuracy", tm.Accuracy),
	)
}

// Predict classifies fv with the active model, making one ready first if
// needed. Values outside the documented domains are used as given.
func (s *Service) Predict(ctx context.Context, fv data.FeatureVector) (Result, error) {
	tm, err := s.EnsureReady(ctx)
	if err != nil {
		return Result{}, err
	}
	key := cacheKey{model: tm.ID, features: fv.Values()}
	if s.cache != nil {
		if r, ok := s.cache.Get(key); ok {
			s.metrics.CacheHit()
			return r, nil
		}
	}
	out, err := s.infer(tm, []data.FeatureVector{fv})
	if err != nil {
		return Result{}, err
	}
	if s.cache != nil {
		s.cache.Add(key, out[0])
	}
	return out[0], nil
}

// PredictBatch classifies every vector in one pass over the active model.
func (s *Service) PredictBatch(ctx context.Context, fvs []data.FeatureVector) ([]Result, error) {
	if len(fvs) == 0 {
		return []Result{}, nil
	}
	tm, err := s.EnsureReady(ctx)
	if err != nil {
		return nil, err
	}
	return s.infer(tm, fvs)
}

func (s *Service) infer(tm *training.TrainedModel, fvs []data.FeatureVector) ([]Result, error) {
	start := time.Now()
	X := make([][]float64, len(fvs))
	for i, fv := range fvs {
		X[i], _ = features.Vectorize(fv)
	}
	ps, err := classify(tm.Classifier, X)
	if err != nil {
		s.metrics.PredictionFailed()
		return nil, &PredictionError{ModelID: tm.ID, Err: err}
	}

	acc := tm.Accuracy
	if acc <= 0 {
		acc = DefaultAccuracy
	}
	elapsed := time.Since(start)
	out := make([]Result, len(ps))
	for i, p := range ps {
		out[i] = Result{Label: models.Label(p), Probability: p, Accuracy: acc, ModelID: tm.ID}
		s.metrics.ObservePrediction(out[i].Label, elapsed)
	}
	return out, nil
}

func classify(m models.Model, X [][]float64) (ps []float64, err error) {
	if m == nil {
		return nil, errors.New("no classifier")
	}
	if w := m.Features(); w != data.NumFeatures {
		return nil, fmt.Errorf("classifier expects %d features, got %d", w, data.NumFeatures)
	}
	defer func() {
		if r := recover(); r != nil {
			ps, err = nil, fmt.Errorf("classifier panicked: %v", r)
		}
	}()
	ps = m.PredictProba(X)
	if len(ps) != len(X) {
		return nil, fmt.Errorf("classifier returned %d probabilities for %d rows", len(ps), len(X))
	}
	for i, p := range ps {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return nil, fmt.Errorf("probability %v for row %d out of range", p, i)
		}
	}
	return ps, nil
}
