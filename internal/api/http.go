// Package api exposes the prediction engine over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"cardiorisk/internal/data"
	"cardiorisk/internal/features"
	"cardiorisk/internal/prediction"
	"cardiorisk/internal/store"
	"cardiorisk/internal/training"
)

const (
	maxBatch = 1000
	// Body caps, applied before decoding. A formatted item is well under 1KB.
	maxPredictBytes = 16 << 10
	maxBatchBytes   = maxBatch << 10
)

// Engine is the part of prediction.Service the handlers call.
type Engine interface {
	Predict(ctx context.Context, fv data.FeatureVector) (prediction.Result, error)
	PredictBatch(ctx context.Context, fvs []data.FeatureVector) ([]prediction.Result, error)
	Retrain(ctx context.Context) (*training.TrainedModel, error)
	Current() *training.TrainedModel
}

type Server struct {
	engine  Engine
	logger  *zap.Logger
	apiKey  string
	metrics http.Handler
	now     func() time.Time
}

type Option func(*Server)

func WithAPIKey(key string) Option { return func(s *Server) { s.apiKey = key } }

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetricsHandler mounts h at GET /metrics.
func WithMetricsHandler(h http.Handler) Option { return func(s *Server) { s.metrics = h } }

func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{engine: engine, logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics))
	}

	api := r.Group("/")
	api.Use(s.apiKeyMiddleware)
	api.POST("/predict", s.handlePredict)
	api.POST("/batch", s.handleBatch)
	api.GET("/model", s.handleModel)
	api.POST("/admin/retrain", s.handleRetrain)
	return r
}

func (s *Server) apiKeyMiddleware(c *gin.Context) {
	if s.apiKey == "" {
		c.Next()
		return
	}
	if c.GetHeader("X-API-Key") != s.apiKey {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}

// predictReq bounds each field to a clinically plausible range. Pointers let
// "required" accept legitimate zero values.
type predictReq struct {
	Age      *float64 `json:"age" binding:"required,min=1,max=120"`
	Sex      *float64 `json:"sex" binding:"required,min=0,max=1"`
	CP       *float64 `json:"cp" binding:"required,min=0,max=3"`
	Trestbps *float64 `json:"trestbps" binding:"required,min=50,max=250"`
	Chol     *float64 `json:"chol" binding:"required,min=50,max=700"`
	Fbs      *float64 `json:"fbs" binding:"required,min=0,max=1"`
	Restecg  *float64 `json:"restecg" binding:"required,min=0,max=2"`
	Thalach  *float64 `json:"thalach" binding:"required,min=40,max=250"`
	Exang    *float64 `json:"exang" binding:"required,min=0,max=1"`
	Oldpeak  *float64 `json:"oldpeak" binding:"required,min=0,max=10"`
	Slope    *float64 `json:"slope" binding:"required,min=0,max=2"`
	CA       *float64 `json:"ca" binding:"required,min=0,max=3"`
	Thal     *float64 `json:"thal" binding:"required,min=0,max=3"`
}

func (r predictReq) features() data.FeatureVector {
	return data.FeatureVector{
		Age: *r.Age, Sex: *r.Sex, CP: *r.CP, Trestbps: *r.Trestbps, Chol: *r.Chol,
		Fbs: *r.Fbs, Restecg: *r.Restecg, Thalach: *r.Thalach, Exang: *r.Exang,
		Oldpeak: *r.Oldpeak, Slope: *r.Slope, CA: *r.CA, Thal: *r.Thal,
	}
}

type predictResp struct {
	ID          string    `json:"id"`
	Result      int       `json:"result"`
	Probability float64   `json:"probability"`
	Accuracy    float64   `json:"accuracy"`
	Message     string    `json:"message"`
	RiskFactors []string  `json:"risk_factors"`
	ModelID     string    `json:"model_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *Server) response(fv data.FeatureVector, r prediction.Result) predictResp {
	return predictResp{
		ID:          uuid.NewString(),
		Result:      r.Label,
		Probability: r.Probability,
		Accuracy:    r.Accuracy,
		Message:     r.Message(),
		RiskFactors: features.RiskFactors(fv),
		ModelID:     r.ModelID,
		CreatedAt:   s.now().UTC(),
	}
}

// bindLimited decodes at most limit bytes of JSON body into obj and writes the
// error response itself.
func bindLimited(c *gin.Context, obj any, limit int64) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	return false
}

func (s *Server) handlePredict(c *gin.Context) {
	var req predictReq
	if !bindLimited(c, &req, maxPredictBytes) {
		return
	}
	fv := req.features()
	res, err := s.engine.Predict(c.Request.Context(), fv)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.response(fv, res))
}

func (s *Server) handleBatch(c *gin.Context) {
	// gin validates each element of a bound slice.
	var items []predictReq
	if !bindLimited(c, &items, maxBatchBytes) {
		return
	}
	if len(items) > maxBatch {
		c.JSON(http.StatusBadRequest, gin.H{"error": "batch too large"})
		return
	}
	fvs := make([]data.FeatureVector, len(items))
	for i := range items {
		fvs[i] = items[i].features()
	}
	results, err := s.engine.PredictBatch(c.Request.Context(), fvs)
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]predictResp, len(results))
	for i := range results {
		out[i] = s.response(fvs[i], results[i])
	}
	c.JSON(http.StatusOK, out)
}

type modelResp struct {
	ID        string    `json:"id"`
	Algorithm string    `json:"algorithm"`
	Accuracy  float64   `json:"accuracy"`
	F1        float64   `json:"f1"`
	ROCAUC    float64   `json:"roc_auc"`
	TrainSize int       `json:"train_size"`
	TestSize  int       `json:"test_size"`
	TrainedAt time.Time `json:"trained_at"`
}

func modelInfo(tm *training.TrainedModel) modelResp {
	return modelResp{
		ID:        tm.ID,
		Algorithm: tm.Algorithm,
		Accuracy:  tm.Accuracy,
		F1:        tm.Report.F1,
		ROCAUC:    tm.Report.ROCAUC,
		TrainSize: tm.TrainSize,
		TestSize:  tm.TestSize,
		TrainedAt: tm.TrainedAt,
	}
}

func (s *Server) handleModel(c *gin.Context) {
	tm := s.engine.Current()
	if tm == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "model not loaded"})
		return
	}
	c.JSON(http.StatusOK, modelInfo(tm))
}

func (s *Server) handleRetrain(c *gin.Context) {
	tm, err := s.engine.Retrain(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, modelInfo(tm))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "model_loaded": s.engine.Current() != nil})
}

func (s *Server) fail(c *gin.Context, err error) {
	var (
		perr *prediction.PredictionError
		terr *training.TrainingError
		serr *store.PersistenceError
	)
	switch {
	case errors.Is(err, prediction.ErrModelNotReady):
		s.logger.Warn("Model not ready", zap.Error(err))
		c.Header("Retry-After", "30")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "model not ready, retry later"})
	case errors.As(err, &perr):
		s.logger.Error("Prediction failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction failed"})
	case errors.As(err, &terr), errors.As(err, &serr):
		s.logger.Error("Model unavailable", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "model unavailable"})
	default:
		s.logger.Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
