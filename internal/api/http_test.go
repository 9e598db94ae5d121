package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardiorisk/internal/data"
	"cardiorisk/internal/evaluation"
	"cardiorisk/internal/prediction"
	"cardiorisk/internal/store"
	"cardiorisk/internal/training"
	"cardiorisk/pkg/metrics"
)

type fakeEngine struct {
	result  prediction.Result
	err     error
	model   *training.TrainedModel
	seen    []data.FeatureVector
	retrain int
}

func (f *fakeEngine) Predict(_ context.Context, fv data.FeatureVector) (prediction.Result, error) {
	f.seen = append(f.seen, fv)
	return f.result, f.err
}

func (f *fakeEngine) PredictBatch(_ context.Context, fvs []data.FeatureVector) ([]prediction.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.seen = append(f.seen, fvs...)
	out := make([]prediction.Result, len(fvs))
	for i := range out {
		out[i] = f.result
	}
	return out, nil
}

func (f *fakeEngine) Retrain(context.Context) (*training.TrainedModel, error) {
	f.retrain++
	if f.err != nil {
		return nil, f.err
	}
	return f.model, nil
}

func (f *fakeEngine) Current() *training.TrainedModel { return f.model }

const validBody = `{"age":63,"sex":1,"cp":3,"trestbps":145,"chol":233,"fbs":1,"restecg":0,
"thalach":150,"exang":0,"oldpeak":2.3,"slope":0,"ca":0,"thal":1}`

func init() { gin.SetMode(gin.TestMode) }

func do(t *testing.T, h http.Handler, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestPredictReturnsResult(t *testing.T) {
	eng := &fakeEngine{result: prediction.Result{Label: 1, Probability: 0.8, Accuracy: 91.5, ModelID: "m1"}}
	srv := NewServer(eng)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	srv.now = func() time.Time { return fixed }

	w := do(t, srv.Router(), http.MethodPost, "/predict", validBody, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp predictResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Result)
	assert.InDelta(t, 0.8, resp.Probability, 1e-12)
	assert.InDelta(t, 91.5, resp.Accuracy, 1e-12)
	assert.Equal(t, "m1", resp.ModelID)
	assert.Equal(t, "You may have heart disease. Please consult a doctor.", resp.Message)
	assert.Equal(t, []string{"age", "cp", "trestbps", "oldpeak"}, resp.RiskFactors)
	assert.NotEmpty(t, resp.ID)
	assert.True(t, fixed.Equal(resp.CreatedAt))

	require.Len(t, eng.seen, 1)
	assert.Equal(t, data.FeatureVector{
		Age: 63, Sex: 1, CP: 3, Trestbps: 145, Chol: 233, Fbs: 1, Restecg: 0,
		Thalach: 150, Exang: 0, Oldpeak: 2.3, Slope: 0, CA: 0, Thal: 1,
	}, eng.seen[0])
}

func TestPredictRejectsInvalidBodies(t *testing.T) {
	eng := &fakeEngine{}
	r := NewServer(eng).Router()

	cases := map[string]string{
		"malformed":     `{"age":`,
		"missing field": strings.Replace(validBody, `"thal":1`, `"x":1`, 1),
		"out of range":  strings.Replace(validBody, `"cp":3`, `"cp":7`, 1),
		"negative":      strings.Replace(validBody, `"oldpeak":2.3`, `"oldpeak":-1`, 1),
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/predict", body, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	assert.Empty(t, eng.seen)
}

func TestPredictAcceptsZeroValues(t *testing.T) {
	eng := &fakeEngine{}
	body := `{"age":40,"sex":0,"cp":0,"trestbps":120,"chol":180,"fbs":0,"restecg":0,
"thalach":160,"exang":0,"oldpeak":0,"slope":0,"ca":0,"thal":0}`
	w := do(t, NewServer(eng).Router(), http.MethodPost, "/predict", body, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp predictResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "You are healthy", resp.Message)
	assert.Empty(t, resp.RiskFactors)
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"not ready", fmt.Errorf("%w: %w", prediction.ErrModelNotReady, context.DeadlineExceeded), http.StatusServiceUnavailable},
		{"prediction", &prediction.PredictionError{ModelID: "m", Err: errors.New("nan")}, http.StatusInternalServerError},
		{"training", &training.TrainingError{Reason: "one class"}, http.StatusInternalServerError},
		{"persistence", &store.PersistenceError{Op: "load", Path: "x", Err: errors.New("bad magic")}, http.StatusInternalServerError},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewServer(&fakeEngine{err: tc.err}).Router()
			w := do(t, r, http.MethodPost, "/predict", validBody, nil)
			assert.Equal(t, tc.code, w.Code)
			if tc.code == http.StatusServiceUnavailable {
				assert.NotEmpty(t, w.Header().Get("Retry-After"))
			}
			assert.NotContains(t, w.Body.String(), "bad magic")
		})
	}
}

func TestBatch(t *testing.T) {
	eng := &fakeEngine{result: prediction.Result{Label: 0, Probability: 0.1, Accuracy: 85, ModelID: "m"}}
	r := NewServer(eng).Router()

	w := do(t, r, http.MethodPost, "/batch", "["+validBody+","+validBody+"]", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp []predictResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.NotEqual(t, resp[0].ID, resp[1].ID)

	w = do(t, r, http.MethodPost, "/batch", `[{"age":50}]`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var big bytes.Buffer
	big.WriteString("[")
	for i := 0; i <= maxBatch; i++ {
		if i > 0 {
			big.WriteString(",")
		}
		big.WriteString(validBody)
	}
	big.WriteString("]")
	w = do(t, r, http.MethodPost, "/batch", big.String(), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, eng.seen, 2)
}

func TestAPIKey(t *testing.T) {
	eng := &fakeEngine{}
	r := NewServer(eng, WithAPIKey("secret")).Router()

	w := do(t, r, http.MethodPost, "/predict", validBody, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodPost, "/predict", validBody, map[string]string{"X-API-Key": "secret"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestModelAndRetrain(t *testing.T) {
	eng := &fakeEngine{}
	r := NewServer(eng).Router()

	w := do(t, r, http.MethodGet, "/model", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	eng.model = &training.TrainedModel{
		ID: "abc", Algorithm: "rf", Accuracy: 90,
		Report:    evaluation.Report{F1: 0.9, ROCAUC: 0.95},
		TrainSize: 240, TestSize: 60,
	}
	w = do(t, r, http.MethodGet, "/model", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info modelResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "abc", info.ID)
	assert.Equal(t, 240, info.TrainSize)

	w = do(t, r, http.MethodPost, "/admin/retrain", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, eng.retrain)

	w = do(t, r, http.MethodGet, "/healthz", "", nil)
	assert.JSONEq(t, `{"status":"ok","model_loaded":true}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.NewManager()
	m.CacheHit()
	r := NewServer(&fakeEngine{}, WithMetricsHandler(m.Handler())).Router()

	w := do(t, r, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cardiorisk_engine_")
}

func TestOversizedBodiesAreRejectedBeforeDecoding(t *testing.T) {
	eng := &fakeEngine{}
	r := NewServer(eng).Router()

	// Whitespace-padded but otherwise valid JSON: only the size cap can reject it.
	padded := "[" + strings.Repeat(" ", maxBatchBytes) + "]"
	w := do(t, r, http.MethodPost, "/batch", padded, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = do(t, r, http.MethodPost, "/predict", strings.Repeat(" ", maxPredictBytes)+validBody, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = do(t, r, http.MethodPost, "/batch", "[]", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, eng.seen)
}
