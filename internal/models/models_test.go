package models

import (
	"bytes"
	"context"
	"encoding/gob"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// separable returns a 2-feature set where label = x0 > 5.
func separable() ([][]float64, []int) {
	var X [][]float64
	var y []int
	for i := 0; i < 40; i++ {
		x0 := float64(i % 11)
		X = append(X, []float64{x0, float64(i % 3)})
		if x0 > 5 {
			y = append(y, 1)
		} else {
			y = append(y, 0)
		}
	}
	return X, y
}

func allAlgorithms(t *testing.T) []Model {
	t.Helper()
	var out []Model
	for _, algo := range []string{AlgoRandomForest, AlgoBagging, AlgoGradientBoosting, AlgoDecisionTree} {
		m, err := New(algo, Params{NEstimators: 20, Seed: 42})
		require.NoError(t, err)
		out = append(out, m)
	}
	return out
}

func TestModelsLearnSeparableRule(t *testing.T) {
	X, y := separable()
	for _, m := range allAlgorithms(t) {
		t.Run(m.Name(), func(t *testing.T) {
			require.Equal(t, 0, m.Features())
			require.NoError(t, m.Fit(context.Background(), X, y))
			assert.Equal(t, 2, m.Features())

			pred := m.Predict([][]float64{{1, 0}, {9, 2}})
			assert.Equal(t, []int{0, 1}, pred)
			for _, p := range m.PredictProba(X) {
				assert.GreaterOrEqual(t, p, 0.0)
				assert.LessOrEqual(t, p, 1.0)
			}
		})
	}
}

func TestModelsRejectBadInput(t *testing.T) {
	for _, m := range allAlgorithms(t) {
		ctx := context.Background()
		assert.Error(t, m.Fit(ctx, nil, nil), m.Name())
		assert.Error(t, m.Fit(ctx, [][]float64{{1}, {2}}, []int{1}), m.Name())
		assert.Error(t, m.Fit(ctx, [][]float64{{1}, {2, 3}}, []int{0, 1}), m.Name())
		assert.Error(t, m.Fit(ctx, [][]float64{{1}, {2}}, []int{0, 2}), m.Name())
	}
}

func TestNewUnknownAlgorithm(t *testing.T) {
	_, err := New("svm", Params{})
	assert.Error(t, err)

	m, err := New("", Params{})
	require.NoError(t, err)
	rf, ok := m.(*RandomForest)
	require.True(t, ok)
	assert.Equal(t, 100, rf.NEstimators)
	assert.Equal(t, 10, rf.MaxDepth)
}

func TestRandomForestIsDeterministic(t *testing.T) {
	X, y := separable()
	fit := func() *RandomForest {
		rf := NewRandomForest()
		rf.NEstimators = 25
		rf.Seed = 7
		require.NoError(t, rf.Fit(context.Background(), X, y))
		return rf
	}
	a, b := fit(), fit()
	assert.Equal(t, a.PredictProba(X), b.PredictProba(X))
	assert.Len(t, a.Trees, 25)
}

func TestRandomForestHonoursCancellation(t *testing.T) {
	X, y := separable()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rf := NewRandomForest()
	assert.ErrorIs(t, rf.Fit(ctx, X, y), context.Canceled)
	assert.Empty(t, rf.Trees)
}

func TestUntrainedModelsAreNeutral(t *testing.T) {
	X := [][]float64{{1, 2}}
	assert.Equal(t, []float64{0.5}, NewRandomForest().PredictProba(X))
	assert.Equal(t, []float64{0.5}, NewDecisionTree().PredictProba(X))
	assert.Equal(t, []int{0}, NewBagging().Predict(X))
}

func TestGobRoundTripThroughInterface(t *testing.T) {
	X, y := separable()
	for _, m := range allAlgorithms(t) {
		require.NoError(t, m.Fit(context.Background(), X, y))

		type wrapper struct{ M Model }
		var buf bytes.Buffer
		require.NoError(t, gob.NewEncoder(&buf).Encode(wrapper{M: m}), m.Name())
		var back wrapper
		require.NoError(t, gob.NewDecoder(&buf).Decode(&back), m.Name())

		assert.Equal(t, m.Name(), back.M.Name())
		assert.Equal(t, m.Features(), back.M.Features())
		assert.Equal(t, m.PredictProba(X), back.M.PredictProba(X), m.Name())
	}
}

func TestCandidateThresholds(t *testing.T) {
	X := [][]float64{{1}, {1}, {2}, {4}}
	assert.Equal(t, []float64{1.5, 3}, candidateThresholds(X, []int{0, 1, 2, 3}, 0, 0))
	assert.Len(t, candidateThresholds(X, []int{0, 1, 2, 3}, 0, 1), 1)
	assert.Empty(t, candidateThresholds(X, []int{0, 1}, 0, 8))
}
