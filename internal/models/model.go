package models

import (
	"context"
	"encoding/gob"
	"fmt"
	"strings"
)

type Model interface {
	Fit(ctx context.Context, X [][]float64, y []int) error
	Predict(X [][]float64) []int
	PredictProba(X [][]float64) []float64
	Name() string
	// Features is the input width seen during Fit, 0 before training.
	Features() int
}

const (
	AlgoRandomForest     = "rf"
	AlgoBagging          = "bagging"
	AlgoGradientBoosting = "gb"
	AlgoDecisionTree     = "dt"
)

// Params carries hyperparameters for every algorithm; each model reads the
// fields it understands. Zero values fall back to the model defaults.
type Params struct {
	NEstimators        int
	MaxDepth           int
	MinSamplesSplit    int
	// MinSamplesLeaf is the smallest side a boosting stump may leave.
	MinSamplesLeaf     int
	MaxThresholdsPerFe int
	MaxFeatures        int
	LearningRate       float64
	Seed               int64
}

func init() {
	gob.Register(&RandomForest{})
	gob.Register(&Bagging{})
	gob.Register(&GradientBoosting{})
	gob.Register(&DecisionTree{})
}

// New builds an untrained model for algo. An empty algo selects the random forest.
func New(algo string, p Params) (Model, error) {
	switch strings.ToLower(algo) {
	case "", AlgoRandomForest:
		rf := NewRandomForest()
		setInt(&rf.NEstimators, p.NEstimators)
		setInt(&rf.MaxDepth, p.MaxDepth)
		setInt(&rf.MinSamples, p.MinSamplesSplit)
		setInt(&rf.MaxThresholdsPerFe, p.MaxThresholdsPerFe)
		setInt(&rf.MaxFeatures, p.MaxFeatures)
		rf.Seed = p.Seed
		return rf, nil
	case AlgoBagging:
		bg := NewBagging()
		setInt(&bg.NEstimators, p.NEstimators)
		setInt(&bg.MaxDepth, p.MaxDepth)
		setInt(&bg.MinSamples, p.MinSamplesSplit)
		setInt(&bg.MaxThresholdsPerFe, p.MaxThresholdsPerFe)
		bg.Seed = p.Seed
		return bg, nil
	case AlgoGradientBoosting:
		gb := NewGradientBoosting()
		setInt(&gb.NEstimators, p.NEstimators)
		setInt(&gb.MinSamples, p.MinSamplesLeaf)
		setInt(&gb.MaxThresholdsPerFe, p.MaxThresholdsPerFe)
		if p.LearningRate > 0 {
			gb.LearningRate = p.LearningRate
		}
		return gb, nil
	case AlgoDecisionTree:
		dt := NewDecisionTree()
		setInt(&dt.MaxDepth, p.MaxDepth)
		setInt(&dt.MinSamplesSplit, p.MinSamplesSplit)
		setInt(&dt.MaxThresholdsPerFe, p.MaxThresholdsPerFe)
		setInt(&dt.MaxFeatures, p.MaxFeatures)
		dt.Seed = p.Seed
		return dt, nil
	default:
		return nil, fmt.Errorf("unknown algorithm %q", algo)
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

// Label turns a class-1 probability into a label; ties go to class 0.
func Label(p float64) int {
	if p > 0.5 {
		return 1
	}
	return 0
}

func probaToLabels(ps []float64) []int {
	out := make([]int, len(ps))
	for i := range ps {
		out[i] = Label(ps[i])
	}
	return out
}

func validateXY(X [][]float64, y []int) (int, error) {
	if len(X) == 0 {
		return 0, fmt.Errorf("empty training set")
	}
	if len(X) != len(y) {
		return 0, fmt.Errorf("features and labels size mismatch: %d != %d", len(X), len(y))
	}
	w := len(X[0])
	if w == 0 {
		return 0, fmt.Errorf("zero-width feature rows")
	}
	for i := range X {
		if len(X[i]) != w {
			return 0, fmt.Errorf("row %d has %d features, want %d", i, len(X[i]), w)
		}
	}
	for i, v := range y {
		if v != 0 && v != 1 {
			return 0, fmt.Errorf("label %d at row %d is not binary", v, i)
		}
	}
	return w, nil
}
