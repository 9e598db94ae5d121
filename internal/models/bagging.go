package models

import (
	"context"
)

// Bagging is a forest without per-split feature subsampling.
type Bagging struct {
	NEstimators        int
	MaxDepth           int
	MinSamples         int
	MaxThresholdsPerFe int
	Seed               int64
	NFeatures          int
	Trees              []*DecisionTree
}

func NewBagging() *Bagging {
	return &Bagging{NEstimators: 30, MaxDepth: 6, MinSamples: 2, MaxThresholdsPerFe: 32, Trees: []*DecisionTree{}}
}

func (bg *Bagging) Name() string { return "Bagging" }

func (bg *Bagging) Features() int { return bg.NFeatures }

func (bg *Bagging) Fit(ctx context.Context, X [][]float64, y []int) error {
	nFeats, err := validateXY(X, y)
	if err != nil {
		return err
	}
	if bg.NEstimators <= 0 {
		bg.NEstimators = 30
	}
	trees, err := fitBootstrapTrees(ctx, X, y, bg.NEstimators, bg.Seed, func() *DecisionTree {
		return &DecisionTree{
			MaxDepth:           bg.MaxDepth,
			MinSamplesSplit:    bg.MinSamples,
			MaxThresholdsPerFe: bg.MaxThresholdsPerFe,
		}
	})
	if err != nil {
		return err
	}
	bg.Trees = trees
	bg.NFeatures = nFeats
	return nil
}

func (bg *Bagging) Predict(X [][]float64) []int {
	return probaToLabels(bg.PredictProba(X))
}

func (bg *Bagging) PredictProba(X [][]float64) []float64 {
	return averageProba(bg.Trees, X)
}
