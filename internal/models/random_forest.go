package models

import (
	"context"
	"math"
)

type RandomForest struct {
	NEstimators        int
	MaxDepth           int
	MinSamples         int
	MaxThresholdsPerFe int
	MaxFeatures        int
	Seed               int64
	NFeatures          int
	Trees              []*DecisionTree
}

func NewRandomForest() *RandomForest {
	return &RandomForest{NEstimators: 100, MaxDepth: 10, MinSamples: 2, MaxThresholdsPerFe: 64, Trees: []*DecisionTree{}}
}

func (rf *RandomForest) Name() string { return "RandomForest" }

func (rf *RandomForest) Features() int { return rf.NFeatures }

func (rf *RandomForest) Fit(ctx context.Context, X [][]float64, y []int) error {
	nFeats, err := validateXY(X, y)
	if err != nil {
		return err
	}
	if rf.NEstimators <= 0 {
		rf.NEstimators = 100
	}
	maxFeats := rf.MaxFeatures
	if maxFeats <= 0 {
		maxFeats = int(math.Max(1, math.Min(float64(nFeats), math.Sqrt(float64(nFeats)))))
	}
	trees, err := fitBootstrapTrees(ctx, X, y, rf.NEstimators, rf.Seed, func() *DecisionTree {
		return &DecisionTree{
			MaxDepth:           rf.MaxDepth,
			MinSamplesSplit:    rf.MinSamples,
			MaxThresholdsPerFe: rf.MaxThresholdsPerFe,
			MaxFeatures:        maxFeats,
		}
	})
	if err != nil {
		return err
	}
	rf.Trees = trees
	rf.NFeatures = nFeats
	return nil
}

func (rf *RandomForest) Predict(X [][]float64) []int {
	return probaToLabels(rf.PredictProba(X))
}

func (rf *RandomForest) PredictProba(X [][]float64) []float64 {
	return averageProba(rf.Trees, X)
}
