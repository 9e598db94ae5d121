package models

import (
	"context"
	"math"
	"sort"
)

type GBStump struct {
	Feature   int
	Threshold float64
	LeftVal   float64
	RightVal  float64
}

type GradientBoosting struct {
	NEstimators        int
	LearningRate       float64
	MinSamples         int
	MaxThresholdsPerFe int
	// Init is the log-odds of the training base rate.
	Init      float64
	NFeatures int
	Trees     []GBStump
}

func NewGradientBoosting() *GradientBoosting {
	return &GradientBoosting{NEstimators: 100, LearningRate: 0.1, MinSamples: 1, MaxThresholdsPerFe: 32}
}

func (gb *GradientBoosting) Name() string { return "GradientBoosting" }

func (gb *GradientBoosting) Features() int { return gb.NFeatures }

func sigmoid(z float64) float64 { return 1.0 / (1.0 + math.Exp(-z)) }

func (gb *GradientBoosting) Fit(ctx context.Context, X [][]float64, y []int) error {
	nFeats, err := validateXY(X, y)
	if err != nil {
		return err
	}
	n := len(X)
	pos := 0
	for i := 0; i < n; i++ {
		if y[i] == 1 {
			pos++
		}
	}
	base := float64(pos) / float64(n)
	base = math.Min(math.Max(base, 1e-3), 1-1e-3)
	gb.Init = math.Log(base / (1.0 - base))
	gb.Trees = gb.Trees[:0]
	F := make([]float64, n)
	for i := 0; i < n; i++ {
		F[i] = gb.Init
	}

	cands := make([][]float64, nFeats)
	for j := 0; j < nFeats; j++ {
		cands[j] = gbCandidateThresholds(X, j, gb.MaxThresholdsPerFe)
	}

	r := make([]float64, n)
	for m := 0; m < gb.NEstimators; m++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			r[i] = float64(y[i]) - sigmoid(F[i])
		}

		best := GBStump{Feature: -1}
		bestSSE := math.MaxFloat64
		for j := 0; j < nFeats; j++ {
			for _, thr := range cands[j] {
				leftSum, leftCount := 0.0, 0.0
				rightSum, rightCount := 0.0, 0.0
				for i := 0; i < n; i++ {
					if X[i][j] <= thr {
						leftSum += r[i]
						leftCount++
					} else {
						rightSum += r[i]
						rightCount++
					}
				}
				if leftCount == 0 || rightCount == 0 {
					continue
				}
				if int(leftCount) < gb.MinSamples || int(rightCount) < gb.MinSamples {
					continue
				}
				leftAvg := leftSum / leftCount
				rightAvg := rightSum / rightCount

				// SSE = sum(r^2) - n*avg^2 per side; sum(r^2) is shared by all splits.
				sse := -(leftCount*leftAvg*leftAvg + rightCount*rightAvg*rightAvg)
				if sse < bestSSE {
					bestSSE = sse
					best = GBStump{Feature: j, Threshold: thr, LeftVal: leftAvg, RightVal: rightAvg}
				}
			}
		}
		if best.Feature == -1 {
			break
		}
		gb.Trees = append(gb.Trees, best)
		for i := 0; i < n; i++ {
			F[i] += gb.LearningRate * best.value(X[i])
		}
	}
	gb.NFeatures = nFeats
	return nil
}

func (s GBStump) value(x []float64) float64 {
	if x[s.Feature] > s.Threshold {
		return s.RightVal
	}
	return s.LeftVal
}

func (gb *GradientBoosting) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i := range X {
		f := gb.Init
		for _, t := range gb.Trees {
			f += gb.LearningRate * t.value(X[i])
		}
		out[i] = sigmoid(f)
	}
	return out
}

func (gb *GradientBoosting) Predict(X [][]float64) []int {
	return probaToLabels(gb.PredictProba(X))
}

func gbCandidateThresholds(X [][]float64, j int, nCand int) []float64 {
	if nCand <= 0 {
		nCand = 16
	}
	n := len(X)
	vals := make([]float64, n)
	for i := 0; i < n; i++ {
		vals[i] = X[i][j]
	}
	sort.Float64s(vals)
	out := make([]float64, 0, nCand)
	for k := 1; k < nCand; k++ {
		idx := int(math.Round(float64(k) / float64(nCand) * float64(n-1)))
		if idx <= 0 || idx >= n {
			continue
		}
		thr := vals[idx]
		if len(out) == 0 || thr != out[len(out)-1] {
			out = append(out, thr)
		}
	}
	if len(out) == 0 {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += vals[i]
		}
		out = append(out, sum/float64(n))
	}
	return out
}
