package models

import (
	"context"
	"math"
	"math/rand"
	"sort"
)

type DTNode struct {
	Feature   int
	Threshold float64
	Left      *DTNode
	Right     *DTNode
	IsLeaf    bool
	ProbaLeaf float64
}

type DecisionTree struct {
	MaxDepth           int
	MinSamplesSplit    int
	MaxThresholdsPerFe int
	MaxFeatures        int
	Seed               int64
	NFeatures          int
	Root               *DTNode

	rng *rand.Rand
}

func NewDecisionTree() *DecisionTree {
	return &DecisionTree{MaxDepth: 10, MinSamplesSplit: 2, MaxThresholdsPerFe: 64}
}

func (dt *DecisionTree) Name() string { return "DecisionTree" }

func (dt *DecisionTree) Features() int { return dt.NFeatures }

func (dt *DecisionTree) Fit(ctx context.Context, X [][]float64, y []int) error {
	w, err := validateXY(X, y)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	dt.NFeatures = w
	dt.rng = rand.New(rand.NewSource(dt.Seed))
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	dt.Root = dt.build(X, y, idx, 0)
	return nil
}

func (dt *DecisionTree) Predict(X [][]float64) []int {
	return probaToLabels(dt.PredictProba(X))
}

func (dt *DecisionTree) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i := range X {
		out[i] = dt.predictProbaOne(X[i])
	}
	return out
}

func (dt *DecisionTree) predictProbaOne(x []float64) float64 {
	n := dt.Root
	if n == nil {
		return 0.5
	}
	for !n.IsLeaf {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
		if n == nil {
			return 0.5
		}
	}
	return n.ProbaLeaf
}

func (dt *DecisionTree) build(X [][]float64, y []int, idx []int, depth int) *DTNode {
	node := &DTNode{}
	p := classProba(y, idx)
	if len(idx) < dt.MinSamplesSplit || depth >= dt.MaxDepth || p == 0 || p == 1 {
		node.IsLeaf = true
		node.ProbaLeaf = p
		return node
	}

	bestFeature := -1
	bestThr := 0.0
	bestImp := math.MaxFloat64
	var leftIdxBest, rightIdxBest []int

	for _, f := range dt.pickFeatures(len(X[0])) {
		for _, thr := range candidateThresholds(X, idx, f, dt.MaxThresholdsPerFe) {
			lIdx, rIdx := splitIdx(X, idx, f, thr)
			if len(lIdx) == 0 || len(rIdx) == 0 {
				continue
			}
			imp := giniImpurity(y, lIdx, rIdx)
			if imp < bestImp {
				bestImp = imp
				bestFeature = f
				bestThr = thr
				leftIdxBest = lIdx
				rightIdxBest = rIdx
			}
		}
	}

	if bestFeature == -1 {
		node.IsLeaf = true
		node.ProbaLeaf = p
		return node
	}
	node.Feature = bestFeature
	node.Threshold = bestThr
	node.Left = dt.build(X, y, leftIdxBest, depth+1)
	node.Right = dt.build(X, y, rightIdxBest, depth+1)
	return node
}

func classProba(y []int, idx []int) float64 {
	if len(idx) == 0 {
		return 0.5
	}
	sum := 0
	for _, i := range idx {
		sum += y[i]
	}
	return float64(sum) / float64(len(idx))
}

func splitIdx(X [][]float64, idx []int, f int, thr float64) ([]int, []int) {
	l := make([]int, 0, len(idx))
	r := make([]int, 0, len(idx))
	for _, i := range idx {
		if X[i][f] <= thr {
			l = append(l, i)
		} else {
			r = append(r, i)
		}
	}
	return l, r
}

func giniImpurity(y []int, lIdx, rIdx []int) float64 {
	g := func(ids []int) float64 {
		if len(ids) == 0 {
			return 0
		}
		p := 0.0
		for _, i := range ids {
			p += float64(y[i])
		}
		p = p / float64(len(ids))
		return p * (1 - p)
	}
	wl := float64(len(lIdx))
	wr := float64(len(rIdx))
	n := wl + wr
	return (wl/n)*g(lIdx) + (wr/n)*g(rIdx)
}

// candidateThresholds returns midpoints between consecutive distinct values
// of feature f, thinned to at most maxC evenly spaced cuts.
func candidateThresholds(X [][]float64, idx []int, f int, maxC int) []float64 {
	values := make([]float64, len(idx))
	for j, i := range idx {
		values[j] = X[i][f]
	}
	sort.Float64s(values)
	mids := make([]float64, 0, len(values))
	for i := 1; i < len(values); i++ {
		if values[i] != values[i-1] {
			mids = append(mids, (values[i]+values[i-1])/2)
		}
	}
	if maxC <= 0 || len(mids) <= maxC {
		return mids
	}
	if maxC == 1 {
		return []float64{mids[len(mids)/2]}
	}
	out := make([]float64, 0, maxC)
	for k := 0; k < maxC; k++ {
		j := int(math.Round(float64(k) * float64(len(mids)-1) / float64(maxC-1)))
		if len(out) == 0 || mids[j] != out[len(out)-1] {
			out = append(out, mids[j])
		}
	}
	return out
}

func (dt *DecisionTree) pickFeatures(nFeats int) []int {
	idx := make([]int, nFeats)
	for i := 0; i < nFeats; i++ {
		idx[i] = i
	}
	if dt.MaxFeatures <= 0 || dt.MaxFeatures >= nFeats {
		return idx
	}
	dt.rng.Shuffle(nFeats, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	out := make([]int, dt.MaxFeatures)
	copy(out, idx[:dt.MaxFeatures])
	return out
}
