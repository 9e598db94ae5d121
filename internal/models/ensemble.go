package models

import (
	"context"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// fitBootstrapTrees fits n trees on bootstrap resamples of X. Resamples and
// per-tree seeds come from a single source seeded with seed before any tree
// starts, so the result does not depend on goroutine scheduling.
func fitBootstrapTrees(ctx context.Context, X [][]float64, y []int, n int, seed int64, newTree func() *DecisionTree) ([]*DecisionTree, error) {
	rng := rand.New(rand.NewSource(seed))
	rows := len(X)
	samples := make([][]int, n)
	seeds := make([]int64, n)
	for k := 0; k < n; k++ {
		idx := make([]int, rows)
		for i := range idx {
			idx[i] = rng.Intn(rows)
		}
		samples[k] = idx
		seeds[k] = rng.Int63()
	}

	trees := make([]*DecisionTree, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for k := 0; k < n; k++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			Xb := make([][]float64, rows)
			yb := make([]int, rows)
			for i, j := range samples[k] {
				Xb[i] = X[j]
				yb[i] = y[j]
			}
			dt := newTree()
			dt.Seed = seeds[k]
			if err := dt.Fit(gctx, Xb, yb); err != nil {
				return err
			}
			trees[k] = dt
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return trees, nil
}

func averageProba(trees []*DecisionTree, X [][]float64) []float64 {
	n := len(X)
	out := make([]float64, n)
	if len(trees) == 0 {
		for i := range out {
			out[i] = 0.5
		}
		return out
	}
	for _, dt := range trees {
		p := dt.PredictProba(X)
		for i := 0; i < n; i++ {
			out[i] += p[i]
		}
	}
	m := float64(len(trees))
	for i := 0; i < n; i++ {
		out[i] /= m
	}
	return out
}
