// Package evaluation holds holdout splitting and binary classification metrics.
package evaluation

import (
	"math"
	"math/rand"
	"sort"
)

// Report summarises a classifier on a labelled split. Accuracy is a
// percentage, the remaining scores are in [0,1].
type Report struct {
	Accuracy  float64
	Precision float64
	Recall    float64
	F1        float64
	ROCAUC    float64
	PRAUC     float64
	TP, FP    int
	TN, FN    int
	Support   int
}

// TrainTestSplit shuffles row indices with seed and returns train and test
// index sets. The test set holds ceil(testFrac*n) rows, clamped so both
// sides are non-empty when n >= 2.
func TrainTestSplit(n int, testFrac float64, seed int64) (train, test []int) {
	if n <= 0 {
		return []int{}, []int{}
	}
	nTest := int(math.Ceil(testFrac * float64(n)))
	if nTest < 1 {
		nTest = 1
	}
	if nTest > n-1 {
		nTest = n - 1
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return perm[nTest:], perm[:nTest]
}

func Evaluate(y []int, ps []float64, thr float64) Report {
	tp, fp, tn, fn := Confusion(y, ps, thr)
	prec, rec, f1 := PRF1(y, ps, thr)
	r := Report{
		Precision: prec,
		Recall:    rec,
		F1:        f1,
		ROCAUC:    ROCAUC(y, ps),
		PRAUC:     PRAUC(y, ps),
		TP:        tp, FP: fp, TN: tn, FN: fn,
		Support: len(y),
	}
	if len(y) > 0 {
		r.Accuracy = float64(tp+tn) / float64(len(y)) * 100
	}
	return r
}

// Accuracy is the fraction of matching labels, 0 for empty input.
func Accuracy(y, p []int) float64 {
	if len(y) == 0 {
		return 0
	}
	c := 0
	for i := range y {
		if y[i] == p[i] {
			c++
		}
	}
	return float64(c) / float64(len(y))
}

// Confusion counts outcomes where a probability strictly above thr is positive.
func Confusion(y []int, ps []float64, thr float64) (tp, fp, tn, fn int) {
	for i := range y {
		pred := ps[i] > thr
		switch {
		case pred && y[i] == 1:
			tp++
		case pred:
			fp++
		case y[i] == 0:
			tn++
		default:
			fn++
		}
	}
	return
}

func PRF1(y []int, ps []float64, thr float64) (precision, recall, f1 float64) {
	tp, fp, _, fn := Confusion(y, ps, thr)
	if tp+fp > 0 {
		precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		recall = float64(tp) / float64(tp+fn)
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return
}

type scored struct {
	s float64
	y int
}

func sortedByScore(y []int, ps []float64) []scored {
	pairs := make([]scored, len(y))
	for i := range y {
		pairs[i] = scored{ps[i], y[i]}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].s > pairs[j].s })
	return pairs
}

// ROCAUC is the trapezoidal area under the ROC curve, 0 when a class is missing.
func ROCAUC(y []int, ps []float64) float64 {
	pairs := sortedByScore(y, ps)
	var pos, neg int
	for _, p := range pairs {
		if p.y == 1 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return 0
	}
	tp, fp := 0, 0
	prevS := math.Inf(1)
	var auc float64
	prevTPR, prevFPR := 0.0, 0.0
	for _, p := range pairs {
		if p.s != prevS {
			tpr := float64(tp) / float64(pos)
			fpr := float64(fp) / float64(neg)
			auc += (fpr - prevFPR) * (tpr + prevTPR) / 2.0
			prevTPR, prevFPR = tpr, fpr
			prevS = p.s
		}
		if p.y == 1 {
			tp++
		} else {
			fp++
		}
	}
	tpr := float64(tp) / float64(pos)
	fpr := float64(fp) / float64(neg)
	auc += (fpr - prevFPR) * (tpr + prevTPR) / 2.0
	return auc
}

func PRAUC(y []int, ps []float64) float64 {
	pairs := sortedByScore(y, ps)
	var tp, fp, fn int
	for _, p := range pairs {
		if p.y == 1 {
			fn++
		}
	}
	var prevRec, auc float64
	for _, p := range pairs {
		if p.y == 1 {
			tp++
			fn--
		} else {
			fp++
		}
		var prec, rec float64
		if tp+fp > 0 {
			prec = float64(tp) / float64(tp+fp)
		}
		if tp+fn > 0 {
			rec = float64(tp) / float64(tp+fn)
		}
		auc += (rec - prevRec) * prec
		prevRec = rec
	}
	return auc
}
