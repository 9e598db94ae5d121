package evaluation

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainTestSplit(t *testing.T) {
	train, test := TrainTestSplit(300, 0.2, 42)
	assert.Len(t, train, 240)
	assert.Len(t, test, 60)

	all := append(append([]int{}, train...), test...)
	sort.Ints(all)
	for i := range all {
		require.Equal(t, i, all[i])
	}

	train2, test2 := TrainTestSplit(300, 0.2, 42)
	assert.Equal(t, train, train2)
	assert.Equal(t, test, test2)

	_, test3 := TrainTestSplit(300, 0.2, 43)
	assert.NotEqual(t, test, test3)
}

func TestTrainTestSplitSmall(t *testing.T) {
	train, test := TrainTestSplit(2, 0.2, 1)
	assert.Len(t, train, 1)
	assert.Len(t, test, 1)

	train, test = TrainTestSplit(7, 0.2, 1)
	assert.Len(t, train, 5)
	assert.Len(t, test, 2)

	train, test = TrainTestSplit(0, 0.2, 1)
	assert.Empty(t, train)
	assert.Empty(t, test)
}

func TestEvaluate(t *testing.T) {
	y := []int{1, 1, 0, 0, 1}
	ps := []float64{0.9, 0.4, 0.2, 0.7, 0.8}
	r := Evaluate(y, ps, 0.5)
	assert.Equal(t, 2, r.TP)
	assert.Equal(t, 1, r.FP)
	assert.Equal(t, 1, r.TN)
	assert.Equal(t, 1, r.FN)
	assert.Equal(t, 5, r.Support)
	assert.InDelta(t, 60.0, r.Accuracy, 1e-9)
	assert.InDelta(t, 2.0/3.0, r.Precision, 1e-9)
	assert.InDelta(t, 2.0/3.0, r.Recall, 1e-9)
	assert.InDelta(t, 2.0/3.0, r.F1, 1e-9)
}

func TestThresholdTieIsNegative(t *testing.T) {
	tp, fp, tn, fn := Confusion([]int{1, 0}, []float64{0.5, 0.5}, 0.5)
	assert.Equal(t, [4]int{0, 0, 1, 1}, [4]int{tp, fp, tn, fn})
}

func TestAUC(t *testing.T) {
	y := []int{0, 0, 1, 1}
	assert.InDelta(t, 1.0, ROCAUC(y, []float64{0.1, 0.2, 0.8, 0.9}), 1e-9)
	assert.InDelta(t, 0.0, ROCAUC(y, []float64{0.9, 0.8, 0.2, 0.1}), 1e-9)
	assert.InDelta(t, 0.5, ROCAUC(y, []float64{0.5, 0.5, 0.5, 0.5}), 1e-9)
	assert.Equal(t, 0.0, ROCAUC([]int{1, 1}, []float64{0.3, 0.6}))
	assert.InDelta(t, 1.0, PRAUC(y, []float64{0.1, 0.2, 0.8, 0.9}), 1e-9)
}

func TestAccuracy(t *testing.T) {
	assert.Equal(t, 0.0, Accuracy(nil, nil))
	assert.Equal(t, 0.75, Accuracy([]int{1, 0, 1, 1}, []int{1, 0, 0, 1}))
}
