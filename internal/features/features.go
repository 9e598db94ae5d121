package features

import (
	"fmt"

	"cardiorisk/internal/data"
)

// Vectorize flattens fv into classifier input order and returns the
// matching column names.
func Vectorize(fv data.FeatureVector) ([]float64, []string) {
	v := fv.Values()
	return v[:], Names()
}

func Names() []string {
	names := make([]string, data.NumFeatures)
	copy(names, data.Columns[:])
	return names
}

// FromSlice is the inverse of Vectorize. It rejects vectors of any width
// other than data.NumFeatures.
func FromSlice(v []float64) (data.FeatureVector, error) {
	if len(v) != data.NumFeatures {
		return data.FeatureVector{}, fmt.Errorf("feature vector has %d values, want %d", len(v), data.NumFeatures)
	}
	var arr [data.NumFeatures]float64
	copy(arr[:], v)
	return data.FromValues(arr), nil
}

// Matrix splits labelled samples into a design matrix and label vector.
func Matrix(samples []data.LabeledSample) ([][]float64, []int) {
	X := make([][]float64, len(samples))
	y := make([]int, len(samples))
	for i, s := range samples {
		X[i], _ = Vectorize(s.Features)
		y[i] = s.Label
	}
	return X, y
}

// RiskFactors names the labelling predicates that hold for fv, in column order.
func RiskFactors(fv data.FeatureVector) []string {
	hits := []bool{fv.Age > 55, fv.CP > 1, fv.Trestbps > 140, fv.Chol > 240, fv.Exang == 1, fv.Oldpeak > 2}
	names := []string{"age", "cp", "trestbps", "chol", "exang", "oldpeak"}
	out := []string{}
	for i, hit := range hits {
		if hit {
			out = append(out, names[i])
		}
	}
	return out
}
