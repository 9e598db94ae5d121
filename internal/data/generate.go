package data

import (
	"math/rand"
)

const (
	DefaultSampleCount = 300
	DefaultSeed        = 42

	// RiskThreshold is the minimum risk score labelled as disease.
	RiskThreshold = 3
)

// Generate draws n samples from a fixed per-column distribution and labels
// them with the risk-score rule. The same seed always yields the same samples.
func Generate(n int, seed int64) []LabeledSample {
	if n <= 0 {
		return []LabeledSample{}
	}
	rng := rand.New(rand.NewSource(seed))
	intIn := func(lo, hi int) float64 { return float64(lo + rng.Intn(hi-lo)) }

	out := make([]LabeledSample, n)
	for i := 0; i < n; i++ {
		fv := FeatureVector{
			Age:      intIn(29, 80),
			Sex:      intIn(0, 2),
			CP:       intIn(0, 4),
			Trestbps: intIn(90, 200),
			Chol:     intIn(120, 400),
			Fbs:      intIn(0, 2),
			Restecg:  intIn(0, 3),
			Thalach:  intIn(70, 220),
			Exang:    intIn(0, 2),
			Oldpeak:  rng.Float64() * 6,
			Slope:    intIn(0, 3),
			CA:       intIn(0, 4),
			Thal:     intIn(0, 4),
		}
		out[i] = LabeledSample{Features: fv, Label: LabelFor(fv)}
	}
	return out
}

// RiskScore counts how many of the six risk predicates hold.
func RiskScore(fv FeatureVector) int {
	score := 0
	if fv.Age > 55 {
		score++
	}
	if fv.CP > 1 {
		score++
	}
	if fv.Trestbps > 140 {
		score++
	}
	if fv.Chol > 240 {
		score++
	}
	if fv.Exang == 1 {
		score++
	}
	if fv.Oldpeak > 2 {
		score++
	}
	return score
}

func LabelFor(fv FeatureVector) int {
	if RiskScore(fv) >= RiskThreshold {
		return 1
	}
	return 0
}
