package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIsDeterministic(t *testing.T) {
	a := Generate(DefaultSampleCount, DefaultSeed)
	b := Generate(DefaultSampleCount, DefaultSeed)
	require.Len(t, a, DefaultSampleCount)
	assert.Equal(t, a, b)

	c := Generate(DefaultSampleCount, DefaultSeed+1)
	assert.NotEqual(t, a, c)
}

func TestGenerateEmpty(t *testing.T) {
	assert.NotNil(t, Generate(0, DefaultSeed))
	assert.Empty(t, Generate(0, DefaultSeed))
	assert.Empty(t, Generate(-5, DefaultSeed))
}

func TestGenerateLabelsFollowRiskRule(t *testing.T) {
	for i, s := range Generate(1000, 7) {
		fv := s.Features
		score := 0
		for _, hit := range []bool{fv.Age > 55, fv.CP > 1, fv.Trestbps > 140, fv.Chol > 240, fv.Exang == 1, fv.Oldpeak > 2} {
			if hit {
				score++
			}
		}
		want := 0
		if score >= 3 {
			want = 1
		}
		require.Equalf(t, want, s.Label, "sample %d: %+v", i, fv)
	}
}

func TestGenerateRespectsColumnDomains(t *testing.T) {
	type bound struct{ lo, hi float64 }
	domains := [NumFeatures]bound{
		{29, 79}, {0, 1}, {0, 3}, {90, 199}, {120, 399}, {0, 1}, {0, 2},
		{70, 219}, {0, 1}, {0, 6}, {0, 2}, {0, 3}, {0, 3},
	}
	var pos int
	samples := Generate(2000, DefaultSeed)
	for _, s := range samples {
		for j, v := range s.Features.Values() {
			assert.GreaterOrEqualf(t, v, domains[j].lo, "column %s", Columns[j])
			assert.LessOrEqualf(t, v, domains[j].hi, "column %s", Columns[j])
		}
		assert.Less(t, s.Features.Oldpeak, 6.0)
		pos += s.Label
	}
	assert.Greater(t, pos, 0)
	assert.Less(t, pos, len(samples))
}

func TestRiskScore(t *testing.T) {
	fv := FeatureVector{Age: 63, Sex: 1, CP: 3, Trestbps: 145, Chol: 233, Fbs: 1, Thalach: 150, Oldpeak: 2.3, Thal: 1}
	assert.Equal(t, 4, RiskScore(fv))
	assert.Equal(t, 1, LabelFor(fv))

	assert.Equal(t, 0, RiskScore(FeatureVector{Age: 55, CP: 1, Trestbps: 140, Chol: 240, Oldpeak: 2}))
	assert.Equal(t, 0, LabelFor(FeatureVector{Age: 56, CP: 2}))
	assert.Equal(t, 1, LabelFor(FeatureVector{Age: 56, CP: 2, Exang: 1}))
}

func TestValuesRoundTrip(t *testing.T) {
	fv := Generate(1, 3)[0].Features
	assert.Equal(t, fv, FromValues(fv.Values()))
	assert.Equal(t, fv.Age, fv.Values()[0])
	assert.Equal(t, fv.Thal, fv.Values()[12])
}

func TestCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "heart.csv")
	samples := Generate(50, DefaultSeed)
	require.NoError(t, WriteCSV(path, samples))

	got, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, samples, got)
}

func TestReadCSVMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("age,sex\n1,0\n"), 0o644))
	_, err := ReadCSV(path)
	assert.ErrorContains(t, err, "missing column")
}
