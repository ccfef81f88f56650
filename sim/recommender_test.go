package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantizeHalf(t *testing.T) {
	cases := map[float64]float64{
		6.0:  6.0,
		6.2:  6.5,
		6.26: 6.5,
		6.74: 7.0,
		6.76: 7.0,
	}
	for in, want := range cases {
		assert.InDelta(t, want, quantizeHalf(in), 1e-9, "quantizeHalf(%v)", in)
	}
}

func TestAdditiveRecommender(t *testing.T) {
	r := &AdditiveRecommender{Addend: 2}
	window := []Observation{{CPU: 1}, {CPU: 4}, {CPU: 2}}
	assert.Equal(t, 6.0, r.Recommend(window)) // max(4) + 2
}

func TestMultiplicativeRecommender(t *testing.T) {
	r := &MultiplicativeRecommender{Multiplier: 1.5, SmoothingWindow: 1}
	window := []Observation{{CPU: 4}, {CPU: 2}}
	assert.Equal(t, 6.0, r.Recommend(window)) // smoothing_window=1: no smoothing, max(4)*1.5
}

func TestRollingMeanMinPeriodsOne(t *testing.T) {
	window := []Observation{{CPU: 10}, {CPU: 20}, {CPU: 30}}
	got := rollingMean(window, 2)
	assert.InDeltaSlice(t, []float64{10, 15, 25}, got, 1e-9)
}

func TestNewRecommenderUnknownAlgorithm(t *testing.T) {
	_, err := NewRecommender("bogus", AlgoSpecificConfig{}, 60)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestNewRecommenderUsesConfigDefaults(t *testing.T) {
	r, err := NewRecommender("additive", AlgoSpecificConfig{}, 60)
	require.NoError(t, err)
	additive, ok := r.(*AdditiveRecommender)
	require.True(t, ok)
	assert.Equal(t, DefaultAddend, additive.Addend)
}

func TestNewRecommenderMultiplicativeSmoothingDefaultsToGeneralWindow(t *testing.T) {
	r, err := NewRecommender("multiplicative", AlgoSpecificConfig{}, 60)
	require.NoError(t, err)
	mult, ok := r.(*MultiplicativeRecommender)
	require.True(t, ok)
	assert.Equal(t, 60, mult.SmoothingWindow)
}
