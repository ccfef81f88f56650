package tuning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasim-go/vasim/sim"
)

func TestExpandGridIsCartesianProduct(t *testing.T) {
	spec := SweepSpec{
		Base: sim.NewConfig(),
		Mode: Grid,
		Params: []ParamSpec{
			{Key: "algo.addend", Values: []float64{1, 2}},
			{Key: "general.window", Values: []float64{10, 20, 30}},
		},
	}

	configs, err := Expand(spec)
	require.NoError(t, err)
	assert.Len(t, configs, 6)

	seen := map[[2]float64]bool{}
	for _, cfg := range configs {
		seen[[2]float64{cfg.AlgoSpecific["addend"], float64(cfg.General.Window)}] = true
	}
	assert.Len(t, seen, 6, "every combination must be distinct")
	assert.True(t, seen[[2]float64{1, 10}])
	assert.True(t, seen[[2]float64{2, 30}])
}

func TestExpandGridRejectsEmptyValues(t *testing.T) {
	spec := SweepSpec{
		Base:   sim.NewConfig(),
		Mode:   Grid,
		Params: []ParamSpec{{Key: "algo.addend", Values: nil}},
	}
	_, err := Expand(spec)
	assert.Error(t, err)
}

func TestExpandRandomDrawsFromCandidateList(t *testing.T) {
	spec := SweepSpec{
		Base:    sim.NewConfig(),
		Mode:    Random,
		Samples: 20,
		Seed:    1234,
		Params: []ParamSpec{
			{Key: "algo.addend", Values: []float64{1, 2, 3}},
		},
	}

	configs, err := Expand(spec)
	require.NoError(t, err)
	require.Len(t, configs, 20)

	for _, cfg := range configs {
		v := cfg.AlgoSpecific["addend"]
		assert.Contains(t, []float64{1, 2, 3}, v)
	}
}

func TestExpandRandomIsDeterministicForASeed(t *testing.T) {
	spec := SweepSpec{
		Base:    sim.NewConfig(),
		Mode:    Random,
		Samples: 10,
		Seed:    42,
		Params: []ParamSpec{
			{Key: "algo.addend", Values: []float64{1, 2, 3, 4, 5}},
			{Key: "general.window", Values: []float64{15, 30, 60}},
		},
	}

	first, err := Expand(spec)
	require.NoError(t, err)
	second, err := Expand(spec)
	require.NoError(t, err)

	require.Len(t, first, len(second))
	for i := range first {
		assert.Equal(t, first[i].AlgoSpecific["addend"], second[i].AlgoSpecific["addend"])
		assert.Equal(t, first[i].General.Window, second[i].General.Window)
	}
}

func TestExpandRandomRejectsZeroSamples(t *testing.T) {
	spec := SweepSpec{
		Base:    sim.NewConfig(),
		Mode:    Random,
		Samples: 0,
		Params:  []ParamSpec{{Key: "algo.addend", Values: []float64{1}}},
	}
	_, err := Expand(spec)
	assert.Error(t, err)
}

func TestExpandWithNoParamsReturnsBaseOnly(t *testing.T) {
	base := sim.NewConfig()
	base.AlgoSpecific["addend"] = 7
	configs, err := Expand(SweepSpec{Base: base})
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, 7.0, configs[0].AlgoSpecific["addend"])
}
