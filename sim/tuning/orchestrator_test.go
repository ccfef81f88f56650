package tuning

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasim-go/vasim/sim"
)

func TestRunExpandsEvaluatesAndScoresAFrontier(t *testing.T) {
	trace := syntheticTrace(t, []float64{10, 20, 15, 25, 30, 40, 35, 20, 15, 10, 10, 10})

	base := sim.NewConfig()
	base.General.Window = 3
	base.General.Lag = 1
	base.General.MaxCPULimit = 50
	base.General.MinCPULimit = 1

	spec := SweepSpec{
		Base:      base,
		Algorithm: "additive",
		Mode:      Grid,
		Params: []ParamSpec{
			{Key: "algo.addend", Values: []float64{1, 5, 10}},
		},
	}

	dataDir := filepath.Join(t.TempDir(), "trace")
	sweep, err := Run(context.Background(), spec, trace, dataDir, 2)
	require.NoError(t, err)

	require.Len(t, sweep.Results, 3)
	for _, r := range sweep.Results {
		require.NoError(t, r.Err)
	}
	assert.NotEmpty(t, sweep.Frontier)
	assert.LessOrEqual(t, len(sweep.Frontier), len(sweep.Results))
}

func TestRunSurfacesExpansionErrors(t *testing.T) {
	trace := syntheticTrace(t, []float64{10, 20, 15})
	spec := SweepSpec{
		Base: sim.NewConfig(),
		Mode: Random,
		Params: []ParamSpec{
			{Key: "algo.addend", Values: []float64{1}},
		},
		Samples: 0,
	}

	dataDir := filepath.Join(t.TempDir(), "trace")
	_, err := Run(context.Background(), spec, trace, dataDir, 1)
	assert.Error(t, err)
}
