// Package testutil provides shared test infrastructure for the VASIM
// simulator. It consolidates golden scenario fixtures and assertion
// helpers; the sim package's tests are currently its only user.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldenscenarios.json.
type GoldenDataset struct {
	Scenarios []GoldenScenario `json:"scenarios"`
}

// GoldenScenario describes one end-to-end replay scenario: a synthetic,
// inline per-minute CPU trace (CPUValues), an algorithm with its tuning
// parameters, and the expected aggregate metrics within a relative
// tolerance. The trace is synthetic rather than a recorded production
// trace (no such fixture ships in this module), so expected metrics here
// are hand-derived from the replay algorithm itself, not sampled from a
// real workload.
type GoldenScenario struct {
	Name            string             `json:"name"`
	CPUValues       []float64          `json:"cpu_values"`
	Algorithm       string             `json:"algorithm"`
	InitialCPULimit float64            `json:"initial_cpu_limit"`
	GeneralConfig   map[string]float64 `json:"general_config"`
	AlgoConfig      map[string]float64 `json:"algo_config"`
	Metrics         GoldenMetrics      `json:"metrics"`
}

// GoldenMetrics mirrors the MetricsRecord fields worth pinning in a
// fixture. Every field is asserted: a zero value expects the computed
// metric to be zero as well.
type GoldenMetrics struct {
	AverageSlack                       float64 `json:"average_slack"`
	SumSlack                           float64 `json:"sum_slack"`
	NumScalings                        int     `json:"num_scalings"`
	MedianSlack                        float64 `json:"median_slack"`
	MaxSlack                           float64 `json:"max_slack"`
	SumInsufficientCPU                 float64 `json:"sum_insufficient_cpu"`
	InsufficientObservationsPercentage float64 `json:"insufficient_observations_percentage"`
	SlackPercentage                    float64 `json:"slack_percentage"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldenscenarios.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// AssertFloat64WithinPct compares two float64 values within a percentage
// tolerance (e.g. 2.0 means +/-2%).
func AssertFloat64WithinPct(t *testing.T, name string, want, got, pctTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	rel := diff / math.Max(math.Abs(want), math.Abs(got)) * 100
	if rel > pctTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%.2f%%)", name, got, want, diff, rel)
	}
}
