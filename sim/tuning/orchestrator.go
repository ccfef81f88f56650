package tuning

import (
	"context"
	"fmt"

	"github.com/vasim-go/vasim/sim"
)

// SweepResult is the full outcome of a tuning run: every worker's result,
// plus the Pareto-optimal subset on (sum_slack, sum_insufficient_cpu).
type SweepResult struct {
	Results  []Result
	Frontier []ParetoPoint
}

// Run expands spec into candidate configurations and evaluates every one
// of them against trace, bounded to concurrency workers at a time. It is
// the Go counterpart of original_source's ParameterTuning sweep driver,
// restructured around a fan-out/fan-in worker pool instead of a sequential
// for-loop (SPEC_FULL.md §9).
func Run(ctx context.Context, spec SweepSpec, trace *sim.Trace, dataDir string, concurrency int) (SweepResult, error) {
	configs, err := Expand(spec)
	if err != nil {
		return SweepResult{}, fmt.Errorf("vasim: expanding tuning sweep: %w", err)
	}

	results := RunSweep(ctx, trace, spec.Algorithm, configs, dataDir, concurrency, spec.InitialCPULimit)

	points := make([]ParetoPoint, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		points = append(points, ParetoPoint{
			UUID:               r.UUID,
			SumSlack:           r.Metrics.SumSlack,
			SumInsufficientCPU: r.Metrics.SumInsufficientCPU,
		})
	}

	return SweepResult{Results: results, Frontier: ParetoFrontier(points)}, nil
}
