package sim

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// DecisionLogRow is one row of the decision log: at Time, the limit in
// force was CurrLimit and the recommender proposed NewLimit. A row is
// written for every step where the Provider's window was ready, whether or
// not the proposal was ultimately accepted by the InfraScaler.
type DecisionLogRow struct {
	Time      time.Time
	CurrLimit float64
	NewLimit  float64
}

// Metrics summarizes a completed run against its source trace: the eleven
// fields named in SPEC_FULL.md §3/§4.G, the set of statistics
// original_source's plot_utils.py computes per scenario.
type Metrics struct {
	AverageSlack                       float64 `json:"average_slack"`
	AverageInsufficientCPU             float64 `json:"average_insufficient_cpu"`
	SumSlack                           float64 `json:"sum_slack"`
	SumInsufficientCPU                 float64 `json:"sum_insufficient_cpu"`
	NumScalings                        int     `json:"num_scalings"`
	NumInsufficientCPU                 int     `json:"num_insufficient_cpu"`
	InsufficientObservationsPercentage float64 `json:"insufficient_observations_percentage"`
	SlackPercentage                    float64 `json:"slack_percentage"`
	MedianInsufficientCPU              float64 `json:"median_insufficient_cpu"`
	MedianSlack                        float64 `json:"median_slack"`
	MaxSlack                           float64 `json:"max_slack"`
}

// Calculate aligns every trace observation against the limit actually in
// force at that moment — forward-filled from events, the applied-limit
// timeline a Simulator run produces — and derives aggregate slack /
// insufficiency statistics (SPEC_FULL.md §4.G). This mirrors
// original_source's pandas resample-then-ffill join more directly than
// joining only at the sparse decision-log timestamps would: every
// observation between two scaling events is charged the earlier event's
// limit. num_scalings counts the changes of that limit from one
// observation to the next; an accepted scaling that leaves the limit
// unchanged (a proposal clamped back to the current limit) is not
// counted. Slack at a point is
// max(0, curr_limit - actual); insufficient CPU is max(0, actual -
// curr_limit) — the two are asymmetric, never both nonzero at once.
func Calculate(trace *Trace, events []ScalingEvent) Metrics {
	if trace.Len() == 0 || len(events) == 0 {
		return Metrics{}
	}

	n := trace.Len()
	slacks := make([]float64, 0, n)
	insufficients := make([]float64, 0, n)
	limits := make([]float64, 0, n)
	var insufficientCount int
	var numScalings int

	eventIdx := 0
	prevLimit := events[0].Limit
	for i := 0; i < n; i++ {
		obs := trace.At(i)
		for eventIdx+1 < len(events) && !events[eventIdx+1].Time.After(obs.Time) {
			eventIdx++
		}
		currLimit := events[eventIdx].Limit
		if currLimit != prevLimit {
			numScalings++
			prevLimit = currLimit
		}

		slack := currLimit - obs.CPU
		if slack < 0 {
			slack = 0
		}
		slacks = append(slacks, slack)

		insufficient := obs.CPU - currLimit
		if insufficient < 0 {
			insufficient = 0
		}
		if insufficient > 0 {
			insufficientCount++
		}
		insufficients = append(insufficients, insufficient)

		limits = append(limits, currLimit)
	}

	sortedSlacks := append([]float64(nil), slacks...)
	sort.Float64s(sortedSlacks)
	sortedInsufficients := append([]float64(nil), insufficients...)
	sort.Float64s(sortedInsufficients)

	sumSlack := floatsSum(slacks)
	sumInsufficientCPU := floatsSum(insufficients)
	sumLimits := floatsSum(limits)

	slackPercentage := 0.0
	if sumLimits != 0 {
		slackPercentage = 100 * sumSlack / sumLimits
	}

	return Metrics{
		SumSlack:                           sumSlack,
		AverageSlack:                       stat.Mean(slacks, nil),
		MedianSlack:                        stat.Quantile(0.5, stat.Empirical, sortedSlacks, nil),
		MaxSlack:                           sortedSlacks[len(sortedSlacks)-1],
		SumInsufficientCPU:                 sumInsufficientCPU,
		AverageInsufficientCPU:             stat.Mean(insufficients, nil),
		MedianInsufficientCPU:              stat.Quantile(0.5, stat.Empirical, sortedInsufficients, nil),
		NumInsufficientCPU:                 insufficientCount,
		NumScalings:                        numScalings,
		InsufficientObservationsPercentage: 100 * float64(insufficientCount) / float64(len(slacks)),
		SlackPercentage:                    slackPercentage,
	}
}

func floatsSum(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x
	}
	return s
}
