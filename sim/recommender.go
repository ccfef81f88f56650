package sim

import (
	"fmt"
	"math"
)

// Recommender is VASIM's one true extension point (sim/doc.go): given the
// window of recent observations the Provider just returned, it proposes a
// new CPU limit. It does not decide whether to apply that limit — cooldown,
// clamping, and the accept/reject decision belong to the InfraScaler.
type Recommender interface {
	// Recommend returns the proposed new limit for the given window.
	Recommend(window []Observation) float64
}

// NewRecommender builds the named recommender, grounded on its
// algo_specific_config parameters. generalWindow is general_config.window,
// used as the multiplicative variant's smoothing_window default when the
// algo-specific section does not override it (SPEC_FULL.md §4.D). Unknown
// names return ErrUnknownAlgorithm.
func NewRecommender(name string, cfg AlgoSpecificConfig, generalWindow int) (Recommender, error) {
	switch name {
	case "additive":
		return &AdditiveRecommender{Addend: cfg.Get("addend", DefaultAddend)}, nil
	case "multiplicative":
		smoothing := int(cfg.Get("smoothing_window", float64(generalWindow)))
		if smoothing <= 0 {
			smoothing = generalWindow
		}
		return &MultiplicativeRecommender{
			Multiplier:      cfg.Get("multiplier", DefaultMultiplier),
			SmoothingWindow: smoothing,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

// quantizeHalf rounds v up to the next 0.5, the CPU-limit granularity every
// recommender variant must respect (SPEC_FULL.md §8 invariants). Always
// rounds up, never to nearest — grounded on original_source's
// DummyAdditiveRecommender.py/DummyMultiplierRecommender.py, both
// `np.ceil(new_limit*2)/2`.
func quantizeHalf(v float64) float64 {
	return math.Ceil(v*2) / 2
}

// maxCPU returns the largest CPU reading in window. Panics on an empty
// window; callers only invoke Recommend once the Provider has confirmed a
// non-empty window is ready.
func maxCPU(window []Observation) float64 {
	m := window[0].CPU
	for _, o := range window[1:] {
		if o.CPU > m {
			m = o.CPU
		}
	}
	return m
}
