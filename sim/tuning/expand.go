package tuning

import (
	"fmt"

	"github.com/vasim-go/vasim/sim"
)

// ExpansionMode selects how ParamSpecs turn into concrete configurations.
type ExpansionMode int

const (
	// Grid expands every ParamSpec.Values combination (Cartesian product).
	Grid ExpansionMode = iota
	// Random draws Samples independent uniform values per ParamSpec.
	Random
)

// ParamSpec names one dimension of the sweep: Key is a dotted path
// understood by sim.Config.SetParam (e.g. "algo.addend", "general.window"),
// and Values is the candidate list for that parameter. Grid mode takes the
// full Cartesian product of every ParamSpec.Values; Random mode draws
// Samples values independently from each ParamSpec's Values with
// replacement (SPEC_FULL.md §4.H: "each parameter drawn independently from
// its list").
type ParamSpec struct {
	Key    string
	Values []float64
}

// SweepSpec fully describes a tuning run: the base configuration every
// candidate is cloned from, which recommender to evaluate it with, and the
// parameter space to explore.
type SweepSpec struct {
	Base      sim.Config
	Algorithm string
	Mode      ExpansionMode
	Params    []ParamSpec
	Samples   int   // Random mode: draws per ParamSpec
	Seed      int64 // Random mode: consumed entirely before dispatch

	// InitialCPULimit is the starting limit every worker's Simulator.Run
	// begins from (SPEC_FULL.md §4.H). Zero means "use the candidate
	// config's max_cpu_limit", mirroring cmd/run.go's --initial-limit.
	InitialCPULimit float64
}

// Expand materializes the full set of candidate configurations for a
// sweep. Grid mode returns the Cartesian product of every ParamSpec.Values;
// Random mode returns Samples configurations, each with every ParamSpec
// drawn independently and identically across dimensions, all sampling
// consumed from one seeded source before any candidate is returned.
func Expand(spec SweepSpec) ([]sim.Config, error) {
	if len(spec.Params) == 0 {
		return []sim.Config{spec.Base.Clone()}, nil
	}

	switch spec.Mode {
	case Grid:
		return expandGrid(spec)
	case Random:
		return expandRandom(spec)
	default:
		return nil, fmt.Errorf("vasim: unknown expansion mode %d", spec.Mode)
	}
}

func expandGrid(spec SweepSpec) ([]sim.Config, error) {
	// combos starts as a single empty assignment and grows by one
	// dimension per ParamSpec, the standard iterative Cartesian-product
	// construction.
	combos := []map[string]float64{{}}
	for _, p := range spec.Params {
		if len(p.Values) == 0 {
			return nil, fmt.Errorf("vasim: grid parameter %q has no values", p.Key)
		}
		var next []map[string]float64
		for _, combo := range combos {
			for _, v := range p.Values {
				extended := make(map[string]float64, len(combo)+1)
				for k, existing := range combo {
					extended[k] = existing
				}
				extended[p.Key] = v
				next = append(next, extended)
			}
		}
		combos = next
	}

	return materialize(spec.Base, combos)
}

func expandRandom(spec SweepSpec) ([]sim.Config, error) {
	if spec.Samples <= 0 {
		return nil, fmt.Errorf("vasim: random expansion requires samples > 0")
	}

	draws := make(map[string][]float64, len(spec.Params))
	r := newSampler(spec.Seed)
	for _, p := range spec.Params {
		if len(p.Values) == 0 {
			return nil, fmt.Errorf("vasim: random parameter %q has no values", p.Key)
		}
		draws[p.Key] = sampleFromList(r, p.Values, spec.Samples)
	}

	combos := make([]map[string]float64, spec.Samples)
	for i := range combos {
		combo := make(map[string]float64, len(spec.Params))
		for _, p := range spec.Params {
			combo[p.Key] = draws[p.Key][i]
		}
		combos[i] = combo
	}

	return materialize(spec.Base, combos)
}

func materialize(base sim.Config, combos []map[string]float64) ([]sim.Config, error) {
	out := make([]sim.Config, 0, len(combos))
	for _, combo := range combos {
		cfg := base.Clone()
		for key, value := range combo {
			if err := cfg.SetParam(key, value); err != nil {
				return nil, err
			}
		}
		out = append(out, cfg)
	}
	return out, nil
}
