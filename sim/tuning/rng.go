package tuning

import "math/rand"

// newSampler returns a seeded source consumed entirely up front, before any
// worker dispatch, so every random-mode sweep is reproducible and no two
// workers ever race on a shared generator (SPEC_FULL.md §9 REDESIGN FLAGS).
func newSampler(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// sampleFromList draws n independent values uniformly from values (with
// replacement), the random-mode counterpart to grid expansion's exhaustive
// product: SPEC_FULL.md §4.H says each parameter is "drawn independently
// from its list", the same list of candidate values grid mode consumes in
// full.
func sampleFromList(r *rand.Rand, values []float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = values[r.Intn(len(values))]
	}
	return out
}
