package tuning

import "math"

// ParetoPoint is one sweep result projected onto the two objectives a
// scaling policy trades off: total slack (wasted headroom) against total
// insufficient CPU (starvation). Both are minimized.
type ParetoPoint struct {
	UUID               string
	SumSlack           float64
	SumInsufficientCPU float64
}

// ParetoFrontier returns the non-dominated subset of points: a point is
// dominated, and dropped, if another point is at least as good on both
// dimensions and strictly better on one. Grounded on original_source's
// ParetoFrontier/ParetoFront2D, minus the plotting and CSV export (no
// third-party plotting library is wired into this module; see DESIGN.md).
func ParetoFrontier(points []ParetoPoint) []ParetoPoint {
	var frontier []ParetoPoint
	for _, p := range points {
		dominated := false
		for _, q := range points {
			if dominates(q, p) {
				dominated = true
				break
			}
		}
		if !dominated {
			frontier = append(frontier, p)
		}
	}
	return frontier
}

func dominates(a, b ParetoPoint) bool {
	if a.UUID == b.UUID {
		return false
	}
	notWorse := a.SumSlack <= b.SumSlack && a.SumInsufficientCPU <= b.SumInsufficientCPU
	strictlyBetter := a.SumSlack < b.SumSlack || a.SumInsufficientCPU < b.SumInsufficientCPU
	return notWorse && strictlyBetter
}

// BestByWeightedObjective scans the frontier candidates for the one
// minimizing alpha*sum_slack + sum_insufficient_cpu, the same linear
// scalarization ParetoFront2D.calculate_objective samples across many
// alphas to trace out the frontier from one side to the other.
func BestByWeightedObjective(points []ParetoPoint, alpha float64) (ParetoPoint, bool) {
	if len(points) == 0 {
		return ParetoPoint{}, false
	}
	best := points[0]
	bestObjective := alpha*best.SumSlack + best.SumInsufficientCPU
	for _, p := range points[1:] {
		objective := alpha*p.SumSlack + p.SumInsufficientCPU
		if objective < bestObjective {
			best = p
			bestObjective = objective
		}
	}
	return best, true
}

// ClosestToOrigin returns the candidate with the smallest Euclidean
// distance from (0, 0) in (sum_insufficient_cpu, sum_slack) space — the
// single best all-around compromise, mirroring find_closest_to_zero.
func ClosestToOrigin(points []ParetoPoint) (ParetoPoint, bool) {
	if len(points) == 0 {
		return ParetoPoint{}, false
	}
	best := points[0]
	bestDist := math.Hypot(best.SumSlack, best.SumInsufficientCPU)
	for _, p := range points[1:] {
		dist := math.Hypot(p.SumSlack, p.SumInsufficientCPU)
		if dist < bestDist {
			best = p
			bestDist = dist
		}
	}
	return best, true
}
