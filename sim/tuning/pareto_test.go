package tuning

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParetoFrontierDropsDominatedPoints(t *testing.T) {
	points := []ParetoPoint{
		{UUID: "a", SumSlack: 10, SumInsufficientCPU: 50},
		{UUID: "b", SumSlack: 20, SumInsufficientCPU: 20},
		{UUID: "c", SumSlack: 50, SumInsufficientCPU: 10},
		{UUID: "d", SumSlack: 30, SumInsufficientCPU: 60}, // dominated by a and b
	}

	frontier := ParetoFrontier(points)

	uuids := make(map[string]bool, len(frontier))
	for _, p := range frontier {
		uuids[p.UUID] = true
	}
	assert.True(t, uuids["a"])
	assert.True(t, uuids["b"])
	assert.True(t, uuids["c"])
	assert.False(t, uuids["d"])
}

func TestParetoFrontierKeepsIdenticalPoints(t *testing.T) {
	points := []ParetoPoint{
		{UUID: "a", SumSlack: 10, SumInsufficientCPU: 10},
		{UUID: "b", SumSlack: 10, SumInsufficientCPU: 10},
	}
	frontier := ParetoFrontier(points)
	assert.Len(t, frontier, 2, "equal points do not dominate one another")
}

func TestBestByWeightedObjectivePicksMinimizer(t *testing.T) {
	points := []ParetoPoint{
		{UUID: "slack-heavy", SumSlack: 100, SumInsufficientCPU: 0},
		{UUID: "balanced", SumSlack: 10, SumInsufficientCPU: 10},
		{UUID: "starved", SumSlack: 0, SumInsufficientCPU: 100},
	}

	best, ok := BestByWeightedObjective(points, 1.0)
	assert.True(t, ok)
	assert.Equal(t, "balanced", best.UUID)

	best, ok = BestByWeightedObjective(points, 0.01)
	assert.True(t, ok)
	assert.Equal(t, "slack-heavy", best.UUID)
}

func TestBestByWeightedObjectiveEmptyInput(t *testing.T) {
	_, ok := BestByWeightedObjective(nil, 1.0)
	assert.False(t, ok)
}

func TestClosestToOriginPicksSmallestMagnitude(t *testing.T) {
	points := []ParetoPoint{
		{UUID: "far", SumSlack: 100, SumInsufficientCPU: 100},
		{UUID: "near", SumSlack: 1, SumInsufficientCPU: 1},
	}
	best, ok := ClosestToOrigin(points)
	assert.True(t, ok)
	assert.Equal(t, "near", best.UUID)
}

func TestClosestToOriginEmptyInput(t *testing.T) {
	_, ok := ClosestToOrigin(nil)
	assert.False(t, ok)
}
