package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testGeneralConfig() GeneralConfig {
	return GeneralConfig{Window: 60, Lag: 15, MaxCPULimit: 10, MinCPULimit: 1, RecoveryTime: 15}
}

func TestInfraScalerClampsToLimits(t *testing.T) {
	s := NewInfraScaler(testGeneralConfig(), nil)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	limit, scaled := s.Decide(999, 5, now)
	assert.True(t, scaled)
	assert.Equal(t, 10.0, limit)
}

func TestInfraScalerClampsToLowerLimit(t *testing.T) {
	s := NewInfraScaler(testGeneralConfig(), nil)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	limit, scaled := s.Decide(-5, 5, now)
	assert.True(t, scaled)
	assert.Equal(t, 1.0, limit)
}

func TestInfraScalerFirstScalingBypassesCooldown(t *testing.T) {
	s := NewInfraScaler(testGeneralConfig(), nil)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	limit, scaled := s.Decide(6, 3, now)
	assert.True(t, scaled)
	assert.Equal(t, 6.0, limit)
}

func TestInfraScalerCooldownIsStrictlyGreaterThan(t *testing.T) {
	s := NewInfraScaler(testGeneralConfig(), nil) // recovery_time=15 minutes => 900 seconds
	last := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// Arm the cooldown with an accepted scaling at `last`.
	limit, scaled := s.Decide(8, 5, last)
	assert.True(t, scaled)
	assert.Equal(t, 8.0, limit)

	// Exactly at the cooldown boundary: still suppressed (strict >).
	atBoundary := last.Add(15 * time.Minute)
	limit, scaled = s.Decide(9, 8, atBoundary)
	assert.False(t, scaled)
	assert.Equal(t, 8.0, limit)

	// One second past the boundary: accepted.
	pastBoundary := last.Add(15*time.Minute + time.Second)
	limit, scaled = s.Decide(9, 8, pastBoundary)
	assert.True(t, scaled)
	assert.Equal(t, 9.0, limit)
}

func TestInfraScalerNoOpWhenProposalMatchesCurrent(t *testing.T) {
	s := NewInfraScaler(testGeneralConfig(), nil)
	now := time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC)
	_, scaled := s.Decide(5, 5, now)
	assert.False(t, scaled)
}

// A workload pegged at max_cpu_limit keeps proposing above it: the raw
// proposal differs from currLimit, so the scaling is accepted and the
// cooldown clock rearms, even though the clamped result is unchanged
// (original_source's SimulatedInfraScaler.scale).
func TestInfraScalerSaturatedProposalStillRearmsCooldown(t *testing.T) {
	s := NewInfraScaler(testGeneralConfig(), nil) // max_cpu_limit=10, recovery_time=15min
	last := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	limit, scaled := s.Decide(999, 10, last)
	assert.True(t, scaled)
	assert.Equal(t, 10.0, limit)

	// Still within cooldown: a second saturated proposal is suppressed.
	withinCooldown := last.Add(5 * time.Minute)
	limit, scaled = s.Decide(999, 10, withinCooldown)
	assert.False(t, scaled)
	assert.Equal(t, 10.0, limit)

	// Past cooldown: accepted again, clamped back to the same limit, and
	// the clock rearms from this new time.
	pastCooldown := last.Add(16 * time.Minute)
	limit, scaled = s.Decide(999, 10, pastCooldown)
	assert.True(t, scaled)
	assert.Equal(t, 10.0, limit)

	// Immediately after that rearmed scaling, cooldown is active again.
	limit, scaled = s.Decide(999, 10, pastCooldown.Add(time.Minute))
	assert.False(t, scaled)
	assert.Equal(t, 10.0, limit)
}
