package sim

import (
	"time"

	"github.com/sirupsen/logrus"
)

// InfraScaler applies the cooldown and clamping policy to a Recommender's
// proposal, deciding whether a recommendation is actually accepted.
// Grounded on original_source's SimulatedInfraScaler.py. It owns its own
// last_scaling_time/hasScaled state rather than deferring to the Provider
// (SPEC_FULL.md §4.E, spec.md §9 Open Question): the cooldown anchor is
// the InfraScaler's own bookkeeping of the last *accepted* scaling.
type InfraScaler struct {
	cfg GeneralConfig
	log *logrus.Logger

	lastScalingTime time.Time
	hasScaled       bool
}

// NewInfraScaler builds a scaler bound to the general_config limits.
func NewInfraScaler(cfg GeneralConfig, log *logrus.Logger) *InfraScaler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &InfraScaler{cfg: cfg, log: log}
}

// Decide applies the state machine from original_source's
// SimulatedInfraScaler.scale: the no-op check compares the raw
// (unclamped) proposed limit against currLimit, before any min/max
// clamping. A scaling is accepted if this is the first ever (hasScaled
// false) or strictly more than recovery_time*60 seconds have elapsed
// since the last accepted scaling. Once accepted, last_scaling_time
// advances and scaled reports true even if the subsequent clamp lands
// back on currLimit (e.g. a workload pegged above max_cpu_limit keeps
// proposing above it): that is still an accepted scaling for cooldown
// purposes, it just doesn't move the limit. newLimit is currLimit
// unchanged only when the proposal is rejected outright (no-op or
// cooldown).
func (s *InfraScaler) Decide(proposed, currLimit float64, now time.Time) (newLimit float64, scaled bool) {
	if proposed == currLimit {
		return currLimit, false
	}

	if s.hasScaled {
		elapsed := now.Sub(s.lastScalingTime).Seconds()
		cooldown := float64(s.cfg.RecoveryTime * 60)
		if elapsed <= cooldown {
			s.log.WithFields(logrus.Fields{
				"elapsed_seconds":   elapsed,
				"cooldown_seconds": cooldown,
			}).Debug("scaling suppressed by cooldown")
			return currLimit, false
		}
	}

	clamped := clampLimit(proposed, s.cfg.MinCPULimit, s.cfg.MaxCPULimit)
	s.lastScalingTime = now
	s.hasScaled = true
	return clamped, true
}

func clampLimit(v float64, min, max int) float64 {
	lo, hi := float64(min), float64(max)
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
