package sim

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Predictor is the opaque forecasting capability a predictive Provider may
// consult. VASIM does not implement or evaluate forecast models itself
// (SPEC_FULL.md §1/§4.C); this is only the call site a real forecaster
// would plug into.
type Predictor interface {
	// Predict returns synthetic future observations to append to window,
	// given the window observed so far and the current simulated time.
	// ok is false when the predictor declines to extend the window.
	Predict(window []Observation, now time.Time) (extra []Observation, ok bool)
}

// NaivePredictor holds the last observed value forward, the simplest
// possible forecaster, grounded on the last-value-hold baseline in
// original_source's forecasting/models/oracle.py. It exists so
// prediction_config.enabled is exercisable without a full forecasting
// stack, which SPEC_FULL.md explicitly keeps out of scope.
type NaivePredictor struct {
	// MinutesToPredict is how far forward to extend the window, mirroring
	// prediction_config.minutes_to_predict.
	MinutesToPredict int
}

// Predict implements Predictor.
func (n NaivePredictor) Predict(window []Observation, now time.Time) ([]Observation, bool) {
	if len(window) == 0 || n.MinutesToPredict <= 0 {
		return nil, false
	}
	last := window[len(window)-1]
	extra := make([]Observation, 0, n.MinutesToPredict)
	for i := 1; i <= n.MinutesToPredict; i++ {
		extra = append(extra, Observation{
			Time: now.Add(time.Duration(i) * time.Minute),
			CPU:  last.CPU,
		})
	}
	return extra, true
}

// predictionState is the optional extra state a predictive Provider
// carries, composed rather than inherited (SPEC_FULL.md §9 REDESIGN FLAGS).
type predictionState struct {
	cfg              PredictionConfig
	predictor        Predictor
	activatedAt      time.Time
	everActivated    bool
}

// Provider is the ClusterStateProvider: it owns the Trace and the
// simulated clock, and hands the Simulator sliding windows of history.
type Provider struct {
	trace *Trace
	cfg   GeneralConfig
	log   *logrus.Logger

	startTime time.Time
	endTime   time.Time
	currentTime time.Time

	currCPULimit    float64
	lastScalingTime time.Time
	hasScaled       bool

	pred *predictionState
}

// NewProvider constructs a replay Provider anchored at the trace's first
// observation.
func NewProvider(trace *Trace, cfg GeneralConfig, log *logrus.Logger) *Provider {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Provider{
		trace:       trace,
		cfg:         cfg,
		log:         log,
		startTime:   trace.First(),
		endTime:     trace.Last(),
		currentTime: trace.First(),
	}
}

// EnablePrediction upgrades the Provider to the predictive variant
// (SPEC_FULL.md §4.C, "replay_with_prediction"). predictor may be nil, in
// which case a NaivePredictor is used.
func (p *Provider) EnablePrediction(cfg PredictionConfig, predictor Predictor) {
	if !cfg.Enabled {
		p.pred = nil
		return
	}
	if predictor == nil {
		predictor = NaivePredictor{MinutesToPredict: cfg.MinutesToPredict}
	}
	p.pred = &predictionState{cfg: cfg, predictor: predictor}
}

// Trace returns the underlying observation series.
func (p *Provider) Trace() *Trace { return p.trace }

// GeneralConfig returns the general_config this Provider was built from.
func (p *Provider) GeneralConfig() GeneralConfig { return p.cfg }

// StartTime returns the first observation's timestamp.
func (p *Provider) StartTime() time.Time { return p.startTime }

// EndTime returns the last observation's timestamp.
func (p *Provider) EndTime() time.Time { return p.endTime }

// CurrentTime returns the simulated clock.
func (p *Provider) CurrentTime() time.Time { return p.currentTime }

// GetCurrentCPULimit returns the currently enforced limit.
func (p *Provider) GetCurrentCPULimit() float64 { return p.currCPULimit }

// LastScalingTime returns the timestamp of the most recent limit change,
// and whether a scaling has ever occurred.
func (p *Provider) LastScalingTime() (time.Time, bool) { return p.lastScalingTime, p.hasScaled }

// SetCPULimit stores new_limit, updating last_scaling_time first if the
// limit actually changes (SPEC_FULL.md §4.C).
func (p *Provider) SetCPULimit(newLimit float64) {
	if newLimit != p.currCPULimit {
		p.lastScalingTime = p.currentTime
		p.hasScaled = true
	}
	p.currCPULimit = newLimit
}

// AdvanceTime moves the simulated clock forward by one lag interval.
func (p *Provider) AdvanceTime() {
	p.currentTime = p.currentTime.Add(time.Duration(p.cfg.Lag) * time.Minute)
}

// GetNextRecordedData returns the window of observations in
// [current_time - window, current_time], clamping actuals in the trailing
// lag sub-range down to the current CPU limit in place before returning
// (SPEC_FULL.md §4.C). ok is false while there is not yet a full window of
// history, or the window contains fewer than 2 points — the Simulator
// treats either as "not ready" and advances time without deciding.
func (p *Provider) GetNextRecordedData() (window []Observation, latestTime time.Time, ok bool) {
	windowStart := p.currentTime.Add(-time.Duration(p.cfg.Window) * time.Minute)
	if p.currentTime.Before(p.startTime.Add(time.Duration(p.cfg.Window) * time.Minute)) {
		return nil, time.Time{}, false
	}

	lo, hi := p.trace.Range(windowStart, p.currentTime)
	if hi-lo < 2 {
		return nil, time.Time{}, false
	}

	lagStart := p.currentTime.Add(-time.Duration(p.cfg.Lag) * time.Minute)
	clampLo, clampHi := p.trace.Range(lagStart, p.currentTime)
	// Open Question 1 (SPEC_FULL.md): this clamp mutates the trace
	// in place, so a later overlapping window observes the clamped value.
	p.trace.ClampAbove(clampLo, clampHi, p.currCPULimit)

	out := p.trace.Slice(lo, hi)
	latest := out[len(out)-1].Time

	if p.pred != nil && p.predictionReady(latest) {
		if extra, ok := p.pred.predictor.Predict(out, p.currentTime); ok {
			out = append(out, extra...)
		}
	}

	return out, latest, true
}

// predictionReady reports whether the predictive extension should fire:
// after waiting_before_predict minutes have elapsed since the first
// observation, and only every frequency_minutes.
func (p *Provider) predictionReady(latest time.Time) bool {
	elapsed := latest.Sub(p.startTime)
	if elapsed < time.Duration(p.pred.cfg.WaitingBeforePredict)*time.Minute {
		return false
	}
	freq := p.pred.cfg.FrequencyMinutes
	if freq <= 0 {
		freq = 1
	}
	minutesSinceStart := int(elapsed.Minutes())
	return minutesSinceStart%freq == 0
}

// FlushMetricsData writes the (clamped) trace back out to path.
func (p *Provider) FlushMetricsData(path string) error {
	return p.trace.WriteCSV(path)
}
