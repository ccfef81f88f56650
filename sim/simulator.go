package sim

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// ScalingEvent records one accepted limit change and when it took effect,
// the timeline MetricsCalculator forward-fills against (SPEC_FULL.md §4.G
// step 1, "align"): every observation between two events is charged the
// earlier event's limit. The first event is seeded at the Provider's start
// time with the run's initial limit, so every observation has a limit in
// force even before any scaling is accepted.
type ScalingEvent struct {
	Time  time.Time
	Limit float64
}

// Simulator is the replay kernel: it drives a Provider's clock forward,
// asks a Recommender for a new limit at every ready step, and lets an
// InfraScaler decide whether to actually apply it. Grounded on
// original_source's InMemoryRunnerSimulator.
type Simulator struct {
	provider    *Provider
	recommender Recommender
	scaler      *InfraScaler
	log         *logrus.Logger
}

// NewSimulator wires the three collaborators together.
func NewSimulator(provider *Provider, recommender Recommender, scaler *InfraScaler, log *logrus.Logger) *Simulator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Simulator{provider: provider, recommender: recommender, scaler: scaler, log: log}
}

// Result is everything one simulation run produces for its caller: the
// decision log (for decisions.csv) and the applied-limit timeline
// MetricsCalculator needs (SPEC_FULL.md §4.G).
type Result struct {
	Rows   []DecisionLogRow
	Events []ScalingEvent
}

// Run executes the simulation to completion, starting from initialLimit.
func (s *Simulator) Run(initialLimit float64) Result {
	return s.RunWithProgress(initialLimit, nil)
}

// RunWithProgress behaves like Run, additionally sending the completed
// fraction (0..1) to progress after every step, and closing it on return.
// progress may be nil.
func (s *Simulator) RunWithProgress(initialLimit float64, progress chan<- float64) Result {
	if progress != nil {
		defer close(progress)
	}

	s.log.WithFields(logrus.Fields{
		"start": s.provider.StartTime(),
		"end":   s.provider.EndTime(),
		"limit": initialLimit,
	}).Info("starting simulation")
	s.provider.SetCPULimit(initialLimit)

	events := []ScalingEvent{{Time: s.provider.StartTime(), Limit: initialLimit}}

	lag := time.Duration(s.provider.GeneralConfig().Lag) * time.Minute
	totalMinutes := s.provider.EndTime().Sub(s.provider.CurrentTime()).Minutes()
	var elapsedMinutes float64

	var rows []DecisionLogRow
	// Open Question 3: the loop continues while current_time+lag still
	// lands strictly before end_time.
	for s.provider.CurrentTime().Add(lag).Before(s.provider.EndTime()) {
		if row, event, ok := s.step(); ok {
			rows = append(rows, row)
			if event != nil {
				events = append(events, *event)
			}
		}

		elapsedMinutes += float64(s.provider.GeneralConfig().Lag)
		if progress != nil && totalMinutes > 0 {
			progress <- elapsedMinutes / totalMinutes
		}
	}

	s.log.WithField("final_time", s.provider.CurrentTime()).Info("simulation finished")
	return Result{Rows: rows, Events: events}
}

// step runs one simulation iteration and reports the decision log row it
// produced, if the Provider's window was ready, plus the ScalingEvent if
// the InfraScaler actually accepted a new limit this step.
func (s *Simulator) step() (row DecisionLogRow, event *ScalingEvent, ok bool) {
	window, latestTime, ready := s.provider.GetNextRecordedData()
	if !ready {
		s.log.Debug("waiting for window to fill before deciding")
		s.provider.AdvanceTime()
		return DecisionLogRow{}, nil, false
	}

	proposed, decided := s.recommend(window)
	row = DecisionLogRow{
		Time:      latestTime,
		CurrLimit: s.provider.GetCurrentCPULimit(),
		NewLimit:  proposed,
	}

	s.provider.AdvanceTime()

	if !decided {
		return row, nil, true
	}

	newLimit, scaled := s.scaler.Decide(proposed, s.provider.GetCurrentCPULimit(), s.provider.CurrentTime())
	if scaled {
		s.provider.SetCPULimit(newLimit)
		event = &ScalingEvent{Time: s.provider.CurrentTime(), Limit: newLimit}
	}
	return row, event, true
}

// recommend calls the recommender, recovering from a panic so one
// misbehaving algorithm cannot crash the whole run (or, for the tuning
// orchestrator, one worker in a larger sweep).
func (s *Simulator) recommend(window []Observation) (proposed float64, decided bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.WithField("panic", fmt.Sprint(r)).Error("recommender panicked, skipping this step")
			decided = false
		}
	}()
	return s.recommender.Recommend(window), true
}

// WriteDecisionsCSV writes the full decision log, one row per step,
// with header LATEST_TIME,CURR_LIMIT,NEW_LIMIT.
func WriteDecisionsCSV(path string, rows []DecisionLogRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("vasim: writing decisions log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"LATEST_TIME", "CURR_LIMIT", "NEW_LIMIT"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.Time.Format(time.RFC3339Nano), // Open Question 2: unambiguous round-trippable rendering
			strconv.FormatFloat(row.CurrLimit, 'f', -1, 64),
			strconv.FormatFloat(row.NewLimit, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Error()
}
