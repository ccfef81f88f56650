package tuning

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vasim-go/vasim/sim"
)

// Result is one worker's outcome. Err is set (and Metrics left zero) when
// the worker could not complete its run; the sweep keeps going regardless,
// per the per-worker handling of fatal errors documented in sim/errors.go.
type Result struct {
	UUID         string
	Config       sim.Config
	Metrics      sim.Metrics
	WorkspaceDir string
	Err          error
}

// RunSweep evaluates every candidate configuration against trace, fanning
// out over a worker pool bounded to concurrency and fanning back in through
// a results slice — grounded on SPEC_FULL.md §9's "bounded worker pool with
// a results channel" redesign of the original sequential ParameterTuning
// sweep. Each worker clones trace independently (Trace.Clone), since
// GetNextRecordedData mutates its trace in place.
func RunSweep(ctx context.Context, trace *sim.Trace, algorithm string, configs []sim.Config, dataDir string, concurrency int, initialLimit float64) []Result {
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make([]Result, len(configs))
	sem := make(chan struct{}, concurrency)

	var g errgroup.Group
	for i, cfg := range configs {
		i, cfg := i, cfg
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			results[i] = Result{Err: ctx.Err()}
			continue
		}
		g.Go(func() error {
			defer func() { <-sem }()
			results[i] = runWorker(trace, algorithm, cfg, dataDir, initialLimit)
			return nil
		})
	}
	_ = g.Wait() // runWorker never returns an error through g; failures live on Result.Err

	return results
}

// newWorkerUUID formats a worker ID as cfg-xxxxxxxx-xxxx, short enough to
// read in a directory listing while still collision-resistant.
func newWorkerUUID() string {
	u := uuid.New().String()
	return fmt.Sprintf("cfg-%s-%s", u[:8], u[9:13])
}

func runWorker(trace *sim.Trace, algorithm string, cfg sim.Config, dataDir string, initialLimit float64) Result {
	id := newWorkerUUID()
	ws := sim.NewTuningWorkspace(dataDir, id)
	result := Result{UUID: id, Config: cfg, WorkspaceDir: ws.Dir}

	if err := ws.Ensure(); err != nil {
		result.Err = err
		return result
	}

	log, err := sim.NewLogger("warn", ws.LogFile())
	if err != nil {
		result.Err = err
		writeErrorLog(ws, err)
		return result
	}

	cfg.Validate(log)
	cfg.UUID = id
	result.Config = cfg

	workerTrace := trace.Clone()
	provider := sim.NewProvider(workerTrace, cfg.General, log)
	if cfg.Prediction.Enabled {
		provider.EnablePrediction(cfg.Prediction, nil)
	}

	recommender, err := sim.NewRecommender(algorithm, cfg.AlgoSpecific, cfg.General.Window)
	if err != nil {
		result.Err = err
		writeErrorLog(ws, err)
		return result
	}
	scaler := sim.NewInfraScaler(cfg.General, log)
	simulator := sim.NewSimulator(provider, recommender, scaler, log)

	start := initialLimit
	if start <= 0 {
		start = float64(cfg.General.MaxCPULimit)
	}
	simRun := simulator.Run(start)

	if err := sim.WriteDecisionsCSV(ws.DecisionsCSV(), simRun.Rows); err != nil {
		result.Err = err
		writeErrorLog(ws, err)
		return result
	}
	if err := provider.FlushMetricsData(ws.PerfEventLogCSV()); err != nil {
		result.Err = err
		writeErrorLog(ws, err)
		return result
	}

	metrics := sim.Calculate(workerTrace, simRun.Events)
	if err := writeMetricsJSON(ws.CalcMetricsJSON(), metrics); err != nil {
		result.Err = err
		writeErrorLog(ws, err)
		return result
	}
	if err := cfg.ToFile(ws.MetadataJSON()); err != nil {
		result.Err = err
		writeErrorLog(ws, err)
		return result
	}

	result.Metrics = metrics
	return result
}

func writeMetricsJSON(path string, m sim.Metrics) error {
	data, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writeErrorLog(ws sim.Workspace, err error) {
	f, openErr := os.OpenFile(ws.ErrorLogFile(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if openErr != nil {
		logrus.WithError(openErr).Error("could not open error log for failed worker")
		return
	}
	defer f.Close()
	fmt.Fprintln(f, err.Error())
}
