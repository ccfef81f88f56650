// cmd/run.go
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vasim-go/vasim/sim"
)

var (
	runDataDir     string
	runConfigPath  string
	runAlgorithm   string
	runLogLevel    string
	runOutputDir   string
	runInitialCPU  float64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay a recorded trace through a single recommender configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := runConfigPath
		if configPath == "" {
			configPath = filepath.Join(runDataDir, "metadata.json")
		}

		bootstrapLog := logrus.StandardLogger()
		cfg, err := sim.LoadFromFile(configPath, bootstrapLog)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		outputDir := runOutputDir
		if outputDir == "" {
			ws := sim.NewSimulationWorkspace(runDataDir, uuid.New().String())
			outputDir = ws.Dir
		}
		ws := sim.Workspace{Dir: outputDir}
		if err := ws.Ensure(); err != nil {
			return err
		}

		log, err := sim.NewLogger(runLogLevel, ws.LogFile())
		if err != nil {
			return err
		}
		cfg.Validate(log)

		trace, err := sim.LoadTrace(runDataDir, log)
		if err != nil {
			return fmt.Errorf("loading trace: %w", err)
		}

		provider := sim.NewProvider(trace, cfg.General, log)
		if cfg.Prediction.Enabled {
			provider.EnablePrediction(cfg.Prediction, nil)
		}

		recommender, err := sim.NewRecommender(runAlgorithm, cfg.AlgoSpecific, cfg.General.Window)
		if err != nil {
			return err
		}
		scaler := sim.NewInfraScaler(cfg.General, log)
		simulator := sim.NewSimulator(provider, recommender, scaler, log)

		initialLimit := runInitialCPU
		if initialLimit <= 0 {
			initialLimit = float64(cfg.General.MaxCPULimit)
		}
		result := simulator.Run(initialLimit)

		if err := sim.WriteDecisionsCSV(ws.DecisionsCSV(), result.Rows); err != nil {
			return err
		}
		if err := provider.FlushMetricsData(ws.PerfEventLogCSV()); err != nil {
			return err
		}
		if err := cfg.ToFile(ws.MetadataJSON()); err != nil {
			return err
		}

		metrics := sim.Calculate(trace, result.Events)
		metricsJSON, err := json.MarshalIndent(metrics, "", "    ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(ws.CalcMetricsJSON(), metricsJSON, 0o644); err != nil {
			return fmt.Errorf("writing calc_metrics.json: %w", err)
		}

		log.WithFields(logrus.Fields{
			"average_slack":   metrics.AverageSlack,
			"num_scalings":    metrics.NumScalings,
			"insufficient_pct": metrics.InsufficientObservationsPercentage,
		}).Info("run complete")

		fmt.Printf("results written to %s\n", ws.Dir)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runDataDir, "data-dir", ".", "Directory containing perf_event_log CSV trace files")
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "Path to metadata.json (defaults to {data-dir}/metadata.json)")
	runCmd.Flags().StringVar(&runAlgorithm, "algorithm", "multiplicative", "Recommender algorithm: additive or multiplicative")
	runCmd.Flags().StringVar(&runLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	runCmd.Flags().StringVar(&runOutputDir, "output-dir", "", "Workspace directory for this run's outputs (default: {data-dir}_simulations/target_{uuid})")
	runCmd.Flags().Float64Var(&runInitialCPU, "initial-limit", 0, "Initial CPU limit (default: max_cpu_limit from config)")

	rootCmd.AddCommand(runCmd)
}
