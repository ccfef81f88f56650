// cmd/tune.go
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vasim-go/vasim/sim"
	"github.com/vasim-go/vasim/sim/tuning"
)

var (
	tuneDataDir      string
	tuneConfigPath   string
	tuneParamsFile   string
	tuneConcurrency  int
	tuneInitialLimit float64
)

// paramFile is the --params-file YAML schema: one entry per swept
// parameter, naming its candidate-value list. Grid mode takes the full
// product of every entry's values; random mode draws Samples values
// independently from each entry's values (SPEC_FULL.md §4.H).
type paramFile struct {
	Mode      string       `yaml:"mode"`
	Algorithm string       `yaml:"algorithm"`
	Seed      int64        `yaml:"seed"`
	Samples   int          `yaml:"samples"`
	Params    []paramEntry `yaml:"params"`
}

type paramEntry struct {
	Key    string    `yaml:"key"`
	Values []float64 `yaml:"values"`
}

var tuneCmd = &cobra.Command{
	Use:   "tune",
	Short: "Sweep a recommender's parameters against a recorded trace",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logrus.StandardLogger()

		configPath := tuneConfigPath
		if configPath == "" {
			configPath = filepath.Join(tuneDataDir, "metadata.json")
		}
		base, err := sim.LoadFromFile(configPath, log)
		if err != nil {
			return fmt.Errorf("loading base config: %w", err)
		}

		pf, err := loadParamFile(tuneParamsFile)
		if err != nil {
			return err
		}

		spec := tuning.SweepSpec{
			Base:            base,
			Algorithm:       pf.Algorithm,
			Params:          toParamSpecs(pf.Params),
			Samples:         pf.Samples,
			Seed:            pf.Seed,
			InitialCPULimit: tuneInitialLimit,
		}
		if pf.Mode == "random" {
			spec.Mode = tuning.Random
		} else {
			spec.Mode = tuning.Grid
		}

		trace, err := sim.LoadTrace(tuneDataDir, log)
		if err != nil {
			return fmt.Errorf("loading trace: %w", err)
		}

		result, err := tuning.Run(context.Background(), spec, trace, tuneDataDir, tuneConcurrency)
		if err != nil {
			return err
		}

		failed := 0
		for _, r := range result.Results {
			if r.Err != nil {
				failed++
				log.WithFields(logrus.Fields{"uuid": r.UUID, "error": r.Err}).Warn("tuning worker failed")
			}
		}
		fmt.Printf("%d/%d configurations succeeded, %d on the Pareto frontier\n",
			len(result.Results)-failed, len(result.Results), len(result.Frontier))
		for _, p := range result.Frontier {
			fmt.Printf("  frontier: uuid=%s sum_slack=%.2f sum_insufficient_cpu=%.2f\n", p.UUID, p.SumSlack, p.SumInsufficientCPU)
		}
		return nil
	},
}

func loadParamFile(path string) (paramFile, error) {
	if path == "" {
		return paramFile{Mode: "grid", Algorithm: "multiplicative"}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return paramFile{}, fmt.Errorf("reading params file: %w", err)
	}
	var pf paramFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return paramFile{}, fmt.Errorf("parsing params file: %w", err)
	}
	if pf.Algorithm == "" {
		pf.Algorithm = "multiplicative"
	}
	if pf.Mode == "random" && pf.Seed == 0 {
		pf.Seed = 1234 // SPEC_FULL.md §4.H: default deterministic seed
	}
	return pf, nil
}

func toParamSpecs(entries []paramEntry) []tuning.ParamSpec {
	out := make([]tuning.ParamSpec, len(entries))
	for i, e := range entries {
		out[i] = tuning.ParamSpec{Key: e.Key, Values: e.Values}
	}
	return out
}

func init() {
	tuneCmd.Flags().StringVar(&tuneDataDir, "data-dir", ".", "Directory containing perf_event_log CSV trace files")
	tuneCmd.Flags().StringVar(&tuneConfigPath, "config", "", "Path to the base metadata.json (defaults to {data-dir}/metadata.json)")
	tuneCmd.Flags().StringVar(&tuneParamsFile, "params-file", "", "YAML file describing the parameter sweep")
	tuneCmd.Flags().IntVar(&tuneConcurrency, "concurrency", 4, "Maximum number of configurations evaluated in parallel")
	tuneCmd.Flags().Float64Var(&tuneInitialLimit, "initial-limit", 0, "Initial CPU limit for every worker (default: each candidate's max_cpu_limit)")

	rootCmd.AddCommand(tuneCmd)
}
