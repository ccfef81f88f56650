package sim

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// GeneralConfig holds the non-algorithm-specific replay parameters.
// Values are minutes unless noted otherwise.
type GeneralConfig struct {
	Window       int `json:"window"`
	Lag          int `json:"lag"`
	MaxCPULimit  int `json:"max_cpu_limit"`
	MinCPULimit  int `json:"min_cpu_limit"`
	RecoveryTime int `json:"recovery_time"`
}

// DefaultGeneralConfig returns the baseline general_config section.
func DefaultGeneralConfig() GeneralConfig {
	return GeneralConfig{
		Window:       DefaultWindow,
		Lag:          DefaultLag,
		MaxCPULimit:  DefaultMaxCPULimit,
		MinCPULimit:  DefaultMinCPULimit,
		RecoveryTime: DefaultRecoveryTime,
	}
}

// PredictionConfig holds the optional forecasting-extension parameters.
// VASIM treats the forecasting model itself as an opaque capability (see
// SPEC_FULL.md §4.C); only the scheduling knobs live here.
type PredictionConfig struct {
	Enabled                bool   `json:"enabled"`
	WaitingBeforePredict   int    `json:"waiting_before_predict,omitempty"`
	FrequencyMinutes       int    `json:"frequency_minutes,omitempty"`
	ForecastingModels      string `json:"forecasting_models,omitempty"`
	MinutesToPredict       int    `json:"minutes_to_predict,omitempty"`
	TotalPredictiveWindow  int    `json:"total_predictive_window,omitempty"`
}

// DefaultPredictionConfig returns the disabled, default-valued prediction_config section.
func DefaultPredictionConfig() PredictionConfig {
	return PredictionConfig{
		Enabled:               false,
		WaitingBeforePredict:  DefaultWaitingBeforePredict,
		FrequencyMinutes:      DefaultFrequencyMinutes,
		ForecastingModels:     DefaultForecastingModel,
		MinutesToPredict:      DefaultMinutesToPredict,
		TotalPredictiveWindow: DefaultTotalPredictiveWindow,
	}
}

// AlgoSpecificConfig holds recommender-defined scalar parameters
// (e.g. "addend", "multiplier", "smoothing_window"). The set of valid
// keys is defined by the chosen Recommender, not by ConfigStore.
type AlgoSpecificConfig map[string]float64

// Get returns the value for key, or def if the key is absent.
func (a AlgoSpecificConfig) Get(key string, def float64) float64 {
	if v, ok := a[key]; ok {
		return v
	}
	return def
}

// Config is the three-section configuration described in SPEC_FULL.md §3:
// general_config, algo_specific_config, and prediction_config. Unknown
// top-level keys are preserved verbatim across Load/Validate/ToFile so a
// round trip never drops data it did not understand.
type Config struct {
	General      GeneralConfig      `json:"general_config"`
	AlgoSpecific AlgoSpecificConfig `json:"algo_specific_config"`
	Prediction   PredictionConfig   `json:"prediction_config"`

	// UUID is stamped by the tuning orchestrator on each worker's config
	// copy (SPEC_FULL.md §4.H); empty for a standalone run.
	UUID string `json:"uuid,omitempty"`

	// extra preserves any top-level JSON keys this struct does not model,
	// so ToFile(LoadFromFile(p)) round-trips unknown content exactly.
	extra map[string]json.RawMessage
}

// NewConfig returns a Config populated entirely with defaults.
func NewConfig() Config {
	return Config{
		General:      DefaultGeneralConfig(),
		AlgoSpecific: AlgoSpecificConfig{},
		Prediction:   DefaultPredictionConfig(),
	}
}

// knownConfigKeys are the top-level fields Config understands natively.
var knownConfigKeys = map[string]bool{
	"general_config":       true,
	"algo_specific_config": true,
	"prediction_config":    true,
	"uuid":                 true,
}

// UnmarshalJSON decodes the three known sections plus uuid, stashing any
// other top-level key in extra for a faithful round trip.
func (c *Config) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrMissingConfig, err)
	}

	type alias Config
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("%w: %v", ErrMissingConfig, err)
	}
	*c = Config(a)

	c.extra = make(map[string]json.RawMessage)
	for k, v := range raw {
		if !knownConfigKeys[k] {
			c.extra[k] = v
		}
	}
	if c.AlgoSpecific == nil {
		c.AlgoSpecific = AlgoSpecificConfig{}
	}
	return nil
}

// MarshalJSON re-emits the three known sections, uuid, and any preserved
// unknown top-level keys.
func (c Config) MarshalJSON() ([]byte, error) {
	out := map[string]json.RawMessage{}
	for k, v := range c.extra {
		out[k] = v
	}

	generalBytes, err := json.Marshal(c.General)
	if err != nil {
		return nil, err
	}
	out["general_config"] = generalBytes

	algoBytes, err := json.Marshal(c.AlgoSpecific)
	if err != nil {
		return nil, err
	}
	out["algo_specific_config"] = algoBytes

	predBytes, err := json.Marshal(c.Prediction)
	if err != nil {
		return nil, err
	}
	out["prediction_config"] = predBytes

	if c.UUID != "" {
		uuidBytes, err := json.Marshal(c.UUID)
		if err != nil {
			return nil, err
		}
		out["uuid"] = uuidBytes
	}

	return json.Marshal(out)
}

// LoadFromFile reads and validates a metadata JSON file.
func LoadFromFile(path string, log *logrus.Logger) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrMissingConfig, err)
	}
	return LoadFromBytes(data, log)
}

// LoadFromBytes parses and validates a metadata JSON document.
func LoadFromBytes(data []byte, log *logrus.Logger) (Config, error) {
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrMissingConfig, err)
	}
	c.Validate(log)
	return c, nil
}

// LoadFromMap builds a Config from an in-memory map, the Go analogue of
// load_from_dict (SPEC_FULL.md §4.A). It round-trips m through the same
// JSON decoding LoadFromBytes uses, so unknown top-level keys are
// preserved identically and the same validation/defaulting applies.
func LoadFromMap(m map[string]any, log *logrus.Logger) (Config, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrMissingConfig, err)
	}
	return LoadFromBytes(data, log)
}

// ToFile serializes the configuration to path as indented JSON.
func (c Config) ToFile(path string) error {
	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return fmt.Errorf("vasim: marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Clone returns a structural deep copy via a JSON marshal/unmarshal round
// trip, per SPEC_FULL.md §9 (explicit serialize-then-deserialize instead
// of aliasing shared maps across tuning workers).
func (c Config) Clone() Config {
	data, err := json.Marshal(c)
	if err != nil {
		// Config always marshals cleanly; a failure here means a caller
		// built an invalid AlgoSpecific map with non-JSON-able content.
		panic(fmt.Sprintf("vasim: cloning config: %v", err))
	}
	var clone Config
	if err := json.Unmarshal(data, &clone); err != nil {
		panic(fmt.Sprintf("vasim: cloning config: %v", err))
	}
	return clone
}

// Validate enforces the soft-failure policy from SPEC_FULL.md §4.A: every
// missing or non-positive scalar in general_config is logged and replaced
// with its default, except min/max ordering, which resets both to
// defaults. The prediction section is disabled outright unless explicitly
// enabled. Validate never returns an error — InvalidConfig is recoverable
// by construction.
func (c *Config) Validate(log *logrus.Logger) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	defaults := DefaultGeneralConfig()

	c.General.Window = positiveOrDefault(log, "window", c.General.Window, defaults.Window)
	c.General.Lag = positiveOrDefault(log, "lag", c.General.Lag, defaults.Lag)
	c.General.MaxCPULimit = positiveOrDefault(log, "max_cpu_limit", c.General.MaxCPULimit, defaults.MaxCPULimit)
	c.General.MinCPULimit = positiveOrDefault(log, "min_cpu_limit", c.General.MinCPULimit, defaults.MinCPULimit)
	c.General.RecoveryTime = positiveOrDefault(log, "recovery_time", c.General.RecoveryTime, defaults.RecoveryTime)

	if c.General.MinCPULimit > c.General.MaxCPULimit {
		log.WithFields(logrus.Fields{
			"min_cpu_limit": c.General.MinCPULimit,
			"max_cpu_limit": c.General.MaxCPULimit,
		}).Warn("min_cpu_limit is greater than max_cpu_limit, using default limits")
		c.General.MinCPULimit = defaults.MinCPULimit
		c.General.MaxCPULimit = defaults.MaxCPULimit
	}

	if c.AlgoSpecific == nil {
		c.AlgoSpecific = AlgoSpecificConfig{}
	}

	if !c.Prediction.Enabled {
		c.Prediction.Enabled = false
		return
	}

	predDefaults := DefaultPredictionConfig()
	c.Prediction.WaitingBeforePredict = positiveOrDefault(log, "waiting_before_predict", c.Prediction.WaitingBeforePredict, predDefaults.WaitingBeforePredict)
	c.Prediction.FrequencyMinutes = positiveOrDefault(log, "frequency_minutes", c.Prediction.FrequencyMinutes, predDefaults.FrequencyMinutes)
	c.Prediction.MinutesToPredict = positiveOrDefault(log, "minutes_to_predict", c.Prediction.MinutesToPredict, predDefaults.MinutesToPredict)
	c.Prediction.TotalPredictiveWindow = positiveOrDefault(log, "total_predictive_window", c.Prediction.TotalPredictiveWindow, predDefaults.TotalPredictiveWindow)
	if c.Prediction.ForecastingModels == "" {
		c.Prediction.ForecastingModels = predDefaults.ForecastingModels
	}
}

// SetParam sets a single tuning-sweep parameter by dotted key, used by
// sim/tuning's grid and random expansion. Recognized prefixes are
// "general.<field>" and "prediction.<field>" for the known scalar fields,
// and "algo.<name>" for any algo_specific_config entry. Returns
// ErrUnknownParameter for anything else.
func (c *Config) SetParam(key string, value float64) error {
	section, field, ok := splitParamKey(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParameter, key)
	}

	switch section {
	case "algo":
		c.AlgoSpecific[field] = value
		return nil
	case "general":
		switch field {
		case "window":
			c.General.Window = int(value)
		case "lag":
			c.General.Lag = int(value)
		case "max_cpu_limit":
			c.General.MaxCPULimit = int(value)
		case "min_cpu_limit":
			c.General.MinCPULimit = int(value)
		case "recovery_time":
			c.General.RecoveryTime = int(value)
		default:
			return fmt.Errorf("%w: %q", ErrUnknownParameter, key)
		}
		return nil
	case "prediction":
		switch field {
		case "waiting_before_predict":
			c.Prediction.WaitingBeforePredict = int(value)
		case "frequency_minutes":
			c.Prediction.FrequencyMinutes = int(value)
		case "minutes_to_predict":
			c.Prediction.MinutesToPredict = int(value)
		case "total_predictive_window":
			c.Prediction.TotalPredictiveWindow = int(value)
		default:
			return fmt.Errorf("%w: %q", ErrUnknownParameter, key)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParameter, key)
	}
}

func splitParamKey(key string) (section, field string, ok bool) {
	for i := 0; i < len(key); i++ {
		if key[i] == '.' {
			return key[:i], key[i+1:], true
		}
	}
	return "", "", false
}

func positiveOrDefault(log *logrus.Logger, key string, value, def int) int {
	if value <= 0 {
		log.WithFields(logrus.Fields{"key": key, "value": value, "default": def}).
			Warn("invalid or missing config value, using default")
		return def
	}
	return value
}
