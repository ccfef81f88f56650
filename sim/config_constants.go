package sim

// Default values for general_config, the values Config.Validate falls
// back to when a key is missing or invalid.
const (
	DefaultWindow       = 60 // minutes
	DefaultLag          = 15 // minutes
	DefaultMaxCPULimit  = 20
	DefaultMinCPULimit  = 1
	DefaultRecoveryTime = 15 // minutes
)

// Default values for prediction_config, used only when prediction is enabled.
const (
	DefaultWaitingBeforePredict  = 1440 // minutes
	DefaultFrequencyMinutes      = 1
	DefaultForecastingModel      = "naive"
	DefaultMinutesToPredict      = 10
	DefaultTotalPredictiveWindow = 60
)

// Default values for algo_specific_config, applied by each recommender
// variant when the key is absent (not enforced centrally by ConfigStore,
// since the set of valid keys is recommender-defined).
const (
	DefaultAddend     = 2.0
	DefaultMultiplier = 1.5
)
