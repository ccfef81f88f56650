package sim

import "errors"

// Fatal error kinds. These abort a single simulation run; the tuning
// orchestrator catches them per-worker and records them on Result.Err
// rather than aborting the sweep (see sim/tuning).
var (
	// ErrMissingConfig indicates the metadata JSON was absent or malformed.
	ErrMissingConfig = errors.New("vasim: missing or malformed configuration")

	// ErrNoTraceData indicates zero matching CSV files or zero valid rows.
	ErrNoTraceData = errors.New("vasim: no trace data")

	// ErrUnknownAlgorithm indicates an unrecognized recommender name.
	ErrUnknownAlgorithm = errors.New("vasim: unknown recommender algorithm")

	// ErrUnknownParameter indicates a tuning parameter name that does not
	// exist in any section of the base configuration.
	ErrUnknownParameter = errors.New("vasim: unknown tuning parameter")
)
