// Package sim provides the core replay engine for the VASIM vertical
// autoscaling simulator.
//
// # Reading Guide
//
// Start with these files to understand the replay kernel:
//   - observation.go: the Observation/Trace data model and CSV loading
//   - provider.go: ClusterStateProvider, sliding windows, clamping, time advance
//   - recommender.go: the Recommender contract and its two built-in variants
//   - scaler.go: InfraScaler, the cooldown/clamp state machine
//   - simulator.go: the replay loop tying the above together
//
// # Architecture
//
// sim owns the single-trace replay kernel; sim/tuning wraps it with a
// parallel parameter-sweep orchestrator that runs many independent
// Simulator instances, one per candidate Config, in isolated workspace
// directories.
//
// # Key Interfaces
//
// The one true extension point is Recommender: a pure function from a
// window of Observations to an optional new CPU limit. Everything else
// (Provider, InfraScaler, Simulator) is a single concrete type — there is
// no runtime plugin registry, by design (see DESIGN.md).
package sim
