// Package constants holds compile-time defaults for the engine.
package constants

// DefaultBatchCapacity is both the kernel AIO context size and the
// maximum number of events fetched per dispatch cycle (spec's
// BATCH_CAPACITY). This quantity is drawn from a system-wide pool the
// kernel maintains across all AIO contexts.
const DefaultBatchCapacity = 128
