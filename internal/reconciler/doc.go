// Package reconciler drives the sync loop that keeps the managed service's
// configuration aligned with service discovery.
//
// One reconciliation cycle runs in strict order: resolve every discovery key
// (per-key failures are absorbed), render the template against the cache,
// compare the result with the persisted configuration, and on a material
// change persist the file and reload the managed service if it is running.
// A cycle that cannot persist or reload fails the process; a process manager
// above srvsync is expected to restart it.
//
// The Scheduler fires cycles on a fixed period and is single-flight: cycles
// execute back to back on a single goroutine, and ticks that fire while a
// cycle is running are skipped. The TemplateWatcher feeds out-of-band
// reconcile requests into the same loop when the template file changes.
package reconciler
