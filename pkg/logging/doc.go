// Package logging provides the structured logging system for srvsync.
//
// It is a thin leveled wrapper around Go's standard slog package. Every log
// entry carries a subsystem identifier so that log output from the different
// stages of the sync pipeline (Resolver, Template, Diff, HAProxy, Scheduler)
// can be filtered and correlated.
//
// Usage:
//
//	logging.Init(logging.LevelInfo, os.Stdout)
//
//	logging.Info("Bootstrap", "starting up")
//	logging.Debug("Resolver", "resolved %s to %d endpoints", key, n)
//	logging.Error("HAProxy", err, "reload failed")
package logging
