package reconciler

import (
	"context"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"srvsync/internal/haproxy"
	"srvsync/pkg/logging"
)

// statsEvery controls how many cycles pass between periodic stats logs.
const statsEvery = 60

// StatsProvider is the optional stats source logged periodically while the
// managed service runs.
type StatsProvider interface {
	QueryStats(ctx context.Context) (*haproxy.Stats, error)
}

// Scheduler fires the reconciliation cycle on a fixed period. It is
// single-flight: cycles run back to back on one goroutine and a tick that
// fires while a cycle is still running is skipped, not queued, so two cycles
// can never mutate the cache concurrently.
//
// Any error a cycle returns ends Run; the caller escalates it to process
// termination. Restarting is an external supervisory responsibility.
type Scheduler struct {
	cycle    *Cycle
	interval time.Duration
	stats    StatsProvider

	// trigger accepts out-of-band reconcile requests (template watcher).
	trigger chan struct{}
}

// NewScheduler creates a scheduler firing every interval. stats may be nil.
func NewScheduler(cycle *Cycle, interval time.Duration, stats StatsProvider) *Scheduler {
	return &Scheduler{
		cycle:    cycle,
		interval: interval,
		stats:    stats,
		trigger:  make(chan struct{}, 1),
	}
}

// Trigger requests an immediate reconcile. It never blocks; if a trigger is
// already pending the request coalesces into it.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Run drives the cycle until ctx is cancelled or a cycle fails. A nil return
// means a clean shutdown; any error is fatal to the process.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	watchdog := s.notifyReady()

	logging.Info("Scheduler", "reconciling every %s", s.interval)

	cycles := 0
	for {
		select {
		case <-ctx.Done():
			logging.Info("Scheduler", "shutting down")
			return nil
		case <-ticker.C:
		case <-s.trigger:
			logging.Debug("Scheduler", "out-of-band reconcile triggered")
		}

		if err := s.cycle.Run(ctx); err != nil {
			logging.Error("Scheduler", err, "reconciliation cycle failed")
			return err
		}

		// Single-flight: a tick that fired while the cycle ran is dropped
		// rather than run immediately afterwards.
		select {
		case <-ticker.C:
			logging.Debug("Scheduler", "skipped tick, previous cycle was still running")
		default:
		}

		if watchdog {
			daemon.SdNotify(false, daemon.SdNotifyWatchdog)
		}

		cycles++
		if s.stats != nil && cycles%statsEvery == 0 {
			s.logStats(ctx)
		}
	}
}

// notifyReady tells systemd the daemon is up and reports whether a watchdog
// heartbeat is expected. Outside systemd both calls are no-ops.
func (s *Scheduler) notifyReady() bool {
	if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		logging.Warn("Scheduler", "sd_notify failed: %v", err)
	} else if sent {
		logging.Debug("Scheduler", "notified systemd of readiness")
	}

	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		logging.Warn("Scheduler", "cannot determine watchdog interval: %v", err)
		return false
	}
	return interval > 0
}

// logStats queries the managed service's statistics and logs a summary.
func (s *Scheduler) logStats(ctx context.Context) {
	queryCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	stats, err := s.stats.QueryStats(queryCtx)
	if err != nil {
		logging.Debug("Scheduler", "stats query failed: %v", err)
		return
	}

	up := 0
	for _, row := range stats.Summary() {
		if row.Status == "UP" || row.Status == "OPEN" {
			up++
		}
	}
	logging.Info("Scheduler", "service stats: %d rows, %d up", len(stats.Rows), up)
}
