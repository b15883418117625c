// Package haproxy controls the managed HAProxy process: configuration
// verification, daemon start, graceful reload, and the stats socket.
package haproxy

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"srvsync/pkg/logging"
)

// State describes whether the controller has started the managed process.
type State string

const (
	// StateNotStarted means the managed process has not been started by this
	// controller. Configuration may still be written; reloads are skipped.
	StateNotStarted State = "not-started"

	// StateRunning means the managed process was started and reloads are
	// issued on configuration changes.
	StateRunning State = "running"
)

// Config configures a Controller.
type Config struct {
	// Binary is the HAProxy executable. Defaults to "haproxy".
	Binary string

	// ConfigPath is the rendered configuration file the process runs with.
	ConfigPath string

	// PIDFile is where the daemonized process writes its PIDs; reloads hand
	// these to the new process for a graceful takeover.
	PIDFile string

	// Socket is the stats/admin unix socket path.
	Socket string
}

// Controller drives one HAProxy process. All operations run the binary
// under the caller's context; a cancelled or expired context kills the
// spawned command.
type Controller struct {
	mu     sync.Mutex
	config Config
	state  State
}

// NewController creates a controller in the not-started state.
func NewController(config Config) *Controller {
	if config.Binary == "" {
		config.Binary = "haproxy"
	}
	return &Controller{
		config: config,
		state:  StateNotStarted,
	}
}

// State returns the tracked process state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Verify checks the configuration file's syntax with the binary's check
// mode, without touching the running process.
func (c *Controller) Verify(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, c.config.Binary, "-c", "-f", c.config.ConfigPath)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("configuration check failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	logging.Debug("HAProxy", "configuration check passed for %s", c.config.ConfigPath)
	return nil
}

// Start launches the process as a daemon. On success the controller
// transitions to StateRunning.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateRunning {
		return nil
	}

	cmd := exec.CommandContext(ctx, c.config.Binary, "-D", "-f", c.config.ConfigPath, "-p", c.config.PIDFile)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("start failed: %w: %s", err, strings.TrimSpace(string(output)))
	}

	c.state = StateRunning
	logging.Info("HAProxy", "started with config %s", c.config.ConfigPath)
	return nil
}

// Reload performs a graceful reload: a new process takes over the listening
// sockets and the old PIDs finish their connections (-sf). It returns the
// command that was run, for logging.
func (c *Controller) Reload(ctx context.Context) (string, error) {
	pids, err := c.readPIDs()
	if err != nil {
		return "", fmt.Errorf("cannot read pid file %s: %w", c.config.PIDFile, err)
	}

	args := []string{"-D", "-f", c.config.ConfigPath, "-p", c.config.PIDFile, "-sf"}
	args = append(args, pids...)

	command := c.config.Binary + " " + strings.Join(args, " ")
	cmd := exec.CommandContext(ctx, c.config.Binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return command, fmt.Errorf("reload failed: %w: %s", err, strings.TrimSpace(string(output)))
	}

	logging.Info("HAProxy", "reloaded: %s", command)
	return command, nil
}

// readPIDs parses the PID file, one PID per line.
func (c *Controller) readPIDs() ([]string, error) {
	data, err := os.ReadFile(c.config.PIDFile)
	if err != nil {
		return nil, err
	}

	var pids []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			pids = append(pids, line)
		}
	}
	if len(pids) == 0 {
		return nil, fmt.Errorf("pid file %s is empty", c.config.PIDFile)
	}
	return pids, nil
}
