// Package daemonctl launches and stops the pustakamd process on behalf of
// the CLI.
package daemonctl

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"pustakam/internal/ipc"
)

// LaunchOptions controls daemon process launch behavior.
type LaunchOptions struct {
	ConfigPath string
	LogLevel   string
}

// StartState reports how EnsureStarted resolved.
type StartState string

const (
	StartStateStarted        StartState = "started"
	StartStateAlreadyRunning StartState = "already_running"
)

// StartResult captures daemon start orchestration state.
type StartResult struct {
	State StartState
	PID   int
}

const pollInterval = 200 * time.Millisecond

// DaemonExecutable resolves the pustakamd binary: first next to the current
// executable, then on PATH.
func DaemonExecutable() (string, error) {
	self, err := os.Executable()
	if err == nil {
		sibling := filepath.Join(filepath.Dir(self), "pustakamd")
		if info, statErr := os.Stat(sibling); statErr == nil && !info.IsDir() {
			return sibling, nil
		}
	}
	path, err := exec.LookPath("pustakamd")
	if err != nil {
		return "", fmt.Errorf("pustakamd not found next to %q or on PATH: %w", self, err)
	}
	return path, nil
}

// Launch starts a detached pustakamd process.
func Launch(executablePath string, opts LaunchOptions) error {
	if strings.TrimSpace(executablePath) == "" {
		return fmt.Errorf("resolve executable: executable path is empty")
	}

	var args []string
	if cfg := strings.TrimSpace(opts.ConfigPath); cfg != "" {
		args = append(args, "-config", cfg)
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		args = append(args, "-log-level", level)
	}

	proc := exec.Command(executablePath, args...)
	if err := proc.Start(); err != nil {
		return fmt.Errorf("launch daemon: %w", err)
	}
	return proc.Process.Release()
}

// WaitForClient waits for IPC socket availability and returns a connected
// client.
func WaitForClient(socketPath string, timeout time.Duration) (*ipc.Client, error) {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		client, err := ipc.Dial(socketPath)
		if err == nil {
			return client, nil
		}
		lastErr = err
		time.Sleep(pollInterval)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("timeout waiting for daemon")
	}
	return nil, fmt.Errorf("daemon failed to start: %w", lastErr)
}

// EnsureStarted makes sure a daemon is serving the socket, launching one when
// none answers.
func EnsureStarted(socketPath, executablePath string, opts LaunchOptions, waitTimeout time.Duration) (StartResult, error) {
	if client, err := ipc.Dial(socketPath); err == nil {
		defer client.Close()
		ping, pingErr := client.Ping()
		if pingErr == nil {
			return StartResult{State: StartStateAlreadyRunning, PID: ping.PID}, nil
		}
	}

	if err := Launch(executablePath, opts); err != nil {
		return StartResult{}, err
	}
	client, err := WaitForClient(socketPath, waitTimeout)
	if err != nil {
		return StartResult{}, err
	}
	defer client.Close()

	ping, err := client.Ping()
	if err != nil {
		return StartResult{}, fmt.Errorf("daemon started but did not answer: %w", err)
	}
	return StartResult{State: StartStateStarted, PID: ping.PID}, nil
}

// StopAndWait signals the daemon with SIGTERM and waits for its socket to
// disappear. Returns false when no daemon was running.
func StopAndWait(socketPath string, timeout time.Duration) (bool, error) {
	running, pid, err := ProcessInfo(socketPath)
	if err != nil {
		return false, err
	}
	if !running {
		return false, nil
	}
	if pid <= 0 {
		return true, fmt.Errorf("daemon is reachable but did not report a pid")
	}
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		return true, fmt.Errorf("signal daemon pid %d: %w", pid, err)
	}
	return true, waitForShutdown(socketPath, timeout)
}

func waitForShutdown(socketPath string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		client, err := ipc.Dial(socketPath)
		if err != nil {
			// Socket removed or no longer accepting; the daemon is down.
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ECONNREFUSED) {
				return nil
			}
		} else {
			_ = client.Close()
		}
		time.Sleep(pollInterval)
	}
	return fmt.Errorf("daemon did not stop within %s", timeout)
}

// ProcessInfo reports whether a daemon answers on the socket and its PID.
func ProcessInfo(socketPath string) (bool, int, error) {
	client, err := ipc.Dial(socketPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ECONNREFUSED) {
			return false, 0, nil
		}
		return false, 0, err
	}
	defer client.Close()
	ping, err := client.Ping()
	if err != nil {
		return true, 0, err
	}
	return true, ping.PID, nil
}
