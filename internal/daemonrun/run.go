// Package daemonrun wires and runs the pustakamd process: logger, store,
// credit gate, orchestrator, and IPC server, torn down in order on shutdown.
package daemonrun

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"pustakam/internal/bookstore"
	"pustakam/internal/config"
	"pustakam/internal/credits"
	"pustakam/internal/daemon"
	"pustakam/internal/ipc"
	"pustakam/internal/logging"
	"pustakam/internal/preflight"
	"pustakam/internal/session"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the pustakam daemon runtime loop and blocks until the context
// is canceled or a termination signal arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	logPath := cfg.LogFilePath()
	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Development:      opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	pidPath := filepath.Join(cfg.Paths.DataDir, "pustakam.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := bookstore.Open(cfg.DatabasePath(), logger)
	if err != nil {
		logger.Error("open book store", logging.Error(err))
		return err
	}
	defer store.Close()

	// Modules stranded mid-generation by a previous crash resume as pending.
	if _, err := store.ResetInFlight(signalCtx); err != nil {
		logger.Error("reset in-flight modules", logging.Error(err))
		return err
	}

	gate := credits.New(store, cfg.Credits, logger)
	if err := gate.EnsureSeeded(signalCtx); err != nil {
		logger.Error("seed credit ledger", logging.Error(err))
		return err
	}

	orch := session.New(store, cfg, gate, session.DefaultAdapterFactory(store, cfg), logger)

	d := daemon.New(cfg, store, orch, gate, logPath, logger)
	if err := d.AcquireLock(); err != nil {
		return err
	}
	defer d.ReleaseLock()
	defer d.Close()

	checks := preflight.Run(signalCtx, cfg, store)
	for _, check := range checks {
		if !check.OK {
			logger.Warn("preflight check failed",
				logging.String("check", check.Name),
				logging.String("detail", check.Detail))
		}
	}

	ipcServer, err := ipc.NewServer(signalCtx, cfg.SocketPath(), d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	logger.Info("pustakam daemon ready",
		logging.String("socket", cfg.SocketPath()),
		logging.String("database", cfg.DatabasePath()),
		logging.Bool("healthy", preflight.Healthy(checks)))

	<-signalCtx.Done()
	logger.Info("pustakam daemon shutting down")
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
