package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"

	"pustakam/internal/api"
	"pustakam/internal/bookstore"
	"pustakam/internal/config"
	"pustakam/internal/credits"
	"pustakam/internal/logging"
	"pustakam/internal/preflight"
	"pustakam/internal/session"
)

// Daemon is the long-running process that owns the book store and runs
// generation sessions. Exactly one instance may run per data directory,
// enforced with a lock file.
type Daemon struct {
	cfg       *config.Config
	store     *bookstore.Store
	orch      *session.Orchestrator
	gate      *credits.Gate
	logger    *slog.Logger
	logPath   string
	lock      *flock.Flock
	startedAt time.Time
}

// New wires a Daemon from its components.
func New(cfg *config.Config, store *bookstore.Store, orch *session.Orchestrator, gate *credits.Gate, logPath string, logger *slog.Logger) *Daemon {
	return &Daemon{
		cfg:       cfg,
		store:     store,
		orch:      orch,
		gate:      gate,
		logger:    logging.WithComponent(logger, "daemon"),
		logPath:   logPath,
		startedAt: time.Now(),
	}
}

// AcquireLock takes the single-instance lock. It fails fast when another
// daemon already holds it.
func (d *Daemon) AcquireLock() error {
	lock := flock.New(d.cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire daemon lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another pustakamd instance holds %s", d.cfg.LockPath())
	}
	d.lock = lock
	return nil
}

// ReleaseLock releases and removes the single-instance lock.
func (d *Daemon) ReleaseLock() {
	if d.lock == nil {
		return
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("release daemon lock failed", logging.Error(err))
	}
	os.Remove(d.cfg.LockPath())
	d.lock = nil
}

// Close pauses all active sessions so their state persists before exit.
func (d *Daemon) Close() {
	d.orch.Close()
}

// Status is a point-in-time view of the daemon.
type Status struct {
	PID           int
	StartedAt     time.Time
	DatabasePath  string
	SocketPath    string
	LogPath       string
	ActiveBooks   []string
	CreditBalance int64
	CreditsOn     bool
	Checks        []preflight.Check
}

// Status reports daemon health, active sessions, and preflight results.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		PID:          os.Getpid(),
		StartedAt:    d.startedAt,
		DatabasePath: d.cfg.DatabasePath(),
		SocketPath:   d.cfg.SocketPath(),
		LogPath:      d.logPath,
		CreditsOn:    d.cfg.Credits.Enabled,
		Checks:       preflight.Run(ctx, d.cfg, d.store),
	}
	if balance, err := d.gate.Balance(ctx); err == nil {
		status.CreditBalance = balance
	}
	books, err := d.store.ListBooks(ctx)
	if err == nil {
		for _, project := range books {
			if d.orch.Running(project.ID) {
				status.ActiveBooks = append(status.ActiveBooks, project.ID)
			}
		}
	}
	return status
}

// StartGeneration begins or resumes generation for a book.
func (d *Daemon) StartGeneration(ctx context.Context, bookID string) error {
	return d.orch.StartGeneration(ctx, bookID)
}

// PauseGeneration stops the book's active session.
func (d *Daemon) PauseGeneration(bookID string) error {
	return d.orch.Pause(bookID)
}

// RetryModule re-runs one errored module.
func (d *Daemon) RetryModule(ctx context.Context, bookID, moduleID string) error {
	return d.orch.RetryModule(ctx, bookID, moduleID)
}

// RegenerateModule re-runs one completed module.
func (d *Daemon) RegenerateModule(ctx context.Context, bookID, moduleID string) error {
	return d.orch.RegenerateModule(ctx, bookID, moduleID)
}

// BookStatus returns the book's wire form plus whether a session is active.
func (d *Daemon) BookStatus(ctx context.Context, bookID string, withContent bool) (api.Book, error) {
	snap, err := d.orch.Status(ctx, bookID)
	if err != nil {
		return api.Book{}, err
	}
	out := api.FromProject(snap.Project, withContent)
	out.Active = snap.Active
	return out, nil
}

// LogPath returns the daemon log file location, if file logging is enabled.
func (d *Daemon) LogPath() string {
	return d.logPath
}
