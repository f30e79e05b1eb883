package bookstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"pustakam/internal/logging"
	"pustakam/internal/services"
)

const (
	busyTimeout = 5 * time.Second
	busyRetries = 5
)

// Store is the durable book library backed by a single SQLite database.
// All methods are safe for concurrent use.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the database at path and applies the
// schema. The parent directory is created when missing.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.WithComponent(logger, "bookstore")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, wrapStorage("open", fmt.Errorf("create data directory: %w", err))
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)",
		path, busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Serializing through one connection avoids SQLITE_BUSY between the
	// orchestrator goroutine and RPC handlers.
	db.SetMaxOpenConns(1)

	store := &Store{db: db, logger: logger}
	if err := store.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	logger.Debug("database opened", logging.String("path", path))
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// withRetry runs fn, retrying with linear backoff while the database reports
// lock contention.
func (s *Store) withRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < busyRetries; attempt++ {
		err = fn()
		if err == nil || !isBusy(err) {
			return err
		}
		time.Sleep(time.Duration(attempt+1) * 50 * time.Millisecond)
	}
	return err
}

// withTx runs fn inside a transaction, rolling back on error.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return s.withRetry(func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		if err := fn(tx); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return wrapStorage("commit", err)
		}
		return nil
	})
}

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// wrapStorage maps out-of-space failures onto the storage-full sentinel so
// callers can surface the free-disk-space hint.
func wrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, syscall.ENOSPC) || strings.Contains(err.Error(), "database or disk is full") {
		return services.Wrap(services.ErrStorageFull, "bookstore", op, "disk full", err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

const timeFormat = time.RFC3339Nano

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now().UTC()
	}
	return t.UTC().Format(timeFormat)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeFormat, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
