package bookstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pustakam/internal/logging"
)

// CreditEntry is one row of the append-only credit ledger. Positive deltas
// are grants, negative deltas are debits.
type CreditEntry struct {
	ID        int64
	BookID    string
	Delta     int
	Reason    string
	CreatedAt time.Time
}

// CreditBalance sums the ledger.
func (s *Store) CreditBalance(ctx context.Context) (int, error) {
	var balance int
	err := s.withRetry(func() error {
		return s.db.QueryRowContext(ctx,
			`SELECT COALESCE(SUM(delta), 0) FROM credit_ledger`).Scan(&balance)
	})
	if err != nil {
		return 0, fmt.Errorf("credit balance: %w", err)
	}
	return balance, nil
}

// AddCreditEntry appends one ledger row.
func (s *Store) AddCreditEntry(ctx context.Context, bookID string, delta int, reason string) error {
	if reason == "" {
		return errors.New("add credit entry: missing reason")
	}
	err := s.withRetry(func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO credit_ledger (book_id, delta, reason, created_at)
			VALUES (?, ?, ?, ?)`,
			bookID, delta, reason, formatTime(time.Now()))
		return wrapStorage("add credit entry", err)
	})
	if err != nil {
		return err
	}
	s.logger.Debug("credit entry recorded",
		logging.String(logging.FieldBookID, bookID),
		logging.Int("delta", delta),
		logging.String("reason", reason))
	return nil
}

// HasCreditEntry reports whether any ledger row references the book. Used to
// make the per-book charge idempotent across restarts.
func (s *Store) HasCreditEntry(ctx context.Context, bookID string) (bool, error) {
	var count int
	err := s.withRetry(func() error {
		return s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM credit_ledger WHERE book_id = ?`, bookID).Scan(&count)
	})
	if err != nil {
		return false, fmt.Errorf("has credit entry: %w", err)
	}
	return count > 0, nil
}

// CreditHistory returns ledger rows, newest first.
func (s *Store) CreditHistory(ctx context.Context, limit int) ([]CreditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []CreditEntry
	err := s.withRetry(func() error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, book_id, delta, reason, created_at
			FROM credit_ledger ORDER BY id DESC LIMIT ?`, limit)
		if err != nil {
			return fmt.Errorf("credit history: %w", err)
		}
		defer rows.Close()

		entries = entries[:0]
		for rows.Next() {
			var entry CreditEntry
			var createdAt string
			if err := rows.Scan(&entry.ID, &entry.BookID, &entry.Delta,
				&entry.Reason, &createdAt); err != nil {
				return fmt.Errorf("credit history: %w", err)
			}
			entry.CreatedAt = parseTime(createdAt)
			entries = append(entries, entry)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
