package bookstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pustakam/internal/book"
)

// GetBookmark returns the reading position for a book, or nil when none is set.
func (s *Store) GetBookmark(ctx context.Context, bookID string) (*book.Bookmark, error) {
	var bookmark book.Bookmark
	var updatedAt string
	err := s.withRetry(func() error {
		return s.db.QueryRowContext(ctx, `
			SELECT book_id, module_id, position, updated_at
			FROM bookmarks WHERE book_id = ?`, bookID).
			Scan(&bookmark.BookID, &bookmark.ModuleID, &bookmark.Offset, &updatedAt)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get bookmark: %w", err)
	}
	bookmark.UpdatedAt = parseTime(updatedAt)
	return &bookmark, nil
}

// SetBookmark records the reading position. One bookmark per book.
func (s *Store) SetBookmark(ctx context.Context, bookmark book.Bookmark) error {
	if bookmark.BookID == "" || bookmark.ModuleID == "" {
		return errors.New("set bookmark: missing book or module ID")
	}
	return s.withRetry(func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO bookmarks (book_id, module_id, position, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(book_id) DO UPDATE SET
				module_id = excluded.module_id,
				position = excluded.position,
				updated_at = excluded.updated_at`,
			bookmark.BookID, bookmark.ModuleID, bookmark.Offset,
			formatTime(time.Now()))
		return wrapStorage("set bookmark", err)
	})
}

// ClearBookmark removes the reading position for a book.
func (s *Store) ClearBookmark(ctx context.Context, bookID string) error {
	return s.withRetry(func() error {
		_, err := s.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE book_id = ?`, bookID)
		return wrapStorage("clear bookmark", err)
	})
}
