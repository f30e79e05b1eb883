package bookstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pustakam/internal/book"
	"pustakam/internal/logging"
)

// ErrNotFound is returned when a book does not exist in the library.
var ErrNotFound = errors.New("book not found")

// ListBooks returns every book with its modules, newest first.
func (s *Store) ListBooks(ctx context.Context) ([]*book.Project, error) {
	var projects []*book.Project
	err := s.withRetry(func() error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, goal, title, description, created_at, updated_at
			FROM books ORDER BY created_at DESC`)
		if err != nil {
			return fmt.Errorf("list books: %w", err)
		}
		defer rows.Close()

		projects = projects[:0]
		for rows.Next() {
			project, err := scanBook(rows)
			if err != nil {
				return err
			}
			projects = append(projects, project)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	for _, project := range projects {
		modules, err := s.loadModules(ctx, project.ID)
		if err != nil {
			return nil, err
		}
		project.Modules = modules
	}
	return projects, nil
}

// GetBook returns one book with its modules, or ErrNotFound.
func (s *Store) GetBook(ctx context.Context, id string) (*book.Project, error) {
	var project *book.Project
	err := s.withRetry(func() error {
		row := s.db.QueryRowContext(ctx, `
			SELECT id, goal, title, description, created_at, updated_at
			FROM books WHERE id = ?`, id)
		var scanErr error
		project, scanErr = scanBook(row)
		return scanErr
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	modules, err := s.loadModules(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	project.Modules = modules
	return project, nil
}

// SaveBook upserts a book and replaces its module rows in one transaction.
// Saves are last-writer-wins; the most recent full snapshot of the project
// is what persists.
func (s *Store) SaveBook(ctx context.Context, project *book.Project) error {
	if project == nil || project.ID == "" {
		return errors.New("save book: missing book ID")
	}
	project.SortModules()
	now := time.Now().UTC()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = now

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO books (id, goal, title, description, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				goal = excluded.goal,
				title = excluded.title,
				description = excluded.description,
				updated_at = excluded.updated_at`,
			project.ID, project.Goal, project.Title, project.Description,
			formatTime(project.CreatedAt), formatTime(project.UpdatedAt)); err != nil {
			return wrapStorage("save book", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM modules WHERE book_id = ?`, project.ID); err != nil {
			return wrapStorage("save book", err)
		}
		for i := range project.Modules {
			module := &project.Modules[i]
			if module.CreatedAt.IsZero() {
				module.CreatedAt = now
			}
			if module.UpdatedAt.IsZero() {
				module.UpdatedAt = now
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO modules
					(id, book_id, title, summary, order_index, status,
					 content, error_message, retry_count, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				module.ID, project.ID, module.Title, module.Summary,
				module.OrderIndex, string(module.Status), module.Content,
				module.ErrorMessage, module.RetryCount,
				formatTime(module.CreatedAt), formatTime(module.UpdatedAt)); err != nil {
				return wrapStorage("save book", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Debug("book saved",
		logging.String(logging.FieldBookID, project.ID),
		logging.Int("modules", len(project.Modules)))
	return nil
}

// DeleteBook removes a book; module rows and bookmarks cascade.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	var affected int64
	err := s.withRetry(func() error {
		result, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
		if err != nil {
			return wrapStorage("delete book", err)
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.logger.Info("book deleted", logging.String(logging.FieldBookID, id))
	return nil
}

// ResetInFlight flips modules stranded in the generating state back to
// pending. Run at daemon startup so an interrupted run resumes cleanly.
func (s *Store) ResetInFlight(ctx context.Context) (int64, error) {
	var affected int64
	err := s.withRetry(func() error {
		result, err := s.db.ExecContext(ctx, `
			UPDATE modules SET status = ?, updated_at = ?
			WHERE status = ?`,
			string(book.ModulePending), formatTime(time.Now()), string(book.ModuleGenerating))
		if err != nil {
			return wrapStorage("reset in-flight", err)
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		s.logger.Info("reset interrupted modules to pending", logging.Int64("count", affected))
	}
	return affected, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (*book.Project, error) {
	var project book.Project
	var createdAt, updatedAt string
	if err := row.Scan(&project.ID, &project.Goal, &project.Title,
		&project.Description, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	project.CreatedAt = parseTime(createdAt)
	project.UpdatedAt = parseTime(updatedAt)
	return &project, nil
}

func (s *Store) loadModules(ctx context.Context, bookID string) ([]book.Module, error) {
	var modules []book.Module
	err := s.withRetry(func() error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, title, summary, order_index, status,
			       content, error_message, retry_count, created_at, updated_at
			FROM modules WHERE book_id = ? ORDER BY order_index`, bookID)
		if err != nil {
			return fmt.Errorf("load modules: %w", err)
		}
		defer rows.Close()

		modules = modules[:0]
		for rows.Next() {
			var module book.Module
			var status, createdAt, updatedAt string
			if err := rows.Scan(&module.ID, &module.Title, &module.Summary,
				&module.OrderIndex, &status, &module.Content,
				&module.ErrorMessage, &module.RetryCount,
				&createdAt, &updatedAt); err != nil {
				return fmt.Errorf("load modules: %w", err)
			}
			module.Status, _ = book.ParseModuleStatus(status)
			module.CreatedAt = parseTime(createdAt)
			module.UpdatedAt = parseTime(updatedAt)
			modules = append(modules, module)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return modules, nil
}
