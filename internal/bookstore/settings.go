package bookstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"pustakam/internal/book"
)

// LoadSettings returns the persisted user settings. The second return is
// false when no settings row exists yet; callers fall back to defaults.
func (s *Store) LoadSettings(ctx context.Context) (book.Settings, bool, error) {
	var settings book.Settings
	var keysJSON string
	err := s.withRetry(func() error {
		return s.db.QueryRowContext(ctx,
			`SELECT provider, model, keys FROM settings WHERE id = 1`).
			Scan(&settings.Provider, &settings.Model, &keysJSON)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return book.Settings{}, false, nil
	}
	if err != nil {
		return book.Settings{}, false, fmt.Errorf("load settings: %w", err)
	}
	if keysJSON != "" {
		if err := json.Unmarshal([]byte(keysJSON), &settings.Keys); err != nil {
			return book.Settings{}, false, fmt.Errorf("load settings: decode keys: %w", err)
		}
	}
	return settings, true, nil
}

// SaveSettings persists the user settings as the single settings row.
func (s *Store) SaveSettings(ctx context.Context, settings book.Settings) error {
	keys := settings.Keys
	if keys == nil {
		keys = map[string]string{}
	}
	keysJSON, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("save settings: encode keys: %w", err)
	}
	return s.withRetry(func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO settings (id, provider, model, keys)
			VALUES (1, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				provider = excluded.provider,
				model = excluded.model,
				keys = excluded.keys`,
			settings.Provider, settings.Model, string(keysJSON))
		return wrapStorage("save settings", err)
	})
}
