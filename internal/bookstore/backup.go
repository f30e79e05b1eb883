package bookstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"pustakam/internal/book"
	"pustakam/internal/logging"
	"pustakam/internal/services"
)

// ImportMode controls how an imported backup combines with the local library.
type ImportMode string

const (
	// ImportMerge adds books that do not exist locally and keeps everything
	// already in the library, including local settings and API keys.
	ImportMerge ImportMode = "merge"
	// ImportReplace discards the local library and adopts the backup wholesale.
	ImportReplace ImportMode = "replace"
)

// ParseImportMode converts a string into an ImportMode.
func ParseImportMode(value string) (ImportMode, bool) {
	switch ImportMode(strings.ToLower(strings.TrimSpace(value))) {
	case ImportMerge:
		return ImportMerge, true
	case ImportReplace:
		return ImportReplace, true
	default:
		return "", false
	}
}

const backupVersion = "1"

type backupEnvelope struct {
	Version    string          `json:"version"`
	ExportDate time.Time       `json:"exportDate"`
	Settings   *backupSettings `json:"settings,omitempty"`
	Books      []backupBook    `json:"books"`
}

type backupSettings struct {
	Provider string            `json:"provider"`
	Model    string            `json:"model"`
	Keys     map[string]string `json:"keys,omitempty"`
}

type backupBook struct {
	ID          string         `json:"id"`
	Goal        string         `json:"goal"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Modules     []backupModule `json:"modules"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type backupModule struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Summary      string    `json:"summary,omitempty"`
	OrderIndex   int       `json:"orderIndex"`
	Status       string    `json:"status"`
	Content      string    `json:"content,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	RetryCount   int       `json:"retryCount,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ImportResult summarizes what an import changed.
type ImportResult struct {
	BooksImported int
	BooksSkipped  int
	SettingsTaken bool
}

// ExportAll serializes the whole library (books, modules, settings) into a
// portable JSON backup.
func (s *Store) ExportAll(ctx context.Context) ([]byte, error) {
	projects, err := s.ListBooks(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrExportFailed, "bookstore", "export", "read library", err)
	}

	envelope := backupEnvelope{
		Version:    backupVersion,
		ExportDate: time.Now().UTC(),
		Books:      make([]backupBook, 0, len(projects)),
	}
	if settings, ok, err := s.LoadSettings(ctx); err != nil {
		return nil, services.Wrap(services.ErrExportFailed, "bookstore", "export", "read settings", err)
	} else if ok {
		envelope.Settings = &backupSettings{
			Provider: settings.Provider,
			Model:    settings.Model,
			Keys:     settings.Keys,
		}
	}
	for _, project := range projects {
		envelope.Books = append(envelope.Books, toBackupBook(project))
	}

	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, services.Wrap(services.ErrExportFailed, "bookstore", "export", "encode backup", err)
	}
	return data, nil
}

// ImportAll restores a backup produced by ExportAll. Merge keeps local data
// and adds unknown books; replace adopts the backup wholesale.
func (s *Store) ImportAll(ctx context.Context, data []byte, mode ImportMode) (ImportResult, error) {
	var result ImportResult

	var envelope backupEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return result, services.Wrap(services.ErrImportFailed, "bookstore", "import", "backup is not valid JSON", err)
	}
	if envelope.Version != backupVersion {
		return result, services.Wrap(services.ErrImportFailed, "bookstore", "import",
			fmt.Sprintf("unsupported backup version %q", envelope.Version), nil)
	}

	existing := map[string]struct{}{}
	if mode == ImportReplace {
		current, err := s.ListBooks(ctx)
		if err != nil {
			return result, services.Wrap(services.ErrImportFailed, "bookstore", "import", "read library", err)
		}
		for _, project := range current {
			if err := s.DeleteBook(ctx, project.ID); err != nil {
				return result, services.Wrap(services.ErrImportFailed, "bookstore", "import", "clear library", err)
			}
		}
	} else {
		current, err := s.ListBooks(ctx)
		if err != nil {
			return result, services.Wrap(services.ErrImportFailed, "bookstore", "import", "read library", err)
		}
		for _, project := range current {
			existing[project.ID] = struct{}{}
		}
	}

	for i := range envelope.Books {
		entry := &envelope.Books[i]
		if entry.ID == "" {
			return result, services.Wrap(services.ErrImportFailed, "bookstore", "import", "backup contains a book without an ID", nil)
		}
		if _, dup := existing[entry.ID]; dup {
			result.BooksSkipped++
			continue
		}
		project := fromBackupBook(entry)
		if err := s.SaveBook(ctx, project); err != nil {
			return result, services.Wrap(services.ErrImportFailed, "bookstore", "import", "save book "+entry.ID, err)
		}
		result.BooksImported++
	}

	if envelope.Settings != nil {
		_, hasLocal, err := s.LoadSettings(ctx)
		if err != nil {
			return result, services.Wrap(services.ErrImportFailed, "bookstore", "import", "read settings", err)
		}
		// Merge never clobbers local settings; API keys in particular
		// stay local unless the user asked for a full replace.
		if mode == ImportReplace || !hasLocal {
			imported := book.Settings{
				Provider: envelope.Settings.Provider,
				Model:    envelope.Settings.Model,
				Keys:     envelope.Settings.Keys,
			}
			if err := s.SaveSettings(ctx, imported); err != nil {
				return result, services.Wrap(services.ErrImportFailed, "bookstore", "import", "save settings", err)
			}
			result.SettingsTaken = true
		}
	}

	s.logger.Info("backup imported",
		logging.String("mode", string(mode)),
		logging.Int("imported", result.BooksImported),
		logging.Int("skipped", result.BooksSkipped))
	return result, nil
}

func toBackupBook(project *book.Project) backupBook {
	entry := backupBook{
		ID:          project.ID,
		Goal:        project.Goal,
		Title:       project.Title,
		Description: project.Description,
		Modules:     make([]backupModule, 0, len(project.Modules)),
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
	for _, module := range project.Modules {
		entry.Modules = append(entry.Modules, backupModule{
			ID:           module.ID,
			Title:        module.Title,
			Summary:      module.Summary,
			OrderIndex:   module.OrderIndex,
			Status:       string(module.Status),
			Content:      module.Content,
			ErrorMessage: module.ErrorMessage,
			RetryCount:   module.RetryCount,
			CreatedAt:    module.CreatedAt,
			UpdatedAt:    module.UpdatedAt,
		})
	}
	return entry
}

func fromBackupBook(entry *backupBook) *book.Project {
	project := &book.Project{
		ID:          entry.ID,
		Goal:        entry.Goal,
		Title:       entry.Title,
		Description: entry.Description,
		CreatedAt:   entry.CreatedAt,
		UpdatedAt:   entry.UpdatedAt,
	}
	for _, m := range entry.Modules {
		status, ok := book.ParseModuleStatus(m.Status)
		if !ok {
			status = book.ModulePending
		}
		// An imported in-flight module has no live session behind it.
		if status == book.ModuleGenerating {
			status = book.ModulePending
		}
		project.Modules = append(project.Modules, book.Module{
			ID:           m.ID,
			Title:        m.Title,
			Summary:      m.Summary,
			OrderIndex:   m.OrderIndex,
			Status:       status,
			Content:      m.Content,
			ErrorMessage: m.ErrorMessage,
			RetryCount:   m.RetryCount,
			CreatedAt:    m.CreatedAt,
			UpdatedAt:    m.UpdatedAt,
		})
	}
	project.SortModules()
	return project
}
