package api

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pustakam/internal/book"
	"pustakam/internal/bookstore"
	"pustakam/internal/config"
	"pustakam/internal/export"
	"pustakam/internal/logging"
	"pustakam/internal/planner"
	"pustakam/internal/provider"
	"pustakam/internal/services"
	"pustakam/internal/session"
)

// Service implements the library workflows that operate directly on the
// store: book creation and management, export, backup, settings, bookmarks.
// Generation itself runs in the daemon; see the ipc package.
type Service struct {
	cfg        *config.Config
	store      *bookstore.Store
	newAdapter session.AdapterFactory
	logger     *slog.Logger
}

// NewService creates a Service.
func NewService(cfg *config.Config, store *bookstore.Store, logger *slog.Logger) *Service {
	return &Service{
		cfg:        cfg,
		store:      store,
		newAdapter: session.DefaultAdapterFactory(store, cfg),
		logger:     logging.WithComponent(logger, "api"),
	}
}

// CreateBook plans a roadmap for the goal and persists the draft book.
// The audience hint is optional and only shapes the roadmap prompt.
// Nothing is stored when planning fails.
func (s *Service) CreateBook(ctx context.Context, goal, audienceHint string) (Book, error) {
	adapter, err := s.newAdapter(ctx)
	if err != nil {
		return Book{}, err
	}
	project, err := planner.New(adapter, s.logger).Plan(ctx, goal, audienceHint)
	if err != nil {
		return Book{}, err
	}
	if err := s.store.SaveBook(ctx, project); err != nil {
		return Book{}, err
	}
	return FromProject(project, false), nil
}

// ListBooks returns all books without module content.
func (s *Service) ListBooks(ctx context.Context) ([]Book, error) {
	projects, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Book, 0, len(projects))
	for _, project := range projects {
		out = append(out, FromProject(project, false))
	}
	return out, nil
}

// GetBook returns one book, optionally with full module content.
func (s *Service) GetBook(ctx context.Context, id string, withContent bool) (Book, error) {
	project, err := s.store.GetBook(ctx, id)
	if err != nil {
		return Book{}, err
	}
	return FromProject(project, withContent), nil
}

// DeleteBook removes a book from the library.
func (s *Service) DeleteBook(ctx context.Context, id string) error {
	return s.store.DeleteBook(ctx, id)
}

// ExportBook renders the book to the export directory and returns the path.
func (s *Service) ExportBook(ctx context.Context, id string, format export.Format) (string, error) {
	project, err := s.store.GetBook(ctx, id)
	if err != nil {
		return "", err
	}
	return export.New(s.cfg.Paths.ExportDir, s.logger).Export(project, format)
}

// BackupExport writes a full library backup. An empty path defaults to a
// timestamped file in the export directory.
func (s *Service) BackupExport(ctx context.Context, path string) (string, error) {
	data, err := s.store.ExportAll(ctx)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(path) == "" {
		path = filepath.Join(s.cfg.Paths.ExportDir,
			fmt.Sprintf("pustakam-backup-%s.json", time.Now().Format("20060102-150405")))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", services.Wrap(services.ErrExportFailed, "api", "backup", "create backup directory", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", services.Wrap(services.ErrExportFailed, "api", "backup", "write backup", err)
	}
	s.logger.Info("backup written", logging.String("path", path), logging.Int("bytes", len(data)))
	return path, nil
}

// BackupImport restores a backup file into the library.
func (s *Service) BackupImport(ctx context.Context, path string, mode bookstore.ImportMode) (bookstore.ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return bookstore.ImportResult{}, services.Wrap(services.ErrImportFailed, "api", "import", "read backup", err)
	}
	return s.store.ImportAll(ctx, data, mode)
}

// GetSettings returns the masked settings view, applying defaults when no
// settings were saved yet.
func (s *Service) GetSettings(ctx context.Context) (Settings, error) {
	settings, err := s.loadSettings(ctx)
	if err != nil {
		return Settings{}, err
	}
	return FromSettings(settings), nil
}

// UpdateSettings applies the non-empty fields and persists the result. The
// provider/model pairing invariant is enforced before saving: a model that
// does not belong to the selected provider is replaced with that provider's
// default.
func (s *Service) UpdateSettings(ctx context.Context, providerName, model string) (Settings, error) {
	settings, err := s.loadSettings(ctx)
	if err != nil {
		return Settings{}, err
	}
	if trimmed := strings.TrimSpace(providerName); trimmed != "" {
		name, ok := provider.ParseName(trimmed)
		if !ok {
			return Settings{}, services.Wrap(services.ErrInvalidState, "api", "settings",
				fmt.Sprintf("unknown provider %q", trimmed), nil)
		}
		if string(name) != settings.Provider {
			settings.Provider = string(name)
			// Provider switch invalidates the old model selection.
			settings.Model = ""
		}
	}
	if trimmed := strings.TrimSpace(model); trimmed != "" {
		settings.Model = trimmed
	}
	provider.NormalizeSettings(&settings)
	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return Settings{}, err
	}
	return FromSettings(settings), nil
}

// SetAPIKey stores the API key for one provider.
func (s *Service) SetAPIKey(ctx context.Context, providerName, key string) error {
	name, ok := provider.ParseName(providerName)
	if !ok {
		return services.Wrap(services.ErrInvalidState, "api", "settings",
			fmt.Sprintf("unknown provider %q", providerName), nil)
	}
	settings, err := s.loadSettings(ctx)
	if err != nil {
		return err
	}
	settings.SetKey(string(name), key)
	return s.store.SaveSettings(ctx, settings)
}

func (s *Service) loadSettings(ctx context.Context) (book.Settings, error) {
	settings, found, err := s.store.LoadSettings(ctx)
	if err != nil {
		return book.Settings{}, err
	}
	if !found {
		settings = book.Settings{Provider: s.cfg.Providers.Default}
	}
	provider.NormalizeSettings(&settings)
	return settings, nil
}

// SetBookmark saves the reading position after validating that the module
// belongs to the book.
func (s *Service) SetBookmark(ctx context.Context, bookID, moduleID string, offset int) (Bookmark, error) {
	project, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return Bookmark{}, err
	}
	if project.Module(moduleID) == nil {
		return Bookmark{}, services.Wrap(services.ErrInvalidState, "api", "bookmark",
			fmt.Sprintf("module %s not found in book %s", moduleID, bookID), nil)
	}
	if offset < 0 {
		offset = 0
	}
	bookmark := book.Bookmark{BookID: bookID, ModuleID: moduleID, Offset: offset}
	if err := s.store.SetBookmark(ctx, bookmark); err != nil {
		return Bookmark{}, err
	}
	return FromBookmark(&bookmark, project), nil
}

// GetBookmark returns the reading position, or nil when none exists.
func (s *Service) GetBookmark(ctx context.Context, bookID string) (*Bookmark, error) {
	bookmark, err := s.store.GetBookmark(ctx, bookID)
	if err != nil || bookmark == nil {
		return nil, err
	}
	project, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	out := FromBookmark(bookmark, project)
	return &out, nil
}

// ClearBookmark removes the reading position.
func (s *Service) ClearBookmark(ctx context.Context, bookID string) error {
	return s.store.ClearBookmark(ctx, bookID)
}

// Credits returns the credit gate state with recent ledger history.
func (s *Service) Credits(ctx context.Context, historyLimit int) (CreditStatus, error) {
	balance, err := s.store.CreditBalance(ctx)
	if err != nil {
		return CreditStatus{}, err
	}
	entries, err := s.store.CreditHistory(ctx, historyLimit)
	if err != nil {
		return CreditStatus{}, err
	}
	return CreditStatus{
		Enabled: s.cfg.Credits.Enabled,
		Balance: int64(balance),
		History: FromCreditEntries(entries),
	}, nil
}
