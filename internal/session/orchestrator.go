package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"pustakam/internal/book"
	"pustakam/internal/bookstore"
	"pustakam/internal/config"
	"pustakam/internal/credits"
	"pustakam/internal/logging"
	"pustakam/internal/notifications"
	"pustakam/internal/provider"
	"pustakam/internal/services"
)

// AdapterFactory resolves the provider adapter for a new run. Resolution
// happens at start time so settings changes apply to the next run without a
// daemon restart.
type AdapterFactory func(ctx context.Context) (provider.Adapter, error)

// DefaultAdapterFactory builds adapters from the persisted user settings,
// falling back to the config file's provider sections.
func DefaultAdapterFactory(store *bookstore.Store, cfg *config.Config) AdapterFactory {
	return func(ctx context.Context) (provider.Adapter, error) {
		settings, found, err := store.LoadSettings(ctx)
		if err != nil {
			return nil, err
		}
		if !found {
			settings = book.Settings{Provider: cfg.Providers.Default}
		}
		provider.NormalizeSettings(&settings)
		return provider.FromSettings(settings, cfg)
	}
}

// Orchestrator runs generation sessions. At most one session is active per
// book; within a session modules generate strictly sequentially.
type Orchestrator struct {
	store      *bookstore.Store
	cfg        *config.Config
	gate       *credits.Gate
	newAdapter AdapterFactory
	notifier   notifications.Service
	logger     *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an Orchestrator.
func New(store *bookstore.Store, cfg *config.Config, gate *credits.Gate, factory AdapterFactory, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		store:      store,
		cfg:        cfg,
		gate:       gate,
		newAdapter: factory,
		notifier:   notifications.NewService(cfg.Notifications),
		logger:     logging.WithComponent(logger, "session"),
		sessions:   make(map[string]*session),
	}
}

// SetNotifier replaces the notification backend, mainly for tests.
func (o *Orchestrator) SetNotifier(notifier notifications.Service) {
	if notifier != nil {
		o.notifier = notifier
	}
}

// Snapshot is a point-in-time view of one book's generation state.
type Snapshot struct {
	Project *book.Project
	Active  bool
}

// Status returns the book with a flag for whether a session is running on it.
func (o *Orchestrator) Status(ctx context.Context, bookID string) (Snapshot, error) {
	project, err := o.store.GetBook(ctx, bookID)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Project: project, Active: o.Running(bookID)}, nil
}

// Running reports whether a session is active for the book.
func (o *Orchestrator) Running(bookID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.sessions[bookID]
	return ok
}

// StartGeneration begins (or resumes) generating every pending module of the
// book, in chapter order, in a background session. The first start of a book
// is charged against the credit gate; resumes are free.
func (o *Orchestrator) StartGeneration(ctx context.Context, bookID string) error {
	project, err := o.store.GetBook(ctx, bookID)
	if err != nil {
		return err
	}
	pending := project.PendingModules()
	if len(pending) == 0 {
		return services.Wrap(services.ErrInvalidState, "session", "start",
			fmt.Sprintf("book %q has no pending modules", project.Title), nil)
	}
	adapter, err := o.newAdapter(ctx)
	if err != nil {
		return err
	}
	// Debit last so a start that cannot run never consumes the one-time charge.
	if o.gate != nil {
		if err := o.gate.DebitOnce(ctx, bookID); err != nil {
			return err
		}
	}

	ids := make([]string, 0, len(pending))
	for _, module := range pending {
		ids = append(ids, module.ID)
	}
	return o.launch(bookID, project, adapter, ids, false)
}

// Pause stops the book's active session. The in-flight module returns to
// pending so a later start resumes it. Pausing an idle book is a no-op.
func (o *Orchestrator) Pause(bookID string) error {
	o.mu.Lock()
	active, ok := o.sessions[bookID]
	o.mu.Unlock()
	if !ok {
		return nil
	}
	active.cancel()
	<-active.done
	o.logger.Info("session paused", logging.String(logging.FieldBookID, bookID))
	return nil
}

// RetryModule re-runs one errored module. The manual attempt adds one to the
// module's retry count when it settles, on top of any automatic retries.
func (o *Orchestrator) RetryModule(ctx context.Context, bookID, moduleID string) error {
	return o.runSingle(ctx, bookID, moduleID, book.ModuleError, "retry")
}

// RegenerateModule re-runs one completed module. If the new attempt fails
// the previous content is kept alongside the error.
func (o *Orchestrator) RegenerateModule(ctx context.Context, bookID, moduleID string) error {
	return o.runSingle(ctx, bookID, moduleID, book.ModuleCompleted, "regenerate")
}

func (o *Orchestrator) runSingle(ctx context.Context, bookID, moduleID string, required book.ModuleStatus, op string) error {
	project, err := o.store.GetBook(ctx, bookID)
	if err != nil {
		return err
	}
	module := project.Module(moduleID)
	if module == nil {
		return services.Wrap(services.ErrInvalidState, "session", op,
			fmt.Sprintf("module %s not found in book %s", moduleID, bookID), nil)
	}
	if module.Status != required {
		return services.Wrap(services.ErrInvalidState, "session", op,
			fmt.Sprintf("module %q is %s, needs %s", module.Title, module.Status, required), nil)
	}
	adapter, err := o.newAdapter(ctx)
	if err != nil {
		return err
	}
	return o.launch(bookID, project, adapter, []string{moduleID}, true)
}

// launch claims the book's session slot and starts the run goroutine.
func (o *Orchestrator) launch(bookID string, project *book.Project, adapter provider.Adapter, moduleIDs []string, single bool) error {
	o.mu.Lock()
	if _, busy := o.sessions[bookID]; busy {
		o.mu.Unlock()
		return services.Wrap(services.ErrInvalidState, "session", "start",
			"a generation session is already running for this book", nil)
	}
	ctx, cancel := context.WithCancel(context.Background())
	active := &session{cancel: cancel, done: make(chan struct{})}
	o.sessions[bookID] = active
	o.mu.Unlock()

	o.logger.Info("session started",
		logging.String(logging.FieldBookID, bookID),
		logging.String(logging.FieldProvider, string(adapter.Name())),
		logging.Int("modules", len(moduleIDs)),
		logging.Bool("single", single))

	go func() {
		defer func() {
			cancel()
			o.mu.Lock()
			delete(o.sessions, bookID)
			o.mu.Unlock()
			close(active.done)
		}()
		o.run(ctx, project, adapter, moduleIDs, single)
	}()
	return nil
}

// Close pauses every active session and waits for them to persist.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	active := make([]*session, 0, len(o.sessions))
	for _, s := range o.sessions {
		active = append(active, s)
	}
	o.mu.Unlock()
	for _, s := range active {
		s.cancel()
		<-s.done
	}
}
