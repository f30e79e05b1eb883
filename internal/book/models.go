package book

import (
	"sort"
	"strings"
	"time"
)

// ModuleStatus represents the lifecycle of a single book module.
type ModuleStatus string

const (
	ModulePending    ModuleStatus = "pending"
	ModuleGenerating ModuleStatus = "generating"
	ModuleCompleted  ModuleStatus = "completed"
	ModuleError      ModuleStatus = "error"
)

var moduleStatuses = []ModuleStatus{
	ModulePending,
	ModuleGenerating,
	ModuleCompleted,
	ModuleError,
}

var moduleStatusSet = func() map[ModuleStatus]struct{} {
	set := make(map[ModuleStatus]struct{}, len(moduleStatuses))
	for _, status := range moduleStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// ModuleStatuses returns the ordered list of known module statuses.
func ModuleStatuses() []ModuleStatus {
	cp := make([]ModuleStatus, len(moduleStatuses))
	copy(cp, moduleStatuses)
	return cp
}

// ParseModuleStatus converts a string into a known ModuleStatus.
func ParseModuleStatus(value string) (ModuleStatus, bool) {
	normalized := ModuleStatus(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := moduleStatusSet[normalized]
	return normalized, ok
}

// ProjectStatus is the aggregate book status derived from module statuses.
// It is computed, never persisted, so it cannot drift from the modules.
type ProjectStatus string

const (
	ProjectDraft        ProjectStatus = "draft"
	ProjectGenerating   ProjectStatus = "generating"
	ProjectCompleted    ProjectStatus = "completed"
	ProjectPartialError ProjectStatus = "partial-error"
)

// Module is one chapter of a generated book and the unit of retryable work.
type Module struct {
	ID           string
	Title        string
	Summary      string
	OrderIndex   int
	Status       ModuleStatus
	Content      string
	ErrorMessage string
	RetryCount   int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsTerminal reports whether the module needs no further generation work.
func (m Module) IsTerminal() bool {
	return m.Status == ModuleCompleted || m.Status == ModuleError
}

// SetGenerating marks the module as in flight and clears stale failure state.
func (m *Module) SetGenerating(now time.Time) {
	m.Status = ModuleGenerating
	m.ErrorMessage = ""
	m.UpdatedAt = now
}

// SetCompleted records successful content and clears failure state.
func (m *Module) SetCompleted(content string, now time.Time) {
	m.Status = ModuleCompleted
	m.Content = content
	m.ErrorMessage = ""
	m.UpdatedAt = now
}

// SetError records a failure message. Existing content is preserved so a
// failed regeneration never blanks a previously completed module.
func (m *Module) SetError(message string, now time.Time) {
	m.Status = ModuleError
	m.ErrorMessage = message
	m.UpdatedAt = now
}

// Project is one user-authored book.
type Project struct {
	ID          string
	Goal        string
	Title       string
	Description string
	Modules     []Module
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Status derives the aggregate project status from module statuses.
func (p *Project) Status() ProjectStatus {
	if p == nil || len(p.Modules) == 0 {
		return ProjectDraft
	}
	var generating, errored, completed int
	for _, m := range p.Modules {
		switch m.Status {
		case ModuleGenerating:
			generating++
		case ModuleError:
			errored++
		case ModuleCompleted:
			completed++
		}
	}
	switch {
	case generating > 0:
		return ProjectGenerating
	case errored > 0:
		return ProjectPartialError
	case completed == len(p.Modules):
		return ProjectCompleted
	default:
		return ProjectDraft
	}
}

// Module returns the module with the given ID, or nil.
func (p *Project) Module(id string) *Module {
	if p == nil {
		return nil
	}
	for i := range p.Modules {
		if p.Modules[i].ID == id {
			return &p.Modules[i]
		}
	}
	return nil
}

// SortModules orders modules by OrderIndex. Chapter order is significant and
// must survive persistence and import.
func (p *Project) SortModules() {
	if p == nil {
		return
	}
	sort.SliceStable(p.Modules, func(i, j int) bool {
		return p.Modules[i].OrderIndex < p.Modules[j].OrderIndex
	})
}

// PendingModules returns modules awaiting generation in chapter order.
func (p *Project) PendingModules() []*Module {
	if p == nil {
		return nil
	}
	p.SortModules()
	var out []*Module
	for i := range p.Modules {
		if p.Modules[i].Status == ModulePending {
			out = append(out, &p.Modules[i])
		}
	}
	return out
}

// CompletedCount returns the number of completed modules.
func (p *Project) CompletedCount() int {
	if p == nil {
		return 0
	}
	count := 0
	for _, m := range p.Modules {
		if m.Status == ModuleCompleted {
			count++
		}
	}
	return count
}

// Touch bumps UpdatedAt. Call on every mutation before persisting.
func (p *Project) Touch(now time.Time) {
	p.UpdatedAt = now.UTC()
}

// Bookmark records the reader's last position in a book. It has an
// independent lifecycle and is never written by the generation session.
type Bookmark struct {
	BookID    string
	ModuleID  string
	Offset    int
	UpdatedAt time.Time
}
