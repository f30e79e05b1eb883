package planner

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"pustakam/internal/book"
	"pustakam/internal/logging"
	"pustakam/internal/provider"
	"pustakam/internal/services"
	"pustakam/internal/textutil"
)

// Roadmaps above this size get truncated; the prompt asks for far fewer.
const maxModules = 20

// Planner turns a learning goal into a book roadmap with one provider call.
type Planner struct {
	adapter provider.Adapter
	logger  *slog.Logger
}

// New creates a Planner over the given adapter.
func New(adapter provider.Adapter, logger *slog.Logger) *Planner {
	return &Planner{
		adapter: adapter,
		logger:  logging.WithComponent(logger, "planner"),
	}
}

type planResponse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Modules     []struct {
		Title   string `json:"title"`
		Summary string `json:"summary"`
	} `json:"modules"`
}

// Plan produces a new draft book for the goal. The optional audience hint
// steers the roadmap's depth and tone; an empty hint means a general reader.
// All modules start pending; no content is generated here.
func (p *Planner) Plan(ctx context.Context, goal, audienceHint string) (*book.Project, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return nil, services.Wrap(services.ErrInvalidGoal, "planner", "plan", "goal is empty", nil)
	}

	started := time.Now()
	raw, err := p.adapter.Complete(ctx, provider.Request{
		System:   planSystemPrompt,
		User:     planUserPrompt(goal, strings.TrimSpace(audienceHint)),
		JSONOnly: true,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrPlanningFailed, "planner", "plan", "provider call failed", err)
	}

	var parsed planResponse
	if err := provider.DecodeJSON(p.adapter.Name(), "plan", raw, &parsed); err != nil {
		return nil, services.Wrap(services.ErrPlanningFailed, "planner", "plan", "roadmap is not valid JSON", err)
	}

	project, err := buildProject(goal, parsed)
	if err != nil {
		return nil, err
	}

	p.logger.Info("roadmap planned",
		logging.String(logging.FieldBookID, project.ID),
		logging.String(logging.FieldProvider, string(p.adapter.Name())),
		logging.Int("modules", len(project.Modules)),
		logging.Duration("elapsed", time.Since(started)))
	return project, nil
}

func buildProject(goal string, parsed planResponse) (*book.Project, error) {
	now := time.Now().UTC()
	project := &book.Project{
		ID:          uuid.NewString(),
		Goal:        goal,
		Title:       textutil.TitleCase(parsed.Title),
		Description: strings.TrimSpace(parsed.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if project.Title == "" {
		project.Title = textutil.TitleCase(goal)
	}

	for _, entry := range parsed.Modules {
		title := textutil.TitleCase(entry.Title)
		if title == "" {
			continue
		}
		project.Modules = append(project.Modules, book.Module{
			ID:         uuid.NewString(),
			Title:      title,
			Summary:    strings.TrimSpace(entry.Summary),
			OrderIndex: len(project.Modules),
			Status:     book.ModulePending,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	if len(project.Modules) == 0 {
		return nil, services.Wrap(services.ErrPlanningFailed, "planner", "plan", "roadmap contained no modules", nil)
	}
	if len(project.Modules) > maxModules {
		project.Modules = project.Modules[:maxModules]
	}
	return project, nil
}
