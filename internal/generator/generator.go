package generator

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"pustakam/internal/book"
	"pustakam/internal/logging"
	"pustakam/internal/provider"
	"pustakam/internal/services"
	"pustakam/internal/textutil"
)

// Generator writes the content of one module per call. It is stateless;
// book context is rebuilt from the project on every request.
type Generator struct {
	adapter    provider.Adapter
	logger     *slog.Logger
	wordTarget int
}

// New creates a Generator over the given adapter. wordTarget sets the
// approximate word budget requested per module.
func New(adapter provider.Adapter, wordTarget int, logger *slog.Logger) *Generator {
	if wordTarget <= 0 {
		wordTarget = 1200
	}
	return &Generator{
		adapter:    adapter,
		logger:     logging.WithComponent(logger, "generator"),
		wordTarget: wordTarget,
	}
}

// Generate produces the prose for one module. The project supplies framing
// context (goal, roadmap, which chapters precede this one); the module row
// itself is not mutated.
func (g *Generator) Generate(ctx context.Context, project *book.Project, module *book.Module) (string, error) {
	if project == nil || module == nil {
		return "", services.Wrap(services.ErrGenerationFailed, "generator", "generate", "missing project or module", nil)
	}

	started := time.Now()
	content, err := g.adapter.Complete(ctx, provider.Request{
		System: moduleSystemPrompt(g.wordTarget),
		User:   modulePrompt(project, module),
	})
	if err != nil {
		return "", services.Wrap(services.ErrGenerationFailed, "generator", "generate",
			"provider call failed for module "+module.Title, err)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", services.Wrap(services.ErrGenerationFailed, "generator", "generate",
			"provider returned empty content for module "+module.Title, nil)
	}

	g.logger.Info("module generated",
		logging.String(logging.FieldBookID, project.ID),
		logging.String(logging.FieldModuleID, module.ID),
		logging.String(logging.FieldProvider, string(g.adapter.Name())),
		logging.Int("words", textutil.CountWords(content)),
		logging.Duration("elapsed", time.Since(started)))
	return content, nil
}
