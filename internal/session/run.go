package session

import (
	"context"
	"errors"
	"time"

	"pustakam/internal/book"
	"pustakam/internal/generator"
	"pustakam/internal/logging"
	"pustakam/internal/provider"
	"pustakam/internal/services"
)

// persistTimeout bounds each snapshot save. Saves run on a fresh context so
// a pause cancel can never lose the final state write.
const persistTimeout = 10 * time.Second

// run is the session loop: one module at a time, persisting the whole book
// after every status transition.
func (o *Orchestrator) run(ctx context.Context, project *book.Project, adapter provider.Adapter, moduleIDs []string, manual bool) {
	gen := generator.New(adapter, o.cfg.Generation.ModuleWordTarget, o.logger)
	logger := o.logger.With(logging.String(logging.FieldBookID, project.ID))

	for _, moduleID := range moduleIDs {
		if ctx.Err() != nil {
			return
		}
		module := project.Module(moduleID)
		if module == nil || module.Status == book.ModuleGenerating {
			continue
		}

		now := time.Now().UTC()
		module.SetGenerating(now)
		project.Touch(now)
		o.persist(project)

		content, err := o.generateWithRetry(ctx, gen, project, module, manual)
		now = time.Now().UTC()
		switch {
		case err == nil:
			module.SetCompleted(content, now)
			project.Touch(now)
			o.persist(project)
		case errors.Is(err, context.Canceled):
			// Paused. Hand the module back so resume picks it up.
			module.Status = book.ModulePending
			module.UpdatedAt = now
			project.Touch(now)
			o.persist(project)
			return
		default:
			module.SetError(services.UserMessage(err), now)
			project.Touch(now)
			o.persist(project)
			logger.Warn("module failed",
				logging.String(logging.FieldModuleID, module.ID),
				logging.Int("auto_retries", module.RetryCount),
				logging.Error(err))
			if !o.cfg.Generation.ContinueOnError {
				o.notifyFinished(project)
				return
			}
		}
	}
	logger.Info("session finished",
		logging.String("book_status", string(project.Status())),
		logging.Int("completed", project.CompletedCount()),
		logging.Int("modules", len(project.Modules)))
	o.notifyFinished(project)
}

// notifyFinished pushes the end-of-session outcome. Notification failures
// are logged and never affect the stored book.
func (o *Orchestrator) notifyFinished(project *book.Project) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	failed := 0
	firstReason := ""
	for i := range project.Modules {
		if project.Modules[i].Status == book.ModuleError {
			if failed == 0 {
				firstReason = project.Modules[i].ErrorMessage
			}
			failed++
		}
	}

	var err error
	switch {
	case project.Status() == book.ProjectCompleted:
		err = o.notifier.NotifyBookCompleted(ctx, project.Title, len(project.Modules))
	case failed > 0 && project.CompletedCount() > 0:
		err = o.notifier.NotifyBookPartial(ctx, project.Title, project.CompletedCount(), failed)
	case failed > 0:
		err = o.notifier.NotifyBookFailed(ctx, project.Title, firstReason)
	default:
		return
	}
	if err != nil {
		o.logger.Warn("notification failed",
			logging.String(logging.FieldBookID, project.ID),
			logging.Error(err))
	}
}

// generateWithRetry runs one module generation, automatically retrying
// transient and rate-limit failures up to the configured cap with
// exponential backoff. Rate-limit responses that name a delay are honored.
// Every settled retry adds to the module's persisted retry count; a manual
// re-run counts as one retry attempt itself, so the total carries forward
// across sessions instead of restarting at zero.
func (o *Orchestrator) generateWithRetry(ctx context.Context, gen *generator.Generator, project *book.Project, module *book.Module, manual bool) (string, error) {
	limit := o.cfg.Generation.AutoRetryLimit
	base := module.RetryCount
	if manual {
		base++
	}
	for attempt := 0; ; attempt++ {
		content, err := gen.Generate(ctx, project, module)
		if err == nil {
			module.RetryCount = base + attempt
			return content, nil
		}
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return "", context.Canceled
		}
		if !services.Retryable(err) || attempt >= limit {
			module.RetryCount = base + attempt
			return "", err
		}

		delay := o.retryDelay(attempt, err)
		o.logger.Warn("retrying module after failure",
			logging.String(logging.FieldModuleID, module.ID),
			logging.Int("attempt", attempt+1),
			logging.Duration("delay", delay),
			logging.Error(err))
		select {
		case <-ctx.Done():
			return "", context.Canceled
		case <-time.After(delay):
		}
	}
}

func (o *Orchestrator) retryDelay(attempt int, err error) time.Duration {
	base := time.Duration(o.cfg.Generation.RetryBaseDelaySeconds) * time.Second
	max := time.Duration(o.cfg.Generation.RetryMaxDelaySeconds) * time.Second
	delay := base << attempt
	if max > 0 && delay > max {
		delay = max
	}
	if suggested := provider.RetryAfter(err); suggested > delay {
		delay = suggested
		if max > 0 && delay > max {
			delay = max
		}
	}
	return delay
}

// persist writes the current project snapshot outside the session context.
func (o *Orchestrator) persist(project *book.Project) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := o.store.SaveBook(ctx, project); err != nil {
		o.logger.Error("persist book failed",
			logging.String(logging.FieldBookID, project.ID),
			logging.Error(err))
	}
}
