package planner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pustakam/internal/book"
	"pustakam/internal/services"
	"pustakam/internal/testsupport"
)

const validPlan = `{
	"title": "learning go",
	"description": "A practical introduction.",
	"modules": [
		{"title": "getting started", "summary": "Install the toolchain."},
		{"title": "types and functions", "summary": "The building blocks."},
		{"title": "concurrency", "summary": "Goroutines and channels."}
	]
}`

func TestPlanBuildsDraftProject(t *testing.T) {
	adapter := testsupport.NewFakeAdapter(testsupport.Reply{Content: validPlan})
	project, err := New(adapter, nil).Plan(context.Background(), "learn go", "")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	if project.ID == "" || project.Goal != "learn go" {
		t.Fatalf("project metadata: %+v", project)
	}
	if project.Title != "Learning Go" {
		t.Fatalf("title = %q", project.Title)
	}
	if len(project.Modules) != 3 {
		t.Fatalf("modules = %d", len(project.Modules))
	}
	for i, module := range project.Modules {
		if module.OrderIndex != i {
			t.Fatalf("module %d order index = %d", i, module.OrderIndex)
		}
		if module.Status != book.ModulePending {
			t.Fatalf("module %d status = %s", i, module.Status)
		}
		if module.ID == "" || module.Content != "" {
			t.Fatalf("module %d unexpected state: %+v", i, module)
		}
	}
	if project.Modules[0].Title != "Getting Started" {
		t.Fatalf("module title = %q", project.Modules[0].Title)
	}
	if project.Status() != book.ProjectDraft {
		t.Fatalf("status = %s", project.Status())
	}
	if adapter.Calls() != 1 {
		t.Fatalf("provider calls = %d", adapter.Calls())
	}
}

func TestPlanThreadsAudienceHint(t *testing.T) {
	adapter := testsupport.NewFakeAdapter(testsupport.Reply{Content: validPlan})
	if _, err := New(adapter, nil).Plan(context.Background(), "learn go", "working sysadmins new to programming"); err != nil {
		t.Fatalf("Plan: %v", err)
	}

	requests := adapter.Requests()
	if len(requests) != 1 {
		t.Fatalf("provider calls = %d", len(requests))
	}
	if !strings.Contains(requests[0].User, "working sysadmins new to programming") {
		t.Fatalf("audience hint missing from prompt:\n%s", requests[0].User)
	}
}

func TestPlanOmitsAudienceWhenUnset(t *testing.T) {
	adapter := testsupport.NewFakeAdapter(testsupport.Reply{Content: validPlan})
	if _, err := New(adapter, nil).Plan(context.Background(), "learn go", "  "); err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if strings.Contains(adapter.Requests()[0].User, "intended reader") {
		t.Fatalf("blank hint leaked into prompt:\n%s", adapter.Requests()[0].User)
	}
}

func TestPlanRejectsEmptyGoal(t *testing.T) {
	adapter := testsupport.NewFakeAdapter()
	_, err := New(adapter, nil).Plan(context.Background(), "   ", "")
	if !errors.Is(err, services.ErrInvalidGoal) {
		t.Fatalf("expected ErrInvalidGoal, got %v", err)
	}
	if adapter.Calls() != 0 {
		t.Fatal("provider should not be called for an empty goal")
	}
}

func TestPlanProviderFailure(t *testing.T) {
	boom := services.Wrap(services.ErrTransient, "google", "complete", "backend unavailable", nil)
	adapter := testsupport.NewFakeAdapter(testsupport.Reply{Err: boom})
	_, err := New(adapter, nil).Plan(context.Background(), "learn go", "")
	if !errors.Is(err, services.ErrPlanningFailed) {
		t.Fatalf("expected ErrPlanningFailed, got %v", err)
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("cause not preserved: %v", err)
	}
}

func TestPlanRejectsEmptyRoadmap(t *testing.T) {
	adapter := testsupport.NewFakeAdapter(testsupport.Reply{Content: `{"title": "x", "modules": []}`})
	_, err := New(adapter, nil).Plan(context.Background(), "learn go", "")
	if !errors.Is(err, services.ErrPlanningFailed) {
		t.Fatalf("expected ErrPlanningFailed, got %v", err)
	}
}

func TestPlanRejectsNonJSON(t *testing.T) {
	adapter := testsupport.NewFakeAdapter(testsupport.Reply{Content: "sorry, I cannot help"})
	_, err := New(adapter, nil).Plan(context.Background(), "learn go", "")
	if !errors.Is(err, services.ErrPlanningFailed) {
		t.Fatalf("expected ErrPlanningFailed, got %v", err)
	}
}

func TestPlanToleratesFencedJSON(t *testing.T) {
	adapter := testsupport.NewFakeAdapter(testsupport.Reply{Content: "```json\n" + validPlan + "\n```"})
	project, err := New(adapter, nil).Plan(context.Background(), "learn go", "")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(project.Modules) != 3 {
		t.Fatalf("modules = %d", len(project.Modules))
	}
}
