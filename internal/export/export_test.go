package export

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"pustakam/internal/book"
	"pustakam/internal/services"
)

func exportableBook() *book.Project {
	now := time.Now()
	project := &book.Project{
		ID:          "b-1",
		Goal:        "learn go",
		Title:       "Learning Go",
		Description: "A practical introduction.",
	}
	project.Modules = []book.Module{
		{ID: "m-1", Title: "Getting Started", OrderIndex: 0},
		{ID: "m-2", Title: "Concurrency", OrderIndex: 1},
	}
	project.Modules[0].SetCompleted("## Install\n\nGet the `go` tool.", now)
	return project
}

func TestExportMarkdown(t *testing.T) {
	dir := t.TempDir()
	path, err := New(dir, nil).Export(exportableBook(), FormatMarkdown)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.HasSuffix(path, ".md") {
		t.Fatalf("path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	out := string(data)
	for _, want := range []string{
		"# Learning Go",
		"A practical introduction.",
		"## Chapter 1: Getting Started",
		"Get the `go` tool.",
		"## Chapter 2: Concurrency",
		"*" + incompleteNotice + "*",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Chapter 1") > strings.Index(out, "Chapter 2") {
		t.Fatal("chapters out of order")
	}
}

func TestExportText(t *testing.T) {
	dir := t.TempDir()
	path, err := New(dir, nil).Export(exportableBook(), FormatText)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "Learning Go\n===========") {
		t.Fatalf("title underline missing:\n%s", out)
	}
	if strings.Contains(out, "##") || strings.Contains(out, "`") {
		t.Fatalf("markdown leaked into text output:\n%s", out)
	}
	if !strings.Contains(out, "Get the go tool.") {
		t.Fatalf("content missing:\n%s", out)
	}
}

func TestExportPDF(t *testing.T) {
	dir := t.TempDir()
	path, err := New(dir, nil).Export(exportableBook(), FormatPDF)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("not a PDF: %q", data[:min(16, len(data))])
	}
}

func TestExportRejectsBookWithoutContent(t *testing.T) {
	project := exportableBook()
	for i := range project.Modules {
		project.Modules[i].Status = book.ModulePending
		project.Modules[i].Content = ""
	}
	_, err := New(t.TempDir(), nil).Export(project, FormatMarkdown)
	if !errors.Is(err, services.ErrExportFailed) {
		t.Fatalf("expected ErrExportFailed, got %v", err)
	}
}

func TestExportFileNameIsSanitized(t *testing.T) {
	project := exportableBook()
	project.Title = "Go: The/Good\\Parts?"
	path, err := New(t.TempDir(), nil).Export(project, FormatText)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	base := path[strings.LastIndex(path, "/")+1:]
	if strings.ContainsAny(base, ":\\?") {
		t.Fatalf("unsafe file name: %q", base)
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"md":       FormatMarkdown,
		"Markdown": FormatMarkdown,
		"txt":      FormatText,
		"PDF":      FormatPDF,
	}
	for input, want := range cases {
		got, ok := ParseFormat(input)
		if !ok || got != want {
			t.Fatalf("ParseFormat(%q) = %v, %v", input, got, ok)
		}
	}
	if _, ok := ParseFormat("epub"); ok {
		t.Fatal("epub should not parse")
	}
}
