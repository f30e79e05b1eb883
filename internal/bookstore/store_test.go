package bookstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"pustakam/internal/book"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "books.db"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleProject(id string) *book.Project {
	return &book.Project{
		ID:    id,
		Goal:  "learn linear algebra",
		Title: "Linear Algebra From Scratch",
		Modules: []book.Module{
			{ID: id + "-m1", Title: "Vectors", OrderIndex: 0, Status: book.ModuleCompleted, Content: "vector content"},
			{ID: id + "-m2", Title: "Matrices", OrderIndex: 1, Status: book.ModulePending},
		},
	}
}

func TestSaveAndGetBookRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := sampleProject("b-1")
	if err := store.SaveBook(ctx, want); err != nil {
		t.Fatalf("SaveBook: %v", err)
	}

	got, err := store.GetBook(ctx, "b-1")
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Title != want.Title || got.Goal != want.Goal {
		t.Fatalf("metadata mismatch: %+v", got)
	}
	if len(got.Modules) != 2 {
		t.Fatalf("modules = %d", len(got.Modules))
	}
	if got.Modules[0].ID != "b-1-m1" || got.Modules[0].Content != "vector content" {
		t.Fatalf("module 0 mismatch: %+v", got.Modules[0])
	}
	if got.Modules[1].Status != book.ModulePending {
		t.Fatalf("module 1 status = %s", got.Modules[1].Status)
	}
}

func TestSaveBookIsLastWriterWins(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	project := sampleProject("b-1")
	if err := store.SaveBook(ctx, project); err != nil {
		t.Fatalf("SaveBook: %v", err)
	}
	project.Modules[1].SetCompleted("matrix content", time.Now())
	project.Title = "Linear Algebra, Revised"
	if err := store.SaveBook(ctx, project); err != nil {
		t.Fatalf("SaveBook update: %v", err)
	}

	got, err := store.GetBook(ctx, "b-1")
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Title != "Linear Algebra, Revised" {
		t.Fatalf("title = %q", got.Title)
	}
	if got.Modules[1].Content != "matrix content" {
		t.Fatalf("module content not updated: %+v", got.Modules[1])
	}
	if got.Status() != book.ProjectCompleted {
		t.Fatalf("status = %s", got.Status())
	}
}

func TestGetBookNotFound(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.GetBook(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteBookCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveBook(ctx, sampleProject("b-1")); err != nil {
		t.Fatalf("SaveBook: %v", err)
	}
	if err := store.SetBookmark(ctx, book.Bookmark{BookID: "b-1", ModuleID: "b-1-m1", Offset: 42}); err != nil {
		t.Fatalf("SetBookmark: %v", err)
	}
	if err := store.DeleteBook(ctx, "b-1"); err != nil {
		t.Fatalf("DeleteBook: %v", err)
	}
	if _, err := store.GetBook(ctx, "b-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("book still present: %v", err)
	}
	bookmark, err := store.GetBookmark(ctx, "b-1")
	if err != nil {
		t.Fatalf("GetBookmark: %v", err)
	}
	if bookmark != nil {
		t.Fatalf("bookmark survived delete: %+v", bookmark)
	}
	if err := store.DeleteBook(ctx, "b-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestListBooksNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	older := sampleProject("b-old")
	older.CreatedAt = time.Now().Add(-time.Hour)
	if err := store.SaveBook(ctx, older); err != nil {
		t.Fatalf("SaveBook older: %v", err)
	}
	newer := sampleProject("b-new")
	newer.CreatedAt = time.Now()
	if err := store.SaveBook(ctx, newer); err != nil {
		t.Fatalf("SaveBook newer: %v", err)
	}

	projects, err := store.ListBooks(ctx)
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	if len(projects) != 2 || projects[0].ID != "b-new" {
		t.Fatalf("unexpected order: %v", projects)
	}
}

func TestResetInFlight(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	project := sampleProject("b-1")
	project.Modules[1].Status = book.ModuleGenerating
	if err := store.SaveBook(ctx, project); err != nil {
		t.Fatalf("SaveBook: %v", err)
	}

	count, err := store.ResetInFlight(ctx)
	if err != nil {
		t.Fatalf("ResetInFlight: %v", err)
	}
	if count != 1 {
		t.Fatalf("reset count = %d", count)
	}

	got, err := store.GetBook(ctx, "b-1")
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Modules[1].Status != book.ModulePending {
		t.Fatalf("status = %s", got.Modules[1].Status)
	}
	if got.Modules[0].Status != book.ModuleCompleted {
		t.Fatalf("completed module disturbed: %s", got.Modules[0].Status)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, found, err := store.LoadSettings(ctx); err != nil || found {
		t.Fatalf("LoadSettings empty: found=%v err=%v", found, err)
	}

	want := book.Settings{Provider: "groq", Model: "llama-3.3-70b-versatile"}
	want.SetKey("groq", "gsk-test")
	if err := store.SaveSettings(ctx, want); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	got, found, err := store.LoadSettings(ctx)
	if err != nil || !found {
		t.Fatalf("LoadSettings: found=%v err=%v", found, err)
	}
	if got.Provider != "groq" || got.Model != "llama-3.3-70b-versatile" {
		t.Fatalf("settings mismatch: %+v", got)
	}
	if got.Key("groq") != "gsk-test" {
		t.Fatalf("key mismatch: %q", got.Key("groq"))
	}
}

func TestBookmarkRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveBook(ctx, sampleProject("b-1")); err != nil {
		t.Fatalf("SaveBook: %v", err)
	}
	if err := store.SetBookmark(ctx, book.Bookmark{BookID: "b-1", ModuleID: "b-1-m1", Offset: 120}); err != nil {
		t.Fatalf("SetBookmark: %v", err)
	}
	if err := store.SetBookmark(ctx, book.Bookmark{BookID: "b-1", ModuleID: "b-1-m2", Offset: 7}); err != nil {
		t.Fatalf("SetBookmark update: %v", err)
	}

	got, err := store.GetBookmark(ctx, "b-1")
	if err != nil {
		t.Fatalf("GetBookmark: %v", err)
	}
	if got == nil || got.ModuleID != "b-1-m2" || got.Offset != 7 {
		t.Fatalf("bookmark mismatch: %+v", got)
	}

	if err := store.ClearBookmark(ctx, "b-1"); err != nil {
		t.Fatalf("ClearBookmark: %v", err)
	}
	if got, err := store.GetBookmark(ctx, "b-1"); err != nil || got != nil {
		t.Fatalf("bookmark not cleared: %+v err=%v", got, err)
	}
}

func TestCreditLedger(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.AddCreditEntry(ctx, "", 10, "initial grant"); err != nil {
		t.Fatalf("AddCreditEntry: %v", err)
	}
	if err := store.AddCreditEntry(ctx, "b-1", -1, "book generation"); err != nil {
		t.Fatalf("AddCreditEntry debit: %v", err)
	}

	balance, err := store.CreditBalance(ctx)
	if err != nil {
		t.Fatalf("CreditBalance: %v", err)
	}
	if balance != 9 {
		t.Fatalf("balance = %d", balance)
	}

	history, err := store.CreditHistory(ctx, 10)
	if err != nil {
		t.Fatalf("CreditHistory: %v", err)
	}
	if len(history) != 2 || history[0].Delta != -1 {
		t.Fatalf("history mismatch: %+v", history)
	}
}
