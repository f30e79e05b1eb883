package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"pustakam/internal/book"
	"pustakam/internal/bookstore"
	"pustakam/internal/config"
	"pustakam/internal/credits"
	"pustakam/internal/daemon"
	"pustakam/internal/ipc"
	"pustakam/internal/logging"
	"pustakam/internal/provider"
	"pustakam/internal/session"
	"pustakam/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	store      *bookstore.Store
	socketPath string
	configPath string
}

func setupCLITestEnv(t *testing.T, adapter provider.Adapter) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ExportDir = filepath.Join(base, "exports")
	cfgVal.Generation.RetryBaseDelaySeconds = 0
	cfg := &cfgVal
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	configPath := filepath.Join(base, "config.toml")
	encoded, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, encoded, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	store, err := bookstore.Open(cfg.DatabasePath(), logging.NewNop())
	if err != nil {
		t.Fatalf("bookstore.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	gate := credits.New(store, cfg.Credits, nil)
	if err := gate.EnsureSeeded(context.Background()); err != nil {
		t.Fatalf("EnsureSeeded: %v", err)
	}

	factory := func(ctx context.Context) (provider.Adapter, error) { return adapter, nil }
	orch := session.New(store, cfg, gate, factory, nil)
	d := daemon.New(cfg, store, orch, gate, "", nil)
	t.Cleanup(d.Close)

	socketPath := filepath.Join(base, "cli.sock")
	srv, err := ipc.NewServer(context.Background(), socketPath, d, nil)
	if err != nil {
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)

	return &cliTestEnv{cfg: cfg, store: store, socketPath: socketPath, configPath: configPath}
}

func runCLI(t *testing.T, args []string, socket, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{}
	if socket != "" {
		flags = append(flags, "--socket", socket)
	}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func seedBook(t *testing.T, env *cliTestEnv, id string, status book.ModuleStatus, content string) *book.Project {
	t.Helper()
	project := &book.Project{
		ID:    id,
		Goal:  "learn sqlite internals",
		Title: "SQLite Internals",
		Modules: []book.Module{
			{ID: id + "-m1", Title: "File Format", OrderIndex: 0, Status: status, Content: content},
			{ID: id + "-m2", Title: "The Pager", OrderIndex: 1, Status: book.ModulePending},
		},
	}
	if err := env.store.SaveBook(context.Background(), project); err != nil {
		t.Fatalf("SaveBook: %v", err)
	}
	return project
}

func TestCLIBookListEmpty(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.NewFakeAdapter())
	out, _, err := runCLI(t, []string{"book", "list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("book list: %v", err)
	}
	requireContains(t, out, "No books yet")
}

func TestCLIBookListAndShow(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.NewFakeAdapter())
	project := seedBook(t, env, "b-1", book.ModuleCompleted, "chapter text")

	out, _, err := runCLI(t, []string{"book", "list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("book list: %v", err)
	}
	requireContains(t, out, "SQLite Internals")
	requireContains(t, out, "1/2")

	out, _, err = runCLI(t, []string{"book", "show", project.ID}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("book show: %v", err)
	}
	requireContains(t, out, "learn sqlite internals")
	requireContains(t, out, "File Format")
}

func TestCLIGenerateStartCompletesBook(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.NewFakeAdapter(testsupport.Reply{Content: "generated prose"}))
	project := seedBook(t, env, "b-gen", book.ModulePending, "")

	out, _, err := runCLI(t, []string{"generate", "start", project.ID}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("generate start: %v", err)
	}
	requireContains(t, out, "Generation started")

	deadline := time.Now().Add(5 * time.Second)
	for {
		stored, err := env.store.GetBook(context.Background(), project.ID)
		if err != nil {
			t.Fatalf("GetBook: %v", err)
		}
		if stored.Status() == book.ProjectCompleted {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("book never completed, status %s", stored.Status())
		}
		time.Sleep(10 * time.Millisecond)
	}

	out, _, err = runCLI(t, []string{"generate", "status", project.ID}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("generate status: %v", err)
	}
	requireContains(t, out, "2/2 modules completed")
}

func TestCLIExportCommand(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.NewFakeAdapter())
	project := seedBook(t, env, "b-exp", book.ModuleCompleted, "## Heading\n\nBody text.")

	out, _, err := runCLI(t, []string{"export", project.ID, "--format", "markdown"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	requireContains(t, out, "Exported to")
	requireContains(t, out, env.cfg.Paths.ExportDir)
}

func TestCLIExportRejectsUnknownFormat(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.NewFakeAdapter())
	if _, _, err := runCLI(t, []string{"export", "b-x", "--format", "docx"}, env.socketPath, env.configPath); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestCLISettingsCommands(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.NewFakeAdapter())

	out, _, err := runCLI(t, []string{"settings", "set", "--provider", "groq"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("settings set: %v", err)
	}
	requireContains(t, out, "groq")

	out, _, err = runCLI(t, []string{"settings", "set-key", "groq", "gk-test"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("settings set-key: %v", err)
	}
	requireContains(t, out, "API key saved")

	out, _, err = runCLI(t, []string{"settings", "show"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("settings show: %v", err)
	}
	requireContains(t, out, "Provider: groq")
	requireContains(t, out, "groq")
	if strings.Contains(out, "gk-test") {
		t.Fatal("settings show leaked the raw API key")
	}

	out, _, err = runCLI(t, []string{"settings", "models", "groq"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("settings models: %v", err)
	}
	requireContains(t, out, "(default)")
}

func TestCLIBookmarkLifecycle(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.NewFakeAdapter())
	project := seedBook(t, env, "b-bm", book.ModuleCompleted, "text")

	out, _, err := runCLI(t, []string{"bookmark", "set", project.ID, project.Modules[0].ID, "120"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("bookmark set: %v", err)
	}
	requireContains(t, out, "offset 120")

	out, _, err = runCLI(t, []string{"bookmark", "show", project.ID}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("bookmark show: %v", err)
	}
	requireContains(t, out, "File Format")

	if _, _, err := runCLI(t, []string{"bookmark", "clear", project.ID}, env.socketPath, env.configPath); err != nil {
		t.Fatalf("bookmark clear: %v", err)
	}
	out, _, err = runCLI(t, []string{"bookmark", "show", project.ID}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("bookmark show after clear: %v", err)
	}
	requireContains(t, out, "No bookmark")
}

func TestCLICreditsCommand(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.NewFakeAdapter())
	out, _, err := runCLI(t, []string{"credits"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("credits: %v", err)
	}
	requireContains(t, out, "Balance:")
}

func TestCLIConfigInit(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err := runCLI(t, []string{"config", "init"}, "", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Sample configuration written")

	if _, _, err := runCLI(t, []string{"config", "init"}, "", target); err == nil {
		t.Fatal("expected error when config already exists without --force")
	}
}

func TestCLIStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.NewFakeAdapter())
	out, _, err := runCLI(t, []string{"status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Pustakam Daemon")
	requireContains(t, out, "Checks")
}

func TestCLIDaemonNotRunningHint(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.NewFakeAdapter())
	missing := filepath.Join(t.TempDir(), "missing.sock")
	_, _, err := runCLI(t, []string{"status"}, missing, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "daemon is not running") {
		t.Fatalf("expected daemon hint, got %v", err)
	}
}
