package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pustakam/internal/logs"
)

func TestTailLastLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pustakam.log")
	if err := os.WriteFile(path, []byte("a\nb\nc\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	lines, offset, err := logs.Tail(path, 2)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(lines) != 2 || lines[0] != "b" || lines[1] != "c" {
		t.Fatalf("lines = %#v", lines)
	}
	if offset == 0 {
		t.Fatal("expected offset to advance")
	}
}

func TestTailMissingFile(t *testing.T) {
	lines, offset, err := logs.Tail(filepath.Join(t.TempDir(), "missing.log"), 10)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(lines) != 0 || offset != 0 {
		t.Fatalf("lines=%v offset=%d for missing file", lines, offset)
	}
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pustakam.log")
	if err := os.WriteFile(path, []byte("start\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	_, offset, err := logs.Tail(path, 1)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}

	got := make(chan string, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = logs.Follow(ctx, path, offset, func(line string) { got <- line })
	}()

	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	if _, err := file.WriteString("next\n"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	file.Close()

	select {
	case line := <-got:
		if line != "next" {
			t.Fatalf("line = %q", line)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("follow never emitted the appended line")
	}
}
