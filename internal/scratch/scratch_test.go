package scratch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCreateCleanRemove(t *testing.T) {
	m := NewManager(t.TempDir())

	if err := m.Create(); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if m.Dir() == "" {
		t.Fatal("expected a scratch dir")
	}

	// Leftovers from one item must not survive Clean.
	if err := os.WriteFile(filepath.Join(m.Dir(), "leftover.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := m.Clean(); err != nil {
		t.Fatalf("clean failed: %v", err)
	}
	entries, err := os.ReadDir(m.Dir())
	if err != nil {
		t.Fatalf("scratch dir must survive clean: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty scratch dir, got %d entries", len(entries))
	}

	dir := m.Dir()
	if err := m.Remove(); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("remove must delete the scratch dir")
	}
}

func TestPruneDeletesStaleRuns(t *testing.T) {
	root := t.TempDir()

	stale := filepath.Join(root, "run-1")
	if err := os.MkdirAll(stale, 0o755); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(stale, past, past); err != nil {
		t.Fatal(err)
	}

	m := NewManager(root)
	if err := m.Create(); err != nil {
		t.Fatal(err)
	}

	if err := m.Prune(24 * time.Hour); err != nil {
		t.Fatalf("prune failed: %v", err)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale run dir must be pruned")
	}
	if _, err := os.Stat(m.Dir()); err != nil {
		t.Error("the current run dir must survive pruning")
	}
}

func TestPruneDisabled(t *testing.T) {
	root := t.TempDir()
	old := filepath.Join(root, "run-old")
	if err := os.MkdirAll(old, 0o755); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-1000 * time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	m := NewManager(root)
	if err := m.Prune(0); err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if _, err := os.Stat(old); err != nil {
		t.Error("retention 0 must disable pruning")
	}
}
