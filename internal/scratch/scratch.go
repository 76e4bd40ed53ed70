// Package scratch manages the transient working directory a run uses for
// temporary files. The directory is cleaned between items so one item's
// leftovers can never bleed into the next.
package scratch

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Manager owns one run's scratch directory.
type Manager struct {
	root string
	dir  string
}

// NewManager creates a manager rooted at the given directory.
func NewManager(root string) *Manager {
	return &Manager{root: root}
}

// Create makes a fresh scratch directory for this run.
func (m *Manager) Create() error {
	dir := filepath.Join(m.root, fmt.Sprintf("run-%d", time.Now().UnixNano()))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create scratch dir: %w", err)
	}
	m.dir = dir
	return nil
}

// Dir returns the current scratch directory.
func (m *Manager) Dir() string {
	return m.dir
}

// Clean removes all contents of the scratch directory, keeping the
// directory itself.
func (m *Manager) Clean() error {
	if m.dir == "" {
		return nil
	}

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return fmt.Errorf("failed to read scratch dir: %w", err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(m.dir, e.Name())); err != nil {
			return fmt.Errorf("failed to clean scratch dir: %w", err)
		}
	}
	return nil
}

// Remove deletes the scratch directory entirely.
func (m *Manager) Remove() error {
	if m.dir == "" {
		return nil
	}
	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("failed to remove scratch dir: %w", err)
	}
	m.dir = ""
	return nil
}

// Prune deletes run directories under root older than the retention period.
// A retention of 0 disables pruning.
func (m *Manager) Prune(retention time.Duration) error {
	if retention <= 0 {
		return nil
	}

	entries, err := os.ReadDir(m.root)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read scratch root: %w", err)
	}

	cutoff := time.Now().Add(-retention)
	for _, e := range entries {
		path := filepath.Join(m.root, e.Name())
		if path == m.dir {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.RemoveAll(path); err != nil {
				return fmt.Errorf("failed to prune %s: %w", path, err)
			}
		}
	}
	return nil
}
