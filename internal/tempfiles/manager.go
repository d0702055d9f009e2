// Package tempfiles hands out unique temporary paths and deletes them on demand.
package tempfiles

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/SwanFlutter/image-picker-master/internal/logger"
	"github.com/google/uuid"
)

// Manager tracks every path it creates until Clear is called
type Manager struct {
	dir   string
	paths []string
	mu    sync.Mutex
}

// NewManager returns a manager writing under <base>/<prefix>.
// An empty base selects os.TempDir().
func NewManager(base, prefix string) *Manager {
	if base == "" {
		base = os.TempDir()
	}
	return &Manager{dir: filepath.Join(base, prefix)}
}

// Dir returns the directory temp files are created in
func (m *Manager) Dir() string {
	return m.dir
}

// Create returns a fresh tracked path ending in ext. The file itself is not created.
func (m *Manager) Create(ext string) (string, error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}

	name := uuid.NewString()
	if ext = strings.TrimPrefix(ext, "."); ext != "" {
		name += "." + ext
	}
	path := filepath.Join(m.dir, name)

	m.mu.Lock()
	m.paths = append(m.paths, path)
	m.mu.Unlock()

	return path, nil
}

// Forget stops tracking path without deleting it
func (m *Manager) Forget(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.paths {
		if p == path {
			m.paths = append(m.paths[:i], m.paths[i+1:]...)
			return
		}
	}
}

// Paths returns a snapshot of the tracked paths
func (m *Manager) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.paths...)
}

// Clear deletes every tracked file and empties the list.
// Removal errors are logged and otherwise ignored. Returns the count actually removed.
func (m *Manager) Clear() int {
	m.mu.Lock()
	paths := m.paths
	m.paths = nil
	m.mu.Unlock()

	log := logger.WithComponent("tempfiles")
	removed := 0
	for _, p := range paths {
		err := os.Remove(p)
		switch {
		case err == nil:
			removed++
		case errors.Is(err, fs.ErrNotExist):
		default:
			log.Debug().Err(err).Str("path", p).Msg("Failed to remove temp file")
		}
	}

	if len(paths) > 0 {
		log.Debug().Int("tracked", len(paths)).Int("removed", removed).Msg("Temporary files cleared")
	}
	return removed
}

// Purge deletes every regular file in Dir, tracked or not. It cleans up
// after a process that exited without calling Clear.
func (m *Manager) Purge() (int, error) {
	entries, err := os.ReadDir(m.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read temp directory: %w", err)
	}

	m.mu.Lock()
	m.paths = nil
	m.mu.Unlock()

	removed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if err := os.Remove(filepath.Join(m.dir, e.Name())); err == nil {
			removed++
		}
	}
	logger.WithComponent("tempfiles").Debug().Str("dir", m.dir).Int("removed", removed).Msg("Temp directory purged")
	return removed, nil
}
