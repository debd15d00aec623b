// Package storage manages the scratch directories archives are unpacked into.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/axoraweb/seo-backend/internal/archive"
	"github.com/google/uuid"
)

// Workspace hands out one directory per extracted upload under a root.
type Workspace struct {
	mu     sync.Mutex
	root   string
	reader *archive.Reader
	dirs   map[string]time.Time
}

// NewWorkspace creates the root directory if needed.
func NewWorkspace(root string, maxEntrySize int64) (*Workspace, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating workspace directory: %w", err)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace directory: %w", err)
	}
	return &Workspace{
		root:   abs,
		reader: archive.NewReader(maxEntrySize),
		dirs:   make(map[string]time.Time),
	}, nil
}

// Root returns the absolute workspace root.
func (w *Workspace) Root() string {
	return w.root
}

// Extract unpacks an archive into a fresh directory and returns its path.
// Nothing is left behind when extraction fails.
func (w *Workspace) Extract(data []byte) (string, error) {
	dir := filepath.Join(w.root, uuid.New().String())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating extraction directory: %w", err)
	}

	if _, err := w.reader.ExtractTo(data, dir); err != nil {
		os.RemoveAll(dir)
		return "", err
	}

	w.mu.Lock()
	w.dirs[dir] = time.Now()
	w.mu.Unlock()
	return dir, nil
}

// Cleanup removes a directory previously returned by Extract.
func (w *Workspace) Cleanup(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", dir, err)
	}
	if !strings.HasPrefix(abs, w.root+string(os.PathSeparator)) {
		return fmt.Errorf("refusing to remove %s outside workspace", dir)
	}

	w.mu.Lock()
	delete(w.dirs, abs)
	w.mu.Unlock()

	if err := os.RemoveAll(abs); err != nil {
		return fmt.Errorf("removing %s: %w", dir, err)
	}
	return nil
}

// CleanupOlderThan removes tracked directories created before maxAge ago
// and returns how many were removed.
func (w *Workspace) CleanupOlderThan(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	w.mu.Lock()
	var stale []string
	for dir, created := range w.dirs {
		if created.Before(cutoff) {
			stale = append(stale, dir)
			delete(w.dirs, dir)
		}
	}
	w.mu.Unlock()

	for _, dir := range stale {
		os.RemoveAll(dir)
	}
	return len(stale)
}

// Active returns the number of directories not yet cleaned up.
func (w *Workspace) Active() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.dirs)
}
