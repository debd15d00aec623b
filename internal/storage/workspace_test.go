// workspace_test.go - Tests for the extraction workspace
package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/axoraweb/seo-backend/internal/archive"
	"github.com/axoraweb/seo-backend/internal/testutil"
)

func createTestWorkspace(t *testing.T) *Workspace {
	t.Helper()
	ws, err := NewWorkspace(filepath.Join(t.TempDir(), "work"), 0)
	if err != nil {
		t.Fatalf("Failed to create workspace: %v", err)
	}
	return ws
}

func TestNewWorkspace(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "work")
	ws, err := NewWorkspace(root, 0)
	if err != nil {
		t.Fatalf("Failed to create workspace: %v", err)
	}
	if _, err := os.Stat(root); os.IsNotExist(err) {
		t.Error("Expected workspace root to be created")
	}
	if !filepath.IsAbs(ws.Root()) {
		t.Errorf("Expected absolute root, got %s", ws.Root())
	}
}

func TestWorkspace_Extract(t *testing.T) {
	t.Run("extracts into a fresh directory", func(t *testing.T) {
		ws := createTestWorkspace(t)
		data := testutil.BuildZip(t,
			testutil.ZipEntry{Name: "src/index.html", Content: "<html></html>"},
		)

		dir, err := ws.Extract(data)
		if err != nil {
			t.Fatalf("Extract failed: %v", err)
		}
		if filepath.Dir(dir) != ws.Root() {
			t.Errorf("Expected directory under %s, got %s", ws.Root(), dir)
		}
		content, err := os.ReadFile(filepath.Join(dir, "src", "index.html"))
		if err != nil {
			t.Fatalf("Expected extracted file: %v", err)
		}
		if string(content) != "<html></html>" {
			t.Errorf("Unexpected content %q", content)
		}
		if ws.Active() != 1 {
			t.Errorf("Expected 1 active directory, got %d", ws.Active())
		}
	})

	t.Run("invalid archive leaves nothing behind", func(t *testing.T) {
		ws := createTestWorkspace(t)

		_, err := ws.Extract([]byte("not a zip"))
		if !errors.Is(err, archive.ErrInvalidArchiveFormat) {
			t.Errorf("Expected ErrInvalidArchiveFormat, got %v", err)
		}
		entries, _ := os.ReadDir(ws.Root())
		if len(entries) != 0 {
			t.Errorf("Expected empty workspace, found %d entries", len(entries))
		}
	})

	t.Run("traversal is rejected", func(t *testing.T) {
		ws := createTestWorkspace(t)
		data := testutil.BuildZip(t, testutil.ZipEntry{Name: "../../evil.html", Content: "x"})

		if _, err := ws.Extract(data); !errors.Is(err, archive.ErrUnsafePath) {
			t.Errorf("Expected ErrUnsafePath, got %v", err)
		}
		if ws.Active() != 0 {
			t.Errorf("Expected no active directories, got %d", ws.Active())
		}
	})
}

func TestWorkspace_Cleanup(t *testing.T) {
	ws := createTestWorkspace(t)
	dir, err := ws.Extract(testutil.BuildZip(t, testutil.ZipEntry{Name: "a.css", Content: "a{}"}))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if err := ws.Cleanup(dir); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("Expected directory to be removed")
	}
	if ws.Active() != 0 {
		t.Errorf("Expected no active directories, got %d", ws.Active())
	}

	if err := ws.Cleanup(t.TempDir()); err == nil {
		t.Error("Expected refusal to remove a directory outside the workspace")
	}
}

func TestWorkspace_CleanupOlderThan(t *testing.T) {
	ws := createTestWorkspace(t)
	dir, err := ws.Extract(testutil.BuildZip(t, testutil.ZipEntry{Name: "a.css", Content: "a{}"}))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if n := ws.CleanupOlderThan(time.Hour); n != 0 {
		t.Errorf("Expected nothing removed, got %d", n)
	}

	ws.mu.Lock()
	ws.dirs[dir] = time.Now().Add(-2 * time.Hour)
	ws.mu.Unlock()

	if n := ws.CleanupOlderThan(time.Hour); n != 1 {
		t.Errorf("Expected 1 removed, got %d", n)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("Expected stale directory to be removed")
	}
}
