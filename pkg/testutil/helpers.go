package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/shelf/pkg/filesystem"
	"github.com/arthur-debert/shelf/pkg/manifest"
)

func readManifest(t *testing.T, dir string) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Read(filesystem.NewOS(), dir)
	if err != nil {
		t.Fatalf("Failed to read manifest in %s: %v", dir, err)
	}
	return m
}

// ReadManifest loads dir/package.json or fails the test
func ReadManifest(t *testing.T, dir string) *manifest.Manifest {
	t.Helper()
	return readManifest(t, dir)
}

// ReadFile returns the content of path or fails the test
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

// WriteFile writes content to path, creating parents
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

// IsSymlink reports whether path is a symlink
func IsSymlink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}
