// pkg/testutil/environment.go
// DEPENDENCIES: None (base test utilities)
// PURPOSE: Orchestrate isolated shelf environments for engine tests

package testutil

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/shelf/pkg/filesystem"
	"github.com/arthur-debert/shelf/pkg/installations"
	"github.com/arthur-debert/shelf/pkg/paths"
	"github.com/arthur-debert/shelf/pkg/store"
	"github.com/arthur-debert/shelf/pkg/types"
)

// Default per-project names used by tests
const (
	StagingFolder = ".shelf"
	LockfileName  = "shelf.lock"
)

// TestEnvironment provides an isolated shelf installation
type TestEnvironment struct {
	Root     string
	FS       types.FS
	Paths    paths.Paths
	Store    *store.Store
	Registry *installations.Registry
	Runner   *FakeRunner

	t *testing.T
}

// NewTestEnvironment creates data, config and state directories below a
// temp dir and points the SHELF_* variables at them.
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	root := t.TempDir()
	// macOS hands out /var paths that are symlinks to /private/var
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	t.Setenv(paths.EnvShelfDataDir, filepath.Join(root, "data"))
	t.Setenv(paths.EnvShelfConfigDir, filepath.Join(root, "config"))
	t.Setenv(paths.EnvShelfStateDir, filepath.Join(root, "state"))
	t.Setenv(paths.EnvShelfStoreDir, "")

	p, err := paths.New()
	if err != nil {
		t.Fatalf("Failed to create paths: %v", err)
	}

	fsys := filesystem.NewOS()
	registry, err := installations.Load(fsys, p.InstallationsFile())
	if err != nil {
		t.Fatalf("Failed to load registry: %v", err)
	}

	return &TestEnvironment{
		Root:     root,
		FS:       fsys,
		Paths:    p,
		Store:    store.New(fsys, p.PackagesDir()),
		Registry: registry,
		Runner:   NewFakeRunner(),
		t:        t,
	}
}

// Dir returns an absolute path below the environment root
func (e *TestEnvironment) Dir(parts ...string) string {
	return filepath.Join(append([]string{e.Root}, parts...)...)
}

// Project returns the layout of a project directory below the root
func (e *TestEnvironment) Project(name string) paths.Project {
	e.t.Helper()
	p, err := paths.NewProject(e.Dir(name), StagingFolder, LockfileName)
	if err != nil {
		e.t.Fatalf("Failed to create project layout: %v", err)
	}
	return p
}

// ReloadRegistry reads the registry back from disk
func (e *TestEnvironment) ReloadRegistry() *installations.Registry {
	e.t.Helper()
	r, err := installations.Load(e.FS, e.Paths.InstallationsFile())
	if err != nil {
		e.t.Fatalf("Failed to reload registry: %v", err)
	}
	return r
}
