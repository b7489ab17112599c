// pkg/filesystem/ops_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem (t.TempDir)
// PURPOSE: Test directory copy, replacement and symlink primitives

package filesystem_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/shelf/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestCopyDir(t *testing.T) {
	fsys := filesystem.NewOS()
	src := filepath.Join(t.TempDir(), "src")
	dst := filepath.Join(t.TempDir(), "dst")

	writeTree(t, src, map[string]string{
		"package.json": `{"name":"left-pad"}`,
		"lib/index.js": "module.exports = 1",
	})
	require.NoError(t, os.Chmod(filepath.Join(src, "lib/index.js"), 0755))
	require.NoError(t, os.Symlink("lib/index.js", filepath.Join(src, "entry.js")))

	require.NoError(t, filesystem.CopyDir(fsys, src, dst))

	data, err := os.ReadFile(filepath.Join(dst, "lib/index.js"))
	require.NoError(t, err)
	assert.Equal(t, "module.exports = 1", string(data))

	info, err := os.Stat(filepath.Join(dst, "lib/index.js"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())

	target, err := os.Readlink(filepath.Join(dst, "entry.js"))
	require.NoError(t, err)
	assert.Equal(t, "lib/index.js", target)
}

func TestCopyFiles(t *testing.T) {
	fsys := filesystem.NewOS()
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")

	writeTree(t, src, map[string]string{
		"package.json":    "{}",
		"lib/a.js":        "a",
		"test/a.test.js":  "skip",
		"lib/nested/b.js": "b",
	})

	require.NoError(t, filesystem.CopyFiles(fsys, src, dst, []string{"package.json", "lib/a.js", "lib/nested/b.js"}))

	assert.FileExists(t, filepath.Join(dst, "package.json"))
	assert.FileExists(t, filepath.Join(dst, "lib/nested/b.js"))
	assert.NoFileExists(t, filepath.Join(dst, "test/a.test.js"))
}

func TestCopyFilesFollowsLinks(t *testing.T) {
	fsys := filesystem.NewOS()
	root := t.TempDir()
	src := filepath.Join(root, "pkg")
	dst := filepath.Join(root, "out")

	writeTree(t, root, map[string]string{
		"shared/util.js": "shared",
		"pkg/lib/a.js":   "a",
	})
	require.NoError(t, os.Symlink("../../shared/util.js", filepath.Join(src, "lib/util.js")))

	require.NoError(t, filesystem.CopyFiles(fsys, src, dst, []string{"lib/a.js", "lib/util.js"}))

	copied := filepath.Join(dst, "lib/util.js")
	info, err := os.Lstat(copied)
	require.NoError(t, err)
	assert.Zero(t, info.Mode()&os.ModeSymlink, "links are copied as regular files")

	data, err := os.ReadFile(copied)
	require.NoError(t, err)
	assert.Equal(t, "shared", string(data))
}

func TestReplaceDir(t *testing.T) {
	fsys := filesystem.NewOS()
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "staging", "left-pad")

	writeTree(t, src, map[string]string{"index.js": "new"})
	writeTree(t, dst, map[string]string{"index.js": "old", "stale.js": "gone"})

	require.NoError(t, filesystem.ReplaceDir(fsys, src, dst))

	data, err := os.ReadFile(filepath.Join(dst, "index.js"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
	assert.NoFileExists(t, filepath.Join(dst, "stale.js"))

	entries, err := os.ReadDir(filepath.Dir(dst))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary siblings must be cleaned up")
}

func TestReplaceWithSymlink(t *testing.T) {
	fsys := filesystem.NewOS()
	root := t.TempDir()
	target := filepath.Join(root, ".shelf", "left-pad")
	link := filepath.Join(root, "node_modules", "left-pad")

	writeTree(t, target, map[string]string{"index.js": "x"})
	writeTree(t, link, map[string]string{"index.js": "copied"})

	require.NoError(t, filesystem.ReplaceWithSymlink(fsys, target, link))

	assert.True(t, filesystem.IsSymlink(fsys, link))
	resolved, err := filesystem.ResolveLink(fsys, link)
	require.NoError(t, err)
	assert.Equal(t, target, resolved)

	data, err := os.ReadFile(filepath.Join(link, "index.js"))
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))

	// Replacing an existing symlink works as well.
	require.NoError(t, filesystem.ReplaceWithSymlink(fsys, target, link))
	assert.True(t, filesystem.IsSymlink(fsys, link))
}

func TestEnsureExecutable(t *testing.T) {
	fsys := filesystem.NewOS()
	path := filepath.Join(t.TempDir(), "cli.js")
	require.NoError(t, os.WriteFile(path, []byte("#!/usr/bin/env node"), 0644))

	require.NoError(t, filesystem.EnsureExecutable(fsys, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
}

func TestWriteFileAtomic(t *testing.T) {
	fsys := filesystem.NewMemory()

	require.NoError(t, filesystem.WriteFileAtomic(fsys, "/project/shelf.lock", []byte("one"), 0644))
	require.NoError(t, filesystem.WriteFileAtomic(fsys, "/project/shelf.lock", []byte("two"), 0644))

	data, err := fsys.ReadFile("/project/shelf.lock")
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := fsys.ReadDir("/project")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
