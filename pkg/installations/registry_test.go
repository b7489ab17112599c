// pkg/installations/registry_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: In-memory filesystem (afero)
// PURPOSE: Test installation registry idempotence, removal and persistence

package installations_test

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/arthur-debert/shelf/pkg/filesystem"
	"github.com/arthur-debert/shelf/pkg/installations"
	"github.com/arthur-debert/shelf/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const registryPath = "/data/shelf/installations.json"

func TestLoadMissing(t *testing.T) {
	r, err := installations.Load(filesystem.NewMemory(), registryPath)
	require.NoError(t, err)
	assert.Empty(t, r.Names())
	assert.False(t, r.Dirty())
}

func TestLoadCorrupt(t *testing.T) {
	fsys := filesystem.NewMemory()
	require.NoError(t, fsys.MkdirAll("/data/shelf", 0755))
	require.NoError(t, fsys.WriteFile(registryPath, []byte("[1,2"), 0644))

	_, err := installations.Load(fsys, registryPath)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrParseFailure))
}

func TestRecordIsIdempotent(t *testing.T) {
	r, err := installations.Load(filesystem.NewMemory(), registryPath)
	require.NoError(t, err)

	require.NoError(t, r.Record("left-pad", "/home/u/app"))
	require.NoError(t, r.Record("left-pad", "/home/u/app/"))
	require.NoError(t, r.Record("left-pad", "/home/u/./app"))
	require.NoError(t, r.Record("left-pad", "/home/u/other"))

	assert.Equal(t, []string{"/home/u/app", "/home/u/other"}, r.List("left-pad"))
	assert.True(t, r.Dirty())
}

func TestRemove(t *testing.T) {
	r, err := installations.Load(filesystem.NewMemory(), registryPath)
	require.NoError(t, err)
	require.NoError(t, r.Record("left-pad", "/home/u/app"))
	require.NoError(t, r.Record("left-pad", "/home/u/other"))
	require.NoError(t, r.Record("right-pad", "/home/u/app"))

	removed := r.Remove(
		types.Installation{Name: "left-pad", WorkingDir: "/home/u/app"},
		types.Installation{Name: "left-pad", WorkingDir: "/home/u/missing"},
		types.Installation{Name: "unknown", WorkingDir: "/home/u/app"},
		types.Installation{Name: "right-pad", WorkingDir: "/home/u/app"},
	)
	assert.Equal(t, 2, removed)
	assert.Equal(t, []string{"/home/u/other"}, r.List("left-pad"))
	assert.Equal(t, []string{"left-pad"}, r.Names())
	assert.Equal(t, []types.Installation{{Name: "left-pad", WorkingDir: "/home/u/other"}}, r.All())
}

func TestRemoveRelativeDir(t *testing.T) {
	r, err := installations.Load(filesystem.NewMemory(), registryPath)
	require.NoError(t, err)
	abs, err := filepath.Abs("consumer")
	require.NoError(t, err)

	require.NoError(t, r.Record("left-pad", "consumer"))
	assert.Equal(t, []string{abs}, r.List("left-pad"))

	removed := r.Remove(types.Installation{Name: "left-pad", WorkingDir: "./consumer/"})
	assert.Equal(t, 1, removed)
	assert.Empty(t, r.Names())

	require.NoError(t, r.Record("left-pad", abs))
	assert.Equal(t, 1, r.Remove(types.Installation{Name: "left-pad", WorkingDir: "consumer"}))
}

func TestSaveAndReload(t *testing.T) {
	fsys := filesystem.NewMemory()
	r, err := installations.Load(fsys, registryPath)
	require.NoError(t, err)
	require.NoError(t, r.Record("left-pad", "/home/u/zeta"))
	require.NoError(t, r.Record("left-pad", "/home/u/alpha"))
	require.NoError(t, r.Record("@acme/tool", "/home/u/alpha"))
	require.NoError(t, r.Save())
	assert.False(t, r.Dirty())

	data, err := fsys.ReadFile(registryPath)
	require.NoError(t, err)
	want := `{
  "@acme/tool": [
    "/home/u/alpha"
  ],
  "left-pad": [
    "/home/u/alpha",
    "/home/u/zeta"
  ]
}
`
	assert.Equal(t, want, string(data))

	reloaded, err := installations.Load(fsys, registryPath)
	require.NoError(t, err)
	assert.Equal(t, r.All(), reloaded.All())
	assert.False(t, reloaded.Dirty())
}
