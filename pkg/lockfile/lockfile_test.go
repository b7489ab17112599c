// pkg/lockfile/lockfile_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: In-memory filesystem (afero)
// PURPOSE: Test lockfile loading, upserts, mode flags and persistence

package lockfile_test

import (
	"testing"

	"github.com/arthur-debert/shelf/pkg/filesystem"
	"github.com/arthur-debert/shelf/pkg/lockfile"
	"github.com/arthur-debert/shelf/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFS(t *testing.T) types.FS {
	t.Helper()
	fsys := filesystem.NewMemory()
	require.NoError(t, fsys.MkdirAll("/app", 0755))
	return fsys
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    map[string]lockfile.Entry
	}{
		{
			name: "missing file",
			want: map[string]lockfile.Entry{},
		},
		{
			name:    "corrupt file degrades to empty",
			content: "{not json",
			want:    map[string]lockfile.Entry{},
		},
		{
			name:    "valid file",
			content: `{"version":"v1","packages":{"left-pad":{"version":"1.0.0","file":true,"replaced":"^1.0.0","signature":"sha256:ab"}}}`,
			want: map[string]lockfile.Entry{
				"left-pad": {Version: "1.0.0", File: true, Replaced: "^1.0.0", Signature: "sha256:ab"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := newFS(t)
			if tt.content != "" {
				require.NoError(t, fsys.WriteFile("/app/shelf.lock", []byte(tt.content), 0644))
			}

			lf, err := lockfile.Load(fsys, "/app", "shelf.lock")
			require.NoError(t, err)
			assert.Equal(t, "/app/shelf.lock", lf.Path())
			assert.Equal(t, len(tt.want), lf.Len())
			for name, want := range tt.want {
				got, ok := lf.Get(name)
				require.True(t, ok)
				assert.Equal(t, want, got)
			}
		})
	}
}

func TestUpsertReplacesWholesale(t *testing.T) {
	fsys := newFS(t)
	lf, err := lockfile.Load(fsys, "/app", "shelf.lock")
	require.NoError(t, err)

	lf.Upsert(
		lockfile.NamedEntry{Name: "a", Entry: lockfile.Entry{Version: "1.0.0", File: true, Replaced: "^1"}},
		lockfile.NamedEntry{Name: "b", Entry: lockfile.Entry{Version: "2.0.0", Link: true}},
	)
	lf.Upsert(lockfile.NamedEntry{Name: "a", Entry: lockfile.Entry{Version: "1.1.0", Pure: true}})

	a, _ := lf.Get("a")
	assert.Equal(t, lockfile.Entry{Version: "1.1.0", Pure: true}, a, "no field merge with the old entry")
	b, ok := lf.Get("b")
	assert.True(t, ok)
	assert.Equal(t, "2.0.0", b.Version)
	assert.Equal(t, []string{"a", "b"}, lf.Names())

	lf.Remove("b", "unknown")
	assert.Equal(t, []string{"a"}, lf.Names())
}

func TestSaveRoundTrip(t *testing.T) {
	fsys := newFS(t)
	lf, err := lockfile.Load(fsys, "/app", "shelf.lock")
	require.NoError(t, err)

	lf.Upsert(
		lockfile.NamedEntry{Name: "left-pad", Entry: lockfile.EntryFor(lockfile.ModeFile, "1.0.0", "^1.0.0", "sha256:ab")},
		lockfile.NamedEntry{Name: "@acme/tool", Entry: lockfile.EntryFor(lockfile.ModeLink, "", "", "sha256:cd")},
	)
	require.NoError(t, lf.Save())

	data, err := fsys.ReadFile("/app/shelf.lock")
	require.NoError(t, err)
	want := `{
  "version": "v1",
  "packages": {
    "@acme/tool": {
      "signature": "sha256:cd"
    },
    "left-pad": {
      "version": "1.0.0",
      "replaced": "^1.0.0",
      "file": true,
      "signature": "sha256:ab"
    }
  }
}
`
	assert.Equal(t, want, string(data))

	reloaded, err := lockfile.Load(fsys, "/app", "shelf.lock")
	require.NoError(t, err)
	again, err := reloaded.Marshal()
	require.NoError(t, err)
	assert.Equal(t, data, again, "reload and save must be byte-identical")
}

func TestSaveEmptyRemovesFile(t *testing.T) {
	fsys := newFS(t)
	require.NoError(t, fsys.WriteFile("/app/shelf.lock", []byte(`{"version":"v1","packages":{"a":{}}}`), 0644))

	lf, err := lockfile.Load(fsys, "/app", "shelf.lock")
	require.NoError(t, err)
	lf.Remove("a")
	require.NoError(t, lf.Save())

	_, err = fsys.Stat("/app/shelf.lock")
	assert.Error(t, err)

	// Saving an empty table without a file is fine too.
	require.NoError(t, lf.Save())
}

func TestModeFlags(t *testing.T) {
	tests := []struct {
		mode  lockfile.Mode
		entry lockfile.Entry
	}{
		{lockfile.ModePure, lockfile.Entry{Pure: true}},
		{lockfile.ModeFile, lockfile.Entry{File: true}},
		{lockfile.ModeLinkDep, lockfile.Entry{Link: true}},
		{lockfile.ModeLink, lockfile.Entry{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			e := lockfile.EntryFor(tt.mode, "", "", "")
			assert.Equal(t, tt.entry, e)
			assert.Equal(t, tt.mode, e.Mode())

			set := 0
			for _, flag := range []bool{e.Pure, e.File, e.Link} {
				if flag {
					set++
				}
			}
			assert.LessOrEqual(t, set, 1)
		})
	}
}
