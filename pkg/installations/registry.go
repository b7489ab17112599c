// Package installations keeps the machine-wide registry of which consumer
// directories installed which store package. Push propagation reads it to
// find the projects to update.
package installations

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/arthur-debert/shelf/pkg/filesystem"
	"github.com/arthur-debert/shelf/pkg/logging"
	"github.com/arthur-debert/shelf/pkg/types"
	"github.com/rs/zerolog"
)

// Registry maps package names to consumer directories. It is loaded once
// per invocation and shared by every engine of that run.
type Registry struct {
	fs      types.FS
	path    string
	entries map[string][]string
	dirty   bool
	logger  zerolog.Logger
}

// Load reads the registry at path. A missing file is an empty registry; a
// corrupt one is reported as a parse failure.
func Load(fsys types.FS, path string) (*Registry, error) {
	r := &Registry{
		fs:      fsys,
		path:    path,
		entries: make(map[string][]string),
		logger:  logging.GetLogger("installations"),
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return r, nil
		}
		return nil, errors.Wrapf(err, errors.ErrIOFailure, "failed to read %s", path)
	}

	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, errors.ErrParseFailure, "failed to parse %s", path)
	}
	for name, dirs := range raw {
		for _, dir := range dirs {
			r.add(name, filepath.Clean(dir))
		}
	}
	r.dirty = false
	return r, nil
}

// Path returns the registry location
func (r *Registry) Path() string {
	return r.path
}

// Record adds dir to the set of name. Directories compare by normalized
// absolute path, so recording twice keeps one entry.
func (r *Registry) Record(name, dir string) error {
	abs, err := normalizeDir(dir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInvalidInput, "failed to resolve %s", dir)
	}
	if r.add(name, abs) {
		r.logger.Debug().Str("package", name).Str("dir", abs).Msg("Recorded installation")
	}
	return nil
}

// normalizeDir is the key directories are stored and matched under
func normalizeDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

func (r *Registry) add(name, dir string) bool {
	for _, existing := range r.entries[name] {
		if existing == dir {
			return false
		}
	}
	r.entries[name] = append(r.entries[name], dir)
	r.dirty = true
	return true
}

// List returns the sorted directories recorded for name.
func (r *Registry) List(name string) []string {
	dirs := append([]string(nil), r.entries[name]...)
	sort.Strings(dirs)
	return dirs
}

// Names returns the sorted package names with at least one installation.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name, dirs := range r.entries {
		if len(dirs) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// All returns every installation, ordered by name then directory.
func (r *Registry) All() []types.Installation {
	var out []types.Installation
	for _, name := range r.Names() {
		for _, dir := range r.List(name) {
			out = append(out, types.Installation{Name: name, WorkingDir: dir})
		}
	}
	return out
}

// Remove deletes (name, dir) matches, comparing dir the way Record stores
// it. Unknown entries are ignored.
// It returns the number of entries removed.
func (r *Registry) Remove(entries ...types.Installation) int {
	removed := 0
	for _, inst := range entries {
		dirs := r.entries[inst.Name]
		dir, err := normalizeDir(inst.WorkingDir)
		if err != nil {
			continue
		}
		for i, existing := range dirs {
			if existing == dir {
				r.entries[inst.Name] = append(dirs[:i], dirs[i+1:]...)
				removed++
				r.dirty = true
				r.logger.Debug().Str("package", inst.Name).Str("dir", dir).Msg("Removed installation")
				break
			}
		}
		if len(r.entries[inst.Name]) == 0 {
			delete(r.entries, inst.Name)
		}
	}
	return removed
}

// Dirty reports whether the registry changed since it was loaded or saved.
func (r *Registry) Dirty() bool {
	return r.dirty
}

// Save writes the registry atomically with sorted names and directories.
func (r *Registry) Save() error {
	out := make(map[string][]string, len(r.entries))
	for _, name := range r.Names() {
		out[name] = r.List(name)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode installations")
	}
	if err := filesystem.WriteFileAtomic(r.fs, r.path, buf.Bytes(), 0644); err != nil {
		return err
	}
	r.dirty = false
	return nil
}
