// Package lockfile records, per consumer project, how each shelf package
// was installed so update and push can replay the same installation.
package lockfile

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
)

// FormatVersion is written into every lockfile
const FormatVersion = "v1"

// Mode is how a package was installed, derived from an entry's flags
type Mode string

const (
	// ModePure stages the package without touching the manifest or
	// node_modules
	ModePure Mode = "pure"
	// ModeFile writes a file: locator into the manifest
	ModeFile Mode = "file"
	// ModeLinkDep writes a link: locator into the manifest
	ModeLinkDep Mode = "link-dep"
	// ModeLink symlinks node_modules without touching the manifest
	ModeLink Mode = "link"
)

// Entry is how one package was installed into the project
type Entry struct {
	Version   string `json:"version,omitempty"`
	Replaced  string `json:"replaced,omitempty"`
	Pure      bool   `json:"pure,omitempty"`
	File      bool   `json:"file,omitempty"`
	Link      bool   `json:"link,omitempty"`
	Signature string `json:"signature,omitempty"`
}

// Mode returns the installation mode the flags describe.
func (e Entry) Mode() Mode {
	switch {
	case e.Pure:
		return ModePure
	case e.File:
		return ModeFile
	case e.Link:
		return ModeLinkDep
	default:
		return ModeLink
	}
}

// EntryFor builds an entry whose flags encode mode.
func EntryFor(mode Mode, version, replaced, signature string) Entry {
	return Entry{
		Version:   version,
		Replaced:  replaced,
		Pure:      mode == ModePure,
		File:      mode == ModeFile,
		Link:      mode == ModeLinkDep,
		Signature: signature,
	}
}

// NamedEntry pairs an entry with its package name
type NamedEntry struct {
	Name string
	Entry
}

type fileFormat struct {
	Version  string           `json:"version"`
	Packages map[string]Entry `json:"packages"`
}

// Lockfile is the in-memory table of one project's lockfile
type Lockfile struct {
	fs       types.FS
	path     string
	packages map[string]Entry
}

// Load reads dir/name. A missing file yields an empty table; so does a
// corrupt one, after a warning, so callers fall back to reinstalling.
func Load(fsys types.FS, dir, name string) (*Lockfile, error) {
	logger := logging.GetLogger("lockfile")
	lf := &Lockfile{
		fs:       fsys,
		path:     filepath.Join(dir, name),
		packages: make(map[string]Entry),
	}

	data, err := fsys.ReadFile(lf.path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return lf, nil
		}
		return nil, errors.Wrapf(err, errors.ErrIOFailure, "failed to read %s", lf.path)
	}

	var parsed fileFormat
	if err := json.Unmarshal(data, &parsed); err != nil {
		logger.Warn().Err(err).Str("path", lf.path).Msg("Ignoring corrupt lockfile")
		return lf, nil
	}
	for name, entry := range parsed.Packages {
		lf.packages[name] = entry
	}
	return lf, nil
}

// Path returns the lockfile location
func (l *Lockfile) Path() string {
	return l.path
}

// Get returns the entry for name.
func (l *Lockfile) Get(name string) (Entry, bool) {
	e, ok := l.packages[name]
	return e, ok
}

// Names returns the recorded package names, sorted.
func (l *Lockfile) Names() []string {
	names := make([]string, 0, len(l.packages))
	for name := range l.packages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of entries
func (l *Lockfile) Len() int {
	return len(l.packages)
}

// Upsert replaces each named entry wholesale. Other entries are kept.
func (l *Lockfile) Upsert(entries ...NamedEntry) {
	for _, e := range entries {
		l.packages[e.Name] = e.Entry
	}
}

// Remove drops the named entries, ignoring unknown names.
func (l *Lockfile) Remove(names ...string) {
	for _, name := range names {
		delete(l.packages, name)
	}
}

// Save writes the table atomically, or removes the file when the table is
// empty.
func (l *Lockfile) Save() error {
	if len(l.packages) == 0 {
		if err := l.fs.Remove(l.path); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			return errors.Wrapf(err, errors.ErrIOFailure, "failed to remove %s", l.path)
		}
		return nil
	}

	data, err := l.Marshal()
	if err != nil {
		return err
	}
	return filesystem.WriteFileAtomic(l.fs, l.path, data, 0644)
}

// Marshal renders the lockfile. encoding/json sorts map keys, so the output
// is stable for a given table.
func (l *Lockfile) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fileFormat{Version: FormatVersion, Packages: l.packages}); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode lockfile")
	}
	return buf.Bytes(), nil
}
