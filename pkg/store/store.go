package store

import (
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/arthur-debert/shelf/pkg/filesystem"
	"github.com/arthur-debert/shelf/pkg/logging"
	"github.com/arthur-debert/shelf/pkg/manifest"
	"github.com/arthur-debert/shelf/pkg/signature"
	"github.com/arthur-debert/shelf/pkg/types"
	"github.com/rs/zerolog"
)

// Entry describes one (name, version) in the store
type Entry struct {
	Name        string    `json:"name"`
	Version     string    `json:"version"`
	Dir         string    `json:"dir"`
	Signature   string    `json:"signature"`
	PublishedAt time.Time `json:"publishedAt"`
	Files       int       `json:"files"`
}

// Store is the versioned package store rooted at a packages directory
type Store struct {
	fs     types.FS
	root   string
	now    func() time.Time
	logger zerolog.Logger
}

// New returns a store whose entries live below packagesDir.
func New(fsys types.FS, packagesDir string) *Store {
	return &Store{
		fs:     fsys,
		root:   packagesDir,
		now:    time.Now,
		logger: logging.GetLogger("store"),
	}
}

// Root returns the packages directory
func (s *Store) Root() string {
	return s.root
}

// PackageDir returns the directory holding every version of name
func (s *Store) PackageDir(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

// EntryDir returns the directory of (name, version)
func (s *Store) EntryDir(name, version string) string {
	return filepath.Join(s.PackageDir(name), version)
}

// ResolveVersion returns requested when that version exists, or the most
// recently published version when requested is empty.
func (s *Store) ResolveVersion(name, requested string) (string, error) {
	if requested != "" {
		info, err := s.fs.Stat(s.EntryDir(name, requested))
		if err != nil || !info.IsDir() {
			return "", errors.Newf(errors.ErrNotFound, "%s@%s is not in the store", name, requested).
				WithDetail("package", name).WithDetail("version", requested)
		}
		return requested, nil
	}

	versions, err := s.versionDirs(name)
	if err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", errors.Newf(errors.ErrNotFound, "%s is not in the store", name).WithDetail("package", name)
	}
	return versions[0].name, nil
}

type versionDir struct {
	name    string
	modTime time.Time
	semver  *semver.Version
}

// versionDirs lists the versions of name, newest first. Ties on
// modification time fall back to semantic version order, then to reverse
// lexical order, so the result never depends on directory listing order.
func (s *Store) versionDirs(name string) ([]versionDir, error) {
	entries, err := s.fs.ReadDir(s.PackageDir(name))
	if err != nil {
		return nil, errors.Newf(errors.ErrNotFound, "%s is not in the store", name).WithDetail("package", name)
	}

	var out []versionDir
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		v := versionDir{name: entry.Name(), modTime: info.ModTime()}
		if sv, err := semver.NewVersion(entry.Name()); err == nil {
			v.semver = sv
		}
		out = append(out, v)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.modTime.Equal(b.modTime) {
			return a.modTime.After(b.modTime)
		}
		switch {
		case a.semver != nil && b.semver != nil && !a.semver.Equal(b.semver):
			return a.semver.GreaterThan(b.semver)
		case a.semver != nil && b.semver == nil:
			return true
		case a.semver == nil && b.semver != nil:
			return false
		}
		return a.name > b.name
	})
	return out, nil
}

// ReadManifest loads the manifest stored for (name, version).
func (s *Store) ReadManifest(name, version string) (*manifest.Manifest, error) {
	dir := s.EntryDir(name, version)
	if _, err := s.fs.Stat(dir); err != nil {
		return nil, errors.Newf(errors.ErrNotFound, "%s@%s is not in the store", name, version).
			WithDetail("package", name).WithDetail("version", version)
	}
	return manifest.Read(s.fs, dir)
}

// ReadSignature returns the signature recorded in dir, or "" when absent.
func (s *Store) ReadSignature(dir string) string {
	return ReadSignature(s.fs, dir)
}

// Entry returns the description of (name, version).
func (s *Store) Entry(name, version string) (*Entry, error) {
	dir := s.EntryDir(name, version)
	if _, err := s.fs.Stat(dir); err != nil {
		return nil, errors.Newf(errors.ErrNotFound, "%s@%s is not in the store", name, version)
	}
	entry := &Entry{Name: name, Version: version, Dir: dir}
	if meta, err := ReadMeta(s.fs, dir); err == nil {
		entry.Signature = meta.Signature
		entry.PublishedAt = meta.PublishedAt
		entry.Files = meta.Files
	}
	return entry, nil
}

// PublishInput describes one package to copy into the store
type PublishInput struct {
	// SourceDir is the package directory files are copied from
	SourceDir string
	// Manifest is written instead of SourceDir/package.json; its name and
	// version select the entry.
	Manifest *manifest.Manifest
	// Files lists slash-separated paths relative to SourceDir
	Files []string
	// Changed skips the write when the signature matches the current
	// entry.
	Changed bool
}

// Publish writes a store entry for the input's (name, version), replacing
// any existing one. With Changed set and an identical signature the store
// is left untouched and an UNCHANGED error is returned along with the
// existing entry.
func (s *Store) Publish(in PublishInput) (*Entry, error) {
	m := in.Manifest
	if m == nil || m.Name == "" || m.Version == "" {
		return nil, errors.New(errors.ErrParseFailure, "package manifest needs a name and a version to be published")
	}
	if err := manifest.ValidateName(m.Name); err != nil {
		return nil, err
	}
	if err := manifest.ValidateVersion(m.Version); err != nil {
		return nil, err
	}

	manifestData, err := m.Marshal()
	if err != nil {
		return nil, err
	}

	var files []string
	for _, rel := range in.Files {
		rel = path.Clean(filepath.ToSlash(rel))
		if rel == manifest.FileName || rel == MetaFileName {
			continue
		}
		files = append(files, rel)
	}
	sig := signature.New()
	if err := sig.AddFiles(s.fs, in.SourceDir, files); err != nil {
		return nil, err
	}
	sig.Add(manifest.FileName, 0644, manifestData)
	signatureValue := sig.Sum()

	dst := s.EntryDir(m.Name, m.Version)
	if in.Changed {
		if existing := ReadSignature(s.fs, dst); existing == signatureValue {
			s.logger.Info().Str("package", m.Name).Str("version", m.Version).Msg("Signature unchanged, store left untouched")
			entry, _ := s.Entry(m.Name, m.Version)
			return entry, errors.Newf(errors.ErrUnchanged, "%s@%s is unchanged", m.Name, m.Version).
				WithDetail("signature", signatureValue)
		}
	}

	if err := s.fs.MkdirAll(s.PackageDir(m.Name), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrIOFailure, "failed to create store directory for %s", m.Name)
	}

	tmp := filesystem.TempSibling(dst)
	entry, err := s.writeEntry(tmp, in.SourceDir, files, manifestData, m, signatureValue)
	if err != nil {
		_ = s.fs.RemoveAll(tmp)
		return nil, err
	}
	if err := filesystem.MoveReplace(s.fs, tmp, dst); err != nil {
		_ = s.fs.RemoveAll(tmp)
		return nil, err
	}
	entry.Dir = dst

	s.logger.Info().
		Str("package", m.Name).
		Str("version", m.Version).
		Str("signature", signatureValue).
		Int("files", entry.Files).
		Msg("Published to store")
	return entry, nil
}

func (s *Store) writeEntry(dir, sourceDir string, files []string, manifestData []byte, m *manifest.Manifest, sig string) (*Entry, error) {
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrIOFailure, "failed to create %s", dir)
	}
	if err := filesystem.CopyFiles(s.fs, sourceDir, dir, files); err != nil {
		return nil, err
	}
	if err := s.fs.WriteFile(filepath.Join(dir, manifest.FileName), manifestData, 0644); err != nil {
		return nil, errors.Wrapf(err, errors.ErrIOFailure, "failed to write manifest into %s", dir)
	}

	meta := &Meta{
		Name:        m.Name,
		Version:     m.Version,
		Signature:   sig,
		PublishedAt: s.now().UTC().Truncate(time.Second),
		Files:       len(files) + 1,
	}
	data, err := marshalMeta(meta)
	if err != nil {
		return nil, err
	}
	if err := s.fs.WriteFile(filepath.Join(dir, MetaFileName), data, 0644); err != nil {
		return nil, errors.Wrapf(err, errors.ErrIOFailure, "failed to write metadata into %s", dir)
	}

	return &Entry{
		Name:        meta.Name,
		Version:     meta.Version,
		Signature:   meta.Signature,
		PublishedAt: meta.PublishedAt,
		Files:       meta.Files,
	}, nil
}

// Versions lists the entries of name, newest first.
func (s *Store) Versions(name string) ([]Entry, error) {
	dirs, err := s.versionDirs(name)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(dirs))
	for _, d := range dirs {
		entry, err := s.Entry(name, d.name)
		if err != nil {
			continue
		}
		out = append(out, *entry)
	}
	return out, nil
}

// Packages lists every package name in the store, sorted. Scoped packages
// are reported as @scope/name.
func (s *Store) Packages() ([]string, error) {
	entries, err := s.fs.ReadDir(s.root)
	if err != nil {
		// An empty store has no packages directory yet
		return nil, nil
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if !strings.HasPrefix(entry.Name(), "@") {
			names = append(names, entry.Name())
			continue
		}
		scoped, err := s.fs.ReadDir(filepath.Join(s.root, entry.Name()))
		if err != nil {
			continue
		}
		for _, sub := range scoped {
			if sub.IsDir() && !strings.HasPrefix(sub.Name(), ".") {
				names = append(names, entry.Name()+"/"+sub.Name())
			}
		}
	}
	sort.Strings(names)
	return names, nil
}
