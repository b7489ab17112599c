package manifest

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/arthur-debert/shelf/pkg/filesystem"
	"github.com/arthur-debert/shelf/pkg/types"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// FileName is the manifest every package directory carries
const FileName = "package.json"

// Field names a dependency field of the manifest
type Field string

const (
	Dependencies    Field = "dependencies"
	DevDependencies Field = "devDependencies"
)

// Other returns the opposite dependency field.
func (f Field) Other() Field {
	if f == DevDependencies {
		return Dependencies
	}
	return DevDependencies
}

// Manifest holds the package.json fields shelf reads or writes
type Manifest struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Private         bool              `json:"private"`
	Main            string            `json:"main"`
	Files           []string          `json:"files"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
	Scripts         map[string]string `json:"scripts"`
	Bin             Bin               `json:"bin"`
	Workspaces      bool              `json:"-"`

	// raw is the document as read; writes edit it in place
	raw []byte
}

// Parse decodes a manifest from data.
func Parse(data []byte) (*Manifest, error) {
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return nil, errors.New(errors.ErrParseFailure, "invalid package manifest: expected a JSON object")
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, errors.ErrParseFailure, "invalid package manifest")
	}
	if ws := gjson.GetBytes(data, "workspaces"); ws.Exists() && ws.Type != gjson.Null {
		m.Workspaces = true
	}
	m.raw = append([]byte(nil), data...)
	return &m, nil
}

// Read loads dir/package.json. A missing file is reported as NotFound.
func Read(fsys types.FS, dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := fsys.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Newf(errors.ErrNotFound, "no %s in %s", FileName, dir).WithDetail("dir", dir)
		}
		return nil, errors.Wrapf(err, errors.ErrIOFailure, "failed to read %s", path)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrParseFailure, "failed to parse %s", path)
	}
	return m, nil
}

// Exists reports whether dir holds a manifest.
func Exists(fsys types.FS, dir string) bool {
	_, err := fsys.Stat(filepath.Join(dir, FileName))
	return err == nil
}

// Marshal renders the manifest. Keys shelf does not own are written back
// unchanged and in their original order.
func (m *Manifest) Marshal() ([]byte, error) {
	doc := m.raw
	if doc == nil {
		doc = []byte("{}")
		for _, kv := range [][2]string{{"name", m.Name}, {"version", m.Version}} {
			var err error
			if doc, err = setJSON(doc, kv[0], kv[1]); err != nil {
				return nil, err
			}
		}
	}

	for _, field := range []Field{Dependencies, DevDependencies} {
		var err error
		deps := m.Deps(field)
		if len(deps) == 0 {
			doc, err = sjson.DeleteBytes(doc, string(field))
		} else {
			doc, err = setJSON(doc, string(field), deps)
		}
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInternal, "failed to update %s", field)
		}
	}
	m.raw = doc

	// npm layout: two-space indent, arrays one item per line, trailing newline
	return pretty.PrettyOptions(doc, &pretty.Options{Indent: "  "}), nil
}

// Write atomically writes the manifest to dir/package.json.
func (m *Manifest) Write(fsys types.FS, dir string) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	return filesystem.WriteFileAtomic(fsys, filepath.Join(dir, FileName), data, 0644)
}

// setJSON replaces or appends the top-level key. The value is encoded
// without HTML escaping so ranges such as ">=1.0.0" stay readable.
func setJSON(doc []byte, key string, value interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, errors.Wrapf(err, errors.ErrInternal, "failed to encode %s", key)
	}
	return sjson.SetRawBytes(doc, key, bytes.TrimRight(buf.Bytes(), "\n"))
}

// Deps returns the mapping of the given field, possibly nil.
func (m *Manifest) Deps(field Field) map[string]string {
	if field == DevDependencies {
		return m.DevDependencies
	}
	return m.Dependencies
}

// Dependency returns the value of name in field.
func (m *Manifest) Dependency(field Field, name string) (string, bool) {
	v, ok := m.Deps(field)[name]
	return v, ok
}

// SetDependency writes name=value into field.
func (m *Manifest) SetDependency(field Field, name, value string) {
	deps := m.Deps(field)
	if deps == nil {
		deps = make(map[string]string)
		if field == DevDependencies {
			m.DevDependencies = deps
		} else {
			m.Dependencies = deps
		}
	}
	deps[name] = value
}

// RemoveDependency deletes name from field, reporting whether it was there.
func (m *Manifest) RemoveDependency(field Field, name string) bool {
	deps := m.Deps(field)
	if _, ok := deps[name]; !ok {
		return false
	}
	delete(deps, name)
	return true
}

// DependencyNames returns the sorted union of dependencies and
// devDependencies.
func (m *Manifest) DependencyNames() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, deps := range []map[string]string{m.Dependencies, m.DevDependencies} {
		for name := range deps {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// FirstScript returns the first of names declared in scripts.
func (m *Manifest) FirstScript(names ...string) (name, command string, ok bool) {
	for _, n := range names {
		if cmd, found := m.Scripts[n]; found && cmd != "" {
			return n, cmd, true
		}
	}
	return "", "", false
}
