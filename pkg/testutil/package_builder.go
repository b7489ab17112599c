// pkg/testutil/package_builder.go
// DEPENDENCIES: None (base test utilities)
// PURPOSE: Declarative setup of package directories

package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/shelf/pkg/store"
)

// PackageBuilder writes a package directory
type PackageBuilder struct {
	t        *testing.T
	dir      string
	manifest map[string]interface{}
	files    map[string]string
}

// NewPackage starts a package named name at dir
func NewPackage(t *testing.T, dir, name, version string) *PackageBuilder {
	return &PackageBuilder{
		t:   t,
		dir: dir,
		manifest: map[string]interface{}{
			"name":    name,
			"version": version,
		},
		files: make(map[string]string),
	}
}

// NewConsumer starts a consumer project manifest with no version
func NewConsumer(t *testing.T, dir string) *PackageBuilder {
	b := NewPackage(t, dir, filepath.Base(dir), "0.0.0")
	return b
}

// With sets an arbitrary manifest key
func (b *PackageBuilder) With(key string, value interface{}) *PackageBuilder {
	b.manifest[key] = value
	return b
}

// Dependency adds name=value to dependencies
func (b *PackageBuilder) Dependency(name, value string) *PackageBuilder {
	return b.addTo("dependencies", name, value)
}

// DevDependency adds name=value to devDependencies
func (b *PackageBuilder) DevDependency(name, value string) *PackageBuilder {
	return b.addTo("devDependencies", name, value)
}

// Script declares a lifecycle script
func (b *PackageBuilder) Script(name, command string) *PackageBuilder {
	return b.addTo("scripts", name, command)
}

func (b *PackageBuilder) addTo(field, name, value string) *PackageBuilder {
	m, _ := b.manifest[field].(map[string]string)
	if m == nil {
		m = make(map[string]string)
		b.manifest[field] = m
	}
	m[name] = value
	return b
}

// File adds a file relative to the package root
func (b *PackageBuilder) File(rel, content string) *PackageBuilder {
	b.files[rel] = content
	return b
}

// Build writes everything and returns the package directory
func (b *PackageBuilder) Build() string {
	b.t.Helper()

	data, err := json.MarshalIndent(b.manifest, "", "  ")
	if err != nil {
		b.t.Fatalf("Failed to encode manifest: %v", err)
	}
	b.write("package.json", string(data)+"\n")
	for rel, content := range b.files {
		b.write(rel, content)
	}
	return b.dir
}

func (b *PackageBuilder) write(rel, content string) {
	b.t.Helper()
	path := filepath.Join(b.dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		b.t.Fatalf("Failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		b.t.Fatalf("Failed to write %s: %v", path, err)
	}
}

// PublishTo builds the package and publishes every file into s
func (b *PackageBuilder) PublishTo(s *store.Store) *store.Entry {
	b.t.Helper()
	dir := b.Build()

	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, _ := filepath.Rel(dir, path)
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		b.t.Fatalf("Failed to list %s: %v", dir, err)
	}

	m := readManifest(b.t, dir)
	entry, err := s.Publish(store.PublishInput{SourceDir: dir, Manifest: m, Files: files})
	if err != nil {
		b.t.Fatalf("Failed to publish %s: %v", dir, err)
	}
	return entry
}
