package paths

import (
	"path/filepath"
	"strings"
)

// Project computes the per-project locations of a consumer or publisher
// directory.
type Project struct {
	// Dir is the normalized project root
	Dir string

	// StagingFolder is the name of the hidden folder holding staged
	// packages, relative to Dir
	StagingFolder string

	// LockfileName is the name of the lockfile, relative to Dir
	LockfileName string
}

// NewProject normalizes dir and returns its layout.
func NewProject(dir, stagingFolder, lockfileName string) (Project, error) {
	abs, err := NormalizePath(dir)
	if err != nil {
		return Project{}, err
	}
	return Project{Dir: abs, StagingFolder: stagingFolder, LockfileName: lockfileName}, nil
}

// ManifestPath returns the project's package.json
func (p Project) ManifestPath() string {
	return filepath.Join(p.Dir, ManifestFileName)
}

// LockfilePath returns the project's lockfile
func (p Project) LockfilePath() string {
	return filepath.Join(p.Dir, p.LockfileName)
}

// ConfigPath returns the project's configuration override file
func (p Project) ConfigPath() string {
	return filepath.Join(p.Dir, ProjectConfigFileName)
}

// StagingDir returns the project's staging folder
func (p Project) StagingDir() string {
	return filepath.Join(p.Dir, p.StagingFolder)
}

// StagedPackageDir returns the staged copy of the named package. Scoped
// names nest one level: @scope/name lives at <staging>/@scope/name.
func (p Project) StagedPackageDir(name string) string {
	return filepath.Join(p.StagingDir(), filepath.FromSlash(name))
}

// ModulePath returns node_modules/<name>
func (p Project) ModulePath(name string) string {
	return filepath.Join(p.Dir, NodeModulesDir, filepath.FromSlash(name))
}

// BinDir returns node_modules/.bin
func (p Project) BinDir() string {
	return filepath.Join(p.Dir, NodeModulesDir, BinDirName)
}

// Locator returns the dependency value pointing at the staged copy of name,
// for example "file:.shelf/left-pad".
func (p Project) Locator(scheme, name string) string {
	return scheme + ":" + filepath.ToSlash(p.StagingFolder) + "/" + name
}

// InStaging reports whether path points inside this project's staging
// folder.
func (p Project) InStaging(path string) bool {
	rel, err := filepath.Rel(p.StagingDir(), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
