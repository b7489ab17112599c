package config

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/shelf/pkg/errors"
)

// Config is the effective shelf configuration
type Config struct {
	Project ProjectConfig `koanf:"project" toml:"project"`
	Store   StoreConfig   `koanf:"store" toml:"store"`
	Add     AddConfig     `koanf:"add" toml:"add"`
	Publish PublishConfig `koanf:"publish" toml:"publish"`
	Scripts ScriptsConfig `koanf:"scripts" toml:"scripts"`
	Output  OutputConfig  `koanf:"output" toml:"output"`
}

// ProjectConfig names the per-project files
type ProjectConfig struct {
	StagingFolder string `koanf:"staging_folder" toml:"staging_folder"`
	Lockfile      string `koanf:"lockfile" toml:"lockfile"`
}

// StoreConfig locates the package store
type StoreConfig struct {
	Dir string `koanf:"dir" toml:"dir"`
}

// AddConfig holds add/link defaults
type AddConfig struct {
	PureForWorkspaces bool `koanf:"pure_for_workspaces" toml:"pure_for_workspaces"`
}

// PublishConfig holds publish defaults, overridable by flags
type PublishConfig struct {
	Changed   bool `koanf:"changed" toml:"changed"`
	Push      bool `koanf:"push" toml:"push"`
	Recursive bool `koanf:"recursive" toml:"recursive"`
}

// ScriptsConfig lists lifecycle script names in priority order
type ScriptsConfig struct {
	PrePublish  []string `koanf:"pre_publish" toml:"pre_publish"`
	PostPublish []string `koanf:"post_publish" toml:"post_publish"`
	PostInstall []string `koanf:"post_install" toml:"post_install"`
}

// OutputConfig selects the output renderer
type OutputConfig struct {
	Format string `koanf:"format" toml:"format"`
}

var validFormats = []string{"auto", "term", "text", "json"}

// Validate checks values that would otherwise surface as confusing I/O
// errors later on.
func (c *Config) Validate() error {
	staging := c.Project.StagingFolder
	if staging == "" || filepath.IsAbs(staging) || strings.HasPrefix(filepath.Clean(staging), "..") {
		return errors.Newf(errors.ErrInvalidInput, "project.staging_folder must be a relative folder name, got %q", staging).
			WithDetail("key", "project.staging_folder")
	}
	if c.Project.Lockfile == "" || strings.ContainsRune(c.Project.Lockfile, filepath.Separator) {
		return errors.Newf(errors.ErrInvalidInput, "project.lockfile must be a file name, got %q", c.Project.Lockfile).
			WithDetail("key", "project.lockfile")
	}
	for _, f := range validFormats {
		if c.Output.Format == f {
			return nil
		}
	}
	return errors.Newf(errors.ErrInvalidInput, "output.format must be one of %s, got %q",
		strings.Join(validFormats, ", "), c.Output.Format).WithDetail("key", "output.format")
}
