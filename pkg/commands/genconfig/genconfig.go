package genconfig

import (
	"path/filepath"

	"github.com/arthur-debert/shelf/pkg/commands/runtime"
	"github.com/arthur-debert/shelf/pkg/config"
	"github.com/arthur-debert/shelf/pkg/filesystem"
	"github.com/arthur-debert/shelf/pkg/logging"
	"github.com/arthur-debert/shelf/pkg/paths"
)

// Options holds options for the genconfig command
type Options struct {
	runtime.Options

	// Commented comments out every value
	Commented bool

	// Write saves the configuration instead of returning it only
	Write bool

	// Project writes ./.shelf.toml instead of the user configuration file
	Project bool
}

// Result carries the generated configuration
type Result struct {
	Content string `json:"content"`
	Written string `json:"written,omitempty"`
	Existed bool   `json:"existed,omitempty"`
}

// GenConfig renders the effective configuration as TOML and optionally
// writes it out. Existing files are never overwritten.
func GenConfig(opts Options) (*Result, error) {
	logger := logging.GetLogger("commands.genconfig")

	rt, err := runtime.New(opts.Options)
	if err != nil {
		return nil, err
	}

	content, err := config.GenerateConfigContent(rt.Config, opts.Commented)
	if err != nil {
		return nil, err
	}
	result := &Result{Content: content}
	if !opts.Write {
		return result, nil
	}

	target := rt.Paths.ConfigFile()
	if opts.Project {
		target = filepath.Join(rt.WorkingDir, paths.ProjectConfigFileName)
	}
	if filesystem.Exists(rt.FS, target) {
		logger.Warn().Str("path", target).Msg("Config file already exists, skipping")
		result.Existed = true
		return result, nil
	}
	if err := filesystem.WriteFileAtomic(rt.FS, target, []byte(content), 0644); err != nil {
		return nil, err
	}
	logger.Info().Str("path", target).Msg("Written config file")
	result.Written = target
	return result, nil
}
