package add

import (
	"context"

	"github.com/arthur-debert/shelf/pkg/commands/runtime"
	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/arthur-debert/shelf/pkg/installer"
	"github.com/arthur-debert/shelf/pkg/logging"
)

// Options holds options for the add and link commands
type Options struct {
	runtime.Options

	Packages []string

	Dev     bool
	LinkDep bool
	Pure    *bool

	Force       bool
	SkipScripts bool
}

// Result lists the packages installed into the working directory
type Result struct {
	Command    string                    `json:"command"`
	WorkingDir string                    `json:"workingDir"`
	Installed  []installer.InstallResult `json:"installed"`
}

// Add installs store packages with file: (or link:) locators
func Add(ctx context.Context, opts Options) (*Result, error) {
	return run(ctx, "add", opts, false)
}

// Link symlinks store packages into node_modules without touching the
// manifest
func Link(ctx context.Context, opts Options) (*Result, error) {
	return run(ctx, "link", opts, true)
}

func run(ctx context.Context, command string, opts Options, link bool) (*Result, error) {
	logger := logging.GetLogger("commands." + command)
	if len(opts.Packages) == 0 {
		return nil, errors.New(errors.ErrInvalidInput, "no packages given")
	}

	rt, err := runtime.New(opts.Options)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("dir", rt.WorkingDir).Strs("packages", opts.Packages).Msg("Installing packages")
	results, err := rt.Installer.AddPackages(ctx, opts.Packages, installer.AddOptions{
		WorkingDir:  rt.WorkingDir,
		Dev:         opts.Dev,
		Link:        link,
		LinkDep:     opts.LinkDep,
		Pure:        opts.Pure,
		Force:       opts.Force,
		SkipScripts: opts.SkipScripts,
	})
	if err != nil {
		return nil, err
	}
	return &Result{Command: command, WorkingDir: rt.WorkingDir, Installed: results}, nil
}
