// Package runtime assembles what every shelf command needs: resolved
// paths, the merged configuration, the store, the installation registry and
// the engines built on them. One Runtime serves one invocation, so the
// registry is loaded once and shared by every engine.
package runtime

import (
	"io"
	"os"
	"path/filepath"

	"github.com/arthur-debert/shelf/pkg/config"
	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/arthur-debert/shelf/pkg/filesystem"
	"github.com/arthur-debert/shelf/pkg/installations"
	"github.com/arthur-debert/shelf/pkg/installer"
	"github.com/arthur-debert/shelf/pkg/logging"
	"github.com/arthur-debert/shelf/pkg/paths"
	"github.com/arthur-debert/shelf/pkg/publish"
	"github.com/arthur-debert/shelf/pkg/scripts"
	"github.com/arthur-debert/shelf/pkg/store"
	"github.com/arthur-debert/shelf/pkg/types"
)

// Options are shared by every command
type Options struct {
	// WorkingDir is the project the command runs in; defaults to the
	// current directory
	WorkingDir string

	// StoreDir overrides the store location
	StoreDir string

	// Overrides are configuration values set from flags, keyed by dotted
	// path such as "publish.push"
	Overrides map[string]interface{}

	// Runner replaces the shell script runner
	Runner scripts.Runner

	// Stdout and Stderr receive lifecycle script output
	Stdout io.Writer
	Stderr io.Writer
}

// Runtime is the wired state of one invocation
type Runtime struct {
	WorkingDir string
	Paths      paths.Paths
	Config     *config.Config
	FS         types.FS
	Store      *store.Store
	Registry   *installations.Registry
	Installer  *installer.Installer
	Publisher  *publish.Publisher
}

// New resolves paths and configuration for opts.WorkingDir and builds the
// engines. Store location precedence is the StoreDir option, then
// SHELF_STORE_DIR, then store.dir from configuration.
func New(opts Options) (*Runtime, error) {
	logger := logging.GetLogger("runtime")

	wd := opts.WorkingDir
	if wd == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to get working directory")
		}
		wd = cwd
	}
	wd, err := paths.NormalizePath(wd)
	if err != nil {
		return nil, err
	}

	p, err := paths.New()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(config.Sources{
		UserFile:    p.ConfigFile(),
		ProjectFile: filepath.Join(wd, paths.ProjectConfigFileName),
		Overrides:   opts.Overrides,
	})
	if err != nil {
		return nil, err
	}

	storeDir := opts.StoreDir
	if storeDir == "" && os.Getenv(paths.EnvShelfStoreDir) == "" {
		storeDir = cfg.Store.Dir
	}
	if p, err = paths.WithStoreDir(p, storeDir); err != nil {
		return nil, err
	}

	fsys := filesystem.NewOS()
	registry, err := installations.Load(fsys, p.InstallationsFile())
	if err != nil {
		return nil, err
	}

	runner := opts.Runner
	if runner == nil {
		stdout, stderr := opts.Stdout, opts.Stderr
		if stdout == nil {
			stdout = os.Stdout
		}
		if stderr == nil {
			stderr = os.Stderr
		}
		runner = scripts.NewShellRunner(stdout, stderr)
	}

	st := store.New(fsys, p.PackagesDir())
	inst := installer.New(fsys, st, registry, runner, installer.Settings{
		StagingFolder:      cfg.Project.StagingFolder,
		LockfileName:       cfg.Project.Lockfile,
		PostInstallScripts: cfg.Scripts.PostInstall,
		PureForWorkspaces:  cfg.Add.PureForWorkspaces,
	})
	pub := publish.New(fsys, st, registry, inst, runner, publish.Settings{
		StagingFolder:      cfg.Project.StagingFolder,
		LockfileName:       cfg.Project.Lockfile,
		PrePublishScripts:  cfg.Scripts.PrePublish,
		PostPublishScripts: cfg.Scripts.PostPublish,
	})

	logger.Debug().
		Str("workingDir", wd).
		Str("store", p.StoreDir()).
		Str("registry", p.InstallationsFile()).
		Msg("Runtime ready")

	return &Runtime{
		WorkingDir: wd,
		Paths:      p,
		Config:     cfg,
		FS:         fsys,
		Store:      st,
		Registry:   registry,
		Installer:  inst,
		Publisher:  pub,
	}, nil
}

// Project returns the layout of the working directory
func (r *Runtime) Project() (paths.Project, error) {
	return paths.NewProject(r.WorkingDir, r.Config.Project.StagingFolder, r.Config.Project.Lockfile)
}

// BoolOr returns *v when set, otherwise def
func BoolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
