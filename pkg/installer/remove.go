package installer

import (
	"context"
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/arthur-debert/shelf/pkg/filesystem"
	"github.com/arthur-debert/shelf/pkg/lockfile"
	"github.com/arthur-debert/shelf/pkg/manifest"
	"github.com/arthur-debert/shelf/pkg/paths"
	"github.com/arthur-debert/shelf/pkg/types"
	"go.uber.org/multierr"
)

// RemoveOptions selects the packages to uninstall from a consumer
type RemoveOptions struct {
	WorkingDir string
	Names      []string

	// All removes every package in the lockfile
	All bool
}

// RemoveResult lists what was removed and what was not installed
type RemoveResult struct {
	Removed []string
	Skipped []string
}

// Remove undoes AddPackages for the selected packages: the manifest gets its
// replaced value back (or loses the dependency), the staged copy,
// node_modules entry and executables are deleted, and the lockfile and
// registry forget the installation.
func (i *Installer) Remove(ctx context.Context, opts RemoveOptions) (*RemoveResult, error) {
	project, err := i.project(opts.WorkingDir)
	if err != nil {
		return nil, err
	}
	if !opts.All && len(opts.Names) == 0 {
		return nil, errors.New(errors.ErrInvalidInput, "no packages to remove")
	}

	consumer, err := manifest.Read(i.fs, project.Dir)
	if err != nil && !errors.IsErrorCode(err, errors.ErrNotFound) {
		return nil, err
	}
	lock, err := lockfile.Load(i.fs, project.Dir, project.LockfileName)
	if err != nil {
		return nil, err
	}

	names := opts.Names
	if opts.All {
		names = lock.Names()
	}

	result := &RemoveResult{}
	manifestChanged := false
	var cleanupErr error
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entry, ok := lock.Get(name)
		if !ok {
			i.logger.Warn().Str("package", name).Msg("Package is not installed from the shelf")
			result.Skipped = append(result.Skipped, name)
			continue
		}

		if consumer != nil && restoreDependency(consumer, project, name, entry) {
			manifestChanged = true
		}
		cleanupErr = multierr.Append(cleanupErr, i.removeFiles(project, name, entry.Mode()))

		lock.Remove(name)
		if i.registry != nil {
			i.registry.Remove(types.Installation{Name: name, WorkingDir: project.Dir})
		}
		result.Removed = append(result.Removed, name)
		i.logger.Info().Str("package", name).Msg("Removed package")
	}

	if manifestChanged {
		if err := consumer.Write(i.fs, project.Dir); err != nil {
			return nil, err
		}
	}
	if len(result.Removed) > 0 {
		if err := lock.Save(); err != nil {
			return nil, err
		}
		i.removeStagingIfEmpty(project)
	}
	if err := i.saveRegistry(); err != nil {
		return nil, err
	}

	if cleanupErr != nil {
		return result, errors.Wrap(cleanupErr, errors.ErrIOFailure, "failed to clean up removed packages")
	}
	return result, nil
}

// restoreDependency puts back the value the shelf locator replaced, or drops
// the dependency when nothing was replaced. Fields not holding a shelf
// locator for name are left alone.
func restoreDependency(m *manifest.Manifest, project paths.Project, name string, entry lockfile.Entry) bool {
	changed := false
	for _, field := range []manifest.Field{manifest.Dependencies, manifest.DevDependencies} {
		value, ok := m.Dependency(field, name)
		if !ok || (value != project.Locator("file", name) && value != project.Locator("link", name)) {
			continue
		}
		if entry.Replaced != "" {
			m.SetDependency(field, name, entry.Replaced)
		} else {
			m.RemoveDependency(field, name)
		}
		changed = true
	}
	return changed
}

func (i *Installer) removeFiles(project paths.Project, name string, mode lockfile.Mode) error {
	stagedDir := project.StagedPackageDir(name)
	modulePath := project.ModulePath(name)

	var errs error
	if mode != lockfile.ModePure {
		if stored, err := manifest.Read(i.fs, stagedDir); err == nil {
			for binName := range stored.Bin.Entries(name) {
				errs = multierr.Append(errs, i.removeBinLink(project, filepath.Join(project.BinDir(), binName)))
			}
		}

		switch {
		case filesystem.IsSymlink(i.fs, modulePath):
			errs = multierr.Append(errs, ignoreMissing(i.fs.Remove(modulePath)))
		case filesystem.Exists(i.fs, modulePath):
			errs = multierr.Append(errs, ignoreMissing(i.fs.RemoveAll(modulePath)))
		}
	}
	errs = multierr.Append(errs, ignoreMissing(i.fs.RemoveAll(stagedDir)))

	if scope := filepath.Dir(stagedDir); scope != project.StagingDir() {
		i.removeIfEmpty(scope)
		i.removeIfEmpty(filepath.Dir(modulePath))
	}
	return errs
}

// removeBinLink deletes a .bin entry only when it points into node_modules
func (i *Installer) removeBinLink(project paths.Project, link string) error {
	if !filesystem.IsSymlink(i.fs, link) {
		return nil
	}
	target, err := filesystem.ResolveLink(i.fs, link)
	if err != nil {
		return nil
	}
	rel, err := filepath.Rel(filepath.Join(project.Dir, paths.NodeModulesDir), target)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil
	}
	return ignoreMissing(i.fs.Remove(link))
}

func (i *Installer) removeStagingIfEmpty(project paths.Project) {
	i.removeIfEmpty(project.StagingDir())
}

func (i *Installer) removeIfEmpty(dir string) {
	entries, err := i.fs.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return
	}
	if err := i.fs.Remove(dir); err != nil {
		i.logger.Debug().Err(err).Str("dir", dir).Msg("Failed to remove empty directory")
	}
}

func ignoreMissing(err error) error {
	if err == nil || stderrors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
