package installer

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/arthur-debert/shelf/pkg/filesystem"
	"github.com/arthur-debert/shelf/pkg/lockfile"
	"github.com/arthur-debert/shelf/pkg/logging"
	"github.com/arthur-debert/shelf/pkg/manifest"
	"github.com/arthur-debert/shelf/pkg/paths"
	"github.com/arthur-debert/shelf/pkg/scripts"
	"github.com/arthur-debert/shelf/pkg/store"
)

// AddOptions controls how packages are installed into a consumer
type AddOptions struct {
	// WorkingDir is the consumer project
	WorkingDir string

	// Dev writes the locator into devDependencies
	Dev bool

	// Link symlinks node_modules/<name> to the staged copy and leaves the
	// manifest alone
	Link bool

	// LinkDep writes a link: locator instead of file:
	LinkDep bool

	// Pure stages the package without touching the manifest or
	// node_modules. nil means pure only for workspace roots when
	// configured so.
	Pure *bool

	// Force restages even when the staged signature matches the store
	Force bool

	// NoRegistry leaves the installation registry untouched
	NoRegistry bool

	// SkipScripts disables the post-install hook
	SkipScripts bool
}

func (o AddOptions) mode(pure bool) lockfile.Mode {
	switch {
	case pure:
		return lockfile.ModePure
	case o.Link:
		return lockfile.ModeLink
	case o.LinkDep:
		return lockfile.ModeLinkDep
	default:
		return lockfile.ModeFile
	}
}

// batch is the consumer state loaded once per AddPackages call
type batch struct {
	project         paths.Project
	consumer        *manifest.Manifest
	lock            *lockfile.Lockfile
	opts            AddOptions
	pure            bool
	manifestChanged bool
}

// AddPackages installs each named package from the store into the consumer
// at opts.WorkingDir. Names are parsed with ParseSpec; a name that does not
// parse or is not in the store is skipped with a warning. The consumer's
// manifest, lockfile and the registry are each written at most once, after
// every name has been processed.
func (i *Installer) AddPackages(ctx context.Context, names []string, opts AddOptions) ([]InstallResult, error) {
	logger := i.logger.With().Str("dir", opts.WorkingDir).Logger()
	done := logging.LogOperationStart(logger, "add")
	defer done()

	if opts.Link && opts.LinkDep {
		return nil, errors.New(errors.ErrInvalidInput, "link and link-dep are mutually exclusive")
	}

	project, err := i.project(opts.WorkingDir)
	if err != nil {
		return nil, err
	}

	consumer, err := manifest.Read(i.fs, project.Dir)
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrNotFound) {
			logger.Warn().Msg("No package.json in working directory, nothing to add")
			return nil, nil
		}
		return nil, err
	}

	lock, err := lockfile.Load(i.fs, project.Dir, project.LockfileName)
	if err != nil {
		return nil, err
	}

	b := &batch{
		project:  project,
		consumer: consumer,
		lock:     lock,
		opts:     opts,
		pure:     i.resolvePure(opts, consumer),
	}

	var results []InstallResult
	for _, arg := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := i.addOne(ctx, b, arg)
		if err != nil {
			if errors.IsSkippable(err) {
				logger.Warn().Err(err).Str("package", arg).Msg("Skipping package")
				continue
			}
			return nil, err
		}
		if res != nil {
			results = append(results, *res)
		}
	}

	if err := i.persist(b, results); err != nil {
		return nil, err
	}
	return results, nil
}

func (i *Installer) resolvePure(opts AddOptions, consumer *manifest.Manifest) bool {
	if opts.Pure != nil {
		return *opts.Pure
	}
	if consumer.Workspaces && i.settings.PureForWorkspaces {
		i.logger.Info().Msg("Project declares workspaces, installing in pure mode (use --pure=false to override)")
		return true
	}
	return false
}

// addOne installs a single package into the batch's consumer. It returns a
// nil result when nothing needed to change.
func (i *Installer) addOne(ctx context.Context, b *batch, arg string) (*InstallResult, error) {
	spec, err := ParseSpec(arg)
	if err != nil {
		return nil, err
	}

	version, err := i.store.ResolveVersion(spec.Name, spec.Version)
	if err != nil {
		return nil, err
	}
	stored, err := i.store.ReadManifest(spec.Name, version)
	if err != nil {
		return nil, err
	}

	logger := i.logger.With().Str("package", spec.Name).Str("version", version).Logger()
	mode := b.opts.mode(b.pure)

	storeDir := i.store.EntryDir(spec.Name, version)
	stagedDir := b.project.StagedPackageDir(spec.Name)
	storeSig := i.store.ReadSignature(storeDir)
	stagedSig := store.ReadSignature(i.fs, stagedDir)
	upToDate := !b.opts.Force && storeSig != "" && stagedSig == storeSig

	var replaced string
	changed := false
	if mode == lockfile.ModeFile || mode == lockfile.ModeLinkDep {
		replaced, changed = i.pointManifest(b, spec.Name, mode)
		b.manifestChanged = b.manifestChanged || changed
	}

	// Keep the originally replaced value across re-adds so remove can
	// still restore it.
	prev, hadPrev := b.lock.Get(spec.Name)
	lockReplaced := replaced
	if lockReplaced == "" && hadPrev {
		lockReplaced = prev.Replaced
	}
	entry := lockfile.EntryFor(mode, spec.Version, lockReplaced, storeSig)

	if upToDate && !changed && hadPrev && prev == entry && i.moduleInPlace(b, spec.Name, mode) {
		logger.Info().Msg("Package already up to date")
		return nil, nil
	}

	if upToDate {
		logger.Debug().Msg("Staged copy matches the store, skipping copy")
	} else {
		if err := filesystem.ReplaceDir(i.fs, storeDir, stagedDir); err != nil {
			return nil, errors.Wrapf(err, errors.ErrIOFailure, "failed to stage %s", spec.Name).
				WithDetail("package", spec.Name)
		}
		logger.Debug().Str("staged", stagedDir).Msg("Staged package")
	}

	if mode != lockfile.ModePure {
		if !upToDate && !b.opts.SkipScripts {
			if _, err := scripts.RunFirst(ctx, i.runner, stored, stagedDir, i.settings.PostInstallScripts); err != nil {
				return nil, err
			}
		}
		if err := i.installModule(b, spec.Name, mode); err != nil {
			return nil, err
		}
		i.linkBins(b, spec.Name, stored)
	}

	b.lock.Upsert(lockfile.NamedEntry{Name: spec.Name, Entry: entry})

	logger.Info().Str("mode", string(mode)).Msg("Installed package")
	return &InstallResult{
		Name:        spec.Name,
		Version:     version,
		Signature:   storeSig,
		Replaced:    replaced,
		ConsumerDir: b.project.Dir,
		Mode:        mode,
	}, nil
}

// pointManifest writes the staged locator for name into the consumer
// manifest. It returns the value the locator replaced and whether the
// manifest changed.
func (i *Installer) pointManifest(b *batch, name string, mode lockfile.Mode) (string, bool) {
	scheme := "file"
	if mode == lockfile.ModeLinkDep {
		scheme = "link"
	}
	locator := b.project.Locator(scheme, name)

	field := manifest.Dependencies
	if b.opts.Dev {
		field = manifest.DevDependencies
	} else if _, inDeps := b.consumer.Dependency(manifest.Dependencies, name); !inDeps {
		if _, inDev := b.consumer.Dependency(manifest.DevDependencies, name); inDev {
			field = manifest.DevDependencies
		}
	}

	current, had := b.consumer.Dependency(field, name)
	other, hadOther := b.consumer.Dependency(field.Other(), name)

	var replaced string
	changed := false
	if !had || current != locator {
		switch {
		case had:
			replaced = current
		case hadOther && other != locator:
			replaced = other
		}
		b.consumer.SetDependency(field, name, locator)
		changed = true
	}
	if hadOther {
		b.consumer.RemoveDependency(field.Other(), name)
		changed = true
	}
	return replaced, changed
}

// moduleInPlace reports whether node_modules already holds name in the
// shape mode asks for.
func (i *Installer) moduleInPlace(b *batch, name string, mode lockfile.Mode) bool {
	if mode == lockfile.ModePure {
		return true
	}
	modulePath := b.project.ModulePath(name)
	if !filesystem.Exists(i.fs, modulePath) {
		return false
	}
	if mode == lockfile.ModeLink || mode == lockfile.ModeLinkDep {
		return filesystem.IsSymlink(i.fs, modulePath)
	}
	return true
}

// installModule mirrors the staged copy into node_modules, as a symlink for
// link modes or when a symlink is already there, and as a copy otherwise.
func (i *Installer) installModule(b *batch, name string, mode lockfile.Mode) error {
	stagedDir := b.project.StagedPackageDir(name)
	modulePath := b.project.ModulePath(name)

	symlink := mode == lockfile.ModeLink || mode == lockfile.ModeLinkDep || filesystem.IsSymlink(i.fs, modulePath)
	if symlink {
		if err := filesystem.ReplaceWithSymlink(i.fs, stagedDir, modulePath); err != nil {
			return errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to link %s into node_modules", name).
				WithDetail("package", name)
		}
		return nil
	}
	if err := filesystem.ReplaceDir(i.fs, stagedDir, modulePath); err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to copy %s into node_modules", name).
			WithDetail("package", name)
	}
	return nil
}

// linkBins points node_modules/.bin at the package's executables. Failures
// only warn; the package itself is installed.
func (i *Installer) linkBins(b *batch, name string, stored *manifest.Manifest) {
	modulePath := b.project.ModulePath(name)
	for binName, rel := range stored.Bin.Entries(name) {
		target := filepath.Join(modulePath, filepath.FromSlash(rel))
		link := filepath.Join(b.project.BinDir(), binName)
		logger := i.logger.With().Str("package", name).Str("bin", binName).Logger()

		if !validBinName(binName) {
			logger.Warn().Msg("Invalid executable name, skipping")
			continue
		}
		if !within(modulePath, target) {
			logger.Warn().Str("target", rel).Msg("Executable points outside the package, skipping")
			continue
		}
		if !filesystem.Exists(i.fs, target) {
			logger.Warn().Str("target", target).Msg("Executable missing from package")
			continue
		}
		if err := filesystem.ReplaceWithSymlink(i.fs, target, link); err != nil {
			logger.Warn().Err(err).Msg("Failed to link executable")
			continue
		}
		if err := filesystem.EnsureExecutable(i.fs, target); err != nil {
			logger.Warn().Err(err).Msg("Failed to mark executable")
		}
	}
}

func validBinName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, "/\\")
}

// within reports whether path lies strictly below dir
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// persist writes the consumer manifest, lockfile and registry once for the
// whole batch.
func (i *Installer) persist(b *batch, results []InstallResult) error {
	if b.manifestChanged {
		if err := b.consumer.Write(i.fs, b.project.Dir); err != nil {
			return err
		}
	}
	if len(results) == 0 {
		return nil
	}
	if err := b.lock.Save(); err != nil {
		return err
	}

	if b.opts.NoRegistry || i.registry == nil {
		return nil
	}
	for _, res := range results {
		if err := i.registry.Record(res.Name, res.ConsumerDir); err != nil {
			return err
		}
	}
	return i.saveRegistry()
}
