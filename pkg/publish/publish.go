// Package publish copies packages into the store and propagates new
// contents to the consumers that installed them.
//
// A publish starts at the package in the working directory. With
// Recursive set, dependencies that node_modules links to outside this
// project's staging folder are published first, depth first, each at most
// once per invocation; they are then re-added to the project from the
// store. With Push set, every consumer recorded in the installation
// registry for the root package is updated afterwards.
package publish

import (
	"context"
	"sort"

	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/arthur-debert/shelf/pkg/filesystem"
	"github.com/arthur-debert/shelf/pkg/installations"
	"github.com/arthur-debert/shelf/pkg/installer"
	"github.com/arthur-debert/shelf/pkg/lockfile"
	"github.com/arthur-debert/shelf/pkg/logging"
	"github.com/arthur-debert/shelf/pkg/manifest"
	"github.com/arthur-debert/shelf/pkg/packlist"
	"github.com/arthur-debert/shelf/pkg/paths"
	"github.com/arthur-debert/shelf/pkg/scripts"
	"github.com/arthur-debert/shelf/pkg/store"
	"github.com/arthur-debert/shelf/pkg/types"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"
)

// maxDepth bounds recursive traversal of linked dependencies
const maxDepth = 32

// Settings are the configuration values the publisher depends on
type Settings struct {
	StagingFolder      string
	LockfileName       string
	PrePublishScripts  []string
	PostPublishScripts []string
}

// Publisher is the publish engine
type Publisher struct {
	fs        types.FS
	store     *store.Store
	registry  *installations.Registry
	installer *installer.Installer
	runner    scripts.Runner
	settings  Settings
	logger    zerolog.Logger
}

// New creates a publisher. inst is used for recursive re-adds and push
// updates and must share registry.
func New(fsys types.FS, st *store.Store, registry *installations.Registry, inst *installer.Installer, runner scripts.Runner, settings Settings) *Publisher {
	return &Publisher{
		fs:        fsys,
		store:     st,
		registry:  registry,
		installer: inst,
		runner:    runner,
		settings:  settings,
		logger:    logging.GetLogger("publish"),
	}
}

// PublishOptions controls a publish run
type PublishOptions struct {
	WorkingDir string

	// AllowPrivate publishes packages marked private
	AllowPrivate bool

	// Changed skips packages whose signature matches the store
	Changed bool

	// Push updates every registered consumer of the root package
	Push bool

	// Recursive publishes linked dependencies first
	Recursive bool

	SkipScripts bool

	// Force is passed to the updates run by Push
	Force bool
}

// Report is what a publish run did
type Report struct {
	// Aborted is set when the root package was not published at all
	Aborted string `json:"aborted,omitempty"`

	// Published lists store entries written, dependencies before dependents
	Published []store.Entry `json:"published"`

	// Unchanged lists name@version of packages skipped by Changed
	Unchanged []string `json:"unchanged,omitempty"`

	// Pushed lists the consumer installations refreshed by Push
	Pushed []installer.InstallResult `json:"pushed,omitempty"`

	// Pruned lists registry entries dropped by Push
	Pruned []types.Installation `json:"pruned,omitempty"`
}

type run struct {
	opts    PublishOptions
	visited map[string]bool
	// stored holds packages whose store entry matches their source in this
	// run, either freshly published or found unchanged
	stored map[string]bool
	report *Report
}

// Publish publishes the package in opts.WorkingDir.
func (p *Publisher) Publish(ctx context.Context, opts PublishOptions) (*Report, error) {
	logger := p.logger.With().Str("dir", opts.WorkingDir).Logger()
	done := logging.LogOperationStart(logger, "publish")
	defer done()

	project, err := p.project(opts.WorkingDir)
	if err != nil {
		return nil, err
	}
	root, err := manifest.Read(p.fs, project.Dir)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	if root.Private && !opts.AllowPrivate {
		report.Aborted = errors.Newf(errors.ErrPrivatePackage,
			"%s is private, use --private to publish it anyway", root.Name).Message
		logger.Warn().Str("package", root.Name).Msg("Refusing to publish private package")
		return report, nil
	}

	r := &run{opts: opts, visited: make(map[string]bool), stored: make(map[string]bool), report: report}
	published, err := p.traverse(ctx, r, project, root, 0)
	if err != nil {
		return report, err
	}

	if opts.Push && published {
		if err := p.push(ctx, r, root.Name); err != nil {
			return report, err
		}
	}
	return report, nil
}

func (p *Publisher) project(dir string) (paths.Project, error) {
	if dir == "" {
		return paths.Project{}, errors.New(errors.ErrInvalidInput, "no working directory given")
	}
	return paths.NewProject(dir, p.settings.StagingFolder, p.settings.LockfileName)
}

// traverse publishes the linked dependencies of m, re-adds them to the
// project, then publishes m itself. It reports whether m was written to
// the store.
func (p *Publisher) traverse(ctx context.Context, r *run, project paths.Project, m *manifest.Manifest, depth int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.visited[m.Name] = true
	logger := p.logger.With().Str("package", m.Name).Int("depth", depth).Logger()

	if r.opts.Recursive {
		if depth >= maxDepth {
			logger.Warn().Int("maxDepth", maxDepth).Msg("Maximum dependency depth reached, not descending further")
		} else if err := p.publishLinked(ctx, r, project, m, depth); err != nil {
			return false, err
		}
	}

	return p.publishOne(ctx, r, project, m)
}

type linkedDep struct {
	name    string
	project paths.Project
	m       *manifest.Manifest
}

func (p *Publisher) publishLinked(ctx context.Context, r *run, project paths.Project, m *manifest.Manifest, depth int) error {
	deps := p.linkedDependencies(project, m)
	if len(deps) == 0 {
		return nil
	}

	names := make([]string, 0, len(deps))
	for _, dep := range deps {
		if !r.visited[dep.m.Name] {
			if _, err := p.traverse(ctx, r, dep.project, dep.m, depth+1); err != nil {
				return err
			}
		}
		// an ancestor still being traversed has no fresh store entry yet
		if r.stored[dep.m.Name] {
			names = append(names, dep.name)
		}
	}
	if len(names) == 0 {
		return nil
	}

	_, err := p.installer.AddPackages(ctx, names, installer.AddOptions{
		WorkingDir:  project.Dir,
		Link:        true,
		SkipScripts: r.opts.SkipScripts,
	})
	return err
}

// linkedDependencies returns the dependencies of m whose node_modules entry
// is a symlink to a package outside the project's staging folder.
func (p *Publisher) linkedDependencies(project paths.Project, m *manifest.Manifest) []linkedDep {
	var out []linkedDep
	for _, name := range m.DependencyNames() {
		modulePath := project.ModulePath(name)
		if !filesystem.IsSymlink(p.fs, modulePath) {
			continue
		}
		target, err := filesystem.ResolveLink(p.fs, modulePath)
		if err != nil || project.InStaging(target) {
			continue
		}

		logger := p.logger.With().Str("package", name).Str("target", target).Logger()
		depManifest, err := manifest.Read(p.fs, target)
		if err != nil {
			logger.Debug().Err(err).Msg("Linked dependency has no readable manifest")
			continue
		}
		if depManifest.Private {
			logger.Info().Msg("Skipping private linked dependency")
			continue
		}
		depProject, err := p.project(target)
		if err != nil {
			continue
		}
		out = append(out, linkedDep{name: name, project: depProject, m: depManifest})
	}
	return out
}

// publishOne runs the pre-publish hook, writes the store entry and runs the
// post-publish hook.
func (p *Publisher) publishOne(ctx context.Context, r *run, project paths.Project, m *manifest.Manifest) (bool, error) {
	logger := p.logger.With().Str("package", m.Name).Logger()

	if !r.opts.SkipScripts {
		if _, err := scripts.RunFirst(ctx, p.runner, m, project.Dir, p.settings.PrePublishScripts); err != nil {
			return false, err
		}
		// pre-publish hooks may bump the version or regenerate files
		reread, err := manifest.Read(p.fs, project.Dir)
		if err != nil {
			return false, err
		}
		m = reread
	}

	files, err := packlist.List(p.fs, project.Dir, m, packlist.Options{
		Exclude: []string{project.StagingFolder, project.LockfileName, store.MetaFileName},
	})
	if err != nil {
		return false, err
	}

	p.rewriteLocators(project, m)

	entry, err := p.store.Publish(store.PublishInput{
		SourceDir: project.Dir,
		Manifest:  m,
		Files:     files,
		Changed:   r.opts.Changed,
	})
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrUnchanged) {
			r.stored[m.Name] = true
			r.report.Unchanged = append(r.report.Unchanged, m.Name+"@"+m.Version)
			logger.Info().Msg("Package unchanged, skipping")
			return false, nil
		}
		return false, err
	}
	r.stored[m.Name] = true
	r.report.Published = append(r.report.Published, *entry)

	if !r.opts.SkipScripts {
		if _, err := scripts.RunFirst(ctx, p.runner, m, project.Dir, p.settings.PostPublishScripts); err != nil {
			return true, err
		}
	}
	return true, nil
}

// rewriteLocators replaces file: and link: locators into the staging folder
// with the version the project actually uses, taken from its lockfile or
// from the staged copy.
func (p *Publisher) rewriteLocators(project paths.Project, m *manifest.Manifest) {
	var lock *lockfile.Lockfile
	for _, field := range []manifest.Field{manifest.Dependencies, manifest.DevDependencies} {
		deps := m.Deps(field)
		names := make([]string, 0, len(deps))
		for name := range deps {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			value := deps[name]
			if value != project.Locator("file", name) && value != project.Locator("link", name) {
				continue
			}
			if lock == nil {
				loaded, err := lockfile.Load(p.fs, project.Dir, project.LockfileName)
				if err != nil {
					p.logger.Warn().Err(err).Msg("Failed to read lockfile for locator rewrite")
					return
				}
				lock = loaded
			}

			version := ""
			if entry, ok := lock.Get(name); ok {
				version = entry.Version
			}
			if version == "" {
				if staged, err := manifest.Read(p.fs, project.StagedPackageDir(name)); err == nil {
					version = staged.Version
				}
			}
			if version == "" {
				p.logger.Warn().Str("package", m.Name).Str("dependency", name).Msg("Cannot resolve version of staged dependency, keeping locator")
				continue
			}
			m.SetDependency(field, name, version)
		}
	}
}

// push updates every registered consumer of name and prunes registry
// entries that no longer apply.
func (p *Publisher) push(ctx context.Context, r *run, name string) error {
	var stale []types.Installation
	var failures error

	for _, dir := range p.registry.List(name) {
		if err := ctx.Err(); err != nil {
			return err
		}
		logger := p.logger.With().Str("package", name).Str("consumer", dir).Logger()

		if !manifest.Exists(p.fs, dir) {
			logger.Info().Msg("Consumer has no package.json, dropping installation")
			stale = append(stale, types.Installation{Name: name, WorkingDir: dir})
			continue
		}

		res, err := p.installer.Update(ctx, installer.UpdateOptions{
			WorkingDir:  dir,
			Names:       []string{name},
			Force:       r.opts.Force,
			SkipScripts: r.opts.SkipScripts,
		})
		if err != nil {
			logger.Error().Err(err).Msg("Failed to update consumer")
			failures = multierr.Append(failures, err)
			continue
		}
		r.report.Pushed = append(r.report.Pushed, res.Results...)
		stale = append(stale, res.InstallationsToRemove...)
	}

	if len(stale) > 0 {
		p.registry.Remove(stale...)
		r.report.Pruned = stale
	}
	if p.registry.Dirty() {
		if err := p.registry.Save(); err != nil {
			return err
		}
	}
	return failures
}
