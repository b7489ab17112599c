package installer

import (
	"context"

	"github.com/arthur-debert/shelf/pkg/lockfile"
	"github.com/arthur-debert/shelf/pkg/manifest"
	"github.com/arthur-debert/shelf/pkg/types"
)

// UpdateOptions selects the lockfile entries to replay
type UpdateOptions struct {
	WorkingDir string

	// Names limits the update; empty means every lockfile entry
	Names []string

	Force       bool
	SkipScripts bool
	NoRegistry  bool
}

// UpdateResult is the outcome of an update
type UpdateResult struct {
	Results []InstallResult

	// InstallationsToRemove are requested packages the consumer no longer
	// tracks. Callers prune them from the registry.
	InstallationsToRemove []types.Installation
}

// Update re-adds packages from the consumer's lockfile, each with the mode
// and version recorded for it.
func (i *Installer) Update(ctx context.Context, opts UpdateOptions) (*UpdateResult, error) {
	project, err := i.project(opts.WorkingDir)
	if err != nil {
		return nil, err
	}

	result := &UpdateResult{}
	if !manifest.Exists(i.fs, project.Dir) {
		i.logger.Warn().Str("dir", project.Dir).Msg("No package.json, dropping its installations")
		for _, name := range opts.Names {
			result.InstallationsToRemove = append(result.InstallationsToRemove, types.Installation{Name: name, WorkingDir: project.Dir})
		}
		return result, nil
	}

	lock, err := lockfile.Load(i.fs, project.Dir, project.LockfileName)
	if err != nil {
		return nil, err
	}

	names := opts.Names
	if len(names) == 0 {
		names = lock.Names()
	}

	for _, name := range names {
		entry, ok := lock.Get(name)
		if !ok {
			i.logger.Info().Str("package", name).Str("dir", project.Dir).Msg("Package not in lockfile, dropping installation")
			result.InstallationsToRemove = append(result.InstallationsToRemove, types.Installation{Name: name, WorkingDir: project.Dir})
			continue
		}

		spec := Spec{Name: name, Version: entry.Version}
		res, err := i.AddPackages(ctx, []string{spec.String()}, replayOptions(opts, project.Dir, entry.Mode()))
		if err != nil {
			return nil, err
		}
		result.Results = append(result.Results, res...)
	}
	return result, nil
}

func replayOptions(opts UpdateOptions, dir string, mode lockfile.Mode) AddOptions {
	pure := mode == lockfile.ModePure
	return AddOptions{
		WorkingDir:  dir,
		Link:        mode == lockfile.ModeLink,
		LinkDep:     mode == lockfile.ModeLinkDep,
		Pure:        &pure,
		Force:       opts.Force,
		NoRegistry:  opts.NoRegistry,
		SkipScripts: opts.SkipScripts,
	}
}
