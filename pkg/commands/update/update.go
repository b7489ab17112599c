package update

import (
	"context"

	"github.com/arthur-debert/shelf/pkg/commands/runtime"
	"github.com/arthur-debert/shelf/pkg/installer"
	"github.com/arthur-debert/shelf/pkg/logging"
	"github.com/arthur-debert/shelf/pkg/types"
)

// Options holds options for the update command
type Options struct {
	runtime.Options

	// Packages limits the update; empty updates everything in the lockfile
	Packages []string

	Force       bool
	SkipScripts bool
}

// Result lists the refreshed packages and the registry entries dropped
type Result struct {
	WorkingDir string                    `json:"workingDir"`
	Updated    []installer.InstallResult `json:"updated"`
	Pruned     []types.Installation      `json:"pruned,omitempty"`
}

// Update replays the working directory's lockfile from the store
func Update(ctx context.Context, opts Options) (*Result, error) {
	logger := logging.GetLogger("commands.update")

	rt, err := runtime.New(opts.Options)
	if err != nil {
		return nil, err
	}

	res, err := rt.Installer.Update(ctx, installer.UpdateOptions{
		WorkingDir:  rt.WorkingDir,
		Names:       opts.Packages,
		Force:       opts.Force,
		SkipScripts: opts.SkipScripts,
	})
	if err != nil {
		return nil, err
	}

	if len(res.InstallationsToRemove) > 0 {
		removed := rt.Registry.Remove(res.InstallationsToRemove...)
		logger.Info().Int("removed", removed).Msg("Pruned stale installations")
		if err := rt.Registry.Save(); err != nil {
			return nil, err
		}
	}

	return &Result{
		WorkingDir: rt.WorkingDir,
		Updated:    res.Results,
		Pruned:     res.InstallationsToRemove,
	}, nil
}
