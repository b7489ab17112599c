package installations

import (
	"github.com/arthur-debert/shelf/pkg/commands/runtime"
	"github.com/arthur-debert/shelf/pkg/lockfile"
	"github.com/arthur-debert/shelf/pkg/logging"
	"github.com/arthur-debert/shelf/pkg/manifest"
	"github.com/arthur-debert/shelf/pkg/types"
)

// Options selects registry entries; empty Packages means all of them
type Options struct {
	runtime.Options

	Packages []string
}

// Result is a view of the installation registry
type Result struct {
	Registry      string               `json:"registry"`
	Installations []types.Installation `json:"installations"`
	Removed       []types.Installation `json:"removed,omitempty"`
}

// Show lists the recorded installations
func Show(opts Options) (*Result, error) {
	rt, err := runtime.New(opts.Options)
	if err != nil {
		return nil, err
	}
	return &Result{
		Registry:      rt.Registry.Path(),
		Installations: selected(rt, opts.Packages),
	}, nil
}

// Clean drops installations whose directory no longer has a manifest or
// whose lockfile no longer lists the package.
func Clean(opts Options) (*Result, error) {
	logger := logging.GetLogger("commands.installations")

	rt, err := runtime.New(opts.Options)
	if err != nil {
		return nil, err
	}

	var stale []types.Installation
	for _, inst := range selected(rt, opts.Packages) {
		if !manifest.Exists(rt.FS, inst.WorkingDir) {
			stale = append(stale, inst)
			continue
		}
		lock, err := lockfile.Load(rt.FS, inst.WorkingDir, rt.Config.Project.Lockfile)
		if err != nil {
			logger.Warn().Err(err).Str("dir", inst.WorkingDir).Msg("Failed to read lockfile")
			continue
		}
		if _, ok := lock.Get(inst.Name); !ok {
			stale = append(stale, inst)
		}
	}

	if len(stale) > 0 {
		rt.Registry.Remove(stale...)
		if err := rt.Registry.Save(); err != nil {
			return nil, err
		}
		logger.Info().Int("removed", len(stale)).Msg("Cleaned installation registry")
	}

	return &Result{
		Registry:      rt.Registry.Path(),
		Installations: selected(rt, opts.Packages),
		Removed:       stale,
	}, nil
}

func selected(rt *runtime.Runtime, names []string) []types.Installation {
	if len(names) == 0 {
		return rt.Registry.All()
	}
	var out []types.Installation
	for _, name := range names {
		for _, dir := range rt.Registry.List(name) {
			out = append(out, types.Installation{Name: name, WorkingDir: dir})
		}
	}
	return out
}
