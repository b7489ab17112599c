package remove

import (
	"context"

	"github.com/arthur-debert/shelf/pkg/commands/runtime"
	"github.com/arthur-debert/shelf/pkg/installer"
)

// Options holds options for the remove command
type Options struct {
	runtime.Options

	Packages []string
	All      bool
}

// Result lists removed and unknown packages
type Result struct {
	WorkingDir string   `json:"workingDir"`
	Removed    []string `json:"removed"`
	Skipped    []string `json:"skipped,omitempty"`
}

// Remove uninstalls shelf packages from the working directory
func Remove(ctx context.Context, opts Options) (*Result, error) {
	rt, err := runtime.New(opts.Options)
	if err != nil {
		return nil, err
	}

	res, err := rt.Installer.Remove(ctx, installer.RemoveOptions{
		WorkingDir: rt.WorkingDir,
		Names:      opts.Packages,
		All:        opts.All,
	})
	if res == nil {
		return nil, err
	}
	return &Result{WorkingDir: rt.WorkingDir, Removed: res.Removed, Skipped: res.Skipped}, err
}
