// Package scripts runs package lifecycle scripts (prepare, postinstall and
// friends) synchronously in a package directory.
//
// Scripts are interpreted by mvdan.cc/sh, so the same POSIX shell dialect
// works on every platform. External commands are resolved against the
// package's node_modules/.bin first, then the caller's PATH.
package scripts

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/arthur-debert/shelf/pkg/logging"
	"github.com/arthur-debert/shelf/pkg/manifest"
	"github.com/rs/zerolog"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Script is one lifecycle script invocation
type Script struct {
	// Name is the script key, such as "postinstall"
	Name string
	// Command is the shell source to run
	Command string
	// Dir is the working directory
	Dir string
	// Package and Version are exported to the script environment
	Package string
	Version string
}

// Runner runs a single script to completion
type Runner interface {
	Run(ctx context.Context, s Script) error
}

// ShellRunner runs scripts with the embedded shell interpreter
type ShellRunner struct {
	stdout io.Writer
	stderr io.Writer
	environ func() []string
	logger zerolog.Logger
}

// NewShellRunner returns a runner streaming script output to stdout and
// stderr.
func NewShellRunner(stdout, stderr io.Writer) *ShellRunner {
	return &ShellRunner{
		stdout:  stdout,
		stderr:  stderr,
		environ: os.Environ,
		logger:  logging.GetLogger("scripts"),
	}
}

// Run parses and executes s.Command in s.Dir. A non-zero exit status is
// reported as a SCRIPT_FAILURE error carrying the exit code.
func (r *ShellRunner) Run(ctx context.Context, s Script) error {
	prog, err := syntax.NewParser().Parse(strings.NewReader(s.Command), s.Name)
	if err != nil {
		return errors.Wrapf(err, errors.ErrScriptFailure, "failed to parse script %q", s.Name).
			WithDetail("script", s.Name)
	}

	runner, err := interp.New(
		interp.Dir(s.Dir),
		interp.Env(expand.ListEnviron(r.env(s)...)),
		interp.StdIO(nil, r.stdout, r.stderr),
	)
	if err != nil {
		return errors.Wrapf(err, errors.ErrScriptFailure, "failed to prepare script %q", s.Name)
	}

	r.logger.Info().
		Str("script", s.Name).
		Str("command", s.Command).
		Str("dir", s.Dir).
		Msg("Running script")

	if err := runner.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if stderrors.As(err, &exitStatus) {
			r.logger.Error().Str("script", s.Name).Int("exitCode", int(exitStatus)).Msg("Script failed")
			return errors.Newf(errors.ErrScriptFailure, "script %q exited with status %d", s.Name, int(exitStatus)).
				WithDetail("script", s.Name).
				WithDetail("exitCode", int(exitStatus))
		}
		return errors.Wrapf(err, errors.ErrScriptFailure, "script %q failed", s.Name).WithDetail("script", s.Name)
	}

	r.logger.Debug().Str("script", s.Name).Msg("Script completed")
	return nil
}

// env builds the npm-style script environment.
func (r *ShellRunner) env(s Script) []string {
	base := r.environ()
	env := make([]string, 0, len(base)+4)
	path := ""
	for _, kv := range base {
		if strings.HasPrefix(kv, "PATH=") {
			path = strings.TrimPrefix(kv, "PATH=")
			continue
		}
		env = append(env, kv)
	}

	binDir := filepath.Join(s.Dir, "node_modules", ".bin")
	if path != "" {
		path = binDir + string(os.PathListSeparator) + path
	} else {
		path = binDir
	}

	return append(env,
		"PATH="+path,
		"npm_lifecycle_event="+s.Name,
		"npm_package_name="+s.Package,
		"npm_package_version="+s.Version,
	)
}

// RunFirst runs the first script of names that m declares. It returns the
// name of the script that ran, or "" when none is declared.
func RunFirst(ctx context.Context, r Runner, m *manifest.Manifest, dir string, names []string) (string, error) {
	name, command, ok := m.FirstScript(names...)
	if !ok {
		return "", nil
	}
	err := r.Run(ctx, Script{
		Name:    name,
		Command: command,
		Dir:     dir,
		Package: m.Name,
		Version: m.Version,
	})
	if err != nil {
		return name, err
	}
	return name, nil
}

// String renders s for messages.
func (s Script) String() string {
	return fmt.Sprintf("%s: %s", s.Name, s.Command)
}
