package publish

import (
	"context"

	"github.com/arthur-debert/shelf/pkg/commands/runtime"
	"github.com/arthur-debert/shelf/pkg/logging"
	engine "github.com/arthur-debert/shelf/pkg/publish"
)

// Options holds options for the publish and push commands. Unset pointer
// flags fall back to the [publish] configuration section.
type Options struct {
	runtime.Options

	Changed   *bool
	Push      *bool
	Recursive *bool

	AllowPrivate bool
	SkipScripts  bool
	Force        bool
}

// Publish copies the package in the working directory into the store
func Publish(ctx context.Context, opts Options) (*engine.Report, error) {
	logger := logging.GetLogger("commands.publish")

	rt, err := runtime.New(opts.Options)
	if err != nil {
		return nil, err
	}

	cfg := rt.Config.Publish
	engineOpts := engine.PublishOptions{
		WorkingDir:   rt.WorkingDir,
		AllowPrivate: opts.AllowPrivate,
		Changed:      runtime.BoolOr(opts.Changed, cfg.Changed),
		Push:         runtime.BoolOr(opts.Push, cfg.Push),
		Recursive:    runtime.BoolOr(opts.Recursive, cfg.Recursive),
		SkipScripts:  opts.SkipScripts,
		Force:        opts.Force,
	}
	logger.Info().
		Str("dir", engineOpts.WorkingDir).
		Bool("changed", engineOpts.Changed).
		Bool("push", engineOpts.Push).
		Bool("recursive", engineOpts.Recursive).
		Msg("Publishing")

	return rt.Publisher.Publish(ctx, engineOpts)
}

// Push publishes and then updates every registered consumer
func Push(ctx context.Context, opts Options) (*engine.Report, error) {
	push := true
	opts.Push = &push
	return Publish(ctx, opts)
}
