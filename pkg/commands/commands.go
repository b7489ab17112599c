// Package commands provides the command implementations behind the shelf
// CLI.
//
// Each command lives in its own subdirectory and builds a runtime (paths,
// configuration, store, registry and engines) for its working directory:
//   - publish/       - Publish and Push
//   - add/           - Add and Link
//   - update/        - Update
//   - remove/        - Remove
//   - installations/ - Show and Clean of the installation registry
//   - list/          - List of the store
//   - genconfig/     - GenConfig
//   - runtime/       - shared wiring
//
// This file re-exports the command functions so callers need a single
// import.
package commands

import (
	"context"

	"github.com/arthur-debert/shelf/pkg/commands/add"
	"github.com/arthur-debert/shelf/pkg/commands/genconfig"
	"github.com/arthur-debert/shelf/pkg/commands/installations"
	"github.com/arthur-debert/shelf/pkg/commands/list"
	publishcmd "github.com/arthur-debert/shelf/pkg/commands/publish"
	"github.com/arthur-debert/shelf/pkg/commands/remove"
	"github.com/arthur-debert/shelf/pkg/commands/runtime"
	"github.com/arthur-debert/shelf/pkg/commands/update"
	"github.com/arthur-debert/shelf/pkg/publish"
)

// Options are the settings shared by every command
type Options = runtime.Options

// PublishOptions configures Publish and Push.
type PublishOptions = publishcmd.Options

func Publish(ctx context.Context, opts PublishOptions) (*publish.Report, error) {
	return publishcmd.Publish(ctx, opts)
}

func Push(ctx context.Context, opts PublishOptions) (*publish.Report, error) {
	return publishcmd.Push(ctx, opts)
}

// AddOptions configures Add and Link.
type AddOptions = add.Options

func Add(ctx context.Context, opts AddOptions) (*add.Result, error) {
	return add.Add(ctx, opts)
}

func Link(ctx context.Context, opts AddOptions) (*add.Result, error) {
	return add.Link(ctx, opts)
}

// UpdateOptions configures Update.
type UpdateOptions = update.Options

func Update(ctx context.Context, opts UpdateOptions) (*update.Result, error) {
	return update.Update(ctx, opts)
}

// RemoveOptions configures Remove.
type RemoveOptions = remove.Options

func Remove(ctx context.Context, opts RemoveOptions) (*remove.Result, error) {
	return remove.Remove(ctx, opts)
}

// InstallationsOptions configures ShowInstallations and CleanInstallations.
type InstallationsOptions = installations.Options

func ShowInstallations(opts InstallationsOptions) (*installations.Result, error) {
	return installations.Show(opts)
}

func CleanInstallations(opts InstallationsOptions) (*installations.Result, error) {
	return installations.Clean(opts)
}

// ListOptions configures ListStore.
type ListOptions = list.Options

func ListStore(opts ListOptions) (*list.Result, error) {
	return list.List(opts)
}

// GenConfigOptions configures GenConfig.
type GenConfigOptions = genconfig.Options

func GenConfig(opts GenConfigOptions) (*genconfig.Result, error) {
	return genconfig.GenConfig(opts)
}
