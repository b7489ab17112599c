// Package installer implements adding, linking, updating and removing store
// packages in consumer projects.
//
// An add stages the store entry into <project>/<staging>/<name>, points
// the manifest at it with a file: or link: locator, mirrors it into
// node_modules and records how it did so in the project's lockfile, so
// that update (and push, which is update driven from the publisher) can
// replay the same installation later.
package installer

import (
	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/arthur-debert/shelf/pkg/installations"
	"github.com/arthur-debert/shelf/pkg/lockfile"
	"github.com/arthur-debert/shelf/pkg/logging"
	"github.com/arthur-debert/shelf/pkg/paths"
	"github.com/arthur-debert/shelf/pkg/scripts"
	"github.com/arthur-debert/shelf/pkg/store"
	"github.com/arthur-debert/shelf/pkg/types"
	"github.com/rs/zerolog"
)

// Settings are the configuration values the installer depends on
type Settings struct {
	StagingFolder      string
	LockfileName       string
	PostInstallScripts []string
	PureForWorkspaces  bool
}

// Installer is the add/link engine
type Installer struct {
	fs       types.FS
	store    *store.Store
	registry *installations.Registry
	runner   scripts.Runner
	settings Settings
	logger   zerolog.Logger
}

// New creates an installer. The registry is shared with the rest of the
// invocation; the installer saves it after each batch that changed it.
func New(fsys types.FS, st *store.Store, registry *installations.Registry, runner scripts.Runner, settings Settings) *Installer {
	return &Installer{
		fs:       fsys,
		store:    st,
		registry: registry,
		runner:   runner,
		settings: settings,
		logger:   logging.GetLogger("installer"),
	}
}

// InstallResult describes one package installed by a batch
type InstallResult struct {
	Name        string        `json:"name"`
	Version     string        `json:"version"`
	Signature   string        `json:"signature"`
	Replaced    string        `json:"replaced,omitempty"`
	ConsumerDir string        `json:"consumerDir"`
	Mode        lockfile.Mode `json:"mode"`
}

func (i *Installer) project(dir string) (paths.Project, error) {
	if dir == "" {
		return paths.Project{}, errors.New(errors.ErrInvalidInput, "no working directory given")
	}
	return paths.NewProject(dir, i.settings.StagingFolder, i.settings.LockfileName)
}

func (i *Installer) saveRegistry() error {
	if i.registry == nil || !i.registry.Dirty() {
		return nil
	}
	return i.registry.Save()
}
