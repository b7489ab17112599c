package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/shelf/pkg/errors"
)

// Environment variable names
const (
	// EnvShelfDataDir overrides the XDG data directory for shelf
	EnvShelfDataDir = "SHELF_DATA_DIR"

	// EnvShelfStoreDir overrides the package store location
	EnvShelfStoreDir = "SHELF_STORE_DIR"

	// EnvShelfConfigDir overrides the XDG config directory for shelf
	EnvShelfConfigDir = "SHELF_CONFIG_DIR"

	// EnvShelfStateDir overrides the XDG state directory for shelf
	EnvShelfStateDir = "SHELF_STATE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files. These define the on-disk layout shared by
// every shelf installation and are not user-configurable; the configurable
// names (staging folder, lockfile) live in pkg/config.
const (
	// ShelfDirName is the directory name for shelf-specific files
	ShelfDirName = "shelf"

	// PackagesDir is the store subdirectory holding package entries
	PackagesDir = "packages"

	// InstallationsFileName is the name of the installation registry
	InstallationsFileName = "installations.json"

	// ConfigFileName is the name of the user configuration file
	ConfigFileName = "config.toml"

	// ProjectConfigFileName is the name of the per-project configuration file
	ProjectConfigFileName = ".shelf.toml"

	// LogFileName is the name of the log file
	LogFileName = "shelf.log"

	// ManifestFileName is the package manifest every project carries
	ManifestFileName = "package.json"

	// NodeModulesDir is where consumers resolve their dependencies
	NodeModulesDir = "node_modules"

	// BinDirName is the executable directory inside node_modules
	BinDirName = ".bin"
)

// Paths provides centralized management of machine-wide shelf locations
type Paths interface {
	DataDir() string
	ConfigDir() string
	StateDir() string
	StoreDir() string
	PackagesDir() string
	InstallationsFile() string
	ConfigFile() string
	LogFilePath() string
	NormalizePath(path string) (string, error)
}

type paths struct {
	xdgData   string
	xdgConfig string
	xdgState  string
	store     string
}

// New creates a Paths instance, honoring the SHELF_* environment overrides.
func New() (Paths, error) {
	p := &paths{}

	if dataDir := os.Getenv(EnvShelfDataDir); dataDir != "" {
		p.xdgData = expandHome(dataDir)
	} else {
		p.xdgData = filepath.Join(xdg.DataHome, ShelfDirName)
	}

	if configDir := os.Getenv(EnvShelfConfigDir); configDir != "" {
		p.xdgConfig = expandHome(configDir)
	} else {
		p.xdgConfig = filepath.Join(xdg.ConfigHome, ShelfDirName)
	}

	if stateDir := os.Getenv(EnvShelfStateDir); stateDir != "" {
		p.xdgState = expandHome(stateDir)
	} else {
		p.xdgState = filepath.Join(xdg.StateHome, ShelfDirName)
	}

	if storeDir := os.Getenv(EnvShelfStoreDir); storeDir != "" {
		p.store = expandHome(storeDir)
	} else {
		p.store = p.xdgData
	}

	for _, dir := range []*string{&p.xdgData, &p.xdgConfig, &p.xdgState, &p.store} {
		abs, err := NormalizePath(*dir)
		if err != nil {
			return nil, err
		}
		*dir = abs
	}

	return p, nil
}

// WithStoreDir returns a copy of p whose store lives at dir. An empty dir
// returns p unchanged.
func WithStoreDir(p Paths, dir string) (Paths, error) {
	if dir == "" {
		return p, nil
	}
	abs, err := NormalizePath(dir)
	if err != nil {
		return nil, err
	}
	return &paths{
		xdgData:   p.DataDir(),
		xdgConfig: p.ConfigDir(),
		xdgState:  p.StateDir(),
		store:     abs,
	}, nil
}

// DataDir returns the XDG data directory for shelf
func (p *paths) DataDir() string {
	return p.xdgData
}

// ConfigDir returns the XDG config directory for shelf
func (p *paths) ConfigDir() string {
	return p.xdgConfig
}

// StateDir returns the XDG state directory for shelf
func (p *paths) StateDir() string {
	return p.xdgState
}

// StoreDir returns the root of the package store
func (p *paths) StoreDir() string {
	return p.store
}

// PackagesDir returns the directory holding one subdirectory per package
func (p *paths) PackagesDir() string {
	return filepath.Join(p.store, PackagesDir)
}

// InstallationsFile returns the path of the installation registry
func (p *paths) InstallationsFile() string {
	return filepath.Join(p.xdgData, InstallationsFileName)
}

// ConfigFile returns the path of the user configuration file
func (p *paths) ConfigFile() string {
	return filepath.Join(p.xdgConfig, ConfigFileName)
}

// LogFilePath returns the path to the log file
func (p *paths) LogFilePath() string {
	return filepath.Join(p.xdgState, LogFileName)
}

// NormalizePath normalizes a path by expanding home, making it absolute,
// and cleaning it
func (p *paths) NormalizePath(path string) (string, error) {
	return NormalizePath(path)
}

// NormalizePath expands ~, makes path absolute and cleans it.
func NormalizePath(path string) (string, error) {
	if path == "" {
		return "", errors.New(errors.ErrInvalidInput, "empty path")
	}

	abs, err := filepath.Abs(expandHome(path))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "failed to get absolute path for %s", path)
	}

	return filepath.Clean(abs), nil
}

// expandHome expands ~ to the home directory
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}

	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~something (not the user's home)
	return path
}
