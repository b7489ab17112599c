package config

import (
	"os"
	"strings"

	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/arthur-debert/shelf/pkg/logging"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of configuration environment variables
const EnvPrefix = "SHELF_"

// Sources locates the optional configuration files. Empty or missing files
// are skipped.
type Sources struct {
	UserFile    string
	ProjectFile string
	// Overrides are applied last, keyed by dotted path ("publish.push")
	Overrides map[string]interface{}
}

// Default returns the embedded defaults without reading any file or
// environment variable.
func Default() *Config {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		panic("embedded defaults are invalid: " + err.Error())
	}
	cfg, err := unmarshal(k)
	if err != nil {
		panic("embedded defaults are invalid: " + err.Error())
	}
	return cfg
}

// Load merges every configuration layer and returns the validated result.
func Load(src Sources) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to load default configuration")
	}

	// 2. User file, 3. project file
	for _, path := range []string{src.UserFile, src.ProjectFile} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrParseFailure, "failed to load config from %s", path)
		}
		logger.Debug().Str("path", path).Msg("Loaded configuration file")
	}

	// 4. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrParseFailure, "failed to load environment configuration")
	}

	// 5. Explicit overrides (command-line flags)
	if len(src.Overrides) > 0 {
		if err := k.Load(confmap.Provider(src.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrInvalidInput, "failed to apply overrides")
		}
	}

	cfg, err := unmarshal(k)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps SHELF_PUBLISH_CHANGED to publish.changed. Only the first
// underscore separates section from key, so SHELF_PROJECT_STAGING_FOLDER
// maps to project.staging_folder.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, rest, found := strings.Cut(key, "_")
	if !found {
		// Not a section key (SHELF_DATA_DIR and friends are handled by
		// pkg/paths); an empty key makes koanf skip it.
		return ""
	}
	if _, ok := knownSections[section]; !ok {
		return ""
	}
	return section + "." + rest
}

var knownSections = map[string]struct{}{
	"project": {},
	"store":   {},
	"add":     {},
	"publish": {},
	"scripts": {},
	"output":  {},
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrParseFailure, "failed to unmarshal configuration")
	}
	return &cfg, nil
}
