package config

import (
	"strings"

	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/pelletier/go-toml/v2"
)

const generatedHeader = "# shelf configuration\n# Generated by `shelf genconfig`. Place it at $XDG_CONFIG_HOME/shelf/config.toml\n# or as .shelf.toml in a project.\n\n"

// GenerateConfigContent renders cfg as TOML. When commented is set every
// assignment is commented out so the file documents values without
// pinning them.
func GenerateConfigContent(cfg *Config, commented bool) (string, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to render configuration")
	}
	content := generatedHeader + string(data)
	if commented {
		content = commentOutConfigValues(content)
	}
	return content, nil
}

// commentOutConfigValues takes the TOML content and comments out all non-comment, non-blank lines
// that contain configuration values (assignments)
func commentOutConfigValues(content string) string {
	lines := strings.Split(content, "\n")
	var result []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		// Keep blank lines and comments as-is
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			result = append(result, line)
			continue
		}

		// Keep section headers (e.g., [project], [publish]) as-is
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			result = append(result, line)
			continue
		}

		result = append(result, "# "+line)
	}

	return strings.Join(result, "\n")
}
