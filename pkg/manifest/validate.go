package manifest

import (
	"strings"

	"github.com/arthur-debert/shelf/pkg/errors"
)

// ValidateName checks that name is usable as a path below a store or a
// node_modules directory: a plain name or @scope/name, with no empty,
// dot-prefixed or traversal segments.
func ValidateName(name string) error {
	if name == "" {
		return errors.New(errors.ErrParseFailure, "package name is empty")
	}
	if strings.ContainsAny(name, "\\ \t") {
		return errors.Newf(errors.ErrParseFailure, "%q contains invalid characters", name).WithDetail("name", name)
	}

	parts := strings.Split(name, "/")
	switch {
	case strings.HasPrefix(name, "@"):
		if len(parts) != 2 || len(parts[0]) < 2 {
			return errors.Newf(errors.ErrParseFailure, "scoped name %q must look like @scope/name", name).WithDetail("name", name)
		}
	case len(parts) != 1:
		return errors.Newf(errors.ErrParseFailure, "%q must not contain a slash", name).WithDetail("name", name)
	}

	for _, part := range parts {
		if part == "" || strings.HasPrefix(part, ".") {
			return errors.Newf(errors.ErrParseFailure, "%q is not a valid package name", name).WithDetail("name", name)
		}
	}
	return nil
}

// ValidateVersion checks that version names a single directory: no path
// separators, no whitespace, no leading dot.
func ValidateVersion(version string) error {
	switch {
	case version == "":
		return errors.New(errors.ErrParseFailure, "package version is empty")
	case strings.ContainsAny(version, "/\\ \t"),
		strings.HasPrefix(version, "."),
		strings.Contains(version, ".."):
		return errors.Newf(errors.ErrParseFailure, "%q is not a valid package version", version).WithDetail("version", version)
	}
	return nil
}
