package installer

import (
	"strings"

	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/arthur-debert/shelf/pkg/manifest"
)

// Spec is a parsed package argument such as "@scope/name@1.2.3"
type Spec struct {
	Name    string
	Version string
}

// String renders the spec back into its argument form
func (s Spec) String() string {
	if s.Version == "" {
		return s.Name
	}
	return s.Name + "@" + s.Version
}

// ParseSpec splits name[@version], where name may carry an @scope/ prefix.
func ParseSpec(arg string) (Spec, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return Spec{}, errors.New(errors.ErrParseFailure, "empty package specifier")
	}

	var spec Spec
	at := strings.LastIndex(arg, "@")
	if at > 0 {
		spec.Name, spec.Version = arg[:at], arg[at+1:]
		if spec.Version == "" {
			return Spec{}, errors.Newf(errors.ErrParseFailure, "missing version in %q", arg).WithDetail("spec", arg)
		}
	} else {
		spec.Name = arg
	}

	if err := manifest.ValidateName(spec.Name); err != nil {
		return Spec{}, errors.Wrapf(err, errors.ErrParseFailure, "invalid package specifier %q", arg).WithDetail("spec", arg)
	}
	if spec.Version != "" {
		if err := manifest.ValidateVersion(spec.Version); err != nil {
			return Spec{}, errors.Wrapf(err, errors.ErrParseFailure, "invalid version in %q", arg).WithDetail("spec", arg)
		}
	}
	return spec, nil
}
