// pkg/installer/spec_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test parsing of name[@version] package arguments

package installer_test

import (
	"testing"

	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/arthur-debert/shelf/pkg/installer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpec(t *testing.T) {
	tests := []struct {
		arg     string
		name    string
		version string
	}{
		{"left-pad", "left-pad", ""},
		{"left-pad@1.2.3", "left-pad", "1.2.3"},
		{"@acme/ui", "@acme/ui", ""},
		{"@acme/ui@2.0.0-beta.1", "@acme/ui", "2.0.0-beta.1"},
		{"  left-pad  ", "left-pad", ""},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			spec, err := installer.ParseSpec(tt.arg)
			require.NoError(t, err)
			assert.Equal(t, tt.name, spec.Name)
			assert.Equal(t, tt.version, spec.Version)
			assert.Equal(t, spec.Name, installer.Spec{Name: spec.Name}.String())
		})
	}
}

func TestParseSpecRejects(t *testing.T) {
	for _, arg := range []string{"", "@", "left-pad@", "@acme", "@/ui", "a/b", "../evil", ".hidden", "left pad", "x@../1"} {
		t.Run(arg, func(t *testing.T) {
			_, err := installer.ParseSpec(arg)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrParseFailure))
		})
	}
}
