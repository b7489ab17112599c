// internal/version/version_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test build information formatting

package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvedPrefersLdflags(t *testing.T) {
	original := Version
	t.Cleanup(func() { Version = original })

	Version = "v1.2.3"
	assert.Equal(t, "v1.2.3", Resolved())
}

func TestString(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = origVersion, origCommit, origDate })

	Version, Commit, Date = "v0.4.0", "abc123", "2026-01-02"
	assert.Equal(t, "v0.4.0 (commit abc123, built 2026-01-02)", String())
}
