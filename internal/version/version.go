// Package version holds build information stamped in at link time:
//
//	go build -ldflags "-X github.com/arthur-debert/shelf/internal/version.Version=v1.2.0"
package version

import (
	"fmt"
	"runtime/debug"
)

// Build information set by ldflags
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Resolved returns Version, falling back to the module version recorded
// by "go install" when no ldflags were given.
func Resolved() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

// String formats the full build information on one line
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Resolved(), Commit, Date)
}
