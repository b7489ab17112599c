// Package testutil provides utilities for testing shelf components.
//
// Key components:
//   - TestEnvironment: isolated store, registry and project directories in
//     a temp dir, with the SHELF_* variables pointing at them
//   - PackageBuilder: declarative package directory setup
//   - FakeRunner: a recording scripts.Runner that can be told to fail
//
// Engine tests run on the real filesystem (symlinks are part of the
// behavior under test); lockfile and registry tests use the in-memory
// filesystem directly.
package testutil
