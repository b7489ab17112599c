// Package filesystem provides filesystem implementations for shelf.
//
// Both implementations of the types.FS interface, the real filesystem and
// the in-memory one used by tests, are afero filesystems behind one
// adapter. On top of them sit the directory primitives the store and the
// installer are built on: recursive copy, replace-by-rename, symlink
// replacement and atomic file writes.
package filesystem
