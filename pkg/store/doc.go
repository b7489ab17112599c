// Package store implements the versioned package store.
//
// Layout:
//
//	<store>/packages/<name>/<version>/
//	    package.json          manifest as published (locators rewritten)
//	    ...                   packaged files
//	    .shelf.meta.yaml      name, version, signature, publish time
//
// Scoped packages nest one level deeper (<store>/packages/@scope/name/...).
// An entry is only ever replaced as a whole: publishing builds the new
// entry in a temporary sibling and renames it into place. Nothing in the
// add or update flows deletes entries.
package store
