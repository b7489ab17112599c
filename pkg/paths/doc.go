// Package paths provides centralized path handling for shelf.
//
// Two kinds of locations exist:
//
//   - machine-wide locations, following the XDG Base Directory
//     specification: the package store, the installation registry, the user
//     configuration and the log file. Each can be overridden with an
//     environment variable (SHELF_DATA_DIR, SHELF_STORE_DIR,
//     SHELF_CONFIG_DIR, SHELF_STATE_DIR), which is also how tests isolate
//     themselves.
//
//   - per-project locations, computed by Project: the manifest, the
//     lockfile, the staging folder and the node_modules entries.
//
// All paths handed out by this package are absolute and cleaned.
package paths
