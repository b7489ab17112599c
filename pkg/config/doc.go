// Package config handles configuration management for shelf.
//
// Configuration is layered with koanf: the embedded defaults, the user file,
// the project's .shelf.toml and finally SHELF_* environment variables. The
// merged tree is decoded into Config through mapstructure.
package config
