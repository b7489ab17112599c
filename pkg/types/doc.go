// Package types defines the small set of interfaces and values shared by
// shelf's packages: the filesystem abstraction and the installation pair
// exchanged between the installer, the publisher and the registry.
package types
