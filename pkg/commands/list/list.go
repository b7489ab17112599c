package list

import (
	"github.com/arthur-debert/shelf/pkg/commands/runtime"
	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/arthur-debert/shelf/pkg/store"
)

// Options selects store packages; empty Packages lists everything
type Options struct {
	runtime.Options

	Packages []string
}

// Package is one store package with its versions, newest first
type Package struct {
	Name     string        `json:"name"`
	Versions []store.Entry `json:"versions"`
}

// Result is a listing of the store
type Result struct {
	Store    string    `json:"store"`
	Packages []Package `json:"packages"`
}

// List reports the packages held in the store
func List(opts Options) (*Result, error) {
	rt, err := runtime.New(opts.Options)
	if err != nil {
		return nil, err
	}

	names := opts.Packages
	if len(names) == 0 {
		if names, err = rt.Store.Packages(); err != nil {
			return nil, err
		}
	}

	result := &Result{Store: rt.Store.Root(), Packages: []Package{}}
	for _, name := range names {
		versions, err := rt.Store.Versions(name)
		if err != nil {
			if errors.IsErrorCode(err, errors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		result.Packages = append(result.Packages, Package{Name: name, Versions: versions})
	}
	return result, nil
}
