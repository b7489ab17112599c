package store

import (
	"path/filepath"
	"time"

	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/arthur-debert/shelf/pkg/types"
	"gopkg.in/yaml.v3"
)

// MetaFileName is written into every store entry and travels with it into
// consumers' staging folders.
const MetaFileName = ".shelf.meta.yaml"

// Meta is the persisted description of a store entry
type Meta struct {
	Name        string    `yaml:"name"`
	Version     string    `yaml:"version"`
	Signature   string    `yaml:"signature"`
	PublishedAt time.Time `yaml:"publishedAt"`
	Files       int       `yaml:"files"`
}

// ReadMeta loads the metadata file from dir, which may be a store entry or
// a staged copy of one.
func ReadMeta(fsys types.FS, dir string) (*Meta, error) {
	data, err := fsys.ReadFile(filepath.Join(dir, MetaFileName))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrNotFound, "no metadata in %s", dir)
	}
	var meta Meta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, errors.Wrapf(err, errors.ErrParseFailure, "invalid metadata in %s", dir)
	}
	return &meta, nil
}

// ReadSignature returns the signature recorded in dir, or "" when there is
// none.
func ReadSignature(fsys types.FS, dir string) string {
	meta, err := ReadMeta(fsys, dir)
	if err != nil {
		return ""
	}
	return meta.Signature
}

func marshalMeta(meta *Meta) ([]byte, error) {
	data, err := yaml.Marshal(meta)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode metadata")
	}
	return data, nil
}
