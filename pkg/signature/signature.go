// Package signature computes content signatures of package file sets.
//
// A signature covers the relative path, the executable bit and the content
// of every file, in sorted path order, so it is stable while nothing
// changes and differs as soon as any file is added, removed, renamed,
// edited or made executable.
package signature

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/arthur-debert/shelf/pkg/types"
)

// Prefix identifies the digest algorithm of a signature
const Prefix = "sha256:"

// Builder accumulates file digests. The zero value is not usable; call New.
type Builder struct {
	digests map[string]fileDigest
}

type fileDigest struct {
	exec bool
	sum  [sha256.Size]byte
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{digests: make(map[string]fileDigest)}
}

// Add records the file at the slash-separated relative path rel. Only the
// executable bits of perm are significant. Adding the same path twice keeps
// the last content.
func (b *Builder) Add(rel string, perm fs.FileMode, data []byte) {
	b.digests[filepath.ToSlash(rel)] = fileDigest{exec: perm&0111 != 0, sum: sha256.Sum256(data)}
}

// AddFiles reads and records the listed files below root. Symlinks are
// followed.
func (b *Builder) AddFiles(fsys types.FS, root string, files []string) error {
	for _, rel := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		info, err := fsys.Stat(path)
		if err != nil {
			return errors.Wrapf(err, errors.ErrIOFailure, "failed to stat %s", rel)
		}
		data, err := fsys.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, errors.ErrIOFailure, "failed to read %s", rel)
		}
		b.Add(rel, info.Mode().Perm(), data)
	}
	return nil
}

// Sum returns the signature of everything added so far.
func (b *Builder) Sum() string {
	paths := make([]string, 0, len(b.digests))
	for p := range b.digests {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	hash := sha256.New()
	for _, p := range paths {
		d := b.digests[p]
		hash.Write([]byte(p))
		if d.exec {
			hash.Write([]byte{0, 'x'})
		} else {
			hash.Write([]byte{0, '-'})
		}
		hash.Write(d.sum[:])
	}
	return fmt.Sprintf("%s%x", Prefix, hash.Sum(nil))
}

// Short returns an abbreviated signature for display.
func Short(sig string) string {
	digest := strings.TrimPrefix(sig, Prefix)
	if len(digest) > 8 {
		digest = digest[:8]
	}
	if _, err := hex.DecodeString(digest); err != nil || digest == "" {
		return sig
	}
	return digest
}
