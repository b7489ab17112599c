package filesystem

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/arthur-debert/shelf/pkg/types"
)

// Exists reports whether path exists without following a final symlink.
func Exists(fsys types.FS, path string) bool {
	_, err := fsys.Lstat(path)
	return err == nil
}

// IsSymlink reports whether path is a symlink.
func IsSymlink(fsys types.FS, path string) bool {
	info, err := fsys.Lstat(path)
	if err != nil {
		return false
	}
	return info.Mode()&fs.ModeSymlink != 0
}

// ResolveLink returns the absolute target of the symlink at path.
// Relative targets are resolved against the link's directory.
func ResolveLink(fsys types.FS, path string) (string, error) {
	target, err := fsys.Readlink(path)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), target)
	}
	return filepath.Clean(target), nil
}

// WriteFileAtomic writes data to a temporary sibling of path and renames it
// into place.
func WriteFileAtomic(fsys types.FS, path string, data []byte, perm fs.FileMode) error {
	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to create directory for %s", path)
	}
	tmp := TempSibling(path)
	if err := fsys.WriteFile(tmp, data, perm); err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to write %s", path)
	}
	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to replace %s", path)
	}
	return nil
}

// CopyDir recursively copies src into dst. File modes are preserved and
// symlinks are recreated as symlinks.
func CopyDir(fsys types.FS, src, dst string) error {
	info, err := fsys.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to stat %s", src)
	}
	if !info.IsDir() {
		return errors.Newf(errors.ErrInvalidInput, "%s is not a directory", src)
	}
	if err := fsys.MkdirAll(dst, info.Mode().Perm()|0700); err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to create %s", dst)
	}

	entries, err := fsys.ReadDir(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to read %s", src)
	}
	for _, entry := range entries {
		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dst, entry.Name())
		if err := copyEntry(fsys, from, to); err != nil {
			return err
		}
	}
	return nil
}

// CopyFiles copies the given slash-separated relative paths from srcRoot to
// dstRoot, creating parent directories as needed. Symlinks are followed and
// their content copied, so the copy never depends on files outside srcRoot.
func CopyFiles(fsys types.FS, srcRoot, dstRoot string, files []string) error {
	for _, rel := range files {
		from := filepath.Join(srcRoot, filepath.FromSlash(rel))
		to := filepath.Join(dstRoot, filepath.FromSlash(rel))
		if err := fsys.MkdirAll(filepath.Dir(to), 0755); err != nil {
			return errors.Wrapf(err, errors.ErrIOFailure, "failed to create directory for %s", to)
		}
		info, err := fsys.Stat(from)
		if err != nil {
			return errors.Wrapf(err, errors.ErrIOFailure, "failed to stat %s", from)
		}
		if info.IsDir() {
			err = CopyDir(fsys, from, to)
		} else {
			err = copyFile(fsys, from, to, info.Mode().Perm())
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func copyEntry(fsys types.FS, from, to string) error {
	info, err := fsys.Lstat(from)
	if err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to stat %s", from)
	}

	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		target, err := fsys.Readlink(from)
		if err != nil {
			return errors.Wrapf(err, errors.ErrIOFailure, "failed to read link %s", from)
		}
		if err := fsys.Symlink(target, to); err != nil {
			return errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to create link %s", to)
		}
	case info.IsDir():
		return CopyDir(fsys, from, to)
	default:
		return copyFile(fsys, from, to, info.Mode().Perm())
	}
	return nil
}

func copyFile(fsys types.FS, from, to string, perm fs.FileMode) error {
	data, err := fsys.ReadFile(from)
	if err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to read %s", from)
	}
	if err := fsys.WriteFile(to, data, perm); err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to write %s", to)
	}
	// WriteFile leaves the mode of an existing file alone
	if err := fsys.Chmod(to, perm); err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to chmod %s", to)
	}
	return nil
}

// ReplaceDir replaces dst with a copy of src. The copy is built in a
// temporary sibling and renamed into place, so dst is never left half
// written.
func ReplaceDir(fsys types.FS, src, dst string) error {
	if err := fsys.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to create parent of %s", dst)
	}

	tmp := TempSibling(dst)
	if err := CopyDir(fsys, src, tmp); err != nil {
		_ = fsys.RemoveAll(tmp)
		return err
	}
	if err := MoveReplace(fsys, tmp, dst); err != nil {
		_ = fsys.RemoveAll(tmp)
		return err
	}
	return nil
}

// ReplaceWithSymlink replaces whatever lives at link with a symlink to
// target. The link is written relative to its parent directory.
func ReplaceWithSymlink(fsys types.FS, target, link string) error {
	if err := fsys.MkdirAll(filepath.Dir(link), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to create parent of %s", link)
	}

	rel, err := filepath.Rel(filepath.Dir(link), target)
	if err != nil {
		rel = target
	}

	tmp := TempSibling(link)
	if err := fsys.Symlink(rel, tmp); err != nil {
		return errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to link %s -> %s", link, target)
	}
	if err := MoveReplace(fsys, tmp, link); err != nil {
		_ = fsys.Remove(tmp)
		return err
	}
	return nil
}

// EnsureExecutable adds the execute bits to path when the user bit is
// missing.
func EnsureExecutable(fsys types.FS, path string) error {
	info, err := fsys.Stat(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to stat %s", path)
	}
	mode := info.Mode().Perm()
	if mode&0100 != 0 {
		return nil
	}
	if err := fsys.Chmod(path, mode|0111); err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to chmod %s", path)
	}
	return nil
}

// MoveReplace moves tmp to dst, removing whatever dst held before. An
// existing entry is first renamed aside so the rename of tmp never targets
// a non-empty directory.
func MoveReplace(fsys types.FS, tmp, dst string) error {
	var old string
	if Exists(fsys, dst) {
		old = TempSibling(dst) + ".old"
		if err := fsys.Rename(dst, old); err != nil {
			return errors.Wrapf(err, errors.ErrIOFailure, "failed to move aside %s", dst)
		}
	}
	if err := fsys.Rename(tmp, dst); err != nil {
		if old != "" {
			_ = fsys.Rename(old, dst)
		}
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to rename into %s", dst)
	}
	if old != "" {
		if err := fsys.RemoveAll(old); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			return errors.Wrapf(err, errors.ErrIOFailure, "failed to clean up %s", old)
		}
	}
	return nil
}

// TempSibling returns a hidden, unique path next to path.
func TempSibling(path string) string {
	return filepath.Join(filepath.Dir(path), fmt.Sprintf(".%s.tmp-%d", filepath.Base(path), time.Now().UnixNano()))
}
