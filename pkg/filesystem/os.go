package filesystem

import (
	"github.com/arthur-debert/shelf/pkg/types"
	"github.com/spf13/afero"
)

// NewOS returns the real filesystem. It is afero's OsFs behind the same
// adapter as NewMemory, so both support symlinks through afero.Linker and
// Lstat through afero.Lstater.
func NewOS() types.FS {
	return NewAferoFS(afero.NewOsFs())
}
