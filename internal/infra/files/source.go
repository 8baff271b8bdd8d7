// Package files adapts a filesystem folder into the file handles the
// ingestion pipeline consumes. The engine itself never touches the
// filesystem; it only sees name, size, relative path, and readable content.
package files

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/vpodhq/vpod-backend/internal/domain/library"
)

// Source loads folder contents from an afero filesystem. Production wiring
// uses the OS filesystem; tests use an in-memory one.
type Source struct {
	fs afero.Fs
}

// NewSource creates a source over the given filesystem.
func NewSource(fsys afero.Fs) *Source {
	return &Source{fs: fsys}
}

// NewOSSource creates a source over the host filesystem.
func NewOSSource() *Source {
	return &Source{fs: afero.NewOsFs()}
}

// File is one selected file, lazily readable.
type File struct {
	fs   afero.Fs
	path string // absolute path within fs
	rel  string // folder-qualified path, slash-separated
	name string
	size int64
}

func (f *File) Name() string    { return f.name }
func (f *File) Size() int64     { return f.size }
func (f *File) RelPath() string { return f.rel }

// Open returns the file content. afero files satisfy io.ReadSeekCloser.
func (f *File) Open() (io.ReadSeekCloser, error) {
	h, err := f.fs.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.path, err)
	}
	return h, nil
}

// Load walks root and returns every regular file beneath it. Relative paths
// are rooted at the selected folder's name, matching how a host folder picker
// reports them. Extension filtering is the ingestion pipeline's job, not ours.
func (s *Source) Load(root string) ([]library.File, error) {
	base := filepath.Base(filepath.Clean(root))
	var out []library.File
	err := afero.Walk(s.fs, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Skipping unreadable entry")
			return nil
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		out = append(out, &File{
			fs:   s.fs,
			path: path,
			rel:  filepath.ToSlash(filepath.Join(base, rel)),
			name: info.Name(),
			size: info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	log.Info().Str("root", root).Int("files", len(out)).Msg("Folder loaded")
	return out, nil
}
