// Package library holds the in-memory music library: the flat track set, the
// album index derived from it, and the ingestion pipeline that builds both
// from a batch of user-selected files.
package library

import (
	"io"
	"path"

	"github.com/vpodhq/vpod-backend/internal/domain/cover"
)

// File is the handle the host's file-selection surface hands over. Content is
// readable but the file is never written; Size and Name together identify the
// file for deduplication.
type File interface {
	Name() string
	Size() int64
	// RelPath is the folder-qualified path of the file within the selected
	// tree. Files picked loose (outside any folder) return "".
	RelPath() string
	Open() (io.ReadSeekCloser, error)
}

// Origin records which metadata stream produced a track. Tag-derived and
// cue-derived tracks for the same underlying file are kept as distinct
// entries; deduplication only collapses repeats within one stream.
type Origin int

const (
	OriginTag Origin = iota
	OriginCue
)

// Track is one playable entry in the library. Immutable after insertion.
type Track struct {
	File   File
	Title  string
	Artist string
	Album  string
	Origin Origin
}

// Key identifies a track for deduplication within its origin stream.
type Key struct {
	Name   string
	Size   int64
	Origin Origin
}

// Key returns the track's deduplication key.
func (t Track) Key() Key {
	return Key{Name: t.File.Name(), Size: t.File.Size(), Origin: t.Origin}
}

// Meta is the best-effort tag triple produced by an extractor.
type Meta struct {
	Title  string
	Artist string
	Album  string
}

// Album is a derived view over the track set, keyed by album title. Two
// albums sharing a title collide into one entry by design.
type Album struct {
	Title  string
	Artist string // first-seen artist, never recomputed
	Cover  cover.Ref
	Songs  []Track // ingestion order
	Folder string  // source folder of the first track, used for cover lookup
}

// Fallback values for missing or unreadable metadata.
const (
	UnknownArtist     = "Unknown Artist"
	UnidentifiedAlbum = "Unidentified Album"
)

// FolderOf returns the folder portion of a file's relative path, or "" for a
// file picked outside any folder.
func FolderOf(f File) string {
	rel := f.RelPath()
	if rel == "" {
		return ""
	}
	dir := path.Dir(rel)
	if dir == "." {
		return ""
	}
	return dir
}
