// Package metadata extracts embedded tags from audio files, degrading to
// filename-derived placeholders when tags are unreadable.
package metadata

import (
	"path"
	"strings"

	"github.com/dhowden/tag"
	"github.com/rs/zerolog/log"

	"github.com/vpodhq/vpod-backend/internal/domain/library"
)

// TagExtractor reads ID3/Vorbis tags via dhowden/tag.
type TagExtractor struct{}

// NewTagExtractor creates a tag-based extractor.
func NewTagExtractor() *TagExtractor { return &TagExtractor{} }

// Extract returns the best-effort tag triple for an audio file. It never
// fails: on read error or missing fields the title falls back to the filename
// with its audio extension stripped, artist and album to fixed placeholders.
func (e *TagExtractor) Extract(f library.File) library.Meta {
	m := library.Meta{
		Title:  TitleFromFilename(f.Name()),
		Artist: library.UnknownArtist,
		Album:  library.UnidentifiedAlbum,
	}

	rc, err := f.Open()
	if err != nil {
		log.Debug().Err(err).Str("file", f.Name()).Msg("Audio file unreadable, using fallback metadata")
		return m
	}
	defer rc.Close()

	tags, err := tag.ReadFrom(rc)
	if err != nil {
		log.Debug().Err(err).Str("file", f.Name()).Msg("Tag read failed, using fallback metadata")
		return m
	}

	if t := tags.Title(); t != "" {
		m.Title = t
	}
	if a := tags.Artist(); a != "" {
		m.Artist = a
	}
	if a := tags.Album(); a != "" {
		m.Album = a
	}
	return m
}

// TitleFromFilename strips a recognized audio extension from a filename.
func TitleFromFilename(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".mp3", ".flac":
		return name[:len(name)-len(path.Ext(name))]
	}
	return name
}
