// Package cue parses CUE sheets into index tracks over a single audio image.
// A sheet whose FILE reference cannot be resolved against the batch's audio
// files yields no tracks at all.
package cue

import (
	"regexp"

	"github.com/rs/zerolog/log"

	"github.com/vpodhq/vpod-backend/internal/domain/library"
)

var (
	sheetTitleRe     = regexp.MustCompile(`(?m)^\s*TITLE\s+"([^"]+)"`)
	sheetPerformerRe = regexp.MustCompile(`(?m)^\s*PERFORMER\s+"([^"]+)"`)
	fileRe           = regexp.MustCompile(`(?i)FILE\s+"([^"]+\.flac)"`)
	trackRe          = regexp.MustCompile(`TRACK\s+\d+\s+AUDIO`)
	titleRe          = regexp.MustCompile(`TITLE\s+"([^"]+)"`)
	performerRe      = regexp.MustCompile(`PERFORMER\s+"([^"]+)"`)
)

// Parser implements library.CueParser.
type Parser struct{}

// NewParser creates a cue sheet parser.
func NewParser() *Parser { return &Parser{} }

// Parse extracts tracks from one cue sheet. The sheet-level TITLE and
// PERFORMER (first match each) become the album and the default track artist.
// The FILE reference is resolved by exact filename match against candidates;
// every resulting track shares that one resolved file, since cue tracks are
// index metadata for a single FLAC image rather than separate payloads.
func (p *Parser) Parse(cueText string, candidates []library.File) []library.Track {
	album := library.UnidentifiedAlbum
	if m := sheetTitleRe.FindStringSubmatch(cueText); m != nil {
		album = m[1]
	}
	artist := library.UnknownArtist
	if m := sheetPerformerRe.FindStringSubmatch(cueText); m != nil {
		artist = m[1]
	}

	fm := fileRe.FindStringSubmatch(cueText)
	if fm == nil {
		return nil
	}
	var file library.File
	for _, c := range candidates {
		if c.Name() == fm[1] {
			file = c
			break
		}
	}
	if file == nil {
		log.Debug().Str("file", fm[1]).Msg("Cue sheet references a file not in the batch, dropped")
		return nil
	}

	var tracks []library.Track
	for _, block := range trackBlocks(cueText) {
		t := library.Track{
			File:   file,
			Title:  file.Name(),
			Artist: artist,
			Album:  album,
			Origin: library.OriginCue,
		}
		if m := titleRe.FindStringSubmatch(block); m != nil {
			t.Title = m[1]
		}
		if m := performerRe.FindStringSubmatch(block); m != nil {
			t.Artist = m[1]
		}
		tracks = append(tracks, t)
	}
	return tracks
}

// trackBlocks returns the text between successive "TRACK <n> AUDIO" markers,
// one slice per track, the last running to the end of the sheet.
func trackBlocks(text string) []string {
	marks := trackRe.FindAllStringIndex(text, -1)
	blocks := make([]string, 0, len(marks))
	for i, m := range marks {
		end := len(text)
		if i+1 < len(marks) {
			end = marks[i+1][0]
		}
		blocks = append(blocks, text[m[1]:end])
	}
	return blocks
}
