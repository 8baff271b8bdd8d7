package library

import (
	"io"
	"path"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// Extractor produces best-effort tag metadata for one audio file. It never
// fails outwardly: unreadable or missing fields come back as filename and
// placeholder fallbacks.
type Extractor interface {
	Extract(f File) Meta
}

// CueParser turns one cue sheet's text into tracks bound to an audio file
// from the candidate set. An unresolvable FILE reference yields no tracks.
type CueParser interface {
	Parse(cueText string, candidates []File) []Track
}

// Builder runs the ingestion pipeline over a batch of newly selected files.
type Builder struct {
	store     *Store
	extractor Extractor
	cues      CueParser
}

// NewBuilder creates an ingestion pipeline over the given store.
func NewBuilder(store *Store, extractor Extractor, cues CueParser) *Builder {
	return &Builder{store: store, extractor: extractor, cues: cues}
}

// Result summarizes one ingestion batch.
type Result struct {
	Audio    int
	Cues     int
	Images   int
	Added    int
	Rejected int // deduplicated repeats
}

// Ingest processes one batch: partition by extension, pool cover candidates,
// parse cue sheets against this batch's audio files, extract tags from every
// audio file, then merge into the library and rebuild the album index.
//
// The cue phase and the extraction phase are separate barriers: every cue
// parse finishes before extraction results are merged, and tag-derived tracks
// are always inserted before cue-derived ones. Per-item failures degrade to
// fallback metadata or zero tracks; a batch never aborts.
func (b *Builder) Ingest(files []File) Result {
	var audio, cueFiles, images []File
	for _, f := range files {
		switch classify(f.Name()) {
		case kindAudio:
			audio = append(audio, f)
		case kindCue:
			cueFiles = append(cueFiles, f)
		case kindImage:
			images = append(images, f)
		}
	}

	res := Result{Audio: len(audio), Cues: len(cueFiles), Images: len(images)}
	log.Info().
		Int("audio", len(audio)).
		Int("cues", len(cueFiles)).
		Int("images", len(images)).
		Int("total", len(files)).
		Msg("Ingesting batch")

	for _, img := range images {
		b.store.AddImage(img)
	}

	// Cue phase. Sheets only resolve against this batch's audio files, so
	// without both kinds present the phase is skipped entirely.
	var cueTracks []Track
	if len(cueFiles) > 0 && len(audio) > 0 {
		perSheet := make([][]Track, len(cueFiles))
		var wg sync.WaitGroup
		for i, cf := range cueFiles {
			wg.Add(1)
			go func(i int, cf File) {
				defer wg.Done()
				text, err := readAll(cf)
				if err != nil {
					log.Warn().Err(err).Str("cue", cf.Name()).Msg("Cue sheet unreadable, dropped")
					return
				}
				perSheet[i] = b.cues.Parse(text, audio)
			}(i, cf)
		}
		wg.Wait()
		for _, ts := range perSheet {
			cueTracks = append(cueTracks, ts...)
		}
	}

	// Extraction phase. One candidate track per audio file, completion order
	// irrelevant: results land in batch order.
	tagTracks := make([]Track, len(audio))
	var wg sync.WaitGroup
	for i, f := range audio {
		wg.Add(1)
		go func(i int, f File) {
			defer wg.Done()
			m := b.extractor.Extract(f)
			tagTracks[i] = Track{File: f, Title: m.Title, Artist: m.Artist, Album: m.Album, Origin: OriginTag}
		}(i, f)
	}
	wg.Wait()

	// Merge: tag-derived first, then cue-derived, each deduplicated against
	// the library within its own stream.
	for _, t := range tagTracks {
		if b.store.AddTrack(t) {
			res.Added++
		} else {
			res.Rejected++
		}
	}
	for _, t := range cueTracks {
		if b.store.AddTrack(t) {
			res.Added++
		} else {
			res.Rejected++
		}
	}

	b.store.Rebuild()

	log.Info().Int("added", res.Added).Int("rejected", res.Rejected).Msg("Batch ingested")
	return res
}

type fileKind int

const (
	kindOther fileKind = iota
	kindAudio
	kindCue
	kindImage
)

func classify(name string) fileKind {
	switch strings.ToLower(path.Ext(name)) {
	case ".mp3", ".flac":
		return kindAudio
	case ".cue":
		return kindCue
	case ".jpg", ".jpeg":
		return kindImage
	}
	return kindOther
}

func readAll(f File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
