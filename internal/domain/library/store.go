package library

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/vpodhq/vpod-backend/internal/domain/cover"
)

// Store owns the process-wide library state: every ingested track, the image
// pool, and the album index rebuilt from scratch after each batch. All
// mutation goes through the ingestion pipeline; views read snapshots.
type Store struct {
	mu     sync.RWMutex
	tracks []Track
	keys   map[Key]struct{}
	albums map[string]*Album
	images *cover.Pool
}

// NewStore creates an empty library store.
func NewStore() *Store {
	return &Store{
		keys:   make(map[Key]struct{}),
		albums: make(map[string]*Album),
		images: cover.NewPool(),
	}
}

// AddTrack inserts a track unless an entry with the same key already exists.
// Returns true if the track was inserted.
func (s *Store) AddTrack(t Track) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := t.Key()
	if _, ok := s.keys[k]; ok {
		return false
	}
	s.keys[k] = struct{}{}
	s.tracks = append(s.tracks, t)
	return true
}

// AddImage registers a cover candidate in the process-wide image pool.
func (s *Store) AddImage(f File) {
	s.images.Add(FolderOf(f), f)
}

// Images exposes the image pool for artwork serving.
func (s *Store) Images() *cover.Pool { return s.images }

// Tracks returns a copy of the track list in ingestion order.
func (s *Store) Tracks() []Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Track, len(s.tracks))
	copy(out, s.tracks)
	return out
}

// Len returns the number of tracks in the library.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tracks)
}

// Rebuild recomputes the album index from the full track set: group by album
// title, first-seen artist and folder per album, then resolve one cover per
// album from the image pool. Covers previously assigned are released first so
// transient handles do not accumulate across batches.
func (s *Store) Rebuild() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.albums {
		if a.Cover != nil {
			a.Cover.Release()
		}
	}

	albums := make(map[string]*Album)
	for _, t := range s.tracks {
		title := t.Album
		if title == "" {
			title = UnidentifiedAlbum
		}
		a, ok := albums[title]
		if !ok {
			a = &Album{
				Title:  title,
				Artist: t.Artist,
				Folder: FolderOf(t.File),
			}
			albums[title] = a
		}
		a.Songs = append(a.Songs, t)
	}

	for _, a := range albums {
		a.Cover = s.images.Resolve(a.Folder)
	}

	s.albums = albums
	log.Info().Int("tracks", len(s.tracks)).Int("albums", len(albums)).Msg("Album index rebuilt")
}

// Album returns the album for a title, or nil.
func (s *Store) Album(title string) *Album {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.albums[title]
}

// AlbumTitles returns all album titles sorted for display.
func (s *Store) AlbumTitles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	titles := make([]string, 0, len(s.albums))
	for title := range s.albums {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles
}

// AlbumsByArtist returns the titles of albums whose first-seen artist matches,
// sorted for display.
func (s *Store) AlbumsByArtist(artist string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var titles []string
	for title, a := range s.albums {
		if a.Artist == artist {
			titles = append(titles, title)
		}
	}
	sort.Strings(titles)
	return titles
}

// Artists returns the unique artist names across all tracks, sorted for
// display. The artist index is derived on demand, never stored.
func (s *Store) Artists() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	var names []string
	for _, t := range s.tracks {
		if _, ok := seen[t.Artist]; ok {
			continue
		}
		seen[t.Artist] = struct{}{}
		names = append(names, t.Artist)
	}
	sort.Strings(names)
	return names
}
