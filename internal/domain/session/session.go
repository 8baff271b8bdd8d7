// Package session wires the library, navigation, and playback engines into
// the menu-driven surface the remote-control UI talks to: one screen visible
// at a time, one selectable item at a time.
package session

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/vpodhq/vpod-backend/internal/domain/library"
	"github.com/vpodhq/vpod-backend/internal/domain/nav"
	"github.com/vpodhq/vpod-backend/internal/domain/playback"
)

// Item is one selectable row of a screen.
type Item struct {
	Label    string `json:"label"`
	Sublabel string `json:"sublabel,omitempty"`
}

// Screen is the view model pushed to the rendering collaborator. The engine
// never produces markup; presentation is entirely the client's concern.
type Screen struct {
	Name    string     `json:"name"`
	Kind    nav.Kind   `json:"kind"`
	Title   string     `json:"title,omitempty"`
	Items   []Item     `json:"items"`
	Index   int        `json:"index"`
	Cover   string     `json:"cover,omitempty"`
	Message string     `json:"message,omitempty"`
	Slots   []nav.Slot `json:"slots,omitempty"`
}

// State is the playback triple exposed for progress display.
type State struct {
	Status   playback.Status `json:"status"`
	Title    string          `json:"title,omitempty"`
	Artist   string          `json:"artist,omitempty"`
	Album    string          `json:"album,omitempty"`
	Position int             `json:"position"`
	QueueLen int             `json:"queueLen"`
	Seek     float64         `json:"seek"`
	Duration float64         `json:"duration"`
}

// Renderer receives screen and state pushes. RenderScreen announces a screen
// change in a direction; UpdateCursor re-pushes the same screen after cursor
// movement; PushState follows playback transitions.
type Renderer interface {
	RenderScreen(scr Screen, dir nav.Direction)
	UpdateCursor(scr Screen)
	PushState(st State)
}

// Session is the single-focus navigation and playback surface. All entry
// points serialize on one mutex, mirroring the cooperative event thread of
// the host environment.
type Session struct {
	mu        sync.Mutex
	store     *library.Store
	builder   *library.Builder
	renderer  Renderer
	stack     *nav.Stack
	cursor    *nav.Cursor
	seq       *playback.Sequencer
	screen    Screen
	ingesting bool
}

// New creates a session over the given library and media element and renders
// the main menu as the navigation root.
func New(store *library.Store, builder *library.Builder, media playback.Media, renderer Renderer) *Session {
	s := &Session{store: store, builder: builder, renderer: renderer}
	s.cursor = nav.NewCursor(s)
	s.seq = playback.NewSequencer(media, s.syncCursor)
	s.stack = nav.NewStack(s.mainMenu)
	return s
}

// Step moves the cursor over the active view.
func (s *Session) Step(direction int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.Step(direction)
}

// Confirm activates the item under the cursor.
func (s *Session) Confirm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.Confirm()
}

// Back pops one screen. No-op at the root.
func (s *Session) Back() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stack.Pop()
}

// PlayPause toggles playback.
func (s *Session) PlayPause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.seq.TogglePlayPause(); err != nil {
		log.Warn().Err(err).Msg("Play/pause failed")
	}
	s.pushState()
}

// Next skips to the following queue entry.
func (s *Session) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.seq.Next(); err != nil {
		log.Warn().Err(err).Msg("Next failed")
	}
	s.pushState()
}

// Previous skips to the preceding queue entry.
func (s *Session) Previous() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.seq.Previous(); err != nil {
		log.Warn().Err(err).Msg("Previous failed")
	}
	s.pushState()
}

// TrackCompleted is the host's playback-completion signal.
func (s *Session) TrackCompleted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.seq.TrackCompleted(); err != nil {
		log.Warn().Err(err).Msg("Auto-advance failed")
	}
	s.pushState()
}

// LoadFiles ingests a batch of selected files. The loading screen is shown
// while the batch runs; on completion the session navigates back to the
// screen below the load screen, which re-derives its items from the updated
// library. A batch handed over at the navigation root (the transport accepts
// loadFolder at any time) re-renders the root instead, since the loading
// screen is never pushed and there is nothing to pop. A second batch cannot
// start while one is in flight.
func (s *Session) LoadFiles(files []library.File) {
	s.mu.Lock()
	if s.ingesting {
		s.mu.Unlock()
		log.Warn().Msg("Ingestion already in flight, batch ignored")
		return
	}
	s.ingesting = true
	s.renderLoading("Loading your music...")
	s.mu.Unlock()

	go func() {
		res := s.builder.Ingest(files)
		s.mu.Lock()
		defer s.mu.Unlock()
		s.ingesting = false
		log.Info().Int("added", res.Added).Msg("Ingestion finished")
		if s.stack.Depth() > 1 {
			s.stack.Pop()
		} else {
			s.stack.Refresh()
		}
	}()
}

// State returns the playback state for progress display.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

// CurrentScreen returns the active screen view model.
func (s *Session) CurrentScreen() Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen
}

// CursorMoved implements nav.CursorListener: refresh the index, carousel
// layout, and highlighted cover, then re-push the screen.
func (s *Session) CursorMoved(v nav.View, old, cur int) {
	s.screen.Index = cur
	if v.Kind() == nav.KindCarousel || v.Kind() == nav.KindArtistList {
		s.screen.Slots = nav.CarouselLayout(v.Len(), cur)
	}
	if s.screen.Name == screenAlbums || s.screen.Name == screenArtistAlbums {
		if cur < len(s.screen.Items) {
			s.screen.Cover = s.albumCoverURI(s.screen.Items[cur].Label)
		}
	}
	s.renderer.UpdateCursor(s.screen)
}

func (s *Session) state() State {
	st := State{
		Status:   s.seq.Status(),
		Position: s.seq.Position(),
		QueueLen: s.seq.QueueLen(),
	}
	if t, ok := s.seq.Current(); ok {
		st.Title = t.Title
		st.Artist = t.Artist
		st.Album = t.Album
	}
	st.Seek, st.Duration = s.seq.Progress()
	return st
}

func (s *Session) pushState() {
	s.renderer.PushState(s.state())
}

// syncCursor is the sequencer's cursor-sync hook: highlight the playing
// queue position in the active list. Called with the session lock held by
// whichever entry point started playback.
func (s *Session) syncCursor(position int) {
	s.cursor.Set(position)
}
