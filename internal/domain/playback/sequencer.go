// Package playback owns the current track, the active play queue, and the
// Idle/Playing/Paused state machine. Decoding is delegated entirely to a
// host-provided media element.
package playback

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/vpodhq/vpod-backend/internal/domain/library"
)

// Status is the sequencer state.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusPlaying Status = "playing"
	StatusPaused  Status = "paused"
)

// Media is the host's playback element. Start loads and begins a track;
// Pause/Resume toggle it; Stop unloads. Track completion is reported back by
// the host through Sequencer.TrackCompleted.
type Media interface {
	Start(t library.Track) error
	Pause() error
	Resume() error
	Stop() error
}

// ProgressReporter is an optional Media capability for position/duration
// display, both in seconds.
type ProgressReporter interface {
	Progress() (position, duration float64)
}

// NopMedia is a Media that does nothing. Used when the host UI owns the
// actual audio element and only mirrors sequencer state.
type NopMedia struct{}

func (NopMedia) Start(library.Track) error { return nil }
func (NopMedia) Pause() error              { return nil }
func (NopMedia) Resume() error             { return nil }
func (NopMedia) Stop() error               { return nil }

// CursorSync is called with the queue position whenever playback starts a
// track, so the active list view can highlight the playing item.
type CursorSync func(position int)

// Sequencer is the playback state machine.
type Sequencer struct {
	mu      sync.Mutex
	media   Media
	sync    CursorSync
	status  Status
	queue   []library.Track
	pos     int
	current *library.Track
}

// NewSequencer creates an idle sequencer over the given media element.
func NewSequencer(media Media, sync CursorSync) *Sequencer {
	return &Sequencer{media: media, sync: sync, status: StatusIdle, pos: -1}
}

// Play starts a track. The queue is replaced wholesale: the given queue if
// non-empty, otherwise a singleton of the track. Position becomes the track's
// index within the queue and the cursor is synchronized to it.
func (s *Sequencer) Play(t library.Track, queue []library.Track) error {
	s.mu.Lock()
	if len(queue) == 0 {
		queue = []library.Track{t}
	}
	pos := indexOf(queue, t)
	if pos < 0 {
		queue = []library.Track{t}
		pos = 0
	}
	s.queue = queue
	s.pos = pos
	tc := t
	s.current = &tc
	s.status = StatusPlaying
	sync := s.sync
	s.mu.Unlock()

	log.Info().Str("title", t.Title).Str("artist", t.Artist).Int("position", pos).Msg("Play")
	if err := s.media.Start(t); err != nil {
		return err
	}
	if sync != nil {
		sync(pos)
	}
	return nil
}

// TogglePlayPause flips Playing and Paused. No effect with no track loaded.
func (s *Sequencer) TogglePlayPause() error {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return nil
	}
	var err error
	switch s.status {
	case StatusPlaying:
		s.status = StatusPaused
		s.mu.Unlock()
		err = s.media.Pause()
	case StatusPaused:
		s.status = StatusPlaying
		s.mu.Unlock()
		err = s.media.Resume()
	default:
		s.mu.Unlock()
	}
	return err
}

// Next starts the following queue entry. No-op at the end of the queue: track
// skipping does not wrap around, unlike the menu cursor.
func (s *Sequencer) Next() error {
	s.mu.Lock()
	if s.pos < 0 || s.pos >= len(s.queue)-1 {
		s.mu.Unlock()
		return nil
	}
	t := s.queue[s.pos+1]
	q := s.queue
	s.mu.Unlock()
	return s.Play(t, q)
}

// Previous starts the preceding queue entry. No-op at position 0.
func (s *Sequencer) Previous() error {
	s.mu.Lock()
	if s.pos <= 0 {
		s.mu.Unlock()
		return nil
	}
	t := s.queue[s.pos-1]
	q := s.queue
	s.mu.Unlock()
	return s.Play(t, q)
}

// TrackCompleted is the host's playback-completion signal. It auto-advances
// to the next queue entry, or goes idle after the last one.
func (s *Sequencer) TrackCompleted() error {
	s.mu.Lock()
	if s.pos >= 0 && s.pos < len(s.queue)-1 {
		t := s.queue[s.pos+1]
		q := s.queue
		s.mu.Unlock()
		return s.Play(t, q)
	}
	s.current = nil
	s.pos = -1
	s.status = StatusIdle
	s.mu.Unlock()
	log.Info().Msg("Queue finished")
	return s.media.Stop()
}

// Status returns the state machine status.
func (s *Sequencer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Current returns the playing track, or false when idle.
func (s *Sequencer) Current() (library.Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return library.Track{}, false
	}
	return *s.current, true
}

// Position returns the queue index, or -1 when nothing is playing.
func (s *Sequencer) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

// QueueLen returns the active queue length.
func (s *Sequencer) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Progress returns position/duration in seconds when the media element
// reports them, else zeros.
func (s *Sequencer) Progress() (float64, float64) {
	if pr, ok := s.media.(ProgressReporter); ok {
		return pr.Progress()
	}
	return 0, 0
}

func indexOf(queue []library.Track, t library.Track) int {
	k := t.Key()
	for i, q := range queue {
		if q.Key() == k {
			return i
		}
	}
	return -1
}
