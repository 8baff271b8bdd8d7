package session

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vpodhq/vpod-backend/internal/domain/cue"
	"github.com/vpodhq/vpod-backend/internal/domain/library"
	"github.com/vpodhq/vpod-backend/internal/domain/nav"
	"github.com/vpodhq/vpod-backend/internal/domain/playback"
)

type fakeFile struct {
	name string
	size int64
	rel  string
	data []byte
}

func (f *fakeFile) Name() string    { return f.name }
func (f *fakeFile) Size() int64     { return f.size }
func (f *fakeFile) RelPath() string { return f.rel }
func (f *fakeFile) Open() (io.ReadSeekCloser, error) {
	return nopCloser{bytes.NewReader(f.data)}, nil
}

type nopCloser struct{ *bytes.Reader }

func (nopCloser) Close() error { return nil }

// fakeExtractor maps filenames to metadata, falling back like the real one.
type fakeExtractor struct {
	meta map[string]library.Meta
}

func (e *fakeExtractor) Extract(f library.File) library.Meta {
	if m, ok := e.meta[f.Name()]; ok {
		return m
	}
	title := f.Name()
	if i := strings.LastIndex(title, "."); i > 0 {
		title = title[:i]
	}
	return library.Meta{Title: title, Artist: library.UnknownArtist, Album: library.UnidentifiedAlbum}
}

// recordingRenderer captures every push.
type recordingRenderer struct {
	mu      sync.Mutex
	screens []Screen
	dirs    []nav.Direction
	cursors []Screen
	states  []State
}

func (r *recordingRenderer) RenderScreen(scr Screen, dir nav.Direction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.screens = append(r.screens, scr)
	r.dirs = append(r.dirs, dir)
}

func (r *recordingRenderer) UpdateCursor(scr Screen) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cursors = append(r.cursors, scr)
}

func (r *recordingRenderer) PushState(st State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, st)
}

func (r *recordingRenderer) lastScreen() (Screen, nav.Direction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.screens[len(r.screens)-1], r.dirs[len(r.dirs)-1]
}

func newTestSession(meta map[string]library.Meta) (*Session, *recordingRenderer) {
	store := library.NewStore()
	builder := library.NewBuilder(store, &fakeExtractor{meta: meta}, cue.NewParser())
	renderer := &recordingRenderer{}
	sess := New(store, builder, playback.NopMedia{}, renderer)
	return sess, renderer
}

func waitForScreen(t *testing.T, s *Session, name string) Screen {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if scr := s.CurrentScreen(); scr.Name == name {
			return scr
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("screen %q never became active, current is %q", name, s.CurrentScreen().Name)
	return Screen{}
}

func albumBatch() []library.File {
	return []library.File{
		&fakeFile{name: "01.mp3", rel: "f/01.mp3", size: 1},
		&fakeFile{name: "02.mp3", rel: "f/02.mp3", size: 2},
		&fakeFile{name: "cover.jpg", rel: "f/cover.jpg", size: 3},
	}
}

func albumMeta() map[string]library.Meta {
	return map[string]library.Meta{
		"01.mp3": {Title: "Song1", Artist: "X", Album: "Alb"},
		"02.mp3": {Title: "Song2", Artist: "X", Album: "Alb"},
	}
}

func TestNewSessionRendersMainMenu(t *testing.T) {
	sess, renderer := newTestSession(nil)

	scr, dir := renderer.lastScreen()
	if scr.Name != "main" || dir != nav.Forward {
		t.Errorf("initial render = %q/%q, want forward main menu", scr.Name, dir)
	}
	if len(scr.Items) != 4 {
		t.Errorf("main menu items = %d, want 4", len(scr.Items))
	}
	if scr.Index != 0 {
		t.Errorf("initial index = %d, want 0", scr.Index)
	}
	if got := sess.CurrentScreen().Name; got != "main" {
		t.Errorf("CurrentScreen = %q, want main", got)
	}
}

func TestStepMovesAndWrapsOnMainMenu(t *testing.T) {
	sess, renderer := newTestSession(nil)

	sess.Step(-1)

	renderer.mu.Lock()
	last := renderer.cursors[len(renderer.cursors)-1]
	renderer.mu.Unlock()
	if last.Index != 3 {
		t.Errorf("index after backward step from 0 = %d, want wrap to 3", last.Index)
	}
}

func TestConfirmOpensAlbumsScreen(t *testing.T) {
	sess, renderer := newTestSession(nil)

	sess.Step(1) // Albums entry
	sess.Confirm()

	scr, dir := renderer.lastScreen()
	if scr.Name != "albums" || dir != nav.Forward {
		t.Errorf("screen = %q/%q, want forward albums", scr.Name, dir)
	}
	if scr.Message != "No albums loaded." {
		t.Errorf("empty albums message = %q", scr.Message)
	}
}

func TestLoadFilesIngestsAndReturns(t *testing.T) {
	sess, renderer := newTestSession(albumMeta())

	// Enter the load-music screen the way a user would
	sess.Confirm()
	waitForScreen(t, sess, "load")

	sess.LoadFiles(albumBatch())

	// Loading screen shows while the batch runs, then navigation returns
	// to the main menu in the back direction.
	waitForScreen(t, sess, "main")
	_, dir := renderer.lastScreen()
	if dir != nav.Back {
		t.Errorf("post-ingest direction = %q, want back", dir)
	}

	sess.Step(1)
	sess.Confirm()
	albums := waitForScreen(t, sess, "albums")
	if len(albums.Items) != 1 || albums.Items[0].Label != "Alb" {
		t.Errorf("albums = %+v, want the ingested album", albums.Items)
	}
	if albums.Cover == "" || albums.Cover == "default-cover.png" {
		t.Errorf("album cover = %q, want the folder image", albums.Cover)
	}
	if albums.Kind != nav.KindCarousel || len(albums.Slots) != 1 {
		t.Errorf("albums screen kind/slots = %v/%d, want carousel layout", albums.Kind, len(albums.Slots))
	}
}

// loadLibrary drives the user flow of ingesting a batch: enter the load
// screen, hand the files over, wait for the return to the main menu.
func loadLibrary(t *testing.T, sess *Session, batch []library.File) {
	t.Helper()
	sess.Confirm()
	waitForScreen(t, sess, "load")
	sess.LoadFiles(batch)
	waitForScreen(t, sess, "main")
}

func TestConfirmOnSongStartsPlaybackAndSyncsCursor(t *testing.T) {
	sess, renderer := newTestSession(albumMeta())
	loadLibrary(t, sess, albumBatch())

	sess.Step(1)
	sess.Confirm() // albums
	waitForScreen(t, sess, "albums")
	sess.Confirm() // open album "Alb"
	songs := waitForScreen(t, sess, "songs")
	if len(songs.Items) != 2 {
		t.Fatalf("songs = %d, want 2", len(songs.Items))
	}

	sess.Step(1) // highlight Song2
	sess.Confirm()

	st := sess.State()
	if st.Status != playback.StatusPlaying {
		t.Errorf("status = %v, want playing", st.Status)
	}
	if st.Title != "Song2" || st.Position != 1 || st.QueueLen != 2 {
		t.Errorf("state = %+v, want Song2 at position 1 of 2", st)
	}

	renderer.mu.Lock()
	lastCursor := renderer.cursors[len(renderer.cursors)-1]
	renderer.mu.Unlock()
	if lastCursor.Index != 1 {
		t.Errorf("cursor after playback start = %d, want the playing position", lastCursor.Index)
	}
}

func TestTrackCompletedAdvancesThroughQueue(t *testing.T) {
	sess, _ := newTestSession(albumMeta())
	loadLibrary(t, sess, albumBatch())

	sess.Step(1)
	sess.Confirm()
	waitForScreen(t, sess, "albums")
	sess.Confirm()
	waitForScreen(t, sess, "songs")
	sess.Confirm() // play Song1

	sess.TrackCompleted()
	st := sess.State()
	if st.Title != "Song2" || st.Position != 1 {
		t.Errorf("after auto-advance state = %+v, want Song2 at 1", st)
	}

	sess.TrackCompleted()
	st = sess.State()
	if st.Status != playback.StatusIdle || st.Position != -1 {
		t.Errorf("after last track state = %+v, want idle at -1", st)
	}
}

func TestBackAtRootIsNoOp(t *testing.T) {
	sess, renderer := newTestSession(nil)

	renderer.mu.Lock()
	before := len(renderer.screens)
	renderer.mu.Unlock()

	sess.Back()

	renderer.mu.Lock()
	after := len(renderer.screens)
	renderer.mu.Unlock()
	if after != before {
		t.Error("back at root re-rendered a screen")
	}
}

func TestArtistsFlow(t *testing.T) {
	sess, _ := newTestSession(albumMeta())
	loadLibrary(t, sess, albumBatch())

	sess.Step(1)
	sess.Step(1) // Artists entry
	sess.Confirm()
	artists := waitForScreen(t, sess, "artists")
	if len(artists.Items) != 1 || artists.Items[0].Label != "X" {
		t.Fatalf("artists = %+v, want [X]", artists.Items)
	}

	sess.Confirm()
	byArtist := waitForScreen(t, sess, "artist-albums")
	if len(byArtist.Items) != 1 || byArtist.Items[0].Label != "Alb" {
		t.Errorf("artist albums = %+v, want [Alb]", byArtist.Items)
	}

	sess.Confirm()
	waitForScreen(t, sess, "songs")
}

func TestPlaylistsScreenIsInertPlaceholder(t *testing.T) {
	sess, _ := newTestSession(nil)

	sess.Step(-1) // wrap to Playlists
	sess.Confirm()
	scr := waitForScreen(t, sess, "playlists")
	if scr.Message == "" {
		t.Error("playlists placeholder has no message")
	}

	// Empty view: stepping and confirming must be harmless
	sess.Step(1)
	sess.Confirm()
	if got := sess.CurrentScreen().Name; got != "playlists" {
		t.Errorf("screen after empty-view interaction = %q, want playlists", got)
	}

	sess.Back()
	waitForScreen(t, sess, "main")
}

// gatedExtractor blocks each Extract until released, so a batch can be held
// in flight.
type gatedExtractor struct {
	fakeExtractor
	gate chan struct{}
}

func (e *gatedExtractor) Extract(f library.File) library.Meta {
	<-e.gate
	return e.fakeExtractor.Extract(f)
}

func TestLoadFilesAtRootReturnsToMainMenu(t *testing.T) {
	// The transport accepts loadFolder without the user navigating to the
	// load screen first; completion must not strand the loading screen.
	sess, _ := newTestSession(albumMeta())

	sess.LoadFiles(albumBatch())

	waitForScreen(t, sess, "main")
	sess.Step(1)
	sess.Confirm()
	albums := waitForScreen(t, sess, "albums")
	if len(albums.Items) != 1 || albums.Items[0].Label != "Alb" {
		t.Errorf("albums after root-level ingest = %+v, want the ingested album", albums.Items)
	}
}

func TestSecondBatchWhileIngestingIsIgnored(t *testing.T) {
	store := library.NewStore()
	ex := &gatedExtractor{fakeExtractor: fakeExtractor{meta: albumMeta()}, gate: make(chan struct{})}
	builder := library.NewBuilder(store, ex, cue.NewParser())
	renderer := &recordingRenderer{}
	sess := New(store, builder, playback.NopMedia{}, renderer)

	sess.Confirm() // load screen
	waitForScreen(t, sess, "load")
	sess.LoadFiles(albumBatch())
	sess.LoadFiles(albumBatch()) // second batch while the first is held in flight
	close(ex.gate)

	waitForScreen(t, sess, "main")
	if got := store.Len(); got != 2 {
		t.Errorf("track count = %d, want 2 from a single accepted batch", got)
	}
}
