package session

import (
	"github.com/vpodhq/vpod-backend/internal/domain/library"
	"github.com/vpodhq/vpod-backend/internal/domain/nav"
)

// Screen names. The client keys its templates off these.
const (
	screenMain         = "main"
	screenLoad         = "load"
	screenLoading      = "loading"
	screenAlbums       = "albums"
	screenSongs        = "songs"
	screenArtists      = "artists"
	screenArtistAlbums = "artist-albums"
	screenPlaylists    = "playlists"
)

// listView carries the item count and the view-specific confirm handler for
// whichever list is active.
type listView struct {
	kind     nav.Kind
	n        int
	activate func(index int)
}

func (v listView) Kind() nav.Kind { return v.kind }
func (v listView) Len() int       { return v.n }
func (v listView) Activate(i int) {
	if v.activate != nil {
		v.activate(i)
	}
}

// show makes scr the active screen: the cursor is reset onto the new view and
// the renderer is told which direction the transition runs.
func (s *Session) show(scr Screen, v listView, dir nav.Direction) {
	s.cursor.SetView(v)
	scr.Index = 0
	if v.kind == nav.KindCarousel || v.kind == nav.KindArtistList {
		scr.Slots = nav.CarouselLayout(v.n, 0)
	}
	s.screen = scr
	s.renderer.RenderScreen(scr, dir)
}

func (s *Session) mainMenu(dir nav.Direction, _ ...string) {
	items := []Item{
		{Label: "Load Music"},
		{Label: "Albums"},
		{Label: "Artists"},
		{Label: "Playlists"},
	}
	v := listView{kind: nav.KindMenu, n: len(items), activate: func(i int) {
		switch i {
		case 0:
			s.stack.Push(s.loadMusic)
		case 1:
			s.stack.Push(s.albumsMenu)
		case 2:
			s.stack.Push(s.artistsMenu)
		case 3:
			s.stack.Push(s.playlistsMenu)
		}
	}}
	s.show(Screen{Name: screenMain, Kind: nav.KindMenu, Title: "vPod", Items: items}, v, dir)
}

func (s *Session) loadMusic(dir nav.Direction, _ ...string) {
	items := []Item{{Label: "Choose Music Folder"}}
	// Confirm is handled host-side: the client opens its folder picker and
	// the selection arrives through LoadFiles.
	v := listView{kind: nav.KindMenu, n: len(items)}
	s.show(Screen{Name: screenLoad, Kind: nav.KindMenu, Title: "Load Music", Items: items}, v, dir)
}

// renderLoading shows the transient loading screen. It is rendered directly,
// not pushed: the frame below stays the stack top, so the completion-time pop
// lands on the screen the user came from.
func (s *Session) renderLoading(message string) {
	scr := Screen{Name: screenLoading, Kind: nav.KindMenu, Message: message}
	s.cursor.SetView(listView{kind: nav.KindMenu})
	s.screen = scr
	s.renderer.RenderScreen(scr, nav.Forward)
}

func (s *Session) albumsMenu(dir nav.Direction, _ ...string) {
	titles := s.store.AlbumTitles()
	items := make([]Item, len(titles))
	for i, title := range titles {
		items[i] = Item{Label: title, Sublabel: s.albumArtist(title)}
	}
	v := listView{kind: nav.KindCarousel, n: len(items), activate: func(i int) {
		s.stack.Push(s.albumSongs, titles[i])
	}}
	scr := Screen{Name: screenAlbums, Kind: nav.KindCarousel, Title: "Albums", Items: items}
	if len(titles) > 0 {
		scr.Cover = s.albumCoverURI(titles[0])
	} else {
		scr.Message = "No albums loaded."
	}
	s.show(scr, v, dir)
}

func (s *Session) albumSongs(dir nav.Direction, args ...string) {
	title := ""
	if len(args) > 0 {
		title = args[0]
	}
	album := s.store.Album(title)
	scr := Screen{Name: screenSongs, Kind: nav.KindSongList, Title: title}
	var songs []library.Track
	if album != nil {
		songs = album.Songs
		scr.Cover = album.Cover.URI()
	}
	items := make([]Item, len(songs))
	for i, t := range songs {
		items[i] = Item{Label: t.Title, Sublabel: t.Artist}
	}
	scr.Items = items
	v := listView{kind: nav.KindSongList, n: len(items), activate: func(i int) {
		if err := s.seq.Play(songs[i], songs); err == nil {
			s.pushState()
		}
	}}
	s.show(scr, v, dir)
}

func (s *Session) artistsMenu(dir nav.Direction, _ ...string) {
	names := s.store.Artists()
	items := make([]Item, len(names))
	for i, name := range names {
		items[i] = Item{Label: name}
	}
	v := listView{kind: nav.KindArtistList, n: len(items), activate: func(i int) {
		s.stack.Push(s.artistAlbums, names[i])
	}}
	scr := Screen{Name: screenArtists, Kind: nav.KindArtistList, Title: "Artists", Items: items}
	if len(names) == 0 {
		scr.Message = "No artists loaded."
	}
	s.show(scr, v, dir)
}

func (s *Session) artistAlbums(dir nav.Direction, args ...string) {
	artist := ""
	if len(args) > 0 {
		artist = args[0]
	}
	titles := s.store.AlbumsByArtist(artist)
	items := make([]Item, len(titles))
	for i, title := range titles {
		items[i] = Item{Label: title, Sublabel: artist}
	}
	v := listView{kind: nav.KindCarousel, n: len(items), activate: func(i int) {
		s.stack.Push(s.albumSongs, titles[i])
	}}
	scr := Screen{Name: screenArtistAlbums, Kind: nav.KindCarousel, Title: artist, Items: items}
	if len(titles) > 0 {
		scr.Cover = s.albumCoverURI(titles[0])
	}
	s.show(scr, v, dir)
}

func (s *Session) playlistsMenu(dir nav.Direction, _ ...string) {
	scr := Screen{Name: screenPlaylists, Kind: nav.KindMenu, Title: "Playlists", Message: "Playlists coming soon..."}
	s.show(scr, listView{kind: nav.KindMenu}, dir)
}

func (s *Session) albumArtist(title string) string {
	if a := s.store.Album(title); a != nil {
		return a.Artist
	}
	return ""
}

func (s *Session) albumCoverURI(title string) string {
	if a := s.store.Album(title); a != nil && a.Cover != nil {
		return a.Cover.URI()
	}
	return ""
}
