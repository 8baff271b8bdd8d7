// Package socketio exposes the navigation and playback engine to the
// remote-control UI over Socket.IO: input events in, screen and state pushes
// out.
package socketio

import (
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zishang520/socket.io/servers/socket/v3"
	"github.com/zishang520/socket.io/v3/pkg/types"

	"github.com/vpodhq/vpod-backend/internal/domain/library"
	"github.com/vpodhq/vpod-backend/internal/domain/nav"
	"github.com/vpodhq/vpod-backend/internal/domain/session"
)

// FolderSource loads a folder path into ingestible file handles.
type FolderSource interface {
	Load(root string) ([]library.File, error)
}

// PlaylistStore round-trips the opaque playlists blob.
type PlaylistStore interface {
	Load() (string, error)
	Save(blob string) error
}

// Server handles Socket.IO connections and events.
type Server struct {
	io        *socket.Server
	session   *session.Session
	source    FolderSource
	playlists PlaylistStore
	debouncer *PushDebouncer

	mu      sync.RWMutex
	clients map[string]*socket.Socket
	dials   map[string]*Dial
	screen  session.Screen
	dir     nav.Direction
}

// NewServer creates the Socket.IO server. It implements session.Renderer;
// wire it into the session after construction.
func NewServer(source FolderSource, playlists PlaylistStore) *Server {
	opts := socket.DefaultServerOptions()
	opts.SetPingTimeout(20 * time.Second)
	opts.SetPingInterval(25 * time.Second)
	opts.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	s := &Server{
		io:      socket.NewServer(nil, opts),
		source:  source,
		clients: make(map[string]*socket.Socket),
		dials:   make(map[string]*Dial),
	}
	s.playlists = playlists
	s.debouncer = NewPushDebouncer(20*time.Millisecond, s.broadcastCursor, s.broadcastState)
	s.setupHandlers()
	return s
}

// SetSession attaches the engine session. Must be called before serving.
func (s *Server) SetSession(sess *session.Session) {
	s.session = sess
}

// RenderScreen implements session.Renderer: broadcast a screen transition.
func (s *Server) RenderScreen(scr session.Screen, dir nav.Direction) {
	s.mu.Lock()
	s.screen = scr
	s.dir = dir
	s.mu.Unlock()
	s.io.Emit("pushScreen", map[string]interface{}{
		"screen":    scr,
		"direction": string(dir),
	})
}

// UpdateCursor implements session.Renderer: debounce-broadcast the screen
// after cursor movement.
func (s *Server) UpdateCursor(scr session.Screen) {
	s.mu.Lock()
	s.screen = scr
	s.mu.Unlock()
	s.debouncer.Trigger("cursor")
}

// PushState implements session.Renderer: debounce-broadcast playback state.
func (s *Server) PushState(session.State) {
	s.debouncer.Trigger("state")
}

func (s *Server) broadcastCursor() {
	s.mu.RLock()
	scr := s.screen
	s.mu.RUnlock()
	s.io.Emit("pushCursor", scr)
}

func (s *Server) broadcastState() {
	if s.session == nil {
		return
	}
	s.io.Emit("pushState", s.session.State())
}

// setupHandlers registers all Socket.IO event handlers.
func (s *Server) setupHandlers() {
	s.io.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		clientID := string(client.Id())

		log.Info().Str("id", clientID).Msg("Client connected")

		s.mu.Lock()
		s.clients[clientID] = client
		s.dials[clientID] = &Dial{}
		s.mu.Unlock()

		// Send the active screen and state after a small delay
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.pushCurrent(client)
		}()

		client.On("disconnect", func(args ...any) {
			log.Info().Str("id", clientID).Msg("Client disconnected")
			s.mu.Lock()
			delete(s.clients, clientID)
			delete(s.dials, clientID)
			s.mu.Unlock()
		})

		client.On("getState", func(args ...any) {
			s.pushCurrent(client)
		})

		client.On("step", func(args ...any) {
			dir := 1
			if len(args) > 0 {
				if v, ok := args[0].(float64); ok && v < 0 {
					dir = -1
				}
			}
			s.session.Step(dir)
		})

		client.On("dial", func(args ...any) {
			if len(args) == 0 {
				return
			}
			delta, ok := args[0].(float64)
			if !ok {
				return
			}
			s.mu.Lock()
			dial := s.dials[clientID]
			s.mu.Unlock()
			if dial == nil {
				return
			}
			for _, step := range dial.Move(delta) {
				s.session.Step(step)
			}
		})

		client.On("dialEnd", func(args ...any) {
			s.mu.Lock()
			if dial := s.dials[clientID]; dial != nil {
				dial.Reset()
			}
			s.mu.Unlock()
		})

		client.On("confirm", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("confirm")
			s.session.Confirm()
		})

		client.On("back", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("back")
			s.session.Back()
		})

		client.On("playPause", func(args ...any) {
			s.session.PlayPause()
		})

		client.On("next", func(args ...any) {
			s.session.Next()
		})

		client.On("previous", func(args ...any) {
			s.session.Previous()
		})

		client.On("trackEnded", func(args ...any) {
			// Host-side media element finished the current track
			s.session.TrackCompleted()
		})

		client.On("loadFolder", func(args ...any) {
			if len(args) == 0 {
				return
			}
			root, ok := args[0].(string)
			if !ok {
				return
			}
			files, err := s.source.Load(root)
			if err != nil {
				log.Error().Err(err).Str("root", root).Msg("Folder load failed")
				return
			}
			s.session.LoadFiles(files)
		})

		client.On("loadPlaylists", func(args ...any) {
			blob, err := s.playlists.Load()
			if err != nil {
				log.Error().Err(err).Msg("Playlist load failed")
				return
			}
			client.Emit("pushPlaylists", blob)
		})

		client.On("savePlaylists", func(args ...any) {
			if len(args) == 0 {
				return
			}
			blob, ok := args[0].(string)
			if !ok {
				return
			}
			if err := s.playlists.Save(blob); err != nil {
				log.Error().Err(err).Msg("Playlist save failed")
			}
		})
	})
}

// pushCurrent sends the active screen and playback state to one client.
func (s *Server) pushCurrent(client *socket.Socket) {
	s.mu.RLock()
	scr := s.screen
	dir := s.dir
	s.mu.RUnlock()
	client.Emit("pushScreen", map[string]interface{}{
		"screen":    scr,
		"direction": string(dir),
	})
	if s.session != nil {
		client.Emit("pushState", s.session.State())
	}
}

// ServeHTTP implements http.Handler for the Socket.IO server.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.io.ServeHandler(nil).ServeHTTP(w, r)
}

// Close shuts the Socket.IO server down.
func (s *Server) Close() error {
	s.debouncer.Stop()
	s.io.Close(nil)
	return nil
}
