// Package main is the entry point for the vPod player backend.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vpodhq/vpod-backend/internal/domain/cue"
	"github.com/vpodhq/vpod-backend/internal/domain/library"
	"github.com/vpodhq/vpod-backend/internal/domain/metadata"
	"github.com/vpodhq/vpod-backend/internal/domain/playback"
	"github.com/vpodhq/vpod-backend/internal/domain/session"
	"github.com/vpodhq/vpod-backend/internal/infra/files"
	"github.com/vpodhq/vpod-backend/internal/infra/mpdmedia"
	"github.com/vpodhq/vpod-backend/internal/infra/persist"
	"github.com/vpodhq/vpod-backend/internal/transport/socketio"
	"github.com/vpodhq/vpod-backend/internal/version"
)

func main() {
	port := flag.String("port", "3001", "HTTP server port")
	dbPath := flag.String("db", persist.DefaultDBPath, "Playlists database path")
	mpdHost := flag.String("mpd-host", "", "MPD host for server-side playback (empty: client plays audio)")
	mpdPort := flag.Int("mpd-port", 6600, "MPD port")
	mpdPassword := flag.String("mpd-password", "", "MPD password")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	versionInfo := version.GetInfo()
	log.Info().Msgf("%s starting", versionInfo.String())
	log.Info().
		Str("port", *port).
		Str("db", *dbPath).
		Str("mpd_host", *mpdHost).
		Msg("Configuration")

	// Playlist persistence
	playlists := persist.NewPlaylistStore(*dbPath)
	if err := playlists.Open(); err != nil {
		log.Fatal().Err(err).Msg("Failed to open playlists database")
	}
	defer playlists.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Library engine
	store := library.NewStore()
	builder := library.NewBuilder(store, metadata.NewTagExtractor(), cue.NewParser())

	// Transport
	source := files.NewOSSource()
	socketServer := socketio.NewServer(source, playlists)
	defer socketServer.Close()

	// Media element: MPD when configured, otherwise the client's own audio
	// element drives playback and reports completion over the socket.
	var media playback.Media = playback.NopMedia{}
	var mpdClient *mpdmedia.Client
	if *mpdHost != "" {
		mpdClient = mpdmedia.NewClient(*mpdHost, *mpdPort, *mpdPassword)
		if err := mpdClient.Connect(); err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to MPD")
		}
		defer mpdClient.Close()
		media = mpdClient
		log.Info().Msg("MPD connection verified")
	}

	sess := session.New(store, builder, media, socketServer)
	socketServer.SetSession(sess)

	if mpdClient != nil {
		if err := mpdClient.WatchCompletion(ctx, sess.TrackCompleted); err != nil {
			log.Fatal().Err(err).Msg("Failed to start MPD watcher")
		}
	}

	// HTTP surface
	mux := http.NewServeMux()
	mux.Handle("/socket.io/", socketServer)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("/api/v1/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(version.GetInfo())
	})

	// Cover art endpoint: serves the folder-local image assigned to an album
	mux.HandleFunc("/cover", func(w http.ResponseWriter, r *http.Request) {
		folder := r.URL.Query().Get("folder")
		rc, ok := store.Images().Open(folder)
		if !ok {
			http.Error(w, "cover not found", http.StatusNotFound)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		http.ServeContent(w, r, folder, time.Time{}, rc)
	})

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      withCORS(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Info().Msg("Shutting down...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
		}
	}()

	log.Info().Str("addr", ":"+*port).Msg("HTTP server listening")
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("HTTP server error")
	}

	log.Info().Msg("Server stopped")
}
