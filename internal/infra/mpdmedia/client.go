// Package mpdmedia implements the playback media element on top of MPD. One
// track is loaded at a time; queue sequencing stays in the playback domain,
// so MPD's own playlist is always a single entry.
package mpdmedia

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/fhs/gompd/v2/mpd"
	"github.com/rs/zerolog/log"

	"github.com/vpodhq/vpod-backend/internal/domain/library"
)

// Client drives MPD through gompd with reconnection.
type Client struct {
	mu       sync.Mutex
	client   *mpd.Client
	host     string
	port     int
	password string
	playing  bool
}

// NewClient creates an MPD media element.
func NewClient(host string, port int, password string) *Client {
	return &Client{host: host, port: port, password: password}
}

// Connect establishes the MPD connection.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked()
}

func (c *Client) connectLocked() error {
	addr := fmt.Sprintf("%s:%d", c.host, c.port)
	log.Info().Str("addr", addr).Msg("Connecting to MPD")

	client, err := mpd.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to MPD: %w", err)
	}
	if c.password != "" {
		if err := client.Command("password %s", c.password).OK(); err != nil {
			client.Close()
			return fmt.Errorf("MPD authentication failed: %w", err)
		}
	}
	c.client = client
	return nil
}

func (c *Client) ensureConnected() error {
	if c.client == nil {
		return c.connectLocked()
	}
	if err := c.client.Ping(); err != nil {
		log.Warn().Err(err).Msg("MPD connection lost, reconnecting")
		c.client.Close()
		c.client = nil
		return c.connectLocked()
	}
	return nil
}

// Close closes the MPD connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}

// Start loads the track's file into a fresh single-entry MPD playlist and
// begins playback. The track's relative path must be visible under MPD's
// music directory.
func (c *Client) Start(t library.Track) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureConnected(); err != nil {
		return err
	}
	if err := c.client.Clear(); err != nil {
		return fmt.Errorf("failed to clear MPD playlist: %w", err)
	}
	if err := c.client.Add(t.File.RelPath()); err != nil {
		return fmt.Errorf("failed to queue %s: %w", t.File.RelPath(), err)
	}
	if err := c.client.Play(0); err != nil {
		return fmt.Errorf("failed to start playback: %w", err)
	}
	c.playing = true
	return nil
}

// Pause pauses playback.
func (c *Client) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureConnected(); err != nil {
		return err
	}
	return c.client.Pause(true)
}

// Resume resumes playback.
func (c *Client) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureConnected(); err != nil {
		return err
	}
	return c.client.Pause(false)
}

// Stop stops playback and clears the MPD playlist.
func (c *Client) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playing = false
	if err := c.ensureConnected(); err != nil {
		return err
	}
	if err := c.client.Stop(); err != nil {
		return err
	}
	return c.client.Clear()
}

// Progress returns elapsed and total seconds for the current track.
func (c *Client) Progress() (float64, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureConnected(); err != nil {
		return 0, 0
	}
	status, err := c.client.Status()
	if err != nil {
		return 0, 0
	}
	elapsed, _ := strconv.ParseFloat(status["elapsed"], 64)
	duration, _ := strconv.ParseFloat(status["duration"], 64)
	return elapsed, duration
}

// WatchCompletion watches MPD player events and invokes onComplete each time
// a started track runs to its end. Manual stops do not trigger it. Blocks
// until the context is canceled.
func (c *Client) WatchCompletion(ctx context.Context, onComplete func()) error {
	addr := fmt.Sprintf("%s:%d", c.host, c.port)
	watcher, err := mpd.NewWatcher("tcp", addr, c.password, "player")
	if err != nil {
		return fmt.Errorf("failed to create MPD watcher: %w", err)
	}
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Error:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("MPD watcher error")
			case _, ok := <-watcher.Event:
				if !ok {
					return
				}
				if c.trackEnded() {
					onComplete()
				}
			}
		}
	}()
	return nil
}

// trackEnded reports whether MPD transitioned from our started playback to a
// natural stop (playlist ran out).
func (c *Client) trackEnded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.playing {
		return false
	}
	if err := c.ensureConnected(); err != nil {
		return false
	}
	status, err := c.client.Status()
	if err != nil {
		return false
	}
	if status["state"] != "stop" {
		return false
	}
	c.playing = false
	return true
}
