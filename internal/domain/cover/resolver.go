// Package cover assigns folder-local artwork to albums. At most one image is
// retained per source folder; albums from folders without an image fall back
// to a default sentinel.
package cover

import (
	"io"
	"sync"

	"github.com/rs/zerolog/log"
)

// DefaultURI is the sentinel cover for albums without folder artwork.
const DefaultURI = "default-cover.png"

// Source is a readable image file. library.File satisfies it.
type Source interface {
	Name() string
	Open() (io.ReadSeekCloser, error)
}

// Ref is a displayable cover reference. Refs backed by a transient resource
// must be released before being replaced so handles do not accumulate across
// repeated ingestion batches.
type Ref interface {
	URI() string
	Release()
}

// Default is the sentinel Ref. Release is a no-op.
var Default Ref = defaultRef{}

type defaultRef struct{}

func (defaultRef) URI() string { return DefaultURI }
func (defaultRef) Release()    {}

type imageRef struct {
	pool *Pool
	uri  string

	mu       sync.Mutex
	released bool
}

func (r *imageRef) URI() string { return r.uri }

func (r *imageRef) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return
	}
	r.released = true
	r.pool.release()
}

// Pool is the process-wide image pool. It is append-only across ingestion
// batches: the first image observed for a folder wins, later ones for the
// same folder are ignored.
type Pool struct {
	mu       sync.Mutex
	byFolder map[string]Source
	live     int // issued refs not yet released
}

// NewPool creates an empty image pool.
func NewPool() *Pool {
	return &Pool{byFolder: make(map[string]Source)}
}

// Add registers an image for a folder. Returns false if the folder already
// has an image.
func (p *Pool) Add(folder string, src Source) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.byFolder[folder]; ok {
		return false
	}
	p.byFolder[folder] = src
	log.Debug().Str("folder", folder).Str("image", src.Name()).Msg("Cover image registered")
	return true
}

// Resolve returns a fresh Ref for the folder's image, or Default if the
// folder has none. Each non-default Ref counts as a live handle until
// released.
func (p *Pool) Resolve(folder string) Ref {
	p.mu.Lock()
	defer p.mu.Unlock()
	src, ok := p.byFolder[folder]
	if !ok {
		return Default
	}
	p.live++
	return &imageRef{pool: p, uri: folder + "/" + src.Name()}
}

// Open returns the image content for a folder, or false if it has none.
// Used by the transport's artwork endpoint.
func (p *Pool) Open(folder string) (io.ReadSeekCloser, bool) {
	p.mu.Lock()
	src, ok := p.byFolder[folder]
	p.mu.Unlock()
	if !ok {
		return nil, false
	}
	rc, err := src.Open()
	if err != nil {
		log.Warn().Err(err).Str("folder", folder).Msg("Failed to open cover image")
		return nil, false
	}
	return rc, true
}

// Live reports the number of issued, unreleased refs.
func (p *Pool) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.live
}

func (p *Pool) release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.live--
}
