package nav

// Kind discriminates the active view variants. Exactly one view is active at
// a time; its kind decides the step/confirm semantics instead of sniffing
// which presentation container happens to exist.
type Kind string

const (
	KindMenu       Kind = "menu"
	KindCarousel   Kind = "carousel"
	KindArtistList Kind = "artists"
	KindSongList   Kind = "songs"
)

// View is whatever list the cursor currently ranges over.
type View interface {
	Kind() Kind
	Len() int
	// Activate confirms the item at the given index.
	Activate(index int)
}

// CursorListener observes cursor movement so the presentation layer can move
// the selection marker and, for carousels, re-lay out items around the new
// center.
type CursorListener interface {
	CursorMoved(v View, old, cur int)
}

// Cursor maintains the single menu index over the active view. Switching
// views resets it to 0; playback may overwrite it to track the playing item.
type Cursor struct {
	view     View
	index    int
	listener CursorListener
}

// NewCursor creates a cursor with no active view.
func NewCursor(listener CursorListener) *Cursor {
	return &Cursor{listener: listener}
}

// SetView makes v the active view and resets the index to 0.
func (c *Cursor) SetView(v View) {
	c.view = v
	c.index = 0
}

// View returns the active view, or nil.
func (c *Cursor) View() View { return c.view }

// Index returns the current cursor position.
func (c *Cursor) Index() int { return c.index }

// Set overwrites the cursor position, clamped to the view. Used when playback
// needs the list highlight to follow the playing track.
func (c *Cursor) Set(i int) {
	if c.view == nil || c.view.Len() == 0 {
		c.index = 0
		return
	}
	if i < 0 || i >= c.view.Len() {
		return
	}
	old := c.index
	c.index = i
	if c.listener != nil {
		c.listener.CursorMoved(c.view, old, c.index)
	}
}

// Step advances the cursor by direction (+1 or -1) with wraparound. A step
// over an empty view is a no-op.
func (c *Cursor) Step(direction int) {
	if c.view == nil {
		return
	}
	n := c.view.Len()
	if n == 0 {
		return
	}
	old := c.index
	c.index += direction
	if c.index < 0 {
		c.index = n - 1
	}
	if c.index >= n {
		c.index = 0
	}
	if c.listener != nil {
		c.listener.CursorMoved(c.view, old, c.index)
	}
}

// Confirm activates the item under the cursor. A confirm against an empty
// view is a no-op.
func (c *Cursor) Confirm() {
	if c.view == nil || c.view.Len() == 0 {
		return
	}
	c.view.Activate(c.index)
}
