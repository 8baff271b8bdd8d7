// Package nav drives the single-focus navigation surface: an explicit screen
// stack and a single cursor over whichever view is active.
package nav

import "github.com/rs/zerolog/log"

// Direction tells a screen constructor whether it is being entered forward or
// re-entered by backing out of a deeper screen.
type Direction string

const (
	Forward Direction = "forward"
	Back    Direction = "back"
)

// ScreenFn builds and presents a screen. Screens are recomputed from live
// state on every invocation, so library changes are always reflected on
// re-entry.
type ScreenFn func(dir Direction, args ...string)

// Frame is one entry on the navigation stack.
type Frame struct {
	Fn   ScreenFn
	Args []string
}

// Stack is the screen history. The bottom frame is the root menu and is never
// popped; back navigation at the root is a no-op.
type Stack struct {
	frames []Frame
}

// NewStack creates a stack with the given root screen and invokes it.
func NewStack(root ScreenFn, args ...string) *Stack {
	s := &Stack{frames: []Frame{{Fn: root, Args: args}}}
	root(Forward, args...)
	return s
}

// Push appends a frame and invokes its screen in the forward direction.
func (s *Stack) Push(fn ScreenFn, args ...string) {
	s.frames = append(s.frames, Frame{Fn: fn, Args: args})
	fn(Forward, args...)
}

// Pop removes the top frame and re-invokes the new top's screen with the back
// direction so it re-renders without repeating forward-entry side effects.
// Ignored at depth 1.
func (s *Stack) Pop() {
	if len(s.frames) <= 1 {
		log.Debug().Msg("Back at root ignored")
		return
	}
	s.frames = s.frames[:len(s.frames)-1]
	top := s.frames[len(s.frames)-1]
	top.Fn(Back, top.Args...)
}

// Refresh re-invokes the top frame's screen with the back direction, so it
// re-derives its items from live state without a stack transition.
func (s *Stack) Refresh() {
	top := s.frames[len(s.frames)-1]
	top.Fn(Back, top.Args...)
}

// Depth returns the number of frames on the stack.
func (s *Stack) Depth() int { return len(s.frames) }
