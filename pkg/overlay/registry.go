package overlay

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Registry owns the ordered stack of open frames. It is not safe for
// concurrent use; call it from the program's update loop only.
type Registry struct {
	frames []*Frame
	nextID FrameID
}

// NewRegistry returns an empty stack
func NewRegistry() *Registry {
	return &Registry{nextID: 1}
}

// Push appends content as the new topmost frame. It returns a handle
// that closes exactly this frame, plus the content's init command,
// which the caller must hand to the runtime for async work to start.
func (r *Registry) Push(content Content, opts ...FrameOption) (Handle, tea.Cmd) {
	f := &Frame{
		id:      r.nextID,
		content: content,
		style:   DefaultFrameStyle(),
	}
	r.nextID++
	for _, opt := range opts {
		opt(f)
	}
	r.frames = append(r.frames, f)
	return Handle{id: f.id, reg: r}, content.Init()
}

// close removes the frame with the given id wherever it sits in the
// stack. Reports whether a frame was removed.
func (r *Registry) close(id FrameID) bool {
	for i, f := range r.frames {
		if f.id == id {
			r.frames = append(r.frames[:i], r.frames[i+1:]...)
			return true
		}
	}
	return false
}

// contains reports whether the frame with the given id is still open
func (r *Registry) contains(id FrameID) bool {
	for _, f := range r.frames {
		if f.id == id {
			return true
		}
	}
	return false
}

// CloseAll empties the stack
func (r *Registry) CloseAll() {
	r.frames = nil
}

// Len returns the number of open frames
func (r *Registry) Len() int {
	return len(r.frames)
}

// Frames is the read model of the stack: the open frames from bottom
// to top. The slice is a copy; the frames themselves are shared.
func (r *Registry) Frames() []*Frame {
	out := make([]*Frame, len(r.frames))
	copy(out, r.frames)
	return out
}

// Top returns the topmost frame, or nil when the stack is empty
func (r *Registry) Top() *Frame {
	if len(r.frames) == 0 {
		return nil
	}
	return r.frames[len(r.frames)-1]
}

// TopHandle returns a handle to the topmost frame, or the zero handle
// when the stack is empty.
func (r *Registry) TopHandle() Handle {
	if f := r.Top(); f != nil {
		return Handle{id: f.id, reg: r}
	}
	return Handle{}
}
