package overlay

// Handle closes the one frame it was issued for. It stays valid after
// the frame is gone: closing twice, or closing a frame something else
// already removed, is a silent no-op. The zero Handle is inert, so a
// Handle can be stored and closed unconditionally.
type Handle struct {
	id  FrameID
	reg *Registry
}

// ID returns the frame id this handle refers to, zero for the zero handle
func (h Handle) ID() FrameID {
	return h.id
}

// Close removes the frame from the stack wherever it currently sits.
// Frames above it are untouched.
func (h Handle) Close() {
	if h.reg == nil || h.id == 0 {
		return
	}
	h.reg.close(h.id)
}
