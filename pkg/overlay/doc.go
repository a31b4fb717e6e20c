// Package overlay provides a layered dialog stack for bubbletea
// programs: an ordered registry of frames, per-frame close handles,
// and a host that routes input and composites the frames over the
// application's view.
//
// Frames are closed through the Handle captured at push time, so a
// frame can be removed from anywhere in the stack, in any order, and
// closing the same frame twice is harmless. The host gives keyboard
// and mouse input to the topmost frame only; escape closes it after
// the content has had a chance to run its own cancel path first.
//
// # Quick Start
//
//	reg := overlay.NewRegistry()
//	host := overlay.NewHost(reg)
//
//	// In Update():
//	handle, cmd := reg.Push(detailContent,
//	    overlay.WithClass("detail"),
//	    overlay.WithBackdropClose(),
//	)
//	_ = handle // keep it to close programmatically
//
//	// Route every incoming message through the host first:
//	if cmd, consumed := host.Update(msg); consumed {
//	    return m, cmd
//	}
//
//	// In View():
//	return host.View(baseView)
//
// # Options
//
//   - WithStyle(s FrameStyle) - override the frame sizing; zero fields
//     keep their defaults
//   - WithClass(c string) - tag the frame for styling and tests
//   - WithCloseGuard(fn func() bool) - veto escape and backdrop closes
//   - WithBackdropClose() - close when a click lands outside the frame
//
// Contents implement the Content interface, a bubbletea model with the
// frame's inner dimensions passed to View.
package overlay
