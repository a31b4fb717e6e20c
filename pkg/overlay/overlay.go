package overlay

import (
	tea "github.com/charmbracelet/bubbletea"
)

// FrameID identifies one pushed frame for the life of a registry.
// IDs start at 1 and are never reused.
type FrameID uint64

// Content is what a frame displays. It follows the bubbletea model
// shape, with the content area dimensions passed explicitly to View.
// The rendered string must fit the given size; the host does not crop.
type Content interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Content, tea.Cmd)
	View(width, height int) string
}

// FrameStyle controls how the host sizes a frame against the terminal.
// Zero fields fall back to the matching DefaultFrameStyle value, so a
// partial override only changes what it sets.
type FrameStyle struct {
	WidthPercent  float64
	HeightPercent float64
	MinWidth      int
	MaxWidth      int
	MinHeight     int
	MaxHeight     int
}

// DefaultFrameStyle is the dialog sizing used when a frame does not
// override it: 80% of the terminal width clamped to [50, 90] columns,
// 85% of the height clamped to [20, 35] rows.
func DefaultFrameStyle() FrameStyle {
	return FrameStyle{
		WidthPercent:  0.8,
		HeightPercent: 0.85,
		MinWidth:      50,
		MaxWidth:      90,
		MinHeight:     20,
		MaxHeight:     35,
	}
}

// Frame is one entry in the overlay stack
type Frame struct {
	id            FrameID
	content       Content
	style         FrameStyle
	class         string
	closeGuard    func() bool
	backdropClose bool
}

// ID returns the frame's unique id
func (f *Frame) ID() FrameID { return f.id }

// Content returns the frame's current content model
func (f *Frame) Content() Content { return f.content }

// Class returns the tag given at push time, if any
func (f *Frame) Class() string { return f.class }

// FrameOption customizes a pushed frame
type FrameOption func(*Frame)

// WithStyle overrides the default frame sizing. Zero fields of style
// keep their defaults.
func WithStyle(style FrameStyle) FrameOption {
	return func(f *Frame) { f.style = style }
}

// WithClass tags the frame so styling and tests can tell frames apart
func WithClass(class string) FrameOption {
	return func(f *Frame) { f.class = class }
}

// WithCloseGuard installs a predicate the host consults before closing
// the frame on escape or backdrop click. Returning false keeps the
// frame open. Handle.Close is not subject to the guard.
func WithCloseGuard(guard func() bool) FrameOption {
	return func(f *Frame) { f.closeGuard = guard }
}

// WithBackdropClose closes the frame when a click lands outside it.
// Off unless requested.
func WithBackdropClose() FrameOption {
	return func(f *Frame) { f.backdropClose = true }
}
