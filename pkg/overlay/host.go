package overlay

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Host routes terminal input to the stack and composites open frames
// over the application's base view. Keyboard and mouse input go to the
// topmost frame only; everything else is broadcast so buried frames
// keep receiving their async results.
type Host struct {
	reg    *Registry
	width  int
	height int
	bounds map[FrameID]frameBounds
}

// frameBounds is the screen rectangle a frame occupied at last render.
// Mouse routing works off these, so hits lag a render behind resizes.
type frameBounds struct {
	x, y, w, h int
}

// NewHost wires a host to a registry
func NewHost(reg *Registry) *Host {
	return &Host{reg: reg, bounds: make(map[FrameID]frameBounds)}
}

// Update feeds msg to the stack. consumed reports whether the message
// was taken by a frame and the caller should not act on it itself.
// Window sizes and non-input messages are never consumed.
func (h *Host) Update(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h.width, h.height = msg.Width, msg.Height
		return h.broadcast(msg), false
	case tea.KeyMsg:
		top := h.reg.Top()
		if top == nil {
			return nil, false
		}
		return h.topKey(top, msg), true
	case tea.MouseMsg:
		top := h.reg.Top()
		if top == nil {
			return nil, false
		}
		return h.topMouse(top, msg), true
	default:
		return h.broadcast(msg), false
	}
}

// topKey delivers a key to the topmost frame. Escape additionally
// closes the frame: the content sees the key first so it can run its
// own cancel path, then the host closes through the frame's handle,
// which is a no-op when the content already closed itself.
func (h *Host) topKey(top *Frame, msg tea.KeyMsg) tea.Cmd {
	escape := msg.String() == "esc"
	// The guard is read before delivery so the content's reaction to
	// this escape cannot retroactively approve it
	allow := !escape || h.allowClose(top)
	handle := Handle{id: top.id, reg: h.reg}

	next, cmd := top.content.Update(msg)
	top.content = next

	if escape && allow && h.reg.contains(top.id) {
		handle.Close()
	}
	return cmd
}

// topMouse routes a mouse event to the topmost frame, translating it
// into content-local coordinates. Clicks outside the frame close it
// when the frame opted in to backdrop close.
func (h *Host) topMouse(top *Frame, msg tea.MouseMsg) tea.Cmd {
	b, ok := h.bounds[top.id]
	if !ok {
		return nil
	}

	inside := msg.X >= b.x && msg.X < b.x+b.w && msg.Y >= b.y && msg.Y < b.y+b.h
	if !inside {
		press := msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft
		if press && top.backdropClose && h.allowClose(top) {
			Handle{id: top.id, reg: h.reg}.Close()
		}
		return nil
	}

	local := msg
	local.X = msg.X - (b.x + frameContentX)
	local.Y = msg.Y - (b.y + frameContentY)
	next, cmd := top.content.Update(local)
	top.content = next
	return cmd
}

// broadcast hands msg to every open frame, bottom to top
func (h *Host) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for _, f := range h.reg.Frames() {
		next, cmd := f.content.Update(msg)
		f.content = next
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (h *Host) allowClose(f *Frame) bool {
	return f.closeGuard == nil || f.closeGuard()
}

// View composites every open frame over base, bottom to top, each one
// centered. The base is returned untouched when the stack is empty.
func (h *Host) View(base string) string {
	frames := h.reg.Frames()
	if len(frames) == 0 {
		return base
	}
	if h.width <= 0 || h.height <= 0 {
		return base
	}

	h.bounds = make(map[FrameID]frameBounds, len(frames))
	canvas := fitCanvas(base, h.width, h.height)
	for _, f := range frames {
		fw, fh := h.frameDims(f)
		cw, ch := fw-frameChromeX, fh-frameChromeY
		if cw < 1 || ch < 1 {
			continue
		}

		content := f.content.View(cw, ch)
		box := frameBox.Width(fw - 2).Height(fh - 2).Render(content)

		x := (h.width - fw) / 2
		y := (h.height - fh) / 2
		h.bounds[f.id] = frameBounds{x: x, y: y, w: fw, h: fh}
		canvas = composeAt(canvas, box, x, y, h.width, h.height)
	}
	return canvas
}

// frameDims resolves a frame's outer size against the terminal,
// filling zero style fields from the defaults.
func (h *Host) frameDims(f *Frame) (int, int) {
	s := f.style
	d := DefaultFrameStyle()
	if s.WidthPercent <= 0 {
		s.WidthPercent = d.WidthPercent
	}
	if s.HeightPercent <= 0 {
		s.HeightPercent = d.HeightPercent
	}
	if s.MinWidth <= 0 {
		s.MinWidth = d.MinWidth
	}
	if s.MaxWidth <= 0 {
		s.MaxWidth = d.MaxWidth
	}
	if s.MinHeight <= 0 {
		s.MinHeight = d.MinHeight
	}
	if s.MaxHeight <= 0 {
		s.MaxHeight = d.MaxHeight
	}

	fw := clampInt(int(float64(h.width)*s.WidthPercent), s.MinWidth, s.MaxWidth)
	if fw > h.width {
		fw = h.width
	}
	fh := clampInt(int(float64(h.height)*s.HeightPercent), s.MinHeight, s.MaxHeight)
	if fh > h.height {
		fh = h.height
	}
	return fw, fh
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
