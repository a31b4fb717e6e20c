package picker

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ovsov/mphub/pkg/overlay"
)

// frameStyle keeps pickers narrower than the default frame.
var frameStyle = overlay.FrameStyle{
	WidthPercent:  0.6,
	HeightPercent: 0.7,
	MinWidth:      44,
	MaxWidth:      80,
	MinHeight:     14,
	MaxHeight:     24,
}

// frameContent adapts a Model to the overlay frame contract.
type frameContent[T Item] struct {
	m *Model[T]
}

func (c frameContent[T]) Init() tea.Cmd {
	return c.m.Init()
}

func (c frameContent[T]) Update(msg tea.Msg) (overlay.Content, tea.Cmd) {
	return c, c.m.Update(msg)
}

func (c frameContent[T]) View(width, height int) string {
	return c.m.View(width, height)
}

// Open pushes a picker into the frame stack and takes care of closing
// its frame again: whichever way the picker finishes, the frame goes
// with it. Callers only supply their own callbacks.
func Open[T Item](reg *overlay.Registry, title string, source Source[T], onConfirm func(T) tea.Cmd, onCancel func() tea.Cmd, opts ...Option[T]) (overlay.Handle, tea.Cmd) {
	var h overlay.Handle
	m := New(title, source,
		func(item T) tea.Cmd {
			var cmd tea.Cmd
			if onConfirm != nil {
				cmd = onConfirm(item)
			}
			h.Close()
			return cmd
		},
		func() tea.Cmd {
			var cmd tea.Cmd
			if onCancel != nil {
				cmd = onCancel()
			}
			h.Close()
			return cmd
		},
		opts...)

	var cmd tea.Cmd
	h, cmd = reg.Push(frameContent[T]{m: m},
		overlay.WithClass("picker"),
		overlay.WithStyle(frameStyle),
	)
	return h, cmd
}
