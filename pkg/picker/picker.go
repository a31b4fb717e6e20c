package picker

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Source loads the rows for a picker. It runs on its own goroutine, so
// it may block; the result comes back to the widget as a message.
type Source[T Item] func() ([]T, error)

type phase int

const (
	phaseLoading phase = iota
	phaseReady
	phaseError
)

const doubleClickWindow = 450 * time.Millisecond

// now is replaceable in tests
var now = time.Now

// itemsMsg carries one fetch result back to the model that issued it.
// model and seq identify the issuing fetch; anything else is stale and
// gets dropped on arrival.
type itemsMsg[T Item] struct {
	model *Model[T]
	seq   int
	items []T
	err   string
}

// Model is a list picker over any Item type. It is used behind a
// pointer; Update mutates in place.
type Model[T Item] struct {
	title     string
	source    Source[T]
	onConfirm func(T) tea.Cmd
	onCancel  func() tea.Cmd

	phase  phase
	errMsg string
	items  []T

	cursor int
	offset int

	seq  int
	done bool

	preselect     string
	scrolledOnce  bool
	pendingScroll bool

	rowRender func(item T, width int, selected bool) string
	codeW     int

	lastClickRow int
	lastClickAt  time.Time

	lay viewLayout
}

// Option tweaks a Model at construction time.
type Option[T Item] func(*Model[T])

// WithPreselect marks the row with the given identity as selected when
// a fetch completes. An identity that matches nothing leaves the
// picker with no selection.
func WithPreselect[T Item](id string) Option[T] {
	return func(m *Model[T]) { m.preselect = id }
}

// WithRowRender replaces the default two column row layout. The
// function receives the usable row width and whether the row is the
// current selection.
func WithRowRender[T Item](fn func(item T, width int, selected bool) string) Option[T] {
	return func(m *Model[T]) { m.rowRender = fn }
}

// New builds a picker. onConfirm receives the chosen row; onCancel
// fires when the picker is dismissed. At most one of the two fires,
// and at most once. A callback may return a command to hand work back
// to the program.
func New[T Item](title string, source Source[T], onConfirm func(T) tea.Cmd, onCancel func() tea.Cmd, opts ...Option[T]) *Model[T] {
	m := &Model[T]{
		title:        title,
		source:       source,
		onConfirm:    onConfirm,
		onCancel:     onCancel,
		cursor:       -1,
		lastClickRow: -1,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Model[T]) Init() tea.Cmd {
	return m.fetch()
}

// fetch starts a load and bumps the sequence counter, so any result
// still in flight from an earlier fetch is ignored when it lands.
func (m *Model[T]) fetch() tea.Cmd {
	m.phase = phaseLoading
	m.errMsg = ""
	m.seq++
	seq := m.seq
	src := m.source
	return func() tea.Msg {
		items, err := src()
		if err != nil {
			return itemsMsg[T]{model: m, seq: seq, err: err.Error()}
		}
		return itemsMsg[T]{model: m, seq: seq, items: items}
	}
}

func (m *Model[T]) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case itemsMsg[T]:
		m.applyItems(msg)
	case tea.KeyMsg:
		return m.key(msg)
	case tea.MouseMsg:
		return m.mouse(msg)
	}
	return nil
}

func (m *Model[T]) applyItems(msg itemsMsg[T]) {
	if msg.model != m || msg.seq != m.seq || m.done {
		return
	}
	if msg.err != "" {
		m.phase = phaseError
		m.errMsg = msg.err
		return
	}
	m.phase = phaseReady
	m.items = msg.items
	m.offset = 0
	m.cursor = -1
	m.codeW = codeWidth(msg.items)
	if m.preselect == "" {
		return
	}
	for i, item := range m.items {
		if item.ID() != m.preselect {
			continue
		}
		m.cursor = i
		if !m.scrolledOnce {
			m.scrolledOnce = true
			m.pendingScroll = true
		}
		break
	}
}

func (m *Model[T]) key(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		return m.cancel()
	case "enter":
		return m.confirm()
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "home":
		m.cursorTo(0)
	case "end":
		m.cursorTo(len(m.items) - 1)
	case "r":
		if m.phase == phaseError {
			return m.fetch()
		}
	}
	return nil
}

func (m *Model[T]) mouse(msg tea.MouseMsg) tea.Cmd {
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.scrollBy(-1)
	case msg.Button == tea.MouseButtonWheelDown:
		m.scrollBy(1)
	case msg.Action == tea.MouseActionMotion:
		if row := m.rowAt(msg.Y); row >= 0 {
			m.cursor = row
		}
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		return m.click(msg)
	}
	return nil
}

func (m *Model[T]) click(msg tea.MouseMsg) tea.Cmd {
	if msg.Y == m.lay.footerY {
		for _, zone := range m.lay.zones {
			if msg.X >= zone.x && msg.X < zone.x+zone.w {
				return m.press(zone.action)
			}
		}
		return nil
	}
	row := m.rowAt(msg.Y)
	if row < 0 {
		return nil
	}
	m.cursor = row
	if row == m.lastClickRow && now().Sub(m.lastClickAt) <= doubleClickWindow {
		m.lastClickRow = -1
		return m.confirm()
	}
	m.lastClickRow = row
	m.lastClickAt = now()
	return nil
}

func (m *Model[T]) press(action buttonAction) tea.Cmd {
	switch action {
	case actionSelect:
		return m.confirm()
	case actionCancel:
		return m.cancel()
	case actionRetry:
		if m.phase == phaseError {
			return m.fetch()
		}
	}
	return nil
}

// moveCursor clamps at both ends rather than wrapping. With no
// selection yet, any arrow lands on the first row.
func (m *Model[T]) moveCursor(delta int) {
	if m.phase != phaseReady || len(m.items) == 0 {
		return
	}
	if m.cursor < 0 {
		m.cursorTo(0)
		return
	}
	m.cursorTo(m.cursor + delta)
}

func (m *Model[T]) cursorTo(i int) {
	if m.phase != phaseReady || len(m.items) == 0 {
		return
	}
	if i < 0 {
		i = 0
	}
	if i >= len(m.items) {
		i = len(m.items) - 1
	}
	m.cursor = i
	m.ensureVisible(i)
}

func (m *Model[T]) ensureVisible(i int) {
	if m.lay.maxVisible <= 0 {
		return
	}
	if i < m.offset {
		m.offset = i
	}
	if i >= m.offset+m.lay.maxVisible {
		m.offset = i - m.lay.maxVisible + 1
	}
}

func (m *Model[T]) scrollBy(delta int) {
	if m.phase != phaseReady || m.lay.maxVisible <= 0 {
		return
	}
	limit := len(m.items) - m.lay.maxVisible
	if limit < 0 {
		limit = 0
	}
	m.offset += delta
	if m.offset < 0 {
		m.offset = 0
	}
	if m.offset > limit {
		m.offset = limit
	}
}

// rowAt maps a content-local y to an item index. Geometry tracks the
// last render, so hits lag a render behind layout changes.
func (m *Model[T]) rowAt(y int) int {
	if m.phase != phaseReady || m.lay.maxVisible <= 0 {
		return -1
	}
	if y < m.lay.listTop || y >= m.lay.listTop+m.lay.maxVisible {
		return -1
	}
	row := y - m.lay.listTop + m.offset
	if row >= len(m.items) {
		return -1
	}
	return row
}

// confirm fires onConfirm with the selected row. It does nothing
// without a selection, and nothing after the picker has finished.
func (m *Model[T]) confirm() tea.Cmd {
	if m.done || m.phase != phaseReady || m.cursor < 0 || m.cursor >= len(m.items) {
		return nil
	}
	m.done = true
	if m.onConfirm != nil {
		return m.onConfirm(m.items[m.cursor])
	}
	return nil
}

// cancel fires onCancel. It works in every phase, once.
func (m *Model[T]) cancel() tea.Cmd {
	if m.done {
		return nil
	}
	m.done = true
	if m.onCancel != nil {
		return m.onCancel()
	}
	return nil
}
