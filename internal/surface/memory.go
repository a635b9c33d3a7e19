package surface

import "sync"

// Cell is one drawn character and its style. A zero rune marks the
// continuation cell behind a wide character.
type Cell struct {
	Rune  rune
	Style Style
}

// Memory is an in-process Screen for tests. Drawing must happen from a
// single goroutine, the event queue is safe for concurrent use.
type Memory struct {
	width, height int
	cells         [][]Cell
	events        chan Event
	done          chan struct{}
	once          sync.Once
}

// NewMemory creates a memory screen with the given dimensions, ready to
// draw on immediately.
func NewMemory(width, height int) *Memory {
	m := &Memory{
		width:  width,
		height: height,
		events: make(chan Event, 100),
		done:   make(chan struct{}),
	}
	m.alloc()
	return m
}

func (m *Memory) alloc() {
	m.cells = make([][]Cell, m.height)
	for y := range m.cells {
		m.cells[y] = make([]Cell, m.width)
		for x := range m.cells[y] {
			m.cells[y][x] = Cell{Rune: ' ', Style: DefaultStyle()}
		}
	}
}

// Init clears the screen.
func (m *Memory) Init() error {
	m.alloc()
	return nil
}

// Fini stops the event stream. Queued events are still delivered, after
// that PollEvent returns EventNone.
func (m *Memory) Fini() {
	m.once.Do(func() { close(m.done) })
}

// Size returns the screen dimensions.
func (m *Memory) Size() (int, int) {
	return m.width, m.height
}

// Clear resets every cell.
func (m *Memory) Clear() {
	m.alloc()
}

// FillRect fills a rectangle with spaces in the given style, clipped to
// the screen.
func (m *Memory) FillRect(r Rect, st Style) {
	r = r.Intersect(Rect{W: m.width, H: m.height})
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			m.cells[y][x] = Cell{Rune: ' ', Style: st}
		}
	}
}

// DrawLabel writes text at (x, y), clipped to the screen. Combining runes
// are dropped, the primary rune of each cluster is kept.
func (m *Memory) DrawLabel(x, y int, text string, st Style) {
	if y < 0 || y >= m.height {
		return
	}
	eachCluster(text, func(primary rune, _ []rune, width int) bool {
		if x >= m.width {
			return false
		}
		if x >= 0 && x+width <= m.width {
			m.cells[y][x] = Cell{Rune: primary, Style: st}
			for i := 1; i < width; i++ {
				m.cells[y][x+i] = Cell{Rune: 0, Style: st}
			}
		}
		x += width
		return true
	})
}

// Flush is a no-op, the grid is always current.
func (m *Memory) Flush() {}

// PollEvent returns the next queued event, blocking until one arrives or
// the screen is finalized.
func (m *Memory) PollEvent() Event {
	select {
	case ev := <-m.events:
		return ev
	default:
	}
	select {
	case ev := <-m.events:
		return ev
	case <-m.done:
		return Event{Type: EventNone}
	}
}

// PostEvent queues a synthetic event, dropping it if the queue is full.
func (m *Memory) PostEvent(ev Event) {
	select {
	case m.events <- ev:
	default:
	}
}

// Resize changes the screen dimensions, clears the grid, and queues a
// resize event.
func (m *Memory) Resize(width, height int) {
	m.width = width
	m.height = height
	m.alloc()
	m.PostEvent(Event{Type: EventResize, Width: width, Height: height})
}

// CellAt returns the cell at (x, y), or an empty cell outside the screen.
func (m *Memory) CellAt(x, y int) Cell {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return Cell{Rune: ' ', Style: DefaultStyle()}
	}
	return m.cells[y][x]
}

// Line returns the text of one row with continuation cells skipped and
// trailing spaces trimmed.
func (m *Memory) Line(y int) string {
	if y < 0 || y >= m.height {
		return ""
	}
	runes := make([]rune, 0, m.width)
	for x := 0; x < m.width; x++ {
		if r := m.cells[y][x].Rune; r != 0 {
			runes = append(runes, r)
		}
	}
	end := len(runes)
	for end > 0 && runes[end-1] == ' ' {
		end--
	}
	return string(runes[:end])
}
