package gesture

import (
	"sort"
	"sync"

	"github.com/PokeMichele/lumo/internal/history"
	"github.com/PokeMichele/lumo/internal/log"
	"github.com/PokeMichele/lumo/internal/timeline"
	"github.com/PokeMichele/lumo/internal/timeline/snap"
)

// State identifies the controller's current gesture.
type State uint8

const (
	// StateIdle means no gesture is in progress.
	StateIdle State = iota
	// StateDragging means one or more items follow the pointer.
	StateDragging
	// StateResizing means an item's trailing edge follows the pointer.
	StateResizing
	// StateRectSelecting means a selection rectangle follows the pointer.
	StateRectSelecting
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateDragging:
		return "dragging"
	case StateResizing:
		return "resizing"
	case StateRectSelecting:
		return "rect-selecting"
	default:
		return "idle"
	}
}

// Modifier represents keyboard modifiers held during a pointer event.
type Modifier uint8

const (
	// ModNone indicates no modifiers.
	ModNone Modifier = 0

	// ModShift indicates the Shift key.
	ModShift Modifier = 1 << iota

	// ModCtrl indicates the Control key (Cmd on macOS).
	ModCtrl
)

// Has returns true if m contains the specified modifier.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// additive reports whether the modifier extends the selection instead of
// replacing it.
func (m Modifier) additive() bool {
	return m != ModNone
}

// Ghost is the visual-only position of one gesture member. Ghosts are
// rendered by the view during a drag or resize, the committed model stays
// untouched until release.
type Ghost struct {
	// ItemID identifies the member.
	ItemID string

	// Start and Duration are the proposed interval in seconds.
	Start    float64
	Duration float64

	// Track is the proposed track order.
	Track int

	// Snapped reports whether an edge aligned to a snap point.
	Snapped bool

	// SnapPoint is the time the edge aligned to, valid when Snapped.
	SnapPoint float64

	// Legal is false when the member would revert on release, the view
	// styles these positions differently.
	Legal bool
}

// Controller runs the interaction state machine over a timeline model. It
// owns the selection set and the clipboard. All methods are safe for
// concurrent use, though events normally arrive from a single UI loop.
type Controller struct {
	mu       sync.Mutex
	model    *timeline.Model
	resolver *snap.Resolver
	history  *history.History
	layout   Layout
	logger   *log.Logger

	selection *Selection
	clipboard []clipEntry

	state State

	// Drag and resize working state, valid while a gesture runs.
	before    *timeline.Snapshot
	members   map[string]timeline.Item
	memberIDs map[string]bool
	primary   timeline.Item
	grabDelta float64
	ghosts    map[string]Ghost

	// Rectangle selection working state.
	anchor   Point
	corner   Point
	rectBase map[string]struct{}
}

// ControllerOption is a functional option for configuring a Controller.
type ControllerOption func(*Controller)

// WithLayout sets the pixel geometry used to interpret pointer events.
func WithLayout(l Layout) ControllerOption {
	return func(c *Controller) {
		c.layout = l
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *log.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewController creates a gesture controller over the given model. The
// resolver supplies snap and legality answers, committed edits are pushed
// to hist.
func NewController(model *timeline.Model, resolver *snap.Resolver, hist *history.History, opts ...ControllerOption) *Controller {
	c := &Controller{
		model:     model,
		resolver:  resolver,
		history:   hist,
		layout:    DefaultLayout(),
		logger:    log.Discard,
		selection: NewSelection(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current gesture state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Layout returns the current pixel geometry.
func (c *Controller) Layout() Layout {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.layout
}

// SetLayout updates the pixel geometry and keeps the resolver's snap
// window at a constant screen distance across zoom changes.
func (c *Controller) SetLayout(l Layout) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.layout = l
	c.resolver.SetPixelsPerSecond(l.PixelsPerSecond)
}

// Selection returns the selected item ids, sorted.
func (c *Controller) Selection() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection.IDs()
}

// Selected reports whether the item is selected.
func (c *Controller) Selected(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection.Has(id)
}

// Select adds the item to the selection, replacing the previous selection
// unless additive is set.
func (c *Controller) Select(id string, additive bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !additive {
		c.selection.Clear()
	}
	c.selection.Add(id)
}

// ClearSelection empties the selection.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection.Clear()
}

// Ghosts returns the proposed member positions for rendering, sorted by
// item id. Empty outside drag and resize gestures.
func (c *Controller) Ghosts() []Ghost {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Ghost, 0, len(c.ghosts))
	for _, g := range c.ghosts {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out
}

// Band returns the active selection rectangle while rect-selecting.
func (c *Controller) Band() (Rect, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRectSelecting {
		return Rect{}, false
	}
	return RectBetween(c.anchor, c.corner), true
}

// PointerDown begins a gesture at the given pixel position. On an item it
// starts a drag, on a resizable item's trailing edge a resize, and on
// empty timeline area a rectangle selection.
func (c *Controller) PointerDown(x, y int, mods Modifier) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle {
		return
	}
	cur := c.model.Snapshot()
	it, ok := c.layout.HitTest(cur, x, y)
	if !ok {
		c.beginRectSelect(cur, x, y, mods)
		return
	}
	if it.SourceKind().Resizable() && c.layout.OnTrailingEdge(it, x) {
		c.beginResize(cur, it)
		return
	}
	c.beginDrag(cur, it, x, mods)
}

// PointerMove updates the gesture in progress. Drags and resizes update
// visual-only ghosts, rectangle selection updates membership live.
func (c *Controller) PointerMove(x, y int, _ Modifier) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateDragging:
		c.updateDrag(x, y)
	case StateResizing:
		c.updateResize(x)
	case StateRectSelecting:
		c.updateRect(x, y)
	}
}

// PointerUp ends the gesture. Drags and resizes validate every member on
// its own, commit the legal subset, revert the rest, and push the result
// to history only when it differs from the pre-gesture state. Rectangle
// selection just finalizes membership.
func (c *Controller) PointerUp(x, y int, _ Modifier) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateDragging:
		c.updateDrag(x, y)
		c.endDrag()
	case StateResizing:
		c.updateResize(x)
		c.endResize()
	case StateRectSelecting:
		c.updateRect(x, y)
		c.reset()
	}
}

// Cancel abandons the gesture in progress without committing anything.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		c.reset()
	}
}

func (c *Controller) beginDrag(cur *timeline.Snapshot, it timeline.Item, x int, mods Modifier) {
	if !c.selection.Has(it.ID) {
		if !mods.additive() {
			c.selection.Clear()
		}
		c.selection.Add(it.ID)
	}

	c.state = StateDragging
	c.before = cur
	c.members = make(map[string]timeline.Item)
	c.memberIDs = make(map[string]bool)
	c.ghosts = make(map[string]Ghost)
	for _, id := range c.selection.IDs() {
		m, ok := cur.Item(id)
		if !ok {
			// Undo or delete can leave stale ids in the selection.
			c.selection.Remove(id)
			continue
		}
		c.members[id] = m
		c.memberIDs[id] = true
		c.ghosts[id] = Ghost{ItemID: id, Start: m.Start, Duration: m.Duration, Track: m.Track, Legal: true}
	}
	c.primary = it
	c.grabDelta = c.layout.TimeAt(x) - it.Start
}

func (c *Controller) beginResize(cur *timeline.Snapshot, it timeline.Item) {
	if !c.selection.Has(it.ID) {
		c.selection.Clear()
		c.selection.Add(it.ID)
	}

	c.state = StateResizing
	c.before = cur
	c.primary = it
	c.ghosts = map[string]Ghost{
		it.ID: {ItemID: it.ID, Start: it.Start, Duration: it.Duration, Track: it.Track, Legal: true},
	}
}

func (c *Controller) beginRectSelect(cur *timeline.Snapshot, x, y int, mods Modifier) {
	c.state = StateRectSelecting
	c.before = cur
	c.anchor = Point{X: x, Y: y}
	c.corner = c.anchor
	c.rectBase = make(map[string]struct{})
	if mods.additive() {
		for _, id := range c.selection.IDs() {
			c.rectBase[id] = struct{}{}
		}
	} else {
		c.selection.Clear()
	}
}

// updateDrag resolves the primary against the pointer and propagates one
// delta to every member. Members follow the primary, they do not snap on
// their own.
func (c *Controller) updateDrag(x, y int) {
	rawStart := c.layout.TimeAt(x) - c.grabDelta
	track := c.layout.TrackAt(y)
	if track < 0 {
		track = 0
	}
	if last := c.before.TrackCount() - 1; track > last {
		track = last
	}

	move := c.resolver.ResolveMove(c.before, c.primary, rawStart, track, c.memberIDs)
	deltaT := move.Start - c.primary.Start
	deltaTrack := move.Track - c.primary.Track

	for id, m := range c.members {
		g := Ghost{
			ItemID:   id,
			Start:    m.Start + deltaT,
			Duration: m.Duration,
			Track:    m.Track + deltaTrack,
		}
		if id == c.primary.ID {
			g.Snapped, g.SnapPoint = move.Snapped, move.SnapPoint
			g.Legal = move.Legal
		} else {
			g.Legal = c.resolver.Legal(c.before, m, g.Start, g.Track, c.memberIDs)
		}
		if g.Legal && !c.kindFits(m, g.Track) {
			g.Legal = false
		}
		c.ghosts[id] = g
	}
}

func (c *Controller) updateResize(x int) {
	proposed := c.layout.TimeAt(x) - c.primary.Start
	res := c.resolver.ResolveResize(c.before, c.primary, proposed)

	g := c.ghosts[c.primary.ID]
	g.Duration = res.Duration
	g.Snapped, g.SnapPoint = res.Snapped, res.SnapPoint
	g.Legal = true
	c.ghosts[c.primary.ID] = g
}

func (c *Controller) updateRect(x, y int) {
	c.corner = Point{X: x, Y: y}
	band := RectBetween(c.anchor, c.corner)

	next := make(map[string]struct{}, len(c.rectBase))
	for id := range c.rectBase {
		next[id] = struct{}{}
	}
	for _, it := range c.before.Items() {
		if !band.Intersects(c.layout.ItemRect(it)) {
			continue
		}
		if _, ok := next[it.ID]; ok {
			delete(next, it.ID)
		} else {
			next[it.ID] = struct{}{}
		}
	}
	c.selection.replace(next)
}

// kindFits reports whether the item's source kind may live on the track.
func (c *Controller) kindFits(m timeline.Item, track int) bool {
	trk, ok := c.before.Track(track)
	return ok && m.SourceKind().CompatibleWith(trk.Kind)
}

func (c *Controller) endDrag() {
	defer c.reset()

	c.demoteCollisions()

	items := c.before.Items()
	changed := false
	for i := range items {
		g, ok := c.ghosts[items[i].ID]
		if !ok || !g.Legal {
			continue
		}
		if g.Start != items[i].Start || g.Track != items[i].Track {
			items[i].Start = g.Start
			items[i].Track = g.Track
			changed = true
		}
	}
	if !changed {
		return
	}
	if err := c.model.Commit(items, nil); err != nil {
		c.logger.Error("drag commit failed, reverting gesture", "error", err)
		c.restoreBefore()
		return
	}
	c.history.Push(c.model.Snapshot(), "drag")
}

// demoteCollisions flags moved members that would land on the original
// position of a member that is reverting. Reverting one member can strand
// another, so the check repeats until stable.
func (c *Controller) demoteCollisions() {
	for {
		again := false
		for id, g := range c.ghosts {
			if !g.Legal {
				continue
			}
			moved := c.members[id]
			moved.Start = g.Start
			moved.Track = g.Track
			for otherID, og := range c.ghosts {
				if otherID == id || og.Legal {
					continue
				}
				still := c.members[otherID]
				if moved.Track == still.Track && moved.OverlapsBeyond(still, 0) {
					g.Legal = false
					c.ghosts[id] = g
					again = true
					break
				}
			}
		}
		if !again {
			return
		}
	}
}

func (c *Controller) endResize() {
	defer c.reset()

	g := c.ghosts[c.primary.ID]
	if g.Duration == c.primary.Duration {
		return
	}

	items := c.before.Items()
	for i := range items {
		if items[i].ID == c.primary.ID {
			items[i].Duration = g.Duration
			break
		}
	}
	if err := c.model.Commit(items, nil); err != nil {
		c.logger.Error("resize commit failed, reverting gesture", "error", err)
		c.restoreBefore()
		return
	}
	c.history.Push(c.model.Snapshot(), "resize")
}

// reset clears gesture working state and returns to Idle.
func (c *Controller) reset() {
	c.state = StateIdle
	c.before = nil
	c.members = nil
	c.memberIDs = nil
	c.primary = timeline.Item{}
	c.grabDelta = 0
	c.ghosts = nil
	c.rectBase = nil
}

func (c *Controller) restoreBefore() {
	if err := c.model.Restore(c.before); err != nil {
		c.logger.Error("gesture revert failed", "error", err)
	}
}
