package editor

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/PokeMichele/lumo/internal/compositor"
	"github.com/PokeMichele/lumo/internal/gesture"
	"github.com/PokeMichele/lumo/internal/history"
	"github.com/PokeMichele/lumo/internal/log"
	"github.com/PokeMichele/lumo/internal/playback"
	"github.com/PokeMichele/lumo/internal/timeline"
	"github.com/PokeMichele/lumo/internal/timeline/snap"
)

// DefaultMaxUndoEntries is the default undo history depth.
const DefaultMaxUndoEntries = 1000

// Common errors for editor operations.
var (
	// ErrNoPlacement means no legal position exists for an insertion
	// within the resolver's search radius.
	ErrNoPlacement = errors.New("no legal position for item")

	// ErrNilSource means an operation was given a nil media source.
	ErrNilSource = errors.New("nil media source")
)

// Editor is the facade over the editing core. It combines the timeline
// model, gestures, history, playback, and compositing into a unified,
// thread-safe API.
type Editor struct {
	mu sync.Mutex

	// Core components
	model    *timeline.Model
	resolver *snap.Resolver
	history  *history.History
	gestures *gesture.Controller
	clock    *playback.Clock
	engine   *playback.Engine
	composer *compositor.Composer
	throttle *compositor.Throttle
	logger   *log.Logger

	// Configuration
	maxUndoEntries int
	epsilon        float64
	aspect         compositor.Aspect
	maxHz          float64
	opener         playback.Opener
	layout         gesture.Layout
	snapOpts       []snap.Option
	syncTolerance  float64

	viewport  compositor.Viewport
	lastFrame *compositor.Frame
}

// Option is a functional option for configuring an Editor.
type Option func(*Editor)

// WithLogger sets the diagnostic logger shared by all components.
func WithLogger(logger *log.Logger) Option {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithOpener sets the opener used to create media handles. Without one
// the editor runs headless and every layer renders as a placeholder.
func WithOpener(opener playback.Opener) Option {
	return func(e *Editor) {
		e.opener = opener
	}
}

// WithAspect sets the preview aspect ratio.
func WithAspect(a compositor.Aspect) Option {
	return func(e *Editor) {
		e.aspect = a
	}
}

// WithEpsilon sets the model's placement jitter tolerance in seconds.
func WithEpsilon(eps float64) Option {
	return func(e *Editor) {
		if eps > 0 {
			e.epsilon = eps
		}
	}
}

// WithMaxUndoEntries sets the undo history depth.
func WithMaxUndoEntries(n int) Option {
	return func(e *Editor) {
		if n > 0 {
			e.maxUndoEntries = n
		}
	}
}

// WithLayout sets the timeline view geometry for pointer handling.
func WithLayout(l gesture.Layout) Option {
	return func(e *Editor) {
		e.layout = l
	}
}

// WithMaxFrameRate caps how often Tick composes a fresh frame.
func WithMaxFrameRate(hz float64) Option {
	return func(e *Editor) {
		if hz > 0 {
			e.maxHz = hz
		}
	}
}

// WithSnapOptions tunes the snap resolver, overriding its defaults.
func WithSnapOptions(opts ...snap.Option) Option {
	return func(e *Editor) {
		e.snapOpts = append(e.snapOpts, opts...)
	}
}

// WithSyncTolerance sets how far a media handle may drift from the clock
// before it is reseeked.
func WithSyncTolerance(tol float64) Option {
	return func(e *Editor) {
		if tol > 0 {
			e.syncTolerance = tol
		}
	}
}

// New creates an Editor with the given options.
func New(opts ...Option) *Editor {
	e := &Editor{
		maxUndoEntries: DefaultMaxUndoEntries,
		epsilon:        timeline.DefaultEpsilon,
		aspect:         compositor.Aspect16x9,
		maxHz:          compositor.DefaultMaxHz,
		logger:         log.Discard,
		layout:         gesture.DefaultLayout(),
		viewport:       compositor.Viewport{Width: 960, Height: 540},
	}
	for _, opt := range opts {
		opt(e)
	}

	e.model = timeline.NewModel(timeline.WithEpsilon(e.epsilon))
	resolverOpts := append([]snap.Option{snap.WithPixelsPerSecond(e.layout.PixelsPerSecond)}, e.snapOpts...)
	e.resolver = snap.NewResolver(resolverOpts...)
	e.history = history.NewHistory(e.model.Snapshot(), e.maxUndoEntries)
	e.gestures = gesture.NewController(e.model, e.resolver, e.history,
		gesture.WithLayout(e.layout),
		gesture.WithLogger(e.logger.WithComponent("gesture")),
	)
	e.clock = playback.NewClock()
	engineOpts := []playback.EngineOption{playback.WithLogger(e.logger.WithComponent("playback"))}
	if e.syncTolerance > 0 {
		engineOpts = append(engineOpts, playback.WithTolerance(e.syncTolerance))
	}
	e.engine = playback.NewEngine(e.opener, engineOpts...)
	e.composer = compositor.NewComposer(e.engine,
		compositor.WithAspect(e.aspect),
		compositor.WithComposerLogger(e.logger.WithComponent("compositor")),
	)
	e.throttle = compositor.NewThrottle(e.maxHz)

	return e
}

// ============================================================================
// Transport
// ============================================================================

// Time returns the current virtual time in seconds.
func (e *Editor) Time() float64 {
	return e.clock.Time()
}

// SetTime seeks the virtual time. Handles resynchronize immediately and
// the frame throttle reopens, so the next tick composes at the new
// position instead of holding the pre-seek frame.
func (e *Editor) SetTime(t float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.clock.SetTime(t)
	e.engine.Tick(e.clock.Time(), e.clock.Playing(), e.model.Snapshot())
	e.throttle.Reset()
}

// Playing reports whether the clock is advancing.
func (e *Editor) Playing() bool {
	return e.clock.Playing()
}

// SetPlaying starts or stops the clock. Stopping pauses every active
// handle right away instead of waiting for the next tick.
func (e *Editor) SetPlaying(playing bool) {
	e.clock.SetPlaying(playing)
	e.engine.Tick(e.clock.Time(), playing, e.model.Snapshot())
}

// TogglePlayback flips between playing and paused and returns the new
// state.
func (e *Editor) TogglePlayback() bool {
	playing := e.clock.Toggle()
	e.engine.Tick(e.clock.Time(), playing, e.model.Snapshot())
	return playing
}

// ============================================================================
// Volumes
// ============================================================================

// MasterVolume returns the master volume in percent.
func (e *Editor) MasterVolume() float64 {
	return e.engine.MasterVolume()
}

// SetMasterVolume sets the master volume in percent, clamped to [0, 100].
// A playback setting, not an edit, so it does not touch history.
func (e *Editor) SetMasterVolume(v float64) {
	e.engine.SetMasterVolume(v)
}

// SetItemVolume sets an item's volume in percent, clamped to [0, 200],
// and records the change in history.
func (e *Editor) SetItemVolume(id string, v float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gestures.Cancel()

	v = min(max(v, 0), timeline.MaxVolume)

	cur := e.model.Snapshot()
	items := cur.Items()
	found := false
	for i := range items {
		if items[i].ID == id {
			items[i].Volume = v
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", timeline.ErrItemNotFound, id)
	}
	if err := e.model.Commit(items, nil); err != nil {
		return err
	}
	e.history.Push(e.model.Snapshot(), "volume")
	return nil
}

// ============================================================================
// Pointer intents
// ============================================================================

// PointerDown forwards a press to the gesture controller.
func (e *Editor) PointerDown(x, y int, mods gesture.Modifier) {
	e.gestures.PointerDown(x, y, mods)
}

// PointerMove forwards pointer movement to the gesture controller.
func (e *Editor) PointerMove(x, y int, mods gesture.Modifier) {
	e.gestures.PointerMove(x, y, mods)
}

// PointerUp forwards a release to the gesture controller.
func (e *Editor) PointerUp(x, y int, mods gesture.Modifier) {
	e.gestures.PointerUp(x, y, mods)
}

// CancelGesture abandons the gesture in progress.
func (e *Editor) CancelGesture() {
	e.gestures.Cancel()
}

// GestureState returns the controller's current state.
func (e *Editor) GestureState() gesture.State {
	return e.gestures.State()
}

// Ghosts returns the live positions of gesture members for rendering.
func (e *Editor) Ghosts() []gesture.Ghost {
	return e.gestures.Ghosts()
}

// Band returns the active selection rectangle while rect-selecting.
func (e *Editor) Band() (gesture.Rect, bool) {
	return e.gestures.Band()
}

// Selection returns the selected item ids, sorted.
func (e *Editor) Selection() []string {
	return e.gestures.Selection()
}

// Select adds the item to the selection, replacing the previous selection
// unless additive is set.
func (e *Editor) Select(id string, additive bool) {
	e.gestures.Select(id, additive)
}

// ClearSelection empties the selection.
func (e *Editor) ClearSelection() {
	e.gestures.ClearSelection()
}

// SetLayout updates the timeline view geometry, keeping gesture hit
// testing and the snap window in line with the view.
func (e *Editor) SetLayout(l gesture.Layout) {
	e.gestures.SetLayout(l)
	e.resolver.SetPixelsPerSecond(l.PixelsPerSecond)
}

// Layout returns the timeline view geometry.
func (e *Editor) Layout() gesture.Layout {
	return e.gestures.Layout()
}

// ============================================================================
// Edit verbs
// ============================================================================

// Split cuts every selected item containing the current virtual time.
// Returns the number of items split.
func (e *Editor) Split() int {
	return e.gestures.Split(e.clock.Time())
}

// Delete removes all selected items. Returns the number removed.
func (e *Editor) Delete() int {
	return e.gestures.Delete()
}

// Copy snapshots the selection into the clipboard.
func (e *Editor) Copy() int {
	return e.gestures.Copy()
}

// Cut copies the selection and removes the originals.
func (e *Editor) Cut() int {
	return e.gestures.Cut()
}

// Paste inserts the clipboard at the current virtual time and returns the
// new item ids.
func (e *Editor) Paste() []string {
	return e.gestures.Paste(e.clock.Time())
}

// PlaceSource drops a source onto a track at the given time, resolving to
// the nearest legal position when the spot is taken. Returns the new
// item's id.
func (e *Editor) PlaceSource(src *timeline.MediaSource, track int, at float64) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gestures.Cancel()

	if src == nil {
		return "", ErrNilSource
	}

	cur := e.model.Snapshot()
	trk, ok := cur.Track(track)
	if !ok {
		return "", fmt.Errorf("%w: order %d", timeline.ErrTrackNotFound, track)
	}
	if !src.Kind.CompatibleWith(trk.Kind) {
		return "", fmt.Errorf("%w: %s item on %s track", timeline.ErrKindMismatch, src.Kind, trk.Kind)
	}

	it := timeline.NewItem(src, track, at)
	move := e.resolver.ResolvePlace(cur, it, at, track)
	if !move.Legal {
		return "", fmt.Errorf("%w: %s at %.3fs", ErrNoPlacement, src.Name, at)
	}
	it.Start = move.Start

	items := append(cur.Items(), it)
	if err := e.model.Commit(items, nil); err != nil {
		return "", err
	}
	e.history.Push(e.model.Snapshot(), "place")
	return it.ID, nil
}

// AddTrack appends a track below the last track of its kind and returns
// the new track's order.
func (e *Editor) AddTrack(kind timeline.MediaKind) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gestures.Cancel()

	cur := e.model.Snapshot()
	tracks, items := timeline.InsertTrack(cur.Tracks(), cur.Items(), kind, "")
	if err := e.model.Commit(items, tracks); err != nil {
		return 0, err
	}
	e.history.Push(e.model.Snapshot(), "add track")

	siblings := cur.TracksOfKind(kind)
	if len(siblings) == 0 {
		return len(tracks) - 1, nil
	}
	return siblings[len(siblings)-1].Order + 1, nil
}

// RemoveTrack removes an empty track. The last track of a kind stays.
func (e *Editor) RemoveTrack(order int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gestures.Cancel()

	cur := e.model.Snapshot()
	tracks, items, err := timeline.RemoveTrack(cur.Tracks(), cur.Items(), order)
	if err != nil {
		return err
	}
	if err := e.model.Commit(items, tracks); err != nil {
		return err
	}
	e.history.Push(e.model.Snapshot(), "remove track")
	return nil
}

// RenameTrack replaces a track's display label.
func (e *Editor) RenameTrack(order int, label string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gestures.Cancel()

	cur := e.model.Snapshot()
	tracks, err := timeline.RenameTrack(cur.Tracks(), order, label)
	if err != nil {
		return err
	}
	if err := e.model.Commit(cur.Items(), tracks); err != nil {
		return err
	}
	e.history.Push(e.model.Snapshot(), "rename track")
	return nil
}

// LoadTimeline replaces the entire timeline, typically with the contents of
// a saved project. The new state is validated like any commit. On success
// the history is reset so undo cannot reach back into the abandoned
// timeline, playback stops, and the playhead rewinds to zero.
func (e *Editor) LoadTimeline(items []timeline.Item, tracks []timeline.Track) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gestures.Cancel()

	if err := e.model.Commit(items, tracks); err != nil {
		return err
	}
	e.gestures.ClearSelection()
	e.history.Clear(e.model.Snapshot())

	e.clock.SetPlaying(false)
	e.clock.SetTime(0)
	e.engine.Tick(0, false, e.model.Snapshot())
	e.throttle.Reset()
	return nil
}

// ============================================================================
// Undo/Redo
// ============================================================================

// Undo restores the previous committed state.
func (e *Editor) Undo() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gestures.Cancel()

	snap, err := e.history.Undo()
	if err != nil {
		return err
	}
	if err := e.model.Restore(snap); err != nil {
		// Put the stack back the way it was.
		_, _ = e.history.Redo()
		return err
	}
	return nil
}

// Redo restores the next committed state.
func (e *Editor) Redo() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gestures.Cancel()

	snap, err := e.history.Redo()
	if err != nil {
		return err
	}
	if err := e.model.Restore(snap); err != nil {
		_, _ = e.history.Undo()
		return err
	}
	return nil
}

// CanUndo returns true if undo is available.
func (e *Editor) CanUndo() bool {
	return e.history.CanUndo()
}

// CanRedo returns true if redo is available.
func (e *Editor) CanRedo() bool {
	return e.history.CanRedo()
}

// UndoCount returns the number of available undo operations.
func (e *Editor) UndoCount() int {
	return e.history.UndoCount()
}

// RedoCount returns the number of available redo operations.
func (e *Editor) RedoCount() int {
	return e.history.RedoCount()
}

// ============================================================================
// Reads and the frame tick
// ============================================================================

// Snapshot returns the committed timeline state.
func (e *Editor) Snapshot() *timeline.Snapshot {
	return e.model.Snapshot()
}

// ActiveItemsAt returns the items whose interval contains the given time,
// ascending by track.
func (e *Editor) ActiveItemsAt(t float64) []timeline.Item {
	return e.model.Snapshot().ActiveAt(t)
}

// Duration returns the end of the last item on the timeline.
func (e *Editor) Duration() float64 {
	return e.model.Snapshot().Duration()
}

// Ready reports whether an item's media handle can present.
func (e *Editor) Ready(itemID string) bool {
	return e.engine.Ready(itemID)
}

// Aspect returns the preview aspect ratio.
func (e *Editor) Aspect() compositor.Aspect {
	return e.composer.Aspect()
}

// SetAspect changes the preview aspect ratio.
func (e *Editor) SetAspect(a compositor.Aspect) {
	e.composer.SetAspect(a)
}

// SetViewport sizes the preview surface the compositor draws into.
func (e *Editor) SetViewport(width, height int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.viewport = compositor.Viewport{Width: width, Height: height}
}

// Frame returns the most recently composed frame, which may be nil before
// the first tick.
func (e *Editor) Frame() *compositor.Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastFrame
}

// Tick drives one presentation frame: the clock advances, every media
// handle is resynchronized, and the compositor runs, in that order. The
// compositor is throttled, a gated tick returns the previous frame.
func (e *Editor) Tick(now time.Time) *compositor.Frame {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.clock.Advance(now)
	vt := e.clock.Time()
	playing := e.clock.Playing()
	cur := e.model.Snapshot()

	e.engine.Tick(vt, playing, cur)

	if !e.throttle.Allow(now) {
		return e.lastFrame
	}
	e.lastFrame = e.composer.Compose(vt, cur, e.viewport)
	return e.lastFrame
}

// Close tears down every media handle.
func (e *Editor) Close() {
	e.engine.Close()
}
