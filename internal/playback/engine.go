package playback

import (
	"math"
	"sync"

	"github.com/PokeMichele/lumo/internal/log"
	"github.com/PokeMichele/lumo/internal/timeline"
)

// DefaultSyncTolerance is how far in seconds a handle may drift from its
// target before it is reseeked. Seeking on every tick stalls decoders, so
// small drift is left alone.
const DefaultSyncTolerance = 0.1

// DefaultMasterVolume is the initial master volume in percent.
const DefaultMasterVolume = 100

// entry tracks one media handle and the engine's belief about it.
type entry struct {
	handle   MediaHandle
	sourceID string

	playing bool
	gain    float64
	gainSet bool

	openFailed    bool
	refusedLogged bool
	failedLogged  bool
}

// Engine synchronizes media handles to the virtual time. It owns the map
// from item id to handle exclusively: handles are created lazily when an
// item with a video or audio source first appears and torn down when the
// item leaves the timeline.
type Engine struct {
	mu        sync.Mutex
	opener    Opener
	logger    *log.Logger
	tolerance float64
	master    float64
	handles   map[string]*entry
}

// EngineOption is a functional option for configuring an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(l *log.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTolerance sets the sync tolerance in seconds.
func WithTolerance(tol float64) EngineOption {
	return func(e *Engine) {
		if tol > 0 {
			e.tolerance = tol
		}
	}
}

// NewEngine creates a sync engine that opens handles through the given
// opener. A nil opener leaves every item unopened, the timeline still
// edits and composes with placeholders.
func NewEngine(opener Opener, opts ...EngineOption) *Engine {
	e := &Engine{
		opener:    opener,
		logger:    log.Discard,
		tolerance: DefaultSyncTolerance,
		master:    DefaultMasterVolume,
		handles:   make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetMasterVolume sets the master volume in percent, clamped to [0, 100].
// The new effective gain reaches every handle on the next tick.
func (e *Engine) SetMasterVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.master = min(max(v, 0), 100)
}

// MasterVolume returns the master volume in percent.
func (e *Engine) MasterVolume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.master
}

// Tolerance returns the sync tolerance in seconds.
func (e *Engine) Tolerance() float64 {
	return e.tolerance
}

// Tick synchronizes every handle to the given virtual time. Stale handles
// are torn down first, then each video and audio item is brought in line:
// paused when inactive or out of range, seeked when drifted beyond the
// tolerance, playing with its effective gain while the clock runs.
//
// All handle faults are local. One item's refusal or decode error never
// affects the tick or the other handles.
func (e *Engine) Tick(vt float64, playing bool, snap *timeline.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	items := snap.Items()

	live := make(map[string]bool, len(items))
	for _, it := range items {
		live[it.ID] = true
	}
	for id, en := range e.handles {
		if !live[id] {
			e.teardown(id, en)
		}
	}

	for _, it := range items {
		if kind := it.SourceKind(); kind != timeline.SourceVideo && kind != timeline.SourceAudio {
			continue
		}
		e.syncItem(vt, playing, it)
	}
}

// syncItem brings a single item's handle in line with the virtual time.
func (e *Engine) syncItem(vt float64, playing bool, it timeline.Item) {
	en := e.handles[it.ID]
	if en != nil && en.sourceID != it.SourceID {
		// The item was relinked to different media, start over.
		e.teardown(it.ID, en)
		en = nil
	}
	if en == nil {
		en = &entry{sourceID: it.SourceID}
		e.handles[it.ID] = en
	}
	if en.openFailed {
		return
	}
	if en.handle == nil {
		if e.opener == nil {
			en.openFailed = true
			return
		}
		h, err := e.opener.Open(it.Source)
		if err != nil {
			en.openFailed = true
			e.logger.Warn("media open failed", "item", it.ID, "source", it.Source.Name, "error", err)
			return
		}
		en.handle = h
		e.logger.Debug("media handle created", "item", it.ID, "source", it.Source.Name)
	}

	switch en.handle.State() {
	case HandleLoading:
		// Not ready for seeks or gain yet, poll again next tick.
		return
	case HandleFailed:
		if !en.failedLogged {
			en.failedLogged = true
			e.logger.Warn("media handle failed", "item", it.ID, "source", it.Source.Name)
		}
		e.pause(en)
		return
	}

	target := (vt - it.Start) + it.Offset
	inRange := target >= 0 && (it.Source.Duration <= 0 || target <= it.Source.Duration)
	if !it.Contains(vt) || !inRange {
		e.pause(en)
		return
	}

	// Gain first so a handle never starts at the wrong loudness.
	e.applyGain(en, it)

	if math.Abs(en.handle.Position()-target) > e.tolerance {
		en.handle.Seek(target)
	}

	if !playing {
		e.pause(en)
		return
	}
	if !en.playing {
		if err := en.handle.Play(); err != nil {
			if !en.refusedLogged {
				en.refusedLogged = true
				e.logger.Warn("playback refused", "item", it.ID, "source", it.Source.Name, "error", err)
			}
			return
		}
		en.playing = true
		en.refusedLogged = false
	}
}

// applyGain pushes the item's effective gain to the handle, retrying next
// tick when the handle is not ready to accept it.
func (e *Engine) applyGain(en *entry, it timeline.Item) {
	g := effectiveGain(it.Volume, e.master)
	if en.gainSet && en.gain == g {
		return
	}
	if err := en.handle.SetGain(g); err != nil {
		en.gainSet = false
		return
	}
	en.gain, en.gainSet = g, true
}

// pause halts a handle the engine believes is rolling.
func (e *Engine) pause(en *entry) {
	if en.handle != nil && en.playing {
		en.handle.Pause()
	}
	en.playing = false
	en.refusedLogged = false
}

// teardown closes a handle and forgets it.
func (e *Engine) teardown(id string, en *entry) {
	if en.handle != nil {
		if en.playing {
			en.handle.Pause()
		}
		if err := en.handle.Close(); err != nil {
			e.logger.Debug("handle close failed", "item", id, "error", err)
		}
	}
	delete(e.handles, id)
	e.logger.Debug("media handle removed", "item", id)
}

// Close tears down every handle. The engine may be used again afterwards,
// handles are recreated on demand.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, en := range e.handles {
		e.teardown(id, en)
	}
}

// Ready reports whether the item has a handle that is ready to present.
// The compositor uses this to decide between drawing media and drawing a
// placeholder.
func (e *Engine) Ready(itemID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	en := e.handles[itemID]
	return en != nil && en.handle != nil && en.handle.State() == HandleReady
}

// HandleState returns the state of the item's handle, if one exists.
func (e *Engine) HandleState(itemID string) (HandleState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	en := e.handles[itemID]
	if en == nil || en.handle == nil {
		return 0, false
	}
	return en.handle.State(), true
}

// Position returns the playback position of the item's handle, if one
// exists and is ready.
func (e *Engine) Position(itemID string) (float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	en := e.handles[itemID]
	if en == nil || en.handle == nil || en.handle.State() != HandleReady {
		return 0, false
	}
	return en.handle.Position(), true
}

// HandleCount returns the number of live handles.
func (e *Engine) HandleCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.handles)
}

// effectiveGain combines per-item and master volume percentages into a
// linear gain clamped to [0, 1].
func effectiveGain(itemVolume, master float64) float64 {
	g := (itemVolume / 100) * (master / 100)
	return min(max(g, 0), 1)
}
