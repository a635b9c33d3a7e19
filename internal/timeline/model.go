package timeline

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

// DefaultEpsilon is the jitter tolerance in seconds. Overlaps no larger than
// this are accepted as floating point noise from pixel-to-time conversion.
const DefaultEpsilon = 0.01

// Revision uniquely identifies a committed timeline state.
// Each successful commit produces a new revision.
type Revision uint64

// revisionCounter is used to generate unique revision IDs.
var revisionCounter uint64

// NewRevision generates a new unique revision ID.
// This is thread-safe using atomic operations.
func NewRevision() Revision {
	return Revision(atomic.AddUint64(&revisionCounter, 1))
}

// Model is the thread-safe holder of the current timeline state. All
// mutation goes through Commit, which validates the proposed state as a
// whole and either installs it atomically or leaves the model untouched.
type Model struct {
	mu      sync.RWMutex
	current *Snapshot
	epsilon float64
}

// Option is a functional option for configuring a Model.
type Option func(*Model)

// WithEpsilon sets the overlap jitter tolerance in seconds.
func WithEpsilon(eps float64) Option {
	return func(m *Model) {
		if eps >= 0 {
			m.epsilon = eps
		}
	}
}

// WithTracks seeds the model with the given tracks instead of the default
// pair. The tracks must satisfy the track invariants or they are ignored.
func WithTracks(tracks []Track) Option {
	return func(m *Model) {
		if err := validateTracks(tracks); err == nil {
			m.current = newSnapshot(nil, tracks, m.epsilon)
		}
	}
}

// NewModel creates a timeline model seeded with one video and one audio
// track.
func NewModel(opts ...Option) *Model {
	m := &Model{epsilon: DefaultEpsilon}
	m.current = newSnapshot(nil, DefaultTracks(), m.epsilon)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Epsilon returns the overlap jitter tolerance in seconds.
func (m *Model) Epsilon() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.epsilon
}

// Snapshot returns the current committed state. The returned snapshot is
// immutable and safe to read from any goroutine.
func (m *Model) Snapshot() *Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Commit validates the proposed items and tracks against the timeline
// invariants and installs them as the new current state. On any violation
// the model is left unchanged and the violation is returned. Passing nil
// tracks keeps the current track set.
func (m *Model) Commit(items []Item, tracks []Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tracks == nil {
		tracks = m.current.tracks
	}
	if err := validateTracks(tracks); err != nil {
		return err
	}
	if err := validateItems(items, tracks, m.epsilon); err != nil {
		return err
	}

	m.current = newSnapshot(items, tracks, m.epsilon)
	return nil
}

// Restore installs a previously committed snapshot as the current state.
// The snapshot is re-validated so a stale restore cannot smuggle in an
// invalid state.
func (m *Model) Restore(snap *Snapshot) error {
	if snap == nil {
		return ErrNilSnapshot
	}
	return m.Commit(snap.Items(), snap.Tracks())
}

// validateTracks checks the track invariants: at least one track per kind
// and dense, zero-based, unique order indexes.
func validateTracks(tracks []Track) error {
	var video, audio int
	seen := make(map[int]bool, len(tracks))
	for _, t := range tracks {
		switch t.Kind {
		case MediaVideo:
			video++
		case MediaAudio:
			audio++
		}
		if t.Order < 0 || t.Order >= len(tracks) || seen[t.Order] {
			return fmt.Errorf("%w: track %q has order %d", ErrTrackOrder, t.Label, t.Order)
		}
		seen[t.Order] = true
	}
	if video == 0 || audio == 0 {
		return fmt.Errorf("%w: %d video, %d audio", ErrLastTrackOfKind, video, audio)
	}
	return nil
}

// validateItems checks the item invariants against the given track set.
func validateItems(items []Item, tracks []Track, eps float64) error {
	byOrder := make(map[int]Track, len(tracks))
	for _, t := range tracks {
		byOrder[t.Order] = t
	}

	ids := make(map[string]bool, len(items))
	for _, it := range items {
		if ids[it.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateItem, it.ID)
		}
		ids[it.ID] = true

		if it.Source == nil || it.SourceID == "" {
			return fmt.Errorf("%w: item %s", ErrMissingSource, it.ID)
		}
		track, ok := byOrder[it.Track]
		if !ok {
			return fmt.Errorf("%w: item %s references track %d", ErrUnknownTrack, it.ID, it.Track)
		}
		if !it.Source.Kind.CompatibleWith(track.Kind) {
			return fmt.Errorf("%w: %s source on %s track %d", ErrKindMismatch, it.Source.Kind, track.Kind, it.Track)
		}
		if it.Start < 0 {
			return fmt.Errorf("%w: item %s at %.3f", ErrNegativeStart, it.ID, it.Start)
		}
		if it.Duration <= 0 {
			return fmt.Errorf("%w: item %s has %.3f", ErrInvalidDuration, it.ID, it.Duration)
		}
	}

	// Overlap check per track. Sorting by start keeps it to adjacent pairs.
	perTrack := make(map[int][]Item)
	for _, it := range items {
		perTrack[it.Track] = append(perTrack[it.Track], it)
	}
	for order, lane := range perTrack {
		sort.Slice(lane, func(i, j int) bool { return lane[i].Start < lane[j].Start })
		for i := 1; i < len(lane); i++ {
			if lane[i-1].OverlapsBeyond(lane[i], eps) {
				return fmt.Errorf("%w: %s and %s on track %d", ErrItemOverlap, lane[i-1].ID, lane[i].ID, order)
			}
		}
	}
	return nil
}
