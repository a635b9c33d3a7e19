package timeline

import "sort"

// Snapshot is a read-only view of the timeline at a specific revision. It is
// safe for concurrent access and will not change even if the model it came
// from is committed to again.
type Snapshot struct {
	revision Revision
	tracks   []Track
	items    []Item
	epsilon  float64
}

// newSnapshot copies the given state into an immutable snapshot with items
// sorted by track then start time.
func newSnapshot(items []Item, tracks []Track, eps float64) *Snapshot {
	ts := make([]Track, len(tracks))
	copy(ts, tracks)
	sort.Slice(ts, func(i, j int) bool { return ts[i].Order < ts[j].Order })

	its := make([]Item, len(items))
	copy(its, items)
	sort.Slice(its, func(i, j int) bool {
		if its[i].Track != its[j].Track {
			return its[i].Track < its[j].Track
		}
		if its[i].Start != its[j].Start {
			return its[i].Start < its[j].Start
		}
		return its[i].ID < its[j].ID
	})

	return &Snapshot{
		revision: NewRevision(),
		tracks:   ts,
		items:    its,
		epsilon:  eps,
	}
}

// Revision returns the revision ID of this snapshot.
func (s *Snapshot) Revision() Revision {
	return s.revision
}

// Tracks returns the tracks sorted by order. The slice is a copy and may be
// modified freely.
func (s *Snapshot) Tracks() []Track {
	out := make([]Track, len(s.tracks))
	copy(out, s.tracks)
	return out
}

// Items returns all items sorted by track then start time. The slice is a
// copy and may be modified freely.
func (s *Snapshot) Items() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Item looks up an item by id.
func (s *Snapshot) Item(id string) (Item, bool) {
	for _, it := range s.items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Track looks up a track by order index.
func (s *Snapshot) Track(order int) (Track, bool) {
	if order < 0 || order >= len(s.tracks) {
		return Track{}, false
	}
	return s.tracks[order], true
}

// TrackCount returns the number of tracks.
func (s *Snapshot) TrackCount() int {
	return len(s.tracks)
}

// ItemCount returns the number of items.
func (s *Snapshot) ItemCount() int {
	return len(s.items)
}

// ItemsOnTrack returns the items hosted by the track at the given order,
// sorted by start time.
func (s *Snapshot) ItemsOnTrack(order int) []Item {
	var out []Item
	for _, it := range s.items {
		if it.Track == order {
			out = append(out, it)
		}
	}
	return out
}

// ActiveAt returns the items whose interval contains the time t, sorted by
// track order so lower tracks come first.
func (s *Snapshot) ActiveAt(t float64) []Item {
	var out []Item
	for _, it := range s.items {
		if it.Contains(t) {
			out = append(out, it)
		}
	}
	return out
}

// TracksOfKind returns the tracks of the given kind sorted by order.
func (s *Snapshot) TracksOfKind(kind MediaKind) []Track {
	var out []Track
	for _, t := range s.tracks {
		if t.Kind == kind {
			out = append(out, t)
		}
	}
	return out
}

// Duration returns the time of the rightmost item edge, the natural end of
// the timeline. An empty timeline has duration zero.
func (s *Snapshot) Duration() float64 {
	var d float64
	for _, it := range s.items {
		if end := it.End(); end > d {
			d = end
		}
	}
	return d
}

// IsEmpty reports whether the snapshot holds no items.
func (s *Snapshot) IsEmpty() bool {
	return len(s.items) == 0
}

// Epsilon returns the jitter tolerance the snapshot was validated with.
func (s *Snapshot) Epsilon() float64 {
	return s.epsilon
}

// Equal reports whether two snapshots describe the same timeline state,
// ignoring revision. Sources are compared by id, not pointer, so a reloaded
// project compares equal to the state it was saved from.
func (s *Snapshot) Equal(other *Snapshot) bool {
	if other == nil {
		return false
	}
	if len(s.tracks) != len(other.tracks) || len(s.items) != len(other.items) {
		return false
	}
	for i := range s.tracks {
		if s.tracks[i] != other.tracks[i] {
			return false
		}
	}
	for i := range s.items {
		a, b := s.items[i], other.items[i]
		a.Source, b.Source = nil, nil
		if a != b {
			return false
		}
	}
	return true
}
