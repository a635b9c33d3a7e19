package timeline

import (
	"fmt"

	"github.com/google/uuid"
)

// Track is a horizontal lane on the timeline. Tracks are addressed by their
// Order index, which is dense and zero-based across the whole timeline and
// renumbered whenever a track is inserted or removed.
type Track struct {
	// ID uniquely identifies the track across reorderings.
	ID string

	// Kind determines which source kinds the track accepts.
	Kind MediaKind

	// Order is the zero-based position of the track on the timeline, top
	// to bottom. Items reference their track through this index.
	Order int

	// Label is the display name, for example "Video 1".
	Label string
}

// NewTrack creates a track with a fresh id. The order is assigned on commit.
func NewTrack(kind MediaKind, label string) Track {
	return Track{
		ID:    uuid.NewString(),
		Kind:  kind,
		Label: label,
	}
}

// DefaultTracks returns the minimal track set every new timeline starts
// with, one video track above one audio track.
func DefaultTracks() []Track {
	return []Track{
		{ID: uuid.NewString(), Kind: MediaVideo, Order: 0, Label: "Video 1"},
		{ID: uuid.NewString(), Kind: MediaAudio, Order: 1, Label: "Audio 1"},
	}
}

// nextLabel derives the default label for a new track of the given kind,
// numbering within the kind.
func nextLabel(tracks []Track, kind MediaKind) string {
	n := 0
	for _, t := range tracks {
		if t.Kind == kind {
			n++
		}
	}
	switch kind {
	case MediaAudio:
		return fmt.Sprintf("Audio %d", n+1)
	default:
		return fmt.Sprintf("Video %d", n+1)
	}
}

// InsertTrack returns a new track and item set with a track of the given
// kind added directly below the last existing track of that kind. Orders are
// renumbered densely and item track references are shifted to follow their
// hosting tracks. The input slices are not modified.
func InsertTrack(tracks []Track, items []Item, kind MediaKind, label string) ([]Track, []Item) {
	if label == "" {
		label = nextLabel(tracks, kind)
	}

	// Insert after the last track of the same kind, or at the end when the
	// timeline has none yet.
	at := len(tracks)
	for i := len(tracks) - 1; i >= 0; i-- {
		if tracks[i].Kind == kind {
			at = i + 1
			break
		}
	}

	next := make([]Track, 0, len(tracks)+1)
	next = append(next, tracks[:at]...)
	next = append(next, NewTrack(kind, label))
	next = append(next, tracks[at:]...)
	for i := range next {
		next[i].Order = i
	}

	moved := make([]Item, len(items))
	copy(moved, items)
	for i := range moved {
		if moved[i].Track >= at {
			moved[i].Track++
		}
	}
	return next, moved
}

// RemoveTrack returns a new track and item set with the track at the given
// order removed. A track may only be removed while it hosts no items and at
// least one sibling of the same kind remains. Items on later tracks follow
// their hosting track up through the renumbering.
func RemoveTrack(tracks []Track, items []Item, order int) ([]Track, []Item, error) {
	if order < 0 || order >= len(tracks) {
		return nil, nil, fmt.Errorf("%w: order %d", ErrTrackNotFound, order)
	}
	removed := tracks[order]

	for _, it := range items {
		if it.Track == order {
			return nil, nil, fmt.Errorf("%w: %q hosts item %s", ErrTrackNotEmpty, removed.Label, it.ID)
		}
	}

	kept := 0
	for _, t := range tracks {
		if t.Kind == removed.Kind {
			kept++
		}
	}
	if kept <= 1 {
		return nil, nil, fmt.Errorf("%w: %s", ErrLastTrackOfKind, removed.Kind)
	}

	next := make([]Track, 0, len(tracks)-1)
	next = append(next, tracks[:order]...)
	next = append(next, tracks[order+1:]...)
	for i := range next {
		next[i].Order = i
	}

	moved := make([]Item, len(items))
	copy(moved, items)
	for i := range moved {
		if moved[i].Track > order {
			moved[i].Track--
		}
	}
	return next, moved, nil
}

// RenameTrack returns a new track set with the label of the track at the
// given order replaced. The input slice is not modified.
func RenameTrack(tracks []Track, order int, label string) ([]Track, error) {
	if order < 0 || order >= len(tracks) {
		return nil, fmt.Errorf("%w: order %d", ErrTrackNotFound, order)
	}
	next := make([]Track, len(tracks))
	copy(next, tracks)
	next[order].Label = label
	return next, nil
}
