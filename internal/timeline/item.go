package timeline

import (
	"fmt"

	"github.com/google/uuid"
)

// DefaultVolume is the neutral per-item volume in percent.
const DefaultVolume = 100

// MaxVolume is the per-item volume ceiling in percent, allowing boost above
// the recorded level.
const MaxVolume = 200

// Item is a placed occurrence of a media source on a track. Items occupy the
// half-open interval [Start, Start+Duration) on the shared time axis. Items
// are value types, editing operations build modified copies and commit them
// as a whole.
type Item struct {
	// ID uniquely identifies the item on the timeline.
	ID string

	// SourceID names the backing media source.
	SourceID string

	// Source is the resolved backing source, shared by reference with the
	// library and with other items cut from the same media.
	Source *MediaSource

	// Start is the position of the item's left edge in timeline seconds.
	Start float64

	// Duration is the length of the item in seconds, always positive.
	Duration float64

	// Track is the order index of the hosting track.
	Track int

	// Offset is where playback enters the source media, in media seconds
	// from the start of the source. Splitting a clip raises the offset of
	// the right half so both halves play their original material.
	Offset float64

	// Volume is the per-item volume in percent, 0 to MaxVolume, applied on
	// top of the master volume. Only meaningful for audio sources.
	Volume float64
}

// NewItem places a source on a track at the given start time with the
// source's default duration.
func NewItem(src *MediaSource, track int, start float64) Item {
	return Item{
		ID:       uuid.NewString(),
		SourceID: src.ID,
		Source:   src,
		Start:    start,
		Duration: src.DefaultItemDuration(),
		Track:    track,
		Volume:   DefaultVolume,
	}
}

// End returns the time of the item's right edge.
func (it Item) End() float64 {
	return it.Start + it.Duration
}

// Contains reports whether the time t falls inside the item's half-open
// interval.
func (it Item) Contains(t float64) bool {
	return t >= it.Start && t < it.End()
}

// OverlapsBeyond reports whether this item and other overlap by more than
// eps seconds. Adjacent items sharing an edge do not overlap, and tiny
// overlaps within eps are tolerated as placement jitter.
func (it Item) OverlapsBeyond(other Item, eps float64) bool {
	overlap := min(it.End(), other.End()) - max(it.Start, other.Start)
	return overlap > eps
}

// SplitAt cuts the item in two at time t, which must fall strictly inside
// the item. The left half keeps the item's id and everything before t, the
// right half gets a fresh id, starts at t, and enters the source media
// deeper by the length of the left half, so the two halves play back exactly
// what the whole item did.
func (it Item) SplitAt(t float64) (Item, Item, error) {
	if t <= it.Start || t >= it.End() {
		return Item{}, Item{}, fmt.Errorf("%w: t=%.3f item=[%.3f,%.3f)", ErrSplitOutOfRange, t, it.Start, it.End())
	}

	left := it
	left.Duration = t - it.Start

	right := it
	right.ID = uuid.NewString()
	right.Start = t
	right.Duration = it.End() - t
	right.Offset = it.Offset + left.Duration

	return left, right, nil
}

// SourceKind returns the kind of the backing source, or SourceVideo when the
// source is unresolved.
func (it Item) SourceKind() SourceKind {
	if it.Source == nil {
		return SourceVideo
	}
	return it.Source.Kind
}
