package timeline

import "errors"

// Commit validation errors. Commit wraps these with the offending item or
// track so callers can both match with errors.Is and report the detail.
var (
	// ErrUnknownKind is returned when parsing an unrecognized kind name.
	ErrUnknownKind = errors.New("unknown kind")

	// ErrUnknownTrack is returned when an item references a track order
	// index that does not exist.
	ErrUnknownTrack = errors.New("unknown track")

	// ErrKindMismatch is returned when an item's source kind is not
	// accepted by its hosting track.
	ErrKindMismatch = errors.New("source kind incompatible with track")

	// ErrNegativeStart is returned when an item starts before time zero.
	ErrNegativeStart = errors.New("item start is negative")

	// ErrInvalidDuration is returned when an item's duration is not
	// strictly positive.
	ErrInvalidDuration = errors.New("item duration must be positive")

	// ErrItemOverlap is returned when two items on the same track overlap
	// by more than the jitter epsilon.
	ErrItemOverlap = errors.New("items overlap on track")

	// ErrMissingSource is returned when an item carries no resolved media
	// source.
	ErrMissingSource = errors.New("item has no media source")

	// ErrDuplicateItem is returned when two items share an id.
	ErrDuplicateItem = errors.New("duplicate item id")

	// ErrTrackOrder is returned when track order indexes are not dense,
	// zero-based and unique.
	ErrTrackOrder = errors.New("track order indexes must be dense")

	// ErrLastTrackOfKind is returned when a commit or removal would leave
	// the timeline without a video track or without an audio track.
	ErrLastTrackOfKind = errors.New("timeline needs at least one track of each kind")

	// ErrTrackNotEmpty is returned when removing a track that still hosts
	// items.
	ErrTrackNotEmpty = errors.New("track is not empty")

	// ErrSplitOutOfRange is returned when a split time does not fall
	// strictly inside the item.
	ErrSplitOutOfRange = errors.New("split time outside item")

	// ErrItemNotFound is returned when an operation names an item id that
	// is not in the timeline.
	ErrItemNotFound = errors.New("item not found")

	// ErrTrackNotFound is returned when an operation names a track that is
	// not in the timeline.
	ErrTrackNotFound = errors.New("track not found")

	// ErrNilSnapshot is returned when restoring from a nil snapshot.
	ErrNilSnapshot = errors.New("nil snapshot")
)
