package timeline

import "github.com/google/uuid"

// MediaSource describes an imported asset that items on the timeline refer
// to. Sources are owned by the media library and shared by reference, so one
// source may back any number of items.
type MediaSource struct {
	// ID uniquely identifies the source within the library.
	ID string

	// Kind is the content type of the source.
	Kind SourceKind

	// Name is the display name, usually the imported file name.
	Name string

	// Handle is an opaque locator understood by the playback layer, for
	// file-backed sources typically a path or URL. Effects have no handle.
	Handle string

	// Duration is the intrinsic length of the media in seconds. It is zero
	// for images and effects, which have no intrinsic length.
	Duration float64

	// Effect is the effect carried by effect sources, EffectNone otherwise.
	Effect EffectKind

	// Intensity is the effect strength from 0 to 100. It is meaningful for
	// blur and zoom effects and ignored by the rest.
	Intensity float64
}

// NewSource creates a media source with a fresh id.
func NewSource(kind SourceKind, name, handle string, duration float64) *MediaSource {
	return &MediaSource{
		ID:       uuid.NewString(),
		Kind:     kind,
		Name:     name,
		Handle:   handle,
		Duration: duration,
	}
}

// NewEffectSource creates an effect source with a fresh id. The intensity is
// clamped to the 0 to 100 range.
func NewEffectSource(effect EffectKind, name string, intensity float64) *MediaSource {
	if intensity < 0 {
		intensity = 0
	}
	if intensity > 100 {
		intensity = 100
	}
	return &MediaSource{
		ID:        uuid.NewString(),
		Kind:      SourceEffect,
		Name:      name,
		Effect:    effect,
		Intensity: intensity,
	}
}

// Unbounded reports whether the source has no intrinsic duration and may
// back items of any length.
func (s *MediaSource) Unbounded() bool {
	return s.Kind == SourceImage || s.Kind == SourceEffect
}

// DefaultItemDuration returns the duration a freshly placed item of this
// source should get. Clips use their intrinsic length, images and effects
// start at five seconds.
func (s *MediaSource) DefaultItemDuration() float64 {
	if s.Unbounded() || s.Duration <= 0 {
		return 5
	}
	return s.Duration
}
