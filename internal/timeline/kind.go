package timeline

import "fmt"

// MediaKind identifies what a track carries. A timeline always has at least
// one track of each kind.
type MediaKind int

const (
	// MediaVideo marks tracks that carry visual content.
	MediaVideo MediaKind = iota
	// MediaAudio marks tracks that carry audible content.
	MediaAudio
)

// String returns a human-readable name for the media kind.
func (k MediaKind) String() string {
	switch k {
	case MediaVideo:
		return "video"
	case MediaAudio:
		return "audio"
	default:
		return fmt.Sprintf("MediaKind(%d)", int(k))
	}
}

// ParseMediaKind converts a serialized name back into a MediaKind.
func ParseMediaKind(s string) (MediaKind, error) {
	switch s {
	case "video":
		return MediaVideo, nil
	case "audio":
		return MediaAudio, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// SourceKind identifies the content type of a media source.
type SourceKind int

const (
	// SourceVideo is a video clip with its own intrinsic duration.
	SourceVideo SourceKind = iota
	// SourceAudio is an audio clip with its own intrinsic duration.
	SourceAudio
	// SourceImage is a still image with no intrinsic duration.
	SourceImage
	// SourceEffect is a time-varying visual effect with no intrinsic duration.
	SourceEffect
)

// String returns a human-readable name for the source kind.
func (k SourceKind) String() string {
	switch k {
	case SourceVideo:
		return "video"
	case SourceAudio:
		return "audio"
	case SourceImage:
		return "image"
	case SourceEffect:
		return "effect"
	default:
		return fmt.Sprintf("SourceKind(%d)", int(k))
	}
}

// ParseSourceKind converts a serialized name back into a SourceKind.
func ParseSourceKind(s string) (SourceKind, error) {
	switch s {
	case "video":
		return SourceVideo, nil
	case "audio":
		return SourceAudio, nil
	case "image":
		return SourceImage, nil
	case "effect":
		return SourceEffect, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// TrackKind returns the kind of track this source kind must be placed on.
// Video, image and effect sources live on video tracks, audio sources on
// audio tracks.
func (k SourceKind) TrackKind() MediaKind {
	if k == SourceAudio {
		return MediaAudio
	}
	return MediaVideo
}

// CompatibleWith reports whether a source of this kind may be hosted by a
// track of the given kind.
func (k SourceKind) CompatibleWith(track MediaKind) bool {
	return k.TrackKind() == track
}

// Resizable reports whether items backed by this source kind may have their
// duration changed by trimming. Video and audio clips keep their recorded
// length, images and effects stretch freely.
func (k SourceKind) Resizable() bool {
	return k == SourceImage || k == SourceEffect
}

// EffectKind identifies a time-varying visual effect carried by an effect
// source. EffectNone marks sources that are not effects.
type EffectKind int

const (
	// EffectNone is the zero value for non-effect sources.
	EffectNone EffectKind = iota
	// EffectFadeIn ramps opacity from transparent to opaque over the item.
	EffectFadeIn
	// EffectFadeOut ramps opacity from opaque to transparent over the item.
	EffectFadeOut
	// EffectBlackWhite removes color for the whole span of the item.
	EffectBlackWhite
	// EffectBlur applies a constant blur scaled by intensity.
	EffectBlur
	// EffectZoomIn scales the picture up, scaled by intensity.
	EffectZoomIn
	// EffectZoomOut scales the picture down, scaled by intensity.
	EffectZoomOut
)

// String returns the serialized name of the effect kind.
func (k EffectKind) String() string {
	switch k {
	case EffectNone:
		return "none"
	case EffectFadeIn:
		return "fadeIn"
	case EffectFadeOut:
		return "fadeOut"
	case EffectBlackWhite:
		return "blackWhite"
	case EffectBlur:
		return "blur"
	case EffectZoomIn:
		return "zoomIn"
	case EffectZoomOut:
		return "zoomOut"
	default:
		return fmt.Sprintf("EffectKind(%d)", int(k))
	}
}

// ParseEffectKind converts a serialized name back into an EffectKind.
func ParseEffectKind(s string) (EffectKind, error) {
	switch s {
	case "", "none":
		return EffectNone, nil
	case "fadeIn":
		return EffectFadeIn, nil
	case "fadeOut":
		return EffectFadeOut, nil
	case "blackWhite":
		return EffectBlackWhite, nil
	case "blur":
		return EffectBlur, nil
	case "zoomIn":
		return EffectZoomIn, nil
	case "zoomOut":
		return EffectZoomOut, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}
