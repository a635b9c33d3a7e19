package playback

import "github.com/PokeMichele/lumo/internal/timeline"

// HandleState is the readiness of a media handle.
type HandleState int

const (
	// HandleLoading means the handle is still acquiring media metadata.
	// Seeks and gain changes are deferred until it becomes ready.
	HandleLoading HandleState = iota
	// HandleReady means the handle can seek, play and change gain.
	HandleReady
	// HandleFailed means the handle hit a decode fault. It is excluded
	// from synchronization and its item renders as a placeholder.
	HandleFailed
)

// String returns a human-readable name for the handle state.
func (s HandleState) String() string {
	switch s {
	case HandleLoading:
		return "loading"
	case HandleReady:
		return "ready"
	case HandleFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MediaHandle is a playback endpoint for one media source, typically backed
// by a decoder owned by the host. Handles are not safe for concurrent use,
// the Engine is their only caller.
type MediaHandle interface {
	// Play begins or resumes playback. The host may refuse, the error is
	// non-fatal and the handle stays paused.
	Play() error

	// Pause halts playback, keeping the current position.
	Pause()

	// Seek moves the playback position to the given media time in seconds.
	Seek(seconds float64)

	// Position returns the current playback position in media seconds.
	Position() float64

	// SetGain sets the linear volume in [0, 1]. Handles may reject gain
	// changes while loading, the Engine retries once they are ready.
	SetGain(gain float64) error

	// State returns the handle's readiness.
	State() HandleState

	// Close releases the handle's resources. The handle is unusable
	// afterwards.
	Close() error
}

// Opener creates media handles for sources. It is implemented by the host's
// media layer and injected into the Engine.
type Opener interface {
	Open(src *timeline.MediaSource) (MediaHandle, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(src *timeline.MediaSource) (MediaHandle, error)

// Open calls f.
func (f OpenerFunc) Open(src *timeline.MediaSource) (MediaHandle, error) {
	return f(src)
}
