package app

import (
	"errors"
	"time"

	"github.com/PokeMichele/lumo/internal/playback"
	"github.com/PokeMichele/lumo/internal/timeline"
)

// previewOpener is the media layer of the terminal host. Nothing decodes
// here, so handles track position and gain arithmetically and are ready
// the moment they open. The sync engine treats them exactly like decoder
// handles: it seeks them on drift, plays and pauses them with the active
// window, and applies gain changes.
type previewOpener struct{}

func newPreviewOpener() playback.Opener {
	return previewOpener{}
}

func (previewOpener) Open(src *timeline.MediaSource) (playback.MediaHandle, error) {
	if src == nil {
		return nil, errors.New("nil source")
	}
	return &previewHandle{}, nil
}

// previewHandle advances its position with the wall clock while playing.
// The engine is its only caller, so no locking.
type previewHandle struct {
	base    float64
	basedAt time.Time
	playing bool
	gain    float64
	closed  bool
}

func (h *previewHandle) Play() error {
	if h.closed {
		return errors.New("handle closed")
	}
	if !h.playing {
		h.playing = true
		h.basedAt = time.Now()
	}
	return nil
}

func (h *previewHandle) Pause() {
	if h.playing {
		h.base = h.Position()
		h.playing = false
	}
}

func (h *previewHandle) Seek(seconds float64) {
	h.base = seconds
	h.basedAt = time.Now()
}

func (h *previewHandle) Position() float64 {
	if !h.playing {
		return h.base
	}
	return h.base + time.Since(h.basedAt).Seconds()
}

func (h *previewHandle) SetGain(gain float64) error {
	h.gain = gain
	return nil
}

func (h *previewHandle) State() playback.HandleState {
	if h.closed {
		return playback.HandleFailed
	}
	return playback.HandleReady
}

func (h *previewHandle) Close() error {
	h.closed = true
	return nil
}
