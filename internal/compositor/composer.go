package compositor

import (
	"github.com/PokeMichele/lumo/internal/log"
	"github.com/PokeMichele/lumo/internal/timeline"
)

// HandleProbe answers whether an item's media handle is ready to present.
// The playback engine implements it, the compositor only ever reads.
type HandleProbe interface {
	Ready(itemID string) bool
}

// alwaysReady is the probe used when none is supplied, every layer renders
// as media.
type alwaysReady struct{}

func (alwaysReady) Ready(string) bool { return true }

// Composer builds frames from timeline snapshots. The active-set partition
// and effect parameters are memoized by (time, revision) since scrubbing
// repeatedly composes the same instant, while readiness is re-read on every
// call so placeholders resolve as media loads.
type Composer struct {
	probe  HandleProbe
	logger *log.Logger
	aspect Aspect

	memo struct {
		valid    bool
		time     float64
		revision timeline.Revision
		media    []timeline.Item
		effects  Effects
	}
}

// ComposerOption is a functional option for configuring a Composer.
type ComposerOption func(*Composer)

// WithAspect sets the stage aspect ratio.
func WithAspect(a Aspect) ComposerOption {
	return func(c *Composer) {
		if a.W > 0 && a.H > 0 {
			c.aspect = a
		}
	}
}

// WithComposerLogger sets the composer's logger.
func WithComposerLogger(l *log.Logger) ComposerOption {
	return func(c *Composer) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewComposer creates a composer reading readiness from the given probe.
// A nil probe treats every handle as ready.
func NewComposer(probe HandleProbe, opts ...ComposerOption) *Composer {
	c := &Composer{
		probe:  probe,
		logger: log.Discard,
		aspect: Aspect16x9,
	}
	if probe == nil {
		c.probe = alwaysReady{}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Aspect returns the stage aspect ratio.
func (c *Composer) Aspect() Aspect {
	return c.aspect
}

// SetAspect changes the stage aspect ratio for subsequent frames.
func (c *Composer) SetAspect(a Aspect) {
	if a.W > 0 && a.H > 0 {
		c.aspect = a
	}
}

// Compose builds the frame for the given virtual time. Media items active
// at that time become layers in ascending track order, effect items become
// the frame's global parameters. Items that cannot be laid out are skipped
// with a diagnostic, never aborting the rest of the frame.
func (c *Composer) Compose(vt float64, snap *timeline.Snapshot, vp Viewport) *Frame {
	media, fx := c.activeAt(vt, snap)

	frame := &Frame{
		Time:    vt,
		Effects: fx,
		Stage:   letterbox(vp, c.aspect.Ratio()),
		Layers:  make([]Layer, 0, len(media)),
	}

	for _, it := range media {
		layer, ok := c.buildLayer(vt, it, frame.Stage, vp)
		if !ok {
			continue
		}
		frame.Layers = append(frame.Layers, layer)
	}
	return frame
}

// activeAt returns the memoized media partition and effect parameters for
// the instant.
func (c *Composer) activeAt(vt float64, snap *timeline.Snapshot) ([]timeline.Item, Effects) {
	if c.memo.valid && c.memo.time == vt && c.memo.revision == snap.Revision() {
		return c.memo.media, c.memo.effects
	}

	active := snap.ActiveAt(vt)
	media := make([]timeline.Item, 0, len(active))
	var effects []timeline.Item
	for _, it := range active {
		if it.SourceKind() == timeline.SourceEffect {
			effects = append(effects, it)
		} else {
			media = append(media, it)
		}
	}

	c.memo.valid = true
	c.memo.time = vt
	c.memo.revision = snap.Revision()
	c.memo.media = media
	c.memo.effects = effectsAt(vt, effects)
	return c.memo.media, c.memo.effects
}

// buildLayer lays out one media item. Failures are logged and the item is
// dropped from the frame.
func (c *Composer) buildLayer(vt float64, it timeline.Item, stage Rect, vp Viewport) (layer Layer, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("layer build failed", "item", it.ID, "error", r)
			ok = false
		}
	}()

	if it.Source == nil {
		c.logger.Warn("layer has no source", "item", it.ID)
		return Layer{}, false
	}

	box := offsetForTrack(stage, it.Track, vp)
	name := it.Source.Name

	layer = Layer{
		ItemID:    it.ID,
		Track:     it.Track,
		Kind:      it.Source.Kind,
		Box:       box,
		Ready:     c.probe.Ready(it.ID),
		Fill:      placeholderColor(it.Track, name),
		Label:     truncateLabel(name, box.W-2),
		MediaTime: (vt - it.Start) + it.Offset,
	}
	return layer, true
}
