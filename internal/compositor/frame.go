package compositor

import (
	"fmt"
	"hash/fnv"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"

	"github.com/PokeMichele/lumo/internal/timeline"
)

// trackOffsetX and trackOffsetY are the per-track stagger in pixels, so
// simultaneously visible layers from different tracks stay distinguishable
// in the preview.
const (
	trackOffsetX = 4
	trackOffsetY = 2
)

// Rect is an axis-aligned box in viewport pixels.
type Rect struct {
	X, Y, W, H int
}

// Viewport is the pixel area the frame is composed for.
type Viewport struct {
	Width, Height int
}

// Aspect is a display aspect ratio such as 16:9.
type Aspect struct {
	W, H int
}

// Preset aspect ratios offered by the preview surface.
var (
	Aspect16x9 = Aspect{16, 9}
	Aspect4x3  = Aspect{4, 3}
	Aspect9x16 = Aspect{9, 16}
)

// Ratio returns the width over height ratio.
func (a Aspect) Ratio() float64 {
	if a.H == 0 {
		return 0
	}
	return float64(a.W) / float64(a.H)
}

// String returns the aspect in "16:9" form.
func (a Aspect) String() string {
	return fmt.Sprintf("%d:%d", a.W, a.H)
}

// ParseAspect reads an aspect ratio in "16:9" form.
func ParseAspect(s string) (Aspect, error) {
	var a Aspect
	if _, err := fmt.Sscanf(s, "%d:%d", &a.W, &a.H); err != nil {
		return Aspect{}, fmt.Errorf("invalid aspect ratio %q", s)
	}
	if a.W <= 0 || a.H <= 0 {
		return Aspect{}, fmt.Errorf("invalid aspect ratio %q", s)
	}
	return a, nil
}

// Layer is one media item's contribution to a frame, in draw order.
type Layer struct {
	// ItemID names the timeline item this layer renders.
	ItemID string

	// Track is the hosting track order, lower tracks draw first.
	Track int

	// Kind is the source kind, never SourceEffect.
	Kind timeline.SourceKind

	// Box is the letterboxed destination rectangle including the
	// per-track offset.
	Box Rect

	// Ready reports whether the media handle can present. When false the
	// layer renders as a placeholder.
	Ready bool

	// Fill is the placeholder color, keyed by track and source name.
	Fill colorful.Color

	// Label is the placeholder caption, truncated to fit the box.
	Label string

	// MediaTime is the position inside the source in seconds.
	MediaTime float64
}

// Frame is the complete draw sequence for one instant: global effect
// parameters that apply while the layers are drawn, then the layers bottom
// to top. Consumers must reset alpha and filters after the last layer so
// overlay content is unaffected.
type Frame struct {
	// Time is the virtual time the frame was composed for.
	Time float64

	// Effects are the global parameters from the active effect items.
	Effects Effects

	// Stage is the aspect-correct area inside the viewport that layers
	// are fitted to.
	Stage Rect

	// Layers are the media layers in draw order, bottom first.
	Layers []Layer
}

// letterbox fits a box of the given aspect ratio into the viewport,
// centered. A zero ratio or degenerate viewport yields an empty box.
func letterbox(vp Viewport, ratio float64) Rect {
	if vp.Width <= 0 || vp.Height <= 0 || ratio <= 0 {
		return Rect{}
	}

	w := vp.Width
	h := int(float64(w) / ratio)
	if h > vp.Height {
		h = vp.Height
		w = int(float64(h) * ratio)
	}
	return Rect{
		X: (vp.Width - w) / 2,
		Y: (vp.Height - h) / 2,
		W: w,
		H: h,
	}
}

// offsetForTrack shifts a layer's box by the deterministic per-track
// stagger, clamped so the box never leaves the viewport.
func offsetForTrack(box Rect, track int, vp Viewport) Rect {
	box.X += track * trackOffsetX
	box.Y += track * trackOffsetY
	if over := box.X + box.W - vp.Width; over > 0 {
		box.X -= over
	}
	if over := box.Y + box.H - vp.Height; over > 0 {
		box.Y -= over
	}
	if box.X < 0 {
		box.X = 0
	}
	if box.Y < 0 {
		box.Y = 0
	}
	return box
}

// placeholderColor derives a stable, saturated color from the track index
// and source name, so the same item always renders the same placeholder.
func placeholderColor(track int, name string) colorful.Color {
	h := fnv.New32a()
	fmt.Fprintf(h, "%d/%s", track, name)
	hue := float64(h.Sum32()%360)
	return colorful.Hsv(hue, 0.55, 0.82)
}

// truncateLabel cuts a label to the given display width in cells, appending
// an ellipsis when something was cut. Widths are measured in grapheme
// cluster cells, not bytes, so double-width runes stay intact.
func truncateLabel(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if uniseg.StringWidth(s) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}

	var out []byte
	used := 0
	state := -1
	rest := []byte(s)
	for len(rest) > 0 {
		var cluster []byte
		var cw int
		cluster, rest, cw, state = uniseg.FirstGraphemeCluster(rest, state)
		if used+cw > width-1 {
			break
		}
		out = append(out, cluster...)
		used += cw
	}
	return string(out) + "…"
}
