package gesture

import (
	"math"

	"github.com/PokeMichele/lumo/internal/timeline"
)

// Layout defaults, in pixels.
const (
	DefaultPixelsPerSecond = 50.0
	DefaultTrackHeight     = 28
	DefaultRulerHeight     = 20
	DefaultGutterWidth     = 0
	DefaultEdgeGrabWidth   = 6
)

// Point is a screen coordinate in pixels.
type Point struct {
	X int
	Y int
}

// Rect is a pixel rectangle with a non-negative width and height.
type Rect struct {
	X int
	Y int
	W int
	H int
}

// RectBetween returns the normalized rectangle spanned by two corner
// points in any order.
func RectBetween(a, b Point) Rect {
	x0, x1 := min(a.X, b.X), max(a.X, b.X)
	y0, y1 := min(a.Y, b.Y), max(a.Y, b.Y)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Intersects reports whether the two rectangles overlap. A degenerate
// band from a purely horizontal or vertical drag still crosses items.
func (r Rect) Intersects(other Rect) bool {
	return r.X < other.X+other.W && other.X < r.X+r.W &&
		r.Y < other.Y+other.H && other.Y < r.Y+r.H
}

// Layout maps between screen pixels and timeline coordinates. Time zero
// sits at GutterWidth, track row 0 starts below the ruler. The zoom level
// is PixelsPerSecond.
type Layout struct {
	PixelsPerSecond float64
	TrackHeight     int
	RulerHeight     int
	GutterWidth     int
	EdgeGrabWidth   int
}

// DefaultLayout returns the layout used when the caller does not supply
// one.
func DefaultLayout() Layout {
	return Layout{
		PixelsPerSecond: DefaultPixelsPerSecond,
		TrackHeight:     DefaultTrackHeight,
		RulerHeight:     DefaultRulerHeight,
		GutterWidth:     DefaultGutterWidth,
		EdgeGrabWidth:   DefaultEdgeGrabWidth,
	}
}

// TimeAt converts a horizontal pixel position to timeline seconds, clamped
// to zero at the left edge.
func (l Layout) TimeAt(x int) float64 {
	t := float64(x-l.GutterWidth) / l.PixelsPerSecond
	if t < 0 {
		return 0
	}
	return t
}

// XAt converts timeline seconds to a horizontal pixel position.
func (l Layout) XAt(t float64) int {
	return l.GutterWidth + int(math.Round(t*l.PixelsPerSecond))
}

// TrackAt converts a vertical pixel position to a track row. Positions
// above the first row return -1, callers clamp as needed.
func (l Layout) TrackAt(y int) int {
	if y < l.RulerHeight {
		return -1
	}
	return (y - l.RulerHeight) / l.TrackHeight
}

// YAt converts a track row to the vertical pixel position of its top edge.
func (l Layout) YAt(track int) int {
	return l.RulerHeight + track*l.TrackHeight
}

// ItemRect returns the pixel bounding box of an item.
func (l Layout) ItemRect(it timeline.Item) Rect {
	x0 := l.XAt(it.Start)
	x1 := l.XAt(it.End())
	return Rect{X: x0, Y: l.YAt(it.Track), W: x1 - x0, H: l.TrackHeight}
}

// HitTest returns the item under the pointer, if any.
func (l Layout) HitTest(snap *timeline.Snapshot, x, y int) (timeline.Item, bool) {
	track := l.TrackAt(y)
	if track < 0 {
		return timeline.Item{}, false
	}
	t := l.TimeAt(x)
	for _, it := range snap.ItemsOnTrack(track) {
		if it.Contains(t) {
			return it, true
		}
	}
	return timeline.Item{}, false
}

// OnTrailingEdge reports whether the pointer sits on the item's trailing
// edge grab zone, the rightmost EdgeGrabWidth pixels of the item.
func (l Layout) OnTrailingEdge(it timeline.Item, x int) bool {
	edge := l.XAt(it.End())
	return x > edge-l.EdgeGrabWidth && x <= edge
}
