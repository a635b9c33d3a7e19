package snap

import (
	"math"
	"sort"

	"github.com/PokeMichele/lumo/internal/timeline"
)

// Resolver defaults. The threshold is in screen pixels and is divided by the
// current zoom to get the snap window in seconds.
const (
	DefaultThreshold       = 10.0
	DefaultPixelsPerSecond = 50.0
	DefaultMinDuration     = 0.1
	DefaultSearchStep      = 0.05
	DefaultSearchRadius    = 30.0
)

// legalEps absorbs float noise when comparing interval edges. It is far
// below the model's jitter epsilon, a placement the resolver accepts is
// always clean enough to commit.
const legalEps = 1e-9

// Resolver computes magnetic snap candidates and legal placements for drag
// and resize gestures. It holds view parameters (zoom, snap threshold) and
// search tuning, the timeline state is passed per call.
type Resolver struct {
	threshold    float64
	pps          float64
	minDuration  float64
	searchStep   float64
	searchRadius float64
}

// Option is a functional option for configuring a Resolver.
type Option func(*Resolver)

// WithThreshold sets the snap threshold in pixels.
func WithThreshold(px float64) Option {
	return func(r *Resolver) {
		if px >= 0 {
			r.threshold = px
		}
	}
}

// WithPixelsPerSecond sets the zoom level used to convert the pixel
// threshold into seconds.
func WithPixelsPerSecond(pps float64) Option {
	return func(r *Resolver) {
		if pps > 0 {
			r.pps = pps
		}
	}
}

// WithMinDuration sets the smallest duration a resize may produce.
func WithMinDuration(d float64) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.minDuration = d
		}
	}
}

// WithSearch tunes the outward search for a legal position, step and radius
// in seconds.
func WithSearch(step, radius float64) Option {
	return func(r *Resolver) {
		if step > 0 {
			r.searchStep = step
		}
		if radius > 0 {
			r.searchRadius = radius
		}
	}
}

// NewResolver creates a resolver with the default tuning.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		threshold:    DefaultThreshold,
		pps:          DefaultPixelsPerSecond,
		minDuration:  DefaultMinDuration,
		searchStep:   DefaultSearchStep,
		searchRadius: DefaultSearchRadius,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetPixelsPerSecond updates the zoom level. The interaction layer calls
// this when the timeline view zooms so the snap window stays a constant
// screen distance.
func (r *Resolver) SetPixelsPerSecond(pps float64) {
	if pps > 0 {
		r.pps = pps
	}
}

// Window returns the snap window in seconds at the current zoom.
func (r *Resolver) Window() float64 {
	return r.threshold / r.pps
}

// MinDuration returns the resize duration floor in seconds.
func (r *Resolver) MinDuration() float64 {
	return r.minDuration
}

// Move is the resolved destination of a drag gesture.
type Move struct {
	// Start is the resolved start time of the moved item.
	Start float64

	// Track is the destination track order.
	Track int

	// Snapped reports whether an edge aligned to a snap point.
	Snapped bool

	// SnapPoint is the time an edge aligned to, valid when Snapped.
	SnapPoint float64

	// Legal is false when no legal position exists within the search
	// radius. The gesture must revert on release.
	Legal bool
}

// Resize is the resolved duration of a trim gesture on an item's trailing
// edge.
type Resize struct {
	// Duration is the resolved item duration.
	Duration float64

	// Snapped reports whether the trailing edge aligned to a snap point.
	Snapped bool

	// SnapPoint is the time the edge aligned to, valid when Snapped.
	SnapPoint float64
}

// Points returns the snap-point set for the given track: the timeline
// origin plus both edges of every item on the track not in the excluded
// set. The result is sorted and deduplicated.
func (r *Resolver) Points(snap *timeline.Snapshot, track int, exclude map[string]bool) []float64 {
	points := []float64{0}
	for _, it := range snap.ItemsOnTrack(track) {
		if exclude[it.ID] {
			continue
		}
		points = append(points, it.Start, it.End())
	}
	sort.Float64s(points)

	out := points[:1]
	for _, p := range points[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}

// legal reports whether an item spanning [start, start+duration) on the
// given track overlaps no item outside the excluded set. Unlike the model's
// commit check this applies no jitter tolerance, snapped placements are
// exactly flush.
func legal(snap *timeline.Snapshot, track int, start, duration float64, exclude map[string]bool) bool {
	end := start + duration
	for _, other := range snap.ItemsOnTrack(track) {
		if exclude[other.ID] {
			continue
		}
		if min(end, other.End())-max(start, other.Start) > legalEps {
			return false
		}
	}
	return true
}

// Legal reports whether the item may occupy [start, start+item.Duration)
// on the given track without overlapping any item outside the excluded
// set. Secondary members of a multi-item drag follow the primary's delta
// instead of resolving their own snap, the gesture layer checks them with
// this before committing.
func (r *Resolver) Legal(snap *timeline.Snapshot, item timeline.Item, start float64, track int, exclude map[string]bool) bool {
	if exclude == nil {
		exclude = map[string]bool{item.ID: true}
	}
	if start < 0 {
		return false
	}
	return legal(snap, track, start, item.Duration, exclude)
}

// ResolveMove resolves a drag proposal to a legal start time on the target
// track. Both edges of the moving item are tested against every snap point,
// the closest legal alignment wins with ties going to the lowest point.
// When nothing snaps the raw proposal is used if legal, otherwise the
// nearest legal time within the search radius. If even that fails the move
// is flagged illegal so the gesture can revert on release.
//
// The exclude set names the items taking part in the gesture, they act
// neither as obstacles nor as snap targets.
func (r *Resolver) ResolveMove(snap *timeline.Snapshot, item timeline.Item, start float64, track int, exclude map[string]bool) Move {
	if exclude == nil {
		exclude = map[string]bool{item.ID: true}
	}
	if start < 0 {
		start = 0
	}
	dur := item.Duration
	window := r.Window()

	type candidate struct {
		start float64
		point float64
		dist  float64
	}
	var best *candidate
	consider := func(alignedStart, point, dist float64) {
		if alignedStart < 0 {
			return
		}
		if !legal(snap, track, alignedStart, dur, exclude) {
			return
		}
		if best == nil || dist < best.dist || (dist == best.dist && point < best.point) {
			best = &candidate{start: alignedStart, point: point, dist: dist}
		}
	}

	for _, p := range r.Points(snap, track, exclude) {
		if d := math.Abs(start - p); d <= window {
			consider(p, p, d)
		}
		if d := math.Abs(start + dur - p); d <= window {
			consider(p-dur, p, d)
		}
	}
	if best != nil {
		return Move{Start: best.start, Track: track, Snapped: true, SnapPoint: best.point, Legal: true}
	}

	if legal(snap, track, start, dur, exclude) {
		return Move{Start: start, Track: track, Legal: true}
	}
	if t, ok := r.nearestLegal(snap, track, start, dur, exclude); ok {
		return Move{Start: t, Track: track, Legal: true}
	}
	return Move{Start: start, Track: track, Legal: false}
}

// ResolvePlace resolves a programmatic insertion (paste, drop from the
// library) to a legal start time without magnetic snapping. The raw time
// wins when legal so insertions land exactly at the playhead, otherwise
// the nearest legal position within the search radius is used.
func (r *Resolver) ResolvePlace(snap *timeline.Snapshot, item timeline.Item, start float64, track int) Move {
	exclude := map[string]bool{item.ID: true}
	if start < 0 {
		start = 0
	}
	if legal(snap, track, start, item.Duration, exclude) {
		return Move{Start: start, Track: track, Legal: true}
	}
	if t, ok := r.nearestLegal(snap, track, start, item.Duration, exclude); ok {
		return Move{Start: t, Track: track, Legal: true}
	}
	return Move{Start: start, Track: track, Legal: false}
}

// nearestLegal searches outward from the desired start for the closest
// legal position on the track. Flush positions against existing item edges
// are tried first so the result hugs neighbors exactly, then a step scan
// covers the gaps.
func (r *Resolver) nearestLegal(snap *timeline.Snapshot, track int, start, duration float64, exclude map[string]bool) (float64, bool) {
	bestDist := math.MaxFloat64
	var bestT float64
	found := false

	try := func(t float64) {
		if t < 0 {
			return
		}
		d := math.Abs(t - start)
		if d > r.searchRadius {
			return
		}
		if !legal(snap, track, t, duration, exclude) {
			return
		}
		if d < bestDist || (d == bestDist && t < bestT) {
			bestDist, bestT, found = d, t, true
		}
	}

	try(0)
	for _, other := range snap.ItemsOnTrack(track) {
		if exclude[other.ID] {
			continue
		}
		try(other.End())
		try(other.Start - duration)
	}
	for i := 1; float64(i)*r.searchStep <= r.searchRadius; i++ {
		d := float64(i) * r.searchStep
		try(start + d)
		try(start - d)
	}

	return bestT, found
}

// ResolveResize resolves a trailing-edge trim to a legal duration. The
// leading edge stays fixed, the trailing edge snaps to nearby points, and
// the result is clamped to the duration floor and against the next item on
// the track.
func (r *Resolver) ResolveResize(snap *timeline.Snapshot, item timeline.Item, duration float64) Resize {
	exclude := map[string]bool{item.ID: true}
	window := r.Window()
	edge := item.Start + duration

	snapped := false
	var snapPoint float64
	bestDist := math.MaxFloat64
	for _, p := range r.Points(snap, item.Track, exclude) {
		if p <= item.Start {
			continue
		}
		d := math.Abs(edge - p)
		if d > window {
			continue
		}
		if !legal(snap, item.Track, item.Start, p-item.Start, exclude) {
			continue
		}
		if d < bestDist || (d == bestDist && p < snapPoint) {
			bestDist, snapPoint, snapped = d, p, true
		}
	}
	if snapped {
		duration = snapPoint - item.Start
	}

	if duration < r.minDuration {
		duration = r.minDuration
		snapped = false
	}

	// The trailing edge may not cross into the next item.
	for _, other := range snap.ItemsOnTrack(item.Track) {
		if exclude[other.ID] || other.Start < item.Start {
			continue
		}
		if maxDur := other.Start - item.Start; duration > maxDur {
			duration = maxDur
			snapped = false
		}
	}

	return Resize{Duration: duration, Snapped: snapped, SnapPoint: snapPoint}
}
