// Package playback keeps independently loaded media handles phase-locked to
// a single virtual time. The Clock advances virtual time from wall-clock
// deltas between presentation frames, and the Engine owns one media handle
// per timeline item, creating them lazily, seeking them only when they
// drift, and tearing them down when their item leaves the timeline.
//
// Handle faults are local. A handle that refuses to play or fails to decode
// is logged and left paused, it never halts the clock or the other handles.
package playback
