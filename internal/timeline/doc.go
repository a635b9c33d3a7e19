// Package timeline provides the thread-safe timeline data model at the heart
// of the editor engine. A timeline is an ordered set of tracks, each hosting
// non-overlapping media items positioned on a shared time axis measured in
// seconds.
//
// The timeline package provides:
//
//   - Thread-safe read/write access via sync.RWMutex
//   - Whole-timeline commits validated against the model invariants
//   - Read-only snapshots for concurrent access
//   - Pure structural operations (split, track insertion and removal)
//   - Revision tracking for change management
//
// Basic usage:
//
//	// Create a model with the default track pair
//	model := timeline.NewModel()
//
//	// Build the next state and commit it atomically
//	snap := model.Snapshot()
//	items := append(snap.Items(), item)
//	if err := model.Commit(items, snap.Tracks()); err != nil {
//	    // the commit was rejected, the model is unchanged
//	}
//
//	// Query a consistent view
//	snap = model.Snapshot()
//	active := snap.ActiveAt(12.5)
//
// Invariants:
//
// Every committed state satisfies the following, and Commit rejects any
// proposed state that does not:
//
//   - Each item references an existing track whose kind accepts the item's
//     source kind (video tracks host video, image and effect sources; audio
//     tracks host audio sources)
//   - No two items on the same track overlap by more than the jitter epsilon
//   - Item start times are non-negative and durations are positive
//   - At least one video track and one audio track exist
//   - Track order indexes are dense, zero-based and unique
//
// Thread Safety:
//
// All Model methods are thread-safe. Commit acquires an exclusive write lock,
// Snapshot acquires a read lock and returns an immutable view that never
// changes even as the model moves on.
package timeline
