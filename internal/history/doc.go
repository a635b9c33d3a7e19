// Package history keeps undo and redo stacks of committed timeline
// snapshots. Every accepted edit pushes the resulting full snapshot, pushes
// that change nothing are dropped, and undo/redo hand back the snapshot to
// restore.
package history
