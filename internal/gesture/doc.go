// Package gesture implements the pointer interaction state machine for the
// timeline: Idle, Dragging, Resizing, and RectSelecting.
//
// A gesture begins on pointer-down and ends on release. While it runs, the
// committed timeline model is never touched. Moves update visual-only ghost
// positions resolved through the snap package, so the view can render live
// feedback including illegal-position styling. On release each member is
// validated on its own (track kind compatibility, no overlap), the legal
// subset is committed in one transaction, offenders revert to their
// pre-gesture positions, and the result is pushed to history only when it
// differs from the pre-gesture snapshot.
//
// The Controller also owns the selection set and the clipboard, and carries
// the edit verbs that act on the selection: Split, Delete, Copy, Cut, and
// Paste. Selection is interaction state, it is never written to the model.
//
// Geometry is handled by Layout, which maps between screen pixels and
// timeline coordinates (seconds, track rows). All pointer entry points take
// pixel coordinates so callers feed events straight from the surface.
//
// Example usage:
//
//	ctrl := gesture.NewController(model, resolver, hist)
//	ctrl.PointerDown(120, 40, gesture.ModNone)
//	ctrl.PointerMove(180, 40, gesture.ModNone)
//	for _, g := range ctrl.Ghosts() {
//		// render drag feedback
//		_ = g
//	}
//	ctrl.PointerUp(180, 40, gesture.ModNone)
package gesture
