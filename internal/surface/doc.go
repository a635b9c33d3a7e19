// Package surface renders the editor to a terminal.
//
// The package separates the drawing contract from the device behind it. A
// Surface is the minimal grid the view draws on, a Screen is a Surface with
// a lifecycle and an input event stream. Terminal implements Screen over
// tcell, Memory implements it in process for tests.
//
// View is the only painter. It consumes exported editor state, the
// committed snapshot, gesture ghosts, the selection band, and the composed
// preview frame, and never mutates any of it.
package surface
