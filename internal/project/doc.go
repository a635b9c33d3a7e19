// Package project persists timelines to a SQLite database. A project row
// owns its tracks, items and sources, saving replaces them wholesale in
// one transaction and loading rebuilds the item-to-source pointers the
// timeline works with.
//
// The store is a plain file database opened in WAL mode, so a crashed
// session never leaves a half-saved project behind. Schema changes go
// through versioned migrations.
package project
