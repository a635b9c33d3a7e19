// Package app wires the editing core to the terminal. It owns the
// configuration, the editor facade, the media library, the project store,
// the script runner and the screen, and runs the cooperative loop that
// turns input events and ticker frames into edits and redraws.
//
// The loop is single-threaded: one goroutine polls the screen for events,
// the Run goroutine consumes them and drives presentation ticks. Every
// tick advances the clock, resynchronizes media handles and composes a
// frame, in that order. While playback is paused and nothing changed, a
// tick does no compose work at all.
package app
