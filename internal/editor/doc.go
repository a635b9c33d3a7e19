// Package editor is the facade over the editing core. It wires the
// timeline model, snap resolver, gesture controller, history, playback
// clock, sync engine, and compositor into one thread-safe API carrying
// every operation the UI needs: transport, volumes, pointer intents, edit
// verbs, undo/redo, track management, and the frame tick.
//
// Tick is the heartbeat. Within one tick the clock is advanced first,
// then every media handle is resynchronized, then the compositor runs, so
// a frame never shows a time that synchronization has not acted on. The
// compositor is throttled independently of the clock, a gated tick
// returns the previous frame.
//
// Example usage:
//
//	ed := editor.New(editor.WithOpener(opener))
//	ed.SetViewport(960, 540)
//	id, err := ed.PlaceSource(src, 0, 0)
//	if err != nil {
//		return err
//	}
//	ed.SetPlaying(true)
//	frame := ed.Tick(time.Now())
//	_, _ = id, frame
package editor
