package app

import (
	"fmt"
	"time"

	"github.com/PokeMichele/lumo/internal/gesture"
	"github.com/PokeMichele/lumo/internal/surface"
	"github.com/PokeMichele/lumo/internal/timeline"
)

// Steps for the zoom, seek and volume bindings.
const (
	zoomFactor = 1.25
	minZoom    = 1.0
	maxZoom    = 100.0

	seekStep      = 1.0
	seekStepLarge = 5.0
	volumeStep    = 5.0
)

// startInputPolling reads screen events on a dedicated goroutine.
// PollEvent blocks, a finalized screen returns EventNone and ends the
// poller, which Run observes as a closed channel.
func (app *Application) startInputPolling() <-chan surface.Event {
	events := make(chan surface.Event, 100)

	go func() {
		defer close(events)
		for {
			ev := app.screen.PollEvent()
			if ev.Type == surface.EventNone {
				return
			}
			select {
			case events <- ev:
			case <-app.done:
				return
			}
		}
	}()

	return events
}

// handleEvent routes one screen event. Returns ErrQuit when a quit
// binding fired.
func (app *Application) handleEvent(ev surface.Event) error {
	switch ev.Type {
	case surface.EventResize:
		app.width, app.height = ev.Width, ev.Height
		app.markDirty()
		return nil
	case surface.EventKey:
		return app.handleKey(ev)
	case surface.EventMouse:
		return app.handleMouse(ev)
	default:
		return nil
	}
}

func (app *Application) handleKey(ev surface.Event) error {
	switch ev.Key {
	case surface.KeyRune:
		return app.handleRune(ev)
	case surface.KeyEscape:
		if app.editor.GestureState() != gesture.StateIdle {
			app.editor.CancelGesture()
		} else {
			app.editor.ClearSelection()
		}
		app.markDirty()
	case surface.KeyDelete, surface.KeyBackspace:
		if n := app.editor.Delete(); n > 0 {
			app.say("deleted %d", n)
		}
	case surface.KeyLeft:
		app.seekBy(-keySeekStep(ev.Mod))
	case surface.KeyRight:
		app.seekBy(keySeekStep(ev.Mod))
	case surface.KeyUp:
		app.editor.SetMasterVolume(app.editor.MasterVolume() + volumeStep)
		app.markDirty()
	case surface.KeyDown:
		app.editor.SetMasterVolume(app.editor.MasterVolume() - volumeStep)
		app.markDirty()
	case surface.KeyHome:
		app.seekTo(0)
	case surface.KeyEnd:
		app.seekTo(app.editor.Duration())
	}
	return nil
}

// handleRune covers the letter bindings. Control chords arrive as runes
// with ModCtrl set.
func (app *Application) handleRune(ev surface.Event) error {
	if ev.Mod.Has(surface.ModCtrl) {
		switch ev.Rune {
		case 'q', 'c':
			return ErrQuit
		case 's':
			app.saveAction()
		case 'o':
			app.openAction()
		case 'z':
			app.undoAction()
		case 'y':
			app.redoAction()
		}
		return nil
	}

	switch ev.Rune {
	case 'q':
		return ErrQuit
	case ' ':
		app.editor.TogglePlayback()
		app.markDirty()
	case 's':
		if n := app.editor.Split(); n > 0 {
			app.say("split %d", n)
		} else {
			app.say("nothing to split")
		}
	case 'c':
		if n := app.editor.Copy(); n > 0 {
			app.say("copied %d", n)
		}
	case 'x':
		if n := app.editor.Cut(); n > 0 {
			app.say("cut %d", n)
		}
	case 'v':
		if ids := app.editor.Paste(); len(ids) > 0 {
			app.say("pasted %d", len(ids))
		}
	case 'u':
		app.undoAction()
	case 'r':
		app.redoAction()
	case 'a':
		app.addTrackAction(timeline.MediaVideo)
	case 'A':
		app.addTrackAction(timeline.MediaAudio)
	case '+', '=':
		app.zoom(zoomFactor)
	case '-':
		app.zoom(1 / zoomFactor)
	}
	return nil
}

func keySeekStep(mod surface.ModMask) float64 {
	if mod.Has(surface.ModShift) {
		return seekStepLarge
	}
	return seekStep
}

// handleMouse translates screen coordinates into the timeline area and
// turns button transitions into pointer intents. A press in the ruler
// scrubs the playhead instead of starting a gesture. Presses outside the
// timeline area or in the track gutter are swallowed along with the rest
// of their gesture, the gutter would otherwise hit items at time zero.
func (app *Application) handleMouse(ev surface.Event) error {
	switch ev.Button {
	case surface.MouseWheelUp:
		app.zoom(zoomFactor)
		return nil
	case surface.MouseWheelDown:
		app.zoom(1 / zoomFactor)
		return nil
	}

	app.mu.Lock()
	view := app.view
	app.mu.Unlock()

	cur := app.editor.Snapshot()
	l := app.editor.Layout()
	_, tl, _ := view.Areas(app.width, app.height, cur.TrackCount())
	x := ev.MouseX - tl.X
	y := ev.MouseY - tl.Y
	mods := pointerModifier(ev.Mod)

	pressed := ev.Button == surface.MouseLeft
	held := app.button == surface.MouseLeft

	switch {
	case pressed && !held:
		app.button = surface.MouseLeft
		if !tl.Contains(ev.MouseX, ev.MouseY) {
			app.outside = true
			return nil
		}
		app.outside = false
		if y < l.RulerHeight {
			app.scrubbing = true
			app.seekTo(l.TimeAt(x))
			return nil
		}
		if x < l.GutterWidth {
			app.outside = true
			return nil
		}
		app.editor.PointerDown(x, y, mods)
		app.markDirty()

	case pressed && held:
		switch {
		case app.outside:
		case app.scrubbing:
			app.seekTo(l.TimeAt(x))
		default:
			app.editor.PointerMove(x, y, mods)
			app.markDirty()
		}

	case !pressed && held:
		app.button = surface.MouseNone
		switch {
		case app.outside:
			app.outside = false
		case app.scrubbing:
			app.scrubbing = false
		default:
			app.editor.PointerUp(x, y, mods)
			app.markDirty()
		}
	}
	return nil
}

// pointerModifier maps key modifiers to gesture modifiers. Either one
// makes a click extend the selection instead of replacing it.
func pointerModifier(mod surface.ModMask) gesture.Modifier {
	var m gesture.Modifier
	if mod.Has(surface.ModShift) {
		m |= gesture.ModShift
	}
	if mod.Has(surface.ModCtrl) {
		m |= gesture.ModCtrl
	}
	return m
}

func (app *Application) undoAction() {
	if err := app.editor.Undo(); err != nil {
		app.say("%v", err)
		return
	}
	app.say("undo")
}

func (app *Application) redoAction() {
	if err := app.editor.Redo(); err != nil {
		app.say("%v", err)
		return
	}
	app.say("redo")
}

func (app *Application) addTrackAction(kind timeline.MediaKind) {
	order, err := app.editor.AddTrack(kind)
	if err != nil {
		app.say("%v", err)
		return
	}
	app.say("added %s track %d", kind, order)
}

func (app *Application) saveAction() {
	if err := app.SaveProject(); err != nil {
		app.say("save failed: %v", err)
		return
	}
	app.say("saved %q", app.projectName)
}

func (app *Application) openAction() {
	if err := app.LoadProject(app.projectName); err != nil {
		app.say("open failed: %v", err)
		return
	}
	app.say("opened %q", app.projectName)
}

func (app *Application) seekTo(t float64) {
	app.editor.SetTime(max(t, 0))
	app.markDirty()
}

func (app *Application) seekBy(dt float64) {
	app.seekTo(app.editor.Time() + dt)
}

// zoom scales the time axis, keeping gesture hit testing, the snap window
// and the view in agreement.
func (app *Application) zoom(factor float64) {
	l := app.editor.Layout()
	pps := min(max(l.PixelsPerSecond*factor, minZoom), maxZoom)
	if pps == l.PixelsPerSecond {
		return
	}
	l.PixelsPerSecond = pps
	app.editor.SetLayout(l)

	app.mu.Lock()
	app.view = surface.NewView(surface.WithLayout(l))
	app.dirty = true
	app.mu.Unlock()
}

// say shows a transient status message.
func (app *Application) say(format string, args ...any) {
	app.mu.Lock()
	app.message = fmt.Sprintf(format, args...)
	app.messageAt = time.Now()
	app.dirty = true
	app.mu.Unlock()
}

// markDirty forces a draw on the next tick even while paused.
func (app *Application) markDirty() {
	app.mu.Lock()
	app.dirty = true
	app.mu.Unlock()
}

// tick draws one frame, or nothing when paused with no pending changes.
func (app *Application) tick(now time.Time) {
	app.mu.Lock()
	if app.message != "" && now.Sub(app.messageAt) > messageTTL {
		app.message = ""
		app.dirty = true
	}
	if !app.dirty && !app.editor.Playing() {
		app.mu.Unlock()
		return
	}
	app.dirty = false
	app.mu.Unlock()

	app.render(now)
}

// render sizes the preview to the view, runs one editor tick and draws
// the gathered state.
func (app *Application) render(now time.Time) {
	app.mu.Lock()
	view := app.view
	msg := app.message
	app.mu.Unlock()

	cur := app.editor.Snapshot()
	preview, _, _ := view.Areas(app.width, app.height, cur.TrackCount())
	if preview.W > 0 && preview.H > 0 {
		app.editor.SetViewport(preview.W, preview.H)
	}
	frame := app.editor.Tick(now)

	st := surface.State{
		Snapshot:  cur,
		Frame:     frame,
		Time:      app.editor.Time(),
		Playing:   app.editor.Playing(),
		Volume:    app.editor.MasterVolume(),
		Selection: app.editor.Selection(),
		Ghosts:    app.editor.Ghosts(),
		Message:   msg,
	}
	if band, ok := app.editor.Band(); ok {
		st.Band = band
		st.HasBand = true
	}
	view.Render(app.screen, st)
}
