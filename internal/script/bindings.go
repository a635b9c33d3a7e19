package script

import (
	"errors"

	lua "github.com/yuin/gopher-lua"

	"github.com/PokeMichele/lumo/internal/editor"
	"github.com/PokeMichele/lumo/internal/history"
	"github.com/PokeMichele/lumo/internal/library"
	"github.com/PokeMichele/lumo/internal/timeline"
)

// editorModule implements the lumo API module.
type editorModule struct {
	ed  *editor.Editor
	lib *library.Library
}

// register installs the lumo table into the Lua state.
func (m *editorModule) register(L *lua.LState) {
	mod := L.NewTable()

	// Transport
	L.SetField(mod, "time", L.NewFunction(m.time))
	L.SetField(mod, "set_time", L.NewFunction(m.setTime))
	L.SetField(mod, "play", L.NewFunction(m.play))
	L.SetField(mod, "pause", L.NewFunction(m.pause))
	L.SetField(mod, "toggle", L.NewFunction(m.toggle))
	L.SetField(mod, "playing", L.NewFunction(m.playing))
	L.SetField(mod, "duration", L.NewFunction(m.duration))

	// Volumes
	L.SetField(mod, "master_volume", L.NewFunction(m.masterVolume))
	L.SetField(mod, "set_master_volume", L.NewFunction(m.setMasterVolume))
	L.SetField(mod, "set_volume", L.NewFunction(m.setVolume))

	// Library
	L.SetField(mod, "import", L.NewFunction(m.importSource))
	L.SetField(mod, "import_effect", L.NewFunction(m.importEffect))
	L.SetField(mod, "sources", L.NewFunction(m.sources))

	// Edits
	L.SetField(mod, "place", L.NewFunction(m.place))
	L.SetField(mod, "add_track", L.NewFunction(m.addTrack))
	L.SetField(mod, "remove_track", L.NewFunction(m.removeTrack))
	L.SetField(mod, "rename_track", L.NewFunction(m.renameTrack))
	L.SetField(mod, "split", L.NewFunction(m.split))
	L.SetField(mod, "delete", L.NewFunction(m.deleteSelection))
	L.SetField(mod, "copy", L.NewFunction(m.copySelection))
	L.SetField(mod, "cut", L.NewFunction(m.cutSelection))
	L.SetField(mod, "paste", L.NewFunction(m.paste))

	// Selection
	L.SetField(mod, "select", L.NewFunction(m.selectItem))
	L.SetField(mod, "clear_selection", L.NewFunction(m.clearSelection))
	L.SetField(mod, "selection", L.NewFunction(m.selection))

	// History
	L.SetField(mod, "undo", L.NewFunction(m.undo))
	L.SetField(mod, "redo", L.NewFunction(m.redo))
	L.SetField(mod, "can_undo", L.NewFunction(m.canUndo))
	L.SetField(mod, "can_redo", L.NewFunction(m.canRedo))

	// Queries
	L.SetField(mod, "items", L.NewFunction(m.items))
	L.SetField(mod, "tracks", L.NewFunction(m.tracks))

	L.SetGlobal("lumo", mod)
}

// time() -> seconds
// Returns the playhead position.
func (m *editorModule) time(L *lua.LState) int {
	L.Push(lua.LNumber(m.ed.Time()))
	return 1
}

// set_time(seconds) -> nil
// Seeks the playhead. Negative times clamp to zero.
func (m *editorModule) setTime(L *lua.LState) int {
	t := L.CheckNumber(1)
	m.ed.SetTime(float64(t))
	return 0
}

// play() -> nil
func (m *editorModule) play(L *lua.LState) int {
	m.ed.SetPlaying(true)
	return 0
}

// pause() -> nil
func (m *editorModule) pause(L *lua.LState) int {
	m.ed.SetPlaying(false)
	return 0
}

// toggle() -> bool
// Flips playback and returns the new state.
func (m *editorModule) toggle(L *lua.LState) int {
	L.Push(lua.LBool(m.ed.TogglePlayback()))
	return 1
}

// playing() -> bool
func (m *editorModule) playing(L *lua.LState) int {
	L.Push(lua.LBool(m.ed.Playing()))
	return 1
}

// duration() -> seconds
// Returns the end of the last item on the timeline.
func (m *editorModule) duration(L *lua.LState) int {
	L.Push(lua.LNumber(m.ed.Duration()))
	return 1
}

// master_volume() -> percent
func (m *editorModule) masterVolume(L *lua.LState) int {
	L.Push(lua.LNumber(m.ed.MasterVolume()))
	return 1
}

// set_master_volume(percent) -> nil
func (m *editorModule) setMasterVolume(L *lua.LState) int {
	v := L.CheckNumber(1)
	m.ed.SetMasterVolume(float64(v))
	return 0
}

// set_volume(item_id, percent) -> nil
// Sets an item's volume, clamped to 0..200.
func (m *editorModule) setVolume(L *lua.LState) int {
	id := L.CheckString(1)
	v := L.CheckNumber(2)
	if err := m.ed.SetItemVolume(id, float64(v)); err != nil {
		L.RaiseError("set_volume: %v", err)
		return 0
	}
	return 0
}

// import(kind, name, handle, duration) -> source_id
// Registers a media source. Kind is "video", "audio" or "image".
func (m *editorModule) importSource(L *lua.LState) int {
	kindName := L.CheckString(1)
	name := L.CheckString(2)
	handle := L.OptString(3, "")
	duration := L.OptNumber(4, 0)

	kind, err := timeline.ParseSourceKind(kindName)
	if err != nil {
		L.RaiseError("import: %v", err)
		return 0
	}
	src, err := m.lib.Import(kind, name, handle, float64(duration))
	if err != nil {
		L.RaiseError("import: %v", err)
		return 0
	}
	L.Push(lua.LString(src.ID))
	return 1
}

// import_effect(effect, name, intensity) -> source_id
// Registers an effect source, for example "blur" or "fadeIn".
func (m *editorModule) importEffect(L *lua.LState) int {
	effectName := L.CheckString(1)
	name := L.CheckString(2)
	intensity := L.OptNumber(3, 0)

	effect, err := timeline.ParseEffectKind(effectName)
	if err != nil {
		L.RaiseError("import_effect: %v", err)
		return 0
	}
	src, err := m.lib.ImportEffect(effect, name, float64(intensity))
	if err != nil {
		L.RaiseError("import_effect: %v", err)
		return 0
	}
	L.Push(lua.LString(src.ID))
	return 1
}

// sources() -> array of {id, kind, name, handle, duration, effect, intensity}
func (m *editorModule) sources(L *lua.LState) int {
	out := L.NewTable()
	for i, src := range m.lib.All() {
		t := L.NewTable()
		t.RawSetString("id", lua.LString(src.ID))
		t.RawSetString("kind", lua.LString(src.Kind.String()))
		t.RawSetString("name", lua.LString(src.Name))
		t.RawSetString("handle", lua.LString(src.Handle))
		t.RawSetString("duration", lua.LNumber(src.Duration))
		t.RawSetString("effect", lua.LString(src.Effect.String()))
		t.RawSetString("intensity", lua.LNumber(src.Intensity))
		out.RawSetInt(i+1, t)
	}
	L.Push(out)
	return 1
}

// place(source_id, track, at) -> item_id
// Drops a source onto a track, resolving collisions like a drag would.
func (m *editorModule) place(L *lua.LState) int {
	sourceID := L.CheckString(1)
	track := L.CheckInt(2)
	at := L.CheckNumber(3)

	src, ok := m.lib.Get(sourceID)
	if !ok {
		L.RaiseError("place: unknown source %s", sourceID)
		return 0
	}
	id, err := m.ed.PlaceSource(src, track, float64(at))
	if err != nil {
		L.RaiseError("place: %v", err)
		return 0
	}
	L.Push(lua.LString(id))
	return 1
}

// add_track(kind) -> order
// Appends a "video" or "audio" track and returns its order index.
func (m *editorModule) addTrack(L *lua.LState) int {
	kindName := L.CheckString(1)

	kind, err := timeline.ParseMediaKind(kindName)
	if err != nil {
		L.RaiseError("add_track: %v", err)
		return 0
	}
	order, err := m.ed.AddTrack(kind)
	if err != nil {
		L.RaiseError("add_track: %v", err)
		return 0
	}
	L.Push(lua.LNumber(order))
	return 1
}

// remove_track(order) -> nil
// Removes an empty track. The last track of a kind stays.
func (m *editorModule) removeTrack(L *lua.LState) int {
	order := L.CheckInt(1)
	if err := m.ed.RemoveTrack(order); err != nil {
		L.RaiseError("remove_track: %v", err)
		return 0
	}
	return 0
}

// rename_track(order, label) -> nil
func (m *editorModule) renameTrack(L *lua.LState) int {
	order := L.CheckInt(1)
	label := L.CheckString(2)
	if err := m.ed.RenameTrack(order, label); err != nil {
		L.RaiseError("rename_track: %v", err)
		return 0
	}
	return 0
}

// split() -> count
// Splits every selected item at the playhead.
func (m *editorModule) split(L *lua.LState) int {
	L.Push(lua.LNumber(m.ed.Split()))
	return 1
}

// delete() -> count
// Deletes the selected items.
func (m *editorModule) deleteSelection(L *lua.LState) int {
	L.Push(lua.LNumber(m.ed.Delete()))
	return 1
}

// copy() -> count
func (m *editorModule) copySelection(L *lua.LState) int {
	L.Push(lua.LNumber(m.ed.Copy()))
	return 1
}

// cut() -> count
func (m *editorModule) cutSelection(L *lua.LState) int {
	L.Push(lua.LNumber(m.ed.Cut()))
	return 1
}

// paste() -> array of item ids
// Pastes the clipboard at the playhead.
func (m *editorModule) paste(L *lua.LState) int {
	out := L.NewTable()
	for i, id := range m.ed.Paste() {
		out.RawSetInt(i+1, lua.LString(id))
	}
	L.Push(out)
	return 1
}

// select(item_id, additive) -> nil
// Selects an item, replacing the selection unless additive is true.
func (m *editorModule) selectItem(L *lua.LState) int {
	id := L.CheckString(1)
	additive := L.OptBool(2, false)
	m.ed.Select(id, additive)
	return 0
}

// clear_selection() -> nil
func (m *editorModule) clearSelection(L *lua.LState) int {
	m.ed.ClearSelection()
	return 0
}

// selection() -> array of item ids
func (m *editorModule) selection(L *lua.LState) int {
	out := L.NewTable()
	for i, id := range m.ed.Selection() {
		out.RawSetInt(i+1, lua.LString(id))
	}
	L.Push(out)
	return 1
}

// undo() -> bool
// Returns false when there is nothing to undo.
func (m *editorModule) undo(L *lua.LState) int {
	err := m.ed.Undo()
	if errors.Is(err, history.ErrNothingToUndo) {
		L.Push(lua.LBool(false))
		return 1
	}
	if err != nil {
		L.RaiseError("undo: %v", err)
		return 0
	}
	L.Push(lua.LBool(true))
	return 1
}

// redo() -> bool
// Returns false when there is nothing to redo.
func (m *editorModule) redo(L *lua.LState) int {
	err := m.ed.Redo()
	if errors.Is(err, history.ErrNothingToRedo) {
		L.Push(lua.LBool(false))
		return 1
	}
	if err != nil {
		L.RaiseError("redo: %v", err)
		return 0
	}
	L.Push(lua.LBool(true))
	return 1
}

// can_undo() -> bool
func (m *editorModule) canUndo(L *lua.LState) int {
	L.Push(lua.LBool(m.ed.CanUndo()))
	return 1
}

// can_redo() -> bool
func (m *editorModule) canRedo(L *lua.LState) int {
	L.Push(lua.LBool(m.ed.CanRedo()))
	return 1
}

// items() -> array of {id, source, name, kind, track, start, duration, offset, volume}
// Items come back sorted by track then start time.
func (m *editorModule) items(L *lua.LState) int {
	out := L.NewTable()
	for i, it := range m.ed.Snapshot().Items() {
		t := L.NewTable()
		t.RawSetString("id", lua.LString(it.ID))
		t.RawSetString("source", lua.LString(it.SourceID))
		if it.Source != nil {
			t.RawSetString("name", lua.LString(it.Source.Name))
			t.RawSetString("kind", lua.LString(it.Source.Kind.String()))
		}
		t.RawSetString("track", lua.LNumber(it.Track))
		t.RawSetString("start", lua.LNumber(it.Start))
		t.RawSetString("duration", lua.LNumber(it.Duration))
		t.RawSetString("offset", lua.LNumber(it.Offset))
		t.RawSetString("volume", lua.LNumber(it.Volume))
		out.RawSetInt(i+1, t)
	}
	L.Push(out)
	return 1
}

// tracks() -> array of {order, kind, label}
func (m *editorModule) tracks(L *lua.LState) int {
	out := L.NewTable()
	for i, tr := range m.ed.Snapshot().Tracks() {
		t := L.NewTable()
		t.RawSetString("order", lua.LNumber(tr.Order))
		t.RawSetString("kind", lua.LString(tr.Kind.String()))
		t.RawSetString("label", lua.LString(tr.Label))
		out.RawSetInt(i+1, t)
	}
	L.Push(out)
	return 1
}
