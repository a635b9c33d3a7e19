package surface

// EventType identifies the type of input event.
type EventType int

const (
	// EventNone is returned when the screen has been finalized, or for
	// input the screen cannot represent.
	EventNone EventType = iota
	EventKey
	EventMouse
	EventResize
)

// Event represents one input event. The discriminator is Type, the other
// fields are valid per type.
type Event struct {
	Type EventType

	// Key event fields.
	Key  Key
	Rune rune
	Mod  ModMask

	// Mouse event fields. Button is the current button state, a motion
	// event repeats the held button and a release carries MouseNone.
	MouseX, MouseY int
	Button         MouseButton

	// Resize event fields.
	Width, Height int
}

// Key represents a keyboard key.
type Key int

// Key constants for special keys. Control chords arrive as KeyRune with
// the letter in Rune and ModCtrl set.
const (
	KeyNone Key = iota
	KeyRune
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
)

// ModMask represents modifier key state.
type ModMask int

const (
	ModNone  ModMask = 0
	ModShift ModMask = 1 << iota
	ModCtrl
	ModAlt
)

// Has returns true if the mask contains the given modifier.
func (m ModMask) Has(mod ModMask) bool {
	return m&mod != 0
}

// MouseButton represents mouse button state.
type MouseButton int

const (
	MouseNone MouseButton = iota
	MouseLeft
	MouseMiddle
	MouseRight
	MouseWheelUp
	MouseWheelDown
)
