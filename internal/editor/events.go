package editor

// Button identifies a pointer button.
type Button int

const (
	ButtonNone      Button = iota
	ButtonPrimary          // pick and drag
	ButtonMiddle           // rotate, or pan with shift
	ButtonSecondary        // pan
)

// Modifiers is a bit set of held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
)

// Has reports whether every bit in m is set.
func (mods Modifiers) Has(m Modifiers) bool { return mods&m == m }

// Key is an editor action bound to a keyboard key by the input source.
type Key int

const (
	KeyNone Key = iota
	KeyToggleWireframe
	KeyNudgeLeft
	KeyNudgeRight
	KeyNudgeUp
	KeyNudgeDown
	KeyTargetUp
	KeyTargetDown
	KeyFrameMesh
	KeyDeselect
)

// EventType identifies an input event.
type EventType int

const (
	EventNone EventType = iota
	EventPointerDown
	EventPointerMove
	EventPointerUp
	EventWheel
	EventKey
	EventResize
)

// Event is a normalized input event. Coordinates are in pixels with Y
// growing downward; Wheel is in notch units of 120.
type Event struct {
	Type   EventType
	X, Y   float32
	Button Button
	Mods   Modifiers
	Wheel  float32
	Key    Key
	Width  int
	Height int
}

// InputHandler is the contract between an input source and the session.
type InputHandler interface {
	OnPointerDown(x, y float32, button Button, mods Modifiers)
	OnPointerMove(x, y float32, mods Modifiers)
	OnPointerUp(x, y float32, button Button, mods Modifiers)
	OnWheel(delta float32)
	OnKey(key Key, mods Modifiers)
	SetViewport(width, height int)
}

// Dispatch routes ev to the matching handler method.
func Dispatch(h InputHandler, ev Event) {
	switch ev.Type {
	case EventPointerDown:
		h.OnPointerDown(ev.X, ev.Y, ev.Button, ev.Mods)
	case EventPointerMove:
		h.OnPointerMove(ev.X, ev.Y, ev.Mods)
	case EventPointerUp:
		h.OnPointerUp(ev.X, ev.Y, ev.Button, ev.Mods)
	case EventWheel:
		h.OnWheel(ev.Wheel)
	case EventKey:
		h.OnKey(ev.Key, ev.Mods)
	case EventResize:
		h.SetViewport(ev.Width, ev.Height)
	}
}
