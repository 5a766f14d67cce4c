// Package input translates SDL2 events into editor events and viewer
// commands.
package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/n3vedit/internal/editor"
)

// WheelNotch is the wheel delta of one notch.
const WheelNotch = 120

// Command is a viewer action outside the editing session.
type Command int

const (
	CommandNone Command = iota
	CommandQuit
	CommandOpen
	CommandSave
	CommandExport
	CommandScreenshot
)

// Event is either an editor event or a viewer command.
type Event struct {
	Editor  editor.Event
	Command Command
}

// Input polls SDL events once per frame.
type Input struct {
	events []Event
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls pending SDL events. Returns true if the window should close.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		ev, ok := Translate(event, sdl.GetModState())
		if !ok {
			continue
		}
		i.events = append(i.events, ev)
		if ev.Command == CommandQuit {
			return true
		}
	}
	return false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// Translate converts one SDL event. ok is false for events the viewer
// ignores.
func Translate(event sdl.Event, mod sdl.Keymod) (Event, bool) {
	mods := MapMods(mod)

	switch e := event.(type) {
	case *sdl.QuitEvent:
		return Event{Command: CommandQuit}, true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			return Event{Editor: editor.Event{
				Type:   editor.EventResize,
				Width:  int(e.Data1),
				Height: int(e.Data2),
			}}, true
		}

	case *sdl.KeyboardEvent:
		if e.Type != sdl.KEYDOWN {
			return Event{}, false
		}
		key, cmd := MapKey(e.Keysym.Sym, mods)
		if cmd != CommandNone {
			return Event{Command: cmd}, true
		}
		if key != editor.KeyNone {
			return Event{Editor: editor.Event{Type: editor.EventKey, Key: key, Mods: mods}}, true
		}

	case *sdl.MouseMotionEvent:
		return Event{Editor: editor.Event{
			Type: editor.EventPointerMove,
			X:    float32(e.X),
			Y:    float32(e.Y),
			Mods: mods,
		}}, true

	case *sdl.MouseButtonEvent:
		button := MapButton(e.Button)
		if button == editor.ButtonNone {
			return Event{}, false
		}
		typ := editor.EventPointerDown
		if e.Type == sdl.MOUSEBUTTONUP {
			typ = editor.EventPointerUp
		}
		return Event{Editor: editor.Event{
			Type:   typ,
			X:      float32(e.X),
			Y:      float32(e.Y),
			Button: button,
			Mods:   mods,
		}}, true

	case *sdl.MouseWheelEvent:
		if e.Y == 0 {
			return Event{}, false
		}
		return Event{Editor: editor.Event{
			Type:  editor.EventWheel,
			Wheel: float32(e.Y) * WheelNotch,
			Mods:  mods,
		}}, true
	}

	return Event{}, false
}

// MapButton maps an SDL mouse button to an editor button.
func MapButton(b uint8) editor.Button {
	switch b {
	case sdl.BUTTON_LEFT:
		return editor.ButtonPrimary
	case sdl.BUTTON_MIDDLE:
		return editor.ButtonMiddle
	case sdl.BUTTON_RIGHT:
		return editor.ButtonSecondary
	default:
		return editor.ButtonNone
	}
}

// MapMods keeps the shift and ctrl bits of an SDL modifier state.
func MapMods(mod sdl.Keymod) editor.Modifiers {
	var m editor.Modifiers
	if mod&sdl.KMOD_SHIFT != 0 {
		m |= editor.ModShift
	}
	if mod&sdl.KMOD_CTRL != 0 {
		m |= editor.ModCtrl
	}
	return m
}

// MapKey binds a key press to an editor key or a viewer command.
func MapKey(sym sdl.Keycode, mods editor.Modifiers) (editor.Key, Command) {
	if mods.Has(editor.ModCtrl) {
		switch sym {
		case sdl.K_o:
			return editor.KeyNone, CommandOpen
		case sdl.K_s:
			return editor.KeyNone, CommandSave
		case sdl.K_e:
			return editor.KeyNone, CommandExport
		case sdl.K_q:
			return editor.KeyNone, CommandQuit
		}
		return editor.KeyNone, CommandNone
	}

	switch sym {
	case sdl.K_F12:
		return editor.KeyNone, CommandScreenshot
	case sdl.K_w:
		return editor.KeyToggleWireframe, CommandNone
	case sdl.K_LEFT:
		return editor.KeyNudgeLeft, CommandNone
	case sdl.K_RIGHT:
		return editor.KeyNudgeRight, CommandNone
	case sdl.K_UP:
		return editor.KeyNudgeUp, CommandNone
	case sdl.K_DOWN:
		return editor.KeyNudgeDown, CommandNone
	case sdl.K_PAGEUP:
		return editor.KeyTargetUp, CommandNone
	case sdl.K_PAGEDOWN:
		return editor.KeyTargetDown, CommandNone
	case sdl.K_f:
		return editor.KeyFrameMesh, CommandNone
	case sdl.K_ESCAPE:
		return editor.KeyDeselect, CommandNone
	}
	return editor.KeyNone, CommandNone
}
