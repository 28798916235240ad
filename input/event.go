package input

import (
	"fmt"
	"strings"

	"github.com/dshills/conio/geom"
)

// Event is a decoded input event. The concrete types are KeyEvent,
// MouseEvent, ResizeEvent, and FocusEvent.
type Event interface {
	// Class returns the filter class of the event.
	Class() Class

	fmt.Stringer
}

// KeyEvent is a key press or release.
type KeyEvent struct {
	// Key is the virtual-key code.
	Key Key

	// Rune is the translated character, 0 if none.
	Rune rune

	// Down is true for a press, false for a release.
	Down bool

	// Repeat is how many times the press repeated (always 1 for a
	// release).
	Repeat int

	// Held is true when this press repeats a key that was already down.
	Held bool

	// Modifiers is the modifier state after this event was applied, so
	// a record that is itself part of a modified chord reports the
	// modifier as active.
	Modifiers Modifier
}

// Class returns ClassKeyDown or ClassKeyUp.
func (e KeyEvent) Class() Class {
	if e.Down {
		return ClassKeyDown
	}
	return ClassKeyUp
}

func (e KeyEvent) String() string {
	dir := "up"
	if e.Down {
		dir = "down"
	}
	s := fmt.Sprintf("Key %s %s", e.Key, dir)
	if mods := e.Modifiers.String(); mods != "" {
		s += " [" + mods + "]"
	}
	return s
}

// ButtonTransition is one press or release edge recovered from diffing two
// successive absolute button snapshots.
type ButtonTransition struct {
	Button  Button
	Pressed bool
}

func (t ButtonTransition) String() string {
	if t.Pressed {
		return "+" + t.Button.String()
	}
	return "-" + t.Button.String()
}

// MouseKind classifies a mouse event.
type MouseKind uint8

const (
	// MouseClick is a press/release edge event.
	MouseClick MouseKind = iota

	// MouseMove is a movement event.
	MouseMove

	// MouseDouble is the second click of a double-click, as flagged by
	// the platform (never inferred from timing).
	MouseDouble

	// MouseWheel is a wheel rotation event.
	MouseWheel
)

// String returns the kind name.
func (k MouseKind) String() string {
	switch k {
	case MouseClick:
		return "Click"
	case MouseMove:
		return "Move"
	case MouseDouble:
		return "DoubleClick"
	case MouseWheel:
		return "Wheel"
	default:
		return "Mouse?"
	}
}

// MouseEvent is a decoded mouse event.
type MouseEvent struct {
	// Pos is the cell position of the pointer.
	Pos geom.Point

	// Kind classifies the event.
	Kind MouseKind

	// Transitions lists the button edges in this event, lowest button
	// first. Empty for pure moves and wheel events.
	Transitions []ButtonTransition

	// WheelDelta is the signed rotation for wheel events, 0 otherwise.
	WheelDelta int

	// Horizontal is true for horizontal wheel events.
	Horizontal bool

	// Modifiers is the decoder's modifier state at decode time.
	Modifiers Modifier
}

// Class returns the filter class matching Kind.
func (e MouseEvent) Class() Class {
	switch e.Kind {
	case MouseMove:
		return ClassMouseMove
	case MouseWheel:
		return ClassMouseWheel
	default:
		return ClassMouseClick
	}
}

// Pressed reports whether the event contains a press edge for b.
func (e MouseEvent) Pressed(b Button) bool {
	for _, t := range e.Transitions {
		if t.Button == b && t.Pressed {
			return true
		}
	}
	return false
}

// Released reports whether the event contains a release edge for b.
func (e MouseEvent) Released(b Button) bool {
	for _, t := range e.Transitions {
		if t.Button == b && !t.Pressed {
			return true
		}
	}
	return false
}

func (e MouseEvent) String() string {
	var parts []string
	for _, t := range e.Transitions {
		parts = append(parts, t.String())
	}
	s := fmt.Sprintf("Mouse %s at %s", e.Kind, e.Pos)
	if len(parts) > 0 {
		s += " {" + strings.Join(parts, ", ") + "}"
	}
	if e.Kind == MouseWheel {
		s += fmt.Sprintf(" delta=%d", e.WheelDelta)
	}
	return s
}

// ResizeEvent reports a new screen buffer size. The decoder only reports;
// it never resizes anything itself.
type ResizeEvent struct {
	Size geom.Size
}

// Class returns ClassResize.
func (e ResizeEvent) Class() Class {
	return ClassResize
}

func (e ResizeEvent) String() string {
	return "Resize to " + e.Size.String()
}

// FocusEvent reports a console window focus change.
type FocusEvent struct {
	Gained bool
}

// Class returns ClassFocus.
func (e FocusEvent) Class() Class {
	return ClassFocus
}

func (e FocusEvent) String() string {
	if e.Gained {
		return "Focus gained"
	}
	return "Focus lost"
}
