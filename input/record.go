package input

import (
	"time"

	"github.com/dshills/conio/geom"
)

// RecordType identifies the kind of raw record.
type RecordType uint8

const (
	// RecordNone is an empty record.
	RecordNone RecordType = iota

	// RecordKey carries a key press or release.
	RecordKey

	// RecordMouse carries an absolute mouse snapshot.
	RecordMouse

	// RecordResize carries a new screen buffer size.
	RecordResize

	// RecordFocus carries a window focus change.
	RecordFocus

	// RecordMenu carries a reserved menu notification; the decoder
	// discards it.
	RecordMenu
)

// String returns the record type name.
func (t RecordType) String() string {
	switch t {
	case RecordNone:
		return "None"
	case RecordKey:
		return "Key"
	case RecordMouse:
		return "Mouse"
	case RecordResize:
		return "Resize"
	case RecordFocus:
		return "Focus"
	case RecordMenu:
		return "Menu"
	default:
		return "Unknown"
	}
}

// Button identifies a mouse button by index.
type Button uint8

const (
	// ButtonLeft is the primary button.
	ButtonLeft Button = iota

	// ButtonRight is the secondary button.
	ButtonRight

	// ButtonMiddle is the wheel button.
	ButtonMiddle

	// ButtonX1 is the first extended button.
	ButtonX1

	// ButtonX2 is the second extended button.
	ButtonX2

	// ButtonCount is the number of tracked buttons.
	ButtonCount = 5
)

// String returns the button name.
func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "Left"
	case ButtonRight:
		return "Right"
	case ButtonMiddle:
		return "Middle"
	case ButtonX1:
		return "X1"
	case ButtonX2:
		return "X2"
	default:
		return "Button?"
	}
}

// ButtonMask is an absolute snapshot of all button states, one bit per
// Button index. Raw records carry these snapshots without edges; the
// decoder diffs successive masks to recover presses and releases.
type ButtonMask uint32

// Down reports whether the given button bit is set.
func (m ButtonMask) Down(b Button) bool {
	return m&(1<<b) != 0
}

// MouseFlag describes how a mouse record should be interpreted.
type MouseFlag uint32

const (
	// MouseMoved marks a movement record.
	MouseMoved MouseFlag = 0x1

	// MouseDoubleClick marks the second click of a double-click.
	MouseDoubleClick MouseFlag = 0x2

	// MouseWheeled marks a vertical wheel record.
	MouseWheeled MouseFlag = 0x4

	// MouseHWheeled marks a horizontal wheel record.
	MouseHWheeled MouseFlag = 0x8
)

// Has reports whether f contains flag.
func (f MouseFlag) Has(flag MouseFlag) bool {
	return f&flag != 0
}

// KeyData is the payload of a key record.
type KeyData struct {
	// Key is the virtual-key code.
	Key Key

	// Rune is the translated character, if any.
	Rune rune

	// Down is true for a press and false for a release.
	Down bool

	// Repeat is the native repeat count (at least 1 for a press).
	Repeat int
}

// MouseData is the payload of a mouse record. Buttons is an absolute
// snapshot, not an edge.
type MouseData struct {
	Pos     geom.Point
	Buttons ButtonMask
	Flags   MouseFlag

	// Wheel is the signed wheel rotation for wheeled records.
	Wheel int
}

// Record is one opaque raw input notification as delivered by a Source.
type Record struct {
	Type RecordType

	Key   KeyData
	Mouse MouseData

	// Size is the new buffer size for resize records.
	Size geom.Size

	// FocusGained is the focus direction for focus records.
	FocusGained bool

	// MenuCommand is the reserved payload of menu records.
	MenuCommand uint32

	// Time is when the record was captured, if the source knows.
	Time time.Time
}

// KeyRecord builds a key record.
func KeyRecord(k Key, r rune, down bool, repeat int) Record {
	if repeat < 1 {
		repeat = 1
	}
	return Record{
		Type: RecordKey,
		Key:  KeyData{Key: k, Rune: r, Down: down, Repeat: repeat},
	}
}

// MouseRecord builds a mouse record from an absolute button snapshot.
func MouseRecord(pos geom.Point, buttons ButtonMask, flags MouseFlag, wheel int) Record {
	return Record{
		Type:  RecordMouse,
		Mouse: MouseData{Pos: pos, Buttons: buttons, Flags: flags, Wheel: wheel},
	}
}

// ResizeRecord builds a buffer-resize record.
func ResizeRecord(size geom.Size) Record {
	return Record{Type: RecordResize, Size: size}
}

// FocusRecord builds a focus record.
func FocusRecord(gained bool) Record {
	return Record{Type: RecordFocus, FocusGained: gained}
}
