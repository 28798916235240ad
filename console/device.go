package console

import (
	"github.com/dshills/conio/color"
	"github.com/dshills/conio/geom"
	"github.com/dshills/conio/input"
)

// Cell is one screen buffer cell. A Rune of 0 marks the trailing half of a
// double-width character.
type Cell struct {
	Rune rune
	Attr color.Attribute
}

// Device is the native console surface the Console drives. Every method is
// a single native invocation; the Console provides cross-call atomicity by
// holding its gate around sequences of them, so implementations must not
// block indefinitely.
//
// Implementations map native failures onto the package error sentinels.
type Device interface {
	// Palette reports the current 16-slot color table.
	Palette() (color.Palette, error)

	// SetPaletteColor remaps one slot. Implementations reject the call
	// (ErrUnsupported or ErrInvalidParameter) rather than partially
	// apply it.
	SetPaletteColor(slot color.Slot, c color.RGB) error

	// Attribute reads the current write attribute register.
	Attribute() (color.Attribute, error)

	// SetAttribute replaces the current write attribute register.
	SetAttribute(attr color.Attribute) error

	// Cursor reports the cursor position.
	Cursor() (geom.Point, error)

	// SetCursor moves the cursor.
	SetCursor(p geom.Point) error

	// BufferSize reports the screen buffer extent.
	BufferSize() (geom.Size, error)

	// ResizeBuffer changes the screen buffer extent.
	ResizeBuffer(s geom.Size) error

	// ReadCells returns the cells of a region, row-major.
	ReadCells(r geom.Rect) ([]Cell, error)

	// WriteCells replaces the cells of a region, row-major. The slice
	// length must equal the region area.
	WriteCells(r geom.Rect, cells []Cell) error

	// Title reports the window title.
	Title() (string, error)

	// SetTitle replaces the window title.
	SetTitle(title string) error

	// Close releases the device.
	Close() error
}

// InputDevice is implemented by devices that also expose the raw input
// queue. Console.Input requires it.
type InputDevice interface {
	Device

	// InputSource returns the raw record source for this console.
	InputSource() input.Source
}
