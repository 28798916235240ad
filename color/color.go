// Package color implements the console color model: the 16 addressable
// palette slots, the portable RGB triple, the mutable palette that maps one
// to the other, and the packed cell attribute built from two slots plus
// style flags.
//
// The palette is a value type. The process-wide cache lives in the console
// package, which owns the synchronization around palette mutation; this
// package is purely computational.
package color

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/conio/vec"
)

// Slot identifies one of the 16 addressable palette entries. Valid values
// are 0 through 15; the constants below name them after their default
// colors.
type Slot uint8

const (
	Black Slot = iota
	DarkBlue
	DarkGreen
	Teal
	DarkRed
	Magenta
	DarkYellow
	Gray
	DarkGray
	Blue
	Green
	Aqua
	Red
	Pink
	Yellow
	White

	// SlotCount is the number of palette entries.
	SlotCount = 16
)

var slotNames = [SlotCount]string{
	"Black", "DarkBlue", "DarkGreen", "Teal",
	"DarkRed", "Magenta", "DarkYellow", "Gray",
	"DarkGray", "Blue", "Green", "Aqua",
	"Red", "Pink", "Yellow", "White",
}

// Valid reports whether the slot is in range.
func (s Slot) Valid() bool {
	return s < SlotCount
}

// String returns the canonical slot name, or "Slot(n)" if out of range.
func (s Slot) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Slot(%d)", uint8(s))
	}
	return slotNames[s]
}

// SlotFromName returns the slot with the given canonical name.
func SlotFromName(name string) (Slot, bool) {
	for i, n := range slotNames {
		if n == name {
			return Slot(i), true
		}
	}
	return 0, false
}

// RGB is an opaque 8-bit-per-channel color.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// Hex returns the "#rrggbb" representation.
func (c RGB) Hex() string {
	return c.Colorful().Hex()
}

// ParseHex parses a "#rrggbb" (or "#rgb") string.
func ParseHex(s string) (RGB, error) {
	cf, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, fmt.Errorf("parse hex color %q: %w", s, err)
	}
	return FromColorful(cf), nil
}

// Colorful converts to a go-colorful color for colorspace math.
func (c RGB) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// FromColorful converts a go-colorful color, clamping to the RGB cube.
func FromColorful(cf colorful.Color) RGB {
	cf = cf.Clamped()
	return RGB{
		R: uint8(cf.R*255.0 + 0.5),
		G: uint8(cf.G*255.0 + 0.5),
		B: uint8(cf.B*255.0 + 0.5),
	}
}

// Vec3 returns the color as a vector with components in [0, 255].
func (c RGB) Vec3() vec.Vec3 {
	return vec.V3(float64(c.R), float64(c.G), float64(c.B))
}

// FromVec3 builds a color from a vector, clamping components to [0, 255].
func FromVec3(v vec.Vec3) RGB {
	v = v.Clamp(0, 255)
	return RGB{
		R: uint8(v.X + 0.5),
		G: uint8(v.Y + 0.5),
		B: uint8(v.Z + 0.5),
	}
}

// DistanceSq returns the squared Euclidean distance between two colors in
// RGB space. Integer math keeps nearest-slot searches deterministic.
func DistanceSq(a, b RGB) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

// String returns the hex representation.
func (c RGB) String() string {
	return c.Hex()
}
