package color

import "errors"

// ErrBadSlot is returned when a slot is outside the 16-entry range.
var ErrBadSlot = errors.New("palette slot out of range")

// Palette maps the 16 slots to their current RGB values.
type Palette struct {
	colors [SlotCount]RGB
}

// Default returns the stock console palette.
func Default() Palette {
	return Palette{colors: [SlotCount]RGB{
		{0x00, 0x00, 0x00}, // Black
		{0x00, 0x00, 0x80}, // DarkBlue
		{0x00, 0x80, 0x00}, // DarkGreen
		{0x00, 0x80, 0x80}, // Teal
		{0x80, 0x00, 0x00}, // DarkRed
		{0x80, 0x00, 0x80}, // Magenta
		{0x80, 0x80, 0x00}, // DarkYellow
		{0xC0, 0xC0, 0xC0}, // Gray
		{0x80, 0x80, 0x80}, // DarkGray
		{0x00, 0x00, 0xFF}, // Blue
		{0x00, 0xFF, 0x00}, // Green
		{0x00, 0xFF, 0xFF}, // Aqua
		{0xFF, 0x00, 0x00}, // Red
		{0xFF, 0x00, 0xFF}, // Pink
		{0xFF, 0xFF, 0x00}, // Yellow
		{0xFF, 0xFF, 0xFF}, // White
	}}
}

// FromColors builds a palette from an explicit 16-entry table.
func FromColors(colors [SlotCount]RGB) Palette {
	return Palette{colors: colors}
}

// Color returns the RGB value of a slot.
func (p Palette) Color(s Slot) (RGB, error) {
	if !s.Valid() {
		return RGB{}, ErrBadSlot
	}
	return p.colors[s], nil
}

// SetColor replaces the RGB value of a slot.
func (p *Palette) SetColor(s Slot, c RGB) error {
	if !s.Valid() {
		return ErrBadSlot
	}
	p.colors[s] = c
	return nil
}

// Colors returns the full slot table.
func (p Palette) Colors() [SlotCount]RGB {
	return p.colors
}

// Nearest returns the slot whose color minimizes the squared Euclidean
// distance to c. Ties go to the lowest slot index, so the result is stable
// for a given palette.
func (p Palette) Nearest(c RGB) Slot {
	best := Slot(0)
	bestDist := DistanceSq(c, p.colors[0])
	for i := 1; i < SlotCount; i++ {
		d := DistanceSq(c, p.colors[i])
		if d < bestDist {
			best = Slot(i)
			bestDist = d
		}
	}
	return best
}
