package color

import "strings"

// StyleFlag holds the per-cell style bits beyond the two color slots.
type StyleFlag uint8

const (
	// StyleNone indicates no extra styling.
	StyleNone StyleFlag = 0

	// StyleReverse swaps foreground and background when rendering.
	StyleReverse StyleFlag = 1 << iota

	// StyleUnderline underlines the cell.
	StyleUnderline
)

// Has reports whether f contains flag.
func (f StyleFlag) Has(flag StyleFlag) bool {
	return f&flag != 0
}

// String returns a "Reverse|Underline" style representation.
func (f StyleFlag) String() string {
	if f == StyleNone {
		return "None"
	}
	var parts []string
	if f.Has(StyleReverse) {
		parts = append(parts, "Reverse")
	}
	if f.Has(StyleUnderline) {
		parts = append(parts, "Underline")
	}
	return strings.Join(parts, "|")
}

// Attribute is the rendering state of one cell, or of the console's current
// write register: a foreground slot, a background slot, and style flags.
type Attribute struct {
	FG    Slot
	BG    Slot
	Flags StyleFlag
}

// Attribute word encoding: low nibble foreground, next nibble background,
// high bits the two supported style flags.
const (
	wordFGMask    = 0x000F
	wordBGMask    = 0x00F0
	wordReverse   = 0x4000
	wordUnderline = 0x8000
)

// Attr builds an attribute from a foreground and background slot.
func Attr(fg, bg Slot) Attribute {
	return Attribute{FG: fg, BG: bg}
}

// WithFlags returns a copy of the attribute with the given style flags set.
func (a Attribute) WithFlags(flags StyleFlag) Attribute {
	a.Flags |= flags
	return a
}

// Valid reports whether both slots are in range.
func (a Attribute) Valid() bool {
	return a.FG.Valid() && a.BG.Valid()
}

// Word packs the attribute into its 16-bit native encoding.
func (a Attribute) Word() uint16 {
	w := uint16(a.FG)&wordFGMask | (uint16(a.BG)<<4)&wordBGMask
	if a.Flags.Has(StyleReverse) {
		w |= wordReverse
	}
	if a.Flags.Has(StyleUnderline) {
		w |= wordUnderline
	}
	return w
}

// AttributeFromWord unpacks a 16-bit native attribute word.
func AttributeFromWord(w uint16) Attribute {
	a := Attribute{
		FG: Slot(w & wordFGMask),
		BG: Slot((w & wordBGMask) >> 4),
	}
	if w&wordReverse != 0 {
		a.Flags |= StyleReverse
	}
	if w&wordUnderline != 0 {
		a.Flags |= StyleUnderline
	}
	return a
}

// String returns a "FG on BG [flags]" representation.
func (a Attribute) String() string {
	s := a.FG.String() + " on " + a.BG.String()
	if a.Flags != StyleNone {
		s += " [" + a.Flags.String() + "]"
	}
	return s
}
