// Package theme loads 16-color console schemes from JSON documents or
// sandboxed Lua scripts and applies them to a console: the full palette in
// one pass, then the default write attribute.
package theme

import (
	"errors"
	"fmt"

	"github.com/dshills/conio/color"
	"github.com/dshills/conio/console"
)

// ErrBadTheme is returned when a theme document cannot be parsed or fails
// validation.
var ErrBadTheme = errors.New("malformed theme")

// Theme is one complete color scheme: a replacement for all 16 palette
// slots plus the default write attribute.
type Theme struct {
	Name   string
	Colors [color.SlotCount]color.RGB

	// Foreground and Background are the slots of the default write
	// attribute once the theme is applied.
	Foreground color.Slot
	Background color.Slot
}

// New returns an empty theme with the stock palette and the conventional
// gray-on-black attribute.
func New(name string) Theme {
	return Theme{
		Name:       name,
		Colors:     color.Default().Colors(),
		Foreground: color.Gray,
		Background: color.Black,
	}
}

// Palette returns the theme's colors as a palette.
func (t Theme) Palette() color.Palette {
	return color.FromColors(t.Colors)
}

// Attribute returns the theme's default write attribute.
func (t Theme) Attribute() color.Attribute {
	return color.Attr(t.Foreground, t.Background)
}

// Apply remaps the console palette to the theme and installs its default
// attribute.
func (t Theme) Apply(c *console.Console) error {
	if !t.Foreground.Valid() || !t.Background.Valid() {
		return fmt.Errorf("%w: attribute slots %v/%v", ErrBadTheme, t.Foreground, t.Background)
	}
	if err := c.SetPalette(t.Palette()); err != nil {
		return fmt.Errorf("apply theme %q: %w", t.Name, err)
	}
	if err := c.SetAttribute(t.Attribute()); err != nil {
		return fmt.Errorf("apply theme %q: %w", t.Name, err)
	}
	return nil
}
