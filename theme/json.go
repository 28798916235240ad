package theme

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/conio/color"
)

// ParseJSON decodes a theme document of the form
//
//	{
//	  "name": "midnight",
//	  "colors": ["#000000", ... 16 hex strings ...],
//	  "foreground": "Gray",
//	  "background": "Black"
//	}
//
// The attribute slots are optional and default to Gray on Black.
func ParseJSON(data []byte) (Theme, error) {
	if !gjson.ValidBytes(data) {
		return Theme{}, fmt.Errorf("%w: invalid JSON", ErrBadTheme)
	}

	t := New(gjson.GetBytes(data, "name").String())

	colors := gjson.GetBytes(data, "colors")
	if !colors.IsArray() {
		return Theme{}, fmt.Errorf("%w: missing colors array", ErrBadTheme)
	}
	entries := colors.Array()
	if len(entries) != color.SlotCount {
		return Theme{}, fmt.Errorf("%w: %d colors, want %d", ErrBadTheme, len(entries), color.SlotCount)
	}
	for i, entry := range entries {
		rgb, err := color.ParseHex(entry.String())
		if err != nil {
			return Theme{}, fmt.Errorf("%w: color %d: %v", ErrBadTheme, i, err)
		}
		t.Colors[i] = rgb
	}

	var err error
	if t.Foreground, err = slotField(data, "foreground", t.Foreground); err != nil {
		return Theme{}, err
	}
	if t.Background, err = slotField(data, "background", t.Background); err != nil {
		return Theme{}, err
	}
	return t, nil
}

func slotField(data []byte, path string, fallback color.Slot) (color.Slot, error) {
	field := gjson.GetBytes(data, path)
	if !field.Exists() {
		return fallback, nil
	}
	slot, ok := color.SlotFromName(field.String())
	if !ok {
		return 0, fmt.Errorf("%w: unknown slot name %q", ErrBadTheme, field.String())
	}
	return slot, nil
}

// LoadJSON reads and decodes a theme file.
func LoadJSON(path string) (Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, fmt.Errorf("load theme: %w", err)
	}
	return ParseJSON(data)
}

// EncodeJSON renders the theme back into its document form.
func EncodeJSON(t Theme) ([]byte, error) {
	data := []byte(`{}`)
	var err error
	if data, err = sjson.SetBytes(data, "name", t.Name); err != nil {
		return nil, fmt.Errorf("encode theme: %w", err)
	}
	for i, rgb := range t.Colors {
		if data, err = sjson.SetBytes(data, fmt.Sprintf("colors.%d", i), rgb.Hex()); err != nil {
			return nil, fmt.Errorf("encode theme: %w", err)
		}
	}
	if data, err = sjson.SetBytes(data, "foreground", t.Foreground.String()); err != nil {
		return nil, fmt.Errorf("encode theme: %w", err)
	}
	if data, err = sjson.SetBytes(data, "background", t.Background.String()); err != nil {
		return nil, fmt.Errorf("encode theme: %w", err)
	}
	return data, nil
}
