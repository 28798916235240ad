package input

import "testing"

func TestLetterAndDigitCodes(t *testing.T) {
	// Letter and digit keys carry their ASCII uppercase values so raw
	// records pass through unchanged.
	tests := []struct {
		key  Key
		code Key
		name string
	}{
		{KeyA, 'A', "A"},
		{KeyB, 'B', "B"},
		{KeyF, 'F', "F"},
		{KeyM, 'M', "M"},
		{KeyZ, 'Z', "Z"},
		{Key0, '0', "0"},
		{Key5, '5', "5"},
		{Key9, '9', "9"},
	}
	for _, tt := range tests {
		if tt.key != tt.code {
			t.Errorf("Key%s = 0x%02X, want 0x%02X", tt.name, uint8(tt.key), uint8(tt.code))
		}
		if got := tt.key.String(); got != tt.name {
			t.Errorf("Key%s.String() = %q", tt.name, got)
		}
	}
}

func TestKeyString(t *testing.T) {
	tests := []struct {
		key      Key
		expected string
	}{
		{KeyNone, "None"},
		{KeyReturn, "Return"},
		{KeyEscape, "Escape"},
		{KeyF7, "F7"},
		{KeyNumpad3, "Numpad3"},
		{Key(0xEE), "Key(0xEE)"},
	}
	for _, tt := range tests {
		if got := tt.key.String(); got != tt.expected {
			t.Errorf("Key(0x%02X).String() = %q, want %q", uint8(tt.key), got, tt.expected)
		}
	}
}
