package input

import "fmt"

// Key is a virtual-key code. The numbering follows the native console
// convention so raw records can carry their key codes through unchanged.
type Key uint8

// Virtual-key codes. Letter and digit keys use their ASCII uppercase values
// (KeyA == 'A', Key0 == '0').
const (
	KeyNone Key = 0x00

	// Mouse buttons occupy virtual-key space but never surface as key
	// events; the decoder folds them into mouse records.
	KeyLButton  Key = 0x01
	KeyRButton  Key = 0x02
	KeyMButton  Key = 0x04
	KeyXButton1 Key = 0x05
	KeyXButton2 Key = 0x06

	KeyBack     Key = 0x08
	KeyTab      Key = 0x09
	KeyClear    Key = 0x0C
	KeyReturn   Key = 0x0D
	KeyShift    Key = 0x10
	KeyControl  Key = 0x11
	KeyMenu     Key = 0x12 // Alt
	KeyPause    Key = 0x13
	KeyCapital  Key = 0x14
	KeyEscape   Key = 0x1B
	KeySpace    Key = 0x20
	KeyPageUp   Key = 0x21
	KeyPageDown Key = 0x22
	KeyEnd      Key = 0x23
	KeyHome     Key = 0x24
	KeyLeft     Key = 0x25
	KeyUp       Key = 0x26
	KeyRight    Key = 0x27
	KeyDown     Key = 0x28
	KeySnapshot Key = 0x2C
	KeyInsert   Key = 0x2D
	KeyDelete   Key = 0x2E

	Key0 Key = 0x30
	Key1 Key = 0x31
	Key2 Key = 0x32
	Key3 Key = 0x33
	Key4 Key = 0x34
	Key5 Key = 0x35
	Key6 Key = 0x36
	Key7 Key = 0x37
	Key8 Key = 0x38
	Key9 Key = 0x39

	KeyA Key = 0x41
	KeyB Key = 0x42
	KeyC Key = 0x43
	KeyD Key = 0x44
	KeyE Key = 0x45
	KeyF Key = 0x46
	KeyG Key = 0x47
	KeyH Key = 0x48
	KeyI Key = 0x49
	KeyJ Key = 0x4A
	KeyK Key = 0x4B
	KeyL Key = 0x4C
	KeyM Key = 0x4D
	KeyN Key = 0x4E
	KeyO Key = 0x4F
	KeyP Key = 0x50
	KeyQ Key = 0x51
	KeyR Key = 0x52
	KeyS Key = 0x53
	KeyT Key = 0x54
	KeyU Key = 0x55
	KeyV Key = 0x56
	KeyW Key = 0x57
	KeyX Key = 0x58
	KeyY Key = 0x59
	KeyZ Key = 0x5A

	KeyLWin     Key = 0x5B
	KeyRWin     Key = 0x5C
	KeyNumpad0  Key = 0x60
	KeyNumpad1  Key = 0x61
	KeyNumpad2  Key = 0x62
	KeyNumpad3  Key = 0x63
	KeyNumpad4  Key = 0x64
	KeyNumpad5  Key = 0x65
	KeyNumpad6  Key = 0x66
	KeyNumpad7  Key = 0x67
	KeyNumpad8  Key = 0x68
	KeyNumpad9  Key = 0x69
	KeyMultiply Key = 0x6A
	KeyAdd      Key = 0x6B
	KeySubtract Key = 0x6D
	KeyDecimal  Key = 0x6E
	KeyDivide   Key = 0x6F

	KeyF1  Key = 0x70
	KeyF2  Key = 0x71
	KeyF3  Key = 0x72
	KeyF4  Key = 0x73
	KeyF5  Key = 0x74
	KeyF6  Key = 0x75
	KeyF7  Key = 0x76
	KeyF8  Key = 0x77
	KeyF9  Key = 0x78
	KeyF10 Key = 0x79
	KeyF11 Key = 0x7A
	KeyF12 Key = 0x7B

	KeyNumLock  Key = 0x90
	KeyScroll   Key = 0x91
	KeyLShift   Key = 0xA0
	KeyRShift   Key = 0xA1
	KeyLControl Key = 0xA2
	KeyRControl Key = 0xA3
	KeyLMenu    Key = 0xA4
	KeyRMenu    Key = 0xA5
)

var keyNames = map[Key]string{
	KeyNone:     "None",
	KeyLButton:  "LButton",
	KeyRButton:  "RButton",
	KeyMButton:  "MButton",
	KeyXButton1: "XButton1",
	KeyXButton2: "XButton2",
	KeyBack:     "Back",
	KeyTab:      "Tab",
	KeyClear:    "Clear",
	KeyReturn:   "Return",
	KeyShift:    "Shift",
	KeyControl:  "Control",
	KeyMenu:     "Menu",
	KeyPause:    "Pause",
	KeyCapital:  "CapsLock",
	KeyEscape:   "Escape",
	KeySpace:    "Space",
	KeyPageUp:   "PageUp",
	KeyPageDown: "PageDown",
	KeyEnd:      "End",
	KeyHome:     "Home",
	KeyLeft:     "Left",
	KeyUp:       "Up",
	KeyRight:    "Right",
	KeyDown:     "Down",
	KeySnapshot: "PrintScreen",
	KeyInsert:   "Insert",
	KeyDelete:   "Delete",
	KeyLWin:     "LWin",
	KeyRWin:     "RWin",
	KeyMultiply: "NumpadMultiply",
	KeyAdd:      "NumpadAdd",
	KeySubtract: "NumpadSubtract",
	KeyDecimal:  "NumpadDecimal",
	KeyDivide:   "NumpadDivide",
	KeyNumLock:  "NumLock",
	KeyScroll:   "ScrollLock",
	KeyLShift:   "LShift",
	KeyRShift:   "RShift",
	KeyLControl: "LControl",
	KeyRControl: "RControl",
	KeyLMenu:    "LMenu",
	KeyRMenu:    "RMenu",
}

// String returns a readable key name.
func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	switch {
	case k >= Key0 && k <= Key9, k >= KeyA && k <= KeyZ:
		return string(rune(k))
	case k >= KeyF1 && k <= KeyF12:
		return fmt.Sprintf("F%d", k-KeyF1+1)
	case k >= KeyNumpad0 && k <= KeyNumpad9:
		return fmt.Sprintf("Numpad%d", k-KeyNumpad0)
	default:
		return fmt.Sprintf("Key(0x%02X)", uint8(k))
	}
}

// IsMouseButton reports whether the virtual key names a mouse button.
func (k Key) IsMouseButton() bool {
	switch k {
	case KeyLButton, KeyRButton, KeyMButton, KeyXButton1, KeyXButton2:
		return true
	}
	return false
}

// IsModifier reports whether the virtual key is a shift, control, or alt
// key (including the sided variants).
func (k Key) IsModifier() bool {
	switch k {
	case KeyShift, KeyLShift, KeyRShift,
		KeyControl, KeyLControl, KeyRControl,
		KeyMenu, KeyLMenu, KeyRMenu:
		return true
	}
	return false
}
