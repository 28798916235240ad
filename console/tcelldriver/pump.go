package tcelldriver

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/conio/geom"
	"github.com/dshills/conio/input"
)

const (
	// wheelNotch is the raw rotation delta per wheel step.
	wheelNotch = 120

	// doubleClickWindow mirrors the native console's default double-click
	// interval. Terminals report bare presses, so the second click of a
	// pair is recognized here.
	doubleClickWindow = 500 * time.Millisecond
)

// clickMemory remembers the previous press so a fast second press at the
// same position becomes a double-click record.
type clickMemory struct {
	at     time.Time
	pos    geom.Point
	button input.Button
}

// pump converts tcell events into raw records until the screen is
// finalized. All conversion state on Device is owned by this goroutine.
func (d *Device) pump() {
	for {
		ev := d.screen.PollEvent()
		if ev == nil {
			return
		}
		if recs := d.convert(ev); len(recs) > 0 {
			d.queue.Post(recs...)
		}
	}
}

func (d *Device) convert(ev tcell.Event) []input.Record {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return d.convertKey(e)
	case *tcell.EventMouse:
		return d.convertMouse(e)
	case *tcell.EventResize:
		cols, rows := e.Size()
		size := geom.Size{Cols: cols, Rows: rows}
		d.applyResize(size)
		return []input.Record{input.ResizeRecord(size)}
	case *tcell.EventFocus:
		return []input.Record{input.FocusRecord(e.Focused)}
	default:
		return nil
	}
}

// convertKey emits modifier transition records followed by a press/release
// pair for the key itself. Terminals never report key-up, so the release is
// synthesized immediately; without it the decoder would consider every key
// held forever.
func (d *Device) convertKey(e *tcell.EventKey) []input.Record {
	mods := e.Modifiers()
	vk, r := translateKey(e)
	if vk == input.KeyNone && r == 0 {
		d.log.Debug("unmapped tcell key %v", e.Key())
		return nil
	}
	if k := e.Key(); k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		switch k {
		case tcell.KeyTab, tcell.KeyEnter, tcell.KeyBackspace:
			// Plain keys that share control-character codes.
		default:
			mods |= tcell.ModCtrl
		}
	}

	recs := d.modifierRecords(mods)
	recs = append(recs,
		input.KeyRecord(vk, r, true, 1),
		input.KeyRecord(vk, r, false, 1),
	)
	return recs
}

// modifierRecords diffs the tcell modifier mask against the last reported
// one and emits the synthetic modifier key transitions in between.
func (d *Device) modifierRecords(mods tcell.ModMask) []input.Record {
	var recs []input.Record
	edge := func(mask tcell.ModMask, vk input.Key) {
		was := d.lastMods&mask != 0
		now := mods&mask != 0
		if was == now {
			return
		}
		recs = append(recs, input.KeyRecord(vk, 0, now, 1))
	}
	edge(tcell.ModShift, input.KeyShift)
	edge(tcell.ModCtrl, input.KeyControl)
	edge(tcell.ModAlt, input.KeyMenu)
	d.lastMods = mods
	return recs
}

func (d *Device) convertMouse(e *tcell.EventMouse) []input.Record {
	recs := d.modifierRecords(e.Modifiers())
	x, y := e.Position()
	pos := geom.Pt(x, y)
	btns := e.Buttons()

	if wheel := wheelRecord(pos, d.buttons, btns); wheel != nil {
		return append(recs, *wheel)
	}

	mask := buttonMask(btns)
	var flags input.MouseFlag
	if pressed, btn := pressEdge(d.buttons, mask); pressed {
		if time.Since(d.lastClick.at) < doubleClickWindow &&
			d.lastClick.pos == pos && d.lastClick.button == btn {
			flags |= input.MouseDoubleClick
			d.lastClick = clickMemory{}
		} else {
			d.lastClick = clickMemory{at: time.Now(), pos: pos, button: btn}
		}
	} else if mask == d.buttons {
		if pos == d.lastPos {
			// Terminals repeat motion reports; nothing changed here.
			return recs
		}
		flags |= input.MouseMoved
	}

	d.buttons = mask
	d.lastPos = pos
	return append(recs, input.MouseRecord(pos, mask, flags, 0))
}

// wheelRecord returns a wheel record if the event carries wheel bits.
func wheelRecord(pos geom.Point, held input.ButtonMask, btns tcell.ButtonMask) *input.Record {
	var (
		flags input.MouseFlag
		delta int
	)
	switch {
	case btns&tcell.WheelUp != 0:
		flags, delta = input.MouseWheeled, wheelNotch
	case btns&tcell.WheelDown != 0:
		flags, delta = input.MouseWheeled, -wheelNotch
	case btns&tcell.WheelRight != 0:
		flags, delta = input.MouseHWheeled, wheelNotch
	case btns&tcell.WheelLeft != 0:
		flags, delta = input.MouseHWheeled, -wheelNotch
	default:
		return nil
	}
	rec := input.MouseRecord(pos, held, flags, delta)
	return &rec
}

// buttonMask translates tcell's button bits to the raw snapshot layout.
// tcell numbers buttons the xterm way: Button2 is the middle button.
func buttonMask(btns tcell.ButtonMask) input.ButtonMask {
	var mask input.ButtonMask
	if btns&tcell.Button1 != 0 {
		mask |= 1 << input.ButtonLeft
	}
	if btns&tcell.Button3 != 0 {
		mask |= 1 << input.ButtonRight
	}
	if btns&tcell.Button2 != 0 {
		mask |= 1 << input.ButtonMiddle
	}
	if btns&tcell.Button4 != 0 {
		mask |= 1 << input.ButtonX1
	}
	if btns&tcell.Button5 != 0 {
		mask |= 1 << input.ButtonX2
	}
	return mask
}

// pressEdge reports the first button that went down between two snapshots.
func pressEdge(prev, next input.ButtonMask) (bool, input.Button) {
	for b := input.Button(0); b < input.ButtonCount; b++ {
		if next.Down(b) && !prev.Down(b) {
			return true, b
		}
	}
	return false, 0
}

// translateKey maps a tcell key event to a virtual-key code and rune.
func translateKey(e *tcell.EventKey) (input.Key, rune) {
	switch k := e.Key(); k {
	case tcell.KeyRune:
		return vkForRune(e.Rune()), e.Rune()
	case tcell.KeyEnter:
		return input.KeyReturn, '\r'
	case tcell.KeyTab:
		return input.KeyTab, '\t'
	case tcell.KeyEscape:
		return input.KeyEscape, 0x1B
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return input.KeyBack, '\b'
	case tcell.KeyUp:
		return input.KeyUp, 0
	case tcell.KeyDown:
		return input.KeyDown, 0
	case tcell.KeyLeft:
		return input.KeyLeft, 0
	case tcell.KeyRight:
		return input.KeyRight, 0
	case tcell.KeyHome:
		return input.KeyHome, 0
	case tcell.KeyEnd:
		return input.KeyEnd, 0
	case tcell.KeyPgUp:
		return input.KeyPageUp, 0
	case tcell.KeyPgDn:
		return input.KeyPageDown, 0
	case tcell.KeyInsert:
		return input.KeyInsert, 0
	case tcell.KeyDelete:
		return input.KeyDelete, 0
	case tcell.KeyClear:
		return input.KeyClear, 0
	case tcell.KeyPause:
		return input.KeyPause, 0
	case tcell.KeyPrint:
		return input.KeySnapshot, 0
	default:
		if k >= tcell.KeyF1 && k <= tcell.KeyF12 {
			return input.KeyF1 + input.Key(k-tcell.KeyF1), 0
		}
		if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
			return input.KeyA + input.Key(k-tcell.KeyCtrlA), rune(k)
		}
		return input.KeyNone, 0
	}
}

// vkForRune maps printable runes onto virtual-key space. Runes with no
// virtual key travel as KeyNone with the rune intact.
func vkForRune(r rune) input.Key {
	switch {
	case r >= 'a' && r <= 'z':
		return input.Key(r - 'a' + 'A')
	case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return input.Key(r)
	case r == ' ':
		return input.KeySpace
	default:
		return input.KeyNone
	}
}
