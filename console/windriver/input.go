//go:build windows

package windriver

import (
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/dshills/conio/geom"
	"github.com/dshills/conio/input"
)

// winSource reads raw records from the native input queue. The console
// input handle is waitable, which gives Read its timeout without polling.
type winSource struct {
	dev *Device
}

// Read implements input.Source.
func (s *winSource) Read(max int, timeout time.Duration) ([]input.Record, error) {
	if max <= 0 {
		return nil, nil
	}

	ms := uint32(windows.INFINITE)
	if timeout >= 0 {
		ms = uint32(timeout / time.Millisecond)
	}
	ev, err := windows.WaitForSingleObject(s.dev.in, ms)
	if err != nil {
		return nil, wrap("wait for console input", err)
	}
	if ev != windows.WAIT_OBJECT_0 {
		return nil, nil
	}

	buf := make([]inputRecord, max)
	var n uint32
	if err := call("read console input", procReadConsoleInput,
		uintptr(s.dev.in),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(max),
		uintptr(unsafe.Pointer(&n))); err != nil {
		return nil, err
	}
	return convertRecords(buf[:n]), nil
}

// Peek implements input.Source.
func (s *winSource) Peek(max int) ([]input.Record, error) {
	if max <= 0 {
		return nil, nil
	}

	buf := make([]inputRecord, max)
	var n uint32
	if err := call("peek console input", procPeekConsoleInput,
		uintptr(s.dev.in),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(max),
		uintptr(unsafe.Pointer(&n))); err != nil {
		return nil, err
	}
	return convertRecords(buf[:n]), nil
}

// Pending implements input.Source.
func (s *winSource) Pending() (int, error) {
	var n uint32
	if err := call("count console input", procGetNumberOfInputEvents,
		uintptr(s.dev.in),
		uintptr(unsafe.Pointer(&n))); err != nil {
		return 0, err
	}
	return int(n), nil
}

// FlushInput discards every pending raw record in the native queue.
func (d *Device) FlushInput() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return err
	}
	return call("flush console input", procFlushConsoleInputBuffer, uintptr(d.in))
}

func convertRecords(raw []inputRecord) []input.Record {
	recs := make([]input.Record, 0, len(raw))
	now := time.Now()
	for i := range raw {
		rec, ok := convertRecord(&raw[i])
		if !ok {
			continue
		}
		rec.Time = now
		recs = append(recs, rec)
	}
	return recs
}

func convertRecord(raw *inputRecord) (input.Record, bool) {
	switch raw.typ {
	case recKeyEvent:
		kr := (*keyEventRecord)(unsafe.Pointer(&raw.data[0]))
		return input.KeyRecord(
			input.Key(kr.virtualKeyCode),
			rune(kr.unicodeChar),
			kr.keyDown != 0,
			int(kr.repeatCount),
		), true

	case recMouseEvent:
		mr := (*mouseEventRecord)(unsafe.Pointer(&raw.data[0]))
		flags := input.MouseFlag(mr.eventFlags)
		wheel := 0
		if flags.Has(input.MouseWheeled) || flags.Has(input.MouseHWheeled) {
			// The rotation delta travels in the high word of the
			// button state.
			wheel = int(int16(mr.buttonState >> 16))
		}
		mask := input.ButtonMask(mr.buttonState & 0x1F)
		return input.MouseRecord(geom.Pt(int(mr.x), int(mr.y)), mask, flags, wheel), true

	case recResizeEvent:
		rr := (*resizeEventRecord)(unsafe.Pointer(&raw.data[0]))
		return input.ResizeRecord(geom.Size{Cols: int(rr.x), Rows: int(rr.y)}), true

	case recFocusEvent:
		fr := (*focusEventRecord)(unsafe.Pointer(&raw.data[0]))
		return input.FocusRecord(fr.setFocus != 0), true

	case recMenuEvent:
		mr := (*menuEventRecord)(unsafe.Pointer(&raw.data[0]))
		return input.Record{Type: input.RecordMenu, MenuCommand: mr.commandID}, true

	default:
		return input.Record{}, false
	}
}
