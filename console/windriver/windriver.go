//go:build windows

// Package windriver drives the native Windows console. It is the only
// device whose palette, attribute register, and input queue live in the
// operating system rather than in this process; every method here is one
// console API call plus error translation.
package windriver

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/dshills/conio/color"
	"github.com/dshills/conio/conlog"
	"github.com/dshills/conio/console"
	"github.com/dshills/conio/geom"
	"github.com/dshills/conio/input"
)

// Device is a handle pair onto the process console. It implements
// console.InputDevice.
type Device struct {
	mu  sync.Mutex
	in  windows.Handle
	out windows.Handle
	log *conlog.Logger

	origInMode uint32
	closed     bool
}

// Option configures a Device.
type Option func(*Device)

// WithLogger attaches a logger.
func WithLogger(log *conlog.Logger) Option {
	return func(d *Device) {
		d.log = log.WithComponent("windriver")
	}
}

// New opens the console's input and output handles directly, so the device
// works even when the standard handles are redirected. Window and mouse
// input reporting are enabled; the original input mode is restored on
// Close.
func New(opts ...Option) (*Device, error) {
	d := &Device{log: conlog.Nop()}
	for _, opt := range opts {
		opt(d)
	}

	in, err := windows.Open("CONIN$", windows.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open console input: %w", err)
	}
	out, err := windows.Open("CONOUT$", windows.O_RDWR, 0)
	if err != nil {
		windows.Close(in)
		return nil, fmt.Errorf("open console output: %w", err)
	}
	d.in, d.out = in, out

	if err := windows.GetConsoleMode(in, &d.origInMode); err != nil {
		d.closeHandles()
		return nil, wrap("get console mode", err)
	}
	mode := uint32(windows.ENABLE_WINDOW_INPUT | windows.ENABLE_MOUSE_INPUT | windows.ENABLE_EXTENDED_FLAGS)
	if err := windows.SetConsoleMode(in, mode); err != nil {
		d.closeHandles()
		return nil, wrap("set console mode", err)
	}
	return d, nil
}

func (d *Device) closeHandles() {
	windows.Close(d.in)
	windows.Close(d.out)
}

// checkOpen must be called with d.mu held.
func (d *Device) checkOpen() error {
	if d.closed {
		return console.ErrInvalidHandle
	}
	return nil
}

// infoEx fetches the extended screen buffer info. Must be called with d.mu
// held.
func (d *Device) infoEx() (consoleInfoEx, error) {
	var info consoleInfoEx
	info.size = uint32(unsafe.Sizeof(info))
	err := call("get screen buffer info", procGetConsoleScreenBufferInfoEx,
		uintptr(d.out), uintptr(unsafe.Pointer(&info)))
	return info, err
}

// setInfoEx writes extended info back. The window rect is widened by one in
// each direction first; the set call interprets it as exclusive where the
// get call reported it inclusive, and without the adjustment every call
// shrinks the window.
func (d *Device) setInfoEx(info *consoleInfoEx) error {
	info.window.right++
	info.window.bottom++
	return call("set screen buffer info", procSetConsoleScreenBufferInfoEx,
		uintptr(d.out), uintptr(unsafe.Pointer(info)))
}

// Palette implements console.Device.
func (d *Device) Palette() (color.Palette, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return color.Palette{}, err
	}

	info, err := d.infoEx()
	if err != nil {
		return color.Palette{}, err
	}
	var colors [color.SlotCount]color.RGB
	for i, v := range info.colorTable {
		r, g, b := fromColorref(v)
		colors[i] = color.RGB{R: r, G: g, B: b}
	}
	return color.FromColors(colors), nil
}

// SetPaletteColor implements console.Device.
func (d *Device) SetPaletteColor(slot color.Slot, c color.RGB) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return err
	}
	if !slot.Valid() {
		return fmt.Errorf("%w: slot %d", console.ErrInvalidParameter, slot)
	}

	info, err := d.infoEx()
	if err != nil {
		return err
	}
	info.colorTable[slot] = colorref(c.R, c.G, c.B)
	return d.setInfoEx(&info)
}

// Attribute implements console.Device.
func (d *Device) Attribute() (color.Attribute, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return color.Attribute{}, err
	}

	info, err := d.infoEx()
	if err != nil {
		return color.Attribute{}, err
	}
	return color.AttributeFromWord(info.attributes), nil
}

// SetAttribute implements console.Device.
func (d *Device) SetAttribute(attr color.Attribute) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return err
	}
	if !attr.Valid() {
		return fmt.Errorf("%w: attribute %v", console.ErrInvalidParameter, attr)
	}
	return call("set text attribute", procSetConsoleTextAttribute,
		uintptr(d.out), uintptr(attr.Word()))
}

// Cursor implements console.Device.
func (d *Device) Cursor() (geom.Point, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return geom.Point{}, err
	}

	info, err := d.infoEx()
	if err != nil {
		return geom.Point{}, err
	}
	return geom.Pt(int(info.cursorPos.x), int(info.cursorPos.y)), nil
}

// SetCursor implements console.Device.
func (d *Device) SetCursor(p geom.Point) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return err
	}
	return wrap("set cursor position",
		windows.SetConsoleCursorPosition(d.out, windows.Coord{X: int16(p.X), Y: int16(p.Y)}))
}

// BufferSize implements console.Device.
func (d *Device) BufferSize() (geom.Size, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return geom.Size{}, err
	}

	info, err := d.infoEx()
	if err != nil {
		return geom.Size{}, err
	}
	return geom.Size{Cols: int(info.bufferSize.x), Rows: int(info.bufferSize.y)}, nil
}

// ResizeBuffer implements console.Device.
func (d *Device) ResizeBuffer(size geom.Size) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return err
	}
	if size.Empty() {
		return fmt.Errorf("%w: size %v", console.ErrInvalidParameter, size)
	}
	c := coord{x: int16(size.Cols), y: int16(size.Rows)}
	return call("set screen buffer size", procSetConsoleScreenBufferSize,
		uintptr(d.out), c.uintptr())
}

// ReadCells implements console.Device.
func (d *Device) ReadCells(r geom.Rect) ([]console.Cell, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	if r.Empty() {
		return nil, fmt.Errorf("%w: region %v", console.ErrInvalidParameter, r)
	}

	buf := make([]charInfo, r.Area())
	size := coord{x: int16(r.Width()), y: int16(r.Height())}
	region := smallRect{
		left: int16(r.Left), top: int16(r.Top),
		right: int16(r.Right - 1), bottom: int16(r.Bottom - 1),
	}
	err := call("read console output", procReadConsoleOutput,
		uintptr(d.out),
		uintptr(unsafe.Pointer(&buf[0])),
		size.uintptr(),
		coord{}.uintptr(),
		uintptr(unsafe.Pointer(&region)))
	if err != nil {
		return nil, err
	}

	cells := make([]console.Cell, len(buf))
	for i, ci := range buf {
		if ci.attr&commonLVBTrailingByte != 0 {
			cells[i] = console.Cell{Attr: color.AttributeFromWord(ci.attr)}
			continue
		}
		cells[i] = console.Cell{
			Rune: rune(ci.ch),
			Attr: color.AttributeFromWord(ci.attr),
		}
	}
	return cells, nil
}

// WriteCells implements console.Device.
func (d *Device) WriteCells(r geom.Rect, cells []console.Cell) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return err
	}
	if r.Empty() {
		return fmt.Errorf("%w: region %v", console.ErrInvalidParameter, r)
	}
	if len(cells) != r.Area() {
		return fmt.Errorf("%w: %d cells for region %v", console.ErrInvalidParameter, len(cells), r)
	}

	buf := make([]charInfo, len(cells))
	for i, cell := range cells {
		ci := charInfo{attr: cell.Attr.Word()}
		switch {
		case cell.Rune == 0:
			ci.attr |= commonLVBTrailingByte
		case cell.Rune > 0xFFFF:
			// The cell grid is UTF-16 units; anything beyond the BMP
			// cannot occupy a single cell.
			ci.ch = 0xFFFD
		default:
			ci.ch = uint16(cell.Rune)
		}
		buf[i] = ci
	}

	size := coord{x: int16(r.Width()), y: int16(r.Height())}
	region := smallRect{
		left: int16(r.Left), top: int16(r.Top),
		right: int16(r.Right - 1), bottom: int16(r.Bottom - 1),
	}
	return call("write console output", procWriteConsoleOutput,
		uintptr(d.out),
		uintptr(unsafe.Pointer(&buf[0])),
		size.uintptr(),
		coord{}.uintptr(),
		uintptr(unsafe.Pointer(&region)))
}

// Title implements console.Device.
func (d *Device) Title() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return "", err
	}

	buf := make([]uint16, 1024)
	n, _, err := procGetConsoleTitle.Call(
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(len(buf)))
	if n == 0 && err != windows.ERROR_SUCCESS {
		return "", wrap("get console title", err)
	}
	return windows.UTF16ToString(buf[:n]), nil
}

// SetTitle implements console.Device.
func (d *Device) SetTitle(title string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return err
	}

	p, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return fmt.Errorf("%w: title %q", console.ErrInvalidParameter, title)
	}
	return call("set console title", procSetConsoleTitle, uintptr(unsafe.Pointer(p)))
}

// Close restores the input mode and releases both handles.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	if err := windows.SetConsoleMode(d.in, d.origInMode); err != nil {
		d.log.Warn("restore console mode: %v", err)
	}
	d.closeHandles()
	return nil
}

// InputSource implements console.InputDevice.
func (d *Device) InputSource() input.Source {
	return &winSource{dev: d}
}
