// Package tcelldriver adapts a tcell terminal screen to the console device
// interface. It emulates the pieces a terminal does not have natively: the
// 16-slot palette is kept locally and painted as truecolor, cell contents
// are shadowed so regions can be read back with their attributes, and raw
// input records are synthesized from the tcell event stream.
package tcelldriver

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/conio/color"
	"github.com/dshills/conio/conlog"
	"github.com/dshills/conio/console"
	"github.com/dshills/conio/geom"
	"github.com/dshills/conio/input"
)

// Device is a terminal-backed console. It implements console.InputDevice.
type Device struct {
	mu     sync.Mutex
	screen tcell.Screen
	log    *conlog.Logger

	size   geom.Size
	cells  []console.Cell
	pal    color.Palette
	attr   color.Attribute
	cursor geom.Point
	title  string
	closed bool

	queue input.Queue

	// Conversion state below is owned by the pump goroutine.
	lastMods  tcell.ModMask
	buttons   input.ButtonMask
	lastPos   geom.Point
	lastClick clickMemory
}

// Option configures a Device.
type Option func(*Device)

// WithScreen supplies an existing screen instead of allocating one. Used
// with tcell's simulation screen in tests.
func WithScreen(s tcell.Screen) Option {
	return func(d *Device) {
		d.screen = s
	}
}

// WithLogger attaches a logger.
func WithLogger(log *conlog.Logger) Option {
	return func(d *Device) {
		d.log = log.WithComponent("tcelldriver")
	}
}

// New initializes the terminal and starts the event pump. Close releases
// the terminal again.
func New(opts ...Option) (*Device, error) {
	d := &Device{
		pal:  color.Default(),
		attr: color.Attr(color.Gray, color.Black),
		log:  conlog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("allocate screen: %w", err)
		}
		d.screen = screen
	}
	if err := d.screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	d.screen.EnableMouse()
	d.screen.EnableFocus()

	cols, rows := d.screen.Size()
	d.size = geom.Size{Cols: cols, Rows: rows}
	d.cells = blankCells(d.size, d.attr)
	d.lastPos = geom.Pt(-1, -1)

	go d.pump()
	return d, nil
}

func blankCells(size geom.Size, attr color.Attribute) []console.Cell {
	cells := make([]console.Cell, size.Area())
	for i := range cells {
		cells[i] = console.Cell{Rune: ' ', Attr: attr}
	}
	return cells
}

// checkOpen must be called with d.mu held.
func (d *Device) checkOpen() error {
	if d.closed {
		return console.ErrInvalidHandle
	}
	return nil
}

// Palette implements console.Device.
func (d *Device) Palette() (color.Palette, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return color.Palette{}, err
	}
	return d.pal, nil
}

// SetPaletteColor implements console.Device. Remapping a slot repaints the
// cells that reference it, matching native console palette semantics where
// already-written text changes color.
func (d *Device) SetPaletteColor(slot color.Slot, c color.RGB) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return err
	}
	if !slot.Valid() {
		return fmt.Errorf("%w: slot %d", console.ErrInvalidParameter, slot)
	}
	if err := d.pal.SetColor(slot, c); err != nil {
		return fmt.Errorf("%w: %v", console.ErrInvalidParameter, err)
	}

	for i, cell := range d.cells {
		if cell.Rune == 0 || (cell.Attr.FG != slot && cell.Attr.BG != slot) {
			continue
		}
		x, y := i%d.size.Cols, i/d.size.Cols
		d.screen.SetContent(x, y, cell.Rune, nil, d.styleLocked(cell.Attr))
	}
	d.screen.Show()
	return nil
}

// Attribute implements console.Device.
func (d *Device) Attribute() (color.Attribute, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return color.Attribute{}, err
	}
	return d.attr, nil
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
	d.attr = attr
	return nil
}

// Cursor implements console.Device.
func (d *Device) Cursor() (geom.Point, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return geom.Point{}, err
	}
	return d.cursor, nil
}

// SetCursor implements console.Device.
func (d *Device) SetCursor(p geom.Point) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return err
	}
	if !p.In(geom.RectAt(geom.Pt(0, 0), d.size)) {
		return fmt.Errorf("%w: cursor %v outside %v", console.ErrInvalidParameter, p, d.size)
	}
	d.cursor = p
	d.screen.ShowCursor(p.X, p.Y)
	d.screen.Show()
	return nil
}

// BufferSize implements console.Device.
func (d *Device) BufferSize() (geom.Size, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return geom.Size{}, err
	}
	return d.size, nil
}

// ResizeBuffer implements console.Device. A terminal's size belongs to the
// user, so programmatic resizing is refused.
func (d *Device) ResizeBuffer(size geom.Size) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return err
	}
	return fmt.Errorf("%w: terminal buffers resize with the window", console.ErrUnsupported)
}

// checkRegion must be called with d.mu held.
func (d *Device) checkRegion(r geom.Rect) error {
	if r.Empty() {
		return fmt.Errorf("%w: region %v", console.ErrInvalidParameter, r)
	}
	bounds := geom.RectAt(geom.Pt(0, 0), d.size)
	if r.Intersect(bounds) != r {
		return fmt.Errorf("%w: region %v outside %v", console.ErrInvalidParameter, r, d.size)
	}
	return nil
}

// ReadCells implements console.Device, serving from the shadow grid.
func (d *Device) ReadCells(r geom.Rect) ([]console.Cell, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	if err := d.checkRegion(r); err != nil {
		return nil, err
	}

	out := make([]console.Cell, 0, r.Area())
	for y := r.Top; y < r.Bottom; y++ {
		row := d.cells[y*d.size.Cols:]
		out = append(out, row[r.Left:r.Right]...)
	}
	return out, nil
}

// WriteCells implements console.Device, updating the shadow grid and the
// screen together. A zero rune marks the trailing half of a wide character
// and is not painted; tcell spans the wide rune itself.
func (d *Device) WriteCells(r geom.Rect, cells []console.Cell) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return err
	}
	if err := d.checkRegion(r); err != nil {
		return err
	}
	if len(cells) != r.Area() {
		return fmt.Errorf("%w: %d cells for region %v", console.ErrInvalidParameter, len(cells), r)
	}

	i := 0
	for y := r.Top; y < r.Bottom; y++ {
		row := d.cells[y*d.size.Cols:]
		copy(row[r.Left:r.Right], cells[i:i+r.Width()])
		for x := r.Left; x < r.Right; x++ {
			cell := cells[i+x-r.Left]
			if cell.Rune == 0 {
				continue
			}
			d.screen.SetContent(x, y, cell.Rune, nil, d.styleLocked(cell.Attr))
		}
		i += r.Width()
	}
	d.screen.Show()
	return nil
}

// Title implements console.Device. Terminals cannot report their title, so
// the last value set through this device is returned.
func (d *Device) Title() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return "", err
	}
	return d.title, nil
}

// SetTitle implements console.Device.
func (d *Device) SetTitle(title string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return err
	}
	d.title = title
	d.screen.SetTitle(title)
	return nil
}

// Close implements console.Device. Finalizing the screen also stops the
// event pump.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.screen.Fini()
	return nil
}

// InputSource implements console.InputDevice.
func (d *Device) InputSource() input.Source {
	return &d.queue
}

// styleLocked resolves an attribute against the local palette. Must be
// called with d.mu held.
func (d *Device) styleLocked(a color.Attribute) tcell.Style {
	fg, _ := d.pal.Color(a.FG)
	bg, _ := d.pal.Color(a.BG)
	st := tcell.StyleDefault.
		Foreground(tcell.NewRGBColor(int32(fg.R), int32(fg.G), int32(fg.B))).
		Background(tcell.NewRGBColor(int32(bg.R), int32(bg.G), int32(bg.B)))
	if a.Flags.Has(color.StyleReverse) {
		st = st.Reverse(true)
	}
	if a.Flags.Has(color.StyleUnderline) {
		st = st.Underline(true)
	}
	return st
}

// applyResize regrows the shadow grid after the terminal changed size,
// preserving overlapping content.
func (d *Device) applyResize(size geom.Size) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if size.Empty() || size == d.size {
		return
	}

	next := blankCells(size, d.attr)
	rows := min(size.Rows, d.size.Rows)
	cols := min(size.Cols, d.size.Cols)
	for y := 0; y < rows; y++ {
		copy(next[y*size.Cols:y*size.Cols+cols], d.cells[y*d.size.Cols:y*d.size.Cols+cols])
	}
	d.size = size
	d.cells = next
	if d.cursor.X >= size.Cols {
		d.cursor.X = size.Cols - 1
	}
	if d.cursor.Y >= size.Rows {
		d.cursor.Y = size.Rows - 1
	}
	d.log.Debug("terminal resized to %dx%d", size.Cols, size.Rows)
}
