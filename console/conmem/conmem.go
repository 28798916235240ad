// Package conmem provides an in-memory console device: a cell grid,
// palette, attribute register, and an injectable raw record queue. It backs
// the package tests and works as a headless device for programs that want
// console semantics without a terminal.
package conmem

import (
	"fmt"
	"sync"

	"github.com/dshills/conio/color"
	"github.com/dshills/conio/console"
	"github.com/dshills/conio/geom"
	"github.com/dshills/conio/input"
)

// Device is an in-memory console. It implements console.InputDevice.
type Device struct {
	mu       sync.Mutex
	size     geom.Size
	cells    []console.Cell
	pal      color.Palette
	attr     color.Attribute
	cursor   geom.Point
	title    string
	closed   bool
	failNext error

	queue input.Queue
}

// New creates a device with the given buffer size. A zero size defaults to
// 80x25.
func New(size geom.Size) *Device {
	if size.Empty() {
		size = geom.Size{Cols: 80, Rows: 25}
	}
	d := &Device{
		size: size,
		pal:  color.Default(),
		attr: color.Attr(color.Gray, color.Black),
	}
	d.cells = blankCells(size, d.attr)
	return d
}

func blankCells(size geom.Size, attr color.Attribute) []console.Cell {
	cells := make([]console.Cell, size.Area())
	for i := range cells {
		cells[i] = console.Cell{Rune: ' ', Attr: attr}
	}
	return cells
}

// FailNext makes the next device call fail with err. Used to exercise
// commit-after-success behavior.
func (d *Device) FailNext(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failNext = err
}

// takeFail must be called with d.mu held.
func (d *Device) takeFail() error {
	err := d.failNext
	d.failNext = nil
	if err == nil && d.closed {
		return console.ErrInvalidHandle
	}
	return err
}

// Palette implements console.Device.
func (d *Device) Palette() (color.Palette, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.takeFail(); err != nil {
		return color.Palette{}, err
	}
	return d.pal, nil
}

// SetPaletteColor implements console.Device.
func (d *Device) SetPaletteColor(slot color.Slot, c color.RGB) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.takeFail(); err != nil {
		return err
	}
	if !slot.Valid() {
		return fmt.Errorf("%w: slot %d", console.ErrInvalidParameter, slot)
	}
	return d.pal.SetColor(slot, c)
}

// Attribute implements console.Device.
func (d *Device) Attribute() (color.Attribute, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.takeFail(); err != nil {
		return color.Attribute{}, err
	}
	return d.attr, nil
}

// SetAttribute implements console.Device.
func (d *Device) SetAttribute(attr color.Attribute) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.takeFail(); err != nil {
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
	if err := d.takeFail(); err != nil {
		return geom.Point{}, err
	}
	return d.cursor, nil
}

// SetCursor implements console.Device.
func (d *Device) SetCursor(p geom.Point) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.takeFail(); err != nil {
		return err
	}
	if !p.In(geom.RectAt(geom.Pt(0, 0), d.size)) {
		return fmt.Errorf("%w: cursor %v outside %v", console.ErrInvalidParameter, p, d.size)
	}
	d.cursor = p
	return nil
}

// BufferSize implements console.Device.
func (d *Device) BufferSize() (geom.Size, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.takeFail(); err != nil {
		return geom.Size{}, err
	}
	return d.size, nil
}

// ResizeBuffer implements console.Device, preserving overlapping content.
func (d *Device) ResizeBuffer(size geom.Size) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.takeFail(); err != nil {
		return err
	}
	if size.Empty() {
		return fmt.Errorf("%w: size %v", console.ErrInvalidParameter, size)
	}
	if size == d.size {
		return nil
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

	// A real console raises a resize record here; the simulation does
	// the same so decoders observe it.
	d.queue.Post(input.ResizeRecord(size))
	return nil
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

// ReadCells implements console.Device.
func (d *Device) ReadCells(r geom.Rect) ([]console.Cell, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.takeFail(); err != nil {
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

// WriteCells implements console.Device.
func (d *Device) WriteCells(r geom.Rect, cells []console.Cell) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.takeFail(); err != nil {
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
		i += copy(row[r.Left:r.Right], cells[i:i+r.Width()])
	}
	return nil
}

// Title implements console.Device.
func (d *Device) Title() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.takeFail(); err != nil {
		return "", err
	}
	return d.title, nil
}

// SetTitle implements console.Device.
func (d *Device) SetTitle(title string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.takeFail(); err != nil {
		return err
	}
	d.title = title
	return nil
}

// Close implements console.Device.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// InputSource implements console.InputDevice.
func (d *Device) InputSource() input.Source {
	return &d.queue
}

// PostRecords appends raw records to the input queue, waking any pending
// read.
func (d *Device) PostRecords(recs ...input.Record) {
	d.queue.Post(recs...)
}

// CellAt returns the cell at p, for assertions in tests.
func (d *Device) CellAt(p geom.Point) console.Cell {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !p.In(geom.RectAt(geom.Pt(0, 0), d.size)) {
		return console.Cell{}
	}
	return d.cells[p.Y*d.size.Cols+p.X]
}
