// Package console provides the process-level console context: a single
// exclusive gate serializing all state-mutating console operations, the
// palette cache that backs RGB color translation, and the pass-throughs to
// the native buffer/window surface.
//
// All multi-step operations (colored writes, clears, state restores) run
// under the gate for their full sequence, so interleavings from other
// goroutines cannot observe or produce inconsistent intermediate state.
// The gate is not reentrant; exported methods acquire it exactly once and
// delegate to *Locked helpers internally.
package console

import (
	"fmt"
	"sync"

	runewidth "github.com/mattn/go-runewidth"

	"github.com/dshills/conio/color"
	"github.com/dshills/conio/conlog"
	"github.com/dshills/conio/geom"
	"github.com/dshills/conio/input"
)

// Console is an explicitly owned console context. Construct one per process
// with New; it holds the palette cache, the process gate, and the device.
type Console struct {
	mu  sync.Mutex
	dev Device
	pal color.Palette
	log *conlog.Logger

	decoder *input.Decoder
}

// Option configures a Console.
type Option func(*Console)

// WithLogger attaches a logger.
func WithLogger(log *conlog.Logger) Option {
	return func(c *Console) {
		c.log = log.WithComponent("console")
	}
}

// New creates a console over the given device and primes the palette cache
// from the device's current color table.
func New(dev Device, opts ...Option) (*Console, error) {
	c := &Console{
		dev: dev,
		log: conlog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	pal, err := dev.Palette()
	if err != nil {
		return nil, fmt.Errorf("read initial palette: %w", err)
	}
	c.pal = pal
	c.log.Debug("console opened")
	return c, nil
}

// Close releases the device.
func (c *Console) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dev.Close()
}

// Color returns the cached RGB value of a palette slot. The cache is kept
// consistent by SetColor, so this never touches the device.
func (c *Console) Color(slot color.Slot) (color.RGB, error) {
	if !slot.Valid() {
		return color.RGB{}, fmt.Errorf("%w: slot %d", ErrInvalidParameter, slot)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	rgb, _ := c.pal.Color(slot)
	return rgb, nil
}

// SetColor remaps a palette slot. The cache commits only after the native
// call succeeds; on failure the cached value is unchanged.
func (c *Console) SetColor(slot color.Slot, rgb color.RGB) error {
	if !slot.Valid() {
		return fmt.Errorf("%w: slot %d", ErrInvalidParameter, slot)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.dev.SetPaletteColor(slot, rgb); err != nil {
		return fmt.Errorf("set color %v: %w", slot, err)
	}
	_ = c.pal.SetColor(slot, rgb)
	c.log.Debug("slot %v mapped to %v", slot, rgb)
	return nil
}

// Palette returns a copy of the cached palette.
func (c *Console) Palette() color.Palette {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pal
}

// SetPalette remaps all 16 slots in one gated sequence. Each slot commits
// to the cache as its native call succeeds; on failure the cache reflects
// exactly the slots that were applied.
func (c *Console) SetPalette(p color.Palette) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setPaletteLocked(p)
}

func (c *Console) setPaletteLocked(p color.Palette) error {
	colors := p.Colors()
	for i, rgb := range colors {
		slot := color.Slot(i)
		if err := c.dev.SetPaletteColor(slot, rgb); err != nil {
			return fmt.Errorf("set color %v: %w", slot, err)
		}
		_ = c.pal.SetColor(slot, rgb)
	}
	return nil
}

// NearestSlot returns the palette slot closest to rgb by squared Euclidean
// distance, ties going to the lower slot. Stable while the palette is
// unchanged.
func (c *Console) NearestSlot(rgb color.RGB) color.Slot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pal.Nearest(rgb)
}

// Attribute reads the current write attribute register.
func (c *Console) Attribute() (color.Attribute, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	attr, err := c.dev.Attribute()
	if err != nil {
		return color.Attribute{}, fmt.Errorf("read attribute: %w", err)
	}
	return attr, nil
}

// SetAttribute replaces the current write attribute register.
func (c *Console) SetAttribute(attr color.Attribute) error {
	if !attr.Valid() {
		return fmt.Errorf("%w: attribute %v", ErrInvalidParameter, attr)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.dev.SetAttribute(attr); err != nil {
		return fmt.Errorf("set attribute: %w", err)
	}
	return nil
}

// Cursor reports the cursor position.
func (c *Console) Cursor() (geom.Point, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, err := c.dev.Cursor()
	if err != nil {
		return geom.Point{}, fmt.Errorf("read cursor: %w", err)
	}
	return p, nil
}

// SetCursor moves the cursor.
func (c *Console) SetCursor(p geom.Point) error {
	if p.X < 0 || p.Y < 0 {
		return fmt.Errorf("%w: cursor %v", ErrInvalidParameter, p)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.dev.SetCursor(p); err != nil {
		return fmt.Errorf("set cursor: %w", err)
	}
	return nil
}

// BufferSize reports the screen buffer extent.
func (c *Console) BufferSize() (geom.Size, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := c.dev.BufferSize()
	if err != nil {
		return geom.Size{}, fmt.Errorf("read buffer size: %w", err)
	}
	return s, nil
}

// ResizeBuffer changes the screen buffer extent.
func (c *Console) ResizeBuffer(s geom.Size) error {
	if s.Empty() {
		return fmt.Errorf("%w: size %v", ErrInvalidParameter, s)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.dev.ResizeBuffer(s); err != nil {
		return fmt.Errorf("resize buffer: %w", err)
	}
	return nil
}

// ReadCells returns the cells of a region, row-major.
func (c *Console) ReadCells(r geom.Rect) ([]Cell, error) {
	if r.Empty() {
		return nil, fmt.Errorf("%w: region %v", ErrInvalidParameter, r)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	cells, err := c.dev.ReadCells(r)
	if err != nil {
		return nil, fmt.Errorf("read cells %v: %w", r, err)
	}
	return cells, nil
}

// WriteCells replaces the cells of a region, row-major.
func (c *Console) WriteCells(r geom.Rect, cells []Cell) error {
	if r.Empty() {
		return fmt.Errorf("%w: region %v", ErrInvalidParameter, r)
	}
	if len(cells) != r.Area() {
		return fmt.Errorf("%w: %d cells for region %v", ErrInvalidParameter, len(cells), r)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.dev.WriteCells(r, cells); err != nil {
		return fmt.Errorf("write cells %v: %w", r, err)
	}
	return nil
}

// Title reports the window title.
func (c *Console) Title() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, err := c.dev.Title()
	if err != nil {
		return "", fmt.Errorf("read title: %w", err)
	}
	return t, nil
}

// SetTitle replaces the window title.
func (c *Console) SetTitle(title string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.dev.SetTitle(title); err != nil {
		return fmt.Errorf("set title: %w", err)
	}
	return nil
}

// WriteText writes a string starting at p with the given attribute.
// Double-width runes occupy two cells, the second carrying a zero rune.
// Text past the right edge of the buffer is clipped.
func (c *Console) WriteText(p geom.Point, text string, attr color.Attribute) error {
	if !attr.Valid() {
		return fmt.Errorf("%w: attribute %v", ErrInvalidParameter, attr)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeTextLocked(p, text, attr)
}

func (c *Console) writeTextLocked(p geom.Point, text string, attr color.Attribute) error {
	size, err := c.dev.BufferSize()
	if err != nil {
		return fmt.Errorf("read buffer size: %w", err)
	}
	if p.Y < 0 || p.Y >= size.Rows || p.X < 0 || p.X >= size.Cols {
		return fmt.Errorf("%w: position %v outside %v buffer", ErrInvalidParameter, p, size)
	}

	cells := make([]Cell, 0, len(text))
	avail := size.Cols - p.X
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if len(cells)+w > avail {
			break
		}
		cells = append(cells, Cell{Rune: r, Attr: attr})
		if w == 2 {
			cells = append(cells, Cell{Rune: 0, Attr: attr})
		}
	}
	if len(cells) == 0 {
		return nil
	}

	region := geom.RectAt(p, geom.Size{Cols: len(cells), Rows: 1})
	if err := c.dev.WriteCells(region, cells); err != nil {
		return fmt.Errorf("write cells %v: %w", region, err)
	}
	return nil
}

// WriteColored writes text at p in the palette color nearest to fg, then
// restores the previous write attribute. The whole set-write-restore
// sequence holds the gate, so concurrent writers cannot bleed colors into
// each other's output.
func (c *Console) WriteColored(p geom.Point, text string, fg color.RGB) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	slot := c.pal.Nearest(fg)
	old, err := c.dev.Attribute()
	if err != nil {
		return fmt.Errorf("read attribute: %w", err)
	}

	attr := color.Attribute{FG: slot, BG: old.BG, Flags: old.Flags}
	if err := c.dev.SetAttribute(attr); err != nil {
		return fmt.Errorf("set attribute: %w", err)
	}
	writeErr := c.writeTextLocked(p, text, attr)
	if err := c.dev.SetAttribute(old); err != nil && writeErr == nil {
		return fmt.Errorf("restore attribute: %w", err)
	}
	return writeErr
}

// Clear fills the whole buffer with spaces in the current write attribute
// and homes the cursor, as one gated sequence.
func (c *Console) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	size, err := c.dev.BufferSize()
	if err != nil {
		return fmt.Errorf("read buffer size: %w", err)
	}
	attr, err := c.dev.Attribute()
	if err != nil {
		return fmt.Errorf("read attribute: %w", err)
	}

	cells := make([]Cell, size.Area())
	for i := range cells {
		cells[i] = Cell{Rune: ' ', Attr: attr}
	}
	region := geom.RectAt(geom.Pt(0, 0), size)
	if err := c.dev.WriteCells(region, cells); err != nil {
		return fmt.Errorf("write cells %v: %w", region, err)
	}
	if err := c.dev.SetCursor(geom.Pt(0, 0)); err != nil {
		return fmt.Errorf("set cursor: %w", err)
	}
	return nil
}

// Input returns the console's input decoder, creating it on first use. The
// decoder shares the console gate, so each raw-record pull is serialized
// against console mutation. Returns ErrUnsupported if the device has no
// input queue.
func (c *Console) Input() (*input.Decoder, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.decoder != nil {
		return c.decoder, nil
	}
	idev, ok := c.dev.(InputDevice)
	if !ok {
		return nil, fmt.Errorf("%w: device has no input queue", ErrUnsupported)
	}
	c.decoder = input.NewDecoder(idev.InputSource(),
		input.WithGate(&c.mu),
		input.WithLogger(c.log),
	)
	return c.decoder, nil
}
