package console_test

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dshills/conio/color"
	"github.com/dshills/conio/console"
	"github.com/dshills/conio/console/conmem"
	"github.com/dshills/conio/geom"
	"github.com/dshills/conio/input"
)

func newConsole(t *testing.T) (*console.Console, *conmem.Device) {
	t.Helper()
	dev := conmem.New(geom.Size{Cols: 40, Rows: 10})
	c, err := console.New(dev)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, dev
}

func TestSetColorRoundTrip(t *testing.T) {
	c, _ := newConsole(t)
	want := color.RGB{R: 12, G: 34, B: 56}
	for slot := color.Slot(0); slot < color.SlotCount; slot++ {
		if err := c.SetColor(slot, want); err != nil {
			t.Fatalf("SetColor(%v): %v", slot, err)
		}
		got, err := c.Color(slot)
		if err != nil {
			t.Fatalf("Color(%v): %v", slot, err)
		}
		if got != want {
			t.Errorf("Color(%v) = %v, want %v", slot, got, want)
		}
	}
}

func TestSetColorFailureLeavesCache(t *testing.T) {
	c, dev := newConsole(t)
	before, _ := c.Color(color.Teal)

	dev.FailNext(console.ErrAccessDenied)
	err := c.SetColor(color.Teal, color.RGB{R: 1, G: 2, B: 3})
	if !errors.Is(err, console.ErrAccessDenied) {
		t.Fatalf("SetColor error = %v, want ErrAccessDenied", err)
	}

	after, _ := c.Color(color.Teal)
	if after != before {
		t.Errorf("cache changed on failed native call: %v -> %v", before, after)
	}
}

func TestSetColorRejectsBadSlot(t *testing.T) {
	c, _ := newConsole(t)
	err := c.SetColor(16, color.RGB{})
	if !errors.Is(err, console.ErrInvalidParameter) {
		t.Errorf("SetColor(16) error = %v, want ErrInvalidParameter", err)
	}
	if _, err := c.Color(99); !errors.Is(err, console.ErrInvalidParameter) {
		t.Errorf("Color(99) error = %v, want ErrInvalidParameter", err)
	}
}

func TestNearestSlotIdempotent(t *testing.T) {
	c, _ := newConsole(t)
	for slot := color.Slot(0); slot < color.SlotCount; slot++ {
		rgb, _ := c.Color(slot)
		if got := c.NearestSlot(rgb); got != slot {
			t.Errorf("NearestSlot(Color(%v)) = %v", slot, got)
		}
	}
}

func TestRegionValidation(t *testing.T) {
	c, _ := newConsole(t)

	if _, err := c.ReadCells(geom.Rect{}); !errors.Is(err, console.ErrInvalidParameter) {
		t.Errorf("empty region read error = %v", err)
	}
	region := geom.RectAt(geom.Pt(0, 0), geom.Size{Cols: 3, Rows: 1})
	if err := c.WriteCells(region, make([]console.Cell, 2)); !errors.Is(err, console.ErrInvalidParameter) {
		t.Errorf("short cell slice error = %v", err)
	}
	out := geom.RectAt(geom.Pt(39, 9), geom.Size{Cols: 5, Rows: 5})
	if _, err := c.ReadCells(out); !errors.Is(err, console.ErrInvalidParameter) {
		t.Errorf("out-of-bounds read error = %v", err)
	}
}

func TestWriteTextWideRunes(t *testing.T) {
	c, dev := newConsole(t)
	attr := color.Attr(color.Yellow, color.Black)
	if err := c.WriteText(geom.Pt(1, 2), "a界b", attr); err != nil {
		t.Fatalf("WriteText: %v", err)
	}

	if cell := dev.CellAt(geom.Pt(1, 2)); cell.Rune != 'a' {
		t.Errorf("cell 1 = %q", cell.Rune)
	}
	if cell := dev.CellAt(geom.Pt(2, 2)); cell.Rune != '界' {
		t.Errorf("cell 2 = %q", cell.Rune)
	}
	if cell := dev.CellAt(geom.Pt(3, 2)); cell.Rune != 0 {
		t.Errorf("trailing cell of wide rune = %q", cell.Rune)
	}
	if cell := dev.CellAt(geom.Pt(4, 2)); cell.Rune != 'b' || cell.Attr != attr {
		t.Errorf("cell 4 = %+v", cell)
	}
}

func TestClear(t *testing.T) {
	c, dev := newConsole(t)
	attr := color.Attr(color.White, color.DarkBlue)
	if err := c.SetAttribute(attr); err != nil {
		t.Fatalf("SetAttribute: %v", err)
	}
	if err := c.WriteText(geom.Pt(0, 0), "leftovers", attr); err != nil {
		t.Fatalf("WriteText: %v", err)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if cell := dev.CellAt(geom.Pt(0, 0)); cell.Rune != ' ' || cell.Attr != attr {
		t.Errorf("cell after clear = %+v", cell)
	}
	if pos, _ := c.Cursor(); pos != geom.Pt(0, 0) {
		t.Errorf("cursor after clear = %v", pos)
	}
}

func TestStateRestore(t *testing.T) {
	c, _ := newConsole(t)
	if err := c.SetTitle("before"); err != nil {
		t.Fatal(err)
	}
	st, err := c.State()
	if err != nil {
		t.Fatalf("State: %v", err)
	}

	if err := c.SetColor(color.Red, color.RGB{R: 9}); err != nil {
		t.Fatal(err)
	}
	if err := c.SetTitle("after"); err != nil {
		t.Fatal(err)
	}
	if err := c.SetCursor(geom.Pt(5, 5)); err != nil {
		t.Fatal(err)
	}

	if err := c.Restore(st); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if got, _ := c.Color(color.Red); got != (color.RGB{R: 0xFF}) {
		t.Errorf("palette not restored: %v", got)
	}
	if title, _ := c.Title(); title != "before" {
		t.Errorf("title not restored: %q", title)
	}
	if pos, _ := c.Cursor(); pos != st.Cursor {
		t.Errorf("cursor not restored: %v", pos)
	}
}

func TestInputThroughConsole(t *testing.T) {
	c, dev := newConsole(t)
	dec, err := c.Input()
	if err != nil {
		t.Fatalf("Input: %v", err)
	}
	again, err := c.Input()
	if err != nil || again != dec {
		t.Fatalf("Input() not memoized: %v, %v", again, err)
	}

	dev.PostRecords(input.KeyRecord(input.KeyA, 'a', true, 1))
	ev, err := dec.Poll(time.Second)
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	ke, ok := ev.(input.KeyEvent)
	if !ok || ke.Key != input.KeyA {
		t.Fatalf("event = %v", ev)
	}
}

func TestResizePostsRecord(t *testing.T) {
	c, _ := newConsole(t)
	dec, err := c.Input()
	if err != nil {
		t.Fatalf("Input: %v", err)
	}
	if err := c.ResizeBuffer(geom.Size{Cols: 60, Rows: 20}); err != nil {
		t.Fatalf("ResizeBuffer: %v", err)
	}
	ev, err := dec.Poll(time.Second)
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	re, ok := ev.(input.ResizeEvent)
	if !ok || re.Size.Cols != 60 || re.Size.Rows != 20 {
		t.Fatalf("event = %v", ev)
	}
}

// recordingDevice wraps conmem and logs attribute and write calls so tests
// can assert that gated sequences never interleave.
type recordingDevice struct {
	*conmem.Device
	mu    sync.Mutex
	calls []string
}

func (r *recordingDevice) SetAttribute(attr color.Attribute) error {
	r.mu.Lock()
	r.calls = append(r.calls, fmt.Sprintf("attr:%d", attr.FG))
	r.mu.Unlock()
	return r.Device.SetAttribute(attr)
}

func (r *recordingDevice) WriteCells(rect geom.Rect, cells []console.Cell) error {
	r.mu.Lock()
	r.calls = append(r.calls, fmt.Sprintf("write:%d", cells[0].Attr.FG))
	r.mu.Unlock()
	return r.Device.WriteCells(rect, cells)
}

func TestWriteColoredDoesNotInterleave(t *testing.T) {
	dev := &recordingDevice{Device: conmem.New(geom.Size{Cols: 40, Rows: 10})}
	c, err := console.New(dev)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var wg sync.WaitGroup
	colors := []color.RGB{
		{R: 0xFF}, // nearest Red
		{G: 0xFF}, // nearest Green
	}
	rows := []int{1, 2}
	for i := range colors {
		wg.Add(1)
		go func(rgb color.RGB, row int) {
			defer wg.Done()
			for n := 0; n < 25; n++ {
				if err := c.WriteColored(geom.Pt(0, row), "x", rgb); err != nil {
					t.Errorf("WriteColored: %v", err)
					return
				}
			}
		}(colors[i], rows[i])
	}
	wg.Wait()

	// Every write must use the color of the immediately preceding
	// attribute set; an interleaving would break the pairing.
	dev.mu.Lock()
	defer dev.mu.Unlock()
	lastAttr := ""
	for _, call := range dev.calls {
		if attr, ok := strings.CutPrefix(call, "attr:"); ok {
			lastAttr = attr
			continue
		}
		if w, ok := strings.CutPrefix(call, "write:"); ok {
			if w != lastAttr {
				t.Fatalf("write with attribute %s after attr set %s", w, lastAttr)
			}
		}
	}
}

// bareDevice has no input queue.
type bareDevice struct {
	*conmem.Device
}

func (bareDevice) InputSource() {} // shadow the method with a non-Source shape

func TestInputUnsupported(t *testing.T) {
	dev := bareDevice{Device: conmem.New(geom.Size{})}
	c, err := console.New(dev)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Input(); !errors.Is(err, console.ErrUnsupported) {
		t.Errorf("Input error = %v, want ErrUnsupported", err)
	}
}
