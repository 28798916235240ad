package conmem

import (
	"testing"
	"time"

	"github.com/dshills/conio/console"
	"github.com/dshills/conio/geom"
	"github.com/dshills/conio/input"
)

func TestResizePreservesContent(t *testing.T) {
	d := New(geom.Size{Cols: 10, Rows: 4})
	region := geom.RectAt(geom.Pt(0, 0), geom.Size{Cols: 2, Rows: 1})
	cells := []console.Cell{{Rune: 'h'}, {Rune: 'i'}}
	if err := d.WriteCells(region, cells); err != nil {
		t.Fatalf("WriteCells: %v", err)
	}

	if err := d.ResizeBuffer(geom.Size{Cols: 20, Rows: 8}); err != nil {
		t.Fatalf("ResizeBuffer: %v", err)
	}
	if cell := d.CellAt(geom.Pt(0, 0)); cell.Rune != 'h' {
		t.Errorf("cell lost on grow: %+v", cell)
	}

	if err := d.ResizeBuffer(geom.Size{Cols: 1, Rows: 1}); err != nil {
		t.Fatalf("ResizeBuffer shrink: %v", err)
	}
	if cell := d.CellAt(geom.Pt(0, 0)); cell.Rune != 'h' {
		t.Errorf("cell lost on shrink: %+v", cell)
	}
}

func TestQueueReadBlocksUntilPost(t *testing.T) {
	d := New(geom.Size{})
	src := d.InputSource()

	go func() {
		time.Sleep(20 * time.Millisecond)
		d.PostRecords(input.FocusRecord(true))
	}()

	recs, err := src.Read(10, time.Second)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(recs) != 1 || recs[0].Type != input.RecordFocus {
		t.Fatalf("Read = %v", recs)
	}
}

func TestQueueReadTimeout(t *testing.T) {
	d := New(geom.Size{})
	src := d.InputSource()

	start := time.Now()
	recs, err := src.Read(10, 30*time.Millisecond)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("Read = %v", recs)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Read returned after %v", elapsed)
	}
}

func TestQueuePeekNonDestructive(t *testing.T) {
	d := New(geom.Size{})
	src := d.InputSource()
	d.PostRecords(input.FocusRecord(true), input.FocusRecord(false))

	peeked, err := src.Peek(10)
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if len(peeked) != 2 {
		t.Fatalf("Peek = %d records", len(peeked))
	}
	if n, _ := src.Pending(); n != 2 {
		t.Errorf("Pending after peek = %d", n)
	}
}

func TestClosedDeviceReportsInvalidHandle(t *testing.T) {
	d := New(geom.Size{})
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := d.Palette(); err != console.ErrInvalidHandle {
		t.Errorf("Palette after close = %v", err)
	}
}
