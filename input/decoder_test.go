package input

import (
	"testing"
	"time"

	"github.com/dshills/conio/geom"
)

// fakeSource is an in-memory record queue implementing Source.
type fakeSource struct {
	recs  []Record
	reads int
}

func (f *fakeSource) Read(max int, timeout time.Duration) ([]Record, error) {
	f.reads++
	if len(f.recs) == 0 {
		if timeout > 0 {
			time.Sleep(timeout)
		}
		return nil, nil
	}
	n := max
	if n > len(f.recs) {
		n = len(f.recs)
	}
	out := f.recs[:n]
	f.recs = f.recs[n:]
	return out, nil
}

func (f *fakeSource) Peek(max int) ([]Record, error) {
	n := max
	if n > len(f.recs) {
		n = len(f.recs)
	}
	return append([]Record(nil), f.recs[:n]...), nil
}

func (f *fakeSource) Pending() (int, error) {
	return len(f.recs), nil
}

func mustPoll(t *testing.T, d *Decoder) Event {
	t.Helper()
	ev, err := d.Poll(0)
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if ev == nil {
		t.Fatal("Poll returned no event")
	}
	return ev
}

func TestMouseEdgeDetection(t *testing.T) {
	// Absolute snapshots 0b000, 0b001, 0b001 (move), 0b011, 0b000 must
	// decode to: nothing, press left, move with no edges, press right,
	// release left+right.
	pos := geom.Pt(3, 4)
	src := &fakeSource{recs: []Record{
		MouseRecord(pos, 0b000, 0, 0),
		MouseRecord(pos, 0b001, 0, 0),
		MouseRecord(pos, 0b001, MouseMoved, 0),
		MouseRecord(pos, 0b011, 0, 0),
		MouseRecord(pos, 0b000, 0, 0),
	}}
	d := NewDecoder(src)

	ev := mustPoll(t, d)
	me, ok := ev.(MouseEvent)
	if !ok {
		t.Fatalf("event 1: %T", ev)
	}
	if len(me.Transitions) != 1 || !me.Pressed(ButtonLeft) {
		t.Fatalf("event 1 transitions = %v, want press left", me.Transitions)
	}

	ev = mustPoll(t, d)
	me = ev.(MouseEvent)
	if me.Kind != MouseMove || len(me.Transitions) != 0 {
		t.Fatalf("event 2 = %v, want pure move", me)
	}

	ev = mustPoll(t, d)
	me = ev.(MouseEvent)
	if len(me.Transitions) != 1 || !me.Pressed(ButtonRight) {
		t.Fatalf("event 3 transitions = %v, want press right", me.Transitions)
	}

	ev = mustPoll(t, d)
	me = ev.(MouseEvent)
	if len(me.Transitions) != 2 || !me.Released(ButtonLeft) || !me.Released(ButtonRight) {
		t.Fatalf("event 4 transitions = %v, want release left+right", me.Transitions)
	}
}

func TestModifierPersistence(t *testing.T) {
	src := &fakeSource{recs: []Record{
		KeyRecord(KeyShift, 0, true, 1),
		KeyRecord(KeyA, 'A', true, 1),
		KeyRecord(KeyA, 'A', false, 1),
		KeyRecord(KeyShift, 0, false, 1),
		KeyRecord(KeyA, 'a', true, 1),
	}}
	d := NewDecoder(src)

	ev := mustPoll(t, d)
	ke := ev.(KeyEvent)
	if !ke.Down || ke.Key != KeyA || !ke.Modifiers.HasShift() {
		t.Fatalf("shifted press = %v", ke)
	}

	ev = mustPoll(t, d) // release of A
	if ke = ev.(KeyEvent); ke.Down {
		t.Fatalf("expected release, got %v", ke)
	}

	ev = mustPoll(t, d)
	ke = ev.(KeyEvent)
	if ke.Modifiers.HasShift() {
		t.Fatalf("press after shift-up still shifted: %v", ke)
	}
}

func TestModifierRecordsProduceNoEvent(t *testing.T) {
	src := &fakeSource{recs: []Record{
		KeyRecord(KeyControl, 0, true, 1),
		KeyRecord(KeyLMenu, 0, true, 1),
	}}
	d := NewDecoder(src)
	ev, err := d.Poll(0)
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if ev != nil {
		t.Fatalf("bare modifier records decoded to %v", ev)
	}
	if mods := d.Modifiers(); !mods.HasCtrl() || !mods.HasAlt() {
		t.Fatalf("modifier state not updated: %v", mods)
	}
}

func TestPollZeroTimeoutReturnsImmediately(t *testing.T) {
	d := NewDecoder(&fakeSource{})
	start := time.Now()
	ev, err := d.Poll(0)
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if ev != nil {
		t.Fatalf("empty source yielded %v", ev)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("Poll(0) took %v", elapsed)
	}
}

func TestPollTimeoutElapses(t *testing.T) {
	d := NewDecoder(&fakeSource{})
	start := time.Now()
	ev, err := d.Poll(40 * time.Millisecond)
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if ev != nil {
		t.Fatalf("empty source yielded %v", ev)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("Poll returned after %v, before the timeout", elapsed)
	}
}

func TestPollSkipsEmptyRecords(t *testing.T) {
	// Menu records and bare modifiers decode to nothing; Poll must keep
	// pulling within the same call until a real event appears.
	src := &fakeSource{recs: []Record{
		{Type: RecordMenu, MenuCommand: 7},
		KeyRecord(KeyShift, 0, true, 1),
		ResizeRecord(geom.Size{Cols: 120, Rows: 40}),
	}}
	d := NewDecoder(src)
	ev := mustPoll(t, d)
	re, ok := ev.(ResizeEvent)
	if !ok || re.Size.Cols != 120 || re.Size.Rows != 40 {
		t.Fatalf("got %v, want resize event", ev)
	}
}

func TestFocusDecoding(t *testing.T) {
	src := &fakeSource{recs: []Record{
		FocusRecord(true),
		FocusRecord(false),
	}}
	d := NewDecoder(src)
	if fe := mustPoll(t, d).(FocusEvent); !fe.Gained {
		t.Error("first focus event should be a gain")
	}
	if fe := mustPoll(t, d).(FocusEvent); fe.Gained {
		t.Error("second focus event should be a loss")
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	src := &fakeSource{recs: []Record{
		KeyRecord(KeyShift, 0, true, 1),
		KeyRecord(KeyB, 'B', true, 1),
	}}
	d := NewDecoder(src)

	first, err := d.Peek()
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	second, err := d.Peek()
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	ke, ok := first.(KeyEvent)
	if !ok || ke.Key != KeyB || !ke.Modifiers.HasShift() {
		t.Fatalf("Peek = %v", first)
	}
	if first != second {
		t.Fatalf("repeated Peek disagreed: %v vs %v", first, second)
	}

	// Peeking must not have consumed modifier state.
	if !d.Modifiers().IsEmpty() {
		t.Fatalf("Peek mutated modifier state: %v", d.Modifiers())
	}

	// A real poll then yields the same event.
	polled := mustPoll(t, d)
	if polled != first {
		t.Fatalf("Poll after Peek = %v, want %v", polled, first)
	}
}

func TestFlushKeepsLogicalState(t *testing.T) {
	src := &fakeSource{recs: []Record{
		KeyRecord(KeyShift, 0, true, 1),
	}}
	d := NewDecoder(src)
	if _, err := d.Poll(0); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if !d.Modifiers().HasShift() {
		t.Fatal("setup: shift should be active")
	}

	src.recs = []Record{
		KeyRecord(KeyC, 'C', true, 1),
		FocusRecord(true),
	}
	if err := d.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if n, _ := src.Pending(); n != 0 {
		t.Errorf("source still has %d records after flush", n)
	}
	if !d.Modifiers().HasShift() {
		t.Error("Flush cleared modifier state")
	}

	ev, err := d.Poll(0)
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if ev != nil {
		t.Errorf("event survived flush: %v", ev)
	}
}

func TestFilterSuppressesButAdvancesState(t *testing.T) {
	src := &fakeSource{recs: []Record{
		MouseRecord(geom.Pt(0, 0), 0b001, 0, 0),
		KeyRecord(KeyD, 'd', true, 1),
	}}
	d := NewDecoder(src, WithFilter(Filter(ClassMouseClick)))

	ev := mustPoll(t, d)
	if _, ok := ev.(KeyEvent); !ok {
		t.Fatalf("got %v, want the key event only", ev)
	}

	// The suppressed click still advanced the button snapshot, so the
	// release edge is detected later.
	d.SetFilter(0)
	src.recs = []Record{MouseRecord(geom.Pt(0, 0), 0b000, 0, 0)}
	me := mustPoll(t, d).(MouseEvent)
	if !me.Released(ButtonLeft) {
		t.Fatalf("release edge lost: %v", me)
	}
}

func TestRepeatTracking(t *testing.T) {
	recs := []Record{
		KeyRecord(KeyE, 'e', true, 1),
		KeyRecord(KeyE, 'e', true, 3),
		KeyRecord(KeyE, 'e', false, 1),
	}

	d := NewDecoder(&fakeSource{recs: append([]Record(nil), recs...)})
	first := mustPoll(t, d).(KeyEvent)
	if first.Held {
		t.Error("first press flagged as held")
	}
	if !d.Held(KeyE) {
		t.Error("Held(KeyE) false after press")
	}
	repeat := mustPoll(t, d).(KeyEvent)
	if !repeat.Held || repeat.Repeat != 3 {
		t.Errorf("repeat press = %+v", repeat)
	}
	release := mustPoll(t, d).(KeyEvent)
	if release.Down {
		t.Errorf("expected release, got %+v", release)
	}
	if d.Held(KeyE) {
		t.Error("Held(KeyE) true after release")
	}

	// With repeats disabled the second press disappears.
	d = NewDecoder(&fakeSource{recs: append([]Record(nil), recs...)}, WithoutRepeats())
	mustPoll(t, d)
	ev := mustPoll(t, d)
	if ke := ev.(KeyEvent); ke.Down {
		t.Errorf("repeat press leaked through: %v", ke)
	}
}

func TestStateTracksDelivery(t *testing.T) {
	// All records arrive in one batch; Held and Modifiers must reflect
	// only the events delivered so far, not records still buffered.
	src := &fakeSource{recs: []Record{
		KeyRecord(KeyShift, 0, true, 1),
		KeyRecord(KeyG, 'G', true, 1),
		KeyRecord(KeyShift, 0, false, 1),
		KeyRecord(KeyG, 'G', false, 1),
	}}
	d := NewDecoder(src)

	press := mustPoll(t, d).(KeyEvent)
	if !press.Down || !press.Modifiers.HasShift() {
		t.Fatalf("press = %v, want shifted down", press)
	}
	if !d.Held(KeyG) {
		t.Error("Held(KeyG) false with release still buffered")
	}
	if !d.Modifiers().HasShift() {
		t.Error("shift dropped before its release was delivered")
	}

	// Peeking at the buffered release consumes nothing.
	peeked, err := d.Peek()
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if ke, ok := peeked.(KeyEvent); !ok || ke.Down {
		t.Fatalf("Peek = %v, want buffered release", peeked)
	}
	if !d.Held(KeyG) || !d.Modifiers().HasShift() {
		t.Error("Peek advanced decoder state")
	}

	release := mustPoll(t, d).(KeyEvent)
	if release.Down || release.Modifiers.HasShift() {
		t.Fatalf("release = %v", release)
	}
	if d.Held(KeyG) {
		t.Error("Held(KeyG) true after release delivered")
	}
	if d.Modifiers().HasShift() {
		t.Error("shift survived its release")
	}
}

func TestPollZeroDrainsPastFullBatch(t *testing.T) {
	// A full read of no-op records must not hide a real event from a
	// zero-timeout poll.
	recs := make([]Record, 0, readBatch+1)
	for i := 0; i < readBatch; i++ {
		recs = append(recs, Record{Type: RecordMenu, MenuCommand: 1})
	}
	recs = append(recs, FocusRecord(true))
	d := NewDecoder(&fakeSource{recs: recs})

	ev := mustPoll(t, d)
	if fe, ok := ev.(FocusEvent); !ok || !fe.Gained {
		t.Fatalf("got %v, want focus gain", ev)
	}
}

func TestDoubleClickFlag(t *testing.T) {
	src := &fakeSource{recs: []Record{
		MouseRecord(geom.Pt(1, 1), 0b001, MouseDoubleClick, 0),
	}}
	d := NewDecoder(src)
	me := mustPoll(t, d).(MouseEvent)
	if me.Kind != MouseDouble || !me.Pressed(ButtonLeft) {
		t.Fatalf("double click decoded as %v", me)
	}
}

func TestWheelDecoding(t *testing.T) {
	src := &fakeSource{recs: []Record{
		MouseRecord(geom.Pt(2, 2), 0, MouseWheeled, -120),
		MouseRecord(geom.Pt(2, 2), 0, MouseHWheeled, 120),
	}}
	d := NewDecoder(src)

	me := mustPoll(t, d).(MouseEvent)
	if me.Kind != MouseWheel || me.WheelDelta != -120 || me.Horizontal {
		t.Fatalf("vertical wheel = %v", me)
	}
	me = mustPoll(t, d).(MouseEvent)
	if me.Kind != MouseWheel || me.WheelDelta != 120 || !me.Horizontal {
		t.Fatalf("horizontal wheel = %v", me)
	}
}

func TestInjectAndReset(t *testing.T) {
	d := NewDecoder(&fakeSource{})
	d.Inject(FocusEvent{Gained: true})
	if ev := mustPoll(t, d); ev.(FocusEvent).Gained != true {
		t.Fatalf("injected event = %v", ev)
	}

	d.Inject(FocusEvent{})
	d.state.mods = ModCtrl
	d.state.buttons = 0b101
	d.Reset()
	if ev, _ := d.Poll(0); ev != nil {
		t.Errorf("queue survived reset: %v", ev)
	}
	if d.Modifiers() != ModNone || d.state.buttons != 0 {
		t.Error("state survived reset")
	}
}

func TestEventsSequence(t *testing.T) {
	src := &fakeSource{recs: []Record{
		KeyRecord(KeyF, 'f', true, 1),
		KeyRecord(KeyF, 'f', false, 1),
		ResizeRecord(geom.Size{Cols: 80, Rows: 25}),
	}}
	d := NewDecoder(src)

	var got []Event
	for ev, err := range d.Events() {
		if err != nil {
			t.Fatalf("Events: %v", err)
		}
		got = append(got, ev)
		if len(got) == 3 {
			break
		}
	}
	if _, ok := got[2].(ResizeEvent); !ok {
		t.Fatalf("third event = %v", got[2])
	}
}
