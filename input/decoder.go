// Package input turns raw console input records into structured events.
//
// The raw queue is edge-less: key records carry no modifier history and
// mouse records carry absolute button snapshots. The Decoder owns the state
// needed to recover edges, namely the instantaneous modifier state, the
// previous button snapshot, and the set of currently held keys. That state
// belongs to exactly one Decoder; running several decoders against one
// Source will make them disagree, since only one of them sees each record.
package input

import (
	"iter"
	"sync"
	"time"

	"github.com/dshills/conio/conlog"
)

const (
	// readBatch bounds how many records one pull takes from the source.
	readBatch = 128

	// pullQuantum bounds how long a single gated pull may block, so a
	// thread waiting for input cannot starve threads that need the
	// console gate for mutation.
	pullQuantum = 25 * time.Millisecond
)

// Decoder converts raw records into events.
//
// A Decoder is consumed forward only: decoding advances its modifier and
// button memory, and there is no rewind. Pulled records are buffered raw
// and decoded only as events are delivered, so Held and Modifiers never
// report state from records the caller has not yet received. It is meant
// to be drained by a single goroutine.
type Decoder struct {
	src  Source
	gate sync.Locker
	log  *conlog.Logger

	state decodeState
	raw   []Record
	queue []Event

	filter  Filter
	repeats bool
}

// decodeState is the memory the decode step mutates. Kept separate so Peek
// can run the same decoding against a throwaway copy.
type decodeState struct {
	mods    Modifier
	buttons ButtonMask
	held    []Key
}

func (s *decodeState) clone() decodeState {
	out := *s
	out.held = append([]Key(nil), s.held...)
	return out
}

func (s *decodeState) isHeld(k Key) bool {
	for _, h := range s.held {
		if h == k {
			return true
		}
	}
	return false
}

func (s *decodeState) hold(k Key) {
	if !s.isHeld(k) {
		s.held = append(s.held, k)
	}
}

func (s *decodeState) release(k Key) {
	for i, h := range s.held {
		if h == k {
			s.held = append(s.held[:i], s.held[i+1:]...)
			return
		}
	}
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithGate serializes every source pull through the given lock. The console
// package passes its process gate here so pulls cannot interleave with
// console mutation.
func WithGate(gate sync.Locker) Option {
	return func(d *Decoder) {
		d.gate = gate
	}
}

// WithLogger attaches a logger.
func WithLogger(log *conlog.Logger) Option {
	return func(d *Decoder) {
		d.log = log.WithComponent("input")
	}
}

// WithFilter sets the initial event filter.
func WithFilter(f Filter) Option {
	return func(d *Decoder) {
		d.filter = f
	}
}

// WithoutRepeats drops key-down events for keys that are already held.
func WithoutRepeats() Option {
	return func(d *Decoder) {
		d.repeats = false
	}
}

// noGate is the default stand-in when no console gate is supplied.
type noGate struct{}

func (noGate) Lock()   {}
func (noGate) Unlock() {}

// NewDecoder creates a decoder over the given record source.
func NewDecoder(src Source, opts ...Option) *Decoder {
	d := &Decoder{
		src:     src,
		gate:    noGate{},
		log:     conlog.Nop(),
		repeats: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Poll returns the next event.
//
// A zero timeout never blocks: it drains whatever is already pending and
// returns (nil, nil) if that produced nothing. A positive timeout blocks up
// to that long; a negative timeout blocks until an event arrives. An
// elapsed timeout is not an error, it is the (nil, nil) result.
//
// Records that decode to nothing (bare modifier transitions, menu records,
// mouse snapshots with no edge and no move flag) are dropped and the pull
// loop continues within the same deadline.
func (d *Decoder) Poll(timeout time.Duration) (Event, error) {
	if ev := d.next(); ev != nil {
		return ev, nil
	}

	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	for {
		wait := pullQuantum
		switch {
		case timeout == 0:
			wait = 0
		case timeout > 0:
			remain := time.Until(deadline)
			if remain <= 0 {
				return nil, nil
			}
			if remain < wait {
				wait = remain
			}
		}

		// The gate is held per pull, never for the whole wait.
		d.gate.Lock()
		recs, err := d.src.Read(readBatch, wait)
		d.gate.Unlock()
		if err != nil {
			return nil, err
		}

		d.raw = append(d.raw, recs...)
		if ev := d.next(); ev != nil {
			return ev, nil
		}
		if timeout == 0 {
			// A short read means the queue is drained; a full batch
			// may still hide an event behind no-op records.
			if len(recs) < readBatch {
				return nil, nil
			}
		}
	}
}

// Wait blocks until an event is available.
func (d *Decoder) Wait() (Event, error) {
	return d.Poll(-1)
}

// Peek returns the next event without consuming it or advancing decoder
// state. Requires the source to support non-destructive record peeks.
func (d *Decoder) Peek() (Event, error) {
	if len(d.queue) > 0 {
		return d.queue[0], nil
	}

	// Decode against a throwaway copy so modifier and button memory is
	// not consumed by a non-destructive read. The raw backlog comes
	// before anything still sitting in the source.
	shadow := d.state.clone()
	if ev := peekDecode(&shadow, d.raw, d.filter, d.repeats); ev != nil {
		return ev, nil
	}

	d.gate.Lock()
	recs, err := d.src.Peek(readBatch)
	d.gate.Unlock()
	if err != nil {
		return nil, err
	}
	return peekDecode(&shadow, recs, d.filter, d.repeats), nil
}

func peekDecode(s *decodeState, recs []Record, f Filter, repeats bool) Event {
	for _, rec := range recs {
		for _, ev := range decodeRecord(s, rec, repeats) {
			if f.Allows(ev.Class()) {
				return ev
			}
		}
	}
	return nil
}

// Flush discards every queued raw record without decoding it, along with
// any already-decoded backlog. Modifier and button state are untouched;
// they reflect logical key state, not queue contents.
func (d *Decoder) Flush() error {
	d.queue = nil
	d.raw = nil

	d.gate.Lock()
	defer d.gate.Unlock()
	for {
		n, err := d.src.Pending()
		if err != nil {
			return err
		}
		if n == 0 {
			d.log.Debug("input queue flushed")
			return nil
		}
		if _, err := d.src.Read(readBatch, 0); err != nil {
			return err
		}
	}
}

// Reset clears all decoder state: the backlog, the held-key set, the
// modifier state, and the button snapshot.
func (d *Decoder) Reset() {
	d.queue = nil
	d.raw = nil
	d.state = decodeState{}
}

// Inject appends a synthetic event to the decoder's backlog, subject to the
// current filter. Useful for tests and for programmatic event simulation.
func (d *Decoder) Inject(ev Event) {
	d.push(ev)
}

// SetFilter replaces the event filter and drops already-queued events that
// the new filter suppresses.
func (d *Decoder) SetFilter(f Filter) {
	d.filter = f
	kept := d.queue[:0]
	for _, ev := range d.queue {
		if f.Allows(ev.Class()) {
			kept = append(kept, ev)
		}
	}
	d.queue = kept
}

// Filter returns the current event filter.
func (d *Decoder) Filter() Filter {
	return d.filter
}

// Held reports whether the decoder has delivered a press without a
// matching release for the given key. Records still buffered raw have not
// happened yet from the caller's point of view.
func (d *Decoder) Held(k Key) bool {
	return d.state.isHeld(k)
}

// Modifiers returns the instantaneous modifier state.
func (d *Decoder) Modifiers() Modifier {
	return d.state.mods
}

// Events returns a lazy, effectively infinite sequence of events. The
// sequence ends only when the underlying source fails; the error is yielded
// with a nil event as the final element.
func (d *Decoder) Events() iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		for {
			ev, err := d.Wait()
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(ev, nil) {
				return
			}
		}
	}
}

// next returns the next deliverable event, decoding buffered raw records
// only as far as needed so decoder state stays in step with delivery.
func (d *Decoder) next() Event {
	for {
		if len(d.queue) > 0 {
			ev := d.queue[0]
			d.queue = d.queue[1:]
			return ev
		}
		if len(d.raw) == 0 {
			return nil
		}
		rec := d.raw[0]
		d.raw = d.raw[1:]
		for _, ev := range decodeRecord(&d.state, rec, d.repeats) {
			d.push(ev)
		}
	}
}

func (d *Decoder) push(ev Event) {
	if ev == nil {
		return
	}
	if d.filter.Allows(ev.Class()) {
		d.queue = append(d.queue, ev)
	}
}

// decodeRecord translates one raw record, mutating the given state. It may
// produce zero events: the caller keeps pulling in that case.
func decodeRecord(s *decodeState, rec Record, repeats bool) []Event {
	switch rec.Type {
	case RecordKey:
		return decodeKey(s, rec.Key, repeats)
	case RecordMouse:
		return decodeMouse(s, rec.Mouse)
	case RecordResize:
		return []Event{ResizeEvent{Size: rec.Size}}
	case RecordFocus:
		return []Event{FocusEvent{Gained: rec.FocusGained}}
	default:
		// Menu and empty records decode to nothing.
		return nil
	}
}

func decodeKey(s *decodeState, k KeyData, repeats bool) []Event {
	// Button virtual keys are covered by mouse records.
	if k.Key.IsMouseButton() {
		return nil
	}

	// Modifier keys update state and are otherwise dropped; the next
	// decoded event reports the new state.
	if mod := modifierFor(k.Key); mod != ModNone {
		if k.Down {
			s.mods = s.mods.With(mod)
		} else {
			s.mods = s.mods.Without(mod)
		}
		return nil
	}

	held := false
	if k.Down {
		held = s.isHeld(k.Key)
		s.hold(k.Key)
		if held && !repeats {
			return nil
		}
	} else {
		s.release(k.Key)
	}

	return []Event{KeyEvent{
		Key:       k.Key,
		Rune:      k.Rune,
		Down:      k.Down,
		Repeat:    k.Repeat,
		Held:      held,
		Modifiers: s.mods,
	}}
}

func decodeMouse(s *decodeState, m MouseData) []Event {
	if m.Flags.Has(MouseWheeled) || m.Flags.Has(MouseHWheeled) {
		return []Event{MouseEvent{
			Pos:        m.Pos,
			Kind:       MouseWheel,
			WheelDelta: m.Wheel,
			Horizontal: m.Flags.Has(MouseHWheeled),
			Modifiers:  s.mods,
		}}
	}

	// Recover press/release edges as the symmetric difference between
	// this snapshot and the previous one.
	var transitions []ButtonTransition
	for b := Button(0); b < ButtonCount; b++ {
		now := m.Buttons.Down(b)
		if now != s.buttons.Down(b) {
			transitions = append(transitions, ButtonTransition{Button: b, Pressed: now})
		}
	}
	s.buttons = m.Buttons

	kind := MouseClick
	switch {
	case m.Flags.Has(MouseDoubleClick):
		kind = MouseDouble
	case m.Flags.Has(MouseMoved):
		kind = MouseMove
	default:
		if len(transitions) == 0 {
			// No edge, no movement: nothing worth surfacing.
			return nil
		}
	}

	return []Event{MouseEvent{
		Pos:         m.Pos,
		Kind:        kind,
		Transitions: transitions,
		Modifiers:   s.mods,
	}}
}
