// Package codec serializes decoded input events and cell attributes as
// JSON, one document per event. The format is what coniodump emits and is
// stable enough to feed back in for replay.
package codec

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/conio/color"
	"github.com/dshills/conio/geom"
	"github.com/dshills/conio/input"
)

// ErrBadMessage is returned when a document cannot be decoded.
var ErrBadMessage = errors.New("malformed message")

// EncodeAttribute renders an attribute as {"fg":...,"bg":...,"flags":...}
// with slot names and a flag list.
func EncodeAttribute(a color.Attribute) ([]byte, error) {
	data := []byte(`{}`)
	var err error
	if data, err = sjson.SetBytes(data, "fg", a.FG.String()); err != nil {
		return nil, fmt.Errorf("encode attribute: %w", err)
	}
	if data, err = sjson.SetBytes(data, "bg", a.BG.String()); err != nil {
		return nil, fmt.Errorf("encode attribute: %w", err)
	}
	if a.Flags.Has(color.StyleReverse) {
		if data, err = sjson.SetBytes(data, "flags.-1", "Reverse"); err != nil {
			return nil, fmt.Errorf("encode attribute: %w", err)
		}
	}
	if a.Flags.Has(color.StyleUnderline) {
		if data, err = sjson.SetBytes(data, "flags.-1", "Underline"); err != nil {
			return nil, fmt.Errorf("encode attribute: %w", err)
		}
	}
	return data, nil
}

// DecodeAttribute parses the document produced by EncodeAttribute.
func DecodeAttribute(data []byte) (color.Attribute, error) {
	if !gjson.ValidBytes(data) {
		return color.Attribute{}, fmt.Errorf("%w: invalid JSON", ErrBadMessage)
	}
	fg, ok := color.SlotFromName(gjson.GetBytes(data, "fg").String())
	if !ok {
		return color.Attribute{}, fmt.Errorf("%w: bad fg slot", ErrBadMessage)
	}
	bg, ok := color.SlotFromName(gjson.GetBytes(data, "bg").String())
	if !ok {
		return color.Attribute{}, fmt.Errorf("%w: bad bg slot", ErrBadMessage)
	}

	attr := color.Attr(fg, bg)
	for _, flag := range gjson.GetBytes(data, "flags").Array() {
		switch flag.String() {
		case "Reverse":
			attr.Flags |= color.StyleReverse
		case "Underline":
			attr.Flags |= color.StyleUnderline
		default:
			return color.Attribute{}, fmt.Errorf("%w: unknown flag %q", ErrBadMessage, flag.String())
		}
	}
	return attr, nil
}

// EncodeEvent renders one decoded event. Every document carries a "type"
// discriminator: "key", "mouse", "resize", or "focus".
func EncodeEvent(ev input.Event) ([]byte, error) {
	switch e := ev.(type) {
	case input.KeyEvent:
		return encodeKey(e)
	case input.MouseEvent:
		return encodeMouse(e)
	case input.ResizeEvent:
		return doc().add("type", "resize").
			add("cols", e.Size.Cols).
			add("rows", e.Size.Rows).bytes()
	case input.FocusEvent:
		return doc().add("type", "focus").add("gained", e.Gained).bytes()
	default:
		return nil, fmt.Errorf("%w: unknown event %T", ErrBadMessage, ev)
	}
}

// DecodeEvent parses a document produced by EncodeEvent.
func DecodeEvent(data []byte) (input.Event, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrBadMessage)
	}
	switch typ := gjson.GetBytes(data, "type").String(); typ {
	case "key":
		return decodeKey(data)
	case "mouse":
		return decodeMouse(data)
	case "resize":
		return input.ResizeEvent{Size: geom.Size{
			Cols: int(gjson.GetBytes(data, "cols").Int()),
			Rows: int(gjson.GetBytes(data, "rows").Int()),
		}}, nil
	case "focus":
		return input.FocusEvent{Gained: gjson.GetBytes(data, "gained").Bool()}, nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrBadMessage, typ)
	}
}

func encodeKey(e input.KeyEvent) ([]byte, error) {
	b := doc().add("type", "key").
		add("key", int(e.Key)).
		add("name", e.Key.String()).
		add("down", e.Down).
		add("repeat", e.Repeat).
		add("held", e.Held)
	if e.Rune != 0 {
		b = b.add("rune", string(e.Rune))
	}
	return b.addModifiers(e.Modifiers).bytes()
}

func decodeKey(data []byte) (input.Event, error) {
	ev := input.KeyEvent{
		Key:    input.Key(gjson.GetBytes(data, "key").Int()),
		Down:   gjson.GetBytes(data, "down").Bool(),
		Repeat: int(gjson.GetBytes(data, "repeat").Int()),
		Held:   gjson.GetBytes(data, "held").Bool(),
	}
	if r := gjson.GetBytes(data, "rune").String(); r != "" {
		ev.Rune = []rune(r)[0]
	}
	mods, err := decodeModifiers(data)
	if err != nil {
		return nil, err
	}
	ev.Modifiers = mods
	return ev, nil
}

func encodeMouse(e input.MouseEvent) ([]byte, error) {
	b := doc().add("type", "mouse").
		add("kind", e.Kind.String()).
		add("x", e.Pos.X).
		add("y", e.Pos.Y)
	for i, tr := range e.Transitions {
		b = b.add(fmt.Sprintf("transitions.%d.button", i), tr.Button.String()).
			add(fmt.Sprintf("transitions.%d.pressed", i), tr.Pressed)
	}
	if e.Kind == input.MouseWheel {
		b = b.add("wheel", e.WheelDelta).add("horizontal", e.Horizontal)
	}
	return b.addModifiers(e.Modifiers).bytes()
}

func decodeMouse(data []byte) (input.Event, error) {
	kind, err := mouseKind(gjson.GetBytes(data, "kind").String())
	if err != nil {
		return nil, err
	}
	ev := input.MouseEvent{
		Pos:  geom.Pt(int(gjson.GetBytes(data, "x").Int()), int(gjson.GetBytes(data, "y").Int())),
		Kind: kind,
	}
	for _, tr := range gjson.GetBytes(data, "transitions").Array() {
		btn, err := buttonNamed(tr.Get("button").String())
		if err != nil {
			return nil, err
		}
		ev.Transitions = append(ev.Transitions, input.ButtonTransition{
			Button:  btn,
			Pressed: tr.Get("pressed").Bool(),
		})
	}
	if kind == input.MouseWheel {
		ev.WheelDelta = int(gjson.GetBytes(data, "wheel").Int())
		ev.Horizontal = gjson.GetBytes(data, "horizontal").Bool()
	}
	mods, err := decodeModifiers(data)
	if err != nil {
		return nil, err
	}
	ev.Modifiers = mods
	return ev, nil
}

func mouseKind(name string) (input.MouseKind, error) {
	for _, k := range []input.MouseKind{input.MouseClick, input.MouseMove, input.MouseDouble, input.MouseWheel} {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown mouse kind %q", ErrBadMessage, name)
}

func buttonNamed(name string) (input.Button, error) {
	for b := input.Button(0); b < input.ButtonCount; b++ {
		if b.String() == name {
			return b, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown button %q", ErrBadMessage, name)
}

func decodeModifiers(data []byte) (input.Modifier, error) {
	var mods input.Modifier
	for _, m := range gjson.GetBytes(data, "modifiers").Array() {
		switch m.String() {
		case "Shift":
			mods = mods.With(input.ModShift)
		case "Ctrl":
			mods = mods.With(input.ModCtrl)
		case "Alt":
			mods = mods.With(input.ModAlt)
		default:
			return 0, fmt.Errorf("%w: unknown modifier %q", ErrBadMessage, m.String())
		}
	}
	return mods, nil
}

// builder threads sjson writes, deferring the first error.
type builder struct {
	data []byte
	err  error
}

func doc() builder {
	return builder{data: []byte(`{}`)}
}

func (b builder) add(path string, value any) builder {
	if b.err != nil {
		return b
	}
	data, err := sjson.SetBytes(b.data, path, value)
	return builder{data: data, err: err}
}

func (b builder) addModifiers(mods input.Modifier) builder {
	if mods.HasShift() {
		b = b.add("modifiers.-1", "Shift")
	}
	if mods.HasCtrl() {
		b = b.add("modifiers.-1", "Ctrl")
	}
	if mods.HasAlt() {
		b = b.add("modifiers.-1", "Alt")
	}
	return b
}

func (b builder) bytes() ([]byte, error) {
	if b.err != nil {
		return nil, fmt.Errorf("encode event: %w", b.err)
	}
	return b.data, nil
}
