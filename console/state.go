package console

import (
	"fmt"

	"github.com/dshills/conio/color"
	"github.com/dshills/conio/geom"
)

// State is a point-in-time snapshot of the restorable console state.
// Snapshots live only within the owning process; nothing here survives a
// restart.
type State struct {
	Palette    color.Palette
	Attribute  color.Attribute
	Cursor     geom.Point
	BufferSize geom.Size
	Title      string
}

// State captures the current console state in one gated sequence.
func (c *Console) State() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var st State
	var err error
	st.Palette = c.pal
	if st.Attribute, err = c.dev.Attribute(); err != nil {
		return State{}, fmt.Errorf("read attribute: %w", err)
	}
	if st.Cursor, err = c.dev.Cursor(); err != nil {
		return State{}, fmt.Errorf("read cursor: %w", err)
	}
	if st.BufferSize, err = c.dev.BufferSize(); err != nil {
		return State{}, fmt.Errorf("read buffer size: %w", err)
	}
	if st.Title, err = c.dev.Title(); err != nil {
		return State{}, fmt.Errorf("read title: %w", err)
	}
	return st, nil
}

// Restore reapplies a snapshot in one gated sequence: buffer size first,
// then palette, attribute, cursor, and title.
func (c *Console) Restore(st State) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if st.BufferSize.Empty() {
		return fmt.Errorf("%w: snapshot buffer size %v", ErrInvalidParameter, st.BufferSize)
	}
	if err := c.dev.ResizeBuffer(st.BufferSize); err != nil {
		return fmt.Errorf("resize buffer: %w", err)
	}
	if err := c.setPaletteLocked(st.Palette); err != nil {
		return err
	}
	if err := c.dev.SetAttribute(st.Attribute); err != nil {
		return fmt.Errorf("set attribute: %w", err)
	}
	if err := c.dev.SetCursor(st.Cursor); err != nil {
		return fmt.Errorf("set cursor: %w", err)
	}
	if err := c.dev.SetTitle(st.Title); err != nil {
		return fmt.Errorf("set title: %w", err)
	}
	c.log.Debug("console state restored")
	return nil
}
