package input

// Class is a filterable category of decoded events.
type Class uint8

const (
	// ClassKeyDown covers key presses (including repeats).
	ClassKeyDown Class = 1 << iota

	// ClassKeyUp covers key releases.
	ClassKeyUp

	// ClassMouseClick covers press/release and double-click events.
	ClassMouseClick

	// ClassMouseMove covers movement events.
	ClassMouseMove

	// ClassMouseWheel covers wheel events.
	ClassMouseWheel

	// ClassResize covers buffer-resize events.
	ClassResize

	// ClassFocus covers focus events.
	ClassFocus
)

// Filter is a set of event classes the decoder suppresses. Filtered events
// are discarded after decoding, so decoder state (modifiers, button mask,
// held keys) still advances.
type Filter uint8

// Allows reports whether events of class c pass the filter.
func (f Filter) Allows(c Class) bool {
	return Filter(c)&f == 0
}

// With returns a filter that additionally suppresses c.
func (f Filter) With(c Class) Filter {
	return f | Filter(c)
}

// Without returns a filter that no longer suppresses c.
func (f Filter) Without(c Class) Filter {
	return f &^ Filter(c)
}
