// Package geom provides the integer cell geometry shared by the console
// and input packages: buffer coordinates, sizes, and half-open rectangles.
package geom

import "fmt"

// Point is a buffer position in (column, row) order.
type Point struct {
	X int
	Y int
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// In reports whether p lies inside r.
func (p Point) In(r Rect) bool {
	return p.X >= r.Left && p.X < r.Right && p.Y >= r.Top && p.Y < r.Bottom
}

// String returns a "(x, y)" representation.
func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Size is a buffer extent in columns and rows.
type Size struct {
	Cols int
	Rows int
}

// Area returns the number of cells covered by the size.
func (s Size) Area() int {
	return s.Cols * s.Rows
}

// Empty reports whether the size covers no cells.
func (s Size) Empty() bool {
	return s.Cols <= 0 || s.Rows <= 0
}

// String returns a "colsxrows" representation.
func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Cols, s.Rows)
}

// Rect is a half-open cell rectangle: the cell at (Right, y) or (x, Bottom)
// is not part of the rectangle.
type Rect struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// RectAt returns the rectangle with origin p covering size s.
func RectAt(p Point, s Size) Rect {
	return Rect{Left: p.X, Top: p.Y, Right: p.X + s.Cols, Bottom: p.Y + s.Rows}
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point {
	return Point{X: r.Left, Y: r.Top}
}

// Size returns the extent of the rectangle.
func (r Rect) Size() Size {
	return Size{Cols: r.Right - r.Left, Rows: r.Bottom - r.Top}
}

// Width returns the number of columns covered.
func (r Rect) Width() int {
	return r.Right - r.Left
}

// Height returns the number of rows covered.
func (r Rect) Height() int {
	return r.Bottom - r.Top
}

// Area returns the number of cells covered.
func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return r.Width() * r.Height()
}

// Empty reports whether the rectangle covers no cells.
func (r Rect) Empty() bool {
	return r.Left >= r.Right || r.Top >= r.Bottom
}

// Intersect returns the largest rectangle contained in both r and q.
func (r Rect) Intersect(q Rect) Rect {
	out := Rect{
		Left:   max(r.Left, q.Left),
		Top:    max(r.Top, q.Top),
		Right:  min(r.Right, q.Right),
		Bottom: min(r.Bottom, q.Bottom),
	}
	if out.Empty() {
		return Rect{}
	}
	return out
}

// String returns a "(l,t)-(r,b)" representation.
func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.Left, r.Top, r.Right, r.Bottom)
}
