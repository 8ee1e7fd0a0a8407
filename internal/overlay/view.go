package overlay

import "slices"

// Layout offsets in CSS pixels.
const (
	IndicatorOffsetTop  = 25
	IndicatorOffsetLeft = 80
	DropdownGap         = 5
)

// Rect is an element's bounding box relative to the viewport.
type Rect struct {
	Top, Left, Bottom, Right, Width, Height float64
}

// Point is a page scroll offset.
type Point struct {
	X, Y float64
}

// IndicatorView is the desired state of the status indicator.
type IndicatorView struct {
	Visible bool
	Saved   bool
	Top     float64
	Left    float64
}

// DropdownView is the desired state of the suggestion dropdown.
type DropdownView struct {
	Visible bool
	Top     float64
	Left    float64
	Width   float64
	Items   []string
}

// View is the full desired overlay state handed to a Renderer.
type View struct {
	Indicator IndicatorView
	Dropdown  DropdownView
}

// Equal reports whether two views render identically.
func (v View) Equal(o View) bool {
	return v.Indicator == o.Indicator &&
		v.Dropdown.Visible == o.Dropdown.Visible &&
		v.Dropdown.Top == o.Dropdown.Top &&
		v.Dropdown.Left == o.Dropdown.Left &&
		v.Dropdown.Width == o.Dropdown.Width &&
		slices.Equal(v.Dropdown.Items, o.Dropdown.Items)
}

// place anchors the indicator above the field's top-right corner and the
// dropdown below its bottom-left corner, in page coordinates.
func place(v View, r Rect, scroll Point) View {
	v.Indicator.Top = r.Top + scroll.Y - IndicatorOffsetTop
	v.Indicator.Left = r.Right + scroll.X - IndicatorOffsetLeft

	v.Dropdown.Top = r.Bottom + scroll.Y + DropdownGap
	v.Dropdown.Left = r.Left + scroll.X
	v.Dropdown.Width = r.Width
	return v
}
