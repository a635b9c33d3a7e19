package surface

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// Color is a 24-bit color, or the terminal's default when Default is set.
type Color struct {
	R, G, B uint8
	Default bool
}

// ColorDefault is the terminal's own foreground or background color.
var ColorDefault = Color{Default: true}

// RGB creates a true color from its components.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// FromColorful converts a compositor color into a surface color.
func FromColorful(c colorful.Color) Color {
	r, g, b := c.Clamped().RGB255()
	return Color{R: r, G: g, B: b}
}

// Equals returns true if two colors are equal.
func (c Color) Equals(other Color) bool {
	if c.Default != other.Default {
		return false
	}
	if c.Default {
		return true
	}
	return c.R == other.R && c.G == other.G && c.B == other.B
}

// String returns a string representation of the color.
func (c Color) String() string {
	if c.Default {
		return "default"
	}
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Lighten returns a lighter version of the color. Amount should be 0.0 to
// 1.0.
func (c Color) Lighten(amount float64) Color {
	if c.Default {
		return c
	}
	return Color{
		R: uint8(min(255, float64(c.R)+float64(255-c.R)*amount)),
		G: uint8(min(255, float64(c.G)+float64(255-c.G)*amount)),
		B: uint8(min(255, float64(c.B)+float64(255-c.B)*amount)),
	}
}

// Darken returns a darker version of the color. Amount should be 0.0 to
// 1.0.
func (c Color) Darken(amount float64) Color {
	if c.Default {
		return c
	}
	return Color{
		R: uint8(float64(c.R) * (1 - amount)),
		G: uint8(float64(c.G) * (1 - amount)),
		B: uint8(float64(c.B) * (1 - amount)),
	}
}

// Blend blends two colors together. Amount 0.0 = c, 1.0 = other.
func (c Color) Blend(other Color, amount float64) Color {
	if c.Default || other.Default {
		if amount < 0.5 {
			return c
		}
		return other
	}
	return Color{
		R: uint8(float64(c.R)*(1-amount) + float64(other.R)*amount),
		G: uint8(float64(c.G)*(1-amount) + float64(other.G)*amount),
		B: uint8(float64(c.B)*(1-amount) + float64(other.B)*amount),
	}
}

// Grayscale returns the color reduced to its luminance.
func (c Color) Grayscale() Color {
	if c.Default {
		return c
	}
	l := uint8(0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B))
	return Color{R: l, G: l, B: l}
}

// Attr represents text attributes.
type Attr uint8

// Text attribute flags.
const (
	AttrNone Attr = 0
	AttrBold Attr = 1 << iota
	AttrDim
	AttrReverse
)

// Has returns true if the attribute set contains the given attribute.
func (a Attr) Has(attr Attr) bool {
	return a&attr != 0
}

// Style represents the visual style of a cell.
type Style struct {
	FG    Color
	BG    Color
	Attrs Attr
}

// DefaultStyle returns the terminal's default style.
func DefaultStyle() Style {
	return Style{FG: ColorDefault, BG: ColorDefault}
}

// NewStyle creates a style with the given foreground and background.
func NewStyle(fg, bg Color) Style {
	return Style{FG: fg, BG: bg}
}

// Bold returns a new style with the bold attribute added.
func (s Style) Bold() Style {
	s.Attrs |= AttrBold
	return s
}

// Dim returns a new style with the dim attribute added.
func (s Style) Dim() Style {
	s.Attrs |= AttrDim
	return s
}

// Reverse returns a new style with the reverse video attribute added.
func (s Style) Reverse() Style {
	s.Attrs |= AttrReverse
	return s
}

// Equals returns true if two styles are identical.
func (s Style) Equals(other Style) bool {
	return s.FG.Equals(other.FG) && s.BG.Equals(other.BG) && s.Attrs == other.Attrs
}

// Rect is a cell rectangle with a non-negative width and height.
type Rect struct {
	X, Y, W, H int
}

// Empty reports whether the rectangle covers no cells.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Intersect returns the overlap of two rectangles, which may be empty.
func (r Rect) Intersect(other Rect) Rect {
	x0 := max(r.X, other.X)
	y0 := max(r.Y, other.Y)
	x1 := min(r.X+r.W, other.X+other.W)
	y1 := min(r.Y+r.H, other.Y+other.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Contains reports whether the cell at (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Surface is the drawing contract the view renders through. Coordinates
// are terminal cells, the origin is the top left, and drawing outside the
// surface is silently clipped.
type Surface interface {
	// Size returns the current surface dimensions.
	Size() (width, height int)

	// Clear resets every cell to a space with the default style.
	Clear()

	// FillRect fills a rectangle with spaces in the given style.
	FillRect(r Rect, st Style)

	// DrawLabel writes text starting at (x, y), clipped at the right
	// edge. Widths are measured in grapheme cluster cells, so wide and
	// combining characters stay intact.
	DrawLabel(x, y int, text string, st Style)

	// Flush makes everything drawn since the last call visible.
	Flush()
}

// Screen is a Surface with a lifecycle and an input event stream, which is
// what the application loop drives.
type Screen interface {
	Surface

	// Init prepares the screen for use. Must be called before drawing.
	Init() error

	// Fini releases the screen and restores the terminal. After Fini,
	// PollEvent returns an EventNone event.
	Fini()

	// PollEvent waits for and returns the next input event. This is a
	// blocking call.
	PollEvent() Event

	// PostEvent posts a synthetic event to the queue, best effort.
	PostEvent(ev Event)
}

// LabelWidth returns the display width of a string in cells.
func LabelWidth(s string) int {
	return uniseg.StringWidth(s)
}

// ClipLabel cuts a label to the given display width, appending an ellipsis
// when something was cut.
func ClipLabel(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if uniseg.StringWidth(s) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}

	var out []byte
	used := 0
	state := -1
	rest := []byte(s)
	for len(rest) > 0 {
		var cluster []byte
		var cw int
		cluster, rest, cw, state = uniseg.FirstGraphemeCluster(rest, state)
		if used+cw > width-1 {
			break
		}
		out = append(out, cluster...)
		used += cw
	}
	return string(out) + "…"
}

// eachCluster calls fn for every grapheme cluster of s with the cluster's
// primary rune, its trailing runes, and its display width. Drawing stops
// when fn returns false.
func eachCluster(s string, fn func(primary rune, comb []rune, width int) bool) {
	state := -1
	rest := s
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		runes := []rune(cluster)
		if len(runes) == 0 {
			continue
		}
		var comb []rune
		if len(runes) > 1 {
			comb = runes[1:]
		}
		if !fn(runes[0], comb, uniseg.StringWidth(cluster)) {
			return
		}
	}
}
