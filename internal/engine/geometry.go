package engine

import (
	"math"

	"golang.org/x/exp/constraints"

	"github.com/inamate/sketch/internal/document"
)

// Rect represents an axis-aligned box in scene units.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Bounds is a box given by its corners, used as handle model input.
type Bounds struct {
	X1, Y1 float64
	X2, Y2 float64
}

func (r Rect) Right() float64  { return r.Left + r.Width }
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Center returns the center point of the rect.
func (r Rect) Center() Point {
	return Point{X: r.Left + r.Width/2, Y: r.Top + r.Height/2}
}

// Contains checks if a point is inside the rect, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right() && p.Y >= r.Top && p.Y <= r.Bottom()
}

// IsEmpty checks if the rect has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Union returns the smallest rect containing both rects. Unlike a pure area
// union, degenerate rects (a horizontal line, say) still contribute their extent.
func (r Rect) Union(other Rect) Rect {
	minX := math.Min(r.Left, other.Left)
	minY := math.Min(r.Top, other.Top)
	maxX := math.Max(r.Right(), other.Right())
	maxY := math.Max(r.Bottom(), other.Bottom())
	return Rect{Left: minX, Top: minY, Width: maxX - minX, Height: maxY - minY}
}

// Bounds converts the rect to corner form.
func (r Rect) Bounds() Bounds {
	return Bounds{X1: r.Left, Y1: r.Top, X2: r.Right(), Y2: r.Bottom()}
}

// Center returns the center point of the bounds.
func (b Bounds) Center() Point {
	return Point{X: (b.X1 + b.X2) / 2, Y: (b.Y1 + b.Y2) / 2}
}

// Clamp limits value to [lo, hi].
func Clamp[T constraints.Ordered](lo, value, hi T) T {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

func scaleOf(l *document.Layer) (float64, float64) {
	return sanitizeScale(l.ScaleX), sanitizeScale(l.ScaleY)
}

// sanitizeScale maps zero, negative and non-finite factors onto something usable.
// Mirroring is expressed with the flip flags, never with a negative scale.
func sanitizeScale(s float64) float64 {
	if math.IsNaN(s) || math.IsInf(s, 0) || s == 0 {
		return 1
	}
	return math.Abs(s)
}

// localRect is the layer's unrotated box including scale.
func localRect(l *document.Layer) Rect {
	if g, ok := l.Group(); ok && len(g.Children) > 0 {
		return groupRect(g.Children)
	}
	sx, sy := scaleOf(l)
	return Rect{Left: l.Left, Top: l.Top, Width: math.Abs(l.Width * sx), Height: math.Abs(l.Height * sy)}
}

func groupRect(children []*document.Layer) Rect {
	r := BoundingRect(children[0], true)
	for _, c := range children[1:] {
		r = r.Union(BoundingRect(c, true))
	}
	return r
}

// LayerCenter returns the rotation center of the layer in scene space.
func LayerCenter(l *document.Layer) Point {
	return localRect(l).Center()
}

// BoundingRect returns the axis-aligned box of a layer. With includeRotation the
// box encloses the rotated shape; otherwise it is the unrotated box.
func BoundingRect(l *document.Layer, includeRotation bool) Rect {
	r := localRect(l)
	if !includeRotation || l.Angle == 0 {
		return r
	}
	if _, ok := l.Group(); ok {
		return r
	}
	return rotatedRect(r, l.Angle)
}

func rotatedRect(r Rect, degrees float64) Rect {
	c := r.Center()
	corners := [4]Point{
		{X: r.Left, Y: r.Top},
		{X: r.Right(), Y: r.Top},
		{X: r.Right(), Y: r.Bottom()},
		{X: r.Left, Y: r.Bottom()},
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range corners {
		q := RotatePoint(p, c, degrees)
		minX = math.Min(minX, q.X)
		minY = math.Min(minY, q.Y)
		maxX = math.Max(maxX, q.X)
		maxY = math.Max(maxY, q.Y)
	}
	return Rect{Left: minX, Top: minY, Width: maxX - minX, Height: maxY - minY}
}

// AggregateRect returns the union of the rotated bounding rects of layers.
func AggregateRect(layers []*document.Layer) Rect {
	if len(layers) == 0 {
		return Rect{}
	}
	return groupRect(layers)
}

// ContainsPoint reports whether p falls inside the layer's rotated box.
func ContainsPoint(l *document.Layer, p Point) bool {
	r := localRect(l)
	if l.Angle != 0 {
		p = RotatePoint(p, r.Center(), -l.Angle)
	}
	return r.Contains(p)
}

// SyncLinearPoints recomputes the derived box of a line or arrow from its
// endpoints. Endpoints are in scene space, so the layer carries no rotation or scale.
func SyncLinearPoints(l *document.Layer) {
	p, ok := l.Linear()
	if !ok {
		return
	}
	l.Left = math.Min(p.X1, p.X2)
	l.Top = math.Min(p.Y1, p.Y2)
	l.Width = math.Abs(p.X2 - p.X1)
	l.Height = math.Abs(p.Y2 - p.Y1)
	l.ScaleX, l.ScaleY = 1, 1
	l.Angle = 0
}

// TranslateLayer moves a layer by (dx, dy), keeping endpoints and group members in step.
func TranslateLayer(l *document.Layer, dx, dy float64) {
	switch p := l.Payload.(type) {
	case *document.Linear:
		p.X1 += dx
		p.Y1 += dy
		p.X2 += dx
		p.Y2 += dy
		SyncLinearPoints(l)
		return
	case *document.Group:
		for _, c := range p.Children {
			TranslateLayer(c, dx, dy)
		}
		syncGroupBox(l)
		return
	}
	l.Left += dx
	l.Top += dy
}

// syncGroupBox resets a group layer's stored box to the aggregate of its members.
func syncGroupBox(l *document.Layer) {
	g, ok := l.Group()
	if !ok {
		return
	}
	l.ScaleX, l.ScaleY = 1, 1
	l.Angle = 0
	if len(g.Children) == 0 {
		l.Width, l.Height = 0, 0
		return
	}
	r := groupRect(g.Children)
	l.Left, l.Top, l.Width, l.Height = r.Left, r.Top, r.Width, r.Height
}

// NormalizeAngle maps degrees into [0, 360).
func NormalizeAngle(degrees float64) float64 {
	a := math.Mod(degrees, 360)
	if a < 0 {
		a += 360
	}
	return a
}
