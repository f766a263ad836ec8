package engine

import (
	"math"

	"github.com/inamate/sketch/internal/document"
)

// Modifiers are the keyboard modifiers held during a drag.
type Modifiers struct {
	Shift bool // keep aspect ratio on corners, snap rotation
	Alt   bool // resize about the center
}

const (
	rotationSnap = 15.0
	minLayerSize = 1.0
)

// Drag is an in-flight move, resize or rotate gesture over one or more layers.
// It mutates the live layers on every update; the scale-baking step is deferred
// to Finish so non-scalable layers may carry a scale while the pointer is down.
type Drag struct {
	handle HandleType // HandleNone moves
	origin Point
	live   []*document.Layer
	start  []*document.Layer
	box    Rect // aggregate box at drag start
	multi  bool
}

// BeginDrag snapshots layers and starts a gesture on handle at scene point origin.
func BeginDrag(layers []*document.Layer, handle HandleType, origin Point) *Drag {
	d := &Drag{handle: handle, origin: origin}
	for _, l := range layers {
		if l == nil || l.Locked || l.Pending() {
			continue
		}
		d.live = append(d.live, l)
		d.start = append(d.start, l.Clone())
	}
	if len(d.live) == 0 {
		return nil
	}
	d.box = AggregateRect(d.start)
	d.multi = len(d.live) > 1 || d.live[0].Kind == document.KindGroup
	return d
}

// Handle returns the handle the drag was started on.
func (d *Drag) Handle() HandleType { return d.handle }

// Layers returns the live layers being transformed.
func (d *Drag) Layers() []*document.Layer { return d.live }

// Update applies the gesture for the pointer at scene point p. Every update
// starts again from the snapshot, so the result depends only on p.
func (d *Drag) Update(p Point, mod Modifiers) {
	switch d.handle {
	case HandleNone:
		dx, dy := p.X-d.origin.X, p.Y-d.origin.Y
		m := Translate(dx, dy)
		for i := range d.live {
			transformMember(d.live[i], d.start[i], m, 1, 1, 0)
		}
	case HandleRotation:
		d.rotate(p, mod)
	default:
		switch {
		case d.multi:
			d.resizeBox(p, mod)
		case d.start[0].Kind.Linear():
			d.moveEndpoint(p, mod)
		default:
			d.resizeSingle(p, mod)
		}
	}
}

// Finish normalizes the transformed layers and returns the history entry
// describing the whole gesture.
func (d *Drag) Finish(label string) *Entry {
	e := NewEntry(label)
	for i, l := range d.live {
		Recover(l, l)
		e.Update(d.start[i], l)
	}
	return e
}

func (d *Drag) rotate(p Point, mod Modifiers) {
	if !d.multi && !d.start[0].Kind.Linear() {
		c := LayerCenter(d.start[0])
		angle := math.Atan2(p.Y-c.Y, p.X-c.X)*180/math.Pi + 90
		if mod.Shift {
			angle = math.Round(angle/rotationSnap) * rotationSnap
		}
		l := d.live[0]
		l.Angle = NormalizeAngle(angle)
		return
	}
	c := d.box.Center()
	delta := (math.Atan2(p.Y-c.Y, p.X-c.X) - math.Atan2(d.origin.Y-c.Y, d.origin.X-c.X)) * 180 / math.Pi
	if mod.Shift {
		delta = math.Round(delta/rotationSnap) * rotationSnap
	}
	m := Translate(c.X, c.Y).Multiply(RotateDegrees(delta)).Multiply(Translate(-c.X, -c.Y))
	for i := range d.live {
		transformMember(d.live[i], d.start[i], m, 1, 1, delta)
	}
}

// resizeSingle resizes one layer in its own rotated frame, keeping the
// opposite edge or corner fixed in scene space.
func (d *Drag) resizeSingle(p Point, mod Modifiers) {
	start, l := d.start[0], d.live[0]
	r := localRect(start)
	c := r.Center()
	q := RotatePoint(p, c, -start.Angle)

	x1, y1, x2, y2 := resizeExtents(d.handle, r, q, mod)
	w, h := x2-x1, y2-y1

	center := RotatePoint(Point{X: (x1 + x2) / 2, Y: (y1 + y2) / 2}, c, start.Angle)
	if start.Width > 0 {
		l.ScaleX = w / start.Width
	} else {
		l.Width, l.ScaleX = w, 1
	}
	if start.Height > 0 {
		l.ScaleY = h / start.Height
	} else {
		l.Height, l.ScaleY = h, 1
	}
	l.Left = center.X - w/2
	l.Top = center.Y - h/2
}

// resizeBox scales a multi-selection or group layer about its unrotated
// aggregate box.
func (d *Drag) resizeBox(p Point, mod Modifiers) {
	r := d.box
	x1, y1, x2, y2 := resizeExtents(d.handle, r, p, mod)
	sx, sy := 1.0, 1.0
	if r.Width > 0 {
		sx = (x2 - x1) / r.Width
	}
	if r.Height > 0 {
		sy = (y2 - y1) / r.Height
	}
	m := Translate(x1, y1).Multiply(Scale(sx, sy)).Multiply(Translate(-r.Left, -r.Top))
	for i := range d.live {
		transformMember(d.live[i], d.start[i], m, sx, sy, 0)
	}
}

// moveEndpoint drags the endpoint of a line that sits on the grabbed corner.
func (d *Drag) moveEndpoint(p Point, mod Modifiers) {
	start, l := d.start[0], d.live[0]
	sp, _ := start.Linear()
	lp, ok := l.Linear()
	if !ok || sp == nil {
		return
	}
	r := localRect(start)
	corner := Point{X: r.Left, Y: r.Top}
	if resizesRight(d.handle) {
		corner.X = r.Right()
	}
	if resizesBottom(d.handle) {
		corner.Y = r.Bottom()
	}
	first := math.Hypot(sp.X1-corner.X, sp.Y1-corner.Y) <= math.Hypot(sp.X2-corner.X, sp.Y2-corner.Y)

	fixed := Point{X: sp.X2, Y: sp.Y2}
	if !first {
		fixed = Point{X: sp.X1, Y: sp.Y1}
	}
	if mod.Shift {
		// Snap the segment to 45° steps around the fixed end.
		length := math.Hypot(p.X-fixed.X, p.Y-fixed.Y)
		a := math.Round(math.Atan2(p.Y-fixed.Y, p.X-fixed.X)/(math.Pi/4)) * (math.Pi / 4)
		p = Point{X: fixed.X + length*math.Cos(a), Y: fixed.Y + length*math.Sin(a)}
	}
	*lp = *sp
	if first {
		lp.X1, lp.Y1 = p.X, p.Y
	} else {
		lp.X2, lp.Y2 = p.X, p.Y
	}
	SyncLinearPoints(l)
}

func resizesLeft(h HandleType) bool   { return h == HandleW || h == HandleNW || h == HandleSW }
func resizesRight(h HandleType) bool  { return h == HandleE || h == HandleNE || h == HandleSE }
func resizesTop(h HandleType) bool    { return h == HandleN || h == HandleNW || h == HandleNE }
func resizesBottom(h HandleType) bool { return h == HandleS || h == HandleSW || h == HandleSE }

func isCorner(h HandleType) bool {
	return h == HandleNW || h == HandleNE || h == HandleSW || h == HandleSE
}

// resizeExtents returns the new box corners in r's frame for the pointer at q.
func resizeExtents(h HandleType, r Rect, q Point, mod Modifiers) (x1, y1, x2, y2 float64) {
	x1, y1, x2, y2 = r.Left, r.Top, r.Right(), r.Bottom()
	c := r.Center()
	switch {
	case resizesLeft(h):
		x1 = math.Min(q.X, x2-minLayerSize)
	case resizesRight(h):
		x2 = math.Max(q.X, x1+minLayerSize)
	}
	switch {
	case resizesTop(h):
		y1 = math.Min(q.Y, y2-minLayerSize)
	case resizesBottom(h):
		y2 = math.Max(q.Y, y1+minLayerSize)
	}

	if mod.Shift && isCorner(h) && r.Width > 0 && r.Height > 0 {
		s := math.Max((x2-x1)/r.Width, (y2-y1)/r.Height)
		w, hh := r.Width*s, r.Height*s
		if resizesLeft(h) {
			x1 = x2 - w
		} else {
			x2 = x1 + w
		}
		if resizesTop(h) {
			y1 = y2 - hh
		} else {
			y2 = y1 + hh
		}
	}

	if mod.Alt {
		if resizesLeft(h) || resizesRight(h) {
			var half float64
			if resizesLeft(h) {
				half = math.Max(c.X-x1, minLayerSize/2)
			} else {
				half = math.Max(x2-c.X, minLayerSize/2)
			}
			x1, x2 = c.X-half, c.X+half
		}
		if resizesTop(h) || resizesBottom(h) {
			var half float64
			if resizesTop(h) {
				half = math.Max(c.Y-y1, minLayerSize/2)
			} else {
				half = math.Max(y2-c.Y, minLayerSize/2)
			}
			y1, y2 = c.Y-half, c.Y+half
		}
	}
	return x1, y1, x2, y2
}

// transformMember sets l from its snapshot start under the affine map m. sx
// and sy scale the box, dAngle is added to the rotation. Linear layers map
// their endpoints and groups recurse into their children.
func transformMember(l, start *document.Layer, m Matrix2D, sx, sy, dAngle float64) {
	switch sp := start.Payload.(type) {
	case *document.Linear:
		lp, ok := l.Linear()
		if !ok {
			return
		}
		a := m.TransformPoint(Point{X: sp.X1, Y: sp.Y1})
		b := m.TransformPoint(Point{X: sp.X2, Y: sp.Y2})
		*lp = *sp
		lp.X1, lp.Y1, lp.X2, lp.Y2 = a.X, a.Y, b.X, b.Y
		SyncLinearPoints(l)
		return
	case *document.Group:
		lg, ok := l.Group()
		if !ok || len(lg.Children) != len(sp.Children) {
			return
		}
		for i := range lg.Children {
			transformMember(lg.Children[i], sp.Children[i], m, sx, sy, dAngle)
		}
		syncGroupBox(l)
		return
	}
	c := m.TransformPoint(LayerCenter(start))
	ssx, ssy := scaleOf(start)
	l.ScaleX, l.ScaleY = ssx*sx, ssy*sy
	w, h := start.Width*l.ScaleX, start.Height*l.ScaleY
	l.Left = c.X - w/2
	l.Top = c.Y - h/2
	l.Angle = NormalizeAngle(start.Angle + dAngle)
}
