package engine

import (
	"math"

	"github.com/inamate/sketch/internal/document"
)

// PointerType distinguishes precise pointers (mouse, pen) from touch input.
type PointerType string

const (
	PointerFine   PointerType = "fine"
	PointerCoarse PointerType = "coarse"
)

// RenderContext carries the per-frame values the handle model depends on.
type RenderContext struct {
	Zoom        float64 // factor, 1 = 100%
	PointerType PointerType
}

func (rc RenderContext) zoom() float64 {
	if !(rc.Zoom > 0) || math.IsInf(rc.Zoom, 0) {
		return DefaultMinZoomLevel / 100
	}
	return rc.Zoom
}

func (rc RenderContext) handleSize() float64 {
	if rc.PointerType == PointerCoarse {
		return coarseHandleSize
	}
	return fineHandleSize
}

type HandleType string

const (
	HandleNone     HandleType = ""
	HandleN        HandleType = "n"
	HandleS        HandleType = "s"
	HandleE        HandleType = "e"
	HandleW        HandleType = "w"
	HandleNE       HandleType = "ne"
	HandleNW       HandleType = "nw"
	HandleSE       HandleType = "se"
	HandleSW       HandleType = "sw"
	HandleRotation HandleType = "rotation"
)

// handleOrder is the declaration order; hit-testing walks it after the rotation handle.
var handleOrder = [...]HandleType{HandleNW, HandleNE, HandleSW, HandleSE, HandleRotation, HandleN, HandleS, HandleW, HandleE}

const (
	fineHandleSize    = 8.0
	coarseHandleSize  = 28.0
	handleMargin      = 4.0
	rotationHandleGap = 16.0
)

// Handle is a hotspot rectangle [x, y, w, h] in scene units, sized so that it
// keeps a constant on-screen size at every zoom.
type Handle struct {
	X, Y, W, H float64
}

// Contains reports whether (x, y) lies inside the handle, edges included.
func (h Handle) Contains(x, y float64) bool {
	return x >= h.X && x <= h.X+h.W && y >= h.Y && y <= h.Y+h.H
}

// Handles maps handle types to rectangles. A suppressed type is simply absent.
type Handles struct {
	rects   [len(handleOrder)]Handle
	present [len(handleOrder)]bool
}

func handleIndex(t HandleType) int {
	for i, h := range handleOrder {
		if h == t {
			return i
		}
	}
	return -1
}

func (hs *Handles) set(t HandleType, h Handle) {
	i := handleIndex(t)
	hs.rects[i] = h
	hs.present[i] = true
}

// Get returns the handle of type t, or false when it is suppressed.
func (hs Handles) Get(t HandleType) (Handle, bool) {
	i := handleIndex(t)
	if i < 0 || !hs.present[i] {
		return Handle{}, false
	}
	return hs.rects[i], true
}

// Each calls fn for every present handle in declaration order.
func (hs Handles) Each(fn func(HandleType, Handle)) {
	for i, t := range handleOrder {
		if hs.present[i] {
			fn(t, hs.rects[i])
		}
	}
}

// Len returns the number of present handles.
func (hs Handles) Len() int {
	n := 0
	for _, p := range hs.present {
		if p {
			n++
		}
	}
	return n
}

// OmitSet names handle types that must not be generated.
type OmitSet map[HandleType]bool

var (
	omitSidesForMultipleLayers = OmitSet{HandleN: true, HandleS: true, HandleE: true, HandleW: true}
	omitSidesForText           = OmitSet{HandleN: true, HandleS: true, HandleE: true, HandleW: true}
	omitSidesForLineSlash      = OmitSet{HandleN: true, HandleS: true, HandleE: true, HandleW: true, HandleNW: true, HandleSE: true, HandleRotation: true}
	omitSidesForLineBackslash  = OmitSet{HandleN: true, HandleS: true, HandleE: true, HandleW: true, HandleNE: true, HandleSW: true, HandleRotation: true}
)

func generateHandle(x, y, w, h float64, center Point, angle float64) Handle {
	c := RotatePoint(Point{X: x + w/2, Y: y + h/2}, center, angle)
	return Handle{X: c.X - w/2, Y: c.Y - h/2, W: w, H: h}
}

// HandlesFromBounds derives the handle set for an unrotated box b that is drawn
// rotated by angle degrees about its center.
func HandlesFromBounds(b Bounds, angle float64, rc RenderContext, omit OmitSet) Handles {
	zoom := rc.zoom()
	size := rc.handleSize()
	hw := size / zoom
	hh := size / zoom
	mx := size / zoom
	my := size / zoom
	margin := handleMargin / zoom
	width := b.X2 - b.X1
	height := b.Y2 - b.Y1
	center := b.Center()

	var hs Handles
	add := func(t HandleType, x, y float64) {
		if omit[t] {
			return
		}
		hs.set(t, generateHandle(x, y, hw, hh, center, angle))
	}

	add(HandleNW, b.X1-margin-mx, b.Y1-margin-my)
	add(HandleNE, b.X2+margin, b.Y1-margin-my)
	add(HandleSW, b.X1-margin-mx, b.Y2+margin)
	add(HandleSE, b.X2+margin, b.Y2+margin)
	add(HandleRotation, b.X1+width/2-hw/2, b.Y1-margin-my-rotationHandleGap/zoom)

	// Side handles only once the box is large enough on screen to fit them.
	minSideSize := 5 * fineHandleSize / zoom
	if math.Abs(width) > minSideSize {
		add(HandleN, b.X1+width/2-hw/2, b.Y1-margin-my)
		add(HandleS, b.X1+width/2-hw/2, b.Y2+margin)
	}
	if math.Abs(height) > minSideSize {
		add(HandleW, b.X1-margin-mx, b.Y1+height/2-hh/2)
		add(HandleE, b.X2+margin, b.Y1+height/2-hh/2)
	}
	return hs
}

// LayerHandles derives the handle set for a single selected layer.
func LayerHandles(l *document.Layer, rc RenderContext) Handles {
	return HandlesFromBounds(localRect(l).Bounds(), l.Angle, rc, omitFor(l))
}

// GroupHandles derives the handle set for a multi-layer selection box.
func GroupHandles(box Rect, rc RenderContext) Handles {
	return HandlesFromBounds(box.Bounds(), 0, rc, omitSidesForMultipleLayers)
}

func omitFor(l *document.Layer) OmitSet {
	switch l.Kind {
	case document.KindLine, document.KindArrow:
		p, ok := l.Linear()
		if !ok {
			return nil
		}
		dx, dy := p.X2-p.X1, p.Y2-p.Y1
		switch {
		case dx == 0 || dy == 0:
			return omitSidesForLineBackslash
		case (dx > 0) != (dy > 0):
			return omitSidesForLineSlash
		default:
			return omitSidesForLineBackslash
		}
	case document.KindText:
		return omitSidesForText
	case document.KindRect, document.KindEllipse, document.KindStroke, document.KindImage, document.KindGroup:
		return nil
	}
	return nil
}
