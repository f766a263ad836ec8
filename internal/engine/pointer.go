package engine

import (
	"math"

	"github.com/inamate/sketch/internal/document"
	"github.com/inamate/sketch/internal/typeid"
)

// PointerEvent is one pointer sample in screen coordinates.
type PointerEvent struct {
	X, Y        float64
	PointerType PointerType
	Modifiers
}

func (ev PointerEvent) screen() Point { return Point{X: ev.X, Y: ev.Y} }

type marquee struct {
	from, to Point
	additive bool
}

func (m *marquee) rect() Rect {
	return Rect{
		Left:   math.Min(m.from.X, m.to.X),
		Top:    math.Min(m.from.Y, m.to.Y),
		Width:  math.Abs(m.to.X - m.from.X),
		Height: math.Abs(m.to.Y - m.from.Y),
	}
}

type strokeDraft struct {
	points []Point
}

// PointerDown routes a pointer press: pan mode first, then draw mode, then
// handles of the current selection, then layers, then empty canvas.
func (e *Editor) PointerDown(ev PointerEvent) {
	if ev.PointerType != "" {
		e.SetPointerType(ev.PointerType)
	}
	if e.viewport.PointerDown(ev.screen()) {
		return
	}
	p := e.viewport.Viewport().ScreenToScene(ev.screen())
	if e.modes.Draw {
		e.stroke = &strokeDraft{points: []Point{p}}
		return
	}

	if h := e.handleAt(p); h != HandleNone {
		e.drag = BeginDrag(e.selectedLayers(), h, p)
		e.hover = h
		return
	}

	id := HitTest(e.doc, p)
	if id == "" {
		if !ev.Shift {
			e.ClearSelection()
		}
		e.marquee = &marquee{from: p, to: p, additive: ev.Shift}
		return
	}
	switch {
	case ev.Shift:
		e.selection.Toggle(id)
	case !e.selection.Has(id):
		e.selection.Set([]string{id})
	}
	e.surface.RequestRender()
	if e.selection.Has(id) {
		e.drag = BeginDrag(e.selectedLayers(), HandleNone, p)
		if e.drag != nil {
			e.surface.SetCursor(CursorMove)
		}
	}
}

// PointerMove continues the active gesture, or updates the hover cursor.
func (e *Editor) PointerMove(ev PointerEvent) {
	if e.viewport.PointerMove(ev.screen()) {
		return
	}
	p := e.viewport.Viewport().ScreenToScene(ev.screen())
	switch {
	case e.stroke != nil:
		e.stroke.points = append(e.stroke.points, p)
		e.surface.RequestRender()
	case e.drag != nil:
		e.drag.Update(p, ev.Modifiers)
		e.rev++
		e.surface.RequestRender()
	case e.marquee != nil:
		e.marquee.to = p
		e.surface.RequestRender()
	case e.modes.Draw:
	default:
		e.hover = e.handleAt(p)
		switch {
		case e.hover != HandleNone:
			e.surface.SetCursor(e.cursorFor(e.hover))
		case HitTest(e.doc, p) != "":
			e.surface.SetCursor(CursorMove)
		default:
			e.surface.SetCursor(CursorDefault)
		}
	}
}

// PointerUp ends the active gesture. A drag becomes one history entry.
func (e *Editor) PointerUp(ev PointerEvent) {
	if e.viewport.PointerUp(ev.screen()) {
		return
	}
	p := e.viewport.Viewport().ScreenToScene(ev.screen())
	switch {
	case e.stroke != nil:
		e.stroke.points = append(e.stroke.points, p)
		e.finishStroke()
	case e.drag != nil:
		e.drag.Update(p, ev.Modifiers)
		e.finishDrag()
	case e.marquee != nil:
		m := e.marquee
		m.to = p
		e.marquee = nil
		ids := LayersInRect(e.doc, m.rect())
		if m.additive {
			for _, id := range ids {
				e.selection.Add(id)
			}
		} else {
			e.selection.Set(ids)
		}
		e.surface.RequestRender()
	}
}

func (e *Editor) finishDrag() {
	d := e.drag
	e.drag = nil
	label := "move"
	switch d.Handle() {
	case HandleNone:
	case HandleRotation:
		label = "rotate"
	default:
		label = "resize"
	}
	entry := d.Finish(label)
	// Finish normalized the live layers in place; the history entry holds copies.
	e.commit(entry)
	e.rev++
	e.surface.SetCursor(CursorDefault)
	e.surface.RequestRender()
}

// finishStroke turns the collected points into a freehand stroke layer.
func (e *Editor) finishStroke() {
	draft := e.stroke
	e.stroke = nil
	if len(draft.points) < 2 {
		return
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, pt := range draft.points {
		minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
		minY, maxY = math.Min(minY, pt.Y), math.Max(maxY, pt.Y)
	}
	l := document.NewLayer(typeid.NewLayerID(), document.KindStroke)
	l.Left, l.Top = minX, minY
	l.Width, l.Height = maxX-minX, maxY-minY
	local := make([]Point, len(draft.points))
	for i, pt := range draft.points {
		local[i] = Point{X: pt.X - minX, Y: pt.Y - minY}
	}
	l.Payload = &document.Stroke{Points: local, StrokeStyle: document.StrokeSolid}
	e.AddLayer(l)
}

// CancelGesture abandons the active gesture. A transform keeps its last
// applied state and is recorded like a finished one.
func (e *Editor) CancelGesture() {
	e.cancelGesture()
}

func (e *Editor) cancelGesture() {
	if e.drag != nil {
		e.finishDrag()
	}
	e.marquee = nil
	e.stroke = nil
}

// handleAt resolves the transform handle of the selection under scene point p.
func (e *Editor) handleAt(p Point) HandleType {
	rc := e.RenderContext()
	if g, ok := e.selection.Group(e.doc, e.rev); ok {
		for _, l := range g.Members {
			if l.Locked {
				return HandleNone
			}
		}
		return ResizeTestBounds(g.Box, p.X, p.Y, rc)
	}
	_, h := GetLayerWithTransformHandleType(e.selectedLayers(), e.selection.State(), p.X, p.Y, rc)
	return h
}

func (e *Editor) cursorFor(h HandleType) Cursor {
	if h == HandleNone {
		return CursorDefault
	}
	angle := 0.0
	if layers := e.selectedLayers(); len(layers) == 1 {
		angle = layers[0].Angle
	}
	return CursorForHandle(h, angle)
}
