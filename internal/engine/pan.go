package engine

// Modes is the shared "enabled" flag set that keeps pan and draw mutually
// exclusive. Only one of them can be on at a time.
type Modes struct {
	Pan  bool
	Draw bool
}

type PanEventType string

const (
	PanStart PanEventType = "pan:start"
	PanMove  PanEventType = "pan:move"
	PanEnd   PanEventType = "pan:end"
)

// PanEvent is delivered to the pan listener on every phase of a gesture.
type PanEvent struct {
	Type      PanEventType
	Point     Point
	DX, DY    float64
	Viewport  Viewport
	Cancelled bool
}

// OnPan registers the listener for pan gesture events.
func (c *ViewportController) OnPan(fn func(PanEvent)) {
	c.listener = fn
}

// OnDeselect registers the hook that clears the active selection when pan mode starts.
func (c *ViewportController) OnDeselect(fn func()) {
	c.deselect = fn
}

func (c *ViewportController) emit(ev PanEvent) {
	if c.listener != nil {
		ev.Viewport = c.vp
		c.listener(ev)
	}
}

// PanEnabled reports whether pan mode is on.
func (c *ViewportController) PanEnabled() bool { return c.panEnabled }

// Panning reports whether a pan gesture is in progress.
func (c *ViewportController) Panning() bool { return c.panning }

// EnablePan switches into pan mode: grab cursor, object selection off and the
// active selection cleared. Draw mode is turned off first.
func (c *ViewportController) EnablePan() {
	if c.panEnabled {
		return
	}
	c.modes.Draw = false
	c.modes.Pan = true
	c.panEnabled = true
	c.panning = false
	c.surface.SetCursor(CursorGrab)
	c.surface.SetSelectionEnabled(false)
	if c.deselect != nil {
		c.deselect()
	}
	c.surface.RequestRender()
}

// DisablePan leaves pan mode. An in-flight gesture is abandoned where it is;
// the viewport keeps its last applied position. The default cursor and object
// selection come back unless draw mode is active.
func (c *ViewportController) DisablePan() {
	if !c.panEnabled {
		return
	}
	wasPanning := c.panning
	c.panEnabled = false
	c.panning = false
	c.modes.Pan = false
	if wasPanning {
		c.emit(PanEvent{Type: PanEnd, Point: c.last, Cancelled: true})
	}
	if !c.modes.Draw {
		c.surface.SetCursor(CursorDefault)
		c.surface.SetSelectionEnabled(true)
	}
}

// PointerDown starts a pan gesture. It reports whether the event was consumed.
func (c *ViewportController) PointerDown(p Point) bool {
	if !c.panEnabled {
		return false
	}
	c.panning = true
	c.last = p
	c.surface.SetCursor(CursorGrabbing)
	c.emit(PanEvent{Type: PanStart, Point: p})
	return true
}

// PointerMove pans by the delta from the previous pointer position.
func (c *ViewportController) PointerMove(p Point) bool {
	if !c.panEnabled {
		return false
	}
	if !c.panning {
		return true
	}
	dx, dy := p.X-c.last.X, p.Y-c.last.Y
	c.vp.Pan(dx, dy)
	c.surface.RequestRender()
	c.last = p
	c.emit(PanEvent{Type: PanMove, Point: p, DX: dx, DY: dy})
	return true
}

// PointerUp commits the gesture and returns to idle.
func (c *ViewportController) PointerUp(p Point) bool {
	if !c.panEnabled {
		return false
	}
	if !c.panning {
		return true
	}
	c.panning = false
	c.surface.SetSelectionEnabled(true)
	c.surface.SetCursor(CursorGrab)
	c.emit(PanEvent{Type: PanEnd, Point: p})
	return true
}

// PanBy applies a pan delta directly, for keyboard or scroll-wheel panning.
func (c *ViewportController) PanBy(dx, dy float64) {
	c.vp.Pan(dx, dy)
	c.surface.RequestRender()
}
