package engine

import (
	"testing"
)

// recordingSurface captures what the editor core asks of the host.
type recordingSurface struct {
	cursor           Cursor
	selectionEnabled bool
	renders          int
}

func newRecordingSurface() *recordingSurface {
	return &recordingSurface{cursor: CursorDefault, selectionEnabled: true}
}

func (s *recordingSurface) SetCursor(c Cursor)          { s.cursor = c }
func (s *recordingSurface) SetSelectionEnabled(on bool) { s.selectionEnabled = on }
func (s *recordingSurface) RequestRender()              { s.renders++ }

func newController(s Surface, modes *Modes) *ViewportController {
	return NewViewportController(s, modes, DefaultZoomLimits(), 800, 600)
}

func TestSetZoomClamps(t *testing.T) {
	tests := []struct {
		factor float64
		want   float64 // percent
	}{
		{1, 100},
		{0.5, 50},
		{0.01, DefaultMinZoomLevel},
		{0, DefaultMinZoomLevel},
		{-3, DefaultMinZoomLevel},
		{4, DefaultMaxZoomLevel},
		{100, DefaultMaxZoomLevel},
	}
	for _, tt := range tests {
		c := newController(nil, nil)
		c.SetZoom(tt.factor)
		if got := c.ZoomLevel(); !near(got, tt.want) {
			t.Errorf("SetZoom(%v) level = %v, want %v", tt.factor, got, tt.want)
		}
	}
}

func TestSetZoomKeepsAnchor(t *testing.T) {
	c := newController(nil, nil)
	c.PanBy(37, -12)
	anchor := Point{X: 200, Y: 150}
	before := c.Viewport().ScreenToScene(anchor)

	c.SetZoom(2.5, anchor)

	after := c.Viewport().SceneToScreen(before)
	if !near(after.X, anchor.X) || !near(after.Y, anchor.Y) {
		t.Errorf("anchor moved to %+v, want %+v", after, anchor)
	}

	// Default anchor is the canvas center.
	c = newController(nil, nil)
	center := c.Viewport().ScreenToScene(Point{X: 400, Y: 300})
	c.SetZoom(3)
	if got := c.Viewport().SceneToScreen(center); !near(got.X, 400) || !near(got.Y, 300) {
		t.Errorf("center moved to %+v", got)
	}
}

func TestZoomSteps(t *testing.T) {
	c := newController(nil, nil)
	c.ZoomIn()
	if got := c.ZoomLevel(); !near(got, 110) {
		t.Errorf("ZoomIn level = %v, want 110", got)
	}
	c.ZoomOut()
	c.ZoomOut()
	if got := c.ZoomLevel(); !near(got, 90) {
		t.Errorf("ZoomOut level = %v, want 90", got)
	}
	for i := 0; i < 50; i++ {
		c.ZoomOut()
	}
	if got := c.ZoomLevel(); !near(got, DefaultMinZoomLevel) {
		t.Errorf("level after many ZoomOut = %v, want %v", got, DefaultMinZoomLevel)
	}
	c.ResetZoom()
	if got := c.ZoomLevel(); !near(got, 100) {
		t.Errorf("ResetZoom level = %v", got)
	}
}

func TestSyncClampsExternalZoom(t *testing.T) {
	c := newController(nil, nil)
	c.Sync(Matrix2D{20, 0, 0, 20, 5, 5})
	if got := c.ZoomLevel(); !near(got, DefaultMaxZoomLevel) {
		t.Errorf("level = %v, want %v", got, DefaultMaxZoomLevel)
	}
	c.Sync(Matrix2D{2, 0, 0, 2, 5, 5})
	if got := c.Viewport(); got.Zoom != 2 || got.PanX != 5 {
		t.Errorf("viewport = %+v, want zoom 2 pan 5", got)
	}
}

func TestPanEnableDisableWithoutGesture(t *testing.T) {
	s := newRecordingSurface()
	c := newController(s, nil)
	c.PanBy(10, 20)
	before := c.Viewport()

	c.EnablePan()
	if s.cursor != CursorGrab || s.selectionEnabled {
		t.Errorf("after EnablePan cursor=%q selection=%v", s.cursor, s.selectionEnabled)
	}
	c.DisablePan()

	if got := c.Viewport(); got != before {
		t.Errorf("viewport = %+v, want %+v", got, before)
	}
	if s.cursor != CursorDefault || !s.selectionEnabled {
		t.Errorf("after DisablePan cursor=%q selection=%v", s.cursor, s.selectionEnabled)
	}
}

func TestPanGesture(t *testing.T) {
	s := newRecordingSurface()
	c := newController(s, nil)
	var events []PanEvent
	c.OnPan(func(ev PanEvent) { events = append(events, ev) })
	deselected := false
	c.OnDeselect(func() { deselected = true })

	if c.PointerDown(Point{X: 0, Y: 0}) {
		t.Fatal("pointer consumed while pan mode is off")
	}
	c.EnablePan()
	if !deselected {
		t.Error("EnablePan did not clear the selection")
	}

	c.PointerDown(Point{X: 100, Y: 100})
	if s.cursor != CursorGrabbing || !c.Panning() {
		t.Errorf("cursor = %q panning = %v", s.cursor, c.Panning())
	}
	c.PointerMove(Point{X: 110, Y: 95})
	c.PointerMove(Point{X: 130, Y: 90})
	c.PointerUp(Point{X: 130, Y: 90})

	vp := c.Viewport()
	if vp.PanX != 30 || vp.PanY != -10 {
		t.Errorf("pan = %v,%v, want 30,-10", vp.PanX, vp.PanY)
	}
	m := vp.Matrix()
	if m[4] != 30 || m[5] != -10 {
		t.Errorf("matrix translation = %v,%v", m[4], m[5])
	}
	if s.cursor != CursorGrab || !s.selectionEnabled {
		t.Errorf("after pointer up cursor=%q selection=%v", s.cursor, s.selectionEnabled)
	}

	wantTypes := []PanEventType{PanStart, PanMove, PanMove, PanEnd}
	if len(events) != len(wantTypes) {
		t.Fatalf("events = %d, want %d", len(events), len(wantTypes))
	}
	for i, ev := range events {
		if ev.Type != wantTypes[i] {
			t.Errorf("event %d = %q, want %q", i, ev.Type, wantTypes[i])
		}
	}
	if events[1].DX != 10 || events[1].DY != -5 {
		t.Errorf("first move delta = %v,%v", events[1].DX, events[1].DY)
	}
}

func TestDisablePanMidGesture(t *testing.T) {
	s := newRecordingSurface()
	c := newController(s, nil)
	var last PanEvent
	c.OnPan(func(ev PanEvent) { last = ev })

	c.EnablePan()
	c.PointerDown(Point{X: 0, Y: 0})
	c.PointerMove(Point{X: 15, Y: 25})
	c.DisablePan()

	if vp := c.Viewport(); vp.PanX != 15 || vp.PanY != 25 {
		t.Errorf("viewport rolled back: %+v", vp)
	}
	if last.Type != PanEnd || !last.Cancelled {
		t.Errorf("last event = %+v, want cancelled pan:end", last)
	}
	if s.cursor != CursorDefault || !s.selectionEnabled {
		t.Errorf("cursor=%q selection=%v", s.cursor, s.selectionEnabled)
	}
	if c.PointerMove(Point{X: 50, Y: 50}) {
		t.Error("pointer consumed after pan mode was disabled")
	}
}

func TestDisablePanKeepsDrawState(t *testing.T) {
	s := newRecordingSurface()
	modes := &Modes{}
	c := newController(s, modes)
	c.EnablePan()
	// Draw turned on behind the controller's back, as the editor would.
	modes.Draw = true
	s.cursor = CursorCrosshair
	c.DisablePan()
	if s.cursor != CursorCrosshair {
		t.Errorf("cursor = %q, want crosshair kept", s.cursor)
	}
	if s.selectionEnabled {
		t.Error("selection re-enabled while draw mode is active")
	}
}

func TestScreenSceneRoundTrip(t *testing.T) {
	v := Viewport{PanX: 12, PanY: -40, Zoom: 1.75}
	p := Point{X: 321, Y: 123}
	got := v.SceneToScreen(v.ScreenToScene(p))
	if !near(got.X, p.X) || !near(got.Y, p.Y) {
		t.Errorf("round trip = %+v, want %+v", got, p)
	}
	if got := ViewportFromMatrix(v.Matrix()); !near(got.Zoom, v.Zoom) || got.PanX != v.PanX {
		t.Errorf("ViewportFromMatrix = %+v, want %+v", got, v)
	}
}
