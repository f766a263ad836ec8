package engine

import (
	"testing"

	"github.com/inamate/sketch/internal/document"
)

func selected(ids ...string) EditorState {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return EditorState{SelectedLayerIDs: m}
}

func TestResizeTestOutsideHandles(t *testing.T) {
	l := rectLayer("a", 0, 0, 200, 100)
	state := selected("a")
	tests := []struct {
		name string
		x, y float64
		rc   RenderContext
	}{
		{"far away", 1000, 1000, RenderContext{Zoom: 1, PointerType: PointerFine}},
		{"box center", 100, 50, RenderContext{Zoom: 1, PointerType: PointerFine}},
		{"just inside edge", 1, 1, RenderContext{Zoom: 1, PointerType: PointerFine}},
		{"coarse far away", -500, 50, RenderContext{Zoom: 1, PointerType: PointerCoarse}},
		{"zoomed in center", 100, 50, RenderContext{Zoom: 4, PointerType: PointerFine}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResizeTest(l, state, tt.x, tt.y, tt.rc); got != HandleNone {
				t.Errorf("ResizeTest() = %q, want none", got)
			}
		})
	}
}

func TestResizeTestEveryHandle(t *testing.T) {
	l := rectLayer("a", 0, 0, 200, 100)
	rc := RenderContext{Zoom: 1, PointerType: PointerFine}
	hs := LayerHandles(l, rc)
	if hs.Len() != 9 {
		t.Fatalf("handle count = %d, want 9", hs.Len())
	}
	hs.Each(func(typ HandleType, h Handle) {
		t.Run(string(typ), func(t *testing.T) {
			got := ResizeTest(l, selected("a"), h.X+h.W/2, h.Y+h.H/2, rc)
			if got != typ {
				t.Errorf("ResizeTest(center of %s) = %q", typ, got)
			}
		})
	})
}

func TestResizeTestEdgesInclusive(t *testing.T) {
	l := rectLayer("a", 0, 0, 200, 100)
	rc := RenderContext{Zoom: 1, PointerType: PointerFine}
	h, ok := LayerHandles(l, rc).Get(HandleSE)
	if !ok {
		t.Fatal("missing se handle")
	}
	corners := [][2]float64{{h.X, h.Y}, {h.X + h.W, h.Y + h.H}}
	for _, c := range corners {
		if got := ResizeTest(l, selected("a"), c[0], c[1], rc); got != HandleSE {
			t.Errorf("ResizeTest(%v) = %q, want se", c, got)
		}
	}
}

func TestResizeTestRotationPrecedence(t *testing.T) {
	// A coarse handle is taller than the rotation gap, so the rotation and
	// north handles overlap just above the top edge.
	l := rectLayer("a", 0, 0, 200, 100)
	rc := RenderContext{Zoom: 1, PointerType: PointerCoarse}
	hs := LayerHandles(l, rc)
	rot, _ := hs.Get(HandleRotation)
	n, ok := hs.Get(HandleN)
	if !ok {
		t.Fatal("missing n handle")
	}
	x, y := 100.0, -25.0
	if !rot.Contains(x, y) || !n.Contains(x, y) {
		t.Fatalf("test point not in both handles: rot=%+v n=%+v", rot, n)
	}
	if got := ResizeTest(l, selected("a"), x, y, rc); got != HandleRotation {
		t.Errorf("ResizeTest() = %q, want rotation", got)
	}
}

func TestResizeTestRequiresSelection(t *testing.T) {
	l := rectLayer("a", 0, 0, 200, 100)
	rc := RenderContext{Zoom: 1, PointerType: PointerFine}
	hs := LayerHandles(l, rc)
	for _, state := range []EditorState{selected(), selected("b"), {}} {
		hs.Each(func(typ HandleType, h Handle) {
			if got := ResizeTest(l, state, h.X+h.W/2, h.Y+h.H/2, rc); got != HandleNone {
				t.Errorf("ResizeTest(unselected, %s) = %q, want none", typ, got)
			}
		})
	}
}

func TestResizeTestLockedAndPending(t *testing.T) {
	rc := RenderContext{Zoom: 1, PointerType: PointerFine}
	locked := rectLayer("a", 0, 0, 200, 100)
	locked.Locked = true
	h, _ := LayerHandles(locked, rc).Get(HandleSE)
	if got := ResizeTest(locked, selected("a"), h.X+1, h.Y+1, rc); got != HandleNone {
		t.Errorf("locked ResizeTest() = %q, want none", got)
	}

	img := document.NewLayer("i", document.KindImage)
	img.Width, img.Height = 200, 100
	h, _ = LayerHandles(img, rc).Get(HandleSE)
	if got := ResizeTest(img, selected("i"), h.X+1, h.Y+1, rc); got != HandleNone {
		t.Errorf("pending ResizeTest() = %q, want none", got)
	}
}

func TestHandlesScaleWithZoom(t *testing.T) {
	l := rectLayer("a", 0, 0, 200, 100)
	for _, zoom := range []float64{0.1, 0.5, 1, 2, 4} {
		h, _ := LayerHandles(l, RenderContext{Zoom: zoom, PointerType: PointerFine}).Get(HandleNW)
		if !near(h.W*zoom, fineHandleSize) {
			t.Errorf("zoom %v: on-screen handle size = %v, want %v", zoom, h.W*zoom, fineHandleSize)
		}
	}
	fine, _ := LayerHandles(l, RenderContext{Zoom: 1, PointerType: PointerFine}).Get(HandleNW)
	coarse, _ := LayerHandles(l, RenderContext{Zoom: 1, PointerType: PointerCoarse}).Get(HandleNW)
	if coarse.W <= fine.W {
		t.Errorf("coarse handle %v not larger than fine %v", coarse.W, fine.W)
	}
	// A zero zoom never divides by zero.
	h, _ := LayerHandles(l, RenderContext{}).Get(HandleNW)
	if !(h.W > 0) {
		t.Errorf("zero zoom handle width = %v", h.W)
	}
}

func TestHandleOmission(t *testing.T) {
	rc := RenderContext{Zoom: 1, PointerType: PointerFine}
	tests := []struct {
		name    string
		handles Handles
		present []HandleType
		absent  []HandleType
	}{
		{"multi selection", GroupHandles(Rect{0, 0, 300, 300}, rc),
			[]HandleType{HandleNW, HandleNE, HandleSW, HandleSE, HandleRotation},
			[]HandleType{HandleN, HandleS, HandleE, HandleW}},
		{"text", LayerHandles(func() *document.Layer {
			l := document.NewLayer("t", document.KindText)
			l.Width, l.Height = 300, 300
			return l
		}(), rc),
			[]HandleType{HandleNW, HandleSE, HandleRotation},
			[]HandleType{HandleN, HandleE}},
		{"line down-right", LayerHandles(lineLayer("l", 0, 0, 100, 100), rc),
			[]HandleType{HandleNW, HandleSE},
			[]HandleType{HandleNE, HandleSW, HandleRotation, HandleN}},
		{"line up-right", LayerHandles(lineLayer("l", 0, 100, 100, 0), rc),
			[]HandleType{HandleNE, HandleSW},
			[]HandleType{HandleNW, HandleSE, HandleRotation}},
		{"small rect has no sides", LayerHandles(rectLayer("a", 0, 0, 10, 10), rc),
			[]HandleType{HandleNW, HandleRotation},
			[]HandleType{HandleN, HandleS, HandleE, HandleW}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, typ := range tt.present {
				if _, ok := tt.handles.Get(typ); !ok {
					t.Errorf("handle %q missing", typ)
				}
			}
			for _, typ := range tt.absent {
				if _, ok := tt.handles.Get(typ); ok {
					t.Errorf("handle %q present, want omitted", typ)
				}
			}
		})
	}
}

func TestRotationHandleFollowsAngle(t *testing.T) {
	rc := RenderContext{Zoom: 1, PointerType: PointerFine}
	l := rectLayer("a", 0, 0, 100, 100)
	l.Angle = 180
	h, _ := LayerHandles(l, rc).Get(HandleRotation)
	// Upside down, the rotation handle sits below the box.
	if h.Y < 100 {
		t.Errorf("rotation handle y = %v, want below the box", h.Y)
	}
}

func TestGetLayerWithTransformHandleType(t *testing.T) {
	rc := RenderContext{Zoom: 1, PointerType: PointerFine}
	a := rectLayer("a", 0, 0, 100, 100)
	b := rectLayer("b", 0, 0, 100, 100)
	h, _ := LayerHandles(a, rc).Get(HandleSE)

	l, typ := GetLayerWithTransformHandleType([]*document.Layer{a, b}, selected("a", "b"), h.X+1, h.Y+1, rc)
	if l != a || typ != HandleSE {
		t.Errorf("got (%v, %q), want (a, se)", l, typ)
	}
	l, typ = GetLayerWithTransformHandleType([]*document.Layer{a, b}, selected("b"), h.X+1, h.Y+1, rc)
	if l != b || typ != HandleSE {
		t.Errorf("got (%v, %q), want (b, se)", l, typ)
	}
	l, typ = GetLayerWithTransformHandleType([]*document.Layer{a, b}, selected("b"), 500, 500, rc)
	if l != nil || typ != HandleNone {
		t.Errorf("got (%v, %q), want no match", l, typ)
	}
}

func TestHitTest(t *testing.T) {
	doc := document.NewEmptyDocument("scene")
	bottom := rectLayer("bottom", 0, 0, 100, 100)
	top := rectLayer("top", 50, 50, 100, 100)
	hidden := rectLayer("hidden", 0, 0, 500, 500)
	hidden.Visible = false
	pending := document.NewLayer("pending", document.KindImage)
	pending.Width, pending.Height = 500, 500
	doc.Layers = []*document.Layer{bottom, top, hidden, pending}

	tests := []struct {
		p    Point
		want string
	}{
		{Point{X: 10, Y: 10}, "bottom"},
		{Point{X: 75, Y: 75}, "top"},
		{Point{X: 140, Y: 140}, "top"},
		{Point{X: 400, Y: 400}, ""},
	}
	for _, tt := range tests {
		if got := HitTest(doc, tt.p); got != tt.want {
			t.Errorf("HitTest(%v) = %q, want %q", tt.p, got, tt.want)
		}
	}
	if got := HitTest(nil, Point{}); got != "" {
		t.Errorf("HitTest(nil) = %q", got)
	}
}

func TestLayersInRect(t *testing.T) {
	doc := document.NewEmptyDocument("scene")
	a := rectLayer("a", 10, 10, 20, 20)
	b := rectLayer("b", 100, 100, 20, 20)
	c := rectLayer("c", 15, 15, 5, 5)
	c.Locked = true
	doc.Layers = []*document.Layer{a, b, c}

	got := LayersInRect(doc, Rect{0, 0, 50, 50})
	if len(got) != 1 || got[0] != "a" {
		t.Errorf("LayersInRect() = %v, want [a]", got)
	}
}
