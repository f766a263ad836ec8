package engine

import (
	"math"
	"testing"

	"github.com/inamate/sketch/internal/document"
)

func near(a, b float64) bool { return math.Abs(a-b) <= 1e-6 }

func rectLayer(id string, left, top, w, h float64) *document.Layer {
	l := document.NewLayer(id, document.KindRect)
	l.Left, l.Top, l.Width, l.Height = left, top, w, h
	return l
}

func lineLayer(id string, x1, y1, x2, y2 float64) *document.Layer {
	l := document.NewLayer(id, document.KindLine)
	l.Payload = &document.Linear{X1: x1, Y1: y1, X2: x2, Y2: y2, StartHead: document.ArrowheadNone, EndHead: document.ArrowheadNone}
	SyncLinearPoints(l)
	return l
}

func TestBoundingRect(t *testing.T) {
	tests := []struct {
		name            string
		layer           *document.Layer
		includeRotation bool
		want            Rect
	}{
		{"unrotated", rectLayer("a", 10, 20, 100, 50), true, Rect{10, 20, 100, 50}},
		{"scaled", func() *document.Layer {
			l := rectLayer("a", 0, 0, 100, 50)
			l.ScaleX, l.ScaleY = 2, 3
			return l
		}(), false, Rect{0, 0, 200, 150}},
		{"rotated 90 with rotation", func() *document.Layer {
			l := rectLayer("a", 0, 0, 100, 50)
			l.Angle = 90
			return l
		}(), true, Rect{25, -25, 50, 100}},
		{"rotated 90 without rotation", func() *document.Layer {
			l := rectLayer("a", 0, 0, 100, 50)
			l.Angle = 90
			return l
		}(), false, Rect{0, 0, 100, 50}},
		{"zero size", rectLayer("a", 5, 5, 0, 0), true, Rect{5, 5, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BoundingRect(tt.layer, tt.includeRotation)
			if !near(got.Left, tt.want.Left) || !near(got.Top, tt.want.Top) ||
				!near(got.Width, tt.want.Width) || !near(got.Height, tt.want.Height) {
				t.Errorf("BoundingRect() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTransformPoint(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix2D
		p    Point
		want Point
	}{
		{"identity", Identity(), Point{X: 3, Y: 4}, Point{X: 3, Y: 4}},
		{"translate", Translate(10, -5), Point{X: 1, Y: 1}, Point{X: 11, Y: -4}},
		{"scale", Scale(2, 3), Point{X: 1, Y: 1}, Point{X: 2, Y: 3}},
		{"rotate 90", RotateDegrees(90), Point{X: 1, Y: 0}, Point{X: 0, Y: 1}},
		{"composed", Translate(5, 5).Multiply(Scale(2, 2)), Point{X: 1, Y: 2}, Point{X: 7, Y: 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TransformPoint(tt.p, tt.m)
			if !near(got.X, tt.want.X) || !near(got.Y, tt.want.Y) {
				t.Errorf("TransformPoint() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMatrixInvert(t *testing.T) {
	m := Translate(30, -12).Multiply(RotateDegrees(37)).Multiply(Scale(2, 0.5))
	p := Point{X: 7, Y: -3}
	back := m.Invert().TransformPoint(m.TransformPoint(p))
	if !near(back.X, p.X) || !near(back.Y, p.Y) {
		t.Errorf("Invert round trip = %+v, want %+v", back, p)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		lo, v, hi, want float64
	}{
		{0, 5, 10, 5},
		{0, -1, 10, 0},
		{0, 11, 10, 10},
		{10, 10, 10, 10},
	}
	for _, tt := range tests {
		if got := Clamp(tt.lo, tt.v, tt.hi); got != tt.want {
			t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.lo, tt.v, tt.hi, got, tt.want)
		}
	}
	if got := Clamp(1, 20000, 16384); got != 16384 {
		t.Errorf("Clamp(int) = %v, want 16384", got)
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0}, {360, 0}, {-90, 270}, {725, 5}, {359.5, 359.5},
	}
	for _, tt := range tests {
		if got := NormalizeAngle(tt.in); !near(got, tt.want) {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestContainsPointRotated(t *testing.T) {
	l := rectLayer("a", 0, 0, 100, 20)
	l.Angle = 90
	// After rotation the box spans x 40..60, y -40..60.
	if ContainsPoint(l, Point{X: 90, Y: 10}) {
		t.Error("point on the unrotated extent should miss the rotated box")
	}
	if !ContainsPoint(l, Point{X: 50, Y: -30}) {
		t.Error("point on the rotated extent should hit")
	}
}

func TestTranslateLayer(t *testing.T) {
	line := lineLayer("l", 0, 0, 10, 20)
	TranslateLayer(line, 5, 5)
	p, _ := line.Linear()
	if p.X1 != 5 || p.Y1 != 5 || p.X2 != 15 || p.Y2 != 25 {
		t.Errorf("endpoints = %+v, want shifted by 5", p)
	}
	if line.Left != 5 || line.Top != 5 || line.Width != 10 || line.Height != 20 {
		t.Errorf("line box = %v,%v,%v,%v, want 5,5,10,20", line.Left, line.Top, line.Width, line.Height)
	}

	group := document.NewLayer("g", document.KindGroup)
	group.Payload = &document.Group{Children: []*document.Layer{rectLayer("a", 0, 0, 10, 10), rectLayer("b", 20, 20, 10, 10)}}
	syncGroupBox(group)
	TranslateLayer(group, 100, 0)
	if group.Left != 100 || group.Width != 30 {
		t.Errorf("group box left/width = %v/%v, want 100/30", group.Left, group.Width)
	}
}
