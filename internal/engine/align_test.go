package engine

import (
	"testing"

	"github.com/inamate/sketch/internal/document"
)

func alignFixture() *document.Document {
	doc := document.NewEmptyDocument("scene")
	a := rectLayer("a", 10, 10, 50, 30)
	b := rectLayer("b", 100, 60, 20, 80)
	c := rectLayer("c", 40, 200, 60, 60)
	c.Angle = 45
	line := lineLayer("l", 300, 20, 380, 90)
	doc.Layers = []*document.Layer{a, b, c, line}
	return doc
}

func edge(a Alignment, r Rect) float64 {
	switch a {
	case AlignLeft:
		return r.Left
	case AlignRight:
		return r.Right()
	case AlignTop:
		return r.Top
	case AlignBottom:
		return r.Bottom()
	case AlignCenter:
		return r.Center().X
	case AlignMiddle:
		return r.Center().Y
	}
	return 0
}

func TestAlignConvergence(t *testing.T) {
	all := map[string]bool{"a": true, "b": true, "c": true, "l": true}
	for _, a := range []Alignment{AlignLeft, AlignRight, AlignTop, AlignBottom, AlignCenter, AlignMiddle} {
		t.Run(string(a), func(t *testing.T) {
			doc := alignFixture()
			g, ok := NewGroup(doc, all)
			if !ok {
				t.Fatal("group not formed")
			}
			before := make(map[string]Rect)
			for _, l := range g.Members {
				before[l.ID] = BoundingRect(l, true)
			}
			want := edge(a, g.Box)

			Align(g, a)

			for _, l := range g.Members {
				r := BoundingRect(l, true)
				if got := edge(a, r); !near(got, want) {
					t.Errorf("%s edge = %v, want %v", l.ID, got, want)
				}
				old := before[l.ID]
				if a.Horizontal() && !near(r.Top, old.Top) {
					t.Errorf("%s top moved %v -> %v", l.ID, old.Top, r.Top)
				}
				if !a.Horizontal() && !near(r.Left, old.Left) {
					t.Errorf("%s left moved %v -> %v", l.ID, old.Left, r.Left)
				}
			}
		})
	}
}

func TestAlignRequiresGroup(t *testing.T) {
	doc := alignFixture()
	if _, ok := NewGroup(doc, map[string]bool{"a": true}); ok {
		t.Error("single selection formed a group")
	}
	if moved := Align(Group{Members: doc.Layers[:1]}, AlignLeft); moved != nil {
		t.Errorf("Align on one member moved %d layers", len(moved))
	}
	g, _ := NewGroup(doc, map[string]bool{"a": true, "b": true})
	if moved := Align(g, Alignment("diagonal")); moved != nil {
		t.Error("unknown alignment moved layers")
	}
}

func TestDistribute(t *testing.T) {
	doc := document.NewEmptyDocument("scene")
	doc.Layers = []*document.Layer{
		rectLayer("a", 0, 0, 10, 10),
		rectLayer("b", 15, 50, 30, 10),
		rectLayer("c", 90, 20, 10, 10),
	}
	g, ok := NewGroup(doc, map[string]bool{"a": true, "b": true, "c": true})
	if !ok {
		t.Fatal("group not formed")
	}
	Distribute(g, DistributeHorizontal)

	// Span 100, widths 50, two gaps of 25.
	wantLeft := map[string]float64{"a": 0, "b": 35, "c": 90}
	for _, l := range doc.Layers {
		if !near(l.Left, wantLeft[l.ID]) {
			t.Errorf("%s left = %v, want %v", l.ID, l.Left, wantLeft[l.ID])
		}
	}
	if doc.Layers[1].Top != 50 {
		t.Errorf("vertical position changed: %v", doc.Layers[1].Top)
	}

	g2, _ := NewGroup(doc, map[string]bool{"a": true, "b": true})
	if moved := Distribute(g2, DistributeHorizontal); moved != nil {
		t.Error("two members should not distribute")
	}
}

func TestSelectionGroupMemo(t *testing.T) {
	doc := alignFixture()
	s := NewSelection()
	s.Set([]string{"a", "b"})
	g1, ok := s.Group(doc, 1)
	if !ok || len(g1.Members) != 2 {
		t.Fatalf("group = %+v, %v", g1, ok)
	}
	doc.Layers[0].Left = -100
	if g, _ := s.Group(doc, 1); g.Box != g1.Box {
		t.Error("memo recomputed without a revision change")
	}
	if g, _ := s.Group(doc, 2); g.Box == g1.Box {
		t.Error("memo not recomputed after a revision change")
	}
	s.Toggle("b")
	if _, ok := s.Group(doc, 2); ok {
		t.Error("group still valid after deselecting a member")
	}
}
