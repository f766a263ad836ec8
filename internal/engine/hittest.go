package engine

import "github.com/inamate/sketch/internal/document"

// EditorState is the slice of session state the hit-tester reads.
type EditorState struct {
	SelectedLayerIDs map[string]bool
}

// Selected reports whether id is part of the current selection.
func (s EditorState) Selected(id string) bool {
	return s.SelectedLayerIDs[id]
}

// ResizeTest resolves which transform handle of l lies under the scene point
// (x, y). Layers outside the selection never report a handle. The rotation
// handle wins over any overlapping resize handle; among resize handles the
// first in declaration order wins.
func ResizeTest(l *document.Layer, state EditorState, x, y float64, rc RenderContext) HandleType {
	if l == nil || !state.Selected(l.ID) {
		return HandleNone
	}
	if l.Locked || l.Pending() {
		return HandleNone
	}
	return testHandles(LayerHandles(l, rc), x, y)
}

// ResizeTestBounds is ResizeTest for the aggregate box of a multi-selection.
func ResizeTestBounds(box Rect, x, y float64, rc RenderContext) HandleType {
	return testHandles(GroupHandles(box, rc), x, y)
}

func testHandles(hs Handles, x, y float64) HandleType {
	if h, ok := hs.Get(HandleRotation); ok && h.Contains(x, y) {
		return HandleRotation
	}
	hit := HandleNone
	hs.Each(func(t HandleType, h Handle) {
		if hit != HandleNone || t == HandleRotation {
			return
		}
		if h.Contains(x, y) {
			hit = t
		}
	})
	return hit
}

// GetLayerWithTransformHandleType returns the first layer in list order whose
// handles are under (x, y), together with the handle type.
func GetLayerWithTransformHandleType(layers []*document.Layer, state EditorState, x, y float64, rc RenderContext) (*document.Layer, HandleType) {
	for _, l := range layers {
		if t := ResizeTest(l, state, x, y, rc); t != HandleNone {
			return l, t
		}
	}
	return nil, HandleNone
}

// HitTest returns the ID of the topmost paintable layer whose rotated box
// contains p, or an empty string.
func HitTest(doc *document.Document, p Point) string {
	if doc == nil {
		return ""
	}
	// Front to back = reverse paint order
	for i := len(doc.Layers) - 1; i >= 0; i-- {
		l := doc.Layers[i]
		if !l.Visible || l.Pending() {
			continue
		}
		if ContainsPoint(l, p) {
			return l.ID
		}
	}
	return ""
}

// LayersInRect returns the ids of paintable, unlocked layers whose rotated box
// lies entirely inside r, in paint order. Used for marquee selection.
func LayersInRect(doc *document.Document, r Rect) []string {
	var ids []string
	for _, l := range doc.Layers {
		if !l.Visible || l.Locked || l.Pending() {
			continue
		}
		b := BoundingRect(l, true)
		if b.Left >= r.Left && b.Top >= r.Top && b.Right() <= r.Right() && b.Bottom() <= r.Bottom() {
			ids = append(ids, l.ID)
		}
	}
	return ids
}
