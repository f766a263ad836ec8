package document

import "github.com/inamate/sketch/internal/typeid"

// NewSampleDocument builds a small scene containing every non-image layer kind.
func NewSampleDocument(sceneID string) *Document {
	doc := NewEmptyDocument(sceneID)
	doc.Background = Background{Pattern: PatternGrid, Color: "#f8f9fa", Spacing: 20}

	rect := NewLayer(typeid.NewLayerID(), KindRect)
	rect.Left, rect.Top, rect.Width, rect.Height = 100, 100, 200, 120
	rect.Style.Fill = "#a5d8ff"
	rect.Payload = &Shape{CornerRadius: 8}

	ellipse := NewLayer(typeid.NewLayerID(), KindEllipse)
	ellipse.Left, ellipse.Top, ellipse.Width, ellipse.Height = 400, 120, 160, 160
	ellipse.Angle = 30
	ellipse.Style.Fill = "#ffc9c9"

	stroke := NewLayer(typeid.NewLayerID(), KindStroke)
	stroke.Left, stroke.Top, stroke.Width, stroke.Height = 650, 100, 100, 60
	stroke.ScaleX, stroke.ScaleY = 1.5, 1.5
	stroke.Payload = &Stroke{
		Points:      []Point{{0, 30}, {25, 0}, {50, 30}, {75, 60}, {100, 30}},
		StrokeStyle: StrokeSolid,
	}

	line := NewLayer(typeid.NewLayerID(), KindLine)
	line.Payload = &Linear{X1: 100, Y1: 400, X2: 300, Y2: 350, StartHead: ArrowheadNone, EndHead: ArrowheadNone}
	line.Left, line.Top, line.Width, line.Height = 100, 350, 200, 50

	arrow := NewLayer(typeid.NewLayerID(), KindArrow)
	arrow.Payload = &Linear{X1: 400, Y1: 350, X2: 600, Y2: 450, StartHead: ArrowheadNone, EndHead: ArrowheadTriangle}
	arrow.Left, arrow.Top, arrow.Width, arrow.Height = 400, 350, 200, 100

	text := NewLayer(typeid.NewLayerID(), KindText)
	text.Left, text.Top, text.Width, text.Height = 100, 520, 240, 28
	text.Style.Fill = "#1e1e1e"
	text.Payload = &Text{Content: "Hello, sketch", FontID: "virgil", FontSize: 24}

	inner1 := NewLayer(typeid.NewLayerID(), KindRect)
	inner1.Left, inner1.Top, inner1.Width, inner1.Height = 700, 500, 60, 60
	inner2 := NewLayer(typeid.NewLayerID(), KindEllipse)
	inner2.Left, inner2.Top, inner2.Width, inner2.Height = 780, 540, 80, 40
	group := NewLayer(typeid.NewLayerID(), KindGroup)
	group.Payload = &Group{Children: []*Layer{inner1, inner2}}
	group.Left, group.Top, group.Width, group.Height = 700, 500, 160, 60

	doc.Layers = []*Layer{rect, ellipse, stroke, line, arrow, text, group}
	return doc
}
