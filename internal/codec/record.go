package codec

import (
	"fmt"

	"github.com/inamate/sketch/internal/document"
)

// sceneRecord is the JSON form of a scene document inside the container.
type sceneRecord struct {
	Background backgroundRecord `json:"background"`
	Width      int              `json:"width"`
	Height     int              `json:"height"`
	Layers     []layerRecord    `json:"layers"`
}

type backgroundRecord struct {
	Pattern string  `json:"pattern,omitempty"`
	Color   string  `json:"color,omitempty"`
	Spacing float64 `json:"spacing,omitempty"`
}

// layerRecord carries every layer field. Scale is written raw so that import
// can re-derive baked sizes; a missing scale reads as 1.
type layerRecord struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	Left    float64  `json:"left"`
	Top     float64  `json:"top"`
	Width   float64  `json:"width"`
	Height  float64  `json:"height"`
	ScaleX  *float64 `json:"scaleX,omitempty"`
	ScaleY  *float64 `json:"scaleY,omitempty"`
	Angle   float64  `json:"angle,omitempty"`
	FlipX   bool     `json:"flipX,omitempty"`
	FlipY   bool     `json:"flipY,omitempty"`
	Visible *bool    `json:"visible,omitempty"`
	Locked  bool     `json:"locked,omitempty"`

	Fill        string   `json:"fill,omitempty"`
	Stroke      string   `json:"stroke,omitempty"`
	StrokeWidth float64  `json:"strokeWidth,omitempty"`
	Opacity     *float64 `json:"opacity,omitempty"`

	CornerRadius float64       `json:"cornerRadius,omitempty"`
	Points       [][2]float64  `json:"points,omitempty"`
	StrokeStyle  string        `json:"strokeStyle,omitempty"`
	Shadow       *shadowRecord `json:"shadow,omitempty"`
	Line         *lineRecord   `json:"line,omitempty"`
	Text         *textRecord   `json:"text,omitempty"`
	Image        *imageRecord  `json:"image,omitempty"`
	Children     []layerRecord `json:"children,omitempty"`
}

type shadowRecord struct {
	Color   string  `json:"color"`
	Blur    float64 `json:"blur"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

type lineRecord struct {
	X1        float64 `json:"x1"`
	Y1        float64 `json:"y1"`
	X2        float64 `json:"x2"`
	Y2        float64 `json:"y2"`
	StartHead string  `json:"startHead,omitempty"`
	EndHead   string  `json:"endHead,omitempty"`
}

type textRecord struct {
	Content  string  `json:"content"`
	FontID   string  `json:"fontId,omitempty"`
	FontSize float64 `json:"fontSize,omitempty"`
}

type imageRecord struct {
	Src    []byte `json:"src"` // base64 in JSON
	Width  int    `json:"naturalWidth,omitempty"`
	Height int    `json:"naturalHeight,omitempty"`
}

func toSceneRecord(doc *document.Document) sceneRecord {
	return sceneRecord{
		Background: backgroundRecord{
			Pattern: string(doc.Background.Pattern),
			Color:   doc.Background.Color,
			Spacing: doc.Background.Spacing,
		},
		Width:  doc.Width,
		Height: doc.Height,
		Layers: toLayerRecords(doc.Layers),
	}
}

// toLayerRecords converts layers, dropping pending ones.
func toLayerRecords(layers []*document.Layer) []layerRecord {
	out := make([]layerRecord, 0, len(layers))
	for _, l := range layers {
		if l == nil || l.Pending() {
			continue
		}
		out = append(out, toLayerRecord(l))
	}
	return out
}

func toLayerRecord(l *document.Layer) layerRecord {
	sx, sy := l.ScaleX, l.ScaleY
	visible := l.Visible
	opacity := l.Style.Opacity
	r := layerRecord{
		ID:          l.ID,
		Type:        string(l.Kind),
		Left:        l.Left,
		Top:         l.Top,
		Width:       l.Width,
		Height:      l.Height,
		ScaleX:      &sx,
		ScaleY:      &sy,
		Angle:       l.Angle,
		FlipX:       l.FlipX,
		FlipY:       l.FlipY,
		Visible:     &visible,
		Locked:      l.Locked,
		Fill:        l.Style.Fill,
		Stroke:      l.Style.Stroke,
		StrokeWidth: l.Style.StrokeWidth,
		Opacity:     &opacity,
	}
	switch p := l.Payload.(type) {
	case *document.Shape:
		r.CornerRadius = p.CornerRadius
	case *document.Stroke:
		r.Points = make([][2]float64, len(p.Points))
		for i, pt := range p.Points {
			r.Points[i] = [2]float64{pt.X, pt.Y}
		}
		r.StrokeStyle = string(p.StrokeStyle)
		if p.Shadow != nil {
			r.Shadow = &shadowRecord{Color: p.Shadow.Color, Blur: p.Shadow.Blur, OffsetX: p.Shadow.OffsetX, OffsetY: p.Shadow.OffsetY}
		}
	case *document.Linear:
		r.Line = &lineRecord{
			X1: p.X1, Y1: p.Y1, X2: p.X2, Y2: p.Y2,
			StartHead: string(p.StartHead),
			EndHead:   string(p.EndHead),
		}
	case *document.Text:
		r.Text = &textRecord{Content: p.Content, FontID: p.FontID, FontSize: p.FontSize}
	case *document.Image:
		r.Image = &imageRecord{Src: p.Src, Width: p.NaturalWidth, Height: p.NaturalHeight}
	case *document.Group:
		r.Children = toLayerRecords(p.Children)
	}
	return r
}

// toLayer builds an unnormalized layer from a record. Image payloads are left
// pending with their source bytes; decoding happens afterwards.
func toLayer(r layerRecord) (*document.Layer, error) {
	kind := document.Kind(r.Type)
	if !kind.Valid() {
		return nil, fmt.Errorf("layer %q: unknown type %q", r.ID, r.Type)
	}
	if r.ID == "" {
		return nil, fmt.Errorf("layer of type %q: missing id", r.Type)
	}
	l := document.NewLayer(r.ID, kind)
	l.Left, l.Top = r.Left, r.Top
	l.Width, l.Height = r.Width, r.Height
	l.ScaleX, l.ScaleY = deref(r.ScaleX, 1), deref(r.ScaleY, 1)
	l.Angle = r.Angle
	l.FlipX, l.FlipY = r.FlipX, r.FlipY
	l.Visible = r.Visible == nil || *r.Visible
	l.Locked = r.Locked
	l.Style = document.Style{
		Fill:        r.Fill,
		Stroke:      r.Stroke,
		StrokeWidth: r.StrokeWidth,
		Opacity:     deref(r.Opacity, 1),
	}

	switch p := l.Payload.(type) {
	case *document.Shape:
		p.CornerRadius = r.CornerRadius
	case *document.Stroke:
		p.Points = make([]document.Point, len(r.Points))
		for i, pt := range r.Points {
			p.Points[i] = document.Point{X: pt[0], Y: pt[1]}
		}
		if r.StrokeStyle != "" {
			p.StrokeStyle = document.StrokeStyle(r.StrokeStyle)
		}
		if r.Shadow != nil {
			p.Shadow = &document.Shadow{Color: r.Shadow.Color, Blur: r.Shadow.Blur, OffsetX: r.Shadow.OffsetX, OffsetY: r.Shadow.OffsetY}
		}
	case *document.Linear:
		if r.Line == nil {
			return nil, fmt.Errorf("layer %q: %s without endpoints", r.ID, kind)
		}
		p.X1, p.Y1, p.X2, p.Y2 = r.Line.X1, r.Line.Y1, r.Line.X2, r.Line.Y2
		if r.Line.StartHead != "" {
			p.StartHead = document.Arrowhead(r.Line.StartHead)
		}
		if r.Line.EndHead != "" {
			p.EndHead = document.Arrowhead(r.Line.EndHead)
		}
	case *document.Text:
		if r.Text != nil {
			p.Content = r.Text.Content
			p.FontID = r.Text.FontID
			if r.Text.FontSize > 0 {
				p.FontSize = r.Text.FontSize
			}
		}
	case *document.Image:
		if r.Image == nil || len(r.Image.Src) == 0 {
			return nil, fmt.Errorf("layer %q: image without data", r.ID)
		}
		p.Src = r.Image.Src
		p.NaturalWidth, p.NaturalHeight = r.Image.Width, r.Image.Height
		p.State = document.LoadPending
	case *document.Group:
		for _, cr := range r.Children {
			child, err := toLayer(cr)
			if err != nil {
				return nil, err
			}
			p.Children = append(p.Children, child)
		}
	}
	return l, nil
}

func deref(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
