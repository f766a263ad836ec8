package engine

import "github.com/inamate/sketch/internal/document"

// Recover reconciles l with the stored properties in src so that its geometry
// is internally consistent. It runs after deserialization, cloning and history
// restoration, never during a live drag. Recovering an already consistent
// layer from itself is a no-op.
func Recover(l, src *document.Layer) {
	l.ID = src.ID
	l.Kind = src.Kind
	l.Left, l.Top = src.Left, src.Top
	l.Width, l.Height = src.Width, src.Height
	l.Angle = src.Angle
	l.Locked = src.Locked
	l.Visible = src.Visible
	l.FlipX, l.FlipY = src.FlipX, src.FlipY
	l.Style = src.Style

	sx, sy := sanitizeScale(src.ScaleX), sanitizeScale(src.ScaleY)
	if src.Kind.Scalable() {
		l.ScaleX, l.ScaleY = sx, sy
	} else {
		l.Width = src.Width * sx
		l.Height = src.Height * sy
		l.ScaleX, l.ScaleY = 1, 1
	}

	switch src.Kind {
	case document.KindRect, document.KindEllipse:
		shape := &document.Shape{}
		if p, ok := src.Shape(); ok {
			*shape = *p
		}
		l.Payload = shape

	case document.KindStroke:
		stroke := &document.Stroke{StrokeStyle: document.StrokeSolid}
		if p, ok := src.Stroke(); ok {
			stroke.Points = append([]document.Point(nil), p.Points...)
			if p.StrokeStyle != "" {
				stroke.StrokeStyle = p.StrokeStyle
			}
			if p.Shadow != nil {
				s := *p.Shadow
				stroke.Shadow = &s
			}
		}
		l.Payload = stroke

	case document.KindLine, document.KindArrow:
		lin := document.NewPayload(src.Kind).(*document.Linear)
		if p, ok := src.Linear(); ok {
			lin.X1, lin.Y1, lin.X2, lin.Y2 = p.X1, p.Y1, p.X2, p.Y2
			if src.Kind == document.KindArrow {
				lin.StartHead, lin.EndHead = p.StartHead, p.EndHead
			}
		}
		l.Payload = lin
		SyncLinearPoints(l)

	case document.KindText:
		text := &document.Text{FontSize: 20}
		if p, ok := src.Text(); ok {
			*text = *p
		}
		l.Payload = text

	case document.KindImage:
		img := &document.Image{}
		if p, ok := src.Image(); ok {
			*img = *p
			img.Src = append([]byte(nil), p.Src...)
		}
		l.Payload = img

	case document.KindGroup:
		group := &document.Group{}
		if p, ok := src.Group(); ok {
			group.Children = make([]*document.Layer, 0, len(p.Children))
			for _, child := range p.Children {
				if child == nil || !child.Kind.Valid() {
					continue
				}
				rc := &document.Layer{}
				Recover(rc, child)
				group.Children = append(group.Children, rc)
			}
		}
		l.Payload = group
		syncGroupBox(l)
	}
}

// Recovered returns a fresh, normalized copy of src.
func Recovered(src *document.Layer) *document.Layer {
	l := &document.Layer{}
	Recover(l, src)
	return l
}
