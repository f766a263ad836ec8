package document

import (
	"bytes"
	"math"
)

// EqualLayers reports whether a and b describe the same layer. Numeric fields
// are compared within eps; decoded bitmaps are ignored.
func EqualLayers(a, b *Layer, eps float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	near := func(x, y float64) bool { return math.Abs(x-y) <= eps }
	if a.ID != b.ID || a.Kind != b.Kind ||
		!near(a.Left, b.Left) || !near(a.Top, b.Top) ||
		!near(a.Width, b.Width) || !near(a.Height, b.Height) ||
		!near(a.ScaleX, b.ScaleX) || !near(a.ScaleY, b.ScaleY) ||
		!near(a.Angle, b.Angle) ||
		a.FlipX != b.FlipX || a.FlipY != b.FlipY ||
		a.Visible != b.Visible || a.Locked != b.Locked {
		return false
	}
	if a.Style.Fill != b.Style.Fill || a.Style.Stroke != b.Style.Stroke ||
		!near(a.Style.StrokeWidth, b.Style.StrokeWidth) || !near(a.Style.Opacity, b.Style.Opacity) {
		return false
	}
	return equalPayloads(a.Payload, b.Payload, eps)
}

func equalPayloads(a, b Payload, eps float64) bool {
	near := func(x, y float64) bool { return math.Abs(x-y) <= eps }
	switch pa := a.(type) {
	case nil:
		return b == nil
	case *Shape:
		pb, ok := b.(*Shape)
		return ok && near(pa.CornerRadius, pb.CornerRadius)
	case *Stroke:
		pb, ok := b.(*Stroke)
		if !ok || pa.StrokeStyle != pb.StrokeStyle || len(pa.Points) != len(pb.Points) {
			return false
		}
		for i := range pa.Points {
			if !near(pa.Points[i].X, pb.Points[i].X) || !near(pa.Points[i].Y, pb.Points[i].Y) {
				return false
			}
		}
		if (pa.Shadow == nil) != (pb.Shadow == nil) {
			return false
		}
		return pa.Shadow == nil || *pa.Shadow == *pb.Shadow
	case *Linear:
		pb, ok := b.(*Linear)
		return ok && near(pa.X1, pb.X1) && near(pa.Y1, pb.Y1) && near(pa.X2, pb.X2) && near(pa.Y2, pb.Y2) &&
			pa.StartHead == pb.StartHead && pa.EndHead == pb.EndHead
	case *Text:
		pb, ok := b.(*Text)
		return ok && pa.Content == pb.Content && pa.FontID == pb.FontID && near(pa.FontSize, pb.FontSize)
	case *Image:
		pb, ok := b.(*Image)
		return ok && pa.State == pb.State && pa.NaturalWidth == pb.NaturalWidth &&
			pa.NaturalHeight == pb.NaturalHeight && bytes.Equal(pa.Src, pb.Src)
	case *Group:
		pb, ok := b.(*Group)
		if !ok || len(pa.Children) != len(pb.Children) {
			return false
		}
		for i := range pa.Children {
			if !EqualLayers(pa.Children[i], pb.Children[i], eps) {
				return false
			}
		}
		return true
	}
	return false
}
