package engine

import (
	"encoding/json"

	"github.com/inamate/sketch/internal/document"
)

// PathCommand is a single path instruction: an op letter followed by its
// coordinates, e.g. ["M", x, y] or ["C", x1, y1, x2, y2, x, y].
type PathCommand []interface{}

// DrawCommand represents a single drawing operation for the frontend to execute.
// The frontend receives a list of these and executes them on a Canvas2D context.
type DrawCommand struct {
	Op          string        `json:"op"`                    // "path", "text", "image", "handle", "outline"
	ObjectID    string        `json:"objectId,omitempty"`    // For hit correlation
	Transform   []float64     `json:"transform,omitempty"`   // [a, b, c, d, e, f] affine matrix
	Path        []PathCommand `json:"path,omitempty"`        // Path data for "path" ops
	Fill        string        `json:"fill,omitempty"`        // Fill color
	Stroke      string        `json:"stroke,omitempty"`      // Stroke color
	StrokeWidth float64       `json:"strokeWidth,omitempty"` // Stroke width
	Dash        []float64     `json:"dash,omitempty"`        // Line dash pattern
	Opacity     float64       `json:"opacity,omitempty"`     // Global alpha
	Text        string        `json:"text,omitempty"`
	FontID      string        `json:"fontId,omitempty"`
	FontSize    float64       `json:"fontSize,omitempty"`
	ImageWidth  float64       `json:"imageWidth,omitempty"`  // Image natural width
	ImageHeight float64       `json:"imageHeight,omitempty"` // Image natural height
	Handle      HandleType    `json:"handle,omitempty"`
}

// Frame is everything the host surface needs to paint one frame. Layer
// commands are in scene space; the host applies Viewport on top.
type Frame struct {
	Viewport   []float64           `json:"viewport"`
	Width      int                 `json:"width"`
	Height     int                 `json:"height"`
	Background document.Background `json:"background"`
	Commands   []DrawCommand       `json:"commands"`
	Overlay    []DrawCommand       `json:"overlay"`
}

// CompileDrawCommands generates a draw command buffer for the paintable layers
// of doc in painter's order (back to front). Hidden and pending layers are skipped.
func CompileDrawCommands(doc *document.Document) []DrawCommand {
	if doc == nil {
		return nil
	}
	var commands []DrawCommand
	for _, l := range doc.Layers {
		compileLayer(l, &commands)
	}
	return commands
}

func compileLayer(l *document.Layer, commands *[]DrawCommand) {
	if l == nil || !l.Visible || l.Pending() {
		return
	}
	cmd := DrawCommand{
		ObjectID:    l.ID,
		Transform:   LayerMatrix(l).ToSlice(),
		Fill:        l.Style.Fill,
		Stroke:      l.Style.Stroke,
		StrokeWidth: l.Style.StrokeWidth,
		Opacity:     l.Style.Opacity,
	}
	w, h := l.Width, l.Height

	switch p := l.Payload.(type) {
	case *document.Shape:
		cmd.Op = "path"
		if l.Kind == document.KindEllipse {
			cmd.Path = ellipsePath(w/2, h/2)
		} else {
			cmd.Path = rectPath(w, h, p.CornerRadius)
		}
	case *document.Stroke:
		cmd.Op = "path"
		cmd.Path = strokePath(p.Points, w, h)
		cmd.Dash = dashFor(p.StrokeStyle, l.Style.StrokeWidth)
	case *document.Linear:
		// Endpoints are already in scene space
		cmd.Op = "path"
		cmd.Transform = Identity().ToSlice()
		cmd.Path = linearPath(p)
	case *document.Text:
		cmd.Op = "text"
		cmd.Text = p.Content
		cmd.FontID = p.FontID
		cmd.FontSize = p.FontSize
	case *document.Image:
		cmd.Op = "image"
		cmd.ImageWidth = float64(p.NaturalWidth)
		cmd.ImageHeight = float64(p.NaturalHeight)
	case *document.Group:
		for _, child := range p.Children {
			compileLayer(child, commands)
		}
		return
	default:
		return
	}
	*commands = append(*commands, cmd)
}

// rectPath generates a rectangle centered on the origin, with rounded corners
// when radius is positive.
func rectPath(w, h, radius float64) []PathCommand {
	x0, y0 := -w/2, -h/2
	x1, y1 := w/2, h/2
	r := Clamp(0, radius, min(w, h)/2)
	if r == 0 {
		return []PathCommand{
			{"M", x0, y0},
			{"L", x1, y0},
			{"L", x1, y1},
			{"L", x0, y1},
			{"Z"},
		}
	}
	return []PathCommand{
		{"M", x0 + r, y0},
		{"L", x1 - r, y0},
		{"Q", x1, y0, x1, y0 + r},
		{"L", x1, y1 - r},
		{"Q", x1, y1, x1 - r, y1},
		{"L", x0 + r, y1},
		{"Q", x0, y1, x0, y1 - r},
		{"L", x0, y0 + r},
		{"Q", x0, y0, x0 + r, y0},
		{"Z"},
	}
}

// ellipsePath generates path commands for an ellipse using bezier curves.
func ellipsePath(rx, ry float64) []PathCommand {
	// Magic number for bezier approximation of a circle/ellipse
	// k = 4 * (sqrt(2) - 1) / 3 ≈ 0.5522847498
	const k = 0.5522847498
	kx, ky := rx*k, ry*k
	return []PathCommand{
		{"M", rx, 0.0},
		{"C", rx, ky, kx, ry, 0.0, ry},
		{"C", -kx, ry, -rx, ky, -rx, 0.0},
		{"C", -rx, -ky, -kx, -ry, 0.0, -ry},
		{"C", kx, -ry, rx, -ky, rx, 0.0},
		{"Z"},
	}
}

// strokePath converts box-local points into a polyline centered on the origin.
func strokePath(points []document.Point, w, h float64) []PathCommand {
	if len(points) == 0 {
		return nil
	}
	path := make([]PathCommand, 0, len(points))
	for i, pt := range points {
		op := "L"
		if i == 0 {
			op = "M"
		}
		path = append(path, PathCommand{op, pt.X - w/2, pt.Y - h/2})
	}
	return path
}

func linearPath(p *document.Linear) []PathCommand {
	return []PathCommand{
		{"M", p.X1, p.Y1},
		{"L", p.X2, p.Y2},
	}
}

func dashFor(s document.StrokeStyle, width float64) []float64 {
	if width <= 0 {
		width = 1
	}
	switch s {
	case document.StrokeDashed:
		return []float64{8 * width, 4 * width}
	case document.StrokeDotted:
		return []float64{width, 2 * width}
	}
	return nil
}

const overlayColor = "#4f46e5"

// CompileOverlay emits the selection outline and transform handles. Handle
// rectangles are in scene units, sized for the zoom in rc.
func CompileOverlay(doc *document.Document, state EditorState, rc RenderContext) []DrawCommand {
	if doc == nil || len(state.SelectedLayerIDs) == 0 {
		return nil
	}
	var overlay []DrawCommand
	outline := func(id string, r Rect, angle float64) {
		c := r.Center()
		m := Translate(c.X, c.Y).Multiply(RotateDegrees(angle))
		overlay = append(overlay, DrawCommand{
			Op:          "outline",
			ObjectID:    id,
			Transform:   m.ToSlice(),
			Path:        rectPath(r.Width, r.Height, 0),
			Stroke:      overlayColor,
			StrokeWidth: 1 / rc.zoom(),
		})
	}
	handles := func(hs Handles) {
		hs.Each(func(t HandleType, h Handle) {
			overlay = append(overlay, DrawCommand{
				Op:          "handle",
				Handle:      t,
				Transform:   Translate(h.X+h.W/2, h.Y+h.H/2).ToSlice(),
				Path:        rectPath(h.W, h.H, 0),
				Fill:        "#ffffff",
				Stroke:      overlayColor,
				StrokeWidth: 1 / rc.zoom(),
			})
		})
	}

	if g, ok := NewGroup(doc, state.SelectedLayerIDs); ok {
		for _, l := range g.Members {
			outline(l.ID, localRect(l), l.Angle)
		}
		handles(GroupHandles(g.Box, rc))
		return overlay
	}
	for _, l := range doc.Layers {
		if !state.Selected(l.ID) || l.Pending() {
			continue
		}
		outline(l.ID, localRect(l), l.Angle)
		if !l.Locked {
			handles(LayerHandles(l, rc))
		}
	}
	return overlay
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// RectToJSON serializes a Rect to JSON.
func RectToJSON(r Rect) string {
	data, _ := json.Marshal(map[string]float64{
		"x":      r.Left,
		"y":      r.Top,
		"width":  r.Width,
		"height": r.Height,
	})
	return string(data)
}
