package engine

import "math"

// Zoom levels are percentages; a Viewport stores the zoom as a factor.
const (
	DefaultMinZoomLevel = 10.0
	DefaultMaxZoomLevel = 400.0
	DefaultZoomStep     = 10.0
)

// ZoomLimits bounds the zoom level (in percent) and sets the increment step.
type ZoomLimits struct {
	Min  float64
	Max  float64
	Step float64
}

// DefaultZoomLimits returns the stock zoom range.
func DefaultZoomLimits() ZoomLimits {
	return ZoomLimits{Min: DefaultMinZoomLevel, Max: DefaultMaxZoomLevel, Step: DefaultZoomStep}
}

func (z ZoomLimits) sanitized() ZoomLimits {
	if !(z.Min > 0) {
		z.Min = DefaultMinZoomLevel
	}
	if !(z.Max >= z.Min) {
		z.Max = math.Max(z.Min, DefaultMaxZoomLevel)
	}
	if !(z.Step > 0) {
		z.Step = DefaultZoomStep
	}
	return z
}

// Viewport maps scene coordinates to screen coordinates: screen = scene*Zoom + Pan.
// It is a plain value; callers get snapshots, never a shared reference.
type Viewport struct {
	PanX float64
	PanY float64
	Zoom float64
}

// Matrix returns the viewport transform.
func (v Viewport) Matrix() Matrix2D {
	return Matrix2D{v.Zoom, 0, 0, v.Zoom, v.PanX, v.PanY}
}

// ViewportFromMatrix reads a uniform-scale viewport transform.
func ViewportFromMatrix(m Matrix2D) Viewport {
	return Viewport{PanX: m[4], PanY: m[5], Zoom: math.Hypot(m[0], m[1])}
}

// Pan shifts the translation components.
func (v *Viewport) Pan(dx, dy float64) {
	v.PanX += dx
	v.PanY += dy
}

// ZoomAt sets the zoom factor while keeping the scene point under the screen
// point anchor fixed on screen.
func (v *Viewport) ZoomAt(anchor Point, zoom float64) {
	scene := v.ScreenToScene(anchor)
	v.Zoom = zoom
	v.PanX = anchor.X - scene.X*zoom
	v.PanY = anchor.Y - scene.Y*zoom
}

// ScreenToScene maps a screen point to scene space.
func (v Viewport) ScreenToScene(p Point) Point {
	z := v.Zoom
	if z == 0 {
		z = 1
	}
	return Point{X: (p.X - v.PanX) / z, Y: (p.Y - v.PanY) / z}
}

// SceneToScreen maps a scene point to screen space.
func (v Viewport) SceneToScreen(p Point) Point {
	return Point{X: p.X*v.Zoom + v.PanX, Y: p.Y*v.Zoom + v.PanY}
}

// RenderContext bundles the zoom with the pointer type for handle queries.
func (v Viewport) RenderContext(pt PointerType) RenderContext {
	return RenderContext{Zoom: v.Zoom, PointerType: pt}
}

// ViewportController owns the session viewport: zoom with clamping and the
// pan state machine (see pan.go).
type ViewportController struct {
	vp      Viewport
	limits  ZoomLimits
	width   float64
	height  float64
	surface Surface
	modes   *Modes

	panEnabled bool
	panning    bool
	last       Point
	listener   func(PanEvent)
	deselect   func()
}

// NewViewportController creates a controller for a canvas of the given screen size.
func NewViewportController(surface Surface, modes *Modes, limits ZoomLimits, width, height float64) *ViewportController {
	if surface == nil {
		surface = NopSurface{}
	}
	if modes == nil {
		modes = &Modes{}
	}
	return &ViewportController{
		vp:      Viewport{Zoom: 1},
		limits:  limits.sanitized(),
		width:   width,
		height:  height,
		surface: surface,
		modes:   modes,
	}
}

// Viewport returns a snapshot of the current viewport.
func (c *ViewportController) Viewport() Viewport {
	return c.vp
}

// Limits returns the zoom limits in effect.
func (c *ViewportController) Limits() ZoomLimits {
	return c.limits
}

// Resize records the canvas size used as the default zoom anchor.
func (c *ViewportController) Resize(width, height float64) {
	c.width, c.height = width, height
}

// ZoomLevel returns the zoom in percent.
func (c *ViewportController) ZoomLevel() float64 {
	return c.vp.Zoom * 100
}

// SetZoom sets the zoom factor (1 = 100%), clamped to the configured range,
// keeping anchor fixed on screen. Without an anchor the canvas center is used.
func (c *ViewportController) SetZoom(factor float64, anchor ...Point) {
	if math.IsNaN(factor) {
		return
	}
	level := Clamp(c.limits.Min, factor*100, c.limits.Max)
	a := Point{X: c.width / 2, Y: c.height / 2}
	if len(anchor) > 0 {
		a = anchor[0]
	}
	c.vp.ZoomAt(a, level/100)
	c.surface.RequestRender()
}

// ZoomIn raises the zoom level by one step.
func (c *ViewportController) ZoomIn(anchor ...Point) {
	c.SetZoom((c.ZoomLevel()+c.limits.Step)/100, anchor...)
}

// ZoomOut lowers the zoom level by one step.
func (c *ViewportController) ZoomOut(anchor ...Point) {
	c.SetZoom((c.ZoomLevel()-c.limits.Step)/100, anchor...)
}

// ResetZoom returns to 100% around the canvas center.
func (c *ViewportController) ResetZoom() {
	c.SetZoom(1)
}

// Sync adopts a viewport transform mutated outside the controller, such as a
// wheel zoom performed by the host surface. An out-of-range zoom is clamped.
func (c *ViewportController) Sync(m Matrix2D) {
	v := ViewportFromMatrix(m)
	if !(v.Zoom > 0) {
		v.Zoom = c.limits.Min / 100
	}
	c.vp = v
	level := c.ZoomLevel()
	if level < c.limits.Min || level > c.limits.Max {
		c.SetZoom(level / 100)
	}
}

// FitRect zooms and pans so that r (scene units) fills the canvas with padding
// screen pixels on each side.
func (c *ViewportController) FitRect(r Rect, padding float64) {
	if r.Width <= 0 || r.Height <= 0 || c.width <= 0 || c.height <= 0 {
		return
	}
	zx := (c.width - 2*padding) / r.Width
	zy := (c.height - 2*padding) / r.Height
	level := Clamp(c.limits.Min, math.Min(zx, zy)*100, c.limits.Max)
	z := level / 100
	center := r.Center()
	c.vp = Viewport{
		Zoom: z,
		PanX: c.width/2 - center.X*z,
		PanY: c.height/2 - center.Y*z,
	}
	c.surface.RequestRender()
}
