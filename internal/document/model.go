package document

import "image"

// Kind identifies the variant of a Layer. The set is closed: every switch over
// Kind in this module lists all of the constants below.
type Kind string

const (
	KindRect    Kind = "rect"
	KindEllipse Kind = "ellipse"
	KindStroke  Kind = "stroke"
	KindLine    Kind = "line"
	KindArrow   Kind = "arrow"
	KindText    Kind = "text"
	KindImage   Kind = "image"
	KindGroup   Kind = "group"
)

// Kinds lists every layer kind in declaration order.
var Kinds = []Kind{KindRect, KindEllipse, KindStroke, KindLine, KindArrow, KindText, KindImage, KindGroup}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindRect, KindEllipse, KindStroke, KindLine, KindArrow, KindText, KindImage, KindGroup:
		return true
	}
	return false
}

// Scalable kinds keep scaleX/scaleY as first-class state instead of baking
// them into width/height.
func (k Kind) Scalable() bool {
	return k == KindStroke || k == KindImage
}

// Linear kinds derive their box from two scene-space endpoints.
func (k Kind) Linear() bool {
	return k == KindLine || k == KindArrow
}

type Point struct {
	X float64
	Y float64
}

type Style struct {
	Fill        string
	Stroke      string
	StrokeWidth float64
	Opacity     float64
}

type StrokeStyle string

const (
	StrokeSolid  StrokeStyle = "solid"
	StrokeDashed StrokeStyle = "dashed"
	StrokeDotted StrokeStyle = "dotted"
)

type Arrowhead string

const (
	ArrowheadNone     Arrowhead = "none"
	ArrowheadArrow    Arrowhead = "arrow"
	ArrowheadTriangle Arrowhead = "triangle"
	ArrowheadBar      Arrowhead = "bar"
	ArrowheadDot      Arrowhead = "dot"
)

type LoadState int

const (
	LoadPending LoadState = iota
	LoadReady
)

type Shadow struct {
	Color   string
	Blur    float64
	OffsetX float64
	OffsetY float64
}

// Payload is the kind-specific part of a layer. It is sealed to this package.
type Payload interface {
	isPayload()
	clone() Payload
}

// Shape is the payload of rect and ellipse layers.
type Shape struct {
	CornerRadius float64
}

// Stroke is a freehand stroke. Points are local to the layer box, before scale.
type Stroke struct {
	Points      []Point
	StrokeStyle StrokeStyle
	Shadow      *Shadow
}

// Linear holds the endpoints of line and arrow layers in scene space.
type Linear struct {
	X1, Y1    float64
	X2, Y2    float64
	StartHead Arrowhead
	EndHead   Arrowhead
}

type Text struct {
	Content  string
	FontID   string
	FontSize float64
}

// Image holds the encoded bytes of an image layer. Bitmap is set once the
// bytes have been decoded; until then State is LoadPending.
type Image struct {
	Src           []byte
	NaturalWidth  int
	NaturalHeight int
	State         LoadState
	Bitmap        image.Image
}

// Group is a persistent group; its children are in scene coordinates and its
// box is always the aggregate of theirs.
type Group struct {
	Children []*Layer
}

func (*Shape) isPayload()  {}
func (*Stroke) isPayload() {}
func (*Linear) isPayload() {}
func (*Text) isPayload()   {}
func (*Image) isPayload()  {}
func (*Group) isPayload()  {}

func (p *Shape) clone() Payload {
	c := *p
	return &c
}

func (p *Stroke) clone() Payload {
	c := *p
	c.Points = append([]Point(nil), p.Points...)
	if p.Shadow != nil {
		s := *p.Shadow
		c.Shadow = &s
	}
	return &c
}

func (p *Linear) clone() Payload {
	c := *p
	return &c
}

func (p *Text) clone() Payload {
	c := *p
	return &c
}

func (p *Image) clone() Payload {
	c := *p
	c.Src = append([]byte(nil), p.Src...)
	return &c
}

func (p *Group) clone() Payload {
	c := &Group{Children: make([]*Layer, len(p.Children))}
	for i, child := range p.Children {
		c.Children[i] = child.Clone()
	}
	return c
}

// Layer is one object in the scene.
type Layer struct {
	ID     string
	Kind   Kind
	Left   float64
	Top    float64
	Width  float64
	Height float64
	ScaleX float64
	ScaleY float64
	Angle  float64 // degrees, clockwise, about the box center
	FlipX  bool
	FlipY  bool

	Visible bool
	Locked  bool

	Style   Style
	Payload Payload
}

// NewLayer returns a visible layer of the given kind with unit scale and an
// empty payload of the matching type.
func NewLayer(id string, kind Kind) *Layer {
	return &Layer{
		ID:      id,
		Kind:    kind,
		ScaleX:  1,
		ScaleY:  1,
		Visible: true,
		Style:   Style{Stroke: "#1e1e1e", StrokeWidth: 2, Opacity: 1},
		Payload: NewPayload(kind),
	}
}

// NewPayload returns the zero payload for kind.
func NewPayload(kind Kind) Payload {
	switch kind {
	case KindRect, KindEllipse:
		return &Shape{}
	case KindStroke:
		return &Stroke{StrokeStyle: StrokeSolid}
	case KindLine:
		return &Linear{StartHead: ArrowheadNone, EndHead: ArrowheadNone}
	case KindArrow:
		return &Linear{StartHead: ArrowheadNone, EndHead: ArrowheadArrow}
	case KindText:
		return &Text{FontSize: 20}
	case KindImage:
		return &Image{}
	case KindGroup:
		return &Group{}
	}
	return nil
}

// Clone returns a deep copy of the layer. Decoded bitmaps are shared since
// they are never mutated.
func (l *Layer) Clone() *Layer {
	if l == nil {
		return nil
	}
	c := *l
	if l.Payload != nil {
		c.Payload = l.Payload.clone()
	}
	return &c
}

// Linear returns the endpoint payload of a line or arrow layer.
func (l *Layer) Linear() (*Linear, bool) {
	p, ok := l.Payload.(*Linear)
	return p, ok
}

// Stroke returns the payload of a freehand stroke layer.
func (l *Layer) Stroke() (*Stroke, bool) {
	p, ok := l.Payload.(*Stroke)
	return p, ok
}

// Text returns the payload of a text layer.
func (l *Layer) Text() (*Text, bool) {
	p, ok := l.Payload.(*Text)
	return p, ok
}

// Image returns the payload of an image layer.
func (l *Layer) Image() (*Image, bool) {
	p, ok := l.Payload.(*Image)
	return p, ok
}

// Group returns the payload of a group layer.
func (l *Layer) Group() (*Group, bool) {
	p, ok := l.Payload.(*Group)
	return p, ok
}

// Shape returns the payload of a rect or ellipse layer.
func (l *Layer) Shape() (*Shape, bool) {
	p, ok := l.Payload.(*Shape)
	return p, ok
}

// Pending reports whether the layer (or any group member) is an image whose
// bytes have not been decoded yet. Pending layers are not paintable.
func (l *Layer) Pending() bool {
	switch p := l.Payload.(type) {
	case *Image:
		return p.State == LoadPending
	case *Group:
		for _, child := range p.Children {
			if child.Pending() {
				return true
			}
		}
	}
	return false
}
