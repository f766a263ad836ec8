package document

type BackgroundPattern string

const (
	PatternNone  BackgroundPattern = "none"
	PatternGrid  BackgroundPattern = "grid"
	PatternDots  BackgroundPattern = "dots"
	PatternLines BackgroundPattern = "lines"
)

// Background describes the canvas fill drawn behind all layers.
type Background struct {
	Pattern BackgroundPattern
	Color   string
	Spacing float64
}

const (
	DefaultWidth  = 1280
	DefaultHeight = 720
)

// Document is the persisted unit: an ordered layer list (back to front) plus
// canvas metadata. It exclusively owns its layers.
type Document struct {
	ID         string
	Background Background
	Width      int
	Height     int
	Layers     []*Layer
}

// NewEmptyDocument creates a document with default canvas settings.
func NewEmptyDocument(id string) *Document {
	return &Document{
		ID: id,
		Background: Background{
			Pattern: PatternNone,
			Color:   "#ffffff",
			Spacing: 20,
		},
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Layers: []*Layer{},
	}
}

// Index returns the position of the top-level layer with the given id, or -1.
func (d *Document) Index(id string) int {
	for i, l := range d.Layers {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// Layer returns the top-level layer with the given id.
func (d *Document) Layer(id string) (*Layer, bool) {
	i := d.Index(id)
	if i < 0 {
		return nil, false
	}
	return d.Layers[i], true
}

// Insert places l at index, clamped to the valid range.
func (d *Document) Insert(index int, l *Layer) {
	if index < 0 || index > len(d.Layers) {
		index = len(d.Layers)
	}
	d.Layers = append(d.Layers, nil)
	copy(d.Layers[index+1:], d.Layers[index:])
	d.Layers[index] = l
}

// Remove deletes the layer with the given id and returns it with its former index.
func (d *Document) Remove(id string) (*Layer, int) {
	i := d.Index(id)
	if i < 0 {
		return nil, -1
	}
	l := d.Layers[i]
	d.Layers = append(d.Layers[:i], d.Layers[i+1:]...)
	return l, i
}

// Replace swaps the layer with the same id for l. It reports false if no such layer exists.
func (d *Document) Replace(l *Layer) bool {
	i := d.Index(l.ID)
	if i < 0 {
		return false
	}
	d.Layers[i] = l
	return true
}

// Move repositions a layer to index to. It reports false if the id is unknown.
func (d *Document) Move(id string, to int) bool {
	l, from := d.Remove(id)
	if from < 0 {
		return false
	}
	d.Insert(to, l)
	return true
}

// Order returns the layer ids in paint order.
func (d *Document) Order() []string {
	ids := make([]string, len(d.Layers))
	for i, l := range d.Layers {
		ids[i] = l.ID
	}
	return ids
}

// Contains reports whether id names a layer anywhere in the document,
// including group members.
func (d *Document) Contains(id string) bool {
	var walk func(layers []*Layer) bool
	walk = func(layers []*Layer) bool {
		for _, l := range layers {
			if l.ID == id {
				return true
			}
			if g, ok := l.Group(); ok && walk(g.Children) {
				return true
			}
		}
		return false
	}
	return walk(d.Layers)
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	c := *d
	c.Layers = make([]*Layer, len(d.Layers))
	for i, l := range d.Layers {
		c.Layers[i] = l.Clone()
	}
	return &c
}
