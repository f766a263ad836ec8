package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/inamate/sketch/internal/document"
	"github.com/inamate/sketch/internal/typeid"
)

// --- Selection ---

// Select replaces the selection. Unknown and pending ids are ignored.
func (e *Editor) Select(ids ...string) {
	var keep []string
	for _, id := range ids {
		if l, ok := e.doc.Layer(id); ok && !l.Pending() {
			keep = append(keep, id)
		}
	}
	e.selection.Set(keep)
	e.surface.RequestRender()
}

// SelectAll selects every visible, unlocked, paintable layer.
func (e *Editor) SelectAll() {
	var ids []string
	for _, l := range e.doc.Layers {
		if l.Visible && !l.Locked && !l.Pending() {
			ids = append(ids, l.ID)
		}
	}
	e.selection.Set(ids)
	e.surface.RequestRender()
}

// ClearSelection deselects everything.
func (e *Editor) ClearSelection() {
	if e.selection.Len() == 0 {
		return
	}
	e.selection.Clear()
	e.hover = HandleNone
	e.surface.RequestRender()
}

// Selection returns the selected ids in selection order.
func (e *Editor) Selection() []string { return e.selection.IDs() }

// selectedLayers returns the selected top-level layers in paint order.
func (e *Editor) selectedLayers() []*document.Layer {
	var out []*document.Layer
	for _, l := range e.doc.Layers {
		if e.selection.Has(l.ID) && !l.Pending() {
			out = append(out, l)
		}
	}
	return out
}

// --- Layer edits ---

// AddLayer inserts l on top of the scene. An empty id is minted; an id that
// already exists anywhere in the scene is rejected.
func (e *Editor) AddLayer(l *document.Layer) (string, error) {
	if l == nil || !l.Kind.Valid() {
		return "", fmt.Errorf("add layer: invalid kind")
	}
	fresh := Recovered(l)
	if fresh.ID == "" {
		fresh.ID = typeid.NewLayerID()
	}
	if e.doc.Contains(fresh.ID) {
		return "", fmt.Errorf("add layer %s: %w", fresh.ID, ErrDuplicateLayer)
	}
	entry := NewEntry("add " + string(fresh.Kind))
	entry.Create(fresh, len(e.doc.Layers))
	entry.Apply(e.doc)
	e.commit(entry)
	return fresh.ID, nil
}

// UpdateLayer edits a copy of the layer with fn, normalizes it and records the
// change as one history entry.
func (e *Editor) UpdateLayer(id string, fn func(*document.Layer)) error {
	l, ok := e.doc.Layer(id)
	if !ok || l.Pending() {
		return fmt.Errorf("update layer %s: %w", id, ErrLayerNotFound)
	}
	next := l.Clone()
	fn(next)
	next.ID = l.ID
	next.Kind = l.Kind
	next = Recovered(next)

	entry := NewEntry("update " + string(l.Kind))
	entry.Update(l, next)
	entry.Apply(e.doc)
	e.commit(entry)
	return nil
}

// Delete removes the given layers, or the selection when no id is given.
func (e *Editor) Delete(ids ...string) error {
	if len(ids) == 0 {
		ids = e.selection.IDs()
	}
	entry := NewEntry("delete")
	var missing []error
	ids = e.dropPending(ids)
	// Work on a scratch copy of the order so each recorded index is the one
	// the layer has at the moment it is removed.
	order := e.doc.Order()
	for _, id := range ids {
		idx := indexOf(order, id)
		if idx < 0 {
			missing = append(missing, fmt.Errorf("delete layer %s: %w", id, ErrLayerNotFound))
			continue
		}
		l, _ := e.doc.Layer(id)
		entry.Delete(l, idx)
		order = append(order[:idx], order[idx+1:]...)
	}
	entry.Apply(e.doc)
	e.selection.Prune(e.doc)
	e.commit(entry)
	return errors.Join(missing...)
}

// dropPending removes the pending image layers among ids from the document
// without recording them and returns the remaining ids. Their decodes are
// discarded on arrival.
func (e *Editor) dropPending(ids []string) []string {
	rest := ids[:0:0]
	dropped := false
	for _, id := range ids {
		if l, ok := e.doc.Layer(id); ok && l.Pending() {
			e.doc.Remove(id)
			dropped = true
			continue
		}
		rest = append(rest, id)
	}
	if dropped {
		e.touch()
	}
	return rest
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// duplicateOffset is how far a duplicate is shifted from its source.
const duplicateOffset = 10

// Duplicate clones the selected layers with fresh ids, places each copy right
// above its source and selects the copies.
func (e *Editor) Duplicate() []string {
	src := e.selectedLayers()
	if len(src) == 0 {
		return nil
	}
	entry := NewEntry("duplicate")
	var ids []string
	shift := 0
	for _, l := range src {
		c := Recovered(l)
		reassignIDs(c)
		TranslateLayer(c, duplicateOffset, duplicateOffset)
		idx := e.doc.Index(l.ID) + 1 + shift
		entry.Create(c, idx)
		shift++
		ids = append(ids, c.ID)
	}
	entry.Apply(e.doc)
	e.commit(entry)
	e.selection.Set(ids)
	return ids
}

func reassignIDs(l *document.Layer) {
	l.ID = typeid.NewLayerID()
	if g, ok := l.Group(); ok {
		for _, c := range g.Children {
			reassignIDs(c)
		}
	}
}

// ReorderOp moves a layer within the paint order.
type ReorderOp string

const (
	BringForward ReorderOp = "forward"
	SendBackward ReorderOp = "backward"
	BringToFront ReorderOp = "front"
	SendToBack   ReorderOp = "back"
)

// Reorder changes the paint position of a layer.
func (e *Editor) Reorder(id string, op ReorderOp) error {
	from := e.doc.Index(id)
	if from < 0 {
		return fmt.Errorf("reorder layer %s: %w", id, ErrLayerNotFound)
	}
	last := len(e.doc.Layers) - 1
	to := from
	switch op {
	case BringForward:
		to = from + 1
	case SendBackward:
		to = from - 1
	case BringToFront:
		to = last
	case SendToBack:
		to = 0
	default:
		return fmt.Errorf("reorder layer %s: unknown op %q", id, op)
	}
	to = Clamp(0, to, last)
	entry := NewEntry("reorder")
	entry.Reorder(id, from, to)
	entry.Apply(e.doc)
	e.commit(entry)
	return nil
}

// SetLocked locks or unlocks a layer. Locked layers keep their selection
// outline but expose no handles.
func (e *Editor) SetLocked(id string, locked bool) error {
	return e.UpdateLayer(id, func(l *document.Layer) { l.Locked = locked })
}

// SetVisible shows or hides a layer. Hidden layers drop out of the selection.
func (e *Editor) SetVisible(id string, visible bool) error {
	if err := e.UpdateLayer(id, func(l *document.Layer) { l.Visible = visible }); err != nil {
		return err
	}
	if !visible && e.selection.Has(id) {
		e.selection.Toggle(id)
	}
	return nil
}

// Nudge moves the unlocked selected layers by (dx, dy) scene units.
func (e *Editor) Nudge(dx, dy float64) {
	entry := NewEntry("nudge")
	for _, l := range e.selectedLayers() {
		if l.Locked {
			continue
		}
		before := l.Clone()
		TranslateLayer(l, dx, dy)
		entry.Update(before, l)
	}
	e.commit(entry)
}

// Align lines up the selected layers against their aggregate box. It is a
// no-op unless at least two layers are selected.
func (e *Editor) Align(a Alignment) bool {
	g, ok := e.selection.Group(e.doc, e.rev)
	if !ok {
		return false
	}
	before := snapshot(g.Members)
	moved := Align(g, a)
	e.commitMoved("align "+string(a), before, moved)
	return len(moved) > 0
}

// Distribute spaces three or more selected layers evenly.
func (e *Editor) Distribute(d Distribution) bool {
	g, ok := e.selection.Group(e.doc, e.rev)
	if !ok {
		return false
	}
	before := snapshot(g.Members)
	moved := Distribute(g, d)
	e.commitMoved("distribute "+string(d), before, moved)
	return len(moved) > 0
}

func snapshot(layers []*document.Layer) map[string]*document.Layer {
	m := make(map[string]*document.Layer, len(layers))
	for _, l := range layers {
		m[l.ID] = l.Clone()
	}
	return m
}

func (e *Editor) commitMoved(label string, before map[string]*document.Layer, moved []*document.Layer) {
	entry := NewEntry(label)
	for _, l := range moved {
		entry.Update(before[l.ID], l)
	}
	e.commit(entry)
}

// --- Images ---

type imageResult struct {
	id  string
	img *document.Image
	err error
}

// AddImage inserts a pending image layer centered on p and starts decoding
// data in the background. The layer becomes paintable on a later Tick.
func (e *Editor) AddImage(ctx context.Context, data []byte, p Point) (string, error) {
	if e.images == nil {
		return "", errors.New("add image: no image decoder configured")
	}
	l := document.NewLayer(typeid.NewLayerID(), document.KindImage)
	l.Left, l.Top = p.X, p.Y
	src := append([]byte(nil), data...)
	l.Payload = &document.Image{Src: src, State: document.LoadPending}
	e.doc.Insert(len(e.doc.Layers), l)
	e.inbox++

	id := l.ID
	go func() {
		img, err := e.images.DecodeImage(ctx, src)
		e.loaded <- imageResult{id: id, img: img, err: err}
	}()
	return id, nil
}

// Tick materializes finished image decodes. Each successful decode becomes
// one history entry; a failed decode removes its pending layer. It never blocks.
func (e *Editor) Tick() error {
	var errs []error
	for {
		select {
		case res := <-e.loaded:
			e.inbox--
			if err := e.materialize(res); err != nil {
				errs = append(errs, err)
			}
		default:
			return errors.Join(errs...)
		}
	}
}

// maxImageFit bounds the initial on-canvas size of a new image relative to the canvas.
const maxImageFit = 0.5

func (e *Editor) materialize(res imageResult) error {
	l, ok := e.doc.Layer(res.id)
	if !ok {
		return nil
	}
	idx := e.doc.Index(res.id)
	if res.err != nil || res.img == nil {
		e.doc.Remove(res.id)
		e.touch()
		if res.err == nil {
			res.err = errors.New("empty image")
		}
		return fmt.Errorf("image %s: %w", res.id, res.err)
	}

	img := res.img
	img.State = document.LoadReady
	l.Payload = img
	w, h := float64(img.NaturalWidth), float64(img.NaturalHeight)
	l.Width, l.Height = w, h
	if w > 0 && h > 0 {
		limitW := float64(e.doc.Width) * maxImageFit
		limitH := float64(e.doc.Height) * maxImageFit
		s := min(1, limitW/w, limitH/h)
		l.ScaleX, l.ScaleY = s, s
	}
	// Left/Top held the drop point; center the image on it.
	l.Left -= w * l.ScaleX / 2
	l.Top -= h * l.ScaleY / 2

	e.doc.Remove(res.id)
	entry := NewEntry("add image")
	entry.Create(l, idx)
	entry.Apply(e.doc)
	e.commit(entry)
	return nil
}
