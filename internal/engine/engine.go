package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/inamate/sketch/internal/document"
	"github.com/inamate/sketch/internal/typeid"
)

var (
	ErrLayerNotFound  = errors.New("layer not found")
	ErrDuplicateLayer = errors.New("duplicate layer id")
	ErrNoCodec        = errors.New("no scene codec configured")
)

// SceneCodec converts documents to and from the persisted byte form.
type SceneCodec interface {
	Import(ctx context.Context, data []byte) (*document.Document, error)
	Export(ctx context.Context, doc *document.Document) ([]byte, error)
}

// ImageDecoder turns encoded image bytes into a materialized image payload.
type ImageDecoder interface {
	DecodeImage(ctx context.Context, data []byte) (*document.Image, error)
}

// Options configures an editing session.
type Options struct {
	Zoom         ZoomLimits
	HistoryLimit int
	PointerType  PointerType
	// Screen size of the canvas, used as the default zoom anchor.
	ScreenWidth  float64
	ScreenHeight float64

	Surface Surface
	Codec   SceneCodec
	Images  ImageDecoder
}

// DefaultOptions returns the stock session configuration.
func DefaultOptions() Options {
	return Options{
		Zoom:         DefaultZoomLimits(),
		HistoryLimit: DefaultHistoryLimit,
		PointerType:  PointerFine,
		ScreenWidth:  document.DefaultWidth,
		ScreenHeight: document.DefaultHeight,
	}
}

// Editor is one editing session. It owns the scene document, the selection,
// the viewport and the history, and processes commands from the frontend.
// It is not safe for concurrent use; all calls come from the UI thread.
type Editor struct {
	doc *document.Document
	rev uint64 // bumped on every document mutation

	selection *Selection
	modes     Modes
	viewport  *ViewportController
	history   *History
	surface   Surface
	pointer   PointerType

	codec  SceneCodec
	images ImageDecoder
	loaded chan imageResult
	inbox  int // decodes in flight

	// Gesture state
	drag    *Drag
	marquee *marquee
	stroke  *strokeDraft
	hover   HandleType
}

// NewEditor creates a session over an empty document.
func NewEditor(opts Options) *Editor {
	if opts.Surface == nil {
		opts.Surface = NopSurface{}
	}
	if opts.PointerType == "" {
		opts.PointerType = PointerFine
	}
	e := &Editor{
		doc:       document.NewEmptyDocument(typeid.NewSceneID()),
		selection: NewSelection(),
		history:   NewHistory(opts.HistoryLimit),
		surface:   opts.Surface,
		pointer:   opts.PointerType,
		codec:     opts.Codec,
		images:    opts.Images,
		loaded:    make(chan imageResult, 16),
	}
	e.viewport = NewViewportController(e.surface, &e.modes, opts.Zoom, opts.ScreenWidth, opts.ScreenHeight)
	e.viewport.OnDeselect(e.ClearSelection)
	return e
}

// --- Document lifecycle ---

// LoadDocument replaces the scene with doc. Every layer passes through the
// normalizer; history and selection are reset.
func (e *Editor) LoadDocument(doc *document.Document) {
	fresh := doc.Clone()
	for i, l := range fresh.Layers {
		fresh.Layers[i] = Recovered(l)
	}
	e.doc = fresh
	e.selection.Clear()
	e.history.Clear()
	e.cancelGesture()
	e.touch()
}

// LoadSampleDocument loads the built-in sample document.
func (e *Editor) LoadSampleDocument(sceneID string) {
	e.LoadDocument(document.NewSampleDocument(sceneID))
}

// Document returns a deep copy of the current scene.
func (e *Editor) Document() *document.Document {
	return e.doc.Clone()
}

// Revision increases on every document mutation.
func (e *Editor) Revision() uint64 { return e.rev }

// touch marks the document as changed and asks the surface for a frame.
func (e *Editor) touch() {
	e.rev++
	e.surface.RequestRender()
}

// commit applies bookkeeping after an entry has already been applied to the document.
func (e *Editor) commit(entry *Entry) {
	if entry.Empty() {
		return
	}
	e.history.Commit(entry)
	e.touch()
}

// --- History ---

// Undo reverts the most recent entry. It is a no-op on an empty stack.
func (e *Editor) Undo() bool {
	e.cancelGesture()
	if e.history.Undo(e.doc) == nil {
		return false
	}
	e.selection.Prune(e.doc)
	e.touch()
	return true
}

// Redo re-applies the most recently undone entry.
func (e *Editor) Redo() bool {
	e.cancelGesture()
	if e.history.Redo(e.doc) == nil {
		return false
	}
	e.selection.Prune(e.doc)
	e.touch()
	return true
}

func (e *Editor) CanUndo() bool { return e.history.CanUndo() }
func (e *Editor) CanRedo() bool { return e.history.CanRedo() }

// --- Import / export ---

// ImportMode decides what an import does with the current scene.
type ImportMode int

const (
	// ImportReplace overwrites the scene. The caller has confirmed it.
	ImportReplace ImportMode = iota
	// ImportMerge appends the imported layers, re-minting colliding ids.
	ImportMerge
)

// Import decodes data and applies it as one history entry. On any failure the
// live document is left untouched.
func (e *Editor) Import(ctx context.Context, data []byte, mode ImportMode) error {
	if e.codec == nil {
		return ErrNoCodec
	}
	imported, err := e.codec.Import(ctx, data)
	if err != nil {
		return err
	}
	e.cancelGesture()

	entry := NewEntry("import")
	if mode == ImportReplace {
		e.dropPending(e.doc.Order())
		for i := len(e.doc.Layers) - 1; i >= 0; i-- {
			entry.Delete(e.doc.Layers[i], i)
		}
		entry.Canvas(canvasOf(e.doc), canvasOf(imported))
		for i, l := range imported.Layers {
			entry.Create(l, i)
		}
	} else {
		next := len(e.doc.Layers)
		taken := make(map[string]bool)
		for _, l := range imported.Layers {
			e.remint(l, taken)
			entry.Create(l, next)
			next++
		}
	}
	entry.Apply(e.doc)
	e.selection.Prune(e.doc)
	e.commit(entry)
	return nil
}

// remint gives l and its members fresh ids wherever they collide with the
// document or with ids already handed out in this import.
func (e *Editor) remint(l *document.Layer, taken map[string]bool) {
	if l.ID == "" || taken[l.ID] || e.doc.Contains(l.ID) {
		l.ID = typeid.NewLayerID()
	}
	taken[l.ID] = true
	if g, ok := l.Group(); ok {
		for _, c := range g.Children {
			e.remint(c, taken)
		}
	}
}

// Export encodes the current scene. Pending images are not written.
func (e *Editor) Export(ctx context.Context) ([]byte, error) {
	if e.codec == nil {
		return nil, ErrNoCodec
	}
	data, err := e.codec.Export(ctx, e.doc)
	if err != nil {
		return nil, fmt.Errorf("export scene: %w", err)
	}
	return data, nil
}

// --- Canvas ---

const maxCanvasSide = 16384

// SetCanvasSize changes the document dimensions, clamped to a sane range.
func (e *Editor) SetCanvasSize(width, height int) {
	before := canvasOf(e.doc)
	after := before
	after.Width = Clamp(1, width, maxCanvasSide)
	after.Height = Clamp(1, height, maxCanvasSide)
	entry := NewEntry("canvas size")
	entry.Canvas(before, after)
	entry.Apply(e.doc)
	e.commit(entry)
}

// SetBackground changes the canvas background.
func (e *Editor) SetBackground(bg document.Background) {
	before := canvasOf(e.doc)
	after := before
	after.Background = bg
	entry := NewEntry("background")
	entry.Canvas(before, after)
	entry.Apply(e.doc)
	e.commit(entry)
}

// --- Viewport ---

// Viewport returns the viewport controller of the session.
func (e *Editor) Viewport() *ViewportController { return e.viewport }

// SetPointerType records whether the current input is a fine or coarse pointer.
func (e *Editor) SetPointerType(pt PointerType) {
	if pt != PointerCoarse {
		pt = PointerFine
	}
	e.pointer = pt
}

// RenderContext returns the values the handle model needs this frame.
func (e *Editor) RenderContext() RenderContext {
	return e.viewport.Viewport().RenderContext(e.pointer)
}

// EnablePan switches to pan mode, ending any draw mode or gesture.
func (e *Editor) EnablePan() {
	e.cancelGesture()
	e.viewport.EnablePan()
}

// DisablePan leaves pan mode.
func (e *Editor) DisablePan() {
	e.viewport.DisablePan()
}

// EnableDraw switches to freehand drawing. Pan mode is turned off first.
func (e *Editor) EnableDraw() {
	if e.modes.Draw {
		return
	}
	e.viewport.DisablePan()
	e.cancelGesture()
	e.modes.Draw = true
	e.surface.SetCursor(CursorCrosshair)
	e.surface.SetSelectionEnabled(false)
	e.ClearSelection()
}

// DisableDraw leaves drawing mode. A stroke in progress is dropped.
func (e *Editor) DisableDraw() {
	if !e.modes.Draw {
		return
	}
	e.modes.Draw = false
	e.stroke = nil
	if !e.modes.Pan {
		e.surface.SetCursor(CursorDefault)
		e.surface.SetSelectionEnabled(true)
	}
	e.surface.RequestRender()
}

// Modes returns the current mode flags.
func (e *Editor) Modes() Modes { return e.modes }

// --- Queries ---

// UIState is the session state the surrounding chrome renders.
type UIState struct {
	SelectedLayerIDs []string   `json:"selectedLayerIds"`
	Handle           HandleType `json:"handle"`
	Cursor           Cursor     `json:"cursor"`
	Zoom             float64    `json:"zoom"` // percent
	CanUndo          bool       `json:"canUndo"`
	CanRedo          bool       `json:"canRedo"`
	PanEnabled       bool       `json:"panEnabled"`
	DrawEnabled      bool       `json:"drawEnabled"`
	PendingImages    int        `json:"pendingImages"`
}

// State returns a snapshot of the host UI state.
func (e *Editor) State() UIState {
	ids := e.selection.IDs()
	if ids == nil {
		ids = []string{}
	}
	return UIState{
		SelectedLayerIDs: ids,
		Handle:           e.hover,
		Cursor:           e.cursorFor(e.hover),
		Zoom:             e.viewport.ZoomLevel(),
		CanUndo:          e.history.CanUndo(),
		CanRedo:          e.history.CanRedo(),
		PanEnabled:       e.modes.Pan,
		DrawEnabled:      e.modes.Draw,
		PendingImages:    e.inbox,
	}
}

// Frame compiles the current scene and overlay for the host surface.
func (e *Editor) Frame() Frame {
	commands := CompileDrawCommands(e.doc)
	if commands == nil {
		commands = []DrawCommand{}
	}
	overlay := CompileOverlay(e.doc, e.selection.State(), e.RenderContext())
	if m := e.marquee; m != nil {
		r := m.rect()
		overlay = append(overlay, DrawCommand{
			Op:          "outline",
			Transform:   Translate(r.Center().X, r.Center().Y).ToSlice(),
			Path:        rectPath(r.Width, r.Height, 0),
			Stroke:      overlayColor,
			StrokeWidth: 1 / e.RenderContext().zoom(),
		})
	}
	if overlay == nil {
		overlay = []DrawCommand{}
	}
	return Frame{
		Viewport:   e.viewport.Viewport().Matrix().ToSlice(),
		Width:      e.doc.Width,
		Height:     e.doc.Height,
		Background: e.doc.Background,
		Commands:   commands,
		Overlay:    overlay,
	}
}

// Render returns the current frame as JSON.
func (e *Editor) Render() string {
	data, err := json.Marshal(e.Frame())
	if err != nil {
		return "{}"
	}
	return string(data)
}

// HitTest returns the topmost layer under the scene point (x, y).
func (e *Editor) HitTest(x, y float64) string {
	return HitTest(e.doc, Point{X: x, Y: y})
}

// SelectionBounds returns the aggregate rotated box of the selection.
func (e *Editor) SelectionBounds() Rect {
	return AggregateRect(e.selectedLayers())
}
