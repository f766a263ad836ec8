package engine

import (
	"github.com/inamate/sketch/internal/document"
	"github.com/inamate/sketch/internal/typeid"
)

type ChangeOp string

const (
	OpCreate  ChangeOp = "layer.create"
	OpUpdate  ChangeOp = "layer.update"
	OpDelete  ChangeOp = "layer.delete"
	OpReorder ChangeOp = "layer.reorder"
	OpCanvas  ChangeOp = "canvas.update"
)

// Canvas is the document-level metadata a history entry can change.
type Canvas struct {
	Background document.Background
	Width      int
	Height     int
}

func canvasOf(doc *document.Document) Canvas {
	return Canvas{Background: doc.Background, Width: doc.Width, Height: doc.Height}
}

func (c Canvas) applyTo(doc *document.Document) {
	doc.Background = c.Background
	doc.Width = c.Width
	doc.Height = c.Height
}

// Change is one reversible step. Layers held here are private copies and are
// never handed out; applying a change inserts a recovered clone.
type Change struct {
	Op      ChangeOp
	LayerID string
	Index   int // create/delete position, reorder source
	ToIndex int // reorder destination

	Before *document.Layer // update, delete
	After  *document.Layer // update, create

	BeforeCanvas Canvas
	AfterCanvas  Canvas
}

// Entry is one undoable unit. Its changes are applied in order and reverted
// in reverse order, so a multi-layer edit is never partially undone.
type Entry struct {
	ID      string
	Label   string
	Changes []Change
}

// NewEntry creates an empty entry with a fresh id.
func NewEntry(label string) *Entry {
	return &Entry{ID: typeid.NewEntryID(), Label: label}
}

// Empty reports whether the entry carries no changes.
func (e *Entry) Empty() bool {
	return e == nil || len(e.Changes) == 0
}

// Create records the insertion of l at index.
func (e *Entry) Create(l *document.Layer, index int) {
	e.Changes = append(e.Changes, Change{Op: OpCreate, LayerID: l.ID, Index: index, After: l.Clone()})
}

// Delete records the removal of l from index.
func (e *Entry) Delete(l *document.Layer, index int) {
	e.Changes = append(e.Changes, Change{Op: OpDelete, LayerID: l.ID, Index: index, Before: l.Clone()})
}

// Update records a layer going from before to after. Identical states are dropped.
func (e *Entry) Update(before, after *document.Layer) {
	if document.EqualLayers(before, after, 0) {
		return
	}
	e.Changes = append(e.Changes, Change{Op: OpUpdate, LayerID: after.ID, Before: before.Clone(), After: after.Clone()})
}

// Reorder records a move from one paint index to another.
func (e *Entry) Reorder(id string, from, to int) {
	if from == to {
		return
	}
	e.Changes = append(e.Changes, Change{Op: OpReorder, LayerID: id, Index: from, ToIndex: to})
}

// Canvas records a document metadata change.
func (e *Entry) Canvas(before, after Canvas) {
	if before == after {
		return
	}
	e.Changes = append(e.Changes, Change{Op: OpCanvas, BeforeCanvas: before, AfterCanvas: after})
}

// Apply replays the entry forward onto doc.
func (e *Entry) Apply(doc *document.Document) {
	for _, c := range e.Changes {
		c.apply(doc)
	}
}

// Revert rolls the entry back on doc.
func (e *Entry) Revert(doc *document.Document) {
	for i := len(e.Changes) - 1; i >= 0; i-- {
		e.Changes[i].revert(doc)
	}
}

func (c Change) apply(doc *document.Document) {
	switch c.Op {
	case OpCreate:
		doc.Insert(c.Index, Recovered(c.After))
	case OpDelete:
		doc.Remove(c.LayerID)
	case OpUpdate:
		doc.Replace(Recovered(c.After))
	case OpReorder:
		doc.Move(c.LayerID, c.ToIndex)
	case OpCanvas:
		c.AfterCanvas.applyTo(doc)
	}
}

func (c Change) revert(doc *document.Document) {
	switch c.Op {
	case OpCreate:
		doc.Remove(c.LayerID)
	case OpDelete:
		doc.Insert(c.Index, Recovered(c.Before))
	case OpUpdate:
		doc.Replace(Recovered(c.Before))
	case OpReorder:
		doc.Move(c.LayerID, c.Index)
	case OpCanvas:
		c.BeforeCanvas.applyTo(doc)
	}
}

// DefaultHistoryLimit bounds the undo stack when no limit is configured.
const DefaultHistoryLimit = 100

// History is the undo/redo stack pair of an editing session.
type History struct {
	undo  []*Entry
	redo  []*Entry
	limit int
}

// NewHistory creates a history that keeps at most limit undo entries.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Commit pushes an applied entry onto the undo stack and clears the redo stack.
// Empty entries are ignored.
func (h *History) Commit(e *Entry) {
	if e.Empty() {
		return
	}
	h.undo = append(h.undo, e)
	if len(h.undo) > h.limit {
		// Drop the oldest entry
		copy(h.undo, h.undo[1:])
		h.undo[len(h.undo)-1] = nil
		h.undo = h.undo[:len(h.undo)-1]
	}
	for i := range h.redo {
		h.redo[i] = nil
	}
	h.redo = h.redo[:0]
}

// Undo reverts the most recent entry on doc. It returns nil on an empty stack.
func (h *History) Undo(doc *document.Document) *Entry {
	if len(h.undo) == 0 {
		return nil
	}
	e := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	e.Revert(doc)
	h.redo = append(h.redo, e)
	return e
}

// Redo re-applies the most recently undone entry. It returns nil on an empty stack.
func (h *History) Redo(doc *document.Document) *Entry {
	if len(h.redo) == 0 {
		return nil
	}
	e := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	e.Apply(doc)
	h.undo = append(h.undo, e)
	return e
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Clear drops both stacks.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}

// Stats returns the stack depths for display.
func (h *History) Stats() (undo, redo int) {
	return len(h.undo), len(h.redo)
}
