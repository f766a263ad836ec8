package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/inamate/sketch/internal/engine"
	"github.com/inamate/sketch/internal/store"
	"github.com/inamate/sketch/internal/typeid"
)

const (
	tickPeriod = 50 * time.Millisecond
	inboxSize  = 64
	sendSize   = 256
)

// SceneStore loads and saves scene files for a session.
type SceneStore interface {
	Get(ctx context.Context, id, userID string) (*store.Scene, []byte, error)
	Create(ctx context.Context, ownerID, name string, data []byte) (*store.Scene, error)
	Replace(ctx context.Context, id, userID, ifMatch string, data []byte) (*store.Scene, error)
}

// Session is one editor bound to one connection. All editor calls happen on
// the Run goroutine; the pumps only move bytes.
type Session struct {
	ID     string
	UserID string

	editor  *engine.Editor
	surface *surface
	scenes  SceneStore

	sceneID string
	digest  string // digest of the stored scene the editor was loaded from

	inbox chan *Message
	send  chan []byte
	rev   uint64
}

// New creates a session. opts.Surface is replaced by the session's own.
func New(userID string, opts engine.Options, scenes SceneStore) *Session {
	s := &Session{
		ID:      typeid.NewSessionID(),
		UserID:  userID,
		surface: newSurface(),
		scenes:  scenes,
		inbox:   make(chan *Message, inboxSize),
		send:    make(chan []byte, sendSize),
	}
	opts.Surface = s.surface
	s.editor = engine.NewEditor(opts)
	s.editor.Viewport().OnPan(s.onPan)
	return s
}

// Editor exposes the session's editor. Only safe to use before Run starts.
func (s *Session) Editor() *engine.Editor { return s.editor }

// Deliver queues an inbound message. It reports false when the inbox is full.
func (s *Session) Deliver(msg *Message) bool {
	select {
	case s.inbox <- msg:
		return true
	default:
		return false
	}
}

// Outbound is the stream of encoded messages for the client.
func (s *Session) Outbound() <-chan []byte { return s.send }

// Run processes messages until ctx is done or the inbox is closed.
func (s *Session) Run(ctx context.Context) {
	ticker := time.NewTicker(tickPeriod)
	defer ticker.Stop()

	s.emit(TypeWelcome, 0, WelcomePayload{SessionID: s.ID, UserID: s.UserID})
	s.flush()
	for {
		select {
		case msg, ok := <-s.inbox:
			if !ok {
				return
			}
			if err := s.handle(ctx, msg); err != nil {
				slog.Debug("session message failed", "session", s.ID, "type", msg.Type, "error", err)
				s.emit(TypeError, 0, ErrorPayload{Message: err.Error(), Ref: msg.Seq})
			}
			s.flush()
		case <-ticker.C:
			if err := s.editor.Tick(); err != nil {
				slog.Warn("image decode failed", "session", s.ID, "error", err)
				s.emit(TypeError, 0, ErrorPayload{Message: err.Error()})
			}
			s.flush()
		case <-ctx.Done():
			return
		}
	}
}

// flush sends the frame and UI state when anything changed since the last flush.
func (s *Session) flush() {
	if !s.surface.dirty && s.rev == s.editor.Revision() {
		return
	}
	s.surface.dirty = false
	s.rev = s.editor.Revision()
	s.emit(TypeFrame, 0, s.editor.Frame())
	s.emit(TypeState, 0, StatePayload{
		UIState:          s.editor.State(),
		SurfaceCursor:    s.surface.cursor,
		SelectionEnabled: s.surface.selectionEnabled,
		SceneID:          s.sceneID,
	})
}

func (s *Session) onPan(ev engine.PanEvent) {
	s.emit(TypePan, 0, panPayload{
		Type:      string(ev.Type),
		X:         ev.Point.X,
		Y:         ev.Point.Y,
		DX:        ev.DX,
		DY:        ev.DY,
		Viewport:  ev.Viewport.Matrix().ToSlice(),
		Cancelled: ev.Cancelled,
	})
}

type panPayload struct {
	Type      string    `json:"type"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	DX        float64   `json:"dx"`
	DY        float64   `json:"dy"`
	Viewport  []float64 `json:"viewport"`
	Cancelled bool      `json:"cancelled,omitempty"`
}

func (s *Session) emit(typ string, seq int64, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal payload", "type", typ, "error", err)
		return
	}
	data, err := json.Marshal(&Message{Type: typ, Seq: seq, Payload: raw})
	if err != nil {
		slog.Error("marshal message", "type", typ, "error", err)
		return
	}
	select {
	case s.send <- data:
	default:
		slog.Warn("session send buffer full, dropping message", "session", s.ID, "type", typ)
	}
}

func (s *Session) handle(ctx context.Context, msg *Message) error {
	switch msg.Type {
	case TypePointer:
		var p PointerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid pointer payload: %w", err)
		}
		s.pointer(p)
	case TypeCommand:
		var c CommandPayload
		if err := json.Unmarshal(msg.Payload, &c); err != nil {
			return fmt.Errorf("invalid command payload: %w", err)
		}
		return s.command(c)
	case TypeResize:
		var r ResizePayload
		if err := json.Unmarshal(msg.Payload, &r); err != nil {
			return fmt.Errorf("invalid resize payload: %w", err)
		}
		s.editor.Viewport().Resize(r.Width, r.Height)
		s.surface.RequestRender()
	case TypeImport:
		var p ImportPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid import payload: %w", err)
		}
		mode := engine.ImportReplace
		if p.Mode == "merge" {
			mode = engine.ImportMerge
		}
		return s.editor.Import(ctx, p.Data, mode)
	case TypeExport:
		data, err := s.editor.Export(ctx)
		if err != nil {
			return err
		}
		s.emit(TypeExported, msg.Seq, ExportedPayload{Data: data})
	case TypeImage:
		var p ImagePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid image payload: %w", err)
		}
		at := s.editor.Viewport().Viewport().ScreenToScene(engine.Point{X: p.X, Y: p.Y})
		_, err := s.editor.AddImage(context.WithoutCancel(ctx), p.Data, at)
		return err
	case TypeLoad:
		var p LoadPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid load payload: %w", err)
		}
		return s.load(ctx, p.SceneID)
	case TypeSave:
		var p SavePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid save payload: %w", err)
		}
		scene, err := s.save(ctx, p.Name)
		if err != nil {
			return err
		}
		s.emit(TypeSaved, msg.Seq, scene)
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil
}

func (s *Session) pointer(p PointerPayload) {
	ev := engine.PointerEvent{
		X:           p.X,
		Y:           p.Y,
		PointerType: engine.PointerType(p.PointerType),
		Modifiers:   engine.Modifiers{Shift: p.Shift, Alt: p.Alt},
	}
	switch p.Phase {
	case "down":
		s.editor.PointerDown(ev)
	case "move":
		s.editor.PointerMove(ev)
	case "up":
		s.editor.PointerUp(ev)
	case "cancel":
		s.editor.CancelGesture()
	}
}

func (s *Session) command(c CommandPayload) error {
	e := s.editor
	switch c.Name {
	case "undo":
		e.Undo()
	case "redo":
		e.Redo()
	case "select":
		e.Select(c.IDs...)
	case "selectAll":
		e.SelectAll()
	case "clearSelection":
		e.ClearSelection()
	case "delete":
		return e.Delete(c.IDs...)
	case "duplicate":
		e.Duplicate()
	case "nudge":
		e.Nudge(c.DX, c.DY)
	case "reorder":
		if len(c.IDs) != 1 {
			return errors.New("reorder needs exactly one id")
		}
		return e.Reorder(c.IDs[0], engine.ReorderOp(c.Order))
	case "lock", "show":
		if c.Value == nil || len(c.IDs) == 0 {
			return fmt.Errorf("%s needs ids and a value", c.Name)
		}
		var errs []error
		for _, id := range c.IDs {
			if c.Name == "lock" {
				errs = append(errs, e.SetLocked(id, *c.Value))
			} else {
				errs = append(errs, e.SetVisible(id, *c.Value))
			}
		}
		return errors.Join(errs...)
	case "align":
		a := engine.Alignment(c.Alignment)
		if !a.Valid() {
			return fmt.Errorf("unknown alignment %q", c.Alignment)
		}
		e.Align(a)
	case "distribute":
		e.Distribute(engine.Distribution(c.Distribution))
	case "zoom":
		e.Viewport().SetZoom(c.Zoom / 100)
	case "zoomIn":
		e.Viewport().ZoomIn()
	case "zoomOut":
		e.Viewport().ZoomOut()
	case "resetZoom":
		e.Viewport().ResetZoom()
	case "panBy":
		e.Viewport().PanBy(c.DX, c.DY)
	case "enablePan":
		e.EnablePan()
	case "disablePan":
		e.DisablePan()
	case "enableDraw":
		e.EnableDraw()
	case "disableDraw":
		e.DisableDraw()
	case "canvasSize":
		e.SetCanvasSize(c.Width, c.Height)
	case "sample":
		e.LoadSampleDocument(typeid.NewSceneID())
		s.sceneID, s.digest = "", ""
	default:
		return fmt.Errorf("unknown command %q", c.Name)
	}
	s.surface.RequestRender()
	return nil
}

// load replaces the editor scene with a stored scene owned by the user.
func (s *Session) load(ctx context.Context, id string) error {
	if s.scenes == nil {
		return errors.New("scene storage is not available")
	}
	scene, data, err := s.scenes.Get(ctx, id, s.UserID)
	if err != nil {
		return err
	}
	if err := s.editor.Import(ctx, data, engine.ImportReplace); err != nil {
		return err
	}
	s.editor.LoadDocument(s.editor.Document())
	s.sceneID, s.digest = scene.ID, scene.Digest
	return nil
}

// save writes the scene back to where it was loaded from, or creates a new
// stored scene. A concurrent change to the stored copy fails with store.ErrConflict.
func (s *Session) save(ctx context.Context, name string) (*store.Scene, error) {
	if s.scenes == nil {
		return nil, errors.New("scene storage is not available")
	}
	data, err := s.editor.Export(ctx)
	if err != nil {
		return nil, err
	}
	var scene *store.Scene
	if s.sceneID == "" {
		if name == "" {
			name = "Untitled"
		}
		scene, err = s.scenes.Create(ctx, s.UserID, name, data)
	} else {
		scene, err = s.scenes.Replace(ctx, s.sceneID, s.UserID, s.digest, data)
	}
	if err != nil {
		return nil, err
	}
	s.sceneID, s.digest = scene.ID, scene.Digest
	return scene, nil
}
