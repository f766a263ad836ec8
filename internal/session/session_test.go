package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/inamate/sketch/internal/codec"
	"github.com/inamate/sketch/internal/engine"
	"github.com/inamate/sketch/internal/store"
)

func newTestSession(t *testing.T) (*Session, *store.Service) {
	t.Helper()
	c := codec.New(codec.Options{})
	scenes := store.NewService(store.NewMemory(), c)
	opts := engine.DefaultOptions()
	opts.Codec = c
	return New("user-1", opts, scenes), scenes
}

func message(t *testing.T, typ string, seq int64, payload interface{}) *Message {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	return &Message{Type: typ, Seq: seq, Payload: raw}
}

// drain returns the messages queued for the client so far.
func drain(s *Session) []Message {
	var out []Message
	for {
		select {
		case data := <-s.send:
			var m Message
			json.Unmarshal(data, &m)
			out = append(out, m)
		default:
			return out
		}
	}
}

// next waits for the first outbound message of type typ.
func next(t *testing.T, s *Session, typ string) Message {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case data := <-s.Outbound():
			var m Message
			if err := json.Unmarshal(data, &m); err != nil {
				t.Fatal(err)
			}
			if m.Type == typ {
				return m
			}
		case <-timeout:
			t.Fatalf("no %s message", typ)
		}
	}
}

func TestCommands(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	yes := true

	steps := []struct {
		cmd     CommandPayload
		wantErr bool
	}{
		{CommandPayload{Name: "sample"}, false},
		{CommandPayload{Name: "selectAll"}, false},
		{CommandPayload{Name: "align", Alignment: "left"}, false},
		{CommandPayload{Name: "align", Alignment: "diagonal"}, true},
		{CommandPayload{Name: "zoom", Zoom: 200}, false},
		{CommandPayload{Name: "reorder", IDs: []string{"a", "b"}, Order: "front"}, true},
		{CommandPayload{Name: "lock", IDs: []string{"missing"}, Value: &yes}, true},
		{CommandPayload{Name: "lock"}, true},
		{CommandPayload{Name: "explode"}, true},
	}
	for _, step := range steps {
		err := s.handle(ctx, message(t, TypeCommand, 1, step.cmd))
		if (err != nil) != step.wantErr {
			t.Errorf("%s: error = %v, wantErr %v", step.cmd.Name, err, step.wantErr)
		}
	}
	if z := s.editor.Viewport().ZoomLevel(); z != 200 {
		t.Errorf("zoom = %v, want 200", z)
	}
	if !s.editor.CanUndo() {
		t.Error("align not recorded")
	}
}

func TestPointerMessages(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	s.handle(ctx, message(t, TypeCommand, 0, CommandPayload{Name: "enableDraw"}))
	for _, p := range []PointerPayload{
		{Phase: "down", X: 10, Y: 10, PointerType: "coarse"},
		{Phase: "move", X: 30, Y: 40},
		{Phase: "up", X: 50, Y: 20},
	} {
		if err := s.handle(ctx, message(t, TypePointer, 0, p)); err != nil {
			t.Fatalf("pointer %s: %v", p.Phase, err)
		}
	}
	doc := s.editor.Document()
	if len(doc.Layers) != 1 || doc.Layers[0].Width != 40 {
		t.Errorf("stroke not drawn: %d layers", len(doc.Layers))
	}
	if s.surface.cursor != engine.CursorCrosshair || s.surface.selectionEnabled {
		t.Errorf("surface = %+v", s.surface)
	}
}

func TestExportImport(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	s.handle(ctx, message(t, TypeCommand, 0, CommandPayload{Name: "sample"}))
	want := len(s.editor.Document().Layers)

	if err := s.handle(ctx, message(t, TypeExport, 7, struct{}{})); err != nil {
		t.Fatalf("export: %v", err)
	}
	var exported ExportedPayload
	var ref int64
	for _, m := range drain(s) {
		if m.Type == TypeExported {
			json.Unmarshal(m.Payload, &exported)
			ref = m.Seq
		}
	}
	if len(exported.Data) == 0 || ref != 7 {
		t.Fatalf("no scene.exported reply for seq 7")
	}

	err := s.handle(ctx, message(t, TypeImport, 0, ImportPayload{Data: exported.Data, Mode: "merge"}))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if got := len(s.editor.Document().Layers); got != 2*want {
		t.Errorf("layers after merge = %d, want %d", got, 2*want)
	}
	if err := s.handle(ctx, message(t, TypeImport, 0, ImportPayload{Data: []byte("nope")})); !errors.Is(err, codec.ErrMalformed) {
		t.Errorf("bad import error = %v, want ErrMalformed", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	s, scenes := newTestSession(t)
	ctx := context.Background()
	s.handle(ctx, message(t, TypeCommand, 0, CommandPayload{Name: "sample"}))

	saved, err := s.save(ctx, "")
	if err != nil {
		t.Fatalf("save() error = %v", err)
	}
	if saved.Name != "Untitled" || s.sceneID != saved.ID {
		t.Errorf("saved = %+v", saved)
	}

	s.handle(ctx, message(t, TypeCommand, 0, CommandPayload{Name: "selectAll"}))
	s.handle(ctx, message(t, TypeCommand, 0, CommandPayload{Name: "delete"}))
	second, err := s.save(ctx, "")
	if err != nil {
		t.Fatalf("second save() error = %v", err)
	}
	if second.ID != saved.ID || second.Layers != 0 {
		t.Errorf("second save = %+v", second)
	}

	other, _ := newTestSession(t)
	other.scenes = scenes
	if err := other.load(ctx, saved.ID); err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if other.editor.CanUndo() {
		t.Error("load left an undo entry")
	}

	// A write from elsewhere makes this session's copy stale.
	other.handle(ctx, message(t, TypeCommand, 0, CommandPayload{Name: "canvasSize", Width: 300, Height: 200}))
	if _, err := other.save(ctx, ""); err != nil {
		t.Fatalf("other save() error = %v", err)
	}
	if _, err := s.save(ctx, ""); !errors.Is(err, store.ErrConflict) {
		t.Errorf("stale save error = %v, want ErrConflict", err)
	}

	stranger := New("user-2", engine.DefaultOptions(), scenes)
	if err := stranger.load(ctx, saved.ID); !errors.Is(err, store.ErrForbidden) {
		t.Errorf("foreign load error = %v, want ErrForbidden", err)
	}
}

func TestNoStorage(t *testing.T) {
	s := New("anon", engine.DefaultOptions(), nil)
	if err := s.load(context.Background(), "x"); err == nil {
		t.Error("load without storage succeeded")
	}
	if _, err := s.save(context.Background(), ""); err == nil {
		t.Error("save without storage succeeded")
	}
}

func TestRun(t *testing.T) {
	s, _ := newTestSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	var welcome WelcomePayload
	json.Unmarshal(next(t, s, TypeWelcome).Payload, &welcome)
	if welcome.SessionID != s.ID || welcome.UserID != "user-1" {
		t.Errorf("welcome = %+v", welcome)
	}
	next(t, s, TypeFrame)

	s.Deliver(message(t, TypeCommand, 3, CommandPayload{Name: "sample"}))
	var frame engine.Frame
	json.Unmarshal(next(t, s, TypeFrame).Payload, &frame)
	if len(frame.Commands) == 0 {
		t.Error("frame after sample has no commands")
	}
	var state StatePayload
	json.Unmarshal(next(t, s, TypeState).Payload, &state)
	if state.Zoom != 100 || !state.SelectionEnabled {
		t.Errorf("state = %+v", state)
	}

	s.Deliver(&Message{Type: "bogus", Seq: 9})
	var failure ErrorPayload
	json.Unmarshal(next(t, s, TypeError).Payload, &failure)
	if failure.Ref != 9 {
		t.Errorf("error ref = %d, want 9", failure.Ref)
	}

	s.Deliver(message(t, TypeCommand, 0, CommandPayload{Name: "enablePan"}))
	s.Deliver(message(t, TypePointer, 0, PointerPayload{Phase: "down", X: 10, Y: 10}))
	s.Deliver(message(t, TypePointer, 0, PointerPayload{Phase: "move", X: 15, Y: 10}))
	var pan panPayload
	for pan.Type != "pan:move" {
		json.Unmarshal(next(t, s, TypePan).Payload, &pan)
	}
	if pan.DX != 5 {
		t.Errorf("pan = %+v", pan)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestHub(t *testing.T) {
	h := NewHub()
	go h.Run()

	s := New("user-1", engine.DefaultOptions(), nil)
	ctx := h.Register(context.Background(), s)
	waitFor(t, func() bool { return h.Count() == 1 })

	h.Unregister(s)
	waitFor(t, func() bool { return h.Count() == 0 })

	s2 := New("user-2", engine.DefaultOptions(), nil)
	ctx2 := h.Register(context.Background(), s2)
	waitFor(t, func() bool { return h.Count() == 1 })
	h.Stop()
	if ctx2.Err() == nil {
		t.Error("Stop did not cancel the live session")
	}
	if ctx.Err() != nil {
		t.Error("unregistered session was cancelled")
	}
	if got := h.Register(context.Background(), s); got.Err() == nil {
		t.Error("Register after Stop returned a live context")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met")
		}
		time.Sleep(time.Millisecond)
	}
}
