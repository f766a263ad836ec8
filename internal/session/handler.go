package session

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/inamate/sketch/internal/auth"
	"github.com/inamate/sketch/internal/engine"
)

// Handler upgrades HTTP requests to editor sessions.
type Handler struct {
	hub     *Hub
	opts    engine.Options
	scenes  SceneStore
	origins []string
}

func NewHandler(hub *Hub, opts engine.Options, scenes SceneStore, origins []string) *Handler {
	return &Handler{hub: hub, opts: opts, scenes: scenes, origins: origins}
}

// ServeWS runs one session for the connection. Authenticated users can load
// and save stored scenes; anonymous sessions edit in memory only.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	scenes := h.scenes
	if userID == "" {
		userID = "anon-" + uuid.NewString()
		scenes = nil
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	s := New(userID, h.opts, scenes)
	ctx, cancel := context.WithCancel(h.hub.Register(r.Context(), s))
	defer func() {
		cancel()
		h.hub.Unregister(s)
	}()

	c := NewClient(conn, s)
	go c.WritePump(ctx)
	go s.Run(ctx)
	c.ReadPump(ctx)
}
