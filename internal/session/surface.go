package session

import "github.com/inamate/sketch/internal/engine"

// surface records what the editor asked of the remote canvas while a message
// was processed. The session flushes it back to the client afterwards.
type surface struct {
	cursor           engine.Cursor
	selectionEnabled bool
	dirty            bool
}

func newSurface() *surface {
	return &surface{cursor: engine.CursorDefault, selectionEnabled: true, dirty: true}
}

func (s *surface) SetCursor(c engine.Cursor)        { s.cursor = c }
func (s *surface) SetSelectionEnabled(enabled bool) { s.selectionEnabled = enabled }
func (s *surface) RequestRender()                   { s.dirty = true }

// StatePayload is the ui.state message body.
type StatePayload struct {
	engine.UIState
	SurfaceCursor    engine.Cursor `json:"surfaceCursor"`
	SelectionEnabled bool          `json:"selectionEnabled"`
	SceneID          string        `json:"sceneId,omitempty"`
}
