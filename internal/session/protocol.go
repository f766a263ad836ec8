package session

import "encoding/json"

type Message struct {
	Type    string          `json:"type"`
	Seq     int64           `json:"seq,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

const (
	// Client → server
	TypePointer = "pointer"
	TypeCommand = "command"
	TypeImport  = "scene.import"
	TypeExport  = "scene.export"
	TypeLoad    = "scene.load"
	TypeSave    = "scene.save"
	TypeImage   = "image.add"
	TypeResize  = "viewport.resize"

	// Server → client
	TypeWelcome  = "welcome"
	TypeState    = "ui.state"
	TypeFrame    = "frame"
	TypePan      = "pan"
	TypeExported = "scene.exported"
	TypeSaved    = "scene.saved"
	TypeError    = "error"
)

type WelcomePayload struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
}

// PointerPayload carries one pointer sample in screen coordinates.
type PointerPayload struct {
	Phase       string  `json:"phase"` // down, move, up, cancel
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	PointerType string  `json:"pointerType,omitempty"`
	Shift       bool    `json:"shift,omitempty"`
	Alt         bool    `json:"alt,omitempty"`
}

// CommandPayload names an editor command and its arguments.
type CommandPayload struct {
	Name         string   `json:"name"`
	IDs          []string `json:"ids,omitempty"`
	Alignment    string   `json:"alignment,omitempty"`
	Distribution string   `json:"distribution,omitempty"`
	Order        string   `json:"order,omitempty"`
	DX           float64  `json:"dx,omitempty"`
	DY           float64  `json:"dy,omitempty"`
	Zoom         float64  `json:"zoom,omitempty"` // percent
	Width        int      `json:"width,omitempty"`
	Height       int      `json:"height,omitempty"`
	Value        *bool    `json:"value,omitempty"`
}

type ImportPayload struct {
	Data []byte `json:"data"` // base64 in JSON
	Mode string `json:"mode"` // replace, merge
}

type LoadPayload struct {
	SceneID string `json:"sceneId"`
}

type SavePayload struct {
	Name string `json:"name,omitempty"`
}

type ImagePayload struct {
	Data []byte  `json:"data"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type ResizePayload struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type ExportedPayload struct {
	Data []byte `json:"data"`
}

type ErrorPayload struct {
	Message string `json:"message"`
	Ref     int64  `json:"ref,omitempty"` // seq of the failed request
}
