package engine

import "math"

// Cursor is a CSS cursor name understood by the host surface.
type Cursor string

const (
	CursorDefault   Cursor = "default"
	CursorGrab      Cursor = "grab"
	CursorGrabbing  Cursor = "grabbing"
	CursorMove      Cursor = "move"
	CursorCrosshair Cursor = "crosshair"
)

// Surface is the host rendering surface as seen from the editor core.
type Surface interface {
	SetCursor(c Cursor)
	SetSelectionEnabled(enabled bool)
	RequestRender()
}

// NopSurface ignores every request. Useful for headless sessions.
type NopSurface struct{}

func (NopSurface) SetCursor(Cursor)        {}
func (NopSurface) SetSelectionEnabled(bool) {}
func (NopSurface) RequestRender()           {}

var resizeCursors = [...]string{"ns", "nesw", "ew", "nwse"}

// CursorForHandle picks the cursor for a handle on a layer rotated by angle
// degrees. Resize cursors are rotated in 45° sectors.
func CursorForHandle(t HandleType, angle float64) Cursor {
	var base string
	switch t {
	case HandleN, HandleS:
		base = "ns"
	case HandleE, HandleW:
		base = "ew"
	case HandleNW, HandleSE:
		base = "nwse"
	case HandleNE, HandleSW:
		base = "nesw"
	case HandleRotation:
		return CursorGrab
	default:
		return CursorDefault
	}
	idx := 0
	for i, c := range resizeCursors {
		if c == base {
			idx = i
		}
	}
	steps := int(math.Round(NormalizeAngle(angle) / 45))
	return Cursor(resizeCursors[(idx+steps)%len(resizeCursors)] + "-resize")
}
