package engine

import (
	"sort"

	"github.com/inamate/sketch/internal/document"
)

type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignRight  Alignment = "right"
	AlignTop    Alignment = "top"
	AlignBottom Alignment = "bottom"
	AlignCenter Alignment = "center" // horizontal centers
	AlignMiddle Alignment = "middle" // vertical centers
)

// Valid reports whether a is a known alignment.
func (a Alignment) Valid() bool {
	switch a {
	case AlignLeft, AlignRight, AlignTop, AlignBottom, AlignCenter, AlignMiddle:
		return true
	}
	return false
}

// Horizontal reports whether a moves layers along the x axis.
func (a Alignment) Horizontal() bool {
	return a == AlignLeft || a == AlignRight || a == AlignCenter
}

// alignOffset returns how far a member whose rotated box is r must move so that
// its edge or center coincides with the group's.
func alignOffset(a Alignment, group, r Rect) float64 {
	switch a {
	case AlignLeft:
		return group.Left - r.Left
	case AlignRight:
		return group.Right() - r.Right()
	case AlignTop:
		return group.Top - r.Top
	case AlignBottom:
		return group.Bottom() - r.Bottom()
	case AlignCenter:
		return group.Center().X - r.Center().X
	case AlignMiddle:
		return group.Center().Y - r.Center().Y
	}
	return 0
}

// Align moves each member of g so that its rotated bounding rect lines up with
// the group box on the given edge or axis. Only the targeted coordinate
// changes. Locked members count toward the box but stay put. It returns the
// members that moved; an invalid group is a no-op.
func Align(g Group, a Alignment) []*document.Layer {
	if len(g.Members) < 2 || !a.Valid() {
		return nil
	}
	var moved []*document.Layer
	for _, l := range g.Members {
		if l.Locked {
			continue
		}
		d := alignOffset(a, g.Box, BoundingRect(l, true))
		if d == 0 {
			continue
		}
		if a.Horizontal() {
			TranslateLayer(l, d, 0)
		} else {
			TranslateLayer(l, 0, d)
		}
		moved = append(moved, l)
	}
	return moved
}

// Distribution spaces members evenly along one axis.
type Distribution string

const (
	DistributeHorizontal Distribution = "horizontal"
	DistributeVertical   Distribution = "vertical"
)

// Distribute spreads the members of g so the gaps between consecutive rotated
// boxes are equal, keeping the outermost members in place. Locked members
// keep their slot in the order but are not moved.
func Distribute(g Group, d Distribution) []*document.Layer {
	if len(g.Members) < 3 {
		return nil
	}
	horizontal := d == DistributeHorizontal
	members := append([]*document.Layer(nil), g.Members...)
	rects := make(map[*document.Layer]Rect, len(members))
	for _, l := range members {
		rects[l] = BoundingRect(l, true)
	}
	lead := func(r Rect) float64 {
		if horizontal {
			return r.Center().X
		}
		return r.Center().Y
	}
	sort.SliceStable(members, func(i, j int) bool { return lead(rects[members[i]]) < lead(rects[members[j]]) })

	span, total := 0.0, 0.0
	first, last := rects[members[0]], rects[members[len(members)-1]]
	if horizontal {
		span = last.Right() - first.Left
	} else {
		span = last.Bottom() - first.Top
	}
	for _, l := range members {
		if horizontal {
			total += rects[l].Width
		} else {
			total += rects[l].Height
		}
	}
	gap := (span - total) / float64(len(members)-1)

	var moved []*document.Layer
	pos := first.Left
	if !horizontal {
		pos = first.Top
	}
	for _, l := range members {
		r := rects[l]
		if l.Locked {
			if horizontal {
				pos += r.Width + gap
			} else {
				pos += r.Height + gap
			}
			continue
		}
		if horizontal {
			if dx := pos - r.Left; dx != 0 {
				TranslateLayer(l, dx, 0)
				moved = append(moved, l)
			}
			pos += r.Width + gap
		} else {
			if dy := pos - r.Top; dy != 0 {
				TranslateLayer(l, 0, dy)
				moved = append(moved, l)
			}
			pos += r.Height + gap
		}
	}
	return moved
}
