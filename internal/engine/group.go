package engine

import "github.com/inamate/sketch/internal/document"

// Group is a transient view over a multi-selection: the member layers in
// paint order and their aggregate rotated bounding box. It owns no geometry.
type Group struct {
	Members []*document.Layer
	Box     Rect
}

// NewGroup projects the selected ids onto doc. Pending layers are skipped.
// The result is valid only when at least two members remain.
func NewGroup(doc *document.Document, selected map[string]bool) (Group, bool) {
	var g Group
	if doc == nil {
		return g, false
	}
	for _, l := range doc.Layers {
		if selected[l.ID] && !l.Pending() {
			g.Members = append(g.Members, l)
		}
	}
	if len(g.Members) < 2 {
		return g, false
	}
	g.Box = AggregateRect(g.Members)
	return g, true
}

// IDs returns the member ids in paint order.
func (g Group) IDs() []string {
	ids := make([]string, len(g.Members))
	for i, l := range g.Members {
		ids[i] = l.ID
	}
	return ids
}

// Selection tracks selected layer ids in selection order and memoizes the
// group projection until the selection or the document revision changes.
type Selection struct {
	ids []string
	set map[string]bool

	cached    Group
	cachedOK  bool
	cachedRev uint64
	valid     bool
}

func NewSelection() *Selection {
	return &Selection{set: make(map[string]bool)}
}

// Set replaces the selection.
func (s *Selection) Set(ids []string) {
	s.ids = s.ids[:0]
	s.set = make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || s.set[id] {
			continue
		}
		s.ids = append(s.ids, id)
		s.set[id] = true
	}
	s.valid = false
}

// Add appends id to the selection if it is not already present.
func (s *Selection) Add(id string) {
	if s.set[id] {
		return
	}
	s.ids = append(s.ids, id)
	s.set[id] = true
	s.valid = false
}

// Toggle flips the membership of id.
func (s *Selection) Toggle(id string) {
	if !s.set[id] {
		s.Add(id)
		return
	}
	delete(s.set, id)
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
	s.valid = false
}

// Clear deselects everything.
func (s *Selection) Clear() {
	s.Set(nil)
}

func (s *Selection) Has(id string) bool { return s.set[id] }
func (s *Selection) Len() int           { return len(s.ids) }

// IDs returns a copy of the selected ids in selection order.
func (s *Selection) IDs() []string {
	return append([]string(nil), s.ids...)
}

// State returns the hit-tester view of the selection.
func (s *Selection) State() EditorState {
	m := make(map[string]bool, len(s.set))
	for k := range s.set {
		m[k] = true
	}
	return EditorState{SelectedLayerIDs: m}
}

// Prune drops ids that no longer name a top-level layer of doc.
func (s *Selection) Prune(doc *document.Document) {
	kept := s.ids[:0]
	for _, id := range s.ids {
		if doc.Index(id) >= 0 {
			kept = append(kept, id)
		} else {
			delete(s.set, id)
		}
	}
	s.ids = kept
	s.valid = false
}

// Group returns the memoized group projection for document revision rev.
func (s *Selection) Group(doc *document.Document, rev uint64) (Group, bool) {
	if s.valid && s.cachedRev == rev {
		return s.cached, s.cachedOK
	}
	s.cached, s.cachedOK = NewGroup(doc, s.set)
	s.cachedRev = rev
	s.valid = true
	return s.cached, s.cachedOK
}
