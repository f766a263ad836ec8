package engine

import (
	"encoding/json"
	"testing"

	"github.com/inamate/sketch/internal/document"
)

func TestCompileDrawCommands(t *testing.T) {
	hidden := rectLayer("hidden", 0, 0, 10, 10)
	hidden.Visible = false
	pending := document.NewLayer("pending", document.KindImage)
	group := document.NewLayer("g", document.KindGroup)
	group.Payload = &document.Group{Children: []*document.Layer{rectLayer("g1", 0, 0, 5, 5), lineLayer("g2", 0, 0, 5, 5)}}

	doc := document.NewEmptyDocument("scene")
	doc.Layers = []*document.Layer{rectLayer("a", 0, 0, 10, 10), hidden, pending, group}

	commands := CompileDrawCommands(doc)
	var ids []string
	for _, c := range commands {
		ids = append(ids, c.ObjectID)
	}
	want := []string{"a", "g1", "g2"}
	if len(ids) != len(want) {
		t.Fatalf("commands = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("commands[%d] = %s, want %s", i, ids[i], want[i])
		}
	}
	if got := commands[2].Transform; got[0] != 1 || got[4] != 0 {
		t.Errorf("line transform = %v, want identity", got)
	}
}

func TestRectPath(t *testing.T) {
	tests := []struct {
		name   string
		radius float64
		want   int
	}{
		{"square corners", 0, 5},
		{"rounded", 4, 10},
		{"radius clamped", 500, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(rectPath(20, 10, tt.radius)); got != tt.want {
				t.Errorf("len(rectPath()) = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDashFor(t *testing.T) {
	if got := dashFor(document.StrokeDashed, 2); len(got) != 2 || got[0] != 16 {
		t.Errorf("dashed = %v", got)
	}
	if got := dashFor(document.StrokeSolid, 2); got != nil {
		t.Errorf("solid = %v, want nil", got)
	}
}

func TestRenderIsJSON(t *testing.T) {
	e := NewEditor(DefaultOptions())
	e.LoadSampleDocument("sample")
	var frame Frame
	if err := json.Unmarshal([]byte(e.Render()), &frame); err != nil {
		t.Fatalf("Render() is not JSON: %v", err)
	}
	if len(frame.Commands) == 0 || frame.Width != document.DefaultWidth {
		t.Errorf("frame = %d commands %d wide", len(frame.Commands), frame.Width)
	}
}
