package codec

import (
	"context"
	"encoding/json"
	"sort"
)

// Summary describes a scene file without decoding its images.
type Summary struct {
	Version    int            `json:"version"`
	Bytes      int            `json:"bytes"`
	Width      int            `json:"width"`
	Height     int            `json:"height"`
	Background string         `json:"background"`
	Layers     int            `json:"layers"`
	Kinds      map[string]int `json:"kinds"`
	IDs        []string       `json:"ids"`
}

// Inspect reads the container and reports what it holds.
func (c *Codec) Inspect(ctx context.Context, data []byte) (Summary, error) {
	rec, version, err := c.readRecord(ctx, data)
	if err != nil {
		return Summary{}, err
	}
	s := Summary{
		Version:    version,
		Bytes:      len(data),
		Width:      rec.Width,
		Height:     rec.Height,
		Background: rec.Background.Pattern,
		Layers:     len(rec.Layers),
		Kinds:      make(map[string]int),
	}
	var walk func([]layerRecord)
	walk = func(ls []layerRecord) {
		for _, l := range ls {
			s.Kinds[l.Type]++
			s.IDs = append(s.IDs, l.ID)
			walk(l.Children)
		}
	}
	walk(rec.Layers)
	sort.Strings(s.IDs)
	return s, nil
}

// MarshalIndent renders the summary for terminal output.
func (s Summary) MarshalIndent() string {
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
