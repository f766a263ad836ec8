package codec

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/inamate/sketch/internal/document"
	"github.com/inamate/sketch/internal/engine"
	"github.com/inamate/sketch/internal/media"
	"github.com/inamate/sketch/internal/typeid"
)

var (
	ErrMalformed          = errors.New("malformed scene file")
	ErrUnsupportedVersion = errors.New("unsupported scene file version")
	ErrTooLarge           = errors.New("scene file too large")
)

// Container layout: Magic, one version byte, then the base64 text of the
// deflated JSON scene. Files without the magic are the unversioned legacy
// layout and read as version 0.
const (
	Magic          = "SKCH"
	Version   byte = 1
	headerLen      = len(Magic) + 1
)

const (
	DefaultMaxBytes = 32 << 20
	DefaultWorkers  = 4
	maxCanvasSide   = 16384
)

type Options struct {
	MaxBytes     int64 // decompressed JSON ceiling
	Workers      int   // concurrent image decodes on import
	MaxImageSide int
}

// Codec reads and writes scene files. It is safe for concurrent use.
type Codec struct {
	maxBytes int64
	workers  int
	images   *media.Decoder
}

func New(opts Options) *Codec {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	return &Codec{
		maxBytes: opts.MaxBytes,
		workers:  opts.Workers,
		images:   media.NewDecoder(opts.MaxImageSide),
	}
}

// Export serializes doc. Pending image layers are left out.
func (c *Codec) Export(ctx context.Context, doc *document.Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(toSceneRecord(doc))
	if err != nil {
		return nil, fmt.Errorf("encode scene: %w", err)
	}

	var deflated bytes.Buffer
	w, err := flate.NewWriter(&deflated, flate.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("compress scene: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return nil, fmt.Errorf("compress scene: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compress scene: %w", err)
	}

	out := make([]byte, headerLen+base64.StdEncoding.EncodedLen(deflated.Len()))
	copy(out, Magic)
	out[len(Magic)] = Version
	base64.StdEncoding.Encode(out[headerLen:], deflated.Bytes())
	return out, nil
}

// Import parses data into a fresh document. Every layer record passes through
// the normalizer, and embedded images are decoded before the document is
// returned. ctx can cancel the import until decompression has finished; after
// that it runs to completion or fails as a whole.
func (c *Codec) Import(ctx context.Context, data []byte) (*document.Document, error) {
	rec, _, err := c.readRecord(ctx, data)
	if err != nil {
		return nil, err
	}
	ctx = context.WithoutCancel(ctx)

	doc := document.NewEmptyDocument(typeid.NewSceneID())
	doc.Background = toBackground(rec.Background, doc.Background)
	if rec.Width > 0 {
		doc.Width = engine.Clamp(1, rec.Width, maxCanvasSide)
	}
	if rec.Height > 0 {
		doc.Height = engine.Clamp(1, rec.Height, maxCanvasSide)
	}

	seen := make(map[string]bool)
	layers := make([]*document.Layer, 0, len(rec.Layers))
	for _, lr := range rec.Layers {
		l, err := toLayer(lr)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if id, dup := duplicateID(l, seen); dup {
			return nil, fmt.Errorf("%w: duplicate layer id %q", ErrMalformed, id)
		}
		layers = append(layers, l)
	}

	if err := c.decodeImages(ctx, layers); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	for _, l := range layers {
		doc.Layers = append(doc.Layers, engine.Recovered(l))
	}
	return doc, nil
}

// readRecord unwraps the container and parses the JSON scene.
func (c *Codec) readRecord(ctx context.Context, data []byte) (sceneRecord, int, error) {
	var rec sceneRecord
	payload, version, err := unwrap(data)
	if err != nil {
		return rec, 0, err
	}
	deflated, err := base64.StdEncoding.DecodeString(string(bytes.TrimSpace(payload)))
	if err != nil {
		return rec, version, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := ctx.Err(); err != nil {
		return rec, version, err
	}

	r := flate.NewReader(bytes.NewReader(deflated))
	defer r.Close()
	raw, err := io.ReadAll(io.LimitReader(r, c.maxBytes+1))
	if err != nil {
		return rec, version, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if int64(len(raw)) > c.maxBytes {
		return rec, version, ErrTooLarge
	}
	if err := ctx.Err(); err != nil {
		return rec, version, err
	}

	if err := json.Unmarshal(raw, &rec); err != nil {
		return rec, version, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return rec, version, nil
}

func unwrap(data []byte) ([]byte, int, error) {
	if len(data) == 0 {
		return nil, 0, fmt.Errorf("%w: empty input", ErrMalformed)
	}
	if !bytes.HasPrefix(data, []byte(Magic)) {
		return data, 0, nil
	}
	if len(data) < headerLen {
		return nil, 0, fmt.Errorf("%w: truncated header", ErrMalformed)
	}
	if v := data[len(Magic)]; v != Version {
		return nil, int(v), fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	return data[headerLen:], int(Version), nil
}

func duplicateID(l *document.Layer, seen map[string]bool) (string, bool) {
	if seen[l.ID] {
		return l.ID, true
	}
	seen[l.ID] = true
	if g, ok := l.Group(); ok {
		for _, child := range g.Children {
			if id, dup := duplicateID(child, seen); dup {
				return id, true
			}
		}
	}
	return "", false
}

// decodeImages materializes every image payload in layers, group members included.
func (c *Codec) decodeImages(ctx context.Context, layers []*document.Layer) error {
	var pending []*document.Image
	var walk func([]*document.Layer)
	walk = func(ls []*document.Layer) {
		for _, l := range ls {
			switch p := l.Payload.(type) {
			case *document.Image:
				pending = append(pending, p)
			case *document.Group:
				walk(p.Children)
			}
		}
	}
	walk(layers)
	if len(pending) == 0 {
		return nil
	}

	srcs := make([][]byte, len(pending))
	for i, p := range pending {
		srcs[i] = p.Src
	}
	decoded, err := c.images.DecodeAll(ctx, srcs, c.workers)
	if err != nil {
		return err
	}
	for i, p := range pending {
		*p = *decoded[i]
	}
	return nil
}

func toBackground(r backgroundRecord, def document.Background) document.Background {
	bg := def
	switch p := document.BackgroundPattern(r.Pattern); p {
	case document.PatternNone, document.PatternGrid, document.PatternDots, document.PatternLines:
		bg.Pattern = p
	}
	if r.Color != "" {
		bg.Color = r.Color
	}
	if r.Spacing > 0 {
		bg.Spacing = r.Spacing
	}
	return bg
}
