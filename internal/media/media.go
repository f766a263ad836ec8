package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/HugoSmits86/nativewebp"
	"github.com/disintegration/imaging"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/inamate/sketch/internal/document"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrEmpty             = errors.New("empty image")
)

// DefaultMaxSide bounds the larger side of a decoded bitmap.
const DefaultMaxSide = 4096

// Decoder turns raw image bytes into materialized image payloads. Payload
// bytes are stored as lossless WebP regardless of the input format, so every
// scene file carries one image encoding.
type Decoder struct {
	MaxSide int
}

func NewDecoder(maxSide int) *Decoder {
	if maxSide <= 0 {
		maxSide = DefaultMaxSide
	}
	return &Decoder{MaxSide: maxSide}
}

// DecodeImage decodes data, fits it into MaxSide and returns a ready payload.
func (d *Decoder) DecodeImage(ctx context.Context, data []byte) (*document.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, format, err := decode(data)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupportedFormat
		}
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, ErrEmpty
	}

	resized := false
	if d.MaxSide > 0 && (b.Dx() > d.MaxSide || b.Dy() > d.MaxSide) {
		img = imaging.Fit(img, d.MaxSide, d.MaxSide, imaging.Lanczos)
		b = img.Bounds()
		resized = true
	}

	src := data
	if format != "webp" || resized {
		var buf bytes.Buffer
		if err := nativewebp.Encode(&buf, img, nil); err != nil {
			return nil, fmt.Errorf("media: webp encode: %w", err)
		}
		src = buf.Bytes()
	}
	return &document.Image{
		Src:           append([]byte(nil), src...),
		NaturalWidth:  b.Dx(),
		NaturalHeight: b.Dy(),
		State:         document.LoadReady,
		Bitmap:        img,
	}, nil
}

type format struct {
	name   string
	match  func([]byte) bool
	decode func(io.Reader) (image.Image, error)
}

func prefix(magic ...string) func([]byte) bool {
	return func(data []byte) bool {
		for _, m := range magic {
			if bytes.HasPrefix(data, []byte(m)) {
				return true
			}
		}
		return false
	}
}

func isWebP(data []byte) bool {
	return len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP"
}

// formats is tried in order. TGA has no magic number, so it is the fallback
// for anything the others do not claim.
var formats = []format{
	{"png", prefix("\x89PNG\r\n\x1a\n"), png.Decode},
	{"jpeg", prefix("\xff\xd8"), jpeg.Decode},
	{"gif", prefix("GIF87a", "GIF89a"), gif.Decode},
	{"webp", isWebP, webp.Decode},
	{"bmp", prefix("BM"), bmp.Decode},
	{"tiff", prefix("II*\x00", "MM\x00*"), tiff.Decode},
	{"tga", func([]byte) bool { return true }, tga.Decode},
}

// decode picks the decoder by magic number instead of going through
// image.Decode, where the magic-less TGA registration claims every input.
func decode(data []byte) (image.Image, string, error) {
	for _, f := range formats {
		if !f.match(data) {
			continue
		}
		img, err := f.decode(bytes.NewReader(data))
		if err != nil {
			return nil, f.name, err
		}
		return img, f.name, nil
	}
	return nil, "", image.ErrFormat
}

// DecodeAll decodes every source with at most workers decodes in flight. The
// first failure cancels the rest. Results are in source order.
func (d *Decoder) DecodeAll(ctx context.Context, srcs [][]byte, workers int) ([]*document.Image, error) {
	if workers <= 0 {
		workers = 1
	}
	out := make([]*document.Image, len(srcs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, src := range srcs {
		g.Go(func() error {
			img, err := d.DecodeImage(ctx, src)
			if err != nil {
				return fmt.Errorf("image %d: %w", i, err)
			}
			out[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Thumbnail returns a square WebP preview of img cropped to fill size x size.
func Thumbnail(img image.Image, size int) ([]byte, error) {
	if img == nil || size <= 0 {
		return nil, ErrEmpty
	}
	thumb := imaging.Thumbnail(img, size, size, imaging.Lanczos)
	var buf bytes.Buffer
	if err := nativewebp.Encode(&buf, thumb, nil); err != nil {
		return nil, fmt.Errorf("media: webp encode: %w", err)
	}
	return buf.Bytes(), nil
}
