package assets

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"

	"github.com/abhisek/mandela/internal/catalog"
)

// ErrNotFound is returned when an asset reference does not resolve.
var ErrNotFound = errors.New("asset not found")

// NotFoundText is shown in place of an image that cannot be loaded.
const NotFoundText = "Image not found!"

// Dimensions the quiz renders images at.
var (
	PairedSize  = Size{W: 300, H: 300}
	BooleanSize = Size{W: 150, H: 150}
)

// SizeFor returns the size items of kind k are drawn at.
func SizeFor(k catalog.Kind) Size {
	if k == catalog.BooleanChoice {
		return BooleanSize
	}
	return PairedSize
}

// Size is a target width and height in pixels.
type Size struct {
	W, H int
}

// Provider resolves asset references to raw bytes.
type Provider interface {
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}

// Uploader stores assets. Implemented by remote backends.
type Uploader interface {
	Upload(ctx context.Context, ref, localPath string) error
}

// Load decodes ref and scales it to size. A zero size keeps the original
// dimensions.
func Load(ctx context.Context, p Provider, ref string, size Size) (image.Image, error) {
	rc, err := p.Open(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	img, _, err := image.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", ref, err)
	}
	return Resize(img, size), nil
}

// Resize scales img with nearest-neighbour sampling.
func Resize(img image.Image, size Size) image.Image {
	if size.W <= 0 || size.H <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() == size.W && b.Dy() == size.H {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, size.W, size.H))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// LoadAll loads every ref at size. Refs that fail to load are left out of
// the map; the first error that is not ErrNotFound is returned alongside.
func LoadAll(ctx context.Context, p Provider, refs []string, size Size) (map[string]image.Image, error) {
	out := make(map[string]image.Image, len(refs))
	var firstErr error
	for _, ref := range refs {
		if _, ok := out[ref]; ok {
			continue
		}
		img, err := Load(ctx, p, ref, size)
		if err != nil {
			if !errors.Is(err, ErrNotFound) && firstErr == nil {
				firstErr = err
			}
			continue
		}
		out[ref] = img
	}
	return out, firstErr
}
