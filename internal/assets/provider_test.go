package assets

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mandela/internal/catalog"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestFileProvider_Load(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "logo.png"), 40, 20)

	p := NewFileProvider(dir)
	img, err := Load(context.Background(), p, "logo.png", Size{W: 10, H: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, img.Bounds().Dx())
	assert.Equal(t, 10, img.Bounds().Dy())

	orig, err := Load(context.Background(), p, "logo.png", Size{})
	require.NoError(t, err)
	assert.Equal(t, 40, orig.Bounds().Dx())
}

func TestFileProvider_NotFound(t *testing.T) {
	p := NewFileProvider(t.TempDir())
	_, err := Load(context.Background(), p, "missing.jpg", PairedSize)
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
}

func TestFileProvider_RejectsEscape(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "assets")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(parent, "secret.txt"), []byte("x"), 0o644))

	p := NewFileProvider(dir)
	_, err := p.Open(context.Background(), "../secret.txt")
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)

	_, err = p.Open(context.Background(), "")
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
}

func TestLoad_DecodeError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.jpg"), []byte("not an image"), 0o644))

	_, err := Load(context.Background(), NewFileProvider(dir), "bad.jpg", BooleanSize)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestResize_NoOp(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 5, 5))
	assert.Same(t, image.Image(img), Resize(img, Size{W: 5, H: 5}))
	assert.Same(t, image.Image(img), Resize(img, Size{}))
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 8, 8)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.png"), []byte("nope"), 0o644))

	imgs, err := LoadAll(context.Background(), NewFileProvider(dir), []string{"a.png", "missing.png", "broken.png", "a.png"}, Size{W: 4, H: 4})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Len(t, imgs, 1)
	assert.Equal(t, 4, imgs["a.png"].Bounds().Dx())
}

func TestSizeFor(t *testing.T) {
	assert.Equal(t, PairedSize, SizeFor(catalog.PairedChoice))
	assert.Equal(t, BooleanSize, SizeFor(catalog.BooleanChoice))
}
