package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 80, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCleanKey(t *testing.T) {
	ok, err := cleanKey("bakers/1/cake.png")
	require.NoError(t, err)
	assert.Equal(t, "bakers/1/cake.png", ok)

	for _, bad := range []string{"", "  ", "../etc/passwd", "a/../../b", "a\\b", "a//b"} {
		_, err := cleanKey(bad)
		assert.ErrorIs(t, err, ErrInvalidKey, bad)
	}
}

func TestLocalBackendRoundTrip(t *testing.T) {
	backend, err := NewLocalBackend(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	data := []byte("hello cake")
	require.NoError(t, backend.Put(ctx, "bakers/1/note.txt", bytes.NewReader(data), int64(len(data)), "text/plain"))

	obj, err := backend.Open(ctx, "bakers/1/note.txt")
	require.NoError(t, err)
	got, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	require.NoError(t, obj.Body.Close())
	assert.Equal(t, data, got)
	assert.Equal(t, int64(len(data)), obj.Size)

	require.NoError(t, backend.Delete(ctx, "bakers/1/note.txt"))
	_, err = backend.Open(ctx, "bakers/1/note.txt")
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting twice is fine
	assert.NoError(t, backend.Delete(ctx, "bakers/1/note.txt"))
}

func TestLocalBackendRejectsTraversal(t *testing.T) {
	backend, err := NewLocalBackend(t.TempDir())
	require.NoError(t, err)
	err = backend.Put(context.Background(), "../escape.txt", bytes.NewReader(nil), 0, "")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestNewUnknownDriver(t *testing.T) {
	_, err := New(Options{Driver: "ftp"})
	assert.Error(t, err)

	b, err := New(Options{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "local", b.Name())
}

func TestDetect(t *testing.T) {
	d, err := Detect(pngBytes(t, 4, 4))
	require.NoError(t, err)
	assert.Equal(t, "image/png", d.MIME)
	assert.Equal(t, ".png", d.Extension)
	assert.True(t, d.IsImage())

	_, err = Detect([]byte("#!/bin/sh\necho hi\n"))
	assert.ErrorIs(t, err, ErrUnsupportedMedia)
}

func TestThumbnail(t *testing.T) {
	out, contentType, err := Thumbnail(bytes.NewReader(pngBytes(t, 64, 32)), 16)
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 8, img.Bounds().Dy())

	out, _, err = Thumbnail(bytes.NewReader(pngBytes(t, 10, 10)), 16)
	require.NoError(t, err)
	img, err = png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 10, img.Bounds().Dx())
}
