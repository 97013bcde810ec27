package service

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

	"github.com/creamcroissant/bakehub/internal/query"
	"github.com/creamcroissant/bakehub/internal/repository/sqlite"
	"github.com/creamcroissant/bakehub/internal/storage"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, G: 120, B: 40, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newFileService(t *testing.T, maxBytes int64) (*sqlite.Store, FileService) {
	t.Helper()
	store := openStore(t)
	backend, err := storage.NewLocalBackend(t.TempDir())
	require.NoError(t, err)
	return store, NewFileService(store, backend, FileOptions{MaxBytes: maxBytes, ThumbnailWidth: 32}, testBounds, nil)
}

func TestFileUploadStoresImageAndThumbnail(t *testing.T) {
	store, files := newFileService(t, 1<<20)
	ctx := context.Background()
	baker := seedBaker(t, store, "a@example.com", "alpha", true)
	draft := seedBaker(t, store, "b@example.com", "beta", false)

	view, err := files.Upload(ctx, baker.ID, UploadInput{Name: `C:\photos\cake.png`, Body: bytes.NewReader(pngBytes(t, 64, 48))})
	require.NoError(t, err)
	assert.Equal(t, "cake.png", view.OriginalName)
	assert.Equal(t, "image/png", view.MimeType)
	assert.Equal(t, 64, view.Width)
	assert.Equal(t, 48, view.Height)
	assert.True(t, view.HasThumbnail)

	obj, _, err := files.Open(ctx, 0, view.ID, true)
	require.NoError(t, err)
	data, err := io.ReadAll(obj.Body)
	require.NoError(t, obj.Body.Close())
	require.NoError(t, err)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 32, cfg.Width)
	assert.Equal(t, 24, cfg.Height)

	_, _, err = files.Open(ctx, draft.ID, view.ID, false)
	assert.ErrorIs(t, err, ErrNotFound)

	page, err := files.List(ctx, baker.ID, query.Descriptor{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	assert.ErrorIs(t, files.Delete(ctx, draft.ID, view.ID), ErrNotFound)
	require.NoError(t, files.Delete(ctx, baker.ID, view.ID))
	_, _, err = files.Open(ctx, baker.ID, view.ID, false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileOpenHidesUnpublishedStorefronts(t *testing.T) {
	store, files := newFileService(t, 1<<20)
	ctx := context.Background()
	draft := seedBaker(t, store, "b@example.com", "beta", false)

	view, err := files.Upload(ctx, draft.ID, UploadInput{Name: "cake.png", Body: bytes.NewReader(pngBytes(t, 8, 8))})
	require.NoError(t, err)

	_, _, err = files.Open(ctx, 0, view.ID, false)
	assert.ErrorIs(t, err, ErrNotFound)

	obj, _, err := files.Open(ctx, draft.ID, view.ID, false)
	require.NoError(t, err)
	require.NoError(t, obj.Body.Close())
}

func TestFileUploadRejectsBadInput(t *testing.T) {
	store, files := newFileService(t, 64)
	ctx := context.Background()
	baker := seedBaker(t, store, "a@example.com", "alpha", true)

	_, err := files.Upload(ctx, baker.ID, UploadInput{Name: "big.png", Body: bytes.NewReader(pngBytes(t, 64, 64))})
	assert.ErrorIs(t, err, ErrPayloadTooLarge)

	_, err = files.Upload(ctx, baker.ID, UploadInput{Name: "run.sh", Body: bytes.NewReader([]byte("#!/bin/sh\necho hi\n"))})
	assert.ErrorIs(t, err, ErrUnsupportedMedia)

	_, err = files.Upload(ctx, baker.ID, UploadInput{Name: "empty", Body: bytes.NewReader(nil)})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
