package media

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, maxBytes int64) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), maxBytes)
	require.NoError(t, err)
	return store
}

func jpegBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestUploadPath(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC)

	path := UploadPath("Técnicas de Drift: la guía completa para principiantes", ".jpg", now)

	assert.Equal(t, "articles", filepath.Dir(path))
	name := filepath.Base(path)
	assert.True(t, strings.HasPrefix(name, "article_20240315_103045_"), "unexpected name %q", name)
	assert.True(t, strings.HasSuffix(name, ".jpg"))
	// Sanitized slug keeps only alphanumerics, dashes and underscores.
	slug := strings.TrimSuffix(strings.TrimPrefix(name, "article_20240315_103045_"), ".jpg")
	for _, r := range slug {
		valid := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_'
		assert.True(t, valid, "slug contains invalid rune %q", r)
	}
}

func TestStoreSave(t *testing.T) {
	t.Run("saves valid image", func(t *testing.T) {
		store := newTestStore(t, 1024*1024)
		data := jpegBytes(t, 100, 80)

		path, err := store.Save("Mi artículo", "photo.jpg", int64(len(data)), bytes.NewReader(data))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(path, "articles/"))

		saved, err := os.ReadFile(filepath.Join(store.dir, path))
		require.NoError(t, err)
		assert.Equal(t, data, saved)
	})

	t.Run("rejects oversized declared size", func(t *testing.T) {
		store := newTestStore(t, 10)
		data := jpegBytes(t, 100, 80)

		_, err := store.Save("Mi artículo", "photo.jpg", int64(len(data)), bytes.NewReader(data))
		assert.ErrorIs(t, err, ErrImageTooLarge)
	})

	t.Run("rejects oversized actual content", func(t *testing.T) {
		store := newTestStore(t, 10)

		// Declared size fits but the stream is bigger.
		_, err := store.Save("Mi artículo", "photo.jpg", 5, bytes.NewReader(make([]byte, 100)))
		assert.ErrorIs(t, err, ErrImageTooLarge)
	})

	t.Run("rejects unsupported extension", func(t *testing.T) {
		store := newTestStore(t, 1024)

		_, err := store.Save("Mi artículo", "malware.exe", 5, bytes.NewReader([]byte("hello")))
		assert.ErrorIs(t, err, ErrUnsupportedImageType)
	})
}

func TestStoreProcess(t *testing.T) {
	t.Run("resamples wide image to max width", func(t *testing.T) {
		store := newTestStore(t, 10*1024*1024)
		data := jpegBytes(t, 1600, 900)

		path, err := store.Save("Artículo ancho", "wide.jpg", int64(len(data)), bytes.NewReader(data))
		require.NoError(t, err)

		require.NoError(t, store.Process(path))

		img, err := imaging.Open(filepath.Join(store.dir, path))
		require.NoError(t, err)
		assert.Equal(t, MaxImageWidth, img.Bounds().Dx())
		// Aspect ratio preserved: 1600x900 -> 1200x675.
		assert.Equal(t, 675, img.Bounds().Dy())
	})

	t.Run("leaves small image untouched", func(t *testing.T) {
		store := newTestStore(t, 10*1024*1024)
		data := jpegBytes(t, 800, 600)

		path, err := store.Save("Artículo pequeño", "small.jpg", int64(len(data)), bytes.NewReader(data))
		require.NoError(t, err)

		require.NoError(t, store.Process(path))

		saved, err := os.ReadFile(filepath.Join(store.dir, path))
		require.NoError(t, err)
		assert.Equal(t, data, saved, "image at or under the width limit should not be rewritten")
	})

	t.Run("fails on missing file", func(t *testing.T) {
		store := newTestStore(t, 1024)
		assert.Error(t, store.Process("articles/missing.jpg"))
	})
}

func TestStoreRemove(t *testing.T) {
	store := newTestStore(t, 1024*1024)
	data := jpegBytes(t, 50, 50)

	path, err := store.Save("Para borrar", "gone.jpg", int64(len(data)), bytes.NewReader(data))
	require.NoError(t, err)

	require.NoError(t, store.Remove(path))
	_, err = os.Stat(filepath.Join(store.dir, path))
	assert.True(t, os.IsNotExist(err))

	// Removing twice is not an error.
	require.NoError(t, store.Remove(path))
}
