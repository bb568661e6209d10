package service

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf/internal/storage"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// pngHeader returns a PNG that declares a w x h 8-bit grayscale image. It
// carries no pixel data, which is enough for image.DecodeConfig.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 0 // grayscale

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func newDiskImageService(t *testing.T, maxSize int64) (ImageService, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewDiskStore(dir)
	require.NoError(t, err)
	return NewImageService(store, maxSize), dir
}

func TestImageService_StoreWritesCoverJPEG(t *testing.T) {
	svc, dir := newDiskImageService(t, 10_000_000)

	name, err := svc.Store(context.Background(), Upload{Filename: "My Cover.png", Data: pngBytes(t, 400, 300)})
	require.NoError(t, err)
	assert.Regexp(t, `^my_cover_[0-9a-f]{8}\.jpeg$`, name)

	f, err := os.Open(filepath.Join(dir, name))
	require.NoError(t, err)
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, CoverWidth, cfg.Width)
	assert.Equal(t, CoverHeight, cfg.Height)
}

func TestImageService_AcceptsJPEGInput(t *testing.T) {
	svc, _ := newDiskImageService(t, 10_000_000)

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 50, 500)), nil))

	_, err := svc.Store(context.Background(), Upload{Filename: "tall.jpg", Data: buf.Bytes()})
	assert.NoError(t, err)
}

func TestImageService_RejectsOversizedDimensions(t *testing.T) {
	svc, dir := newDiskImageService(t, 10_000_000)

	data := pngHeader(20000, 20000)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, "png", format)
	require.Equal(t, 20000, cfg.Width)

	_, err = svc.Store(context.Background(), Upload{Filename: "huge.png", Data: data})
	assert.ErrorIs(t, err, ErrInvalidInput)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestImageService_DimensionLimitIsInclusive(t *testing.T) {
	svc, _ := newDiskImageService(t, 10_000_000)

	// exactly at the limit passes the size check and fails later on the missing pixel data
	_, err := svc.Store(context.Background(), Upload{Filename: "edge.png", Data: pngHeader(8000, 5000)})
	assert.ErrorIs(t, err, ErrImageProcessing)
	assert.NotErrorIs(t, err, ErrInvalidInput)
}

func TestImageService_RejectsGarbage(t *testing.T) {
	svc, dir := newDiskImageService(t, 10_000_000)

	_, err := svc.Store(context.Background(), Upload{Filename: "notes.txt", Data: []byte("not an image")})
	assert.ErrorIs(t, err, ErrImageProcessing)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestImageService_SizeAndPresence(t *testing.T) {
	svc, _ := newDiskImageService(t, 100)

	_, err := svc.Store(context.Background(), Upload{Filename: "big.png", Data: pngBytes(t, 64, 64)})
	assert.ErrorIs(t, err, ErrImageTooLarge)

	_, err = svc.Store(context.Background(), Upload{Filename: "empty.png"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestImageService_Remove(t *testing.T) {
	svc, dir := newDiskImageService(t, 10_000_000)

	name, err := svc.Store(context.Background(), Upload{Filename: "cover.png", Data: pngBytes(t, 10, 10)})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(context.Background(), name))
	_, err = os.Stat(filepath.Join(dir, name))
	assert.True(t, os.IsNotExist(err))

	// already gone
	assert.NoError(t, svc.Remove(context.Background(), name))
	assert.NoError(t, svc.Remove(context.Background(), ""))
}

func TestCoverFilename(t *testing.T) {
	tests := []struct {
		in   string
		base string
	}{
		{"The Hobbit.PNG", "the_hobbit"},
		{"cover.jpg", "cover"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\Dune Messiah.webp`, "dune_messiah"},
		{"café (1).png", "caf_1"},
		{"", "cover"},
		{".png", "cover"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name := CoverFilename(tt.in)
			assert.Regexp(t, regexp.MustCompile("^"+regexp.QuoteMeta(tt.base)+`_[0-9a-f]{8}\.jpeg$`), name)
		})
	}

	assert.NotEqual(t, CoverFilename("a.png"), CoverFilename("a.png"))
}
