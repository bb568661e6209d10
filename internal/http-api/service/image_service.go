package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"path"
	"regexp"
	"strings"

	// decoders accepted for uploads
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"bookshelf/internal/storage"
)

const (
	CoverWidth   = 206
	CoverHeight  = 260
	CoverQuality = 80

	maxBaseNameLength = 50

	// MaxImagePixels bounds width*height of an upload before it is decoded.
	MaxImagePixels = 40_000_000
)

var unsafeNameChars = regexp.MustCompile(`[^a-z0-9_-]+`)

// Upload is an image file received from a client.
type Upload struct {
	Filename string
	Data     []byte
}

// ImageService normalizes cover images and keeps them in a FileStore.
type ImageService interface {
	// Store returns the generated filename of the written cover.
	Store(ctx context.Context, up Upload) (string, error)
	Remove(ctx context.Context, filename string) error
}

type imageService struct {
	store   storage.FileStore
	maxSize int64
}

func NewImageService(store storage.FileStore, maxSize int64) ImageService {
	return &imageService{store: store, maxSize: maxSize}
}

func (s *imageService) Store(ctx context.Context, up Upload) (string, error) {
	if len(up.Data) == 0 {
		return "", fmt.Errorf("%w: image is required", ErrInvalidInput)
	}
	if s.maxSize > 0 && int64(len(up.Data)) > s.maxSize {
		return "", ErrImageTooLarge
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(up.Data))
	if err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrImageProcessing, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return "", fmt.Errorf("%w: image is %dx%d, limit is %d pixels", ErrInvalidInput, cfg.Width, cfg.Height, MaxImagePixels)
	}

	src, _, err := image.Decode(bytes.NewReader(up.Data))
	if err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrImageProcessing, err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resizeCover(src), &jpeg.Options{Quality: CoverQuality}); err != nil {
		return "", fmt.Errorf("%w: encode: %v", ErrImageProcessing, err)
	}

	name := CoverFilename(up.Filename)
	if err := s.store.Save(ctx, name, buf.Bytes()); err != nil {
		return "", fmt.Errorf("%w: save: %v", ErrImageProcessing, err)
	}
	return name, nil
}

// Remove treats an already missing file as removed.
func (s *imageService) Remove(ctx context.Context, filename string) error {
	if filename == "" {
		return nil
	}
	err := s.store.Delete(ctx, filename)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return nil
}

// resizeCover crops the centre of src to the cover aspect ratio and scales
// it to CoverWidth x CoverHeight over a white background.
func resizeCover(src image.Image) image.Image {
	sb := src.Bounds()
	crop := sb
	// compare w/h against CoverWidth/CoverHeight without floats
	if sb.Dx()*CoverHeight > sb.Dy()*CoverWidth {
		w := sb.Dy() * CoverWidth / CoverHeight
		x0 := sb.Min.X + (sb.Dx()-w)/2
		crop = image.Rect(x0, sb.Min.Y, x0+w, sb.Max.Y)
	} else if sb.Dx()*CoverHeight < sb.Dy()*CoverWidth {
		h := sb.Dx() * CoverHeight / CoverWidth
		y0 := sb.Min.Y + (sb.Dy()-h)/2
		crop = image.Rect(sb.Min.X, y0, sb.Max.X, y0+h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, CoverWidth, CoverHeight))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Over, nil)
	return dst
}

// CoverFilename derives a storage name from the client's filename:
// lower-cased base name without extension, spaces as underscores, a random
// suffix and the .jpeg extension.
func CoverFilename(original string) string {
	base := path.Base(strings.ReplaceAll(original, `\`, "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.ToLower(strings.TrimSpace(base))
	base = strings.ReplaceAll(base, " ", "_")
	base = unsafeNameChars.ReplaceAllString(base, "")
	if len(base) > maxBaseNameLength {
		base = base[:maxBaseNameLength]
	}
	if base == "" {
		base = "cover"
	}
	return fmt.Sprintf("%s_%s.jpeg", base, strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
