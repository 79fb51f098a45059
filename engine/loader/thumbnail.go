package loader

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"
)

// Thumbnail scales img to the given width, keeping its aspect ratio.
//
// Parameters:
//   - img: the source image
//   - width: target width in pixels
//
// Returns:
//   - *image.NRGBA: the scaled image
func Thumbnail(img image.Image, width int) *image.NRGBA {
	b := img.Bounds()
	if width <= 0 || width > b.Dx() {
		width = b.Dx()
	}
	height := max(1, int(float64(b.Dy())*float64(width)/float64(b.Dx())+0.5))

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// WriteThumbnail writes a lossless WebP preview of a panorama.
//
// Parameters:
//   - path: output file; parent directories are created
//   - img: the panorama
//   - width: thumbnail width in pixels
//
// Returns:
//   - error: an error if the file cannot be written or encoded
func WriteThumbnail(path string, img image.Image, width int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("loader: thumbnail dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("loader: thumbnail create %s: %w", path, err)
	}
	defer f.Close()

	if err := nativewebp.Encode(f, Thumbnail(img, width), nil); err != nil {
		return fmt.Errorf("loader: thumbnail encode %s: %w", path, err)
	}
	return nil
}
