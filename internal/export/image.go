// Package export writes terrain images and meshes to files.
package export

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"

	"github.com/Faultbox/elevmesh/internal/config"
)

// FormatFromPath returns the image format implied by the extension of path,
// or "" if it is not a supported one.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return config.FormatPNG
	case ".webp":
		return config.FormatWebP
	default:
		return ""
	}
}

// Scale enlarges img by an integer factor using nearest neighbor sampling,
// so every cell stays a crisp square. A factor of 1 or less returns img.
func Scale(img image.Image, factor int) image.Image {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// EncodeImage writes img to w in the given format.
func EncodeImage(w io.Writer, img image.Image, format string) error {
	switch format {
	case config.FormatPNG:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("encoding PNG: %w", err)
		}
	case config.FormatWebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("encoding WebP: %w", err)
		}
	default:
		return fmt.Errorf("unsupported image format %q", format)
	}
	return nil
}

// WriteImage saves img to path, upscaled by scale. An empty format is taken
// from the path extension.
func WriteImage(path string, img image.Image, format string, scale int) error {
	if format == "" {
		format = FormatFromPath(path)
		if format == "" {
			return fmt.Errorf("cannot infer image format from %q", path)
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := EncodeImage(file, Scale(img, scale), format); err != nil {
		return err
	}
	return file.Close()
}
