// Package texture decodes terrain textures and reduces them to flat colors.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"go.uber.org/zap"
	"golang.org/x/image/bmp"

	"github.com/Faultbox/elevmesh/internal/logger"
)

// Default texture file layout.
const (
	DefaultPattern = "terrain%d.jpg"
	DefaultMaxID   = 1023
)

// Palette maps a texture id to the average color of its image.
type Palette map[uint32]color.RGBA

// Color returns the color for id, or opaque black if the id is unknown.
func (p Palette) Color(id uint32) (color.RGBA, bool) {
	c, ok := p[id]
	if !ok {
		return color.RGBA{A: 255}, false
	}
	return c, true
}

// Decode decodes a texture image, choosing the decoder by the extension of
// path. JPEG (.jpg, .jpeg), PNG, BMP and TGA are supported.
func Decode(data []byte, path string) (image.Image, error) {
	r := bytes.NewReader(data)

	var img image.Image
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(r)
	case ".png":
		img, err = png.Decode(r)
	case ".bmp":
		img, err = bmp.Decode(r)
	case ".tga":
		// TGA has no magic number, so it is never sniffed.
		img, err = tga.Decode(r)
	default:
		return nil, fmt.Errorf("decode %s: unsupported texture extension %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// AverageColor returns the integer mean of the red, green and blue channels
// over every pixel. Alpha is ignored and the result is opaque.
func AverageColor(img image.Image) color.RGBA {
	b := img.Bounds()
	n := uint64(b.Dx()) * uint64(b.Dy())
	if n == 0 {
		return color.RGBA{A: 255}
	}

	var r, g, bl uint64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			r += uint64(c.R)
			g += uint64(c.G)
			bl += uint64(c.B)
		}
	}

	return color.RGBA{R: uint8(r / n), G: uint8(g / n), B: uint8(bl / n), A: 255}
}

// LoadPalette averages every texture file fmt.Sprintf(pattern, id) in dir
// for ids 0..maxID. Missing files are skipped; undecodable ones are logged
// and skipped.
func LoadPalette(dir, pattern string, maxID int) (Palette, error) {
	if !strings.Contains(pattern, "%d") {
		return nil, fmt.Errorf("texture pattern %q has no %%d verb", pattern)
	}

	palette := make(Palette)
	for id := 0; id <= maxID; id++ {
		path := filepath.Join(dir, fmt.Sprintf(pattern, id))

		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("reading texture %d: %w", id, err)
		}

		img, err := Decode(data, path)
		if err != nil {
			logger.Warn("skipping texture", zap.Int("id", id), zap.Error(err))
			continue
		}
		palette[uint32(id)] = AverageColor(img)
	}

	logger.Debug("texture palette loaded",
		zap.String("dir", dir),
		zap.Int("textures", len(palette)))

	return palette, nil
}
