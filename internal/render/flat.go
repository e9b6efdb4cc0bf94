// Package render composes top-down images of an elevation map.
package render

import (
	"image"
	"image/color"

	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/Faultbox/elevmesh/internal/engine/texture"
	"github.com/Faultbox/elevmesh/internal/logger"
	"github.com/Faultbox/elevmesh/pkg/elevmap"
)

// textureIDMask folds the 14-bit cell texture id onto the palette range.
const textureIDMask = 1023

// Flat renders one pixel per populated cell over the bounds of m. The image
// is mirrored on both axes, so the cell with the largest world x and z sits
// at the top-left corner. Pixels of missing pages stay opaque black.
// It returns nil if m has no pages.
func Flat(m *elevmap.Map, palette texture.Palette, waterLevel int32) *image.RGBA {
	minX, minZ, maxX, maxZ, ok := m.Bounds()
	if !ok {
		return nil
	}

	width := int(maxX-minX+1) * elevmap.PageSize
	height := int(maxZ-minZ+1) * elevmap.PageSize

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	missing := make(map[uint32]struct{})
	for _, pc := range m.Pages() {
		page := m.Page(pc.X, pc.Z)
		offX := int(pc.X-minX) * elevmap.PageSize
		offZ := int(pc.Z-minZ) * elevmap.PageSize

		for z := range elevmap.PageSize {
			for x := range elevmap.PageSize {
				cell, _ := page.Cell(uint8(x), uint8(z))

				tid := cell.TextureID & textureIDMask
				base, found := palette.Color(tid)
				if !found {
					missing[tid] = struct{}{}
				}

				px := width - 1 - (offX + x)
				pz := height - 1 - (offZ + z)
				img.SetRGBA(px, pz, ApplyDepth(base, cell.Height, waterLevel))
			}
		}
	}

	if len(missing) > 0 {
		logger.Debug("textures without palette color", zap.Int("count", len(missing)))
	}
	logger.Debug("flat image rendered",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("pages", m.PageCount()))

	return img
}
