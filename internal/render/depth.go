package render

import (
	"image/color"
	"math"
)

// Depth shading constants, in raw height units.
const (
	MaxHeight      = 10000.0
	ContrastCenter = 2000.0
	ContrastWidth  = 1000.0
)

var (
	deepWater    = color.RGBA{R: 30, G: 30, B: 180, A: 255}
	shallowWater = color.RGBA{R: 150, G: 150, B: 255, A: 255}
)

// ApplyDepth shades a base color by cell height. Cells at or below
// waterLevel are drawn as a blue gradient from deep to shallow water and
// ignore c. Land keeps 60% of c and adds up to 40% more as the cell rises,
// with the steepest change around ContrastCenter.
func ApplyDepth(c color.RGBA, height, waterLevel int32) color.RGBA {
	h := float32(height)
	wl := float32(waterLevel)

	if height <= waterLevel {
		depth := float32(math.Sqrt(float64(h / wl)))
		blend := func(shallow, deep uint8, floor uint8) uint8 {
			v := saturate(float32(shallow)*depth + float32(deep)*(1-depth))
			return max(v, floor)
		}
		return color.RGBA{
			R: blend(shallowWater.R, deepWater.R, 30),
			G: blend(shallowWater.G, deepWater.G, 30),
			B: blend(shallowWater.B, deepWater.B, 180),
			A: 255,
		}
	}

	base := (h - wl) / (MaxHeight - wl)
	contrast := float32(1 / (1 + math.Exp(float64(-4*(h-ContrastCenter)/ContrastWidth))))
	depth := min(base*0.5+contrast*0.5, 1)

	shade := func(v uint8) uint8 {
		f := float32(v)
		return saturate(f*0.6 + f*0.4*depth)
	}
	return color.RGBA{R: shade(c.R), G: shade(c.G), B: shade(c.B), A: 255}
}

// saturate truncates f into [0, 255]. NaN maps to 0, which happens for
// negative heights over water or a zero water level.
func saturate(f float32) uint8 {
	switch {
	case math.IsNaN(float64(f)) || f <= 0:
		return 0
	case f >= 255:
		return 255
	default:
		return uint8(f)
	}
}
