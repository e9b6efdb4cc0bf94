package elevmap

import "math"

// HeightScale converts raw cell heights to world units.
const HeightScale = 1000.0

// WorldToPage splits a world cell coordinate into a page coordinate and a
// local coordinate in [0, PageSize).
func WorldToPage(w int64) (page int32, local uint8) {
	p := w / PageSize
	l := w % PageSize
	if l < 0 {
		p--
		l += PageSize
	}
	return int32(p), uint8(l)
}

// CellAtWorld returns the cell at world cell coordinates.
func (m *Map) CellAtWorld(wx, wz int64) (Cell, bool) {
	pageX, x := WorldToPage(wx)
	pageZ, z := WorldToPage(wz)
	return m.GetCell(pageX, pageZ, x, z)
}

// HeightAt returns the bilinearly interpolated height in world units at a
// world position. Cell (x, z) of page (px, pz) sits at world position
// (x + px*PageSize, z + pz*PageSize). It reports false if any of the four
// surrounding cells is unpopulated.
func (m *Map) HeightAt(wx, wz float64) (float64, bool) {
	x0 := math.Floor(wx)
	z0 := math.Floor(wz)
	fracX := wx - x0
	fracZ := wz - z0

	ix, iz := int64(x0), int64(z0)
	var h [4]float64
	for i, off := range [4][2]int64{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		c, ok := m.CellAtWorld(ix+off[0], iz+off[1])
		if !ok {
			return 0, false
		}
		h[i] = float64(c.Height) / HeightScale
	}

	// Near edge (lower z) then far edge, then between them.
	near := h[0]*(1-fracX) + h[1]*fracX
	far := h[2]*(1-fracX) + h[3]*fracX
	return near*(1-fracZ) + far*fracZ, true
}
