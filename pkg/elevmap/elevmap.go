// Package elevmap rebuilds a paged terrain grid from elevdump entries.
package elevmap

import (
	"fmt"
	"math"
	"sort"

	"github.com/Faultbox/elevmesh/pkg/formats"
)

// PageSize is the number of cells along each axis of a page.
const PageSize = 128

// rotationMask selects the rotation bits of a raw texture id.
const rotationMask uint32 = 0xC000

// Rotation is the texture orientation of a cell in 90 degree steps.
type Rotation uint8

const (
	Rotation0 Rotation = iota
	Rotation90
	Rotation180
	Rotation270
)

// String returns the rotation in degrees.
func (r Rotation) String() string {
	return fmt.Sprintf("%d°", int(r)*90)
}

// Cell is one grid unit of a page.
type Cell struct {
	TextureID uint32 // rotation bits cleared
	Height    int32
	Rotation  Rotation
}

// Page is a dense PageSize x PageSize grid, indexed [z][x].
type Page struct {
	cells [PageSize][PageSize]Cell
}

// Cell returns the cell at local coordinates (x, z).
func (p *Page) Cell(x, z uint8) (Cell, bool) {
	if x >= PageSize || z >= PageSize {
		return Cell{}, false
	}
	return p.cells[z][x], true
}

func (p *Page) set(x, z int, c Cell) {
	p.cells[z][x] = c
}

// PageCoord addresses a page.
type PageCoord struct {
	X, Z int32
}

// Map owns every page touched by applied entries.
type Map struct {
	pages map[PageCoord]*Page
}

// New returns an empty map.
func New() *Map {
	return &Map{pages: make(map[PageCoord]*Page)}
}

// FromDump applies every entry of the dump in file order.
func FromDump(d *formats.Dump) *Map {
	m := New()
	for i := range d.Entries {
		m.Apply(d.Entries[i])
	}
	return m
}

// DecodeRotation splits a raw texture id into its rotation and the id with
// the rotation bits cleared.
func DecodeRotation(raw uint32) (Rotation, uint32) {
	var rot Rotation
	switch raw & rotationMask {
	case 0x8000:
		rot = Rotation0
	case 0x4000:
		rot = Rotation90
	case 0x0000:
		rot = Rotation180
	case 0xC000:
		rot = Rotation270
	default:
		panic(fmt.Sprintf("elevmap: impossible rotation bits %#x", raw&rotationMask))
	}
	return rot, raw &^ rotationMask
}

// Apply rasterizes an entry into its page. Cells are written over a
// (2*radius)^2 square starting at the node; cells past the page edge are
// dropped.
func (m *Map) Apply(e formats.Entry) {
	diameter := int(e.NodeRadius) * 2
	if diameter == 0 {
		return
	}

	var page *Page
	for dx := range diameter {
		for dz := range diameter {
			x := int(e.NodeX) + dx
			z := int(e.NodeZ) + dz
			if x >= PageSize || z >= PageSize {
				continue
			}

			index := dz*diameter + dx
			rot, textureID := DecodeRotation(valueAt(e.TextureIDs, index))

			if page == nil {
				page = m.pageForWrite(e.PageX, e.PageZ)
			}
			page.set(x, z, Cell{
				TextureID: textureID,
				Height:    valueAt(e.Heights, index),
				Rotation:  rot,
			})
		}
	}
}

// valueAt returns values[i], falling back to the first value and then to
// zero.
func valueAt[T uint32 | int32](values []T, i int) T {
	if i < len(values) {
		return values[i]
	}
	if len(values) > 0 {
		return values[0]
	}
	return 0
}

func (m *Map) pageForWrite(pageX, pageZ int32) *Page {
	key := PageCoord{pageX, pageZ}
	p, ok := m.pages[key]
	if !ok {
		p = &Page{}
		m.pages[key] = p
	}
	return p
}

// Page returns the page at the given coordinates, or nil if unpopulated.
func (m *Map) Page(pageX, pageZ int32) *Page {
	return m.pages[PageCoord{pageX, pageZ}]
}

// GetCell looks up a cell. It reports false when the page is unpopulated or
// the local coordinates are outside the page.
func (m *Map) GetCell(pageX, pageZ int32, x, z uint8) (Cell, bool) {
	p, ok := m.pages[PageCoord{pageX, pageZ}]
	if !ok {
		return Cell{}, false
	}
	return p.Cell(x, z)
}

// Neighbor looks up a cell by local coordinates that may be PageSize on
// either axis, meaning cell 0 of the next page on that axis.
func (m *Map) Neighbor(pageX, pageZ int32, x, z int) (Cell, bool) {
	if x == PageSize {
		pageX++
		x = 0
	}
	if z == PageSize {
		pageZ++
		z = 0
	}
	if x < 0 || z < 0 || x >= PageSize || z >= PageSize {
		return Cell{}, false
	}
	return m.GetCell(pageX, pageZ, uint8(x), uint8(z))
}

// PageCount returns the number of populated pages.
func (m *Map) PageCount() int {
	return len(m.pages)
}

// Pages returns the populated page coordinates ordered by z, then x.
func (m *Map) Pages() []PageCoord {
	coords := make([]PageCoord, 0, len(m.pages))
	for c := range m.pages {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].Z != coords[j].Z {
			return coords[i].Z < coords[j].Z
		}
		return coords[i].X < coords[j].X
	})
	return coords
}

// Bounds returns the inclusive range of populated page coordinates. On an
// empty map ok is false and the sentinel (MaxInt32, MaxInt32, MinInt32,
// MinInt32) is returned.
func (m *Map) Bounds() (minX, minZ, maxX, maxZ int32, ok bool) {
	minX, minZ = math.MaxInt32, math.MaxInt32
	maxX, maxZ = math.MinInt32, math.MinInt32

	for c := range m.pages {
		minX = min(minX, c.X)
		minZ = min(minZ, c.Z)
		maxX = max(maxX, c.X)
		maxZ = max(maxZ, c.Z)
	}
	return minX, minZ, maxX, maxZ, len(m.pages) > 0
}
