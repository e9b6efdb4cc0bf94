package terrain

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/elevmesh/pkg/elevmap"
)

// Quantization factors for vertex welding.
const (
	positionQuantum = 1000.0
	uvQuantum       = 65535.0
)

// cornerUVs holds the texture coordinates of corners v0..v3 for each
// rotation. v0=(x,z) v1=(x+1,z) v2=(x,z+1) v3=(x+1,z+1).
var cornerUVs = [4][4][2]float32{
	elevmap.Rotation0:   {{1, 1}, {0, 1}, {1, 0}, {0, 0}},
	elevmap.Rotation90:  {{1, 0}, {1, 1}, {0, 0}, {0, 1}},
	elevmap.Rotation180: {{0, 0}, {1, 0}, {0, 1}, {1, 1}},
	elevmap.Rotation270: {{0, 1}, {0, 0}, {1, 1}, {1, 0}},
}

// RotatedUVs returns corner UVs for a rotation.
func RotatedUVs(r elevmap.Rotation) [4][2]float32 {
	return cornerUVs[r&3]
}

// BuildMeshes creates one welded mesh per texture id. Pages are visited in
// ascending z then x order, so output is deterministic. A quad is emitted
// for a cell only when its three neighbors (+x, +z, +x+z) exist; neighbors
// may come from adjacent pages.
func BuildMeshes(m *elevmap.Map) map[uint32]*Mesh {
	builders := make(map[uint32]*meshBuilder)

	for _, pc := range m.Pages() {
		page := m.Page(pc.X, pc.Z)
		for z := range elevmap.PageSize {
			for x := range elevmap.PageSize {
				cell, _ := page.Cell(uint8(x), uint8(z))

				b, ok := builders[cell.TextureID]
				if !ok {
					b = newMeshBuilder()
					builders[cell.TextureID] = b
				}

				cell1, ok := m.Neighbor(pc.X, pc.Z, x+1, z)
				if !ok {
					continue
				}
				cell2, ok := m.Neighbor(pc.X, pc.Z, x, z+1)
				if !ok {
					continue
				}
				cell3, ok := m.Neighbor(pc.X, pc.Z, x+1, z+1)
				if !ok {
					continue
				}

				worldX := float32(x) + float32(pc.X*elevmap.PageSize)
				worldZ := float32(z) + float32(pc.Z*elevmap.PageSize)

				b.addQuad(
					mgl32.Vec3{worldX, scaleHeight(cell.Height), worldZ},
					mgl32.Vec3{worldX + 1, scaleHeight(cell1.Height), worldZ},
					mgl32.Vec3{worldX, scaleHeight(cell2.Height), worldZ + 1},
					mgl32.Vec3{worldX + 1, scaleHeight(cell3.Height), worldZ + 1},
					RotatedUVs(cell.Rotation),
				)
			}
		}
	}

	meshes := make(map[uint32]*Mesh, len(builders))
	for id, b := range builders {
		meshes[id] = b.build()
	}
	return meshes
}

func scaleHeight(h int32) float32 {
	return float32(h) / elevmap.HeightScale
}

type vertexKey struct {
	position [3]int32
	uv       [2]uint16
}

func newVertexKey(p mgl32.Vec3, uv [2]float32) vertexKey {
	return vertexKey{
		position: [3]int32{
			int32(p[0] * positionQuantum),
			int32(p[1] * positionQuantum),
			int32(p[2] * positionQuantum),
		},
		uv: [2]uint16{uint16(uv[0] * uvQuantum), uint16(uv[1] * uvQuantum)},
	}
}

// meshBuilder accumulates the welded vertices of one texture.
type meshBuilder struct {
	vertices []Vertex
	indices  []uint32
	lookup   map[vertexKey]uint32
	bounds   Bounds
}

func newMeshBuilder() *meshBuilder {
	return &meshBuilder{
		lookup: make(map[vertexKey]uint32),
		bounds: Bounds{
			Min: [3]float32{1e10, 1e10, 1e10},
			Max: [3]float32{-1e10, -1e10, -1e10},
		},
	}
}

// quadNormal is the unit cross product of the quad diagonals. Flat quads
// face +Y.
func quadNormal(v0, v1, v2, v3 mgl32.Vec3) mgl32.Vec3 {
	return v0.Sub(v3).Cross(v2.Sub(v1)).Normalize()
}

func (b *meshBuilder) addQuad(v0, v1, v2, v3 mgl32.Vec3, uvs [4][2]float32) {
	normal := quadNormal(v0, v1, v2, v3)

	d03 := v0.Sub(v3)
	d12 := v1.Sub(v2)

	i0 := b.addVertex(v0, normal, uvs[0])
	i1 := b.addVertex(v1, normal, uvs[1])
	i2 := b.addVertex(v2, normal, uvs[2])
	i3 := b.addVertex(v3, normal, uvs[3])

	if d03.Dot(d03) >= d12.Dot(d12) {
		// Split along v0-v3
		b.indices = append(b.indices, i0, i3, i1, i0, i2, i3)
	} else {
		// Split along v1-v2
		b.indices = append(b.indices, i1, i2, i3, i1, i0, i2)
	}
}

// addVertex returns the index of an existing vertex with the same quantized
// position and UV, or appends a new one.
func (b *meshBuilder) addVertex(p, normal mgl32.Vec3, uv [2]float32) uint32 {
	key := newVertexKey(p, uv)
	if idx, ok := b.lookup[key]; ok {
		return idx
	}

	idx := uint32(len(b.vertices))
	b.vertices = append(b.vertices, Vertex{Position: p, Normal: normal, TexCoord: uv})
	b.lookup[key] = idx
	updateBounds(&b.bounds, p)
	return idx
}

func (b *meshBuilder) build() *Mesh {
	mesh := &Mesh{Vertices: b.vertices, Indices: b.indices}
	if len(b.vertices) > 0 {
		mesh.Bounds = b.bounds
	}
	return mesh
}

func updateBounds(b *Bounds, p [3]float32) {
	for i := range 3 {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
}
