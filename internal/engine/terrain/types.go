// Package terrain builds per-texture terrain meshes from an elevation map.
package terrain

import "sort"

// Vertex represents a terrain mesh vertex with all attributes.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// Mesh is an indexed triangle list for a single texture.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Bounds   Bounds
}

// Bounds holds the axis-aligned bounding box of a mesh.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty reports whether the mesh has no triangles.
func (m *Mesh) IsEmpty() bool {
	return len(m.Indices) == 0
}

// Positions returns the vertex positions as a planar slice.
func (m *Mesh) Positions() [][3]float32 {
	out := make([][3]float32, len(m.Vertices))
	for i := range m.Vertices {
		out[i] = m.Vertices[i].Position
	}
	return out
}

// Normals returns the vertex normals as a planar slice.
func (m *Mesh) Normals() [][3]float32 {
	out := make([][3]float32, len(m.Vertices))
	for i := range m.Vertices {
		out[i] = m.Vertices[i].Normal
	}
	return out
}

// UVs returns the vertex texture coordinates as a planar slice.
func (m *Mesh) UVs() [][2]float32 {
	out := make([][2]float32, len(m.Vertices))
	for i := range m.Vertices {
		out[i] = m.Vertices[i].TexCoord
	}
	return out
}

// SortedTextureIDs returns the texture ids of meshes in ascending order.
func SortedTextureIDs(meshes map[uint32]*Mesh) []uint32 {
	ids := make([]uint32, 0, len(meshes))
	for id := range meshes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
