package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/elevmesh/internal/engine/terrain"
)

// MaterialName is the OBJ material name of a texture id.
func MaterialName(id uint32) string {
	return fmt.Sprintf("terrain%d", id)
}

// WriteOBJ writes meshes as a Wavefront OBJ document, one object per texture
// id in ascending order. Empty meshes are skipped. If mtlLib is not empty a
// mtllib line references it and each object selects its material.
func WriteOBJ(w io.Writer, meshes map[uint32]*terrain.Mesh, mtlLib string) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "# elevmesh terrain")
	if mtlLib != "" {
		fmt.Fprintf(bw, "mtllib %s\n", mtlLib)
	}

	// OBJ indices are 1-based and global across objects.
	offset := uint32(1)
	for _, id := range terrain.SortedTextureIDs(meshes) {
		mesh := meshes[id]
		if mesh.IsEmpty() {
			continue
		}

		fmt.Fprintf(bw, "o tex_%d\n", id)
		for _, v := range mesh.Vertices {
			fmt.Fprintf(bw, "v %g %g %g\n", v.Position[0], v.Position[1], v.Position[2])
		}
		for _, v := range mesh.Vertices {
			fmt.Fprintf(bw, "vt %g %g\n", v.TexCoord[0], v.TexCoord[1])
		}
		for _, v := range mesh.Vertices {
			fmt.Fprintf(bw, "vn %g %g %g\n", v.Normal[0], v.Normal[1], v.Normal[2])
		}
		if mtlLib != "" {
			fmt.Fprintf(bw, "usemtl %s\n", MaterialName(id))
		}
		for i := 0; i+2 < len(mesh.Indices); i += 3 {
			a := mesh.Indices[i] + offset
			b := mesh.Indices[i+1] + offset
			c := mesh.Indices[i+2] + offset
			fmt.Fprintf(bw, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
		}

		offset += uint32(len(mesh.Vertices))
	}

	return bw.Flush()
}

// WriteMTL writes one material per non-empty mesh. The diffuse map of each
// material is fmt.Sprintf(texturePattern, id).
func WriteMTL(w io.Writer, meshes map[uint32]*terrain.Mesh, texturePattern string) error {
	bw := bufio.NewWriter(w)

	for _, id := range terrain.SortedTextureIDs(meshes) {
		if meshes[id].IsEmpty() {
			continue
		}
		fmt.Fprintf(bw, "newmtl %s\n", MaterialName(id))
		fmt.Fprintln(bw, "Ka 1 1 1")
		fmt.Fprintln(bw, "Kd 1 1 1")
		fmt.Fprintln(bw, "Ks 0 0 0")
		fmt.Fprintln(bw, "d 1")
		fmt.Fprintln(bw, "illum 1")
		fmt.Fprintf(bw, "map_Kd %s\n\n", fmt.Sprintf(texturePattern, id))
	}

	return bw.Flush()
}

// WriteOBJFile writes meshes to path. With withMaterials set, a material
// library with the same base name and a .mtl extension is written next to
// it. It returns the path of the material library, or "".
func WriteOBJFile(path string, meshes map[uint32]*terrain.Mesh, texturePattern string, withMaterials bool) (string, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	var mtlPath, mtlLib string
	if withMaterials {
		mtlPath = strings.TrimSuffix(path, filepath.Ext(path)) + ".mtl"
		mtlLib = filepath.Base(mtlPath)
		if err := writeFile(mtlPath, func(w io.Writer) error {
			return WriteMTL(w, meshes, texturePattern)
		}); err != nil {
			return "", err
		}
	}

	if err := writeFile(path, func(w io.Writer) error {
		return WriteOBJ(w, meshes, mtlLib)
	}); err != nil {
		return "", err
	}
	return mtlPath, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := write(file); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return file.Close()
}
