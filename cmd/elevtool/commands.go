package main

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/elevmesh/internal/engine/terrain"
	"github.com/Faultbox/elevmesh/internal/engine/texture"
	"github.com/Faultbox/elevmesh/internal/export"
	"github.com/Faultbox/elevmesh/internal/logger"
	"github.com/Faultbox/elevmesh/internal/render"
	"github.com/Faultbox/elevmesh/pkg/elevmap"
	"github.com/Faultbox/elevmesh/pkg/formats"
)

// loadMap parses a dump file and rasterizes it.
func loadMap(path string) (*formats.Dump, *elevmap.Map, error) {
	start := time.Now()
	dump, err := formats.ParseDumpFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("parse dump: %w", err)
	}
	m := elevmap.FromDump(dump)

	logger.Info("dump loaded",
		zap.String("path", path),
		zap.Int("entries", len(dump.Entries)),
		zap.Int("pages", m.PageCount()),
		zap.Duration("elapsed", time.Since(start)))
	return dump, m, nil
}

func (a *app) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <dump>",
		Short: "Show dump statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dump, m, err := loadMap(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "File:      %s\n", args[0])
			fmt.Fprintf(out, "Entries:   %d\n", len(dump.Entries))
			fmt.Fprintf(out, "Textures:  %d\n", dump.TextureCount())
			fmt.Fprintf(out, "Pages:     %d\n", m.PageCount())
			if minX, minZ, maxX, maxZ, ok := m.Bounds(); ok {
				fmt.Fprintf(out, "Bounds:    x %d..%d, z %d..%d\n", minX, maxX, minZ, maxZ)
			}

			meshes := terrain.BuildMeshes(m)
			var vertices, triangles int
			for _, mesh := range meshes {
				vertices += len(mesh.Vertices)
				triangles += mesh.TriangleCount()
			}
			fmt.Fprintf(out, "Meshes:    %d\n", len(meshes))
			fmt.Fprintf(out, "Vertices:  %d\n", vertices)
			fmt.Fprintf(out, "Triangles: %d\n", triangles)
			return nil
		},
	}
}

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <dump>",
		Short: "Check that a dump parses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := formats.ParseDumpFile(args[0]); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", args[0], err)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", args[0])
			return nil
		},
	}
}

func (a *app) pngCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "png <dump> <output>",
		Short: "Render a flat top-down image (PNG or WebP)",
		Long: `Render one pixel per cell, colored with the average color of its
texture and shaded by height. Textures are read from --textures using
--texture-pattern. The format follows the output extension unless --format
is given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, m, err := loadMap(args[0])
			if err != nil {
				return err
			}

			palette, err := texture.LoadPalette(a.cfg.Textures.Dir, a.cfg.Textures.Pattern, a.cfg.Textures.MaxID)
			if err != nil {
				return fmt.Errorf("load textures: %w", err)
			}

			img := render.Flat(m, palette, a.cfg.Image.WaterLevel)
			if img == nil {
				return fmt.Errorf("dump %s has no pages", args[0])
			}

			if err := export.WriteImage(args[1], img, a.cfg.Image.Format, a.cfg.Image.Scale); err != nil {
				return fmt.Errorf("write image: %w", err)
			}
			logger.Info("terrain map saved",
				zap.String("path", args[1]),
				zap.Int("textures", len(palette)))
			fmt.Fprintf(cmd.OutOrStdout(), "Terrain map saved to %s\n", args[1])
			return nil
		},
	}
}

func (a *app) objCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "obj <dump> <output.obj>",
		Short: "Export per-texture meshes as Wavefront OBJ",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, m, err := loadMap(args[0])
			if err != nil {
				return err
			}

			start := time.Now()
			meshes := terrain.BuildMeshes(m)
			logger.Info("meshes built",
				zap.Int("meshes", len(meshes)),
				zap.Duration("elapsed", time.Since(start)))

			withMaterials := a.cfg.Mesh.MaterialLibrary
			if noMtl, _ := cmd.Flags().GetBool("no-mtl"); noMtl {
				withMaterials = false
			}

			mtlPath, err := export.WriteOBJFile(args[1], meshes, a.cfg.Textures.Pattern, withMaterials)
			if err != nil {
				return fmt.Errorf("write mesh: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Mesh saved to %s\n", args[1])
			if mtlPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Materials saved to %s\n", mtlPath)
			}
			return nil
		},
	}
	cmd.Flags().Bool("no-mtl", false, "Do not write a material library")
	return cmd
}

func (a *app) probeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe <dump> <world_x> <world_z>",
		Short: "Print the cell and height at a world position",
		Long: `Print the cell containing a world position and the bilinearly
interpolated height there. Use -- before negative coordinates.`,
		Example: "  elevtool probe world.txt -- -130.5 64",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			wx, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("world_x: %w", err)
			}
			wz, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("world_z: %w", err)
			}

			_, m, err := loadMap(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			cx, cz := int64(math.Floor(wx)), int64(math.Floor(wz))
			pageX, x := elevmap.WorldToPage(cx)
			pageZ, z := elevmap.WorldToPage(cz)
			fmt.Fprintf(out, "Page:      (%d, %d) cell (%d, %d)\n", pageX, pageZ, x, z)

			cell, ok := m.CellAtWorld(cx, cz)
			if !ok {
				fmt.Fprintln(out, "Cell:      not populated")
				return nil
			}
			fmt.Fprintf(out, "Texture:   %d\n", cell.TextureID)
			fmt.Fprintf(out, "Rotation:  %s\n", cell.Rotation)
			fmt.Fprintf(out, "Height:    %d\n", cell.Height)

			if h, ok := m.HeightAt(wx, wz); ok {
				fmt.Fprintf(out, "Sampled:   %.3f\n", h)
			} else {
				fmt.Fprintln(out, "Sampled:   n/a (edge of populated area)")
			}
			return nil
		},
	}
}
