package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Mohammad-Afzal123/web-avatar/internal/assets"
	"github.com/Mohammad-Afzal123/web-avatar/internal/config"
	"github.com/Mohammad-Afzal123/web-avatar/internal/engine/animation"
	"github.com/Mohammad-Afzal123/web-avatar/internal/engine/model"
	"github.com/Mohammad-Afzal123/web-avatar/pkg/gltf"
)

func cmdInfo(w io.Writer, cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: avatartool info <model.glb>", errUsage)
	}

	data, path, err := assets.NewManager(cfg.Assets.SearchPaths...).Load(args[0])
	if err != nil {
		return err
	}
	doc, err := gltf.Parse(data, filepath.Dir(path))
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	m, err := model.Build(doc)
	if err != nil {
		return fmt.Errorf("build %s: %w", path, err)
	}

	size := m.Bounds.Size()
	fmt.Fprintf(w, "Model:      %s\n", path)
	if doc.Asset.Generator != "" {
		fmt.Fprintf(w, "Generator:  %s\n", doc.Asset.Generator)
	}
	fmt.Fprintf(w, "Meshes:     %d (%d with morph targets)\n", len(m.Meshes), len(m.MorphMeshes()))
	fmt.Fprintf(w, "Size:       %.3f x %.3f x %.3f\n", size.X, size.Y, size.Z)
	fmt.Fprintln(w)

	for _, mm := range m.Meshes {
		verts := 0
		for _, p := range mm.Primitives {
			verts += len(p.Positions)
		}
		fmt.Fprintf(w, "  %-24s node %-3d vertices %-6d targets %d", mm.Name, mm.Node, verts, len(mm.TargetNames))
		if len(mm.TargetNames) > 0 {
			fmt.Fprintf(w, " [%s]", strings.Join(mm.TargetNames, " "))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Animations: %d\n", len(doc.Animations))
	for i := range doc.Animations {
		clip, err := animation.ExtractClip(doc, i)
		if err != nil {
			fmt.Fprintf(w, "  [%d] error: %v\n", i, err)
			continue
		}
		fmt.Fprintf(w, "  [%d] %-20s duration %.3fs  weights tracks %d\n", i, clip.Name, clip.Duration, len(clip.Tracks))
	}
	return nil
}
