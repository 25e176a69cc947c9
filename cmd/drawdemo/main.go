// Command drawdemo builds an instanced molecular scene, renders it on the
// recording device, picks into it and writes the session to a file.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"

	"github.com/gogpu/drawing"
	"github.com/gogpu/drawing/geom"
	"github.com/gogpu/drawing/gpu"
	"github.com/gogpu/drawing/gpu/record"
	"github.com/gogpu/drawing/internal/config"
	"github.com/gogpu/drawing/internal/logging"
	"github.com/gogpu/drawing/shapes"
	"github.com/gogpu/drawing/snapshot"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML or TOML config file")
		atoms      = flag.Int("atoms", 0, "number of atoms (overrides config)")
		out        = flag.String("out", "", "session output file (overrides config)")
		format     = flag.String("format", "", "session format: msgpack or json (overrides config)")
		logLevel   = flag.String("log-level", "", "log level: debug, info, warn, error")
		logFile    = flag.String("log-file", "", "also log JSON to this rotated file")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "drawdemo:", err)
		os.Exit(2)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "atoms":
			cfg.Scene.Atoms = *atoms
		case "out":
			cfg.Output.Path = *out
		case "format":
			cfg.Output.Format = *format
		case "log-level":
			cfg.Logging.Level = *logLevel
		case "log-file":
			cfg.Logging.File = *logFile
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "drawdemo:", err)
		os.Exit(2)
	}

	logger, closeLog := logging.New(os.Stderr, logging.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	drawing.SetLogger(logger)

	err = run(cfg, logger)
	_ = closeLog()
	if err != nil {
		logger.Error("drawdemo failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	var redraw drawing.RedrawTracker
	root, err := buildScene(cfg.Scene)
	if err != nil {
		return err
	}
	root.SetRedrawCallback(redraw.Notify)

	dev := record.New()
	r := drawing.NewSceneRenderer(dev, drawing.WithShaderCompiler(lenientNaga(logger)))
	defer r.Release()
	defer root.Delete()

	view := geom.Translation(geom.V3(0, 0, -20))
	nodes := []*drawing.Node{root}
	frame := func(name string) error {
		c, n := redraw.Take()
		if err := r.DrawScene(dev, view, nodes); err != nil {
			return err
		}
		if err := r.DrawOutline(dev, view, nodes); err != nil {
			return err
		}
		st := r.TakeStats()
		logger.Info("frame drawn", "frame", name, "changes", c.String(), "notifications", n,
			"passes", st.Passes, "draws", st.Draws, "uploads", st.Uploads)
		return nil
	}

	if err := frame("first"); err != nil {
		return err
	}
	if err := frame("unchanged"); err != nil {
		return err
	}

	pick := root.FirstIntercept(geom.V3(0, 0, 10), geom.V3(0, 0, -10), nil)
	if pick == nil {
		logger.Warn("pick missed the scene")
	} else {
		logger.Info("picked", "hit", pick.Description(), "distance", pick.Distance)
		pick.Select(false)
	}
	for root.PromoteSelection() {
		logger.Info("selection promoted", "levels", root.PromotionLevels())
	}
	if root.DemoteSelection() {
		logger.Info("selection demoted", "levels", root.PromotionLevels())
	}
	if err := frame("selected"); err != nil {
		return err
	}

	buffers, shaders, textures := dev.Live()
	logger.Info("device resources", "buffers", buffers, "shaders", shaders, "textures", textures,
		"variants", r.Shaders().Len(), "triangles", root.NumberOfTriangles(true))

	return writeSession(root, cfg.Output)
}

func buildScene(sc config.SceneConfig) (*drawing.Node, error) {
	root := drawing.NewNode("scene")

	sphere, err := shapes.Sphere(sc.AtomRadius, sc.Cells)
	if err != nil {
		return nil, err
	}
	atoms := root.NewChild("atoms")
	if err := sphere.Apply(atoms); err != nil {
		return nil, err
	}
	sas := make([]geom.ShiftScale, sc.Atoms)
	colors := make([]drawing.Color, sc.Atoms)
	palette := []drawing.Color{{144, 144, 144, 255}, {255, 13, 13, 255}, {48, 80, 248, 255}}
	for i := range sas {
		x := float32(i%4) * sc.Spacing
		y := float32(i/4) * sc.Spacing
		sas[i] = geom.ShiftScale{Shift: geom.V3(x, y, 0), Scale: 1}
		colors[i] = palette[i%len(palette)]
	}
	if err := atoms.SetPositions(geom.NewShiftScalePlaces(sas)); err != nil {
		return nil, err
	}
	if err := atoms.SetColors(colors); err != nil {
		return nil, err
	}

	box, err := shapes.Box(geom.V3(1, 1, 1), sc.Cells)
	if err != nil {
		return nil, err
	}
	cell := root.NewChild("cell")
	if err := box.Apply(cell); err != nil {
		return nil, err
	}
	cell.SetPosition(geom.Translation(geom.V3(-3, 0, 0)))
	alpha := uint8(255)
	if sc.Transparent {
		alpha = 90
	}
	cell.SetColor(drawing.Color{200, 200, 60, alpha})

	label := root.NewChild("label")
	if err := shapes.Rectangle(2, 1).Apply(label); err != nil {
		return nil, err
	}
	tex, err := drawing.NewTexture(gradient(64, 32))
	if err != nil {
		return nil, err
	}
	label.SetTexture(tex)
	label.SetUseLighting(false)
	label.SetPosition(geom.Translation(geom.V3(0, -2, 0)))
	return root, nil
}

func gradient(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(255 * x / w), G: uint8(255 * y / h), B: 160, A: 255})
		}
	}
	return img
}

// lenientNaga compiles variants with naga and falls back to handing the
// WGSL to the device when naga rejects a feature.
func lenientNaga(logger *slog.Logger) gpu.Compiler {
	return gpu.CompilerFunc(func(label, src string) ([]byte, error) {
		spirv, err := gpu.NagaCompiler{}.Compile(label, src)
		if err != nil {
			logger.Warn("naga rejected variant, using WGSL", "variant", label, "err", err)
			return nil, nil
		}
		return spirv, nil
	})
}

func writeSession(root *drawing.Node, oc config.OutputConfig) error {
	f, err := snapshot.ParseFormat(oc.Format)
	if err != nil {
		return err
	}
	file, err := os.Create(oc.Path)
	if err != nil {
		return err
	}
	if err := snapshot.Encode(file, snapshot.New(root), f); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	drawing.Logger().Info("session written", "path", oc.Path, "format", f.String())
	return nil
}
