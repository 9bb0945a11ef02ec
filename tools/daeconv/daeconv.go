package main

import (
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/mogaika/dae_browser/config"
	"github.com/mogaika/dae_browser/dae/document"
	"github.com/mogaika/dae_browser/dae/geometry"
	"github.com/mogaika/dae_browser/utils"
	"github.com/mogaika/dae_browser/utils/gltfutils"
)

func main() {
	var in, out, configpath string
	var dump bool
	flag.StringVar(&in, "i", "", "Input .dae file")
	flag.StringVar(&out, "o", "", "Output .glb or .gltf file")
	flag.StringVar(&configpath, "config", "", "Path to yaml options")
	flag.BoolVar(&dump, "dump", false, "Dump decoded meshes to stdout")
	flag.Parse()

	if in == "" || (out == "" && !dump) {
		flag.PrintDefaults()
		os.Exit(2)
	}

	if configpath != "" {
		if err := config.Load(configpath); err != nil {
			log.Fatal(err)
		}
	}
	opts := config.Get()

	logger, err := utils.NewLogger(opts.LogLevel, opts.LogFile)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if err := convert(in, out, dump, opts, logger); err != nil {
		logger.Error("Conversion failed", zap.String("input", in), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func convert(in, out string, dump bool, opts config.Options, logger *zap.Logger) error {
	doc, err := document.LoadFile(in, logger)
	if err != nil {
		return err
	}

	// broken geometries are reported, the rest is still converted
	meshes, err := geometry.BuildAll(doc, opts.Parallel, logger)
	if err != nil {
		logger.Warn("Some geometries were skipped", zap.Error(err))
	}

	if dump {
		utils.DumpTo(os.Stdout, meshes)
	}
	if out == "" {
		return nil
	}

	gdoc, err := geometry.ExportGLTF(doc, meshes,
		geometry.ExportOptions{MaxInfluences: opts.MaxInfluences, FlipV: opts.FlipV}, logger)
	if err != nil {
		return err
	}
	if err := gltfutils.Save(gdoc, out); err != nil {
		return err
	}
	logger.Info("Saved", zap.String("output", out), zap.Int("meshes", len(gdoc.Meshes)), zap.Int("skins", len(gdoc.Skins)))
	return nil
}
