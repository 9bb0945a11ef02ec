package main

import (
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/mogaika/dae_browser/config"
	"github.com/mogaika/dae_browser/dae/document"
	"github.com/mogaika/dae_browser/utils"
	"github.com/mogaika/dae_browser/web"
)

func main() {
	var addr, daepath, configpath string
	flag.StringVar(&addr, "i", ":8000", "Address of server")
	flag.StringVar(&daepath, "dae", "", "Path to COLLADA document")
	flag.StringVar(&configpath, "config", "", "Path to yaml options")
	flag.Parse()

	if daepath == "" {
		flag.PrintDefaults()
		return
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
	zap.ReplaceGlobals(logger)

	doc, err := document.LoadFile(daepath, logger)
	if err != nil {
		logger.Fatal("Failed to load document", zap.String("path", daepath), zap.Error(err))
	}
	logger.Info("Loaded document", zap.String("path", daepath),
		zap.Int("geometries", len(doc.Geometries)), zap.Int("skins", len(doc.Skins)))

	if err := web.StartServer(addr, doc, logger); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}
