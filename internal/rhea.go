package internal

import (
	"context"
	"fmt"

	"github.com/hbomb79/Rhea/internal/api"
	"github.com/hbomb79/Rhea/internal/download"
	"github.com/hbomb79/Rhea/internal/extract"
	"github.com/hbomb79/Rhea/internal/ffmpeg"
	"github.com/hbomb79/Rhea/internal/scratch"
	"github.com/hbomb79/Rhea/pkg/logger"
)

var log = logger.Get("Core")

type (
	RunnableService interface {
		Run(context.Context) error
	}

	// Rhea represents the top-level object for the server, responsible
	// for constructing the scratch store, the extraction client and the
	// REST gateway, and wiring them together.
	rheaImpl struct {
		config      RheaConfig
		scratchDir  string
		restGateway RunnableService
	}
)

func New(config RheaConfig) (*rheaImpl, error) {
	log.Emit(logger.DEBUG, "Bootstrapping Rhea services using config: %#v\n", config)

	scratchDir := config.Scratch.OutputDir()
	store, err := scratch.New(scratchDir)
	if err != nil {
		return nil, fmt.Errorf("failed to construct scratch store: %w", err)
	}

	downloadService := download.New(
		download.Config{ArtifactMaxAge: config.Scratch.MaxArtifactAge},
		extract.NewClient(config.Extractor),
		ffmpeg.NewProber(config.Ffprobe),
		store,
	)

	return &rheaImpl{
		config:      config,
		scratchDir:  scratchDir,
		restGateway: api.NewRestGateway(&config.Rest, downloadService),
	}, nil
}

// Run brings up the REST gateway and blocks until the provided context is
// cancelled, or the gateway fails.
func (rhea *rheaImpl) Run(parent context.Context) error {
	log.Emit(logger.NEW, "Starting Rhea...\n")
	log.Emit(logger.INFO, "Scratch directory: %s\n", rhea.scratchDir)
	if rhea.config.Extractor.FfmpegLocation != "" {
		log.Emit(logger.INFO, "FFmpeg location: %s\n", rhea.config.Extractor.FfmpegLocation)
	} else {
		log.Emit(logger.INFO, "FFmpeg location: (search path)\n")
	}
	log.Emit(logger.INFO, "Listening on %s\n", rhea.config.Rest.HostAddr)

	err := rhea.restGateway.Run(parent)
	if err != nil {
		log.Emit(logger.FATAL, "REST gateway crashed: %v\n", err)
		return err
	}

	log.Emit(logger.STOP, "Rhea stopped\n")
	return nil
}
