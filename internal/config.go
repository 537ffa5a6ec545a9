package internal

import (
	"fmt"

	"github.com/hbomb79/Rhea/internal/api"
	"github.com/hbomb79/Rhea/internal/extract"
	"github.com/hbomb79/Rhea/internal/ffmpeg"
	"github.com/hbomb79/Rhea/internal/scratch"
	"github.com/ilyakaznacheev/cleanenv"
)

// RheaConfig is the struct used to contain the user config supplied by
// file and/or environment. It is constructed once at startup and injected
// in to the services that need it; nothing reads ambient globals.
type RheaConfig struct {
	Rest      api.RestConfig `yaml:"api"`
	Extractor extract.Config `yaml:"extractor"`
	Scratch   scratch.Config `yaml:"scratch"`
	Ffprobe   ffmpeg.Config  `yaml:"ffprobe"`
}

// LoadFromFile loads a YAML configuration file in to this RheaConfig,
// applying environment variable overrides and defaults.
func (config *RheaConfig) LoadFromFile(configPath string) error {
	if err := cleanenv.ReadConfig(configPath, config); err != nil {
		return fmt.Errorf("failed to load configuration from '%s': %w", configPath, err)
	}

	return nil
}

// LoadFromEnv populates this RheaConfig from environment variables and
// defaults only; used when no config file is supplied.
func (config *RheaConfig) LoadFromEnv() error {
	if err := cleanenv.ReadEnv(config); err != nil {
		return fmt.Errorf("failed to load configuration from environment: %w", err)
	}

	return nil
}
