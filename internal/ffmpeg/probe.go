package ffmpeg

import (
	"fmt"

	"github.com/floostack/transcoder"
	"github.com/floostack/transcoder/ffmpeg"
)

type (
	// Config locates the probing binary; the default relies on the
	// process search path.
	Config struct {
		FfprobeBinPath string `yaml:"ffprobe_bin" env:"FFPROBE_BIN" env-default:"ffprobe"`
	}

	// Prober inspects downloaded artifacts with ffprobe. A file the
	// probe cannot parse is treated as a failed conversion by callers.
	Prober struct {
		config Config
	}
)

func NewProber(config Config) *Prober {
	return &Prober{config: config}
}

// Probe extracts container metadata from the file at the path provided,
// returning an error if the file is not a readable media container.
func (prober *Prober) Probe(path string) (transcoder.Metadata, error) {
	cfg := ffmpeg.Config{FfprobeBinPath: prober.config.FfprobeBinPath}
	metadata, err := ffmpeg.New(&cfg).Input(path).GetMetadata()
	if err != nil {
		return nil, fmt.Errorf("failed to extract file metadata information using ffprobe: %s", err.Error())
	}

	return metadata, nil
}
