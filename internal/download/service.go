package download

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/floostack/transcoder"
	"github.com/hbomb79/Rhea/internal/extract"
	"github.com/hbomb79/Rhea/internal/media"
	"github.com/hbomb79/Rhea/internal/scratch"
	"github.com/hbomb79/Rhea/pkg/logger"
)

var log = logger.Get("DownloadServ")

type (
	extractor interface {
		Metadata(ctx context.Context, url string) (*extract.VideoMetadata, error)
		DownloadVideo(ctx context.Context, url string, outputTemplate string) (*extract.Artifact, error)
		DownloadAudio(ctx context.Context, url string, outputTemplate string) (*extract.Artifact, error)
	}

	artifactProber interface {
		Probe(path string) (transcoder.Metadata, error)
	}

	scratchStore interface {
		AllocateTemplate(kind scratch.Kind, requestedAt time.Time) string
		EvictStale(maxAge time.Duration)
	}

	Config struct {
		ArtifactMaxAge time.Duration
	}

	// Result describes a completed download, ready to be streamed back to
	// the caller. The file at Path remains owned by the scratch store and
	// is reclaimed by a later eviction sweep, not by the caller.
	Result struct {
		Path     string
		Filename string
		MimeType string
	}

	// downloadService orchestrates the per-request pipeline: validate the
	// URL, sweep stale artifacts, allocate an output template, invoke the
	// extraction client, verify the artifact and name the outgoing file.
	// Each request is a single-shot, stateless transaction; any step's
	// failure short-circuits the pipeline.
	downloadService struct {
		config    Config
		extractor extractor
		prober    artifactProber
		scratch   scratchStore
	}
)

// ValidationError indicates the caller supplied a missing or malformed URL.
// It is always a client fault, never a server one.
type ValidationError struct{ reason string }

func (err *ValidationError) Error() string { return err.reason }

func New(config Config, extractor extractor, prober artifactProber, scratch scratchStore) *downloadService {
	return &downloadService{
		config:    config,
		extractor: extractor,
		prober:    prober,
		scratch:   scratch,
	}
}

// VideoInfo performs a metadata-only lookup for the URL provided. No
// eviction sweep runs and no scratch path is allocated; this mode must
// never materialise a file.
func (service *downloadService) VideoInfo(ctx context.Context, url string) (*extract.VideoMetadata, error) {
	if !media.ValidateURL(url) {
		return nil, &ValidationError{reason: fmt.Sprintf("'%s' is not a recognised video URL", url)}
	}

	return service.extractor.Metadata(ctx, url)
}

// FetchVideo runs the download pipeline for an MP4 video artifact.
func (service *downloadService) FetchVideo(ctx context.Context, url string) (*Result, error) {
	return service.fetch(ctx, url, scratch.KindVideo)
}

// FetchAudio runs the download pipeline for a 192kbps MP3 audio artifact.
func (service *downloadService) FetchAudio(ctx context.Context, url string) (*Result, error) {
	return service.fetch(ctx, url, scratch.KindAudio)
}

func (service *downloadService) fetch(ctx context.Context, url string, kind scratch.Kind) (*Result, error) {
	if !media.ValidateURL(url) {
		return nil, &ValidationError{reason: fmt.Sprintf("'%s' is not a recognised video URL", url)}
	}

	// Accumulation in the scratch dir is bounded by request volume: every
	// download request sweeps before allocating. The sweep only targets
	// files older than the configured age, so it can never race a
	// concurrent request's in-flight artifact.
	service.scratch.EvictStale(service.config.ArtifactMaxAge)
	outputTemplate := service.scratch.AllocateTemplate(kind, time.Now())

	var artifact *extract.Artifact
	var err error
	switch kind {
	case scratch.KindAudio:
		artifact, err = service.extractor.DownloadAudio(ctx, url, outputTemplate)
	default:
		artifact, err = service.extractor.DownloadVideo(ctx, url, outputTemplate)
	}
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(artifact.Path); err != nil {
		return nil, extract.NewConversionError(fmt.Sprintf("no output file exists at '%s' despite the extraction reporting success", artifact.Path))
	}
	if _, err := service.prober.Probe(artifact.Path); err != nil {
		return nil, extract.NewConversionError(fmt.Sprintf("output file '%s' is not a readable media container: %s", artifact.Path, err))
	}

	result := &Result{Path: artifact.Path}
	if kind == scratch.KindAudio {
		result.Filename = media.SanitizeTitle(artifact.Title) + ".mp3"
		result.MimeType = "audio/mpeg"
	} else {
		result.Filename = media.SanitizeTitle(artifact.Title) + ".mp4"
		result.MimeType = "video/mp4"
	}

	log.Emit(logger.SUCCESS, "Downloaded %s -> %s\n", url, result.Filename)
	return result, nil
}
