package extract

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hbomb79/Rhea/pkg/logger"
	"github.com/lrstanley/go-ytdlp"
)

var log = logger.Get("Extract")

type (
	// Config carries the environment-specific knobs for the extraction
	// tool. An empty FfmpegLocation means the binary is expected to be
	// found on the process search path.
	Config struct {
		FfmpegLocation string        `yaml:"ffmpeg_location" env:"FFMPEG_LOCATION"`
		SocketTimeout  time.Duration `yaml:"socket_timeout" env:"EXTRACT_SOCKET_TIMEOUT" env-default:"30s"`
	}

	// VideoMetadata is the result of a metadata-only extraction; it is
	// never written to disk.
	VideoMetadata struct {
		Title    string
		Duration int
		Uploader string
	}

	// Artifact describes a file the extraction tool materialised on
	// scratch storage, along with the raw (unsanitised) extracted title.
	Artifact struct {
		Path  string
		Title string
	}

	// Client is a thin adapter around the external extraction tool. It
	// translates per-mode option sets to the tool's flag surface and maps
	// its failures in to the typed error taxonomy.
	Client struct {
		config Config
	}
)

// The upstream site blocks anonymous-looking clients; a realistic browser
// identity and referrer keep the extraction requests from being refused.
const (
	browserIdentity = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	upstreamReferer = "https://www.youtube.com/"

	videoFormatSelector = "best[ext=mp4]/best"
	audioFormatSelector = "bestaudio/best"
	audioTargetBitrate  = "192K"
)

func NewClient(config Config) *Client {
	return &Client{config: config}
}

// newCommand constructs the base command shared by every operating mode:
// bounded socket timeout, relaxed certificate checking (the tool negotiates
// the target sites' certificate chains itself) and the browser identity.
func (client *Client) newCommand() *ytdlp.Command {
	cmd := ytdlp.New().
		SocketTimeout(client.config.SocketTimeout.Seconds()).
		NoCheckCertificates().
		UserAgent(browserIdentity).
		Referer(upstreamReferer).
		NoPlaylist()

	if client.config.FfmpegLocation != "" {
		cmd = cmd.FFmpegLocation(client.config.FfmpegLocation)
	}

	return cmd
}

// Metadata performs a metadata-only extraction for the URL provided. No
// file output is configured, so nothing is materialised on disk.
func (client *Client) Metadata(ctx context.Context, url string) (*VideoMetadata, error) {
	cmd := client.newCommand().
		SkipDownload().
		DumpSingleJSON()

	result, err := cmd.Run(ctx, url)
	if err != nil {
		return nil, classifyRunError(err)
	}

	infos, err := result.GetExtractedInfo()
	if err != nil || len(infos) == 0 {
		return nil, &ExtractionError{reason: "extraction tool returned no parseable metadata"}
	}

	info := infos[0]
	metadata := &VideoMetadata{Title: "Unknown", Uploader: "Unknown"}
	if info.Title != nil {
		metadata.Title = *info.Title
	}
	if info.Duration != nil {
		metadata.Duration = int(*info.Duration)
	}
	if info.Uploader != nil {
		metadata.Uploader = *info.Uploader
	}

	return metadata, nil
}

// DownloadVideo fetches the best stream already in - or convertible to -
// the MP4 container, remuxing/merging when the chosen audio and video
// streams differ, and materialises it using the output template provided.
func (client *Client) DownloadVideo(ctx context.Context, url string, outputTemplate string) (*Artifact, error) {
	log.Emit(logger.INFO, "Downloading video from %s\n", url)

	cmd := client.newCommand().
		Format(videoFormatSelector).
		MergeOutputFormat("mp4").
		Output(outputTemplate).
		PrintJSON()

	result, err := cmd.Run(ctx, url)
	if err != nil {
		return nil, classifyRunError(err)
	}

	return resolveArtifact(result, "mp4")
}

// DownloadAudio fetches the best available audio stream and instructs the
// tool's post-processing hooks to transcode it to a constant 192kbps MP3,
// materialised using the output template provided.
func (client *Client) DownloadAudio(ctx context.Context, url string, outputTemplate string) (*Artifact, error) {
	log.Emit(logger.INFO, "Downloading audio from %s\n", url)

	cmd := client.newCommand().
		Format(audioFormatSelector).
		ExtractAudio().
		AudioFormat("mp3").
		AudioQuality(audioTargetBitrate).
		Output(outputTemplate).
		PrintJSON()

	result, err := cmd.Run(ctx, url)
	if err != nil {
		return nil, classifyRunError(err)
	}

	return resolveArtifact(result, "mp3")
}

// resolveArtifact recovers the real on-disk path of a completed download.
// The tool reports the filename it wrote *before* post-processing; when the
// post-processing step replaced the container, the reported extension is
// stale, so the path carrying the target extension is preferred when it
// exists on disk.
func resolveArtifact(result *ytdlp.Result, targetExt string) (*Artifact, error) {
	infos, err := result.GetExtractedInfo()
	if err != nil || len(infos) == 0 {
		return nil, &ExtractionError{reason: "extraction tool returned no parseable download info"}
	}

	info := infos[0]
	title := ""
	if info.Title != nil {
		title = *info.Title
	}

	reported := ""
	if info.Filename != nil {
		reported = *info.Filename
	}
	if reported == "" {
		return nil, &ConversionError{reason: "extraction tool reported success but named no output file"}
	}

	converted := strings.TrimSuffix(reported, filepath.Ext(reported)) + "." + targetExt
	if _, err := os.Stat(converted); err == nil {
		return &Artifact{Path: converted, Title: title}, nil
	}

	return &Artifact{Path: reported, Title: title}, nil
}
