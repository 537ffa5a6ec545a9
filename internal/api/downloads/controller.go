package downloads

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hbomb79/Rhea/internal/download"
	"github.com/hbomb79/Rhea/internal/extract"
	"github.com/hbomb79/Rhea/pkg/logger"
	"github.com/labstack/echo/v4"
)

var controllerLogger = logger.Get("DownloadsController")

type (
	// DownloadRequest is the JSON body accepted by every POST endpoint
	// of this controller.
	DownloadRequest struct {
		URL string `json:"url" validate:"required"`
	}

	// InfoDto is the response shape of the metadata lookup endpoint.
	InfoDto struct {
		Title    string `json:"title"`
		Duration int    `json:"duration"`
		Uploader string `json:"uploader"`
	}

	DownloadService interface {
		VideoInfo(ctx context.Context, url string) (*extract.VideoMetadata, error)
		FetchVideo(ctx context.Context, url string) (*download.Result, error)
		FetchAudio(ctx context.Context, url string) (*download.Result, error)
	}

	// Controller defines the routes for metadata lookup and the two
	// download endpoints, and maps the service's typed errors on to the
	// HTTP status taxonomy.
	Controller struct {
		validate *validator.Validate
		service  DownloadService
	}
)

func New(validate *validator.Validate, service DownloadService) *Controller {
	return &Controller{validate: validate, service: service}
}

// SetRoutes accepts the echo group rooted at the API prefix and registers
// this controller's endpoints on it.
func (controller *Controller) SetRoutes(eg *echo.Group) {
	eg.POST("/video-info", controller.videoInfo)
	eg.POST("/download/video", controller.downloadVideo)
	eg.POST("/download/audio", controller.downloadAudio)
}

// videoInfo returns the title, duration and uploader for the URL provided
// without materialising any file.
func (controller *Controller) videoInfo(ec echo.Context) error {
	url, err := controller.bindRequest(ec)
	if err != nil {
		return err
	}

	metadata, err := controller.service.VideoInfo(ec.Request().Context(), url)
	if err != nil {
		return mapInfoError(err)
	}

	return ec.JSON(http.StatusOK, InfoDto{Title: metadata.Title, Duration: metadata.Duration, Uploader: metadata.Uploader})
}

// downloadVideo streams the fetched MP4 artifact back to the caller as an
// attachment.
func (controller *Controller) downloadVideo(ec echo.Context) error {
	return controller.download(ec, controller.service.FetchVideo)
}

// downloadAudio streams the fetched MP3 artifact back to the caller as an
// attachment.
func (controller *Controller) downloadAudio(ec echo.Context) error {
	return controller.download(ec, controller.service.FetchAudio)
}

func (controller *Controller) download(ec echo.Context, fetch func(context.Context, string) (*download.Result, error)) error {
	url, err := controller.bindRequest(ec)
	if err != nil {
		return err
	}

	result, err := fetch(ec.Request().Context(), url)
	if err != nil {
		controllerLogger.Emit(logger.ERROR, "Download of %s failed: %v\n", url, err)
		return mapDownloadError(err)
	}

	ec.Response().Header().Set(echo.HeaderContentType, result.MimeType)
	return ec.Attachment(result.Path, result.Filename)
}

// bindRequest extracts and validates the request body shared by all
// endpoints, returning the trimmed URL.
func (controller *Controller) bindRequest(ec echo.Context) (string, error) {
	var request DownloadRequest
	if err := ec.Bind(&request); err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("JSON body illegal: %v", err))
	}

	if err := controller.validate.Struct(request); err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "URL is required")
	}

	return strings.TrimSpace(request.URL), nil
}

// mapDownloadError converts the typed errors raised by the download
// pipeline to the HTTP status taxonomy. Unclassified extraction failures
// pass the upstream message through; anything unrecognised gets a generic
// message with the detail kept server-side.
func mapDownloadError(err error) error {
	var validation *download.ValidationError
	var blocked *extract.BlockedError
	var conversion *extract.ConversionError
	var extraction *extract.ExtractionError

	switch {
	case errors.As(err, &validation):
		return echo.NewHTTPError(http.StatusBadRequest, validation.Error())
	case errors.As(err, &blocked):
		return echo.NewHTTPError(http.StatusForbidden, "the upstream site blocked the download; try a different video")
	case errors.As(err, &conversion):
		return echo.NewHTTPError(http.StatusInternalServerError, conversion.Error())
	case errors.As(err, &extraction):
		return echo.NewHTTPError(http.StatusInternalServerError, extraction.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "download failed unexpectedly")
	}
}

// mapInfoError is the metadata-mode variant: upstream failures (including
// blocks) are treated as a client-correctable 400, matching the behaviour
// callers of the info endpoint rely on for inline feedback.
func mapInfoError(err error) error {
	var validation *download.ValidationError
	var blocked *extract.BlockedError
	var extraction *extract.ExtractionError

	switch {
	case errors.As(err, &validation):
		return echo.NewHTTPError(http.StatusBadRequest, validation.Error())
	case errors.As(err, &blocked):
		return echo.NewHTTPError(http.StatusBadRequest, blocked.Error())
	case errors.As(err, &extraction):
		return echo.NewHTTPError(http.StatusBadRequest, extraction.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("failed to fetch video info: %v", err))
	}
}
