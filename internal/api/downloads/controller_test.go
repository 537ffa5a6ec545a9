package downloads_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/hbomb79/Rhea/internal/api"
	"github.com/hbomb79/Rhea/internal/api/downloads"
	"github.com/hbomb79/Rhea/internal/download"
	"github.com/hbomb79/Rhea/internal/extract"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	infoResult *extract.VideoMetadata
	infoErr    error

	fetchResult *download.Result
	fetchErr    error
}

func (s *stubService) VideoInfo(_ context.Context, _ string) (*extract.VideoMetadata, error) {
	return s.infoResult, s.infoErr
}

func (s *stubService) FetchVideo(_ context.Context, _ string) (*download.Result, error) {
	return s.fetchResult, s.fetchErr
}

func (s *stubService) FetchAudio(_ context.Context, _ string) (*download.Result, error) {
	return s.fetchResult, s.fetchErr
}

func newRouter(service downloads.DownloadService) *echo.Echo {
	ec := echo.New()
	ec.HTTPErrorHandler = api.JSONErrorHandler
	downloads.New(validator.New(), service).SetRoutes(ec.Group("/api"))
	return ec
}

func performRequest(router *echo.Echo, path string, body string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	request.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func errorBody(t *testing.T, recorder *httptest.ResponseRecorder) string {
	var body map[string]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Contains(t, body, "error", "failure responses must carry an 'error' field")
	return body["error"]
}

func Test_VideoInfo_ReturnsMetadata(t *testing.T) {
	t.Parallel()

	router := newRouter(&stubService{infoResult: &extract.VideoMetadata{Title: "A Video", Duration: 90, Uploader: "Someone"}})
	recorder := performRequest(router, "/api/video-info", `{"url":"https://youtu.be/dQw4w9WgXcQ"}`)

	assert.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "A Video", body["title"])
	assert.Equal(t, float64(90), body["duration"])
	assert.Equal(t, "Someone", body["uploader"])
}

func Test_Endpoints_RejectIllegalBody(t *testing.T) {
	t.Parallel()

	router := newRouter(&stubService{})
	for _, path := range []string{"/api/video-info", "/api/download/video", "/api/download/audio"} {
		recorder := performRequest(router, path, `{not json`)
		assert.Equal(t, http.StatusBadRequest, recorder.Code, "POST %s", path)
		assert.NotEmpty(t, errorBody(t, recorder))
	}
}

func Test_Endpoints_RejectMissingURL(t *testing.T) {
	t.Parallel()

	router := newRouter(&stubService{})
	recorder := performRequest(router, "/api/download/video", `{}`)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "URL is required", errorBody(t, recorder))
}

func Test_Download_ValidationErrorIsClientFault(t *testing.T) {
	t.Parallel()

	router := newRouter(&stubService{fetchErr: &download.ValidationError{}})
	recorder := performRequest(router, "/api/download/video", `{"url":"notaurl"}`)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func Test_Download_BlockedUpstreamIsForbidden(t *testing.T) {
	t.Parallel()

	router := newRouter(&stubService{fetchErr: &extract.BlockedError{}})
	recorder := performRequest(router, "/api/download/audio", `{"url":"https://youtu.be/dQw4w9WgXcQ"}`)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Contains(t, errorBody(t, recorder), "try a different video")
}

func Test_Download_ConversionFailureIsServerFault(t *testing.T) {
	t.Parallel()

	router := newRouter(&stubService{fetchErr: extract.NewConversionError("no output file")})
	recorder := performRequest(router, "/api/download/video", `{"url":"https://youtu.be/dQw4w9WgXcQ"}`)

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, errorBody(t, recorder), "ffmpeg")
}

func Test_VideoInfo_UpstreamFailuresAreClientCorrectable(t *testing.T) {
	t.Parallel()

	router := newRouter(&stubService{infoErr: &extract.ExtractionError{}})
	recorder := performRequest(router, "/api/video-info", `{"url":"https://youtu.be/dQw4w9WgXcQ"}`)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func Test_Download_StreamsArtifactAsAttachment(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "video_1700000000_abcd_clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("media bytes"), 0o644))

	router := newRouter(&stubService{fetchResult: &download.Result{Path: path, Filename: "clip.mp4", MimeType: "video/mp4"}})
	recorder := performRequest(router, "/api/download/video", `{"url":"https://youtu.be/dQw4w9WgXcQ"}`)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "media bytes", recorder.Body.String())
	assert.Contains(t, recorder.Header().Get(echo.HeaderContentDisposition), `filename="clip.mp4"`)
}
