package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hbomb79/Rhea/internal/api/downloads"
	"github.com/hbomb79/Rhea/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

var log = logger.Get("API")

type (
	RestConfig struct {
		HostAddr          string  `yaml:"host_address" env:"API_HOST_ADDR" env-default:"0.0.0.0:5000"`
		RequestsPerSecond float64 `yaml:"requests_per_second" env:"API_REQUESTS_PER_SECOND" env-default:"5"`
		RequestBurst      int     `yaml:"request_burst" env:"API_REQUEST_BURST" env-default:"10"`
	}

	controller interface {
		SetRoutes(*echo.Group)
	}

	// The RestGateway is a thin wrapper around the Echo HTTP router. Its
	// sole responsibility is to create the routes Rhea exposes and apply
	// the cross-cutting middleware (logging, recovery, CORS, per-client
	// rate limiting on the API group).
	RestGateway struct {
		config             *RestConfig
		ec                 *echo.Echo
		downloadController controller
	}
)

// NewRestGateway constructs the Echo router and populates it with the
// health/UI endpoints and the download controller's routes.
func NewRestGateway(config *RestConfig, downloadService downloads.DownloadService) *RestGateway {
	ec := echo.New()
	ec.OnAddRouteHandler = func(host string, route echo.Route, handler echo.HandlerFunc, middleware []echo.MiddlewareFunc) {
		log.Emit(logger.DEBUG, "Registered new route %s %s\n", route.Method, route.Path)
	}
	ec.HidePort = true
	ec.HideBanner = true
	ec.HTTPErrorHandler = JSONErrorHandler

	gateway := &RestGateway{
		config:             config,
		ec:                 ec,
		downloadController: downloads.New(validator.New(), downloadService),
	}

	ec.Use(middleware.Logger())
	ec.Use(middleware.Recover())
	ec.Use(middleware.CORS())
	ec.Pre(middleware.RemoveTrailingSlash())

	ec.GET("/health", health)
	ec.GET("/", index)

	api := ec.Group("/api", middleware.RateLimiter(
		middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(config.RequestsPerSecond),
			Burst:     config.RequestBurst,
			ExpiresIn: 3 * time.Minute,
		}),
	))
	gateway.downloadController.SetRoutes(api)

	return gateway
}

// Run starts the HTTP listener and blocks until the provided context is
// cancelled, or the listener fails.
func (gateway *RestGateway) Run(parentCtx context.Context) error {
	ctx, ctxCancel := context.WithCancelCause(parentCtx)
	defer ctxCancel(nil)
	wg := &sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := gateway.ec.Start(gateway.config.HostAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			ctxCancel(err)
		}
	}()

	go func(ec *echo.Echo) {
		<-ctx.Done()
		ec.Close()
	}(gateway.ec)

	wg.Wait()

	// Return cancellation cause if any, otherwise nil as parent context
	// cancellation is not an error case we should report.
	if cause := context.Cause(ctx); cause != ctx.Err() {
		return cause
	}

	return nil
}

// JSONErrorHandler renders every handler failure as the API's structured
// error body `{"error": "<message>"}` with the status the handler chose
// (500 for anything untyped).
func JSONErrorHandler(err error, ec echo.Context) {
	if ec.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "internal server error"

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		message = fmt.Sprintf("%v", httpErr.Message)
	}

	if ec.Request().Method == http.MethodHead {
		ec.NoContent(code)
		return
	}

	if err := ec.JSON(code, map[string]string{"error": message}); err != nil {
		log.Emit(logger.ERROR, "Failed to write error response: %v\n", err)
	}
}

// health is the fixed liveness payload used by deployment infrastructure
// for readiness probing. It has no side effects.
func health(ec echo.Context) error {
	return ec.JSON(http.StatusOK, map[string]string{"status": "ok", "message": "server is running"})
}

// index serves the self-contained single-page UI.
func index(ec echo.Context) error {
	return ec.HTML(http.StatusOK, indexPage)
}
