// Package api implements the HTTP API for walks, sightings, life lists and
// search.
package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tphakala/birdwalk/internal/conf"
	"github.com/tphakala/birdwalk/internal/datastore"
	"github.com/tphakala/birdwalk/internal/imageprovider"
	"github.com/tphakala/birdwalk/internal/lifelist"
	"github.com/tphakala/birdwalk/internal/logging"
	"github.com/tphakala/birdwalk/internal/observability"
	"github.com/tphakala/birdwalk/internal/taxonomy"
)

// defaultUserID is assumed when a request carries no X-User-ID header.
// Authentication flows are out of scope; the header is trusted as-is.
const defaultUserID = "default"

// Controller manages the API routes and handlers
type Controller struct {
	Echo           *echo.Echo
	Group          *echo.Group
	DS             datastore.Interface
	Settings       *conf.Settings
	BirdImageCache *imageprovider.BirdImageCache
	Taxonomy       *taxonomy.Client
	LifeList       *lifelist.Service

	metrics   *observability.Metrics
	apiLogger *slog.Logger
}

// New creates a new API controller and registers all routes.
func New(e *echo.Echo, ds datastore.Interface, settings *conf.Settings,
	birdImageCache *imageprovider.BirdImageCache, taxonomyClient *taxonomy.Client,
	lifeListService *lifelist.Service, metrics *observability.Metrics) *Controller {

	c := &Controller{
		Echo:           e,
		DS:             ds,
		Settings:       settings,
		BirdImageCache: birdImageCache,
		Taxonomy:       taxonomyClient,
		LifeList:       lifeListService,
		metrics:        metrics,
		apiLogger:      logging.ForService("api"),
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	c.Group = e.Group("/api/v1")

	c.initWalkRoutes()
	c.initSightingRoutes()
	c.initLiferRoutes()
	c.initSearchRoutes()
	c.initSpeciesRoutes()

	e.GET("/healthz", c.HandleHealth)
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(
			metrics.Registry, promhttp.HandlerOpts{})))
	}

	return c
}

// HandleHealth reports service liveness.
func (c *Controller) HandleHealth(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ErrorResponse is the JSON body returned for failed requests.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// HandleError logs the error and writes a JSON error response.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, status int) error {
	reqID := ctx.Response().Header().Get(echo.HeaderXRequestID)

	c.apiLogger.Error(message,
		"error", err,
		"path", ctx.Path(),
		"request_id", reqID,
		"status", status)

	return ctx.JSON(status, ErrorResponse{
		Error:     message,
		RequestID: reqID,
	})
}

// userID resolves the requesting user. The X-User-ID header wins; requests
// without it map to the single default user.
func userID(ctx echo.Context) string {
	if id := ctx.Request().Header.Get("X-User-ID"); id != "" {
		return id
	}
	return defaultUserID
}
