package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/tphakala/birdwalk/internal/datastore"
	"github.com/tphakala/birdwalk/internal/errors"
)

// initWalkRoutes registers the walk CRUD routes
func (c *Controller) initWalkRoutes() {
	c.Group.GET("/walks", c.HandleListWalks)
	c.Group.POST("/walks", c.HandleCreateWalk)
	c.Group.GET("/walks/:id", c.HandleGetWalk)
	c.Group.PATCH("/walks/:id", c.HandleUpdateWalk)
	c.Group.DELETE("/walks/:id", c.HandleDeleteWalk)
}

// WalkRequest is the write payload for walks.
type WalkRequest struct {
	Name      string   `json:"name"`
	Date      string   `json:"date"`
	StartTime string   `json:"startTime"`
	Notes     string   `json:"notes"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// HandleListWalks returns all walks of the requesting user, newest first.
func (c *Controller) HandleListWalks(ctx echo.Context) error {
	walks, err := c.DS.GetWalks(userID(ctx))
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list walks", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, walks)
}

// HandleCreateWalk creates a new walk and returns the written row.
func (c *Controller) HandleCreateWalk(ctx echo.Context) error {
	var req WalkRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request format", http.StatusBadRequest)
	}
	if req.Name == "" || req.Date == "" {
		err := errors.Newf("walk name and date are required").
			Category(errors.CategoryValidation).
			Component("api").
			Build()
		return c.HandleError(ctx, err, "Walk name and date are required", http.StatusBadRequest)
	}

	walk := datastore.Walk{
		UserID:    userID(ctx),
		Name:      req.Name,
		Date:      req.Date,
		StartTime: req.StartTime,
		Notes:     req.Notes,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}

	if err := c.DS.SaveWalk(&walk); err != nil {
		return c.HandleError(ctx, err, "Failed to create walk", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusCreated, walk)
}

// HandleGetWalk returns a single walk with its sightings.
func (c *Controller) HandleGetWalk(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid walk ID", http.StatusBadRequest)
	}

	walk, err := c.DS.GetWalk(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.HandleError(ctx, err, "Walk not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Failed to get walk", http.StatusInternalServerError)
	}

	sightings, err := c.DS.GetSightingsByWalk(walk.ID)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get sightings", http.StatusInternalServerError)
	}
	walk.Sightings = sightings

	return ctx.JSON(http.StatusOK, walk)
}

// HandleUpdateWalk applies a partial update and returns the written row.
func (c *Controller) HandleUpdateWalk(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid walk ID", http.StatusBadRequest)
	}

	var req WalkRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request format", http.StatusBadRequest)
	}

	fields := map[string]any{}
	if req.Name != "" {
		fields["name"] = req.Name
	}
	if req.Date != "" {
		fields["date"] = req.Date
	}
	if req.StartTime != "" {
		fields["start_time"] = req.StartTime
	}
	if req.Notes != "" {
		fields["notes"] = req.Notes
	}
	if req.Latitude != nil {
		fields["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		fields["longitude"] = *req.Longitude
	}

	if err := c.DS.UpdateWalk(id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.HandleError(ctx, err, "Walk not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Failed to update walk", http.StatusInternalServerError)
	}

	walk, err := c.DS.GetWalk(id)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get walk", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, walk)
}

// HandleDeleteWalk removes a walk and all its sightings.
func (c *Controller) HandleDeleteWalk(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid walk ID", http.StatusBadRequest)
	}

	if err := c.DS.DeleteWalk(id); err != nil {
		return c.HandleError(ctx, err, "Failed to delete walk", http.StatusInternalServerError)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// parseID parses the :id path parameter.
func parseID(ctx echo.Context) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return 0, errors.Newf("invalid ID %q: %w", ctx.Param("id"), err).
			Category(errors.CategoryValidation).
			Component("api").
			Build()
	}
	return uint(id), nil
}
