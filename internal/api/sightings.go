package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/tphakala/birdwalk/internal/datastore"
	"github.com/tphakala/birdwalk/internal/errors"
)

// initSightingRoutes registers the sighting CRUD routes
func (c *Controller) initSightingRoutes() {
	c.Group.GET("/walks/:id/sightings", c.HandleListSightings)
	c.Group.POST("/walks/:id/sightings", c.HandleCreateSighting)
	c.Group.GET("/sightings/:id", c.HandleGetSighting)
	c.Group.PATCH("/sightings/:id", c.HandleUpdateSighting)
	c.Group.DELETE("/sightings/:id", c.HandleDeleteSighting)
}

// SightingRequest is the write payload for sightings.
type SightingRequest struct {
	SpeciesCode     string   `json:"speciesCode"`
	CommonName      string   `json:"commonName"`
	ScientificName  string   `json:"scientificName"`
	Timestamp       string   `json:"timestamp"`
	ObservationType string   `json:"observationType"`
	Notes           string   `json:"notes"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
}

// HandleListSightings returns all sightings of a walk, newest first.
func (c *Controller) HandleListSightings(ctx echo.Context) error {
	walkID, err := parseID(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid walk ID", http.StatusBadRequest)
	}

	sightings, err := c.DS.GetSightingsByWalk(walkID)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list sightings", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, sightings)
}

// HandleCreateSighting records a sighting under a walk and returns the
// written row.
func (c *Controller) HandleCreateSighting(ctx echo.Context) error {
	walkID, err := parseID(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid walk ID", http.StatusBadRequest)
	}

	// The walk must exist and belong to the requesting user.
	walk, err := c.DS.GetWalk(walkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.HandleError(ctx, err, "Walk not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Failed to get walk", http.StatusInternalServerError)
	}
	if walk.UserID != userID(ctx) {
		err := errors.Newf("walk %d does not belong to user", walkID).
			Category(errors.CategoryValidation).
			Component("api").
			Build()
		return c.HandleError(ctx, err, "Walk not found", http.StatusNotFound)
	}

	var req SightingRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request format", http.StatusBadRequest)
	}
	if req.SpeciesCode == "" || req.CommonName == "" {
		err := errors.Newf("species code and common name are required").
			Category(errors.CategoryValidation).
			Component("api").
			Build()
		return c.HandleError(ctx, err, "Species code and common name are required", http.StatusBadRequest)
	}
	if req.ObservationType != datastore.ObservationSeen && req.ObservationType != datastore.ObservationHeard {
		err := errors.Newf("observation type must be %q or %q, got %q",
			datastore.ObservationSeen, datastore.ObservationHeard, req.ObservationType).
			Category(errors.CategoryValidation).
			Component("api").
			Build()
		return c.HandleError(ctx, err, "Invalid observation type", http.StatusBadRequest)
	}

	timestamp := req.Timestamp
	if timestamp == "" {
		timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	sighting := datastore.Sighting{
		WalkID:          walkID,
		SpeciesCode:     req.SpeciesCode,
		CommonName:      req.CommonName,
		ScientificName:  req.ScientificName,
		Timestamp:       timestamp,
		ObservationType: req.ObservationType,
		Notes:           req.Notes,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
	}

	if err := c.DS.SaveSighting(&sighting); err != nil {
		return c.HandleError(ctx, err, "Failed to create sighting", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusCreated, sighting)
}

// HandleGetSighting returns a single sighting.
func (c *Controller) HandleGetSighting(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid sighting ID", http.StatusBadRequest)
	}

	sighting, err := c.DS.GetSighting(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.HandleError(ctx, err, "Sighting not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Failed to get sighting", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, sighting)
}

// HandleUpdateSighting applies a partial update and returns the written row.
func (c *Controller) HandleUpdateSighting(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid sighting ID", http.StatusBadRequest)
	}

	var req SightingRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request format", http.StatusBadRequest)
	}

	if req.ObservationType != "" &&
		req.ObservationType != datastore.ObservationSeen &&
		req.ObservationType != datastore.ObservationHeard {
		err := errors.Newf("invalid observation type %q", req.ObservationType).
			Category(errors.CategoryValidation).
			Component("api").
			Build()
		return c.HandleError(ctx, err, "Invalid observation type", http.StatusBadRequest)
	}

	fields := map[string]any{}
	if req.SpeciesCode != "" {
		fields["species_code"] = req.SpeciesCode
	}
	if req.CommonName != "" {
		fields["common_name"] = req.CommonName
	}
	if req.ScientificName != "" {
		fields["scientific_name"] = req.ScientificName
	}
	if req.Timestamp != "" {
		fields["timestamp"] = req.Timestamp
	}
	if req.ObservationType != "" {
		fields["observation_type"] = req.ObservationType
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

	if err := c.DS.UpdateSighting(id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.HandleError(ctx, err, "Sighting not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Failed to update sighting", http.StatusInternalServerError)
	}

	sighting, err := c.DS.GetSighting(id)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get sighting", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, sighting)
}

// HandleDeleteSighting removes a sighting.
func (c *Controller) HandleDeleteSighting(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid sighting ID", http.StatusBadRequest)
	}

	if err := c.DS.DeleteSighting(id); err != nil {
		return c.HandleError(ctx, err, "Failed to delete sighting", http.StatusInternalServerError)
	}

	return ctx.NoContent(http.StatusNoContent)
}
