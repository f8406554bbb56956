package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/birdwalk/internal/errors"
)

// initSpeciesRoutes registers species autocomplete and image routes
func (c *Controller) initSpeciesRoutes() {
	c.Group.GET("/species/search", c.HandleSpeciesSearch)
	c.Group.GET("/species/image", c.HandleSpeciesImage)
}

// HandleSpeciesSearch serves taxonomy autocomplete. Failures upstream
// degrade to an empty list, never an error response.
func (c *Controller) HandleSpeciesSearch(ctx echo.Context) error {
	query := ctx.QueryParam("query")
	species := c.Taxonomy.SearchSpecies(ctx.Request().Context(), query)
	return ctx.JSON(http.StatusOK, species)
}

// SpeciesImageResponse carries a resolved species image. URL is null when no
// image could be found; that outcome is cached and will not be retried.
type SpeciesImageResponse struct {
	CommonName     string  `json:"commonName"`
	ScientificName string  `json:"scientificName,omitempty"`
	URL            *string `json:"url"`
}

// HandleSpeciesImage resolves a display image for a species.
func (c *Controller) HandleSpeciesImage(ctx echo.Context) error {
	commonName := ctx.QueryParam("common_name")
	scientificName := ctx.QueryParam("scientific_name")
	if commonName == "" && scientificName == "" {
		err := errors.Newf("common_name or scientific_name is required").
			Category(errors.CategoryValidation).
			Component("api").
			Build()
		return c.HandleError(ctx, err, "A species name is required", http.StatusBadRequest)
	}

	resp := SpeciesImageResponse{
		CommonName:     commonName,
		ScientificName: scientificName,
	}
	if image := c.BirdImageCache.Get(ctx.Request().Context(), commonName, scientificName); image != nil {
		resp.URL = &image.URL
	}

	return ctx.JSON(http.StatusOK, resp)
}
