package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/birdwalk/internal/lifelist"
)

// initLiferRoutes registers the life-list routes
func (c *Controller) initLiferRoutes() {
	c.Group.GET("/lifers", c.HandleGetLifers)
}

// LifersResponse wraps the life list with its applied sort.
type LifersResponse struct {
	Lifers []lifelist.Lifer `json:"lifers"`
	Total  int              `json:"total"`
	Sort   string           `json:"sort"`
}

// HandleGetLifers rebuilds and returns the requesting user's life list.
// The aggregation re-runs from the full sighting set on every request; a
// datastore failure returns the previously built list rather than an error.
func (c *Controller) HandleGetLifers(ctx echo.Context) error {
	sortParam := ctx.QueryParam("sort")
	spec, err := lifelist.ParseSortSpec(sortParam)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid sort option", http.StatusBadRequest)
	}

	lifers := c.LifeList.Refresh(userID(ctx), spec)

	if sortParam == "" {
		sortParam = "recent_desc"
	}
	return ctx.JSON(http.StatusOK, LifersResponse{
		Lifers: lifers,
		Total:  len(lifers),
		Sort:   sortParam,
	})
}
