package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/birdwalk/internal/datastore"
	"github.com/tphakala/birdwalk/internal/errors"
	"github.com/tphakala/birdwalk/internal/search"
)

// initSearchRoutes registers the composite search route
func (c *Controller) initSearchRoutes() {
	c.Group.GET("/search", c.HandleSearch)
}

// SearchResponse is the composite search result list. Walk matches always
// precede species matches.
type SearchResponse struct {
	Query   string             `json:"query"`
	Results []SearchResultItem `json:"results"`
	Total   int                `json:"total"`
}

// SearchResultItem is the wire form of one search result variant.
type SearchResultItem struct {
	Type    search.Kind               `json:"type"`
	Walk    *datastore.WalkSummary    `json:"walk,omitempty"`
	Species *datastore.SpeciesSummary `json:"species,omitempty"`
}

// HandleSearch runs both sub-searches concurrently and returns the merged
// list. Queries shorter than the minimum return an empty list without
// touching the database.
func (c *Controller) HandleSearch(ctx echo.Context) error {
	query := ctx.QueryParam("query")
	user := userID(ctx)
	limit := c.Settings.Realtime.Search.MaxResults

	walkSearch := func(_ context.Context, q string) ([]datastore.WalkSummary, error) {
		return c.DS.SearchWalks(user, q, limit)
	}
	speciesSearch := func(_ context.Context, q string) ([]datastore.SpeciesSummary, error) {
		return c.DS.SearchSpecies(user, q, limit)
	}

	results, err := search.Fetch(ctx.Request().Context(), walkSearch, speciesSearch, query)
	if err != nil {
		if c.metrics != nil {
			c.metrics.Search.Errors.Inc()
		}
		return c.HandleError(ctx, err, "Search failed", http.StatusInternalServerError)
	}

	items := make([]SearchResultItem, 0, len(results))
	for _, result := range results {
		switch r := result.(type) {
		case search.WalkResult:
			items = append(items, SearchResultItem{Type: r.Type(), Walk: &r.WalkSummary})
		case search.SpeciesResult:
			items = append(items, SearchResultItem{Type: r.Type(), Species: &r.SpeciesSummary})
		default:
			err := errors.Newf("unhandled search result variant %T", result).
				Category(errors.CategorySearch).
				Component("api").
				Build()
			return c.HandleError(ctx, err, "Search failed", http.StatusInternalServerError)
		}
	}

	return ctx.JSON(http.StatusOK, SearchResponse{
		Query:   query,
		Results: items,
		Total:   len(items),
	})
}
