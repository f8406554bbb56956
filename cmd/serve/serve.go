// Package serve implements the HTTP API server command.
package serve

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/tphakala/birdwalk/internal/api"
	"github.com/tphakala/birdwalk/internal/conf"
	"github.com/tphakala/birdwalk/internal/datastore"
	"github.com/tphakala/birdwalk/internal/imageprovider"
	"github.com/tphakala/birdwalk/internal/lifelist"
	"github.com/tphakala/birdwalk/internal/logging"
	"github.com/tphakala/birdwalk/internal/observability"
	"github.com/tphakala/birdwalk/internal/taxonomy"
)

// Command returns the serve subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the BirdWalk API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(settings)
		},
	}
	return cmd
}

func runServer(settings *conf.Settings) error {
	logger := logging.ForService("server")

	ds := datastore.New(settings)
	if ds == nil {
		return fmt.Errorf("no database backend enabled in configuration")
	}
	if err := ds.Open(); err != nil {
		return fmt.Errorf("failed to open datastore: %w", err)
	}
	defer func() {
		if err := ds.Close(); err != nil {
			logger.Error("failed to close datastore", "error", err)
		}
	}()

	metrics := observability.NewMetrics()

	taxonomyClient := taxonomy.NewClient(taxonomy.Config{
		APIKey:     settings.Taxonomy.APIKey,
		BaseURL:    settings.Taxonomy.BaseURL,
		Locale:     settings.Taxonomy.Locale,
		MaxResults: settings.Realtime.Search.MaxResults,
	}, metrics.Taxonomy)
	defer taxonomyClient.Close()

	var imageCache *imageprovider.BirdImageCache
	if settings.Realtime.Thumbnails.Enabled {
		provider := imageprovider.NewWikiMediaProvider(
			settings.Realtime.Thumbnails.UserAgent,
			settings.Realtime.Thumbnails.Size,
			settings.Version,
			imageprovider.WithDebug(settings.Realtime.Thumbnails.Debug),
		)
		imageCache = imageprovider.InitCache(provider, metrics.ImageProvider, ds, settings.Realtime.Thumbnails.Debug)
	} else {
		imageCache = imageprovider.InitCache(nil, metrics.ImageProvider, ds, false)
	}

	lifeListService := lifelist.NewService(ds, settings.Taxonomy.Locale)

	e := echo.New()
	e.HideBanner = true
	api.New(e, ds, settings, imageCache, taxonomyClient, lifeListService, metrics)

	address := settings.WebServer.Host + ":" + settings.WebServer.Port

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting API server", "address", address)
		if err := e.Start(address); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or server failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped unexpectedly: %w", err)
	case <-quit:
	}

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
