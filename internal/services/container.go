// Package services provides the movie catalog, favorites and search services
// and the container that wires them together.
package services

import (
	"context"

	"github.com/amaumene/gomovies/internal/database"
	"github.com/amaumene/gomovies/internal/models"
	"github.com/amaumene/gomovies/pkg/logger"
)

// Container holds all application services for dependency injection.
type Container struct {
	API       MovieAPI
	Catalog   *Catalog
	Favorites *FavoritesService
	Searches  *SearchSessions
	DB        database.Database
	Logger    logger.Logger
}

// MovieAPI defines the metadata API operations used by the HTTP layer.
type MovieAPI interface {
	CatalogSource
	FavoriteMarker
	MovieLookup
	Search(ctx context.Context, query string, page int) (*models.MoviePage, error)
	Recommendations(ctx context.Context, movieID, page int) (*models.MoviePage, error)
	WatchProviders(ctx context.Context, movieID int, region string) (models.RegionProviders, error)
	Region(region string) string
}

var _ MovieAPI = (*TMDB)(nil)

// Close stops background work and releases the favorites store.
func (c *Container) Close() error {
	if c.Catalog != nil {
		c.Catalog.Stop()
	}
	if c.Searches != nil {
		c.Searches.Close()
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
