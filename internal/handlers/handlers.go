// Package handlers implements the JSON HTTP API of the movie discovery service.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amaumene/gomovies/internal/config"
	"github.com/amaumene/gomovies/internal/constants"
	"github.com/amaumene/gomovies/internal/services"
)

// GuestSessionHeader identifies the caller's guest session.
const GuestSessionHeader = "X-Guest-Session"

// Handler handles HTTP requests for the movie API.
type Handler struct {
	services *services.Container
	config   *config.Config
}

// New creates a new Handler with the provided services and configuration.
func New(services *services.Container, config *config.Config) *Handler {
	return &Handler{
		services: services,
		config:   config,
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.handleHealth)

	api := r.Group("/api")

	// Home feed
	api.GET("/home", h.handleHome)
	api.PUT("/home/trending-window", h.handleSetTrendingWindow)
	api.GET("/surprise", h.handleSurprise)

	// Search
	api.GET("/search", h.handleSearch)
	api.POST("/search/typeahead", h.handleTypeaheadUpdate)
	api.GET("/search/typeahead", h.handleTypeaheadState)

	// Movie detail
	api.GET("/movies/:id", h.handleMovie)
	api.GET("/movies/:id/recommendations", h.handleRecommendations)
	api.GET("/movies/:id/providers", h.handleProviders)
	api.POST("/movies/:id/favorite", h.handleToggleFavorite)

	// Favorites
	api.GET("/favorites", h.handleFavorites)
	api.GET("/favorites/movies", h.handleFavoriteMovies)
}

func (h *Handler) handleHealth(c *gin.Context) {
	region := constants.DefaultRegion
	if h.config != nil {
		region = h.config.DefaultRegion
	}
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"name":           constants.AppName,
		"version":        constants.AppVersion,
		"default_region": region,
	})
}
