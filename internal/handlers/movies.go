package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amaumene/gomovies/internal/constants"
	"github.com/amaumene/gomovies/internal/models"
)

type movieResponse struct {
	*models.MovieDetail
	ReleaseYear int  `json:"release_year,omitempty"`
	IsFavorite  bool `json:"is_favorite"`
}

func (h *Handler) handleMovie(c *gin.Context) {
	id, err := parseMovieID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	details, err := h.services.API.MovieDetails(c.Request.Context(), id)
	if err != nil {
		h.services.Logger.Errorf("[MovieHandler] failed to load movie %d: %v", id, err)
		c.JSON(http.StatusBadGateway, errorBody(constants.MsgMovieUnavailable))
		return
	}

	favorite, err := h.services.Favorites.IsFavorite(id)
	if err != nil {
		h.services.Logger.Errorf("[MovieHandler] could not read favorites for %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, errorBody(constants.MsgFavoritesUnavailable))
		return
	}

	c.JSON(http.StatusOK, movieResponse{
		MovieDetail: details,
		ReleaseYear: details.Summary().ReleaseYear(),
		IsFavorite:  favorite,
	})
}

func (h *Handler) handleRecommendations(c *gin.Context) {
	id, err := parseMovieID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	page, err := h.services.API.Recommendations(c.Request.Context(), id, parsePage(c))
	if err != nil {
		h.services.Logger.Errorf("[MovieHandler] recommendations for %d failed: %v", id, err)
		c.JSON(http.StatusBadGateway, errorBody(constants.MsgMovieUnavailable))
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) handleProviders(c *gin.Context) {
	id, err := parseMovieID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	region := h.services.API.Region(c.Query("region"))
	providers, err := h.services.API.WatchProviders(c.Request.Context(), id, region)
	if err != nil {
		h.services.Logger.Errorf("[MovieHandler] providers for %d/%s failed: %v", id, region, err)
		c.JSON(http.StatusBadGateway, errorBody(constants.MsgMovieUnavailable))
		return
	}
	c.JSON(http.StatusOK, providers.Merge(region))
}
