package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amaumene/gomovies/internal/constants"
	apperrors "github.com/amaumene/gomovies/internal/errors"
	"github.com/amaumene/gomovies/internal/services"
)

type favoriteRequest struct {
	Favorite *bool `json:"favorite" binding:"required"`
}

func (h *Handler) handleToggleFavorite(c *gin.Context) {
	id, err := parseMovieID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("favorite is required"))
		return
	}

	ids, err := h.services.Favorites.Toggle(c.Request.Context(), guestSession(c), id, *req.Favorite)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"id":           id,
			"is_favorite":  *req.Favorite,
			"favorite_ids": ids,
		})
	case errors.Is(err, services.ErrNoGuestSession):
		c.JSON(http.StatusUnauthorized, errorBody("guest session required"))
	case apperrors.IsType(err, apperrors.ErrorTypeStorage):
		c.JSON(http.StatusInternalServerError, errorBody(constants.MsgFavoriteFailed))
	default:
		c.JSON(http.StatusBadGateway, errorBody(constants.MsgFavoriteFailed))
	}
}

func (h *Handler) handleFavorites(c *gin.Context) {
	ids, err := h.services.Favorites.List()
	if err != nil {
		h.services.Logger.Errorf("[FavoritesHandler] failed to read favorites: %v", err)
		c.JSON(http.StatusInternalServerError, errorBody(constants.MsgFavoritesUnavailable))
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorite_ids": ids})
}

func (h *Handler) handleFavoriteMovies(c *gin.Context) {
	movies, err := h.services.Favorites.Movies(c.Request.Context())
	if err != nil {
		h.services.Logger.Errorf("[FavoritesHandler] failed to resolve favorites: %v", err)
		if apperrors.IsType(err, apperrors.ErrorTypeStorage) {
			c.JSON(http.StatusInternalServerError, errorBody(constants.MsgFavoritesUnavailable))
			return
		}
		c.JSON(http.StatusBadGateway, errorBody(constants.MsgMovieUnavailable))
		return
	}
	c.JSON(http.StatusOK, gin.H{"movies": movies})
}
