package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amaumene/gomovies/internal/models"
	"github.com/amaumene/gomovies/internal/services"
)

type homeResponse struct {
	Loading        bool                   `json:"loading"`
	Error          string                 `json:"error,omitempty"`
	TrendingWindow string                 `json:"trending_window"`
	Trending       []models.MovieSummary  `json:"trending"`
	Upcoming       []models.MovieSummary  `json:"upcoming"`
	Genres         []services.GenreBucket `json:"genres"`
	UpdatedAt      *time.Time             `json:"updated_at,omitempty"`
}

type trendingWindowRequest struct {
	Window string `json:"window" binding:"required"`
}

func (h *Handler) handleHome(c *gin.Context) {
	snap := h.services.Catalog.Snapshot()
	if snap.Error != "" {
		c.JSON(http.StatusServiceUnavailable, errorBody(snap.Error))
		return
	}

	resp := homeResponse{
		Loading:        snap.Loading,
		TrendingWindow: snap.TrendingWindow,
		Trending:       nonNil(snap.Trending),
		Upcoming:       nonNil(snap.Upcoming),
		Genres:         make([]services.GenreBucket, 0, len(snap.Genres)),
	}
	for _, g := range h.services.Catalog.Genres() {
		bucket, ok := snap.Genres[g.Key]
		if !ok {
			bucket = services.GenreBucket{Key: g.Key, Title: g.Title}
		}
		bucket.Movies = nonNil(bucket.Movies)
		resp.Genres = append(resp.Genres, bucket)
	}
	if !snap.UpdatedAt.IsZero() {
		resp.UpdatedAt = &snap.UpdatedAt
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) handleSetTrendingWindow(c *gin.Context) {
	var req trendingWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("window is required"))
		return
	}

	if err := h.services.Catalog.SetTrendingWindow(req.Window); err != nil {
		if errors.Is(err, services.ErrInvalidWindow) {
			c.JSON(http.StatusBadRequest, errorBody("window must be day or week"))
			return
		}
		h.services.Logger.Errorf("[CatalogHandler] failed to set trending window: %v", err)
		c.JSON(http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"trending_window": h.services.Catalog.TrendingWindow()})
}

func (h *Handler) handleSurprise(c *gin.Context) {
	movie, ok := h.services.Catalog.Surprise()
	if !ok {
		c.JSON(http.StatusNotFound, errorBody("no movies available"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": movie.ID, "movie": movie})
}

func nonNil(movies []models.MovieSummary) []models.MovieSummary {
	if movies == nil {
		return []models.MovieSummary{}
	}
	return movies
}
