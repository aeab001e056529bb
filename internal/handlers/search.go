package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/amaumene/gomovies/internal/constants"
	"github.com/amaumene/gomovies/internal/models"
	"github.com/amaumene/gomovies/internal/services"
)

type typeaheadRequest struct {
	Query string `json:"query"`
}

func (h *Handler) handleSearch(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		c.JSON(http.StatusOK, models.MoviePage{Page: 1, Results: []models.MovieSummary{}})
		return
	}

	page, err := h.services.API.Search(c.Request.Context(), query, parsePage(c))
	if err != nil {
		h.services.Logger.Errorf("[SearchHandler] search %q failed: %v", query, err)
		c.JSON(http.StatusBadGateway, errorBody(constants.MsgSearchUnavailable))
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) handleTypeaheadUpdate(c *gin.Context) {
	session := guestSession(c)
	if session == "" {
		c.JSON(http.StatusBadRequest, errorBody("guest session required"))
		return
	}

	var req typeaheadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	searcher := h.services.Searches.Get(session)
	searcher.Update(req.Query)
	c.JSON(http.StatusAccepted, searcher.State())
}

func (h *Handler) handleTypeaheadState(c *gin.Context) {
	session := guestSession(c)
	if session == "" {
		c.JSON(http.StatusBadRequest, errorBody("guest session required"))
		return
	}

	searcher, ok := h.services.Searches.Lookup(session)
	if !ok {
		c.JSON(http.StatusOK, services.SearchState{
			Results:     []models.MovieSummary{},
			Suggestions: []models.MovieSummary{},
		})
		return
	}
	c.JSON(http.StatusOK, searcher.State())
}
