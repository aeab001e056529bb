package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// ErrInvalidMovieID is returned for ids that are not positive integers.
var ErrInvalidMovieID = errors.New("invalid movie id")

// parseMovieID reads the :id path parameter. A trailing .json is tolerated.
func parseMovieID(c *gin.Context) (int, error) {
	raw := strings.TrimSuffix(c.Param("id"), ".json")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, ErrInvalidMovieID
	}
	return id, nil
}

// parsePage reads ?page=, defaulting to 1.
func parsePage(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func guestSession(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(GuestSessionHeader))
}

func errorBody(msg string) gin.H {
	return gin.H{"error": msg}
}
