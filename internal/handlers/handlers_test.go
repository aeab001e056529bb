package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/gomovies/internal/config"
	"github.com/amaumene/gomovies/internal/constants"
	"github.com/amaumene/gomovies/internal/database"
	apperrors "github.com/amaumene/gomovies/internal/errors"
	"github.com/amaumene/gomovies/internal/models"
	"github.com/amaumene/gomovies/internal/services"
	"github.com/amaumene/gomovies/pkg/logger"
)

type fakeAPI struct {
	mu          sync.Mutex
	failDetails bool
	failRemote  bool
	failCatalog bool
	marked      []string
}

func (f *fakeAPI) page(prefix string, n int) *models.MoviePage {
	results := make([]models.MovieSummary, n)
	for i := range results {
		results[i] = models.MovieSummary{ID: i + 1, Title: fmt.Sprintf("%s-%d", prefix, i+1)}
	}
	return &models.MoviePage{Page: 1, Results: results, TotalPages: 1, TotalResults: n}
}

func (f *fakeAPI) Trending(ctx context.Context, window string, page int) (*models.MoviePage, error) {
	return f.page("trending-"+window, 12), nil
}

func (f *fakeAPI) Upcoming(ctx context.Context, page int) (*models.MoviePage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCatalog {
		return nil, errors.New("upcoming down")
	}
	return f.page("upcoming", 12), nil
}

func (f *fakeAPI) DiscoverByGenre(ctx context.Context, genreID int, sortBy string, page int) (*models.MoviePage, error) {
	return f.page(fmt.Sprintf("genre-%d", genreID), 12), nil
}

func (f *fakeAPI) MarkAsFavorite(ctx context.Context, sessionID string, movieID int, favorite bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRemote {
		return errors.New("remote down")
	}
	f.marked = append(f.marked, fmt.Sprintf("%s:%d:%t", sessionID, movieID, favorite))
	return nil
}

func (f *fakeAPI) MovieDetails(ctx context.Context, movieID int) (*models.MovieDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDetails {
		return nil, errors.New("details down")
	}
	return &models.MovieDetail{ID: movieID, Title: fmt.Sprintf("movie-%d", movieID), ReleaseDate: "2010-07-16"}, nil
}

func (f *fakeAPI) Search(ctx context.Context, query string, page int) (*models.MoviePage, error) {
	return f.page(query, 7), nil
}

func (f *fakeAPI) Recommendations(ctx context.Context, movieID, page int) (*models.MoviePage, error) {
	return f.page(fmt.Sprintf("rec-%d", movieID), 3), nil
}

func (f *fakeAPI) WatchProviders(ctx context.Context, movieID int, region string) (models.RegionProviders, error) {
	if region != "MX" {
		return models.RegionProviders{}, nil
	}
	netflix := models.Provider{ProviderID: 8, ProviderName: "Netflix"}
	return models.RegionProviders{
		Link:     "https://example.test/mx",
		Flatrate: []models.Provider{netflix},
		Buy:      []models.Provider{netflix, {ProviderID: 2, ProviderName: "Apple TV"}},
	}, nil
}

func (f *fakeAPI) Region(region string) string {
	if region == "" {
		return "MX"
	}
	return region
}

type testEnv struct {
	router    *gin.Engine
	api       *fakeAPI
	container *services.Container
}

func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.NewBolt(filepath.Join(t.TempDir(), "favorites.db"))
	require.NoError(t, err)
	return setupTestRouterWithDB(t, db)
}

func setupTestRouterWithDB(t *testing.T, db database.Database) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api := &fakeAPI{}
	log := logger.Discard()
	container := &services.Container{
		API:       api,
		Catalog:   services.NewCatalog(api, services.CatalogOptions{RefreshInterval: time.Hour, Logger: log}),
		Favorites: services.NewFavoritesService(services.NewFavoritesRepository(db), api, api, log),
		Searches:  services.NewSearchSessions(api.Search, 20*time.Millisecond, log),
		DB:        db,
		Logger:    log,
	}
	t.Cleanup(func() { _ = container.Close() })

	r := gin.New()
	New(container, config.Default()).RegisterRoutes(r)
	return &testEnv{router: r, api: api, container: container}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	env := setupTestRouter(t)
	w := env.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), constants.AppName)
}

func TestHomeFeed(t *testing.T) {
	env := setupTestRouter(t)
	require.NoError(t, env.container.Catalog.Refresh(context.Background()))

	w := env.do(t, http.MethodGet, "/api/home", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp homeResponse
	decode(t, w, &resp)
	assert.False(t, resp.Loading)
	assert.Equal(t, "day", resp.TrendingWindow)
	assert.Len(t, resp.Trending, constants.MaxListItems)
	assert.Len(t, resp.Upcoming, constants.MaxListItems)
	require.Len(t, resp.Genres, len(constants.DefaultGenres))
	for i, g := range constants.DefaultGenres {
		assert.Equal(t, g.Key, resp.Genres[i].Key)
		assert.Equal(t, g.Title, resp.Genres[i].Title)
		assert.Len(t, resp.Genres[i].Movies, constants.MaxListItems)
	}
}

func TestHomeFeedFailureIsGeneric(t *testing.T) {
	env := setupTestRouter(t)
	env.api.failCatalog = true
	require.Error(t, env.container.Catalog.Refresh(context.Background()))

	w := env.do(t, http.MethodGet, "/api/home", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"error":"Could not load movies"}`, w.Body.String())
}

func TestSetTrendingWindow(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(t, http.MethodPut, "/api/home/trending-window", gin.H{"window": "week"}, nil)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "week", env.container.Catalog.TrendingWindow())

	w = env.do(t, http.MethodPut, "/api/home/trending-window", gin.H{"window": "year"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, "/api/home/trending-window", gin.H{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSurprise(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(t, http.MethodGet, "/api/surprise", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.NoError(t, env.container.Catalog.Refresh(context.Background()))
	w = env.do(t, http.MethodGet, "/api/surprise", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		ID int `json:"id"`
	}
	decode(t, w, &resp)
	assert.Positive(t, resp.ID)
}

func TestMovieDetail(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(t, http.MethodGet, "/api/movies/27205", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	decode(t, w, &resp)
	assert.Equal(t, "movie-27205", resp["title"])
	assert.Equal(t, false, resp["is_favorite"])
	assert.Equal(t, float64(2010), resp["release_year"])
}

func TestMovieDetailFailure(t *testing.T) {
	env := setupTestRouter(t)
	env.api.failDetails = true

	w := env.do(t, http.MethodGet, "/api/movies/27205", nil, nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"error":"Failed to load movie"}`, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/movies/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type unreadableDB struct{}

func (unreadableDB) GetFavoriteIDs() ([]int, error) {
	return nil, apperrors.NewStorageError("malformed favorites record", errors.New("unexpected end of JSON input"))
}

func (unreadableDB) SaveFavoriteIDs(ids []int) error { return nil }

func (unreadableDB) Close() error { return nil }

func TestMovieDetailStorageFailure(t *testing.T) {
	env := setupTestRouterWithDB(t, unreadableDB{})

	w := env.do(t, http.MethodGet, "/api/movies/550", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Could not load favorites"}`, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/favorites", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Could not load favorites"}`, w.Body.String())
}

func TestRecommendationsAndProviders(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(t, http.MethodGet, "/api/movies/603/recommendations?page=2", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page models.MoviePage
	decode(t, w, &page)
	assert.Len(t, page.Results, 3)

	w = env.do(t, http.MethodGet, "/api/movies/603/providers", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var set models.WatchProviderSet
	decode(t, w, &set)
	assert.Equal(t, "MX", set.Region)
	assert.Equal(t, "https://example.test/mx", set.Link)
	assert.Len(t, set.Providers, 2)

	w = env.do(t, http.MethodGet, "/api/movies/603/providers?region=FR", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &set)
	assert.Empty(t, set.Providers)
}

func TestDirectSearch(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(t, http.MethodGet, "/api/search?query=", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page models.MoviePage
	decode(t, w, &page)
	assert.Empty(t, page.Results)

	w = env.do(t, http.MethodGet, "/api/search?query=inception", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &page)
	assert.Len(t, page.Results, 7)
}

func TestTypeahead(t *testing.T) {
	env := setupTestRouter(t)
	session := map[string]string{GuestSessionHeader: "guest-1"}

	w := env.do(t, http.MethodPost, "/api/search/typeahead", gin.H{"query": "heat"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/search/typeahead", gin.H{"query": "heat"}, session)
	assert.Equal(t, http.StatusAccepted, w.Code)

	require.Eventually(t, func() bool {
		w := env.do(t, http.MethodGet, "/api/search/typeahead", nil, session)
		var st services.SearchState
		if json.Unmarshal(w.Body.Bytes(), &st) != nil {
			return false
		}
		return len(st.Results) == 7 && len(st.Suggestions) == constants.MaxSuggestions
	}, time.Second, 10*time.Millisecond)

	w = env.do(t, http.MethodGet, "/api/search/typeahead", nil, map[string]string{GuestSessionHeader: "other"})
	require.Equal(t, http.StatusOK, w.Code)
	var st services.SearchState
	decode(t, w, &st)
	assert.Empty(t, st.Results)
}

func TestToggleFavoriteFlow(t *testing.T) {
	env := setupTestRouter(t)
	session := map[string]string{GuestSessionHeader: "guest-1"}

	w := env.do(t, http.MethodPost, "/api/movies/550/favorite", gin.H{"favorite": true}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/movies/550/favorite", gin.H{}, session)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/movies/550/favorite", gin.H{"favorite": true}, session)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/favorites", nil, nil)
	assert.JSONEq(t, `{"favorite_ids":[550]}`, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/movies/550", nil, nil)
	var detail map[string]interface{}
	decode(t, w, &detail)
	assert.Equal(t, true, detail["is_favorite"])

	w = env.do(t, http.MethodGet, "/api/favorites/movies", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var movies struct {
		Movies []models.MovieDetail `json:"movies"`
	}
	decode(t, w, &movies)
	require.Len(t, movies.Movies, 1)
	assert.Equal(t, "movie-550", movies.Movies[0].Title)

	w = env.do(t, http.MethodPost, "/api/movies/550/favorite", gin.H{"favorite": false}, session)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/favorites", nil, nil)
	assert.JSONEq(t, `{"favorite_ids":[]}`, w.Body.String())
	assert.Equal(t, []string{"guest-1:550:true", "guest-1:550:false"}, env.api.marked)
}

func TestToggleFavoriteRemoteFailure(t *testing.T) {
	env := setupTestRouter(t)
	env.api.failRemote = true

	w := env.do(t, http.MethodPost, "/api/movies/550/favorite", gin.H{"favorite": true},
		map[string]string{GuestSessionHeader: "guest-1"})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = env.do(t, http.MethodGet, "/api/favorites", nil, nil)
	assert.JSONEq(t, `{"favorite_ids":[]}`, w.Body.String())
}
