package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/amaumene/gomovies/internal/constants"
	apperrors "github.com/amaumene/gomovies/internal/errors"
	"github.com/amaumene/gomovies/internal/models"
	"github.com/amaumene/gomovies/pkg/httputil"
	"github.com/amaumene/gomovies/pkg/logger"
	"github.com/amaumene/gomovies/pkg/ratelimiter"
	"github.com/amaumene/gomovies/pkg/security"
)

var (
	ErrMissingToken  = errors.New("metadata API token not configured")
	ErrInvalidWindow = errors.New("trending window must be day or week")
)

// defaultAccountID is accepted by the favorite endpoint when the session,
// not the account, identifies the caller.
const defaultAccountID = "0"

// TMDBOptions configures the metadata API client.
type TMDBOptions struct {
	BaseURL       string
	Language      string
	AccountID     string
	DefaultRegion string
	DiscoverSort  string
	Timeout       time.Duration
	// TokenSource is consulted on every request.
	TokenSource func() string
	RateLimiter ratelimiter.RateLimiter
	Logger      logger.Logger
}

// TMDB is a thin client over the movie metadata REST API. It never retries
// and never caches.
type TMDB struct {
	baseURL       string
	language      string
	accountID     string
	defaultRegion string
	discoverSort  string
	tokenSource   func() string
	rateLimiter   ratelimiter.RateLimiter
	httpClient    *http.Client
	logger        logger.Logger
	validator     *security.TokenValidator
}

func NewTMDB(opts TMDBOptions) *TMDB {
	if opts.BaseURL == "" {
		opts.BaseURL = constants.DefaultAPIURL
	}
	if opts.Language == "" {
		opts.Language = constants.DefaultLanguage
	}
	if opts.AccountID == "" {
		opts.AccountID = defaultAccountID
	}
	if opts.DefaultRegion == "" {
		opts.DefaultRegion = constants.DefaultRegion
	}
	if opts.DiscoverSort == "" {
		opts.DiscoverSort = constants.DefaultDiscoverSort
	}
	if opts.TokenSource == nil {
		opts.TokenSource = func() string { return "" }
	}
	if opts.RateLimiter == nil {
		opts.RateLimiter = ratelimiter.NewTokenBucket(constants.APIRateBurst, constants.APIRateLimit)
	}
	if opts.Logger == nil {
		opts.Logger = logger.New()
	}

	t := &TMDB{
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		language:      opts.Language,
		accountID:     opts.AccountID,
		defaultRegion: strings.ToUpper(opts.DefaultRegion),
		discoverSort:  opts.DiscoverSort,
		tokenSource:   opts.TokenSource,
		rateLimiter:   opts.RateLimiter,
		logger:        opts.Logger,
		validator:     security.NewTokenValidator(),
	}
	t.httpClient = httputil.NewInterceptingClient(opts.Timeout, t.authorize)

	if token := t.validator.Sanitize(t.tokenSource()); !t.validator.Validate(token) {
		t.logger.Warnf("[TMDB] API token %s is missing or malformed", t.validator.Mask(token))
	}
	return t
}

// authorize is the request interceptor: every outbound call carries the
// bearer token and asks for JSON.
func (t *TMDB) authorize(req *http.Request) error {
	token := t.validator.Sanitize(t.tokenSource())
	if token == "" {
		t.logger.Errorf("[TMDB] request error: %v", ErrMissingToken)
		return ErrMissingToken
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	t.logger.Debugf("[TMDB] making request to: %s", req.URL.Path)
	return nil
}

// Search looks movies up by title.
func (t *TMDB) Search(ctx context.Context, query string, page int) (*models.MoviePage, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", pageParam(page))
	return t.fetchPage(ctx, "/search/movie", params)
}

// Recommendations lists movies recommended for movieID.
func (t *TMDB) Recommendations(ctx context.Context, movieID, page int) (*models.MoviePage, error) {
	if movieID <= 0 {
		return nil, apperrors.NewInvalidIDError(strconv.Itoa(movieID))
	}
	params := url.Values{}
	params.Set("page", pageParam(page))
	return t.fetchPage(ctx, fmt.Sprintf("/movie/%d/recommendations", movieID), params)
}

// WatchProviders returns the providers for one region. A region that is not
// listed yields the zero RegionProviders and no error.
func (t *TMDB) WatchProviders(ctx context.Context, movieID int, region string) (models.RegionProviders, error) {
	if movieID <= 0 {
		return models.RegionProviders{}, apperrors.NewInvalidIDError(strconv.Itoa(movieID))
	}
	region = t.Region(region)

	var resp models.WatchProvidersResponse
	if err := t.get(ctx, fmt.Sprintf("/movie/%d/watch/providers", movieID), nil, &resp); err != nil {
		return models.RegionProviders{}, err
	}
	return resp.Results[region], nil
}

// DiscoverByGenre lists movies of one genre ordered by sortBy.
func (t *TMDB) DiscoverByGenre(ctx context.Context, genreID int, sortBy string, page int) (*models.MoviePage, error) {
	if sortBy == "" {
		sortBy = t.discoverSort
	}
	params := url.Values{}
	params.Set("with_genres", strconv.Itoa(genreID))
	params.Set("sort_by", sortBy)
	params.Set("page", pageParam(page))
	return t.fetchPage(ctx, "/discover/movie", params)
}

// Trending lists trending movies for a day or week window.
func (t *TMDB) Trending(ctx context.Context, window string, page int) (*models.MoviePage, error) {
	if !ValidWindow(window) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidWindow, window)
	}
	params := url.Values{}
	params.Set("page", pageParam(page))
	return t.fetchPage(ctx, "/trending/movie/"+window, params)
}

// Upcoming lists movies about to be released.
func (t *TMDB) Upcoming(ctx context.Context, page int) (*models.MoviePage, error) {
	params := url.Values{}
	params.Set("page", pageParam(page))
	return t.fetchPage(ctx, "/movie/upcoming", params)
}

// MovieDetails fetches the full record for one movie.
func (t *TMDB) MovieDetails(ctx context.Context, movieID int) (*models.MovieDetail, error) {
	if movieID <= 0 {
		return nil, apperrors.NewInvalidIDError(strconv.Itoa(movieID))
	}
	var details models.MovieDetail
	if err := t.get(ctx, fmt.Sprintf("/movie/%d", movieID), nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// MarkAsFavorite sets the remote favorite flag for movieID within a guest session.
func (t *TMDB) MarkAsFavorite(ctx context.Context, sessionID string, movieID int, favorite bool) error {
	if sessionID == "" {
		return ErrNoGuestSession
	}
	if movieID <= 0 {
		return apperrors.NewInvalidIDError(strconv.Itoa(movieID))
	}

	params := url.Values{}
	params.Set("guest_session_id", sessionID)
	body := models.FavoriteRequest{
		MediaType: "movie",
		MediaID:   movieID,
		Favorite:  favorite,
	}

	var status models.StatusResponse
	path := fmt.Sprintf("/account/%s/favorite", url.PathEscape(t.accountID))
	if err := t.post(ctx, path, params, body, &status); err != nil {
		return err
	}
	t.logger.Debugf("[TMDB] favorite %d=%t: %s", movieID, favorite, status.StatusMessage)
	return nil
}

// Region resolves an empty region to the configured default.
func (t *TMDB) Region(region string) string {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		return t.defaultRegion
	}
	return region
}

// ValidWindow reports whether w is a supported trending window.
func ValidWindow(w string) bool {
	return w == constants.TrendingDay || w == constants.TrendingWeek
}
