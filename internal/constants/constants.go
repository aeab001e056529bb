// Package constants defines application-wide constants and default values.
package constants

const (
	AppName    = "gomovies"
	AppVersion = "1.0.0"

	// Default configuration values
	DefaultPort             = "5000"
	DefaultLogLevel         = "info"
	DefaultAPIURL           = "https://api.themoviedb.org/3"
	DefaultLanguage         = "en-US"
	DefaultRegion           = "MX"
	DefaultDiscoverSort     = "vote_count.desc"
	DefaultTokenEnv         = "MOVIE_API_KEY"
	DefaultFavoritesBackend = "bolt"

	// Favorites storage key, one JSON array of movie ids
	FavoritesKey = "favoriteMovieIds"

	// Rate limiting for outbound API calls
	APIRateBurst = 40 // burst capacity
	APIRateLimit = 20 // requests per second

	// Generic messages surfaced to clients
	MsgCatalogUnavailable   = "Could not load movies"
	MsgMovieUnavailable     = "Failed to load movie"
	MsgSearchUnavailable    = "Search failed"
	MsgFavoriteFailed       = "Favorite toggle failed"
	MsgFavoritesUnavailable = "Could not load favorites"
)

// Trending windows
const (
	TrendingDay  = "day"
	TrendingWeek = "week"
)

// Genre is a discover bucket shown on the home feed.
type Genre struct {
	ID    int    `yaml:"id" json:"id"`
	Key   string `yaml:"key" json:"key"`
	Title string `yaml:"title" json:"title"`
}

// DefaultGenres is the fixed set of discover buckets on the home feed.
var DefaultGenres = []Genre{
	{ID: 28, Key: "action", Title: "Action Movies"},
	{ID: 35, Key: "comedy", Title: "Comedy Movies"},
	{ID: 18, Key: "drama", Title: "Drama Movies"},
	{ID: 878, Key: "scifi", Title: "Sci-Fi Movies"},
}
