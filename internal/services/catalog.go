package services

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/amaumene/gomovies/internal/constants"
	"github.com/amaumene/gomovies/internal/models"
	"github.com/amaumene/gomovies/pkg/logger"
)

// CatalogSource is the part of the metadata API the home feed is built from.
type CatalogSource interface {
	Trending(ctx context.Context, window string, page int) (*models.MoviePage, error)
	Upcoming(ctx context.Context, page int) (*models.MoviePage, error)
	DiscoverByGenre(ctx context.Context, genreID int, sortBy string, page int) (*models.MoviePage, error)
}

// GenreBucket is one discover list of the home feed.
type GenreBucket struct {
	Key    string                `json:"key"`
	Title  string                `json:"title"`
	Movies []models.MovieSummary `json:"movies"`
}

// Snapshot is a consistent view of the home feed. Lists are never mutated
// after publication.
type Snapshot struct {
	Loading        bool
	Error          string
	TrendingWindow string
	Trending       []models.MovieSummary
	Upcoming       []models.MovieSummary
	Genres         map[string]GenreBucket
	UpdatedAt      time.Time
}

type feed struct {
	trending  []models.MovieSummary
	upcoming  []models.MovieSummary
	genres    map[string]GenreBucket
	updatedAt time.Time
}

// CatalogOptions configures a Catalog.
type CatalogOptions struct {
	Genres          []constants.Genre
	DiscoverSort    string
	RefreshInterval time.Duration
	TrendingWindow  string
	Logger          logger.Logger
}

// Catalog aggregates trending, upcoming and per-genre lists for the home feed
// and keeps them fresh.
type Catalog struct {
	source   CatalogSource
	genres   []constants.Genre
	sortBy   string
	interval time.Duration
	logger   logger.Logger

	mu      sync.RWMutex
	current feed
	window  string
	loading bool
	errMsg  string

	refreshMu sync.Mutex
	windowCh  chan struct{}

	runMu    sync.Mutex
	running  bool
	stopChan chan struct{}
	done     chan struct{}

	pick func(n int) int
}

func NewCatalog(source CatalogSource, opts CatalogOptions) *Catalog {
	if len(opts.Genres) == 0 {
		opts.Genres = constants.DefaultGenres
	}
	if opts.DiscoverSort == "" {
		opts.DiscoverSort = constants.DefaultDiscoverSort
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = constants.RefreshInterval
	}
	if !ValidWindow(opts.TrendingWindow) {
		opts.TrendingWindow = constants.TrendingDay
	}
	if opts.Logger == nil {
		opts.Logger = logger.New()
	}

	return &Catalog{
		source:   source,
		genres:   opts.Genres,
		sortBy:   opts.DiscoverSort,
		interval: opts.RefreshInterval,
		logger:   opts.Logger,
		current:  feed{genres: map[string]GenreBucket{}},
		window:   opts.TrendingWindow,
		loading:  true,
		windowCh: make(chan struct{}, 1),
		pick:     rand.Intn,
	}
}

// Genres returns the configured buckets in display order.
func (c *Catalog) Genres() []constants.Genre {
	return c.genres
}

// Snapshot returns the currently published feed.
func (c *Catalog) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		Loading:        c.loading,
		Error:          c.errMsg,
		TrendingWindow: c.window,
		Trending:       c.current.trending,
		Upcoming:       c.current.upcoming,
		Genres:         c.current.genres,
		UpdatedAt:      c.current.updatedAt,
	}
}

// TrendingWindow returns the selected trending window.
func (c *Catalog) TrendingWindow() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.window
}

// SetTrendingWindow selects a new window and schedules one full refresh.
// Selecting the current window does nothing.
func (c *Catalog) SetTrendingWindow(window string) error {
	if !ValidWindow(window) {
		return fmt.Errorf("%w: %q", ErrInvalidWindow, window)
	}

	c.mu.Lock()
	if c.window == window {
		c.mu.Unlock()
		return nil
	}
	c.window = window
	c.mu.Unlock()

	c.logger.Infof("[Catalog] trending window set to %s", window)
	select {
	case c.windowCh <- struct{}{}:
	default:
		// a cycle is already pending and will read the new window
	}
	return nil
}

// Refresh fetches every list concurrently. The feed is replaced only when
// all calls succeed; otherwise the previous lists stay and the error message
// is set.
func (c *Catalog) Refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	c.mu.Lock()
	window := c.window
	c.loading = true
	c.errMsg = ""
	c.mu.Unlock()

	next, err := c.fetchAll(ctx, window)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.errMsg = constants.MsgCatalogUnavailable
		c.logger.Errorf("[Catalog] error fetching movies: %v", err)
		return err
	}
	c.current = next
	c.logger.Infof("[Catalog] refreshed home feed (window=%s, genres=%d)", window, len(c.genres))
	return nil
}

func (c *Catalog) fetchAll(ctx context.Context, window string) (feed, error) {
	var trending, upcoming *models.MoviePage
	genrePages := make([]*models.MoviePage, len(c.genres))

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		page, err := c.source.Trending(ctx, window, 1)
		if err != nil {
			return fmt.Errorf("trending: %w", err)
		}
		trending = page
		return nil
	})
	p.Go(func(ctx context.Context) error {
		page, err := c.source.Upcoming(ctx, 1)
		if err != nil {
			return fmt.Errorf("upcoming: %w", err)
		}
		upcoming = page
		return nil
	})
	for i, g := range c.genres {
		i, g := i, g
		p.Go(func(ctx context.Context) error {
			page, err := c.source.DiscoverByGenre(ctx, g.ID, c.sortBy, 1)
			if err != nil {
				return fmt.Errorf("discover %s: %w", g.Key, err)
			}
			genrePages[i] = page
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return feed{}, err
	}

	genres := make(map[string]GenreBucket, len(c.genres))
	for i, g := range c.genres {
		genres[g.Key] = GenreBucket{
			Key:    g.Key,
			Title:  g.Title,
			Movies: genrePages[i].Truncate(constants.MaxListItems),
		}
	}
	return feed{
		trending:  trending.Truncate(constants.MaxListItems),
		upcoming:  upcoming.Truncate(constants.MaxListItems),
		genres:    genres,
		updatedAt: time.Now(),
	}, nil
}

// Surprise picks a random movie from every published list.
func (c *Catalog) Surprise() (models.MovieSummary, bool) {
	c.mu.RLock()
	candidates := make([]models.MovieSummary, 0, len(c.current.trending)+len(c.current.upcoming))
	candidates = append(candidates, c.current.trending...)
	candidates = append(candidates, c.current.upcoming...)
	for _, g := range c.genres {
		candidates = append(candidates, c.current.genres[g.Key].Movies...)
	}
	c.mu.RUnlock()

	if len(candidates) == 0 {
		return models.MovieSummary{}, false
	}
	return candidates[c.pick(len(candidates))], true
}

// Start performs the initial refresh in the background and keeps refreshing
// every interval until Stop or ctx cancellation.
func (c *Catalog) Start(ctx context.Context) {
	c.runMu.Lock()
	if c.running {
		c.runMu.Unlock()
		return
	}
	c.running = true
	c.stopChan = make(chan struct{})
	c.done = make(chan struct{})
	stop, done := c.stopChan, c.done
	c.runMu.Unlock()

	c.logger.Infof("[Catalog] starting refresh loop with interval: %v", c.interval)
	go func() {
		defer close(done)
		c.run(ctx, stop)
	}()
}

// Stop ends the refresh loop and waits for it to exit.
func (c *Catalog) Stop() {
	c.runMu.Lock()
	if !c.running {
		c.runMu.Unlock()
		return
	}
	c.running = false
	close(c.stopChan)
	done := c.done
	c.runMu.Unlock()

	<-done
	c.logger.Infof("[Catalog] refresh loop stopped")
}

func (c *Catalog) run(ctx context.Context, stop <-chan struct{}) {
	_ = c.Refresh(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.Refresh(ctx)
		case <-c.windowCh:
			ticker.Reset(c.interval)
			_ = c.Refresh(ctx)
		case <-stop:
			return
		case <-ctx.Done():
			return
		}
	}
}
