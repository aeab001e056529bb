package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/amaumene/gomovies/internal/database"
	"github.com/amaumene/gomovies/internal/models"
	"github.com/amaumene/gomovies/pkg/logger"
)

// ErrNoGuestSession is returned when a favorite toggle arrives without a
// guest session. Nothing is changed in that case.
var ErrNoGuestSession = errors.New("no guest session")

const maxFavoriteLookups = 4

// FavoriteMarker mirrors favorite changes to the remote account.
type FavoriteMarker interface {
	MarkAsFavorite(ctx context.Context, sessionID string, movieID int, favorite bool) error
}

// MovieLookup resolves a movie id to its details.
type MovieLookup interface {
	MovieDetails(ctx context.Context, movieID int) (*models.MovieDetail, error)
}

// FavoritesRepository owns the persisted favorite set.
type FavoritesRepository interface {
	Get() (map[int]struct{}, error)
	// Toggle adds id when desired is true and removes it otherwise.
	Toggle(id int, desired bool) (map[int]struct{}, error)
}

type favoritesRepository struct {
	mu sync.Mutex
	db database.Database
}

// NewFavoritesRepository stores the set in db. Read-modify-write cycles are
// serialised within the process.
func NewFavoritesRepository(db database.Database) FavoritesRepository {
	return &favoritesRepository{db: db}
}

func (r *favoritesRepository) Get() (map[int]struct{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

func (r *favoritesRepository) Toggle(id int, desired bool) (map[int]struct{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, err := r.load()
	if err != nil {
		return nil, err
	}
	if desired {
		set[id] = struct{}{}
	} else {
		delete(set, id)
	}
	if err := r.db.SaveFavoriteIDs(setToSlice(set)); err != nil {
		return nil, err
	}
	return set, nil
}

func (r *favoritesRepository) load() (map[int]struct{}, error) {
	ids, err := r.db.GetFavoriteIDs()
	if err != nil {
		return nil, err
	}
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// FavoritesService keeps the local favorite set in step with the remote
// account. The remote call always goes first.
type FavoritesService struct {
	repo   FavoritesRepository
	remote FavoriteMarker
	lookup MovieLookup
	logger logger.Logger
}

func NewFavoritesService(repo FavoritesRepository, remote FavoriteMarker, lookup MovieLookup, log logger.Logger) *FavoritesService {
	if log == nil {
		log = logger.New()
	}
	return &FavoritesService{
		repo:   repo,
		remote: remote,
		lookup: lookup,
		logger: log,
	}
}

// Toggle marks movieID as favorite or not. Without a session nothing
// happens. When the remote call fails the local set is left untouched.
func (s *FavoritesService) Toggle(ctx context.Context, sessionID string, movieID int, desired bool) ([]int, error) {
	if sessionID == "" {
		s.logger.Warnf("[Favorites] toggle for %d ignored: no guest session", movieID)
		return nil, ErrNoGuestSession
	}

	if err := s.remote.MarkAsFavorite(ctx, sessionID, movieID, desired); err != nil {
		s.logger.Errorf("[Favorites] error toggling favorite %d: %v", movieID, err)
		return nil, fmt.Errorf("mark favorite %d: %w", movieID, err)
	}

	set, err := s.repo.Toggle(movieID, desired)
	if err != nil {
		s.logger.Errorf("[Favorites] failed to persist favorite %d: %v", movieID, err)
		return nil, err
	}
	s.logger.Debugf("[Favorites] movie %d favorite=%t (%d total)", movieID, desired, len(set))
	return setToSlice(set), nil
}

// IsFavorite reports whether movieID is in the local set.
func (s *FavoritesService) IsFavorite(movieID int) (bool, error) {
	set, err := s.repo.Get()
	if err != nil {
		return false, err
	}
	_, ok := set[movieID]
	return ok, nil
}

// List returns the favorite ids in ascending order.
func (s *FavoritesService) List() ([]int, error) {
	set, err := s.repo.Get()
	if err != nil {
		return nil, err
	}
	return setToSlice(set), nil
}

// Movies resolves every favorite id to its details, in id order.
func (s *FavoritesService) Movies(ctx context.Context) ([]models.MovieDetail, error) {
	ids, err := s.List()
	if err != nil {
		return nil, err
	}

	details := make([]models.MovieDetail, len(ids))
	p := pool.New().WithContext(ctx).WithCancelOnError().WithMaxGoroutines(maxFavoriteLookups)
	for i, id := range ids {
		i, id := i, id
		p.Go(func(ctx context.Context) error {
			d, err := s.lookup.MovieDetails(ctx, id)
			if err != nil {
				return fmt.Errorf("favorite %d: %w", id, err)
			}
			details[i] = *d
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		s.logger.Errorf("[Favorites] failed to resolve favorites: %v", err)
		return nil, err
	}
	return details, nil
}

func setToSlice(set map[int]struct{}) []int {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
