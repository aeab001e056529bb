package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/gomovies/internal/database"
	"github.com/amaumene/gomovies/internal/models"
	"github.com/amaumene/gomovies/pkg/logger"
)

type mockMarker struct {
	mock.Mock
}

func (m *mockMarker) MarkAsFavorite(ctx context.Context, sessionID string, movieID int, favorite bool) error {
	args := m.Called(ctx, sessionID, movieID, favorite)
	return args.Error(0)
}

type mockLookup struct {
	mock.Mock
}

func (m *mockLookup) MovieDetails(ctx context.Context, movieID int) (*models.MovieDetail, error) {
	args := m.Called(ctx, movieID)
	if d, ok := args.Get(0).(*models.MovieDetail); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestFavorites(t *testing.T) (*FavoritesService, *mockMarker, *mockLookup, database.Database) {
	t.Helper()
	db, err := database.NewBolt(filepath.Join(t.TempDir(), "favorites.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	marker := &mockMarker{}
	lookup := &mockLookup{}
	svc := NewFavoritesService(NewFavoritesRepository(db), marker, lookup, logger.Discard())
	return svc, marker, lookup, db
}

func TestFavoritesAddThenRemoveRestoresSet(t *testing.T) {
	svc, marker, _, db := newTestFavorites(t)
	require.NoError(t, db.SaveFavoriteIDs([]int{13, 42}))

	marker.On("MarkAsFavorite", mock.Anything, "guest", 550, true).Return(nil).Once()
	marker.On("MarkAsFavorite", mock.Anything, "guest", 550, false).Return(nil).Once()

	ids, err := svc.Toggle(context.Background(), "guest", 550, true)
	require.NoError(t, err)
	assert.Equal(t, []int{13, 42, 550}, ids)

	fav, err := svc.IsFavorite(550)
	require.NoError(t, err)
	assert.True(t, fav)

	ids, err = svc.Toggle(context.Background(), "guest", 550, false)
	require.NoError(t, err)
	assert.Equal(t, []int{13, 42}, ids)

	stored, err := db.GetFavoriteIDs()
	require.NoError(t, err)
	assert.Equal(t, []int{13, 42}, stored)
	marker.AssertExpectations(t)
}

func TestFavoritesAddIsIdempotent(t *testing.T) {
	svc, marker, _, _ := newTestFavorites(t)
	marker.On("MarkAsFavorite", mock.Anything, "guest", 7, true).Return(nil).Twice()

	_, err := svc.Toggle(context.Background(), "guest", 7, true)
	require.NoError(t, err)
	ids, err := svc.Toggle(context.Background(), "guest", 7, true)
	require.NoError(t, err)
	assert.Equal(t, []int{7}, ids)
}

func TestFavoritesWithoutSessionIsNoOp(t *testing.T) {
	svc, marker, _, db := newTestFavorites(t)

	_, err := svc.Toggle(context.Background(), "", 550, true)
	assert.ErrorIs(t, err, ErrNoGuestSession)

	stored, err := db.GetFavoriteIDs()
	require.NoError(t, err)
	assert.Empty(t, stored)
	marker.AssertNotCalled(t, "MarkAsFavorite", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFavoritesRemoteFailureLeavesLocalState(t *testing.T) {
	svc, marker, _, db := newTestFavorites(t)
	require.NoError(t, db.SaveFavoriteIDs([]int{1}))

	remoteErr := errors.New("remote unavailable")
	marker.On("MarkAsFavorite", mock.Anything, "guest", 1, false).Return(remoteErr)

	_, err := svc.Toggle(context.Background(), "guest", 1, false)
	assert.ErrorIs(t, err, remoteErr)

	ids, err := svc.List()
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids)
}

func TestFavoritesMovies(t *testing.T) {
	svc, _, lookup, db := newTestFavorites(t)
	require.NoError(t, db.SaveFavoriteIDs([]int{680, 550}))

	lookup.On("MovieDetails", mock.Anything, 550).Return(&models.MovieDetail{ID: 550, Title: "Fight Club"}, nil)
	lookup.On("MovieDetails", mock.Anything, 680).Return(&models.MovieDetail{ID: 680, Title: "Pulp Fiction"}, nil)

	movies, err := svc.Movies(context.Background())
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, "Fight Club", movies[0].Title)
	assert.Equal(t, "Pulp Fiction", movies[1].Title)
}

func TestFavoritesMoviesLookupFailure(t *testing.T) {
	svc, _, lookup, db := newTestFavorites(t)
	require.NoError(t, db.SaveFavoriteIDs([]int{550}))

	lookup.On("MovieDetails", mock.Anything, 550).Return(nil, errors.New("boom"))

	_, err := svc.Movies(context.Background())
	assert.Error(t, err)
}
