// Package database persists the favorite movie set.
package database

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/amaumene/gomovies/internal/constants"
	apperrors "github.com/amaumene/gomovies/internal/errors"
)

const (
	// Default database file permissions
	dbFileMode = 0600
	dbDirMode  = 0755
)

// Database defines the interface for favorites persistence. Both backends
// keep a single record, FavoritesKey, holding a JSON array of movie ids.
type Database interface {
	// GetFavoriteIDs returns the stored ids, or an empty slice when nothing was stored yet
	GetFavoriteIDs() ([]int, error)
	// SaveFavoriteIDs replaces the stored ids
	SaveFavoriteIDs(ids []int) error
	// Close closes the database connection
	Close() error
}

// Open creates the backend named by kind ("bolt" or "sqlite") at path.
func Open(kind, path string) (Database, error) {
	switch kind {
	case "", "bolt":
		return NewBolt(path)
	case "sqlite":
		return NewSQLite(path)
	default:
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("unknown favorites backend %q", kind), nil)
	}
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), dbDirMode); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}

// encodeIDs serialises ids as a sorted, duplicate-free JSON array.
func encodeIDs(ids []int) ([]byte, error) {
	uniq := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := uniq[id]; ok {
			continue
		}
		uniq[id] = struct{}{}
		out = append(out, id)
	}
	sort.Ints(out)
	return json.Marshal(out)
}

func decodeIDs(data []byte) ([]int, error) {
	if len(data) == 0 {
		return []int{}, nil
	}
	var ids []int
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("malformed %s value", constants.FavoritesKey), err)
	}
	if ids == nil {
		ids = []int{}
	}
	return ids, nil
}
