package database

import (
	"fmt"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/amaumene/gomovies/internal/constants"
	apperrors "github.com/amaumene/gomovies/internal/errors"
)

const (
	// Default database filename
	defaultDBFile = "favorites.db"

	openTimeout = time.Second
)

var favoritesBucket = []byte("favorites")

// BoltDB implements the Database interface using bbolt.
type BoltDB struct {
	db *bolt.DB
}

// NewBolt creates a new bbolt database instance.
// If dbPath is empty, uses the default database file in current directory.
func NewBolt(dbPath string) (*BoltDB, error) {
	if dbPath == "" {
		dbPath = filepath.Join(".", defaultDBFile)
	}

	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	db, err := bolt.Open(dbPath, dbFileMode, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(favoritesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create favorites bucket: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// Close closes the database connection.
func (b *BoltDB) Close() error {
	return b.db.Close()
}

// GetFavoriteIDs reads the stored favorites array.
func (b *BoltDB) GetFavoriteIDs() ([]int, error) {
	var data []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		// Bytes returned by Get are only valid inside the transaction.
		if v := tx.Bucket(favoritesBucket).Get([]byte(constants.FavoritesKey)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read favorites", err)
	}
	return decodeIDs(data)
}

// SaveFavoriteIDs replaces the stored favorites array.
func (b *BoltDB) SaveFavoriteIDs(ids []int) error {
	data, err := encodeIDs(ids)
	if err != nil {
		return apperrors.NewStorageError("failed to encode favorites", err)
	}

	err = b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(favoritesBucket).Put([]byte(constants.FavoritesKey), data)
	})
	if err != nil {
		return apperrors.NewStorageError("failed to store favorites", err)
	}
	return nil
}
