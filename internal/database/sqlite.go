package database

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/amaumene/gomovies/internal/constants"
	apperrors "github.com/amaumene/gomovies/internal/errors"
)

// SQLiteDB implements the Database interface on a single key/value table.
type SQLiteDB struct {
	conn *sql.DB

	stmtGet *sql.Stmt
	stmtPut *sql.Stmt
	mu      sync.RWMutex
}

func NewSQLite(dbPath string) (*SQLiteDB, error) {
	if dbPath == "" {
		dbPath = defaultDBFile
	}
	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer keeps SQLITE_BUSY out of the picture.
	conn.SetMaxOpenConns(1)

	db := &SQLiteDB{conn: conn}

	if err := db.createTables(); err != nil {
		conn.Close()
		return nil, err
	}

	if err := db.prepareStatements(); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

func (db *SQLiteDB) createTables() error {
	kvTable := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY NOT NULL,
		value BLOB NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`

	if _, err := db.conn.Exec(kvTable); err != nil {
		return fmt.Errorf("failed to create kv table: %w", err)
	}
	return nil
}

func (db *SQLiteDB) prepareStatements() error {
	var err error

	db.stmtGet, err = db.conn.Prepare("SELECT value FROM kv WHERE key = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare get statement: %w", err)
	}

	db.stmtPut, err = db.conn.Prepare("INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)")
	if err != nil {
		return fmt.Errorf("failed to prepare put statement: %w", err)
	}

	return nil
}

func (db *SQLiteDB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.stmtGet != nil {
		db.stmtGet.Close()
	}
	if db.stmtPut != nil {
		db.stmtPut.Close()
	}

	return db.conn.Close()
}

func (db *SQLiteDB) GetFavoriteIDs() ([]int, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var data []byte
	err := db.stmtGet.QueryRow(constants.FavoritesKey).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return []int{}, nil
	}
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read favorites", err)
	}
	return decodeIDs(data)
}

func (db *SQLiteDB) SaveFavoriteIDs(ids []int) error {
	data, err := encodeIDs(ids)
	if err != nil {
		return apperrors.NewStorageError("failed to encode favorites", err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if _, err := db.stmtPut.Exec(constants.FavoritesKey, data); err != nil {
		return apperrors.NewStorageError("failed to store favorites", err)
	}
	return nil
}
