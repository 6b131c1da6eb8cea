package store

import (
	"context"
	"errors"

	"github.com/Hussein-Mazeh/guardvault/internal/db"
)

// SQLiteStore keeps blobs as rows of a single-table SQLite database.
type SQLiteStore struct {
	db *db.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	d, err := db.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: d}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, name string) ([]byte, error) {
	row, err := db.GetBlob(ctx, s.db, name)
	if errors.Is(err, db.ErrNoBlob) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.Data, nil
}

func (s *SQLiteStore) Put(ctx context.Context, name string, data []byte) error {
	if err := validName(name); err != nil {
		return err
	}
	return db.PutBlob(ctx, s.db, name, data)
}

func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	return db.DeleteBlob(ctx, s.db, name)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
