package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNoBlob is returned when no blob is stored under the requested name.
var ErrNoBlob = errors.New("blob not found")

// BlobRow is one stored blob with its bookkeeping timestamps.
type BlobRow struct {
	Name      string
	Data      []byte
	CreatedAt string
	UpdatedAt string
}

// PutBlob inserts or replaces the blob stored under name. The write happens
// inside a transaction so readers see either the old or the new value.
func PutBlob(ctx context.Context, d *DB, name string, data []byte) error {
	if d == nil || d.sql == nil {
		return fmt.Errorf("database handle is nil")
	}

	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put blob: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO blobs (name, data) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		name, data,
	)
	if err != nil {
		return fmt.Errorf("upsert blob %q: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit put blob: %w", err)
	}
	return nil
}

// GetBlob returns the blob stored under name or ErrNoBlob.
func GetBlob(ctx context.Context, d *DB, name string) (BlobRow, error) {
	if d == nil || d.sql == nil {
		return BlobRow{}, fmt.Errorf("database handle is nil")
	}

	var r BlobRow
	err := d.sql.QueryRowContext(ctx,
		`SELECT name, data, created_at, updated_at FROM blobs WHERE name = ?`,
		name,
	).Scan(&r.Name, &r.Data, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return BlobRow{}, ErrNoBlob
	}
	if err != nil {
		return BlobRow{}, fmt.Errorf("select blob %q: %w", name, err)
	}
	return r, nil
}

// DeleteBlob removes the blob stored under name. Deleting a missing blob is
// not an error.
func DeleteBlob(ctx context.Context, d *DB, name string) error {
	if d == nil || d.sql == nil {
		return fmt.Errorf("database handle is nil")
	}
	if _, err := d.sql.ExecContext(ctx, `DELETE FROM blobs WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete blob %q: %w", name, err)
	}
	return nil
}

// ListBlobs returns every stored blob ordered by name.
func ListBlobs(ctx context.Context, d *DB) ([]BlobRow, error) {
	if d == nil || d.sql == nil {
		return nil, fmt.Errorf("database handle is nil")
	}

	rows, err := d.sql.QueryContext(ctx,
		`SELECT name, data, created_at, updated_at FROM blobs ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("select blobs: %w", err)
	}
	defer rows.Close()

	var results []BlobRow
	for rows.Next() {
		var r BlobRow
		if err := rows.Scan(&r.Name, &r.Data, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan blob: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blobs: %w", err)
	}
	return results, nil
}
