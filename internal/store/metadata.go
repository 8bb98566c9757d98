package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
)

// GetImportedFileHash returns the content hash recorded for path.
// Returns empty string and nil error if the file was never imported.
func (s *Store) GetImportedFileHash(ctx context.Context, path string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query, args, err := s.sq.Select("hash").From("imported_files").Where(squirrel.Eq{"path": path}).ToSql()
	if err != nil {
		return "", err
	}
	var hash string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return hash, err
}

// SetImportedFileHash upserts the content hash recorded for path.
func (s *Store) SetImportedFileHash(ctx context.Context, path, hash string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query, args, err := s.sq.
		Insert("imported_files").
		Columns("path", "hash", "imported_at").
		Values(path, hash, time.Now().UTC()).
		Suffix("ON CONFLICT(path) DO UPDATE SET hash = excluded.hash, imported_at = excluded.imported_at").
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}
