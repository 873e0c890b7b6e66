package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Oxyrus/parish/internal/storage"
)

type photoRepository struct {
	db *sql.DB
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *photoRepository) Create(ctx context.Context, input storage.PhotoCreate) (storage.Photo, error) {
	if strings.TrimSpace(input.URL) == "" {
		return storage.Photo{}, fmt.Errorf("sqlite: create photo: %w", storage.ErrValidation)
	}

	now := time.Now().UTC()

	// The album_id foreign key rejects photos for missing albums; classify
	// reports that as ErrNotFound.
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO photos (album_id, url, caption, taken_at, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		input.AlbumID,
		input.URL,
		nullString(input.Caption),
		nullTime(input.TakenAt),
		now,
	)
	if err != nil {
		return storage.Photo{}, classify("create photo", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return storage.Photo{}, fmt.Errorf("sqlite: create photo: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *photoRepository) GetByID(ctx context.Context, id int64) (storage.Photo, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, album_id, url, caption, taken_at, created_at
		FROM photos
		WHERE id = ?`,
		id,
	)
	return scanPhoto(row)
}

func (r *photoRepository) ListByAlbum(ctx context.Context, albumID int64) ([]storage.Photo, error) {
	return listPhotos(ctx, r.db, albumID)
}

func (r *photoRepository) CountByAlbum(ctx context.Context, albumID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM photos WHERE album_id = ?`, albumID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: count photos: %w", err)
	}
	return n, nil
}

func (r *photoRepository) CountReferences(ctx context.Context, fragment string, excludeAlbumID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM photos WHERE album_id <> ? AND instr(url, ?) > 0) +
			(SELECT COUNT(*) FROM albums WHERE id <> ? AND instr(COALESCE(cover_image, ''), ?) > 0)`,
		excludeAlbumID, fragment, excludeAlbumID, fragment,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: count references: %w", err)
	}
	return n, nil
}

func (r *photoRepository) Delete(ctx context.Context, id int64) error {
	return execAffected(ctx, r.db, "delete photo", `DELETE FROM photos WHERE id = ?`, id)
}

// listPhotos returns the album's photos, most recently added first.
func listPhotos(ctx context.Context, q querier, albumID int64) ([]storage.Photo, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, album_id, url, caption, taken_at, created_at
		FROM photos
		WHERE album_id = ?
		ORDER BY created_at DESC, id DESC`,
		albumID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list photos: %w", err)
	}
	defer rows.Close()

	result := make([]storage.Photo, 0)
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, photo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list photos: %w", err)
	}

	return result, nil
}

func scanPhoto(s scanner) (storage.Photo, error) {
	var (
		photo        storage.Photo
		caption      sql.NullString
		takenAtRaw   sql.NullTime
		createdAtRaw time.Time
	)

	err := s.Scan(
		&photo.ID,
		&photo.AlbumID,
		&photo.URL,
		&caption,
		&takenAtRaw,
		&createdAtRaw,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Photo{}, storage.ErrNotFound
		}
		return storage.Photo{}, fmt.Errorf("sqlite: scan photo: %w", err)
	}

	photo.Caption = stringPtr(caption)

	if takenAtRaw.Valid {
		t := takenAtRaw.Time.UTC()
		photo.TakenAt = &t
	}

	photo.CreatedAt = createdAtRaw.UTC()

	return photo, nil
}
