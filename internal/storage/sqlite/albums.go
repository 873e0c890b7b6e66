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

type albumRepository struct {
	db *sql.DB
}

const albumColumns = `
	a.id, a.title, a.date, a.event_type, a.cover_image, a.created_at, a.updated_at,
	(SELECT COUNT(*) FROM photos p WHERE p.album_id = a.id)`

func (r *albumRepository) Create(ctx context.Context, input storage.AlbumCreate) (storage.Album, error) {
	if strings.TrimSpace(input.Title) == "" || input.Date.IsZero() || !input.EventType.Valid() {
		return storage.Album{}, fmt.Errorf("sqlite: create album: %w", storage.ErrValidation)
	}

	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO albums (title, date, event_type, cover_image, created_at, updated_at)
		VALUES (?, ?, ?, NULL, ?, ?)`,
		input.Title,
		formatDate(input.Date),
		string(input.EventType),
		now,
		now,
	)
	if err != nil {
		return storage.Album{}, classify("create album", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return storage.Album{}, fmt.Errorf("sqlite: create album: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *albumRepository) GetByID(ctx context.Context, id int64) (storage.Album, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+albumColumns+` FROM albums a WHERE a.id = ?`, id)
	return scanAlbum(row)
}

func (r *albumRepository) GetWithPhotos(ctx context.Context, id int64) (storage.Album, []storage.Photo, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storage.Album{}, nil, fmt.Errorf("sqlite: get album: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	album, err := scanAlbum(tx.QueryRowContext(ctx, `SELECT `+albumColumns+` FROM albums a WHERE a.id = ?`, id))
	if err != nil {
		return storage.Album{}, nil, err
	}

	photos, err := listPhotos(ctx, tx, id)
	if err != nil {
		return storage.Album{}, nil, err
	}

	if err := tx.Commit(); err != nil {
		return storage.Album{}, nil, fmt.Errorf("sqlite: get album: %w", err)
	}

	// Both reads share the snapshot, so the count always matches the slice.
	album.PhotoCount = len(photos)

	return album, photos, nil
}

func (r *albumRepository) List(ctx context.Context, filter storage.AlbumFilter) ([]storage.Album, error) {
	query := `SELECT ` + albumColumns + ` FROM albums a`
	var args []any

	if filter.EventType != "" {
		if !filter.EventType.Valid() {
			return nil, fmt.Errorf("sqlite: list albums: %w", storage.ErrValidation)
		}
		query += ` WHERE a.event_type = ?`
		args = append(args, string(filter.EventType))
	}

	if filter.Order == storage.OldestFirst {
		query += ` ORDER BY a.date ASC, a.id ASC`
	} else {
		query += ` ORDER BY a.date DESC, a.id DESC`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list albums: %w", err)
	}
	defer rows.Close()

	result := make([]storage.Album, 0)
	for rows.Next() {
		album, err := scanAlbum(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, album)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list albums: %w", err)
	}

	return result, nil
}

func (r *albumRepository) Update(ctx context.Context, id int64, input storage.AlbumUpdate) (storage.Album, error) {
	var b updateBuilder

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return storage.Album{}, fmt.Errorf("sqlite: update album: %w", storage.ErrValidation)
		}
		b.set("title", *input.Title)
	}

	if input.Date != nil {
		b.set("date", formatDate(*input.Date))
	}

	if input.EventType != nil {
		if !input.EventType.Valid() {
			return storage.Album{}, fmt.Errorf("sqlite: update album: %w", storage.ErrValidation)
		}
		b.set("event_type", string(*input.EventType))
	}

	setOptional(&b, "cover_image", input.CoverImage)

	if b.empty() {
		return r.GetByID(ctx, id)
	}

	b.set("updated_at", time.Now().UTC())
	query := fmt.Sprintf("UPDATE albums SET %s WHERE id = ?", strings.Join(b.clauses, ", "))

	if err := execAffected(ctx, r.db, "update album", query, append(b.args, id)...); err != nil {
		return storage.Album{}, err
	}

	return r.GetByID(ctx, id)
}

func (r *albumRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: delete album: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// The foreign key cascades as well; deleting children first keeps the
	// operation correct on connections opened without foreign_keys.
	if _, err := tx.ExecContext(ctx, `DELETE FROM photos WHERE album_id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: delete album photos: %w", err)
	}

	if err := execAffected(ctx, tx, "delete album", `DELETE FROM albums WHERE id = ?`, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: delete album: %w", err)
	}

	return nil
}

func scanAlbum(s scanner) (storage.Album, error) {
	var (
		album        storage.Album
		dateRaw      string
		eventType    string
		coverImage   sql.NullString
		createdAtRaw time.Time
		updatedAtRaw time.Time
	)

	err := s.Scan(
		&album.ID,
		&album.Title,
		&dateRaw,
		&eventType,
		&coverImage,
		&createdAtRaw,
		&updatedAtRaw,
		&album.PhotoCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Album{}, storage.ErrNotFound
		}
		return storage.Album{}, fmt.Errorf("sqlite: scan album: %w", err)
	}

	date, err := parseDate(dateRaw)
	if err != nil {
		return storage.Album{}, err
	}

	album.Date = date
	album.EventType = storage.EventType(eventType)
	album.CoverImage = stringPtr(coverImage)
	album.CreatedAt = createdAtRaw.UTC()
	album.UpdatedAt = updatedAtRaw.UTC()

	return album, nil
}
