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

type sermonRepository struct {
	db *sql.DB
}

const sermonColumns = `id, title, description, date, speaker, scripture, video_url, audio_url, thumbnail_url, created_at, updated_at`

func (r *sermonRepository) Create(ctx context.Context, input storage.SermonCreate) (storage.Sermon, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Speaker) == "" || input.Date.IsZero() {
		return storage.Sermon{}, fmt.Errorf("sqlite: create sermon: %w", storage.ErrValidation)
	}

	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO sermons (title, description, date, speaker, scripture, video_url, audio_url, thumbnail_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		input.Title,
		nullString(input.Description),
		formatDate(input.Date),
		input.Speaker,
		nullString(input.Scripture),
		nullString(input.VideoURL),
		nullString(input.AudioURL),
		nullString(input.ThumbnailURL),
		now,
		now,
	)
	if err != nil {
		return storage.Sermon{}, classify("create sermon", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return storage.Sermon{}, fmt.Errorf("sqlite: create sermon: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *sermonRepository) GetByID(ctx context.Context, id int64) (storage.Sermon, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sermonColumns+` FROM sermons WHERE id = ?`, id)
	return scanSermon(row)
}

func (r *sermonRepository) List(ctx context.Context, limit int) ([]storage.Sermon, error) {
	query := `SELECT ` + sermonColumns + ` FROM sermons ORDER BY date DESC, id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list sermons: %w", err)
	}
	defer rows.Close()

	result := make([]storage.Sermon, 0)
	for rows.Next() {
		sermon, err := scanSermon(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, sermon)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list sermons: %w", err)
	}

	return result, nil
}

func (r *sermonRepository) Update(ctx context.Context, id int64, input storage.SermonUpdate) (storage.Sermon, error) {
	var b updateBuilder

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return storage.Sermon{}, fmt.Errorf("sqlite: update sermon: %w", storage.ErrValidation)
		}
		b.set("title", *input.Title)
	}
	if input.Speaker != nil {
		if strings.TrimSpace(*input.Speaker) == "" {
			return storage.Sermon{}, fmt.Errorf("sqlite: update sermon: %w", storage.ErrValidation)
		}
		b.set("speaker", *input.Speaker)
	}
	if input.Date != nil {
		b.set("date", formatDate(*input.Date))
	}
	setOptional(&b, "description", input.Description)
	setOptional(&b, "scripture", input.Scripture)
	setOptional(&b, "video_url", input.VideoURL)
	setOptional(&b, "audio_url", input.AudioURL)
	setOptional(&b, "thumbnail_url", input.ThumbnailURL)

	if b.empty() {
		return r.GetByID(ctx, id)
	}

	b.set("updated_at", time.Now().UTC())
	query := fmt.Sprintf("UPDATE sermons SET %s WHERE id = ?", strings.Join(b.clauses, ", "))

	if err := execAffected(ctx, r.db, "update sermon", query, append(b.args, id)...); err != nil {
		return storage.Sermon{}, err
	}

	return r.GetByID(ctx, id)
}

func (r *sermonRepository) Delete(ctx context.Context, id int64) error {
	return execAffected(ctx, r.db, "delete sermon", `DELETE FROM sermons WHERE id = ?`, id)
}

func scanSermon(s scanner) (storage.Sermon, error) {
	var (
		sermon       storage.Sermon
		dateRaw      string
		description  sql.NullString
		scripture    sql.NullString
		videoURL     sql.NullString
		audioURL     sql.NullString
		thumbnailURL sql.NullString
		createdAtRaw time.Time
		updatedAtRaw time.Time
	)

	err := s.Scan(
		&sermon.ID,
		&sermon.Title,
		&description,
		&dateRaw,
		&sermon.Speaker,
		&scripture,
		&videoURL,
		&audioURL,
		&thumbnailURL,
		&createdAtRaw,
		&updatedAtRaw,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Sermon{}, storage.ErrNotFound
		}
		return storage.Sermon{}, fmt.Errorf("sqlite: scan sermon: %w", err)
	}

	date, err := parseDate(dateRaw)
	if err != nil {
		return storage.Sermon{}, err
	}

	sermon.Date = date
	sermon.Description = stringPtr(description)
	sermon.Scripture = stringPtr(scripture)
	sermon.VideoURL = stringPtr(videoURL)
	sermon.AudioURL = stringPtr(audioURL)
	sermon.ThumbnailURL = stringPtr(thumbnailURL)
	sermon.CreatedAt = createdAtRaw.UTC()
	sermon.UpdatedAt = updatedAtRaw.UTC()

	return sermon, nil
}
