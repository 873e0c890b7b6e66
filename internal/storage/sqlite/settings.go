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

// settingsRepository keeps the single settings row at id 1; the table's
// CHECK constraint rejects any other id.
type settingsRepository struct {
	db *sql.DB
}

const settingsColumns = `church_name, address, city, phone, email, about_us, vision, mission, facebook_url, instagram_url, youtube_url, updated_at`

func (r *settingsRepository) Get(ctx context.Context) (storage.Settings, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+settingsColumns+` FROM settings WHERE id = 1`)
	return scanSettings(row)
}

func (r *settingsRepository) Insert(ctx context.Context, s storage.Settings) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (id, `+settingsColumns+`)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		settingsArgs(s)...,
	)
	if err != nil {
		return false, classify("insert settings", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: insert settings: %w", err)
	}

	return n == 1, nil
}

func (r *settingsRepository) Upsert(ctx context.Context, s storage.Settings) (storage.Settings, error) {
	if strings.TrimSpace(s.ChurchName) == "" {
		return storage.Settings{}, fmt.Errorf("sqlite: upsert settings: %w", storage.ErrValidation)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (id, `+settingsColumns+`)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			church_name = excluded.church_name,
			address = excluded.address,
			city = excluded.city,
			phone = excluded.phone,
			email = excluded.email,
			about_us = excluded.about_us,
			vision = excluded.vision,
			mission = excluded.mission,
			facebook_url = excluded.facebook_url,
			instagram_url = excluded.instagram_url,
			youtube_url = excluded.youtube_url,
			updated_at = excluded.updated_at`,
		settingsArgs(s)...,
	)
	if err != nil {
		return storage.Settings{}, classify("upsert settings", err)
	}

	return r.Get(ctx)
}

func (r *settingsRepository) Update(ctx context.Context, input storage.SettingsUpdate) (storage.Settings, error) {
	var b updateBuilder

	if input.ChurchName != nil {
		if strings.TrimSpace(*input.ChurchName) == "" {
			return storage.Settings{}, fmt.Errorf("sqlite: update settings: %w", storage.ErrValidation)
		}
		b.set("church_name", *input.ChurchName)
	}
	setString(&b, "address", input.Address)
	setString(&b, "city", input.City)
	setString(&b, "phone", input.Phone)
	setString(&b, "email", input.Email)
	setString(&b, "about_us", input.AboutUs)
	setString(&b, "vision", input.Vision)
	setString(&b, "mission", input.Mission)
	setOptional(&b, "facebook_url", input.FacebookURL)
	setOptional(&b, "instagram_url", input.InstagramURL)
	setOptional(&b, "youtube_url", input.YoutubeURL)

	if b.empty() {
		return r.Get(ctx)
	}

	b.set("updated_at", time.Now().UTC())
	query := fmt.Sprintf("UPDATE settings SET %s WHERE id = 1", strings.Join(b.clauses, ", "))

	if err := execAffected(ctx, r.db, "update settings", query, b.args...); err != nil {
		return storage.Settings{}, err
	}

	return r.Get(ctx)
}

func setString(b *updateBuilder, column string, v *string) {
	if v != nil {
		b.set(column, *v)
	}
}

func settingsArgs(s storage.Settings) []any {
	return []any{
		s.ChurchName,
		s.Address,
		s.City,
		s.Phone,
		s.Email,
		s.AboutUs,
		s.Vision,
		s.Mission,
		nullString(s.FacebookURL),
		nullString(s.InstagramURL),
		nullString(s.YoutubeURL),
		time.Now().UTC(),
	}
}

func scanSettings(s scanner) (storage.Settings, error) {
	var (
		settings     storage.Settings
		facebookURL  sql.NullString
		instagramURL sql.NullString
		youtubeURL   sql.NullString
		updatedAtRaw time.Time
	)

	err := s.Scan(
		&settings.ChurchName,
		&settings.Address,
		&settings.City,
		&settings.Phone,
		&settings.Email,
		&settings.AboutUs,
		&settings.Vision,
		&settings.Mission,
		&facebookURL,
		&instagramURL,
		&youtubeURL,
		&updatedAtRaw,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Settings{}, storage.ErrNotFound
		}
		return storage.Settings{}, fmt.Errorf("sqlite: scan settings: %w", err)
	}

	settings.FacebookURL = stringPtr(facebookURL)
	settings.InstagramURL = stringPtr(instagramURL)
	settings.YoutubeURL = stringPtr(youtubeURL)
	settings.UpdatedAt = updatedAtRaw.UTC()

	return settings, nil
}
