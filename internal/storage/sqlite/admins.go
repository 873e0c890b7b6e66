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

type adminRepository struct {
	db *sql.DB
}

const adminColumns = `id, email, password_hash, name, created_at, updated_at`

func (r *adminRepository) Upsert(ctx context.Context, input storage.AdminUpsert) (storage.Admin, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.PasswordHash == "" {
		return storage.Admin{}, fmt.Errorf("sqlite: upsert admin: %w", storage.ErrValidation)
	}

	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admins (email, password_hash, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			password_hash = excluded.password_hash,
			name = excluded.name,
			updated_at = excluded.updated_at`,
		email,
		input.PasswordHash,
		input.Name,
		now,
		now,
	)
	if err != nil {
		return storage.Admin{}, classify("upsert admin", err)
	}

	return r.GetByEmail(ctx, email)
}

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (storage.Admin, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM admins WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)))
	return scanAdmin(row)
}

func (r *adminRepository) GetByID(ctx context.Context, id int64) (storage.Admin, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM admins WHERE id = ?`, id)
	return scanAdmin(row)
}

func scanAdmin(s scanner) (storage.Admin, error) {
	var (
		admin        storage.Admin
		createdAtRaw time.Time
		updatedAtRaw time.Time
	)

	err := s.Scan(
		&admin.ID,
		&admin.Email,
		&admin.PasswordHash,
		&admin.Name,
		&createdAtRaw,
		&updatedAtRaw,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Admin{}, storage.ErrNotFound
		}
		return storage.Admin{}, fmt.Errorf("sqlite: scan admin: %w", err)
	}

	admin.CreatedAt = createdAtRaw.UTC()
	admin.UpdatedAt = updatedAtRaw.UTC()

	return admin, nil
}
