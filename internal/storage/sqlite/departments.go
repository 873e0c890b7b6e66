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

type departmentRepository struct {
	db *sql.DB
}

const departmentColumns = `id, name, description, leader, image_url, created_at, updated_at`

func (r *departmentRepository) Create(ctx context.Context, input storage.DepartmentCreate) (storage.Department, error) {
	if strings.TrimSpace(input.Name) == "" {
		return storage.Department{}, fmt.Errorf("sqlite: create department: %w", storage.ErrValidation)
	}

	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO departments (name, description, leader, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		input.Name,
		input.Description,
		nullString(input.Leader),
		nullString(input.ImageURL),
		now,
		now,
	)
	if err != nil {
		return storage.Department{}, classify("create department", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return storage.Department{}, fmt.Errorf("sqlite: create department: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *departmentRepository) GetByID(ctx context.Context, id int64) (storage.Department, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+departmentColumns+` FROM departments WHERE id = ?`, id)
	return scanDepartment(row)
}

func (r *departmentRepository) List(ctx context.Context) ([]storage.Department, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+departmentColumns+` FROM departments ORDER BY name COLLATE NOCASE, id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list departments: %w", err)
	}
	defer rows.Close()

	result := make([]storage.Department, 0)
	for rows.Next() {
		department, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, department)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list departments: %w", err)
	}

	return result, nil
}

func (r *departmentRepository) Update(ctx context.Context, id int64, input storage.DepartmentUpdate) (storage.Department, error) {
	var b updateBuilder

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return storage.Department{}, fmt.Errorf("sqlite: update department: %w", storage.ErrValidation)
		}
		b.set("name", *input.Name)
	}
	if input.Description != nil {
		b.set("description", *input.Description)
	}
	setOptional(&b, "leader", input.Leader)
	setOptional(&b, "image_url", input.ImageURL)

	if b.empty() {
		return r.GetByID(ctx, id)
	}

	b.set("updated_at", time.Now().UTC())
	query := fmt.Sprintf("UPDATE departments SET %s WHERE id = ?", strings.Join(b.clauses, ", "))

	if err := execAffected(ctx, r.db, "update department", query, append(b.args, id)...); err != nil {
		return storage.Department{}, err
	}

	return r.GetByID(ctx, id)
}

func (r *departmentRepository) Delete(ctx context.Context, id int64) error {
	return execAffected(ctx, r.db, "delete department", `DELETE FROM departments WHERE id = ?`, id)
}

func scanDepartment(s scanner) (storage.Department, error) {
	var (
		department   storage.Department
		leader       sql.NullString
		imageURL     sql.NullString
		createdAtRaw time.Time
		updatedAtRaw time.Time
	)

	err := s.Scan(
		&department.ID,
		&department.Name,
		&department.Description,
		&leader,
		&imageURL,
		&createdAtRaw,
		&updatedAtRaw,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Department{}, storage.ErrNotFound
		}
		return storage.Department{}, fmt.Errorf("sqlite: scan department: %w", err)
	}

	department.Leader = stringPtr(leader)
	department.ImageURL = stringPtr(imageURL)
	department.CreatedAt = createdAtRaw.UTC()
	department.UpdatedAt = updatedAtRaw.UTC()

	return department, nil
}
