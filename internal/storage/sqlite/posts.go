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

type postRepository struct {
	db *sql.DB
}

const postColumns = `id, title, content, type, author, image_url, date, created_at, updated_at`

func (r *postRepository) Create(ctx context.Context, input storage.PostCreate) (storage.Post, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Content) == "" || !input.Type.Valid() {
		return storage.Post{}, fmt.Errorf("sqlite: create post: %w", storage.ErrValidation)
	}

	now := time.Now().UTC()
	date := input.Date.UTC()
	if input.Date.IsZero() {
		date = now
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO posts (title, content, type, author, image_url, date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		input.Title,
		input.Content,
		string(input.Type),
		nullString(input.Author),
		nullString(input.ImageURL),
		date,
		now,
		now,
	)
	if err != nil {
		return storage.Post{}, classify("create post", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return storage.Post{}, fmt.Errorf("sqlite: create post: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (storage.Post, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	return scanPost(row)
}

func (r *postRepository) List(ctx context.Context, filter storage.PostFilter) ([]storage.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts`
	var args []any

	if filter.Type != "" {
		if !filter.Type.Valid() {
			return nil, fmt.Errorf("sqlite: list posts: %w", storage.ErrValidation)
		}
		query += ` WHERE type = ?`
		args = append(args, string(filter.Type))
	}

	query += ` ORDER BY date DESC, id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list posts: %w", err)
	}
	defer rows.Close()

	result := make([]storage.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list posts: %w", err)
	}

	return result, nil
}

func (r *postRepository) Update(ctx context.Context, id int64, input storage.PostUpdate) (storage.Post, error) {
	var b updateBuilder

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return storage.Post{}, fmt.Errorf("sqlite: update post: %w", storage.ErrValidation)
		}
		b.set("title", *input.Title)
	}
	if input.Content != nil {
		if strings.TrimSpace(*input.Content) == "" {
			return storage.Post{}, fmt.Errorf("sqlite: update post: %w", storage.ErrValidation)
		}
		b.set("content", *input.Content)
	}
	if input.Type != nil {
		if !input.Type.Valid() {
			return storage.Post{}, fmt.Errorf("sqlite: update post: %w", storage.ErrValidation)
		}
		b.set("type", string(*input.Type))
	}
	setOptional(&b, "author", input.Author)
	setOptional(&b, "image_url", input.ImageURL)

	if b.empty() {
		return r.GetByID(ctx, id)
	}

	b.set("updated_at", time.Now().UTC())
	query := fmt.Sprintf("UPDATE posts SET %s WHERE id = ?", strings.Join(b.clauses, ", "))

	if err := execAffected(ctx, r.db, "update post", query, append(b.args, id)...); err != nil {
		return storage.Post{}, err
	}

	return r.GetByID(ctx, id)
}

func (r *postRepository) Delete(ctx context.Context, id int64) error {
	return execAffected(ctx, r.db, "delete post", `DELETE FROM posts WHERE id = ?`, id)
}

func scanPost(s scanner) (storage.Post, error) {
	var (
		post         storage.Post
		postType     string
		author       sql.NullString
		imageURL     sql.NullString
		dateRaw      time.Time
		createdAtRaw time.Time
		updatedAtRaw time.Time
	)

	err := s.Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&postType,
		&author,
		&imageURL,
		&dateRaw,
		&createdAtRaw,
		&updatedAtRaw,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Post{}, storage.ErrNotFound
		}
		return storage.Post{}, fmt.Errorf("sqlite: scan post: %w", err)
	}

	post.Type = storage.PostType(postType)
	post.Author = stringPtr(author)
	post.ImageURL = stringPtr(imageURL)
	post.Date = dateRaw.UTC()
	post.CreatedAt = createdAtRaw.UTC()
	post.UpdatedAt = updatedAtRaw.UTC()

	return post, nil
}
