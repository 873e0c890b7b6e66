package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	msqlite "modernc.org/sqlite" // SQLite driver
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/Oxyrus/parish/internal/storage"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store is a SQLite-backed implementation of the storage.Store interface.
type Store struct {
	db          *sql.DB
	albums      *albumRepository
	photos      *photoRepository
	sermons     *sermonRepository
	posts       *postRepository
	departments *departmentRepository
	settings    *settingsRepository
	admins      *adminRepository
}

// Open initialises (or opens) a SQLite database located at the provided path
// and applies pending migrations. The directory is created if it does not
// already exist. The returned Store is safe for concurrent use.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path must not be empty")
	}

	if err := ensureDir(path); err != nil {
		return nil, fmt.Errorf("sqlite: ensure directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	// A single connection serialises writers and gives read transactions a
	// consistent snapshot relative to cascade deletes.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := configure(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:          db,
		albums:      &albumRepository{db: db},
		photos:      &photoRepository{db: db},
		sermons:     &sermonRepository{db: db},
		posts:       &postRepository{db: db},
		departments: &departmentRepository{db: db},
		settings:    &settingsRepository{db: db},
		admins:      &adminRepository{db: db},
	}, nil
}

// Albums returns the album repository.
func (s *Store) Albums() storage.Albums {
	return s.albums
}

// Photos returns the photo repository.
func (s *Store) Photos() storage.Photos {
	return s.photos
}

func (s *Store) Sermons() storage.Sermons {
	return s.sermons
}

func (s *Store) Posts() storage.Posts {
	return s.posts
}

func (s *Store) Departments() storage.Departments {
	return s.departments
}

func (s *Store) Settings() storage.SettingsRepository {
	return s.settings
}

func (s *Store) Admins() storage.Admins {
	return s.admins
}

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func configure(db *sql.DB) error {
	stmts := []string{
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
		"PRAGMA journal_mode = WAL;",
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("sqlite: configure: %w", err)
		}
	}

	return nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}

	return nil
}

// classify maps constraint failures onto the storage sentinels.
func classify(op string, err error) error {
	var serr *msqlite.Error
	if errors.As(err, &serr) {
		switch serr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("sqlite: %s: %w", op, storage.ErrConflict)
		case sqlite3.SQLITE_CONSTRAINT_CHECK, sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return fmt.Errorf("sqlite: %s: %w", op, storage.ErrValidation)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("sqlite: %s: %w", op, storage.ErrNotFound)
		}
	}
	return fmt.Errorf("sqlite: %s: %w", op, err)
}

// execAffected runs an update or delete and reports ErrNotFound when no row
// matched.
func execAffected(ctx context.Context, db execer, op, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return classify(op, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: %s: %w", op, err)
	}

	if rowsAffected == 0 {
		return storage.ErrNotFound
	}

	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type scanner interface {
	Scan(dest ...any) error
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: v.UTC(), Valid: true}
}

func formatDate(t time.Time) string {
	return t.Format(storage.DateLayout)
}

func parseDate(raw string) (time.Time, error) {
	t, err := time.Parse(storage.DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse date %q: %w", raw, err)
	}
	return t, nil
}

// updateBuilder accumulates SET clauses for a partial update.
type updateBuilder struct {
	clauses []string
	args    []any
}

func (b *updateBuilder) set(column string, value any) {
	b.clauses = append(b.clauses, column+" = ?")
	b.args = append(b.args, value)
}

func setOptional[T any](b *updateBuilder, column string, o storage.Optional[T]) {
	if !o.Set {
		return
	}
	if o.Value == nil {
		b.set(column, nil)
		return
	}
	b.set(column, *o.Value)
}

func (b *updateBuilder) empty() bool {
	return len(b.clauses) == 0
}

var _ storage.Store = (*Store)(nil)
