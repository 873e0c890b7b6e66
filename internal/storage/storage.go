package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates that the requested entity does not exist in the
	// underlying storage.
	ErrNotFound = errors.New("storage: not found")
	// ErrConflict indicates a unique key violation.
	ErrConflict = errors.New("storage: conflict")
	// ErrValidation indicates a missing required field or a value outside its
	// enumerated set.
	ErrValidation = errors.New("storage: validation failed")
)

// DateLayout is the calendar date format used for album and sermon dates.
const DateLayout = "2006-01-02"

// Store exposes the persistence primitives required by the application. It is
// expected to be safe for concurrent use.
type Store interface {
	Albums() Albums
	Photos() Photos
	Sermons() Sermons
	Posts() Posts
	Departments() Departments
	Settings() SettingsRepository
	Admins() Admins
	Ping(ctx context.Context) error
	Close() error
}

// EventType classifies an album as a routine or a non-routine occasion.
type EventType string

const (
	EventWeekly  EventType = "weekly"
	EventSpecial EventType = "special"
)

func (t EventType) Valid() bool {
	return t == EventWeekly || t == EventSpecial
}

// Optional carries a nullable field of a partial update. Set is false when the
// field was absent; Set with a nil Value clears the column.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null returns an Optional that clears the field.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// Album is a dated collection of photos. PhotoCount is derived at query time.
type Album struct {
	ID         int64
	Title      string
	Date       time.Time
	EventType  EventType
	CoverImage *string
	PhotoCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AlbumCreate captures the data required to create a new album.
type AlbumCreate struct {
	Title     string
	Date      time.Time
	EventType EventType
}

// AlbumUpdate describes the mutable fields for an album. A nil field indicates
// that no update should be applied for that attribute.
type AlbumUpdate struct {
	Title      *string
	Date       *time.Time
	EventType  *EventType
	CoverImage Optional[string]
}

// AlbumOrder selects the date ordering of album listings.
type AlbumOrder int

const (
	NewestFirst AlbumOrder = iota
	OldestFirst
)

// AlbumFilter restricts album listings. An empty EventType matches all albums.
type AlbumFilter struct {
	EventType EventType
	Order     AlbumOrder
}

// Albums defines the operations supported for managing albums.
type Albums interface {
	Create(ctx context.Context, input AlbumCreate) (Album, error)
	GetByID(ctx context.Context, id int64) (Album, error)
	// GetWithPhotos reads an album and its photos from a single snapshot.
	GetWithPhotos(ctx context.Context, id int64) (Album, []Photo, error)
	List(ctx context.Context, filter AlbumFilter) ([]Album, error)
	Update(ctx context.Context, id int64, input AlbumUpdate) (Album, error)
	// Delete removes the album and every photo that references it atomically.
	Delete(ctx context.Context, id int64) error
}

// Photo is a single image that belongs to an album.
type Photo struct {
	ID        int64
	AlbumID   int64
	URL       string
	Caption   *string
	TakenAt   *time.Time
	CreatedAt time.Time
}

// PhotoCreate contains the data required to insert a new photo.
type PhotoCreate struct {
	AlbumID int64
	URL     string
	Caption *string
	TakenAt *time.Time
}

// Photos defines the operations supported for managing photos.
type Photos interface {
	Create(ctx context.Context, input PhotoCreate) (Photo, error)
	GetByID(ctx context.Context, id int64) (Photo, error)
	ListByAlbum(ctx context.Context, albumID int64) ([]Photo, error)
	CountByAlbum(ctx context.Context, albumID int64) (int, error)
	// CountReferences counts photo URLs and album covers outside
	// excludeAlbumID that contain fragment.
	CountReferences(ctx context.Context, fragment string, excludeAlbumID int64) (int, error)
	Delete(ctx context.Context, id int64) error
}

type Sermon struct {
	ID           int64
	Title        string
	Description  *string
	Date         time.Time
	Speaker      string
	Scripture    *string
	VideoURL     *string
	AudioURL     *string
	ThumbnailURL *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type SermonCreate struct {
	Title        string
	Description  *string
	Date         time.Time
	Speaker      string
	Scripture    *string
	VideoURL     *string
	AudioURL     *string
	ThumbnailURL *string
}

type SermonUpdate struct {
	Title        *string
	Date         *time.Time
	Speaker      *string
	Description  Optional[string]
	Scripture    Optional[string]
	VideoURL     Optional[string]
	AudioURL     Optional[string]
	ThumbnailURL Optional[string]
}

// Sermons lists newest first; a non-positive limit returns every row.
type Sermons interface {
	Create(ctx context.Context, input SermonCreate) (Sermon, error)
	GetByID(ctx context.Context, id int64) (Sermon, error)
	List(ctx context.Context, limit int) ([]Sermon, error)
	Update(ctx context.Context, id int64, input SermonUpdate) (Sermon, error)
	Delete(ctx context.Context, id int64) error
}

type PostType string

const (
	PostTestimony PostType = "testimony"
	PostNews      PostType = "news"
)

func (t PostType) Valid() bool {
	return t == PostTestimony || t == PostNews
}

type Post struct {
	ID        int64
	Title     string
	Content   string
	Type      PostType
	Author    *string
	ImageURL  *string
	Date      time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PostCreate leaves Date zero to stamp the creation time.
type PostCreate struct {
	Title    string
	Content  string
	Type     PostType
	Author   *string
	ImageURL *string
	Date     time.Time
}

type PostUpdate struct {
	Title    *string
	Content  *string
	Type     *PostType
	Author   Optional[string]
	ImageURL Optional[string]
}

// PostFilter restricts post listings. An empty Type matches both types.
type PostFilter struct {
	Type  PostType
	Limit int
}

type Posts interface {
	Create(ctx context.Context, input PostCreate) (Post, error)
	GetByID(ctx context.Context, id int64) (Post, error)
	List(ctx context.Context, filter PostFilter) ([]Post, error)
	Update(ctx context.Context, id int64, input PostUpdate) (Post, error)
	Delete(ctx context.Context, id int64) error
}

type Department struct {
	ID          int64
	Name        string
	Description string
	Leader      *string
	ImageURL    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type DepartmentCreate struct {
	Name        string
	Description string
	Leader      *string
	ImageURL    *string
}

type DepartmentUpdate struct {
	Name        *string
	Description *string
	Leader      Optional[string]
	ImageURL    Optional[string]
}

type Departments interface {
	Create(ctx context.Context, input DepartmentCreate) (Department, error)
	GetByID(ctx context.Context, id int64) (Department, error)
	List(ctx context.Context) ([]Department, error)
	Update(ctx context.Context, id int64, input DepartmentUpdate) (Department, error)
	Delete(ctx context.Context, id int64) error
}

// Settings is the single row of parish identity and contact details.
type Settings struct {
	ChurchName   string
	Address      string
	City         string
	Phone        string
	Email        string
	AboutUs      string
	Vision       string
	Mission      string
	FacebookURL  *string
	InstagramURL *string
	YoutubeURL   *string
	UpdatedAt    time.Time
}

type SettingsUpdate struct {
	ChurchName   *string
	Address      *string
	City         *string
	Phone        *string
	Email        *string
	AboutUs      *string
	Vision       *string
	Mission      *string
	FacebookURL  Optional[string]
	InstagramURL Optional[string]
	YoutubeURL   Optional[string]
}

// SettingsRepository stores at most one Settings row.
type SettingsRepository interface {
	// Get returns ErrNotFound until the row has been created.
	Get(ctx context.Context) (Settings, error)
	// Insert creates the row if absent and reports whether it did.
	Insert(ctx context.Context, s Settings) (bool, error)
	Upsert(ctx context.Context, s Settings) (Settings, error)
	Update(ctx context.Context, input SettingsUpdate) (Settings, error)
}

// Admin mirrors the configured administrator identity.
type Admin struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type AdminUpsert struct {
	Email        string
	PasswordHash string
	Name         string
}

type Admins interface {
	Upsert(ctx context.Context, input AdminUpsert) (Admin, error)
	GetByEmail(ctx context.Context, email string) (Admin, error)
	GetByID(ctx context.Context, id int64) (Admin, error)
}
